package mail

import (
	"errors"
	"strings"
	"testing"
)

const multipartMail = `From: Bandcamp <noreply@bandcamp.com>
To: someone@example.com
Date: Tue, 01 Mar 2022 10:00:00 +0000
MIME-Version: 1.0
Content-Type: multipart/alternative; boundary="b1"

--b1
Content-Type: text/plain; charset=UTF-8

New release on Bandcamp
--b1
Content-Type: text/html; charset=UTF-8
Content-Transfer-Encoding: quoted-printable

<html><body><div><span>Ghostly International just released </span>=
<span>Oceans of Time</span><span> by Sofia Kourtesis</span>=
<a href=3D"https://example.bandcamp.com/album/oceans?from=3Dfanpub">=
<img src=3D"https://f4.bcbits.com/img/a123_16.jpg"></a></div></body></html>
--b1--
`

const plainSenderMail = `From: Someone Else <someone@example.org>
To: someone@example.com
Date: Tue, 01 Mar 2022 10:00:00 +0000
Content-Type: text/html; charset=UTF-8

<div>hello</div>
`

const noArtistMail = `From: Bandcamp <noreply@bandcamp.com>
To: someone@example.com
Date: Sat, 15 Jan 2022 00:30:00 +0000
Content-Type: text/html; charset=UTF-8

<div><span>Hyperdub just released </span><span>Quantum Jelly</span><a href="https://example.bandcamp.com/album/qj"><img src="https://f4.bcbits.com/img/a9.jpg"></a></div>
`

func raw(fixture string) []byte {
	return []byte(strings.ReplaceAll(fixture, "\n", "\r\n"))
}

func TestParseMultipartMail(t *testing.T) {
	release, err := Parse(raw(multipartMail))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if release.To != "someone@example.com" {
		t.Fatalf("to = %q", release.To)
	}
	if release.Date != "2022-03-01T10:00:00Z" {
		t.Fatalf("date = %q", release.Date)
	}
	if release.Label != "Ghostly International" {
		t.Fatalf("label = %q", release.Label)
	}
	if release.Title != "Oceans of Time" {
		t.Fatalf("title = %q", release.Title)
	}
	if release.Artist == nil || *release.Artist != "Sofia Kourtesis" {
		t.Fatalf("artist = %v", release.Artist)
	}
	if release.Link != "https://example.bandcamp.com/album/oceans" {
		t.Fatalf("link = %q (query string must be stripped)", release.Link)
	}
	if release.CoverLink != "https://f4.bcbits.com/img/a123_16.jpg" {
		t.Fatalf("cover link = %q", release.CoverLink)
	}
}

func TestParseRejectsUnexpectedSender(t *testing.T) {
	if _, err := Parse(raw(plainSenderMail)); !errors.Is(err, ErrUnexpectedSender) {
		t.Fatalf("expected ErrUnexpectedSender, got %v", err)
	}
}

func TestParseMailWithoutArtist(t *testing.T) {
	release, err := Parse(raw(noArtistMail))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if release.Artist != nil {
		t.Fatalf("expected nil artist, got %q", *release.Artist)
	}
	if release.Label != "Hyperdub" {
		t.Fatalf("label = %q", release.Label)
	}
	if release.Title != "Quantum Jelly" {
		t.Fatalf("title = %q", release.Title)
	}
}

func TestParseGarbage(t *testing.T) {
	if _, err := Parse([]byte("definitely not an email")); err == nil {
		t.Fatal("expected error for malformed input")
	}
}

const corruptBodyMail = `From: Bandcamp <noreply@bandcamp.com>
To: someone@example.com
Date: Tue, 01 Mar 2022 10:00:00 +0000
MIME-Version: 1.0
Content-Type: multipart/alternative; boundary="b1"

--b1
Content-Type: text/html; charset=UTF-8
Content-Transfer-Encoding: base64

!!!not-base64!!!
--b1--
`

func TestParseCorruptHTMLPart(t *testing.T) {
	_, err := Parse(raw(corruptBodyMail))
	if err == nil {
		t.Fatal("expected error for corrupt html part")
	}
	// HTMLパート自体は存在するので、欠損ではなく復号の失敗が報告されること
	if errors.Is(err, ErrNoHTMLBody) {
		t.Fatalf("decode failure must not be reported as a missing body: %v", err)
	}
}

func TestParseMailWithoutReleaseClause(t *testing.T) {
	mail := strings.Replace(noArtistMail, "just released", "says hi to", 1)
	if _, err := Parse(raw(mail)); !errors.Is(err, ErrNoReleaseClause) {
		t.Fatalf("expected ErrNoReleaseClause, got %v", err)
	}
}
