// Package mail は Bandcamp のリリース通知メールを解析し、リリース情報を抽出します。
package mail

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	stdmail "net/mail"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// bandcampSender 以外からのメールは取り込まない。
const bandcampSender = "noreply@bandcamp.com"

var (
	// ErrUnexpectedSender は Bandcamp 以外の送信者からのメールのエラーです。
	ErrUnexpectedSender = errors.New("mail: unexpected sender")
	// ErrNoHTMLBody は HTML パートが見つからない場合のエラーです。
	ErrNoHTMLBody = errors.New("mail: html body not found")
	// ErrNoReleaseClause は本文にリリース告知の文面が見つからない場合のエラーです。
	ErrNoReleaseClause = errors.New("mail: released clause not found")
)

// ReleaseMail は通知メールから抽出した1件のリリース情報です。
// Artist は本文に含まれないことがあります。
type ReleaseMail struct {
	To        string
	Date      string
	Label     string
	Title     string
	Artist    *string
	Link      string
	CoverLink string
}

// Parse は生のメールデータを解析し、リリース情報を返します。
func Parse(raw []byte) (*ReleaseMail, error) {
	msg, err := stdmail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("mail: failed to read message: %w", err)
	}

	from, err := stdmail.ParseAddress(msg.Header.Get("From"))
	if err != nil {
		return nil, fmt.Errorf("mail: failed to parse From header: %w", err)
	}
	if from.Address != bandcampSender {
		return nil, ErrUnexpectedSender
	}

	to, err := stdmail.ParseAddress(msg.Header.Get("To"))
	if err != nil {
		return nil, fmt.Errorf("mail: failed to parse To header: %w", err)
	}

	date, err := msg.Header.Date()
	if err != nil {
		return nil, fmt.Errorf("mail: failed to parse Date header: %w", err)
	}

	body, err := htmlBody(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body)
	if err != nil {
		return nil, err
	}

	release, err := parseBody(body)
	if err != nil {
		return nil, err
	}
	release.To = to.Address
	release.Date = date.UTC().Format(time.RFC3339)
	return release, nil
}

// htmlBody は MIME 構造をたどって最初の text/html パートを復号して返します。
func htmlBody(contentType, encoding string, r io.Reader) (string, error) {
	if contentType == "" {
		contentType = "text/plain"
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("mail: failed to parse content type: %w", err)
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		mr := multipart.NewReader(r, params["boundary"])
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				return "", fmt.Errorf("mail: failed to read part: %w", err)
			}
			body, err := htmlBody(part.Header.Get("Content-Type"), part.Header.Get("Content-Transfer-Encoding"), part)
			if err == nil {
				return body, nil
			}
			// HTMLパートが他にないだけなら次のパートを見る。復号の失敗はそのまま返す。
			if !errors.Is(err, ErrNoHTMLBody) {
				return "", err
			}
		}
		return "", ErrNoHTMLBody
	}

	if mediaType != "text/html" {
		return "", ErrNoHTMLBody
	}
	return decodeBody(encoding, r)
}

func decodeBody(encoding string, r io.Reader) (string, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		r = quotedprintable.NewReader(r)
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, r)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("mail: failed to decode body: %w", err)
	}
	return string(data), nil
}

// parseBody は HTML 本文からリリース情報を抽出します。
// 最初の div のテキストから「〜 just released 〜」の形でレーベルとタイトルを、
// 続く「by 〜」からアーティストを読み取ります。
func parseBody(body string) (*ReleaseMail, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("mail: failed to parse html: %w", err)
	}

	div := findElement(doc, "div")
	if div == nil {
		return nil, ErrNoHTMLBody
	}

	texts := textNodes(div)
	released := -1
	for i, t := range texts {
		if strings.Contains(t, "released") {
			released = i
			break
		}
	}
	if released < 0 || released+1 >= len(texts) {
		return nil, ErrNoReleaseClause
	}

	label := strings.ReplaceAll(strings.ReplaceAll(texts[released], " just released ", ""), "\n", "")
	title := texts[released+1]

	var artist *string
	for _, t := range texts[released+2:] {
		if strings.Contains(t, "by") {
			a := strings.ReplaceAll(strings.ReplaceAll(strings.ReplaceAll(t, " by ", ""), "\n", ""), ", ", "")
			artist = &a
			break
		}
	}

	anchor := findElement(div, "a")
	if anchor == nil {
		return nil, ErrNoReleaseClause
	}
	link := attrValue(anchor, "href")
	// トラッキング用のクエリ文字列は落とす
	if i := strings.Index(link, "?"); i >= 0 {
		link = link[:i]
	}

	img := findElement(anchor, "img")
	if img == nil {
		return nil, ErrNoReleaseClause
	}
	coverLink := attrValue(img, "src")

	return &ReleaseMail{
		Label:     label,
		Title:     title,
		Artist:    artist,
		Link:      link,
		CoverLink: coverLink,
	}, nil
}

// findElement は深さ優先で最初に見つかった要素を返します。
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, tag); found != nil {
			return found
		}
	}
	return nil
}

// textNodes は要素配下のテキストノードを文書順で集めます。空白のみのノードは除きます。
func textNodes(n *html.Node) []string {
	var texts []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			if strings.TrimSpace(node.Data) != "" {
				texts = append(texts, node.Data)
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return texts
}

func attrValue(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}
