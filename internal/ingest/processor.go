package ingest

import (
	"context"
	"log"

	"github.com/yourusername/bandcamp-timeline/internal/mail"
	"github.com/yourusername/bandcamp-timeline/internal/store"
)

// ObjectFetcher は保存済みメールオブジェクトの取得を抽象化します。
type ObjectFetcher interface {
	FetchObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// ReleaseWriter はリリースレコードの保存を抽象化します。
type ReleaseWriter interface {
	PutRelease(ctx context.Context, owner string, release store.Release) error
}

// Processor は1通のメールを解析してストアへ書き込みます。
type Processor struct {
	fetcher ObjectFetcher
	writer  ReleaseWriter
	status  *Store
	logger  *log.Logger
}

// NewProcessor は Processor を作成します。status は nil でもよく、
// その場合は処理済みオブジェクトの記録とスキップを行いません。
func NewProcessor(fetcher ObjectFetcher, writer ReleaseWriter, status *Store, logger *log.Logger) *Processor {
	if logger == nil {
		logger = log.Default()
	}
	return &Processor{
		fetcher: fetcher,
		writer:  writer,
		status:  status,
		logger:  logger,
	}
}

// Process はメールオブジェクト1件を取り込みます。
// すでに取り込み済みと記録されているオブジェクトはスキップします。
func (p *Processor) Process(ctx context.Context, bucket, key string) error {
	if p.status != nil {
		record, err := p.status.Get(ctx, key)
		if err != nil {
			return err
		}
		if record != nil && record.Status == StatusDone {
			p.logger.Printf("skipping already ingested object key=%s", key)
			return nil
		}
	}

	raw, err := p.fetcher.FetchObject(ctx, bucket, key)
	if err != nil {
		return p.fail(ctx, key, err)
	}

	parsed, err := mail.Parse(raw)
	if err != nil {
		return p.fail(ctx, key, err)
	}

	release := store.Release{
		Artist:    parsed.Artist,
		Date:      &parsed.Date,
		Label:     &parsed.Label,
		Link:      &parsed.Link,
		CoverLink: &parsed.CoverLink,
		Title:     &parsed.Title,
	}
	if err := p.writer.PutRelease(ctx, parsed.To, release); err != nil {
		return p.fail(ctx, key, err)
	}

	if p.status != nil {
		if err := p.status.MarkDone(ctx, key); err != nil {
			p.logger.Printf("failed to mark object done key=%s: %v", key, err)
		}
	}
	p.logger.Printf("ingested release %q for %s (key=%s)", *release.Title, parsed.To, key)
	return nil
}

func (p *Processor) fail(ctx context.Context, key string, err error) error {
	if p.status != nil {
		if markErr := p.status.MarkFailed(ctx, key, err.Error()); markErr != nil {
			p.logger.Printf("failed to mark object failed key=%s: %v", key, markErr)
		}
	}
	return err
}
