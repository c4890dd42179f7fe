// Package main は保存済みの通知メール1通を取り込むCLIツールです。
// 既定ではその場で解析してストアへ書き込み、-enqueue 指定時は
// ワーカー向けのジョブとしてキューへ投入します。
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/yourusername/bandcamp-timeline/internal/config"
	"github.com/yourusername/bandcamp-timeline/internal/ingest"
	"github.com/yourusername/bandcamp-timeline/internal/store"
)

func main() {
	var (
		bucket  = flag.String("bucket", "", "S3 bucket holding the stored mail (defaults to MAIL_BUCKET)")
		key     = flag.String("key", "", "object key of the stored mail")
		enqueue = flag.Bool("enqueue", false, "enqueue an ingest job instead of processing inline")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *bucket == "" {
		*bucket = cfg.MailBucket
	}
	if *bucket == "" || *key == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()

	if *enqueue {
		enqueuer, err := ingest.NewEnqueuer(cfg.QueueRedisURL)
		if err != nil {
			log.Fatalf("Failed to create enqueuer: %v", err)
		}
		defer enqueuer.Close()

		id, err := enqueuer.Enqueue(ctx, *bucket, *key)
		if err != nil {
			log.Fatalf("Failed to enqueue: %v", err)
		}
		log.Printf("enqueued task %s for s3://%s/%s", id, *bucket, *key)
		return
	}

	awsCfg, err := store.LoadAWSConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	client := store.NewClient(awsCfg, cfg)

	processor := ingest.NewProcessor(ingest.NewS3Fetcher(awsCfg), client, nil, log.Default())
	if err := processor.Process(ctx, *bucket, *key); err != nil {
		log.Fatalf("Failed to process mail: %v", err)
	}
}
