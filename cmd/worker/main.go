// Package main はメール取り込みワーカーのエントリーポイントです。
package main

import (
	"context"
	"log"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/bandcamp-timeline/internal/config"
	"github.com/yourusername/bandcamp-timeline/internal/ingest"
	"github.com/yourusername/bandcamp-timeline/internal/store"
)

// 再配送されたイベントを判別できればよいので、状態の保持は1日で十分。
const statusTTL = 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	awsCfg, err := store.LoadAWSConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	client := store.NewClient(awsCfg, cfg)

	opt, err := redis.ParseURL(cfg.QueueRedisURL)
	if err != nil {
		log.Fatalf("Failed to parse redis url: %v", err)
	}
	status := ingest.NewStore(redis.NewClient(opt), statusTTL)

	processor := ingest.NewProcessor(ingest.NewS3Fetcher(awsCfg), client, status, log.Default())
	worker, err := ingest.NewWorker(cfg.QueueRedisURL, processor, log.Default())
	if err != nil {
		log.Fatalf("Failed to create worker: %v", err)
	}

	log.Printf("Starting ingest worker")
	if err := worker.Run(); err != nil {
		log.Fatalf("Failed to run worker: %v", err)
	}
}
