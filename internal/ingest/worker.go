package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
)

// Worker は取り込みジョブを処理する Asynq サーバーです。
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor *Processor
	logger    *log.Logger
}

// NewWorker は Worker を作成します。
func NewWorker(redisURL string, processor *Processor, logger *log.Logger) (*Worker, error) {
	if processor == nil {
		return nil, fmt.Errorf("processor is nil")
	}
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}

	server := asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: 4,
			Queues: map[string]int{
				queueName: 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	worker := &Worker{
		server:    server,
		mux:       mux,
		processor: processor,
		logger:    logger,
	}
	mux.HandleFunc(TaskTypeMail, worker.handleMailTask)
	return worker, nil
}

// Run はジョブ処理を開始し、サーバーが停止するまで待機します。
func (w *Worker) Run() error {
	return w.server.Run(w.mux)
}

// Shutdown はサーバーを停止します。
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func (w *Worker) handleMailTask(ctx context.Context, task *asynq.Task) error {
	var payload TaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}
	if payload.Bucket == "" || payload.Key == "" {
		return fmt.Errorf("missing bucket or key in payload")
	}
	return w.processor.Process(ctx, payload.Bucket, payload.Key)
}
