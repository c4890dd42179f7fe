// Package ingest は S3 に保存された通知メールを取り込み、リリースレコードとして登録します。
package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// TaskTypeMail はメール取り込みジョブのタスク種別です。
	TaskTypeMail = "mail:ingest"

	queueName = "mail"
)

// TaskPayload はメール取り込みジョブのペイロードです。
type TaskPayload struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// taskID は同じオブジェクトに対して常に同じIDを返します。
// 通知イベントが再配送されても、asynq のID重複チェックで二重投入を弾けます。
func taskID(bucket, key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("s3://"+bucket+"/"+key)).String()
}

// Enqueuer は取り込みジョブをキューへ投入します。
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer は Enqueuer を作成します。
func NewEnqueuer(redisURL string) (*Enqueuer, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return &Enqueuer{client: asynq.NewClient(opt)}, nil
}

// Enqueue はメールオブジェクト1件の取り込みジョブを投入し、タスクIDを返します。
func (e *Enqueuer) Enqueue(ctx context.Context, bucket, key string) (string, error) {
	if bucket == "" || key == "" {
		return "", fmt.Errorf("bucket and key are required")
	}

	body, err := json.Marshal(&TaskPayload{Bucket: bucket, Key: key})
	if err != nil {
		return "", err
	}

	task := asynq.NewTask(TaskTypeMail, body,
		asynq.Queue(queueName),
		asynq.TaskID(taskID(bucket, key)),
	)
	info, err := e.client.EnqueueContext(ctx, task, asynq.MaxRetry(1))
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

// Close はキュー接続を閉じます。
func (e *Enqueuer) Close() error {
	return e.client.Close()
}
