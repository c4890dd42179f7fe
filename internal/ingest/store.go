package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const statusKeyPrefix = "mail:"

// Status は取り込み処理の結果を表します。
type Status string

const (
	StatusDone   Status = "done"
	StatusFailed Status = "error"
)

// Record は1オブジェクトの取り込み結果です。
type Record struct {
	Key       string    `json:"key"`
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store は取り込み状態を Redis に保存します。
// 通知イベントが再配送された場合の二重取り込みを防ぐために使います。
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore は Store を作成します。
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{
		rdb: rdb,
		ttl: ttl,
	}
}

// Get は取り込み状態を取得します。記録がない場合は nil を返します。
func (s *Store) Get(ctx context.Context, key string) (*Record, error) {
	if key == "" {
		return nil, fmt.Errorf("key is required")
	}
	data, err := s.rdb.Get(ctx, statusKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// MarkDone は取り込み完了を記録します。
func (s *Store) MarkDone(ctx context.Context, key string) error {
	return s.put(ctx, &Record{
		Key:    key,
		Status: StatusDone,
	})
}

// MarkFailed は取り込み失敗を記録します。
func (s *Store) MarkFailed(ctx context.Context, key, message string) error {
	return s.put(ctx, &Record{
		Key:    key,
		Status: StatusFailed,
		Error:  message,
	})
}

func (s *Store) put(ctx context.Context, record *Record) error {
	if record.Key == "" {
		return fmt.Errorf("record key is required")
	}
	record.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, statusKey(record.Key), payload, s.ttl).Err()
}

func statusKey(key string) string {
	return statusKeyPrefix + key
}
