// Package store は DynamoDB 上のユーザー・リリースレコードへのアクセスを提供します。
package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/yourusername/bandcamp-timeline/internal/config"
)

// Client は DynamoDB へのアクセスをまとめた構造体です。
// 接続設定は構築時に固定され、以降は変更されません。
type Client struct {
	db           *dynamodb.Client
	userTable    string
	releaseTable string
}

// LoadAWSConfig は設定から AWS クライアント設定を構築します。
func LoadAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"", // セッショントークンは使わない
		)))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}
	return awsCfg, nil
}

// NewClient は Client を作成します。
func NewClient(awsCfg aws.Config, cfg *config.Config) *Client {
	return &Client{
		db:           dynamodb.NewFromConfig(awsCfg),
		userTable:    cfg.UserTable,
		releaseTable: cfg.ReleaseTable,
	}
}
