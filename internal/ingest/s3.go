package ingest

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Fetcher は S3 から保存済みメールオブジェクトを取得します。
type S3Fetcher struct {
	client *s3.Client
}

// NewS3Fetcher は S3Fetcher を作成します。
func NewS3Fetcher(awsCfg aws.Config) *S3Fetcher {
	return &S3Fetcher{client: s3.NewFromConfig(awsCfg)}
}

// FetchObject はオブジェクトの内容をすべて読み込んで返します。
func (f *S3Fetcher) FetchObject(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", bucket, key, err)
	}
	return data, nil
}
