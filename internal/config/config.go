// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// 認証設定
	CookiePassword string // セッションクッキーの暗号化・署名鍵
	PasswordSalt   string // argon2ハッシュに使う固定ソルト

	// AWS設定
	AWSAccessKeyID     string // DynamoDB/S3用アクセスキー
	AWSSecretAccessKey string // DynamoDB/S3用シークレットキー
	AWSRegion          string // 利用リージョン

	// テーブル/バケット設定
	UserTable    string // ユーザーテーブル名
	ReleaseTable string // リリーステーブル名
	MailBucket   string // 受信メールが保存されるS3バケット名

	// ジョブ/キュー設定
	QueueRedisURL string // Asynq用Redis接続URL
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFile()

	config := &Config{
		// サーバー設定
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		// CORS設定
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),

		// 認証設定
		CookiePassword: getEnv("COOKIE_PASSWORD", ""),
		PasswordSalt:   getEnv("PASSWORD_SALT", ""),

		// AWS設定
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSRegion:          getEnv("AWS_REGION", "ap-northeast-1"),

		// テーブル/バケット設定
		UserTable:    getEnv("USER_TABLE", "bandcamp-timeline_user"),
		ReleaseTable: getEnv("RELEASE_TABLE", "bandcamp_release"),
		MailBucket:   getEnv("MAIL_BUCKET", ""),

		// ジョブ/キュー設定
		QueueRedisURL: getEnv("QUEUE_REDIS_URL", "redis://127.0.0.1:6379/0"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	// ローカル開発では認証設定は任意
	// 本番環境では厳格にチェックする想定
	if c.GinMode == "release" {
		if c.CookiePassword == "" {
			return fmt.Errorf("COOKIE_PASSWORD is required in release mode")
		}
		if c.PasswordSalt == "" {
			return fmt.Errorf("PASSWORD_SALT is required in release mode")
		}
		if c.AWSAccessKeyID == "" {
			return fmt.Errorf("AWS_ACCESS_KEY_ID is required in release mode")
		}
		if c.AWSSecretAccessKey == "" {
			return fmt.Errorf("AWS_SECRET_ACCESS_KEY is required in release mode")
		}
	}

	return nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
