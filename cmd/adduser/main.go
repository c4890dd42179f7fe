// Package main はユーザーを登録するCLIツールです。
// ランダムなパスワードを生成し、argon2ハッシュをユーザーテーブルへ保存します。
// 生成したパスワードは標準出力へ表示されるので、そのまま利用者へ渡します。
package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"os"

	"github.com/yourusername/bandcamp-timeline/internal/auth"
	"github.com/yourusername/bandcamp-timeline/internal/config"
	"github.com/yourusername/bandcamp-timeline/internal/store"
)

const (
	passwordLength = 16
	passwordChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: adduser <email>")
		os.Exit(2)
	}
	email := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.PasswordSalt == "" {
		log.Fatalf("PASSWORD_SALT is required")
	}

	password, err := randomPassword(passwordLength)
	if err != nil {
		log.Fatalf("Failed to generate password: %v", err)
	}
	hash := auth.HashPassword(password, cfg.PasswordSalt)

	ctx := context.Background()
	awsCfg, err := store.LoadAWSConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	client := store.NewClient(awsCfg, cfg)

	if err := client.PutUser(ctx, email, hash); err != nil {
		log.Fatalf("Failed to put user: %v", err)
	}

	fmt.Printf("email: %s\n", email)
	fmt.Printf("password: %s\n", password)
}

// randomPassword は英数字のランダムなパスワードを生成します。
func randomPassword(length int) (string, error) {
	buf := make([]byte, length)
	max := big.NewInt(int64(len(passwordChars)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = passwordChars[n.Int64()]
	}
	return string(buf), nil
}
