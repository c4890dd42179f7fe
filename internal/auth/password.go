package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// 新規ハッシュ生成時のパラメータ。既存レコードと同じ値を使います。
const (
	hashMemory      = 4096
	hashTime        = 3
	hashParallelism = 1
	hashKeyLength   = 32
)

var (
	// ErrMalformedHash はエンコード済みハッシュの形式が不正な場合のエラーです。
	ErrMalformedHash = errors.New("auth: malformed encoded hash")
	// ErrUnsupportedVariant は対応していない argon2 バリアントのエラーです。
	ErrUnsupportedVariant = errors.New("auth: unsupported argon2 variant")
	// ErrUnsupportedVersion は対応していない argon2 バージョンのエラーです。
	ErrUnsupportedVersion = errors.New("auth: unsupported argon2 version")
)

type hashParams struct {
	variant     string
	memory      uint32
	time        uint32
	parallelism uint8
	digest      []byte
}

// VerifyPassword は平文パスワードをエンコード済みハッシュに対して検証します。
// パラメータ（m, t, p, 出力長）はハッシュに埋め込まれた値を使い、
// ソルトにはサーバー設定の固定値を使用します。
func VerifyPassword(encoded, password, salt string) (bool, error) {
	params, err := parseEncodedHash(encoded)
	if err != nil {
		return false, err
	}

	var computed []byte
	switch params.variant {
	case "argon2i":
		computed = argon2.Key([]byte(password), []byte(salt),
			params.time, params.memory, params.parallelism, uint32(len(params.digest)))
	case "argon2id":
		computed = argon2.IDKey([]byte(password), []byte(salt),
			params.time, params.memory, params.parallelism, uint32(len(params.digest)))
	default:
		return false, ErrUnsupportedVariant
	}

	return subtle.ConstantTimeCompare(computed, params.digest) == 1, nil
}

// HashPassword はエンコード済みの argon2i ハッシュを生成します。
func HashPassword(password, salt string) string {
	digest := argon2.Key([]byte(password), []byte(salt),
		hashTime, hashMemory, hashParallelism, hashKeyLength)
	return fmt.Sprintf("$argon2i$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, hashMemory, hashTime, hashParallelism,
		base64.RawStdEncoding.EncodeToString([]byte(salt)),
		base64.RawStdEncoding.EncodeToString(digest))
}

// parseEncodedHash は $argon2i$v=19$m=4096,t=3,p=1$<salt>$<hash> 形式を解析します。
func parseEncodedHash(encoded string) (*hashParams, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, ErrMalformedHash
	}
	if version != argon2.Version {
		return nil, ErrUnsupportedVersion
	}

	params := &hashParams{variant: parts[1]}
	var parallelism uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d",
		&params.memory, &params.time, &parallelism); err != nil {
		return nil, ErrMalformedHash
	}
	params.parallelism = uint8(parallelism)

	digest, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(digest) == 0 {
		return nil, ErrMalformedHash
	}
	params.digest = digest

	return params, nil
}
