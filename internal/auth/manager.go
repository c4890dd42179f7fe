// Package auth はログイン・ログアウト・セッション確認のハンドラーを提供します。
package auth

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/bandcamp-timeline/internal/config"
	"github.com/yourusername/bandcamp-timeline/internal/store"
)

// UserStore は認証に必要なユーザー検索を抽象化します。
type UserStore interface {
	QueryUsersByEmail(ctx context.Context, email string) ([]store.User, error)
}

// Manager は認証処理をまとめた構造体です。
type Manager struct {
	cfg   *config.Config
	users UserStore
}

// NewManager は認証マネージャーを作成します。
func NewManager(cfg *config.Config, users UserStore) *Manager {
	return &Manager{
		cfg:   cfg,
		users: users,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login は /api/auth/login のハンドラーです。
// 資格情報をストアのレコードに対して検証し、成功時にセッションへユーザーを書き込みます。
func (m *Manager) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		// 入力不足のときはストアへ問い合わせない
		c.Status(http.StatusBadRequest)
		return
	}

	users, err := m.users.QueryUsersByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(users) == 0 {
		c.Status(http.StatusUnauthorized)
		return
	}

	// 同一メールのレコードが複数返るのはテーブルが不整合な場合のみ。先頭のみを使う。
	passwordHash := users[0].PasswordHash
	if passwordHash == nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	ok, err := VerifyPassword(*passwordHash, req.Password, m.cfg.PasswordSalt)
	if err != nil {
		// 保存済みハッシュが解釈できないのはレコードの不整合
		c.Status(http.StatusInternalServerError)
		return
	}
	if !ok {
		c.Status(http.StatusUnauthorized)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionKeyEmail, req.Email)
	if err := session.Save(); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": SessionUser{Email: req.Email}})
}

// Logout は /api/auth/logout のハンドラーです。
// セッションはクッキーのみに存在するため、破棄するのはクッキーだけです。
func (m *Manager) Logout(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		c.Status(http.StatusUnauthorized)
		return
	}

	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusOK)
}

// CheckSession は /api/auth/checkSession のハンドラーです。ストアへはアクセスしません。
func (m *Manager) CheckSession(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.Status(http.StatusUnauthorized)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// RequireLogin はセッションを検証するミドルウェアを返します。
// 検証済みのユーザーはコンテキスト経由で後続ハンドラーへ渡します。
func (m *Manager) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set(ContextUserKey, user)
		c.Next()
	}
}
