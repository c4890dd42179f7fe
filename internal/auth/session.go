package auth

import (
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	// SessionCookieName はセッションクッキーの名前です。
	SessionCookieName = "bandcamp-timeline_session"

	sessionKeyEmail = "user_email"
)

// sessionTTL はクッキーの有効期間です。暗号化レイヤー側で期限切れが強制されます。
var sessionTTL = 24 * time.Hour

// SessionMaxAgeSeconds はクッキーの MaxAge に利用する秒数を返します。
func SessionMaxAgeSeconds() int {
	return int(sessionTTL.Seconds())
}

// ContextUserKey は、ハンドラー間でログイン済みユーザーを共有するためのキーです。
const ContextUserKey = "auth.user"

// SessionUser はセッションに保存される認証済みユーザーです。
type SessionUser struct {
	Email string `json:"email"`
}

// currentUser はセッションから検証済みのユーザーを取り出します。
// クッキーの欠損・破損・期限切れはすべて「セッションなし」として扱います。
func currentUser(c *gin.Context) (SessionUser, bool) {
	session := sessions.Default(c)
	email, ok := session.Get(sessionKeyEmail).(string)
	if !ok || email == "" {
		return SessionUser{}, false
	}
	return SessionUser{Email: email}, true
}
