// Package release はリリース一覧APIを提供します。
package release

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/bandcamp-timeline/internal/auth"
	"github.com/yourusername/bandcamp-timeline/internal/store"
)

// Lister は所有者メールアドレスによるリリース検索を抽象化します。
type Lister interface {
	QueryReleasesByOwner(ctx context.Context, email string) ([]store.Release, error)
}

// ListHandler は GET /api/release/list のハンドラーを返します。
// セッションのユーザーが所有するリリースのみを日付の新しい順で返します。
func ListHandler(lister Lister) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := c.Get(auth.ContextUserKey)
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		sessionUser, ok := user.(auth.SessionUser)
		if !ok || sessionUser.Email == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		releases, err := lister.QueryReleasesByOwner(c.Request.Context(), sessionUser.Email)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		if releases == nil {
			// ヒットなしはエラーではなく空リスト
			releases = []store.Release{}
		}

		SortByDateDesc(releases)
		c.JSON(http.StatusOK, gin.H{"releases": releases})
	}
}
