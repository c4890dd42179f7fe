package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/bandcamp-timeline/internal/config"
	"github.com/yourusername/bandcamp-timeline/internal/store"
)

const testSalt = "pepper0123456789"

type stubUserStore struct {
	users []store.User
	err   error
}

func (s *stubUserStore) QueryUsersByEmail(ctx context.Context, email string) ([]store.User, error) {
	return s.users, s.err
}

func newTestRouter(users UserStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{PasswordSalt: testSalt}

	router := gin.New()
	sessionStore := cookie.NewStore([]byte("test-cookie-secret"))
	router.Use(sessions.Sessions(SessionCookieName, sessionStore))

	manager := NewManager(cfg, users)
	router.POST("/api/auth/login", manager.Login)
	router.POST("/api/auth/logout", manager.Logout)
	router.POST("/api/auth/checkSession", manager.CheckSession)
	return router
}

func postJSON(router *gin.Engine, path string, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func userBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		User SessionUser `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body %q: %v", rec.Body.String(), err)
	}
	return body.User.Email
}

func TestLoginMissingFields(t *testing.T) {
	users := &stubUserStore{err: errors.New("store must not be queried")}
	router := newTestRouter(users)

	for _, body := range []string{
		`{}`,
		`{"email":"a@b.com"}`,
		`{"password":"correct"}`,
		`not json`,
	} {
		rec := postJSON(router, "/api/auth/login", body, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body=%q: status = %d, want 400", body, rec.Code)
		}
		if len(rec.Result().Cookies()) != 0 {
			t.Fatalf("body=%q: session cookie must not be set", body)
		}
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	router := newTestRouter(&stubUserStore{})

	rec := postJSON(router, "/api/auth/login", `{"email":"a@b.com","password":"correct"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestLoginStoreError(t *testing.T) {
	router := newTestRouter(&stubUserStore{err: errors.New("dynamodb unavailable")})

	rec := postJSON(router, "/api/auth/login", `{"email":"a@b.com","password":"correct"}`, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestLoginMissingPasswordHash(t *testing.T) {
	router := newTestRouter(&stubUserStore{
		users: []store.User{{Email: aws.String("a@b.com")}},
	})

	rec := postJSON(router, "/api/auth/login", `{"email":"a@b.com","password":"correct"}`, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	hash := HashPassword("correct", testSalt)
	router := newTestRouter(&stubUserStore{
		users: []store.User{{Email: aws.String("a@b.com"), PasswordHash: &hash}},
	})

	rec := postJSON(router, "/api/auth/login", `{"email":"a@b.com","password":"wrong"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestLoginSuccess(t *testing.T) {
	hash := HashPassword("correct", testSalt)
	router := newTestRouter(&stubUserStore{
		users: []store.User{{Email: aws.String("a@b.com"), PasswordHash: &hash}},
	})

	rec := postJSON(router, "/api/auth/login", `{"email":"a@b.com","password":"correct"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if email := userBody(t, rec); email != "a@b.com" {
		t.Fatalf("user.email = %q, want a@b.com", email)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie to be set")
	}
	if cookies[0].Name != SessionCookieName {
		t.Fatalf("cookie name = %q, want %q", cookies[0].Name, SessionCookieName)
	}
}

func TestCheckSessionAfterLogin(t *testing.T) {
	hash := HashPassword("correct", testSalt)
	router := newTestRouter(&stubUserStore{
		users: []store.User{{Email: aws.String("a@b.com"), PasswordHash: &hash}},
	})

	login := postJSON(router, "/api/auth/login", `{"email":"a@b.com","password":"correct"}`, nil)
	if login.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200", login.Code)
	}

	rec := postJSON(router, "/api/auth/checkSession", "", login.Result().Cookies())
	if rec.Code != http.StatusOK {
		t.Fatalf("checkSession status = %d, want 200", rec.Code)
	}
	if email := userBody(t, rec); email != "a@b.com" {
		t.Fatalf("user.email = %q, want a@b.com", email)
	}
}

func TestCheckSessionWithoutCookie(t *testing.T) {
	router := newTestRouter(&stubUserStore{})

	rec := postJSON(router, "/api/auth/checkSession", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCheckSessionWithTamperedCookie(t *testing.T) {
	router := newTestRouter(&stubUserStore{})

	tampered := []*http.Cookie{{Name: SessionCookieName, Value: "garbage"}}
	rec := postJSON(router, "/api/auth/checkSession", "", tampered)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	hash := HashPassword("correct", testSalt)
	router := newTestRouter(&stubUserStore{
		users: []store.User{{Email: aws.String("a@b.com"), PasswordHash: &hash}},
	})

	login := postJSON(router, "/api/auth/login", `{"email":"a@b.com","password":"correct"}`, nil)

	logout := postJSON(router, "/api/auth/logout", "", login.Result().Cookies())
	if logout.Code != http.StatusOK {
		t.Fatalf("logout status = %d, want 200", logout.Code)
	}

	// ログアウト後に発行された破棄済みクッキーではセッションが復元されないこと
	rec := postJSON(router, "/api/auth/checkSession", "", logout.Result().Cookies())
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("checkSession after logout status = %d, want 401", rec.Code)
	}
}

func TestLogoutWithoutSession(t *testing.T) {
	router := newTestRouter(&stubUserStore{})

	rec := postJSON(router, "/api/auth/logout", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
