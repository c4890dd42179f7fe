// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"crypto/sha256"
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/bandcamp-timeline/internal/auth"
	"github.com/yourusername/bandcamp-timeline/internal/config"
	"github.com/yourusername/bandcamp-timeline/internal/release"
	"github.com/yourusername/bandcamp-timeline/internal/store"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()

	// セッションストアの設定（クッキーは署名に加えて暗号化も行う。
	// ブロック鍵はAES-256の長さに合わせて秘密鍵から導出する）
	blockKey := sha256.Sum256([]byte(cfg.CookiePassword))
	sessionStore := cookie.NewStore([]byte(cfg.CookiePassword), blockKey[:])
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   auth.SessionMaxAgeSeconds(),
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(auth.SessionCookieName, sessionStore))

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	// CORS許可オリジンを設定（カンマ区切りの文字列を配列に変換）
	origins := strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowOrigins = origins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
	}
	router.Use(cors.New(corsConfig))

	// DynamoDBクライアントの構築
	awsCfg, err := store.LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	storeClient := store.NewClient(awsCfg, cfg)

	// ルーティングの設定
	setupRoutes(router, cfg, storeClient)

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "bandcamp-timeline-api",
		"version": "0.1.0",
	})
}

// setupRoutes は API グループと認証周りの配線を行います。
func setupRoutes(router *gin.Engine, cfg *config.Config, storeClient *store.Client) {
	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", handleHealth)

	// 画面は静的ファイルをそのまま配信する
	router.StaticFile("/", "./web/index.html")
	router.Static("/static", "./web/static")

	authManager := auth.NewManager(cfg, storeClient)

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/login", authManager.Login)
			authRoutes.POST("/logout", authManager.Logout)
			authRoutes.POST("/checkSession", authManager.CheckSession)
		}

		releaseRoutes := api.Group("/release")
		releaseRoutes.Use(authManager.RequireLogin())
		{
			releaseRoutes.GET("/list", release.ListHandler(storeClient))
		}
	}
}
