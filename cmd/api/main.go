// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/yourusername/shop-auth/internal/account"
	"github.com/yourusername/shop-auth/internal/account/postgres"
	"github.com/yourusername/shop-auth/internal/auth"
	"github.com/yourusername/shop-auth/internal/config"
	"github.com/yourusername/shop-auth/internal/crypto"
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
	router.LoadHTMLGlob("web/templates/*.html")

	// セッションストアの設定（クッキー署名鍵は必須）
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   auth.SessionMaxAgeSeconds(),
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteStrictMode,
	})
	router.Use(sessions.Sessions(auth.SessionCookieName, store))

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	// CORS許可オリジンを設定（カンマ区切りの文字列を配列に変換）
	origins := strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowOrigins = origins
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	// アカウントストアの初期化
	accounts, cleanup, err := newAccountStore(cfg)
	if err != nil {
		log.Fatalf("Failed to init account store: %v", err)
	}
	defer cleanup()

	// ルーティングの設定
	setupRoutes(router, cfg, accounts)

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newAccountStore は設定に応じてアカウントストアを初期化します。
// DATABASE_URL が未設定のローカル開発ではインメモリストアで起動します。
func newAccountStore(cfg *config.Config) (account.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Printf("DATABASE_URL is not set, using in-memory account store")
		return account.NewMemoryStore(), func() {}, nil
	}

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return postgres.New(pool), pool.Close, nil
}

// newAttemptLimiter はログイン試行制限の実装を選択します。
func newAttemptLimiter(cfg *config.Config) auth.AttemptLimiter {
	if cfg.RedisURL == "" {
		return auth.NewMemoryAttemptLimiter()
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("Invalid REDIS_URL, falling back to in-memory attempt limiter: %v", err)
		return auth.NewMemoryAttemptLimiter()
	}
	return auth.NewRedisAttemptLimiter(redis.NewClient(opt))
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "shop-auth-api",
		"version": "0.1.0",
	})
}

// handleHome はトップページのハンドラーです。ログイン状態のみをビューへ渡します。
func handleHome(c *gin.Context) {
	_, authenticated := auth.SessionUserID(c)
	c.HTML(http.StatusOK, "index.html", gin.H{"authenticated": authenticated})
}

// handleAccount はログイン済みユーザーのアカウントページのハンドラーです。
func handleAccount(c *gin.Context) {
	c.HTML(http.StatusOK, "account.html", gin.H{"userID": c.GetString(auth.ContextUserKey)})
}

// setupRoutes は認証フローと保護ルートの配線を行います。
func setupRoutes(router *gin.Engine, cfg *config.Config, accounts account.Store) {
	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", handleHealth)

	hasher := crypto.NewBcryptHasher(cfg.BcryptCost)
	manager := auth.NewManager(accounts, hasher, newAttemptLimiter(cfg), log.Default())

	router.GET("/", handleHome)
	router.GET("/signup", manager.GetSignup)
	router.POST("/signup", manager.Signup)
	router.GET("/login", manager.GetLogin)
	router.POST("/login", manager.Login)
	router.POST("/logout", manager.Logout)

	// ログイン必須のページはここにぶら下げる
	protected := router.Group("")
	protected.Use(auth.RequireAuth())
	{
		protected.GET("/account", handleAccount)
	}
}
