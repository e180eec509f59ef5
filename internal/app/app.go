// Package app はアプリケーションの起動・初期化・依存関係のワイヤリングを行う。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/firstsportz/newsapi/internal/article"
	"github.com/firstsportz/newsapi/internal/auth"
	"github.com/firstsportz/newsapi/internal/bookmark"
	"github.com/firstsportz/newsapi/internal/config"
	"github.com/firstsportz/newsapi/internal/database"
	"github.com/firstsportz/newsapi/internal/handler"
	"github.com/firstsportz/newsapi/internal/logger"
	"github.com/firstsportz/newsapi/internal/mail"
	"github.com/firstsportz/newsapi/internal/metrics"
	"github.com/firstsportz/newsapi/internal/middleware"
	"github.com/firstsportz/newsapi/internal/notification"
	"github.com/firstsportz/newsapi/internal/push"
	"github.com/firstsportz/newsapi/internal/ranking"
	"github.com/firstsportz/newsapi/internal/repository"
	"github.com/firstsportz/newsapi/internal/search"
	"github.com/firstsportz/newsapi/internal/security"
	"github.com/firstsportz/newsapi/internal/storage"
	"github.com/firstsportz/newsapi/internal/user"
	"github.com/firstsportz/newsapi/internal/worker/cleanup"
	"github.com/firstsportz/newsapi/internal/worker/ingest"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	identRepo := repository.NewPostgresIdentityRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)
	articleRepo := repository.NewPostgresArticleRepo(db)
	categoryRepo := repository.NewPostgresCategoryRepo(db)
	tagRepo := repository.NewPostgresTagRepo(db)
	notificationRepo := repository.NewPostgresNotificationRepo(db)

	// 3. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 4. ドメインサービスの初期化
	httpClient := &http.Client{Timeout: 10 * time.Second}

	verifier := auth.NewGoogleTokenVerifier(httpClient, cfg.GoogleClientID)
	mailer := mail.NewBrevoClient(httpClient, slog.Default(), cfg.BrevoAPIKey, cfg.MailSenderName, cfg.MailSenderEmail)
	authService := auth.NewService(
		verifier, userRepo, identRepo, sessionRepo, mailer,
		auth.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge},
	)

	rankingService := ranking.NewRankingService(tagRepo)
	articleService := article.NewArticleService(articleRepo, userRepo, rankingService)

	resolver := search.NewCategoryResolver(categoryRepo)
	searchService := search.NewSearchService(articleRepo, userRepo, resolver, collector)

	bookmarkService := bookmark.NewBookmarkService(articleRepo, userRepo)

	avatarStorage, err := storage.NewDiskAvatarStorage(cfg.AvatarDir, cfg.AvatarBaseURL)
	if err != nil {
		return fmt.Errorf("failed to init avatar storage: %w", err)
	}
	userService := user.NewService(userRepo, categoryRepo, avatarStorage)

	pushSender := push.NewFCMClient(httpClient, slog.Default(), cfg.FCMEndpoint, cfg.FCMServerKey)
	notificationService := notification.NewNotificationService(
		userRepo, articleRepo, notificationRepo, pushSender,
		collector, slog.Default(), cfg.FanoutMaxConcurrent,
	)

	// 5. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitSearch),
	)
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		SessionResolver:   authService,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Logger:            slog.Default(),
		Collector:         collector,
		Gatherer:          registry,

		AuthService:     authService,
		ArticleService:  articleService,
		SearchService:   searchService,
		BookmarkService: bookmarkService,
		UserService:     userService,
		Notifications:   notificationService,

		AvatarDir:     cfg.AvatarDir,
		AvatarBaseURL: cfg.AvatarBaseURL,

		HealthCheck: db.Ping,
	}

	router := handler.NewRouter(deps)

	// 6. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// DB接続を開き、取り込みスケジューラとクリーンアップジョブを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (worker)")

	// 2. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)
	articleRepo := repository.NewPostgresArticleRepo(db)
	sourceRepo := repository.NewPostgresSourceRepo(db)
	notificationRepo := repository.NewPostgresNotificationRepo(db)

	// 3. セキュリティ・メトリクスの初期化
	ssrfGuard := security.NewSSRFGuard()
	sanitizer := security.NewTextSanitizer()
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 4. 通知ファンアウトの初期化
	httpClient := &http.Client{Timeout: 10 * time.Second}
	pushSender := push.NewFCMClient(httpClient, slog.Default(), cfg.FCMEndpoint, cfg.FCMServerKey)
	notificationService := notification.NewNotificationService(
		userRepo, articleRepo, notificationRepo, pushSender,
		collector, slog.Default(), cfg.FanoutMaxConcurrent,
	)

	// 5. フェッチャーとスケジューラの初期化
	fetcher := ingest.NewFetcher(
		articleRepo, sourceRepo, sanitizer, ssrfGuard, notificationService,
		collector, slog.Default(), cfg.IngestTimeout, cfg.IngestMaxSize, cfg.IngestInterval,
	)
	scheduler := ingest.NewScheduler(
		sourceRepo, fetcher, slog.Default(), cfg.IngestMaxConcurrent,
	)

	// 6. クリーンアップジョブの初期化
	cleanupJob := cleanup.NewCleanupJob(db, sessionRepo, slog.Default())

	// 7. ワーカー用メトリクスサーバーの初期化（APIサーバーとは別ポート）
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler(registry))
	metricsServer := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: metricsMux,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Duration("ingest_interval", cfg.IngestInterval),
		slog.Int("max_concurrent", cfg.IngestMaxConcurrent),
	)

	// メトリクスサーバーをバックグラウンドで起動
	go func() {
		slog.Info("worker metrics server starting",
			slog.String("addr", metricsServer.Addr),
		)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server listen error", slog.String("error", err.Error()))
		}
	}()

	// クリーンアップジョブを日次でバックグラウンド実行
	go cleanupJob.Start(ctx, 24*time.Hour)

	// 取り込みスケジューラをメインgoroutineで実行（ブロッキング）
	scheduler.Start(ctx, cfg.IngestInterval)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("metrics server shutdown failed", slog.String("error", err.Error()))
	}

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
