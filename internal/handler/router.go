package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/firstsportz/newsapi/internal/metrics"
	"github.com/firstsportz/newsapi/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionResolver   middleware.SessionResolver
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	Collector         metrics.MetricsCollector
	Gatherer          prometheus.Gatherer

	// サービス
	AuthService     AuthServiceInterface
	ArticleService  ArticleServiceInterface
	SearchService   SearchServiceInterface
	BookmarkService BookmarkServiceInterface
	UserService     UserServiceInterface
	Notifications   NotificationReaderInterface

	// アバター静的配信
	AvatarDir     string
	AvatarBaseURL string

	// ヘルスチェック
	HealthCheck func() error
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging →（保護ルートのみ）Auth → RateLimit
//
// 認証不要ルート（/auth/*、/articles/all-news、/articles/todays-news、/health、/metrics）は
// 認証・レート制限の外に配置する。todays-newsのみ任意認証を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Collector))

	authHandler := NewAuthHandler(deps.AuthService)
	articleHandler := NewArticleHandler(deps.ArticleService, deps.SearchService)
	bookmarkHandler := NewBookmarkHandler(deps.BookmarkService)
	userHandler := NewUserHandler(deps.UserService, deps.Notifications)

	// --- 認証不要のルート ---

	r.Route("/auth", func(r chi.Router) {
		r.Post("/google-signin", authHandler.GoogleSignIn)
		r.Post("/login", authHandler.Login)
		r.Post("/forgot-password", authHandler.ForgotPassword)
		r.Post("/reset-password", authHandler.ResetPassword)
	})

	r.Get("/articles/all-news", articleHandler.AllNews)

	// todays-newsはBearerトークンがあれば検索履歴を同梱する（無くても200）
	r.With(middleware.NewOptionalAuthMiddleware(deps.SessionResolver)).
		Get("/articles/todays-news", articleHandler.TodaysNews)

	r.Get("/health", newHealthHandler(deps.HealthCheck))
	r.Handle("/metrics", metrics.Handler(deps.Gatherer))

	// アバター画像の静的配信
	if deps.AvatarDir != "" {
		fileServer := http.StripPrefix(deps.AvatarBaseURL, http.FileServer(http.Dir(deps.AvatarDir)))
		r.Get(deps.AvatarBaseURL+"/*", fileServer.ServeHTTP)
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.SessionResolver))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Post("/auth/logout", authHandler.Logout)

		r.Route("/articles", func(r chi.Router) {
			// 検索は専用レート制限を追加
			r.With(deps.RateLimiter.SearchMiddleware()).Post("/search", articleHandler.Search)

			r.Post("/addbookmark", bookmarkHandler.AddBookmark)
			r.Post("/removebookmark", bookmarkHandler.RemoveBookmark)
			r.Get("/bookmarkslist", bookmarkHandler.ListBookmarks)
			r.Post("/addToHistory", bookmarkHandler.AddToHistory)
			r.Get("/fetchhistory", bookmarkHandler.FetchHistory)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/categories/add", userHandler.AddCategories)
			r.Put("/categories/update", userHandler.UpdateCategories)
			r.Post("/upload-avatar", userHandler.UploadAvatar)
			r.Post("/delete-avatar", userHandler.DeleteAvatar)
			r.Post("/device-token", userHandler.RegisterDeviceToken)
			r.Get("/notifications", userHandler.ListNotifications)
			r.Post("/update-read-status", userHandler.UpdateReadStatus)
		})
	})

	return r
}

// newHealthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(check func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(); err != nil {
				writeJSONResponse(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unhealthy",
				})
				return
			}
		}
		writeJSONResponse(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	}
}
