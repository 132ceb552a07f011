package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/cinelog/internal/metrics"
	"github.com/hitoshi/cinelog/internal/middleware"
)

// HealthChecker はDB疎通確認に必要なインターフェース。*sql.DBが実装する。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	CookieDomain      string
	CookieSecure      bool
	RateLimiter       *middleware.RateLimiter

	// 運用
	HealthChecker    HealthChecker
	MetricsCollector metrics.MetricsCollector
	MetricsGatherer  prometheus.Gatherer

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ドメインサービス
	SearchService    SearchServiceInterface
	WatchlistService WatchlistServiceInterface
	WatchedService   WatchedServiceInterface
	UserService      UserServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → Metrics → CORS → SecurityHeaders → CSRF
//	→（/api/* のみ）Session → RateLimit(General)
//
// /auth/register と /auth/login はセッションミドルウェアの外に配置する。
// /health と /metrics は全ミドルウェアチェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	searchHandler := NewSearchHandler(deps.SearchService)
	watchlistHandler := NewWatchlistHandler(deps.WatchlistService)
	watchedHandler := NewWatchedHandler(deps.WatchedService)
	userHandler := NewUserHandler(deps.UserService)

	// --- 運用ルート（ミドルウェアチェーンの外） ---

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := deps.HealthChecker.PingContext(req.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- アプリケーションルート ---

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewRecoveryMiddleware())
		if deps.Logger != nil {
			r.Use(middleware.NewLoggingMiddleware(deps.Logger))
		}
		if deps.MetricsCollector != nil {
			r.Use(middleware.NewMetricsMiddleware(deps.MetricsCollector))
		}
		r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
		r.Use(middleware.NewSecurityHeadersMiddleware())
		r.Use(middleware.NewCSRFMiddleware(middleware.CSRFConfig{
			CookieSecure: deps.CookieSecure,
			CookieDomain: deps.CookieDomain,
		}))

		// CSRFトークン取得（セッション不要）
		r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(middleware.CSRFConfig{
			CookieSecure: deps.CookieSecure,
			CookieDomain: deps.CookieDomain,
		}))

		// 認証ルート（セッション不要）
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
		})

		// 認証が必要なルート
		// ミドルウェアスタック: Session → RateLimit(General)
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
			r.Use(deps.RateLimiter.GeneralMiddleware())

			// カタログ検索（検索専用レート制限を追加）
			r.With(deps.RateLimiter.SearchMiddleware()).Get("/api/search", searchHandler.Search)

			// ウォッチリスト管理
			r.Route("/api/watchlist", func(r chi.Router) {
				r.Get("/", watchlistHandler.List)
				r.Post("/", watchlistHandler.Add)
				r.Delete("/", watchlistHandler.Remove)
			})

			// 視聴記録管理
			r.Route("/api/watched", func(r chi.Router) {
				r.Get("/", watchedHandler.List)
				r.Post("/", watchedHandler.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.Patch("/", watchedHandler.Update)
					r.Delete("/", watchedHandler.Delete)
				})
			})

			// ユーザー管理
			r.Route("/api/users", func(r chi.Router) {
				r.Delete("/me", userHandler.Withdraw)
			})
		})
	})

	return r
}
