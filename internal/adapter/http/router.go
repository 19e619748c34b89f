package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/vamledger/internal/adapter/http/handler"
	"github.com/iho/vamledger/internal/adapter/http/middleware"
	"github.com/iho/vamledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AuctionHandler *handler.AuctionHandler
	MemberHandler  *handler.MemberHandler
	AdminHandler   *handler.AdminHandler
	HealthHandler  *handler.HealthHandler

	Authenticator    *middleware.Authenticator
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	AllowedOrigins   []string
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.SessionHeader, middleware.IdempotencyKeyHeader},
		ExposedHeaders: []string{middleware.IdempotencyReplayHeader},
		MaxAge:         300,
	}))
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Authenticator != nil {
			r.Use(cfg.Authenticator.Authenticate)
		}
		// Keys are scoped by caller, so this runs after authentication.
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger).Wrap)
		}

		// Auctions
		r.Route("/auctions", func(r chi.Router) {
			r.Get("/", cfg.AuctionHandler.List)
			r.Get("/{auctionID}", cfg.AuctionHandler.Get)
			r.With(middleware.RequireMember).Post("/{auctionID}/bids", cfg.AuctionHandler.PlaceBid)
			r.With(middleware.RequireOperator).Post("/{auctionID}/settle", cfg.AuctionHandler.Settle)
		})

		// Caller's own ledger view
		r.Route("/me", func(r chi.Router) {
			r.Use(middleware.RequireMember)
			r.Get("/balances", cfg.MemberHandler.Balances)
			r.Get("/balances/{token}", cfg.MemberHandler.Balance)
			r.Get("/bids", cfg.MemberHandler.Bids)
		})

		r.With(middleware.RequireOperator).Get("/accounts/{accountID}/balances", cfg.AdminHandler.AccountBalances)

		// Operator tooling
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireOperator)
			r.Post("/auctions", cfg.AdminHandler.CreateAuction)
			r.Post("/auctions/{auctionID}/cancel", cfg.AdminHandler.CancelAuction)
			r.Post("/balances/adjust", cfg.AdminHandler.AdjustBalance)
			r.Post("/reconcile", cfg.AdminHandler.Reconcile)
		})
	})

	return r
}
