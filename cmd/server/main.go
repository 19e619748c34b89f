package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/vamledger/internal/adapter/http"
	"github.com/iho/vamledger/internal/adapter/http/handler"
	"github.com/iho/vamledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/vamledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/vamledger/internal/adapter/repository/redis"
	"github.com/iho/vamledger/internal/infrastructure/auth"
	"github.com/iho/vamledger/internal/infrastructure/config"
	"github.com/iho/vamledger/internal/infrastructure/eventpublisher"
	"github.com/iho/vamledger/internal/infrastructure/logger"
	"github.com/iho/vamledger/internal/infrastructure/metrics"
	"github.com/iho/vamledger/internal/infrastructure/postgres"
	"github.com/iho/vamledger/internal/infrastructure/redis"
	"github.com/iho/vamledger/internal/infrastructure/scheduler"
	"github.com/iho/vamledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log.Logger); err != nil {
		log.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.RunMigrations {
		if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log).Up(); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	auctionRepo := postgresRepo.NewAuctionRepository(pool)
	bidRepo := postgresRepo.NewBidRepository(pool)
	balanceRepo := postgresRepo.NewBalanceRepository(pool)
	outboxRepo := newOutboxRepository(cfg, pool, log)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log)
	clock := usecase.SystemClock{}

	// Initialize use cases
	settlementDeps := usecase.SettlementDeps{
		TxManager:   txManager,
		AuctionRepo: auctionRepo,
		BidRepo:     bidRepo,
		BalanceRepo: balanceRepo,
		OutboxRepo:  outboxRepo,
		IDGen:       idGen,
		Retrier:     retrier,
		Clock:       clock,
		Metrics:     m,
		Logger:      log,
	}
	ledgerUC := usecase.NewLedgerUseCase(balanceRepo, clock, m)
	auctionUC := usecase.NewAuctionUseCase(txManager, auctionRepo, bidRepo, outboxRepo, idGen, clock)
	bidUC := usecase.NewBidUseCase(usecase.BidUseCaseDeps{
		TxManager:   txManager,
		AuctionRepo: auctionRepo,
		BidRepo:     bidRepo,
		BalanceRepo: balanceRepo,
		OutboxRepo:  outboxRepo,
		IDGen:       idGen,
		Retrier:     retrier,
		Clock:       clock,
		MaxAmount:   cfg.MaxBidAmount,
		Metrics:     m,
		Logger:      log,
	})
	settlementUC := usecase.NewSettlementUseCase(settlementDeps)
	reconciliationUC := usecase.NewReconciliationUseCase(settlementDeps)

	// HTTP surface
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AuctionHandler:   handler.NewAuctionHandler(auctionUC, bidUC, settlementUC, log),
		MemberHandler:    handler.NewMemberHandler(ledgerUC, auctionUC, log),
		AdminHandler:     handler.NewAdminHandler(auctionUC, ledgerUC, reconciliationUC, log),
		HealthHandler:    handler.NewHealthHandler(pool, redisPinger(redisClient)),
		Authenticator:    middleware.NewAuthenticator(newTokenVerifier(cfg), redisRepo.NewSessionStore(redisClient), m, log),
		IdempotencyStore: redisRepo.NewIdempotencyStore(redisClient),
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		Logger:           log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error { return rateLimiter.Run(gctx) })

	if cfg.SchedulerEnabled {
		sched := scheduler.New(log, m, cfg.JobTimeout)
		if err := sched.Add("settle_ended", cfg.SettlementSchedule, func(ctx context.Context) error {
			n, err := settlementUC.SettleEnded(ctx)
			if n > 0 {
				log.Info().Int("settled", n).Msg("settled ended auctions")
			}
			return err
		}); err != nil {
			return err
		}
		if err := sched.Add("reconcile", cfg.ReconcileSchedule, func(ctx context.Context) error {
			_, err := reconciliationUC.Run(ctx)
			return err
		}); err != nil {
			return err
		}
		g.Go(func() error { return sched.Run(gctx) })
	}

	if cfg.OutboxEnabled {
		publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: outboxRepo,
			Publisher:  eventpublisher.NewLogPublisher(log),
			Logger:     log,
			Metrics:    m,
			Clock:      clock,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxPollInterval,
			Retention:  cfg.OutboxRetention,
		})
		g.Go(func() error {
			if err := publisher.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	return g.Wait()
}

// newOutboxRepository returns the Postgres outbox, or a no-op one when event
// publishing is disabled so nothing accumulates unread.
func newOutboxRepository(cfg *config.Config, pool *pgxpool.Pool, log zerolog.Logger) usecase.OutboxRepository {
	if !cfg.OutboxEnabled {
		return postgresRepo.NewNullOutboxRepository(log)
	}
	return postgresRepo.NewOutboxRepository(pool)
}

// newTokenVerifier returns nil when no JWT secret is configured, which turns
// bearer authentication off.
func newTokenVerifier(cfg *config.Config) middleware.TokenVerifier {
	if !cfg.AuthTokensEnabled() {
		return nil
	}
	return auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
}

func redisPinger(client *goredis.Client) handler.PingerFunc {
	return func(ctx context.Context) error {
		return redis.Ping(ctx, client)
	}
}
