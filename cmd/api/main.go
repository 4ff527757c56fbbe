package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"catalogapi/internal/catalog"
	"catalogapi/internal/config"
	"catalogapi/internal/platform/logging"
	"catalogapi/internal/platform/telemetry"
	"catalogapi/internal/server"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	err = run(cfg, logger)
	if err != nil {
		logger.Error("server error", zap.Error(err))
	}
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	repo, closeRepo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	svc := catalog.NewService(repo)
	router := server.NewRouter(server.Options{
		JWTSecret:          cfg.JWTSecret,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
		MaxBodyBytes:       cfg.MaxBodyBytes,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		EnableHSTS:         cfg.EnableHSTS,
		TrustedProxies:     cfg.TrustedProxies,
		Logger:             logger,
	}, catalog.NewHTTPHandler(svc, logger), svc.Ready)
	defer router.Close()

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.Addr), zap.String("store", cfg.Store))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// openRepository builds the configured store, wrapped in the Redis cache
// when REDIS_ADDR is set.
func openRepository(ctx context.Context, cfg config.Config, logger *zap.Logger) (catalog.Repository, func(), error) {
	var (
		repo    catalog.Repository
		closers []func()
	)

	switch cfg.Store {
	case config.StoreMemory:
		repo = catalog.NewMemoryRepo(catalog.SampleBooks()...)
		logger.Info("using in-memory catalog")
	default:
		pool, err := openDB(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("database connection OK", zap.String("dsn", redactDSN(cfg.DatabaseDSN)))
		closers = append(closers, pool.Close)
		repo = catalog.NewPostgresRepo(pool, cfg.DBTimeout)
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		closers = append(closers, func() { _ = client.Close() })
		repo = catalog.NewRedisCache(repo, client, cfg.CacheTTL, logger)
		logger.Info("redis cache enabled", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.CacheTTL))
	}

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return repo, closeAll, nil
}

func openDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot create db pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("cannot ping database (%s): %w", redactDSN(dsn), err)
	}
	return pool, nil
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
