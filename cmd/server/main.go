package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"tokopos/backend/internal/cache"
	"tokopos/backend/internal/config"
	"tokopos/backend/internal/domain"
	"tokopos/backend/internal/httpapi"
	"tokopos/backend/internal/logger"
	"tokopos/backend/internal/metrics"
	"tokopos/backend/internal/service"
	"tokopos/backend/internal/store"
	"tokopos/backend/internal/store/memory"
	pgstore "tokopos/backend/internal/store/postgres"
)

type seeder interface {
	Seed(ctx context.Context, products []domain.Product, sales []domain.Sale) error
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logg, err := logger.New(logger.Config{Service: "tokopos", Environment: cfg.AppEnv, Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, closers, err := openRepository(ctx, cfg, logg)
	if err != nil {
		logg.Fatal("repository unavailable", zap.Error(err))
	}

	dashboardCache := cache.DashboardCache(cache.NoopDashboardCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisDashboardCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			logg.Warn("redis unavailable, using noop cache", zap.Error(err))
			_ = redisCache.Close()
		} else {
			dashboardCache = redisCache
			closers = append(closers, redisCache.Close)
			logg.Info("cache: redis", zap.String("addr", cfg.RedisAddr))
		}
	} else {
		logg.Info("cache: noop")
	}

	m := metrics.New("tokopos")
	svc := service.New(repo,
		service.WithLogger(logg),
		service.WithMetrics(m),
		service.WithDashboardCache(dashboardCache, time.Duration(cfg.DashboardCacheTTLSeconds)*time.Second),
		service.WithLowStockThreshold(cfg.LowStockThreshold),
		service.WithTotalPolicy(cfg.SaleTotalPolicy),
	)
	api := httpapi.New(svc, logg, m, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logg.Info("POS backend listening",
			zap.String("addr", cfg.Address()),
			zap.String("sale_total_policy", svc.TotalPolicy()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("server error", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Warn("shutdown error", zap.Error(err))
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logg.Warn("close error", zap.Error(err))
		}
	}

	logg.Info("server stopped")
}

// openRepository selects postgres when DATABASE_URL is set and the embedded
// store otherwise. A configured but unreachable database is fatal; there is
// no silent in-memory fallback.
func openRepository(ctx context.Context, cfg config.Config, logg *zap.Logger) (store.Repository, []func() error, error) {
	closers := make([]func() error, 0, 2)

	if cfg.DatabaseURL == "" {
		repo := memory.New()
		if err := seedIfEnabled(ctx, cfg, repo); err != nil {
			return nil, nil, err
		}
		logg.Info("repository: in-memory", zap.Bool("seeded", cfg.SeedData))
		return repo, closers, nil
	}

	pg, err := pgstore.New(ctx, cfg.DatabaseURL, pgstore.Options{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: %w", err)
	}
	closers = append(closers, pg.Close)

	if cfg.AutoMigrate {
		if err := pg.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, nil, err
		}
	}
	if err := seedIfEnabled(ctx, cfg, pg); err != nil {
		_ = pg.Close()
		return nil, nil, err
	}

	logg.Info("repository: postgres", zap.Bool("migrated", cfg.AutoMigrate), zap.Bool("seeded", cfg.SeedData))
	return pg, closers, nil
}

func seedIfEnabled(ctx context.Context, cfg config.Config, s seeder) error {
	if !cfg.SeedData {
		return nil
	}
	if err := s.Seed(ctx, store.SeedProducts(), store.SeedSales()); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	return nil
}
