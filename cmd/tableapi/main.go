package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"Storefront/db"
	"Storefront/internal/config"
	"Storefront/internal/session"
	"Storefront/internal/tables"
	"Storefront/pkg/kit"
)

const (
	service       = "tableapi"
	sweepInterval = time.Minute
)

func main() {
	cfg, err := config.LoadTableAPI()
	if err != nil {
		kit.NewLogger(service, "info").Fatal("load config", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("table api stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.TableAPI, log *zap.Logger) error {
	pool, err := tables.NewPool(ctx, tables.PoolConfig{
		DSN:         cfg.DSN(),
		MaxConns:    int32(cfg.PoolMaxConns),
		MinConns:    int32(cfg.PoolMinConns),
		MaxIdleTime: cfg.PoolIdleTimeout,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	repo := tables.NewPostgresStore(pool)
	if err := repo.Ping(ctx); err != nil {
		return err
	}
	log.Info("database connected",
		zap.String("host", cfg.DBServer),
		zap.String("database", cfg.DBName),
		zap.String("sslmode", cfg.SSLMode()),
	)

	if cfg.Migrate {
		if err := tables.Migrate(ctx, pool, db.Schema); err != nil {
			return err
		}
		log.Info("schema applied")
	}

	limiter := kit.NewIPRateLimiter(cfg.RateLimit, cfg.RateWindow)
	limiter.TrustProxy = cfg.TrustProxy
	s := &tables.Server{
		Repo:    repo,
		Log:     log,
		Limiter: limiter,
	}
	if cfg.JWTSecret != "" {
		s.Tokens = session.NewTokenMaker(cfg.JWTSecret, 0)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	h := tables.NewHandler(s, tables.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
		AllowedOrigin:  cfg.FrontendURL,
	})

	log.Info("cors enabled", zap.String("origin", cfg.FrontendURL))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return kit.RunHTTPServer(ctx, cfg.Addr(), h, log)
	})
	g.Go(func() error {
		t := time.NewTicker(sweepInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-t.C:
				limiter.Sweep()
			}
		}
	})
	return g.Wait()
}
