package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"leadqual_backend/internal/admin"
	"leadqual_backend/internal/conversion"
	"leadqual_backend/internal/events"
	apphttp "leadqual_backend/internal/http"
	"leadqual_backend/internal/http/router"
	"leadqual_backend/internal/leads"
	"leadqual_backend/internal/scoring"
	"leadqual_backend/migrations"
	"leadqual_backend/platform/config"
	"leadqual_backend/platform/db"
	"leadqual_backend/platform/logger"
	"leadqual_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS, ".")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Scoring configuration with runtime reload
	scoringCfg, err := scoring.NewProvider(cfg.GetScoringConfigPath(), log)
	if err != nil {
		log.Error("failed to load scoring config", "error", err)
		panic("failed to load scoring config: " + err.Error())
	}
	log.Info("scoring config loaded", "path", cfg.GetScoringConfigPath())

	history, closeHistory, err := newHistoryStore(cfg, pool)
	if err != nil {
		log.Error("failed to initialize conversion history store", "error", err)
		panic("failed to initialize conversion history store: " + err.Error())
	}
	if closeHistory != nil {
		defer closeHistory()
	}
	log.Info("conversion history store initialized", "backend", cfg.GetHistoryBackend())

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	leadsModule := leads.NewModule(pool, history, scoringCfg, eventBus, val, log)
	adminModule := admin.NewModule(scoringCfg, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: db.NewPoolAdapter(pool),
		Modules: []apphttp.Module{
			leadsModule,
			adminModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// newHistoryStore selects the conversion history backend. Postgres is the
// default; redis suits deployments that already run it for the scheduler;
// memory is for local development only.
func newHistoryStore(cfg *config.Config, pool *pgxpool.Pool) (conversion.HistoryStore, func(), error) {
	switch cfg.GetHistoryBackend() {
	case "postgres":
		return conversion.NewPostgresHistoryStore(pool), nil, nil
	case "redis":
		opt, err := redis.ParseURL(cfg.GetRedisURL())
		if err != nil {
			return nil, nil, err
		}
		if cfg.GetRedisTLSInsecure() {
			if opt.TLSConfig == nil {
				opt.TLSConfig = &tls.Config{}
			}
			opt.TLSConfig.InsecureSkipVerify = true
		}
		rdb := redis.NewClient(opt)
		return conversion.NewRedisHistoryStore(rdb), func() { _ = rdb.Close() }, nil
	case "memory":
		return conversion.NewMemoryHistoryStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown conversion history backend %q", cfg.GetHistoryBackend())
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("%s: %w", name, lastErr)
}
