// Package main is the entry point of the gradebook HTTP service.
//
// Startup order: configuration, logger, storage (SQLite, PostgreSQL or
// memory), the optional Redis aggregate cache, application handlers, HTTP
// server. Shutdown runs in reverse.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SamijonovSardor/Programming-topshiriq/config"
	"github.com/SamijonovSardor/Programming-topshiriq/internal/application/command"
	"github.com/SamijonovSardor/Programming-topshiriq/internal/application/query"
	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/grading"
	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/student"
	"github.com/SamijonovSardor/Programming-topshiriq/internal/infrastructure/persistence/memory"
	"github.com/SamijonovSardor/Programming-topshiriq/internal/infrastructure/persistence/postgres"
	"github.com/SamijonovSardor/Programming-topshiriq/internal/infrastructure/persistence/redis"
	"github.com/SamijonovSardor/Programming-topshiriq/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/SamijonovSardor/Programming-topshiriq/internal/interface/http"
	"github.com/SamijonovSardor/Programming-topshiriq/internal/interface/http/handlers"
	"github.com/SamijonovSardor/Programming-topshiriq/pkg/circuitbreaker"
	"github.com/SamijonovSardor/Programming-topshiriq/pkg/logger"
	"github.com/SamijonovSardor/Programming-topshiriq/pkg/retry"
	"github.com/gin-gonic/gin"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. Configuration & logging
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg)
	log.Info("starting gradebook",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.String("driver", cfg.Database.Driver),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. Storage
	// ─────────────────────────────────────────────────────────────────────────
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing storage")
		if err := st.close(); err != nil {
			log.Error("failed to close storage", logger.Err(err))
		}
	}()

	checker := handlers.NewCompositeChecker(cfg.App.Version)
	checker.Add("storage", handlers.PingCheck(st.pinger))

	// ─────────────────────────────────────────────────────────────────────────
	// 3. Aggregate cache (optional)
	// ─────────────────────────────────────────────────────────────────────────
	// Left as a nil interface when disabled so handlers skip it.
	var statsCache grading.StatsCache

	if cfg.Redis.Enabled {
		cache, err := redis.NewCache(ctx, redis.Config{
			Host:        cfg.Redis.Host,
			Port:        cfg.Redis.Port,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			PoolSize:    cfg.Redis.PoolSize,
			DialTimeout: cfg.Redis.DialTimeout,
		})
		if err != nil {
			// The cache only speeds up reads; run without it.
			log.Warn("redis unavailable, aggregates are computed on every request",
				logger.String("address", cfg.Redis.Addr()),
				logger.Err(err),
			)
		} else {
			defer func() {
				log.Info("closing redis")
				if err := cache.Close(); err != nil {
					log.Error("failed to close redis", logger.Err(err))
				}
			}()
			breaker := circuitbreaker.New("stats_cache",
				circuitbreaker.WithFailureThreshold(5),
				circuitbreaker.WithCooldown(30*time.Second),
				circuitbreaker.WithIsFailure(func(err error) bool {
					return !errors.Is(err, redis.ErrCacheSerialization)
				}),
				circuitbreaker.WithOnStateChange(func(name string, from, to circuitbreaker.State) {
					log.Warn("circuit breaker state changed",
						logger.String("breaker", name),
						logger.String("from", from.String()),
						logger.String("to", to.String()),
					)
				}),
			)
			statsCache = redis.NewGuardedStatsCache(redis.NewStatsCache(cache, cfg.Redis.StatsTTL), breaker)
			checker.Add("stats_cache", handlers.PingCheck(cache))
			log.Info("redis connected", logger.String("address", cfg.Redis.Addr()))
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. Application handlers & HTTP server
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = log.Writer(logger.LevelDebug)
	gin.DefaultErrorWriter = log.Writer(logger.LevelError)

	server := httpserver.NewServer(httpserver.Config{
		Host:           cfg.HTTP.Host,
		Port:           cfg.HTTP.Port,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		MaxHeaderBytes: httpserver.DefaultConfig().MaxHeaderBytes,
	}, httpserver.Dependencies{
		CreateStudent: command.NewCreateStudentHandler(st.students, statsCache),
		DeleteStudent: command.NewDeleteStudentHandler(st.students, statsCache),
		CreateTest:    command.NewCreateTestHandler(st.tests),
		SubmitResult:  command.NewSubmitResultHandler(st.results, statsCache),
		Students:      query.NewStudentsHandler(st.students),
		Tests:         query.NewTestsHandler(st.tests),
		Results:       query.NewResultsHandler(st.results),
		Aggregates:    query.NewAggregatesHandler(st.results, statsCache),
		Logger:        log.With(logger.Component("http")),
		HealthChecker: checker,
	})

	errCh := server.StartAsync()
	log.Info("gradebook ready", logger.String("address", cfg.HTTP.Addr()))

	// ─────────────────────────────────────────────────────────────────────────
	// 5. Graceful shutdown
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err, ok := <-errCh:
		if ok && err != nil {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("starting graceful shutdown", logger.Duration("timeout", cfg.App.ShutdownTimeout))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", logger.Err(err))
		return err
	}

	log.Info("shutdown completed")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func setupLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	if cfg.Observability.LogFormat == string(logger.FormatText) {
		opts.Format = logger.FormatText
	}
	opts.AddCaller = cfg.IsDevelopment()

	return logger.New(opts).With(
		logger.String("service", cfg.App.Name),
		logger.String("env", string(cfg.App.Environment)),
	)
}

// store bundles the repositories of the selected backend.
type store struct {
	students student.Repository
	tests    grading.TestRepository
	results  grading.ResultRepository
	pinger   handlers.Pinger
	close    func() error
}

// openStore opens the configured backend, retrying while it is unreachable.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (*store, error) {
	dbLog := log.With(logger.Component("storage"))
	opts := []retry.Option{
		retry.WithMaxAttempts(cfg.Database.ConnectRetries),
		retry.WithInitialDelay(500 * time.Millisecond),
		retry.WithMaxDelay(10 * time.Second),
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			dbLog.Warn("database not ready, retrying",
				logger.Int("attempt", attempt),
				logger.Duration("delay", delay),
				logger.Err(err),
			)
		}),
	}

	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err := retry.DoWithData(ctx, func(context.Context) (*sqlite.DB, error) {
			return sqlite.Open(sqlite.Options{
				Path:            cfg.Database.Path,
				ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
				LogQueries:      cfg.Database.LogQueries,
			}, dbLog)
		}, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		dbLog.Info("sqlite database ready", logger.String("path", cfg.Database.Path))
		return &store{
			students: db.Students(),
			tests:    db.Tests(),
			results:  db.Results(),
			pinger:   db,
			close:    db.Close,
		}, nil

	case config.DriverPostgres:
		conn, err := retry.DoWithData(ctx, func(ctx context.Context) (*postgres.Connection, error) {
			return postgres.Connect(ctx, postgres.Options{
				URL:             cfg.Database.URL,
				MaxConns:        int32(cfg.Database.MaxOpenConns),
				MinConns:        int32(cfg.Database.MaxIdleConns),
				MaxConnLifetime: cfg.Database.ConnMaxLifetime,
			})
		}, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		dbLog.Info("postgres database ready")
		return &store{
			students: conn.Students(),
			tests:    conn.Tests(),
			results:  conn.Results(),
			pinger:   conn,
			close: func() error {
				conn.Close()
				return nil
			},
		}, nil

	case config.DriverMemory:
		dbLog.Warn("using in-memory storage, data is lost on exit")
		s := memory.NewStore()
		return &store{
			students: s.Students(),
			tests:    s.Tests(),
			results:  s.Results(),
			pinger:   s,
			close:    s.Close,
		}, nil
	}

	return nil, errors.New("unknown database driver " + cfg.Database.Driver)
}
