// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shivanand-hulikatti/webinar-seats/internal/config"
	"github.com/Shivanand-hulikatti/webinar-seats/internal/database"
	"github.com/Shivanand-hulikatti/webinar-seats/internal/handler"
	"github.com/Shivanand-hulikatti/webinar-seats/internal/mailer"
	"github.com/Shivanand-hulikatti/webinar-seats/internal/observability"
	"github.com/Shivanand-hulikatti/webinar-seats/internal/repository"
	"github.com/Shivanand-hulikatti/webinar-seats/internal/repository/memory"
	"github.com/Shivanand-hulikatti/webinar-seats/internal/repository/sqlite"
	"github.com/Shivanand-hulikatti/webinar-seats/internal/seed"
	"github.com/Shivanand-hulikatti/webinar-seats/internal/service"
	"go.uber.org/zap"
)

// userStore is what the service and the seeder need from user storage.
type userStore interface {
	service.UserRepository
	seed.UserStore
}

// webinarStore is what the service and the seeder need from webinar storage.
type webinarStore interface {
	service.WebinarRepository
	seed.WebinarStore
}

type storage struct {
	users          userStore
	webinars       webinarStore
	participations service.ParticipationRepository
	close          func()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "webinar-seats: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// ── 1. Configuration and observability ───────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Otel.ServiceName)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Otel.Endpoint, cfg.Otel.ServiceName)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	// ── 2. Storage ────────────────────────────────────────────────────────
	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.close()

	if cfg.SeedFile != "" {
		if err := applySeed(ctx, cfg.SeedFile, store); err != nil {
			return err
		}
		logger.Info("seed applied", zap.String("file", cfg.SeedFile))
	}

	// ── 3. Wire up layers ────────────────────────────────────────────────
	m, closeMailer := newMailer(cfg, logger)
	defer closeMailer()

	policy, err := service.ParseNotifyPolicy(cfg.NotifyFailurePolicy)
	if err != nil {
		return err
	}

	booking := service.NewBookingService(
		store.webinars, store.participations, store.users, m,
		service.WithNotifyPolicy(policy),
		service.WithLogger(logger.Named("booking")),
	)
	webinars := service.NewWebinarService(store.webinars, store.participations, store.users)
	router := handler.NewRouter(handler.NewWebinarHandler(booking, webinars, logger), logger)

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("mailer", cfg.Mailer.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-quit:
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		if err := database.MigratePostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("connected to postgres", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.Name))
		return &storage{
			users:          repository.NewUserRepository(pool),
			webinars:       repository.NewWebinarRepository(pool),
			participations: repository.NewParticipationRepository(pool),
			close:          pool.Close,
		}, nil

	case config.StorageSQLite:
		db, err := database.OpenSQLite(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		logger.Info("opened sqlite", zap.String("path", cfg.Storage.SQLitePath))
		return &storage{
			users:          sqlite.NewUserRepository(db),
			webinars:       sqlite.NewWebinarRepository(db),
			participations: sqlite.NewParticipationRepository(db),
			close:          func() { _ = db.Close() },
		}, nil

	default:
		logger.Warn("using in-memory storage; data is lost on exit")
		s := memory.NewStore()
		return &storage{
			users:          s.Users(),
			webinars:       s.Webinars(),
			participations: s.Participations(),
			close:          func() {},
		}, nil
	}
}

func newMailer(cfg *config.Config, logger *zap.Logger) (service.Mailer, func()) {
	switch cfg.Mailer.Driver {
	case config.MailerKafka:
		k := mailer.NewKafka(mailer.NewKafkaWriter(cfg.Mailer.KafkaBrokers, cfg.Mailer.KafkaTopic), logger.Named("mailer"))
		return k, func() {
			if err := k.Close(); err != nil {
				logger.Warn("close kafka writer", zap.Error(err))
			}
		}
	case config.MailerMemory:
		return mailer.NewMemory(), func() {}
	default:
		return mailer.NewLog(logger.Named("mailer")), func() {}
	}
}

func applySeed(ctx context.Context, path string, store *storage) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	doc, err := seed.Load(f)
	if err != nil {
		return err
	}
	if err := seed.NewSeeder(store.users, store.webinars).Apply(ctx, doc); err != nil {
		return fmt.Errorf("apply seed: %w", err)
	}
	return nil
}
