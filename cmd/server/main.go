package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/healthsurge/backend/internal/config"
	"github.com/healthsurge/backend/internal/delivery/http"
	"github.com/healthsurge/backend/internal/observability"
	"github.com/healthsurge/backend/internal/repository/csvstore"
	"github.com/healthsurge/backend/internal/repository/memory"
	"github.com/healthsurge/backend/internal/repository/postgres"
	"github.com/healthsurge/backend/internal/service"
)

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	if envErr != nil {
		logger.Info("no .env file found, using system environment")
	}
	metrics := observability.NewMetrics()

	// Audit store
	var auditRepo service.AuditRepository = postgres.NewMockRepository()
	if cfg.DatabaseURL != "" {
		pool, err := connect(cfg.DatabaseURL)
		if err != nil {
			logger.Warn("could not connect to database, audit log kept in memory", "error", err)
		} else {
			defer pool.Close()
			repo := postgres.NewPostgresRepository(pool, clockwork.NewRealClock())
			if err := repo.Migrate(context.Background()); err != nil {
				logger.Error("audit schema migration failed", "error", err)
				os.Exit(1)
			}
			auditRepo = repo
			logger.Info("connected to PostgreSQL")
		}
	}

	// Historical dataset
	historical := csvstore.Load(cfg.HistoricalPath, logger)
	metrics.HistoricalRows.Set(float64(historical.Len()))

	// Contact roster
	seed, err := memory.LoadSeed(cfg.ContactsFile)
	if err != nil {
		logger.Error("could not load contacts", "error", err)
		os.Exit(1)
	}
	contacts := memory.NewContactRepository(cfg.IDPolicy, seed)
	metrics.Contacts.Set(float64(len(seed)))

	if !cfg.Twilio.HasCredentials() {
		logger.Warn("Twilio credentials missing, emergency SMS will fail and calls are simulated")
	}
	if !cfg.SMTP.HasCredentials() {
		logger.Warn("SMTP credentials missing, restock emails will fail")
	}

	// Services
	auditor := service.NewAuditor(auditRepo, logger)
	deps := http.Dependencies{
		Scorer: service.NewScorerFromConfig(cfg, metrics),
		Dispatcher: service.NewDispatcher(service.DispatcherOptions{
			Contacts:   contacts,
			Messengers: service.TwilioFactory(cfg.Twilio, cfg.NotifyTimeout),
			Mailer:     service.NewEmailService(cfg.SMTP, cfg.NotifyTimeout),
			VoiceCalls: cfg.VoiceCallsEnabled,
			Metrics:    metrics,
			Logger:     logger,
		}),
		Contacts:   contacts,
		Historical: historical,
		Auditor:    auditor,
		Metrics:    metrics,
	}

	app := http.NewApp(http.AppConfig{
		AllowOrigins: cfg.AllowOrigins,
		AccessLog:    cfg.Env != "production",
	}, deps)

	// Graceful shutdown
	go func() {
		logger.Info("server starting", "port", cfg.Port, "model", deps.Scorer.Model(), "contacts", len(seed))
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		logger.Warn("server forced to shutdown", "error", err)
	}
	auditor.WaitBackground()
	logger.Info("server exited gracefully")
}

func connect(url string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
