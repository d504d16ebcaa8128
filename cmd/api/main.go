package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/jobpay/jobpay-backend/api/routes"
	"github.com/jobpay/jobpay-backend/internal/contracts"
	"github.com/jobpay/jobpay-backend/internal/jobs"
	"github.com/jobpay/jobpay-backend/internal/ledger"
	"github.com/jobpay/jobpay-backend/internal/profiles"
	"github.com/jobpay/jobpay-backend/internal/reports"
	"github.com/jobpay/jobpay-backend/internal/settlement"
	"github.com/jobpay/jobpay-backend/pkg/config"
	"github.com/jobpay/jobpay-backend/pkg/db"
	"github.com/jobpay/jobpay-backend/pkg/logger"
	"github.com/jobpay/jobpay-backend/pkg/metrics"
	"github.com/jobpay/jobpay-backend/pkg/migrate"
	"github.com/jobpay/jobpay-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run migrations", err)
		_ = dbClient.Close()
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			_ = dbClient.Close()
			os.Exit(1)
		}
	} else {
		logg.Warn(ctx, "redis not configured, idempotency keys disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler, err := buildHandler(cfg, logg, dbClient, redisClient, registry)
	if err != nil {
		logg.Error(ctx, "failed to wire services", err)
		closeResources(logg, dbClient, redisClient)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":    cfg.App.Env,
		"addr":   addr,
		"driver": cfg.DB.Driver,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "api server shutdown failed", err)
		exitCode = 1
	}

	if err := closeResources(logg, dbClient, redisClient); err != nil {
		exitCode = 1
	}
	logg.Info(shutdownCtx, "api server stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func buildHandler(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, registry *prometheus.Registry) (http.Handler, error) {
	conn := dbClient.DB()
	profileRepo := profiles.NewRepository(conn)
	contractRepo := contracts.NewRepository(conn)
	jobRepo := jobs.NewRepository(conn)

	ledgerService, err := ledger.NewService(ledger.NewRepository(conn))
	if err != nil {
		return nil, err
	}
	contractsService, err := contracts.NewService(contractRepo)
	if err != nil {
		return nil, err
	}
	jobsService, err := jobs.NewService(jobRepo)
	if err != nil {
		return nil, err
	}
	reportsService, err := reports.NewService(reports.ServiceParams{
		Jobs:               jobRepo,
		DefaultClientLimit: cfg.Reports.DefaultClientLimit,
		MaxClientLimit:     cfg.Reports.MaxClientLimit,
	})
	if err != nil {
		return nil, err
	}
	settlementService, err := settlement.NewService(settlement.ServiceParams{
		Logger:    logg,
		DB:        dbClient,
		Jobs:      jobRepo,
		Contracts: contractRepo,
		Profiles:  profileRepo,
		Ledger:    ledgerService,
		Metrics:   metrics.NewSettlementMetrics(registry),
	})
	if err != nil {
		return nil, err
	}

	return routes.NewRouter(
		cfg,
		logg,
		dbClient,
		redisClient,
		registry,
		profileRepo,
		contractsService,
		jobsService,
		settlementService,
		ledgerService,
		reportsService,
	), nil
}

func closeResources(logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) error {
	var errs error
	if redisClient != nil {
		errs = multierr.Append(errs, redisClient.Close())
	}
	errs = multierr.Append(errs, dbClient.Close())
	if errs != nil {
		logg.Error(context.Background(), "error closing resources", errs)
	}
	return errs
}
