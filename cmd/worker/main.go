package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/reservo/reservo/internal/app"
	"github.com/reservo/reservo/internal/booking"
	jobmetrics "github.com/reservo/reservo/internal/jobs"
	"github.com/reservo/reservo/internal/platform/db"
	"github.com/reservo/reservo/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	if err := app.SetMaxProcs(logger); err != nil {
		logger.Warn("set GOMAXPROCS", slog.Any("error", err))
	}
	metrics := jobmetrics.NewMetrics(prometheus.DefaultRegisterer)

	handlers := []jobs.TaskHandler{
		{Type: jobs.TaskReservationConfirmed, Handler: jobs.NewConfirmationJob(logger).Handle},
	}
	var cron []jobs.CronRegistration

	if cfg.StorageDriver == app.DriverPostgres {
		pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
		if err != nil {
			logger.Error("connect database", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()

		audit := jobs.NewLedgerAuditJob(booking.NewRepository(pool), logger, metrics)
		handlers = append(handlers, jobs.TaskHandler{Type: jobs.TaskLedgerAudit, Handler: audit.Handle})
		if cfg.LedgerAuditCron != "" {
			cron = append(cron, jobs.CronRegistration{
				Spec:    cfg.LedgerAuditCron,
				Task:    jobs.NewLedgerAuditTask(),
				Options: []asynq.Option{asynq.MaxRetry(3)},
			})
		}
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers:    handlers,
		Middleware:  []asynq.MiddlewareFunc{metrics.Middleware()},
		Cron:        cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.Int("handlers", len(handlers)), slog.Int("cron", len(cron)))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
