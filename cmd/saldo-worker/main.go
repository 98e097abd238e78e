package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"saldo/internal/cli"
	"saldo/internal/config"
	"saldo/internal/log"
	"saldo/internal/services"
	"saldo/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(log.ComponentWorker, config.Load().SlogLevel())
	logger.Info("Starting saldo-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	amqpClient := cli.InitAMQP(logger, cfg)
	if amqpClient != nil {
		defer amqpClient.Close()
	}

	ctx, stop := cli.GracefulShutdown(logger)
	defer stop()

	// The worker holds no summary cache; the API process invalidates its own.
	ledgerWorker := worker.NewLedgerWorker(services.NewReconciler(repo, nil), cfg.ReconcileInterval)

	logger.Info("Performing startup reconciliation...")
	if err := ledgerWorker.StartupCheck(ctx); err != nil {
		logger.Error("Startup reconciliation failed", log.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	if amqpClient != nil {
		g.Go(func() error {
			err := amqpClient.ConsumeLedgerEvents(gctx, ledgerWorker.HandleLedgerEvent)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		logger.Info("Skipping ledger event consumption - AMQP disabled")
	}
	g.Go(func() error {
		return ledgerWorker.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
