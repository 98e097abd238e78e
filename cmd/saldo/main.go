package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"saldo/internal/cache"
	"saldo/internal/cli"
	"saldo/internal/config"
	"saldo/internal/core"
	apphttp "saldo/internal/http"
	"saldo/internal/log"
	"saldo/internal/services"
)

func main() {
	cli.LoadEnvFile()

	// Level is read before validation so config errors are logged at all.
	logger := cli.SetupLogger(log.ComponentApp, config.Load().SlogLevel())
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var publisher services.LedgerPublisher
	if amqpClient := cli.InitAMQP(logger, cfg); amqpClient != nil {
		defer amqpClient.Close()
		publisher = amqpClient
	}

	summaryCache := cache.NewLRUCache[core.MonthSummary](cfg.CacheSize, cfg.CacheTTL)
	janitor := cache.NewJanitor(summaryCache)
	janitor.Start(cfg.CacheTTL + time.Minute)
	defer janitor.Stop()

	summaries := services.NewSummaryService(repo, summaryCache)
	svc := apphttp.Services{
		Transactions: services.NewTransactionService(repo, publisher, summaries),
		Accounts:     services.NewAccountService(repo, publisher, summaries),
		Categories:   services.NewCategoryService(repo, summaries),
		Cards:        services.NewCardService(repo, summaries),
		Budgets:      services.NewBudgetService(repo, summaries),
		Summaries:    summaries,
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
		Ready:              repo.Ping,
	}, svc)

	ctx, stop := cli.GracefulShutdown(logger)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	}()

	logger.Info("Starting saldo server",
		"port", cfg.Port,
		"amqp_enabled", cfg.AMQPEnabled(),
		"cache_size", cfg.CacheSize)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}
