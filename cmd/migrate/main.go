// Command migrate applies pending schema migrations and exits.
package main

import (
	"flag"
	"os"
	"path/filepath"

	"saldo/internal/cli"
	"saldo/internal/config"
	"saldo/internal/log"
	"saldo/internal/storage"
)

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()

	dbPath := flag.String("db", cfg.SQLiteDBPath, "path to the SQLite database")
	flag.Parse()

	logger := cli.SetupLogger(log.ComponentStorage, cfg.SlogLevel())
	if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
		logger.Error("Failed to create database directory", log.FieldError, err, "path", *dbPath)
		os.Exit(1)
	}
	if err := storage.RunMigrations(*dbPath); err != nil {
		logger.Error("Migration failed",
			log.NewFields().
				WithError(err).
				WithErrorType(log.ErrorTypeDatabase).
				WithOperation(log.OpMigrate).
				ToSlice()...)
		os.Exit(1)
	}
	version, dirty, err := storage.SchemaVersion(*dbPath)
	if err != nil {
		logger.Error("Failed to read schema version", log.FieldError, err, "path", *dbPath)
		os.Exit(1)
	}
	logger.Info("Migrations applied",
		"path", *dbPath,
		"version", version,
		"dirty", dirty,
		log.FieldOperation, log.OpMigrate)
}
