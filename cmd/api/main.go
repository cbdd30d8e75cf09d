// Package main is the entry point for the library catalog server.
// It wires together configuration, the database connection, and the HTTP router.
package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Registers the "pgx" driver with database/sql.
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq" // Registers the "postgres" driver with database/sql.

	"github.com/aoideee/library-catalog/internal/data"
)

// appVersion is the current version of the API, shown in logs.
const appVersion = "1.0.0"

// applicationDependencies bundles every shared resource that HTTP handlers need.
// A pointer to this struct is passed as the receiver on all handler and route methods.
type applicationDependencies struct {
	config serverConfig // Server configuration loaded from flags
	logger *slog.Logger // Structured logger that writes to stdout
	models data.Models  // Database model layer for all tables
}

func main() {
	// A missing .env file is fine; real environment variables still apply.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("loading .env", "error", err)
		os.Exit(1)
	}

	settings, err := parseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	level, _ := settings.slogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	db, err := openDB(settings)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("database connection pool established", "driver", settings.db.driver)

	if settings.db.migrate {
		if err := data.Migrate(context.Background(), db); err != nil {
			logger.Error("applying schema", "error", err)
			os.Exit(1)
		}
		logger.Info("schema applied")
	}

	appInstance := &applicationDependencies{
		config: settings,
		logger: logger,
		models: data.NewModels(db, logger),
	}

	logger.Info("catalog starting", "version", appVersion)

	if err := appInstance.serve(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

// openDB opens a PostgreSQL connection pool with the configured driver and pool limits,
// then pings the database with a 5-second timeout to confirm it is reachable.
func openDB(settings serverConfig) (*sqlx.DB, error) {
	// Open only validates the DSN format; it does not actually connect yet.
	db, err := sqlx.Open(settings.db.driver, settings.db.dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(settings.db.maxOpenConns)
	db.SetMaxIdleConns(settings.db.maxIdleConns)
	db.SetConnMaxIdleTime(settings.db.maxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
