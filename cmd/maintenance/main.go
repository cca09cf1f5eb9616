package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/Dan9191/daily-learning/internal/cli"
	"github.com/Dan9191/daily-learning/internal/config"
	"github.com/Dan9191/daily-learning/internal/repository"
	"github.com/Dan9191/daily-learning/internal/service"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stderr)

	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	deps := cli.Deps{
		OpenMaintainer: func(ctx context.Context) (cli.Maintainer, func(), error) {
			store, err := repository.Open(ctx, cfg, logger)
			if err != nil {
				return nil, nil, err
			}
			release := func() {
				if err := store.Close(context.Background()); err != nil {
					logger.Errorf("Failed to close store: %v", err)
				}
			}
			return service.NewService(store, logger, cfg), release, nil
		},
		Migrate: func(ctx context.Context) error {
			if cfg.StoreDriver != config.DriverPostgres {
				return fmt.Errorf("migrations only apply to the %s driver, got %q", config.DriverPostgres, cfg.StoreDriver)
			}
			db, err := sql.Open("postgres", cfg.DBConn)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()
			if err := db.PingContext(ctx); err != nil {
				return fmt.Errorf("failed to ping database: %w", err)
			}
			return repository.Migrate(db)
		},
	}

	if err := cli.NewRootCommand(deps).ExecuteContext(context.Background()); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}
