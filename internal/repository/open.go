package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Dan9191/daily-learning/internal/config"
	"github.com/sirupsen/logrus"
)

var (
	_ Store = (*PostgresStore)(nil)
	_ Store = (*MongoStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// Open connects to the store selected by cfg.StoreDriver
func Open(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(30 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		if cfg.RunMigrations {
			if err := Migrate(db); err != nil {
				db.Close()
				return nil, err
			}
			logger.Info("Database migrations applied")
		}
		logger.Info("Connected to PostgreSQL")
		return NewPostgresStore(db), nil

	case config.DriverMongo:
		s, err := NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		logger.Infof("Connected to MongoDB database %s", cfg.MongoDatabase)
		return s, nil

	case config.DriverMemory:
		logger.Warn("Using in-memory store, data is lost on restart")
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
