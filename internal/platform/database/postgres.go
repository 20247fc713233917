package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// OpenPostgres connects and pings, retrying while the database starts up.
func OpenPostgres(ctx context.Context, dsn string, attempts int, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	for i := 1; i <= attempts; i++ {
		err = db.PingContext(ctx)
		if err == nil {
			logger.Info("Connected to database")
			return db, nil
		}
		logger.Warn("Waiting for database", zap.Int("attempt", i), zap.Int("of", attempts), zap.Error(err))
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}
	db.Close()
	return nil, fmt.Errorf("could not connect to database: %w", err)
}

// Migrate applies the SQL migrations found in dir.
func Migrate(dir, dsn string, logger *zap.Logger) error {
	m, err := migrate.New("file://"+dir, dsn)
	if err != nil {
		return fmt.Errorf("migration init failed: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	logger.Info("Migrations applied", zap.String("dir", dir))
	return nil
}
