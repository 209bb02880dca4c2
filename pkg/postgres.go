package database

import (
	"context"
	"fmt"
	"time"

	"subscription-tracker/internal/models/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// NewPostgres opens a pool with the configured driver ("postgres" is lib/pq,
// "pgx" is pgx's database/sql driver) and pings it.
func NewPostgres(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	log.Info("🗄️  connected to PostgreSQL",
		zap.String("driver", cfg.Driver),
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Name))
	return db, nil
}
