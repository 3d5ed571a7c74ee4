package postgres

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/lpt-gateway/internal/config"
	"go.uber.org/zap"
)

const connectTimeout = 5 * time.Second

// DB is the connection to the address store.
type DB struct {
	*sqlx.DB
	logger *zap.Logger
}

// New opens the pool and checks that the addresses table is reachable.
func New(cfg *config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	conn, err := sqlx.ConnectContext(ctx, "pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to address store: %w", err)
	}

	conn.SetMaxOpenConns(cfg.MaxConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	conn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	db := &DB{DB: conn, logger: logger}
	if err := db.Health(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	logger.Info("Address store connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.DBName),
		zap.Int("max_conns", cfg.MaxConns),
	)

	return db, nil
}

func (db *DB) Close() error {
	db.logger.Info("Closing address store connection")
	return db.DB.Close()
}

// Health fails when the database is down or the addresses table is missing.
func (db *DB) Health(ctx context.Context) error {
	var exists bool
	if err := db.GetContext(ctx, &exists, `SELECT to_regclass('public.addresses') IS NOT NULL`); err != nil {
		return fmt.Errorf("failed to query address store: %w", err)
	}
	if !exists {
		return fmt.Errorf("addresses table does not exist, run migrations")
	}
	return nil
}

// NewDBForTest wraps an existing connection
func NewDBForTest(sqlxDB *sqlx.DB, logger *zap.Logger) *DB {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DB{DB: sqlxDB, logger: logger}
}
