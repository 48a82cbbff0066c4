// Package db owns the PostgreSQL connection used by the repositories.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/studyroom/backend/config"
)

const (
	// connectTimeout bounds the initial connectivity check.
	connectTimeout = 5 * time.Second
	// pingTimeout bounds each health check ping.
	pingTimeout = 2 * time.Second
)

// Database wraps the GORM connection handle together with pool lifecycle.
type Database struct {
	db *gorm.DB
}

// NewPostgresConnection opens a pooled PostgreSQL connection and verifies it
// with a ping before returning.
func NewPostgresConnection(cfg *config.DatabaseConfig) (*Database, error) {
	conn, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	pool, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Database connection established",
		"max_open_conns", cfg.MaxOpenConns,
		"max_idle_conns", cfg.MaxIdleConns,
	)

	return &Database{db: conn}, nil
}

// DB returns the GORM handle the repositories operate on.
func (d *Database) DB() *gorm.DB {
	return d.db
}

// HealthCheck reports whether the database currently answers a ping.
func (d *Database) HealthCheck() bool {
	pool, err := d.db.DB()
	if err != nil {
		slog.Error("Failed to access connection pool for health check", "error", err)
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := pool.PingContext(ctx); err != nil {
		slog.Error("Database health check failed", "error", err)
		return false
	}
	return true
}

// AutoMigrate creates or updates the schema for the given models.
func (d *Database) AutoMigrate(models ...any) error {
	if err := d.db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close drains the connection pool.
func (d *Database) Close() error {
	pool, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access connection pool: %w", err)
	}
	if err := pool.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	slog.Info("Database connection closed")
	return nil
}
