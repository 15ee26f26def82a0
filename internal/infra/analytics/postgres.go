package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/pulseobs/pulse/internal/core/domain"
)

// PostgresConfig holds session archive connection configuration.
type PostgresConfig struct {
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// PostgresArchive is a durable Sink storing sealed sessions in a table.
type PostgresArchive struct {
	db *sqlx.DB
}

// NewPostgresArchive opens the session archive and verifies connectivity.
func NewPostgresArchive(ctx context.Context, cfg PostgresConfig) (*PostgresArchive, error) {
	db, err := sqlx.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set pool configuration
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	} else {
		db.SetMaxOpenConns(10)
	}
	if cfg.MinConns > 0 {
		db.SetMaxIdleConns(cfg.MinConns)
	} else {
		db.SetMaxIdleConns(2)
	}
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresArchive{db: db}, nil
}

// DB exposes the underlying handle for migrations.
func (a *PostgresArchive) DB() *sqlx.DB {
	return a.db
}

// Close closes the archive connection pool.
func (a *PostgresArchive) Close() error {
	return a.db.Close()
}

func (a *PostgresArchive) Deliver(ctx context.Context, session *domain.UserSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO pulse_sessions
			(session_id, user_id, started_at, ended_at, page_views, interactions, errors, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (session_id) DO NOTHING`,
		session.SessionID,
		session.UserID,
		session.StartTime,
		session.EndTime,
		len(session.PageViews),
		len(session.Interactions),
		len(session.Errors),
		payload,
	)
	if err != nil {
		return fmt.Errorf("failed to archive session: %w", err)
	}
	return nil
}
