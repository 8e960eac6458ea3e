package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"contentpulse/internal/domain"
	"contentpulse/internal/ports"
)

// PostgresArchive appends captured hourly snapshots to Postgres for audit.
// The in-memory store remains the system of record; archive failures are
// logged by the caller and never abort a capture cycle.
type PostgresArchive struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.SnapshotArchive = (*PostgresArchive)(nil)

// Open connects to Postgres and verifies the connection.
func Open(dsn string) (*PostgresArchive, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresArchive(db), nil
}

// NewPostgresArchive wires an already-opened database.
func NewPostgresArchive(db *sql.DB) *PostgresArchive {
	return &PostgresArchive{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// EnsureSchema creates the snapshot table when missing.
func (a *PostgresArchive) EnsureSchema(ctx context.Context) error {
	if a.db == nil {
		return nil
	}

	const ddl = `CREATE TABLE IF NOT EXISTS hourly_snapshots (
        id BIGSERIAL PRIMARY KEY,
        domain_id TEXT NOT NULL,
        article_id TEXT NOT NULL,
        hour TEXT NOT NULL,
        visitors DOUBLE PRECISION NOT NULL,
        delta DOUBLE PRECISION NOT NULL,
        percent_change DOUBLE PRECISION NOT NULL,
        captured_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`

	if _, err := a.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Save inserts one captured snapshot row.
func (a *PostgresArchive) Save(ctx context.Context, domainID, articleID string, snap domain.HourlySnapshot) error {
	if a.db == nil {
		return nil
	}

	query, args, err := a.builder.
		Insert("hourly_snapshots").
		Columns("domain_id", "article_id", "hour", "visitors", "delta", "percent_change").
		Values(domainID, articleID, snap.Hour, snap.Visitors, snap.Delta, snap.PercentChange).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (a *PostgresArchive) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
