package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/votebot/core/logger"
	"log/slog"
)

// Postgres stores records in the kv_records relation managed by the
// migrations directory. All tables share one relation, namespaced by the
// tbl column.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres wraps an open sqlx connection.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// Get returns the stored value, or "" when the record is absent.
func (p *Postgres) Get(ctx context.Context, table, key string) (string, error) {
	var value string
	err := p.db.GetContext(ctx, &value,
		`SELECT value FROM kv_records WHERE tbl = $1 AND key = $2`, table, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("kv get %s/%s: %w", table, key, err)
	}
	return value, nil
}

// Set upserts the record idempotently.
func (p *Postgres) Set(ctx context.Context, table, key, value string) error {
	start := time.Now()
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO kv_records (tbl, key, value) VALUES ($1, $2, $3)
		 ON CONFLICT (tbl, key) DO UPDATE SET value = EXCLUDED.value`,
		table, key, value)
	if err != nil {
		logger.DB.Error("kv set failed",
			slog.String("event", "kv.set"),
			slog.String("db", table),
			slog.Duration("duration", logger.RoundMS(time.Since(start))),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("kv set %s/%s: %w", table, key, err)
	}
	return nil
}

// Increment parses the stored value as an integer (absent reads as 0) and
// writes back n+1. The read and the write are two statements; low contention
// per key is assumed.
func (p *Postgres) Increment(ctx context.Context, table, key string) (int64, error) {
	raw, err := p.Get(ctx, table, key)
	if err != nil {
		return 0, err
	}
	var n int64
	if raw != "" {
		parsed, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil {
			return 0, fmt.Errorf("%w: %s/%s=%q", ErrNotNumeric, table, key, raw)
		}
		n = parsed
	}
	n++
	if err := p.Set(ctx, table, key, strconv.FormatInt(n, 10)); err != nil {
		return 0, err
	}
	return n, nil
}

// Append adds one item to the stored sequence, creating a singleton first.
func (p *Postgres) Append(ctx context.Context, table, key, item string) error {
	current, err := p.Get(ctx, table, key)
	if err != nil {
		return err
	}
	if current == "" {
		return p.Set(ctx, table, key, item)
	}
	return p.Set(ctx, table, key, current+ListSeparator+item)
}

// ScanTable returns every record of a table, ordered by key for stable
// iteration downstream.
func (p *Postgres) ScanTable(ctx context.Context, table string) (map[string]string, error) {
	rows, err := p.db.QueryxContext(ctx,
		`SELECT key, value FROM kv_records WHERE tbl = $1 ORDER BY key`, table)
	if err != nil {
		return nil, fmt.Errorf("kv scan %s: %w", table, err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("kv scan %s: %w", table, err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("kv scan %s: %w", table, err)
	}
	return out, nil
}
