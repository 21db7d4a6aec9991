package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/pupilbridge/internal/memory"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS correction_rules (
	import_type       TEXT        NOT NULL,
	id                TEXT        NOT NULL,
	position          INTEGER     NOT NULL,
	column_name       TEXT        NOT NULL,
	original_value    TEXT        NOT NULL,
	corrected_value   TEXT        NOT NULL,
	match_type        TEXT        NOT NULL DEFAULT 'exact',
	identifier_column TEXT        NOT NULL DEFAULT '',
	identifier_value  TEXT        NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL,
	applied_count     INTEGER     NOT NULL DEFAULT 0,
	PRIMARY KEY (import_type, id)
)`

// PostgresOption tunes the connection pool.
type PostgresOption func(*pgxpool.Config)

// WithPoolLimits sets pool size and connection lifetimes. Zero values keep
// the pgx defaults.
func WithPoolLimits(maxConns, minConns int, maxLifetime, maxIdle time.Duration) PostgresOption {
	return func(c *pgxpool.Config) {
		if maxConns > 0 {
			c.MaxConns = int32(maxConns)
		}
		if minConns > 0 {
			c.MinConns = int32(minConns)
		}
		if maxLifetime > 0 {
			c.MaxConnLifetime = maxLifetime
		}
		if maxIdle > 0 {
			c.MaxConnIdleTime = maxIdle
		}
	}
}

// Postgres stores rules in a correction_rules table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects, pings and creates the schema if needed.
func NewPostgres(ctx context.Context, url string, opts ...PostgresOption) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	for _, opt := range opts {
		opt(cfg)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool. The schema must exist.
func NewPostgresFromPool(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Close releases the pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// Ping checks the connection.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Load returns the rules of importType in their saved order.
func (p *Postgres) Load(ctx context.Context, importType string) ([]memory.Rule, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, column_name, original_value, corrected_value, match_type,
		       identifier_column, identifier_value, created_at, applied_count
		FROM correction_rules
		WHERE import_type = $1
		ORDER BY position`, importType)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	rules, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (memory.Rule, error) {
		r := memory.Rule{ImportType: importType}
		var matchType string
		err := row.Scan(&r.ID, &r.Column, &r.OriginalValue, &r.CorrectedValue, &matchType,
			&r.IdentifierColumn, &r.IdentifierValue, &r.CreatedAt, &r.AppliedCount)
		r.MatchType = memory.MatchType(matchType)
		r.CreatedAt = r.CreatedAt.UTC()
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan rules: %w", err)
	}
	return rules, nil
}

// Save replaces the rules of importType in one transaction.
func (p *Postgres) Save(ctx context.Context, importType string, rules []memory.Rule) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM correction_rules WHERE import_type = $1`, importType); err != nil {
		return fmt.Errorf("clear rules: %w", err)
	}

	if len(rules) > 0 {
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"correction_rules"},
			ruleColumns,
			pgx.CopyFromSlice(len(rules), func(i int) ([]any, error) {
				return ruleValues(importType, i, rules[i]), nil
			}),
		)
		if err != nil {
			return fmt.Errorf("insert rules: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit rules: %w", err)
	}
	return nil
}

func ruleValues(importType string, position int, r memory.Rule) []any {
	matchType := r.MatchType
	if matchType == "" {
		matchType = memory.MatchExact
	}
	return []any{
		importType, r.ID, position, r.Column, r.OriginalValue, r.CorrectedValue,
		string(matchType), r.IdentifierColumn, r.IdentifierValue, r.CreatedAt.UTC(), r.AppliedCount,
	}
}
