package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/JonMunkholm/pupilbridge/internal/memory"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS correction_rules (
	import_type       TEXT    NOT NULL,
	id                TEXT    NOT NULL,
	position          INTEGER NOT NULL,
	column_name       TEXT    NOT NULL,
	original_value    TEXT    NOT NULL,
	corrected_value   TEXT    NOT NULL,
	match_type        TEXT    NOT NULL DEFAULT 'exact',
	identifier_column TEXT    NOT NULL DEFAULT '',
	identifier_value  TEXT    NOT NULL DEFAULT '',
	created_at        TEXT    NOT NULL,
	applied_count     INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (import_type, id)
);
CREATE INDEX IF NOT EXISTS idx_correction_rules_position ON correction_rules (import_type, position);
`

// SQLite stores rules in a local database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and migrates it.
// Use ":memory:" for a throwaway store.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer; an in-memory database also exists per connection.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &SQLite{db: db}, nil
}

// migrate runs the schema statements one by one.
func migrate(db *sql.DB) error {
	for _, stmt := range strings.Split(sqliteSchema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Ping checks that the database file is still usable.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Load returns the rules of importType in their saved order.
func (s *SQLite) Load(ctx context.Context, importType string) ([]memory.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, column_name, original_value, corrected_value, match_type,
		       identifier_column, identifier_value, created_at, applied_count
		FROM correction_rules
		WHERE import_type = ?
		ORDER BY position`, importType)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	defer rows.Close()

	rules := []memory.Rule{}
	for rows.Next() {
		r := memory.Rule{ImportType: importType}
		var matchType, created string
		if err := rows.Scan(&r.ID, &r.Column, &r.OriginalValue, &r.CorrectedValue, &matchType,
			&r.IdentifierColumn, &r.IdentifierValue, &created, &r.AppliedCount); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		r.MatchType = memory.MatchType(matchType)
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("rule %s: parse created_at: %w", r.ID, err)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}
	return rules, nil
}

// Save replaces the rules of importType in one transaction.
func (s *SQLite) Save(ctx context.Context, importType string, rules []memory.Rule) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM correction_rules WHERE import_type = ?`, importType); err != nil {
		return fmt.Errorf("clear rules: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ruleColumns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO correction_rules (%s) VALUES (%s)`,
		strings.Join(ruleColumns, ", "), placeholders))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rules {
		values := ruleValues(importType, i, r)
		values[9] = r.CreatedAt.UTC().Format(time.RFC3339Nano)
		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			return fmt.Errorf("insert rule %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rules: %w", err)
	}
	return nil
}
