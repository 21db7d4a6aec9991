// Package store persists correction rules. Both backends keep one ordered
// rule set per import type and replace it as a whole on Save.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/pupilbridge/internal/memory"
)

// Open returns a Postgres store when databaseURL is set, otherwise a SQLite
// store at sqlitePath.
func Open(ctx context.Context, databaseURL, sqlitePath string, opts ...PostgresOption) (memory.Store, func(), error) {
	if strings.TrimSpace(databaseURL) != "" {
		pg, err := NewPostgres(ctx, databaseURL, opts...)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	}
	if sqlitePath == "" {
		return nil, nil, fmt.Errorf("no rule store configured: set DATABASE_URL or RULES_SQLITE_PATH")
	}
	lite, err := OpenSQLite(sqlitePath)
	if err != nil {
		return nil, nil, err
	}
	return lite, func() { _ = lite.Close() }, nil
}

// ruleColumns is the insert column order shared by both backends.
var ruleColumns = []string{
	"import_type", "id", "position", "column_name", "original_value", "corrected_value",
	"match_type", "identifier_column", "identifier_value", "created_at", "applied_count",
}
