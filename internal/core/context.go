package core

import "context"

type contextKey string

const (
	ctxKeyRunID      contextKey = "run_id"
	ctxKeyImportType contextKey = "import_type"
)

// ContextWithRunID tags ctx with the id of the validation run it belongs to.
func ContextWithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRunID, id)
}

// ContextWithImportType tags ctx with the import type being validated.
func ContextWithImportType(ctx context.Context, importType string) context.Context {
	return context.WithValue(ctx, ctxKeyImportType, importType)
}

// RunIDFromContext extracts the run id from context.
func RunIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRunID).(string); ok {
		return v
	}
	return ""
}

// ImportTypeFromContext extracts the import type from context.
func ImportTypeFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyImportType).(string); ok {
		return v
	}
	return ""
}
