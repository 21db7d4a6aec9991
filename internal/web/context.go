package web

import (
	"context"
	"net/http"
	"strings"

	"github.com/JonMunkholm/pupilbridge/internal/core"
)

// sessionHeader identifies one editing session. Validation requests that
// share a session and import type supersede each other.
const sessionHeader = "X-Session-ID"

// maxSessionIDLen bounds client-chosen session ids kept in memory.
const maxSessionIDLen = 128

// sessionID returns the session id of r, or "" when the client sent none.
func sessionID(r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get(sessionHeader))
	if len(id) > maxSessionIDLen {
		return ""
	}
	return id
}

// withImportType tags ctx with the import type of the request so that log
// entries written before a run starts carry it too.
func withImportType(ctx context.Context, importType string) context.Context {
	return core.ContextWithImportType(ctx, importType)
}
