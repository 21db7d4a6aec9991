package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged with its technical detail and the request id, and
// returned to the client as a user-friendly message with an action and a
// support code from core.MapError.

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/pupilbridge/internal/core"
	"github.com/JonMunkholm/pupilbridge/internal/logging"
	"github.com/JonMunkholm/pupilbridge/internal/memory"
	"github.com/JonMunkholm/pupilbridge/internal/table"
)

// Request errors raised by the handlers themselves.
var (
	errInvalidRequest = errors.New("invalid request body")
	errNoFile         = errors.New("no file provided")
	errFileTooLarge   = errors.New("file too large")
	errTooManyRows    = errors.New("too many rows")
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs the technical error server-side and writes the mapped
// user message as JSON.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	writeJSON(w, statusCode, ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// fail responds with the status code that fits err.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.respondError(w, r, err, statusFor(err))
}

// uploadError classifies a failure to read a request body.
func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errFileTooLarge
	}
	return fmt.Errorf("%w: %v", errInvalidRequest, err)
}

// statusFor maps known errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrUnknownImportType),
		errors.Is(err, memory.ErrRuleNotFound):
		return http.StatusNotFound
	case errors.Is(err, errFileTooLarge),
		errors.Is(err, errTooManyRows):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, table.ErrUnsupportedFileType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, errInvalidRequest),
		errors.Is(err, errNoFile),
		errors.Is(err, table.ErrEmptyFile),
		errors.Is(err, memory.ErrInvalidFile),
		errors.Is(err, memory.ErrUnsupportedVersion),
		errors.Is(err, memory.ErrInvalidSuggestions):
		return http.StatusBadRequest
	case errors.Is(err, memory.ErrImportTypeMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, core.ErrTooManyRuns):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		// Client went away; the status is only seen in logs.
		return 499
	default:
		return http.StatusInternalServerError
	}
}
