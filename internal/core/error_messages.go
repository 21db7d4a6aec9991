package core

// # Error Codes Reference
//
// Technical errors are mapped to user-facing messages with a code that users
// can quote to support. Codes are grouped by category:
//
// # Rule Errors (RULE001-RULE099)
//
//	RULE001 - Import type mismatch: the rules file belongs to another import type
//	          Patterns: "import type mismatch"
//	RULE002 - Missing rules: the rules file has no rules array
//	          Patterns: "missing rules"
//	RULE003 - Unsupported version: the rules file has an unknown format version
//	          Patterns: "unsupported rules version"
//	RULE004 - Invalid rules file: the file is not valid JSON
//	          Patterns: "invalid rules file"
//	RULE005 - Rule not found
//	          Patterns: "rule not found"
//	RULE006 - Invalid suggestion payload from the advisor
//	          Patterns: "invalid suggestion"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Unknown import type
//	         Patterns: "unknown import type"
//	VAL002 - Too many rows in one dataset
//	         Patterns: "too many rows"
//	VAL003 - Invalid request body
//	         Patterns: "invalid request"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	FILE002 - Unsupported file type
//	FILE003 - Empty file / no header
//	FILE004 - No file provided
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - System busy: too many validation runs
//	RUN002 - Superseded: a newer validation request replaced this one
//	RUN003 - Request cancelled
//	RUN004 - Request timed out
//
// # Storage Errors (DB001-DB099)
//
//	DB001 - Connection refused
//	DB002 - Timeout
//
// # Rate Limiting (RATE001)
//
// # Default Error (ERR000)
//
// Patterns are matched case-insensitively with strings.Contains; the first
// match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Correction rules
	{"import type mismatch", UserMessage{
		Message: "The rules file was exported for a different import type",
		Action:  "Export the rules from a session with the same import type",
		Code:    "RULE001",
	}},
	{"missing rules", UserMessage{
		Message: "The rules file does not contain any rules",
		Action:  "Check that the file was exported by this application",
		Code:    "RULE002",
	}},
	{"unsupported rules version", UserMessage{
		Message: "The rules file format version is not supported",
		Action:  "Re-export the rules with the current version",
		Code:    "RULE003",
	}},
	{"invalid rules file", UserMessage{
		Message: "The rules file could not be read",
		Action:  "Upload the JSON file exactly as it was exported",
		Code:    "RULE004",
	}},
	{"rule not found", UserMessage{
		Message: "Correction rule not found",
		Action:  "Reload the rule list and try again",
		Code:    "RULE005",
	}},
	{"invalid suggestion", UserMessage{
		Message: "The suggested corrections were malformed and ignored",
		Action:  "Review the data manually or request new suggestions",
		Code:    "RULE006",
	}},

	// Validation
	{"unknown import type", UserMessage{
		Message: "Unknown import type",
		Action:  "Choose one of the supported import types",
		Code:    "VAL001",
	}},
	{"too many rows", UserMessage{
		Message: "The file contains more rows than can be validated at once",
		Action:  "Split the export into smaller files",
		Code:    "VAL002",
	}},
	{"invalid request", UserMessage{
		Message: "The request could not be read",
		Action:  "Check the request body and try again",
		Code:    "VAL003",
	}},

	// Files
	{"file too large", UserMessage{
		Message: "File exceeds maximum size limit",
		Action:  "Split the file into smaller chunks",
		Code:    "FILE001",
	}},
	{"unsupported file type", UserMessage{
		Message: "Unsupported file type",
		Action:  "Upload a CSV or XLSX export from LehrerOffice",
		Code:    "FILE002",
	}},
	{"empty file", UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Upload an export that contains a header and data rows",
		Code:    "FILE003",
	}},
	{"no file provided", UserMessage{
		Message: "No file was selected",
		Action:  "Please select a file to validate",
		Code:    "FILE004",
	}},

	// Runs
	{"too many validation runs", UserMessage{
		Message: "System is busy validating other files",
		Action:  "Please wait a moment and try again",
		Code:    "RUN001",
	}},
	{"superseded", UserMessage{
		Message: "A newer validation request replaced this one",
		Action:  "No action needed; the latest result will be shown",
		Code:    "RUN002",
	}},
	{"context canceled", UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "RUN003",
	}},
	{"context deadline exceeded", UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "RUN004",
	}},

	// Storage
	{"connection refused", UserMessage{
		Message: "Unable to connect to the rule store",
		Action:  "Please try again in a few moments",
		Code:    "DB001",
	}},
	{"timeout", UserMessage{
		Message: "Operation timed out",
		Action:  "Please try again later",
		Code:    "DB002",
	}},

	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Returns an empty UserMessage for a nil error.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders err as one line for CLI output.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific (non-default) message.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
