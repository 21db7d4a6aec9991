package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error", nil, ""},
		{"import type mismatch", errors.New("import type mismatch: file is \"teachers\", session is \"students\""), "RULE001"},
		{"missing rules", errors.New("invalid rules file: missing rules"), "RULE002"},
		{"unsupported version", errors.New("unsupported rules version \"2.0\""), "RULE003"},
		{"unknown import type", fmt.Errorf("lookup: %w", ErrUnknownImportType), "VAL001"},
		{"too many runs", ErrTooManyRuns, "RUN001"},
		{"superseded", fmt.Errorf("run 3: %w", ErrSuperseded), "RUN002"},
		{"context canceled", context.Canceled, "RUN003"},
		{"deadline", context.DeadlineExceeded, "RUN004"},
		{"case insensitive", errors.New("FILE TOO LARGE"), "FILE001"},
		{"unknown", errors.New("something odd"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
			if tt.err != nil && got.Message == "" {
				t.Errorf("MapError(%v).Message is empty", tt.err)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}

	got := FormatUserError(ErrTooManyRuns)
	want := "System is busy validating other files (Code: RUN001). Please wait a moment and try again"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("random failure"), false},
		{ErrSuperseded, true},
		{ErrUnknownImportType, true},
	}

	for _, tt := range tests {
		if got := IsUserFacing(tt.err); got != tt.want {
			t.Errorf("IsUserFacing(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
