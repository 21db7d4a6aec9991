package core

// runner.go moves validation off the caller's goroutine.
//
// A Runner belongs to one editing session (one uploaded file). Starting a new
// run cancels the previous one; the superseded run finishes with
// ErrSuperseded and its result is discarded, never merged. Independent
// sessions use independent Runners and share nothing but the optional
// Limiter.

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSuperseded is returned by a run that was replaced by a newer one.
var ErrSuperseded = errors.New("validation run superseded by a newer request")

// RunResult is the outcome of one validation run.
type RunResult struct {
	ID       string            `json:"runId"`
	Errors   []ValidationError `json:"errors"`
	Summary  Summary           `json:"summary"`
	Duration time.Duration     `json:"duration"`
	Err      error             `json:"-"`
}

// Runner executes validation runs with last-request-wins semantics.
type Runner struct {
	validator *Validator
	limiter   *Limiter

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// NewRunner creates a runner for v. limiter may be nil.
func NewRunner(v *Validator, limiter *Limiter) *Runner {
	return &Runner{validator: v, limiter: limiter}
}

// Start begins a run in the background and cancels any run still in flight.
// The returned channel yields exactly one result.
func (r *Runner) Start(ctx context.Context, rows []Row, extra ...FormatRule) <-chan RunResult {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.seq++
	seq := r.seq
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.mu.Unlock()

	id := uuid.NewString()
	runCtx = ContextWithRunID(runCtx, id)
	runCtx = ContextWithImportType(runCtx, r.validator.Profile().ImportType)
	out := make(chan RunResult, 1)

	go func() {
		defer cancel()
		start := time.Now()

		var errs []ValidationError
		run := func(ctx context.Context) error {
			var err error
			errs, err = r.validator.ValidateContext(ctx, rows, extra...)
			return err
		}

		var err error
		if r.limiter != nil {
			err = r.limiter.Do(runCtx, run)
		} else {
			err = run(runCtx)
		}

		res := RunResult{ID: id, Duration: time.Since(start)}
		if !r.finish(seq) {
			slog.Debug("discarding superseded validation run", "run_id", id)
			res.Err = ErrSuperseded
		} else if err != nil {
			res.Err = err
		} else {
			res.Errors = errs
			res.Summary = Summarize(errs)
		}
		out <- res
	}()

	return out
}

// Run starts a run and waits for its result.
func (r *Runner) Run(ctx context.Context, rows []Row, extra ...FormatRule) RunResult {
	return <-r.Start(ctx, rows, extra...)
}

// finish reports whether seq is still the latest run and clears its cancel
// func if so.
func (r *Runner) finish(seq uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seq != seq {
		return false
	}
	r.cancel = nil
	return true
}
