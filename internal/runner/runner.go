package runner

import (
	"context"
	"fmt"
	"time"

	"satbench/internal/backend"
	"satbench/internal/variant"
)

// RunResult is the outcome of executing one variant once. Created here,
// never mutated downstream.
type RunResult struct {
	Variant      string        `json:"variant"`
	Elapsed      time.Duration `json:"elapsed"`
	RowCount     int64         `json:"row_count"`
	Fingerprints []uint64      `json:"-"` // nil when the phase ran count-only
}

// PhaseFailure reports a backend failure for one variant execution. The
// runner never retries; the orchestrator decides whether the phase is
// skippable or run-fatal.
type PhaseFailure struct {
	Variant string
	Err     error
}

func (e *PhaseFailure) Error() string {
	return fmt.Sprintf("variant %q failed: %v", e.Variant, e.Err)
}

func (e *PhaseFailure) Unwrap() error {
	return e.Err
}

// Runner executes variant pairs through the backend, baseline first, each
// timed end to end. Strictly sequential: duration comparisons only attribute
// cleanly when the two variants never contend with each other.
type Runner struct {
	Backend backend.Backend
}

// ExecutePair runs baseline then optimized. With rowLevel set, both results
// carry ordered fingerprint sequences for row-level divergence; otherwise
// only counts are collected.
func (r *Runner) ExecutePair(ctx context.Context, baseline, optimized variant.Variant, rowLevel bool) (RunResult, RunResult, error) {
	base, err := r.execute(ctx, baseline, rowLevel)
	if err != nil {
		return RunResult{}, RunResult{}, err
	}

	opt, err := r.execute(ctx, optimized, rowLevel)
	if err != nil {
		return RunResult{}, RunResult{}, err
	}

	return base, opt, nil
}

func (r *Runner) execute(ctx context.Context, v variant.Variant, rowLevel bool) (RunResult, error) {
	if rowLevel {
		prints, elapsed, err := r.Backend.Fingerprints(ctx, v.SQL)
		if err != nil {
			return RunResult{}, &PhaseFailure{Variant: v.Name, Err: err}
		}
		if prints == nil {
			prints = []uint64{}
		}
		return RunResult{
			Variant:      v.Name,
			Elapsed:      elapsed,
			RowCount:     int64(len(prints)),
			Fingerprints: prints,
		}, nil
	}

	count, elapsed, err := r.Backend.Count(ctx, v.SQL)
	if err != nil {
		return RunResult{}, &PhaseFailure{Variant: v.Name, Err: err}
	}
	return RunResult{Variant: v.Name, Elapsed: elapsed, RowCount: count}, nil
}
