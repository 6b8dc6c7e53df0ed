package backend

import (
	"context"
	"fmt"
	"time"
)

// Backend executes read-only queries against the warehouse and reports
// end-to-end elapsed time, measured from submission to full result
// consumption.
type Backend interface {
	// Count runs a query expected to return a single bigint column and
	// returns its value.
	Count(ctx context.Context, sql string) (int64, time.Duration, error)

	// Fingerprints consumes every result row and returns one fingerprint
	// per row, in result order. Used when row-level divergence is wanted
	// without materializing full rows.
	Fingerprints(ctx context.Context, sql string) ([]uint64, time.Duration, error)

	// SnapshotConsistent reports whether all queries issued through this
	// backend observe a single consistent snapshot of the data.
	SnapshotConsistent() bool
}

// ExecutionError wraps a failure reported by the warehouse for one query.
type ExecutionError struct {
	Query string
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("executing query: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
