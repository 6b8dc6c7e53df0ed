package backend

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/jackc/pgx/v5"
)

// Postgres runs queries over a single pgx connection. When opened with
// snapshot enabled, every query runs inside one repeatable-read read-only
// transaction, so the baseline and optimized variants observe the same data.
type Postgres struct {
	conn *pgx.Conn
	tx   pgx.Tx
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Connect opens a connection and, if snapshot is set, pins a repeatable-read
// read-only transaction for the lifetime of the backend.
func Connect(ctx context.Context, connStr string, snapshot bool) (*Postgres, error) {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	p := &Postgres{conn: conn}

	if snapshot {
		tx, err := conn.BeginTx(ctx, pgx.TxOptions{
			IsoLevel:   pgx.RepeatableRead,
			AccessMode: pgx.ReadOnly,
		})
		if err != nil {
			_ = conn.Close(ctx)
			return nil, fmt.Errorf("beginning snapshot transaction: %w", err)
		}
		p.tx = tx
	}

	return p, nil
}

func (p *Postgres) Close(ctx context.Context) {
	if p.tx != nil {
		_ = p.tx.Rollback(ctx)
	}
	_ = p.conn.Close(ctx)
}

func (p *Postgres) SnapshotConsistent() bool {
	return p.tx != nil
}

func (p *Postgres) querier() querier {
	if p.tx != nil {
		return p.tx
	}
	return p.conn
}

func (p *Postgres) Count(ctx context.Context, sql string) (int64, time.Duration, error) {
	start := time.Now()

	var n int64
	if err := p.querier().QueryRow(ctx, sql).Scan(&n); err != nil {
		return 0, 0, &ExecutionError{Query: sql, Err: err}
	}

	return n, time.Since(start), nil
}

func (p *Postgres) Fingerprints(ctx context.Context, sql string) ([]uint64, time.Duration, error) {
	start := time.Now()

	rows, err := p.querier().Query(ctx, sql)
	if err != nil {
		return nil, 0, &ExecutionError{Query: sql, Err: err}
	}
	defer rows.Close()

	// Non-nil even for zero rows: an empty result is still a row-level
	// result, and nil is how count-only runs are distinguished downstream.
	prints := []uint64{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, 0, &ExecutionError{Query: sql, Err: err}
		}
		prints = append(prints, fingerprint(values))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, &ExecutionError{Query: sql, Err: err}
	}

	// Elapsed includes full result consumption, not just acceptance.
	return prints, time.Since(start), nil
}

// fingerprint hashes a row's business key and change payload columns into a
// single comparable value. Columns are separated so ("ab","c") and ("a","bc")
// hash differently.
func fingerprint(values []any) uint64 {
	h := fnv.New64a()
	for _, v := range values {
		fmt.Fprintf(h, "%v", v)
		h.Write([]byte{0x1f})
	}
	return h.Sum64()
}
