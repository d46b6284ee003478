package adapters

import (
	"context"
	"database/sql"
)

type stdRows struct {
	rows *sql.Rows
}

func (r *stdRows) Next() bool             { return r.rows.Next() }
func (r *stdRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r *stdRows) Err() error             { return r.rows.Err() }
func (r *stdRows) Close() error           { return r.rows.Close() }

type stdResult struct {
	sql.Result
}

// stdQuerier is what sql.DB, sql.Tx, sqlx.DB and sqlx.Tx have in common.
type stdQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func stdQuery(ctx context.Context, q stdQuerier, query string) (DBRows, error) {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows}, nil
}

func stdExec(ctx context.Context, q stdQuerier, query string) (DBResult, error) {
	result, err := q.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return stdResult{Result: result}, nil
}

// stdTx wraps a database/sql style transaction to implement DBTx.
type stdTx struct {
	tx interface {
		stdQuerier
		Commit() error
		Rollback() error
	}
}

func (t *stdTx) Query(ctx context.Context, query string) (DBRows, error) {
	return stdQuery(ctx, t.tx, query)
}

func (t *stdTx) Exec(ctx context.Context, query string) (DBResult, error) {
	return stdExec(ctx, t.tx, query)
}

func (t *stdTx) Commit(_ context.Context) error {
	return t.tx.Commit()
}

func (t *stdTx) Rollback(_ context.Context) error {
	return t.tx.Rollback()
}
