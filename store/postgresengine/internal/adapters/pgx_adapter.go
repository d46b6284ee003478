package adapters

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxQuerier is the part of *pgxpool.Pool and pgx.Tx the adapter needs.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PGXAdapter implements DBAdapter for pgxpool.Pool, with an optional replica pool for reads.
type PGXAdapter struct {
	pool    *pgxpool.Pool
	replica *pgxpool.Pool
}

// NewPGXAdapter creates a new PGX adapter with a primary pool.
func NewPGXAdapter(pool *pgxpool.Pool) *PGXAdapter {
	return &PGXAdapter{pool: pool}
}

// NewPGXAdapterWithReplica creates a new PGX adapter that serves QueryReplica from replica.
func NewPGXAdapterWithReplica(pool *pgxpool.Pool, replica *pgxpool.Pool) *PGXAdapter {
	return &PGXAdapter{pool: pool, replica: replica}
}

// Query runs query on the primary pool.
func (p *PGXAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	return pgxQuery(ctx, p.pool, query)
}

// QueryReplica runs query on the replica pool, or on the primary when there is none.
func (p *PGXAdapter) QueryReplica(ctx context.Context, query string) (DBRows, error) {
	if p.replica == nil {
		return p.Query(ctx, query)
	}

	return pgxQuery(ctx, p.replica, query)
}

// Exec runs a statement on the primary pool.
func (p *PGXAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	return pgxExec(ctx, p.pool, query)
}

// BeginTx starts a read committed transaction on the primary pool.
// Row locks and conditional updates provide the isolation the rental workflows need.
func (p *PGXAdapter) BeginTx(ctx context.Context) (DBTx, error) {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, err
	}

	return pgxTx{tx: tx}, nil
}

type pgxTx struct {
	tx pgx.Tx
}

func (t pgxTx) Query(ctx context.Context, query string) (DBRows, error) {
	return pgxQuery(ctx, t.tx, query)
}

func (t pgxTx) Exec(ctx context.Context, query string) (DBResult, error) {
	return pgxExec(ctx, t.tx, query)
}

func (t pgxTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t pgxTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

func pgxQuery(ctx context.Context, q pgxQuerier, query string) (DBRows, error) {
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	return pgxRows{rows: rows}, nil
}

func pgxExec(ctx context.Context, q pgxQuerier, query string) (DBResult, error) {
	tag, err := q.Exec(ctx, query)
	if err != nil {
		return nil, err
	}

	return pgxResult{tag: tag}, nil
}

type pgxRows struct {
	rows pgx.Rows
}

func (r pgxRows) Next() bool             { return r.rows.Next() }
func (r pgxRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r pgxRows) Err() error             { return r.rows.Err() }

// Close never fails for pgx; errors surface through Err.
func (r pgxRows) Close() error {
	r.rows.Close()
	return nil
}

type pgxResult struct {
	tag pgconn.CommandTag
}

func (r pgxResult) RowsAffected() (int64, error) {
	return r.tag.RowsAffected(), nil
}
