// Package sqlc holds a hand-authored Queries/DBTX pair in the shape the
// sqlc code generator would emit from a queries.sql + schema.sql pair, for
// the tables internal/store, internal/convstore, and internal/calendar
// need. sqlc itself cannot run in this environment; this package is
// maintained by hand instead, following its conventions (a DBTX interface
// satisfied by both *pgxpool.Pool and pgx.Tx, one exported method per
// query, *Row/*Rows scanned positionally).
package sqlc

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// DBTX is satisfied by both a pool and a transaction, so Queries works
// identically inside and outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgx.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries is the generated-style query surface over a DBTX.
type Queries struct {
	db DBTX
}

// New builds a Queries bound to db (a pool for ad-hoc calls, a tx inside
// db.WithTx).
func New(db DBTX) *Queries {
	return &Queries{db: db}
}
