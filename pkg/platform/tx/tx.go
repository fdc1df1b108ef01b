// Package tx passes an open SQL transaction through context so multi-table
// writes can share one transaction without stores exposing Tx parameters.
package tx

import (
	"context"
	"database/sql"
)

type ctxKey struct{}

// WithTx stores the transaction in the context. A nil tx leaves the context
// unchanged.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, tx)
}

// From extracts the transaction from the context if one is present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(ctxKey{}).(*sql.Tx)
	return tx, ok
}
