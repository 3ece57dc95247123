package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/swallow/pkg/query"
)

// WithTx runs fn in a transaction that is committed when fn returns nil
// and rolled back otherwise, including when fn panics.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, pool, fn)
}

// InTx runs several query builders atomically: every builder created on
// exec inside fn shares one transaction.
//
//	err := db.InTx(ctx, pool, func(exec query.Executor) error {
//	    id, err := query.New(exec).Table("jobs").Insert(ctx, job)
//	    if err != nil {
//	        return err
//	    }
//	    _, err = query.New(exec).Table("job_tags").Insert(ctx, map[string]any{"job_id": id, "tag": "go"})
//	    return err
//	})
func InTx(ctx context.Context, pool *pgxpool.Pool, fn func(exec query.Executor) error) error {
	return WithTx(ctx, pool, func(tx pgx.Tx) error {
		return fn(query.Pgx(tx))
	})
}
