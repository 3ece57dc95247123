// Package db provides PostgreSQL connection utilities on top of
// [github.com/jackc/pgx/v5/pgxpool].
//
// # Configuration
//
// [Config] is filled by pkg/config from DB_HOST, DB_PORT, DB_DATABASE,
// DB_USERNAME and DB_PASSWORD, or from DATABASE_URL when set:
//
//	pool, err := db.Connect(ctx, cfg.DB)
//	if err != nil {
//	    return err
//	}
//	exec := query.Pgx(pool)
//
// # Health Checks and Shutdown
//
//	app := swallow.New(
//	    swallow.WithHealthChecks(swallow.WithReadinessCheck("db", db.Healthcheck(pool))),
//	)
//	err = app.Run(swallow.ShutdownHook(db.Shutdown(pool)))
//
// # Transactions
//
// Query builders run single statements. Use [InTx] to group several
// builders in one transaction.
package db
