// Package postgres provides a PostgreSQL-backed session store plus
// production-ready connection pool management with retry logic, embedded
// schema migrations, and health checking.
//
// Sessions live in a single sessions table with JSONB columns for device
// info and metadata. Expiry is enforced by the application, not the
// database: CleanupExpired deletes every row whose idle or absolute clock
// has lapsed and is intended to run periodically.
//
// # Usage
//
//	var cfg postgres.Config
//	config.MustLoad(&cfg)
//
//	pool, err := postgres.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := postgres.Migrate(ctx, pool); err != nil {
//		return err
//	}
//
//	store := postgres.NewStore(pool)
//	manager := session.NewManager(store, session.DefaultConfig())
//
// Migrate applies the migrations embedded in the package using goose over
// the pool's database/sql adapter, so the schema version always matches the
// compiled code.
package postgres
