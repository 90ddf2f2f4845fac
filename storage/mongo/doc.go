// Package mongo provides a MongoDB-backed session store plus client
// initialization with retry logic tuned for managed deployments and health
// checking.
//
// Sessions are documents keyed by session id. EnsureIndexes creates a
// user_id index for user-scoped operations and a TTL index so MongoDB evicts
// documents past their absolute expiry ceiling on its own; idle-expired
// documents are removed lazily on read or by CleanupExpired.
//
// # Usage
//
//	var cfg mongo.Config
//	config.MustLoad(&cfg)
//
//	db, err := mongo.NewWithDatabase(ctx, cfg, "myapp")
//	if err != nil {
//		return err
//	}
//
//	store := mongo.NewStore(db)
//	if err := store.EnsureIndexes(ctx); err != nil {
//		return err
//	}
//
//	manager := session.NewManager(store, session.DefaultConfig())
package mongo
