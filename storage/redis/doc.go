// Package redis provides a Redis-backed session store plus production-ready
// client initialization with retry logic and health checking.
//
// The store persists each session as a JSON value keyed by session id with a
// TTL at the absolute expiry ceiling, and maintains a per-user set of session
// ids so user-scoped operations never scan the keyspace. Redis handles
// absolute expiry on its own; idle-expired records are removed lazily on read
// or by CleanupExpired.
//
// # Usage
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	store := redis.NewStore(client, redis.WithNamespace("myapp:"))
//	manager := session.NewManager(store, session.DefaultConfig())
//
// Connect validates the URL scheme (redis:// or rediss://), retries transient
// failures with a growing interval, and verifies connectivity with a ping
// before returning. Healthcheck returns a probe function for readiness
// endpoints.
package redis
