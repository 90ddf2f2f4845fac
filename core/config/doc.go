// Package config loads environment variables into typed structs, with
// .env file support and per-type caching.
//
// Struct fields are mapped with env tags:
//
//	type RedisConfig struct {
//		URL           string        `env:"REDIS_URL,required"`
//		RetryInterval time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
//	}
//
//	var cfg RedisConfig
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
//	// Or panic on failure during startup wiring:
//	config.MustLoad(&cfg)
//
// The first Load in a process reads a .env file from the working directory
// when one exists, which keeps local development friction-free without
// affecting deployments.
//
// Each struct type is parsed once and cached for the process lifetime, so
// every component loading the same config type sees identical values even
// if the environment mutates mid-run. Distinct types cache independently.
package config
