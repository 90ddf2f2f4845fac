package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrNilConfig is returned when Load receives a nil or non-pointer target.
var ErrNilConfig = errors.New("config: target must be a non-nil struct pointer")

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> any (struct value)
)

// Load parses environment variables into the struct pointed to by cfg.
// The first call in the process loads a .env file from the working directory
// if one exists; missing files are silently ignored. Each struct type is
// parsed once and cached, so repeated loads of the same type are cheap and
// consistent even if the environment changes mid-run.
func Load(cfg any) error {
	rv := reflect.ValueOf(cfg)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrNilConfig
	}

	dotenvOnce.Do(func() {
		// Missing .env is the normal production case.
		_ = godotenv.Load()
	})

	typ := rv.Elem().Type()
	if cached, ok := cache.Load(typ); ok {
		rv.Elem().Set(reflect.ValueOf(cached))
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", typ, err)
	}

	// First writer wins under concurrent loads of the same type.
	cached, _ := cache.LoadOrStore(typ, rv.Elem().Interface())
	rv.Elem().Set(reflect.ValueOf(cached))

	return nil
}

// MustLoad is Load that panics on error, for use during startup wiring.
func MustLoad(cfg any) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
