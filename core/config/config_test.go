package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/core/config"
)

type serverConfig struct {
	Host    string        `env:"TEST_SERVER_HOST" envDefault:"localhost"`
	Port    int           `env:"TEST_SERVER_PORT" envDefault:"8080"`
	Timeout time.Duration `env:"TEST_SERVER_TIMEOUT" envDefault:"30s"`
}

type requiredConfig struct {
	Token string `env:"TEST_REQUIRED_TOKEN,required"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults apply when env is unset", func(t *testing.T) {
		var cfg serverConfig
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, "localhost", cfg.Host)
		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, 30*time.Second, cfg.Timeout)
	})

	t.Run("second load returns the cached value", func(t *testing.T) {
		var first serverConfig
		require.NoError(t, config.Load(&first))

		// A changed environment must not leak into an already-cached type.
		t.Setenv("TEST_SERVER_PORT", "9999")

		var second serverConfig
		require.NoError(t, config.Load(&second))
		assert.Equal(t, first, second)
	})

	t.Run("missing required variable fails", func(t *testing.T) {
		var cfg requiredConfig
		err := config.Load(&cfg)
		require.Error(t, err)
	})

	t.Run("rejects non-pointer targets", func(t *testing.T) {
		assert.ErrorIs(t, config.Load(serverConfig{}), config.ErrNilConfig)
		assert.ErrorIs(t, config.Load(nil), config.ErrNilConfig)

		var s *serverConfig
		assert.ErrorIs(t, config.Load(s), config.ErrNilConfig)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on failure", func(t *testing.T) {
		assert.Panics(t, func() {
			var cfg requiredConfig
			config.MustLoad(&cfg)
		})
	})

	t.Run("fills target on success", func(t *testing.T) {
		var cfg serverConfig
		assert.NotPanics(t, func() { config.MustLoad(&cfg) })
		assert.Equal(t, "localhost", cfg.Host)
	})
}
