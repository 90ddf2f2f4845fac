package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/core/logger"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json formatter emits parseable records", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithJSONFormatter(),
			logger.WithOutput(&buf),
			logger.WithAttr(slog.String("service", "authkit")),
		)

		log.Info("hello", logger.Component("test"))

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "hello", record["msg"])
		assert.Equal(t, "authkit", record["service"])
		assert.Equal(t, "test", record["component"])
	})

	t.Run("level filters records", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithLevel(slog.LevelWarn), logger.WithOutput(&buf))

		log.Info("dropped")
		log.Warn("kept")

		out := buf.String()
		assert.NotContains(t, out, "dropped")
		assert.Contains(t, out, "kept")
	})

	t.Run("development preset logs debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithDevelopment("authkit"), logger.WithOutput(&buf))

		log.Debug("verbose")

		out := buf.String()
		assert.Contains(t, out, "verbose")
		assert.Contains(t, out, "service=authkit")
	})

	t.Run("production preset drops debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithProduction("authkit"), logger.WithOutput(&buf))

		log.Debug("verbose")
		assert.Empty(t, strings.TrimSpace(buf.String()))
	})
}

func TestAttrs(t *testing.T) {
	t.Parallel()

	t.Run("zero values yield empty attrs", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, slog.Attr{}, logger.Error(nil))
		assert.Equal(t, slog.Attr{}, logger.UserID(""))
		assert.Equal(t, slog.Attr{}, logger.SessionID(""))
		assert.Equal(t, slog.Attr{}, logger.IPAddress(""))
		assert.Equal(t, slog.Attr{}, logger.Component(""))
	})

	t.Run("non-zero values carry the expected keys", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "error", logger.Error(errors.New("boom")).Key)
		assert.Equal(t, "user_id", logger.UserID("u1").Key)
		assert.Equal(t, "session_id", logger.SessionID("s1").Key)
		assert.Equal(t, "ip_address", logger.IPAddress("203.0.113.7").Key)
		assert.Equal(t, "duration", logger.Duration(time.Second).Key)
		assert.Equal(t, "count", logger.Count(3).Key)
	})
}
