package postgres

import "errors"

// Domain-specific PostgreSQL errors. Use errors.Is() to check error types
// for retry logic and user-facing messages.
var (
	ErrEmptyConnectionString   = errors.New("empty postgres connection string")
	ErrFailedToParseConnString = errors.New("failed to parse postgres connection string")
	ErrDBNotReady              = errors.New("postgres did not become ready within the given time period")
	ErrMigrationFailed         = errors.New("postgres migration failed")
	ErrHealthcheckFailed       = errors.New("postgres healthcheck failed")
)
