package password

import "errors"

var (
	// ErrHashing is returned when the hashing backend fails. It is fatal for
	// the operation; the engine never retries under a different algorithm.
	ErrHashing = errors.New("password hashing failed")
	// ErrInvalidHashFormat is returned when a stored hash cannot be parsed
	// or names an unsupported algorithm. Verification is impossible for such
	// a credential; the account effectively needs a password reset.
	ErrInvalidHashFormat = errors.New("invalid password hash format")
	// ErrInvalidConfig is returned when hashing parameters are out of range.
	ErrInvalidConfig = errors.New("invalid hashing configuration")
	// ErrEmptyPassword is returned when attempting to hash an empty password.
	ErrEmptyPassword = errors.New("password cannot be empty")
)
