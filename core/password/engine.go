package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	algorithmID    = "argon2id"
	formatVersion  = "v=19"
	phcFieldCount  = 6
	maxParallelism = 255
)

// Engine hashes, verifies, and validates passwords against a configured
// policy. Construct with New or NewWithDefaults; the zero value is unusable.
type Engine struct {
	hashing HashingConfig
	policy  PolicyConfig
}

// New creates an Engine after validating the hashing parameters.
func New(hashing HashingConfig, policy PolicyConfig) (*Engine, error) {
	if err := validateHashing(hashing); err != nil {
		return nil, err
	}
	return &Engine{hashing: hashing, policy: policy}, nil
}

// NewWithDefaults creates an Engine with the default hashing parameters and
// password policy.
func NewWithDefaults() (*Engine, error) {
	return New(DefaultHashing(), DefaultPolicy())
}

// Policy returns the engine's password policy.
func (e *Engine) Policy() PolicyConfig {
	return e.policy
}

// Hash derives an argon2id digest of the password and encodes it as a
// self-describing PHC string: $argon2id$v=19$m=..,t=..,p=..$<salt>$<digest>.
// The embedded parameters allow verification and upgrade checks without any
// external state.
func (e *Engine) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, e.hashing.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("%w: generate salt: %w", ErrHashing, err)
	}

	digest := argon2.IDKey([]byte(password), salt,
		e.hashing.Time, e.hashing.Memory, e.hashing.Parallelism, e.hashing.KeyLength)

	encoded := fmt.Sprintf("$%s$%s$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		formatVersion,
		e.hashing.Memory,
		e.hashing.Time,
		e.hashing.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	)

	return encoded, nil
}

// Verify recomputes the digest under the parameters embedded in the stored
// hash and compares in constant time. A mismatched password yields
// (false, nil); a hash that cannot be parsed yields ErrInvalidHashFormat.
func (e *Engine) Verify(password, encodedHash string) (bool, error) {
	params, salt, expected, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), salt,
		params.Time, params.Memory, params.Parallelism, uint32(len(expected)))

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

// NeedsRehash reports whether a stored hash should be transparently upgraded
// on the next successful login: true when the hash uses a different
// algorithm or a weaker memory cost than the engine is configured with.
func (e *Engine) NeedsRehash(encodedHash string) (bool, error) {
	if !strings.HasPrefix(encodedHash, "$"+algorithmID+"$") {
		return true, nil
	}

	params, _, _, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	return params.Memory < e.hashing.Memory, nil
}

func validateHashing(cfg HashingConfig) error {
	if cfg.Memory < 8*1024 {
		return fmt.Errorf("%w: memory must be at least 8192 KiB", ErrInvalidConfig)
	}
	if cfg.Time == 0 {
		return fmt.Errorf("%w: time cost must be greater than zero", ErrInvalidConfig)
	}
	if cfg.Parallelism == 0 {
		return fmt.Errorf("%w: parallelism must be greater than zero", ErrInvalidConfig)
	}
	if cfg.SaltLength < 8 {
		return fmt.Errorf("%w: salt length must be at least 8 bytes", ErrInvalidConfig)
	}
	if cfg.KeyLength < 16 {
		return fmt.Errorf("%w: key length must be at least 16 bytes", ErrInvalidConfig)
	}
	return nil
}

func decodeHash(encoded string) (HashingConfig, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != phcFieldCount || parts[0] != "" {
		return HashingConfig{}, nil, nil, ErrInvalidHashFormat
	}

	if parts[1] != algorithmID {
		return HashingConfig{}, nil, nil, fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidHashFormat, parts[1])
	}
	if parts[2] != formatVersion {
		return HashingConfig{}, nil, nil, fmt.Errorf("%w: unsupported version %q", ErrInvalidHashFormat, parts[2])
	}

	var memory, time uint32
	var parallelism uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &parallelism); err != nil {
		return HashingConfig{}, nil, nil, fmt.Errorf("%w: parse cost parameters: %w", ErrInvalidHashFormat, err)
	}
	if memory == 0 || time == 0 || parallelism == 0 || parallelism > maxParallelism {
		return HashingConfig{}, nil, nil, fmt.Errorf("%w: cost parameters out of range", ErrInvalidHashFormat)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return HashingConfig{}, nil, nil, fmt.Errorf("%w: decode salt: %w", ErrInvalidHashFormat, err)
	}

	digest, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return HashingConfig{}, nil, nil, fmt.Errorf("%w: decode digest: %w", ErrInvalidHashFormat, err)
	}
	if len(digest) < 16 {
		return HashingConfig{}, nil, nil, fmt.Errorf("%w: digest too short", ErrInvalidHashFormat)
	}

	cfg := HashingConfig{
		Memory:      memory,
		Time:        time,
		Parallelism: uint8(parallelism),
		SaltLength:  uint32(len(salt)),
		KeyLength:   uint32(len(digest)),
	}

	return cfg, salt, digest, nil
}
