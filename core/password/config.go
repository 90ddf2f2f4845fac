package password

import "time"

// PolicyConfig defines the password acceptance policy. It is immutable once
// handed to an Engine; construct a new Engine to change the policy.
//
// LockoutThreshold, LockoutDuration, and ExpirationDays describe account
// policy enforced by the authentication layer that owns login attempts; they
// live here so the whole policy is declared in one place.
type PolicyConfig struct {
	MinLength           int
	MaxLength           int
	RequireUppercase    bool
	RequireLowercase    bool
	RequireDigit        bool
	RequireSpecial      bool
	MinUniqueChars      int
	MaxConsecutiveChars int
	// PasswordHistoryCount limits how many previous hashes Validate checks
	// for reuse.
	PasswordHistoryCount int
	// ExpirationDays is zero when passwords never expire.
	ExpirationDays  int
	LockoutThreshold int
	LockoutDuration  time.Duration
}

// DefaultPolicy returns the baseline password policy.
func DefaultPolicy() PolicyConfig {
	return PolicyConfig{
		MinLength:            12,
		MaxLength:            128,
		RequireUppercase:     true,
		RequireLowercase:     true,
		RequireDigit:         true,
		RequireSpecial:       true,
		MinUniqueChars:       6,
		MaxConsecutiveChars:  3,
		PasswordHistoryCount: 12,
		ExpirationDays:       90,
		LockoutThreshold:     5,
		LockoutDuration:      30 * time.Minute,
	}
}

// HashingConfig holds argon2id cost parameters. The zero value is invalid;
// start from one of the presets.
type HashingConfig struct {
	// Memory is the memory cost in KiB.
	Memory uint32
	// Time is the number of passes over memory.
	Time uint32
	// Parallelism is the number of lanes.
	Parallelism uint8
	// SaltLength is the salt size in bytes.
	SaltLength uint32
	// KeyLength is the derived key size in bytes.
	KeyLength uint32
}

// DefaultHashing returns the baseline argon2id parameters (64 MiB, 3 passes,
// 4 lanes).
func DefaultHashing() HashingConfig {
	return HashingConfig{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 4,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// HighSecurityHashing returns parameters for deployments that can afford
// 128 MiB per hash.
func HighSecurityHashing() HashingConfig {
	return HashingConfig{
		Memory:      128 * 1024,
		Time:        4,
		Parallelism: 8,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// LowMemoryHashing returns parameters for memory-constrained deployments,
// trading memory cost for an extra pass.
func LowMemoryHashing() HashingConfig {
	return HashingConfig{
		Memory:      32 * 1024,
		Time:        4,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}
