package keygen

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const (
	uppercase    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowercase    = "abcdefghijklmnopqrstuvwxyz"
	digits       = "0123456789"
	special      = "!@#$%^&*()_+-=[]{}|;:,.<>?"
	alphanumeric = uppercase + lowercase + digits

	// recoveryAlphabet excludes glyphs that are easy to confuse when read
	// aloud or transcribed (0/O, 1/I).
	recoveryAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	// MinPasswordLength is the floor enforced by Password regardless of the
	// requested length.
	MinPasswordLength = 16

	recoveryCodeLength = 8
)

// ErrRandomSource is returned when the system's secure random source fails.
var ErrRandomSource = errors.New("secure random source unavailable")

// Password generates a random password of the given length (minimum 16).
// The first four positions are seeded with one character from each class so
// every generated password satisfies upper/lower/digit/special requirements,
// then the whole buffer is shuffled so class positions are unpredictable.
func Password(length int) (string, error) {
	if length < MinPasswordLength {
		length = MinPasswordLength
	}

	buf := make([]byte, 0, length)

	for _, alphabet := range []string{uppercase, lowercase, digits, special} {
		c, err := randomByte(alphabet)
		if err != nil {
			return "", err
		}
		buf = append(buf, c)
	}

	union := uppercase + lowercase + digits + special
	for len(buf) < length {
		c, err := randomByte(union)
		if err != nil {
			return "", err
		}
		buf = append(buf, c)
	}

	// Fisher-Yates over the full buffer.
	for i := len(buf) - 1; i > 0; i-- {
		j, err := randomInt(i + 1)
		if err != nil {
			return "", err
		}
		buf[i], buf[j] = buf[j], buf[i]
	}

	return string(buf), nil
}

// RecoveryCodes generates count single-use recovery codes formatted as two
// four-character groups joined by a dash, e.g. "K7QF-9XMA".
func RecoveryCodes(count int) ([]string, error) {
	codes := make([]string, 0, count)

	for range count {
		var sb strings.Builder
		sb.Grow(recoveryCodeLength + 1)

		for i := range recoveryCodeLength {
			if i == recoveryCodeLength/2 {
				sb.WriteByte('-')
			}
			c, err := randomByte(recoveryAlphabet)
			if err != nil {
				return nil, err
			}
			sb.WriteByte(c)
		}

		codes = append(codes, sb.String())
	}

	return codes, nil
}

// SessionID generates a uniform-random alphanumeric identifier of the given
// length. At the default length of 32 the identifier carries ~190 bits of
// entropy, far beyond what is guessable within any session lifetime.
func SessionID(length int) (string, error) {
	buf := make([]byte, length)
	for i := range buf {
		c, err := randomByte(alphanumeric)
		if err != nil {
			return "", err
		}
		buf[i] = c
	}
	return string(buf), nil
}

func randomByte(alphabet string) (byte, error) {
	i, err := randomInt(len(alphabet))
	if err != nil {
		return 0, err
	}
	return alphabet[i], nil
}

func randomInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRandomSource, err)
	}
	return int(v.Int64()), nil
}
