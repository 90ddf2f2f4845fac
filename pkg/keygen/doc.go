// Package keygen generates unpredictable strings for credential workflows:
// initial passwords, account recovery codes, and session identifiers.
//
// All output is drawn from crypto/rand. The package never falls back to a
// seeded PRNG; callers receive ErrRandomSource if the system source fails.
//
// # Usage
//
//	import "github.com/dmitrymomot/authkit/pkg/keygen"
//
//	password, err := keygen.Password(20)       // class-complete, shuffled
//	codes, err := keygen.RecoveryCodes(10)     // "XXXX-XXXX" format
//	id, err := keygen.SessionID(32)            // alphanumeric identifier
//
// Recovery codes use an alphabet without visually ambiguous glyphs so they
// survive being read over the phone or copied from paper.
package keygen
