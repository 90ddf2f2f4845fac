package password

import (
	"fmt"
	"math"
	"strings"
	"unicode"
)

// Strength is a coarse five-level password quality rating.
type Strength int

const (
	VeryWeak Strength = iota
	Weak
	Fair
	Strong
	VeryStrong
)

// String implements fmt.Stringer.
func (s Strength) String() string {
	switch s {
	case VeryWeak:
		return "very weak"
	case Weak:
		return "weak"
	case Fair:
		return "fair"
	case Strong:
		return "strong"
	case VeryStrong:
		return "very strong"
	default:
		return "unknown"
	}
}

// Score returns the numeric value of the strength tier (0-4).
func (s Strength) Score() int {
	return int(s)
}

// IsAcceptable reports whether the strength meets the Fair floor required
// for a password to be considered valid.
func (s Strength) IsAcceptable() bool {
	return s >= Fair
}

// IssueCode identifies a specific policy failure.
type IssueCode string

const (
	IssueTooShort                IssueCode = "too_short"
	IssueTooLong                 IssueCode = "too_long"
	IssueMissingUppercase        IssueCode = "missing_uppercase"
	IssueMissingLowercase        IssueCode = "missing_lowercase"
	IssueMissingDigit            IssueCode = "missing_digit"
	IssueMissingSpecial          IssueCode = "missing_special"
	IssueInsufficientUniqueChars IssueCode = "insufficient_unique_chars"
	IssueTooManyConsecutiveChars IssueCode = "too_many_consecutive_chars"
	IssueCommonPassword          IssueCode = "common_password"
	IssueContainsUsername        IssueCode = "contains_username"
	IssueContainsEmail           IssueCode = "contains_email"
	IssueRecentlyUsed            IssueCode = "recently_used"
	IssueCompromised             IssueCode = "compromised"
)

// Issue is a single policy failure with the context needed to render
// actionable feedback. Min, Max, and Actual are populated only for codes
// that carry bounds.
type Issue struct {
	Code   IssueCode
	Min    int
	Max    int
	Actual int
}

// Message returns a human-readable description of the issue.
func (i Issue) Message() string {
	switch i.Code {
	case IssueTooShort:
		return fmt.Sprintf("Password must be at least %d characters (currently %d)", i.Min, i.Actual)
	case IssueTooLong:
		return fmt.Sprintf("Password must be at most %d characters (currently %d)", i.Max, i.Actual)
	case IssueMissingUppercase:
		return "Password must contain at least one uppercase letter"
	case IssueMissingLowercase:
		return "Password must contain at least one lowercase letter"
	case IssueMissingDigit:
		return "Password must contain at least one digit"
	case IssueMissingSpecial:
		return "Password must contain at least one special character"
	case IssueInsufficientUniqueChars:
		return fmt.Sprintf("Password must have at least %d unique characters (currently %d)", i.Min, i.Actual)
	case IssueTooManyConsecutiveChars:
		return fmt.Sprintf("Password must not have more than %d consecutive identical characters", i.Max)
	case IssueCommonPassword:
		return "This password is too common and easily guessed"
	case IssueContainsUsername:
		return "Password must not contain your username"
	case IssueContainsEmail:
		return "Password must not contain your email address"
	case IssueRecentlyUsed:
		return "This password was used recently, please choose a new one"
	case IssueCompromised:
		return "This password has been found in data breaches"
	default:
		return string(i.Code)
	}
}

// Result is the outcome of a password validation. It is ephemeral feedback
// for the caller and is never persisted.
type Result struct {
	IsValid bool
	Strength Strength
	Score    int
	// Issues lists every failed check in the order checks run; validation
	// never short-circuits so callers can render complete feedback.
	Issues      []Issue
	Suggestions []string
	// CrackTimeDisplay is an order-of-magnitude estimate for display only,
	// not an adversary model.
	CrackTimeDisplay string
}

// Validate checks a password against the policy. Every check runs and every
// failure is reported; the caller decides how to present them. Username and
// email are optional context (empty string when unknown); previousHashes are
// stored hash strings checked for reuse through Verify, never by comparing
// plaintexts.
func (e *Engine) Validate(password, username, email string, previousHashes []string) Result {
	var issues []Issue
	var suggestions []string

	length := len(password)
	if length < e.policy.MinLength {
		issues = append(issues, Issue{Code: IssueTooShort, Min: e.policy.MinLength, Actual: length})
	}
	if length > e.policy.MaxLength {
		issues = append(issues, Issue{Code: IssueTooLong, Max: e.policy.MaxLength, Actual: length})
	}

	classes := classify(password)

	if e.policy.RequireUppercase && !classes.upper {
		issues = append(issues, Issue{Code: IssueMissingUppercase})
		suggestions = append(suggestions, "Add uppercase letters (A-Z)")
	}
	if e.policy.RequireLowercase && !classes.lower {
		issues = append(issues, Issue{Code: IssueMissingLowercase})
		suggestions = append(suggestions, "Add lowercase letters (a-z)")
	}
	if e.policy.RequireDigit && !classes.digit {
		issues = append(issues, Issue{Code: IssueMissingDigit})
		suggestions = append(suggestions, "Add numbers (0-9)")
	}
	if e.policy.RequireSpecial && !classes.special {
		issues = append(issues, Issue{Code: IssueMissingSpecial})
		suggestions = append(suggestions, "Add special characters (!@#$%^&*)")
	}

	unique := uniqueChars(password)
	if unique < e.policy.MinUniqueChars {
		issues = append(issues, Issue{Code: IssueInsufficientUniqueChars, Min: e.policy.MinUniqueChars, Actual: unique})
		suggestions = append(suggestions, "Use more varied characters")
	}

	if hasConsecutiveRun(password, e.policy.MaxConsecutiveChars) {
		issues = append(issues, Issue{Code: IssueTooManyConsecutiveChars, Max: e.policy.MaxConsecutiveChars})
		suggestions = append(suggestions, "Avoid repeating characters")
	}

	if isCommonPassword(password) {
		issues = append(issues, Issue{Code: IssueCommonPassword})
		suggestions = append(suggestions, "Choose a less common password")
	}

	lower := strings.ToLower(password)
	if username != "" && strings.Contains(lower, strings.ToLower(username)) {
		issues = append(issues, Issue{Code: IssueContainsUsername})
		suggestions = append(suggestions, "Remove your username from the password")
	}

	if email != "" {
		localPart, _, _ := strings.Cut(email, "@")
		if localPart != "" && strings.Contains(lower, strings.ToLower(localPart)) {
			issues = append(issues, Issue{Code: IssueContainsEmail})
			suggestions = append(suggestions, "Remove your email from the password")
		}
	}

	history := previousHashes
	if len(history) > e.policy.PasswordHistoryCount {
		history = history[:e.policy.PasswordHistoryCount]
	}
	for _, prev := range history {
		match, err := e.Verify(password, prev)
		if err != nil {
			// Unreadable history entries cannot block a new password.
			continue
		}
		if match {
			issues = append(issues, Issue{Code: IssueRecentlyUsed})
			suggestions = append(suggestions, "Choose a password you haven't used before")
			break
		}
	}

	strength := calculateStrength(password, issues)

	return Result{
		IsValid:          len(issues) == 0 && strength.IsAcceptable(),
		Strength:         strength,
		Score:            strength.Score(),
		Issues:           issues,
		Suggestions:      suggestions,
		CrackTimeDisplay: estimateCrackTime(password),
	}
}

type charClasses struct {
	upper, lower, digit, special bool
}

func classify(password string) charClasses {
	var c charClasses
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			c.upper = true
		case unicode.IsLower(r):
			c.lower = true
		case r >= '0' && r <= '9':
			c.digit = true
		case !unicode.IsLetter(r) && !unicode.IsNumber(r):
			c.special = true
		}
	}
	return c
}

func uniqueChars(password string) int {
	seen := make(map[rune]struct{}, len(password))
	for _, r := range password {
		seen[r] = struct{}{}
	}
	return len(seen)
}

// hasConsecutiveRun reports whether any identical character repeats more
// than max times in a row.
func hasConsecutiveRun(password string, max int) bool {
	runes := []rune(password)
	run := 1
	for i := 1; i < len(runes); i++ {
		if runes[i] == runes[i-1] {
			run++
			if run > max {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

// commonPasswords are matched as case-insensitive substrings, so
// "Password123!" is flagged even though it is not an exact list entry.
var commonPasswords = []string{
	"password", "123456", "12345678", "qwerty", "abc123", "monkey",
	"1234567", "letmein", "trustno1", "dragon", "baseball", "iloveyou",
	"master", "sunshine", "ashley", "bailey", "shadow", "123123",
	"654321", "superman", "qazwsx", "michael", "football", "password1",
	"password123", "welcome", "welcome1", "admin", "admin123", "root",
	"toor", "pass", "test", "guest", "changeme", "default", "secret",
	"login", "passw0rd", "p@ssword", "p@ssw0rd", "qwerty123", "azerty",
	"000000", "111111", "1234567890", "0987654321",
}

func isCommonPassword(password string) bool {
	lower := strings.ToLower(password)
	for _, common := range commonPasswords {
		if strings.Contains(lower, common) {
			return true
		}
	}
	return false
}

// calculateStrength maps a weighted point score to a tier. Any detected
// issue caps the result at Weak, or VeryWeak when the password is too short,
// common, or known compromised.
func calculateStrength(password string, issues []Issue) Strength {
	if len(issues) > 0 {
		for _, issue := range issues {
			switch issue.Code {
			case IssueTooShort, IssueCommonPassword, IssueCompromised:
				return VeryWeak
			}
		}
		return Weak
	}

	classes := classify(password)
	unique := uniqueChars(password)
	length := len(password)

	score := 0
	for _, tier := range []int{8, 12, 16, 20} {
		if length >= tier {
			score++
		}
	}

	if classes.upper {
		score++
	}
	if classes.lower {
		score++
	}
	if classes.digit {
		score++
	}
	if classes.special {
		score += 2
	}

	if unique >= 10 {
		score++
	}
	if unique >= 15 {
		score++
	}

	switch {
	case score <= 3:
		return VeryWeak
	case score <= 5:
		return Weak
	case score <= 7:
		return Fair
	case score <= 9:
		return Strong
	default:
		return VeryStrong
	}
}

// assumedGuessesPerSecond models a well-resourced offline attacker for the
// display estimate only.
const assumedGuessesPerSecond = 10_000_000_000

func estimateCrackTime(password string) string {
	classes := classify(password)

	charsetSize := 0
	if classes.lower {
		charsetSize += 26
	}
	if classes.upper {
		charsetSize += 26
	}
	if classes.digit {
		charsetSize += 10
	}
	if classes.special {
		charsetSize += 32
	}
	if charsetSize == 0 {
		charsetSize = 26
	}

	combinations := math.Pow(float64(charsetSize), float64(len(password)))
	seconds := combinations / assumedGuessesPerSecond / 2 // average case

	const year = 31536000.0
	switch {
	case seconds < 1:
		return "instantly"
	case seconds < 60:
		return fmt.Sprintf("%.0f seconds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%.0f minutes", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%.0f hours", seconds/3600)
	case seconds < year:
		return fmt.Sprintf("%.0f days", seconds/86400)
	case seconds < year*100:
		return fmt.Sprintf("%.0f years", seconds/year)
	case seconds < year*1000:
		return "centuries"
	default:
		return "millennia+"
	}
}
