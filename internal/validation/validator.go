package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxCommandLength is the maximum accepted command length in characters.
const MaxCommandLength = 5000

// Validated holds an accepted command in both its original and
// match-ready forms. Original preserves the caller's casing for audit and
// echo purposes; Normalised is trimmed and lower-cased for rule matching.
type Validated struct {
	Original   string
	Normalised string
}

// denyPatterns is the structural attack deny-list. Commands are natural
// language, so code-injection tokens, SQL fragments, shell metacharacters,
// path traversal, and markup have no legitimate reason to appear.
// Matching is done against the lower-cased input.
var denyPatterns = []*regexp.Regexp{
	// Code execution tokens
	regexp.MustCompile(`eval\(`),
	regexp.MustCompile(`exec\(`),
	regexp.MustCompile(`import\s+os`),
	regexp.MustCompile(`subprocess`),
	regexp.MustCompile(`__import__`),

	// Destructive shell/OS commands
	regexp.MustCompile(`rm\s+-rf`),
	regexp.MustCompile(`del\s+/f`),
	regexp.MustCompile(`format\s+c:`),

	// SQL fragments
	regexp.MustCompile(`drop\s+table`),
	regexp.MustCompile(`delete\s+from`),
	regexp.MustCompile(`insert\s+into`),
	regexp.MustCompile(`update\s+.+\s+set\s`),

	// Shell metacharacters and substitution
	regexp.MustCompile(`[;|]`),
	regexp.MustCompile("`"),
	regexp.MustCompile(`\$\(`),
	regexp.MustCompile(`&&`),

	// Path traversal
	regexp.MustCompile(`\.\./`),
	regexp.MustCompile(`\.\.\\`),

	// Markup / script injection
	regexp.MustCompile(`<\s*script`),
	regexp.MustCompile(`javascript:`),
}

// Validate checks raw command text and returns its validated forms.
//
// It enforces, in order: valid UTF-8, non-empty after trimming, length at
// most MaxCommandLength characters, and absence of deny-listed structural
// attack patterns.
//
// Parameters:
//   - raw: Command text exactly as received
//
// Returns:
//   - Validated: Original and normalised forms of the accepted text
//   - error: ErrEmptyInput, ErrInputTooLong, or ErrMaliciousPattern
func Validate(raw string) (Validated, error) {
	if !utf8.ValidString(raw) {
		return Validated{}, fmt.Errorf("%w: not valid UTF-8", ErrMaliciousPattern)
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Validated{}, ErrEmptyInput
	}

	if utf8.RuneCountInString(trimmed) > MaxCommandLength {
		return Validated{}, fmt.Errorf("%w: %d characters (max %d)",
			ErrInputTooLong, utf8.RuneCountInString(trimmed), MaxCommandLength)
	}

	normalised := strings.ToLower(trimmed)
	for _, p := range denyPatterns {
		if p.MatchString(normalised) {
			// The matched pattern is logged upstream, never returned to
			// the caller alongside the input itself.
			return Validated{}, fmt.Errorf("%w: matched %q", ErrMaliciousPattern, p.String())
		}
	}

	return Validated{
		Original:   raw,
		Normalised: normalised,
	}, nil
}
