// Package guard implements the text-safety and size gate that extracted
// content must pass before becoming part of a document.
package guard

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MinLength is the minimum acceptable text length in characters.
	MinLength = 10
	// MaxLength is the maximum acceptable text length in characters.
	MaxLength = 100000
)

// prohibitedTerms is the fixed set of terms not allowed in educational content.
var prohibitedTerms = []string{
	"violence",
	"discrimination",
	"hate speech",
	"obscenity",
	"drug abuse",
	"suicide",
	"sexual abuse",
	"terrorism",
	"extremism",
	"pornography",
}

// Guard validates text against size bounds and a prohibited-terms set.
// Check is a pure function: same input always yields the same verdict.
type Guard struct{}

// New creates a Guard.
func New() *Guard { return &Guard{} }

// Check reports whether the text is safe to ingest. When not safe, reason
// describes why; reasons naming a matched term must not be echoed to end
// users verbatim.
func (g *Guard) Check(text string) (bool, string) {
	// Bounds count characters, not bytes.
	chars := utf8.RuneCountInString(text)
	if chars < MinLength {
		return false, "content is too short"
	}
	if chars > MaxLength {
		return false, "content is too long to process"
	}

	lower := strings.ToLower(text)
	for _, term := range prohibitedTerms {
		if strings.Contains(lower, term) {
			return false, fmt.Sprintf("content contains a prohibited term: %s", term)
		}
	}

	return true, ""
}
