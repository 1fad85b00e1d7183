// Package summary holds the summary generation value objects.
package summary

import "fmt"

// LengthTier controls how long a generated summary should be.
type LengthTier string

const (
	// Short yields roughly 3-5 sentences.
	Short LengthTier = "short"
	// Medium yields roughly 1-2 paragraphs.
	Medium LengthTier = "medium"
	// Long yields roughly 3-5 paragraphs.
	Long LengthTier = "long"
)

// ParseLengthTier validates a length tier string. Empty defaults to medium.
func ParseLengthTier(s string) (LengthTier, error) {
	switch LengthTier(s) {
	case Short, Medium, Long:
		return LengthTier(s), nil
	case "":
		return Medium, nil
	default:
		return "", fmt.Errorf("unknown length tier %q", s)
	}
}

// Instruction returns the prompt instruction for this tier.
func (t LengthTier) Instruction() string {
	switch t {
	case Short:
		return "Write a concise summary of roughly 3-5 sentences."
	case Long:
		return "Write an extensive, complete summary of roughly 3-5 paragraphs."
	default:
		return "Write a detailed summary of roughly 1-2 paragraphs."
	}
}

// Summary is a generated document summary.
type Summary struct {
	ID         string
	DocumentID string
	Text       string
	Length     LengthTier
	Keywords   []string
}
