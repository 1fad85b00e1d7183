// Package chunker splits text into bounded segments on natural boundaries.
//
// Chunks concatenate back to the original text exactly: split points land
// after a boundary, never inside one, and no characters are dropped.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the default maximum chunk size in bytes.
const DefaultChunkSize = 3000

// Split divides text into chunks of at most maxChunkSize bytes, preferring
// natural break points. The candidate boundary at pos+maxChunkSize is walked
// backward looking for, in priority order: a paragraph break (the two
// newlines stay with the preceding chunk), a sentence end (". ", the space
// stays with the preceding chunk), a single space. When none is found the
// chunk is cut at the candidate, mid-word as a last resort.
//
// A chunk may exceed maxChunkSize only when a single unbroken token does;
// otherwise every chunk is within the budget. Position advances every
// iteration, so Split always terminates.
func Split(text string, maxChunkSize int) []string {
	if maxChunkSize < 1 {
		maxChunkSize = 1
	}
	if len(text) <= maxChunkSize {
		return []string{text}
	}

	var chunks []string
	pos := 0
	for pos < len(text) {
		end := pos + maxChunkSize
		if end >= len(text) {
			end = len(text)
		} else {
			window := text[pos:end]
			if i := strings.LastIndex(window, "\n\n"); i > 0 {
				end = pos + i + 2
			} else if i := strings.LastIndex(window, ". "); i > 0 {
				end = pos + i + 2
			} else if i := strings.LastIndex(window, " "); i > 0 {
				end = pos + i + 1
			} else {
				// Hard cut. Back off so a multi-byte rune is never split.
				for end > pos+1 && !utf8.RuneStart(text[end]) {
					end--
				}
			}
		}
		chunks = append(chunks, text[pos:end])
		pos = end
	}

	return chunks
}
