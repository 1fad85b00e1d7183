// Package annotate derives linguistic metadata (entities, keywords,
// language) from document text.
package annotate

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/edukit-cloud/edukit/internal/chunker"
)

const (
	// DefaultWindowSize bounds, in bytes, how much text is fed to the parser
	// at once. The window limits parser memory, so it is measured in the
	// same byte units the chunker splits on.
	DefaultWindowSize = 100000
	// DefaultTopN is the default number of keywords to return.
	DefaultTopN = 20

	windowParallelism = 4
)

// Token is a single parsed token with its part-of-speech tag
// (Penn Treebank style: NN, NNP, JJ, VB, ...).
type Token struct {
	Text string
	Tag  string
}

// Entity is a recognized named entity with its type label.
type Entity struct {
	Text  string
	Label string
}

// Parsed is the raw output of the underlying linguistic model for one
// window of text. Language is empty when the model does not assign one.
type Parsed struct {
	Tokens   []Token
	Entities []Entity
	Language string
}

// Parser is the linguistic capability the annotator wraps.
type Parser interface {
	Parse(ctx context.Context, text string) (Parsed, error)
}

// Keyword is a normalized keyword with its frequency across the text.
type Keyword struct {
	Term  string
	Count int
}

// Annotation is the derived linguistic metadata for a text.
type Annotation struct {
	// Entities groups recognized entity surface strings by type,
	// deduplicated, first-seen order within each type.
	Entities map[string][]string
	// Keywords are ranked by descending frequency, ties broken by first
	// occurrence.
	Keywords []Keyword
	// Language is a detected language code, or "unknown".
	Language string
}

// KeywordTerms returns just the keyword terms in rank order.
func (a Annotation) KeywordTerms() []string {
	terms := make([]string, len(a.Keywords))
	for i, k := range a.Keywords {
		terms[i] = k.Term
	}
	return terms
}

// Annotator extracts entities, keywords and language from text. Texts
// larger than the window size are parsed in windows (reusing the chunker's
// boundary search) and the per-window results merged: entities unioned in
// window order, keyword counts summed before ranking.
type Annotator struct {
	parser     Parser
	windowSize int
	topN       int
}

// Option configures an Annotator.
type Option func(*Annotator)

// WithWindowSize overrides the parse window size in bytes.
func WithWindowSize(n int) Option {
	return func(a *Annotator) {
		if n > 0 {
			a.windowSize = n
		}
	}
}

// WithTopN overrides how many keywords are returned.
func WithTopN(n int) Option {
	return func(a *Annotator) {
		if n > 0 {
			a.topN = n
		}
	}
}

// New creates an Annotator around a parser.
func New(parser Parser, opts ...Option) *Annotator {
	a := &Annotator{
		parser:     parser,
		windowSize: DefaultWindowSize,
		topN:       DefaultTopN,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Annotate derives entities, keywords and language for the text.
func (a *Annotator) Annotate(ctx context.Context, text string) (Annotation, error) {
	windows := []string{text}
	if len(text) > a.windowSize {
		windows = chunker.Split(text, a.windowSize)
	}

	parsed := make([]Parsed, len(windows))
	if len(windows) == 1 {
		p, err := a.parser.Parse(ctx, windows[0])
		if err != nil {
			return Annotation{}, fmt.Errorf("parse text: %w", err)
		}
		parsed[0] = p
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(windowParallelism)
		for i, w := range windows {
			i, w := i, w
			g.Go(func() error {
				p, err := a.parser.Parse(gctx, w)
				if err != nil {
					return fmt.Errorf("parse window %d: %w", i, err)
				}
				parsed[i] = p
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return Annotation{}, err
		}
	}

	ann := Annotation{
		Entities: mergeEntities(parsed),
		Keywords: rankKeywords(parsed, a.topN),
		Language: a.detectLanguage(text, parsed[0].Language),
	}
	return ann, nil
}

// mergeEntities unions entities across windows, deduplicating exact surface
// strings within a type and preserving first-seen order.
func mergeEntities(parsed []Parsed) map[string][]string {
	entities := make(map[string][]string)
	seen := make(map[string]map[string]bool)

	for _, p := range parsed {
		for _, e := range p.Entities {
			if seen[e.Label] == nil {
				seen[e.Label] = make(map[string]bool)
			}
			if seen[e.Label][e.Text] {
				continue
			}
			seen[e.Label][e.Text] = true
			entities[e.Label] = append(entities[e.Label], e.Text)
		}
	}
	return entities
}

// rankKeywords counts normalized keyword candidates across all windows and
// returns the top N by descending frequency, ties broken by first occurrence.
func rankKeywords(parsed []Parsed, topN int) []Keyword {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0

	for _, p := range parsed {
		for _, tok := range p.Tokens {
			norm, ok := normalizeKeyword(tok)
			if !ok {
				continue
			}
			if _, exists := counts[norm]; !exists {
				firstSeen[norm] = order
			}
			counts[norm]++
			order++
		}
	}

	ranked := make([]Keyword, 0, len(counts))
	for term, count := range counts {
		ranked = append(ranked, Keyword{Term: term, Count: count})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return firstSeen[ranked[i].Term] < firstSeen[ranked[j].Term]
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// normalizeKeyword reports whether the token qualifies as a keyword
// candidate and returns its normalized (lowercase) form.
func normalizeKeyword(tok Token) (string, bool) {
	if !keywordTag(tok.Tag) {
		return "", false
	}
	norm := strings.ToLower(tok.Text)
	if utf8.RuneCountInString(norm) < 3 {
		return "", false
	}
	if stopWords[norm] {
		return "", false
	}

	hasLetter := false
	digitsOnly := true
	for _, r := range norm {
		if unicode.IsLetter(r) {
			hasLetter = true
		}
		if !unicode.IsDigit(r) {
			digitsOnly = false
		}
	}
	if !hasLetter || digitsOnly {
		return "", false
	}
	return norm, true
}

// keywordTag keeps nouns, proper nouns, adjectives and verbs.
func keywordTag(tag string) bool {
	return strings.HasPrefix(tag, "NN") ||
		strings.HasPrefix(tag, "JJ") ||
		strings.HasPrefix(tag, "VB")
}

// detectLanguage prefers the parser's own tag on a text sample; otherwise it
// counts marker words per candidate language. Ties and zero counts yield
// "unknown".
func (a *Annotator) detectLanguage(text, parserTag string) string {
	if parserTag != "" {
		return parserTag
	}

	esCount, enCount := 0, 0
	for _, word := range languageWords(text) {
		if spanishMarkers[word] {
			esCount++
		}
		if englishMarkers[word] {
			enCount++
		}
	}

	switch {
	case esCount > enCount:
		return "es"
	case enCount > esCount:
		return "en"
	default:
		return "unknown"
	}
}

// languageWords lowercases and splits text on non-letter boundaries.
func languageWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

var spanishMarkers = map[string]bool{
	"de": true, "la": true, "el": true, "en": true, "que": true,
	"con": true, "para": true, "por": true, "los": true, "las": true,
}

var englishMarkers = map[string]bool{
	"the": true, "of": true, "and": true, "to": true, "in": true,
	"is": true, "that": true, "for": true, "with": true, "as": true,
}
