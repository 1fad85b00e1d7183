package annotate

import (
	"context"
	"fmt"

	prose "github.com/jdkato/prose/v2"
)

// ProseParser implements Parser on the prose NLP library (POS tagging and
// named-entity recognition). The bundled model does not assign a language
// tag, so Parsed.Language is always empty and language detection falls back
// to the annotator's marker-word heuristic.
type ProseParser struct{}

// NewProseParser creates a ProseParser.
func NewProseParser() *ProseParser { return &ProseParser{} }

// Parse tags and NER-annotates one window of text.
func (p *ProseParser) Parse(ctx context.Context, text string) (Parsed, error) {
	if err := ctx.Err(); err != nil {
		return Parsed{}, err
	}

	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return Parsed{}, fmt.Errorf("prose parse: %w", err)
	}

	var parsed Parsed
	for _, tok := range doc.Tokens() {
		parsed.Tokens = append(parsed.Tokens, Token{Text: tok.Text, Tag: tok.Tag})
	}
	for _, ent := range doc.Entities() {
		parsed.Entities = append(parsed.Entities, Entity{Text: ent.Text, Label: ent.Label})
	}
	return parsed, nil
}
