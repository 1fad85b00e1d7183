// Package visualization derives chart-ready data from documents: wordcloud
// term weights and concept-map graphs. Rendering is the caller's concern.
package visualization

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/edukit-cloud/edukit/internal/annotate"
	"github.com/edukit-cloud/edukit/internal/repository/resultcache"
)

const (
	// conceptTerms caps how many top keywords become concept-map nodes.
	conceptTerms = 10
)

// Term is one wordcloud entry. Weight is the term frequency normalized to
// the most frequent term (0..1].
type Term struct {
	Term   string  `json:"term"`
	Count  int     `json:"count"`
	Weight float64 `json:"weight"`
}

// Node is a concept-map node weighted by keyword frequency.
type Node struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Weight int    `json:"weight"`
}

// Edge connects two concepts that co-occur in at least one paragraph.
// Weight counts the co-occurring paragraphs.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// ConceptMap is a co-occurrence graph over a document's top keywords.
type ConceptMap struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Service computes visualization data over registered documents.
type Service struct {
	docs      DocumentReader
	annotator Annotator
	cache     *resultcache.Cache
	logger    *zap.Logger
}

// New creates a visualization service. cache may be nil.
func New(docs DocumentReader, annotator Annotator, cache *resultcache.Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{docs: docs, annotator: annotator, cache: cache, logger: logger}
}

// Wordcloud returns ranked, weight-normalized keyword frequencies for a
// document.
func (s *Service) Wordcloud(ctx context.Context, docID string) ([]Term, error) {
	doc, err := s.docs.Get(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("resolve document: %w", err)
	}

	key := s.cacheKey("viz", docID, "wordcloud")
	return resultcache.Do(ctx, s.cache, "viz", key, func(ctx context.Context) ([]Term, error) {
		ann, annErr := s.annotator.Annotate(ctx, doc.FullText())
		if annErr != nil {
			return nil, fmt.Errorf("annotate document: %w", annErr)
		}

		keywords := ann.Keywords
		if len(keywords) == 0 {
			return []Term{}, nil
		}
		maxCount := keywords[0].Count
		terms := make([]Term, len(keywords))
		for i, k := range keywords {
			terms[i] = Term{
				Term:   k.Term,
				Count:  k.Count,
				Weight: float64(k.Count) / float64(maxCount),
			}
		}
		return terms, nil
	})
}

// ConceptMap returns a paragraph co-occurrence graph over the document's
// top keywords.
func (s *Service) ConceptMap(ctx context.Context, docID string) (ConceptMap, error) {
	doc, err := s.docs.Get(ctx, docID)
	if err != nil {
		return ConceptMap{}, fmt.Errorf("resolve document: %w", err)
	}

	key := s.cacheKey("viz", docID, "conceptmap")
	return resultcache.Do(ctx, s.cache, "viz", key, func(ctx context.Context) (ConceptMap, error) {
		ann, annErr := s.annotator.Annotate(ctx, doc.FullText())
		if annErr != nil {
			return ConceptMap{}, fmt.Errorf("annotate document: %w", annErr)
		}

		keywords := ann.Keywords
		if len(keywords) > conceptTerms {
			keywords = keywords[:conceptTerms]
		}
		return buildConceptMap(doc.FullText(), keywords), nil
	})
}

// buildConceptMap links terms that appear together in the same paragraph.
func buildConceptMap(text string, keywords []annotate.Keyword) ConceptMap {
	nodes := make([]Node, len(keywords))
	for i, k := range keywords {
		nodes[i] = Node{ID: k.Term, Label: k.Term, Weight: k.Count}
	}

	paragraphs := strings.Split(strings.ToLower(text), "\n\n")
	cm := ConceptMap{Nodes: nodes, Edges: []Edge{}}

	for i := 0; i < len(keywords); i++ {
		for j := i + 1; j < len(keywords); j++ {
			weight := 0
			for _, p := range paragraphs {
				if strings.Contains(p, keywords[i].Term) && strings.Contains(p, keywords[j].Term) {
					weight++
				}
			}
			if weight > 0 {
				cm.Edges = append(cm.Edges, Edge{
					Source: keywords[i].Term,
					Target: keywords[j].Term,
					Weight: weight,
				})
			}
		}
	}
	return cm
}

func (s *Service) cacheKey(op, docID, kind string) string {
	if !s.cache.Enabled() {
		return ""
	}
	key, err := s.cache.Key(op, []any{docID}, map[string]any{"kind": kind})
	if err != nil {
		s.logger.Warn("Failed to derive cache key", zap.String("operation", op), zap.Error(err))
		return ""
	}
	return key
}
