package visualization

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/edukit-cloud/edukit/internal/annotate"
	"github.com/edukit-cloud/edukit/internal/domain"
	"github.com/edukit-cloud/edukit/internal/domain/document"
)

type mockReader struct {
	docs map[string]document.Document
}

func (m *mockReader) Get(_ context.Context, id string) (document.Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return document.Document{}, domain.ErrNotFound
	}
	return doc, nil
}

type mockAnnotator struct {
	annotation annotate.Annotation
	err        error
	calls      int
}

func (m *mockAnnotator) Annotate(context.Context, string) (annotate.Annotation, error) {
	m.calls++
	return m.annotation, m.err
}

func newTestService(t *testing.T, text string, keywords []annotate.Keyword) (*Service, *mockAnnotator) {
	t.Helper()
	doc, err := document.New(
		"doc-1",
		document.Metadata{Filename: "doc-1.txt"},
		text,
		[]document.Chunk{document.NewChunk("doc-1", 0, text, 0)},
		nil,
		nil,
	)
	if err != nil {
		t.Fatalf("build document: %v", err)
	}

	reader := &mockReader{docs: map[string]document.Document{"doc-1": doc}}
	ann := &mockAnnotator{annotation: annotate.Annotation{Keywords: keywords}}
	return New(reader, ann, nil, zap.NewNop()), ann
}

func TestWordcloud(t *testing.T) {
	svc, _ := newTestService(t, "energy and motion and energy", []annotate.Keyword{
		{Term: "energy", Count: 4},
		{Term: "motion", Count: 2},
		{Term: "force", Count: 1},
	})

	terms, err := svc.Wordcloud(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("Wordcloud failed: %v", err)
	}
	if len(terms) != 3 {
		t.Fatalf("expected 3 terms, got %d", len(terms))
	}
	if terms[0].Term != "energy" || terms[0].Weight != 1.0 {
		t.Errorf("top term = %+v", terms[0])
	}
	if terms[1].Weight != 0.5 || terms[2].Weight != 0.25 {
		t.Errorf("weights not normalized: %+v", terms)
	}
}

func TestWordcloud_NoKeywords(t *testing.T) {
	svc, _ := newTestService(t, "plain text", nil)

	terms, err := svc.Wordcloud(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("Wordcloud failed: %v", err)
	}
	if len(terms) != 0 {
		t.Fatalf("expected no terms, got %v", terms)
	}
}

func TestWordcloud_UnknownDocument(t *testing.T) {
	svc, _ := newTestService(t, "text", nil)

	if _, err := svc.Wordcloud(context.Background(), "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestConceptMap(t *testing.T) {
	text := "Energy transfers as heat.\n\nMotion needs energy.\n\nHeat is motion of particles."
	svc, _ := newTestService(t, text, []annotate.Keyword{
		{Term: "energy", Count: 2},
		{Term: "motion", Count: 2},
		{Term: "heat", Count: 2},
	})

	cm, err := svc.ConceptMap(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("ConceptMap failed: %v", err)
	}
	if len(cm.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(cm.Nodes))
	}

	weights := make(map[string]int)
	for _, e := range cm.Edges {
		weights[e.Source+"-"+e.Target] = e.Weight
	}
	// energy+heat share paragraph 1, energy+motion paragraph 2,
	// motion+heat paragraph 3.
	for _, pair := range []string{"energy-motion", "energy-heat", "motion-heat"} {
		if weights[pair] != 1 {
			t.Errorf("edge %s weight = %d, expected 1 (edges: %v)", pair, weights[pair], cm.Edges)
		}
	}
}

func TestConceptMap_NoCooccurrence(t *testing.T) {
	text := "Only energy here.\n\nOnly motion there."
	svc, _ := newTestService(t, text, []annotate.Keyword{
		{Term: "energy", Count: 1},
		{Term: "motion", Count: 1},
	})

	cm, err := svc.ConceptMap(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("ConceptMap failed: %v", err)
	}
	if len(cm.Edges) != 0 {
		t.Fatalf("expected no edges, got %v", cm.Edges)
	}
}
