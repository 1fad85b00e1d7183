package generation

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/edukit-cloud/edukit/internal/annotate"
	"github.com/edukit-cloud/edukit/internal/db/memory"
	"github.com/edukit-cloud/edukit/internal/domain"
	"github.com/edukit-cloud/edukit/internal/domain/document"
	"github.com/edukit-cloud/edukit/internal/domain/quiz"
	"github.com/edukit-cloud/edukit/internal/domain/summary"
	"github.com/edukit-cloud/edukit/internal/repository/resultcache"
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

type mockGenerator struct {
	summarizeFn func(ctx context.Context, text string, tier summary.LengthTier) (string, error)
	quizFn      func(ctx context.Context, text string, qType quiz.QuestionType,
		difficulty quiz.Difficulty, count int, topic string) ([]quiz.Item, error)

	summarizeCalls int
	quizCalls      int
}

func (m *mockGenerator) Summarize(ctx context.Context, text string, tier summary.LengthTier) (string, error) {
	m.summarizeCalls++
	if m.summarizeFn != nil {
		return m.summarizeFn(ctx, text, tier)
	}
	return "a summary", nil
}

func (m *mockGenerator) GenerateQuizItems(
	ctx context.Context,
	text string,
	qType quiz.QuestionType,
	difficulty quiz.Difficulty,
	count int,
	topic string,
) ([]quiz.Item, error) {
	m.quizCalls++
	if m.quizFn != nil {
		return m.quizFn(ctx, text, qType, difficulty, count, topic)
	}
	return []quiz.Item{{Question: "q1", Answer: "a1"}}, nil
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

func storedDocument(t *testing.T, id, text string, keywords []string) document.Document {
	t.Helper()
	doc, err := document.New(
		id,
		document.Metadata{Filename: id + ".txt"},
		text,
		[]document.Chunk{document.NewChunk(id, 0, text, 0)},
		nil,
		keywords,
	)
	if err != nil {
		t.Fatalf("build document: %v", err)
	}
	return doc
}

// newTestService wires a generation service with a real in-memory cache.
func newTestService(t *testing.T) (*Service, *mockReader, *mockGenerator, *mockAnnotator) {
	t.Helper()
	reader := &mockReader{docs: make(map[string]document.Document)}
	gen := &mockGenerator{}
	ann := &mockAnnotator{annotation: annotate.Annotation{
		Keywords: []annotate.Keyword{{Term: "gravity", Count: 2}},
	}}

	store := memory.NewStore(64, time.Minute)
	t.Cleanup(store.Close)
	cache := resultcache.New(store, "edukit:", time.Minute, nil, zap.NewNop())

	svc := New(reader, gen, ann, cache, zap.NewNop())
	return svc, reader, gen, ann
}
