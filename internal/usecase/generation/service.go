// Package generation produces summaries and quizzes over documents or raw
// text, memoizing results in the result cache.
package generation

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edukit-cloud/edukit/internal/domain"
	"github.com/edukit-cloud/edukit/internal/domain/quiz"
	"github.com/edukit-cloud/edukit/internal/domain/summary"
	"github.com/edukit-cloud/edukit/internal/repository/resultcache"
)

const (
	// MaxInputChars caps, in characters, how much source text reaches the
	// generation prompt.
	MaxInputChars = 10000
	// DefaultTimeout is the per-call wall-clock budget.
	DefaultTimeout = 30 * time.Second

	defaultQuizCount = 5
	maxQuizCount     = 20
	maxKeywords      = 10
)

// Service coordinates generation requests: validation, document resolution,
// input capping, caching and the gateway call.
type Service struct {
	docs      DocumentReader
	generator Generator
	annotator Annotator
	cache     *resultcache.Cache
	maxInput  int
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates a generation service. cache may be nil to disable memoization.
func New(
	docs DocumentReader,
	generator Generator,
	annotator Annotator,
	cache *resultcache.Cache,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		docs:      docs,
		generator: generator,
		annotator: annotator,
		cache:     cache,
		maxInput:  MaxInputChars,
		timeout:   DefaultTimeout,
		logger:    logger,
	}
}

// WithTimeout overrides the per-call budget.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// WithMaxInput overrides the prompt text cap.
func (s *Service) WithMaxInput(n int) *Service {
	if n > 0 {
		s.maxInput = n
	}
	return s
}

// cachedSummary is the cache value for the summary operation.
type cachedSummary struct {
	Text     string   `json:"text"`
	Keywords []string `json:"keywords"`
}

// Summarize generates (or recalls) a summary for a document or raw text.
func (s *Service) Summarize(ctx context.Context, req SummaryRequest) (summary.Summary, error) {
	tier, err := summary.ParseLengthTier(req.Length)
	if err != nil {
		return summary.Summary{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	source, err := s.resolveSource(ctx, req.DocumentID, req.Text)
	if err != nil {
		return summary.Summary{}, err
	}
	text := capInput(source.text, s.maxInput)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	key := s.cacheKey("summary", source.ref(), map[string]any{"length": string(tier)})
	result, err := resultcache.Do(ctx, s.cache, "summary", key, func(ctx context.Context) (cachedSummary, error) {
		out, genErr := s.generator.Summarize(ctx, text, tier)
		if genErr != nil {
			return cachedSummary{}, genErr
		}
		return cachedSummary{Text: out, Keywords: s.keywords(ctx, source, text)}, nil
	})
	if err != nil {
		return summary.Summary{}, fmt.Errorf("summarize: %w", err)
	}

	return summary.Summary{
		ID:         uuid.NewString(),
		DocumentID: req.DocumentID,
		Text:       result.Text,
		Length:     tier,
		Keywords:   result.Keywords,
	}, nil
}

// GenerateQuiz generates (or recalls) quiz questions for a document or raw
// text.
func (s *Service) GenerateQuiz(ctx context.Context, req QuizRequest) (quiz.Quiz, error) {
	qType, err := quiz.ParseQuestionType(req.Type)
	if err != nil {
		return quiz.Quiz{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	difficulty, err := quiz.ParseDifficulty(req.Difficulty)
	if err != nil {
		return quiz.Quiz{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	count := req.Count
	if count == 0 {
		count = defaultQuizCount
	}
	if count < 1 || count > maxQuizCount {
		return quiz.Quiz{}, fmt.Errorf("question count %d out of range 1..%d: %w",
			count, maxQuizCount, domain.ErrValidation)
	}

	source, err := s.resolveSource(ctx, req.DocumentID, req.Text)
	if err != nil {
		return quiz.Quiz{}, err
	}
	text := capInput(source.text, s.maxInput)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	key := s.cacheKey("quiz", source.ref(), map[string]any{
		"type":       string(qType),
		"difficulty": string(difficulty),
		"count":      count,
		"topic":      req.FocusTopic,
	})
	items, err := resultcache.Do(ctx, s.cache, "quiz", key, func(ctx context.Context) ([]quiz.Item, error) {
		return s.generator.GenerateQuizItems(ctx, text, qType, difficulty, count, req.FocusTopic)
	})
	if err != nil {
		return quiz.Quiz{}, fmt.Errorf("generate quiz: %w", err)
	}

	return quiz.Quiz{
		ID:         uuid.NewString(),
		DocumentID: req.DocumentID,
		Type:       qType,
		Difficulty: difficulty,
		Items:      items,
	}, nil
}

// source is resolved generation input: either a registered document or raw
// request text.
type source struct {
	docID    string
	text     string
	keywords []string
}

// ref is the cache key argument identifying the source: the stable document
// ID when one exists, otherwise the raw text itself.
func (s source) ref() string {
	if s.docID != "" {
		return s.docID
	}
	return s.text
}

// resolveSource enforces the document-XOR-text rule and loads referenced
// documents.
func (s *Service) resolveSource(ctx context.Context, docID, text string) (source, error) {
	switch {
	case docID == "" && text == "":
		return source{}, fmt.Errorf("either document_id or text is required: %w", domain.ErrValidation)
	case docID != "" && text != "":
		return source{}, fmt.Errorf("document_id and text are mutually exclusive: %w", domain.ErrValidation)
	case docID != "":
		doc, err := s.docs.Get(ctx, docID)
		if err != nil {
			return source{}, fmt.Errorf("resolve document: %w", err)
		}
		return source{docID: docID, text: doc.FullText(), keywords: doc.Keywords()}, nil
	default:
		return source{text: text}, nil
	}
}

// keywords returns the document's pre-computed keywords, or annotates raw
// text on the fly. Annotation failures degrade to no keywords.
func (s *Service) keywords(ctx context.Context, src source, text string) []string {
	terms := src.keywords
	if terms == nil && s.annotator != nil {
		ann, err := s.annotator.Annotate(ctx, text)
		if err != nil {
			s.logger.Warn("Failed to annotate summary source", zap.Error(err))
			return nil
		}
		terms = ann.KeywordTerms()
	}
	if len(terms) > maxKeywords {
		terms = terms[:maxKeywords]
	}
	return terms
}

// cacheKey derives the cache key, degrading to an uncacheable empty key on
// serialization failure.
func (s *Service) cacheKey(op, ref string, named map[string]any) string {
	if !s.cache.Enabled() {
		return ""
	}
	key, err := s.cache.Key(op, []any{ref}, named)
	if err != nil {
		s.logger.Warn("Failed to derive cache key", zap.String("operation", op), zap.Error(err))
		return ""
	}
	return key
}

// capInput truncates text to max characters.
func capInput(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	chars := 0
	for i := range text {
		if chars == max {
			return text[:i]
		}
		chars++
	}
	return text
}
