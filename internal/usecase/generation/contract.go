package generation

import (
	"context"

	"github.com/edukit-cloud/edukit/internal/annotate"
	"github.com/edukit-cloud/edukit/internal/domain/document"
	"github.com/edukit-cloud/edukit/internal/domain/quiz"
	"github.com/edukit-cloud/edukit/internal/domain/summary"
)

// DocumentReader resolves document references to their content.
type DocumentReader interface {
	Get(ctx context.Context, id string) (document.Document, error)
}

// Generator is the text generation gateway.
type Generator interface {
	Summarize(ctx context.Context, text string, tier summary.LengthTier) (string, error)
	GenerateQuizItems(
		ctx context.Context,
		text string,
		qType quiz.QuestionType,
		difficulty quiz.Difficulty,
		count int,
		topic string,
	) ([]quiz.Item, error)
}

// Annotator extracts keywords for raw-text summaries that have no
// pre-annotated document behind them.
type Annotator interface {
	Annotate(ctx context.Context, text string) (annotate.Annotation, error)
}

// SummaryRequest asks for a summary of a registered document or raw text.
// Exactly one of DocumentID and Text must be set.
type SummaryRequest struct {
	DocumentID string
	Text       string
	Length     string
}

// QuizRequest asks for quiz questions over a registered document or raw
// text. Exactly one of DocumentID and Text must be set.
type QuizRequest struct {
	DocumentID string
	Text       string
	Type       string
	Difficulty string
	Count      int
	FocusTopic string
}
