package visualization

import (
	"context"

	"github.com/edukit-cloud/edukit/internal/annotate"
	"github.com/edukit-cloud/edukit/internal/domain/document"
)

// DocumentReader resolves document IDs to their content.
type DocumentReader interface {
	Get(ctx context.Context, id string) (document.Document, error)
}

// Annotator recounts keyword frequencies over document text.
type Annotator interface {
	Annotate(ctx context.Context, text string) (annotate.Annotation, error)
}
