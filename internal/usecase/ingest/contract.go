package ingest

import (
	"context"

	"github.com/edukit-cloud/edukit/internal/annotate"
	"github.com/edukit-cloud/edukit/internal/domain/document"
	"github.com/edukit-cloud/edukit/internal/extract"
)

// Registry defines the storage contract for ingested documents.
type Registry interface {
	Put(ctx context.Context, doc document.Document) error
	Get(ctx context.Context, id string) (document.Document, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, subject string) ([]document.Document, error)
}

// Extractor decodes uploaded bytes into text.
type Extractor interface {
	Extract(ctx context.Context, data []byte, typ document.Type) (extract.Result, error)
}

// Guard gates extracted text before it becomes a document.
type Guard interface {
	Check(text string) (ok bool, reason string)
}

// Annotator derives entities, keywords and language from text.
type Annotator interface {
	Annotate(ctx context.Context, text string) (annotate.Annotation, error)
}

// Upload is a document upload request.
type Upload struct {
	Filename string
	// DeclaredType overrides filename-based type detection when non-empty.
	DeclaredType string
	Title        string
	Subject      string
	Data         []byte
}
