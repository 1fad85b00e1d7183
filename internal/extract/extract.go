// Package extract turns uploaded bytes into text, per document format.
package extract

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/edukit-cloud/edukit/internal/domain"
	"github.com/edukit-cloud/edukit/internal/domain/document"
)

// Page is one extracted PDF page. Start is the byte offset of the page's
// text within the joined full text, used for chunk page attribution.
type Page struct {
	Number int
	Text   string
	Start  int
}

// Result is the output of text extraction.
type Result struct {
	Text      string
	Pages     []Page
	PageCount int
	HasImages bool
}

// ImageTextExtractor recovers text from embedded page images. OCR is a
// deferred capability: the default implementation returns nothing, but the
// seam lets a real OCR backend drop in without touching the ingest flow.
type ImageTextExtractor interface {
	ExtractImageText(ctx context.Context, pageData []byte, pageNumber int) (string, error)
}

// NoopImageExtractor is the default ImageTextExtractor: it never yields text.
type NoopImageExtractor struct{}

// ExtractImageText implements ImageTextExtractor.
func (NoopImageExtractor) ExtractImageText(context.Context, []byte, int) (string, error) {
	return "", nil
}

// Extractor decodes uploaded bytes into text according to document type.
type Extractor struct {
	images ImageTextExtractor
}

// New creates an Extractor. images may be nil to disable image recovery.
func New(images ImageTextExtractor) *Extractor {
	if images == nil {
		images = NoopImageExtractor{}
	}
	return &Extractor{images: images}
}

// Extract decodes data as the given document type. PDF gets per-page
// extraction; every other type is decoded as UTF-8 text, where a decode
// failure is an unsupported-format error.
func (e *Extractor) Extract(ctx context.Context, data []byte, typ document.Type) (Result, error) {
	if typ == document.TypePDF {
		return e.extractPDF(ctx, data)
	}
	return extractText(data)
}

// extractText decodes plain text, markdown and docx-declared uploads as
// UTF-8.
func extractText(data []byte) (Result, error) {
	if !utf8.Valid(data) {
		return Result{}, fmt.Errorf("decode as UTF-8: %w", domain.ErrUnsupportedFormat)
	}
	return Result{Text: string(data)}, nil
}
