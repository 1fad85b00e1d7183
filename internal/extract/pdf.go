package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/edukit-cloud/edukit/internal/domain"
)

// minPageTextLen is the threshold below which a page is assumed to carry
// its content as embedded images rather than text.
const minPageTextLen = 100

// pageSeparator joins per-page text with a blank line.
const pageSeparator = "\n\n"

// extractPDF concatenates per-page text with blank-line separators. Pages
// yielding fewer than minPageTextLen characters flag the document as
// possibly containing embedded images and are offered to the image
// extractor.
func (e *Extractor) extractPDF(ctx context.Context, data []byte) (result Result, err error) {
	// The pdf parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			result = Result{}
			err = fmt.Errorf("PDF parsing failed: %v: %w", r, domain.ErrUnsupportedFormat)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{}, fmt.Errorf("PDF parsing failed: %w", domain.ErrUnsupportedFormat)
	}

	pageCount := reader.NumPage()
	pages := make([]Page, 0, pageCount)
	texts := make([]string, 0, pageCount)
	hasImages := false

	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)

		var pageText string
		if !page.V.IsNull() {
			if text, textErr := page.GetPlainText(nil); textErr == nil {
				pageText = text
			}
		}

		if len(pageText) < minPageTextLen {
			hasImages = true
			if recovered, imgErr := e.images.ExtractImageText(ctx, data, i); imgErr == nil && recovered != "" {
				pageText += recovered
			}
		}

		pages = append(pages, Page{Number: i, Text: pageText})
		texts = append(texts, pageText)
	}

	full := strings.Join(texts, pageSeparator)

	// Record each page's offset in the joined text.
	offset := 0
	for i := range pages {
		pages[i].Start = offset
		offset += len(pages[i].Text) + len(pageSeparator)
	}

	return Result{
		Text:      full,
		Pages:     pages,
		PageCount: pageCount,
		HasImages: hasImages,
	}, nil
}
