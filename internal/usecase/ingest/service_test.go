package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/edukit-cloud/edukit/internal/annotate"
	"github.com/edukit-cloud/edukit/internal/domain"
	"github.com/edukit-cloud/edukit/internal/domain/document"
	"github.com/edukit-cloud/edukit/internal/extract"
)

func TestIngest_TextUpload(t *testing.T) {
	svc, reg, _, _, ann := newTestService(t)
	ann.annotation = annotate.Annotation{
		Entities: map[string][]string{"PERSON": {"Newton"}},
		Keywords: []annotate.Keyword{{Term: "gravity", Count: 4}},
		Language: "en",
	}

	doc, err := svc.Ingest(context.Background(), Upload{
		Filename: "physics-notes.txt",
		Subject:  "physics",
		Data:     []byte("Newton described gravity in his notes on motion."),
	})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	if doc.ID() == "" {
		t.Fatal("expected generated document ID")
	}
	meta := doc.Metadata()
	if meta.Title != "physics-notes" {
		t.Errorf("Title = %q, expected filename without extension", meta.Title)
	}
	if meta.ContentType != "text/plain" || meta.Language != "en" {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if meta.IngestedAt.IsZero() {
		t.Error("expected IngestedAt to be set")
	}
	if got := doc.Keywords(); len(got) != 1 || got[0] != "gravity" {
		t.Errorf("Keywords = %v", got)
	}
	if len(reg.stored) != 1 || reg.stored[0].ID() != doc.ID() {
		t.Error("expected document registered")
	}
}

func TestIngest_ChunksLargeText(t *testing.T) {
	svc, _, ext, _, _ := newTestService(t)
	svc.WithChunkSize(100)

	text := strings.Repeat("sentence one. ", 40) // ~560 chars
	ext.extractFn = func(context.Context, []byte, document.Type) (extract.Result, error) {
		return extract.Result{Text: text}, nil
	}

	doc, err := svc.Ingest(context.Background(), Upload{Filename: "a.txt", Data: []byte("x")})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	chunks := doc.Chunks()
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	var rebuilt strings.Builder
	for i, c := range chunks {
		if c.Position() != i {
			t.Errorf("chunk %d has position %d", i, c.Position())
		}
		if len(c.Text()) > 100 {
			t.Errorf("chunk %d exceeds size: %d", i, len(c.Text()))
		}
		rebuilt.WriteString(c.Text())
	}
	if rebuilt.String() != text {
		t.Error("chunks do not reconstruct the full text")
	}
}

func TestIngest_PageAttribution(t *testing.T) {
	svc, _, ext, _, _ := newTestService(t)
	svc.WithChunkSize(60)

	page1 := strings.Repeat("a", 50)
	page2 := strings.Repeat("b", 50)
	full := page1 + "\n\n" + page2
	ext.extractFn = func(context.Context, []byte, document.Type) (extract.Result, error) {
		return extract.Result{
			Text:      full,
			PageCount: 2,
			Pages: []extract.Page{
				{Number: 1, Text: page1, Start: 0},
				{Number: 2, Text: page2, Start: 52},
			},
		}, nil
	}

	doc, err := svc.Ingest(context.Background(), Upload{Filename: "a.pdf", Data: []byte("x")})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	chunks := doc.Chunks()
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].PageNumber() != 1 {
		t.Errorf("chunk 0 page = %d, expected 1", chunks[0].PageNumber())
	}
	if chunks[1].PageNumber() != 2 {
		t.Errorf("chunk 1 page = %d, expected 2", chunks[1].PageNumber())
	}
}

func TestIngest_GuardRejection(t *testing.T) {
	svc, reg, _, g, _ := newTestService(t)
	g.ok = false
	g.reason = "content is too short"

	_, err := svc.Ingest(context.Background(), Upload{Filename: "a.txt", Data: []byte("hi")})
	if !errors.Is(err, domain.ErrContentRejected) {
		t.Fatalf("expected ErrContentRejected, got %v", err)
	}
	if len(reg.stored) != 0 {
		t.Error("rejected content must not be registered")
	}

	var rejected *domain.ContentRejectedError
	if !errors.As(err, &rejected) || rejected.Reason != "content is too short" {
		t.Fatalf("expected reason preserved, got %v", err)
	}
}

func TestIngest_DeclaredTypeOverride(t *testing.T) {
	svc, _, ext, _, _ := newTestService(t)

	var gotType document.Type
	ext.extractFn = func(_ context.Context, data []byte, typ document.Type) (extract.Result, error) {
		gotType = typ
		return extract.Result{Text: string(data)}, nil
	}

	_, err := svc.Ingest(context.Background(), Upload{
		Filename:     "notes.bin",
		DeclaredType: "markdown",
		Data:         []byte("# heading and body"),
	})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if gotType != document.TypeMarkdown {
		t.Fatalf("extractor saw type %q, expected markdown", gotType)
	}
}

func TestIngest_UnknownDeclaredType(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	_, err := svc.Ingest(context.Background(), Upload{
		Filename:     "a.txt",
		DeclaredType: "spreadsheet",
		Data:         []byte("cells"),
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestIngest_EmptyUpload(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	_, err := svc.Ingest(context.Background(), Upload{Filename: "a.txt"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestIngest_AnnotatorError(t *testing.T) {
	svc, reg, _, _, ann := newTestService(t)
	ann.err = errors.New("model unavailable")

	_, err := svc.Ingest(context.Background(), Upload{Filename: "a.txt", Data: []byte("some safe text")})
	if err == nil {
		t.Fatal("expected error from annotator")
	}
	if len(reg.stored) != 0 {
		t.Error("failed ingestion must not register a document")
	}
}

func TestDelete_PassesThrough(t *testing.T) {
	svc, reg, _, _, _ := newTestService(t)

	var deleted string
	reg.deleteFn = func(_ context.Context, id string) error {
		deleted = id
		return nil
	}

	if err := svc.Delete(context.Background(), "doc-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted != "doc-1" {
		t.Fatalf("deleted %q", deleted)
	}
}
