package ingest

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/edukit-cloud/edukit/internal/annotate"
	"github.com/edukit-cloud/edukit/internal/domain"
	"github.com/edukit-cloud/edukit/internal/domain/document"
	"github.com/edukit-cloud/edukit/internal/extract"
)

type mockRegistry struct {
	putFn    func(ctx context.Context, doc document.Document) error
	getFn    func(ctx context.Context, id string) (document.Document, error)
	deleteFn func(ctx context.Context, id string) error
	listFn   func(ctx context.Context, subject string) ([]document.Document, error)

	stored []document.Document
}

func (m *mockRegistry) Put(ctx context.Context, doc document.Document) error {
	m.stored = append(m.stored, doc)
	if m.putFn != nil {
		return m.putFn(ctx, doc)
	}
	return nil
}

func (m *mockRegistry) Get(ctx context.Context, id string) (document.Document, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return document.Document{}, domain.ErrNotFound
}

func (m *mockRegistry) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockRegistry) List(ctx context.Context, subject string) ([]document.Document, error) {
	if m.listFn != nil {
		return m.listFn(ctx, subject)
	}
	return nil, nil
}

type mockExtractor struct {
	extractFn func(ctx context.Context, data []byte, typ document.Type) (extract.Result, error)
}

func (m *mockExtractor) Extract(ctx context.Context, data []byte, typ document.Type) (extract.Result, error) {
	if m.extractFn != nil {
		return m.extractFn(ctx, data, typ)
	}
	return extract.Result{Text: string(data)}, nil
}

type mockGuard struct {
	ok     bool
	reason string
}

func (m *mockGuard) Check(string) (bool, string) { return m.ok, m.reason }

type mockAnnotator struct {
	annotation annotate.Annotation
	err        error
}

func (m *mockAnnotator) Annotate(context.Context, string) (annotate.Annotation, error) {
	return m.annotation, m.err
}

func newTestService(t *testing.T) (*Service, *mockRegistry, *mockExtractor, *mockGuard, *mockAnnotator) {
	t.Helper()
	reg := &mockRegistry{}
	ext := &mockExtractor{}
	g := &mockGuard{ok: true}
	ann := &mockAnnotator{annotation: annotate.Annotation{Language: "en"}}
	svc := New(reg, ext, g, ann, zap.NewNop())
	return svc, reg, ext, g, ann
}
