// Package ingest runs the upload pipeline: type detection, extraction,
// safety gating, chunking and annotation, ending in a registered document.
package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edukit-cloud/edukit/internal/chunker"
	"github.com/edukit-cloud/edukit/internal/domain"
	"github.com/edukit-cloud/edukit/internal/domain/document"
	"github.com/edukit-cloud/edukit/internal/extract"
	"github.com/edukit-cloud/edukit/internal/metrics"
)

// DefaultChunkSize is the chunk size used when none is configured.
const DefaultChunkSize = 3000

// Service handles the document lifecycle from upload to deletion.
type Service struct {
	registry  Registry
	extractor Extractor
	guard     Guard
	annotator Annotator
	chunkSize int
	logger    *zap.Logger
}

// New creates an ingest service.
func New(registry Registry, extractor Extractor, guard Guard, annotator Annotator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		registry:  registry,
		extractor: extractor,
		guard:     guard,
		annotator: annotator,
		chunkSize: DefaultChunkSize,
		logger:    logger,
	}
}

// WithChunkSize overrides the chunk size.
func (s *Service) WithChunkSize(n int) *Service {
	if n > 0 {
		s.chunkSize = n
	}
	return s
}

// Ingest runs the full pipeline over an upload and registers the resulting
// document.
func (s *Service) Ingest(ctx context.Context, up Upload) (document.Document, error) {
	typ, err := s.resolveType(up)
	if err != nil {
		return document.Document{}, err
	}

	start := time.Now()
	doc, err := s.ingest(ctx, up, typ)
	if err != nil {
		metrics.IngestDocumentsTotal.WithLabelValues(string(typ), "error").Inc()
		return document.Document{}, err
	}

	metrics.IngestDocumentsTotal.WithLabelValues(string(typ), "success").Inc()
	metrics.IngestDuration.WithLabelValues(string(typ)).Observe(time.Since(start).Seconds())

	s.logger.Info("Document ingested",
		zap.String("document_id", doc.ID()),
		zap.String("type", string(typ)),
		zap.Int("chunks", len(doc.Chunks())),
		zap.String("language", doc.Metadata().Language))

	return doc, nil
}

func (s *Service) ingest(ctx context.Context, up Upload, typ document.Type) (document.Document, error) {
	if len(up.Data) == 0 {
		return document.Document{}, fmt.Errorf("empty upload: %w", domain.ErrValidation)
	}

	res, err := s.extractor.Extract(ctx, up.Data, typ)
	if err != nil {
		return document.Document{}, fmt.Errorf("extract text: %w", err)
	}

	if ok, reason := s.guard.Check(res.Text); !ok {
		return document.Document{}, domain.NewContentRejected(reason)
	}

	ann, err := s.annotator.Annotate(ctx, res.Text)
	if err != nil {
		return document.Document{}, fmt.Errorf("annotate text: %w", err)
	}

	id := uuid.NewString()
	pieces := chunker.Split(res.Text, s.chunkSize)
	chunks := make([]document.Chunk, len(pieces))
	offset := 0
	for i, piece := range pieces {
		chunks[i] = document.NewChunk(id, i, piece, pageAt(res.Pages, offset))
		offset += len(piece)
	}

	meta := document.Metadata{
		Filename:    up.Filename,
		Title:       resolveTitle(up),
		Subject:     up.Subject,
		ByteSize:    int64(len(up.Data)),
		ContentType: typ.ContentType(),
		PageCount:   res.PageCount,
		HasImages:   res.HasImages,
		Language:    ann.Language,
		IngestedAt:  time.Now().UTC(),
	}

	doc, err := document.New(id, meta, res.Text, chunks, ann.Entities, ann.KeywordTerms())
	if err != nil {
		return document.Document{}, fmt.Errorf("assemble document: %w", err)
	}

	if err := s.registry.Put(ctx, doc); err != nil {
		return document.Document{}, fmt.Errorf("register document: %w", err)
	}
	return doc, nil
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, id string) (document.Document, error) {
	doc, err := s.registry.Get(ctx, id)
	if err != nil {
		return document.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// List returns documents, optionally filtered by subject.
func (s *Service) List(ctx context.Context, subject string) ([]document.Document, error) {
	docs, err := s.registry.List(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Delete removes a document.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.registry.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	s.logger.Info("Document deleted", zap.String("document_id", id))
	return nil
}

// resolveType prefers a valid declared type over filename detection.
func (s *Service) resolveType(up Upload) (document.Type, error) {
	typ, err := document.ParseType(up.DeclaredType)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	if typ == "" {
		typ = document.TypeFromFilename(up.Filename)
	}
	return typ, nil
}

// resolveTitle falls back to the filename without extension.
func resolveTitle(up Upload) string {
	if up.Title != "" {
		return up.Title
	}
	base := filepath.Base(up.Filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// pageAt returns the 1-based page whose text spans the byte offset, 0 when
// no page layout is known.
func pageAt(pages []extract.Page, offset int) int {
	page := 0
	for _, p := range pages {
		if p.Start > offset {
			break
		}
		page = p.Number
	}
	return page
}
