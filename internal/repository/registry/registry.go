// Package registry keeps ingested documents in process memory.
package registry

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/edukit-cloud/edukit/internal/domain"
	"github.com/edukit-cloud/edukit/internal/domain/document"
)

// Registry is a concurrency-safe in-memory document store.
type Registry struct {
	mu   sync.RWMutex
	docs map[string]document.Document
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{docs: make(map[string]document.Document)}
}

// Put stores or replaces a document under its ID.
func (r *Registry) Put(_ context.Context, doc document.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID()] = doc
	return nil
}

// Get returns a document by ID.
func (r *Registry) Get(_ context.Context, id string) (document.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[id]
	if !ok {
		return document.Document{}, domain.ErrNotFound
	}
	return doc, nil
}

// Delete removes a document by ID.
func (r *Registry) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.docs, id)
	return nil
}

// List returns documents in ingestion order, ties broken by ID. A non-empty
// subject filters by metadata subject, case-insensitively.
func (r *Registry) List(_ context.Context, subject string) ([]document.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := make([]document.Document, 0, len(r.docs))
	for _, doc := range r.docs {
		if subject != "" && !strings.EqualFold(doc.Metadata().Subject, subject) {
			continue
		}
		docs = append(docs, doc)
	}

	sort.Slice(docs, func(i, j int) bool {
		a, b := docs[i].Metadata().IngestedAt, docs[j].Metadata().IngestedAt
		if !a.Equal(b) {
			return a.Before(b)
		}
		return docs[i].ID() < docs[j].ID()
	})
	return docs, nil
}

// Count returns the number of stored documents.
func (r *Registry) Count(_ context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}
