// Package document holds the immutable document aggregate produced by ingestion.
package document

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Type identifies a supported document format.
type Type string

const (
	// TypePDF is a PDF container.
	TypePDF Type = "pdf"
	// TypeText is plain UTF-8 text.
	TypeText Type = "text"
	// TypeDocx is an Office Open XML document.
	TypeDocx Type = "docx"
	// TypeMarkdown is Markdown text.
	TypeMarkdown Type = "markdown"
)

// extensionTypes maps file extensions to document types.
// Unrecognized extensions fall back to plain text.
var extensionTypes = map[string]Type{
	".pdf":  TypePDF,
	".txt":  TypeText,
	".docx": TypeDocx,
	".md":   TypeMarkdown,
}

// TypeFromFilename determines the document type from a filename extension,
// defaulting to TypeText.
func TypeFromFilename(filename string) Type {
	ext := strings.ToLower(filepath.Ext(filename))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	return TypeText
}

// ParseType validates a declared type string. Empty means "detect from filename".
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypePDF, TypeText, TypeDocx, TypeMarkdown:
		return Type(s), nil
	case "":
		return "", nil
	default:
		return "", fmt.Errorf("unknown document type %q", s)
	}
}

// ContentType returns the MIME type for the document type.
func (t Type) ContentType() string {
	switch t {
	case TypePDF:
		return "application/pdf"
	case TypeMarkdown:
		return "text/markdown"
	case TypeDocx:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "text/plain"
	}
}

// Metadata describes an ingested document.
type Metadata struct {
	Filename    string
	Title       string
	Subject     string
	ByteSize    int64
	ContentType string
	PageCount   int
	HasImages   bool
	Language    string
	IngestedAt  time.Time
}

// Chunk is a contiguous, position-ordered segment of a document's full text.
type Chunk struct {
	id         string
	text       string
	position   int
	pageNumber int // 0 = unknown/non-PDF
}

// NewChunk creates a chunk. The ID is derived from the document ID and the
// zero-based position, so re-deriving chunks from identical input yields
// identical IDs.
func NewChunk(docID string, position int, text string, pageNumber int) Chunk {
	return Chunk{
		id:         fmt.Sprintf("%s_%d", docID, position),
		text:       text,
		position:   position,
		pageNumber: pageNumber,
	}
}

// ID returns the chunk identifier.
func (c Chunk) ID() string { return c.id }

// Text returns the chunk text.
func (c Chunk) Text() string { return c.text }

// Position returns the zero-based chunk position.
func (c Chunk) Position() int { return c.position }

// PageNumber returns the 1-based PDF page the chunk starts on, 0 if unknown.
func (c Chunk) PageNumber() int { return c.pageNumber }

// Document is the fully-annotated record produced by ingestion.
// It is never partially mutated: chunking and annotation happen before
// construction.
type Document struct {
	id       string
	meta     Metadata
	fullText string
	chunks   []Chunk
	entities map[string][]string
	keywords []string
}

// New validates and creates a Document.
func New(
	id string,
	meta Metadata,
	fullText string,
	chunks []Chunk,
	entities map[string][]string,
	keywords []string,
) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if fullText == "" {
		return Document{}, fmt.Errorf("full text is required")
	}
	if len(chunks) == 0 {
		return Document{}, fmt.Errorf("at least one chunk is required")
	}
	for i, c := range chunks {
		if c.position != i {
			return Document{}, fmt.Errorf("chunk %d has position %d, want %d", i, c.position, i)
		}
	}

	return Document{
		id:       id,
		meta:     meta,
		fullText: fullText,
		chunks:   append([]Chunk(nil), chunks...),
		entities: cloneEntities(entities),
		keywords: append([]string(nil), keywords...),
	}, nil
}

// ID returns the document identifier.
func (d Document) ID() string { return d.id }

// Metadata returns the document metadata.
func (d Document) Metadata() Metadata { return d.meta }

// FullText returns the full extracted text.
func (d Document) FullText() string { return d.fullText }

// Chunks returns the chunks in document order.
func (d Document) Chunks() []Chunk { return append([]Chunk(nil), d.chunks...) }

// Entities returns recognized entities grouped by type, first-seen order
// within each type.
func (d Document) Entities() map[string][]string { return cloneEntities(d.entities) }

// Keywords returns keywords ranked by descending frequency.
func (d Document) Keywords() []string { return append([]string(nil), d.keywords...) }

// WordCount returns the number of whitespace-separated words in the full text.
func (d Document) WordCount() int { return len(strings.Fields(d.fullText)) }

func cloneEntities(m map[string][]string) map[string][]string {
	if m == nil {
		return nil
	}
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[k] = append([]string(nil), v...)
	}
	return out
}
