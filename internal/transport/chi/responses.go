package chi

import (
	"encoding/json"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/edukit-cloud/edukit/internal/domain/document"
	"github.com/edukit-cloud/edukit/internal/domain/quiz"
	"github.com/edukit-cloud/edukit/internal/domain/summary"
	"github.com/edukit-cloud/edukit/internal/usecase/visualization"
)

// Error codes returned in ErrorResponse.Code.
const (
	codeBadRequest        = "bad_request"
	codeValidationFailed  = "validation_failed"
	codeUnsupportedFormat = "unsupported_format"
	codeContentRejected   = "content_rejected"
	codeNotFound          = "document_not_found"
	codeGatewayTimeout    = "generation_timeout"
	codeGatewayFailure    = "generation_failed"
	codeUnauthorized      = "unauthorized"
	codeInternalError     = "internal_error"
)

const (
	previewChars       = 200
	readingWordsPerMin = 200
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DocumentResponse describes a registered document.
type DocumentResponse struct {
	ID          string              `json:"id"`
	Filename    string              `json:"filename"`
	Title       string              `json:"title"`
	Subject     string              `json:"subject,omitempty"`
	ContentType string              `json:"content_type"`
	ByteSize    int64               `json:"byte_size"`
	PageCount   int                 `json:"page_count,omitempty"`
	HasImages   bool                `json:"has_images"`
	Language    string              `json:"language"`
	ChunkCount  int                 `json:"chunk_count"`
	WordCount   int                 `json:"word_count"`
	Keywords    []string            `json:"keywords,omitempty"`
	Entities    map[string][]string `json:"entities,omitempty"`
	IngestedAt  time.Time           `json:"ingested_at"`
}

// ChunkResponse is one document chunk.
type ChunkResponse struct {
	ID         string `json:"id"`
	Position   int    `json:"position"`
	PageNumber int    `json:"page_number,omitempty"`
	Text       string `json:"text"`
}

// DocumentDetailResponse is a document with its chunks.
type DocumentDetailResponse struct {
	DocumentResponse
	Chunks []ChunkResponse `json:"chunks"`
}

// UploadResponse is returned after a successful ingestion.
type UploadResponse struct {
	DocumentResponse
	Preview            string `json:"preview"`
	ReadingTimeMinutes int    `json:"reading_time_minutes"`
}

// DocumentListResponse lists documents.
type DocumentListResponse struct {
	Items []DocumentResponse `json:"items"`
	Total int                `json:"total"`
}

// SummaryRequest asks for a summary.
type SummaryRequest struct {
	DocumentID string `json:"document_id,omitempty"`
	Text       string `json:"text,omitempty"`
	Length     string `json:"length,omitempty"`
}

// SummaryResponse is a generated summary.
type SummaryResponse struct {
	ID         string   `json:"id"`
	DocumentID string   `json:"document_id,omitempty"`
	Text       string   `json:"text"`
	Length     string   `json:"length"`
	Keywords   []string `json:"keywords,omitempty"`
}

// QuizRequest asks for quiz questions.
type QuizRequest struct {
	DocumentID string `json:"document_id,omitempty"`
	Text       string `json:"text,omitempty"`
	Type       string `json:"type,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Count      int    `json:"count,omitempty"`
	FocusTopic string `json:"focus_topic,omitempty"`
}

// QuizItemResponse is one generated question.
type QuizItemResponse struct {
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation,omitempty"`
}

// QuizResponse is a generated quiz.
type QuizResponse struct {
	ID         string             `json:"id"`
	DocumentID string             `json:"document_id,omitempty"`
	Type       string             `json:"type"`
	Difficulty string             `json:"difficulty"`
	Items      []QuizItemResponse `json:"items"`
}

// VisualizationRequest asks for chart data over a document.
type VisualizationRequest struct {
	DocumentID string `json:"document_id"`
	Kind       string `json:"kind"` // wordcloud, concept_map
}

// VisualizationResponse carries whichever data the requested kind produces.
type VisualizationResponse struct {
	DocumentID string               `json:"document_id"`
	Kind       string               `json:"kind"`
	Terms      []visualization.Term `json:"terms,omitempty"`
	Nodes      []visualization.Node `json:"nodes,omitempty"`
	Edges      []visualization.Edge `json:"edges,omitempty"`
}

// HealthResponse reports component availability.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func documentToResponse(doc document.Document) DocumentResponse {
	meta := doc.Metadata()
	return DocumentResponse{
		ID:          doc.ID(),
		Filename:    meta.Filename,
		Title:       meta.Title,
		Subject:     meta.Subject,
		ContentType: meta.ContentType,
		ByteSize:    meta.ByteSize,
		PageCount:   meta.PageCount,
		HasImages:   meta.HasImages,
		Language:    meta.Language,
		ChunkCount:  len(doc.Chunks()),
		WordCount:   doc.WordCount(),
		Keywords:    doc.Keywords(),
		Entities:    doc.Entities(),
		IngestedAt:  meta.IngestedAt,
	}
}

func documentToDetail(doc document.Document) DocumentDetailResponse {
	chunks := doc.Chunks()
	items := make([]ChunkResponse, len(chunks))
	for i, c := range chunks {
		items[i] = ChunkResponse{
			ID:         c.ID(),
			Position:   c.Position(),
			PageNumber: c.PageNumber(),
			Text:       c.Text(),
		}
	}
	return DocumentDetailResponse{
		DocumentResponse: documentToResponse(doc),
		Chunks:           items,
	}
}

func documentToUpload(doc document.Document) UploadResponse {
	words := doc.WordCount()
	minutes := (words + readingWordsPerMin - 1) / readingWordsPerMin
	if minutes < 1 {
		minutes = 1
	}
	return UploadResponse{
		DocumentResponse:   documentToResponse(doc),
		Preview:            preview(doc.FullText()),
		ReadingTimeMinutes: minutes,
	}
}

func summaryToResponse(s summary.Summary) SummaryResponse {
	return SummaryResponse{
		ID:         s.ID,
		DocumentID: s.DocumentID,
		Text:       s.Text,
		Length:     string(s.Length),
		Keywords:   s.Keywords,
	}
}

func quizToResponse(q quiz.Quiz) QuizResponse {
	items := make([]QuizItemResponse, len(q.Items))
	for i, item := range q.Items {
		items[i] = QuizItemResponse{
			Question:      item.Question,
			Options:       item.Options,
			CorrectAnswer: item.Answer,
			Explanation:   item.Explanation,
		}
	}
	return QuizResponse{
		ID:         q.ID,
		DocumentID: q.DocumentID,
		Type:       string(q.Type),
		Difficulty: string(q.Difficulty),
		Items:      items,
	}
}

// preview returns the first previewChars characters without splitting a rune.
func preview(text string) string {
	if len(text) <= previewChars {
		return text
	}
	end := previewChars
	for end > 0 && !utf8.RuneStart(text[end]) {
		end--
	}
	return text[:end]
}
