// Package chi is the HTTP API layer: routing, request decoding and the
// mapping from domain errors to status codes.
package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/edukit-cloud/edukit/internal/domain"
	logpkg "github.com/edukit-cloud/edukit/internal/logger"
	generationuc "github.com/edukit-cloud/edukit/internal/usecase/generation"
	healthuc "github.com/edukit-cloud/edukit/internal/usecase/health"
	ingestuc "github.com/edukit-cloud/edukit/internal/usecase/ingest"
	vizuc "github.com/edukit-cloud/edukit/internal/usecase/visualization"
)

const defaultMaxUploadBytes = 10 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the document and generation API over chi.
type Server struct {
	documents      *ingestuc.Service
	generation     *generationuc.Service
	visualization  *vizuc.Service
	health         *healthuc.Service
	maxUploadBytes int64
	logger         *zap.Logger
	errorHandlers  []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	documents *ingestuc.Service,
	generation *generationuc.Service,
	visualization *vizuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		documents:      documents,
		generation:     generation,
		visualization:  visualization,
		health:         health,
		maxUploadBytes: defaultMaxUploadBytes,
		logger:         logger,
	}
	s.errorHandlers = []errorHandler{
		contentRejectedHandler,
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrUnsupportedFormat, http.StatusUnsupportedMediaType, codeUnsupportedFormat),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrGatewayTimeout, http.StatusGatewayTimeout, codeGatewayTimeout),
		sentinelHandler(domain.ErrGatewayFailure, http.StatusBadGateway, codeGatewayFailure),
	}
	return s
}

// WithMaxUploadBytes overrides the multipart upload size cap.
func (s *Server) WithMaxUploadBytes(n int64) *Server {
	if n > 0 {
		s.maxUploadBytes = n
	}
	return s
}

// Register mounts all routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/documents", s.uploadDocument)
		r.Get("/documents", s.listDocuments)
		r.Get("/documents/{id}", s.getDocument)
		r.Delete("/documents/{id}", s.deleteDocument)
		r.Post("/summaries", s.createSummary)
		r.Post("/quizzes", s.createQuiz)
		r.Post("/visualizations", s.createVisualization)
	})
	r.Get("/health", s.healthCheck)
	r.Get("/metrics", s.metricsEndpoint)
}

// uploadDocument handles POST /api/v1/documents (multipart form).
func (s *Server) uploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, codeValidationFailed, "upload exceeds size limit")
			return
		}
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, `form field "file" is required`)
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "read upload: "+err.Error())
		return
	}

	doc, err := s.documents.Ingest(r.Context(), ingestuc.Upload{
		Filename:     header.Filename,
		DeclaredType: r.FormValue("type"),
		Title:        r.FormValue("title"),
		Subject:      r.FormValue("subject"),
		Data:         data,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, documentToUpload(doc))
}

// listDocuments handles GET /api/v1/documents.
func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.documents.List(r.Context(), r.URL.Query().Get("subject"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]DocumentResponse, len(docs))
	for i, d := range docs {
		items[i] = documentToResponse(d)
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Items: items, Total: len(items)})
}

// getDocument handles GET /api/v1/documents/{id}.
func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documents.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToDetail(doc))
}

// deleteDocument handles DELETE /api/v1/documents/{id}.
func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.documents.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// createSummary handles POST /api/v1/summaries.
func (s *Server) createSummary(w http.ResponseWriter, r *http.Request) {
	var req SummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := s.generation.Summarize(r.Context(), generationuc.SummaryRequest{
		DocumentID: req.DocumentID,
		Text:       req.Text,
		Length:     req.Length,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryToResponse(result))
}

// createQuiz handles POST /api/v1/quizzes.
func (s *Server) createQuiz(w http.ResponseWriter, r *http.Request) {
	var req QuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := s.generation.GenerateQuiz(r.Context(), generationuc.QuizRequest{
		DocumentID: req.DocumentID,
		Text:       req.Text,
		Type:       req.Type,
		Difficulty: req.Difficulty,
		Count:      req.Count,
		FocusTopic: req.FocusTopic,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quizToResponse(result))
}

// createVisualization handles POST /api/v1/visualizations.
func (s *Server) createVisualization(w http.ResponseWriter, r *http.Request) {
	var req VisualizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.DocumentID == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "document_id is required")
		return
	}

	resp := VisualizationResponse{DocumentID: req.DocumentID, Kind: req.Kind}
	switch req.Kind {
	case "", "wordcloud":
		resp.Kind = "wordcloud"
		terms, err := s.visualization.Wordcloud(r.Context(), req.DocumentID)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		resp.Terms = terms
	case "concept_map":
		cm, err := s.visualization.ConceptMap(r.Context(), req.DocumentID)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		resp.Nodes = cm.Nodes
		resp.Edges = cm.Edges
	default:
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			`kind must be "wordcloud" or "concept_map"`)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// healthCheck handles GET /health.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// metricsEndpoint handles GET /metrics.
func (s *Server) metricsEndpoint(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrValidation,
		domain.ErrUnsupportedFormat,
		domain.ErrNotFound,
		domain.ErrGatewayTimeout,
		domain.ErrGatewayFailure,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// contentRejectedHandler maps guard rejections to 400. Size reasons pass
// through; a matched prohibited term is replaced with a generic category
// message so it is never echoed back.
func contentRejectedHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, domain.ErrContentRejected) {
		return false
	}
	message := "content failed the safety check"
	var rejected *domain.ContentRejectedError
	if errors.As(err, &rejected) && !strings.Contains(rejected.Reason, "prohibited term") {
		message = rejected.Reason
	}
	writeError(w, http.StatusBadRequest, codeContentRejected, message)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	// Prefer the request-scoped logger so the request id rides along.
	log := logpkg.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
