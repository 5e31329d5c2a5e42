package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/askdoc-io/askdoc/internal/api"
	"github.com/askdoc-io/askdoc/internal/domain"
	"github.com/askdoc-io/askdoc/internal/pagination"
	"github.com/askdoc-io/askdoc/internal/service"
)

type DocumentServiceInterface interface {
	Register(ctx context.Context, originalName, text string) (*domain.Document, error)
	ProcessDocument(ctx context.Context, id, overrideText string) (*service.IngestResult, error)
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context, cursorToken string, limit int) (*pagination.PageResult[*domain.Document], error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*domain.ChunkTableStats, error)
}

type AnswerService interface {
	Answer(ctx context.Context, documentID, question string, topK int) *service.AnswerResult
}

type DocumentHandler struct {
	svc         DocumentServiceInterface
	answers     AnswerService
	defaultTopK int
}

func NewDocumentHandler(svc DocumentServiceInterface, answers AnswerService, defaultTopK int) *DocumentHandler {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &DocumentHandler{svc: svc, answers: answers, defaultTopK: defaultTopK}
}

type RegisterDocumentRequest struct {
	OriginalName string `json:"original_name"`
	Text         string `json:"text"`
}

type ProcessDocumentRequest struct {
	Text string `json:"text"`
}

type AskRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k"`
}

type DocumentResponse struct {
	ID           string `json:"id"`
	OriginalName string `json:"original_name"`
	Vectorized   bool   `json:"vectorized"`
	ChunkCount   int    `json:"chunk_count"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

type ProcessResponse struct {
	ChunkCount int `json:"chunk_count"`
}

type SourceResponse struct {
	Content  string          `json:"content"`
	Metadata domain.Metadata `json:"metadata"`
}

type AskResponse struct {
	Answer  string           `json:"answer"`
	Sources []SourceResponse `json:"sources"`
}

type ListDocumentsResponse struct {
	Items   []*DocumentResponse `json:"items"`
	Cursor  string              `json:"cursor,omitempty"`
	HasMore bool                `json:"has_more"`
}

type StatsResponse struct {
	TotalChunks int64 `json:"total_chunks"`
	Documents   int64 `json:"documents"`
}

func documentToResponse(d *domain.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:           d.ID,
		OriginalName: d.OriginalName,
		Vectorized:   d.Vectorized,
		ChunkCount:   d.ChunkCount,
		CreatedAt:    d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    d.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *DocumentHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.OriginalName == "" {
		api.Error(w, http.StatusBadRequest, "original_name is required")
		return
	}
	if req.Text == "" {
		api.Error(w, http.StatusBadRequest, "text is required")
		return
	}

	doc, err := h.svc.Register(r.Context(), req.OriginalName, req.Text)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, documentToResponse(doc))
}

func (h *DocumentHandler) Process(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	// Body is optional; when present it may carry replacement text.
	var req ProcessDocumentRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.Error(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	result, err := h.svc.ProcessDocument(r.Context(), id, req.Text)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, ProcessResponse{ChunkCount: result.ChunkCount})
}

// Ask always answers 200. Internal failures surface as answer text so the
// chat surface on top of this endpoint always has something to show.
func (h *DocumentHandler) Ask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}

	topK := req.TopK
	if topK <= 0 {
		topK = h.defaultTopK
	}

	result := h.answers.Answer(r.Context(), id, req.Question, topK)

	sources := make([]SourceResponse, 0, len(result.Sources))
	for _, s := range result.Sources {
		sources = append(sources, SourceResponse{Content: s.Content, Metadata: s.Metadata})
	}

	api.Success(w, http.StatusOK, AskResponse{Answer: result.Answer, Sources: sources})
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	doc, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, documentToResponse(doc))
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			api.Error(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	page, err := h.svc.List(r.Context(), r.URL.Query().Get("cursor"), limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*DocumentResponse, 0, len(page.Items))
	for _, d := range page.Items {
		items = append(items, documentToResponse(d))
	}

	api.Success(w, http.StatusOK, ListDocumentsResponse{
		Items:   items,
		Cursor:  page.Cursor,
		HasMore: page.HasMore,
	})
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusNoContent, nil)
}

func (h *DocumentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, StatsResponse{
		TotalChunks: stats.TotalChunks,
		Documents:   stats.Documents,
	})
}
