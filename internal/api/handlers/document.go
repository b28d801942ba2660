package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/veridoc-ai/veridoc/internal/api"
	"github.com/veridoc-ai/veridoc/internal/domain"
	"github.com/veridoc-ai/veridoc/internal/service"
)

// DocumentService defines the ingestion operations used by the handler
type DocumentService interface {
	Ingest(ctx context.Context, documentID, text string) (*service.IngestResult, error)
	Describe(documentID string) (domain.Document, error)
}

// DocumentHandler handles document ingestion endpoints
type DocumentHandler struct {
	svc DocumentService
}

func NewDocumentHandler(svc DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

type IngestRequest struct {
	DocumentID string `json:"document_id,omitempty"`
	Text       string `json:"text"`
}

type IngestResponse struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
	ChunkCount int    `json:"chunk_count"`
}

type DocumentResponse struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

// Ingest handles POST /documents
func (h *DocumentHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Text == "" {
		api.HandleError(w, domain.ErrNoExtractableContent)
		return
	}

	documentID := req.DocumentID
	if documentID == "" {
		documentID = uuid.NewString()
	}

	result, err := h.svc.Ingest(r.Context(), documentID, req.Text)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, IngestResponse{
		DocumentID: result.DocumentID,
		Status:     string(domain.DocumentStateReady),
		ChunkCount: result.ChunkCount,
	})
}

// Get handles GET /documents/{id}
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "id")
	if documentID == "" {
		api.Error(w, http.StatusBadRequest, "document id is required")
		return
	}

	doc, err := h.svc.Describe(documentID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, DocumentResponse{
		DocumentID: doc.ID,
		Status:     string(doc.State),
		Reason:     doc.FailReason,
		CreatedAt:  doc.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  doc.UpdatedAt.UTC().Format(time.RFC3339),
	})
}
