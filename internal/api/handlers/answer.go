package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/veridoc-ai/veridoc/internal/api"
	"github.com/veridoc-ai/veridoc/internal/domain"
)

// AnswerService defines the answering operation used by the handler
type AnswerService interface {
	Answer(ctx context.Context, documentID, query string, params domain.QueryParams) (*domain.AnswerRecord, error)
}

// AnswerHandler handles grounded question answering endpoints
type AnswerHandler struct {
	svc AnswerService
}

func NewAnswerHandler(svc AnswerService) *AnswerHandler {
	return &AnswerHandler{svc: svc}
}

type AnswerRequest struct {
	Query string `json:"query"`
	// Retrieval width; an explicit 0 requests an ungrounded answer.
	TopK            *int    `json:"top_k,omitempty"`
	Temperature     float32 `json:"temperature,omitempty"`
	TopP            float32 `json:"top_p,omitempty"`
	MaxOutputTokens int     `json:"max_output_tokens,omitempty"`
}

type SourceResponse struct {
	Snippet    string  `json:"snippet"`
	Score      float32 `json:"score"`
	ChunkIndex int     `json:"chunk_index"`
}

type AnswerResponse struct {
	Answer   string           `json:"answer"`
	Sources  []SourceResponse `json:"sources"`
	UsedTopK int              `json:"used_top_k"`
	Model    string           `json:"model,omitempty"`
}

// Answer handles POST /documents/{id}/answer
func (h *AnswerHandler) Answer(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "id")
	if documentID == "" {
		api.Error(w, http.StatusBadRequest, "document id is required")
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		api.HandleError(w, domain.ErrEmptyQuery)
		return
	}

	params := domain.QueryParams{
		TopK:            req.TopK,
		Temperature:     req.Temperature,
		TopP:            req.TopP,
		MaxOutputTokens: req.MaxOutputTokens,
	}

	record, err := h.svc.Answer(r.Context(), documentID, req.Query, params)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	sources := make([]SourceResponse, 0, len(record.Sources))
	for _, s := range record.Sources {
		sources = append(sources, SourceResponse{
			Snippet:    s.Snippet,
			Score:      s.Score,
			ChunkIndex: s.ChunkIndex,
		})
	}

	api.Success(w, http.StatusOK, AnswerResponse{
		Answer:   record.Answer,
		Sources:  sources,
		UsedTopK: record.UsedTopK,
		Model:    record.Model,
	})
}
