package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/veridoc-ai/veridoc/internal/domain"
	"github.com/veridoc-ai/veridoc/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Ingest(ctx context.Context, documentID, text string) (*service.IngestResult, error) {
	args := m.Called(ctx, documentID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IngestResult), args.Error(1)
}

func (m *MockDocumentService) Describe(documentID string) (domain.Document, error) {
	args := m.Called(documentID)
	return args.Get(0).(domain.Document), args.Error(1)
}

func requestWithID(method, url, id string, body []byte) *http.Request {
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestDocumentHandler_Ingest_Success(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	mockSvc.On("Ingest", mock.Anything, "doc-1", "some document text").
		Return(&service.IngestResult{DocumentID: "doc-1", ChunkCount: 2}, nil)

	body := `{"document_id":"doc-1","text":"some document text"}`
	req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Ingest(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "doc-1", data["document_id"])
	assert.Equal(t, "ready", data["status"])
	assert.Equal(t, float64(2), data["chunk_count"])
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_Ingest_GeneratesIDWhenOmitted(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	mockSvc.On("Ingest", mock.Anything, mock.MatchedBy(func(id string) bool {
		return id != ""
	}), "text body").Return(&service.IngestResult{DocumentID: "generated", ChunkCount: 1}, nil)

	body := `{"text":"text body"}`
	req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Ingest(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_Ingest_EmptyText(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	body := `{"document_id":"doc-1","text":""}`
	req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Ingest(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "no extractable content")
	mockSvc.AssertNotCalled(t, "Ingest")
}

func TestDocumentHandler_Ingest_InvalidJSON(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewReader([]byte(`{invalid`)))
	w := httptest.NewRecorder()

	handler.Ingest(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestDocumentHandler_Ingest_DuplicateConflict(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	mockSvc.On("Ingest", mock.Anything, "doc-1", "text").
		Return(nil, domain.ErrDocumentExists)

	body := `{"document_id":"doc-1","text":"text"}`
	req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Ingest(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), domain.ErrCodeAlreadyExists)
}

func TestDocumentHandler_Get_Success(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	mockSvc.On("Describe", "doc-1").Return(domain.Document{
		ID:        "doc-1",
		State:     domain.DocumentStateReady,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil)

	req := requestWithID(http.MethodGet, "/documents/doc-1", "doc-1", nil)
	w := httptest.NewRecorder()

	handler.Get(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "doc-1", data["document_id"])
	assert.Equal(t, "ready", data["status"])
	assert.Equal(t, "2026-08-24T10:00:00Z", data["created_at"])
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_Get_FailedIncludesReason(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	mockSvc.On("Describe", "doc-1").Return(domain.Document{
		ID:         "doc-1",
		State:      domain.DocumentStateFailed,
		FailReason: "no extractable content",
	}, nil)

	req := requestWithID(http.MethodGet, "/documents/doc-1", "doc-1", nil)
	w := httptest.NewRecorder()

	handler.Get(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "failed", data["status"])
	assert.Equal(t, "no extractable content", data["reason"])
}

func TestDocumentHandler_Get_NotFound(t *testing.T) {
	mockSvc := new(MockDocumentService)
	handler := NewDocumentHandler(mockSvc)

	mockSvc.On("Describe", "missing").Return(domain.Document{}, domain.ErrDocumentNotFound)

	req := requestWithID(http.MethodGet, "/documents/missing", "missing", nil)
	w := httptest.NewRecorder()

	handler.Get(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), domain.ErrCodeNotFound)
}
