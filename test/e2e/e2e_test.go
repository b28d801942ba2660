//go:build e2e

package e2e

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ingestResult struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
	ChunkCount int    `json:"chunk_count"`
}

type answerResult struct {
	Answer  string `json:"answer"`
	Sources []struct {
		Snippet    string  `json:"snippet"`
		Score      float32 `json:"score"`
		ChunkIndex int     `json:"chunk_index"`
	} `json:"sources"`
	UsedTopK int    `json:"used_top_k"`
	Model    string `json:"model"`
}

func TestE2E_IngestAndAnswer(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	text := "Quarterly revenue grew 12% driven by new subscriptions. " +
		"Meanwhile hiring slowed across all departments as the company focused on profitability."

	var documentID string

	t.Run("ingest document", func(t *testing.T) {
		status, resp, err := env.Post("/documents", map[string]string{"text": text})
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, status)

		var result ingestResult
		require.NoError(t, json.Unmarshal(resp.Data, &result))
		assert.NotEmpty(t, result.DocumentID)
		assert.Equal(t, "ready", result.Status)
		assert.Greater(t, result.ChunkCount, 0)
		documentID = result.DocumentID
	})

	t.Run("document status is ready", func(t *testing.T) {
		status, resp, err := env.Get("/documents/" + documentID)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)

		var doc struct {
			Status string `json:"status"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &doc))
		assert.Equal(t, "ready", doc.Status)
	})

	t.Run("answer cites retrieved context", func(t *testing.T) {
		status, resp, err := env.Post("/documents/"+documentID+"/answer",
			map[string]interface{}{"query": "How did revenue change?"})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)

		var result answerResult
		require.NoError(t, json.Unmarshal(resp.Data, &result))
		assert.Contains(t, result.Answer, "revenue")
		assert.Equal(t, 3, result.UsedTopK)
		assert.Equal(t, "e2e-fake-model", result.Model)
		require.NotEmpty(t, result.Sources)
		assert.Contains(t, result.Sources[0].Snippet, "revenue")
	})

	t.Run("explicit zero top_k answers without sources", func(t *testing.T) {
		status, resp, err := env.Post("/documents/"+documentID+"/answer",
			map[string]interface{}{"query": "How did revenue change?", "top_k": 0})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)

		var result answerResult
		require.NoError(t, json.Unmarshal(resp.Data, &result))
		assert.Empty(t, result.Sources)
		assert.Equal(t, 0, result.UsedTopK)
	})

	t.Run("re-ingesting the same document conflicts", func(t *testing.T) {
		status, resp, err := env.Post("/documents",
			map[string]string{"document_id": documentID, "text": text})
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "ALREADY_EXISTS", resp.Code)
	})
}

func TestE2E_IngestFailures(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	t.Run("empty text rejected", func(t *testing.T) {
		status, resp, err := env.Post("/documents",
			map[string]string{"document_id": "empty-doc", "text": ""})
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Contains(t, resp.Error, "no extractable content")
	})

	t.Run("whitespace text marks document failed", func(t *testing.T) {
		status, _, err := env.Post("/documents",
			map[string]string{"document_id": "blank-doc", "text": "   \n\t "})
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, status)

		status, resp, err := env.Get("/documents/blank-doc")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)

		var doc struct {
			Status string `json:"status"`
			Reason string `json:"reason"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &doc))
		assert.Equal(t, "failed", doc.Status)
		assert.Contains(t, doc.Reason, "no extractable content")

		// Querying a failed document conflicts.
		status, resp, err = env.Post("/documents/blank-doc/answer",
			map[string]interface{}{"query": "anything?"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "NOT_READY", resp.Code)
	})
}

func TestE2E_UnknownDocument(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	status, resp, err := env.Get("/documents/missing")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", resp.Code)

	status, resp, err = env.Post("/documents/missing/answer",
		map[string]interface{}{"query": "anything?"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", resp.Code)
}
