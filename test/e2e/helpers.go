//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/veridoc-ai/veridoc/internal/api/handlers"
	"github.com/veridoc-ai/veridoc/internal/index"
	"github.com/veridoc-ai/veridoc/internal/openai"
	"github.com/veridoc-ai/veridoc/internal/retry"
	"github.com/veridoc-ai/veridoc/internal/server"
	"github.com/veridoc-ai/veridoc/internal/service"
)

// E2ETestEnv runs the full HTTP stack against deterministic embedding
// and generation backends, so the pipeline is exercised end to end
// without external API calls.
type E2ETestEnv struct {
	T      *testing.T
	Server *httptest.Server
}

// keywordEmbedder assigns axis-aligned vectors by keyword so that
// retrieval ranking is predictable across the suite.
type keywordEmbedder struct{}

func (keywordEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		lower := strings.ToLower(text)
		switch {
		case strings.Contains(lower, "revenue"):
			out[i] = []float32{1, 0, 0}
		case strings.Contains(lower, "hiring"):
			out[i] = []float32{0, 1, 0}
		default:
			out[i] = []float32{0, 0, 1}
		}
	}
	return out, nil
}

func (keywordEmbedder) Dimensions() int { return 3 }

// echoGenerator answers with the first context line it was given.
type echoGenerator struct{}

func (echoGenerator) Complete(ctx context.Context, input openai.CompletionInput) (string, error) {
	for _, line := range strings.Split(input.Prompt, "\n") {
		if strings.HasPrefix(line, "[S1]") {
			return "Based on the context: " + line, nil
		}
	}
	return "The context does not contain enough information to answer.", nil
}

func (echoGenerator) ChatModel() string { return "e2e-fake-model" }

func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	registry := index.NewRegistry()
	ragSvc := service.NewRAGServiceWithCollaborators(
		service.NewEmbeddingService(keywordEmbedder{}),
		registry,
		service.NewCosineRetriever(),
		service.NewAnswerGeneratorWithPolicy(echoGenerator{}, retry.DefaultPolicy()),
		nil,
		nil,
	)
	ragSvc.SetChunkConfig(service.ChunkConfig{MaxChunkLen: 120, OverlapLen: 20})

	router := server.NewRouter(server.RouterConfig{
		DocumentHandler: handlers.NewDocumentHandler(ragSvc),
		AnswerHandler:   handlers.NewAnswerHandler(ragSvc),
	})

	return &E2ETestEnv{
		T:      t,
		Server: httptest.NewServer(router),
	}
}

func (env *E2ETestEnv) Cleanup() {
	env.Server.Close()
}

// APIResponse mirrors the server's response envelope.
type APIResponse struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
	Code  string          `json:"code,omitempty"`
}

func (env *E2ETestEnv) Post(path string, body interface{}) (int, *APIResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, nil, err
	}
	resp, err := http.Post(env.Server.URL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	return env.parse(resp)
}

func (env *E2ETestEnv) Get(path string) (int, *APIResponse, error) {
	resp, err := http.Get(env.Server.URL + path)
	if err != nil {
		return 0, nil, err
	}
	return env.parse(resp)
}

func (env *E2ETestEnv) parse(resp *http.Response) (int, *APIResponse, error) {
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		return resp.StatusCode, nil, fmt.Errorf("unparseable response %q: %w", string(raw), err)
	}
	return resp.StatusCode, &apiResp, nil
}
