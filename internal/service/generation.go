package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/veridoc-ai/veridoc/internal/domain"
	"github.com/veridoc-ai/veridoc/internal/openai"
	"github.com/veridoc-ai/veridoc/internal/retry"
)

const (
	maxQueryPromptRunes = 400

	// groundingInstructions is the prompt-construction contract: the
	// model is told to answer strictly from the supplied context and to
	// say so when the context is insufficient. Downstream consumers
	// must not assume zero hallucination.
	groundingInstructions = "You are a document analysis assistant. " +
		"Answer the question using only the information in the supplied context. " +
		"Cite the [S#] markers of the passages you rely on. " +
		"If the context does not contain enough information to answer, say so " +
		"explicitly instead of guessing."
)

// GenerationClient defines the interface for the text generation backend
type GenerationClient interface {
	Complete(ctx context.Context, input openai.CompletionInput) (string, error)
	ChatModel() string
}

// AnswerGenerator invokes the external generation service with an
// assembled context. Transient failures are retried with bounded
// exponential backoff; everything else fails on first occurrence.
type AnswerGenerator struct {
	client GenerationClient
	policy retry.Policy
}

// NewAnswerGenerator creates an AnswerGenerator with the default retry policy.
func NewAnswerGenerator(client GenerationClient) *AnswerGenerator {
	return NewAnswerGeneratorWithPolicy(client, retry.DefaultPolicy())
}

// NewAnswerGeneratorWithPolicy creates an AnswerGenerator with an explicit retry policy.
func NewAnswerGeneratorWithPolicy(client GenerationClient, policy retry.Policy) *AnswerGenerator {
	return &AnswerGenerator{client: client, policy: policy}
}

// Generate produces a grounded answer for query against the assembled
// context. params must already be normalized and validated.
func (g *AnswerGenerator) Generate(ctx context.Context, query string, assembled AssembledContext, params domain.QueryParams) (string, error) {
	input := openai.CompletionInput{
		System:      groundingInstructions,
		Prompt:      buildPrompt(query, assembled.Text),
		Temperature: params.Temperature,
		TopP:        params.TopP,
		MaxTokens:   params.MaxOutputTokens,
	}

	var answer string
	err := g.policy.Do(ctx, func(ctx context.Context) error {
		var callErr error
		answer, callErr = g.client.Complete(ctx, input)
		return callErr
	}, transientGenerationError)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeGeneration, "generation service call failed", err)
	}
	return answer, nil
}

// Model returns the backend model name, echoed in answer records.
func (g *AnswerGenerator) Model() string {
	return g.client.ChatModel()
}

func buildPrompt(query, contextText string) string {
	return fmt.Sprintf("[QUESTION]\n%s\n\n[CONTEXT]\n%s\n\nAnswer:",
		Shrink(query, maxQueryPromptRunes), contextText)
}

// transientGenerationError reports whether err is worth retrying:
// rate limits, server-side failures, and network-class errors. Invalid
// requests and content policy rejections fail immediately.
func transientGenerationError(err error) bool {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return true
		case apiErr.HTTPStatusCode == http.StatusRequestTimeout:
			return true
		case apiErr.HTTPStatusCode >= http.StatusInternalServerError:
			return true
		default:
			return false
		}
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
