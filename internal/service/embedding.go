package service

import (
	"context"
	"fmt"
)

// defaultEmbedBatchSize bounds how many chunk texts go into one
// embeddings request at ingestion time.
const defaultEmbedBatchSize = 64

// EmbeddingClient defines the interface for the embedding backend.
// Identical text yields the identical vector for a fixed model, modulo
// floating point jitter from the numeric backend.
type EmbeddingClient interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// EmbeddingService maps chunk and query texts to fixed-dimension
// vectors, batching chunk texts for throughput.
type EmbeddingService struct {
	client    EmbeddingClient
	batchSize int
}

// NewEmbeddingService creates a new EmbeddingService instance
func NewEmbeddingService(client EmbeddingClient) *EmbeddingService {
	return &EmbeddingService{
		client:    client,
		batchSize: defaultEmbedBatchSize,
	}
}

// EmbedTexts embeds all texts, one vector per input in the same order.
// Any backend error fails the whole call; callers never see a partial
// result.
func (s *EmbeddingService) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.batchSize {
		end := start + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		vectors, err := s.client.GenerateEmbeddings(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to embed batch starting at %d: %w", start, err)
		}
		out = append(out, vectors...)
	}
	return out, nil
}

// EmbedQuery embeds a single query text.
func (s *EmbeddingService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vectors, err := s.client.GenerateEmbeddings(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	return vectors[0], nil
}

// Dimensions returns the embedding dimensionality of the backend model.
func (s *EmbeddingService) Dimensions() int {
	return s.client.Dimensions()
}
