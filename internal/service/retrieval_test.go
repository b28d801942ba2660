package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridoc-ai/veridoc/internal/domain"
	"github.com/veridoc-ai/veridoc/internal/index"
)

func testSnapshot(vectors ...[]float32) *index.Snapshot {
	chunks := make([]*domain.Chunk, len(vectors))
	for i, v := range vectors {
		chunks[i] = &domain.Chunk{
			DocumentID: "doc-1",
			Index:      i,
			Content:    "chunk",
			Embedding:  v,
		}
	}
	dims := 0
	if len(vectors) > 0 {
		dims = len(vectors[0])
	}
	return &index.Snapshot{
		DocumentID:  "doc-1",
		Chunks:      chunks,
		Dimensions:  dims,
		CommittedAt: time.Now(),
	}
}

func TestCosineSimilarity_Identical(t *testing.T) {
	v := []float32{0.5, 0.25, 0.8}
	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-6)
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{0, 1, 0}
	assert.InDelta(t, 0.0, CosineSimilarity(a, b), 1e-6)
}

func TestCosineSimilarity_Symmetric(t *testing.T) {
	a := []float32{0.3, 0.7, 0.1}
	b := []float32{0.9, 0.2, 0.4}
	assert.InDelta(t, CosineSimilarity(a, b), CosineSimilarity(b, a), 1e-6)
}

func TestCosineSimilarity_ZeroVectorIsZeroNotNaN(t *testing.T) {
	a := []float32{0, 0, 0}
	b := []float32{1, 2, 3}
	assert.Equal(t, float32(0), CosineSimilarity(a, b))
	assert.Equal(t, float32(0), CosineSimilarity(b, a))
}

func TestCosineRetriever_Retrieve_RanksByDescendingScore(t *testing.T) {
	snap := testSnapshot(
		[]float32{0, 1, 0},  // orthogonal to query
		[]float32{1, 0, 0},  // exact match
		[]float32{1, 1, 0},  // partial match
	)
	r := NewCosineRetriever()

	results, err := r.Retrieve(snap, []float32{1, 0, 0}, 3)

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, 1, results[0].Chunk.Index)
	assert.Equal(t, 2, results[1].Chunk.Index)
	assert.Equal(t, 0, results[2].Chunk.Index)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	assert.GreaterOrEqual(t, results[1].Score, results[2].Score)
}

func TestCosineRetriever_Retrieve_TieBreakKeepsChunkOrder(t *testing.T) {
	v := []float32{1, 0, 0}
	snap := testSnapshot(v, v, v)
	r := NewCosineRetriever()

	results, err := r.Retrieve(snap, v, 3)

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, 0, results[0].Chunk.Index)
	assert.Equal(t, 1, results[1].Chunk.Index)
	assert.Equal(t, 2, results[2].Chunk.Index)
}

func TestCosineRetriever_Retrieve_TopKZeroIsEmpty(t *testing.T) {
	snap := testSnapshot([]float32{1, 0, 0})
	r := NewCosineRetriever()

	results, err := r.Retrieve(snap, []float32{1, 0, 0}, 0)

	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestCosineRetriever_Retrieve_TopKBeyondChunkCount(t *testing.T) {
	snap := testSnapshot([]float32{1, 0, 0}, []float32{0, 1, 0})
	r := NewCosineRetriever()

	results, err := r.Retrieve(snap, []float32{1, 0, 0}, 50)

	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestCosineRetriever_Retrieve_NegativeTopK(t *testing.T) {
	snap := testSnapshot([]float32{1, 0, 0})
	r := NewCosineRetriever()

	_, err := r.Retrieve(snap, []float32{1, 0, 0}, -1)

	assert.True(t, domain.IsCode(err, domain.ErrCodeValidation))
}

func TestCosineRetriever_Retrieve_DimensionMismatch(t *testing.T) {
	snap := testSnapshot([]float32{1, 0, 0})
	r := NewCosineRetriever()

	_, err := r.Retrieve(snap, []float32{1, 0}, 1)

	assert.Equal(t, domain.ErrDimensionMismatch, err)
}

func TestCosineRetriever_Retrieve_NilSnapshot(t *testing.T) {
	r := NewCosineRetriever()

	_, err := r.Retrieve(nil, []float32{1, 0, 0}, 1)

	assert.Equal(t, domain.ErrDocumentNotFound, err)
}
