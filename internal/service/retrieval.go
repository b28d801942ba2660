package service

import (
	"math"
	"sort"

	"github.com/veridoc-ai/veridoc/internal/domain"
	"github.com/veridoc-ai/veridoc/internal/index"
)

// Retriever ranks a document's chunks against a query vector. The
// interface exists so a smarter nearest-neighbor structure can replace
// the linear scan without touching callers.
type Retriever interface {
	Retrieve(snapshot *index.Snapshot, queryVector []float32, topK int) ([]domain.ScoredChunk, error)
}

// CosineRetriever scores chunks by cosine similarity with a brute-force
// scan. A single document's chunk count is bounded by practical
// document sizes, so the scan is cheap at this scale.
type CosineRetriever struct{}

func NewCosineRetriever() *CosineRetriever {
	return &CosineRetriever{}
}

// Retrieve returns the topK highest-scoring chunks in descending score
// order; equal scores keep ascending original chunk position. topK=0 is
// a valid request for an empty result, and topK beyond the chunk count
// returns every chunk.
func (r *CosineRetriever) Retrieve(snapshot *index.Snapshot, queryVector []float32, topK int) ([]domain.ScoredChunk, error) {
	if snapshot == nil {
		return nil, domain.ErrDocumentNotFound
	}
	if topK < 0 {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "top_k must not be negative")
	}
	if len(queryVector) != snapshot.Dimensions {
		return nil, domain.ErrDimensionMismatch
	}
	if topK == 0 {
		return []domain.ScoredChunk{}, nil
	}

	scored := make([]domain.ScoredChunk, 0, len(snapshot.Chunks))
	for _, c := range snapshot.Chunks {
		scored = append(scored, domain.ScoredChunk{
			Chunk: c,
			Score: CosineSimilarity(queryVector, c.Embedding),
		})
	}

	// Stable sort: chunks arrive in original text order, so ties keep
	// the lower position first.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK], nil
}

// CosineSimilarity computes dot(a,b) / (norm(a) * norm(b)). A zero-norm
// operand yields 0, never NaN.
func CosineSimilarity(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
