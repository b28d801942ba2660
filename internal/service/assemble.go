package service

import (
	"fmt"
	"strings"

	"github.com/veridoc-ai/veridoc/internal/domain"
)

const (
	// DefaultMaxContextLen bounds the assembled context in runes.
	DefaultMaxContextLen = 2400

	// NoContextMarker is emitted instead of chunk text when retrieval
	// returned nothing, so the generation step can answer accordingly
	// instead of fabricating grounding.
	NoContextMarker = "(no relevant context found)"

	snippetMaxRunes  = 300
	contextSeparator = "\n---\n"
)

// AssembledContext is the packed prompt context plus the citations for
// every chunk that made it in, in the same order.
type AssembledContext struct {
	Text      string
	Citations []domain.Source
	Empty     bool
}

// AssembleContext concatenates chunk texts in retrieval-ranked order,
// each tagged with a stable [S#] marker referencing its original chunk.
// When the cumulative length would exceed maxContextLen, chunks are
// dropped from the lowest-scoring end; the top match is always kept,
// truncated if it alone exceeds the budget.
func AssembleContext(results []domain.ScoredChunk, maxContextLen int) AssembledContext {
	if maxContextLen <= 0 {
		maxContextLen = DefaultMaxContextLen
	}
	if len(results) == 0 {
		return AssembledContext{Text: NoContextMarker, Empty: true}
	}

	var b strings.Builder
	citations := make([]domain.Source, 0, len(results))
	used := 0

	for i, r := range results {
		block := fmt.Sprintf("[S%d] (chunk %d) %s", i+1, r.Chunk.Index, r.Chunk.Content)
		blockLen := len([]rune(block))
		sepLen := 0
		if i > 0 {
			sepLen = len([]rune(contextSeparator))
		}

		if used+sepLen+blockLen > maxContextLen {
			if i > 0 {
				break
			}
			// The top match alone exceeds the budget: truncate, not drop.
			block = string([]rune(block)[:maxContextLen])
		}

		if i > 0 {
			b.WriteString(contextSeparator)
			used += sepLen
		}
		b.WriteString(block)
		used += len([]rune(block))

		citations = append(citations, domain.Source{
			Snippet:    Shrink(r.Chunk.Content, snippetMaxRunes),
			Score:      r.Score,
			ChunkIndex: r.Chunk.Index,
		})
	}

	return AssembledContext{Text: b.String(), Citations: citations}
}

// Shrink trims s and truncates it to at most maxRunes runes.
func Shrink(s string, maxRunes int) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\r", ""))
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}
