package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridoc-ai/veridoc/internal/domain"
)

func scoredChunk(index int, content string, score float32) domain.ScoredChunk {
	return domain.ScoredChunk{
		Chunk: &domain.Chunk{DocumentID: "doc-1", Index: index, Content: content},
		Score: score,
	}
}

func TestAssembleContext_EmptyResultsUseMarker(t *testing.T) {
	assembled := AssembleContext(nil, DefaultMaxContextLen)

	assert.True(t, assembled.Empty)
	assert.Equal(t, NoContextMarker, assembled.Text)
	assert.Empty(t, assembled.Citations)
}

func TestAssembleContext_OrderAndMarkers(t *testing.T) {
	results := []domain.ScoredChunk{
		scoredChunk(4, "top ranked text", 0.95),
		scoredChunk(1, "second ranked text", 0.80),
	}

	assembled := AssembleContext(results, DefaultMaxContextLen)

	assert.False(t, assembled.Empty)
	assert.Contains(t, assembled.Text, "[S1] (chunk 4) top ranked text")
	assert.Contains(t, assembled.Text, "[S2] (chunk 1) second ranked text")
	assert.Less(t,
		strings.Index(assembled.Text, "[S1]"),
		strings.Index(assembled.Text, "[S2]"))

	require.Len(t, assembled.Citations, 2)
	assert.Equal(t, 4, assembled.Citations[0].ChunkIndex)
	assert.Equal(t, float32(0.95), assembled.Citations[0].Score)
	assert.Equal(t, 1, assembled.Citations[1].ChunkIndex)
}

func TestAssembleContext_DropsLowestRankedOverBudget(t *testing.T) {
	results := []domain.ScoredChunk{
		scoredChunk(0, strings.Repeat("a", 50), 0.9),
		scoredChunk(1, strings.Repeat("b", 50), 0.8),
		scoredChunk(2, strings.Repeat("c", 50), 0.7),
	}

	// Budget fits the first two blocks but not the third.
	assembled := AssembleContext(results, 150)

	assert.Contains(t, assembled.Text, "aaa")
	assert.Contains(t, assembled.Text, "bbb")
	assert.NotContains(t, assembled.Text, "ccc")
	assert.Len(t, assembled.Citations, 2)
	assert.LessOrEqual(t, len([]rune(assembled.Text)), 150)
}

func TestAssembleContext_TopMatchAloneTruncatedNotDropped(t *testing.T) {
	results := []domain.ScoredChunk{
		scoredChunk(0, strings.Repeat("x", 500), 0.9),
	}

	assembled := AssembleContext(results, 100)

	assert.False(t, assembled.Empty)
	assert.Equal(t, 100, len([]rune(assembled.Text)))
	require.Len(t, assembled.Citations, 1)
	assert.Equal(t, 0, assembled.Citations[0].ChunkIndex)
}

func TestAssembleContext_SnippetsCapped(t *testing.T) {
	long := strings.Repeat("word ", 200)
	results := []domain.ScoredChunk{scoredChunk(0, long, 0.9)}

	assembled := AssembleContext(results, 10000)

	require.Len(t, assembled.Citations, 1)
	assert.LessOrEqual(t, len([]rune(assembled.Citations[0].Snippet)), 300)
}

func TestShrink(t *testing.T) {
	assert.Equal(t, "abc", Shrink("  abc  ", 10))
	assert.Equal(t, "abcde", Shrink("abcdefgh", 5))
	assert.Equal(t, "line one\nline two", Shrink("line one\r\nline two\r\n", 50))
	assert.Equal(t, "日本語", Shrink("日本語のテキスト", 3))
}
