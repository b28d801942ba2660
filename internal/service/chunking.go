package service

import (
	"strings"
	"unicode"

	"github.com/veridoc-ai/veridoc/internal/domain"
)

// ChunkConfig controls text segmentation for retrieval indexing.
type ChunkConfig struct {
	// MaxChunkLen is the maximum chunk length in runes.
	MaxChunkLen int
	// OverlapLen is how many runes of the previous chunk are repeated
	// at the start of the next one, so that content near a boundary is
	// retrievable from either side. Must be smaller than MaxChunkLen.
	OverlapLen int
}

// DefaultChunkConfig provides sane defaults for chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxChunkLen: 700,
		OverlapLen:  120,
	}
}

// Validate checks the chunking parameters.
func (c ChunkConfig) Validate() error {
	if c.MaxChunkLen <= 0 {
		return domain.NewDomainError(domain.ErrCodeValidation, "max chunk length must be positive")
	}
	if c.OverlapLen < 0 {
		return domain.NewDomainError(domain.ErrCodeValidation, "overlap length must not be negative")
	}
	if c.OverlapLen >= c.MaxChunkLen {
		return domain.NewDomainError(domain.ErrCodeValidation, "overlap length must be smaller than max chunk length")
	}
	return nil
}

// ChunkCandidate is a chunk before embedding: a text span plus its rune
// offsets into the source text.
type ChunkCandidate struct {
	Content     string
	StartOffset int
	EndOffset   int
}

// SplitText segments text into overlapping chunks. Boundaries prefer
// whitespace; when a window contains no whitespace the cut is hard at
// MaxChunkLen. Whitespace-only input yields zero chunks; callers treat
// that as "no extractable content". Pure function of its inputs.
func SplitText(text string, cfg ChunkConfig) ([]ChunkCandidate, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	runes := []rune(text)
	if len(runes) <= cfg.MaxChunkLen {
		return []ChunkCandidate{{Content: text, StartOffset: 0, EndOffset: len(runes)}}, nil
	}

	chunks := make([]ChunkCandidate, 0, len(runes)/cfg.MaxChunkLen+1)
	start := 0
	for start < len(runes) {
		end := start + cfg.MaxChunkLen
		if end > len(runes) {
			end = len(runes)
		}

		// Only back-scan for whitespace when the cut would split a word.
		if end < len(runes) && !unicode.IsSpace(runes[end]) && !unicode.IsSpace(runes[end-1]) {
			for i := end - 1; i > start; i-- {
				if unicode.IsSpace(runes[i]) {
					end = i + 1
					break
				}
			}
		}

		chunks = append(chunks, ChunkCandidate{
			Content:     string(runes[start:end]),
			StartOffset: start,
			EndOffset:   end,
		})

		if end >= len(runes) {
			break
		}

		next := end - cfg.OverlapLen
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks, nil
}
