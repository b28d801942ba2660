package domain

import "time"

// DocumentState represents the lifecycle state of an ingested document
type DocumentState string

const (
	DocumentStateUninitialized DocumentState = "uninitialized"
	DocumentStateIngesting     DocumentState = "ingesting"
	DocumentStateReady         DocumentState = "ready"
	DocumentStateFailed        DocumentState = "failed"
)

// Document represents one ingestible document and its lifecycle state
type Document struct {
	ID         string
	State      DocumentState
	FailReason string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Chunk is the retrieval unit: a contiguous span of a document's text
// together with its embedding. Chunks are immutable once created.
type Chunk struct {
	DocumentID string
	Index      int
	Content    string
	// StartOffset and EndOffset are rune offsets into the source text,
	// kept for citation back into the original document.
	StartOffset int
	EndOffset   int
	Embedding   []float32
}

// ScoredChunk is a chunk paired with its similarity score against a query.
type ScoredChunk struct {
	Chunk *Chunk
	Score float32
}

// Source is a cited chunk in an answer, with a shortened snippet.
type Source struct {
	Snippet    string
	Score      float32
	ChunkIndex int
}

// AnswerRecord is the result of a grounded answer request.
type AnswerRecord struct {
	DocumentID string
	Query      string
	Answer     string
	Sources    []Source
	UsedTopK   int
	Model      string
	Params     QueryParams
	Duration   time.Duration
}
