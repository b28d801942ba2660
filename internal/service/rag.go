package service

import (
	"context"
	"log"
	"time"

	"github.com/veridoc-ai/veridoc/internal/domain"
	"github.com/veridoc-ai/veridoc/internal/index"
	"github.com/veridoc-ai/veridoc/internal/telemetry"
)

// DocumentArchiver stores the raw ingested text of a document. Archive
// failures never fail an ingest; the committed index, not the archive,
// is the source of truth.
type DocumentArchiver interface {
	ArchiveDocument(ctx context.Context, documentID, text string) error
}

// AnswerLogEntry is one completed answer, recorded for offline
// evaluation. Retrieval never reads these back.
type AnswerLogEntry struct {
	DocumentID     string
	Query          string
	QueryEmbedding []float32
	Answer         string
	Sources        []domain.Source
	UsedTopK       int
	Model          string
	DurationMs     int64
}

// AnswerLogRepository persists answer logs.
type AnswerLogRepository interface {
	CreateAnswerLog(ctx context.Context, entry AnswerLogEntry) (string, error)
}

// IngestResult reports a successful ingestion.
type IngestResult struct {
	DocumentID string
	ChunkCount int
}

// RAGService coordinates the retrieval-augmented answering pipeline.
// Ingest and Answer are its only public operations.
type RAGService struct {
	chunkCfg      ChunkConfig
	maxContextLen int
	embedding     *EmbeddingService
	registry      *index.Registry
	retriever     Retriever
	generator     *AnswerGenerator
	archive       DocumentArchiver
	logRepo       AnswerLogRepository
}

// NewRAGService creates a RAGService without optional collaborators.
func NewRAGService(embedding *EmbeddingService, registry *index.Registry, retriever Retriever, generator *AnswerGenerator) *RAGService {
	return NewRAGServiceWithCollaborators(embedding, registry, retriever, generator, nil, nil)
}

// NewRAGServiceWithCollaborators creates a RAGService with an optional
// raw-document archive and answer log; either may be nil.
func NewRAGServiceWithCollaborators(
	embedding *EmbeddingService,
	registry *index.Registry,
	retriever Retriever,
	generator *AnswerGenerator,
	archive DocumentArchiver,
	logRepo AnswerLogRepository,
) *RAGService {
	return &RAGService{
		chunkCfg:      DefaultChunkConfig(),
		maxContextLen: DefaultMaxContextLen,
		embedding:     embedding,
		registry:      registry,
		retriever:     retriever,
		generator:     generator,
		archive:       archive,
		logRepo:       logRepo,
	}
}

// SetChunkConfig overrides the chunking parameters for subsequent ingests.
func (s *RAGService) SetChunkConfig(cfg ChunkConfig) {
	s.chunkCfg = cfg
}

// Ingest splits text, embeds the chunks, and commits the document's
// index. Any failure at any stage marks the document Failed with the
// failure reason; no partial index is ever visible to queries.
func (s *RAGService) Ingest(ctx context.Context, documentID, text string) (*IngestResult, error) {
	if documentID == "" {
		return nil, domain.ErrEmptyDocumentID
	}

	ctx, span := telemetry.StartSpan(ctx, "RAGService.Ingest", telemetry.SpanAttributes{
		DocumentID: documentID,
		Operation:  "ingest",
	})
	defer span.End()

	token, err := s.registry.Create(documentID)
	if err != nil {
		return nil, err
	}

	candidates, err := SplitText(text, s.chunkCfg)
	if err != nil {
		return nil, s.failIngest(documentID, token, err)
	}
	if len(candidates) == 0 {
		return nil, s.failIngest(documentID, token, domain.ErrNoExtractableContent)
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Content
	}

	vectors, err := s.embedding.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, s.failIngest(documentID, token,
			domain.NewDomainErrorWithCause(domain.ErrCodeIngestion, "embedding backend failed", err))
	}

	chunks := make([]*domain.Chunk, len(candidates))
	for i, c := range candidates {
		chunks[i] = &domain.Chunk{
			DocumentID:  documentID,
			Index:       i,
			Content:     c.Content,
			StartOffset: c.StartOffset,
			EndOffset:   c.EndOffset,
			Embedding:   vectors[i],
		}
	}

	if _, err := s.registry.Commit(documentID, token, chunks); err != nil {
		return nil, s.failIngest(documentID, token, err)
	}

	if s.archive != nil {
		if err := s.archive.ArchiveDocument(ctx, documentID, text); err != nil {
			log.Printf("failed to archive document %s: %v", documentID, err)
		}
	}

	return &IngestResult{DocumentID: documentID, ChunkCount: len(chunks)}, nil
}

// Answer embeds the query, retrieves against the document's committed
// index, assembles a bounded context, and invokes the generation
// service. The document must be Ready.
func (s *RAGService) Answer(ctx context.Context, documentID, query string, params domain.QueryParams) (*domain.AnswerRecord, error) {
	if documentID == "" {
		return nil, domain.ErrEmptyDocumentID
	}
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	params = params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "RAGService.Answer", telemetry.SpanAttributes{
		DocumentID: documentID,
		Operation:  "answer",
	})
	defer span.End()

	snapshot, err := s.registry.Get(documentID)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	queryVector, err := s.embedding.EmbedQuery(ctx, query)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeRetrieval, "failed to embed query", err)
	}

	results, err := s.retriever.Retrieve(snapshot, queryVector, params.K())
	if err != nil {
		return nil, err
	}

	assembled := AssembleContext(results, s.maxContextLen)

	answer, err := s.generator.Generate(ctx, query, assembled, params)
	if err != nil {
		return nil, err
	}

	record := &domain.AnswerRecord{
		DocumentID: documentID,
		Query:      query,
		Answer:     answer,
		Sources:    assembled.Citations,
		UsedTopK:   params.K(),
		Model:      s.generator.Model(),
		Params:     params,
		Duration:   time.Since(start),
	}

	// Abandoned queries are never persisted.
	if s.logRepo != nil && ctx.Err() == nil {
		entry := AnswerLogEntry{
			DocumentID:     documentID,
			Query:          query,
			QueryEmbedding: queryVector,
			Answer:         answer,
			Sources:        record.Sources,
			UsedTopK:       record.UsedTopK,
			Model:          record.Model,
			DurationMs:     record.Duration.Milliseconds(),
		}
		if _, err := s.logRepo.CreateAnswerLog(ctx, entry); err != nil {
			log.Printf("failed to record answer log for document %s: %v", documentID, err)
		}
	}

	return record, nil
}

// Describe reports the lifecycle state of a document.
func (s *RAGService) Describe(documentID string) (domain.Document, error) {
	return s.registry.Describe(documentID)
}

func (s *RAGService) failIngest(documentID, token string, cause error) error {
	if err := s.registry.Fail(documentID, token, cause.Error()); err != nil {
		log.Printf("failed to mark document %s failed: %v", documentID, err)
	}
	return cause
}
