package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/veridoc-ai/veridoc/internal/domain"
	"github.com/veridoc-ai/veridoc/internal/service"
)

// AnswerLogRepository stores completed answers for offline evaluation.
// Retrieval never reads this table; it is a write-mostly audit log.
type AnswerLogRepository struct {
	pool *pgxpool.Pool
}

func NewAnswerLogRepository(pool *pgxpool.Pool) *AnswerLogRepository {
	return &AnswerLogRepository{pool: pool}
}

// CreateAnswerLog inserts one answer record and returns its id.
func (r *AnswerLogRepository) CreateAnswerLog(ctx context.Context, entry service.AnswerLogEntry) (string, error) {
	sourcesJSON, err := json.Marshal(entry.Sources)
	if err != nil {
		return "", err
	}

	var embedding interface{}
	if len(entry.QueryEmbedding) > 0 {
		embedding = pgvector.NewVector(entry.QueryEmbedding)
	}

	var id string
	err = r.pool.QueryRow(ctx,
		`INSERT INTO answer_logs (document_id, query, query_embedding, answer, sources, used_top_k, model, duration_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		entry.DocumentID,
		entry.Query,
		embedding,
		entry.Answer,
		sourcesJSON,
		entry.UsedTopK,
		entry.Model,
		entry.DurationMs,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// AnswerLogRow is one stored answer log.
type AnswerLogRow struct {
	ID         string
	DocumentID string
	Query      string
	Answer     string
	Sources    []domain.Source
	UsedTopK   int
	Model      string
	DurationMs int64
	CreatedAt  time.Time
}

// ListByDocument returns the most recent answer logs for a document.
func (r *AnswerLogRepository) ListByDocument(ctx context.Context, documentID string, limit int) ([]AnswerLogRow, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, document_id, query, answer, sources, used_top_k, model, duration_ms, created_at
		 FROM answer_logs
		 WHERE document_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		documentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AnswerLogRow
	for rows.Next() {
		var row AnswerLogRow
		var sourcesJSON []byte
		if err := rows.Scan(
			&row.ID,
			&row.DocumentID,
			&row.Query,
			&row.Answer,
			&sourcesJSON,
			&row.UsedTopK,
			&row.Model,
			&row.DurationMs,
			&row.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(sourcesJSON) > 0 {
			if err := json.Unmarshal(sourcesJSON, &row.Sources); err != nil {
				return nil, err
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
