//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridoc-ai/veridoc/internal/domain"
	"github.com/veridoc-ai/veridoc/internal/service"
	"github.com/veridoc-ai/veridoc/internal/testutil"
)

func TestAnswerLogRepository_CreateAndList(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewAnswerLogRepository(pool)

	entry := service.AnswerLogEntry{
		DocumentID:     "doc-1",
		Query:          "How did revenue change?",
		QueryEmbedding: []float32{0.1, 0.2, 0.3},
		Answer:         "Revenue grew 12% [S1].",
		Sources: []domain.Source{
			{Snippet: "revenue grew 12%", Score: 0.93, ChunkIndex: 4},
		},
		UsedTopK:   3,
		Model:      "gpt-4o-mini",
		DurationMs: 850,
	}

	id, err := repo.CreateAnswerLog(ctx, entry)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	rows, err := repo.ListByDocument(ctx, "doc-1", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, id, row.ID)
	assert.Equal(t, "doc-1", row.DocumentID)
	assert.Equal(t, "How did revenue change?", row.Query)
	assert.Equal(t, "Revenue grew 12% [S1].", row.Answer)
	assert.Equal(t, 3, row.UsedTopK)
	assert.Equal(t, "gpt-4o-mini", row.Model)
	assert.Equal(t, int64(850), row.DurationMs)
	require.Len(t, row.Sources, 1)
	assert.Equal(t, 4, row.Sources[0].ChunkIndex)
	assert.False(t, row.CreatedAt.IsZero())
}

func TestAnswerLogRepository_CreateWithoutEmbedding(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewAnswerLogRepository(pool)

	id, err := repo.CreateAnswerLog(ctx, service.AnswerLogEntry{
		DocumentID: "doc-2",
		Query:      "q",
		Answer:     "a",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestAnswerLogRepository_ListByDocument_ScopedAndOrdered(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewAnswerLogRepository(pool)

	for i := 0; i < 3; i++ {
		_, err := repo.CreateAnswerLog(ctx, service.AnswerLogEntry{
			DocumentID: "doc-a",
			Query:      "q",
			Answer:     "a",
		})
		require.NoError(t, err)
	}
	_, err := repo.CreateAnswerLog(ctx, service.AnswerLogEntry{
		DocumentID: "doc-b",
		Query:      "q",
		Answer:     "a",
	})
	require.NoError(t, err)

	rows, err := repo.ListByDocument(ctx, "doc-a", 2)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, "doc-a", row.DocumentID)
	}
}
