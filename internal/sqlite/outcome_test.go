package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/compasshq/compass-mcp/internal/domain/outcome"
	"github.com/compasshq/compass-mcp/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestOutcomeRepository_CreateGet(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	insertDecision(t, db, "d1", "tenant1")
	insertNode(t, db, "n1", "d1", "tenant1", nil)

	repo := NewOutcomeRepository(db)
	sentiment := 1
	prob := 0.7
	brier := 0.09
	out := &outcome.Outcome{
		ID:            "o1",
		NodeID:        "n1",
		ProgressYesNo: true,
		Sentiment2h:   &sentiment,
		Notes:         "went well",
		PredictedProb: &prob,
		BrierScore:    &brier,
		CreatedAt:     time.Now(),
	}

	err := repo.Create(ctx, "tenant1", out)
	require.NoError(t, err)

	loaded, err := repo.GetByNode(ctx, "tenant1", "n1")
	require.NoError(t, err)
	require.True(t, loaded.ProgressYesNo)
	require.Equal(t, 1, *loaded.Sentiment2h)
	require.Nil(t, loaded.Sentiment24h)
	require.InDelta(t, 0.09, *loaded.BrierScore, 1e-9)
}

func TestOutcomeRepository_OnePerNode(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	insertDecision(t, db, "d1", "tenant1")
	insertNode(t, db, "n1", "d1", "tenant1", nil)

	repo := NewOutcomeRepository(db)
	err := repo.Create(ctx, "tenant1", &outcome.Outcome{
		ID:            "o1",
		NodeID:        "n1",
		ProgressYesNo: true,
		CreatedAt:     time.Now(),
	})
	require.NoError(t, err)

	err = repo.Create(ctx, "tenant1", &outcome.Outcome{
		ID:            "o2",
		NodeID:        "n1",
		ProgressYesNo: false,
		CreatedAt:     time.Now(),
	})
	require.Equal(t, repository.ErrConflict, err)
}

func TestOutcomeRepository_NotFound(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	repo := NewOutcomeRepository(db)
	_, err := repo.GetByNode(ctx, "tenant1", "missing")
	require.Equal(t, repository.ErrNotFound, err)
}
