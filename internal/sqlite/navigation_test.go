package sqlite

import (
	"context"
	"testing"

	"github.com/compasshq/compass-mcp/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestNavigationRepository_SetGetFocus(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	insertDecision(t, db, "d1", "tenant1")
	insertNode(t, db, "n1", "d1", "tenant1", nil)
	rootID := "n1"
	insertNode(t, db, "n2", "d1", "tenant1", &rootID)

	repo := NewNavigationRepository(db)

	_, err := repo.GetFocus(ctx, "tenant1", "d1")
	require.Equal(t, repository.ErrNotFound, err)

	err = repo.SetFocus(ctx, "tenant1", "d1", "n1")
	require.NoError(t, err)

	focus, err := repo.GetFocus(ctx, "tenant1", "d1")
	require.NoError(t, err)
	require.Equal(t, "n1", focus)

	// Re-pointing replaces, never appends
	err = repo.SetFocus(ctx, "tenant1", "d1", "n2")
	require.NoError(t, err)

	focus, err = repo.GetFocus(ctx, "tenant1", "d1")
	require.NoError(t, err)
	require.Equal(t, "n2", focus)
}

func TestNavigationRepository_UnknownNode(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	insertDecision(t, db, "d1", "tenant1")

	repo := NewNavigationRepository(db)
	err := repo.SetFocus(ctx, "tenant1", "d1", "missing")
	require.Equal(t, repository.ErrForeignKeyViolation, err)
}
