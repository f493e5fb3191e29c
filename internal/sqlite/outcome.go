package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/compasshq/compass-mcp/internal/domain/outcome"
	"github.com/compasshq/compass-mcp/internal/repository"
)

// OutcomeRepository implements outcome.Repository for SQLite
type OutcomeRepository struct {
	db *DB
}

// NewOutcomeRepository creates a new OutcomeRepository
func NewOutcomeRepository(db *DB) *OutcomeRepository {
	return &OutcomeRepository{db: db}
}

// Create inserts an outcome. The node_id unique constraint enforces at
// most one outcome per node at the storage level.
func (r *OutcomeRepository) Create(ctx context.Context, tenantID string, out *outcome.Outcome) error {
	query := `
		INSERT INTO outcomes (
			id, tenant_id, node_id, progress_yes_no,
			sentiment_2h, sentiment_24h, notes,
			predicted_prob, brier_score, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		out.ID,
		tenantID,
		out.NodeID,
		out.ProgressYesNo,
		out.Sentiment2h,
		out.Sentiment24h,
		out.Notes,
		out.PredictedProb,
		out.BrierScore,
		out.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create outcome: %w", err)
	}

	return nil
}

// GetByNode retrieves the outcome for a node
func (r *OutcomeRepository) GetByNode(ctx context.Context, tenantID, nodeID string) (*outcome.Outcome, error) {
	query := `
		SELECT id, node_id, progress_yes_no,
		       sentiment_2h, sentiment_24h, notes,
		       predicted_prob, brier_score, created_at
		FROM outcomes
		WHERE node_id = ? AND tenant_id = ?
	`

	var out outcome.Outcome
	err := r.db.QueryRowContext(ctx, query, nodeID, tenantID).Scan(
		&out.ID,
		&out.NodeID,
		&out.ProgressYesNo,
		&out.Sentiment2h,
		&out.Sentiment24h,
		&out.Notes,
		&out.PredictedProb,
		&out.BrierScore,
		&out.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get outcome: %w", err)
	}

	return &out, nil
}
