package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/compasshq/compass-mcp/internal/repository"
)

// NavigationRepository implements decision.NavigationRepository for SQLite
type NavigationRepository struct {
	db *DB
}

// NewNavigationRepository creates a new NavigationRepository
func NewNavigationRepository(db *DB) *NavigationRepository {
	return &NavigationRepository{db: db}
}

// SetFocus records the focused node for a decision, replacing any
// previous pointer
func (r *NavigationRepository) SetFocus(ctx context.Context, tenantID, decisionID, nodeID string) error {
	query := `
		INSERT INTO navigation (tenant_id, decision_id, node_id, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(tenant_id, decision_id)
		DO UPDATE SET node_id = excluded.node_id, updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, tenantID, decisionID, nodeID, time.Now())
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to set focus: %w", err)
	}

	return nil
}

// GetFocus returns the focused node ID for a decision
func (r *NavigationRepository) GetFocus(ctx context.Context, tenantID, decisionID string) (string, error) {
	query := `
		SELECT node_id
		FROM navigation
		WHERE tenant_id = ? AND decision_id = ?
	`

	var nodeID string
	err := r.db.QueryRowContext(ctx, query, tenantID, decisionID).Scan(&nodeID)

	if err == sql.ErrNoRows {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get focus: %w", err)
	}

	return nodeID, nil
}
