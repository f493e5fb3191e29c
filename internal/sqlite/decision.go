package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/compasshq/compass-mcp/internal/domain/decision"
	"github.com/compasshq/compass-mcp/internal/repository"
)

// DecisionRepository implements decision.DecisionRepository for SQLite
type DecisionRepository struct {
	db *DB
}

// NewDecisionRepository creates a new DecisionRepository
func NewDecisionRepository(db *DB) *DecisionRepository {
	return &DecisionRepository{db: db}
}

// Create creates a new decision
func (r *DecisionRepository) Create(ctx context.Context, tenantID string, dec *decision.Decision) error {
	query := `
		INSERT INTO decisions (
			id, tenant_id, title, situation_text, situation_type,
			status, tick, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		dec.ID,
		tenantID,
		dec.Title,
		dec.SituationText,
		dec.SituationType,
		dec.Status,
		dec.Tick,
		dec.CreatedAt,
		dec.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create decision: %w", err)
	}

	return nil
}

// Get retrieves a decision by ID
func (r *DecisionRepository) Get(ctx context.Context, tenantID, id string) (*decision.Decision, error) {
	query := `
		SELECT id, tenant_id, title, situation_text, situation_type,
		       status, tick, created_at, updated_at
		FROM decisions
		WHERE id = ? AND tenant_id = ?
	`

	var dec decision.Decision
	err := r.db.QueryRowContext(ctx, query, id, tenantID).Scan(
		&dec.ID,
		&dec.TenantID,
		&dec.Title,
		&dec.SituationText,
		&dec.SituationType,
		&dec.Status,
		&dec.Tick,
		&dec.CreatedAt,
		&dec.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get decision: %w", err)
	}

	return &dec, nil
}

// List returns decisions for a tenant with node counts
func (r *DecisionRepository) List(ctx context.Context, tenantID string, opts decision.ListDecisionsOptions) ([]decision.Summary, error) {
	query := `
		SELECT
			d.id,
			d.title,
			d.situation_type,
			d.status,
			d.updated_at,
			COUNT(n.id) as node_count
		FROM decisions d
		LEFT JOIN nodes n ON n.decision_id = d.id AND n.tenant_id = d.tenant_id
		WHERE d.tenant_id = ?
	`

	args := []interface{}{tenantID}
	conditions := []string{}

	if len(opts.Statuses) > 0 {
		placeholders := make([]string, len(opts.Statuses))
		for i, status := range opts.Statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		conditions = append(conditions, fmt.Sprintf("d.status IN (%s)", strings.Join(placeholders, ",")))
	}

	if len(opts.Types) > 0 {
		placeholders := make([]string, len(opts.Types))
		for i, typ := range opts.Types {
			placeholders[i] = "?"
			args = append(args, typ)
		}
		conditions = append(conditions, fmt.Sprintf("d.situation_type IN (%s)", strings.Join(placeholders, ",")))
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	query += " GROUP BY d.id, d.title, d.situation_type, d.status, d.updated_at"
	query += " ORDER BY d.updated_at DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	if opts.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list decisions: %w", err)
	}
	defer rows.Close()

	var summaries []decision.Summary
	for rows.Next() {
		var summary decision.Summary
		err := rows.Scan(
			&summary.ID,
			&summary.Title,
			&summary.SituationType,
			&summary.Status,
			&summary.UpdatedAt,
			&summary.NodeCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan decision summary: %w", err)
		}
		summaries = append(summaries, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decision rows: %w", err)
	}

	return summaries, nil
}

// UpdateStatus changes a decision's lifecycle status
func (r *DecisionRepository) UpdateStatus(ctx context.Context, tenantID, id string, status decision.Status) error {
	query := `
		UPDATE decisions
		SET status = ?, updated_at = ?
		WHERE id = ? AND tenant_id = ?
	`

	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to update decision status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete deletes a decision
func (r *DecisionRepository) Delete(ctx context.Context, tenantID, id string) error {
	query := `DELETE FROM decisions WHERE id = ? AND tenant_id = ?`

	result, err := r.db.ExecContext(ctx, query, id, tenantID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to delete decision: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// IncrementTick atomically increments the decision tick and returns the new value
func (r *DecisionRepository) IncrementTick(ctx context.Context, tenantID, decisionID string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	updateQuery := `
		UPDATE decisions
		SET tick = tick + 1, updated_at = ?
		WHERE id = ? AND tenant_id = ?
	`

	result, err := tx.ExecContext(ctx, updateQuery, time.Now(), decisionID, tenantID)
	if err != nil {
		return 0, fmt.Errorf("failed to increment tick: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return 0, repository.ErrNotFound
	}

	selectQuery := `
		SELECT tick
		FROM decisions
		WHERE id = ? AND tenant_id = ?
	`

	var newTick int64
	err = tx.QueryRowContext(ctx, selectQuery, decisionID, tenantID).Scan(&newTick)
	if err != nil {
		return 0, fmt.Errorf("failed to get new tick: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return newTick, nil
}
