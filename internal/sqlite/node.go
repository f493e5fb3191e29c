package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/compasshq/compass-mcp/internal/domain/decision"
	"github.com/compasshq/compass-mcp/internal/repository"
)

// NodeRepository implements decision.NodeRepository for SQLite
type NodeRepository struct {
	db *DB
}

// NewNodeRepository creates a new NodeRepository
func NewNodeRepository(db *DB) *NodeRepository {
	return &NodeRepository{db: db}
}

// nodePayload is the JSON document stored in the payload column. Exactly
// one key is set, matching the phase column.
type nodePayload struct {
	Clarify *decision.ClarifyState `json:"clarify,omitempty"`
	Moves   *decision.MovesState   `json:"moves,omitempty"`
	Execute *decision.ExecuteState `json:"execute,omitempty"`
}

func marshalPayload(node *decision.Node) (string, error) {
	data, err := json.Marshal(nodePayload{
		Clarify: node.Clarify,
		Moves:   node.Moves,
		Execute: node.Execute,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal node payload: %w", err)
	}
	return string(data), nil
}

func unmarshalPayload(data string, node *decision.Node) error {
	var payload nodePayload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal node payload: %w", err)
	}
	node.Clarify = payload.Clarify
	node.Moves = payload.Moves
	node.Execute = payload.Execute
	return nil
}

// Create creates a new node
func (r *NodeRepository) Create(ctx context.Context, tenantID string, node *decision.Node) error {
	payload, err := marshalPayload(node)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO nodes (
			id, tenant_id, decision_id, parent_id, phase,
			branch_reason, branch_details, payload, created_at, tick
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		node.ID,
		tenantID,
		node.DecisionID,
		node.ParentID,
		node.Phase,
		node.BranchReason,
		node.BranchDetails,
		payload,
		node.CreatedAt,
		node.Tick,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create node: %w", err)
	}

	return nil
}

// Get retrieves a node by ID
func (r *NodeRepository) Get(ctx context.Context, tenantID, id string) (*decision.Node, error) {
	query := `
		SELECT id, decision_id, parent_id, phase,
		       branch_reason, branch_details, payload, created_at, tick
		FROM nodes
		WHERE id = ? AND tenant_id = ?
	`

	var node decision.Node
	var payload string
	err := r.db.QueryRowContext(ctx, query, id, tenantID).Scan(
		&node.ID,
		&node.DecisionID,
		&node.ParentID,
		&node.Phase,
		&node.BranchReason,
		&node.BranchDetails,
		&payload,
		&node.CreatedAt,
		&node.Tick,
	)

	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get node: %w", err)
	}

	if err := unmarshalPayload(payload, &node); err != nil {
		return nil, err
	}

	return &node, nil
}

// Update updates a node with optimistic concurrency control. The tick
// check runs against the stored row; a mismatch means another writer got
// there first.
func (r *NodeRepository) Update(ctx context.Context, tenantID string, node *decision.Node, expectedTick int64) error {
	payload, err := marshalPayload(node)
	if err != nil {
		return err
	}

	query := `
		UPDATE nodes
		SET phase = ?, payload = ?, tick = ?
		WHERE id = ? AND tenant_id = ? AND tick = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		node.Phase,
		payload,
		node.Tick,
		node.ID,
		tenantID,
		expectedTick,
	)

	if err != nil {
		return fmt.Errorf("failed to update node: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		var exists bool
		checkQuery := `SELECT EXISTS(SELECT 1 FROM nodes WHERE id = ? AND tenant_id = ?)`
		err = r.db.QueryRowContext(ctx, checkQuery, node.ID, tenantID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check node existence: %w", err)
		}

		if !exists {
			return repository.ErrNotFound
		}

		return repository.ErrConflict
	}

	return nil
}

// ListByDecision returns all nodes of a decision, oldest first
func (r *NodeRepository) ListByDecision(ctx context.Context, tenantID, decisionID string) ([]decision.Node, error) {
	query := `
		SELECT id, decision_id, parent_id, phase,
		       branch_reason, branch_details, payload, created_at, tick
		FROM nodes
		WHERE decision_id = ? AND tenant_id = ?
		ORDER BY created_at ASC, tick ASC
	`

	rows, err := r.db.QueryContext(ctx, query, decisionID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	defer rows.Close()

	var nodes []decision.Node
	for rows.Next() {
		var node decision.Node
		var payload string
		err := rows.Scan(
			&node.ID,
			&node.DecisionID,
			&node.ParentID,
			&node.Phase,
			&node.BranchReason,
			&node.BranchDetails,
			&payload,
			&node.CreatedAt,
			&node.Tick,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		if err := unmarshalPayload(payload, &node); err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating node rows: %w", err)
	}

	return nodes, nil
}

// GetChildrenRefs returns all direct children of a node as lightweight references
func (r *NodeRepository) GetChildrenRefs(ctx context.Context, tenantID, parentID string) ([]decision.NodeRef, error) {
	query := `
		SELECT
			n.id, n.decision_id, n.parent_id, n.phase, n.created_at,
			COUNT(c.id) as children_count
		FROM nodes n
		LEFT JOIN nodes c ON c.parent_id = n.id AND c.tenant_id = n.tenant_id
		WHERE n.parent_id = ? AND n.tenant_id = ?
		GROUP BY n.id, n.decision_id, n.parent_id, n.phase, n.created_at
		ORDER BY n.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, parentID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get children refs: %w", err)
	}
	defer rows.Close()

	var refs []decision.NodeRef
	for rows.Next() {
		var ref decision.NodeRef
		err := rows.Scan(
			&ref.ID,
			&ref.DecisionID,
			&ref.ParentID,
			&ref.Phase,
			&ref.CreatedAt,
			&ref.ChildrenCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan node ref: %w", err)
		}
		refs = append(refs, ref)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating node ref rows: %w", err)
	}

	return refs, nil
}
