package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/compasshq/compass-mcp/internal/domain/event"
)

// EventRepository implements the event log store for SQLite
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// Log inserts a new event entry
func (r *EventRepository) Log(ctx context.Context, tenantID string, entry *event.Entry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO events (
			tenant_id, decision_id, node_id,
			event_type, summary, details, created_at, tick
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		tenantID,
		entry.DecisionID,
		entry.NodeID,
		entry.Type,
		entry.Summary,
		entry.Details,
		createdAt,
		entry.Tick,
	)
	if err != nil {
		return fmt.Errorf("failed to log event: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		entry.ID = id
	}

	entry.TenantID = tenantID
	entry.CreatedAt = createdAt

	return nil
}

// List returns event entries matching the given filters, newest first
func (r *EventRepository) List(ctx context.Context, tenantID string, opts event.ListOptions) ([]event.Entry, error) {
	query := `
		SELECT
			id, tenant_id, decision_id, node_id,
			event_type, summary, details, created_at, tick
		FROM events
		WHERE tenant_id = ?
	`

	args := []interface{}{tenantID}
	conditions := []string{}

	if opts.DecisionID != "" {
		conditions = append(conditions, "decision_id = ?")
		args = append(args, opts.DecisionID)
	}
	if opts.NodeID != nil {
		conditions = append(conditions, "node_id = ?")
		args = append(args, *opts.NodeID)
	}
	if len(opts.Types) > 0 {
		placeholders := make([]string, len(opts.Types))
		for i, typ := range opts.Types {
			placeholders[i] = "?"
			args = append(args, typ)
		}
		conditions = append(conditions, fmt.Sprintf("event_type IN (%s)", strings.Join(placeholders, ",")))
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY id DESC"

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
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var entries []event.Entry
	for rows.Next() {
		var entry event.Entry
		var nodeID sql.NullString
		if err := rows.Scan(
			&entry.ID,
			&entry.TenantID,
			&entry.DecisionID,
			&nodeID,
			&entry.Type,
			&entry.Summary,
			&entry.Details,
			&entry.CreatedAt,
			&entry.Tick,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event entry: %w", err)
		}
		if nodeID.Valid {
			entry.NodeID = &nodeID.String
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return entries, nil
}
