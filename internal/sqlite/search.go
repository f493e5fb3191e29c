package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/compasshq/compass-mcp/internal/domain/decision"
)

// SearchRepository implements full-text decision search for SQLite
type SearchRepository struct {
	db *DB
}

// NewSearchRepository creates a new SearchRepository
func NewSearchRepository(db *DB) *SearchRepository {
	return &SearchRepository{db: db}
}

// Search performs a full-text search over decision titles and situations
func (r *SearchRepository) Search(ctx context.Context, tenantID, query string, opts decision.SearchOptions) ([]decision.SearchResult, error) {
	baseQuery := `
		SELECT
			d.id, d.title, d.situation_type, d.status, d.updated_at,
			(SELECT COUNT(*) FROM nodes n WHERE n.decision_id = d.id AND n.tenant_id = d.tenant_id) as node_count,
			bm25(decisions_fts) as rank,
			snippet(decisions_fts, 1, '[', ']', '...', 12) as snippet
		FROM decisions_fts
		JOIN decisions d ON d.rowid = decisions_fts.rowid
		WHERE d.tenant_id = ? AND decisions_fts MATCH ?
	`

	args := []interface{}{tenantID, query}

	if len(opts.Statuses) > 0 {
		placeholders := make([]string, len(opts.Statuses))
		for i, status := range opts.Statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		baseQuery += fmt.Sprintf(" AND d.status IN (%s)", strings.Join(placeholders, ","))
	}

	baseQuery += " ORDER BY rank"

	if opts.Limit > 0 {
		baseQuery += " LIMIT ?"
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		baseQuery += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search decisions: %w", err)
	}
	defer rows.Close()

	var results []decision.SearchResult
	for rows.Next() {
		var result decision.SearchResult
		err := rows.Scan(
			&result.Decision.ID,
			&result.Decision.Title,
			&result.Decision.SituationType,
			&result.Decision.Status,
			&result.Decision.UpdatedAt,
			&result.Decision.NodeCount,
			&result.Rank,
			&result.Snippet,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search results: %w", err)
	}

	return results, nil
}
