package outcome

import (
	"context"

	"github.com/compasshq/compass-mcp/internal/domain/decision"
)

// Repository provides persistence for outcomes.
type Repository interface {
	Create(ctx context.Context, tenantID string, out *Outcome) error
	GetByNode(ctx context.Context, tenantID, nodeID string) (*Outcome, error)
}

// NodeReader loads nodes for outcome validation.
type NodeReader interface {
	Get(ctx context.Context, tenantID, id string) (*decision.Node, error)
}

// DecisionResolver marks the owning decision resolved once an outcome
// lands.
type DecisionResolver interface {
	UpdateStatus(ctx context.Context, tenantID, id string, status decision.Status) error
}
