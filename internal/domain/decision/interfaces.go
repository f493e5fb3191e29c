package decision

import (
	"context"

	"github.com/compasshq/compass-mcp/internal/domain/canvas"
	"github.com/compasshq/compass-mcp/internal/domain/event"
	"github.com/compasshq/compass-mcp/internal/domain/question"
)

// DecisionRepository provides persistence for decisions.
type DecisionRepository interface {
	Create(ctx context.Context, tenantID string, dec *Decision) error
	Get(ctx context.Context, tenantID, id string) (*Decision, error)
	List(ctx context.Context, tenantID string, opts ListDecisionsOptions) ([]Summary, error)
	UpdateStatus(ctx context.Context, tenantID, id string, status Status) error
	Delete(ctx context.Context, tenantID, id string) error
	IncrementTick(ctx context.Context, tenantID, decisionID string) (int64, error)
}

// NodeRepository provides persistence for decision nodes.
type NodeRepository interface {
	Create(ctx context.Context, tenantID string, node *Node) error
	Get(ctx context.Context, tenantID, id string) (*Node, error)
	Update(ctx context.Context, tenantID string, node *Node, expectedTick int64) error
	ListByDecision(ctx context.Context, tenantID, decisionID string) ([]Node, error)
	GetChildrenRefs(ctx context.Context, tenantID, parentID string) ([]NodeRef, error)
}

// NavigationRepository stores the explicit navigation pointer per decision.
// Navigating is a pure pointer change, never a node mutation.
type NavigationRepository interface {
	SetFocus(ctx context.Context, tenantID, decisionID, nodeID string) error
	GetFocus(ctx context.Context, tenantID, decisionID string) (string, error)
}

// EventRepository logs decision events.
type EventRepository interface {
	Log(ctx context.Context, tenantID string, entry *event.Entry) error
}

// Engine is the opaque generation engine. The service never inspects how
// results are produced; it only applies the returned deltas after
// re-validating node state.
type Engine interface {
	Clarify(ctx context.Context, req ClarifyRequest) (*ClarifyResult, error)
	Options(ctx context.Context, req OptionsRequest) (*OptionsResult, error)
	Plan(ctx context.Context, req PlanRequest) (*PlanResult, error)
}

// ClarifyRequest carries one answered question plus the state it was
// answered against.
type ClarifyRequest struct {
	SituationText string
	SituationType string
	Canvas        canvas.State
	Question      question.Candidate
	Answer        question.Answer
	Asked         []question.Asked
}

// ClarifyResult is the engine's proposed update after an answer.
type ClarifyResult struct {
	AssistantMessage string
	Delta            canvas.Delta
	NextCandidates   []question.Candidate
	ReadyForOptions  bool
}

// OptionsRequest asks the engine for an option set.
type OptionsRequest struct {
	SituationText string
	SituationType string
	Canvas        canvas.State
}

// OptionsResult carries the generated options.
type OptionsResult struct {
	Options []Option
}

// PlanRequest asks the engine for an execution plan for a chosen option.
type PlanRequest struct {
	Canvas canvas.State
	Option Option
}

// PlanResult carries the generated plan.
type PlanResult struct {
	Plan CommitPlan
}

// ListDecisionsOptions filters decision listings.
type ListDecisionsOptions struct {
	Statuses []Status
	Types    []string
	Limit    int
	Offset   int
}
