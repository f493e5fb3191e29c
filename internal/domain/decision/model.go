package decision

import (
	"time"

	"github.com/compasshq/compass-mcp/internal/domain/canvas"
	"github.com/compasshq/compass-mcp/internal/domain/question"
)

// Status represents the lifecycle state of a decision.
type Status string

const (
	StatusActive   Status = "active"
	StatusResolved Status = "resolved"
	StatusArchived Status = "archived"
)

// Phase represents the lifecycle stage of a single node. Phases only move
// forward; going back is modeled by branching a new node off an ancestor.
type Phase string

const (
	PhaseClarify Phase = "clarify"
	PhaseMoves   Phase = "moves"
	PhaseExecute Phase = "execute"
)

// rank orders phases for the forward-only invariant.
func (p Phase) rank() int {
	switch p {
	case PhaseClarify:
		return 0
	case PhaseMoves:
		return 1
	case PhaseExecute:
		return 2
	default:
		return -1
	}
}

// BranchReason records why a branch was created.
type BranchReason string

const (
	BranchNewInfo           BranchReason = "new_info"
	BranchChangedAssumption BranchReason = "changed_assumption"
	BranchChangedConstraint BranchReason = "changed_constraint"
	BranchAddOption         BranchReason = "add_option"
)

// RewindsToClarify reports whether this branch reason restarts
// clarification instead of inheriting the parent's phase.
func (r BranchReason) RewindsToClarify() bool {
	return r == BranchChangedAssumption || r == BranchChangedConstraint
}

// Valid reports whether the reason is one of the known enum values.
func (r BranchReason) Valid() bool {
	switch r {
	case BranchNewInfo, BranchChangedAssumption, BranchChangedConstraint, BranchAddOption:
		return true
	}
	return false
}

// Decision is a user's top-level question, owning a tree of nodes.
// Tick is a per-decision write counter used for optimistic concurrency.
type Decision struct {
	ID            string    `json:"id"`
	TenantID      string    `json:"tenant_id"`
	Title         string    `json:"title,omitempty"`
	SituationText string    `json:"situation_text"`
	SituationType string    `json:"situation_type,omitempty"`
	Status        Status    `json:"status"`
	Tick          int64     `json:"tick"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Summary is a lightweight decision listing row.
type Summary struct {
	ID            string    `json:"id"`
	Title         string    `json:"title,omitempty"`
	SituationType string    `json:"situation_type,omitempty"`
	Status        Status    `json:"status"`
	NodeCount     int       `json:"node_count"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Node is one point in a decision's branching history. Exactly one phase
// payload is set, keyed by Phase, so fields valid only in one phase never
// leak into another.
type Node struct {
	ID         string    `json:"id"`
	DecisionID string    `json:"decision_id"`
	ParentID   *string   `json:"parent_id,omitempty"`
	Phase      Phase     `json:"phase"`
	CreatedAt  time.Time `json:"created_at"`
	Tick       int64     `json:"tick"`

	BranchReason  BranchReason `json:"branch_reason,omitempty"`
	BranchDetails string       `json:"branch_details,omitempty"`

	Clarify *ClarifyState `json:"clarify,omitempty"`
	Moves   *MovesState   `json:"moves,omitempty"`
	Execute *ExecuteState `json:"execute,omitempty"`
}

// ClarifyState is the payload of a node gathering facts.
type ClarifyState struct {
	Canvas   canvas.State           `json:"canvas"`
	Selector question.SelectorState `json:"selector"`
}

// MovesState is the payload of a node choosing among generated options.
type MovesState struct {
	Canvas     canvas.State     `json:"canvas"`
	Asked      []question.Asked `json:"asked,omitempty"`
	Options    []Option         `json:"options"`
	StopReason string           `json:"stop_reason,omitempty"`
	// Degraded marks an option set generated without a canvas statement.
	Degraded bool `json:"degraded,omitempty"`
}

// ExecuteState is the payload of a node following a chosen plan.
type ExecuteState struct {
	Canvas         canvas.State `json:"canvas"`
	Options        []Option     `json:"options"`
	ChosenOptionID string       `json:"chosen_option_id"`
	Plan           *CommitPlan  `json:"plan,omitempty"`
}

// Canvas returns the node's canvas snapshot for its current phase.
func (n *Node) Canvas() canvas.State {
	switch n.Phase {
	case PhaseClarify:
		if n.Clarify != nil {
			return n.Clarify.Canvas
		}
	case PhaseMoves:
		if n.Moves != nil {
			return n.Moves.Canvas
		}
	case PhaseExecute:
		if n.Execute != nil {
			return n.Execute.Canvas
		}
	}
	return canvas.State{}
}

// NodeRef is a lightweight reference to a node.
type NodeRef struct {
	ID            string    `json:"id"`
	DecisionID    string    `json:"decision_id"`
	ParentID      *string   `json:"parent_id,omitempty"`
	Phase         Phase     `json:"phase"`
	ChildrenCount int       `json:"children_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// ConfidenceLevel grades how confident the engine is in an option.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// Option is one generated course of action.
type Option struct {
	ID         string          `json:"id"` // A, B, C
	Title      string          `json:"title"`
	GoodIf     string          `json:"good_if,omitempty"`
	BadIf      string          `json:"bad_if,omitempty"`
	Pros       []string        `json:"pros,omitempty"`
	Cons       []string        `json:"cons,omitempty"`
	RiskTags   []string        `json:"risk_tags,omitempty"`
	Confidence ConfidenceLevel `json:"confidence,omitempty"`
	Steps      []string        `json:"steps,omitempty"`
	// PredictedProbability is the engine's calibrated probability that
	// this option makes progress, used later for Brier scoring.
	PredictedProbability *float64 `json:"predicted_probability,omitempty"`
}

// IfThenBranch is a conditional follow-up inside a commit step.
type IfThenBranch struct {
	Condition string `json:"condition"`
	Action    string `json:"action"`
}

// CommitStep is one ordered step of the execution plan.
type CommitStep struct {
	Number      int            `json:"number"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Branches    []IfThenBranch `json:"branches,omitempty"`
	Completed   bool           `json:"completed"`
}

// CommitPlan is the execution plan for the chosen option.
type CommitPlan struct {
	ChosenOptionID    string       `json:"chosen_option_id"`
	ChosenOptionTitle string       `json:"chosen_option_title"`
	Steps             []CommitStep `json:"steps"`
}

// SearchResult is a full-text search hit over decisions.
type SearchResult struct {
	Decision Summary `json:"decision"`
	Rank     float64 `json:"rank"`
	Snippet  string  `json:"snippet,omitempty"`
}

// SearchOptions filters full-text search.
type SearchOptions struct {
	Statuses []Status
	Limit    int
	Offset   int
}

// FindOption returns the option with the given id from a set, or nil.
func FindOption(options []Option, id string) *Option {
	for i := range options {
		if options[i].ID == id {
			return &options[i]
		}
	}
	return nil
}
