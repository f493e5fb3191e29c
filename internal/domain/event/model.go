package event

import "time"

// Type represents the kind of decision event.
type Type string

const (
	TypeDecisionCreated  Type = "decision_created"
	TypeDecisionResolved Type = "decision_resolved"
	TypeDecisionArchived Type = "decision_archived"
	TypeAnswerSubmitted  Type = "answer_submitted"
	TypeReadyForOptions  Type = "ready_for_options"
	TypeOptionsGenerated Type = "options_generated"
	TypeOptionChosen     Type = "option_chosen"
	TypeBranched         Type = "branched"
	TypeOutcomeLogged    Type = "outcome_logged"
	TypeNavigated        Type = "navigated"
	TypeStaleDiscarded   Type = "stale_result_discarded"
)

// Entry represents an event in the decision event log.
type Entry struct {
	ID         int64     `json:"id"`
	TenantID   string    `json:"tenant_id"`
	DecisionID string    `json:"decision_id"`
	NodeID     *string   `json:"node_id,omitempty"`
	Type       Type      `json:"type"`
	Summary    string    `json:"summary"`
	Details    string    `json:"details,omitempty"` // JSON string
	CreatedAt  time.Time `json:"created_at"`
	Tick       int64     `json:"tick"`
}
