package mcp

import (
	"github.com/compasshq/compass-mcp/internal/domain/decision"
	"github.com/compasshq/compass-mcp/internal/domain/event"
	"github.com/compasshq/compass-mcp/internal/domain/question"
)

type CreateDecisionParams struct {
	Title         string `json:"title,omitempty"`
	SituationText string `json:"situation_text"`
	SituationType string `json:"situation_type,omitempty"`
}

type GetDecisionParams struct {
	ID string `json:"id"`
}

type ListDecisionsParams struct {
	Statuses []decision.Status `json:"statuses,omitempty"`
	Types    []string          `json:"types,omitempty"`
	Limit    int               `json:"limit,omitempty"`
	Offset   int               `json:"offset,omitempty"`
}

type SearchDecisionsParams struct {
	Query    string            `json:"query"`
	Statuses []decision.Status `json:"statuses,omitempty"`
	Limit    int               `json:"limit,omitempty"`
	Offset   int               `json:"offset,omitempty"`
}

type GetNodeParams struct {
	ID string `json:"id"`
}

type GetPathParams struct {
	NodeID string `json:"node_id"`
}

type GetSiblingsParams struct {
	NodeID string `json:"node_id"`
}

type GetActiveNodeParams struct {
	DecisionID string `json:"decision_id"`
}

type NavigateParams struct {
	NodeID string `json:"node_id"`
}

type SubmitAnswerParams struct {
	NodeID     string `json:"node_id"`
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

type GenerateOptionsParams struct {
	NodeID string `json:"node_id"`
}

type ChooseOptionParams struct {
	NodeID   string `json:"node_id"`
	OptionID string `json:"option_id"`
}

type CreateBranchParams struct {
	ParentNodeID string                `json:"parent_node_id"`
	Reason       decision.BranchReason `json:"reason"`
	Details      string                `json:"details,omitempty"`
}

type LogOutcomeParams struct {
	NodeID        string `json:"node_id"`
	ProgressYesNo bool   `json:"progress_yesno"`
	Sentiment2h   *int   `json:"sentiment_2h,omitempty"`
	Sentiment24h  *int   `json:"sentiment_24h,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

type GetRecentEventsParams struct {
	DecisionID string       `json:"decision_id,omitempty"`
	NodeID     *string      `json:"node_id,omitempty"`
	Types      []event.Type `json:"types,omitempty"`
	Limit      int          `json:"limit,omitempty"`
	Offset     int          `json:"offset,omitempty"`
}

type CreateDecisionResponse struct {
	Decision      decision.Decision   `json:"decision"`
	Root          decision.Node       `json:"root"`
	FirstQuestion *question.Candidate `json:"first_question,omitempty"`
}

type ListDecisionsResponse struct {
	Decisions []decision.Summary `json:"decisions"`
}

type SearchDecisionsResponse struct {
	Results []decision.SearchResult `json:"results"`
}

type GetPathResponse struct {
	Path []decision.Node `json:"path"`
}

type GetSiblingsResponse struct {
	Siblings []decision.NodeRef `json:"siblings"`
}

type NodeResponse struct {
	Node            decision.Node       `json:"node"`
	CurrentQuestion *question.Candidate `json:"current_question,omitempty"`
}

type SubmitAnswerResponse struct {
	Node             decision.Node       `json:"node"`
	AssistantMessage string              `json:"assistant_message,omitempty"`
	NextQuestion     *question.Candidate `json:"next_question,omitempty"`
	ReadyForOptions  bool                `json:"ready_for_options"`
	StopReason       string              `json:"stop_reason,omitempty"`
	Progress         float64             `json:"progress"`
}

type GenerateOptionsResponse struct {
	Node     decision.Node     `json:"node"`
	Options  []decision.Option `json:"options"`
	Degraded bool              `json:"degraded,omitempty"`
}

type ChooseOptionResponse struct {
	Node decision.Node        `json:"node"`
	Plan *decision.CommitPlan `json:"plan,omitempty"`
}

type GetRecentEventsResponse struct {
	Events []event.Entry `json:"events"`
}
