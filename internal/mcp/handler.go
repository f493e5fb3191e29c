package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/compasshq/compass-mcp/internal/domain/decision"
	"github.com/compasshq/compass-mcp/internal/domain/event"
	"github.com/compasshq/compass-mcp/internal/domain/outcome"
	"github.com/compasshq/compass-mcp/internal/domain/question"
)

// DecisionService defines decision operations needed by MCP.
type DecisionService interface {
	Create(ctx context.Context, tenantID string, req decision.CreateRequest) (*decision.CreateResult, error)
	Get(ctx context.Context, tenantID, id string) (*decision.Decision, error)
	List(ctx context.Context, tenantID string, opts decision.ListDecisionsOptions) ([]decision.Summary, error)
	Resolve(ctx context.Context, tenantID, id string) error
	Archive(ctx context.Context, tenantID, id string) error
	GetNode(ctx context.Context, tenantID, id string) (*decision.Node, error)
	GetPath(ctx context.Context, tenantID, nodeID string) ([]decision.Node, error)
	GetSiblings(ctx context.Context, tenantID, nodeID string) ([]decision.NodeRef, error)
	ActiveNode(ctx context.Context, tenantID, decisionID string) (*decision.Node, error)
	NavigateTo(ctx context.Context, tenantID, nodeID string) (*decision.Node, error)
	CreateBranch(ctx context.Context, tenantID string, req decision.BranchRequest) (*decision.Node, error)
	SubmitAnswer(ctx context.Context, tenantID string, req decision.AnswerRequest) (*decision.AnswerResult, error)
	GenerateOptions(ctx context.Context, tenantID, nodeID string) (*decision.Node, error)
	ChooseOption(ctx context.Context, tenantID string, req decision.ChooseRequest) (*decision.Node, error)
}

// OutcomeService defines outcome operations needed by MCP.
type OutcomeService interface {
	LogOutcome(ctx context.Context, tenantID string, req outcome.LogRequest) (*outcome.Outcome, error)
	GetByNode(ctx context.Context, tenantID, nodeID string) (*outcome.Outcome, error)
}

// EventService defines event log operations needed by MCP.
type EventService interface {
	GetRecentEvents(ctx context.Context, tenantID string, opts event.ListOptions) ([]event.Entry, error)
}

// SearchService defines full-text search operations needed by MCP.
type SearchService interface {
	Search(ctx context.Context, tenantID, query string, opts decision.SearchOptions) ([]decision.SearchResult, error)
}

// Handler dispatches MCP commands.
type Handler struct {
	decisions DecisionService
	outcomes  OutcomeService
	events    EventService
	search    SearchService
}

// NewHandler creates a new MCP handler.
func NewHandler(decisions DecisionService, outcomes OutcomeService, events EventService, search SearchService) *Handler {
	return &Handler{
		decisions: decisions,
		outcomes:  outcomes,
		events:    events,
		search:    search,
	}
}

// Handle dispatches MCP requests to domain services.
func (h *Handler) Handle(ctx context.Context, tenantID, sessionID, method string, params json.RawMessage) (any, error) {
	switch method {
	case "create_decision":
		var req CreateDecisionParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		result, err := h.decisions.Create(ctx, tenantID, decision.CreateRequest{
			Title:         req.Title,
			SituationText: req.SituationText,
			SituationType: req.SituationType,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return CreateDecisionResponse{
			Decision:      *result.Decision,
			Root:          *result.Root,
			FirstQuestion: currentQuestion(result.Root),
		}, nil
	case "get_decision":
		var req GetDecisionParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		dec, err := h.decisions.Get(ctx, tenantID, req.ID)
		if err != nil {
			return nil, mapError(err)
		}
		return dec, nil
	case "list_decisions":
		var req ListDecisionsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		summaries, err := h.decisions.List(ctx, tenantID, decision.ListDecisionsOptions{
			Statuses: req.Statuses,
			Types:    req.Types,
			Limit:    req.Limit,
			Offset:   req.Offset,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return ListDecisionsResponse{Decisions: summaries}, nil
	case "search_decisions":
		var req SearchDecisionsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		results, err := h.search.Search(ctx, tenantID, req.Query, decision.SearchOptions{
			Statuses: req.Statuses,
			Limit:    req.Limit,
			Offset:   req.Offset,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return SearchDecisionsResponse{Results: results}, nil
	case "resolve_decision":
		var req GetDecisionParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.decisions.Resolve(ctx, tenantID, req.ID); err != nil {
			return nil, mapError(err)
		}
		return map[string]string{"status": "resolved"}, nil
	case "archive_decision":
		var req GetDecisionParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.decisions.Archive(ctx, tenantID, req.ID); err != nil {
			return nil, mapError(err)
		}
		return map[string]string{"status": "archived"}, nil
	case "get_node":
		var req GetNodeParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		node, err := h.decisions.GetNode(ctx, tenantID, req.ID)
		if err != nil {
			return nil, mapError(err)
		}
		return node, nil
	case "get_path":
		var req GetPathParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		path, err := h.decisions.GetPath(ctx, tenantID, req.NodeID)
		if err != nil {
			return nil, mapError(err)
		}
		return GetPathResponse{Path: path}, nil
	case "get_siblings":
		var req GetSiblingsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		siblings, err := h.decisions.GetSiblings(ctx, tenantID, req.NodeID)
		if err != nil {
			return nil, mapError(err)
		}
		return GetSiblingsResponse{Siblings: siblings}, nil
	case "get_active_node":
		var req GetActiveNodeParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		node, err := h.decisions.ActiveNode(ctx, tenantID, req.DecisionID)
		if err != nil {
			return nil, mapError(err)
		}
		return NodeResponse{Node: *node, CurrentQuestion: currentQuestion(node)}, nil
	case "navigate":
		var req NavigateParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		node, err := h.decisions.NavigateTo(ctx, tenantID, req.NodeID)
		if err != nil {
			return nil, mapError(err)
		}
		return NodeResponse{Node: *node, CurrentQuestion: currentQuestion(node)}, nil
	case "submit_answer":
		var req SubmitAnswerParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		result, err := h.decisions.SubmitAnswer(ctx, tenantID, decision.AnswerRequest{
			NodeID: req.NodeID,
			Answer: question.Answer{
				QuestionID: req.QuestionID,
				Value:      req.Answer,
			},
		})
		if err != nil {
			return nil, mapError(err)
		}
		return SubmitAnswerResponse{
			Node:             *result.Node,
			AssistantMessage: result.AssistantMessage,
			NextQuestion:     result.NextQuestion,
			ReadyForOptions:  result.ReadyForOptions,
			StopReason:       result.StopReason,
			Progress:         result.Progress,
		}, nil
	case "generate_options":
		var req GenerateOptionsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		node, err := h.decisions.GenerateOptions(ctx, tenantID, req.NodeID)
		if err != nil {
			return nil, mapError(err)
		}
		resp := GenerateOptionsResponse{Node: *node}
		if node.Moves != nil {
			resp.Options = node.Moves.Options
			resp.Degraded = node.Moves.Degraded
		}
		return resp, nil
	case "choose_option":
		var req ChooseOptionParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		node, err := h.decisions.ChooseOption(ctx, tenantID, decision.ChooseRequest{
			NodeID:   req.NodeID,
			OptionID: req.OptionID,
		})
		if err != nil {
			return nil, mapError(err)
		}
		resp := ChooseOptionResponse{Node: *node}
		if node.Execute != nil {
			resp.Plan = node.Execute.Plan
		}
		return resp, nil
	case "create_branch":
		var req CreateBranchParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		node, err := h.decisions.CreateBranch(ctx, tenantID, decision.BranchRequest{
			ParentNodeID: req.ParentNodeID,
			Reason:       req.Reason,
			Details:      req.Details,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return NodeResponse{Node: *node, CurrentQuestion: currentQuestion(node)}, nil
	case "log_outcome":
		var req LogOutcomeParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		out, err := h.outcomes.LogOutcome(ctx, tenantID, outcome.LogRequest{
			NodeID:        req.NodeID,
			ProgressYesNo: req.ProgressYesNo,
			Sentiment2h:   req.Sentiment2h,
			Sentiment24h:  req.Sentiment24h,
			Notes:         req.Notes,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return out, nil
	case "get_recent_events":
		var req GetRecentEventsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		entries, err := h.events.GetRecentEvents(ctx, tenantID, event.ListOptions{
			DecisionID: req.DecisionID,
			NodeID:     req.NodeID,
			Types:      req.Types,
			Limit:      req.Limit,
			Offset:     req.Offset,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return GetRecentEventsResponse{Events: entries}, nil
	default:
		return nil, &APIError{Code: "METHOD_NOT_FOUND", Message: fmt.Sprintf("unknown method: %s", method)}
	}
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	return json.Unmarshal(params, out)
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}

// currentQuestion returns the pending question of a clarify node, if any.
func currentQuestion(node *decision.Node) *question.Candidate {
	if node == nil || node.Clarify == nil {
		return nil
	}
	sel := node.Clarify.Selector
	if sel.CurrentQuestionID == "" {
		return nil
	}
	for i := range sel.Pool {
		if sel.Pool[i].ID == sel.CurrentQuestionID {
			q := sel.Pool[i]
			return &q
		}
	}
	return nil
}
