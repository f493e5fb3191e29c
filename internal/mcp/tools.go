package mcp

import (
	"context"
	"encoding/json"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/compasshq/compass-mcp/internal/domain/decision"
	"github.com/compasshq/compass-mcp/internal/domain/outcome"
)

type statusResponse struct {
	Status string `json:"status"`
}

// registerTools wires every tool onto the SDK server. Tool handlers
// delegate to the same dispatch handler the HTTP transport uses, so both
// surfaces stay behaviorally identical.
func registerTools(server *sdkmcp.Server, h *Handler) {
	addTool[CreateDecisionParams, CreateDecisionResponse](server, h, "create_decision",
		"Start a new decision from a situation description. Returns the decision, its root clarify node, and the first question to ask.")
	addTool[GetDecisionParams, decision.Decision](server, h, "get_decision",
		"Get a decision by ID.")
	addTool[ListDecisionsParams, ListDecisionsResponse](server, h, "list_decisions",
		"List decisions for the current tenant, optionally filtered by status and situation type.")
	addTool[SearchDecisionsParams, SearchDecisionsResponse](server, h, "search_decisions",
		"Full-text search over decision titles and situation descriptions.")
	addTool[GetDecisionParams, statusResponse](server, h, "resolve_decision",
		"Mark a decision resolved.")
	addTool[GetDecisionParams, statusResponse](server, h, "archive_decision",
		"Archive a decision. Archived decisions are kept but excluded from active listings.")
	addTool[GetNodeParams, decision.Node](server, h, "get_node",
		"Get a single node with its full phase payload.")
	addTool[GetPathParams, GetPathResponse](server, h, "get_path",
		"Get the root-to-node path for a node, oldest first.")
	addTool[GetSiblingsParams, GetSiblingsResponse](server, h, "get_siblings",
		"Get the sibling branches of a node (other children of its parent).")
	addTool[GetActiveNodeParams, NodeResponse](server, h, "get_active_node",
		"Get the node the decision is currently focused on, including its pending question if clarifying.")
	addTool[NavigateParams, NodeResponse](server, h, "navigate",
		"Move the decision's focus pointer to another node. Navigation never mutates nodes.")
	addTool[SubmitAnswerParams, SubmitAnswerResponse](server, h, "submit_answer",
		"Answer the current clarify question. Returns the updated canvas, the next question, and whether the decision is ready for options.")
	addTool[GenerateOptionsParams, GenerateOptionsResponse](server, h, "generate_options",
		"Generate the option set for a node once clarification is done. Moves the node to the moves phase.")
	addTool[ChooseOptionParams, ChooseOptionResponse](server, h, "choose_option",
		"Choose one of the generated options. Moves the node to the execute phase with a commit plan.")
	addTool[CreateBranchParams, NodeResponse](server, h, "create_branch",
		"Fork a new branch off a node to explore a what-if. Reasons changed_assumption and changed_constraint rewind to clarify; new_info and add_option keep the parent's phase.")
	addTool[LogOutcomeParams, outcome.Outcome](server, h, "log_outcome",
		"Log the real-world outcome of an executed option. Computes the Brier score and resolves the decision. One outcome per node.")
	addTool[GetRecentEventsParams, GetRecentEventsResponse](server, h, "get_recent_events",
		"Get recent events for a decision or node, newest first.")
}

// addTool registers one tool whose name doubles as the dispatch method.
// The dispatch result is round-tripped through JSON to land in the
// tool's declared output type.
func addTool[In, Out any](server *sdkmcp.Server, h *Handler, name, description string) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        name,
		Description: description,
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, input In) (*sdkmcp.CallToolResult, Out, error) {
		var out Out

		params, err := json.Marshal(input)
		if err != nil {
			return nil, out, err
		}

		result, err := h.Handle(ctx, getTenantID(ctx), getSessionID(ctx), name, params)
		if err != nil {
			return nil, out, err
		}

		data, err := json.Marshal(result)
		if err != nil {
			return nil, out, err
		}
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, out, err
		}

		return nil, out, nil
	})
}
