package mcp

import (
	"errors"
	"fmt"

	"github.com/compasshq/compass-mcp/internal/domain/decision"
	"github.com/compasshq/compass-mcp/internal/domain/outcome"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ErrorCode reports the machine-readable code for transport-level mapping.
func (e *APIError) ErrorCode() string {
	return e.Code
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, decision.ErrDecisionNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "decision not found", RecoveryHint: "Check ID spelling or call list_decisions"}
	case errors.Is(err, decision.ErrNodeNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "node not found", RecoveryHint: "Call get_active_node to find the current node"}
	case errors.Is(err, outcome.ErrOutcomeNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "outcome not found", RecoveryHint: "Outcome has not been logged for this node"}
	case errors.Is(err, decision.ErrUnknownQuestion):
		return &APIError{Code: "INVALID_ARGUMENT", Message: "question not in the node's pool", RecoveryHint: "Answer the node's current question"}
	case errors.Is(err, decision.ErrUnknownOption):
		return &APIError{Code: "INVALID_ARGUMENT", Message: "option not in the node's option set", RecoveryHint: "Choose one of the generated option IDs"}
	case errors.Is(err, outcome.ErrInvalidSentiment):
		return &APIError{Code: "INVALID_ARGUMENT", Message: "sentiment must be between -2 and +2"}
	case errors.Is(err, decision.ErrQuestionAlreadyAnswered):
		return &APIError{Code: "INVALID_STATE", Message: "question already answered on this node", RecoveryHint: "Branch if you want to revise an answer"}
	case errors.Is(err, decision.ErrInvalidPhase):
		return &APIError{Code: "INVALID_STATE", Message: "operation not valid in the node's phase", RecoveryHint: "Check the node's phase; phases only move forward"}
	case errors.Is(err, decision.ErrNotReadyForOptions):
		return &APIError{Code: "INVALID_STATE", Message: "clarification has not finished", RecoveryHint: "Keep answering questions until ready_for_options is true"}
	case errors.Is(err, outcome.ErrNotInExecute):
		return &APIError{Code: "INVALID_STATE", Message: "node has not reached execute phase", RecoveryHint: "Choose an option first"}
	case errors.Is(err, outcome.ErrAlreadyLogged):
		return &APIError{Code: "INVALID_STATE", Message: "outcome already logged for this node", RecoveryHint: "Outcomes are immutable; branch to re-run the decision"}
	case errors.Is(err, decision.ErrStaleNode):
		return &APIError{Code: "CONFLICT", Message: "node was modified while the request was in flight", RecoveryHint: "Re-read the node and retry"}
	case errors.Is(err, decision.ErrInvalidInput), errors.Is(err, outcome.ErrInvalidInput):
		return &APIError{Code: "INVALID_ARGUMENT", Message: err.Error()}
	default:
		return nil
	}
}
