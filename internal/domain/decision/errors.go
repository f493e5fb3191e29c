package decision

import "errors"

var (
	// ErrDecisionNotFound indicates the decision doesn't exist.
	ErrDecisionNotFound = errors.New("decision not found")
	// ErrNodeNotFound indicates the node doesn't exist.
	ErrNodeNotFound = errors.New("node not found")
	// ErrUnknownOption indicates the option id is not among the node's generated options.
	ErrUnknownOption = errors.New("unknown option id")
	// ErrUnknownQuestion indicates the answered question is not in the node's pool.
	ErrUnknownQuestion = errors.New("unknown question id")
	// ErrQuestionAlreadyAnswered indicates the question was answered before.
	ErrQuestionAlreadyAnswered = errors.New("question already answered")
	// ErrInvalidPhase indicates the operation is not valid in the node's current phase.
	ErrInvalidPhase = errors.New("operation not valid in node's current phase")
	// ErrNotReadyForOptions indicates clarification has not signaled readiness.
	ErrNotReadyForOptions = errors.New("node not ready for options")
	// ErrStaleNode indicates the node changed while an engine call was in flight.
	ErrStaleNode = errors.New("node superseded while generating")
	// ErrInvalidInput indicates invalid input for decision operations.
	ErrInvalidInput = errors.New("invalid decision input")
)
