package outcome

import "errors"

var (
	// ErrOutcomeNotFound indicates no outcome exists for the node.
	ErrOutcomeNotFound = errors.New("outcome not found")
	// ErrNotInExecute indicates the node has not reached execute phase.
	ErrNotInExecute = errors.New("node not in execute phase")
	// ErrAlreadyLogged indicates the node already has an outcome.
	ErrAlreadyLogged = errors.New("outcome already logged for node")
	// ErrInvalidSentiment indicates a sentiment reading outside -2..+2.
	ErrInvalidSentiment = errors.New("sentiment must be between -2 and +2")
	// ErrInvalidInput indicates invalid input for outcome operations.
	ErrInvalidInput = errors.New("invalid outcome input")
)
