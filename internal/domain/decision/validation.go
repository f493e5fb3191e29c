package decision

import "strings"

// ValidateCreateInput validates fields required to create a decision.
func ValidateCreateInput(req CreateRequest) error {
	if strings.TrimSpace(req.SituationText) == "" {
		return ErrInvalidInput
	}
	return nil
}

// ValidateBranchInput validates fields required to create a branch.
func ValidateBranchInput(req BranchRequest) error {
	if strings.TrimSpace(req.ParentNodeID) == "" {
		return ErrInvalidInput
	}
	if !req.Reason.Valid() {
		return ErrInvalidInput
	}
	return nil
}

// validateNodePayload checks the tagged-union invariant: exactly the
// payload matching the phase is set.
func validateNodePayload(n *Node) error {
	switch n.Phase {
	case PhaseClarify:
		if n.Clarify == nil || n.Moves != nil || n.Execute != nil {
			return ErrInvalidInput
		}
	case PhaseMoves:
		if n.Moves == nil || n.Clarify != nil || n.Execute != nil {
			return ErrInvalidInput
		}
	case PhaseExecute:
		if n.Execute == nil || n.Clarify != nil || n.Moves != nil {
			return ErrInvalidInput
		}
	default:
		return ErrInvalidInput
	}
	return nil
}
