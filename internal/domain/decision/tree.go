package decision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/compasshq/compass-mcp/internal/domain/event"
	"github.com/compasshq/compass-mcp/internal/domain/question"
	"github.com/compasshq/compass-mcp/internal/repository"
	"github.com/google/uuid"
)

// BranchRequest describes a branch creation request.
type BranchRequest struct {
	ParentNodeID string
	Reason       BranchReason
	Details      string
}

// CreateBranch forks a new node off an existing one. The child inherits a
// deep copy of the parent's canvas snapshot; the parent is never touched.
// changed_assumption and changed_constraint rewind the branch to clarify,
// new_info and add_option keep the parent's phase.
func (s *Service) CreateBranch(ctx context.Context, tenantID string, req BranchRequest) (*Node, error) {
	if err := ValidateBranchInput(req); err != nil {
		return nil, err
	}

	parent, err := s.getNode(ctx, tenantID, req.ParentNodeID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(parent.DecisionID)
	defer unlock()

	parent, err = s.getNode(ctx, tenantID, req.ParentNodeID)
	if err != nil {
		return nil, err
	}
	dec, err := s.Get(ctx, tenantID, parent.DecisionID)
	if err != nil {
		return nil, err
	}

	child := &Node{
		ID:            uuid.NewString(),
		DecisionID:    parent.DecisionID,
		ParentID:      &parent.ID,
		CreatedAt:     time.Now(),
		BranchReason:  req.Reason,
		BranchDetails: req.Details,
	}

	if req.Reason.RewindsToClarify() || parent.Phase == PhaseClarify {
		s.branchToClarify(child, parent, dec)
	} else {
		branchSamePhase(child, parent)
	}

	newTick, err := s.decisions.IncrementTick(ctx, tenantID, parent.DecisionID)
	if err != nil {
		return nil, fmt.Errorf("incrementing tick: %w", err)
	}
	child.Tick = newTick

	if err := s.nodes.Create(ctx, tenantID, child); err != nil {
		return nil, fmt.Errorf("creating branch node: %w", err)
	}

	s.logEvent(ctx, tenantID, &event.Entry{
		DecisionID: child.DecisionID,
		NodeID:     &child.ID,
		Type:       event.TypeBranched,
		Summary:    fmt.Sprintf("branched node %s from %s (%s)", child.ID, parent.ID, req.Reason),
		Details:    req.Details,
		Tick:       child.Tick,
	})

	return child, nil
}

// branchToClarify restarts clarification over a copy of the parent's
// canvas: fresh question pool scored against what is already known.
func (s *Service) branchToClarify(child, parent *Node, dec *Decision) {
	cv := parent.Canvas().Clone()

	if parent.Phase == PhaseClarify && !child.BranchReason.RewindsToClarify() && parent.Clarify != nil {
		// Continuing clarification on a new path keeps the full
		// conversation state, not just the canvas.
		child.Phase = PhaseClarify
		child.Clarify = &ClarifyState{
			Canvas:   cv,
			Selector: parent.Clarify.Selector.Clone(),
		}
		return
	}

	pool := s.generator.InitialPool(dec.SituationType, cv)
	var asked []question.Asked
	if parent.Clarify != nil {
		asked = cloneAsked(parent.Clarify.Selector.Asked)
	}
	s.selector.Rescore(pool, cv, asked)

	state := question.SelectorState{
		QuestionCap:     s.selector.QuestionCap(),
		Pool:            pool,
		LastUncertainty: 1 - s.selector.Progress(cv),
	}
	if first := s.selector.SelectNext(pool, nil, cv); first != nil {
		state.CurrentQuestionID = first.ID
	}

	child.Phase = PhaseClarify
	child.Clarify = &ClarifyState{Canvas: cv, Selector: state}
}

func branchSamePhase(child, parent *Node) {
	child.Phase = parent.Phase
	switch parent.Phase {
	case PhaseMoves:
		child.Moves = &MovesState{
			Canvas:     parent.Moves.Canvas.Clone(),
			Asked:      cloneAsked(parent.Moves.Asked),
			Options:    cloneOptions(parent.Moves.Options),
			StopReason: parent.Moves.StopReason,
			Degraded:   parent.Moves.Degraded,
		}
	case PhaseExecute:
		child.Execute = &ExecuteState{
			Canvas:         parent.Execute.Canvas.Clone(),
			Options:        cloneOptions(parent.Execute.Options),
			ChosenOptionID: parent.Execute.ChosenOptionID,
			Plan:           clonePlan(parent.Execute.Plan),
		}
	}
}

// GetNode returns a node by ID.
func (s *Service) GetNode(ctx context.Context, tenantID, id string) (*Node, error) {
	return s.getNode(ctx, tenantID, id)
}

// GetPath returns the ordered sequence of nodes from the root to the
// given node. Pure read, re-derivable at any time.
func (s *Service) GetPath(ctx context.Context, tenantID, nodeID string) ([]Node, error) {
	node, err := s.getNode(ctx, tenantID, nodeID)
	if err != nil {
		return nil, err
	}

	var reversed []Node
	visited := make(map[string]bool)
	current := node
	for {
		if visited[current.ID] {
			return nil, fmt.Errorf("parent cycle detected at node %s", current.ID)
		}
		visited[current.ID] = true
		reversed = append(reversed, *current)
		if current.ParentID == nil {
			break
		}
		current, err = s.getNode(ctx, tenantID, *current.ParentID)
		if err != nil {
			return nil, err
		}
	}

	path := make([]Node, len(reversed))
	for i, n := range reversed {
		path[len(reversed)-1-i] = n
	}
	return path, nil
}

// GetSiblings returns refs of nodes sharing the same parent, excluding
// the node itself. The root has no siblings.
func (s *Service) GetSiblings(ctx context.Context, tenantID, nodeID string) ([]NodeRef, error) {
	node, err := s.getNode(ctx, tenantID, nodeID)
	if err != nil {
		return nil, err
	}
	if node.ParentID == nil {
		return nil, nil
	}

	refs, err := s.nodes.GetChildrenRefs(ctx, tenantID, *node.ParentID)
	if err != nil {
		return nil, fmt.Errorf("getting siblings: %w", err)
	}
	out := refs[:0]
	for _, ref := range refs {
		if ref.ID != nodeID {
			out = append(out, ref)
		}
	}
	return out, nil
}

// ActiveNode returns the node the caller should act on: the navigation
// pointer if set, otherwise the most recently created childless node.
func (s *Service) ActiveNode(ctx context.Context, tenantID, decisionID string) (*Node, error) {
	if _, err := s.Get(ctx, tenantID, decisionID); err != nil {
		return nil, err
	}

	if s.nav != nil {
		focus, err := s.nav.GetFocus(ctx, tenantID, decisionID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("getting focus: %w", err)
		}
		if focus != "" {
			node, err := s.getNode(ctx, tenantID, focus)
			if err == nil {
				return node, nil
			}
			if !errors.Is(err, ErrNodeNotFound) {
				return nil, err
			}
			// Stale pointer, fall through to the default.
		}
	}

	nodes, err := s.nodes.ListByDecision(ctx, tenantID, decisionID)
	if err != nil {
		return nil, fmt.Errorf("listing nodes: %w", err)
	}
	if len(nodes) == 0 {
		return nil, ErrNodeNotFound
	}

	hasChildren := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if n.ParentID != nil {
			hasChildren[*n.ParentID] = true
		}
	}

	var active *Node
	for i := range nodes {
		n := &nodes[i]
		if hasChildren[n.ID] {
			continue
		}
		if active == nil || n.CreatedAt.After(active.CreatedAt) ||
			(n.CreatedAt.Equal(active.CreatedAt) && n.Tick > active.Tick) {
			active = n
		}
	}
	if active == nil {
		return nil, fmt.Errorf("no leaf node in decision %s", decisionID)
	}
	result := *active
	return &result, nil
}

// NavigateTo points the caller's view at a node. Pure pointer change;
// node data is never mutated.
func (s *Service) NavigateTo(ctx context.Context, tenantID, nodeID string) (*Node, error) {
	node, err := s.getNode(ctx, tenantID, nodeID)
	if err != nil {
		return nil, err
	}
	if s.nav != nil {
		if err := s.nav.SetFocus(ctx, tenantID, node.DecisionID, node.ID); err != nil {
			return nil, fmt.Errorf("setting focus: %w", err)
		}
	}
	s.logEvent(ctx, tenantID, &event.Entry{
		DecisionID: node.DecisionID,
		NodeID:     &node.ID,
		Type:       event.TypeNavigated,
		Summary:    fmt.Sprintf("navigated to node %s", node.ID),
	})
	return node, nil
}
