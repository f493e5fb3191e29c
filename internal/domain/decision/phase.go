package decision

import (
	"context"
	"errors"
	"fmt"

	"github.com/compasshq/compass-mcp/internal/domain/canvas"
	"github.com/compasshq/compass-mcp/internal/domain/event"
	"github.com/compasshq/compass-mcp/internal/domain/question"
	"github.com/compasshq/compass-mcp/internal/repository"
)

// AnswerRequest submits an answer to the node's current question.
type AnswerRequest struct {
	NodeID string
	Answer question.Answer
}

// AnswerResult reports the state after an answer was applied.
type AnswerResult struct {
	Node             *Node
	AssistantMessage string
	NextQuestion     *question.Candidate
	ReadyForOptions  bool
	StopReason       string
	Progress         float64
}

// ChooseRequest selects one of the node's generated options.
type ChooseRequest struct {
	NodeID   string
	OptionID string
}

// SubmitAnswer feeds one answer through the engine and selector. The
// engine call runs outside the per-decision lock; the result is applied
// only if the node and decision ticks are unchanged, otherwise
// ErrStaleNode.
func (s *Service) SubmitAnswer(ctx context.Context, tenantID string, req AnswerRequest) (*AnswerResult, error) {
	node, err := s.getNode(ctx, tenantID, req.NodeID)
	if err != nil {
		return nil, err
	}
	decisionID := node.DecisionID

	// Snapshot under the lock.
	unlock := s.locks.Lock(decisionID)
	node, err = s.getNode(ctx, tenantID, req.NodeID)
	if err != nil {
		unlock()
		return nil, err
	}
	if node.Phase != PhaseClarify || node.Clarify == nil {
		unlock()
		return nil, ErrInvalidPhase
	}

	cand := findCandidate(node.Clarify.Selector.Pool, req.Answer.QuestionID)
	if cand == nil {
		unlock()
		return nil, ErrUnknownQuestion
	}
	if node.Clarify.Selector.AskedIDs()[cand.ID] {
		unlock()
		return nil, ErrQuestionAlreadyAnswered
	}

	dec, err := s.Get(ctx, tenantID, decisionID)
	if err != nil {
		unlock()
		return nil, err
	}

	engineReq := ClarifyRequest{
		SituationText: dec.SituationText,
		SituationType: dec.SituationType,
		Canvas:        node.Clarify.Canvas.Clone(),
		Question:      *cand,
		Answer:        req.Answer,
		Asked:         cloneAsked(node.Clarify.Selector.Asked),
	}
	snapshotTick := node.Tick
	snapshotDecTick := dec.Tick
	unlock()

	// Slow external call, lock released.
	res, err := s.engine.Clarify(ctx, engineReq)
	if err != nil {
		return nil, fmt.Errorf("engine clarify: %w", err)
	}

	// Re-validate and apply. The decision tick also guards against
	// sibling mutations, such as a branch created mid-flight.
	unlock = s.locks.Lock(decisionID)
	defer unlock()

	fresh, err := s.getNode(ctx, tenantID, req.NodeID)
	if err != nil {
		return nil, err
	}
	freshDec, err := s.Get(ctx, tenantID, decisionID)
	if err != nil {
		return nil, err
	}
	if fresh.Tick != snapshotTick || freshDec.Tick != snapshotDecTick || fresh.Phase != PhaseClarify || fresh.Clarify == nil {
		s.discardStale(ctx, tenantID, decisionID, req.NodeID)
		return nil, ErrStaleNode
	}

	merged := canvas.Merge(fresh.Clarify.Canvas, res.Delta)
	state := &fresh.Clarify.Selector

	for _, nc := range res.NextCandidates {
		if findCandidate(state.Pool, nc.ID) == nil {
			state.Pool = append(state.Pool, nc)
		}
	}

	answered := *cand
	s.selector.RecordAnswer(state, answered, req.Answer, impactFields(res.Delta), merged)
	s.selector.Rescore(state.Pool, merged, state.Asked)

	stop := s.selector.ShouldStop(*state, merged)
	ready := stop.Stop
	reason := stop.Reason
	if !ready && res.ReadyForOptions {
		ready = true
		reason = question.StopSufficientInformation
	}

	var next *question.Candidate
	if !ready {
		next = s.selector.SelectNext(state.Pool, state.AskedIDs(), merged)
		if next == nil {
			ready = true
			reason = question.StopSufficientInformation
		} else {
			state.CurrentQuestionID = next.ID
		}
	}
	state.ReadyForOptions = ready
	state.StopReason = reason
	fresh.Clarify.Canvas = merged

	if err := s.persistNode(ctx, tenantID, fresh, snapshotTick); err != nil {
		return nil, err
	}

	s.logEvent(ctx, tenantID, &event.Entry{
		DecisionID: decisionID,
		NodeID:     &fresh.ID,
		Type:       event.TypeAnswerSubmitted,
		Summary:    fmt.Sprintf("answered %s on node %s", cand.ID, fresh.ID),
		Tick:       fresh.Tick,
	})
	if ready {
		s.logEvent(ctx, tenantID, &event.Entry{
			DecisionID: decisionID,
			NodeID:     &fresh.ID,
			Type:       event.TypeReadyForOptions,
			Summary:    fmt.Sprintf("node %s ready for options (%s)", fresh.ID, reason),
			Tick:       fresh.Tick,
		})
	}

	return &AnswerResult{
		Node:             fresh,
		AssistantMessage: res.AssistantMessage,
		NextQuestion:     next,
		ReadyForOptions:  ready,
		StopReason:       reason,
		Progress:         s.selector.Progress(merged),
	}, nil
}

// GenerateOptions advances clarify -> moves once the selector has
// signaled readiness. The option set comes from the engine. An empty
// canvas statement does not block the transition but flags the moves
// payload as degraded for downstream consumers.
func (s *Service) GenerateOptions(ctx context.Context, tenantID, nodeID string) (*Node, error) {
	node, err := s.getNode(ctx, tenantID, nodeID)
	if err != nil {
		return nil, err
	}
	decisionID := node.DecisionID

	unlock := s.locks.Lock(decisionID)
	node, err = s.getNode(ctx, tenantID, nodeID)
	if err != nil {
		unlock()
		return nil, err
	}
	if node.Phase != PhaseClarify || node.Clarify == nil {
		unlock()
		return nil, ErrInvalidPhase
	}
	if !node.Clarify.Selector.ReadyForOptions {
		unlock()
		return nil, ErrNotReadyForOptions
	}

	dec, err := s.Get(ctx, tenantID, decisionID)
	if err != nil {
		unlock()
		return nil, err
	}

	engineReq := OptionsRequest{
		SituationText: dec.SituationText,
		SituationType: dec.SituationType,
		Canvas:        node.Clarify.Canvas.Clone(),
	}
	snapshotTick := node.Tick
	snapshotDecTick := dec.Tick
	unlock()

	res, err := s.engine.Options(ctx, engineReq)
	if err != nil {
		return nil, fmt.Errorf("engine options: %w", err)
	}

	unlock = s.locks.Lock(decisionID)
	defer unlock()

	fresh, err := s.getNode(ctx, tenantID, nodeID)
	if err != nil {
		return nil, err
	}
	freshDec, err := s.Get(ctx, tenantID, decisionID)
	if err != nil {
		return nil, err
	}
	if fresh.Tick != snapshotTick || freshDec.Tick != snapshotDecTick || fresh.Phase != PhaseClarify || fresh.Clarify == nil {
		s.discardStale(ctx, tenantID, decisionID, nodeID)
		return nil, ErrStaleNode
	}

	clarify := fresh.Clarify
	fresh.Phase = PhaseMoves
	fresh.Moves = &MovesState{
		Canvas:     clarify.Canvas,
		Asked:      clarify.Selector.Asked,
		Options:    res.Options,
		StopReason: clarify.Selector.StopReason,
		Degraded:   clarify.Canvas.Statement == "",
	}
	fresh.Clarify = nil

	if err := s.persistNode(ctx, tenantID, fresh, snapshotTick); err != nil {
		return nil, err
	}

	s.logEvent(ctx, tenantID, &event.Entry{
		DecisionID: decisionID,
		NodeID:     &fresh.ID,
		Type:       event.TypeOptionsGenerated,
		Summary:    fmt.Sprintf("generated %d options for node %s", len(res.Options), fresh.ID),
		Tick:       fresh.Tick,
	})

	return fresh, nil
}

// ChooseOption advances moves -> execute by selecting one generated
// option. The option id must be among the node's generated options.
// chosen_option_id is recorded exactly once, during this transition.
func (s *Service) ChooseOption(ctx context.Context, tenantID string, req ChooseRequest) (*Node, error) {
	node, err := s.getNode(ctx, tenantID, req.NodeID)
	if err != nil {
		return nil, err
	}
	decisionID := node.DecisionID

	unlock := s.locks.Lock(decisionID)
	node, err = s.getNode(ctx, tenantID, req.NodeID)
	if err != nil {
		unlock()
		return nil, err
	}
	if node.Phase != PhaseMoves || node.Moves == nil {
		unlock()
		return nil, ErrInvalidPhase
	}
	chosen := FindOption(node.Moves.Options, req.OptionID)
	if chosen == nil {
		unlock()
		return nil, ErrUnknownOption
	}

	dec, err := s.Get(ctx, tenantID, decisionID)
	if err != nil {
		unlock()
		return nil, err
	}

	engineReq := PlanRequest{
		Canvas: node.Moves.Canvas.Clone(),
		Option: *chosen,
	}
	snapshotTick := node.Tick
	snapshotDecTick := dec.Tick
	unlock()

	res, err := s.engine.Plan(ctx, engineReq)
	if err != nil {
		return nil, fmt.Errorf("engine plan: %w", err)
	}

	unlock = s.locks.Lock(decisionID)
	defer unlock()

	fresh, err := s.getNode(ctx, tenantID, req.NodeID)
	if err != nil {
		return nil, err
	}
	freshDec, err := s.Get(ctx, tenantID, decisionID)
	if err != nil {
		return nil, err
	}
	if fresh.Tick != snapshotTick || freshDec.Tick != snapshotDecTick || fresh.Phase != PhaseMoves || fresh.Moves == nil {
		s.discardStale(ctx, tenantID, decisionID, req.NodeID)
		return nil, ErrStaleNode
	}

	plan := res.Plan
	plan.ChosenOptionID = req.OptionID
	plan.ChosenOptionTitle = chosen.Title

	moves := fresh.Moves
	fresh.Phase = PhaseExecute
	fresh.Execute = &ExecuteState{
		Canvas:         moves.Canvas,
		Options:        moves.Options,
		ChosenOptionID: req.OptionID,
		Plan:           &plan,
	}
	fresh.Moves = nil

	if err := s.persistNode(ctx, tenantID, fresh, snapshotTick); err != nil {
		return nil, err
	}

	s.logEvent(ctx, tenantID, &event.Entry{
		DecisionID: decisionID,
		NodeID:     &fresh.ID,
		Type:       event.TypeOptionChosen,
		Summary:    fmt.Sprintf("chose option %s on node %s", req.OptionID, fresh.ID),
		Tick:       fresh.Tick,
	})

	return fresh, nil
}

// persistNode bumps the decision tick and writes the node with the
// expected-tick check. Called with the decision lock held.
func (s *Service) persistNode(ctx context.Context, tenantID string, node *Node, expectedTick int64) error {
	if err := validateNodePayload(node); err != nil {
		return err
	}
	newTick, err := s.decisions.IncrementTick(ctx, tenantID, node.DecisionID)
	if err != nil {
		return fmt.Errorf("incrementing tick: %w", err)
	}
	node.Tick = newTick
	if err := s.nodes.Update(ctx, tenantID, node, expectedTick); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ErrStaleNode
		}
		return fmt.Errorf("updating node: %w", err)
	}
	return nil
}

func (s *Service) discardStale(ctx context.Context, tenantID, decisionID, nodeID string) {
	s.logEvent(ctx, tenantID, &event.Entry{
		DecisionID: decisionID,
		NodeID:     &nodeID,
		Type:       event.TypeStaleDiscarded,
		Summary:    fmt.Sprintf("discarded stale engine result for node %s", nodeID),
	})
}

func findCandidate(pool []question.Candidate, id string) *question.Candidate {
	for i := range pool {
		if pool[i].ID == id {
			return &pool[i]
		}
	}
	return nil
}

func impactFields(d canvas.Delta) []string {
	var fields []string
	if d.Statement != "" {
		fields = append(fields, "statement")
	}
	if len(d.ContextBullets) > 0 {
		fields = append(fields, "context")
	}
	if len(d.Constraints) > 0 {
		fields = append(fields, fmt.Sprintf("constraints (+%d)", len(d.Constraints)))
	}
	if len(d.Criteria) > 0 {
		fields = append(fields, fmt.Sprintf("criteria (+%d)", len(d.Criteria)))
	}
	if len(d.Risks) > 0 {
		fields = append(fields, fmt.Sprintf("risks (+%d)", len(d.Risks)))
	}
	if d.NextAction != "" {
		fields = append(fields, "next_action")
	}
	return fields
}
