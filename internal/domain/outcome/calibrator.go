package outcome

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/compasshq/compass-mcp/internal/domain/decision"
	"github.com/compasshq/compass-mcp/internal/domain/event"
	"github.com/compasshq/compass-mcp/internal/repository"
	"github.com/google/uuid"
)

// Calibrator scores prediction accuracy once an outcome is known.
type Calibrator struct {
	outcomes  Repository
	nodes     NodeReader
	decisions DecisionResolver
	events    event.Repository
	locks     *decision.KeyedMutex
	logger    *slog.Logger
}

// NewCalibrator creates a new calibrator. The keyed mutex must be the
// same instance the decision service uses, so outcome logging serializes
// with other mutations on the decision.
func NewCalibrator(
	outcomes Repository,
	nodes NodeReader,
	decisions DecisionResolver,
	events event.Repository,
	locks *decision.KeyedMutex,
	logger *slog.Logger,
) *Calibrator {
	if locks == nil {
		locks = decision.NewKeyedMutex()
	}
	return &Calibrator{
		outcomes:  outcomes,
		nodes:     nodes,
		decisions: decisions,
		events:    events,
		locks:     locks,
		logger:    logger,
	}
}

// ComputeBrier returns (p - actual)^2 with p clamped to [0, 1].
// Range [0, 1], lower is better calibration.
func ComputeBrier(predictedProbability float64, actualSuccess bool) float64 {
	p := predictedProbability
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	actual := 0.0
	if actualSuccess {
		actual = 1.0
	}
	diff := p - actual
	return diff * diff
}

// LogOutcome records the outcome for an execute-phase node, computes the
// Brier score from the chosen option's predicted probability when the
// engine supplied one, and freezes the record. Logging twice, or logging
// on a node that has not reached execute, is an invalid-state error.
func (c *Calibrator) LogOutcome(ctx context.Context, tenantID string, req LogRequest) (*Outcome, error) {
	if req.NodeID == "" {
		return nil, ErrInvalidInput
	}
	if err := validateSentiment(req.Sentiment2h); err != nil {
		return nil, err
	}
	if err := validateSentiment(req.Sentiment24h); err != nil {
		return nil, err
	}

	node, err := c.getNode(ctx, tenantID, req.NodeID)
	if err != nil {
		return nil, err
	}

	unlock := c.locks.Lock(node.DecisionID)
	defer unlock()

	node, err = c.getNode(ctx, tenantID, req.NodeID)
	if err != nil {
		return nil, err
	}
	if node.Phase != decision.PhaseExecute || node.Execute == nil {
		return nil, ErrNotInExecute
	}

	existing, err := c.outcomes.GetByNode(ctx, tenantID, req.NodeID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("checking existing outcome: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyLogged
	}

	out := &Outcome{
		ID:            uuid.NewString(),
		NodeID:        req.NodeID,
		ProgressYesNo: req.ProgressYesNo,
		Sentiment2h:   req.Sentiment2h,
		Sentiment24h:  req.Sentiment24h,
		Notes:         req.Notes,
		CreatedAt:     time.Now(),
	}
	if chosen := decision.FindOption(node.Execute.Options, node.Execute.ChosenOptionID); chosen != nil && chosen.PredictedProbability != nil {
		p := *chosen.PredictedProbability
		brier := ComputeBrier(p, req.ProgressYesNo)
		out.PredictedProb = &p
		out.BrierScore = &brier
	}

	if err := c.outcomes.Create(ctx, tenantID, out); err != nil {
		return nil, fmt.Errorf("creating outcome: %w", err)
	}

	if c.decisions != nil {
		if err := c.decisions.UpdateStatus(ctx, tenantID, node.DecisionID, decision.StatusResolved); err != nil {
			return nil, fmt.Errorf("resolving decision: %w", err)
		}
	}

	if c.events != nil {
		_ = c.events.Log(ctx, tenantID, &event.Entry{
			DecisionID: node.DecisionID,
			NodeID:     &node.ID,
			Type:       event.TypeOutcomeLogged,
			Summary:    fmt.Sprintf("outcome logged for node %s", node.ID),
			CreatedAt:  out.CreatedAt,
			Tick:       node.Tick,
		})
	}

	return out, nil
}

// GetByNode returns the outcome for a node, if any.
func (c *Calibrator) GetByNode(ctx context.Context, tenantID, nodeID string) (*Outcome, error) {
	out, err := c.outcomes.GetByNode(ctx, tenantID, nodeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOutcomeNotFound
		}
		return nil, fmt.Errorf("getting outcome: %w", err)
	}
	return out, nil
}

func (c *Calibrator) getNode(ctx context.Context, tenantID, id string) (*decision.Node, error) {
	node, err := c.nodes.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, decision.ErrNodeNotFound
		}
		return nil, fmt.Errorf("getting node: %w", err)
	}
	return node, nil
}

func validateSentiment(s *int) error {
	if s == nil {
		return nil
	}
	if *s < -2 || *s > 2 {
		return ErrInvalidSentiment
	}
	return nil
}
