package decision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/compasshq/compass-mcp/internal/domain/event"
	"github.com/compasshq/compass-mcp/internal/domain/question"
	"github.com/compasshq/compass-mcp/internal/repository"
	"github.com/google/uuid"
)

// Service handles decision and node business logic. All mutating
// operations on one decision are serialized through a per-decision lock;
// engine calls happen outside the lock with tick re-validation when the
// result is applied.
type Service struct {
	decisions DecisionRepository
	nodes     NodeRepository
	nav       NavigationRepository
	events    EventRepository
	engine    Engine
	selector  *question.Selector
	generator *question.Generator
	locks     *KeyedMutex
	logger    *slog.Logger
}

// NewService creates a new decision service.
func NewService(
	decisions DecisionRepository,
	nodes NodeRepository,
	nav NavigationRepository,
	events EventRepository,
	eng Engine,
	locks *KeyedMutex,
	logger *slog.Logger,
) *Service {
	if locks == nil {
		locks = NewKeyedMutex()
	}
	return &Service{
		decisions: decisions,
		nodes:     nodes,
		nav:       nav,
		events:    events,
		engine:    eng,
		selector:  question.NewSelector(),
		generator: question.NewGenerator(),
		locks:     locks,
		logger:    logger,
	}
}

// Tune replaces the question selector with one built from t. Call before
// the service starts handling requests; selector swaps are not
// synchronized with in-flight operations.
func (s *Service) Tune(t question.Tuning) *Service {
	s.selector = question.NewTunedSelector(t)
	return s
}

// CreateRequest describes a decision creation request.
type CreateRequest struct {
	Title         string
	SituationText string
	SituationType string
}

// CreateResult carries the new decision and its root node.
type CreateResult struct {
	Decision *Decision
	Root     *Node
}

// Create creates a decision with a root node in clarify phase and an
// empty canvas. The initial question pool is generated and scored so the
// first question is available immediately.
func (s *Service) Create(ctx context.Context, tenantID string, req CreateRequest) (*CreateResult, error) {
	if err := ValidateCreateInput(req); err != nil {
		return nil, err
	}

	now := time.Now()
	dec := &Decision{
		ID:            uuid.NewString(),
		TenantID:      tenantID,
		Title:         req.Title,
		SituationText: req.SituationText,
		SituationType: req.SituationType,
		Status:        StatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.decisions.Create(ctx, tenantID, dec); err != nil {
		return nil, fmt.Errorf("creating decision: %w", err)
	}

	root, err := s.createRoot(ctx, tenantID, dec, now)
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, tenantID, &event.Entry{
		DecisionID: dec.ID,
		NodeID:     &root.ID,
		Type:       event.TypeDecisionCreated,
		Summary:    fmt.Sprintf("created decision %s", dec.ID),
		Tick:       root.Tick,
	})

	return &CreateResult{Decision: dec, Root: root}, nil
}

func (s *Service) createRoot(ctx context.Context, tenantID string, dec *Decision, now time.Time) (*Node, error) {
	state := s.newClarifyState(dec.SituationType)

	newTick, err := s.decisions.IncrementTick(ctx, tenantID, dec.ID)
	if err != nil {
		return nil, fmt.Errorf("incrementing tick: %w", err)
	}

	root := &Node{
		ID:         uuid.NewString(),
		DecisionID: dec.ID,
		Phase:      PhaseClarify,
		CreatedAt:  now,
		Tick:       newTick,
		Clarify:    state,
	}
	if err := s.nodes.Create(ctx, tenantID, root); err != nil {
		return nil, fmt.Errorf("creating root node: %w", err)
	}
	return root, nil
}

// newClarifyState builds a fresh clarify payload: empty canvas, template
// pool scored against it, first question pre-selected.
func (s *Service) newClarifyState(situationType string) *ClarifyState {
	cv := canvasEmpty()
	pool := s.generator.InitialPool(situationType, cv)
	s.selector.Rescore(pool, cv, nil)

	state := question.SelectorState{
		QuestionCap:     s.selector.QuestionCap(),
		Pool:            pool,
		LastUncertainty: 1 - s.selector.Progress(cv),
	}
	if first := s.selector.SelectNext(pool, nil, cv); first != nil {
		state.CurrentQuestionID = first.ID
	}
	return &ClarifyState{Canvas: cv, Selector: state}
}

// Get returns a decision by ID.
func (s *Service) Get(ctx context.Context, tenantID, id string) (*Decision, error) {
	dec, err := s.decisions.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDecisionNotFound
		}
		return nil, fmt.Errorf("getting decision: %w", err)
	}
	return dec, nil
}

// List returns decision summaries based on options.
func (s *Service) List(ctx context.Context, tenantID string, opts ListDecisionsOptions) ([]Summary, error) {
	return s.decisions.List(ctx, tenantID, opts)
}

// Resolve marks a decision resolved.
func (s *Service) Resolve(ctx context.Context, tenantID, id string) error {
	return s.setStatus(ctx, tenantID, id, StatusResolved, event.TypeDecisionResolved)
}

// Archive marks a decision archived.
func (s *Service) Archive(ctx context.Context, tenantID, id string) error {
	return s.setStatus(ctx, tenantID, id, StatusArchived, event.TypeDecisionArchived)
}

func (s *Service) setStatus(ctx context.Context, tenantID, id string, status Status, evType event.Type) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if _, err := s.Get(ctx, tenantID, id); err != nil {
		return err
	}
	if err := s.decisions.UpdateStatus(ctx, tenantID, id, status); err != nil {
		return fmt.Errorf("updating decision status: %w", err)
	}
	s.logEvent(ctx, tenantID, &event.Entry{
		DecisionID: id,
		Type:       evType,
		Summary:    fmt.Sprintf("decision %s now %s", id, status),
	})
	return nil
}

// Delete removes a decision and all descendant nodes. Only explicit user
// action reaches this.
func (s *Service) Delete(ctx context.Context, tenantID, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if _, err := s.Get(ctx, tenantID, id); err != nil {
		return err
	}
	if err := s.decisions.Delete(ctx, tenantID, id); err != nil {
		return fmt.Errorf("deleting decision: %w", err)
	}
	return nil
}

func (s *Service) getNode(ctx context.Context, tenantID, id string) (*Node, error) {
	node, err := s.nodes.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNodeNotFound
		}
		return nil, fmt.Errorf("getting node: %w", err)
	}
	return node, nil
}

func (s *Service) logEvent(ctx context.Context, tenantID string, entry *event.Entry) {
	if s.events == nil {
		return
	}
	if err := s.events.Log(ctx, tenantID, entry); err != nil && s.logger != nil {
		s.logger.Warn("event log failed", "type", entry.Type, "decision_id", entry.DecisionID, "error", err)
	}
}
