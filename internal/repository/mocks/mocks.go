// Package mocks provides testify mocks for the repository interfaces.
package mocks

import (
	"context"

	"github.com/compasshq/compass-mcp/internal/domain/decision"
	"github.com/compasshq/compass-mcp/internal/domain/event"
	"github.com/compasshq/compass-mcp/internal/domain/outcome"
	"github.com/stretchr/testify/mock"
)

// DecisionRepository is a mock for decision.DecisionRepository.
type DecisionRepository struct {
	mock.Mock
}

func (m *DecisionRepository) Create(ctx context.Context, tenantID string, dec *decision.Decision) error {
	args := m.Called(ctx, tenantID, dec)
	return args.Error(0)
}

func (m *DecisionRepository) Get(ctx context.Context, tenantID, id string) (*decision.Decision, error) {
	args := m.Called(ctx, tenantID, id)
	if dec, ok := args.Get(0).(*decision.Decision); ok {
		return dec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DecisionRepository) List(ctx context.Context, tenantID string, opts decision.ListDecisionsOptions) ([]decision.Summary, error) {
	args := m.Called(ctx, tenantID, opts)
	if list, ok := args.Get(0).([]decision.Summary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DecisionRepository) UpdateStatus(ctx context.Context, tenantID, id string, status decision.Status) error {
	args := m.Called(ctx, tenantID, id, status)
	return args.Error(0)
}

func (m *DecisionRepository) Delete(ctx context.Context, tenantID, id string) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *DecisionRepository) IncrementTick(ctx context.Context, tenantID, decisionID string) (int64, error) {
	args := m.Called(ctx, tenantID, decisionID)
	return args.Get(0).(int64), args.Error(1)
}

// NodeRepository is a mock for decision.NodeRepository.
type NodeRepository struct {
	mock.Mock
}

func (m *NodeRepository) Create(ctx context.Context, tenantID string, node *decision.Node) error {
	args := m.Called(ctx, tenantID, node)
	return args.Error(0)
}

func (m *NodeRepository) Get(ctx context.Context, tenantID, id string) (*decision.Node, error) {
	args := m.Called(ctx, tenantID, id)
	if node, ok := args.Get(0).(*decision.Node); ok {
		return node, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *NodeRepository) Update(ctx context.Context, tenantID string, node *decision.Node, expectedTick int64) error {
	args := m.Called(ctx, tenantID, node, expectedTick)
	return args.Error(0)
}

func (m *NodeRepository) ListByDecision(ctx context.Context, tenantID, decisionID string) ([]decision.Node, error) {
	args := m.Called(ctx, tenantID, decisionID)
	if list, ok := args.Get(0).([]decision.Node); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *NodeRepository) GetChildrenRefs(ctx context.Context, tenantID, parentID string) ([]decision.NodeRef, error) {
	args := m.Called(ctx, tenantID, parentID)
	if list, ok := args.Get(0).([]decision.NodeRef); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// NavigationRepository is a mock for decision.NavigationRepository.
type NavigationRepository struct {
	mock.Mock
}

func (m *NavigationRepository) SetFocus(ctx context.Context, tenantID, decisionID, nodeID string) error {
	args := m.Called(ctx, tenantID, decisionID, nodeID)
	return args.Error(0)
}

func (m *NavigationRepository) GetFocus(ctx context.Context, tenantID, decisionID string) (string, error) {
	args := m.Called(ctx, tenantID, decisionID)
	return args.String(0), args.Error(1)
}

// OutcomeRepository is a mock for outcome.Repository.
type OutcomeRepository struct {
	mock.Mock
}

func (m *OutcomeRepository) Create(ctx context.Context, tenantID string, out *outcome.Outcome) error {
	args := m.Called(ctx, tenantID, out)
	return args.Error(0)
}

func (m *OutcomeRepository) GetByNode(ctx context.Context, tenantID, nodeID string) (*outcome.Outcome, error) {
	args := m.Called(ctx, tenantID, nodeID)
	if out, ok := args.Get(0).(*outcome.Outcome); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

// EventRepository is a mock for the event log repository.
type EventRepository struct {
	mock.Mock
}

func (m *EventRepository) Log(ctx context.Context, tenantID string, entry *event.Entry) error {
	args := m.Called(ctx, tenantID, entry)
	return args.Error(0)
}

func (m *EventRepository) List(ctx context.Context, tenantID string, opts event.ListOptions) ([]event.Entry, error) {
	args := m.Called(ctx, tenantID, opts)
	if list, ok := args.Get(0).([]event.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// SearchRepository is a mock for the decision search repository.
type SearchRepository struct {
	mock.Mock
}

func (m *SearchRepository) Search(ctx context.Context, tenantID, query string, opts decision.SearchOptions) ([]decision.SearchResult, error) {
	args := m.Called(ctx, tenantID, query, opts)
	if list, ok := args.Get(0).([]decision.SearchResult); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// Engine is a mock for decision.Engine.
type Engine struct {
	mock.Mock
}

func (m *Engine) Clarify(ctx context.Context, req decision.ClarifyRequest) (*decision.ClarifyResult, error) {
	args := m.Called(ctx, req)
	if res, ok := args.Get(0).(*decision.ClarifyResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Engine) Options(ctx context.Context, req decision.OptionsRequest) (*decision.OptionsResult, error) {
	args := m.Called(ctx, req)
	if res, ok := args.Get(0).(*decision.OptionsResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Engine) Plan(ctx context.Context, req decision.PlanRequest) (*decision.PlanResult, error) {
	args := m.Called(ctx, req)
	if res, ok := args.Get(0).(*decision.PlanResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}
