package outcome_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/compasshq/compass-mcp/internal/domain/decision"
	. "github.com/compasshq/compass-mcp/internal/domain/outcome"
	"github.com/compasshq/compass-mcp/internal/repository"
	"github.com/compasshq/compass-mcp/internal/repository/mocks"
)

func TestComputeBrier(t *testing.T) {
	cases := []struct {
		name string
		p    float64
		ok   bool
		want float64
	}{
		{"confident and right", 0.7, true, 0.09},
		{"hedged and right to doubt", 0.3, false, 0.09},
		{"certain and right", 1.0, true, 0.0},
		{"certain and wrong", 0.0, true, 1.0},
		{"coin flip either way", 0.5, false, 0.25},
		{"clamped above", 1.7, true, 0.0},
		{"clamped below", -0.4, false, 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.InDelta(t, tc.want, ComputeBrier(tc.p, tc.ok), 1e-9)
		})
	}
}

func executeNode(p *float64) *decision.Node {
	return &decision.Node{
		ID:         "n1",
		DecisionID: "d1",
		Phase:      decision.PhaseExecute,
		Tick:       3,
		Execute: &decision.ExecuteState{
			Options: []decision.Option{
				{ID: "A", Title: "Commit now", PredictedProbability: p},
				{ID: "B", Title: "Commit in stages"},
			},
			ChosenOptionID: "A",
		},
	}
}

func TestCalibrator_LogOutcome(t *testing.T) {
	ctx := context.Background()
	p := 0.7

	outcomes := &mocks.OutcomeRepository{}
	nodes := &mocks.NodeRepository{}
	decisions := &mocks.DecisionRepository{}
	events := &mocks.EventRepository{}

	nodes.On("Get", ctx, "tenant1", "n1").Return(executeNode(&p), nil)
	outcomes.On("GetByNode", ctx, "tenant1", "n1").Return(nil, repository.ErrNotFound)
	outcomes.On("Create", ctx, "tenant1", mock.AnythingOfType("*outcome.Outcome")).Return(nil)
	decisions.On("UpdateStatus", ctx, "tenant1", "d1", decision.StatusResolved).Return(nil)
	events.On("Log", ctx, "tenant1", mock.AnythingOfType("*event.Entry")).Return(nil)

	cal := NewCalibrator(outcomes, nodes, decisions, events, nil, nil)

	sentiment := 1
	out, err := cal.LogOutcome(ctx, "tenant1", LogRequest{
		NodeID:        "n1",
		ProgressYesNo: true,
		Sentiment2h:   &sentiment,
		Notes:         "went well",
	})
	require.NoError(t, err)
	require.NotEmpty(t, out.ID)
	require.True(t, out.ProgressYesNo)
	require.NotNil(t, out.BrierScore)
	require.InDelta(t, 0.09, *out.BrierScore, 1e-9)
	require.InDelta(t, 0.7, *out.PredictedProb, 1e-9)

	decisions.AssertCalled(t, "UpdateStatus", ctx, "tenant1", "d1", decision.StatusResolved)
	events.AssertExpectations(t)
}

func TestCalibrator_LogOutcomeWithoutPrediction(t *testing.T) {
	ctx := context.Background()

	outcomes := &mocks.OutcomeRepository{}
	nodes := &mocks.NodeRepository{}
	decisions := &mocks.DecisionRepository{}

	nodes.On("Get", ctx, "tenant1", "n1").Return(executeNode(nil), nil)
	outcomes.On("GetByNode", ctx, "tenant1", "n1").Return(nil, repository.ErrNotFound)
	outcomes.On("Create", ctx, "tenant1", mock.AnythingOfType("*outcome.Outcome")).Return(nil)
	decisions.On("UpdateStatus", ctx, "tenant1", "d1", decision.StatusResolved).Return(nil)

	cal := NewCalibrator(outcomes, nodes, decisions, nil, nil, nil)

	out, err := cal.LogOutcome(ctx, "tenant1", LogRequest{NodeID: "n1", ProgressYesNo: false})
	require.NoError(t, err)
	require.Nil(t, out.BrierScore)
	require.Nil(t, out.PredictedProb)
}

func TestCalibrator_LogOutcomeTwice(t *testing.T) {
	ctx := context.Background()
	p := 0.6

	outcomes := &mocks.OutcomeRepository{}
	nodes := &mocks.NodeRepository{}

	nodes.On("Get", ctx, "tenant1", "n1").Return(executeNode(&p), nil)
	outcomes.On("GetByNode", ctx, "tenant1", "n1").Return(&Outcome{ID: "o1", NodeID: "n1"}, nil)

	cal := NewCalibrator(outcomes, nodes, nil, nil, nil, nil)

	_, err := cal.LogOutcome(ctx, "tenant1", LogRequest{NodeID: "n1", ProgressYesNo: true})
	require.ErrorIs(t, err, ErrAlreadyLogged)
	outcomes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCalibrator_LogOutcomeBeforeExecute(t *testing.T) {
	ctx := context.Background()

	nodes := &mocks.NodeRepository{}
	nodes.On("Get", ctx, "tenant1", "n1").Return(&decision.Node{
		ID:         "n1",
		DecisionID: "d1",
		Phase:      decision.PhaseClarify,
		Clarify:    &decision.ClarifyState{},
	}, nil)

	cal := NewCalibrator(&mocks.OutcomeRepository{}, nodes, nil, nil, nil, nil)

	_, err := cal.LogOutcome(ctx, "tenant1", LogRequest{NodeID: "n1", ProgressYesNo: true})
	require.ErrorIs(t, err, ErrNotInExecute)
}

func TestCalibrator_LogOutcomeValidation(t *testing.T) {
	ctx := context.Background()
	cal := NewCalibrator(&mocks.OutcomeRepository{}, &mocks.NodeRepository{}, nil, nil, nil, nil)

	_, err := cal.LogOutcome(ctx, "tenant1", LogRequest{})
	require.ErrorIs(t, err, ErrInvalidInput)

	tooHigh := 3
	_, err = cal.LogOutcome(ctx, "tenant1", LogRequest{NodeID: "n1", Sentiment2h: &tooHigh})
	require.ErrorIs(t, err, ErrInvalidSentiment)

	tooLow := -3
	_, err = cal.LogOutcome(ctx, "tenant1", LogRequest{NodeID: "n1", Sentiment24h: &tooLow})
	require.ErrorIs(t, err, ErrInvalidSentiment)
}

func TestCalibrator_LogOutcomeNodeMissing(t *testing.T) {
	ctx := context.Background()

	nodes := &mocks.NodeRepository{}
	nodes.On("Get", ctx, "tenant1", "missing").Return(nil, repository.ErrNotFound)

	cal := NewCalibrator(&mocks.OutcomeRepository{}, nodes, nil, nil, nil, nil)

	_, err := cal.LogOutcome(ctx, "tenant1", LogRequest{NodeID: "missing"})
	require.ErrorIs(t, err, decision.ErrNodeNotFound)
}

func TestCalibrator_GetByNode(t *testing.T) {
	ctx := context.Background()

	outcomes := &mocks.OutcomeRepository{}
	outcomes.On("GetByNode", ctx, "tenant1", "n1").Return(&Outcome{ID: "o1", NodeID: "n1"}, nil)
	outcomes.On("GetByNode", ctx, "tenant1", "missing").Return(nil, repository.ErrNotFound)

	cal := NewCalibrator(outcomes, &mocks.NodeRepository{}, nil, nil, nil, nil)

	out, err := cal.GetByNode(ctx, "tenant1", "n1")
	require.NoError(t, err)
	require.Equal(t, "o1", out.ID)

	_, err = cal.GetByNode(ctx, "tenant1", "missing")
	require.ErrorIs(t, err, ErrOutcomeNotFound)
}
