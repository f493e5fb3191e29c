package decision_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/compasshq/compass-mcp/internal/domain/canvas"
	"github.com/compasshq/compass-mcp/internal/domain/decision"
	"github.com/compasshq/compass-mcp/internal/domain/question"
	"github.com/compasshq/compass-mcp/internal/repository"
	"github.com/compasshq/compass-mcp/internal/repository/mocks"
)

func TestService_CreateBranchValidation(t *testing.T) {
	svc := decision.NewService(&mocks.DecisionRepository{}, &mocks.NodeRepository{}, nil, nil, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.CreateBranch(ctx, "tenant1", decision.BranchRequest{Reason: decision.BranchNewInfo})
	require.ErrorIs(t, err, decision.ErrInvalidInput)

	_, err = svc.CreateBranch(ctx, "tenant1", decision.BranchRequest{ParentNodeID: "n1", Reason: "because"})
	require.ErrorIs(t, err, decision.ErrInvalidInput)
}

func TestService_CreateBranchRewindsToClarify(t *testing.T) {
	ctx := context.Background()

	decisions := &mocks.DecisionRepository{}
	nodes := &mocks.NodeRepository{}

	parent := movesNode(6)
	nodes.On("Get", ctx, "tenant1", "n1").Return(parent, nil)
	decisions.On("Get", ctx, "tenant1", "d1").Return(&decision.Decision{ID: "d1", SituationType: "career"}, nil)
	decisions.On("IncrementTick", ctx, "tenant1", "d1").Return(int64(7), nil)
	nodes.On("Create", ctx, "tenant1", mock.AnythingOfType("*decision.Node")).Return(nil)

	svc := decision.NewService(decisions, nodes, nil, nil, nil, nil, nil)

	child, err := svc.CreateBranch(ctx, "tenant1", decision.BranchRequest{
		ParentNodeID: "n1",
		Reason:       decision.BranchChangedConstraint,
		Details:      "budget changed",
	})
	require.NoError(t, err)
	require.Equal(t, "n1", *child.ParentID)
	require.Equal(t, decision.BranchChangedConstraint, child.BranchReason)
	require.Equal(t, "budget changed", child.BranchDetails)
	require.Equal(t, int64(7), child.Tick)

	// The branch restarts clarification over what is already known.
	require.Equal(t, decision.PhaseClarify, child.Phase)
	require.Nil(t, child.Moves)
	require.NotNil(t, child.Clarify)
	require.Equal(t, "whether to switch jobs", child.Clarify.Canvas.Statement)
	require.NotEmpty(t, child.Clarify.Selector.Pool)
	require.NotEmpty(t, child.Clarify.Selector.CurrentQuestionID)
	require.Zero(t, child.Clarify.Selector.QuestionsAsked)

	// The child canvas is a copy, not a view of the parent's.
	child.Clarify.Canvas.Statement = "mutated"
	require.Equal(t, "whether to switch jobs", parent.Moves.Canvas.Statement)
}

func TestService_CreateBranchSamePhaseDeepClones(t *testing.T) {
	ctx := context.Background()

	decisions := &mocks.DecisionRepository{}
	nodes := &mocks.NodeRepository{}

	parent := movesNode(6)
	parent.Moves.Asked = []question.Asked{{
		Question:     question.Candidate{ID: "q-statement", Choices: []string{"yes", "no"}},
		Answer:       question.Answer{QuestionID: "q-statement", Value: "yes"},
		CanvasImpact: []string{"statement"},
	}}
	nodes.On("Get", ctx, "tenant1", "n1").Return(parent, nil)
	decisions.On("Get", ctx, "tenant1", "d1").Return(&decision.Decision{ID: "d1"}, nil)
	decisions.On("IncrementTick", ctx, "tenant1", "d1").Return(int64(7), nil)
	nodes.On("Create", ctx, "tenant1", mock.AnythingOfType("*decision.Node")).Return(nil)

	svc := decision.NewService(decisions, nodes, nil, nil, nil, nil, nil)

	child, err := svc.CreateBranch(ctx, "tenant1", decision.BranchRequest{
		ParentNodeID: "n1",
		Reason:       decision.BranchAddOption,
	})
	require.NoError(t, err)
	require.Equal(t, decision.PhaseMoves, child.Phase)
	require.NotNil(t, child.Moves)
	require.Len(t, child.Moves.Options, 2)

	child.Moves.Options[0].Title = "mutated"
	child.Moves.Options[0].Steps[0] = "mutated"
	require.Equal(t, "Take the offer", parent.Moves.Options[0].Title)
	require.Equal(t, "Sign", parent.Moves.Options[0].Steps[0])

	// The asked history is deep, including slices nested in each entry.
	child.Moves.Asked[0].Question.Choices[0] = "mutated"
	child.Moves.Asked[0].CanvasImpact[0] = "mutated"
	require.Equal(t, "yes", parent.Moves.Asked[0].Question.Choices[0])
	require.Equal(t, "statement", parent.Moves.Asked[0].CanvasImpact[0])
}

func TestService_CreateBranchFromClarifyKeepsSelector(t *testing.T) {
	ctx := context.Background()

	decisions := &mocks.DecisionRepository{}
	nodes := &mocks.NodeRepository{}

	parent := clarifyNode(3)
	parent.Clarify.Canvas = canvas.State{Statement: "whether to switch jobs"}
	parent.Clarify.Selector.Asked = []question.Asked{{
		Question: parent.Clarify.Selector.Pool[0],
		Answer:   question.Answer{QuestionID: "q-statement", Value: "whether to switch jobs"},
	}}
	parent.Clarify.Selector.QuestionsAsked = 1

	nodes.On("Get", ctx, "tenant1", "n1").Return(parent, nil)
	decisions.On("Get", ctx, "tenant1", "d1").Return(&decision.Decision{ID: "d1"}, nil)
	decisions.On("IncrementTick", ctx, "tenant1", "d1").Return(int64(4), nil)
	nodes.On("Create", ctx, "tenant1", mock.AnythingOfType("*decision.Node")).Return(nil)

	svc := decision.NewService(decisions, nodes, nil, nil, nil, nil, nil)

	child, err := svc.CreateBranch(ctx, "tenant1", decision.BranchRequest{
		ParentNodeID: "n1",
		Reason:       decision.BranchNewInfo,
	})
	require.NoError(t, err)
	require.Equal(t, decision.PhaseClarify, child.Phase)

	// Continuing clarification keeps the conversation state rather than
	// starting a fresh pool.
	sel := child.Clarify.Selector
	require.Equal(t, 1, sel.QuestionsAsked)
	require.Len(t, sel.Asked, 1)
	require.Len(t, sel.Pool, len(parent.Clarify.Selector.Pool))

	child.Clarify.Selector.Pool[0].Text = "mutated"
	require.Equal(t, "What are you deciding?", parent.Clarify.Selector.Pool[0].Text)
}

func TestService_GetPath(t *testing.T) {
	ctx := context.Background()

	rootID := "root"
	midID := "mid"
	nodes := &mocks.NodeRepository{}
	nodes.On("Get", ctx, "tenant1", "leaf").Return(&decision.Node{ID: "leaf", DecisionID: "d1", ParentID: &midID}, nil)
	nodes.On("Get", ctx, "tenant1", "mid").Return(&decision.Node{ID: "mid", DecisionID: "d1", ParentID: &rootID}, nil)
	nodes.On("Get", ctx, "tenant1", "root").Return(&decision.Node{ID: "root", DecisionID: "d1"}, nil)

	svc := decision.NewService(&mocks.DecisionRepository{}, nodes, nil, nil, nil, nil, nil)

	path, err := svc.GetPath(ctx, "tenant1", "leaf")
	require.NoError(t, err)
	require.Len(t, path, 3)
	require.Equal(t, "root", path[0].ID)
	require.Equal(t, "mid", path[1].ID)
	require.Equal(t, "leaf", path[2].ID)
}

func TestService_GetPathDetectsCycle(t *testing.T) {
	ctx := context.Background()

	aID := "a"
	bID := "b"
	nodes := &mocks.NodeRepository{}
	nodes.On("Get", ctx, "tenant1", "a").Return(&decision.Node{ID: "a", DecisionID: "d1", ParentID: &bID}, nil)
	nodes.On("Get", ctx, "tenant1", "b").Return(&decision.Node{ID: "b", DecisionID: "d1", ParentID: &aID}, nil)

	svc := decision.NewService(&mocks.DecisionRepository{}, nodes, nil, nil, nil, nil, nil)

	_, err := svc.GetPath(ctx, "tenant1", "a")
	require.Error(t, err)
	require.Contains(t, err.Error(), "cycle")
}

func TestService_GetSiblings(t *testing.T) {
	ctx := context.Background()

	rootID := "root"
	nodes := &mocks.NodeRepository{}
	nodes.On("Get", ctx, "tenant1", "n1").Return(&decision.Node{ID: "n1", DecisionID: "d1", ParentID: &rootID}, nil)
	nodes.On("GetChildrenRefs", ctx, "tenant1", "root").Return([]decision.NodeRef{
		{ID: "n1", DecisionID: "d1"},
		{ID: "n2", DecisionID: "d1"},
		{ID: "n3", DecisionID: "d1"},
	}, nil)

	svc := decision.NewService(&mocks.DecisionRepository{}, nodes, nil, nil, nil, nil, nil)

	refs, err := svc.GetSiblings(ctx, "tenant1", "n1")
	require.NoError(t, err)
	require.Len(t, refs, 2)
	for _, ref := range refs {
		require.NotEqual(t, "n1", ref.ID)
	}
}

func TestService_GetSiblingsOfRoot(t *testing.T) {
	ctx := context.Background()

	nodes := &mocks.NodeRepository{}
	nodes.On("Get", ctx, "tenant1", "root").Return(&decision.Node{ID: "root", DecisionID: "d1"}, nil)

	svc := decision.NewService(&mocks.DecisionRepository{}, nodes, nil, nil, nil, nil, nil)

	refs, err := svc.GetSiblings(ctx, "tenant1", "root")
	require.NoError(t, err)
	require.Nil(t, refs)
	nodes.AssertNotCalled(t, "GetChildrenRefs", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_ActiveNodeFollowsFocus(t *testing.T) {
	ctx := context.Background()

	decisions := &mocks.DecisionRepository{}
	nodes := &mocks.NodeRepository{}
	nav := &mocks.NavigationRepository{}

	decisions.On("Get", ctx, "tenant1", "d1").Return(&decision.Decision{ID: "d1"}, nil)
	nav.On("GetFocus", ctx, "tenant1", "d1").Return("n2", nil)
	nodes.On("Get", ctx, "tenant1", "n2").Return(&decision.Node{ID: "n2", DecisionID: "d1"}, nil)

	svc := decision.NewService(decisions, nodes, nav, nil, nil, nil, nil)

	node, err := svc.ActiveNode(ctx, "tenant1", "d1")
	require.NoError(t, err)
	require.Equal(t, "n2", node.ID)
	nodes.AssertNotCalled(t, "ListByDecision", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_ActiveNodeStaleFocusFallsBack(t *testing.T) {
	ctx := context.Background()

	rootID := "root"
	decisions := &mocks.DecisionRepository{}
	nodes := &mocks.NodeRepository{}
	nav := &mocks.NavigationRepository{}

	decisions.On("Get", ctx, "tenant1", "d1").Return(&decision.Decision{ID: "d1"}, nil)
	nav.On("GetFocus", ctx, "tenant1", "d1").Return("deleted", nil)
	nodes.On("Get", ctx, "tenant1", "deleted").Return(nil, repository.ErrNotFound)
	nodes.On("ListByDecision", ctx, "tenant1", "d1").Return([]decision.Node{
		{ID: "root", DecisionID: "d1", Tick: 1},
		{ID: "n1", DecisionID: "d1", ParentID: &rootID, Tick: 2},
		{ID: "n2", DecisionID: "d1", ParentID: &rootID, Tick: 4},
	}, nil)

	svc := decision.NewService(decisions, nodes, nav, nil, nil, nil, nil)

	// The root has children, so the newest childless node wins.
	node, err := svc.ActiveNode(ctx, "tenant1", "d1")
	require.NoError(t, err)
	require.Equal(t, "n2", node.ID)
}

func TestService_ActiveNodePrefersNewestCreated(t *testing.T) {
	ctx := context.Background()

	rootID := "root"
	decisions := &mocks.DecisionRepository{}
	nodes := &mocks.NodeRepository{}
	nav := &mocks.NavigationRepository{}

	// n1 carries a higher tick (it was mutated recently), but n2 was
	// created later. Creation time decides, not tick.
	base := time.Now()
	decisions.On("Get", ctx, "tenant1", "d1").Return(&decision.Decision{ID: "d1"}, nil)
	nav.On("GetFocus", ctx, "tenant1", "d1").Return("", repository.ErrNotFound)
	nodes.On("ListByDecision", ctx, "tenant1", "d1").Return([]decision.Node{
		{ID: "root", DecisionID: "d1", CreatedAt: base, Tick: 1},
		{ID: "n1", DecisionID: "d1", ParentID: &rootID, CreatedAt: base.Add(time.Minute), Tick: 9},
		{ID: "n2", DecisionID: "d1", ParentID: &rootID, CreatedAt: base.Add(2 * time.Minute), Tick: 3},
	}, nil)

	svc := decision.NewService(decisions, nodes, nav, nil, nil, nil, nil)

	node, err := svc.ActiveNode(ctx, "tenant1", "d1")
	require.NoError(t, err)
	require.Equal(t, "n2", node.ID)
}

func TestService_ActiveNodeWithoutFocus(t *testing.T) {
	ctx := context.Background()

	decisions := &mocks.DecisionRepository{}
	nodes := &mocks.NodeRepository{}
	nav := &mocks.NavigationRepository{}

	decisions.On("Get", ctx, "tenant1", "d1").Return(&decision.Decision{ID: "d1"}, nil)
	nav.On("GetFocus", ctx, "tenant1", "d1").Return("", repository.ErrNotFound)
	nodes.On("ListByDecision", ctx, "tenant1", "d1").Return([]decision.Node{
		{ID: "root", DecisionID: "d1", Tick: 1},
	}, nil)

	svc := decision.NewService(decisions, nodes, nav, nil, nil, nil, nil)

	node, err := svc.ActiveNode(ctx, "tenant1", "d1")
	require.NoError(t, err)
	require.Equal(t, "root", node.ID)
}

func TestService_ActiveNodeEmptyDecision(t *testing.T) {
	ctx := context.Background()

	decisions := &mocks.DecisionRepository{}
	nodes := &mocks.NodeRepository{}

	decisions.On("Get", ctx, "tenant1", "d1").Return(&decision.Decision{ID: "d1"}, nil)
	nodes.On("ListByDecision", ctx, "tenant1", "d1").Return([]decision.Node{}, nil)

	svc := decision.NewService(decisions, nodes, nil, nil, nil, nil, nil)

	_, err := svc.ActiveNode(ctx, "tenant1", "d1")
	require.ErrorIs(t, err, decision.ErrNodeNotFound)
}

func TestService_NavigateTo(t *testing.T) {
	ctx := context.Background()

	nodes := &mocks.NodeRepository{}
	nav := &mocks.NavigationRepository{}

	nodes.On("Get", ctx, "tenant1", "n2").Return(&decision.Node{ID: "n2", DecisionID: "d1"}, nil)
	nav.On("SetFocus", ctx, "tenant1", "d1", "n2").Return(nil)

	svc := decision.NewService(&mocks.DecisionRepository{}, nodes, nav, nil, nil, nil, nil)

	node, err := svc.NavigateTo(ctx, "tenant1", "n2")
	require.NoError(t, err)
	require.Equal(t, "n2", node.ID)
	nav.AssertCalled(t, "SetFocus", ctx, "tenant1", "d1", "n2")
}
