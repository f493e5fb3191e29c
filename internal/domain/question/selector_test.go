package question

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/compasshq/compass-mcp/internal/domain/canvas"
)

func TestSelector_SelectNextHighestVOI(t *testing.T) {
	sel := NewSelector()
	pool := []Candidate{
		{ID: "low", VOIScore: 30},
		{ID: "high", VOIScore: 80},
		{ID: "mid", VOIScore: 50},
	}

	next := sel.SelectNext(pool, nil, canvas.State{})
	require.NotNil(t, next)
	require.Equal(t, "high", next.ID)
}

func TestSelector_SelectNextTieBreaksByPriority(t *testing.T) {
	sel := NewSelector()
	pool := []Candidate{
		{ID: "a", VOIScore: 70, Priority: 40},
		{ID: "b", VOIScore: 70, Priority: 90},
		{ID: "c", VOIScore: 70, Priority: 90}, // same as b, insertion order keeps b
	}

	next := sel.SelectNext(pool, nil, canvas.State{})
	require.Equal(t, "b", next.ID)
}

func TestSelector_SelectNextSkipsAskedAndExhausts(t *testing.T) {
	sel := NewSelector()
	pool := []Candidate{
		{ID: "a", VOIScore: 90},
		{ID: "b", VOIScore: 50},
	}

	next := sel.SelectNext(pool, map[string]bool{"a": true}, canvas.State{})
	require.Equal(t, "b", next.ID)

	next = sel.SelectNext(pool, map[string]bool{"a": true, "b": true}, canvas.State{})
	require.Nil(t, next)
}

func TestSelector_SelectNextReturnsCopy(t *testing.T) {
	sel := NewSelector()
	pool := []Candidate{{ID: "a", VOIScore: 90, Choices: []string{"yes", "no"}}}

	next := sel.SelectNext(pool, nil, canvas.State{})
	next.Text = "mutated"
	next.Choices[0] = "mutated"

	require.Empty(t, pool[0].Text)
	require.Equal(t, "yes", pool[0].Choices[0])
}

func TestSelector_RescoreIsDeterministic(t *testing.T) {
	sel := NewSelector()
	cv := canvas.State{Statement: "stay or switch"}
	pool1 := []Candidate{
		{ID: "a", TargetsCanvasField: FieldCriteria},
		{ID: "b", TargetsCanvasField: FieldConstraints},
	}
	pool2 := append([]Candidate(nil), pool1...)

	sel.Rescore(pool1, cv, nil)
	sel.Rescore(pool2, cv, nil)

	require.Equal(t, pool1, pool2)
	require.NotZero(t, pool1[0].VOIScore)
}

func TestSelector_RecordAnswer(t *testing.T) {
	sel := NewSelector()
	state := SelectorState{
		QuestionCap:       DefaultQuestionCap,
		LastUncertainty:   1.0,
		CurrentQuestionID: "q1",
	}
	q := Candidate{ID: "q1", TargetsCanvasField: FieldStatement}
	cv := canvas.State{Statement: "stay or switch"}

	sel.RecordAnswer(&state, q, Answer{QuestionID: "q1", Value: "stay or switch"}, []string{"statement"}, cv)

	require.Equal(t, 1, state.QuestionsAsked)
	require.Len(t, state.Asked, 1)
	require.Equal(t, []string{"statement"}, state.Asked[0].CanvasImpact)
	require.Empty(t, state.CurrentQuestionID)
	require.Len(t, state.UncertaintyHistory, 1)
	// Filling the statement reduced uncertainty by its 0.25 share.
	require.InDelta(t, 0.25, state.UncertaintyHistory[0], 1e-9)
	require.InDelta(t, 0.75, state.LastUncertainty, 1e-9)
}

func TestSelector_ShouldStopQuestionCap(t *testing.T) {
	sel := NewSelector()
	state := SelectorState{QuestionCap: 2, QuestionsAsked: 2}

	decision := sel.ShouldStop(state, canvas.State{})
	require.True(t, decision.Stop)
	require.Equal(t, StopQuestionCap, decision.Reason)
}

func TestSelector_ShouldStopDiminishingReturns(t *testing.T) {
	sel := NewSelector()
	state := SelectorState{
		QuestionCap:        DefaultQuestionCap,
		QuestionsAsked:     3,
		UncertaintyHistory: []float64{0.05, 0.02, 0.01},
	}

	decision := sel.ShouldStop(state, canvas.State{})
	require.True(t, decision.Stop)
	require.Equal(t, StopDiminishingReturns, decision.Reason)
}

func TestSelector_Tuning(t *testing.T) {
	sel := NewTunedSelector(Tuning{QuestionCap: 2, DiminishingWindow: 2, DiminishingThreshold: 0.5})
	require.Equal(t, 2, sel.QuestionCap())

	// A shorter window and higher threshold make the diminishing-returns
	// check fire after two modest reductions.
	state := SelectorState{
		QuestionCap:        DefaultQuestionCap,
		QuestionsAsked:     2,
		UncertaintyHistory: []float64{0.3, 0.2},
	}
	decision := sel.ShouldStop(state, canvas.State{})
	require.True(t, decision.Stop)
	require.Equal(t, StopDiminishingReturns, decision.Reason)

	// Default tuning would have kept going here.
	require.False(t, NewSelector().ShouldStop(state, canvas.State{}).Stop)
}

func TestSelector_ZeroTuningFallsBackToDefaults(t *testing.T) {
	require.Equal(t, DefaultQuestionCap, NewTunedSelector(Tuning{}).QuestionCap())
}

func TestSelector_ShouldStopSufficientInformation(t *testing.T) {
	sel := NewSelector()
	q1 := Candidate{ID: "q1", CriticalVariable: true}
	q2 := Candidate{ID: "q2"}
	state := SelectorState{
		QuestionCap:    DefaultQuestionCap,
		QuestionsAsked: 2,
		Pool:           []Candidate{q1, q2},
		Asked: []Asked{
			{Question: q1, Answer: Answer{QuestionID: "q1"}},
			{Question: q2, Answer: Answer{QuestionID: "q2"}},
		},
		UncertaintyHistory: []float64{0.4, 0.3},
	}

	decision := sel.ShouldStop(state, canvas.State{})
	require.True(t, decision.Stop)
	require.Equal(t, StopSufficientInformation, decision.Reason)
}

func TestSelector_ShouldStopKeepsGoing(t *testing.T) {
	sel := NewSelector()
	state := SelectorState{
		QuestionCap:    DefaultQuestionCap,
		QuestionsAsked: 1,
		Pool: []Candidate{
			{ID: "q1", CriticalVariable: true},
			{ID: "q2"},
		},
		Asked:              []Asked{{Question: Candidate{ID: "q2"}, Answer: Answer{QuestionID: "q2"}}},
		UncertaintyHistory: []float64{0.4},
	}

	require.False(t, sel.ShouldStop(state, canvas.State{}).Stop)
}

func TestSelector_CapFiresBeforeDiminishingReturns(t *testing.T) {
	sel := NewSelector()
	state := SelectorState{
		QuestionCap:        3,
		QuestionsAsked:     3,
		UncertaintyHistory: []float64{0.01, 0.01, 0.01},
	}

	decision := sel.ShouldStop(state, canvas.State{})
	require.True(t, decision.Stop)
	require.Equal(t, StopQuestionCap, decision.Reason)
}

func TestSelectorState_Clone(t *testing.T) {
	state := SelectorState{
		Pool: []Candidate{{ID: "q1", Choices: []string{"yes", "no"}}},
		Asked: []Asked{{
			Question:     Candidate{ID: "q0", Choices: []string{"a", "b"}},
			CanvasImpact: []string{"statement"},
		}},
		UncertaintyHistory: []float64{0.3},
	}

	clone := state.Clone()
	clone.Pool[0].ID = "mutated"
	clone.Pool[0].Choices[0] = "mutated"
	clone.Asked[0].Question.ID = "mutated"
	clone.Asked[0].Question.Choices[0] = "mutated"
	clone.Asked[0].CanvasImpact[0] = "mutated"
	clone.UncertaintyHistory[0] = 9

	require.Equal(t, "q1", state.Pool[0].ID)
	require.Equal(t, "yes", state.Pool[0].Choices[0])
	require.Equal(t, "q0", state.Asked[0].Question.ID)
	require.Equal(t, "a", state.Asked[0].Question.Choices[0])
	require.Equal(t, "statement", state.Asked[0].CanvasImpact[0])
	require.InDelta(t, 0.3, state.UncertaintyHistory[0], 1e-9)
}

func TestGenerator_InitialPool(t *testing.T) {
	gen := NewGenerator()

	pool := gen.InitialPool("career", canvas.State{})

	ids := make(map[string]int)
	for _, q := range pool {
		ids[q.ID]++
	}
	for id, n := range ids {
		require.Equal(t, 1, n, "duplicate candidate %s", id)
	}
	require.Contains(t, ids, "career_deadline")
	require.Contains(t, ids, "core_statement")
	require.Contains(t, ids, "universal_reversibility")

	// Templates come before critical-field and universal questions.
	require.Equal(t, "career_deadline", pool[0].ID)
}

func TestGenerator_InitialPoolUnknownType(t *testing.T) {
	gen := NewGenerator()

	pool := gen.InitialPool("", canvas.State{Statement: "already framed"})

	ids := make(map[string]bool)
	for _, q := range pool {
		ids[q.ID] = true
	}
	require.NotContains(t, ids, "core_statement")
	require.True(t, ids["core_criteria"])
	require.True(t, ids["universal_constraints"])
}

func TestGenerator_PoolIsDeterministic(t *testing.T) {
	gen := NewGenerator()

	a := gen.InitialPool("financial", canvas.State{})
	b := gen.InitialPool("financial", canvas.State{})
	require.Equal(t, a, b)
}

func TestSortByVOI(t *testing.T) {
	pool := []Candidate{
		{ID: "a", VOIScore: 10, Priority: 5},
		{ID: "b", VOIScore: 90, Priority: 1},
		{ID: "c", VOIScore: 10, Priority: 9},
	}

	sorted := SortByVOI(pool)
	require.Equal(t, []string{"b", "c", "a"}, []string{sorted[0].ID, sorted[1].ID, sorted[2].ID})
	// Input order untouched.
	require.Equal(t, "a", pool[0].ID)
}
