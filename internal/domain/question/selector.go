package question

import (
	"sort"

	"github.com/compasshq/compass-mcp/internal/domain/canvas"
)

// DefaultQuestionCap bounds the number of clarifying questions per node.
const DefaultQuestionCap = 5

// Tuning adjusts selection and stopping behavior. Zero fields fall back
// to the defaults.
type Tuning struct {
	QuestionCap          int
	DiminishingWindow    int
	DiminishingThreshold float64
}

// Selector chooses the next clarifying question and decides when enough
// information has been gathered. It is a pure component: identical inputs
// always produce identical outputs.
type Selector struct {
	scorer      Scorer
	questionCap int
}

// NewSelector creates a selector with default tuning.
func NewSelector() *Selector {
	return NewTunedSelector(Tuning{})
}

// NewTunedSelector creates a selector with the given tuning.
func NewTunedSelector(t Tuning) *Selector {
	qcap := t.QuestionCap
	if qcap <= 0 {
		qcap = DefaultQuestionCap
	}
	return &Selector{
		scorer: Scorer{
			DiminishingWindow:    t.DiminishingWindow,
			DiminishingThreshold: t.DiminishingThreshold,
		},
		questionCap: qcap,
	}
}

// QuestionCap returns the per-node question cap to stamp into new
// selector states.
func (s *Selector) QuestionCap() int {
	return s.questionCap
}

// SelectNext returns the unanswered candidate with the highest VOI score.
// Ties break by priority descending, then by pool insertion order.
// Returns nil when every candidate has been asked.
func (s *Selector) SelectNext(pool []Candidate, asked map[string]bool, cv canvas.State) *Candidate {
	var best *Candidate
	for i := range pool {
		q := &pool[i]
		if asked[q.ID] {
			continue
		}
		if best == nil {
			best = q
			continue
		}
		if q.VOIScore > best.VOIScore {
			best = q
			continue
		}
		if q.VOIScore == best.VOIScore && q.Priority > best.Priority {
			best = q
		}
	}
	if best == nil {
		return nil
	}
	picked := *best
	if len(best.Choices) > 0 {
		picked.Choices = append([]string(nil), best.Choices...)
	}
	return &picked
}

// Rescore recomputes VOI for every candidate in place. Called after each
// answer so later questions reflect what has already been learned.
func (s *Selector) Rescore(pool []Candidate, cv canvas.State, asked []Asked) {
	for i := range pool {
		pool[i].VOIScore = s.scorer.Score(pool[i], cv, asked)
	}
}

// RecordAnswer folds one answered question into the selector state:
// appends to the asked list, bumps the counter, and pushes the
// uncertainty reduction observed after the canvas merge.
func (s *Selector) RecordAnswer(state *SelectorState, q Candidate, ans Answer, impact []string, cv canvas.State) {
	state.Asked = append(state.Asked, Asked{Question: q, Answer: ans, CanvasImpact: impact})
	state.QuestionsAsked++

	current := s.scorer.Uncertainty(cv)
	state.UncertaintyHistory = append(state.UncertaintyHistory, state.LastUncertainty-current)
	state.LastUncertainty = current
	state.CurrentQuestionID = ""
}

// ShouldStop evaluates the stopping conditions in order. The conditions
// are mutually exclusive per call: the first that fires wins and its
// reason is recorded verbatim.
func (s *Selector) ShouldStop(state SelectorState, cv canvas.State) StopDecision {
	if state.QuestionsAsked >= state.QuestionCap {
		return StopDecision{Stop: true, Reason: StopQuestionCap}
	}
	if s.scorer.DiminishingReturns(state.UncertaintyHistory) {
		return StopDecision{Stop: true, Reason: StopDiminishingReturns}
	}
	if s.criticalAnswered(state) && len(s.remaining(state)) == 0 {
		return StopDecision{Stop: true, Reason: StopSufficientInformation}
	}
	return StopDecision{}
}

// Progress estimates clarification completeness in [0, 1] from canvas
// uncertainty, for display alongside the next question.
func (s *Selector) Progress(cv canvas.State) float64 {
	return 1 - s.scorer.Uncertainty(cv)
}

func (s *Selector) criticalAnswered(state SelectorState) bool {
	asked := state.AskedIDs()
	for _, q := range state.Pool {
		if q.CriticalVariable && !asked[q.ID] {
			return false
		}
	}
	return true
}

func (s *Selector) remaining(state SelectorState) []Candidate {
	asked := state.AskedIDs()
	var out []Candidate
	for _, q := range state.Pool {
		if !asked[q.ID] {
			out = append(out, q)
		}
	}
	return out
}

// SortByVOI orders a copy of the pool by VOI descending, priority
// descending, insertion order. Useful for previews and debugging output.
func SortByVOI(pool []Candidate) []Candidate {
	out := append([]Candidate(nil), pool...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].VOIScore != out[j].VOIScore {
			return out[i].VOIScore > out[j].VOIScore
		}
		return out[i].Priority > out[j].Priority
	})
	return out
}
