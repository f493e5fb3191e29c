package question

import (
	"strings"

	"github.com/compasshq/compass-mcp/internal/domain/canvas"
)

// Scorer estimates the value of information of candidate questions.
//
// VOI = critical*0.4 + uncertainty*0.3 + impact*0.2 - redundancy*0.1,
// clamped to [0, 100]. All component heuristics are deterministic
// functions of the candidate and the current canvas. Zero tuning fields
// fall back to the package defaults.
type Scorer struct {
	DiminishingWindow    int
	DiminishingThreshold float64
}

const (
	criticalWeight    = 0.4
	uncertaintyWeight = 0.3
	impactWeight      = 0.2
	redundancyWeight  = 0.1

	// Average uncertainty reduction over the last few answers below this
	// threshold counts as diminishing returns.
	diminishingReturnsThreshold = 0.10
	diminishingReturnsWindow    = 3
)

// Score computes the VOI score for one candidate against the canvas.
func (Scorer) Score(q Candidate, cv canvas.State, asked []Asked) float64 {
	voi := criticalWeight*criticalScore(q, cv) +
		uncertaintyWeight*uncertaintyReduction(q, cv) +
		impactWeight*impactScore(q, cv) -
		redundancyWeight*redundancyPenalty(q, asked)

	if voi < 0 {
		return 0
	}
	if voi > 100 {
		return 100
	}
	return voi
}

// Uncertainty measures canvas incompleteness in [0, 1]. Zero means every
// weighted field is populated.
func (Scorer) Uncertainty(cv canvas.State) float64 {
	uncertainty := 0.0
	if cv.Statement == "" {
		uncertainty += 0.25
	}
	switch len(cv.Criteria) {
	case 0:
		uncertainty += 0.30
	case 1:
		uncertainty += 0.15
	}
	if len(cv.Constraints) == 0 {
		uncertainty += 0.20
	}
	switch len(cv.ContextBullets) {
	case 0:
		uncertainty += 0.15
	case 1:
		uncertainty += 0.075
	}
	if len(cv.Risks) == 0 {
		uncertainty += 0.10
	}
	return uncertainty
}

// DiminishingReturns reports whether the rolling uncertainty-reduction
// signal over the last few answers has flattened out.
func (s Scorer) DiminishingReturns(history []float64) bool {
	window := s.DiminishingWindow
	if window <= 0 {
		window = diminishingReturnsWindow
	}
	threshold := s.DiminishingThreshold
	if threshold <= 0 {
		threshold = diminishingReturnsThreshold
	}
	if len(history) < window {
		return false
	}
	recent := history[len(history)-window:]
	sum := 0.0
	for _, r := range recent {
		sum += r
	}
	return sum/float64(len(recent)) < threshold
}

func criticalScore(q Candidate, cv canvas.State) float64 {
	if q.CriticalVariable {
		return 100
	}
	switch q.TargetsCanvasField {
	case FieldStatement:
		if cv.Statement == "" {
			return 100
		}
		return 20
	case FieldCriteria:
		if len(cv.Criteria) == 0 {
			return 100
		}
		return 30
	case FieldConstraints:
		if len(cv.Constraints) == 0 {
			return 90
		}
		for _, c := range cv.Constraints {
			if c.Type == canvas.ConstraintHard {
				return 20
			}
		}
		return 50
	case FieldReversibility, FieldTimeline, FieldStakes:
		return 70
	case FieldContext:
		return 40
	default:
		return 20
	}
}

func uncertaintyReduction(q Candidate, cv canvas.State) float64 {
	switch q.TargetsCanvasField {
	case FieldCriteria:
		if len(cv.Criteria) < 2 {
			return 85
		}
		return 50
	case FieldConstraints:
		if len(cv.Constraints) < 1 {
			return 90
		}
		return 50
	case FieldStatement:
		if cv.Statement == "" {
			return 100
		}
		return 30
	case FieldReversibility, FieldStakes, FieldTimeline:
		return 70
	case FieldContext:
		return 40
	default:
		return 30
	}
}

func impactScore(q Candidate, cv canvas.State) float64 {
	switch q.TargetsCanvasField {
	case FieldConstraints:
		lower := strings.ToLower(q.Text)
		if strings.Contains(lower, "must") || strings.Contains(lower, "required") {
			return 85
		}
		return 60
	case FieldCriteria:
		switch n := len(cv.Criteria); {
		case n == 0:
			return 90
		case n < 3:
			return 70
		default:
			return 40
		}
	case FieldStatement:
		if cv.Statement == "" {
			return 95
		}
		return 20
	case FieldReversibility, FieldStakes:
		return 65
	default:
		return 35
	}
}

func redundancyPenalty(q Candidate, asked []Asked) float64 {
	onField := 0
	for _, a := range asked {
		if a.Question.TargetsCanvasField == q.TargetsCanvasField {
			onField++
		}
	}
	switch onField {
	case 0:
		return 0
	case 1:
		return 20
	case 2:
		return 50
	default:
		return 80
	}
}
