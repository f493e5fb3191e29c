package canvas

// ConstraintType distinguishes hard requirements from preferences.
type ConstraintType string

const (
	ConstraintHard ConstraintType = "hard"
	ConstraintSoft ConstraintType = "soft"
)

// RiskSeverity grades an identified risk.
type RiskSeverity string

const (
	SeverityLow    RiskSeverity = "low"
	SeverityMedium RiskSeverity = "medium"
	SeverityHigh   RiskSeverity = "high"
)

// Constraint is a requirement the final choice must satisfy (hard) or
// should satisfy (soft).
type Constraint struct {
	Text string         `json:"text"`
	Type ConstraintType `json:"type"`
}

// Criterion is a weighted factor used to compare options.
type Criterion struct {
	Name   string `json:"name"`
	Weight int    `json:"weight"` // 1-10
}

// Risk is a potential downside identified during clarification.
type Risk struct {
	Description string       `json:"description"`
	Severity    RiskSeverity `json:"severity"`
	Mitigation  string       `json:"mitigation,omitempty"`
}

// State is the accumulated structured understanding of a decision.
// Snapshots are treated as immutable: Merge always returns a fresh copy.
type State struct {
	Statement      string       `json:"statement,omitempty"`
	ContextBullets []string     `json:"context_bullets,omitempty"`
	Constraints    []Constraint `json:"constraints,omitempty"`
	Criteria       []Criterion  `json:"criteria,omitempty"`
	Risks          []Risk       `json:"risks,omitempty"`
	NextAction     string       `json:"next_action,omitempty"`
}

// Delta is an incremental fact update produced by the generation engine
// or the answer extractor. Empty fields leave the snapshot untouched.
type Delta struct {
	Statement      string       `json:"statement,omitempty"`
	ContextBullets []string     `json:"context_bullets,omitempty"`
	Constraints    []Constraint `json:"constraints,omitempty"`
	Criteria       []Criterion  `json:"criteria,omitempty"`
	Risks          []Risk       `json:"risks,omitempty"`
	NextAction     string       `json:"next_action,omitempty"`
}

// IsEmpty reports whether the delta carries no changes at all.
func (d Delta) IsEmpty() bool {
	return d.Statement == "" &&
		len(d.ContextBullets) == 0 &&
		len(d.Constraints) == 0 &&
		len(d.Criteria) == 0 &&
		len(d.Risks) == 0 &&
		d.NextAction == ""
}

// Clone returns a deep copy of the snapshot. Branching relies on this so
// a branch never shares backing slices with its parent.
func (s State) Clone() State {
	out := State{
		Statement:  s.Statement,
		NextAction: s.NextAction,
	}
	if len(s.ContextBullets) > 0 {
		out.ContextBullets = append([]string(nil), s.ContextBullets...)
	}
	if len(s.Constraints) > 0 {
		out.Constraints = append([]Constraint(nil), s.Constraints...)
	}
	if len(s.Criteria) > 0 {
		out.Criteria = append([]Criterion(nil), s.Criteria...)
	}
	if len(s.Risks) > 0 {
		out.Risks = append([]Risk(nil), s.Risks...)
	}
	return out
}
