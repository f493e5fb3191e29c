package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/compasshq/compass-mcp/internal/domain/canvas"
	"github.com/compasshq/compass-mcp/internal/domain/decision"
	"github.com/compasshq/compass-mcp/internal/domain/question"
)

// Heuristic is the built-in rule-based engine: it extracts canvas facts
// from answers with simple text heuristics and fabricates a conservative
// option set and plan from canvas content. Fully deterministic, no
// network, so it doubles as the test engine.
type Heuristic struct{}

// NewHeuristic creates the rule-based engine.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

var _ decision.Engine = (*Heuristic)(nil)

// Clarify maps one answer onto a canvas delta keyed by the question's
// target field.
func (h *Heuristic) Clarify(ctx context.Context, req decision.ClarifyRequest) (*decision.ClarifyResult, error) {
	answer := strings.TrimSpace(req.Answer.Value)
	res := &decision.ClarifyResult{
		AssistantMessage: fmt.Sprintf("Noted: %s", answer),
	}
	if answer == "" {
		return res, nil
	}

	switch req.Question.TargetsCanvasField {
	case question.FieldStatement:
		res.Delta.Statement = answer
	case question.FieldCriteria:
		res.Delta.Criteria = extractCriteria(answer, req.Question)
	case question.FieldConstraints:
		res.Delta.Constraints = extractConstraints(answer, req.Question)
	case question.FieldContext:
		if len(answer) > 10 {
			res.Delta.ContextBullets = []string{answer}
		}
	case question.FieldTimeline, question.FieldReversibility, question.FieldStakes:
		res.Delta.ContextBullets = []string{
			fmt.Sprintf("%s: %s", titleCase(req.Question.TargetsCanvasField), answer),
		}
	}

	return res, nil
}

// Options fabricates a three-option set from the canvas: commit, staged
// commit, and wait. Predicted probabilities are fixed per slot so Brier
// scoring has something to calibrate against.
func (h *Heuristic) Options(ctx context.Context, req decision.OptionsRequest) (*decision.OptionsResult, error) {
	subject := req.Canvas.Statement
	if subject == "" {
		subject = req.SituationText
	}

	var topCriterion string
	if len(req.Canvas.Criteria) > 0 {
		top := req.Canvas.Criteria[0]
		for _, c := range req.Canvas.Criteria[1:] {
			if c.Weight > top.Weight {
				top = c
			}
		}
		topCriterion = top.Name
	}

	var hardConstraints []string
	for _, c := range req.Canvas.Constraints {
		if c.Type == canvas.ConstraintHard {
			hardConstraints = append(hardConstraints, c.Text)
		}
	}

	commitStep := "Commit to the decision"
	if subject != "" {
		commitStep = fmt.Sprintf("Commit to: %s", subject)
	}
	commit := decision.Option{
		ID:         "A",
		Title:      "Commit now",
		GoodIf:     goodIfFor(topCriterion, "speed and decisiveness matter most"),
		BadIf:      "key unknowns could still invalidate the choice",
		Pros:       []string{"Immediate progress", "No further deliberation cost"},
		Cons:       []string{"Locks in before all information is available"},
		Confidence: decision.ConfidenceMedium,
		Steps:      []string{commitStep, "Announce it to anyone affected", "Schedule a check-in"},
		PredictedProbability: probability(0.60),
	}
	staged := decision.Option{
		ID:         "B",
		Title:      "Commit in stages",
		GoodIf:     "a partial commitment can be tested cheaply",
		BadIf:      "half-measures would burn goodwill or budget",
		Pros:       []string{"Keeps options open", "Early feedback before full commitment"},
		Cons:       []string{"Slower", "Risk of stalling at the first stage"},
		Confidence: decision.ConfidenceMedium,
		Steps:      []string{"Define the smallest reversible first step", "Execute it", "Review and decide on the full commitment"},
		PredictedProbability: probability(0.55),
	}
	wait := decision.Option{
		ID:         "C",
		Title:      "Hold and gather more information",
		GoodIf:     "the decision is reversible and new information is coming",
		BadIf:      "delay itself forecloses the better options",
		Pros:       []string{"More information", "No premature commitment"},
		Cons:       []string{"Opportunity cost", "Deciding later may be no easier"},
		Confidence: decision.ConfidenceLow,
		Steps:      []string{"List the unknowns that matter", "Set a deadline for resolving them", "Revisit the decision at the deadline"},
		PredictedProbability: probability(0.50),
	}

	for _, opt := range []*decision.Option{&commit, &staged, &wait} {
		for _, hc := range hardConstraints {
			opt.RiskTags = append(opt.RiskTags, fmt.Sprintf("must satisfy: %s", hc))
		}
	}

	return &decision.OptionsResult{Options: []decision.Option{commit, staged, wait}}, nil
}

// Plan turns the chosen option's steps into an ordered commit plan with
// success/failure branches on the first step.
func (h *Heuristic) Plan(ctx context.Context, req decision.PlanRequest) (*decision.PlanResult, error) {
	plan := decision.CommitPlan{
		ChosenOptionID:    req.Option.ID,
		ChosenOptionTitle: req.Option.Title,
	}
	for i, step := range req.Option.Steps {
		cs := decision.CommitStep{
			Number: i + 1,
			Title:  step,
		}
		if i == 0 {
			cs.Branches = []decision.IfThenBranch{
				{Condition: "success", Action: "proceed to the next step"},
				{Condition: "failure", Action: "branch the decision and revisit the options"},
			}
		}
		plan.Steps = append(plan.Steps, cs)
	}
	if len(plan.Steps) == 0 {
		plan.Steps = []decision.CommitStep{{Number: 1, Title: "Act on the chosen option"}}
	}
	return &decision.PlanResult{Plan: plan}, nil
}

var softConstraintCues = []string{"prefer", "would like", "nice to have", "ideally"}

func extractConstraints(answer string, q question.Candidate) []canvas.Constraint {
	ctype := canvas.ConstraintHard
	lower := strings.ToLower(answer)
	for _, cue := range softConstraintCues {
		if strings.Contains(lower, cue) {
			ctype = canvas.ConstraintSoft
			break
		}
	}

	if q.AnswerType == question.AnswerYesNo {
		// An affirmative promotes the question itself to a constraint.
		switch lower {
		case "yes", "true", "1":
			return []canvas.Constraint{{Text: q.Text, Type: ctype}}
		}
		return nil
	}
	if len(answer) > 10 {
		return []canvas.Constraint{{Text: answer, Type: ctype}}
	}
	return nil
}

func extractCriteria(answer string, q question.Candidate) []canvas.Criterion {
	if q.AnswerType == question.AnswerSingleSelect {
		for _, choice := range q.Choices {
			if strings.EqualFold(answer, choice) {
				// A stated priority gets a high weight.
				return []canvas.Criterion{{Name: choice, Weight: 8}}
			}
		}
		return nil
	}

	var out []canvas.Criterion
	parts := strings.Split(strings.ReplaceAll(answer, " and ", ","), ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if len(part) > 3 && len(part) < 100 {
			out = append(out, canvas.Criterion{Name: part, Weight: 5})
		}
	}
	return out
}

func goodIfFor(topCriterion, fallback string) string {
	if topCriterion == "" {
		return fallback
	}
	return fmt.Sprintf("%s is the deciding factor", topCriterion)
}

func probability(p float64) *float64 {
	return &p
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
