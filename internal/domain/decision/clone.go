package decision

import (
	"github.com/compasshq/compass-mcp/internal/domain/canvas"
	"github.com/compasshq/compass-mcp/internal/domain/question"
)

func canvasEmpty() canvas.State {
	return canvas.State{}
}

func cloneOptions(options []Option) []Option {
	if len(options) == 0 {
		return nil
	}
	out := make([]Option, len(options))
	copy(out, options)
	for i := range out {
		out[i].Pros = append([]string(nil), options[i].Pros...)
		out[i].Cons = append([]string(nil), options[i].Cons...)
		out[i].RiskTags = append([]string(nil), options[i].RiskTags...)
		out[i].Steps = append([]string(nil), options[i].Steps...)
		if options[i].PredictedProbability != nil {
			p := *options[i].PredictedProbability
			out[i].PredictedProbability = &p
		}
	}
	return out
}

func clonePlan(plan *CommitPlan) *CommitPlan {
	if plan == nil {
		return nil
	}
	out := &CommitPlan{
		ChosenOptionID:    plan.ChosenOptionID,
		ChosenOptionTitle: plan.ChosenOptionTitle,
	}
	if len(plan.Steps) > 0 {
		out.Steps = make([]CommitStep, len(plan.Steps))
		copy(out.Steps, plan.Steps)
		for i := range out.Steps {
			out.Steps[i].Branches = append([]IfThenBranch(nil), plan.Steps[i].Branches...)
		}
	}
	return out
}

func cloneAsked(asked []question.Asked) []question.Asked {
	if len(asked) == 0 {
		return nil
	}
	out := make([]question.Asked, len(asked))
	copy(out, asked)
	for i := range out {
		out[i].Question.Choices = append([]string(nil), asked[i].Question.Choices...)
		out[i].CanvasImpact = append([]string(nil), asked[i].CanvasImpact...)
	}
	return out
}
