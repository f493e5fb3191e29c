package question

import "github.com/compasshq/compass-mcp/internal/domain/canvas"

// Generator builds the initial candidate pool from templates. The pool is
// deterministic for a given decision classification: the selector depends
// on stable insertion order for tie-breaking.
type Generator struct{}

// NewGenerator creates a generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// InitialPool returns the candidate pool for a fresh node: classification
// templates first, then questions for missing critical canvas fields,
// then universal questions. Duplicate ids are dropped, first wins.
func (g *Generator) InitialPool(situationType string, cv canvas.State) []Candidate {
	var pool []Candidate
	pool = append(pool, templateQuestions(situationType)...)
	pool = append(pool, criticalFieldQuestions(cv)...)
	pool = append(pool, universalQuestions()...)

	seen := make(map[string]bool, len(pool))
	out := pool[:0]
	for _, q := range pool {
		if seen[q.ID] {
			continue
		}
		seen[q.ID] = true
		out = append(out, q)
	}
	return out
}

func templateQuestions(situationType string) []Candidate {
	switch situationType {
	case "career":
		return []Candidate{
			{
				ID:                 "career_deadline",
				Text:               "What is your deadline for making this decision?",
				AnswerType:         AnswerText,
				WhyThisQuestion:    "Knowing your timeline helps prioritize speed vs thoroughness",
				WhatItChanges:      "Sets urgency and may rule out slow-to-implement options",
				Priority:           80,
				TargetsCanvasField: FieldTimeline,
				CriticalVariable:   true,
			},
			{
				ID:                 "career_relocation",
				Text:               "Is relocation an option for you?",
				AnswerType:         AnswerYesNo,
				WhyThisQuestion:    "Location flexibility affects which opportunities are viable",
				WhatItChanges:      "Eliminates options that require moving (hard constraint)",
				Priority:           85,
				TargetsCanvasField: FieldConstraints,
				CriticalVariable:   true,
			},
			{
				ID:                 "career_priorities",
				Text:               "What matters more to you: salary growth or work-life balance?",
				AnswerType:         AnswerSingleSelect,
				Choices:            []string{"Salary growth", "Work-life balance", "Both equally", "Something else"},
				WhyThisQuestion:    "Core priorities determine which opportunities align with your values",
				WhatItChanges:      "Weights the criteria used to evaluate options",
				Priority:           90,
				TargetsCanvasField: FieldCriteria,
				CriticalVariable:   true,
			},
			{
				ID:                 "career_growth",
				Text:               "How important is learning and skill development in this decision?",
				AnswerType:         AnswerSingleSelect,
				Choices:            []string{"Critical", "Important", "Nice to have", "Not important"},
				WhyThisQuestion:    "Growth opportunities vary between options and drive long-term satisfaction",
				WhatItChanges:      "Adds growth potential as a weighted criterion",
				Priority:           70,
				TargetsCanvasField: FieldCriteria,
			},
		}
	case "financial":
		return []Candidate{
			{
				ID:                 "financial_budget",
				Text:               "What is your budget or financial constraint for this decision?",
				AnswerType:         AnswerText,
				WhyThisQuestion:    "Financial limits are hard constraints that eliminate non-viable options",
				WhatItChanges:      "Filters out options beyond budget (hard constraint)",
				Priority:           95,
				TargetsCanvasField: FieldConstraints,
				CriticalVariable:   true,
			},
			{
				ID:                 "financial_timeline",
				Text:               "When do you need this money, or what is your timeline?",
				AnswerType:         AnswerText,
				WhyThisQuestion:    "Timeline affects risk tolerance and appropriate strategies",
				WhatItChanges:      "Sets a timeline constraint and influences risk assessment",
				Priority:           80,
				TargetsCanvasField: FieldTimeline,
				CriticalVariable:   true,
			},
			{
				ID:                 "financial_risk",
				Text:               "How much risk can you tolerate if this goes poorly?",
				AnswerType:         AnswerSingleSelect,
				Choices:            []string{"Very little", "Some", "Moderate", "High"},
				WhyThisQuestion:    "Risk tolerance separates viable options from reckless ones",
				WhatItChanges:      "Adds a risk criterion and may flag high-severity risks",
				Priority:           75,
				TargetsCanvasField: FieldStakes,
			},
		}
	default:
		return nil
	}
}

func criticalFieldQuestions(cv canvas.State) []Candidate {
	var out []Candidate
	if cv.Statement == "" {
		out = append(out, Candidate{
			ID:                 "core_statement",
			Text:               "In one sentence, what exactly are you trying to decide?",
			AnswerType:         AnswerText,
			WhyThisQuestion:    "A crisp statement frames every later question and option",
			WhatItChanges:      "Sets the decision statement on the canvas",
			Priority:           100,
			TargetsCanvasField: FieldStatement,
			CriticalVariable:   true,
		})
	}
	if len(cv.Criteria) == 0 {
		out = append(out, Candidate{
			ID:                 "core_criteria",
			Text:               "What factors matter most in making this choice?",
			AnswerType:         AnswerText,
			WhyThisQuestion:    "Criteria are how options get compared",
			WhatItChanges:      "Seeds the weighted criteria list",
			Priority:           95,
			TargetsCanvasField: FieldCriteria,
			CriticalVariable:   true,
		})
	}
	return out
}

func universalQuestions() []Candidate {
	return []Candidate{
		{
			ID:                 "universal_reversibility",
			Text:               "If you chose wrong, how hard would it be to undo?",
			AnswerType:         AnswerSingleSelect,
			Choices:            []string{"Easy to undo", "Costly but possible", "Practically irreversible"},
			WhyThisQuestion:    "Reversible decisions deserve less deliberation than one-way doors",
			WhatItChanges:      "Calibrates how much certainty to demand before moving on",
			Priority:           65,
			TargetsCanvasField: FieldReversibility,
		},
		{
			ID:                 "universal_constraints",
			Text:               "Are there any constraints this choice absolutely must satisfy?",
			AnswerType:         AnswerText,
			WhyThisQuestion:    "Hard constraints can eliminate whole option categories early",
			WhatItChanges:      "Adds hard constraints to the canvas",
			Priority:           60,
			TargetsCanvasField: FieldConstraints,
		},
		{
			ID:                 "universal_context",
			Text:               "What background should an outside advisor know about your situation?",
			AnswerType:         AnswerText,
			WhyThisQuestion:    "Context shapes which options are realistic",
			WhatItChanges:      "Adds context bullets to the canvas",
			Priority:           40,
			TargetsCanvasField: FieldContext,
		},
	}
}
