package question

// AnswerType describes the expected shape of an answer.
type AnswerType string

const (
	AnswerYesNo        AnswerType = "yes_no"
	AnswerText         AnswerType = "text"
	AnswerNumber       AnswerType = "number"
	AnswerSingleSelect AnswerType = "single_select"
)

// Canvas field targets used by candidate questions.
const (
	FieldStatement     = "statement"
	FieldCriteria      = "criteria"
	FieldConstraints   = "constraints"
	FieldContext       = "context"
	FieldTimeline      = "timeline"
	FieldReversibility = "reversibility"
	FieldStakes        = "stakes"
)

// Candidate is a clarifying question the selector may ask next.
type Candidate struct {
	ID                 string     `json:"id"`
	Text               string     `json:"text"`
	AnswerType         AnswerType `json:"answer_type"`
	Choices            []string   `json:"choices,omitempty"`
	WhyThisQuestion    string     `json:"why_this_question,omitempty"`
	WhatItChanges      string     `json:"what_it_changes,omitempty"`
	Priority           int        `json:"priority"` // 0-100
	VOIScore           float64    `json:"voi_score"`
	TargetsCanvasField string     `json:"targets_canvas_field,omitempty"`
	CriticalVariable   bool       `json:"critical_variable,omitempty"`
}

// Answer binds a question id to the user's typed value.
type Answer struct {
	QuestionID string `json:"question_id"`
	Value      string `json:"value"`
}

// Asked pairs a question with its answer and the canvas fields it touched.
type Asked struct {
	Question     Candidate `json:"question"`
	Answer       Answer    `json:"answer"`
	CanvasImpact []string  `json:"canvas_impact,omitempty"`
}

// Stop reasons, recorded verbatim on the node for observability.
const (
	StopQuestionCap           = "question_cap_reached"
	StopDiminishingReturns    = "diminishing_returns"
	StopSufficientInformation = "sufficient_information"
)

// StopDecision is the result of a stopping-condition check.
type StopDecision struct {
	Stop   bool   `json:"stop"`
	Reason string `json:"reason,omitempty"`
}

// SelectorState tracks the progress of one clarification conversation.
// It is persisted inside the node's clarify payload.
type SelectorState struct {
	QuestionCap          int         `json:"question_cap"`
	QuestionsAsked       int         `json:"questions_asked"`
	Pool                 []Candidate `json:"pool,omitempty"`
	Asked                []Asked     `json:"asked,omitempty"`
	LastUncertainty      float64     `json:"last_uncertainty"`
	UncertaintyHistory   []float64   `json:"uncertainty_history,omitempty"`
	ReadyForOptions      bool        `json:"ready_for_options"`
	StopReason           string      `json:"stop_reason,omitempty"`
	CurrentQuestionID    string      `json:"current_question_id,omitempty"`
}

// AskedIDs returns the set of question ids already answered.
func (s SelectorState) AskedIDs() map[string]bool {
	ids := make(map[string]bool, len(s.Asked))
	for _, a := range s.Asked {
		ids[a.Question.ID] = true
	}
	return ids
}

// Clone deep-copies the selector state so branches never share slices.
func (s SelectorState) Clone() SelectorState {
	out := s
	if len(s.Pool) > 0 {
		out.Pool = make([]Candidate, len(s.Pool))
		copy(out.Pool, s.Pool)
		for i := range out.Pool {
			if len(s.Pool[i].Choices) > 0 {
				out.Pool[i].Choices = append([]string(nil), s.Pool[i].Choices...)
			}
		}
	}
	if len(s.Asked) > 0 {
		out.Asked = make([]Asked, len(s.Asked))
		copy(out.Asked, s.Asked)
		for i := range out.Asked {
			out.Asked[i].Question.Choices = append([]string(nil), s.Asked[i].Question.Choices...)
			out.Asked[i].CanvasImpact = append([]string(nil), s.Asked[i].CanvasImpact...)
		}
	}
	if len(s.UncertaintyHistory) > 0 {
		out.UncertaintyHistory = append([]float64(nil), s.UncertaintyHistory...)
	}
	return out
}
