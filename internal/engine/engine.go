// Package engine provides generation-engine implementations behind the
// decision.Engine interface. The decision core treats every engine as an
// opaque function from state to proposed delta; nothing here is load-
// bearing for the tree, phase, or scoring invariants.
package engine

// Settings configures generation. It is passed in explicitly wherever an
// engine is constructed; there is no process-global engine state.
type Settings struct {
	Provider string `yaml:"provider"` // "heuristic" is the built-in default
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`

	// Clarification tuning. Zero values mean the question package
	// defaults.
	QuestionCap          int     `yaml:"question_cap"`
	DiminishingWindow    int     `yaml:"diminishing_window"`
	DiminishingThreshold float64 `yaml:"diminishing_threshold"`
}
