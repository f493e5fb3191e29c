package outcome

import "time"

// Outcome is the logged real-world result of executing a chosen option.
// Immutable after creation; the Brier score is derived at creation time.
type Outcome struct {
	ID             string    `json:"id"`
	NodeID         string    `json:"node_id"`
	ProgressYesNo  bool      `json:"progress_yesno"`
	Sentiment2h    *int      `json:"sentiment_2h,omitempty"`  // -2..+2
	Sentiment24h   *int      `json:"sentiment_24h,omitempty"` // -2..+2
	Notes          string    `json:"notes,omitempty"`
	BrierScore     *float64  `json:"brier_score,omitempty"`
	PredictedProb  *float64  `json:"predicted_probability,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// LogRequest describes an outcome logging request.
type LogRequest struct {
	NodeID        string
	ProgressYesNo bool
	Sentiment2h   *int
	Sentiment24h  *int
	Notes         string
}
