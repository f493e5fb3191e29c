package event

// ListOptions provides filtering options for listing events.
type ListOptions struct {
	DecisionID string
	NodeID     *string
	Types      []Type
	Limit      int
	Offset     int
}
