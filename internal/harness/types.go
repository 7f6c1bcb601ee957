package harness

import "github.com/roach88/motion/internal/host"

// TraceEvent is one journaled message as the harness sees it.
type TraceEvent struct {
	Seq  int64  `json:"seq"`
	Kind string `json:"kind"`
	// Detail is a short human-readable summary for lifecycle kinds.
	Detail string `json:"detail,omitempty"`
	// Fields is the decoded JSON payload, for subset matching.
	Fields map[string]any `json:"-"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every assertion held.
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`

	// Trace lists the session's journaled messages in seq order.
	Trace []TraceEvent `json:"trace"`

	Notifications []host.Notification `json:"notifications,omitempty"`

	// Styles maps element id to its inline style string, for every element
	// the run styled. Captured before the session stops.
	Styles map[string]string `json:"styles,omitempty"`

	// Instances and Playing are captured before the session stops.
	Instances int             `json:"instances"`
	Playing   map[string]bool `json:"playing,omitempty"`

	RuntimeErrors []string `json:"runtimeErrors,omitempty"`

	// ReplayMatches reports whether replaying the journal reproduced the
	// recorded snapshot hash.
	ReplayMatches bool   `json:"replayMatches"`
	ReplayHash    string `json:"replayHash,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Trace:   []TraceEvent{},
		Errors:  []string{},
		Styles:  map[string]string{},
		Playing: map[string]bool{},
	}
}

// AddError records a failed assertion and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
