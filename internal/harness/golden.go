package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/motion/internal/ir"
	"github.com/roach88/motion/internal/state"
)

// lifecycleKinds are the message kinds a golden trace keeps. Frames and
// element records are left out; they depend on frame timing rather than on
// behavior.
var lifecycleKinds = map[string]bool{
	string(state.KindSessionStarted):            true,
	string(state.KindSessionStopped):            true,
	string(state.KindInstanceAdded):             true,
	string(state.KindInstanceRemoved):           true,
	string(state.KindActionListPlaybackChanged): true,
	string(state.KindPlaybackRequested):         true,
	string(state.KindStopRequested):             true,
	string(state.KindClearRequested):            true,
}

// TraceSnapshot is the golden form of a scenario run.
type TraceSnapshot struct {
	Scenario      string            `json:"scenario"`
	Session       string            `json:"session"`
	Lifecycle     []string          `json:"lifecycle"`
	Notifications []string          `json:"notifications"`
	Styles        map[string]string `json:"styles"`
	ReplayMatches bool              `json:"replayMatches"`
}

// Snapshot builds the golden form of a result.
func Snapshot(scenario *Scenario, r *Result) TraceSnapshot {
	snap := TraceSnapshot{
		Scenario:      scenario.Name,
		Session:       scenario.Session,
		Lifecycle:     lifecycle(r.Trace),
		Notifications: make([]string, 0, len(r.Notifications)),
		Styles:        r.Styles,
		ReplayMatches: r.ReplayMatches,
	}
	if snap.Session == "" {
		snap.Session = "test-session"
	}
	for _, n := range r.Notifications {
		snap.Notifications = append(snap.Notifications,
			fmt.Sprintf("%s %s %s #%s", n.Kind, n.ActionListID, n.ActionTypeID, n.ElementID))
	}
	if snap.Styles == nil {
		snap.Styles = map[string]string{}
	}
	return snap
}

// lifecycle renders the lifecycle messages of a trace as "KIND detail".
func lifecycle(trace []TraceEvent) []string {
	out := []string{}
	for _, ev := range trace {
		if !lifecycleKinds[ev.Kind] {
			continue
		}
		if ev.Detail == "" {
			out = append(out, ev.Kind)
			continue
		}
		out = append(out, ev.Kind+" "+ev.Detail)
	}
	return out
}

// RunWithGolden executes a scenario, fails the test on any assertion
// error, and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	for _, msg := range result.Errors {
		t.Errorf("%s: %s", scenario.Name, msg)
	}
	return result, AssertGolden(t, scenario, result)
}

// AssertGolden compares a result's snapshot against the golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	data, err := ir.MarshalCanonical(Snapshot(scenario, result))
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
