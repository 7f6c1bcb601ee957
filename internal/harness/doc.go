// Package harness runs interaction documents through scripted scenarios and
// checks what they did.
//
// A scenario drives the engine over an in-memory document with manual
// frames, a deterministic journal clock, and a fixed session token, so the
// same scenario always journals the same messages.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: click_cascade
//	description: "What this scenario validates"
//	document: ../documents/cascade.cue
//	session: golden-click        # optional, default "test-session"
//	events: true                 # optional, bind document events
//	frameInterval: 16            # optional, ms per frame step
//	steps:
//	  - click: box
//	  - wait: 80
//	  - playback: {actionList: fade-out}
//	  - settle: {}
//	assertions:
//	  - type: trace_contains
//	    kind: INSTANCE_ADDED
//	    fields: {instance.actionListId: fade-out}
//	  - type: final_style
//	    element: box
//	    style: {opacity: "0.5"}
//
// Steps are input (click, hover, move, leave, scroll, resize, ready, load,
// pageUpdate), requests (playback, stop, clear), or time (frames, wait,
// settle). Each step sets exactly one of them.
//
// # Assertion Types
//
//   - trace_contains: a journaled message of the kind matches the fields
//   - trace_order: the kinds appear in order, other messages in between
//   - trace_count: exactly count messages of the kind match the fields
//   - final_style: inline style properties of an element
//   - instances: number of running instances before the stop
//   - playing: playback state of an action list
//   - notifications: number of notifications of a kind
//   - replay_matches: replaying the journal reproduces the snapshot hash
//   - no_runtime_errors: the engine reported nothing
//
// # Golden Traces
//
// RunWithGolden compares the lifecycle part of a run (session, instance and
// request messages, notifications, final styles) against
// testdata/golden/{name}.golden. Frame and element messages are left out.
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/click_cascade.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, msg := range result.Errors {
//	    log.Println(msg)
//	}
package harness
