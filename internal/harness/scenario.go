package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario drives one interaction document through a scripted sequence of
// input and frames, then checks the journal trace and the final document.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Document is the interaction document (.cue, .json, .yaml, or a
	// directory of CUE files). Relative paths resolve against the scenario
	// file.
	Document string `yaml:"document"`

	// Events binds the document's events. Nil means true.
	Events *bool `yaml:"events,omitempty"`

	// FrameInterval is the ms between frames delivered by frame steps.
	// Defaults to 16.
	FrameInterval float64 `yaml:"frameInterval,omitempty"`

	// Session is the fixed journal session token. Defaults to
	// "test-session".
	Session string `yaml:"session,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions"`
}

// BindEvents reports whether the scenario binds document events.
func (s *Scenario) BindEvents() bool {
	return s.Events == nil || *s.Events
}

// Interval returns the frame interval in ms.
func (s *Scenario) Interval() float64 {
	if s.FrameInterval <= 0 {
		return 16
	}
	return s.FrameInterval
}

// Step is one scripted action. Exactly one field is set.
type Step struct {
	Click      string      `yaml:"click,omitempty"`
	Hover      string      `yaml:"hover,omitempty"`
	Move       []float64   `yaml:"move,omitempty"`
	Leave      bool        `yaml:"leave,omitempty"`
	Scroll     *float64    `yaml:"scroll,omitempty"`
	Resize     []float64   `yaml:"resize,omitempty"`
	Ready      bool        `yaml:"ready,omitempty"`
	Load       bool        `yaml:"load,omitempty"`
	PageUpdate bool        `yaml:"pageUpdate,omitempty"`
	Playback   *PlayStep   `yaml:"playback,omitempty"`
	Stop       *StopStep   `yaml:"stop,omitempty"`
	Clear      bool        `yaml:"clear,omitempty"`
	Frames     int         `yaml:"frames,omitempty"`
	Wait       float64     `yaml:"wait,omitempty"`
	Settle     *SettleStep `yaml:"settle,omitempty"`
}

// PlayStep requests playback of an action list.
type PlayStep struct {
	ActionList string `yaml:"actionList"`
	Element    string `yaml:"element,omitempty"`
	Immediate  bool   `yaml:"immediate,omitempty"`
}

// StopStep stops one action list, or the session when ActionList is empty.
type StopStep struct {
	ActionList string `yaml:"actionList,omitempty"`
}

// SettleStep runs frames until no timed instance remains, up to Limit
// frames (default 1000).
type SettleStep struct {
	Limit int `yaml:"limit,omitempty"`
}

// kinds returns the names of the fields set on the step.
func (s Step) kinds() []string {
	var set []string
	add := func(ok bool, name string) {
		if ok {
			set = append(set, name)
		}
	}
	add(s.Click != "", "click")
	add(s.Hover != "", "hover")
	add(s.Move != nil, "move")
	add(s.Leave, "leave")
	add(s.Scroll != nil, "scroll")
	add(s.Resize != nil, "resize")
	add(s.Ready, "ready")
	add(s.Load, "load")
	add(s.PageUpdate, "pageUpdate")
	add(s.Playback != nil, "playback")
	add(s.Stop != nil, "stop")
	add(s.Clear, "clear")
	add(s.Frames != 0, "frames")
	add(s.Wait != 0, "wait")
	add(s.Settle != nil, "settle")
	return set
}

// Assertion validates the trace or the final document.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Kind is a journal message kind (trace_contains, trace_count).
	Kind string `yaml:"kind,omitempty"`

	// Fields is a subset match against the message payload
	// (trace_contains).
	Fields map[string]any `yaml:"fields,omitempty"`

	// Kinds is the expected relative order of message kinds (trace_order).
	Kinds []string `yaml:"kinds,omitempty"`

	// Count is the expected number of matches (trace_count, instances,
	// notifications).
	Count int `yaml:"count,omitempty"`

	// Element and Style check inline style properties (final_style).
	Element string            `yaml:"element,omitempty"`
	Style   map[string]string `yaml:"style,omitempty"`

	// ActionList and Playing check playback state (playing).
	ActionList string `yaml:"actionList,omitempty"`
	Playing    bool   `yaml:"playing,omitempty"`

	// Notification is a notification kind (notifications).
	Notification string `yaml:"notification,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains  = "trace_contains"
	AssertTraceOrder     = "trace_order"
	AssertTraceCount     = "trace_count"
	AssertFinalStyle     = "final_style"
	AssertInstances      = "instances"
	AssertPlaying        = "playing"
	AssertNotifications  = "notifications"
	AssertReplayMatches  = "replay_matches"
	AssertNoRuntimeError = "no_runtime_errors"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected, and the document path is resolved against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Document != "" && !filepath.IsAbs(scenario.Document) {
		scenario.Document = filepath.Join(filepath.Dir(path), scenario.Document)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Document == "" {
		return fmt.Errorf("document is required")
	}
	if _, err := os.Stat(s.Document); err != nil {
		return fmt.Errorf("document not found: %s", s.Document)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		switch kinds := step.kinds(); len(kinds) {
		case 0:
			return fmt.Errorf("steps[%d]: empty step", i)
		case 1:
		default:
			return fmt.Errorf("steps[%d]: one action per step, got %v", i, kinds)
		}
		if step.Move != nil && len(step.Move) != 2 {
			return fmt.Errorf("steps[%d]: move needs [x, y]", i)
		}
		if step.Resize != nil && len(step.Resize) != 2 {
			return fmt.Errorf("steps[%d]: resize needs [width, height]", i)
		}
		if step.Playback != nil && step.Playback.ActionList == "" {
			return fmt.Errorf("steps[%d]: playback.actionList is required", i)
		}
		if step.Frames < 0 || step.Wait < 0 {
			return fmt.Errorf("steps[%d]: frames and wait must be non-negative", i)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Kinds) == 0 {
			return fmt.Errorf("assertions[%d]: kinds list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalStyle:
		if a.Element == "" {
			return fmt.Errorf("assertions[%d]: element is required for final_style", index)
		}
		if len(a.Style) == 0 {
			return fmt.Errorf("assertions[%d]: style is required for final_style", index)
		}
	case AssertInstances:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for instances", index)
		}
	case AssertPlaying:
		if a.ActionList == "" {
			return fmt.Errorf("assertions[%d]: actionList is required for playing", index)
		}
	case AssertNotifications:
		if a.Notification == "" {
			return fmt.Errorf("assertions[%d]: notification is required for notifications", index)
		}
	case AssertReplayMatches, AssertNoRuntimeError:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
