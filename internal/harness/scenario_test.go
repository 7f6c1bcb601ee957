package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario writes a document and a scenario next to it, returning the
// scenario path.
func writeScenario(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.cue"), []byte("events: {}\n"), 0644))
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: test_scenario
description: "Test scenario"
document: doc.cue
frameInterval: 10
steps:
  - click: box
  - scroll: 0
  - move: [10, 20]
  - playback: {actionList: fade, element: box}
  - settle: {limit: 50}
assertions:
  - type: trace_contains
    kind: INSTANCE_ADDED
    fields: {instance.actionListId: fade}
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "doc.cue"), scenario.Document)
	assert.True(t, scenario.BindEvents())
	assert.Equal(t, 10.0, scenario.Interval())
	require.Len(t, scenario.Steps, 5)
	assert.Equal(t, "box", scenario.Steps[0].Click)
	require.NotNil(t, scenario.Steps[1].Scroll)
	assert.Equal(t, 0.0, *scenario.Steps[1].Scroll)
	assert.Equal(t, []float64{10, 20}, scenario.Steps[2].Move)
	assert.Equal(t, "box", scenario.Steps[3].Playback.Element)
	assert.Equal(t, 50, scenario.Steps[4].Settle.Limit)
	assert.Equal(t, "fade", scenario.Assertions[0].Fields["instance.actionListId"])
}

func TestLoadScenario_Defaults(t *testing.T) {
	s := &Scenario{}
	assert.True(t, s.BindEvents())
	assert.Equal(t, 16.0, s.Interval())

	off := false
	s.Events = &off
	assert.False(t, s.BindEvents())
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, `
name: test
description: d
document: doc.cue
flow: []
steps: [{click: box}]
assertions: [{type: replay_matches}]
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "missing name",
			body: `
description: d
document: doc.cue
steps: [{click: box}]
assertions: [{type: replay_matches}]
`,
			wantErr: "name is required",
		},
		{
			name: "missing document file",
			body: `
name: n
description: d
document: nowhere.cue
steps: [{click: box}]
assertions: [{type: replay_matches}]
`,
			wantErr: "document not found",
		},
		{
			name: "no steps",
			body: `
name: n
description: d
document: doc.cue
steps: []
assertions: [{type: replay_matches}]
`,
			wantErr: "steps list is required",
		},
		{
			name: "two actions in one step",
			body: `
name: n
description: d
document: doc.cue
steps: [{click: box, leave: true}]
assertions: [{type: replay_matches}]
`,
			wantErr: "one action per step",
		},
		{
			name: "empty step",
			body: `
name: n
description: d
document: doc.cue
steps: [{}]
assertions: [{type: replay_matches}]
`,
			wantErr: "empty step",
		},
		{
			name: "short move",
			body: `
name: n
description: d
document: doc.cue
steps: [{move: [1]}]
assertions: [{type: replay_matches}]
`,
			wantErr: "move needs [x, y]",
		},
		{
			name: "playback without list",
			body: `
name: n
description: d
document: doc.cue
steps: [{playback: {element: box}}]
assertions: [{type: replay_matches}]
`,
			wantErr: "playback.actionList is required",
		},
		{
			name: "final_style without element",
			body: `
name: n
description: d
document: doc.cue
steps: [{click: box}]
assertions: [{type: final_style, style: {opacity: "1"}}]
`,
			wantErr: "element is required for final_style",
		},
		{
			name: "unknown assertion",
			body: `
name: n
description: d
document: doc.cue
steps: [{click: box}]
assertions: [{type: final_state}]
`,
			wantErr: `unknown assertion type "final_state"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
