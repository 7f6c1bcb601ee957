package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/motion/internal/compiler"
	"github.com/roach88/motion/internal/dom"
	"github.com/roach88/motion/internal/ir"
)

// CascadeDocument declares a box and a footer. Clicking the box dims it
// over 100ms, then hides it; scrolling the page moves the footer.
const CascadeDocument = `
host: {
	width:  400
	height: 300
	elements: [
		{id: "box", classes: ["box"], width: 100, height: 100},
		{id: "footer", y: 800, width: 400, height: 100},
	]
}

events: {
	"box-click": {
		eventTypeId: "MOUSE_CLICK"
		target: id: "box"
		action: {
			actionTypeId: "GENERAL_START_ACTION"
			config: actionListId: "fade-out"
		}
	}
	"page-scroll": {
		eventTypeId: "PAGE_SCROLL"
		action: {
			actionTypeId: "GENERAL_CONTINUOUS_ACTION"
			config: actionListId: "parallax"
		}
		config: continuous: [{continuousParameterGroupId: "progress"}]
	}
}

actionLists: {
	"fade-out": actionItemGroups: [
		{actionItems: [{
			id:           "dim"
			actionTypeId: "STYLE_OPACITY"
			config: {
				duration: 100
				easing:   "linear"
				target: id: "box"
				values: value: 0.5
			}
		}]},
		{actionItems: [{
			id:           "hide"
			actionTypeId: "GENERAL_DISPLAY"
			config: {
				target: id: "box"
				display: "none"
			}
		}]},
	]
	parallax: continuousParameterGroups: [{
		id:   "progress"
		type: "SCROLL_PROGRESS"
		continuousActionGroups: [
			{keyframe: 0, actionItems: [{id: "m", actionTypeId: "TRANSFORM_MOVE", config: {target: id: "footer", values: yValue: 0}}]},
			{keyframe: 100, actionItems: [{id: "m", actionTypeId: "TRANSFORM_MOVE", config: {target: id: "footer", values: yValue: -100}}]},
		]
	}]
}
`

// MustCompile compiles a CUE document and checks it validates.
func MustCompile(t testing.TB, src string) *ir.Model {
	t.Helper()
	m, err := compiler.CompileBytes("document.cue", []byte(src))
	require.NoError(t, err)
	require.Empty(t, compiler.Validate(m))
	return m
}

// MustDocument builds the in-memory document a model declares.
func MustDocument(t testing.TB, m *ir.Model) *dom.Document {
	t.Helper()
	require.NotNil(t, m.Host, "document declares no host")
	d, err := dom.FromSpec(m.Host)
	require.NoError(t, err)
	return d
}
