package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/motion/internal/ir"
)

func validModel() *ir.Model {
	fade := ir.ActionList{
		ID: "fade",
		ActionItemGroups: []ir.ActionItemGroup{{ActionItems: []ir.ActionItem{{
			ID:           "i1",
			ActionTypeID: ir.StyleOpacity,
			Config: ir.ActionItemConfig{
				Duration: 100,
				Easing:   "ease",
				Target:   ir.Target{ID: "box"},
				Values:   ir.Values{ir.KeyValue: 0.5},
			},
		}}}},
		ContinuousParameterGroups: []ir.ContinuousParameterGroup{{
			ID:   "progress",
			Type: ir.ParameterScrollProgress,
			ContinuousActionGroups: []ir.ContinuousActionGroup{
				{Keyframe: 0, ActionItems: []ir.ActionItem{{ID: "m", ActionTypeID: ir.TransformMove, Config: ir.ActionItemConfig{Target: ir.Target{ID: "box"}}}}},
				{Keyframe: 100, ActionItems: []ir.ActionItem{{ID: "m", ActionTypeID: ir.TransformMove, Config: ir.ActionItemConfig{Target: ir.Target{ID: "box"}}}}},
			},
		}},
	}
	return &ir.Model{
		MediaQueries: []ir.MediaQuery{{Key: "main"}},
		Events: map[string]ir.Event{
			"click": {
				ID:           "click",
				EventTypeID:  ir.MouseClick,
				Target:       ir.Target{ID: "box"},
				MediaQueries: []string{"main"},
				Action: ir.EventAction{
					ActionTypeID: ir.GeneralStartAction,
					Config:       ir.ActionConfig{ActionListID: "fade"},
				},
			},
			"scroll": {
				ID:          "scroll",
				EventTypeID: ir.PageScroll,
				Action: ir.EventAction{
					ActionTypeID: ir.GeneralContinuousAction,
					Config:       ir.ActionConfig{ActionListID: "fade"},
				},
				Config: ir.EventConfig{Continuous: []ir.ContinuousConfig{{ContinuousParameterGroupID: "progress"}}},
			},
		},
		ActionLists: map[string]ir.ActionList{"fade": fade},
		Host: &ir.HostSpec{Elements: []ir.HostElement{
			{ID: "page"},
			{ID: "box", Parent: "page"},
		}},
	}
}

func firstItem(m *ir.Model) *ir.ActionItem {
	return &m.ActionLists["fade"].ActionItemGroups[0].ActionItems[0]
}

func TestValidate_Valid(t *testing.T) {
	assert.Empty(t, Validate(validModel()))
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *ir.Model)
		code   string
		field  string
	}{
		{
			name: "unknown event type",
			mutate: func(m *ir.Model) {
				ev := m.Events["click"]
				ev.EventTypeID = "MOUSE_WIGGLE"
				m.Events["click"] = ev
			},
			code:  ErrUnknownEventType,
			field: "events.click.eventTypeId",
		},
		{
			name: "unknown action list",
			mutate: func(m *ir.Model) {
				ev := m.Events["click"]
				ev.Action.Config.ActionListID = "missing"
				m.Events["click"] = ev
			},
			code:  ErrUnknownActionList,
			field: "events.click.action.config.actionListId",
		},
		{
			name: "unknown auto stop",
			mutate: func(m *ir.Model) {
				ev := m.Events["click"]
				ev.Action.Config.AutoStopEventID = "missing"
				m.Events["click"] = ev
			},
			code:  ErrUnknownAutoStop,
			field: "events.click.action.config.autoStopEventId",
		},
		{
			name: "unknown parameter group",
			mutate: func(m *ir.Model) {
				ev := m.Events["scroll"]
				ev.Config.Continuous[0].ContinuousParameterGroupID = "missing"
				m.Events["scroll"] = ev
			},
			code:  ErrUnknownParamGroup,
			field: "events.scroll.config.continuous[0]",
		},
		{
			name: "id mismatch",
			mutate: func(m *ir.Model) {
				ev := m.Events["click"]
				ev.ID = "other"
				m.Events["click"] = ev
			},
			code:  ErrIDMismatch,
			field: "events.click.id",
		},
		{
			name: "empty group",
			mutate: func(m *ir.Model) {
				l := m.ActionLists["fade"]
				l.ActionItemGroups = append(l.ActionItemGroups, ir.ActionItemGroup{})
				m.ActionLists["fade"] = l
			},
			code:  ErrEmptyGroup,
			field: "actionLists.fade.actionItemGroups[1]",
		},
		{
			name:   "unknown action type",
			mutate: func(m *ir.Model) { firstItem(m).ActionTypeID = "STYLE_WOBBLE" },
			code:   ErrUnknownActionType,
			field:  "actionLists.fade.actionItemGroups[0].actionItems[0].actionTypeId",
		},
		{
			name:   "unknown easing",
			mutate: func(m *ir.Model) { firstItem(m).Config.Easing = "wobbly" },
			code:   ErrUnknownEasing,
			field:  "actionLists.fade.actionItemGroups[0].actionItems[0].config.easing",
		},
		{
			name:   "bad custom easing",
			mutate: func(m *ir.Model) { firstItem(m).Config.CustomEasing = []float64{0.1, 0.2} },
			code:   ErrBadCustomEasing,
			field:  "actionLists.fade.actionItemGroups[0].actionItems[0].config.customEasing",
		},
		{
			name: "unknown media query",
			mutate: func(m *ir.Model) {
				ev := m.Events["click"]
				ev.MediaQueries = []string{"tiny"}
				m.Events["click"] = ev
			},
			code:  ErrUnknownMediaQuery,
			field: "events.click.mediaQueries",
		},
		{
			name:   "missing target",
			mutate: func(m *ir.Model) { firstItem(m).Config.Target = ir.Target{} },
			code:   ErrMissingTarget,
			field:  "actionLists.fade.actionItemGroups[0].actionItems[0].config.target",
		},
		{
			name: "continuous action on click",
			mutate: func(m *ir.Model) {
				ev := m.Events["click"]
				ev.Action.ActionTypeID = ir.GeneralContinuousAction
				ev.Config.Continuous = []ir.ContinuousConfig{{ContinuousParameterGroupID: "progress"}}
				m.Events["click"] = ev
			},
			code:  ErrActionKindMismatch,
			field: "events.click.action.actionTypeId",
		},
		{
			name: "start action on page scroll",
			mutate: func(m *ir.Model) {
				ev := m.Events["scroll"]
				ev.Action.ActionTypeID = ir.GeneralStartAction
				m.Events["scroll"] = ev
			},
			code:  ErrActionKindMismatch,
			field: "events.scroll.action.actionTypeId",
		},
		{
			name:   "unknown host parent",
			mutate: func(m *ir.Model) { m.Host.Elements[1].Parent = "nowhere" },
			code:   ErrBadHostElement,
			field:  "host.elements[1].parent",
		},
		{
			name: "duplicate media query",
			mutate: func(m *ir.Model) {
				m.MediaQueries = append(m.MediaQueries, ir.MediaQuery{Key: "main", Min: 500})
			},
			code:  ErrDuplicateMediaQuery,
			field: "mediaQueries[1].key",
		},
		{
			name: "continuous drives nothing",
			mutate: func(m *ir.Model) {
				ev := m.Events["scroll"]
				ev.Config.Continuous = nil
				m.Events["scroll"] = ev
			},
			code:  ErrNoContinuousGroups,
			field: "events.scroll.config.continuous",
		},
		{
			name: "duplicate action item",
			mutate: func(m *ir.Model) {
				l := m.ActionLists["fade"]
				l.ActionItemGroups = append(l.ActionItemGroups, l.ActionItemGroups[0])
				m.ActionLists["fade"] = l
			},
			code:  ErrDuplicateActionItems,
			field: "actionLists.fade.actionItemGroups[1].actionItems[0].id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validModel()
			tt.mutate(m)

			errs := Validate(m)
			require.Len(t, errs, 1, "errors: %v", errs)
			assert.Equal(t, tt.code, errs[0].Code)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestValidate_CollectsAll(t *testing.T) {
	m := validModel()
	ev := m.Events["click"]
	ev.EventTypeID = "MOUSE_WIGGLE"
	ev.Action.Config.ActionListID = "missing"
	m.Events["click"] = ev
	firstItem(m).Config.Easing = "wobbly"

	errs := Validate(m)
	require.Len(t, errs, 3)
	codes := []string{errs[0].Code, errs[1].Code, errs[2].Code}
	assert.Equal(t, []string{ErrUnknownEventType, ErrUnknownActionList, ErrUnknownEasing}, codes)
}

func TestValidate_PluginActionTypeKnown(t *testing.T) {
	m := validModel()
	firstItem(m).ActionTypeID = ir.ActionTypeID(ir.PluginPrefix + "LOTTIE")
	assert.Empty(t, Validate(m))
}

func TestValidationError_Error(t *testing.T) {
	e := ValidationError{Field: "events.a", Message: "boom", Code: ErrUnknownActionList}
	assert.Equal(t, "[E102] events.a: boom", e.Error())

	e.Line = 7
	assert.Equal(t, "[E102] line 7: events.a: boom", e.Error())
}
