package ir

import "sort"

// Model is a compiled declarative document: events, action lists, and the
// ordered responsive breakpoints they may be restricted to.
type Model struct {
	Events       map[string]Event      `json:"events"`
	ActionLists  map[string]ActionList `json:"actionLists"`
	MediaQueries []MediaQuery          `json:"mediaQueries,omitempty"`

	// EventOrder lists event ids in declaration order. Binding walks events in
	// this order so listener registration is deterministic.
	EventOrder []string `json:"eventOrder,omitempty"`

	// Host optionally declares a fixture document for hosts that have no
	// document of their own (terminal host, simulation).
	Host *HostSpec `json:"host,omitempty"`
}

// MediaQueryKeys returns the breakpoint keys in declaration order.
func (m *Model) MediaQueryKeys() []string {
	keys := make([]string, len(m.MediaQueries))
	for i, q := range m.MediaQueries {
		keys[i] = q.Key
	}
	return keys
}

// OrderedEvents returns events in declaration order. A model without a
// declared order returns events sorted by id.
func (m *Model) OrderedEvents() []Event {
	order := m.EventOrder
	if len(order) == 0 {
		order = make([]string, 0, len(m.Events))
		for id := range m.Events {
			order = append(order, id)
		}
		sort.Strings(order)
	}
	events := make([]Event, 0, len(order))
	for _, id := range order {
		if ev, ok := m.Events[id]; ok {
			events = append(events, ev)
		}
	}
	return events
}

// MediaQuery is a named responsive breakpoint. Max of 0 means unbounded.
type MediaQuery struct {
	Key string `json:"key"`
	Min int    `json:"min"`
	Max int    `json:"max"`
}

// Matches reports whether a viewport width falls inside the breakpoint.
func (q MediaQuery) Matches(width int) bool {
	if width < q.Min {
		return false
	}
	return q.Max == 0 || width <= q.Max
}

// Event describes a trigger condition and the single action it invokes.
type Event struct {
	ID           string      `json:"id"`
	EventTypeID  EventTypeID `json:"eventTypeId"`
	Target       Target      `json:"target"`
	Targets      []Target    `json:"targets,omitempty"`
	MediaQueries []string    `json:"mediaQueries,omitempty"`
	Action       EventAction `json:"action"`
	Config       EventConfig `json:"config"`
}

// AllTargets returns the primary target followed by any additional targets.
func (e Event) AllTargets() []Target {
	if len(e.Targets) == 0 {
		return []Target{e.Target}
	}
	return append([]Target{e.Target}, e.Targets...)
}

// AllowsMediaQuery reports whether the event may run at the given breakpoint.
// An event with no breakpoint list runs everywhere, and an empty key (no
// breakpoints defined) never excludes anything.
func (e Event) AllowsMediaQuery(key string) bool {
	if len(e.MediaQueries) == 0 || key == "" {
		return true
	}
	for _, k := range e.MediaQueries {
		if k == key {
			return true
		}
	}
	return false
}

// EventAction is the action an event invokes when its condition is met.
type EventAction struct {
	ActionTypeID ActionTypeID `json:"actionTypeId"`
	Config       ActionConfig `json:"config"`
}

// IsContinuous reports whether the action wires continuous instances rather
// than starting a timed group.
func (a EventAction) IsContinuous() bool {
	return a.ActionTypeID == GeneralContinuousAction
}

// ActionConfig configures an event's action.
type ActionConfig struct {
	ActionListID    string  `json:"actionListId"`
	Delay           float64 `json:"delay,omitempty"`
	PlayInReverse   bool    `json:"playInReverse,omitempty"`
	AutoStopEventID string  `json:"autoStopEventId,omitempty"`
}

// EventConfig holds per-event trigger tuning.
type EventConfig struct {
	Loop bool `json:"loop,omitempty"`

	// ScrollOffsetValue is the percentage of the viewport an element must
	// enter before it counts as visible for scroll-into-view events.
	ScrollOffsetValue float64 `json:"scrollOffsetValue,omitempty"`

	// Continuous lists the parameter groups driven by a continuous event.
	Continuous []ContinuousConfig `json:"continuous,omitempty"`
}

// ContinuousConfig binds a continuous parameter group to an event's driver.
type ContinuousConfig struct {
	ContinuousParameterGroupID string `json:"continuousParameterGroupId"`

	// Smoothing in [0, 1]; 0 follows the driver exactly, values near 1 lag.
	Smoothing float64 `json:"smoothing,omitempty"`

	// RestingState in [0, 1] is used when the driver has no value yet.
	RestingState float64 `json:"restingState,omitempty"`

	StartsEntering bool    `json:"startsEntering,omitempty"`
	StartsExiting  bool    `json:"startsExiting,omitempty"`
	AddStartOffset bool    `json:"addStartOffset,omitempty"`
	StartOffset    float64 `json:"addOffsetValue,omitempty"`
	AddEndOffset   bool    `json:"addEndOffset,omitempty"`
	EndOffset      float64 `json:"endOffsetValue,omitempty"`
	Reverse        bool    `json:"reverse,omitempty"`
}

// ActionList is a named, ordered sequence of groups.
type ActionList struct {
	ID                          string                     `json:"id"`
	Title                       string                     `json:"title,omitempty"`
	UseFirstGroupAsInitialState bool                       `json:"useFirstGroupAsInitialState,omitempty"`
	ActionItemGroups            []ActionItemGroup          `json:"actionItemGroups,omitempty"`
	ContinuousParameterGroups   []ContinuousParameterGroup `json:"continuousParameterGroups,omitempty"`
}

// ParameterGroup looks up a continuous parameter group by id.
func (l ActionList) ParameterGroup(id string) (ContinuousParameterGroup, bool) {
	for _, g := range l.ContinuousParameterGroups {
		if g.ID == id {
			return g, true
		}
	}
	return ContinuousParameterGroup{}, false
}

// Reversed returns a copy of the list with its timed groups in reverse
// order. An initial-state group stays in front.
func (l ActionList) Reversed() ActionList {
	out := l
	groups := l.ActionItemGroups
	var head []ActionItemGroup
	if l.UseFirstGroupAsInitialState && len(groups) > 0 {
		head, groups = groups[:1], groups[1:]
	}
	reversed := make([]ActionItemGroup, 0, len(l.ActionItemGroups))
	reversed = append(reversed, head...)
	for i := len(groups) - 1; i >= 0; i-- {
		reversed = append(reversed, groups[i])
	}
	out.ActionItemGroups = reversed
	return out
}

// ActionItemGroup is one step of a timed action list.
type ActionItemGroup struct {
	ActionItems []ActionItem `json:"actionItems"`
}

// ContinuousParameterGroup maps positions along a driving parameter to
// destination values.
type ContinuousParameterGroup struct {
	ID                     string                  `json:"id"`
	Type                   ParameterType           `json:"type"`
	ContinuousActionGroups []ContinuousActionGroup `json:"continuousActionGroups"`
}

// ContinuousActionGroup pairs a keyframe position in [0, 100] with action
// items holding the values at that position.
type ContinuousActionGroup struct {
	Keyframe    float64      `json:"keyframe"`
	ActionItems []ActionItem `json:"actionItems"`
}

// ParameterType identifies what drives a continuous parameter group.
type ParameterType string

const (
	ParameterScrollProgress ParameterType = "SCROLL_PROGRESS"
	ParameterMouseX         ParameterType = "MOUSE_X"
	ParameterMouseY         ParameterType = "MOUSE_Y"
)

// ActionItem is one property change within a group.
type ActionItem struct {
	ID           string           `json:"id"`
	ActionTypeID ActionTypeID     `json:"actionTypeId"`
	RenderType   RenderType       `json:"renderType"`
	Config       ActionItemConfig `json:"config"`
}

// ActionItemConfig holds timing, target, and destination values.
//
// Values are keyed by semantic names (xValue, yValue, rValue, value, and so
// on; see the Key constants). Units are keyed by the matching unit names.
type ActionItemConfig struct {
	Delay        float64           `json:"delay,omitempty"`
	Duration     float64           `json:"duration,omitempty"`
	Easing       string            `json:"easing,omitempty"`
	CustomEasing []float64         `json:"customEasing,omitempty"`
	Target       Target            `json:"target"`
	Values       Values            `json:"values,omitempty"`
	Units        map[string]string `json:"units,omitempty"`
	Filters      []Filter          `json:"filters,omitempty"`

	// Display is the value for GENERAL_DISPLAY ("none", "block", "flex").
	Display string `json:"display,omitempty"`

	// Plugin carries plugin-specific parameters.
	Plugin map[string]string `json:"plugin,omitempty"`
}

// Unit returns the configured unit for a value key, or def when unset.
func (c ActionItemConfig) Unit(unitKey, def string) string {
	if u, ok := c.Units[unitKey]; ok && u != "" {
		return u
	}
	return def
}

// Filter is one entry of a filter list.
type Filter struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// TargetScope selects how a target descriptor names its elements.
type TargetScope string

const (
	// AppliesToElement resolves the descriptor's id or selector.
	AppliesToElement TargetScope = "ELEMENT"
	// AppliesToClass resolves every element matching the selector.
	AppliesToClass TargetScope = "CLASS"
	// AppliesToPage resolves the document root.
	AppliesToPage TargetScope = "PAGE"
	// AppliesToTrigger resolves the element the event fired on.
	AppliesToTrigger TargetScope = "TRIGGER_ELEMENT"
)

// Relation scopes a descriptor relative to the event target.
type Relation string

const (
	RelationNone              Relation = ""
	RelationChildren          Relation = "CHILDREN"
	RelationImmediateChildren Relation = "IMMEDIATE_CHILDREN"
	RelationSiblings          Relation = "SIBLINGS"
	RelationParent            Relation = "PARENT"
)

// Target is a descriptor resolved against the host document.
type Target struct {
	ID           string      `json:"id,omitempty"`
	Selector     string      `json:"selector,omitempty"`
	AppliesTo    TargetScope `json:"appliesTo,omitempty"`
	Relation     Relation    `json:"useEventTarget,omitempty"`
	BoundaryMode bool        `json:"boundaryMode,omitempty"`
}

// IsZero reports whether the descriptor names nothing.
func (t Target) IsZero() bool {
	return t.ID == "" && t.Selector == "" && t.AppliesTo == "" && t.Relation == ""
}

// Key returns a stable string form used to group instances by target.
func (t Target) Key() string {
	return string(t.AppliesTo) + "|" + t.ID + "|" + t.Selector + "|" + string(t.Relation)
}

// HostSpec declares a fixture document.
type HostSpec struct {
	Width    int           `json:"width,omitempty"`
	Height   int           `json:"height,omitempty"`
	Elements []HostElement `json:"elements"`
}

// HostElement declares one element of a fixture document. Geometry is in
// host units (pixels for the in-memory document, cells for the terminal).
type HostElement struct {
	ID       string            `json:"id"`
	Parent   string            `json:"parent,omitempty"`
	Classes  []string          `json:"classes,omitempty"`
	Boundary bool              `json:"boundary,omitempty"`
	X        int               `json:"x"`
	Y        int               `json:"y"`
	Width    int               `json:"width"`
	Height   int               `json:"height"`
	Style    map[string]string `json:"style,omitempty"`
}
