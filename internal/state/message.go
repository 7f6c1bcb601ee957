package state

import (
	"github.com/roach88/motion/internal/ir"
	"github.com/roach88/motion/internal/style"
	"github.com/roach88/motion/internal/timeline"
)

// Kind names a message type. Kinds are stable; the journal stores them.
type Kind string

const (
	KindDataImported              Kind = "DATA_IMPORTED"
	KindSessionInitialized        Kind = "SESSION_INITIALIZED"
	KindSessionStarted            Kind = "SESSION_STARTED"
	KindSessionStopped            Kind = "SESSION_STOPPED"
	KindListenerAdded             Kind = "LISTENER_ADDED"
	KindFrameChanged              Kind = "FRAME_CHANGED"
	KindInstanceAdded             Kind = "INSTANCE_ADDED"
	KindInstanceStarted           Kind = "INSTANCE_STARTED"
	KindInstanceRemoved           Kind = "INSTANCE_REMOVED"
	KindElementStateChanged       Kind = "ELEMENT_STATE_CHANGED"
	KindEventStateChanged         Kind = "EVENT_STATE_CHANGED"
	KindActionListPlaybackChanged Kind = "ACTION_LIST_PLAYBACK_CHANGED"
	KindViewportWidthChanged      Kind = "VIEWPORT_WIDTH_CHANGED"
	KindMediaQueriesDefined       Kind = "MEDIA_QUERIES_DEFINED"
	KindParameterChanged          Kind = "PARAMETER_CHANGED"
	KindPreviewRequested          Kind = "PREVIEW_REQUESTED"
	KindPlaybackRequested         Kind = "PLAYBACK_REQUESTED"
	KindStopRequested             Kind = "STOP_REQUESTED"
	KindClearRequested            Kind = "CLEAR_REQUESTED"
)

// Message is a named state transition. Reducers switch on the concrete type.
type Message interface {
	Kind() Kind
}

// DataImported replaces the declarative model.
type DataImported struct {
	Model *ir.Model `json:"model"`
}

// SessionInitialized records host capabilities discovered at start.
type SessionInitialized struct {
	HasBoundaryNodes bool `json:"hasBoundaryNodes"`
}

type SessionStarted struct{}

// SessionStopped ends the session and clears all runtime state.
type SessionStopped struct{}

// ListenerAdded records a bound input listener so stop can tear it down.
type ListenerAdded struct {
	Listener Listener `json:"listener"`
}

// FrameChanged advances the session tick and recomputes every instance.
// Repeat re-evaluates timed instances at the same tick after a cascade;
// continuous instances hold so smoothing advances once per frame.
type FrameChanged struct {
	Now        float64            `json:"now"`
	Parameters map[string]float64 `json:"parameters,omitempty"`
	Repeat     bool               `json:"repeat,omitempty"`
}

// InstanceAdded inserts an instance. The reducer derives its render type
// and custom easing curve from the action item.
type InstanceAdded struct {
	Instance timeline.Instance `json:"instance"`
}

// InstanceStarted activates an instance at a frame time.
type InstanceStarted struct {
	ID   timeline.ID `json:"id"`
	Time float64     `json:"time"`
}

type InstanceRemoved struct {
	ID timeline.ID `json:"id"`
}

// ElementStateChanged merges rendered values into an element's record for
// one action type.
type ElementStateChanged struct {
	ElementID    string            `json:"elementId"`
	RefType      RefType           `json:"refType"`
	ActionTypeID ir.ActionTypeID   `json:"actionTypeId"`
	Values       ir.Values         `json:"values"`
	Units        map[string]string `json:"units,omitempty"`
}

// EventStateChanged stores per-event transient trigger state.
type EventStateChanged struct {
	Key   string     `json:"key"`
	State EventState `json:"state"`
}

type ActionListPlaybackChanged struct {
	ActionListID string `json:"actionListId"`
	IsPlaying    bool   `json:"isPlaying"`
}

// ViewportWidthChanged selects the active breakpoint for a viewport width.
type ViewportWidthChanged struct {
	Width        int             `json:"width"`
	MediaQueries []ir.MediaQuery `json:"mediaQueries,omitempty"`
}

type MediaQueriesDefined struct {
	Keys []string `json:"keys"`
}

// ParameterChanged sets a continuous driver value.
type ParameterChanged struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// PreviewRequested asks the engine to preview a whole model.
type PreviewRequested struct {
	Model *ir.Model `json:"model,omitempty"`
}

// PlaybackRequested asks the engine to play one action list.
type PlaybackRequested struct {
	ActionListID string `json:"actionListId"`
	EventID      string `json:"eventId,omitempty"`
	ElementID    string `json:"elementId,omitempty"`
	GroupIndex   int    `json:"groupIndex,omitempty"`
	Immediate    bool   `json:"immediate,omitempty"`
	Verbose      bool   `json:"verbose,omitempty"`
	AllowEvents  bool   `json:"allowEvents,omitempty"`
}

// StopRequested asks the engine to stop one action list, or the whole
// session when ActionListID is empty.
type StopRequested struct {
	ActionListID string `json:"actionListId,omitempty"`
}

// ClearRequested asks the engine to stop and reset every element it styled.
type ClearRequested struct{}

func (DataImported) Kind() Kind              { return KindDataImported }
func (SessionInitialized) Kind() Kind        { return KindSessionInitialized }
func (SessionStarted) Kind() Kind            { return KindSessionStarted }
func (SessionStopped) Kind() Kind            { return KindSessionStopped }
func (ListenerAdded) Kind() Kind             { return KindListenerAdded }
func (FrameChanged) Kind() Kind              { return KindFrameChanged }
func (InstanceAdded) Kind() Kind             { return KindInstanceAdded }
func (InstanceStarted) Kind() Kind           { return KindInstanceStarted }
func (InstanceRemoved) Kind() Kind           { return KindInstanceRemoved }
func (ElementStateChanged) Kind() Kind       { return KindElementStateChanged }
func (EventStateChanged) Kind() Kind         { return KindEventStateChanged }
func (ActionListPlaybackChanged) Kind() Kind { return KindActionListPlaybackChanged }
func (ViewportWidthChanged) Kind() Kind      { return KindViewportWidthChanged }
func (MediaQueriesDefined) Kind() Kind       { return KindMediaQueriesDefined }
func (ParameterChanged) Kind() Kind          { return KindParameterChanged }
func (PreviewRequested) Kind() Kind          { return KindPreviewRequested }
func (PlaybackRequested) Kind() Kind         { return KindPlaybackRequested }
func (StopRequested) Kind() Kind             { return KindStopRequested }
func (ClearRequested) Kind() Kind            { return KindClearRequested }

// Family converts the message's values into a recorded family.
func (m ElementStateChanged) Family() style.Family {
	return style.Family{Values: m.Values, Units: m.Units}
}
