// Package state holds the runtime state tree of the timeline engine.
//
// The tree has six sub-trees (data, request, session, elements, instances,
// parameters), each owned by a pure reducer. The only way to change the tree
// is Store.Dispatch. Reducers never mutate their input: a sub-tree that did
// not change keeps its identity, and one that did is a fresh copy.
package state

import (
	"github.com/roach88/motion/internal/ir"
)

// State is the whole runtime state tree.
type State struct {
	Data       *ir.Model    `json:"data,omitempty"`
	Request    RequestState `json:"request"`
	Session    Session      `json:"session"`
	Elements   Elements     `json:"elements"`
	Instances  InstanceSet  `json:"instances"`
	Parameters Parameters   `json:"parameters,omitempty"`
}

// Session is the process-wide runtime flag set. It is created on start and
// fully reset on stop.
type Session struct {
	Active                 bool                  `json:"active"`
	Tick                   float64               `json:"tick"`
	Listeners              []Listener            `json:"listeners,omitempty"`
	EventState             map[string]EventState `json:"eventState,omitempty"`
	Playback               map[string]bool       `json:"playback,omitempty"`
	ViewportWidth          int                   `json:"viewportWidth,omitempty"`
	MediaQueryKey          string                `json:"mediaQueryKey,omitempty"`
	MediaQueryKeys         []string              `json:"mediaQueryKeys,omitempty"`
	HasBoundaryNodes       bool                  `json:"hasBoundaryNodes,omitempty"`
	HasDefinedMediaQueries bool                  `json:"hasDefinedMediaQueries,omitempty"`
}

// Listener describes a bound input listener. The handle that removes it
// lives with whoever bound it, keyed by ID.
type Listener struct {
	ID      uint64 `json:"id"`
	EventID string `json:"eventId,omitempty"`
	Source  string `json:"source"`
	Target  string `json:"target,omitempty"`
}

// EventState is the transient trigger state of one event on one element.
type EventState struct {
	Hovered bool `json:"hovered,omitempty"`
	Clicks  int  `json:"clicks,omitempty"`
	Visible bool `json:"visible,omitempty"`
	// ScrollingDown is the last observed scroll direction.
	ScrollingDown bool `json:"scrollingDown,omitempty"`
	// Fired is set once a one-shot event (page start/finish) has run.
	Fired bool `json:"fired,omitempty"`
}

// RequestState records the latest request of each kind. Seq fields count
// requests so observers can tell a repeated identical request apart.
type RequestState struct {
	Preview     PreviewRequested  `json:"preview"`
	PreviewSeq  uint64            `json:"previewSeq,omitempty"`
	Playback    PlaybackRequested `json:"playback"`
	PlaybackSeq uint64            `json:"playbackSeq,omitempty"`
	Stop        StopRequested     `json:"stop"`
	StopSeq     uint64            `json:"stopSeq,omitempty"`
	ClearSeq    uint64            `json:"clearSeq,omitempty"`
}

// Parameters maps continuous driver keys to values in [0, 1].
type Parameters map[string]float64

// IsPlaying reports whether an action list is flagged as playing.
func (s Session) IsPlaying(actionListID string) bool {
	return s.Playback[actionListID]
}

// EventStateFor returns the stored state for an event key.
func (s Session) EventStateFor(key string) EventState {
	return s.EventState[key]
}

// ActionList looks up an action list in the imported model.
func (s State) ActionList(id string) (ir.ActionList, bool) {
	if s.Data == nil {
		return ir.ActionList{}, false
	}
	l, ok := s.Data.ActionLists[id]
	return l, ok
}

// Event looks up an event in the imported model.
func (s State) Event(id string) (ir.Event, bool) {
	if s.Data == nil {
		return ir.Event{}, false
	}
	e, ok := s.Data.Events[id]
	return e, ok
}

// Snapshot is the part of the tree one session's journal rebuilds. The
// request sub-tree accumulates across sessions and is left out.
type Snapshot struct {
	Data       *ir.Model   `json:"data,omitempty"`
	Session    Session     `json:"session"`
	Elements   Elements    `json:"elements"`
	Instances  InstanceSet `json:"instances"`
	Parameters Parameters  `json:"parameters,omitempty"`
}

// Snapshot returns the replayable part of the tree.
func (s State) Snapshot() Snapshot {
	return Snapshot{
		Data:       s.Data,
		Session:    s.Session,
		Elements:   s.Elements,
		Instances:  s.Instances,
		Parameters: s.Parameters,
	}
}

// Hash returns the content hash of the replayable part of the tree.
func (s State) Hash() (string, error) {
	return ir.SnapshotHash(s.Snapshot())
}
