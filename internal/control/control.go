// Package control carries requests from outside the engine goroutine onto
// the engine loop. The MQTT bridge, the control server, and the simulate
// command share its wire format.
package control

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/motion/internal/engine"
	"github.com/roach88/motion/internal/state"
)

// Request types.
const (
	TypePlayback = "playback"
	TypeStop     = "stop"
	TypeClear    = "clear"
	TypeFire     = "fire"
)

var (
	// ErrClosed is returned when the engine no longer accepts tasks.
	ErrClosed = errors.New("control: engine closed")

	// ErrUnknownEvent is returned by fire requests naming no event of the
	// running model.
	ErrUnknownEvent = errors.New("control: unknown event")

	// ErrNoSession is returned by fire requests when no model is imported.
	ErrNoSession = errors.New("control: no model imported")
)

// Request is the wire form of an engine request.
//
//	{"type": "playback", "actionListId": "fade", "immediate": true}
//	{"type": "stop", "actionListId": "fade"}
//	{"type": "clear"}
//	{"type": "fire", "eventId": "box-click", "elementId": "box"}
type Request struct {
	Type         string `json:"type"`
	ActionListID string `json:"actionListId,omitempty"`
	EventID      string `json:"eventId,omitempty"`
	ElementID    string `json:"elementId,omitempty"`
	GroupIndex   int    `json:"groupIndex,omitempty"`
	Immediate    bool   `json:"immediate,omitempty"`
	Verbose      bool   `json:"verbose,omitempty"`
}

// Decode parses one request. Unknown fields are rejected.
func Decode(data []byte) (Request, error) {
	var r Request
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&r); err != nil {
		return r, fmt.Errorf("decode request: %w", err)
	}
	return r, r.Validate()
}

// Validate checks the fields a request type needs.
func (r Request) Validate() error {
	switch r.Type {
	case TypePlayback:
		if r.ActionListID == "" {
			return fmt.Errorf("playback request needs actionListId")
		}
	case TypeFire:
		if r.EventID == "" {
			return fmt.Errorf("fire request needs eventId")
		}
	case TypeStop, TypeClear:
	case "":
		return fmt.Errorf("request type is required")
	default:
		return fmt.Errorf("unknown request type %q", r.Type)
	}
	if r.GroupIndex < 0 {
		return fmt.Errorf("groupIndex must not be negative")
	}
	return nil
}

// Message converts the request into the message the engine observes. Fire
// requests play the event's action list, so they need the current state.
func (r Request) Message(st state.State) (state.Message, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	switch r.Type {
	case TypePlayback:
		return state.PlaybackRequested{
			ActionListID: r.ActionListID,
			EventID:      r.EventID,
			ElementID:    r.ElementID,
			GroupIndex:   r.GroupIndex,
			Immediate:    r.Immediate,
			Verbose:      r.Verbose,
			AllowEvents:  true,
		}, nil
	case TypeStop:
		return state.StopRequested{ActionListID: r.ActionListID}, nil
	case TypeClear:
		return state.ClearRequested{}, nil
	}

	if st.Data == nil {
		return nil, ErrNoSession
	}
	ev, ok := st.Event(r.EventID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, r.EventID)
	}
	return state.PlaybackRequested{
		ActionListID: ev.Action.Config.ActionListID,
		EventID:      ev.ID,
		ElementID:    r.ElementID,
		GroupIndex:   r.GroupIndex,
		Immediate:    r.Immediate,
		Verbose:      r.Verbose,
		AllowEvents:  true,
	}, nil
}

// Engine is the part of the engine a controller drives.
type Engine interface {
	Enqueue(engine.Task) bool
	Dispatch(state.Message)
	State() state.State
}

// Apply performs r on the engine. It must run on the engine goroutine.
func Apply(e Engine, r Request) error {
	m, err := r.Message(e.State())
	if err != nil {
		return err
	}
	e.Dispatch(m)
	return nil
}

// Post enqueues r without waiting. Failures are passed to onErr on the
// engine goroutine.
func Post(e Engine, r Request, onErr func(error)) error {
	ok := e.Enqueue(func() {
		if err := Apply(e, r); err != nil && onErr != nil {
			onErr(err)
		}
	})
	if !ok {
		return ErrClosed
	}
	return nil
}

// Submit runs r on the engine loop and waits for the outcome.
func Submit(ctx context.Context, e Engine, r Request) error {
	res, err := Query(ctx, e, func() error { return Apply(e, r) })
	if err != nil {
		return err
	}
	return res
}

// Query runs fn on the engine loop and returns its result.
func Query[T any](ctx context.Context, e Engine, fn func() T) (T, error) {
	var zero T
	ch := make(chan T, 1)
	if !e.Enqueue(func() { ch <- fn() }) {
		return zero, ErrClosed
	}
	select {
	case v := <-ch:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
