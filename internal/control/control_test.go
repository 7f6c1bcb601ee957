package control

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/motion/internal/engine"
	"github.com/roach88/motion/internal/state"
	"github.com/roach88/motion/internal/testutil"
)

func newEngine(t *testing.T) (*engine.Engine, *testutil.ManualFrames) {
	t.Helper()
	m := testutil.MustCompile(t, testutil.CascadeDocument)
	frames := testutil.NewManualFrames()
	e := engine.New(testutil.MustDocument(t, m), frames,
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		engine.WithThrottle(0),
	)
	require.NoError(t, e.Start(m, true))
	return e, frames
}

// runLoop runs the engine loop until the test ends.
func runLoop(t *testing.T, e *engine.Engine) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = e.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Request
		wantErr string
	}{
		{
			name: "playback",
			in:   `{"type":"playback","actionListId":"fade-out","immediate":true}`,
			want: Request{Type: TypePlayback, ActionListID: "fade-out", Immediate: true},
		},
		{
			name: "stop session",
			in:   `{"type":"stop"}`,
			want: Request{Type: TypeStop},
		},
		{
			name: "fire",
			in:   `{"type":"fire","eventId":"box-click","elementId":"box"}`,
			want: Request{Type: TypeFire, EventID: "box-click", ElementID: "box"},
		},
		{name: "missing type", in: `{}`, wantErr: "type is required"},
		{name: "unknown type", in: `{"type":"pause"}`, wantErr: `unknown request type "pause"`},
		{name: "playback without list", in: `{"type":"playback"}`, wantErr: "needs actionListId"},
		{name: "fire without event", in: `{"type":"fire"}`, wantErr: "needs eventId"},
		{name: "negative group", in: `{"type":"playback","actionListId":"a","groupIndex":-1}`, wantErr: "groupIndex"},
		{name: "unknown field", in: `{"type":"clear","force":true}`, wantErr: "unknown field"},
		{name: "not json", in: `clear`, wantErr: "decode request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Decode([]byte(tt.in))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, r)
		})
	}
}

func TestRequest_Message(t *testing.T) {
	e, _ := newEngine(t)
	st := e.State()

	m, err := Request{Type: TypePlayback, ActionListID: "fade-out", Verbose: true}.Message(st)
	require.NoError(t, err)
	assert.Equal(t, state.PlaybackRequested{ActionListID: "fade-out", Verbose: true, AllowEvents: true}, m)

	m, err = Request{Type: TypeStop, ActionListID: "fade-out"}.Message(st)
	require.NoError(t, err)
	assert.Equal(t, state.StopRequested{ActionListID: "fade-out"}, m)

	m, err = Request{Type: TypeClear}.Message(st)
	require.NoError(t, err)
	assert.Equal(t, state.ClearRequested{}, m)

	m, err = Request{Type: TypeFire, EventID: "box-click", ElementID: "box"}.Message(st)
	require.NoError(t, err)
	assert.Equal(t, state.PlaybackRequested{ActionListID: "fade-out", EventID: "box-click", ElementID: "box", AllowEvents: true}, m)

	_, err = Request{Type: TypeFire, EventID: "nope"}.Message(st)
	assert.ErrorIs(t, err, ErrUnknownEvent)

	_, err = Request{Type: TypeFire, EventID: "box-click"}.Message(state.State{})
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestApply_Fire(t *testing.T) {
	e, frames := newEngine(t)

	require.NoError(t, Apply(e, Request{Type: TypeFire, EventID: "box-click"}))

	var lists []string
	for _, in := range e.State().Instances.All() {
		if !in.Continuous {
			lists = append(lists, in.ActionListID)
		}
	}
	assert.Equal(t, []string{"fade-out"}, lists)

	frames.Step(10, 16)
	require.NoError(t, Apply(e, Request{Type: TypeStop}))
	assert.False(t, e.State().Session.Active)
}

func TestSubmit_RunsOnLoop(t *testing.T) {
	e, _ := newEngine(t)
	runLoop(t, e)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, Submit(ctx, e, Request{Type: TypePlayback, ActionListID: "fade-out", Verbose: true}))

	playing, err := Query(ctx, e, func() bool { return e.State().Session.Playback["fade-out"] })
	require.NoError(t, err)
	assert.True(t, playing)

	err = Submit(ctx, e, Request{Type: TypeFire, EventID: "missing"})
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestPost_ReportsErrors(t *testing.T) {
	e, _ := newEngine(t)
	runLoop(t, e)

	errs := make(chan error, 1)
	require.NoError(t, Post(e, Request{Type: TypeFire, EventID: "missing"}, func(err error) { errs <- err }))

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, ErrUnknownEvent)
	case <-time.After(5 * time.Second):
		t.Fatal("error not reported")
	}
}

func TestClosedEngine(t *testing.T) {
	e, _ := newEngine(t)
	e.Close()

	assert.ErrorIs(t, Post(e, Request{Type: TypeClear}, nil), ErrClosed)
	_, err := Query(context.Background(), e, func() int { return 1 })
	assert.ErrorIs(t, err, ErrClosed)
}
