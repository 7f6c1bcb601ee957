package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/motion/internal/host"
	"github.com/roach88/motion/internal/ir"
	"github.com/roach88/motion/internal/state"
	"github.com/roach88/motion/internal/store"
	"github.com/roach88/motion/internal/timeline"
)

func fadeModel() *ir.Model {
	return model([]ir.ActionList{
		list("fade", group(item("i1", ir.StyleOpacity, byID("box"), 100, opacity(0)))),
	})
}

func TestEngine_StartStop(t *testing.T) {
	h := newHarness(t)
	m := model([]ir.ActionList{list("fade", group(item("i1", ir.StyleOpacity, trigger, 100, opacity(0))))},
		startEvent("click", ir.MouseClick, byID("box"), "fade"))

	h.engine.Start(m, true)
	st := h.state()
	assert.True(t, st.Session.Active)
	assert.NotEmpty(t, st.Session.Listeners)
	assert.Equal(t, len(st.Session.Listeners), h.doc.ListenerCount())
	assert.Equal(t, 1, h.frames.Pending(), "render loop should wait for the next frame")

	// A second start on an active session binds nothing new.
	h.engine.Start(nil, true)
	assert.Equal(t, len(st.Session.Listeners), h.doc.ListenerCount())

	h.engine.Stop()
	assert.False(t, h.state().Session.Active)
	assert.Equal(t, 0, h.doc.ListenerCount())
	assert.Empty(t, h.state().Session.Listeners)

	h.tick(16)
	assert.Equal(t, 0, h.frames.Pending(), "render loop should end with the session")

	// Stop on an inactive session is a no-op.
	h.engine.Stop()
}

func TestEngine_StartWithoutEvents(t *testing.T) {
	h := newHarness(t)
	h.engine.Start(fadeModel(), false)

	assert.True(t, h.state().Session.Active)
	assert.Equal(t, 0, h.doc.ListenerCount())
	assert.Equal(t, 1, h.frames.Pending())
}

func TestEngine_PlaybackTimed(t *testing.T) {
	h := newHarness(t)
	h.engine.Start(fadeModel(), false)

	h.engine.Dispatch(state.PlaybackRequested{ActionListID: "fade", Verbose: true})
	require.Len(t, h.instances(), 1)
	assert.True(t, h.state().Session.IsPlaying("fade"))

	in := h.instances()[0]
	assert.Equal(t, "box", in.ElementID)
	assert.Equal(t, ir.Values{ir.KeyValue: 1}, in.Origin)
	assert.True(t, in.IsCarrier)

	h.tick(50)
	assert.Equal(t, "0.5", h.inline("box", "opacity"))

	h.tick(100)
	assert.Equal(t, "0", h.inline("box", "opacity"))
	assert.Empty(t, h.instances())
	assert.False(t, h.state().Session.IsPlaying("fade"))

	es, ok := h.state().Elements.Get("box")
	require.True(t, ok)
	assert.Equal(t, ir.Values{ir.KeyValue: 0}, es.RefState[ir.StyleOpacity].Values)
}

func TestEngine_OriginFromRecordedState(t *testing.T) {
	h := newHarness(t)
	m := model([]ir.ActionList{
		list("out", group(item("i1", ir.StyleOpacity, byID("box"), 100, opacity(0)))),
		list("in", group(item("i2", ir.StyleOpacity, byID("box"), 100, opacity(1)))),
	})
	h.engine.Start(m, false)

	h.engine.Dispatch(state.PlaybackRequested{ActionListID: "out"})
	h.tick(30)

	// Starting another instance on the same element and type replaces the
	// first and continues from where it was.
	h.engine.Dispatch(state.PlaybackRequested{ActionListID: "in"})
	require.Len(t, h.instances(), 1)
	in := h.instances()[0]
	assert.Equal(t, "in", in.ActionListID)
	assert.InDelta(t, 0.7, in.Origin[ir.KeyValue], 1e-9)
}

func TestEngine_ZeroDurationCascade(t *testing.T) {
	h := newHarness(t)
	display := func(id, value string) ir.ActionItem {
		it := item(id, ir.GeneralDisplay, byID("box"), 0, nil)
		it.Config.Display = value
		return it
	}
	m := model([]ir.ActionList{list("steps",
		group(display("d1", "none")),
		group(display("d2", "flex")),
		group(item("o1", ir.StyleOpacity, byID("box"), 0, opacity(0.3))),
	)})
	h.engine.Start(m, false)
	h.engine.Dispatch(state.PlaybackRequested{ActionListID: "steps"})

	h.tick(16)
	assert.Empty(t, h.instances(), "every zero-duration group should resolve in one frame")
	assert.Equal(t, "flex", h.inline("box", "display"))
	assert.Equal(t, "0.3", h.inline("box", "opacity"))
}

func TestEngine_CarrierCascadeWaitsForLongestItem(t *testing.T) {
	h := newHarness(t)
	m := model([]ir.ActionList{list("seq",
		group(
			item("short", ir.StyleOpacity, byID("box"), 50, opacity(0.5)),
			item("long", ir.TransformMove, byID("box"), 100, ir.Values{ir.KeyX: 100}),
		),
		group(item("next", ir.StyleOpacity, byID("card"), 100, opacity(0))),
	)})
	h.engine.Start(m, false)
	h.engine.Dispatch(state.PlaybackRequested{ActionListID: "seq"})

	h.tick(60)
	require.Len(t, h.instances(), 1, "the short item completes without cascading")
	assert.Equal(t, ir.TransformMove, h.instances()[0].ActionTypeID())

	h.tick(100)
	require.Len(t, h.instances(), 1)
	assert.Equal(t, "card", h.instances()[0].ElementID)
	assert.Equal(t, 1, h.instances()[0].GroupIndex)
}

func TestEngine_CarrierUsesEffectiveDuration(t *testing.T) {
	h := newHarness(t)
	hide := item("hide", ir.GeneralDisplay, byID("card"), 1000, nil)
	hide.Config.Display = "none"
	m := model([]ir.ActionList{list("seq",
		group(item("fade", ir.StyleOpacity, byID("box"), 300, opacity(0)), hide),
		group(item("next", ir.StyleOpacity, byID("footer"), 100, opacity(0))),
	)})
	h.engine.Start(m, false)
	h.engine.Dispatch(state.PlaybackRequested{ActionListID: "seq"})

	// Display applies instantly, so the fade carries the group.
	h.tick(16)
	require.Len(t, h.instances(), 1)
	assert.Equal(t, "fade", h.instances()[0].ActionItem.ID)
	assert.True(t, h.instances()[0].IsCarrier)
	assert.Equal(t, "none", h.inline("card", "display"))

	h.tick(300)
	require.Len(t, h.instances(), 1)
	assert.Equal(t, "next", h.instances()[0].ActionItem.ID)
	assert.Equal(t, 1, h.instances()[0].GroupIndex)
}

func TestEngine_RestartGroupKeepsOneInstancePerElement(t *testing.T) {
	h := newHarness(t)
	m := model([]ir.ActionList{list("cards",
		group(item("dim", ir.StyleOpacity, ir.Target{Selector: ".card"}, 100, opacity(0.2))),
	)})
	h.engine.Start(m, false)

	opts := GroupOptions{EventID: "click", ActionListID: "cards"}
	require.True(t, h.engine.StartActionGroup(opts))
	first := map[string]timeline.ID{}
	for _, in := range h.instances() {
		first[in.ElementID] = in.ID
	}
	require.Len(t, first, 2)

	require.True(t, h.engine.StartActionGroup(opts))
	ins := h.instances()
	require.Len(t, ins, 2)
	carriers := 0
	for _, in := range ins {
		assert.NotEqual(t, first[in.ElementID], in.ID, "instance on %s should be replaced", in.ElementID)
		if in.IsCarrier {
			carriers++
		}
	}
	assert.ElementsMatch(t, []string{"card", "card-2"}, []string{ins[0].ElementID, ins[1].ElementID})
	assert.Equal(t, 1, carriers)
}

func TestEngine_LoopQuota(t *testing.T) {
	h := newHarness(t, WithMaxCascadeSteps(5))
	loop := startEvent("start", ir.PageStart, ir.Target{}, "blink")
	loop.Config.Loop = true
	m := model([]ir.ActionList{list("blink",
		group(item("o1", ir.StyleOpacity, byID("box"), 0, opacity(0))),
		group(item("o2", ir.StyleOpacity, byID("box"), 0, opacity(1))),
	)}, loop)
	h.engine.Start(m, false)
	h.engine.Dispatch(state.PlaybackRequested{ActionListID: "blink", EventID: "start"})

	h.tick(16)
	assert.Empty(t, h.instances())
	errs := h.engine.Errors()
	require.NotEmpty(t, errs)
	assert.Equal(t, ErrCodeCascadeQuotaExceeded, ErrorCode(errs[len(errs)-1]))
}

func TestEngine_LoopAcrossFrames(t *testing.T) {
	h := newHarness(t)
	loop := startEvent("start", ir.PageStart, ir.Target{}, "pulse")
	loop.Config.Loop = true
	m := model([]ir.ActionList{list("pulse",
		group(item("o1", ir.StyleOpacity, byID("box"), 100, opacity(0))),
		group(item("o2", ir.StyleOpacity, byID("box"), 100, opacity(1))),
	)}, loop)
	h.engine.Start(m, false)
	h.engine.Dispatch(state.PlaybackRequested{ActionListID: "pulse", EventID: "start"})

	h.tick(100)
	require.Len(t, h.instances(), 1)
	assert.Equal(t, 1, h.instances()[0].GroupIndex)

	h.tick(200)
	require.Len(t, h.instances(), 1)
	assert.Equal(t, 0, h.instances()[0].GroupIndex, "loop restarts at the first group")
	assert.Empty(t, h.engine.Errors())
}

func TestEngine_ImmediatePlayback(t *testing.T) {
	h := newHarness(t)
	m := model([]ir.ActionList{list("fade",
		group(item("o1", ir.StyleOpacity, byID("box"), 500, opacity(0.2))),
	)})
	h.engine.Start(m, false)
	h.engine.Dispatch(state.PlaybackRequested{ActionListID: "fade", Immediate: true, Verbose: true})

	assert.Empty(t, h.instances())
	assert.Equal(t, "0.2", h.inline("box", "opacity"))
	assert.False(t, h.state().Session.IsPlaying("fade"))
}

func TestEngine_InitialStateGroup(t *testing.T) {
	h := newHarness(t)
	l := list("reveal",
		group(item("hide", ir.StyleOpacity, byID("box"), 0, opacity(0))),
		group(item("show", ir.StyleOpacity, byID("box"), 100, opacity(1))),
	)
	l.UseFirstGroupAsInitialState = true
	m := model([]ir.ActionList{l}, startEvent("click", ir.MouseClick, byID("box"), "reveal"))

	h.engine.Start(m, true)
	assert.Equal(t, "0", h.inline("box", "opacity"), "initial group renders at bind")
	assert.Empty(t, h.instances())

	require.NoError(t, h.doc.Click("box"))
	require.Len(t, h.instances(), 1)
	in := h.instances()[0]
	assert.Equal(t, 1, in.GroupIndex)
	assert.Equal(t, 0.0, in.Origin[ir.KeyValue])
}

func TestEngine_PlayInReverse(t *testing.T) {
	h := newHarness(t)
	ev := startEvent("click", ir.MouseClick, byID("box"), "steps")
	ev.Action.Config.PlayInReverse = true
	m := model([]ir.ActionList{list("steps",
		group(item("first", ir.StyleOpacity, byID("box"), 100, opacity(0))),
		group(item("second", ir.StyleOpacity, byID("card"), 100, opacity(0))),
	)}, ev)

	h.engine.Start(m, true)
	require.NoError(t, h.doc.Click("box"))
	require.Len(t, h.instances(), 1)
	assert.Equal(t, "second", h.instances()[0].ActionItem.ID)
}

func TestEngine_StopRequest(t *testing.T) {
	h := newHarness(t)
	h.engine.Start(fadeModel(), false)
	h.engine.Dispatch(state.PlaybackRequested{ActionListID: "fade", Verbose: true})
	h.tick(50)

	h.engine.Dispatch(state.StopRequested{ActionListID: "fade"})
	assert.Empty(t, h.instances())
	assert.False(t, h.state().Session.Active)
	assert.Equal(t, "0.5", h.inline("box", "opacity"), "stop leaves rendered styles")
}

func TestEngine_ClearRequest(t *testing.T) {
	h := newHarness(t)
	h.engine.Start(fadeModel(), false)
	h.engine.Dispatch(state.PlaybackRequested{ActionListID: "fade"})
	h.tick(50)
	require.Equal(t, "0.5", h.inline("box", "opacity"))

	h.engine.Dispatch(state.ClearRequested{})
	assert.False(t, h.state().Session.Active)
	assert.NotContains(t, h.doc.Inline("box"), "opacity")
}

func TestEngine_PreviewRequest(t *testing.T) {
	h := newHarness(t)
	m := model([]ir.ActionList{list("fade", group(item("i1", ir.StyleOpacity, trigger, 100, opacity(0))))},
		startEvent("click", ir.MouseClick, byID("box"), "fade"))

	h.engine.Dispatch(state.PreviewRequested{Model: m})
	assert.True(t, h.state().Session.Active)
	assert.Positive(t, h.doc.ListenerCount())
}

func TestEngine_UnknownList(t *testing.T) {
	h := newHarness(t)
	h.engine.Start(fadeModel(), false)
	h.engine.Dispatch(state.PlaybackRequested{ActionListID: "missing"})

	errs := h.engine.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeUnknownActionList, ErrorCode(errs[0]))
}

func TestEngine_Plugins(t *testing.T) {
	lottie := host.PluginType("lottie")
	pluginItem := item("p1", lottie, byID("box"), 100, ir.Values{"frame": 1})
	m := model([]ir.ActionList{list("anim", group(pluginItem))})

	t.Run("unregistered at start", func(t *testing.T) {
		h := newHarness(t)
		err := h.engine.Start(m, false)
		require.Error(t, err)
		assert.Equal(t, ErrCodePluginNotRegistered, ErrorCode(err))
		assert.False(t, h.state().Session.Active)
		assert.Nil(t, h.state().Data)
	})

	t.Run("unregistered at playback", func(t *testing.T) {
		h := newHarness(t)
		h.engine.Dispatch(state.DataImported{Model: m})
		require.NoError(t, h.engine.Start(nil, false))
		h.engine.Dispatch(state.PlaybackRequested{ActionListID: "anim"})

		assert.Empty(t, h.instances())
		errs := h.engine.Errors()
		require.Len(t, errs, 1)
		assert.Equal(t, ErrCodePluginNotRegistered, ErrorCode(errs[0]))
	})

	t.Run("registered", func(t *testing.T) {
		p := &fakePlugin{}
		plugins := host.NewPlugins()
		plugins.Register("lottie", p)
		h := newHarness(t, WithPlugins(plugins))
		require.NoError(t, h.engine.Start(m, false))
		h.engine.Dispatch(state.PlaybackRequested{ActionListID: "anim"})

		assert.Equal(t, []string{"box"}, p.created)
		h.tick(50)
		h.tick(100)
		require.Len(t, p.renders, 2)
		assert.InDelta(t, 0.5, p.renders[0]["frame"], 1e-9)
		assert.InDelta(t, 1, p.renders[1]["frame"], 1e-9)

		h.engine.Dispatch(state.ClearRequested{})
		assert.Contains(t, p.cleared, "box")
	})
}

func TestEngine_Notifications(t *testing.T) {
	var got []host.Notification
	h := newHarness(t, WithNotifier(host.NotifierFunc(func(n host.Notification) {
		got = append(got, n)
	})))
	h.engine.Start(fadeModel(), false)
	h.engine.Dispatch(state.PlaybackRequested{ActionListID: "fade"})
	h.tick(100)

	require.Len(t, got, 2)
	assert.Equal(t, host.AnimationStarted, got[0].Kind)
	assert.Equal(t, host.AnimationStopping, got[1].Kind)
	assert.Equal(t, got[0].InstanceID, got[1].InstanceID)
	assert.Equal(t, "fade", got[1].ActionListID)
	assert.Equal(t, string(ir.StyleOpacity), got[1].ActionTypeID)
}

func TestEngine_Journal(t *testing.T) {
	ctx := context.Background()
	s, err := store.Open(t.TempDir() + "/journal.db")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	h := newHarness(t, WithJournal(s))
	h.engine.Start(fadeModel(), false)
	assert.Equal(t, "session-1", h.engine.Session())

	h.engine.Dispatch(state.PlaybackRequested{ActionListID: "fade"})
	h.tick(40)
	want, err := h.state().Hash()
	require.NoError(t, err)
	h.engine.Stop()
	assert.Empty(t, h.engine.Session())

	res, err := s.Replay(ctx, "session-1")
	require.NoError(t, err)
	assert.True(t, res.Match)
	assert.Equal(t, want, res.Hash)
	assert.Equal(t, 1, res.Instances)

	// The next session gets a new token and carries the model again.
	h.engine.Start(nil, false)
	assert.Equal(t, "session-2", h.engine.Session())
	recs, err := s.ReadMessages(ctx, "session-2")
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	assert.Equal(t, state.KindDataImported, recs[0].Message.Kind())
}

func TestEngine_Run(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- h.engine.Run(ctx) }()

	started := make(chan bool, 1)
	require.True(t, h.engine.Enqueue(func() {
		h.engine.Start(fadeModel(), false)
		started <- h.engine.State().Session.Active
	}))

	select {
	case ok := <-started:
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("run did not stop")
	}
	assert.False(t, h.engine.Enqueue(func() {}), "enqueue after stop should fail")
}

func TestEngine_RunRecoversPanics(t *testing.T) {
	h := newHarness(t)
	done := make(chan error, 1)
	go func() { done <- h.engine.Run(context.Background()) }()

	h.engine.Enqueue(func() { panic("boom") })
	ran := make(chan struct{})
	h.engine.Enqueue(func() { close(ran) })

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("task after panic did not run")
	}

	h.engine.Close()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("run did not stop after close")
	}
}
