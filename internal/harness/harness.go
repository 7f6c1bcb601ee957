package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/roach88/motion/internal/compiler"
	"github.com/roach88/motion/internal/dom"
	"github.com/roach88/motion/internal/engine"
	"github.com/roach88/motion/internal/host"
	"github.com/roach88/motion/internal/state"
	"github.com/roach88/motion/internal/store"
	"github.com/roach88/motion/internal/testutil"
)

const defaultSettleLimit = 1000

// Harness runs one scenario: an engine over an in-memory document with
// manual frames, a deterministic journal clock, and a fixed session token.
type Harness struct {
	engine   *engine.Engine
	doc      *dom.Document
	frames   *testutil.ManualFrames
	journal  *store.Store
	interval float64

	notifications []host.Notification
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory journal. The session is
// stopped after the last step, so the trace always ends with the stop and
// the journal carries a snapshot to replay against.
func Run(scenario *Scenario) (*Result, error) {
	model, err := compiler.Load(scenario.Document)
	if err != nil {
		return nil, fmt.Errorf("failed to compile document: %w", err)
	}
	if errs := compiler.Validate(model); len(errs) > 0 {
		return nil, fmt.Errorf("invalid document: %w", errs[0])
	}
	if model.Host == nil {
		return nil, fmt.Errorf("document %s declares no host elements", scenario.Document)
	}

	doc, err := dom.FromSpec(model.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to build document: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	sessions := testutil.NewFixedSessionGenerator(scenario.Session)
	session := sessions.Generate()

	h := &Harness{
		doc:      doc,
		frames:   testutil.NewManualFrames(),
		journal:  st,
		interval: scenario.Interval(),
	}
	h.engine = engine.New(doc, h.frames,
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		engine.WithJournal(st),
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithTokenGenerator(sessions),
		engine.WithThrottle(0),
		engine.WithNotifier(host.NotifierFunc(func(n host.Notification) {
			h.notifications = append(h.notifications, n)
		})),
	)

	if err := h.engine.Start(model, scenario.BindEvents()); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.execute(step); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	h.capture(result)
	h.engine.Stop()

	ctx := context.Background()
	records, err := st.ReadMessages(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	result.Trace, err = buildTrace(records)
	if err != nil {
		return nil, err
	}
	result.Notifications = h.notifications

	replay, err := st.Replay(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to replay journal: %w", err)
	}
	result.ReplayMatches = replay.Match
	result.ReplayHash = replay.Hash

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// execute performs one scripted step.
func (h *Harness) execute(step Step) error {
	switch {
	case step.Click != "":
		return h.doc.Click(step.Click)
	case step.Hover != "":
		return h.doc.Hover(step.Hover)
	case step.Move != nil:
		h.doc.MoveTo(step.Move[0], step.Move[1])
	case step.Leave:
		h.doc.Leave()
	case step.Scroll != nil:
		h.doc.ScrollTo(*step.Scroll)
	case step.Resize != nil:
		h.doc.Resize(step.Resize[0], step.Resize[1])
	case step.Ready:
		h.doc.Ready()
	case step.Load:
		h.doc.Load()
	case step.PageUpdate:
		h.doc.PageUpdate()
	case step.Playback != nil:
		h.engine.Dispatch(state.PlaybackRequested{
			ActionListID: step.Playback.ActionList,
			ElementID:    step.Playback.Element,
			Immediate:    step.Playback.Immediate,
			Verbose:      true,
			AllowEvents:  true,
		})
	case step.Stop != nil:
		h.engine.Dispatch(state.StopRequested{ActionListID: step.Stop.ActionList})
	case step.Clear:
		h.engine.Dispatch(state.ClearRequested{})
	case step.Frames > 0:
		h.frames.Step(step.Frames, h.interval)
	case step.Wait > 0:
		h.frames.Step(int(math.Ceil(step.Wait/h.interval)), h.interval)
	case step.Settle != nil:
		limit := step.Settle.Limit
		if limit <= 0 {
			limit = defaultSettleLimit
		}
		h.frames.RunUntil(h.interval, limit, h.settled)
		if !h.settled() {
			return fmt.Errorf("timed instances still running after %d frames", limit)
		}
	default:
		return fmt.Errorf("empty step")
	}
	return nil
}

// settled reports whether every timed instance has finished.
func (h *Harness) settled() bool {
	for _, in := range h.engine.State().Instances.All() {
		if !in.Continuous {
			return false
		}
	}
	return true
}

// capture records the live document and session state.
func (h *Harness) capture(result *Result) {
	st := h.engine.State()
	result.Instances = st.Instances.Len()
	for id, playing := range st.Session.Playback {
		result.Playing[id] = playing
	}
	for _, n := range h.doc.Nodes() {
		if s := h.doc.StyleString(n.Key()); s != "" {
			result.Styles[n.Key()] = s
		}
	}
	for _, err := range h.engine.Errors() {
		result.RuntimeErrors = append(result.RuntimeErrors, err.Error())
	}
}

// buildTrace turns journal records into trace events.
func buildTrace(records []store.Record) ([]TraceEvent, error) {
	trace := make([]TraceEvent, 0, len(records))
	items := map[uint64]string{}
	for _, rec := range records {
		raw, err := json.Marshal(rec.Message)
		if err != nil {
			return nil, fmt.Errorf("trace seq=%d: %w", rec.Seq, err)
		}
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("trace seq=%d: %w", rec.Seq, err)
		}
		trace = append(trace, TraceEvent{
			Seq:    rec.Seq,
			Kind:   string(rec.Message.Kind()),
			Detail: detail(rec.Message, items),
			Fields: fields,
		})
	}
	return trace, nil
}

// detail summarizes lifecycle messages. items remembers what each instance
// id animated so removals can name it.
func detail(m state.Message, items map[uint64]string) string {
	switch msg := m.(type) {
	case state.InstanceAdded:
		in := msg.Instance
		desc := fmt.Sprintf("%s/%s #%s", in.ActionListID, in.ActionItem.ID, in.ElementID)
		items[uint64(in.ID)] = desc
		return fmt.Sprintf("%s g%d", desc, in.GroupIndex)
	case state.InstanceRemoved:
		return items[uint64(msg.ID)]
	case state.ActionListPlaybackChanged:
		if msg.IsPlaying {
			return msg.ActionListID + " playing"
		}
		return msg.ActionListID + " stopped"
	case state.PlaybackRequested:
		return msg.ActionListID
	case state.StopRequested:
		if msg.ActionListID == "" {
			return "session"
		}
		return msg.ActionListID
	}
	return ""
}
