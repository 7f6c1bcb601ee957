package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/motion/internal/dom"
	"github.com/roach88/motion/internal/host"
	"github.com/roach88/motion/internal/ir"
	"github.com/roach88/motion/internal/state"
	"github.com/roach88/motion/internal/timeline"
)

// harness is an engine over an in-memory document with hand-ticked frames.
type harness struct {
	t      *testing.T
	engine *Engine
	doc    *dom.Document
	frames *host.FrameQueue
}

func fixtureDoc(t *testing.T) *dom.Document {
	t.Helper()
	d, err := dom.FromSpec(&ir.HostSpec{
		Width:  400,
		Height: 300,
		Elements: []ir.HostElement{
			{ID: "box", Classes: []string{"box"}, X: 0, Y: 0, Width: 100, Height: 100},
			{ID: "card", Classes: []string{"card"}, Boundary: true, X: 200, Y: 0, Width: 150, Height: 100},
			{ID: "card-title", Parent: "card", Classes: []string{"title"}, X: 210, Y: 10, Width: 100, Height: 20},
			{ID: "card-2", Classes: []string{"card"}, Boundary: true, X: 200, Y: 150, Width: 150, Height: 100},
			{ID: "card-2-title", Parent: "card-2", Classes: []string{"title"}, X: 210, Y: 160, Width: 100, Height: 20},
			{ID: "footer", X: 0, Y: 800, Width: 400, Height: 100},
		},
	})
	require.NoError(t, err)
	return d
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	d := fixtureDoc(t)
	frames := host.NewFrameQueue(nil)
	opts = append([]Option{WithThrottle(0), WithTokenGenerator(NewFixedGenerator("session-1", "session-2", "session-3"))}, opts...)
	return &harness{t: t, engine: New(d, frames, opts...), doc: d, frames: frames}
}

func (h *harness) tick(now float64) {
	h.frames.Tick(now)
}

func (h *harness) state() state.State {
	return h.engine.State()
}

func (h *harness) instances() []*timeline.Instance {
	return h.engine.State().Instances.All()
}

func (h *harness) inline(id, prop string) string {
	return h.doc.Inline(id)[prop]
}

func item(id string, actionType ir.ActionTypeID, target ir.Target, duration float64, values ir.Values) ir.ActionItem {
	return ir.ActionItem{
		ID:           id,
		ActionTypeID: actionType,
		Config: ir.ActionItemConfig{
			Duration: duration,
			Easing:   "linear",
			Target:   target,
			Values:   values,
		},
	}
}

func byID(id string) ir.Target { return ir.Target{ID: id} }

var trigger = ir.Target{AppliesTo: ir.AppliesToTrigger}

func group(items ...ir.ActionItem) ir.ActionItemGroup {
	return ir.ActionItemGroup{ActionItems: items}
}

func list(id string, groups ...ir.ActionItemGroup) ir.ActionList {
	return ir.ActionList{ID: id, ActionItemGroups: groups}
}

func startEvent(id string, eventType ir.EventTypeID, target ir.Target, listID string) ir.Event {
	return ir.Event{
		ID:          id,
		EventTypeID: eventType,
		Target:      target,
		Action: ir.EventAction{
			ActionTypeID: ir.GeneralStartAction,
			Config:       ir.ActionConfig{ActionListID: listID},
		},
	}
}

func model(lists []ir.ActionList, events ...ir.Event) *ir.Model {
	m := &ir.Model{
		Events:      map[string]ir.Event{},
		ActionLists: map[string]ir.ActionList{},
	}
	for _, l := range lists {
		m.ActionLists[l.ID] = l
	}
	for _, ev := range events {
		m.Events[ev.ID] = ev
		m.EventOrder = append(m.EventOrder, ev.ID)
	}
	return m
}

func opacity(v float64) ir.Values { return ir.Values{ir.KeyValue: v} }

// fakePlugin records what the engine asks of it.
type fakePlugin struct {
	created []string
	renders []ir.Values
	cleared []string
}

func (p *fakePlugin) Origin(el host.Element, recorded ir.Values, item ir.ActionItem) ir.Values {
	if recorded != nil {
		return recorded
	}
	return ir.Values{"frame": 0}
}

func (p *fakePlugin) Destination(item ir.ActionItem) ir.Values {
	return ir.Values{"frame": item.Config.Values["frame"]}
}

func (p *fakePlugin) Duration(el host.Element, item ir.ActionItem) float64 { return 0 }

func (p *fakePlugin) CreateInstance(el host.Element, item ir.ActionItem) any {
	p.created = append(p.created, el.Key())
	return el.Key()
}

func (p *fakePlugin) Render(instance any, el host.Element, u host.Update) {
	p.renders = append(p.renders, u.Current)
}

func (p *fakePlugin) Clear(el host.Element) {
	p.cleared = append(p.cleared, el.Key())
}
