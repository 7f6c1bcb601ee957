package engine

import (
	"fmt"

	"github.com/roach88/motion/internal/host"
	"github.com/roach88/motion/internal/ir"
	"github.com/roach88/motion/internal/state"
)

// binding is one event bound to one of its target elements. key indexes
// the event's transient state in the session.
type binding struct {
	event ir.Event
	el    host.Element
	key   string
}

// bindEvents records the breakpoints, binds the page-level listeners, and
// binds every event in declaration order.
func (e *Engine) bindEvents() {
	model := e.store.State().Data
	if model == nil {
		return
	}

	if len(model.MediaQueries) > 0 {
		e.Dispatch(state.MediaQueriesDefined{Keys: model.MediaQueryKeys()})
	}
	e.Dispatch(state.ViewportWidthChanged{
		Width:        int(e.doc.Viewport().Width),
		MediaQueries: model.MediaQueries,
	})

	e.listen("", host.SourceResize, nil, e.throttled(func(host.Input) {
		e.viewportResized()
	}))
	e.listen("", host.SourcePageUpdate, nil, func(host.Input) {
		e.logger.Info("page updated, rebinding")
		e.Stop()
		_ = e.Start(nil, true)
	})

	for _, ev := range model.OrderedEvents() {
		if !ev.EventTypeID.IsKnown() {
			e.report(NewUnknownEventError(ev.ID, string(ev.EventTypeID)))
			continue
		}
		listID := ev.Action.Config.ActionListID
		if _, ok := model.ActionLists[listID]; !ok {
			e.report(NewUnknownListError(ev.ID, listID))
			continue
		}
		if ev.Action.ActionTypeID == ir.GeneralStartAction {
			e.renderInitialGroup(listID, ev.ID)
		}
		e.bindEvent(ev)
	}
}

func (e *Engine) viewportResized() {
	st := e.store.State()
	width := int(e.doc.Viewport().Width)
	if width == st.Session.ViewportWidth || st.Data == nil {
		return
	}
	e.Dispatch(state.ViewportWidthChanged{Width: width, MediaQueries: st.Data.MediaQueries})
}

// listen registers a handler with the document and records the listener.
func (e *Engine) listen(eventID string, src host.Source, target host.Element, h host.Handler) {
	id := uint64(e.ids.Next())
	e.removers[id] = e.doc.Listen(src, target, h)

	var key string
	if target != nil {
		key = target.Key()
	}
	e.Dispatch(state.ListenerAdded{Listener: state.Listener{
		ID:      id,
		EventID: eventID,
		Source:  string(src),
		Target:  key,
	}})
}

// eventTargets resolves the elements an event fires on. Page-level events
// fire on the document root.
func (e *Engine) eventTargets(ev ir.Event) []host.Element {
	if ev.EventTypeID.IsPageLevel() {
		return e.doc.Resolve(host.Query{Target: ir.Target{AppliesTo: ir.AppliesToPage}})
	}
	var out []host.Element
	seen := map[string]bool{}
	for _, t := range ev.AllTargets() {
		if t.IsZero() {
			continue
		}
		for _, el := range e.doc.Resolve(host.Query{Target: t}) {
			if !seen[el.Key()] {
				seen[el.Key()] = true
				out = append(out, el)
			}
		}
	}
	return out
}

func (e *Engine) bindEvent(ev ir.Event) {
	targets := e.eventTargets(ev)
	bs := make([]binding, len(targets))
	for i, el := range targets {
		bs[i] = binding{event: ev, el: el, key: fmt.Sprintf("%s:%d", ev.ID, i)}
	}

	if ev.Action.IsContinuous() {
		e.bindContinuous(ev, bs)
		return
	}

	for _, b := range bs {
		e.bindTrigger(b)
	}
}

// bindTrigger binds a timed event on one target.
func (e *Engine) bindTrigger(b binding) {
	id := b.event.ID
	switch b.event.EventTypeID {
	case ir.MouseClick, ir.MouseSecondClick:
		e.listen(id, host.SourceClick, b.el, e.onClick(b))
	case ir.MouseDown:
		e.listen(id, host.SourceMouseDown, b.el, func(host.Input) { e.fire(b) })
	case ir.MouseUp:
		e.listen(id, host.SourceMouseUp, b.el, func(host.Input) { e.fire(b) })
	case ir.MouseOver, ir.MouseOut:
		e.listen(id, host.SourceMouseOver, b.el, func(in host.Input) { e.hover(b, in, true) })
		e.listen(id, host.SourceMouseOut, b.el, func(in host.Input) { e.hover(b, in, false) })
	case ir.ScrollIntoView, ir.ScrollOutOfView:
		check := e.throttled(func(host.Input) { e.checkVisibility(b) })
		e.listen(id, host.SourceScroll, nil, check)
		e.listen(id, host.SourceResize, nil, check)
		e.checkVisibility(b)
	case ir.PageStart:
		e.listen(id, host.SourceReady, nil, func(host.Input) { e.fireOnce(b) })
	case ir.PageFinish:
		e.listen(id, host.SourceLoad, nil, func(host.Input) { e.fireOnce(b) })
	case ir.PageScrollUp, ir.PageScrollDown:
		last := e.doc.Viewport().ScrollY
		e.listen(id, host.SourceScroll, nil, e.throttled(func(host.Input) {
			y := e.doc.Viewport().ScrollY
			if y != last {
				e.scrollDirection(b, y > last)
				last = y
			}
		}))
	default:
		// Continuous drivers bound with a start action have nothing to
		// trigger on.
		e.logger.Debug("event type has no trigger", "event", id, "type", b.event.EventTypeID)
	}
}

// fire runs an event's action on its target: stop the auto-stop event's
// group on the same target, stop this event's own group, then start it.
func (e *Engine) fire(b binding) {
	st := e.store.State()
	ev := b.event
	if !ev.AllowsMediaQuery(st.Session.MediaQueryKey) {
		return
	}
	listID := ev.Action.Config.ActionListID

	if stopID := ev.Action.Config.AutoStopEventID; stopID != "" {
		if stopEvent, ok := st.Event(stopID); ok {
			e.StopActionGroup(GroupOptions{
				EventID:      stopID,
				ActionListID: stopEvent.Action.Config.ActionListID,
				EventTarget:  b.el,
				SameTarget:   true,
			})
		}
	}

	e.StopActionGroup(GroupOptions{
		EventID:       ev.ID,
		ActionListID:  listID,
		EventTarget:   b.el,
		EventStateKey: b.key,
	})
	started := e.StartActionGroup(GroupOptions{
		EventID:       ev.ID,
		ActionListID:  listID,
		EventTarget:   b.el,
		EventStateKey: b.key,
	})
	e.logger.Debug("event fired", "event", ev.ID, "target", b.el.Key(), "started", started)
}

func (e *Engine) setEventState(key string, es state.EventState) {
	e.Dispatch(state.EventStateChanged{Key: key, State: es})
}

// onClick counts clicks on the target. A first-click event whose target
// also has a second-click event fires on odd clicks only; otherwise it
// fires on every click. Second-click events fire on even clicks.
func (e *Engine) onClick(b binding) host.Handler {
	second := b.event.EventTypeID == ir.MouseSecondClick
	paired := !second && e.hasSecondClick(b.event)
	return func(host.Input) {
		es := e.store.State().Session.EventStateFor(b.key)
		es.Clicks++
		e.setEventState(b.key, es)

		odd := es.Clicks%2 == 1
		if (second && !odd) || (!second && (odd || !paired)) {
			e.fire(b)
		}
	}
}

func (e *Engine) hasSecondClick(ev ir.Event) bool {
	model := e.store.State().Data
	for _, other := range model.OrderedEvents() {
		if other.EventTypeID == ir.MouseSecondClick && other.Target.Key() == ev.Target.Key() {
			return true
		}
	}
	return false
}

// hover tracks whether the pointer is inside the target and fires on the
// matching transition.
func (e *Engine) hover(b binding, in host.Input, entering bool) {
	if in.Target == nil || in.Target.Key() != b.el.Key() {
		return
	}
	es := e.store.State().Session.EventStateFor(b.key)
	if es.Hovered == entering {
		return
	}
	es.Hovered = entering
	e.setEventState(b.key, es)

	if (entering && b.event.EventTypeID == ir.MouseOver) || (!entering && b.event.EventTypeID == ir.MouseOut) {
		e.fire(b)
	}
}

// visible reports whether a target lies inside the viewport, shrunk at top
// and bottom by offsetPercent of its height.
func (e *Engine) visible(el host.Element, offsetPercent float64) bool {
	vp := e.doc.Viewport()
	r := e.doc.Rect(el)
	offset := vp.Height * offsetPercent / 100
	return r.Y < vp.Height-offset && r.Y+r.Height > offset &&
		r.X < vp.Width && r.X+r.Width > 0
}

func (e *Engine) checkVisibility(b binding) {
	es := e.store.State().Session.EventStateFor(b.key)
	vis := e.visible(b.el, b.event.Config.ScrollOffsetValue)
	if vis == es.Visible {
		return
	}
	es.Visible = vis
	e.setEventState(b.key, es)

	if (vis && b.event.EventTypeID == ir.ScrollIntoView) || (!vis && b.event.EventTypeID == ir.ScrollOutOfView) {
		e.fire(b)
	}
}

// fireOnce fires a page lifecycle event the first time only.
func (e *Engine) fireOnce(b binding) {
	es := e.store.State().Session.EventStateFor(b.key)
	if es.Fired {
		return
	}
	es.Fired = true
	e.setEventState(b.key, es)
	e.fire(b)
}

// scrollDirection fires page scroll up/down events when the scroll
// direction changes.
func (e *Engine) scrollDirection(b binding, down bool) {
	es := e.store.State().Session.EventStateFor(b.key)
	if es.Fired && es.ScrollingDown == down {
		return
	}
	es.Fired = true
	es.ScrollingDown = down
	e.setEventState(b.key, es)

	if (down && b.event.EventTypeID == ir.PageScrollDown) || (!down && b.event.EventTypeID == ir.PageScrollUp) {
		e.fire(b)
	}
}
