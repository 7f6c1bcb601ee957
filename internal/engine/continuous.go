package engine

import (
	"sort"

	"github.com/roach88/motion/internal/host"
	"github.com/roach88/motion/internal/ir"
	"github.com/roach88/motion/internal/state"
	"github.com/roach88/motion/internal/timeline"
)

// driver feeds one parameter key from an event's input.
type driver struct {
	cfg  ir.ContinuousConfig
	kind ir.ParameterType
	key  string
}

// bindContinuous creates the continuous instances of every parameter group
// the event drives, one set per target, and binds the input that moves
// their parameters.
func (e *Engine) bindContinuous(ev ir.Event, bs []binding) {
	st := e.store.State()
	if !ev.AllowsMediaQuery(st.Session.MediaQueryKey) {
		return
	}
	listID := ev.Action.Config.ActionListID
	list, _ := st.ActionList(listID)

	for _, b := range bs {
		var drivers []driver
		for _, cfg := range ev.Config.Continuous {
			group, ok := list.ParameterGroup(cfg.ContinuousParameterGroupID)
			if !ok {
				e.logger.Warn("unknown parameter group",
					"event", ev.ID,
					"list", listID,
					"group", cfg.ContinuousParameterGroupID,
				)
				continue
			}
			key := b.key + "/" + group.ID
			e.createContinuous(b, listID, group, cfg, key)
			drivers = append(drivers, driver{cfg: cfg, kind: group.Type, key: key})
		}
		if len(drivers) > 0 {
			e.bindDriver(b, drivers)
		}
	}
}

func (e *Engine) bindDriver(b binding, drivers []driver) {
	id := b.event.ID
	switch b.event.EventTypeID {
	case ir.MouseMove:
		e.listen(id, host.SourceMouseMove, b.el, e.throttled(func(in host.Input) {
			r := e.doc.Rect(b.el)
			e.drive(b, drivers, fraction(in.X-r.X, r.Width), fraction(in.Y-r.Y, r.Height), 0)
		}))
	case ir.MouseMoveInViewport:
		e.listen(id, host.SourceMouseMove, nil, e.throttled(func(in host.Input) {
			vp := e.doc.Viewport()
			e.drive(b, drivers, fraction(in.X, vp.Width), fraction(in.Y, vp.Height), 0)
		}))
	case ir.ScrollingInView, ir.PageScroll:
		update := func(host.Input) { e.driveScroll(b, drivers) }
		throttled := e.throttled(update)
		e.listen(id, host.SourceScroll, nil, throttled)
		e.listen(id, host.SourceResize, nil, throttled)
		update(host.Input{})
	default:
		e.logger.Debug("event type has no continuous driver", "event", id, "type", b.event.EventTypeID)
	}
}

func (e *Engine) driveScroll(b binding, drivers []driver) {
	vp := e.doc.Viewport()
	if b.event.EventTypeID == ir.PageScroll {
		p := fraction(vp.ScrollY, vp.ScrollHeight-vp.Height)
		e.drive(b, drivers, 0, 0, p)
		return
	}
	r := e.doc.Rect(b.el)
	for _, d := range drivers {
		e.setParameter(d, scrollProgress(r, vp.Height, d.cfg))
	}
}

// drive sets each driver's parameter from the pointer fractions or scroll
// progress, by parameter type.
func (e *Engine) drive(b binding, drivers []driver, x, y, scroll float64) {
	if !b.event.AllowsMediaQuery(e.store.State().Session.MediaQueryKey) {
		return
	}
	for _, d := range drivers {
		switch d.kind {
		case ir.ParameterMouseX:
			e.setParameter(d, x)
		case ir.ParameterMouseY:
			e.setParameter(d, y)
		case ir.ParameterScrollProgress:
			e.setParameter(d, scroll)
		}
	}
}

func (e *Engine) setParameter(d driver, v float64) {
	if d.cfg.Reverse {
		v = 1 - v
	}
	if cur, ok := e.store.State().Parameters[d.key]; ok && cur == v {
		return
	}
	e.Dispatch(state.ParameterChanged{Key: d.key, Value: v})
}

// scrollProgress maps an element's position to [0, 1]. Progress starts when
// the element starts entering the viewport (or is fully inside it) and ends
// when it starts exiting (or has fully left). Offsets are percentages of the
// viewport height that delay the start and advance the end.
func scrollProgress(r host.Rect, vh float64, cfg ir.ContinuousConfig) float64 {
	start := vh - r.Height
	if cfg.StartsEntering {
		start = vh
	}
	end := -r.Height
	if cfg.StartsExiting {
		end = 0
	}
	if cfg.AddStartOffset {
		start -= vh * cfg.StartOffset / 100
	}
	if cfg.AddEndOffset {
		end += vh * cfg.EndOffset / 100
	}
	span := start - end
	if span <= 0 {
		if r.Y <= end {
			return 1
		}
		return 0
	}
	return clamp01((start - r.Y) / span)
}

func fraction(v, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return clamp01(v / total)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// track is one action item's keyframes within a parameter group.
type track struct {
	item      ir.ActionItem
	keyframes []timeline.Keyframe
}

// tracks groups a parameter group's items by target and action type, in
// order of first appearance, with keyframes sorted by position.
func tracks(group ir.ContinuousParameterGroup) []*track {
	byKey := map[string]*track{}
	var out []*track
	for _, ag := range group.ContinuousActionGroups {
		for _, item := range ag.ActionItems {
			k := item.Config.Target.Key() + "#" + string(item.ActionTypeID)
			t, ok := byKey[k]
			if !ok {
				t = &track{item: item}
				byKey[k] = t
				out = append(out, t)
			}
			t.keyframes = append(t.keyframes, timeline.Keyframe{Position: ag.Keyframe, Item: item})
		}
	}
	for _, t := range out {
		sort.SliceStable(t.keyframes, func(i, j int) bool {
			return t.keyframes[i].Position < t.keyframes[j].Position
		})
	}
	return out
}

func (e *Engine) createContinuous(b binding, actionListID string, group ir.ContinuousParameterGroup, cfg ir.ContinuousConfig, key string) {
	for _, t := range tracks(group) {
		p, ok := e.pluginFor(t.item, actionListID)
		if !ok {
			continue
		}
		for _, el := range e.doc.Resolve(host.Query{Target: t.item.Config.Target, EventTarget: b.el}) {
			elementID := el.Key()
			actionType := t.item.ActionTypeID
			e.removeMatching(func(in *timeline.Instance) bool {
				return in.Continuous && in.ElementID == elementID &&
					in.ActionTypeID() == actionType && in.ParameterKey == key
			})

			in := timeline.Instance{
				ID:            timeline.ID(e.ids.Next()),
				ElementID:     elementID,
				ActionItem:    t.item,
				Continuous:    true,
				ParameterKey:  key,
				Smoothing:     cfg.Smoothing,
				RestingValue:  cfg.RestingState,
				Keyframes:     e.resolveKeyframes(el, t, p),
				EventID:       b.event.ID,
				ActionListID:  actionListID,
				EventStateKey: b.key,
				EventTarget:   b.el.Key(),
			}
			if p != nil {
				e.pluginInstances[in.ID] = p.CreateInstance(el, t.item)
			}
			e.Dispatch(state.InstanceAdded{Instance: in})
			e.notify(host.AnimationStarted, &in)
		}
	}
}

// resolveKeyframes turns each keyframe's item config into the concrete
// values the instance interpolates, against one element.
func (e *Engine) resolveKeyframes(el host.Element, t *track, p host.Plugin) []timeline.Keyframe {
	origin, _, _ := e.origin(el, t.item, p)
	out := make([]timeline.Keyframe, len(t.keyframes))
	for i, kf := range t.keyframes {
		item := kf.Item
		values, units := e.destination(el, item, p, origin)
		item.Config.Values = values
		item.Config.Units = units
		out[i] = timeline.Keyframe{Position: kf.Position, Item: item}
	}
	return out
}
