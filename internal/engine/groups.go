package engine

import (
	"sort"

	"github.com/roach88/motion/internal/host"
	"github.com/roach88/motion/internal/ir"
	"github.com/roach88/motion/internal/state"
	"github.com/roach88/motion/internal/timeline"
)

// GroupOptions selects an action group to start or stop.
type GroupOptions struct {
	EventID       string
	ActionListID  string
	EventTarget   host.Element
	EventStateKey string
	GroupIndex    int

	// Immediate jumps every instance to its destination in the current
	// frame.
	Immediate bool
	// Verbose keeps the list's playback flag up to date.
	Verbose bool

	// SameTarget restricts a stop to instances started by EventTarget.
	SameTarget bool
}

// StartActionGroup creates one instance per (item, element) of the group at
// GroupIndex. It returns false when nothing was started: the list is
// missing or empty, the index is past the end without loop, the event is
// excluded at the current breakpoint, or no item resolved to an element.
func (e *Engine) StartActionGroup(opts GroupOptions) bool {
	st := e.store.State()
	list, ok := st.ActionList(opts.ActionListID)
	if !ok {
		return false
	}
	event, _ := st.Event(opts.EventID)
	if event.Action.Config.PlayInReverse {
		list = list.Reversed()
	}

	groups := list.ActionItemGroups
	if len(groups) == 0 {
		return false
	}

	index := opts.GroupIndex
	if index >= len(groups) && event.Config.Loop {
		index = 0
	}
	if index == 0 && list.UseFirstGroupAsInitialState {
		index++
	}
	if index >= len(groups) {
		return false
	}
	first := index == 0 || (index == 1 && list.UseFirstGroupAsInitialState)

	items := groups[index].ActionItems
	if len(items) == 0 {
		return false
	}
	if !event.AllowsMediaQuery(st.Session.MediaQueryKey) {
		return false
	}

	var eventDelay float64
	if first {
		eventDelay = event.Action.Config.Delay
	}

	var planned []instanceParams
	for _, item := range items {
		if item.Config.Target.IsZero() && opts.EventTarget == nil {
			continue
		}
		p, ok := e.pluginFor(item, opts.ActionListID)
		if !ok {
			continue
		}
		for _, el := range e.doc.Resolve(host.Query{Target: item.Config.Target, EventTarget: opts.EventTarget}) {
			delay, duration := timing(el, item, p, opts.Immediate, eventDelay)
			planned = append(planned, instanceParams{
				el:         el,
				item:       item,
				plugin:     p,
				opts:       opts,
				groupIndex: index,
				delay:      delay,
				duration:   duration,
			})
		}
	}
	if len(planned) == 0 {
		return false
	}

	planned[carrierIndex(planned)].isCarrier = true
	for _, p := range planned {
		e.createInstance(p)
	}
	return true
}

// timing returns the delay and duration an instance actually runs with.
// General types apply instantly; a plugin may set its own duration.
func timing(el host.Element, item ir.ActionItem, p host.Plugin, immediate bool, eventDelay float64) (delay, duration float64) {
	if immediate {
		return 0, 0
	}
	delay = item.Config.Delay + eventDelay
	duration = item.Config.Duration
	if ir.RenderTypeOf(item.ActionTypeID) == ir.RenderGeneral {
		duration = 0
	}
	if p != nil {
		if d := p.Duration(el, item); d > 0 {
			duration = d
		}
	}
	return delay, duration
}

// carrierIndex returns the first planned instance with the largest
// delay+duration.
func carrierIndex(planned []instanceParams) int {
	best, end := 0, -1.0
	for i, p := range planned {
		if e := p.delay + p.duration; e > end {
			best, end = i, e
		}
	}
	return best
}

// pluginFor returns the plugin for a plugin-typed item, or nil for native
// types. ok is false when the item names an unregistered plugin.
func (e *Engine) pluginFor(item ir.ActionItem, actionListID string) (host.Plugin, bool) {
	if ir.RenderTypeOf(item.ActionTypeID) != ir.RenderPlugin {
		return nil, true
	}
	p, ok := e.plugins.Get(item.ActionTypeID)
	if !ok {
		e.report(NewPluginError(actionListID, string(item.ActionTypeID)))
		return nil, false
	}
	return p, true
}

type instanceParams struct {
	el         host.Element
	item       ir.ActionItem
	plugin     host.Plugin
	opts       GroupOptions
	groupIndex int
	isCarrier  bool
	delay      float64
	duration   float64
}

// createInstance replaces any running timed instance of the same action
// type on the element, then adds and starts a new one.
func (e *Engine) createInstance(p instanceParams) {
	elementID := p.el.Key()
	actionType := p.item.ActionTypeID
	e.removeMatching(func(in *timeline.Instance) bool {
		return !in.Continuous && in.ElementID == elementID && in.ActionTypeID() == actionType
	})

	origin, originUnits, recorded := e.origin(p.el, p.item, p.plugin)
	dest, units := e.destination(p.el, p.item, p.plugin, origin)
	units = mergeUnits(originUnits, units)

	if !recorded {
		e.Dispatch(state.ElementStateChanged{
			ElementID:    elementID,
			RefType:      state.RefHTMLElement,
			ActionTypeID: actionType,
			Values:       origin,
			Units:        originUnits,
		})
	}

	id := timeline.ID(e.ids.Next())
	if p.plugin != nil {
		e.pluginInstances[id] = p.plugin.CreateInstance(p.el, p.item)
	}

	var eventTarget string
	if p.opts.EventTarget != nil {
		eventTarget = p.opts.EventTarget.Key()
	}
	in := timeline.Instance{
		ID:            id,
		ElementID:     elementID,
		ActionItem:    p.item,
		Delay:         p.delay,
		Duration:      p.duration,
		Origin:        origin,
		Destination:   dest,
		Units:         units,
		GroupIndex:    p.groupIndex,
		IsCarrier:     p.isCarrier,
		Immediate:     p.opts.Immediate,
		Verbose:       p.opts.Verbose,
		EventID:       p.opts.EventID,
		ActionListID:  p.opts.ActionListID,
		EventStateKey: p.opts.EventStateKey,
		EventTarget:   eventTarget,
	}
	e.Dispatch(state.InstanceAdded{Instance: in})
	e.notify(host.AnimationStarted, &in)

	st := e.store.State()
	if p.opts.Immediate {
		e.Dispatch(state.InstanceStarted{ID: id, Time: 0})
		e.Dispatch(state.FrameChanged{Now: st.Session.Tick, Parameters: st.Parameters, Repeat: true})
		return
	}
	e.Dispatch(state.InstanceStarted{ID: id, Time: st.Session.Tick})
}

func mergeUnits(base, over map[string]string) map[string]string {
	if len(base) == 0 && len(over) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(over))
	for k, u := range base {
		out[k] = u
	}
	for k, u := range over {
		out[k] = u
	}
	return out
}

// removeMatching removes every instance keep selects, in set order.
func (e *Engine) removeMatching(match func(*timeline.Instance) bool) int {
	victims := e.store.State().Instances.Filter(match)
	for _, in := range victims {
		if _, ok := e.store.State().Instances.Get(in.ID); ok {
			e.removeInstance(in)
		}
	}
	return len(victims)
}

// StopActionGroup removes the timed instances an event started for a list.
// Instances scoped to a boundary are only stopped inside the event
// target's boundary.
func (e *Engine) StopActionGroup(opts GroupOptions) {
	st := e.store.State()
	var boundary host.Element
	if st.Session.HasBoundaryNodes && opts.EventTarget != nil {
		boundary, _ = e.doc.Boundary(opts.EventTarget)
	}
	var targetKey string
	if opts.EventTarget != nil {
		targetKey = opts.EventTarget.Key()
	}

	var verbose bool
	removed := e.removeMatching(func(in *timeline.Instance) bool {
		if in.Continuous || in.EventID != opts.EventID || in.ActionListID != opts.ActionListID {
			return false
		}
		if opts.SameTarget && in.EventTarget != targetKey {
			return false
		}
		if boundary != nil && in.ActionItem.Config.Target.BoundaryMode {
			el, ok := e.doc.Lookup(in.ElementID)
			if !ok || !e.doc.Contains(boundary, el) {
				return false
			}
		}
		verbose = verbose || in.Verbose
		return true
	})
	if removed > 0 {
		e.stopPlayback(opts.ActionListID, verbose)
	}
}

// stopActionList removes every timed instance of a list, whatever started
// it.
func (e *Engine) stopActionList(actionListID string) {
	var verbose bool
	removed := e.removeMatching(func(in *timeline.Instance) bool {
		if in.Continuous || in.ActionListID != actionListID {
			return false
		}
		verbose = verbose || in.Verbose
		return true
	})
	if removed > 0 {
		e.stopPlayback(actionListID, verbose)
	}
}

// StopAllActionGroups removes every timed instance and clears every
// playback flag. Continuous instances keep running.
func (e *Engine) StopAllActionGroups() {
	e.removeMatching(func(in *timeline.Instance) bool { return !in.Continuous })
	for _, id := range sortedKeys(e.store.State().Session.Playback) {
		if e.store.State().Session.Playback[id] {
			e.Dispatch(state.ActionListPlaybackChanged{ActionListID: id, IsPlaying: false})
		}
	}
}

// renderInitialGroup jumps the elements of a list's first group to its
// values when the list uses that group as its initial state.
func (e *Engine) renderInitialGroup(actionListID, eventID string) {
	st := e.store.State()
	list, ok := st.ActionList(actionListID)
	if !ok || !list.UseFirstGroupAsInitialState || len(list.ActionItemGroups) == 0 {
		return
	}
	event, _ := st.Event(eventID)
	if !event.AllowsMediaQuery(st.Session.MediaQueryKey) {
		return
	}

	for _, item := range list.ActionItemGroups[0].ActionItems {
		p, ok := e.pluginFor(item, actionListID)
		if !ok {
			continue
		}
		for _, el := range e.initialElements(item, event) {
			e.createInstance(instanceParams{
				el:     el,
				item:   item,
				plugin: p,
				opts: GroupOptions{
					EventID:      eventID,
					ActionListID: actionListID,
					Immediate:    true,
				},
			})
		}
	}
}

// initialElements resolves an initial-state item. Items relative to the
// event target are applied to every element the event could fire on.
func (e *Engine) initialElements(item ir.ActionItem, event ir.Event) []host.Element {
	t := item.Config.Target
	relative := t.AppliesTo == ir.AppliesToTrigger || t.Relation != ir.RelationNone || t.IsZero()
	if !relative || t.ID != "" {
		return e.doc.Resolve(host.Query{Target: t})
	}
	var out []host.Element
	seen := map[string]bool{}
	for _, trigger := range e.eventTargets(event) {
		for _, el := range e.doc.Resolve(host.Query{Target: t, EventTarget: trigger}) {
			if !seen[el.Key()] {
				seen[el.Key()] = true
				out = append(out, el)
			}
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedTypes[V any](m map[ir.ActionTypeID]V) []ir.ActionTypeID {
	ids := make([]ir.ActionTypeID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
