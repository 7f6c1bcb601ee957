package engine

import (
	"errors"

	"github.com/roach88/motion/internal/host"
	"github.com/roach88/motion/internal/ir"
	"github.com/roach88/motion/internal/state"
)

// observeRequests reacts to request messages. A request is pending when its
// seq moved since the last observation.
func (e *Engine) observeRequests() {
	req := e.store.State().Request
	prev := e.prevRequest
	if req.PreviewSeq == prev.PreviewSeq && req.PlaybackSeq == prev.PlaybackSeq &&
		req.StopSeq == prev.StopSeq && req.ClearSeq == prev.ClearSeq {
		return
	}
	e.prevRequest = req

	if req.PreviewSeq != prev.PreviewSeq {
		e.handlePreview(req.Preview)
	}
	if req.PlaybackSeq != prev.PlaybackSeq {
		e.handlePlayback(req.Playback)
	}
	if req.StopSeq != prev.StopSeq {
		e.handleStop(req.Stop)
	}
	if req.ClearSeq != prev.ClearSeq {
		e.handleClear()
	}
}

func (e *Engine) handlePreview(r state.PreviewRequested) {
	e.logger.Debug("preview requested")
	if err := e.Start(r.Model, true); err != nil {
		var re *RuntimeError
		if errors.As(err, &re) {
			e.report(re)
			return
		}
		e.logger.Error("preview failed", "error", err)
	}
}

func (e *Engine) handlePlayback(r state.PlaybackRequested) {
	e.logger.Debug("playback requested",
		"list", r.ActionListID,
		"event", r.EventID,
		"immediate", r.Immediate,
	)

	_ = e.Start(nil, r.AllowEvents)
	if r.ActionListID == "" {
		return
	}
	if _, ok := e.store.State().ActionList(r.ActionListID); !ok {
		e.report(NewUnknownListError(r.EventID, r.ActionListID))
		return
	}

	var target host.Element
	if r.ElementID != "" {
		target, _ = e.doc.Lookup(ir.NormalizeID(r.ElementID))
	}

	e.stopActionList(r.ActionListID)
	e.renderInitialGroup(r.ActionListID, r.EventID)
	started := e.StartActionGroup(GroupOptions{
		EventID:      r.EventID,
		ActionListID: r.ActionListID,
		EventTarget:  target,
		GroupIndex:   r.GroupIndex,
		Immediate:    r.Immediate,
		Verbose:      r.Verbose,
	})
	if r.Verbose && started {
		e.Dispatch(state.ActionListPlaybackChanged{ActionListID: r.ActionListID, IsPlaying: !r.Immediate})
	}
}

func (e *Engine) handleStop(r state.StopRequested) {
	e.logger.Debug("stop requested", "list", r.ActionListID)
	if r.ActionListID != "" {
		e.stopActionList(r.ActionListID)
	} else {
		e.StopAllActionGroups()
	}
	e.Stop()
}

// handleClear stops the session and removes every style the engine wrote.
func (e *Engine) handleClear() {
	e.logger.Debug("clear requested")
	st := e.store.State()
	targets := e.styledElements(st)
	e.Stop()
	for _, t := range targets {
		e.doc.ClearStyles(t.el, t.actionType)
		if p, ok := e.plugins.Get(t.actionType); ok {
			p.Clear(t.el)
		}
	}
}

type styled struct {
	el         host.Element
	actionType ir.ActionTypeID
}

// styledElements lists every (element, action type) pair the engine may
// have written: recorded element state plus every statically resolvable
// action item target.
func (e *Engine) styledElements(st state.State) []styled {
	seen := map[string]bool{}
	var out []styled
	add := func(el host.Element, id ir.ActionTypeID) {
		key := el.Key() + "|" + string(id)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, styled{el: el, actionType: id})
	}

	for _, es := range st.Elements.All() {
		el, ok := e.doc.Lookup(es.ID)
		if !ok {
			continue
		}
		for _, id := range sortedTypes(es.RefState) {
			add(el, id)
		}
	}

	if st.Data == nil {
		return out
	}
	for _, listID := range sortedKeys(st.Data.ActionLists) {
		list := st.Data.ActionLists[listID]
		for _, item := range listItems(list) {
			for _, el := range e.doc.Resolve(host.Query{Target: item.Config.Target}) {
				add(el, item.ActionTypeID)
			}
		}
	}
	return out
}

// listItems returns every action item of a list, timed and continuous.
func listItems(list ir.ActionList) []ir.ActionItem {
	var items []ir.ActionItem
	for _, g := range list.ActionItemGroups {
		items = append(items, g.ActionItems...)
	}
	for _, pg := range list.ContinuousParameterGroups {
		for _, ag := range pg.ContinuousActionGroups {
			items = append(items, ag.ActionItems...)
		}
	}
	return items
}
