package engine

import (
	"github.com/roach88/motion/internal/host"
	"github.com/roach88/motion/internal/ir"
	"github.com/roach88/motion/internal/state"
	"github.com/roach88/motion/internal/style"
	"github.com/roach88/motion/internal/timeline"
)

// observe runs after every dispatch. It compares the instance set with the
// one seen last time and reacts to each instance whose pointer changed:
// render it, record its values, and on completion remove it and cascade.
//
// Reactions dispatch, which re-enters observe for the newer state. Each
// call records the set it saw before reacting, so a nested call only
// handles what changed after that point, and the outer call skips any
// instance a nested call already replaced or removed.
func (e *Engine) observe(_ state.State) {
	e.observeRequests()

	cur := e.store.State().Instances
	prev := e.prevInstances
	e.prevInstances = cur

	for _, in := range cur.All() {
		if old, ok := prev.Get(in.ID); ok && old == in {
			continue
		}
		if fresh, ok := e.store.State().Instances.Get(in.ID); !ok || fresh != in {
			continue
		}
		e.handleInstance(in)
	}
}

func (e *Engine) handleInstance(in *timeline.Instance) {
	el, ok := e.doc.Lookup(in.ElementID)
	if in.Current != nil && ok {
		e.render(el, in)
		e.Dispatch(state.ElementStateChanged{
			ElementID:    in.ElementID,
			RefType:      state.RefHTMLElement,
			ActionTypeID: in.ActionTypeID(),
			Values:       in.Current,
			Units:        in.Units,
		})
	}

	if !in.Complete {
		return
	}
	e.removeInstance(in)
	if in.IsCarrier {
		e.cascade(in)
	}
}

func (e *Engine) render(el host.Element, in *timeline.Instance) {
	u := host.Update{
		Item:     in.ActionItem,
		Current:  in.Current,
		Units:    in.Units,
		RefState: e.refState(in.ElementID),
	}
	switch in.RenderType {
	case ir.RenderTransform:
		e.doc.ApplyTransform(el, u)
	case ir.RenderStyle:
		e.doc.ApplyStyle(el, u)
	case ir.RenderGeneral:
		e.doc.ApplyGeneral(el, u)
	case ir.RenderPlugin:
		if p, ok := e.plugins.Get(in.ActionTypeID()); ok {
			e.doc.ApplyPlugin(el, u, p, e.pluginInstances[in.ID])
		}
	}
}

// refState copies the recorded families of an element.
func (e *Engine) refState(elementID string) style.Families {
	fams := style.Families{}
	es, ok := e.store.State().Elements.Get(elementID)
	if !ok {
		return fams
	}
	for id, f := range es.RefState {
		fams[id] = f
	}
	return fams
}

// removeInstance notifies, lets the renderer clean up, and drops the
// instance.
func (e *Engine) removeInstance(in *timeline.Instance) {
	e.notify(host.AnimationStopping, in)
	if el, ok := e.doc.Lookup(in.ElementID); ok {
		e.doc.Cleanup(el, in.ActionItem)
	}
	delete(e.pluginInstances, in.ID)
	e.Dispatch(state.InstanceRemoved{ID: in.ID})
}

// cascade starts the group after a completed carrier's. When the new group
// starts, its instances are evaluated at the current tick so a run of
// zero-duration groups resolves within the frame.
func (e *Engine) cascade(in *timeline.Instance) {
	if err := e.quota.Check(in.ActionListID); err != nil {
		if ce, ok := err.(*CascadeExceededError); ok {
			e.report(NewQuotaError(ce))
		}
		e.stopPlayback(in.ActionListID, in.Verbose)
		return
	}

	var target host.Element
	if in.EventTarget != "" {
		target, _ = e.doc.Lookup(in.EventTarget)
	}
	started := e.StartActionGroup(GroupOptions{
		EventID:       in.EventID,
		ActionListID:  in.ActionListID,
		EventTarget:   target,
		EventStateKey: in.EventStateKey,
		GroupIndex:    in.GroupIndex + 1,
		Immediate:     in.Immediate,
		Verbose:       in.Verbose,
	})
	if !started {
		e.stopPlayback(in.ActionListID, in.Verbose)
		return
	}

	st := e.store.State()
	e.Dispatch(state.FrameChanged{Now: st.Session.Tick, Parameters: st.Parameters, Repeat: true})
}

func (e *Engine) stopPlayback(actionListID string, verbose bool) {
	if !verbose {
		return
	}
	e.Dispatch(state.ActionListPlaybackChanged{ActionListID: actionListID, IsPlaying: false})
}
