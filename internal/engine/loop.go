package engine

import (
	"github.com/roach88/motion/internal/state"
)

// startLoop runs the first frame immediately and then one per host frame
// while the session stays active. A loop from an earlier session dies at
// its next frame.
func (e *Engine) startLoop() {
	e.loopGen++
	gen := e.loopGen

	var handleFrame func(now float64)
	handleFrame = func(now float64) {
		if gen != e.loopGen || !e.store.State().Session.Active {
			return
		}
		e.frame(now)
		if gen == e.loopGen && e.store.State().Session.Active {
			e.frames.RequestFrame(handleFrame)
		}
	}
	handleFrame(e.frames.Now())
}

// frame advances every instance to now. Coalesced input is flushed first
// so its parameters land in this frame.
func (e *Engine) frame(now float64) {
	e.quota.Reset()
	e.flushThrottles(now)

	st := e.store.State()
	if !st.Session.Active {
		return
	}
	e.Dispatch(state.FrameChanged{Now: now, Parameters: st.Parameters})
}
