package engine

import "github.com/roach88/motion/internal/host"

// throttle coalesces high-frequency input. The first input in an interval
// runs at once; later ones replace a single pending input that the render
// loop flushes once the interval has passed.
type throttle struct {
	interval float64
	now      func() float64
	fn       host.Handler

	ran     bool
	last    float64
	pending *host.Input
}

func (t *throttle) handle(in host.Input) {
	now := t.now()
	if t.ran && now-t.last < t.interval {
		t.pending = &in
		return
	}
	t.ran = true
	t.last = now
	t.pending = nil
	t.fn(in)
}

func (t *throttle) flush(now float64) {
	if t.pending == nil || now-t.last < t.interval {
		return
	}
	in := *t.pending
	t.pending = nil
	t.last = now
	t.fn(in)
}

// throttled wraps h unless throttling is disabled.
func (e *Engine) throttled(h host.Handler) host.Handler {
	if e.throttle <= 0 {
		return h
	}
	t := &throttle{interval: e.throttle, now: e.frames.Now, fn: h}
	e.throttles = append(e.throttles, t)
	return t.handle
}

func (e *Engine) flushThrottles(now float64) {
	for _, t := range e.throttles {
		t.flush(now)
	}
}
