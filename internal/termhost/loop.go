package termhost

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/roach88/motion/internal/engine"
)

// Engine is the part of the engine the terminal loop drives.
type Engine interface {
	Enqueue(engine.Task) bool
}

// Run polls the screen and ticks frames until ctx is cancelled, the user
// quits, or the engine closes. Input handling, frame delivery, and painting
// all run as engine tasks; the engine's Run loop must be running.
func (h *Host) Run(ctx context.Context, e Engine, interval time.Duration) error {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	quit := make(chan struct{}, 1)
	if !e.Enqueue(func() {
		h.Ready()
		h.Load()
		h.Paint()
	}) {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-quit:
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if key, isKey := ev.(*tcell.EventKey); isKey && IsQuit(key) {
				return nil
			}
			if !e.Enqueue(func() {
				if h.HandleEvent(ev) {
					select {
					case quit <- struct{}{}:
					default:
					}
				}
			}) {
				return nil
			}

		case <-ticker.C:
			if !e.Enqueue(func() {
				h.frames.TickNow()
				h.Paint()
			}) {
				return nil
			}
		}
	}
}
