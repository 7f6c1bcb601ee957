package host

import (
	"sync"
	"time"
)

// FrameSource schedules work for the next display frame.
type FrameSource interface {
	// RequestFrame runs fn once at the next frame with the frame time in ms.
	RequestFrame(fn func(now float64))
	// Now returns the current frame-clock time in ms.
	Now() float64
}

// FrameQueue is a FrameSource whose frames are delivered by calling Tick.
// Hosts tick it from their frame timer; tests tick it by hand.
type FrameQueue struct {
	mu      sync.Mutex
	pending []func(float64)
	now     float64
	clock   func() float64
}

// NewFrameQueue creates a queue. clock supplies Now between ticks; nil
// means Now reports the last tick time.
func NewFrameQueue(clock func() float64) *FrameQueue {
	return &FrameQueue{clock: clock}
}

// MonotonicClock returns a clock reporting ms elapsed since the call.
func MonotonicClock() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}

// RequestFrame queues fn for the next Tick.
func (q *FrameQueue) RequestFrame(fn func(now float64)) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
}

// Now reports the frame clock.
func (q *FrameQueue) Now() float64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.clock != nil {
		return q.clock()
	}
	return q.now
}

// Tick delivers one frame at now to every callback queued before the call.
// Callbacks queued during the tick wait for the next one.
func (q *FrameQueue) Tick(now float64) {
	q.mu.Lock()
	q.now = now
	pending := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, fn := range pending {
		fn(now)
	}
}

// TickNow delivers a frame at the clock's current time.
func (q *FrameQueue) TickNow() {
	q.Tick(q.Now())
}

// Pending reports how many callbacks wait for the next frame.
func (q *FrameQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
