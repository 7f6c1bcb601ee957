package testutil

import "github.com/roach88/motion/internal/host"

// ManualFrames is a frame source whose clock only moves when a test says
// so. Every Advance delivers exactly one frame.
type ManualFrames struct {
	*host.FrameQueue
	now float64
}

// NewManualFrames creates a frame source at time 0.
func NewManualFrames() *ManualFrames {
	return &ManualFrames{FrameQueue: host.NewFrameQueue(nil)}
}

// Advance moves the clock forward by ms and delivers one frame.
func (f *ManualFrames) Advance(ms float64) float64 {
	f.now += ms
	f.Tick(f.now)
	return f.now
}

// Step delivers n frames interval ms apart and returns the final time.
func (f *ManualFrames) Step(n int, interval float64) float64 {
	for i := 0; i < n; i++ {
		f.Advance(interval)
	}
	return f.now
}

// RunUntil steps frames interval ms apart until done reports true or
// limit frames have been delivered. Returns the number of frames delivered.
func (f *ManualFrames) RunUntil(interval float64, limit int, done func() bool) int {
	for i := 0; i < limit; i++ {
		if done() {
			return i
		}
		f.Advance(interval)
	}
	return limit
}

// Elapsed reports the manual clock.
func (f *ManualFrames) Elapsed() float64 {
	return f.now
}
