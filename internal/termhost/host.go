// Package termhost runs the engine against a terminal.
//
// Elements declared in a document's host section are drawn as boxes on a
// tcell screen. The document keeps its declared coordinates; each terminal
// cell covers a fixed block of document units chosen when the host is
// created, so resizing the terminal resizes the viewport. Mouse clicks,
// motion, and wheel input, plus scroll keys, are fed to the engine as host
// input.
package termhost

import (
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/roach88/motion/internal/config"
	"github.com/roach88/motion/internal/dom"
	"github.com/roach88/motion/internal/host"
	"github.com/roach88/motion/internal/ir"
)

// Host is a host.Document drawn on a tcell screen.
type Host struct {
	*dom.Document

	screen tcell.Screen
	frames *host.FrameQueue
	logger *slog.Logger

	// Document units per cell.
	scaleX, scaleY float64

	background colorful.Color
	pressed    bool
	status     string
	scrollStep float64
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) { h.logger = l }
}

// WithFrames replaces the monotonic frame queue, for tests.
func WithFrames(q *host.FrameQueue) Option {
	return func(h *Host) { h.frames = q }
}

// WithBackground sets the color elements are blended against.
func WithBackground(c colorful.Color) Option {
	return func(h *Host) { h.background = c }
}

// New creates a host on an initialized screen. A model without a host
// section gets an empty document of cfg.Width by cfg.Height cells.
func New(screen tcell.Screen, spec *ir.HostSpec, cfg config.HostConfig, opts ...Option) (*Host, error) {
	if spec == nil {
		spec = &ir.HostSpec{Width: cfg.Width, Height: cfg.Height}
	}
	doc, err := dom.FromSpec(spec)
	if err != nil {
		return nil, fmt.Errorf("termhost: %w", err)
	}

	cols, rows := screen.Size()
	if cols <= 0 || rows <= 0 {
		cols, rows = cfg.Width, cfg.Height
	}
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("termhost: screen has no size")
	}

	vp := doc.Viewport()
	h := &Host{
		Document: doc,
		screen:   screen,
		frames:   host.NewFrameQueue(host.MonotonicClock()),
		logger:   slog.Default(),
		scaleX:   vp.Width / float64(cols),
		scaleY:   vp.Height / float64(rows),
	}
	h.scrollStep = 3 * h.scaleY
	for _, opt := range opts {
		opt(h)
	}
	screen.EnableMouse()
	return h, nil
}

// Frames returns the frame source the engine should be built with.
func (h *Host) Frames() *host.FrameQueue { return h.frames }

// Screen returns the underlying screen.
func (h *Host) Screen() tcell.Screen { return h.screen }

// SetStatus sets the text drawn on the bottom row.
func (h *Host) SetStatus(s string) { h.status = s }

// toDocument converts a cell position to viewport coordinates at the cell
// center.
func (h *Host) toDocument(x, y int) (float64, float64) {
	return (float64(x) + 0.5) * h.scaleX, (float64(y) + 0.5) * h.scaleY
}

// toCells converts a viewport box to a cell rectangle, end exclusive.
func (h *Host) toCells(r host.Rect) (x0, y0, x1, y1 int) {
	x0 = int(r.X/h.scaleX + 0.5)
	y0 = int(r.Y/h.scaleY + 0.5)
	x1 = int((r.X+r.Width)/h.scaleX + 0.5)
	y1 = int((r.Y+r.Height)/h.scaleY + 0.5)
	if x1 == x0 && r.Width > 0 {
		x1++
	}
	if y1 == y0 && r.Height > 0 {
		y1++
	}
	return
}
