package termhost

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/roach88/motion/internal/dom"
	"github.com/roach88/motion/internal/host"
	"github.com/roach88/motion/internal/ir"
	"github.com/roach88/motion/internal/style"
)

// defaultFill is used for elements that declare no background color, so
// bare boxes stay visible.
var defaultFill = colorful.Color{R: 0.35, G: 0.35, B: 0.4}

// Box is the resolved on-screen state of one element.
type Box struct {
	ID      string
	Rect    host.Rect
	Fill    colorful.Color
	Label   colorful.Color
	Opacity float64
}

// Boxes lists every visible element in paint order with its style
// applied: transforms move and scale the box, opacity and colors blend
// against the host background.
func (h *Host) Boxes() []Box {
	var out []Box
	for _, n := range h.Nodes() {
		if n == h.Root() || h.hidden(n) {
			continue
		}
		r := h.Rect(n)
		r.Width = h.length(n, "width", r.Width)
		r.Height = h.length(n, "height", r.Height)
		r = transformed(r, style.ParseTransform(h.ComputedStyle(n, "transform")))

		opacity := h.opacity(n)
		if opacity <= 0 {
			continue
		}

		fill, alpha := h.color(n, "background-color", defaultFill)
		label, _ := h.color(n, "color", colorful.Color{R: 1, G: 1, B: 1})
		out = append(out, Box{
			ID:      n.Key(),
			Rect:    r,
			Fill:    h.background.BlendHcl(fill, alpha*opacity).Clamped(),
			Label:   h.background.BlendHcl(label, opacity).Clamped(),
			Opacity: opacity,
		})
	}
	return out
}

// hidden reports whether the node or an ancestor has display none.
func (h *Host) hidden(n *dom.Node) bool {
	for p := n; p != nil; p = p.Parent() {
		if h.ComputedStyle(p, "display") == "none" {
			return true
		}
	}
	return false
}

// opacity multiplies the node's opacity by its ancestors'.
func (h *Host) opacity(n *dom.Node) float64 {
	o := 1.0
	for p := n; p != nil; p = p.Parent() {
		v, err := strconv.ParseFloat(strings.TrimSpace(h.ComputedStyle(p, "opacity")), 64)
		if err == nil {
			o *= v
		}
	}
	return o
}

func (h *Host) length(n *dom.Node, prop string, def float64) float64 {
	v, unit, ok := style.ParseLength(h.ComputedStyle(n, prop))
	if !ok || (unit != "px" && unit != "") {
		return def
	}
	return v
}

func (h *Host) color(n *dom.Node, prop string, def colorful.Color) (colorful.Color, float64) {
	v, ok := style.ParseColor(h.ComputedStyle(n, prop))
	if !ok {
		return def, 1
	}
	c, a := style.ToColorful(v)
	if a == 0 && prop == "background-color" {
		return def, 1
	}
	return c, a
}

// transformed applies translation and scale about the box center. Rotation
// and skew have no cell rendering.
func transformed(r host.Rect, fams style.Families) host.Rect {
	if move, ok := fams[ir.TransformMove]; ok {
		r.X += move.Values[ir.KeyX]
		r.Y += move.Values[ir.KeyY]
	}
	if scale, ok := fams[ir.TransformScale]; ok {
		sx, sy := 1.0, 1.0
		if v, ok := scale.Values[ir.KeyX]; ok {
			sx = v
		}
		if v, ok := scale.Values[ir.KeyY]; ok {
			sy = v
		}
		cx, cy := r.X+r.Width/2, r.Y+r.Height/2
		r.Width *= sx
		r.Height *= sy
		r.X = cx - r.Width/2
		r.Y = cy - r.Height/2
	}
	return r
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// Paint redraws the screen from the document. It must run on the engine
// goroutine.
func (h *Host) Paint() {
	h.screen.Clear()
	cols, rows := h.screen.Size()

	for _, b := range h.Boxes() {
		st := tcell.StyleDefault.Background(toTcell(b.Fill)).Foreground(toTcell(b.Label))
		x0, y0, x1, y1 := h.toCells(b.Rect)
		for y := max(y0, 0); y < min(y1, rows); y++ {
			for x := max(x0, 0); x < min(x1, cols); x++ {
				h.screen.SetContent(x, y, ' ', nil, st)
			}
		}
		if y0 >= 0 && y0 < rows {
			for i, ch := range b.ID {
				x := x0 + i
				if x >= x1 || x >= cols {
					break
				}
				if x >= 0 {
					h.screen.SetContent(x, y0, ch, nil, st)
				}
			}
		}
	}

	if h.status != "" && rows > 0 {
		st := tcell.StyleDefault.Reverse(true)
		for i, ch := range h.status {
			if i >= cols {
				break
			}
			h.screen.SetContent(i, rows-1, ch, nil, st)
		}
	}
	h.screen.Show()
}
