package dom

import (
	"fmt"

	"github.com/roach88/motion/internal/host"
)

type listener struct {
	id      uint64
	src     host.Source
	target  *Node
	handler host.Handler
	removed bool
}

// Listen implements host.InputSource.
func (d *Document) Listen(src host.Source, target host.Element, h host.Handler) func() {
	d.nextID++
	l := &listener{id: d.nextID, src: src, target: asNode(target), handler: h}
	d.listeners = append(d.listeners, l)
	return func() {
		if l.removed {
			return
		}
		l.removed = true
		for i, x := range d.listeners {
			if x == l {
				d.listeners = append(d.listeners[:i:i], d.listeners[i+1:]...)
				break
			}
		}
	}
}

// ListenerCount reports how many listeners are bound.
func (d *Document) ListenerCount() int { return len(d.listeners) }

// snapshot returns the listeners for a source at call time.
func (d *Document) snapshot(src host.Source) []*listener {
	var out []*listener
	for _, l := range d.listeners {
		if l.src == src {
			out = append(out, l)
		}
	}
	return out
}

// bubble delivers input to listeners on target and each ancestor, then to
// page-level listeners.
func (d *Document) bubble(src host.Source, target *Node) {
	in := host.Input{Source: src, X: d.pointerX, Y: d.pointerY}
	if target != nil {
		in.Target = target
	}
	ls := d.snapshot(src)
	for n := target; n != nil; n = n.parent {
		for _, l := range ls {
			if !l.removed && l.target == n {
				l.handler(in)
			}
		}
	}
	d.broadcast(ls, in)
}

// direct delivers input to listeners on target only, then page level.
func (d *Document) direct(src host.Source, target *Node) {
	in := host.Input{Source: src, Target: target, X: d.pointerX, Y: d.pointerY}
	ls := d.snapshot(src)
	for _, l := range ls {
		if !l.removed && l.target == target {
			l.handler(in)
		}
	}
	d.broadcast(ls, in)
}

func (d *Document) broadcast(ls []*listener, in host.Input) {
	for _, l := range ls {
		if !l.removed && l.target == nil {
			l.handler(in)
		}
	}
}

func (d *Document) page(src host.Source) {
	d.broadcast(d.snapshot(src), host.Input{Source: src, X: d.pointerX, Y: d.pointerY})
}

// Click moves the pointer to the center of a node and presses it.
func (d *Document) Click(id string) error {
	n, ok := d.nodes[id]
	if !ok {
		return fmt.Errorf("dom: click: unknown element %q", id)
	}
	x, y := d.center(n)
	d.MoveTo(x, y)
	d.bubble(host.SourceMouseDown, n)
	d.bubble(host.SourceMouseUp, n)
	d.bubble(host.SourceClick, n)
	return nil
}

// ClickAt moves the pointer to a viewport position and presses whatever
// element is under it. Returns false when the point hits no element.
func (d *Document) ClickAt(x, y float64) bool {
	d.MoveTo(x, y)
	n := d.hitTest(x, y)
	if n == nil {
		return false
	}
	d.bubble(host.SourceMouseDown, n)
	d.bubble(host.SourceMouseUp, n)
	d.bubble(host.SourceClick, n)
	return true
}

// Hover moves the pointer to the center of a node.
func (d *Document) Hover(id string) error {
	n, ok := d.nodes[id]
	if !ok {
		return fmt.Errorf("dom: hover: unknown element %q", id)
	}
	d.MoveTo(d.center(n))
	return nil
}

// MoveTo moves the pointer to a viewport position, firing mouseout on
// elements it leaves, mouseover on elements it enters (outermost first),
// and mousemove on the element under the pointer.
func (d *Document) MoveTo(x, y float64) {
	d.pointerX, d.pointerY = x, y
	hit := d.hitTest(x, y)

	var chain []*Node
	for n := hit; n != nil && n != d.root; n = n.parent {
		chain = append([]*Node{n}, chain...)
	}
	d.setHover(chain)
	d.bubble(host.SourceMouseMove, hit)
}

// Leave moves the pointer out of the document.
func (d *Document) Leave() {
	d.setHover(nil)
}

func (d *Document) setHover(chain []*Node) {
	in := func(set []*Node, n *Node) bool {
		for _, x := range set {
			if x == n {
				return true
			}
		}
		return false
	}
	prev := d.hovered
	d.hovered = chain
	for i := len(prev) - 1; i >= 0; i-- {
		if !in(chain, prev[i]) {
			d.direct(host.SourceMouseOut, prev[i])
		}
	}
	for _, n := range chain {
		if !in(prev, n) {
			d.direct(host.SourceMouseOver, n)
		}
	}
}

// hitTest returns the last node in document order whose box contains the
// viewport point, or nil.
func (d *Document) hitTest(x, y float64) *Node {
	var hit *Node
	for _, n := range d.order[1:] {
		r := d.rect(n)
		if x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height {
			hit = n
		}
	}
	return hit
}

func (d *Document) center(n *Node) (float64, float64) {
	r := d.rect(n)
	return r.X + r.Width/2, r.Y + r.Height/2
}

// ScrollTo scrolls the page vertically, clamped to the scrollable range,
// and fires scroll.
func (d *Document) ScrollTo(y float64) {
	max := d.viewport.ScrollHeight - d.viewport.Height
	if max < 0 {
		max = 0
	}
	if y < 0 {
		y = 0
	}
	if y > max {
		y = max
	}
	d.viewport.ScrollY = y
	d.page(host.SourceScroll)
}

// Resize changes the viewport and fires resize.
func (d *Document) Resize(width, height float64) {
	d.viewport.Width = width
	d.viewport.Height = height
	if d.viewport.ScrollHeight < height {
		d.viewport.ScrollHeight = height
	}
	d.page(host.SourceResize)
}

// Ready fires the document-ready notification.
func (d *Document) Ready() { d.page(host.SourceReady) }

// Load fires the load notification.
func (d *Document) Load() { d.page(host.SourceLoad) }

// PageUpdate fires the external page-update notification.
func (d *Document) PageUpdate() { d.page(host.SourcePageUpdate) }
