package dom

import (
	"github.com/roach88/motion/internal/host"
	"github.com/roach88/motion/internal/ir"
	"github.com/roach88/motion/internal/style"
)

var defaultComputed = map[string]string{
	"opacity":          "1",
	"display":          "block",
	"background-color": "rgba(0, 0, 0, 0)",
	"border-color":     "rgb(0, 0, 0)",
	"color":            "rgb(0, 0, 0)",
	"filter":           "none",
	"transform":        "none",
}

// Viewport implements host.Layout.
func (d *Document) Viewport() host.Viewport { return d.viewport }

// Rect implements host.Layout.
func (d *Document) Rect(el host.Element) host.Rect {
	n := asNode(el)
	if n == nil {
		return host.Rect{}
	}
	return d.rect(n)
}

func (d *Document) rect(n *Node) host.Rect {
	if n == d.root {
		return host.Rect{X: -d.viewport.ScrollX, Y: -d.viewport.ScrollY, Width: d.viewport.Width, Height: d.viewport.ScrollHeight}
	}
	return host.Rect{X: n.x - d.viewport.ScrollX, Y: n.y - d.viewport.ScrollY, Width: n.w, Height: n.h}
}

// InlineStyle implements host.StyleReader.
func (d *Document) InlineStyle(el host.Element, prop string) string {
	n := asNode(el)
	if n == nil {
		return ""
	}
	return n.inline[prop]
}

// ComputedStyle implements host.StyleReader. Inline style wins over the
// node's stylesheet, which wins over document defaults. Width and height
// fall back to the node's box.
func (d *Document) ComputedStyle(el host.Element, prop string) string {
	n := asNode(el)
	if n == nil {
		return ""
	}
	if v, ok := n.inline[prop]; ok {
		return v
	}
	if v, ok := n.sheet[prop]; ok {
		return v
	}
	switch prop {
	case "width":
		return style.Num(n.w) + "px"
	case "height":
		return style.Num(n.h) + "px"
	}
	return defaultComputed[prop]
}

func (d *Document) set(n *Node, prop, value string) {
	if n.inline[prop] == value {
		return
	}
	n.inline[prop] = value
	d.writes++
}

func (d *Document) unset(n *Node, prop string) {
	if _, ok := n.inline[prop]; !ok {
		return
	}
	delete(n.inline, prop)
	d.writes++
}

// ApplyTransform implements host.Renderer.
func (d *Document) ApplyTransform(el host.Element, u host.Update) {
	n := asNode(el)
	if n == nil {
		return
	}
	fams := style.Families{}
	for _, id := range ir.TransformTypes {
		if f, ok := u.RefState[id]; ok {
			fams[id] = f
		}
	}
	fams[u.Item.ActionTypeID] = style.Family{Values: u.Current, Units: u.Units}
	d.set(n, "will-change", "transform")
	d.set(n, "transform", style.Transform(fams))
}

// ApplyStyle implements host.Renderer.
func (d *Document) ApplyStyle(el host.Element, u host.Update) {
	n := asNode(el)
	if n == nil {
		return
	}
	id := u.Item.ActionTypeID
	switch {
	case id == ir.StyleSize:
		w, h := style.Size(u.Current, u.Units)
		if _, ok := u.Current[ir.KeyWidth]; ok || u.Units[ir.UnitWidth] == ir.UnitAuto {
			d.set(n, "width", w)
		}
		if _, ok := u.Current[ir.KeyHeight]; ok || u.Units[ir.UnitHeight] == ir.UnitAuto {
			d.set(n, "height", h)
		}
	case id == ir.StyleOpacity:
		d.set(n, "opacity", style.Opacity(u.Current))
	case id == ir.StyleFilter:
		values := u.Current
		if f, ok := u.RefState[id]; ok {
			values = f.Values.Merge(u.Current)
		}
		d.set(n, "filter", style.Filter(values, u.Units))
	case id.IsColor():
		d.set(n, id.StyleProperty(), style.Color(u.Current))
	}
}

// ApplyGeneral implements host.Renderer.
func (d *Document) ApplyGeneral(el host.Element, u host.Update) {
	n := asNode(el)
	if n == nil {
		return
	}
	if u.Item.ActionTypeID == ir.GeneralDisplay && u.Item.Config.Display != "" {
		d.set(n, "display", u.Item.Config.Display)
	}
}

// ApplyPlugin implements host.Renderer.
func (d *Document) ApplyPlugin(el host.Element, u host.Update, p host.Plugin, instance any) {
	p.Render(instance, el, u)
}

// Cleanup implements host.Renderer.
func (d *Document) Cleanup(el host.Element, item ir.ActionItem) {
	n := asNode(el)
	if n == nil || !item.ActionTypeID.IsTransform() {
		return
	}
	d.unset(n, "will-change")
}

// ClearStyles implements host.Renderer.
func (d *Document) ClearStyles(el host.Element, id ir.ActionTypeID) {
	n := asNode(el)
	if n == nil {
		return
	}
	switch {
	case id.IsTransform():
		d.unset(n, "transform")
		d.unset(n, "will-change")
	case id == ir.StyleSize:
		d.unset(n, "width")
		d.unset(n, "height")
	default:
		if prop := id.StyleProperty(); prop != "" {
			d.unset(n, prop)
		}
	}
}
