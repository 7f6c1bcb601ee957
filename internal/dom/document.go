// Package dom is an in-memory host document.
//
// Nodes form a tree under a page root. Each node has a box in document
// coordinates, a class list, an optional boundary flag, stylesheet values
// (read as computed style), and inline style written by the renderer.
// Pointer, scroll, and lifecycle input is simulated with methods such as
// Click, MoveTo, and ScrollTo.
package dom

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/motion/internal/host"
	"github.com/roach88/motion/internal/ir"
)

// RootID is the key of the page root.
const RootID = "page"

// Default viewport used when a fixture does not declare one.
const (
	DefaultWidth  = 1280
	DefaultHeight = 800
)

// Node is one element of the document.
type Node struct {
	id       string
	parent   *Node
	children []*Node
	classes  []string
	boundary bool
	x, y     float64
	w, h     float64
	sheet    map[string]string
	inline   map[string]string
}

// Key implements host.Element.
func (n *Node) Key() string { return n.id }

// Parent returns the parent node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// HasClass reports whether the node carries a class.
func (n *Node) HasClass(c string) bool {
	for _, x := range n.classes {
		if x == c {
			return true
		}
	}
	return false
}

func (n *Node) String() string { return "#" + n.id }

// Document is an in-memory host.Document.
type Document struct {
	root      *Node
	nodes     map[string]*Node
	order     []*Node
	viewport  host.Viewport
	listeners []*listener
	nextID    uint64
	hovered   []*Node
	pointerX  float64
	pointerY  float64
	writes    int
}

var _ host.Document = (*Document)(nil)

// New creates an empty document with the given viewport size.
func New(width, height float64) *Document {
	root := &Node{id: RootID, w: width, h: height, sheet: map[string]string{}, inline: map[string]string{}}
	return &Document{
		root:     root,
		nodes:    map[string]*Node{RootID: root},
		order:    []*Node{root},
		viewport: host.Viewport{Width: width, Height: height, ScrollHeight: height},
	}
}

// FromSpec builds a document from a fixture declaration. A nil spec gives
// an empty default-sized document.
func FromSpec(spec *ir.HostSpec) (*Document, error) {
	w, h := float64(DefaultWidth), float64(DefaultHeight)
	if spec != nil && spec.Width > 0 {
		w = float64(spec.Width)
	}
	if spec != nil && spec.Height > 0 {
		h = float64(spec.Height)
	}
	d := New(w, h)
	if spec == nil {
		return d, nil
	}
	for _, el := range spec.Elements {
		if err := d.Add(el); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Add appends an element under its parent (the root when Parent is empty).
func (d *Document) Add(el ir.HostElement) error {
	id := ir.NormalizeID(el.ID)
	if id == "" {
		return fmt.Errorf("dom: element without id")
	}
	if _, dup := d.nodes[id]; dup {
		return fmt.Errorf("dom: duplicate element %q", id)
	}
	parent := d.root
	if el.Parent != "" {
		p, ok := d.nodes[ir.NormalizeID(el.Parent)]
		if !ok {
			return fmt.Errorf("dom: element %q: unknown parent %q", id, el.Parent)
		}
		parent = p
	}
	n := &Node{
		id:       id,
		parent:   parent,
		classes:  append([]string(nil), el.Classes...),
		boundary: el.Boundary,
		x:        float64(el.X),
		y:        float64(el.Y),
		w:        float64(el.Width),
		h:        float64(el.Height),
		sheet:    map[string]string{},
		inline:   map[string]string{},
	}
	for k, v := range el.Style {
		n.sheet[strings.ToLower(k)] = v
	}
	parent.children = append(parent.children, n)
	d.nodes[id] = n
	d.reorder()

	if bottom := n.y + n.h; bottom > d.viewport.ScrollHeight {
		d.viewport.ScrollHeight = bottom
		d.root.h = bottom
	}
	return nil
}

// reorder recomputes document (pre-)order.
func (d *Document) reorder() {
	d.order = d.order[:0]
	var walk func(*Node)
	walk = func(n *Node) {
		d.order = append(d.order, n)
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(d.root)
}

// Node returns a node by id.
func (d *Document) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Root returns the page root.
func (d *Document) Root() *Node { return d.root }

// Nodes returns every node in document order, root first.
func (d *Document) Nodes() []*Node {
	return append([]*Node(nil), d.order...)
}

// Lookup implements host.Resolver.
func (d *Document) Lookup(key string) (host.Element, bool) {
	n, ok := d.nodes[key]
	if !ok {
		return nil, false
	}
	return n, true
}

// Inline returns a copy of a node's inline style.
func (d *Document) Inline(id string) map[string]string {
	n, ok := d.nodes[id]
	if !ok {
		return nil
	}
	out := make(map[string]string, len(n.inline))
	for k, v := range n.inline {
		out[k] = v
	}
	return out
}

// StyleString renders a node's inline style as "k: v; k: v" in key order.
func (d *Document) StyleString(id string) string {
	n, ok := d.nodes[id]
	if !ok {
		return ""
	}
	keys := make([]string, 0, len(n.inline))
	for k := range n.inline {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + n.inline[k]
	}
	return strings.Join(parts, "; ")
}

// Writes counts inline style writes that changed a value.
func (d *Document) Writes() int { return d.writes }

func asNode(el host.Element) *Node {
	if el == nil {
		return nil
	}
	n, _ := el.(*Node)
	return n
}
