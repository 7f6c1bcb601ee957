package dom

import (
	"strings"

	"github.com/roach88/motion/internal/host"
	"github.com/roach88/motion/internal/ir"
)

// Resolve implements host.Resolver.
func (d *Document) Resolve(q host.Query) []host.Element {
	t := q.Target
	ev := asNode(q.EventTarget)

	switch t.AppliesTo {
	case ir.AppliesToPage:
		return []host.Element{d.root}
	case ir.AppliesToTrigger:
		if ev == nil {
			return nil
		}
		if t.Relation == ir.RelationNone {
			return []host.Element{ev}
		}
	}

	if ev != nil && t.Relation != ir.RelationNone {
		return toElements(d.related(ev, t))
	}

	scope := d.root
	if t.BoundaryMode && ev != nil {
		if b := closestBoundary(ev); b != nil {
			scope = b
		}
	}

	if t.ID != "" {
		n, ok := d.nodes[ir.NormalizeID(t.ID)]
		if !ok || !contains(scope, n) {
			return nil
		}
		return []host.Element{n}
	}
	if t.Selector != "" {
		sel := parseSelector(t.Selector)
		var out []*Node
		for _, n := range d.order {
			if n != d.root && contains(scope, n) && sel.matches(n) {
				out = append(out, n)
			}
		}
		return toElements(out)
	}
	if t.IsZero() && ev != nil {
		return []host.Element{ev}
	}
	return nil
}

// related resolves a descriptor relative to the event target.
func (d *Document) related(ev *Node, t ir.Target) []*Node {
	match := func(n *Node) bool {
		switch {
		case t.ID != "":
			return n.id == ir.NormalizeID(t.ID)
		case t.Selector != "":
			return parseSelector(t.Selector).matches(n)
		}
		return true
	}

	var out []*Node
	switch t.Relation {
	case ir.RelationChildren:
		var walk func(*Node)
		walk = func(n *Node) {
			for _, c := range n.children {
				if match(c) {
					out = append(out, c)
				}
				walk(c)
			}
		}
		walk(ev)
	case ir.RelationImmediateChildren:
		for _, c := range ev.children {
			if match(c) {
				out = append(out, c)
			}
		}
	case ir.RelationSiblings:
		if ev.parent != nil {
			for _, c := range ev.parent.children {
				if c != ev && match(c) {
					out = append(out, c)
				}
			}
		}
	case ir.RelationParent:
		for p := ev.parent; p != nil; p = p.parent {
			if match(p) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// Boundary implements host.Resolver.
func (d *Document) Boundary(el host.Element) (host.Element, bool) {
	n := asNode(el)
	if n == nil {
		return nil, false
	}
	b := closestBoundary(n)
	if b == nil {
		return nil, false
	}
	return b, true
}

// Contains implements host.Resolver.
func (d *Document) Contains(ancestor, el host.Element) bool {
	a, n := asNode(ancestor), asNode(el)
	if a == nil || n == nil {
		return false
	}
	return contains(a, n)
}

// HasBoundaryNodes implements host.Resolver.
func (d *Document) HasBoundaryNodes() bool {
	for _, n := range d.order {
		if n.boundary {
			return true
		}
	}
	return false
}

func closestBoundary(n *Node) *Node {
	for ; n != nil; n = n.parent {
		if n.boundary {
			return n
		}
	}
	return nil
}

func contains(ancestor, n *Node) bool {
	for ; n != nil; n = n.parent {
		if n == ancestor {
			return true
		}
	}
	return false
}

func toElements(nodes []*Node) []host.Element {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]host.Element, len(nodes))
	for i, n := range nodes {
		out[i] = n
	}
	return out
}

// selector is a comma-separated list of compound selectors. A compound is
// an optional #id followed by any number of .class parts, or "*".
type selector []compound

type compound struct {
	any     bool
	id      string
	classes []string
}

func parseSelector(s string) selector {
	var out selector
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if part == "*" {
			out = append(out, compound{any: true})
			continue
		}
		var c compound
		for part != "" {
			end := strings.IndexAny(part[1:], "#.")
			var tok string
			if end < 0 {
				tok, part = part, ""
			} else {
				tok, part = part[:end+1], part[end+1:]
			}
			switch tok[0] {
			case '#':
				c.id = ir.NormalizeID(tok[1:])
			case '.':
				c.classes = append(c.classes, tok[1:])
			default:
				// Bare names are treated as classes.
				c.classes = append(c.classes, tok)
			}
		}
		out = append(out, c)
	}
	return out
}

func (s selector) matches(n *Node) bool {
	for _, c := range s {
		if c.matches(n) {
			return true
		}
	}
	return false
}

func (c compound) matches(n *Node) bool {
	if c.any {
		return true
	}
	if c.id != "" && n.id != c.id {
		return false
	}
	for _, cl := range c.classes {
		if !n.HasClass(cl) {
			return false
		}
	}
	return c.id != "" || len(c.classes) > 0
}
