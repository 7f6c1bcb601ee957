// Package host defines the collaborators the engine drives: the document it
// resolves targets in, the renderer that writes computed values, the input
// surface it listens to, the frame source, plugins, and notifications.
//
// The engine never touches an element except through these interfaces. Two
// implementations live in this module: internal/dom (in-memory, used by
// tests and the simulator) and internal/termhost (tcell terminal).
package host

import (
	"github.com/roach88/motion/internal/ir"
	"github.com/roach88/motion/internal/style"
)

// Element is a concrete target in the host document.
type Element interface {
	// Key is the element's stable id within the document.
	Key() string
}

// Query is a target descriptor plus the element the triggering event fired
// on, if any.
type Query struct {
	Target      ir.Target
	EventTarget Element
}

// Resolver maps target descriptors to elements.
//
// Resolve must be side-effect-free and stable: the same query against an
// unchanged document returns the same elements in the same order.
type Resolver interface {
	Resolve(q Query) []Element
	// Lookup finds an element by key.
	Lookup(key string) (Element, bool)
	// Boundary returns the closest boundary ancestor of el (el included).
	Boundary(el Element) (Element, bool)
	// Contains reports whether el is ancestor or equal to other.
	Contains(ancestor, el Element) bool
	// HasBoundaryNodes reports whether any boundary element exists.
	HasBoundaryNodes() bool
}

// StyleReader reads live style values for origin capture.
type StyleReader interface {
	InlineStyle(el Element, prop string) string
	ComputedStyle(el Element, prop string) string
}

// Rect is a viewport-relative box.
type Rect struct {
	X, Y, Width, Height float64
}

// Viewport describes the visible area and document scroll.
type Viewport struct {
	Width, Height    float64
	ScrollX, ScrollY float64
	ScrollHeight     float64
}

// Layout measures elements and the viewport.
type Layout interface {
	Viewport() Viewport
	Rect(el Element) Rect
}

// Update is one render of an instance: the computed values for the item's
// action type together with every family already recorded on the element.
type Update struct {
	Item     ir.ActionItem
	Current  ir.Values
	Units    map[string]string
	RefState style.Families
}

// Renderer writes computed values to elements. Every method must be
// idempotent under repeated identical calls.
type Renderer interface {
	ApplyTransform(el Element, u Update)
	ApplyStyle(el Element, u Update)
	ApplyGeneral(el Element, u Update)
	ApplyPlugin(el Element, u Update, p Plugin, instance any)
	// Cleanup runs when an instance stops animating an element.
	Cleanup(el Element, item ir.ActionItem)
	// ClearStyles removes everything the renderer wrote for an action type.
	ClearStyles(el Element, id ir.ActionTypeID)
}

// Document is everything the engine needs from a host document.
type Document interface {
	Resolver
	StyleReader
	Layout
	Renderer
	InputSource
}
