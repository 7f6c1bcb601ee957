package state

import (
	"encoding/json"

	"github.com/roach88/motion/internal/ir"
	"github.com/roach88/motion/internal/style"
)

// RefType tells whether an element record points at a host element or at a
// plain data target.
type RefType string

const (
	RefHTMLElement RefType = "HTML_ELEMENT"
	RefPlain       RefType = "PLAIN"
)

// ElementState is the per-element memory of last rendered values, keyed by
// action type. Instances read it as their origin.
type ElementState struct {
	ID       string                           `json:"id"`
	RefType  RefType                          `json:"refType"`
	RefState map[ir.ActionTypeID]style.Family `json:"refState"`
}

// Family returns the recorded family for an action type.
func (e *ElementState) Family(id ir.ActionTypeID) (style.Family, bool) {
	if e == nil {
		return style.Family{}, false
	}
	f, ok := e.RefState[id]
	return f, ok
}

// Elements is an insertion-ordered arena of element records keyed by the
// host element's stable id.
type Elements struct {
	entries []*ElementState
	index   map[string]int
}

// Len returns the number of recorded elements.
func (e Elements) Len() int { return len(e.entries) }

// Get returns the record for an element id.
func (e Elements) Get(id string) (*ElementState, bool) {
	i, ok := e.index[id]
	if !ok {
		return nil, false
	}
	return e.entries[i], true
}

// All returns records in insertion order. The slice must not be modified.
func (e Elements) All() []*ElementState { return e.entries }

// merge returns a copy with values merged into the element's family.
func (e Elements) merge(m ElementStateChanged) Elements {
	prev, existed := e.Get(m.ElementID)

	next := &ElementState{ID: m.ElementID, RefType: m.RefType, RefState: map[ir.ActionTypeID]style.Family{}}
	if existed {
		if next.RefType == "" {
			next.RefType = prev.RefType
		}
		for k, f := range prev.RefState {
			next.RefState[k] = f
		}
	}
	if next.RefType == "" {
		next.RefType = RefHTMLElement
	}

	fam := next.RefState[m.ActionTypeID]
	values := fam.Values.Merge(m.Values)
	units := make(map[string]string, len(fam.Units)+len(m.Units))
	for k, u := range fam.Units {
		units[k] = u
	}
	for k, u := range m.Units {
		units[k] = u
	}
	if len(units) == 0 {
		units = nil
	}
	next.RefState[m.ActionTypeID] = style.Family{Values: values, Units: units}

	if existed {
		entries := make([]*ElementState, len(e.entries))
		copy(entries, e.entries)
		entries[e.index[m.ElementID]] = next
		return Elements{entries: entries, index: e.index}
	}
	entries := make([]*ElementState, len(e.entries), len(e.entries)+1)
	copy(entries, e.entries)
	entries = append(entries, next)
	index := make(map[string]int, len(entries))
	for k, v := range e.index {
		index[k] = v
	}
	index[m.ElementID] = len(entries) - 1
	return Elements{entries: entries, index: index}
}

// MarshalJSON encodes the records as an ordered array.
func (e Elements) MarshalJSON() ([]byte, error) {
	if e.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(e.entries)
}

// UnmarshalJSON decodes an ordered array.
func (e *Elements) UnmarshalJSON(data []byte) error {
	var entries []*ElementState
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	var out Elements
	for _, es := range entries {
		if out.index == nil {
			out.index = map[string]int{}
		}
		out.index[es.ID] = len(out.entries)
		out.entries = append(out.entries, es)
	}
	*e = out
	return nil
}
