package state

import (
	"encoding/json"

	"github.com/roach88/motion/internal/timeline"
)

// InstanceSet is an insertion-ordered arena of instances with O(1) lookup
// by handle. It is immutable: every change returns a new set. The empty set
// is always the zero value.
type InstanceSet struct {
	entries []*timeline.Instance
	index   map[timeline.ID]int
}

// NewInstanceSet builds a set from instances in order. Later duplicates of
// an id replace earlier ones.
func NewInstanceSet(instances ...*timeline.Instance) InstanceSet {
	var s InstanceSet
	for _, in := range instances {
		s = s.With(in)
	}
	return s
}

// Len returns the number of instances.
func (s InstanceSet) Len() int { return len(s.entries) }

// Get returns the instance with the given id.
func (s InstanceSet) Get(id timeline.ID) (*timeline.Instance, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.entries[i], true
}

// All returns instances in insertion order. The slice must not be modified.
func (s InstanceSet) All() []*timeline.Instance { return s.entries }

// Each calls fn for every instance in insertion order.
func (s InstanceSet) Each(fn func(*timeline.Instance)) {
	for _, in := range s.entries {
		fn(in)
	}
}

// Filter returns the instances for which keep returns true.
func (s InstanceSet) Filter(keep func(*timeline.Instance) bool) []*timeline.Instance {
	var out []*timeline.Instance
	for _, in := range s.entries {
		if keep(in) {
			out = append(out, in)
		}
	}
	return out
}

// With returns a set containing in. An instance with the same id is
// replaced in place.
func (s InstanceSet) With(in *timeline.Instance) InstanceSet {
	if i, ok := s.index[in.ID]; ok {
		entries := make([]*timeline.Instance, len(s.entries))
		copy(entries, s.entries)
		entries[i] = in
		return InstanceSet{entries: entries, index: s.index}
	}
	entries := make([]*timeline.Instance, len(s.entries), len(s.entries)+1)
	copy(entries, s.entries)
	entries = append(entries, in)
	index := make(map[timeline.ID]int, len(entries))
	for k, v := range s.index {
		index[k] = v
	}
	index[in.ID] = len(entries) - 1
	return InstanceSet{entries: entries, index: index}
}

// Without returns a set lacking id. The receiver is returned unchanged if
// id is absent.
func (s InstanceSet) Without(id timeline.ID) InstanceSet {
	i, ok := s.index[id]
	if !ok {
		return s
	}
	if len(s.entries) == 1 {
		return InstanceSet{}
	}
	entries := make([]*timeline.Instance, 0, len(s.entries)-1)
	entries = append(entries, s.entries[:i]...)
	entries = append(entries, s.entries[i+1:]...)
	index := make(map[timeline.ID]int, len(entries))
	for j, in := range entries {
		index[in.ID] = j
	}
	return InstanceSet{entries: entries, index: index}
}

// update applies fn to every instance. Instances fn returns unchanged keep
// their pointer; if none changed the receiver is returned.
func (s InstanceSet) update(fn func(*timeline.Instance) *timeline.Instance) InstanceSet {
	var entries []*timeline.Instance
	for i, in := range s.entries {
		next := fn(in)
		if next == in {
			continue
		}
		if entries == nil {
			entries = make([]*timeline.Instance, len(s.entries))
			copy(entries, s.entries)
		}
		entries[i] = next
	}
	if entries == nil {
		return s
	}
	return InstanceSet{entries: entries, index: s.index}
}

// MarshalJSON encodes the set as an ordered array.
func (s InstanceSet) MarshalJSON() ([]byte, error) {
	if s.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.entries)
}

// UnmarshalJSON decodes an ordered array.
func (s *InstanceSet) UnmarshalJSON(data []byte) error {
	var entries []*timeline.Instance
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	*s = NewInstanceSet(entries...)
	return nil
}
