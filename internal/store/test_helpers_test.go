package store

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/roach88/motion/internal/ir"
	"github.com/roach88/motion/internal/state"
	"github.com/roach88/motion/internal/timeline"
)

// createTestStore creates a new journal in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// verifyPragma checks that a pragma is set to the expected value.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return fmt.Errorf("query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}

// testSession returns the messages of a short session: import, start, one
// 100ms move instance, and three frames.
func testSession() []state.Message {
	item := ir.ActionItem{
		ID:           "a1",
		ActionTypeID: ir.TransformMove,
		RenderType:   ir.RenderTransform,
		Config: ir.ActionItemConfig{
			Duration: 100,
			Easing:   "linear",
			Values:   ir.Values{ir.KeyX: 50, ir.KeyY: 0, ir.KeyZ: 0},
		},
	}
	model := &ir.Model{
		Events: map[string]ir.Event{},
		ActionLists: map[string]ir.ActionList{
			"list": {ID: "list", ActionItemGroups: []ir.ActionItemGroup{{ActionItems: []ir.ActionItem{item}}}},
		},
	}
	return []state.Message{
		state.DataImported{Model: model},
		state.SessionInitialized{},
		state.SessionStarted{},
		state.InstanceAdded{Instance: timeline.Instance{
			ID:           1,
			ElementID:    "box",
			ActionItem:   item,
			ActionListID: "list",
			Duration:     100,
			Origin:       ir.Values{ir.KeyX: 0, ir.KeyY: 0, ir.KeyZ: 0},
			Destination:  item.Config.Values,
			IsCarrier:    true,
		}},
		state.InstanceStarted{ID: 1, Time: 0},
		state.FrameChanged{Now: 16},
		state.FrameChanged{Now: 33.5},
		state.ElementStateChanged{ElementID: "box", ActionTypeID: ir.TransformMove, Values: ir.Values{ir.KeyX: 16.75}},
	}
}

// reduceAll feeds messages through a fresh store and returns the result.
func reduceAll(t *testing.T, msgs []state.Message) state.State {
	t.Helper()
	st := state.NewStore()
	for _, m := range msgs {
		if err := st.Dispatch(m); err != nil {
			t.Fatalf("Dispatch(%s) failed: %v", m.Kind(), err)
		}
	}
	return st.State()
}
