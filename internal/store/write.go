package store

import (
	"context"
	"fmt"

	"github.com/roach88/motion/internal/state"
)

// Append writes one dispatched message. Uses ON CONFLICT DO NOTHING so a
// repeated (session, seq) is silently ignored.
func (s *Store) Append(ctx context.Context, session string, seq int64, m state.Message) error {
	payload, err := marshalPayload(m)
	if err != nil {
		return fmt.Errorf("append: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO messages (session, seq, kind, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, session, seq, string(m.Kind()), payload)
	if err != nil {
		return fmt.Errorf("append %s seq=%d: %w", m.Kind(), seq, err)
	}
	return nil
}

// WriteSnapshot records the state hash a session reached at seq.
func (s *Store) WriteSnapshot(ctx context.Context, session string, seq int64, hash string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (session, seq, hash)
		VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING
	`, session, seq, hash)
	if err != nil {
		return fmt.Errorf("write snapshot seq=%d: %w", seq, err)
	}
	return nil
}
