package store

import (
	"context"
	"fmt"

	"github.com/roach88/motion/internal/state"
)

// ReplayResult is the outcome of rebuilding a session from its journal.
type ReplayResult struct {
	Session      string      `json:"session"`
	Messages     int         `json:"messages"`
	LastSeq      int64       `json:"lastSeq"`
	Instances    int         `json:"instances"`
	Elements     int         `json:"elements"`
	Hash         string      `json:"hash"`
	RecordedHash string      `json:"recordedHash,omitempty"`
	Match        bool        `json:"match"`
	State        state.State `json:"-"`
}

// Replay feeds a session's messages through a fresh store. When the session
// has a snapshot, only messages up to the snapshot seq are replayed and the
// resulting hash is compared to it. Match is false for sessions without a
// snapshot.
func (s *Store) Replay(ctx context.Context, session string) (ReplayResult, error) {
	res := ReplayResult{Session: session}

	snap, hasSnap, err := s.ReadSnapshot(ctx, session)
	if err != nil {
		return res, fmt.Errorf("replay %s: %w", session, err)
	}
	upTo := int64(-1)
	if hasSnap {
		upTo = snap.Seq
		res.RecordedHash = snap.Hash
	}

	records, err := s.readMessages(ctx, session, upTo)
	if err != nil {
		return res, fmt.Errorf("replay %s: %w", session, err)
	}
	if len(records) == 0 {
		return res, fmt.Errorf("replay %s: no messages", session)
	}

	st := state.NewStore()
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := st.Dispatch(rec.Message); err != nil {
			return res, fmt.Errorf("replay %s: seq=%d: %w", session, rec.Seq, err)
		}
		res.LastSeq = rec.Seq
	}

	final := st.State()
	hash, err := final.Hash()
	if err != nil {
		return res, fmt.Errorf("replay %s: %w", session, err)
	}

	res.Messages = len(records)
	res.Instances = final.Instances.Len()
	res.Elements = final.Elements.Len()
	res.Hash = hash
	res.Match = hasSnap && hash == snap.Hash
	res.State = final
	return res, nil
}
