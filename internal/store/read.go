package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/motion/internal/state"
)

// Record is one journaled message.
type Record struct {
	Session string
	Seq     int64
	Message state.Message
}

// Snapshot is a recorded state hash.
type Snapshot struct {
	Session string
	Seq     int64
	Hash    string
}

// SessionSummary describes one journaled session.
type SessionSummary struct {
	Session  string `json:"session"`
	Messages int    `json:"messages"`
	FirstSeq int64  `json:"firstSeq"`
	LastSeq  int64  `json:"lastSeq"`
	Frames   int    `json:"frames"`
	Hash     string `json:"hash,omitempty"`
}

// ReadMessages returns a session's messages in seq order.
func (s *Store) ReadMessages(ctx context.Context, session string) ([]Record, error) {
	return s.readMessages(ctx, session, -1)
}

// readMessages returns messages with seq <= upTo, or all when upTo < 0.
func (s *Store) readMessages(ctx context.Context, session string, upTo int64) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, kind, payload
		FROM messages
		WHERE session = ? AND (? < 0 OR seq <= ?)
		ORDER BY seq ASC
	`, session, upTo, upTo)
	if err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			seq           int64
			kind, payload string
		)
		if err := rows.Scan(&seq, &kind, &payload); err != nil {
			return nil, fmt.Errorf("read messages: scan: %w", err)
		}
		m, err := unmarshalPayload(kind, payload)
		if err != nil {
			return nil, fmt.Errorf("read messages: seq=%d: %w", seq, err)
		}
		out = append(out, Record{Session: session, Seq: seq, Message: m})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}
	return out, nil
}

// ReadSnapshot returns the latest snapshot of a session. ok is false when
// the session never stopped cleanly.
func (s *Store) ReadSnapshot(ctx context.Context, session string) (snap Snapshot, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT seq, hash FROM snapshots
		WHERE session = ?
		ORDER BY seq DESC
		LIMIT 1
	`, session)
	snap.Session = session
	if err := row.Scan(&snap.Seq, &snap.Hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("read snapshot: %w", err)
	}
	return snap, true, nil
}

// ListSessions summarizes every journaled session, oldest first.
func (s *Store) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.session, COUNT(*), MIN(m.seq), MAX(m.seq),
		       SUM(CASE WHEN m.kind = ? THEN 1 ELSE 0 END),
		       COALESCE((SELECT hash FROM snapshots s
		                 WHERE s.session = m.session
		                 ORDER BY s.seq DESC LIMIT 1), '')
		FROM messages m
		GROUP BY m.session
		ORDER BY m.session ASC
	`, string(state.KindFrameChanged))
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var sum SessionSummary
		if err := rows.Scan(&sum.Session, &sum.Messages, &sum.FirstSeq, &sum.LastSeq, &sum.Frames, &sum.Hash); err != nil {
			return nil, fmt.Errorf("list sessions: scan: %w", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return out, nil
}

// LastSession returns the most recent session token, or "" for an empty
// journal.
func (s *Store) LastSession(ctx context.Context) (string, error) {
	var session string
	err := s.db.QueryRowContext(ctx, `SELECT session FROM messages ORDER BY session DESC LIMIT 1`).Scan(&session)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("last session: %w", err)
	}
	return session, nil
}
