package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/motion/internal/state"
)

func appendAll(t *testing.T, s *Store, session string, msgs []state.Message) {
	t.Helper()
	for i, m := range msgs {
		require.NoError(t, s.Append(context.Background(), session, int64(i+1), m))
	}
}

// TestAppend_ReadMessagesInSeqOrder tests that messages come back in seq
// order with their concrete types.
func TestAppend_ReadMessagesInSeqOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "s1", 2, state.FrameChanged{Now: 16}))
	require.NoError(t, s.Append(ctx, "s1", 1, state.SessionStarted{}))
	require.NoError(t, s.Append(ctx, "s2", 3, state.SessionStopped{}))

	recs, err := s.ReadMessages(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, int64(1), recs[0].Seq)
	assert.Equal(t, state.SessionStarted{}, recs[0].Message)
	assert.Equal(t, state.FrameChanged{Now: 16}, recs[1].Message)
}

// TestAppend_Idempotent tests that a repeated (session, seq) is ignored.
func TestAppend_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "s1", 1, state.SessionStarted{}))
	require.NoError(t, s.Append(ctx, "s1", 1, state.SessionStopped{}))

	recs, err := s.ReadMessages(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, state.KindSessionStarted, recs[0].Message.Kind())
}

// TestListSessions tests session summaries.
func TestListSessions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	msgs := testSession()
	appendAll(t, s, "0190-b", msgs)
	require.NoError(t, s.Append(ctx, "0190-a", 1, state.SessionStarted{}))
	require.NoError(t, s.WriteSnapshot(ctx, "0190-b", int64(len(msgs)), "abc"))

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "0190-a", sessions[0].Session)
	assert.Equal(t, SessionSummary{
		Session:  "0190-b",
		Messages: len(msgs),
		FirstSeq: 1,
		LastSeq:  int64(len(msgs)),
		Frames:   2,
		Hash:     "abc",
	}, sessions[1])

	last, err := s.LastSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0190-b", last)
}

// TestLastSession_Empty tests the empty journal.
func TestLastSession_Empty(t *testing.T) {
	s := createTestStore(t)
	last, err := s.LastSession(context.Background())
	require.NoError(t, err)
	assert.Empty(t, last)
}

// TestReplay_MatchesSnapshot tests that replay reproduces the recorded
// state hash.
func TestReplay_MatchesSnapshot(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	msgs := testSession()
	want := reduceAll(t, msgs)
	hash, err := want.Hash()
	require.NoError(t, err)

	appendAll(t, s, "s1", msgs)
	require.NoError(t, s.WriteSnapshot(ctx, "s1", int64(len(msgs)), hash))
	// Messages after the snapshot are not replayed.
	require.NoError(t, s.Append(ctx, "s1", int64(len(msgs)+1), state.SessionStopped{}))

	res, err := s.Replay(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, res.Match)
	assert.Equal(t, hash, res.Hash)
	assert.Equal(t, len(msgs), res.Messages)
	assert.Equal(t, 1, res.Instances)
	assert.Equal(t, 1, res.Elements)
	assert.True(t, res.State.Session.Active)

	in, ok := res.State.Instances.Get(1)
	require.True(t, ok)
	assert.InDelta(t, 0.335, in.Position, 1e-9)
}

// TestReplay_MismatchAndMissingSnapshot tests replay without a valid
// snapshot.
func TestReplay_MismatchAndMissingSnapshot(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	appendAll(t, s, "s1", testSession())
	res, err := s.Replay(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, res.Match)
	assert.Empty(t, res.RecordedHash)

	require.NoError(t, s.WriteSnapshot(ctx, "s1", 3, "not-the-hash"))
	res, err = s.Replay(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, res.Match)
	assert.Equal(t, 3, res.Messages)
	assert.Equal(t, 0, res.Instances)

	_, err = s.Replay(ctx, "missing")
	assert.ErrorContains(t, err, "no messages")
}
