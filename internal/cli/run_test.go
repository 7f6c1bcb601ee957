package cli

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/motion/internal/store"
)

func newSimScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(40, 12)
	t.Cleanup(s.Fini)
	return s
}

// painted reports whether any cell on the screen shows a rune.
func painted(s tcell.SimulationScreen) bool {
	cols, rows := s.Size()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if r, _, _, _ := s.GetContent(x, y); r != ' ' && r != 0 {
				return true
			}
		}
	}
	return false
}

func TestRun_QuitKey(t *testing.T) {
	screen := newSimScreen(t)
	opts := &RunOptions{RootOptions: testRootOptions("text"), Screen: screen}
	opts.Config.Journal.Path = filepath.Join(t.TempDir(), "motion.db")
	cmd, _ := testCommand()

	done := make(chan error, 1)
	go func() { done <- runTerminal(opts, pageDoc, cmd) }()

	require.Eventually(t, func() bool { return painted(screen) }, 2*time.Second, 10*time.Millisecond)
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not quit")
	}

	// Quitting stops the session, so the journal has a snapshot.
	st, err := store.Open(opts.Config.Journal.Path)
	require.NoError(t, err)
	defer st.Close()
	sessions, err := st.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.NotEmpty(t, sessions[0].Hash)
}

func TestRun_InvalidDocument(t *testing.T) {
	opts := &RunOptions{RootOptions: testRootOptions("json"), Screen: newSimScreen(t)}
	cmd, out := testCommand()

	err := runTerminal(opts, invalidDoc, cmd)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	resp := decode(t, out.String(), nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalid, resp.Error.Code)
}
