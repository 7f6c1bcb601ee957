package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/roach88/motion/internal/store"
)

// openJournal opens the configured journal. Unlike store.Open it refuses
// to create a missing file, since every caller only reads.
func openJournal(opts *RootOptions, f *OutputFormatter) (*store.Store, error) {
	path := opts.Config.Journal.Path
	if path == "" {
		_ = f.Error(ErrCodeJournal, "no journal configured (use --db or journal.path)", nil)
		return nil, NewExitError(ExitCommandError, "no journal configured")
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			_ = f.Error(ErrCodeNotFound, fmt.Sprintf("journal not found: %s", path), nil)
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("journal not found: %s", path))
		}
		_ = f.Error(ErrCodeJournal, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	st, err := store.Open(path)
	if err != nil {
		_ = f.Error(ErrCodeJournal, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	return st, nil
}

// resolveSession returns session, or the journal's latest session when it
// is empty.
func resolveSession(ctx context.Context, st *store.Store, session string) (string, error) {
	if session != "" {
		return session, nil
	}
	return st.LastSession(ctx)
}
