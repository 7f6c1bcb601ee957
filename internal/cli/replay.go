package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/motion/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Session string // optional - specific session only
}

// ReplayReport holds the overall replay result.
type ReplayReport struct {
	Sessions []store.ReplayResult `json:"sessions"`
	Total    int                  `json:"total"`
	AllMatch bool                 `json:"allMatch"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay journaled sessions and verify their state hashes",
		Long: `Rebuild each journaled session by feeding its messages through a fresh
state store, then compare the resulting state hash to the snapshot the
engine recorded when the session stopped.

Sessions that never stopped have no snapshot and are reported as
unverified.

Exit codes:
  0 - Every replayed session matches its snapshot
  1 - A session diverged or has no snapshot
  2 - Command error (journal not found, etc.)

Examples:
  motion replay --db ./motion.db
  motion replay --db ./motion.db --session 0190f4d2-...
  motion replay --db ./motion.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Session, "session", "", "replay one session only")
	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := opts.formatter(cmd)

	st, err := openJournal(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	var sessions []string
	if opts.Session != "" {
		sessions = []string{opts.Session}
	} else {
		summaries, err := st.ListSessions(ctx)
		if err != nil {
			_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		for _, s := range summaries {
			sessions = append(sessions, s.Session)
		}
	}

	report := ReplayReport{Sessions: []store.ReplayResult{}, AllMatch: true}
	for _, session := range sessions {
		res, err := st.Replay(ctx, session)
		if err != nil {
			_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", session), err)
		}
		formatter.VerboseLog("Replayed %s: %d messages up to seq %d", session, res.Messages, res.LastSeq)
		report.Sessions = append(report.Sessions, res)
		report.Total++
		if !res.Match {
			report.AllMatch = false
		}
	}

	if formatter.JSON() {
		status := "ok"
		if !report.AllMatch {
			status = "error"
		}
		if err := formatter.Response(CLIResponse{Status: status, Data: report}); err != nil {
			return err
		}
	} else {
		printReplay(formatter, report)
	}

	if !report.AllMatch {
		return NewExitError(ExitFailure, "replay did not reproduce every snapshot")
	}
	return nil
}

func printReplay(f *OutputFormatter, report ReplayReport) {
	if report.Total == 0 {
		fmt.Fprintln(f.Writer, "No sessions found in journal.")
		return
	}
	for _, r := range report.Sessions {
		switch {
		case r.Match:
			fmt.Fprintf(f.Writer, "✓ %s (%d messages, hash %s)\n", r.Session, r.Messages, short(r.Hash))
		case r.RecordedHash == "":
			fmt.Fprintf(f.Writer, "✗ %s (%d messages, no snapshot)\n", r.Session, r.Messages)
		default:
			fmt.Fprintf(f.Writer, "✗ %s (%d messages)\n", r.Session, r.Messages)
			fmt.Fprintf(f.Writer, "  recorded %s\n  replayed %s\n", short(r.RecordedHash), short(r.Hash))
		}
	}
	fmt.Fprintln(f.Writer)
	if report.AllMatch {
		fmt.Fprintf(f.Writer, "All %d session(s) reproduce their snapshots.\n", report.Total)
	}
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
