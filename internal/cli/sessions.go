package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/motion/internal/store"
)

// NewSessionsCommand creates the sessions command.
func NewSessionsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List journaled sessions",
		Long: `List every session in the message journal with its message count,
sequence range, frame count, and recorded snapshot hash.

Examples:
  motion sessions --db ./motion.db
  motion sessions --db ./motion.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessions(rootOpts, cmd)
		},
	}
}

func runSessions(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := openJournal(opts, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	sessions, err := st.ListSessions(context.Background())
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}
	if sessions == nil {
		sessions = []store.SessionSummary{}
	}

	if formatter.JSON() {
		return formatter.Success(sessions)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(formatter.Writer, "No sessions found in journal.")
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tMESSAGES\tSEQ\tFRAMES\tSNAPSHOT")
	for _, s := range sessions {
		hash := short(s.Hash)
		if hash == "" {
			hash = "-"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d-%d\t%d\t%s\n", s.Session, s.Messages, s.FirstSeq, s.LastSeq, s.Frames, hash)
	}
	return tw.Flush()
}
