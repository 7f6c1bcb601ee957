package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/motion/internal/state"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Session string
	Kinds   []string // optional - keep only these message kinds
	Frames  bool     // include FRAME_CHANGED messages
}

// TraceEntry is one journaled message.
type TraceEntry struct {
	Seq     int64           `json:"seq"`
	Kind    string          `json:"kind"`
	Message json.RawMessage `json:"message"`
}

// TraceResult holds the trace output.
type TraceResult struct {
	Session  string         `json:"session"`
	Messages []TraceEntry   `json:"messages"`
	Counts   map[string]int `json:"counts"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Print the journaled messages of a session",
		Long: `Print a session's journaled messages in sequence order.

Frame messages are left out unless --frames is given. Without --session
the most recent session is traced.

Examples:
  motion trace --db ./motion.db
  motion trace --db ./motion.db --session 0190f4d2-... --kind INSTANCE_ADDED
  motion trace --db ./motion.db --frames --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Session, "session", "", "session to trace (default: latest)")
	cmd.Flags().StringSliceVar(&opts.Kinds, "kind", nil, "keep only these message kinds")
	cmd.Flags().BoolVar(&opts.Frames, "frames", false, "include frame messages")
	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := opts.formatter(cmd)

	st, err := openJournal(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	session, err := resolveSession(ctx, st, opts.Session)
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to find session", err)
	}
	if session == "" {
		_ = formatter.Error(ErrCodeJournal, "journal has no sessions", nil)
		return NewExitError(ExitCommandError, "journal has no sessions")
	}

	records, err := st.ReadMessages(ctx, session)
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read session", err)
	}
	if len(records) == 0 {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("session not found: %s", session), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("session not found: %s", session))
	}

	keep := map[string]bool{}
	for _, k := range opts.Kinds {
		keep[strings.ToUpper(k)] = true
	}

	result := TraceResult{Session: session, Messages: []TraceEntry{}, Counts: map[string]int{}}
	for _, rec := range records {
		kind := string(rec.Message.Kind())
		if len(keep) > 0 && !keep[kind] {
			continue
		}
		if len(keep) == 0 && !opts.Frames && rec.Message.Kind() == state.KindFrameChanged {
			continue
		}
		data, err := json.Marshal(rec.Message)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to encode seq %d", rec.Seq), err)
		}
		result.Messages = append(result.Messages, TraceEntry{Seq: rec.Seq, Kind: kind, Message: data})
		result.Counts[kind]++
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Session %s\n\n", session)
	for _, e := range result.Messages {
		fmt.Fprintf(w, "%6d  %-30s %s\n", e.Seq, e.Kind, e.Message)
	}
	fmt.Fprintf(w, "\n%d message(s)\n", len(result.Messages))
	return nil
}
