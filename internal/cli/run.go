package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/roach88/motion/internal/termhost"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	LogFile  string
	NoEvents bool

	// Screen overrides the terminal (for testing). It must already be
	// initialized and is not finalized on return.
	Screen tcell.Screen
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <document>",
		Short: "Run a document interactively in the terminal",
		Long: `Draw a document's host elements in the terminal and drive them with
the mouse and keyboard: click and hover with the mouse, scroll with the
wheel, arrow keys, or j/k, and quit with q, Esc, or Ctrl-C.

Logs go to --log-file since the terminal is taken by the document.

Example:
  motion run page.cue
  motion run page.cue --db ./motion.db --log-file motion.log -v`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTerminal(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.LogFile, "log-file", "", "write logs to this file")
	cmd.Flags().BoolVar(&opts.NoEvents, "no-events", false, "do not bind document events")
	return cmd
}

func runTerminal(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	m, err := loadValidDocument(path)
	if err != nil {
		return loadErrorExit(formatter, err)
	}

	var logOut io.Writer = io.Discard
	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open log file", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := opts.newLogger(logOut)

	screen := opts.Screen
	if screen == nil {
		if screen, err = tcell.NewScreen(); err != nil {
			return WrapExitError(ExitCommandError, "failed to open terminal", err)
		}
		if err := screen.Init(); err != nil {
			return WrapExitError(ExitCommandError, "failed to initialize terminal", err)
		}
		defer screen.Fini()
	}

	h, err := termhost.New(screen, m.Host, opts.Config.Host, termhost.WithLogger(logger))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build terminal host", err)
	}

	e, cleanup, err := opts.newEngine(h, h.Frames(), logger, nil)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build engine", err)
	}
	defer cleanup()

	if err := e.Start(m, !opts.NoEvents); err != nil {
		return WrapExitError(ExitCommandError, "failed to start session", err)
	}
	if s := e.Session(); s != "" {
		h.SetStatus(fmt.Sprintf("session %s", s))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)

	loopDone := make(chan error, 1)
	go func() { loopDone <- e.Run(ctx) }()

	err = h.Run(ctx, e, opts.Config.Engine.FrameInterval.Std())
	cancel()
	if loopErr := <-loopDone; loopErr != nil && !errors.Is(loopErr, context.Canceled) {
		logger.Error("engine loop failed", "error", loopErr)
	}

	// The loop has exited, so stopping here is safe and records the
	// journal snapshot.
	e.Stop()
	logger.Info("session ended", slog.Int("errors", len(e.Errors())))

	if err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitCommandError, "terminal loop failed", err)
	}
	return nil
}
