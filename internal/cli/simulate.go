package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/motion/internal/control"
	"github.com/roach88/motion/internal/dom"
	"github.com/roach88/motion/internal/engine"
	"github.com/roach88/motion/internal/host"
	"github.com/roach88/motion/internal/ir"
)

// maxSettleFrames bounds a simulation that runs until nothing is animating.
const maxSettleFrames = 10000

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Clicks   []string // element ids
	Fires    []string // event[@element]
	Plays    []string // action list ids
	Frames   int      // 0 runs until settled
	Interval float64  // ms per frame
	NoEvents bool
}

// SimulateResult is the document after the simulated frames.
type SimulateResult struct {
	Session       string              `json:"session,omitempty"`
	Frames        int                 `json:"frames"`
	Elapsed       float64             `json:"elapsed"`
	Instances     int                 `json:"instances"`
	Styles        map[string]string   `json:"styles"`
	Notifications []host.Notification `json:"notifications"`
	Errors        []string            `json:"errors,omitempty"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate <document>",
		Short: "Run a document headless on a simulated clock",
		Long: `Run a document against its declared host elements with a simulated
frame clock and print the resulting element styles.

Clicks are delivered first, then fired events, then playback requests.
Without --frames the simulation runs until no instance is left (a
continuous instance never finishes, so give --frames for documents
that drive scroll or pointer parameters).

Examples:
  motion simulate page.cue --click box
  motion simulate page.cue --fire box-click@box --frames 10
  motion simulate page.cue --play fade-out --no-events --format json
  motion simulate page.cue --click box --db ./motion.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Clicks, "click", nil, "click these elements")
	cmd.Flags().StringSliceVar(&opts.Fires, "fire", nil, "fire events, as event or event@element")
	cmd.Flags().StringSliceVar(&opts.Plays, "play", nil, "request playback of these action lists")
	cmd.Flags().IntVar(&opts.Frames, "frames", 0, "frames to run (0 runs until settled)")
	cmd.Flags().Float64Var(&opts.Interval, "interval", 16, "ms between frames")
	cmd.Flags().BoolVar(&opts.NoEvents, "no-events", false, "do not bind document events")
	return cmd
}

func runSimulate(opts *SimulateOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	if opts.Interval <= 0 {
		return NewExitError(ExitCommandError, "--interval must be positive")
	}

	m, err := loadValidDocument(path)
	if err != nil {
		return loadErrorExit(formatter, err)
	}
	spec := m.Host
	if spec == nil {
		spec = &ir.HostSpec{Width: opts.Config.Host.Width, Height: opts.Config.Host.Height}
	}
	doc, err := dom.FromSpec(spec)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalid, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to build host document", err)
	}

	now := 0.0
	frames := host.NewFrameQueue(func() float64 { return now })
	result := SimulateResult{Styles: map[string]string{}, Notifications: []host.Notification{}}

	e, cleanup, err := opts.newEngine(doc, frames, opts.newLogger(formatter.GetErrWriter()),
		host.NotifierFunc(func(n host.Notification) {
			result.Notifications = append(result.Notifications, n)
		}),
		engine.WithThrottle(0),
	)
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to build engine", err)
	}
	defer cleanup()

	if err := e.Start(m, !opts.NoEvents); err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to start session", err)
	}
	result.Session = e.Session()
	doc.Ready()
	doc.Load()

	for _, id := range opts.Clicks {
		if err := doc.Click(id); err != nil {
			_ = formatter.Error(ErrCodeUnknownEvent, err.Error(), nil)
			return WrapExitError(ExitCommandError, "click failed", err)
		}
	}
	for _, r := range simulateRequests(opts) {
		if err := control.Apply(e, r); err != nil {
			_ = formatter.Error(ErrCodeUnknownEvent, err.Error(), nil)
			return WrapExitError(ExitCommandError, fmt.Sprintf("%s request failed", r.Type), err)
		}
	}

	limit := opts.Frames
	if limit <= 0 {
		limit = maxSettleFrames
	}
	for result.Frames < limit {
		if opts.Frames <= 0 && e.State().Instances.Len() == 0 {
			break
		}
		now += opts.Interval
		frames.Tick(now)
		result.Frames++
	}
	result.Elapsed = now
	result.Instances = e.State().Instances.Len()

	for _, n := range doc.Nodes() {
		if s := doc.StyleString(n.Key()); s != "" {
			result.Styles[n.Key()] = s
		}
	}
	for _, err := range e.Errors() {
		result.Errors = append(result.Errors, err.Error())
	}
	// Stopping writes the journal snapshot.
	e.Stop()

	if formatter.JSON() {
		return formatter.Success(result)
	}
	printSimulation(formatter, result)
	return nil
}

// simulateRequests turns --fire and --play into control requests.
func simulateRequests(opts *SimulateOptions) []control.Request {
	var reqs []control.Request
	for _, f := range opts.Fires {
		event, element, _ := strings.Cut(f, "@")
		reqs = append(reqs, control.Request{Type: control.TypeFire, EventID: event, ElementID: element})
	}
	for _, list := range opts.Plays {
		reqs = append(reqs, control.Request{Type: control.TypePlayback, ActionListID: list, Verbose: true})
	}
	return reqs
}

func printSimulation(f *OutputFormatter, r SimulateResult) {
	w := f.Writer
	fmt.Fprintf(w, "%d frame(s), %.0fms, %d instance(s) running\n", r.Frames, r.Elapsed, r.Instances)
	if r.Session != "" {
		fmt.Fprintf(w, "session %s\n", r.Session)
	}

	ids := make([]string, 0, len(r.Styles))
	for id := range r.Styles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if len(ids) > 0 {
		fmt.Fprintln(w)
	}
	for _, id := range ids {
		fmt.Fprintf(w, "#%s { %s }\n", id, r.Styles[id])
	}

	if len(r.Notifications) > 0 {
		fmt.Fprintln(w)
	}
	for _, n := range r.Notifications {
		fmt.Fprintf(w, "%s %s %s #%s\n", n.Kind, n.ActionListID, n.ActionTypeID, n.ElementID)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(w, "error: %s\n", e)
	}
}
