package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/spf13/cobra"

	"github.com/roach88/motion/internal/bridge"
	"github.com/roach88/motion/internal/dom"
	"github.com/roach88/motion/internal/host"
	"github.com/roach88/motion/internal/ir"
	"github.com/roach88/motion/internal/server"
)

const connectTimeout = 10 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr     string
	NoEvents bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve <document>",
		Short: "Run a document headless behind the control server",
		Long: `Run a document against its declared host elements on a real-time frame
clock and expose the engine over HTTP and WebSocket:

  GET  /api/state               session summary
  GET  /api/instances           running instances
  POST /api/requests            any request ({"type": ...})
  POST /api/playback            {"actionListId": ...}
  POST /api/stop                {"actionListId": ...}
  POST /api/clear
  POST /api/events/:id/fire     {"elementId": ...}
  GET  /ws                      notifications and frames; accepts requests

When mqtt.url is configured, requests are also read from the requests
topic and notifications published on the notifications topic.

Example:
  motion serve page.cue --addr :8080
  MOTION_MQTT_URL=tcp://localhost:1883 motion serve page.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&opts.NoEvents, "no-events", false, "do not bind document events")
	return cmd
}

func runServe(opts *ServeOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg := opts.Config
	logger := opts.newLogger(formatter.GetErrWriter())

	m, err := loadValidDocument(path)
	if err != nil {
		return loadErrorExit(formatter, err)
	}
	spec := m.Host
	if spec == nil {
		spec = &ir.HostSpec{Width: cfg.Host.Width, Height: cfg.Host.Height}
	}
	doc, err := dom.FromSpec(spec)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build host document", err)
	}
	frames := host.NewFrameQueue(host.MonotonicClock())

	hub := server.NewHub(logger)
	notifiers := host.Notifiers{hub}

	var (
		b      *bridge.Bridge
		client mqtt.Client
	)
	if cfg.MQTT.URL != "" {
		client = bridge.NewClient(cfg.MQTT, func(mqtt.Client) {
			if err := b.Subscribe(); err != nil {
				logger.Error("mqtt subscribe failed", "error", err)
			}
		})
		b = bridge.New(client, cfg.MQTT, nil, logger)
		notifiers = append(notifiers, b)
	}

	e, cleanup, err := opts.newEngine(doc, frames, logger, notifiers)
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to build engine", err)
	}
	defer cleanup()

	if err := e.Start(m, !opts.NoEvents); err != nil {
		return WrapExitError(ExitCommandError, "failed to start session", err)
	}
	doc.Ready()
	doc.Load()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loopDone := make(chan error, 1)
	go func() { loopDone <- e.Run(ctx) }()

	if b != nil {
		b.Attach(e)
		go func() { _ = b.Run(ctx) }()
		if err := bridge.Connect(client, connectTimeout); err != nil {
			e.Close()
			<-loopDone
			_ = formatter.Error(ErrCodeTransport, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to connect to broker", err)
		}
		defer client.Disconnect(250)
		logger.Info("mqtt connected", "broker", cfg.MQTT.URL)
	}

	addr := opts.Addr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	srv := server.New(e, frames,
		server.WithHub(hub),
		server.WithLogger(logger),
		server.WithFrameInterval(cfg.Engine.FrameInterval.Std()),
	)
	err = srv.Run(ctx, addr)

	stop()
	if loopErr := <-loopDone; loopErr != nil && !errors.Is(loopErr, context.Canceled) {
		logger.Error("engine loop failed", "error", loopErr)
	}
	e.Stop()

	if err != nil {
		_ = formatter.Error(ErrCodeTransport, err.Error(), nil)
		return WrapExitError(ExitCommandError, "control server failed", err)
	}
	return nil
}
