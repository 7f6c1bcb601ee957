package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/motion/internal/bridge"
	"github.com/roach88/motion/internal/control"
)

// SendOptions holds flags for the send command.
type SendOptions struct {
	*RootOptions

	// Client overrides the broker connection (for testing). If nil, a
	// client is connected to mqtt.url.
	Client bridge.Client
}

// NewSendCommand creates the send command.
func NewSendCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SendOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "send <request-json>",
		Short: "Publish a request to an engine over MQTT",
		Long: `Publish one request on the configured requests topic, for an engine
started with "motion serve" and an mqtt.url.

Requests:
  {"type": "playback", "actionListId": "fade", "immediate": true}
  {"type": "stop", "actionListId": "fade"}
  {"type": "clear"}
  {"type": "fire", "eventId": "box-click", "elementId": "box"}

Example:
  MOTION_MQTT_URL=tcp://localhost:1883 motion send '{"type":"clear"}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(opts, args[0], cmd)
		},
	}
	return cmd
}

func runSend(opts *SendOptions, payload string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg := opts.Config.MQTT

	req, err := control.Decode([]byte(payload))
	if err != nil {
		_ = formatter.Error(ErrCodeInvalid, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid request", err)
	}

	client := opts.Client
	if client == nil {
		if cfg.URL == "" {
			_ = formatter.Error(ErrCodeTransport, "no broker configured (set mqtt.url or MOTION_MQTT_URL)", nil)
			return NewExitError(ExitCommandError, "no broker configured")
		}
		c := bridge.NewClient(cfg, nil)
		if err := bridge.Connect(c, connectTimeout); err != nil {
			_ = formatter.Error(ErrCodeTransport, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to connect to broker", err)
		}
		defer c.Disconnect(250)
		client = c
	}

	if err := bridge.Send(client, cfg, req); err != nil {
		_ = formatter.Error(ErrCodeTransport, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to publish request", err)
	}

	formatter.VerboseLog("Published to %s", cfg.Topics.Requests)
	if formatter.JSON() {
		return formatter.Success(map[string]string{"status": "sent", "type": req.Type, "topic": cfg.Topics.Requests})
	}
	fmt.Fprintf(formatter.Writer, "✓ Sent %s request to %s\n", req.Type, cfg.Topics.Requests)
	return nil
}
