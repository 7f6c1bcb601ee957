// Package bridge connects the engine to an MQTT broker. Requests published
// on the requests topic are posted onto the engine loop; animation
// notifications are published on the notifications topic.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/roach88/motion/internal/config"
	"github.com/roach88/motion/internal/control"
	"github.com/roach88/motion/internal/host"
)

const (
	outboxSize     = 256
	publishTimeout = 5 * time.Second
)

// Client is the part of mqtt.Client the bridge uses.
type Client interface {
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Bridge relays requests and notifications between a broker and an engine.
type Bridge struct {
	client Client
	cfg    config.MQTTConfig
	engine control.Engine
	logger *slog.Logger

	outbox  chan host.Notification
	dropped int
}

// New creates a bridge. Call Subscribe once connected and Run to publish
// notifications.
func New(client Client, cfg config.MQTTConfig, e control.Engine, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		client: client,
		cfg:    cfg,
		engine: e,
		logger: logger.With("component", "bridge"),
		outbox: make(chan host.Notification, outboxSize),
	}
}

// Attach sets the engine requests are posted to. A bridge is usually
// created first so it can be passed to the engine as its notifier.
func (b *Bridge) Attach(e control.Engine) {
	b.engine = e
}

// NewClient builds a paho client for cfg. onConnect runs on every
// (re)connect, which is where subscriptions belong.
func NewClient(cfg config.MQTTConfig, onConnect mqtt.OnConnectHandler) mqtt.Client {
	options := mqtt.NewClientOptions().
		AddBroker(cfg.URL).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetAutoReconnect(true).
		SetOnConnectHandler(onConnect)
	return mqtt.NewClient(options)
}

// Connect connects client, waiting at most timeout.
func Connect(client mqtt.Client, timeout time.Duration) error {
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("mqtt connect: timed out after %s", timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

// Subscribe listens on the requests topic.
func (b *Bridge) Subscribe() error {
	token := b.client.Subscribe(b.cfg.Topics.Requests, b.cfg.QoS, b.handleMessage)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.cfg.Topics.Requests, err)
	}
	b.logger.Info("subscribed", "topic", b.cfg.Topics.Requests)
	return nil
}

func (b *Bridge) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	b.logger.Debug("request received", "topic", msg.Topic(), "id", msg.MessageID())
	if err := b.HandlePayload(msg.Payload()); err != nil {
		b.logger.Warn("request rejected", "topic", msg.Topic(), "error", err)
	}
}

// HandlePayload decodes one request and posts it onto the engine loop.
// Errors the engine reports later are logged.
func (b *Bridge) HandlePayload(payload []byte) error {
	r, err := control.Decode(payload)
	if err != nil {
		return err
	}
	return control.Post(b.engine, r, func(err error) {
		b.logger.Warn("request failed", "type", r.Type, "error", err)
	})
}

// Send publishes one request on the requests topic, for clients driving a
// remote engine.
func Send(client Client, cfg config.MQTTConfig, r control.Request) error {
	if err := r.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	token := client.Publish(cfg.Topics.Requests, cfg.QoS, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timed out after %s", publishTimeout)
	}
	return token.Error()
}

// Notify queues a notification for publishing. It never blocks the engine:
// when the outbox is full the notification is dropped.
func (b *Bridge) Notify(n host.Notification) {
	select {
	case b.outbox <- n:
	default:
		b.dropped++
		b.logger.Warn("notification dropped", "kind", n.Kind, "instance", n.InstanceID, "dropped", b.dropped)
	}
}

// Run publishes queued notifications until ctx is done.
func (b *Bridge) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-b.outbox:
			if err := b.publish(n); err != nil {
				b.logger.Error("publish failed", "topic", b.cfg.Topics.Notifications, "error", err)
			}
		}
	}
}

func (b *Bridge) publish(n host.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	token := b.client.Publish(b.cfg.Topics.Notifications, b.cfg.QoS, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timed out after %s", publishTimeout)
	}
	return token.Error()
}
