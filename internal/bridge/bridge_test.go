package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/motion/internal/config"
	"github.com/roach88/motion/internal/control"
	"github.com/roach88/motion/internal/engine"
	"github.com/roach88/motion/internal/host"
	"github.com/roach88/motion/internal/testutil"
)

type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                   { return t.err }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakeClient struct {
	mu         sync.Mutex
	subscribed map[string]mqtt.MessageHandler
	published  []published
	subErr     error
}

func newFakeClient() *fakeClient {
	return &fakeClient{subscribed: map[string]mqtt.MessageHandler{}}
}

func (c *fakeClient) Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.subErr == nil {
		c.subscribed[topic] = callback
	}
	return doneToken{err: c.subErr}
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return doneToken{}
}

func (c *fakeClient) sent() []published {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]published(nil), c.published...)
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func testConfig() config.MQTTConfig {
	return config.Default().MQTT
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newEngine starts an engine on the cascade document and runs its loop
// until the test ends.
func newEngine(t *testing.T, notifier host.Notifier) *engine.Engine {
	t.Helper()
	m := testutil.MustCompile(t, testutil.CascadeDocument)
	e := engine.New(testutil.MustDocument(t, m), testutil.NewManualFrames(),
		engine.WithLogger(discard()),
		engine.WithNotifier(notifier),
	)
	require.NoError(t, e.Start(m, true))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = e.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return e
}

func TestSubscribe(t *testing.T) {
	client := newFakeClient()
	b := New(client, testConfig(), nil, discard())

	require.NoError(t, b.Subscribe())
	assert.Contains(t, client.subscribed, "motion/requests")

	client.subErr = errors.New("not authorized")
	err := b.Subscribe()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not authorized")
}

func TestRequestsReachEngine(t *testing.T) {
	client := newFakeClient()
	b := New(client, testConfig(), nil, discard())
	b.Attach(newEngine(t, b))
	require.NoError(t, b.Subscribe())

	handler := client.subscribed["motion/requests"]
	handler(nil, fakeMessage{topic: "motion/requests", payload: []byte(`{"type":"playback","actionListId":"fade-out","verbose":true}`)})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() { _ = b.Run(ctx) }()

	require.Eventually(t, func() bool {
		for _, p := range client.sent() {
			var n host.Notification
			if json.Unmarshal(p.payload, &n) == nil && n.Kind == host.AnimationStarted && n.ActionListID == "fade-out" {
				return true
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)

	for _, p := range client.sent() {
		assert.Equal(t, "motion/notifications", p.topic)
		assert.Equal(t, byte(1), p.qos)
	}
}

func TestHandlePayload_Invalid(t *testing.T) {
	b := New(newFakeClient(), testConfig(), nil, discard())

	err := b.HandlePayload([]byte(`{"type":"rewind"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown request type")

	err = b.HandlePayload([]byte(`{`))
	require.Error(t, err)
}

func TestNotify_DropsWhenFull(t *testing.T) {
	b := New(newFakeClient(), testConfig(), nil, discard())
	for i := 0; i < outboxSize+3; i++ {
		b.Notify(host.Notification{Kind: host.AnimationStarted})
	}
	assert.Equal(t, 3, b.dropped)
	assert.Len(t, b.outbox, outboxSize)
}

func TestRun_StopsWithContext(t *testing.T) {
	b := New(newFakeClient(), testConfig(), nil, discard())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, b.Run(ctx), context.Canceled)
}

func TestSend(t *testing.T) {
	client := newFakeClient()
	cfg := testConfig()

	require.NoError(t, Send(client, cfg, control.Request{Type: control.TypeFire, EventID: "box-click"}))
	sent := client.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "motion/requests", sent[0].topic)
	assert.JSONEq(t, `{"type":"fire","eventId":"box-click"}`, string(sent[0].payload))

	err := Send(client, cfg, control.Request{Type: control.TypePlayback})
	require.Error(t, err)
	assert.Len(t, client.sent(), 1)
}
