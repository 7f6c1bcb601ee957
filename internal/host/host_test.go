package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/motion/internal/ir"
)

type nopPlugin struct{}

func (nopPlugin) Origin(Element, ir.Values, ir.ActionItem) ir.Values { return ir.Values{} }
func (nopPlugin) Destination(ir.ActionItem) ir.Values                { return ir.Values{} }
func (nopPlugin) Duration(Element, ir.ActionItem) float64            { return 0 }
func (nopPlugin) CreateInstance(Element, ir.ActionItem) any          { return nil }
func (nopPlugin) Render(any, Element, Update)                        {}
func (nopPlugin) Clear(Element)                                      {}

func TestPlugins_RegisterNormalizesName(t *testing.T) {
	p := NewPlugins()
	p.Register("lottie", nopPlugin{})

	_, ok := p.Get("PLUGIN_LOTTIE")
	assert.True(t, ok)
	_, ok = p.Get("PLUGIN_SPLINE")
	assert.False(t, ok)
	assert.Equal(t, []ir.ActionTypeID{"PLUGIN_LOTTIE"}, p.Types())
}

func TestPlugins_NilTable(t *testing.T) {
	var p *Plugins
	_, ok := p.Get("PLUGIN_LOTTIE")
	assert.False(t, ok)
	assert.Nil(t, p.Types())
}

func TestPluginType(t *testing.T) {
	assert.Equal(t, ir.ActionTypeID("PLUGIN_LOTTIE"), PluginType("lottie"))
	assert.Equal(t, ir.ActionTypeID("PLUGIN_LOTTIE"), PluginType("PLUGIN_LOTTIE"))
}

func TestFrameQueue_TickRunsQueuedCallbacksOnce(t *testing.T) {
	q := NewFrameQueue(nil)
	var got []float64
	q.RequestFrame(func(now float64) {
		got = append(got, now)
		q.RequestFrame(func(now float64) { got = append(got, -now) })
	})
	require.Equal(t, 1, q.Pending())

	q.Tick(16)
	assert.Equal(t, []float64{16}, got)
	assert.Equal(t, 1, q.Pending(), "callbacks queued during a tick wait")
	assert.Equal(t, 16.0, q.Now())

	q.Tick(32)
	assert.Equal(t, []float64{16, -32}, got)
	assert.Equal(t, 0, q.Pending())
}

func TestFrameQueue_Clock(t *testing.T) {
	now := 5.0
	q := NewFrameQueue(func() float64 { return now })
	assert.Equal(t, 5.0, q.Now())

	var got float64
	q.RequestFrame(func(n float64) { got = n })
	now = 40
	q.TickNow()
	assert.Equal(t, 40.0, got)
}

func TestNotifiers_FanOut(t *testing.T) {
	var a, b []NotificationKind
	ns := Notifiers{
		NotifierFunc(func(n Notification) { a = append(a, n.Kind) }),
		nil,
		NotifierFunc(func(n Notification) { b = append(b, n.Kind) }),
	}
	ns.Notify(Notification{Kind: AnimationStarted})
	assert.Equal(t, []NotificationKind{AnimationStarted}, a)
	assert.Equal(t, []NotificationKind{AnimationStarted}, b)
}
