package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/motion/internal/host"
	"github.com/roach88/motion/internal/ir"
	"github.com/roach88/motion/internal/style"
)

func fixture(t *testing.T) *Document {
	t.Helper()
	d, err := FromSpec(&ir.HostSpec{
		Width:  400,
		Height: 300,
		Elements: []ir.HostElement{
			{ID: "card", Classes: []string{"card"}, Boundary: true, X: 0, Y: 0, Width: 200, Height: 100},
			{ID: "title", Parent: "card", Classes: []string{"label"}, X: 10, Y: 10, Width: 100, Height: 20},
			{ID: "icon", Parent: "card", Classes: []string{"label", "small"}, X: 150, Y: 10, Width: 20, Height: 20},
			{ID: "other", Classes: []string{"card"}, Boundary: true, X: 0, Y: 500, Width: 200, Height: 100,
				Style: map[string]string{"Opacity": "0.5"}},
			{ID: "other-title", Parent: "other", Classes: []string{"label"}, X: 10, Y: 510, Width: 100, Height: 20},
		},
	})
	require.NoError(t, err)
	return d
}

func keys(els []host.Element) []string {
	out := make([]string, len(els))
	for i, el := range els {
		out[i] = el.Key()
	}
	return out
}

// TestFromSpec_Errors tests fixture validation.
func TestFromSpec_Errors(t *testing.T) {
	_, err := FromSpec(&ir.HostSpec{Elements: []ir.HostElement{{ID: "a"}, {ID: "a"}}})
	assert.ErrorContains(t, err, "duplicate")

	_, err = FromSpec(&ir.HostSpec{Elements: []ir.HostElement{{ID: "a", Parent: "nope"}}})
	assert.ErrorContains(t, err, "unknown parent")

	d, err := FromSpec(nil)
	require.NoError(t, err)
	assert.Equal(t, float64(DefaultWidth), d.Viewport().Width)
}

// TestFromSpec_ScrollHeight tests that the page grows to fit its elements.
func TestFromSpec_ScrollHeight(t *testing.T) {
	d := fixture(t)
	assert.Equal(t, 600.0, d.Viewport().ScrollHeight)
	assert.Equal(t, 600.0, d.Rect(d.Root()).Height)
}

// TestResolve tests target descriptor resolution.
func TestResolve(t *testing.T) {
	d := fixture(t)
	title, _ := d.Node("title")
	other, _ := d.Node("other")

	tests := []struct {
		name  string
		query host.Query
		want  []string
	}{
		{"page", host.Query{Target: ir.Target{AppliesTo: ir.AppliesToPage}}, []string{RootID}},
		{"by id", host.Query{Target: ir.Target{ID: "title"}}, []string{"title"}},
		{"by prefixed id", host.Query{Target: ir.Target{ID: "page|title"}}, []string{"title"}},
		{"unknown id", host.Query{Target: ir.Target{ID: "nope"}}, []string{}},
		{"by class", host.Query{Target: ir.Target{Selector: ".label"}}, []string{"title", "icon", "other-title"}},
		{"compound", host.Query{Target: ir.Target{Selector: ".label.small"}}, []string{"icon"}},
		{"list", host.Query{Target: ir.Target{Selector: "#title, .small"}}, []string{"title", "icon"}},
		{"trigger", host.Query{Target: ir.Target{AppliesTo: ir.AppliesToTrigger}, EventTarget: title}, []string{"title"}},
		{"trigger without event", host.Query{Target: ir.Target{AppliesTo: ir.AppliesToTrigger}}, []string{}},
		{"zero target uses event", host.Query{EventTarget: other}, []string{"other"}},
		{
			"boundary scoped",
			host.Query{Target: ir.Target{Selector: ".label", BoundaryMode: true}, EventTarget: other},
			[]string{"other-title"},
		},
		{
			"children",
			host.Query{Target: ir.Target{Selector: ".label", Relation: ir.RelationChildren}, EventTarget: other},
			[]string{"other-title"},
		},
		{
			"siblings",
			host.Query{Target: ir.Target{Relation: ir.RelationSiblings}, EventTarget: title},
			[]string{"icon"},
		},
		{
			"parent",
			host.Query{Target: ir.Target{Selector: ".card", Relation: ir.RelationParent}, EventTarget: title},
			[]string{"card"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, keys(d.Resolve(tt.query)))
		})
	}
}

// TestBoundary tests closest-boundary lookup and containment.
func TestBoundary(t *testing.T) {
	d := fixture(t)
	title, _ := d.Node("title")
	card, _ := d.Node("card")
	other, _ := d.Node("other")

	b, ok := d.Boundary(title)
	require.True(t, ok)
	assert.Equal(t, "card", b.Key())
	assert.True(t, d.Contains(card, title))
	assert.False(t, d.Contains(other, title))
	assert.True(t, d.HasBoundaryNodes())

	_, ok = d.Boundary(d.Root())
	assert.False(t, ok)
}

// TestClick_BubblesToAncestorsAndPage tests pointer input delivery.
func TestClick_BubblesToAncestorsAndPage(t *testing.T) {
	d := fixture(t)
	card, _ := d.Node("card")

	var got []string
	d.Listen(host.SourceClick, card, func(in host.Input) { got = append(got, "card:"+in.Target.Key()) })
	d.Listen(host.SourceClick, nil, func(in host.Input) { got = append(got, "page:"+in.Target.Key()) })
	remove := d.Listen(host.SourceMouseDown, nil, func(host.Input) { got = append(got, "down") })

	require.NoError(t, d.Click("title"))
	assert.Equal(t, []string{"down", "card:title", "page:title"}, got)

	remove()
	remove()
	got = nil
	require.NoError(t, d.Click("title"))
	assert.Equal(t, []string{"card:title", "page:title"}, got)
	assert.Equal(t, 2, d.ListenerCount())

	assert.Error(t, d.Click("nope"))
}

// TestClickAt tests clicks by viewport position.
func TestClickAt(t *testing.T) {
	d := fixture(t)

	var got []string
	d.Listen(host.SourceClick, nil, func(in host.Input) { got = append(got, in.Target.Key()) })

	assert.True(t, d.ClickAt(155, 15))
	assert.True(t, d.ClickAt(50, 50))
	assert.False(t, d.ClickAt(350, 250))
	assert.Equal(t, []string{"icon", "card"}, got)
}

// TestMoveTo_EnterLeave tests hover transitions.
func TestMoveTo_EnterLeave(t *testing.T) {
	d := fixture(t)

	var got []string
	d.Listen(host.SourceMouseOver, nil, func(in host.Input) { got = append(got, "over:"+in.Target.Key()) })
	d.Listen(host.SourceMouseOut, nil, func(in host.Input) { got = append(got, "out:"+in.Target.Key()) })

	require.NoError(t, d.Hover("title"))
	assert.Equal(t, []string{"over:card", "over:title"}, got)

	got = nil
	require.NoError(t, d.Hover("icon"))
	assert.Equal(t, []string{"out:title", "over:icon"}, got)

	got = nil
	d.Leave()
	assert.Equal(t, []string{"out:icon", "out:card"}, got)
}

// TestScrollTo_Clamps tests scroll range and the scroll notification.
func TestScrollTo_Clamps(t *testing.T) {
	d := fixture(t)
	fired := 0
	d.Listen(host.SourceScroll, nil, func(host.Input) { fired++ })

	d.ScrollTo(1000)
	assert.Equal(t, 300.0, d.Viewport().ScrollY)
	d.ScrollTo(-5)
	assert.Equal(t, 0.0, d.Viewport().ScrollY)
	assert.Equal(t, 2, fired)

	d.ScrollTo(250)
	other, _ := d.Node("other")
	assert.Equal(t, host.Rect{X: 0, Y: 250, Width: 200, Height: 100}, d.Rect(other))
}

// TestComputedStyle tests inline, sheet, and default precedence.
func TestComputedStyle(t *testing.T) {
	d := fixture(t)
	other, _ := d.Node("other")
	card, _ := d.Node("card")

	assert.Equal(t, "0.5", d.ComputedStyle(other, "opacity"))
	assert.Equal(t, "1", d.ComputedStyle(card, "opacity"))
	assert.Equal(t, "200px", d.ComputedStyle(card, "width"))
	assert.Equal(t, "", d.InlineStyle(card, "opacity"))

	d.ApplyStyle(card, host.Update{
		Item:    ir.ActionItem{ActionTypeID: ir.StyleOpacity},
		Current: ir.Values{ir.KeyValue: 0.25},
	})
	assert.Equal(t, "0.25", d.ComputedStyle(card, "opacity"))
	assert.Equal(t, "0.25", d.InlineStyle(card, "opacity"))
}

// TestApplyTransform_ComposesFamilies tests that recorded families persist
// alongside the animating one.
func TestApplyTransform_ComposesFamilies(t *testing.T) {
	d := fixture(t)
	card, _ := d.Node("card")

	d.ApplyTransform(card, host.Update{
		Item:    ir.ActionItem{ActionTypeID: ir.TransformMove},
		Current: ir.Values{ir.KeyX: 10, ir.KeyY: 0, ir.KeyZ: 0},
		RefState: style.Families{
			ir.TransformRotate: {Values: ir.Values{ir.KeyX: 0, ir.KeyY: 0, ir.KeyZ: 45}},
		},
	})
	assert.Equal(t,
		"translate3d(10px, 0px, 0px) scale3d(1, 1, 1) rotateX(0deg) rotateY(0deg) rotateZ(45deg) skew(0deg, 0deg)",
		d.Inline("card")["transform"])
	assert.Equal(t, "transform", d.Inline("card")["will-change"])

	d.Cleanup(card, ir.ActionItem{ActionTypeID: ir.TransformMove})
	_, ok := d.Inline("card")["will-change"]
	assert.False(t, ok)

	d.ClearStyles(card, ir.TransformMove)
	assert.Empty(t, d.StyleString("card"))
}

// TestApplyStyle_Writes tests that unchanged values do not count as writes.
func TestApplyStyle_Writes(t *testing.T) {
	d := fixture(t)
	card, _ := d.Node("card")
	u := host.Update{
		Item:    ir.ActionItem{ActionTypeID: ir.StyleBackgroundColor},
		Current: ir.Values{ir.KeyRed: 255, ir.KeyGreen: 0, ir.KeyBlue: 0, ir.KeyAlpha: 1},
	}
	d.ApplyStyle(card, u)
	d.ApplyStyle(card, u)
	assert.Equal(t, 1, d.Writes())
	assert.Equal(t, "background-color: rgba(255, 0, 0, 1)", d.StyleString("card"))

	d.ApplyGeneral(card, host.Update{Item: ir.ActionItem{
		ActionTypeID: ir.GeneralDisplay,
		Config:       ir.ActionItemConfig{Display: "none"},
	}})
	assert.Equal(t, "none", d.ComputedStyle(card, "display"))
	assert.Equal(t, 2, d.Writes())

	d.ClearStyles(card, ir.StyleBackgroundColor)
	assert.Equal(t, "display: none", d.StyleString("card"))
}
