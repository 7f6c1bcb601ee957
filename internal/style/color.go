package style

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/roach88/motion/internal/ir"
)

// ParseColor reads "#rgb", "#rrggbb", "rgb(r, g, b)", "rgba(r, g, b, a)", or
// "transparent" into r/g/b (0-255) and alpha (0-1) channel values.
func ParseColor(s string) (ir.Values, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == "":
		return nil, false
	case s == "transparent":
		return ir.Values{ir.KeyRed: 0, ir.KeyGreen: 0, ir.KeyBlue: 0, ir.KeyAlpha: 0}, true
	case strings.HasPrefix(s, "#"):
		c, err := colorful.Hex(s)
		if err != nil {
			return nil, false
		}
		r, g, b := c.RGB255()
		return ir.Values{ir.KeyRed: float64(r), ir.KeyGreen: float64(g), ir.KeyBlue: float64(b), ir.KeyAlpha: 1}, true
	}

	fns := splitFunctions(s)
	if len(fns) != 1 || (fns[0].name != "rgb" && fns[0].name != "rgba") {
		return nil, false
	}
	args := fns[0].args
	if len(args) < 3 {
		return nil, false
	}
	out := ir.Values{ir.KeyAlpha: 1}
	for i, key := range []string{ir.KeyRed, ir.KeyGreen, ir.KeyBlue} {
		v, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return nil, false
		}
		out[key] = v
	}
	if len(args) > 3 {
		a, err := strconv.ParseFloat(args[3], 64)
		if err != nil {
			return nil, false
		}
		out[ir.KeyAlpha] = a
	}
	return out, true
}

// MustColor parses a color or panics; for literals in tests and defaults.
func MustColor(s string) ir.Values {
	v, ok := ParseColor(s)
	if !ok {
		panic(fmt.Sprintf("style: invalid color %q", s))
	}
	return v
}

// ToColorful converts channel values into a clamped colorful.Color and alpha.
func ToColorful(v ir.Values) (colorful.Color, float64) {
	c := colorful.Color{
		R: v[ir.KeyRed] / 255,
		G: v[ir.KeyGreen] / 255,
		B: v[ir.KeyBlue] / 255,
	}.Clamped()
	a, ok := v[ir.KeyAlpha]
	if !ok {
		a = 1
	}
	return c, clamp01(a)
}

// Color emits channel values as an rgba() string, rounding and clamping each
// channel.
func Color(v ir.Values) string {
	c, a := ToColorful(v)
	r, g, b := c.RGB255()
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, Num(a))
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
