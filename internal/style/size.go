package style

import (
	"strings"

	"github.com/roach88/motion/internal/ir"
)

// Size emits the width and height declarations for a size family. An axis
// whose unit is AUTO emits "auto" regardless of its value.
func Size(values ir.Values, units map[string]string) (width, height string) {
	return sizeAxis(values[ir.KeyWidth], units[ir.UnitWidth]),
		sizeAxis(values[ir.KeyHeight], units[ir.UnitHeight])
}

func sizeAxis(v float64, unit string) string {
	if strings.EqualFold(unit, ir.UnitAuto) {
		return "auto"
	}
	return Num(v) + normUnit(unit, "px")
}

// ResolveAutoSize replaces AUTO axes of a size destination with measured
// layout values, returning new maps. The engine calls this when an instance
// is activated so interpolation runs between concrete numbers.
func ResolveAutoSize(values ir.Values, units map[string]string, measuredW, measuredH float64) (ir.Values, map[string]string) {
	out := values.Clone()
	if out == nil {
		out = ir.Values{}
	}
	outUnits := make(map[string]string, len(units))
	for k, u := range units {
		outUnits[k] = u
	}
	if strings.EqualFold(units[ir.UnitWidth], ir.UnitAuto) {
		out[ir.KeyWidth] = measuredW
		outUnits[ir.UnitWidth] = "px"
	}
	if strings.EqualFold(units[ir.UnitHeight], ir.UnitAuto) {
		out[ir.KeyHeight] = measuredH
		outUnits[ir.UnitHeight] = "px"
	}
	return out, outUnits
}

// Opacity emits an opacity value clamped to [0, 1].
func Opacity(values ir.Values) string {
	return Num(clamp01(values[ir.KeyValue]))
}
