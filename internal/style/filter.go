package style

import (
	"sort"
	"strings"

	"github.com/roach88/motion/internal/ir"
)

type filterDef struct {
	unit string
	def  float64
}

var filterDefs = map[string]filterDef{
	"blur":       {"px", 0},
	"brightness": {"%", 100},
	"contrast":   {"%", 100},
	"saturate":   {"%", 100},
	"hue-rotate": {"deg", 0},
	"grayscale":  {"%", 0},
	"invert":     {"%", 0},
	"sepia":      {"%", 0},
}

var filterOrder = []string{"blur", "brightness", "contrast", "saturate", "hue-rotate", "grayscale", "invert", "sepia"}

// FilterDefault returns the identity value of a filter type.
func FilterDefault(kind string) float64 {
	return filterDefs[kind].def
}

// FilterDefaults returns identity values for every filter type in fs.
func FilterDefaults(fs []ir.Filter) ir.Values {
	out := make(ir.Values, len(fs))
	for _, f := range fs {
		out[f.Type] = FilterDefault(f.Type)
	}
	return out
}

// FilterValues converts a filter list into a value map keyed by filter type
// and the matching unit map.
func FilterValues(fs []ir.Filter) (ir.Values, map[string]string) {
	values := make(ir.Values, len(fs))
	var units map[string]string
	for _, f := range fs {
		values[f.Type] = f.Value
		if f.Unit != "" {
			if units == nil {
				units = map[string]string{}
			}
			units[f.Type] = f.Unit
		}
	}
	return values, units
}

// Filter joins filter values into a filter string. Known types come first in
// a fixed order with their default units; unknown types follow by name.
func Filter(values ir.Values, units map[string]string) string {
	if len(values) == 0 {
		return "none"
	}
	var known, unknown []string
	for k := range values {
		if _, ok := filterDefs[k]; ok {
			continue
		}
		unknown = append(unknown, k)
	}
	for _, k := range filterOrder {
		if _, ok := values[k]; ok {
			known = append(known, k)
		}
	}
	sort.Strings(unknown)

	parts := make([]string, 0, len(values))
	for _, k := range append(known, unknown...) {
		parts = append(parts, k+"("+Num(values[k])+normUnit(units[k], filterDefs[k].unit)+")")
	}
	return strings.Join(parts, " ")
}

// ParseFilter reads a filter string into values and units.
func ParseFilter(s string) (ir.Values, map[string]string) {
	values := ir.Values{}
	units := map[string]string{}
	for _, fn := range splitFunctions(s) {
		if len(fn.args) == 0 {
			continue
		}
		v, unit, ok := ParseLength(fn.args[0])
		if !ok {
			continue
		}
		values[fn.name] = v
		if unit != "" {
			units[fn.name] = unit
		}
	}
	return values, units
}
