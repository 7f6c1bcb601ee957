package style

import (
	"fmt"
	"strings"

	"github.com/roach88/motion/internal/ir"
)

// Family is the recorded state of one action type on an element: its last
// rendered values and the units they were written with.
type Family struct {
	Values ir.Values
	Units  map[string]string
}

// Families maps action types to their recorded state.
type Families map[ir.ActionTypeID]Family

// transformDefaults are the identity values of each transform family.
var transformDefaults = map[ir.ActionTypeID]ir.Values{
	ir.TransformMove:   {ir.KeyX: 0, ir.KeyY: 0, ir.KeyZ: 0},
	ir.TransformScale:  {ir.KeyX: 1, ir.KeyY: 1, ir.KeyZ: 1},
	ir.TransformRotate: {ir.KeyX: 0, ir.KeyY: 0, ir.KeyZ: 0},
	ir.TransformSkew:   {ir.KeyX: 0, ir.KeyY: 0},
}

// TransformDefaults returns the identity value map of a transform family.
func TransformDefaults(id ir.ActionTypeID) ir.Values {
	return transformDefaults[id].Clone()
}

func axis(f Family, id ir.ActionTypeID, key string) float64 {
	if v, ok := f.Values[key]; ok {
		return v
	}
	return transformDefaults[id][key]
}

func axisUnit(f Family, unitKey, def string) string {
	return normUnit(f.Units[unitKey], def)
}

// Transform composes all transform families into one transform string. Each
// axis defaults independently when its family or key is missing.
func Transform(fams Families) string {
	move := fams[ir.TransformMove]
	scale := fams[ir.TransformScale]
	rotate := fams[ir.TransformRotate]
	skew := fams[ir.TransformSkew]

	parts := []string{
		fmt.Sprintf("translate3d(%s%s, %s%s, %s%s)",
			Num(axis(move, ir.TransformMove, ir.KeyX)), axisUnit(move, ir.UnitX, "px"),
			Num(axis(move, ir.TransformMove, ir.KeyY)), axisUnit(move, ir.UnitY, "px"),
			Num(axis(move, ir.TransformMove, ir.KeyZ)), axisUnit(move, ir.UnitZ, "px")),
		fmt.Sprintf("scale3d(%s, %s, %s)",
			Num(axis(scale, ir.TransformScale, ir.KeyX)),
			Num(axis(scale, ir.TransformScale, ir.KeyY)),
			Num(axis(scale, ir.TransformScale, ir.KeyZ))),
		fmt.Sprintf("rotateX(%s%s) rotateY(%s%s) rotateZ(%s%s)",
			Num(axis(rotate, ir.TransformRotate, ir.KeyX)), axisUnit(rotate, ir.UnitX, "deg"),
			Num(axis(rotate, ir.TransformRotate, ir.KeyY)), axisUnit(rotate, ir.UnitY, "deg"),
			Num(axis(rotate, ir.TransformRotate, ir.KeyZ)), axisUnit(rotate, ir.UnitZ, "deg")),
		fmt.Sprintf("skew(%s%s, %s%s)",
			Num(axis(skew, ir.TransformSkew, ir.KeyX)), axisUnit(skew, ir.UnitX, "deg"),
			Num(axis(skew, ir.TransformSkew, ir.KeyY)), axisUnit(skew, ir.UnitY, "deg")),
	}
	return strings.Join(parts, " ")
}

// ParseTransform reads a transform string back into families. Unknown
// functions are ignored; "none" and "" parse to an empty set.
func ParseTransform(s string) Families {
	fams := Families{}
	for _, fn := range splitFunctions(s) {
		args := fn.args
		switch fn.name {
		case "translate3d", "translate":
			setAxes(fams, ir.TransformMove, args, []string{ir.KeyX, ir.KeyY, ir.KeyZ}, []string{ir.UnitX, ir.UnitY, ir.UnitZ})
		case "translatex":
			setAxes(fams, ir.TransformMove, args, []string{ir.KeyX}, []string{ir.UnitX})
		case "translatey":
			setAxes(fams, ir.TransformMove, args, []string{ir.KeyY}, []string{ir.UnitY})
		case "translatez":
			setAxes(fams, ir.TransformMove, args, []string{ir.KeyZ}, []string{ir.UnitZ})
		case "scale3d":
			setAxes(fams, ir.TransformScale, args, []string{ir.KeyX, ir.KeyY, ir.KeyZ}, nil)
		case "scale":
			if len(args) == 1 {
				args = []string{args[0], args[0]}
			}
			setAxes(fams, ir.TransformScale, args, []string{ir.KeyX, ir.KeyY}, nil)
		case "rotatex":
			setAxes(fams, ir.TransformRotate, args, []string{ir.KeyX}, []string{ir.UnitX})
		case "rotatey":
			setAxes(fams, ir.TransformRotate, args, []string{ir.KeyY}, []string{ir.UnitY})
		case "rotatez", "rotate":
			setAxes(fams, ir.TransformRotate, args, []string{ir.KeyZ}, []string{ir.UnitZ})
		case "skew":
			setAxes(fams, ir.TransformSkew, args, []string{ir.KeyX, ir.KeyY}, []string{ir.UnitX, ir.UnitY})
		}
	}
	return fams
}

func setAxes(fams Families, id ir.ActionTypeID, args, keys, unitKeys []string) {
	f := fams[id]
	if f.Values == nil {
		f.Values = ir.Values{}
	}
	for i, key := range keys {
		if i >= len(args) {
			break
		}
		v, unit, ok := ParseLength(args[i])
		if !ok {
			continue
		}
		f.Values[key] = v
		if unitKeys != nil && unit != "" {
			if f.Units == nil {
				f.Units = map[string]string{}
			}
			f.Units[unitKeys[i]] = unit
		}
	}
	fams[id] = f
}

type function struct {
	name string
	args []string
}

// splitFunctions splits "a(1, 2) b(3)" into named argument lists.
func splitFunctions(s string) []function {
	var out []function
	rest := strings.TrimSpace(s)
	for rest != "" {
		open := strings.IndexByte(rest, '(')
		if open < 0 {
			break
		}
		end := strings.IndexByte(rest[open:], ')')
		if end < 0 {
			break
		}
		end += open
		name := strings.ToLower(strings.TrimSpace(rest[:open]))
		var args []string
		for _, a := range strings.Split(rest[open+1:end], ",") {
			if a = strings.TrimSpace(a); a != "" {
				args = append(args, a)
			}
		}
		out = append(out, function{name: name, args: args})
		rest = strings.TrimSpace(rest[end+1:])
	}
	return out
}
