package engine

import (
	"strconv"
	"strings"

	"github.com/roach88/motion/internal/host"
	"github.com/roach88/motion/internal/ir"
	"github.com/roach88/motion/internal/style"
)

// origin returns the values an instance starts from. The element's
// recorded family wins; keys it lacks are read from the document.
// recorded reports whether the element already had a record.
func (e *Engine) origin(el host.Element, item ir.ActionItem, p host.Plugin) (values ir.Values, units map[string]string, recorded bool) {
	id := item.ActionTypeID
	fams := e.refState(el.Key())
	fam, recorded := fams[id]

	if p != nil {
		return p.Origin(el, fam.Values, item), fam.Units, recorded
	}

	live, liveUnits := e.readLive(el, item)
	if !recorded {
		return live, liveUnits, false
	}
	values = live.Merge(fam.Values)
	units = make(map[string]string, len(liveUnits)+len(fam.Units))
	for k, u := range liveUnits {
		units[k] = u
	}
	for k, u := range fam.Units {
		units[k] = u
	}
	return values, units, true
}

// readLive reads what the document currently shows for an action type.
func (e *Engine) readLive(el host.Element, item ir.ActionItem) (ir.Values, map[string]string) {
	id := item.ActionTypeID
	switch {
	case id.IsTransform():
		fam := style.ParseTransform(e.doc.ComputedStyle(el, "transform"))[id]
		out := style.TransformDefaults(id)
		for k, v := range fam.Values {
			out[k] = v
		}
		return out, fam.Units

	case id == ir.StyleOpacity:
		v, err := strconv.ParseFloat(strings.TrimSpace(e.doc.ComputedStyle(el, "opacity")), 64)
		if err != nil {
			v = 1
		}
		return ir.Values{ir.KeyValue: v}, nil

	case id == ir.StyleSize:
		r := e.doc.Rect(el)
		return ir.Values{ir.KeyWidth: r.Width, ir.KeyHeight: r.Height},
			map[string]string{ir.UnitWidth: "px", ir.UnitHeight: "px"}

	case id == ir.StyleFilter:
		current, units := style.ParseFilter(e.doc.ComputedStyle(el, "filter"))
		out := style.FilterDefaults(item.Config.Filters)
		for k := range out {
			if v, ok := current[k]; ok {
				out[k] = v
			}
		}
		return out, units

	case id.IsColor():
		if v, ok := style.ParseColor(e.doc.ComputedStyle(el, id.StyleProperty())); ok {
			return v, nil
		}
		return ir.Values{ir.KeyRed: 0, ir.KeyGreen: 0, ir.KeyBlue: 0, ir.KeyAlpha: 0}, nil
	}
	return ir.Values{}, nil
}

// destination returns the values an instance animates to. Keys the item
// leaves out keep their origin value.
func (e *Engine) destination(el host.Element, item ir.ActionItem, p host.Plugin, origin ir.Values) (ir.Values, map[string]string) {
	id := item.ActionTypeID
	if p != nil {
		return p.Destination(item), item.Config.Units
	}

	switch {
	case id == ir.StyleFilter:
		return style.FilterValues(item.Config.Filters)
	case id == ir.StyleSize:
		r := e.doc.Rect(el)
		values, units := style.ResolveAutoSize(item.Config.Values, item.Config.Units, r.Width, r.Height)
		return fillFrom(values, origin, id.ValueKeys()), units
	case ir.RenderTypeOf(id) == ir.RenderGeneral:
		return ir.Values{}, nil
	}
	return fillFrom(item.Config.Values.Clone(), origin, id.ValueKeys()), item.Config.Units
}

func fillFrom(values, origin ir.Values, keys []string) ir.Values {
	if values == nil {
		values = ir.Values{}
	}
	for _, k := range keys {
		if _, ok := values[k]; ok {
			continue
		}
		if v, ok := origin[k]; ok {
			values[k] = v
		}
	}
	return values
}
