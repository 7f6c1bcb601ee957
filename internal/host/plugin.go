package host

import (
	"sort"
	"strings"

	"github.com/roach88/motion/internal/ir"
)

// Plugin lets a third-party animated asset take part in the instance
// lifecycle like a native style property.
type Plugin interface {
	// Origin returns the current value of el, given the last recorded values
	// (nil if none).
	Origin(el Element, recorded ir.Values, item ir.ActionItem) ir.Values
	Destination(item ir.ActionItem) ir.Values
	// Duration returns a duration override in ms, or 0 to use the item's.
	Duration(el Element, item ir.ActionItem) float64
	CreateInstance(el Element, item ir.ActionItem) any
	Render(instance any, el Element, u Update)
	Clear(el Element)
}

// Plugins is a load-time table of plugins keyed by action type.
type Plugins struct {
	byType map[ir.ActionTypeID]Plugin
}

// NewPlugins creates an empty table.
func NewPlugins() *Plugins {
	return &Plugins{byType: map[ir.ActionTypeID]Plugin{}}
}

// Register adds a plugin for an action type. The id is upper-cased and
// prefixed with PLUGIN_ if it is not already.
func (p *Plugins) Register(id ir.ActionTypeID, plugin Plugin) {
	p.byType[PluginType(string(id))] = plugin
}

// Get looks up the plugin for an action type.
func (p *Plugins) Get(id ir.ActionTypeID) (Plugin, bool) {
	if p == nil {
		return nil, false
	}
	plugin, ok := p.byType[id]
	return plugin, ok && plugin != nil
}

// Types lists registered action types in sorted order.
func (p *Plugins) Types() []ir.ActionTypeID {
	if p == nil {
		return nil
	}
	out := make([]ir.ActionTypeID, 0, len(p.byType))
	for id := range p.byType {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// PluginType normalizes a plugin name into its action type id.
func PluginType(name string) ir.ActionTypeID {
	name = strings.ToUpper(name)
	if !strings.HasPrefix(name, ir.PluginPrefix) {
		name = ir.PluginPrefix + name
	}
	return ir.ActionTypeID(name)
}
