package ir

import "strings"

// ActionTypeID names the property family an action item animates.
type ActionTypeID string

const (
	TransformMove   ActionTypeID = "TRANSFORM_MOVE"
	TransformScale  ActionTypeID = "TRANSFORM_SCALE"
	TransformRotate ActionTypeID = "TRANSFORM_ROTATE"
	TransformSkew   ActionTypeID = "TRANSFORM_SKEW"

	StyleOpacity         ActionTypeID = "STYLE_OPACITY"
	StyleSize            ActionTypeID = "STYLE_SIZE"
	StyleFilter          ActionTypeID = "STYLE_FILTER"
	StyleBackgroundColor ActionTypeID = "STYLE_BACKGROUND_COLOR"
	StyleBorder          ActionTypeID = "STYLE_BORDER"
	StyleTextColor       ActionTypeID = "STYLE_TEXT_COLOR"

	GeneralDisplay          ActionTypeID = "GENERAL_DISPLAY"
	GeneralStartAction      ActionTypeID = "GENERAL_START_ACTION"
	GeneralContinuousAction ActionTypeID = "GENERAL_CONTINUOUS_ACTION"

	PluginPrefix = "PLUGIN_"
)

// KnownActionTypes lists the built-in action types. Plugin types are open
// and match by prefix instead.
var KnownActionTypes = []ActionTypeID{
	TransformMove, TransformScale, TransformRotate, TransformSkew,
	StyleOpacity, StyleSize, StyleFilter, StyleBackgroundColor, StyleBorder, StyleTextColor,
	GeneralDisplay,
}

// IsKnown reports whether the action type is built in or names a plugin.
func (id ActionTypeID) IsKnown() bool {
	if RenderTypeOf(id) == RenderPlugin {
		return len(id) > len(PluginPrefix)
	}
	for _, k := range KnownActionTypes {
		if k == id {
			return true
		}
	}
	return false
}

// TransformTypes lists transform families in composition order.
var TransformTypes = []ActionTypeID{TransformMove, TransformScale, TransformRotate, TransformSkew}

// RenderType is the family of value-application logic an action item
// belongs to.
type RenderType int

const (
	RenderUnknown RenderType = iota
	RenderTransform
	RenderStyle
	RenderGeneral
	RenderPlugin
)

func (r RenderType) String() string {
	switch r {
	case RenderTransform:
		return "transform"
	case RenderStyle:
		return "style"
	case RenderGeneral:
		return "general"
	case RenderPlugin:
		return "plugin"
	default:
		return "unknown"
	}
}

// RenderTypeOf derives the render type from an action type id prefix. The
// compiler calls this once at import; the engine reads ActionItem.RenderType.
func RenderTypeOf(id ActionTypeID) RenderType {
	s := string(id)
	switch {
	case strings.HasPrefix(s, "TRANSFORM_"):
		return RenderTransform
	case strings.HasPrefix(s, "STYLE_"):
		return RenderStyle
	case strings.HasPrefix(s, "GENERAL_"):
		return RenderGeneral
	case strings.HasPrefix(s, PluginPrefix):
		return RenderPlugin
	default:
		return RenderUnknown
	}
}

// IsColor reports whether the action type animates a color triplet.
func (id ActionTypeID) IsColor() bool {
	switch id {
	case StyleBackgroundColor, StyleBorder, StyleTextColor:
		return true
	}
	return false
}

// IsTransform reports whether the action type is a transform family.
func (id ActionTypeID) IsTransform() bool {
	return RenderTypeOf(id) == RenderTransform
}

// StyleProperty returns the style property the action type writes, or "" for
// transforms, general, and plugin types.
func (id ActionTypeID) StyleProperty() string {
	switch id {
	case StyleOpacity:
		return "opacity"
	case StyleFilter:
		return "filter"
	case StyleBackgroundColor:
		return "background-color"
	case StyleBorder:
		return "border-color"
	case StyleTextColor:
		return "color"
	case GeneralDisplay:
		return "display"
	}
	return ""
}

// Value key names shared by origin, destination, and current maps.
const (
	KeyX      = "xValue"
	KeyY      = "yValue"
	KeyZ      = "zValue"
	KeyValue  = "value"
	KeyWidth  = "widthValue"
	KeyHeight = "heightValue"
	KeyRed    = "rValue"
	KeyGreen  = "gValue"
	KeyBlue   = "bValue"
	KeyAlpha  = "aValue"

	UnitX      = "xUnit"
	UnitY      = "yUnit"
	UnitZ      = "zUnit"
	UnitWidth  = "widthUnit"
	UnitHeight = "heightUnit"

	// UnitAuto marks a size axis resolved against measured layout size.
	UnitAuto = "AUTO"
)

// ValueKeys returns the value keys an action type animates. Filters and
// plugins have open key sets and return nil.
func (id ActionTypeID) ValueKeys() []string {
	switch id {
	case TransformMove, TransformScale, TransformRotate:
		return []string{KeyX, KeyY, KeyZ}
	case TransformSkew:
		return []string{KeyX, KeyY}
	case StyleOpacity:
		return []string{KeyValue}
	case StyleSize:
		return []string{KeyWidth, KeyHeight}
	case StyleBackgroundColor, StyleBorder, StyleTextColor:
		return []string{KeyRed, KeyGreen, KeyBlue, KeyAlpha}
	}
	return nil
}

// Values maps semantic value names to numbers.
type Values map[string]float64

// Clone returns a copy; a nil map clones to nil.
func (v Values) Clone() Values {
	if v == nil {
		return nil
	}
	out := make(Values, len(v))
	for k, x := range v {
		out[k] = x
	}
	return out
}

// Merge returns a copy of v overlaid with other.
func (v Values) Merge(other Values) Values {
	out := make(Values, len(v)+len(other))
	for k, x := range v {
		out[k] = x
	}
	for k, x := range other {
		out[k] = x
	}
	return out
}

// Equal reports whether both maps hold the same keys and values.
func (v Values) Equal(other Values) bool {
	if len(v) != len(other) {
		return false
	}
	for k, x := range v {
		y, ok := other[k]
		if !ok || x != y {
			return false
		}
	}
	return true
}
