package timeline

import (
	"github.com/fogleman/ease"
)

// EasingFunc maps a linear position in [0, 1] to an eased one. Results may
// leave [0, 1] for overshooting curves such as back and elastic.
type EasingFunc func(t float64) float64

// CSS keyword curves.
var (
	cssEase      = NewBezier(0.25, 0.1, 0.25, 1)
	cssEaseIn    = NewBezier(0.42, 0, 1, 1)
	cssEaseOut   = NewBezier(0, 0, 0.58, 1)
	cssEaseInOut = NewBezier(0.42, 0, 0.58, 1)
)

var easings = map[string]EasingFunc{
	"linear":    ease.Linear,
	"ease":      cssEase.At,
	"easeIn":    cssEaseIn.At,
	"easeOut":   cssEaseOut.At,
	"easeInOut": cssEaseInOut.At,

	"inQuad":       ease.InQuad,
	"outQuad":      ease.OutQuad,
	"inOutQuad":    ease.InOutQuad,
	"inCubic":      ease.InCubic,
	"outCubic":     ease.OutCubic,
	"inOutCubic":   ease.InOutCubic,
	"inQuart":      ease.InQuart,
	"outQuart":     ease.OutQuart,
	"inOutQuart":   ease.InOutQuart,
	"inQuint":      ease.InQuint,
	"outQuint":     ease.OutQuint,
	"inOutQuint":   ease.InOutQuint,
	"inSine":       ease.InSine,
	"outSine":      ease.OutSine,
	"inOutSine":    ease.InOutSine,
	"inExpo":       ease.InExpo,
	"outExpo":      ease.OutExpo,
	"inOutExpo":    ease.InOutExpo,
	"inCirc":       ease.InCirc,
	"outCirc":      ease.OutCirc,
	"inOutCirc":    ease.InOutCirc,
	"inBack":       ease.InBack,
	"outBack":      ease.OutBack,
	"inOutBack":    ease.InOutBack,
	"inElastic":    ease.InElastic,
	"outElastic":   ease.OutElastic,
	"inOutElastic": ease.InOutElastic,
	"inBounce":     ease.InBounce,
	"outBounce":    ease.OutBounce,
	"inOutBounce":  ease.InOutBounce,
}

// Easing returns the named easing function. Unknown and empty names are
// linear.
func Easing(name string) EasingFunc {
	if fn, ok := easings[name]; ok {
		return fn
	}
	return ease.Linear
}

// KnownEasing reports whether name is a registered easing.
func KnownEasing(name string) bool {
	if name == "" {
		return true
	}
	_, ok := easings[name]
	return ok
}
