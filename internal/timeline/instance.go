// Package timeline computes the next state of animation instances.
//
// Every function here is pure: it takes an instance and a frame and returns
// either the same pointer (nothing changed) or a fresh copy. Callers rely on
// pointer identity to detect which instances a frame touched.
package timeline

import (
	"github.com/roach88/motion/internal/ir"
)

// ID is a stable handle for an instance within one session.
type ID uint64

// Keyframe is one stop of a continuous instance: the action item that holds
// the values at Position (0-100) along the driving parameter.
type Keyframe struct {
	Position float64       `json:"position"`
	Item     ir.ActionItem `json:"item"`
}

// Instance is one animation of a single action item against a single
// element.
type Instance struct {
	ID         ID            `json:"id"`
	ElementID  string        `json:"elementId"`
	ActionItem ir.ActionItem `json:"actionItem"`
	RenderType ir.RenderType `json:"renderType"`

	Active   bool    `json:"active"`
	Complete bool    `json:"complete"`
	Position float64 `json:"position"`
	Start    float64 `json:"start"`
	Delay    float64 `json:"delay"`
	Duration float64 `json:"duration"`

	Origin      ir.Values         `json:"origin,omitempty"`
	Destination ir.Values         `json:"destination,omitempty"`
	Current     ir.Values         `json:"current,omitempty"`
	Units       map[string]string `json:"units,omitempty"`

	// Curve is set when the item supplied a four-number custom easing.
	Curve *Bezier `json:"curve,omitempty"`

	GroupIndex int  `json:"groupIndex"`
	IsCarrier  bool `json:"isCarrier,omitempty"`
	Immediate  bool `json:"immediate,omitempty"`
	Verbose    bool `json:"verbose,omitempty"`

	EventID       string `json:"eventId,omitempty"`
	ActionListID  string `json:"actionListId"`
	EventStateKey string `json:"eventStateKey,omitempty"`
	EventTarget   string `json:"eventTarget,omitempty"`

	Continuous   bool       `json:"continuous,omitempty"`
	ParameterKey string     `json:"parameterKey,omitempty"`
	Smoothing    float64    `json:"smoothing,omitempty"`
	RestingValue float64    `json:"restingValue,omitempty"`
	Keyframes    []Keyframe `json:"keyframes,omitempty"`
}

// Frame is the input of one recomputation: the frame time in milliseconds
// and the continuous driver values keyed by parameter key.
type Frame struct {
	Now        float64            `json:"now"`
	Parameters map[string]float64 `json:"parameters,omitempty"`
}

// ActionTypeID is shorthand for the instance's action type.
func (in *Instance) ActionTypeID() ir.ActionTypeID {
	return in.ActionItem.ActionTypeID
}

// End returns the frame time at which a started timed instance completes.
func (in *Instance) End() float64 {
	return in.Start + in.Delay + in.Duration
}

// Compute advances an instance to the given frame. It returns the input
// pointer when nothing changed.
func Compute(in *Instance, f Frame) *Instance {
	if in.Continuous {
		return ComputeContinuous(in, f.Parameters)
	}
	return ComputeTimed(in, f.Now)
}

func (in *Instance) clone() *Instance {
	out := *in
	return &out
}

func (in *Instance) ease(p float64) float64 {
	if in.Curve != nil {
		return in.Curve.At(p)
	}
	return Easing(in.ActionItem.Config.Easing)(p)
}

func interpolate(origin, dest ir.Values, t float64) ir.Values {
	out := make(ir.Values, len(dest))
	for k, to := range dest {
		from := origin[k]
		out[k] = from + (to-from)*t
	}
	return out
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
