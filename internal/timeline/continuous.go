package timeline

import (
	"math"

	"github.com/roach88/motion/internal/ir"
)

// minVelocity keeps a fully smoothed instance moving.
const minVelocity = 0.01

// ComputeContinuous advances a parameter-driven instance.
//
// A missing parameter snaps the instance to its resting value. Otherwise the
// position follows the parameter with velocity 1-smoothing, then the
// keyframes bracketing position*100 give the destination.
func ComputeContinuous(in *Instance, params map[string]float64) *Instance {
	param, ok := params[in.ParameterKey]
	velocity := math.Max(1-in.Smoothing, minVelocity)
	if !ok {
		param = in.RestingValue
		velocity = 1
	}
	param = clamp01(param)

	last := in.Position
	pos := last + (param-last)*velocity
	if pos == last && in.Current != nil {
		return in
	}

	lower, upper, local, ok := bracket(in.Keyframes, pos*100)
	if !ok {
		return in
	}

	out := in.clone()
	out.Position = pos
	if upper == nil {
		out.Destination = lower.Item.Config.Values.Clone()
		out.Current = lower.Item.Config.Values.Clone()
		out.Units = lower.Item.Config.Units
		return out
	}
	eased := easeSegment(lower.Item, local)
	out.Destination = upper.Item.Config.Values.Clone()
	out.Current = interpolate(lower.Item.Config.Values, upper.Item.Config.Values, eased)
	out.Units = upper.Item.Config.Units
	return out
}

// bracket finds the keyframes around kp. When kp lies at or beyond either
// end, only lower is returned. Keyframes must be sorted by Position.
func bracket(kfs []Keyframe, kp float64) (lower, upper *Keyframe, local float64, ok bool) {
	if len(kfs) == 0 {
		return nil, nil, 0, false
	}
	first, last := &kfs[0], &kfs[len(kfs)-1]
	if kp <= first.Position {
		return first, nil, 0, true
	}
	if kp >= last.Position {
		return last, nil, 0, true
	}
	for i := 0; i < len(kfs)-1; i++ {
		lo, hi := &kfs[i], &kfs[i+1]
		if kp >= lo.Position && kp < hi.Position {
			span := hi.Position - lo.Position
			if span <= 0 {
				return hi, nil, 0, true
			}
			return lo, hi, (kp - lo.Position) / span, true
		}
	}
	return last, nil, 0, true
}

func easeSegment(item ir.ActionItem, t float64) float64 {
	if c := item.Config.CustomEasing; len(c) == 4 {
		return NewBezier(c[0], c[1], c[2], c[3]).At(t)
	}
	return Easing(item.Config.Easing)(t)
}
