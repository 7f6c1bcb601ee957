package timeline

// ComputeTimed advances a wall-clock driven instance to now.
//
// Position is clamped to [0, 1] and never moves backwards within one
// activation. An instance with zero duration resolves to position 1 on the
// first evaluation past its delay.
func ComputeTimed(in *Instance, now float64) *Instance {
	if !in.Active {
		return in
	}
	delta := now - (in.Start + in.Delay)
	if delta < 0 {
		return in
	}

	pos := 1.0
	if in.Duration > 0 {
		pos = clamp01(delta / in.Duration)
	}
	if pos < in.Position {
		pos = in.Position
	}
	if pos == in.Position && in.Current != nil {
		return in
	}

	out := in.clone()
	out.Position = pos
	out.Current = interpolate(in.Origin, in.Destination, in.ease(pos))
	if pos == 1 {
		out.Active = false
		out.Complete = true
	}
	return out
}
