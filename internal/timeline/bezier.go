package timeline

import "math"

// Bezier is a cubic bezier timing curve through (0,0), (X1,Y1), (X2,Y2),
// (1,1). X1 and X2 are clamped to [0, 1] so the curve is a function of x.
type Bezier struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// NewBezier builds a timing curve from four control values.
func NewBezier(x1, y1, x2, y2 float64) *Bezier {
	return &Bezier{X1: clamp01(x1), Y1: y1, X2: clamp01(x2), Y2: y2}
}

// CurveFrom returns a curve for a four-number custom easing, or nil.
func CurveFrom(points []float64) *Bezier {
	if len(points) != 4 {
		return nil
	}
	return NewBezier(points[0], points[1], points[2], points[3])
}

const (
	newtonIterations = 8
	newtonEpsilon    = 1e-7
	bisectIterations = 40
)

// At evaluates the curve's y for progress x.
func (b *Bezier) At(x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	if b.X1 == b.Y1 && b.X2 == b.Y2 {
		return x
	}
	return sample(b.Y1, b.Y2, b.solveT(x))
}

// sample evaluates one coordinate of the curve at parameter t.
func sample(p1, p2, t float64) float64 {
	c := 3 * p1
	bb := 3*(p2-p1) - c
	a := 1 - c - bb
	return ((a*t+bb)*t + c) * t
}

func slope(p1, p2, t float64) float64 {
	c := 3 * p1
	bb := 3*(p2-p1) - c
	a := 1 - c - bb
	return (3*a*t+2*bb)*t + c
}

// solveT finds the curve parameter whose x equals x: Newton first, then
// bisection when the slope flattens.
func (b *Bezier) solveT(x float64) float64 {
	t := x
	for i := 0; i < newtonIterations; i++ {
		dx := sample(b.X1, b.X2, t) - x
		if math.Abs(dx) < newtonEpsilon {
			return t
		}
		d := slope(b.X1, b.X2, t)
		if math.Abs(d) < 1e-6 {
			break
		}
		t -= dx / d
	}

	lo, hi := 0.0, 1.0
	t = x
	for i := 0; i < bisectIterations; i++ {
		v := sample(b.X1, b.X2, t)
		if math.Abs(v-x) < newtonEpsilon {
			return t
		}
		if v < x {
			lo = t
		} else {
			hi = t
		}
		t = (lo + hi) / 2
	}
	return t
}
