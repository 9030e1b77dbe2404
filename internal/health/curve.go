package health

import "math"

type point struct {
	x, y float64
}

// curve is a piecewise-linear mapping, flat beyond its first and last points.
// Points must be sorted by x.
type curve []point

func (c curve) at(x float64) float64 {
	if len(c) == 0 {
		return 0
	}
	if math.IsNaN(x) || x <= c[0].x {
		return c[0].y
	}
	for i := 1; i < len(c); i++ {
		if x <= c[i].x {
			lo, hi := c[i-1], c[i]
			t := (x - lo.x) / (hi.x - lo.x)
			return lo.y + t*(hi.y-lo.y)
		}
	}
	return c[len(c)-1].y
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// safeDiv returns num/den, or fallback when the quotient is undefined.
func safeDiv(num, den, fallback float64) float64 {
	if den == 0 || !finite(num) || !finite(den) {
		return fallback
	}
	q := num / den
	if !finite(q) {
		return fallback
	}
	return q
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// points rounds a raw score into [0, ceiling].
func points(raw float64, ceiling int) int {
	if !finite(raw) {
		return 0
	}
	n := int(math.Round(raw))
	if n < 0 {
		return 0
	}
	if n > ceiling {
		return ceiling
	}
	return n
}

func nonNegative(v float64) float64 {
	if !finite(v) || v < 0 {
		return 0
	}
	return v
}
