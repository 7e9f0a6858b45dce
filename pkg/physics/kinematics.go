package physics

import "math"

// Radians converts degrees to radians.
func Radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// Degrees converts radians to degrees.
func Degrees(radians float64) float64 {
	return radians * 180 / math.Pi
}

// NormalizeDegrees maps an unbounded heading into [0, 360).
func NormalizeDegrees(degrees float64) float64 {
	d := math.Mod(degrees, 360)
	if d < 0 {
		d += 360
	}
	// math.Mod(-1e-18, 360) + 360 rounds to 360
	if d >= 360 {
		d = 0
	}
	return d
}

// WrapDegrees maps an angular difference into (-180, 180].
func WrapDegrees(degrees float64) float64 {
	d := NormalizeDegrees(degrees)
	if d > 180 {
		d -= 360
	}
	return d
}

// SolveQuadratic returns the real roots of a·x² + b·x + c = 0 ordered
// [larger, smaller]. ok is false when a is zero or the discriminant is
// negative, in which case the roots are zero rather than NaN.
func SolveQuadratic(a, b, c float64) (roots [2]float64, ok bool) {
	if a == 0 {
		return roots, false
	}
	discriminant := b*b - 4*a*c
	if discriminant < 0 || math.IsNaN(discriminant) {
		return roots, false
	}

	sq := math.Sqrt(discriminant)
	r1 := (-b + sq) / (2 * a)
	r2 := (-b - sq) / (2 * a)
	if r1 > r2 {
		return [2]float64{r1, r2}, true
	}
	return [2]float64{r2, r1}, true
}
