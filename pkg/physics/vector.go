// pkg/physics/vector.go
package physics

import "math"

// Vector2D represents a 2D vector with x and y components.
// Screen convention: y grows downward.
type Vector2D struct {
	X float64
	Y float64
}

// Add returns the sum of two vectors
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{
		X: v.X + other.X,
		Y: v.Y + other.Y,
	}
}

// Sub returns the difference between two vectors
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return Vector2D{
		X: v.X - other.X,
		Y: v.Y - other.Y,
	}
}

// Scale multiplies the vector by a scalar value
func (v Vector2D) Scale(factor float64) Vector2D {
	return Vector2D{
		X: v.X * factor,
		Y: v.Y * factor,
	}
}

// Length returns the magnitude of the vector
func (v Vector2D) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Magnitude is an alias of Length used by the flight telemetry.
func (v Vector2D) Magnitude() float64 {
	return v.Length()
}

// LengthSquared returns magnitude squared (optimization for comparisons)
func (v Vector2D) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Normalize returns a unit vector in the same direction
func (v Vector2D) Normalize() Vector2D {
	length := v.Length()
	if length == 0 {
		return Vector2D{}
	}
	return Vector2D{
		X: v.X / length,
		Y: v.Y / length,
	}
}

// Distance returns the distance between two vectors
func (v Vector2D) Distance(other Vector2D) float64 {
	return v.Sub(other).Length()
}

// Dot returns the dot product of two vectors
func (v Vector2D) Dot(other Vector2D) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Direction returns the angle of the vector in degrees, measured
// counterclockwise from the positive x-axis as seen on screen, in [0, 360).
// The sign of atan2 is inverted because y grows downward.
func (v Vector2D) Direction() float64 {
	return NormalizeDegrees(-Degrees(math.Atan2(v.Y, v.X)))
}

// FromDirection creates a vector from an angle in degrees and a magnitude.
// The components follow the raw trigonometric convention; callers that work
// in screen space flip the y component themselves.
func FromDirection(degrees, magnitude float64) Vector2D {
	rad := Radians(degrees)
	return Vector2D{
		X: magnitude * math.Cos(rad),
		Y: magnitude * math.Sin(rad),
	}
}
