package physics

// Body is the translational state of a point mass in screen space.
type Body struct {
	Position     Vector2D
	Velocity     Vector2D
	Acceleration Vector2D
}

// Integrate advances the body by one explicit Euler step. Position moves with
// the velocity held at the start of the step, then the constant acceleration
// is applied to the velocity.
func Integrate(b *Body, deltaTime float64) {
	b.Position = b.Position.Add(b.Velocity.Scale(deltaTime))
	b.Velocity = b.Velocity.Add(b.Acceleration.Scale(deltaTime))
}
