package manifold

import "math"

// Angle is the strategy for a planar rotation stored as a single angle in
// radians. Results are wrapped to (-π, π], so an increment that crosses the
// ±π discontinuity stays small.
type Angle struct{}

func (Angle) AmbientSize() int { return 1 }
func (Angle) TangentSize() int { return 1 }

func (Angle) Plus(x, delta, out []float64) {
	mustLen("x", len(x), 1)
	mustLen("delta", len(delta), 1)
	mustLen("out", len(out), 1)

	out[0] = WrapAngle(x[0] + delta[0])
}

func (Angle) Minus(y, x, out []float64) {
	mustLen("y", len(y), 1)
	mustLen("x", len(x), 1)
	mustLen("out", len(out), 1)

	out[0] = WrapAngle(y[0] - x[0])
}

func (Angle) PlusJacobian(x, jacobian []float64) {
	mustLen("x", len(x), 1)
	mustLen("jacobian", len(jacobian), 1)

	jacobian[0] = 1
}

// WrapAngle maps an angle in radians to (-π, π].
func WrapAngle(a float64) float64 {
	a = math.Remainder(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
