// Package manifold provides update strategies for variables whose stored
// representation is over-parameterized or non-Euclidean.
//
// An optimizer works in the tangent space of a variable: it computes an
// increment with TangentSize free parameters and asks the strategy to compose
// it with the stored value, which has AmbientSize scalars. A unit quaternion,
// for instance, stores four values but has three degrees of freedom; its
// strategy keeps the result on the unit sphere.
//
// Strategies are stateless values. They never reference the storage of the
// variable that produced them, so an engine may keep one for as long as it
// likes and share it between every variable of the same kind.
//
// Slice lengths passed to Plus, Minus and PlusJacobian must match the declared
// dimensions. A mismatch is a programming error and panics.
package manifold

import (
	"fmt"
)

// Manifold describes how increments computed in a tangent space are applied
// to a stored representation.
type Manifold interface {
	// AmbientSize is the number of stored scalars.
	AmbientSize() int

	// TangentSize is the number of free parameters, at most AmbientSize.
	TangentSize() int

	// Plus writes x ⊞ delta into out. out may alias x; delta is never
	// modified. A zero delta leaves the value unchanged.
	Plus(x, delta, out []float64)

	// Minus writes the tangent vector delta such that x ⊞ delta = y.
	Minus(y, x, out []float64)

	// PlusJacobian writes the derivative of Plus(x, delta) with respect to
	// delta at delta = 0, as a row-major AmbientSize × TangentSize matrix.
	PlusJacobian(x, jacobian []float64)
}

// Apply returns x ⊞ delta in a newly allocated slice. A nil manifold means
// ordinary addition, which requires len(delta) == len(x).
func Apply(m Manifold, x, delta []float64) []float64 {
	out := make([]float64, len(x))
	if m == nil {
		mustLen("delta", len(delta), len(x))
		for i := range x {
			out[i] = x[i] + delta[i]
		}
		return out
	}

	m.Plus(x, delta, out)
	return out
}

// Validate checks that m can serve a variable with the given number of stored
// scalars. A nil manifold is always valid.
func Validate(m Manifold, size int) error {
	if m == nil {
		return nil
	}

	ambient, tangent := m.AmbientSize(), m.TangentSize()
	if ambient != size {
		return fmt.Errorf("%w: ambient size %d, variable size %d", ErrAmbientMismatch, ambient, size)
	}
	if tangent < 1 || tangent > ambient {
		return fmt.Errorf("%w: tangent size %d, ambient size %d", ErrTangentRange, tangent, ambient)
	}
	return nil
}

func mustLen(name string, got, want int) {
	if got != want {
		panic(fmt.Sprintf("manifold: %s has length %d, want %d", name, got, want))
	}
}
