package manifold

import (
	"fmt"
	"slices"
)

// Subset holds some dimensions of a Euclidean variable constant. The
// remaining dimensions update additively and form the tangent space, in
// increasing index order.
type Subset struct {
	n    int
	free []int
}

// NewSubset returns a strategy over n scalars with the listed indices held
// constant. Indices must be in range, unique, and leave at least one free
// dimension.
func NewSubset(n int, constant ...int) (*Subset, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: size %d", ErrInvalidSubset, n)
	}

	fixed := make([]bool, n)
	for _, idx := range constant {
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("%w: index %d outside [0, %d)", ErrInvalidSubset, idx, n)
		}
		if fixed[idx] {
			return nil, fmt.Errorf("%w: index %d listed twice", ErrInvalidSubset, idx)
		}
		fixed[idx] = true
	}

	free := make([]int, 0, n-len(constant))
	for i, f := range fixed {
		if !f {
			free = append(free, i)
		}
	}
	if len(free) == 0 {
		return nil, fmt.Errorf("%w: every dimension is constant", ErrInvalidSubset)
	}

	return &Subset{n: n, free: free}, nil
}

func (s *Subset) AmbientSize() int { return s.n }
func (s *Subset) TangentSize() int { return len(s.free) }

// Free returns the stored indices that make up the tangent space.
func (s *Subset) Free() []int {
	return slices.Clone(s.free)
}

func (s *Subset) Plus(x, delta, out []float64) {
	mustLen("x", len(x), s.n)
	mustLen("delta", len(delta), len(s.free))
	mustLen("out", len(out), s.n)

	copy(out, x)
	for i, idx := range s.free {
		out[idx] += delta[i]
	}
}

func (s *Subset) Minus(y, x, out []float64) {
	mustLen("y", len(y), s.n)
	mustLen("x", len(x), s.n)
	mustLen("out", len(out), len(s.free))

	for i, idx := range s.free {
		out[i] = y[idx] - x[idx]
	}
}

func (s *Subset) PlusJacobian(x, jacobian []float64) {
	m := len(s.free)
	mustLen("x", len(x), s.n)
	mustLen("jacobian", len(jacobian), s.n*m)

	clear(jacobian)
	for i, idx := range s.free {
		jacobian[idx*m+i] = 1
	}
}
