package manifold

import "fmt"

// Euclidean applies increments by plain addition. Kinds whose every dimension
// updates additively normally return a nil Manifold instead; Euclidean exists
// for engines that want a strategy for every block.
type Euclidean struct {
	n int
}

// NewEuclidean returns the additive strategy for n scalars.
func NewEuclidean(n int) Euclidean {
	if n < 1 {
		panic(fmt.Sprintf("manifold: euclidean size %d", n))
	}
	return Euclidean{n: n}
}

func (e Euclidean) AmbientSize() int { return e.n }
func (e Euclidean) TangentSize() int { return e.n }

func (e Euclidean) Plus(x, delta, out []float64) {
	mustLen("x", len(x), e.n)
	mustLen("delta", len(delta), e.n)
	mustLen("out", len(out), e.n)

	for i := range e.n {
		out[i] = x[i] + delta[i]
	}
}

func (e Euclidean) Minus(y, x, out []float64) {
	mustLen("y", len(y), e.n)
	mustLen("x", len(x), e.n)
	mustLen("out", len(out), e.n)

	for i := range e.n {
		out[i] = y[i] - x[i]
	}
}

func (e Euclidean) PlusJacobian(x, jacobian []float64) {
	mustLen("x", len(x), e.n)
	mustLen("jacobian", len(jacobian), e.n*e.n)

	clear(jacobian)
	for i := range e.n {
		jacobian[i*e.n+i] = 1
	}
}
