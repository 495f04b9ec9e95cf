package manifold

import "gonum.org/v1/gonum/num/quat"

// Quaternion is the strategy for a 3D rotation stored as a unit quaternion in
// (w, x, y, z) order. Increments are rotation vectors: Plus left-multiplies
// the stored value by exp(delta) and renormalizes the result.
type Quaternion struct{}

func (Quaternion) AmbientSize() int { return 4 }
func (Quaternion) TangentSize() int { return 3 }

func (Quaternion) Plus(x, delta, out []float64) {
	mustLen("x", len(x), 4)
	mustLen("delta", len(delta), 3)
	mustLen("out", len(out), 4)

	if delta[0] == 0 && delta[1] == 0 && delta[2] == 0 {
		copy(out, x)
		return
	}

	dq := quat.Exp(quat.Number{Imag: delta[0], Jmag: delta[1], Kmag: delta[2]})
	store(out, Normalize(quat.Mul(dq, load(x))))
}

func (Quaternion) Minus(y, x, out []float64) {
	mustLen("y", len(y), 4)
	mustLen("x", len(x), 4)
	mustLen("out", len(out), 3)

	r := quat.Mul(load(y), quat.Conj(load(x)))
	if r.Imag == 0 && r.Jmag == 0 && r.Kmag == 0 {
		clear(out)
		return
	}

	l := quat.Log(r)
	out[0], out[1], out[2] = l.Imag, l.Jmag, l.Kmag
}

func (Quaternion) PlusJacobian(x, jacobian []float64) {
	mustLen("x", len(x), 4)
	mustLen("jacobian", len(jacobian), 12)

	jacobian[0], jacobian[1], jacobian[2] = -x[1], -x[2], -x[3]
	jacobian[3], jacobian[4], jacobian[5] = x[0], x[3], -x[2]
	jacobian[6], jacobian[7], jacobian[8] = -x[3], x[0], x[1]
	jacobian[9], jacobian[10], jacobian[11] = x[2], -x[1], x[0]
}

// Normalize scales q to unit norm. The norm is computed without
// intermediate overflow or underflow, so quaternions with components near
// the limits of float64 normalize correctly. A zero, infinite or NaN q is
// returned unchanged.
func Normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 || quat.IsInf(q) || quat.IsNaN(q) {
		return q
	}
	return quat.Number{Real: q.Real / n, Imag: q.Imag / n, Jmag: q.Jmag / n, Kmag: q.Kmag / n}
}

func load(x []float64) quat.Number {
	return quat.Number{Real: x[0], Imag: x[1], Jmag: x[2], Kmag: x[3]}
}

func store(out []float64, q quat.Number) {
	out[0], out[1], out[2], out[3] = q.Real, q.Imag, q.Jmag, q.Kmag
}
