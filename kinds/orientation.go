package kinds

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/num/quat"

	"github.com/tailored-agentic-units/fuse/manifold"
	"github.com/tailored-agentic-units/fuse/variable"
)

const (
	Orientation2DType = "fuse.Orientation2D"
	Orientation3DType = "fuse.Orientation3D"
)

// Orientation2D is a planar heading in radians, kept in (-π, π].
type Orientation2D struct {
	stamped
}

// NewOrientation2D creates an Orientation2D; yaw is wrapped to (-π, π].
func NewOrientation2D(stamp Stamp, yaw float64) (*Orientation2D, error) {
	s, err := newStamped(Orientation2DType, stamp, manifold.WrapAngle(yaw))
	if err != nil {
		return nil, err
	}
	return &Orientation2D{stamped: s}, nil
}

func (o *Orientation2D) Type() string                { return Orientation2DType }
func (o *Orientation2D) Manifold() manifold.Manifold { return manifold.Angle{} }

func (o *Orientation2D) Yaw() float64 { return o.Values().At(0) }

func (o *Orientation2D) Print(w io.Writer) {
	o.print(w, Orientation2DType, "yaw")
}

func (o *Orientation2D) Clone() variable.Variable {
	return &Orientation2D{stamped: o.clone()}
}

// Orientation3D is a spatial rotation stored as a unit quaternion
// (w, x, y, z). It has three degrees of freedom; its manifold keeps updates
// on the unit sphere.
type Orientation3D struct {
	stamped
}

// NewOrientation3D creates an Orientation3D from a quaternion, normalizing
// it. Any finite, nonzero quaternion is accepted regardless of magnitude. A
// zero quaternion is rejected with ErrZeroQuaternion and a non-finite one
// with ErrNonFinite.
func NewOrientation3D(stamp Stamp, w, x, y, z float64) (*Orientation3D, error) {
	q := quat.Number{Real: w, Imag: x, Jmag: y, Kmag: z}
	if q == (quat.Number{}) {
		return nil, fmt.Errorf("%s: %w", Orientation3DType, ErrZeroQuaternion)
	}

	u := manifold.Normalize(q)
	s, err := newStamped(Orientation3DType, stamp, u.Real, u.Imag, u.Jmag, u.Kmag)
	if err != nil {
		return nil, err
	}
	return &Orientation3D{stamped: s}, nil
}

// NewOrientation3DFromRPY creates an Orientation3D from roll, pitch and yaw
// applied in Z-Y-X order.
func NewOrientation3DFromRPY(stamp Stamp, roll, pitch, yaw float64) (*Orientation3D, error) {
	cr, sr := math.Cos(roll/2), math.Sin(roll/2)
	cp, sp := math.Cos(pitch/2), math.Sin(pitch/2)
	cy, sy := math.Cos(yaw/2), math.Sin(yaw/2)

	return NewOrientation3D(stamp,
		cr*cp*cy+sr*sp*sy,
		sr*cp*cy-cr*sp*sy,
		cr*sp*cy+sr*cp*sy,
		cr*cp*sy-sr*sp*cy,
	)
}

func (o *Orientation3D) Type() string                { return Orientation3DType }
func (o *Orientation3D) Manifold() manifold.Manifold { return manifold.Quaternion{} }

func (o *Orientation3D) W() float64 { return o.Values().At(0) }
func (o *Orientation3D) X() float64 { return o.Values().At(1) }
func (o *Orientation3D) Y() float64 { return o.Values().At(2) }
func (o *Orientation3D) Z() float64 { return o.Values().At(3) }

// Roll returns the rotation about the x axis in radians.
func (o *Orientation3D) Roll() float64 {
	w, x, y, z := o.W(), o.X(), o.Y(), o.Z()
	return math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))
}

// Pitch returns the rotation about the y axis in radians.
func (o *Orientation3D) Pitch() float64 {
	w, x, y, z := o.W(), o.X(), o.Y(), o.Z()
	return math.Asin(max(-1, min(1, 2*(w*y-z*x))))
}

// Yaw returns the rotation about the z axis in radians.
func (o *Orientation3D) Yaw() float64 {
	w, x, y, z := o.W(), o.X(), o.Y(), o.Z()
	return math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))
}

func (o *Orientation3D) Print(w io.Writer) {
	o.print(w, Orientation3DType, "w", "x", "y", "z")
}

func (o *Orientation3D) Clone() variable.Variable {
	return &Orientation3D{stamped: o.clone()}
}
