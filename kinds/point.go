package kinds

import (
	"io"

	"github.com/tailored-agentic-units/fuse/manifold"
	"github.com/tailored-agentic-units/fuse/variable"
)

const (
	Point2DType = "fuse.Point2D"
	Point3DType = "fuse.Point3D"
)

// Point2D is a planar position (x, y).
type Point2D struct {
	stamped
}

// NewPoint2D creates a Point2D at the given stamp.
func NewPoint2D(stamp Stamp, x, y float64) (*Point2D, error) {
	s, err := newStamped(Point2DType, stamp, x, y)
	if err != nil {
		return nil, err
	}
	return &Point2D{stamped: s}, nil
}

func (p *Point2D) Type() string                { return Point2DType }
func (p *Point2D) Manifold() manifold.Manifold { return nil }

func (p *Point2D) X() float64 { return p.Values().At(0) }
func (p *Point2D) Y() float64 { return p.Values().At(1) }

func (p *Point2D) Print(w io.Writer) {
	p.print(w, Point2DType, "x", "y")
}

func (p *Point2D) Clone() variable.Variable {
	return &Point2D{stamped: p.clone()}
}

// Point3D is a spatial position (x, y, z).
type Point3D struct {
	stamped
}

// NewPoint3D creates a Point3D at the given stamp.
func NewPoint3D(stamp Stamp, x, y, z float64) (*Point3D, error) {
	s, err := newStamped(Point3DType, stamp, x, y, z)
	if err != nil {
		return nil, err
	}
	return &Point3D{stamped: s}, nil
}

func (p *Point3D) Type() string                { return Point3DType }
func (p *Point3D) Manifold() manifold.Manifold { return nil }

func (p *Point3D) X() float64 { return p.Values().At(0) }
func (p *Point3D) Y() float64 { return p.Values().At(1) }
func (p *Point3D) Z() float64 { return p.Values().At(2) }

func (p *Point3D) Print(w io.Writer) {
	p.print(w, Point3DType, "x", "y", "z")
}

func (p *Point3D) Clone() variable.Variable {
	return &Point3D{stamped: p.clone()}
}
