package kinds

import (
	"fmt"

	"github.com/tailored-agentic-units/fuse/variable"
)

func init() {
	factories := map[string]variable.Factory{
		Point2DType: func(attrs map[string]any, values []float64) (variable.Variable, error) {
			stamp, err := stampFromAttributes(attrs)
			if err != nil {
				return nil, err
			}
			if err := wantValues(Point2DType, values, 2); err != nil {
				return nil, err
			}
			return NewPoint2D(stamp, values[0], values[1])
		},
		Point3DType: func(attrs map[string]any, values []float64) (variable.Variable, error) {
			stamp, err := stampFromAttributes(attrs)
			if err != nil {
				return nil, err
			}
			if err := wantValues(Point3DType, values, 3); err != nil {
				return nil, err
			}
			return NewPoint3D(stamp, values[0], values[1], values[2])
		},
		Orientation2DType: func(attrs map[string]any, values []float64) (variable.Variable, error) {
			stamp, err := stampFromAttributes(attrs)
			if err != nil {
				return nil, err
			}
			if err := wantValues(Orientation2DType, values, 1); err != nil {
				return nil, err
			}
			return NewOrientation2D(stamp, values[0])
		},
		Orientation3DType: func(attrs map[string]any, values []float64) (variable.Variable, error) {
			stamp, err := stampFromAttributes(attrs)
			if err != nil {
				return nil, err
			}
			if err := wantValues(Orientation3DType, values, 4); err != nil {
				return nil, err
			}
			return NewOrientation3D(stamp, values[0], values[1], values[2], values[3])
		},
	}

	for name, factory := range factories {
		if err := variable.Register(name, factory); err != nil {
			panic(fmt.Sprintf("kinds: %v", err))
		}
	}
}
