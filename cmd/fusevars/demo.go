package main

import (
	"context"
	"math"
	"time"

	"github.com/tailored-agentic-units/fuse/graph"
	"github.com/tailored-agentic-units/fuse/identity"
	"github.com/tailored-agentic-units/fuse/kinds"
	"github.com/tailored-agentic-units/fuse/manifold"
	"github.com/tailored-agentic-units/fuse/problem"
)

var (
	odometry = identity.Generate("fusevars.Device", []byte("odometry"))
	imu      = identity.Generate("fusevars.Device", []byte("imu"))
)

// seedTrajectory adds a noisy planar trajectory with an attitude estimate per
// step. Every position is reported twice, once per sensor stream, to show
// merge by identity.
func seedTrajectory(g *graph.Graph, steps int) error {
	start := time.Now().UTC().Truncate(time.Second)

	for i := range steps {
		stamp := kinds.Stamp{
			Time:   start.Add(time.Duration(i) * 100 * time.Millisecond),
			Device: odometry,
		}
		jitter := 0.1 * math.Sin(float64(7*i))

		for range 2 {
			p, err := kinds.NewPoint2D(stamp, float64(i)+jitter, jitter)
			if err != nil {
				return err
			}
			if _, err := g.Add(p); err != nil {
				return err
			}
		}

		heading, err := kinds.NewOrientation2D(stamp, 0.2*jitter)
		if err != nil {
			return err
		}
		if _, err := g.Add(heading); err != nil {
			return err
		}

		attitude, err := kinds.NewOrientation3DFromRPY(
			kinds.Stamp{Time: stamp.Time, Device: imu}, jitter, -jitter, 0.2*jitter,
		)
		if err != nil {
			return err
		}
		if _, err := g.Add(attitude); err != nil {
			return err
		}
	}
	return nil
}

var identityRotation = []float64{1, 0, 0, 0}

// smooth is a toy engine step: it pulls every planar position halfway toward
// the straight line y = 0, and every orientation halfway toward level.
func smooth(ctx context.Context, p *problem.Problem) error {
	return p.ForEachParallel(ctx, func(_ context.Context, b problem.Block) error {
		delta := make([]float64, b.TangentSize())

		switch b.Type {
		case kinds.Point2DType:
			delta[1] = -0.5 * b.Data[1]
		case kinds.Orientation2DType:
			delta[0] = -0.5 * b.Data[0]
		case kinds.Orientation3DType:
			b.Manifold.Minus(identityRotation, b.Data, delta)
			for i := range delta {
				delta[i] *= 0.5
			}
		default:
			return nil
		}

		copy(b.Data, manifold.Apply(b.Manifold, b.Data, delta))
		return nil
	})
}
