package main

import (
	"context"
	"math"
	"testing"

	"github.com/tailored-agentic-units/fuse/graph"
	"github.com/tailored-agentic-units/fuse/kinds"
	"github.com/tailored-agentic-units/fuse/problem"
)

func TestSeedTrajectory_MergesDuplicates(t *testing.T) {
	g := graph.NewWithDeps("demo", nil, nil)
	if err := seedTrajectory(g, 4); err != nil {
		t.Fatalf("seedTrajectory failed: %v", err)
	}

	if n := len(g.OfType(kinds.Point2DType)); n != 4 {
		t.Errorf("points = %d, want 4", n)
	}
	if g.Len() != 12 {
		t.Errorf("Len() = %d, want 12", g.Len())
	}
}

func TestSmooth_Converges(t *testing.T) {
	g := graph.NewWithDeps("demo", nil, nil)
	if err := seedTrajectory(g, 6); err != nil {
		t.Fatalf("seedTrajectory failed: %v", err)
	}

	for range 40 {
		err := problem.Borrow(g, func(p *problem.Problem) error {
			return smooth(context.Background(), p)
		})
		if err != nil {
			t.Fatalf("smooth failed: %v", err)
		}
	}

	for _, v := range g.OfType(kinds.Point2DType) {
		if y := v.(*kinds.Point2D).Y(); math.Abs(y) > 1e-9 {
			t.Errorf("%s y = %v, want ~0", v.ID(), y)
		}
	}
	for _, v := range g.OfType(kinds.Orientation3DType) {
		if w := v.(*kinds.Orientation3D).W(); math.Abs(math.Abs(w)-1) > 1e-9 {
			t.Errorf("%s w = %v, want ±1", v.ID(), w)
		}
	}
}
