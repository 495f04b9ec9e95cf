package problem_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/tailored-agentic-units/fuse/graph"
	"github.com/tailored-agentic-units/fuse/identity"
	"github.com/tailored-agentic-units/fuse/kinds"
	"github.com/tailored-agentic-units/fuse/observability"
	"github.com/tailored-agentic-units/fuse/problem"
	"github.com/tailored-agentic-units/fuse/variable"
)

var base = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func stampAt(i int) kinds.Stamp {
	return kinds.At(base.Add(time.Duration(i) * time.Second))
}

func fixture(t *testing.T) (*kinds.Point2D, *kinds.Orientation3D, *kinds.Orientation2D) {
	t.Helper()

	p, err := kinds.NewPoint2D(stampAt(1), 1, 2)
	if err != nil {
		t.Fatalf("NewPoint2D failed: %v", err)
	}
	q, err := kinds.NewOrientation3D(stampAt(1), 1, 0, 0, 0)
	if err != nil {
		t.Fatalf("NewOrientation3D failed: %v", err)
	}
	a, err := kinds.NewOrientation2D(stampAt(2), 3)
	if err != nil {
		t.Fatalf("NewOrientation2D failed: %v", err)
	}
	return p, q, a
}

func TestAdd_BorrowsStorage(t *testing.T) {
	p, q, _ := fixture(t)
	prob := problem.New()

	for _, v := range []variable.Variable{p, q} {
		if err := prob.Add(v); err != nil {
			t.Fatalf("Add(%s) failed: %v", v.Type(), err)
		}
	}

	b, ok := prob.Block(p.ID())
	if !ok {
		t.Fatal("Block(point) not found")
	}
	if b.Type != kinds.Point2DType || b.Manifold != nil || b.TangentSize() != 2 {
		t.Errorf("point block = %+v", b)
	}

	b.Data[0] = 42
	if p.X() != 42 {
		t.Errorf("write through block not visible in variable: X = %v", p.X())
	}

	qb, _ := prob.Block(q.ID())
	if qb.Manifold == nil || qb.TangentSize() != 3 || len(qb.Data) != 4 {
		t.Errorf("quaternion block tangent=%d ambient=%d", qb.TangentSize(), len(qb.Data))
	}
}

func TestAdd_Rejects(t *testing.T) {
	p, _, _ := fixture(t)
	prob := problem.New()

	if err := prob.Add(p); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := prob.Add(p); !errors.Is(err, problem.ErrDuplicateBlock) {
		t.Errorf("second Add error = %v, want ErrDuplicateBlock", err)
	}
	if prob.Len() != 1 {
		t.Errorf("Len() = %d, want 1", prob.Len())
	}
}

func TestBlocks_InsertionOrder(t *testing.T) {
	p, q, a := fixture(t)
	prob := problem.New()

	want := []identity.Key{a.ID(), p.ID(), q.ID()}
	for _, v := range []variable.Variable{a, p, q} {
		if err := prob.Add(v); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	blocks := prob.Blocks()
	if len(blocks) != len(want) {
		t.Fatalf("len(Blocks()) = %d, want %d", len(blocks), len(want))
	}
	for i, b := range blocks {
		if b.Key != want[i] {
			t.Errorf("Blocks()[%d] = %s, want %s", i, b.Key, want[i])
		}
	}

	ambient, tangent := prob.Dimensions()
	if ambient != 1+2+4 || tangent != 1+2+3 {
		t.Errorf("Dimensions() = %d, %d, want 7, 6", ambient, tangent)
	}
}

func TestApply(t *testing.T) {
	p, q, a := fixture(t)
	prob := problem.New()
	for _, v := range []variable.Variable{p, q, a} {
		if err := prob.Add(v); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	t.Run("additive", func(t *testing.T) {
		if err := prob.Apply(p.ID(), []float64{0.5, -1}); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if p.X() != 1.5 || p.Y() != 1 {
			t.Errorf("point = (%v, %v), want (1.5, 1)", p.X(), p.Y())
		}
	})

	t.Run("quaternion", func(t *testing.T) {
		if err := prob.Apply(q.ID(), []float64{0, 0, math.Pi / 4}); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		norm := math.Sqrt(q.W()*q.W() + q.X()*q.X() + q.Y()*q.Y() + q.Z()*q.Z())
		if math.Abs(norm-1) > 1e-12 {
			t.Errorf("norm = %v, want 1", norm)
		}
		if math.Abs(q.Yaw()-math.Pi/2) > 1e-12 {
			t.Errorf("yaw = %v, want π/2", q.Yaw())
		}
	})

	t.Run("angle wraps", func(t *testing.T) {
		if err := prob.Apply(a.ID(), []float64{1}); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if want := 4 - 2*math.Pi; math.Abs(a.Yaw()-want) > 1e-12 {
			t.Errorf("yaw = %v, want %v", a.Yaw(), want)
		}
	})

	t.Run("wrong size", func(t *testing.T) {
		if err := prob.Apply(q.ID(), []float64{0, 0, 0, 0}); !errors.Is(err, problem.ErrDeltaSize) {
			t.Errorf("error = %v, want ErrDeltaSize", err)
		}
	})

	t.Run("unknown block", func(t *testing.T) {
		if err := prob.Apply(identity.Nil, []float64{0}); !errors.Is(err, problem.ErrUnknownBlock) {
			t.Errorf("error = %v, want ErrUnknownBlock", err)
		}
	})
}

func TestApplyAll(t *testing.T) {
	p, q, _ := fixture(t)
	prob := problem.New()
	for _, v := range []variable.Variable{p, q} {
		if err := prob.Add(v); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	if err := prob.ApplyAll([]float64{1, 1}); !errors.Is(err, problem.ErrDeltaSize) {
		t.Errorf("short ApplyAll error = %v, want ErrDeltaSize", err)
	}

	if err := prob.ApplyAll([]float64{1, 1, 0, 0, 0}); err != nil {
		t.Fatalf("ApplyAll failed: %v", err)
	}
	if p.X() != 2 || p.Y() != 3 {
		t.Errorf("point = (%v, %v), want (2, 3)", p.X(), p.Y())
	}
	if q.W() != 1 || q.X() != 0 || q.Y() != 0 || q.Z() != 0 {
		t.Error("zero increment changed the quaternion")
	}
}

func TestPlusJacobian(t *testing.T) {
	p, q, _ := fixture(t)
	prob := problem.New()
	for _, v := range []variable.Variable{p, q} {
		if err := prob.Add(v); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	jac, err := prob.PlusJacobian(p.ID())
	if err != nil {
		t.Fatalf("PlusJacobian(point) failed: %v", err)
	}
	want := []float64{1, 0, 0, 1}
	for i := range want {
		if jac[i] != want[i] {
			t.Errorf("point jacobian = %v, want %v", jac, want)
			break
		}
	}

	jac, err = prob.PlusJacobian(q.ID())
	if err != nil {
		t.Fatalf("PlusJacobian(quaternion) failed: %v", err)
	}
	if len(jac) != 12 {
		t.Errorf("len(quaternion jacobian) = %d, want 12", len(jac))
	}
}

func TestRelease(t *testing.T) {
	p, _, _ := fixture(t)
	capture := observability.NewCaptureObserver()
	prob := problem.New(problem.WithObserver(capture))

	if err := prob.Add(p); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	prob.Release()
	prob.Release()

	if !prob.Released() {
		t.Error("Released() = false after Release")
	}
	if prob.Len() != 0 {
		t.Errorf("Len() = %d after Release", prob.Len())
	}
	if _, ok := prob.Block(p.ID()); ok {
		t.Error("Block found after Release")
	}
	if err := prob.Apply(p.ID(), []float64{1, 1}); !errors.Is(err, problem.ErrReleased) {
		t.Errorf("Apply error = %v, want ErrReleased", err)
	}
	if err := prob.Add(p); !errors.Is(err, problem.ErrReleased) {
		t.Errorf("Add error = %v, want ErrReleased", err)
	}
	if _, err := prob.PlusJacobian(p.ID()); !errors.Is(err, problem.ErrReleased) {
		t.Errorf("PlusJacobian error = %v, want ErrReleased", err)
	}

	if n := capture.Count(problem.EventRelease); n != 1 {
		t.Errorf("release events = %d, want 1", n)
	}
	if p.X() != 1 {
		t.Error("Release modified the variable")
	}
}

func TestBorrow(t *testing.T) {
	p, q, a := fixture(t)
	g := graph.NewWithDeps("borrow", nil, nil)
	for _, v := range []variable.Variable{p, q, a} {
		if _, err := g.Add(v); err != nil {
			t.Fatalf("graph Add failed: %v", err)
		}
	}

	var held *problem.Problem
	err := problem.Borrow(g, func(prob *problem.Problem) error {
		held = prob
		if prob.Len() != 3 {
			t.Errorf("Len() = %d, want 3", prob.Len())
		}
		return prob.Apply(p.ID(), []float64{1, 0})
	})
	if err != nil {
		t.Fatalf("Borrow failed: %v", err)
	}

	if p.X() != 2 {
		t.Errorf("X = %v, want 2", p.X())
	}
	if !held.Released() {
		t.Error("problem not released after Borrow returned")
	}

	t.Run("callback error", func(t *testing.T) {
		sentinel := errors.New("solver diverged")
		err := problem.Borrow(g, func(prob *problem.Problem) error {
			held = prob
			return sentinel
		})
		if !errors.Is(err, sentinel) {
			t.Errorf("Borrow error = %v, want %v", err, sentinel)
		}
		if !held.Released() {
			t.Error("problem not released after failing callback")
		}
	})

	t.Run("readers wait for release", func(t *testing.T) {
		read := make(chan struct{})
		err := problem.Borrow(g, func(prob *problem.Problem) error {
			go g.Read(func() { close(read) })

			select {
			case <-read:
				t.Error("Read ran while the graph was borrowed")
			case <-time.After(20 * time.Millisecond):
			}
			return prob.Apply(p.ID(), []float64{1, 0})
		})
		if err != nil {
			t.Fatalf("Borrow failed: %v", err)
		}

		select {
		case <-read:
		case <-time.After(time.Second):
			t.Fatal("Read did not run after Borrow returned")
		}
	})
}

func TestNewFromConfig(t *testing.T) {
	if _, err := problem.NewFromConfig(problem.DefaultConfig()); err != nil {
		t.Errorf("NewFromConfig(default) failed: %v", err)
	}
	if _, err := problem.NewFromConfig(problem.Config{Observer: "missing"}); err == nil {
		t.Error("NewFromConfig with unknown observer succeeded")
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := problem.DefaultConfig()
	cfg.Merge(&problem.Config{})
	if cfg.Observer != "slog" {
		t.Errorf("empty merge changed Observer to %q", cfg.Observer)
	}
	cfg.Merge(&problem.Config{Observer: "noop"})
	if cfg.Observer != "noop" {
		t.Errorf("Observer = %q, want noop", cfg.Observer)
	}
}
