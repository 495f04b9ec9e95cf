// Package problem is the boundary between a variable graph and an
// optimization engine.
//
// A Problem borrows the storage of each variable as a Block: the raw slice the
// engine reads and writes, plus the manifold describing how increments are
// applied. The engine owns the Problem but never the variables; the
// variables must outlive it. Borrow enforces that ordering by scoping a
// Problem to a callback and releasing every borrowed slice and strategy before
// it returns:
//
//	err := problem.Borrow(g, func(p *problem.Problem) error {
//	    ambient, tangent := p.Dimensions()
//	    delta := solve(p.Blocks(), ambient, tangent) // external engine
//	    return p.ApplyAll(delta)
//	})
//
// A Problem is not safe for concurrent use. While Borrow holds a graph's
// variables it also holds the graph's storage write lock.
package problem

import (
	"context"
	"fmt"

	"github.com/tailored-agentic-units/fuse/graph"
	"github.com/tailored-agentic-units/fuse/identity"
	"github.com/tailored-agentic-units/fuse/manifold"
	"github.com/tailored-agentic-units/fuse/observability"
	"github.com/tailored-agentic-units/fuse/variable"
)

// Block is one variable as the engine sees it.
type Block struct {
	Key  identity.Key
	Type string

	// Data is borrowed from the variable. It is valid until the Problem is
	// released.
	Data []float64

	// Manifold is nil when every dimension updates additively.
	Manifold manifold.Manifold
}

// TangentSize returns the number of free parameters of the block.
func (b Block) TangentSize() int {
	if b.Manifold == nil {
		return len(b.Data)
	}
	return b.Manifold.TangentSize()
}

// Option configures a Problem.
type Option func(*Problem)

// WithObserver sets the observer receiving problem events.
func WithObserver(o observability.Observer) Option {
	return func(p *Problem) { p.observer = o }
}

// WithParallel sets the worker pool sizing used by ForEachParallel.
func WithParallel(cfg ParallelConfig) Option {
	return func(p *Problem) { p.parallel = cfg }
}

// Problem is the set of blocks handed to an engine.
type Problem struct {
	blocks    map[identity.Key]*Block
	order     []identity.Key
	manifolds map[string]manifold.Manifold
	observer  observability.Observer
	parallel  ParallelConfig
	released  bool
}

// New creates an empty Problem.
func New(opts ...Option) *Problem {
	p := &Problem{
		blocks:    make(map[identity.Key]*Block),
		manifolds: make(map[string]manifold.Manifold),
		observer:  observability.NoOpObserver{},
		parallel:  DefaultParallelConfig(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.observer == nil {
		p.observer = observability.NoOpObserver{}
	}
	return p
}

// NewFromConfig creates a Problem whose observer and worker pool are set
// from cfg. Options are applied afterwards and may override them.
func NewFromConfig(cfg Config, opts ...Option) (*Problem, error) {
	observer, err := observability.GetObserver(cfg.Observer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve observer: %w", err)
	}
	base := []Option{WithObserver(observability.Filter(observer, cfg.Level)), WithParallel(cfg.Parallel)}
	return New(append(base, opts...)...), nil
}

// Add borrows the storage of v. The manifold is requested once per kind and
// reused for every later variable of that kind.
func (p *Problem) Add(v variable.Variable) error {
	if p.released {
		return ErrReleased
	}
	if err := variable.Check(v); err != nil {
		return err
	}

	key := v.ID()
	if _, exists := p.blocks[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateBlock, key)
	}

	m, cached := p.manifolds[v.Type()]
	if !cached {
		m = v.Manifold()
		p.manifolds[v.Type()] = m
	}
	if err := manifold.Validate(m, v.Size()); err != nil {
		return fmt.Errorf("%w: %s: %v", variable.ErrContract, v.Type(), err)
	}

	b := &Block{
		Key:      key,
		Type:     v.Type(),
		Data:     v.Data(),
		Manifold: m,
	}
	p.blocks[key] = b
	p.order = append(p.order, key)

	p.emit(EventBlockAdd, observability.LevelVerbose, map[string]any{
		"id":      key.String(),
		"type":    b.Type,
		"ambient": len(b.Data),
		"tangent": b.TangentSize(),
	})
	return nil
}

// AddGraph borrows every variable of g in ascending key order.
func (p *Problem) AddGraph(g *graph.Graph) error {
	for v := range g.All() {
		if err := p.Add(v); err != nil {
			return fmt.Errorf("add %s: %w", v.ID(), err)
		}
	}
	return nil
}

// Len returns the number of blocks.
func (p *Problem) Len() int {
	return len(p.order)
}

// Block returns the block borrowed from the variable with the given key.
func (p *Problem) Block(key identity.Key) (Block, bool) {
	b, exists := p.blocks[key]
	if !exists {
		return Block{}, false
	}
	return *b, true
}

// Blocks returns every block in the order it was added.
func (p *Problem) Blocks() []Block {
	blocks := make([]Block, 0, len(p.order))
	for _, key := range p.order {
		blocks = append(blocks, *p.blocks[key])
	}
	return blocks
}

// Dimensions returns the total number of stored scalars and the total number
// of free parameters across all blocks.
func (p *Problem) Dimensions() (ambient, tangent int) {
	for _, key := range p.order {
		b := p.blocks[key]
		ambient += len(b.Data)
		tangent += b.TangentSize()
	}
	return ambient, tangent
}

// Apply composes delta with the stored value of one block, in place.
// len(delta) must equal the block's tangent size.
func (p *Problem) Apply(key identity.Key, delta []float64) error {
	if p.released {
		return ErrReleased
	}

	b, exists := p.blocks[key]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownBlock, key)
	}
	if len(delta) != b.TangentSize() {
		return fmt.Errorf("%w: %s wants %d, got %d", ErrDeltaSize, key, b.TangentSize(), len(delta))
	}

	plus(b, delta)

	p.emit(EventApply, observability.LevelVerbose, map[string]any{
		"id":      key.String(),
		"tangent": len(delta),
	})
	return nil
}

// ApplyAll applies a packed increment covering every block, laid out in the
// order the blocks were added.
func (p *Problem) ApplyAll(delta []float64) error {
	if p.released {
		return ErrReleased
	}

	_, tangent := p.Dimensions()
	if len(delta) != tangent {
		return fmt.Errorf("%w: problem wants %d, got %d", ErrDeltaSize, tangent, len(delta))
	}

	offset := 0
	for _, key := range p.order {
		b := p.blocks[key]
		n := b.TangentSize()
		plus(b, delta[offset:offset+n])
		offset += n
	}

	p.emit(EventApply, observability.LevelVerbose, map[string]any{
		"blocks":  len(p.order),
		"tangent": tangent,
	})
	return nil
}

// PlusJacobian returns the row-major ambient × tangent derivative of the
// block's update at its current value. Additive blocks yield the identity.
func (p *Problem) PlusJacobian(key identity.Key) ([]float64, error) {
	if p.released {
		return nil, ErrReleased
	}

	b, exists := p.blocks[key]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBlock, key)
	}

	m := b.Manifold
	if m == nil {
		m = manifold.NewEuclidean(len(b.Data))
	}

	jac := make([]float64, m.AmbientSize()*m.TangentSize())
	m.PlusJacobian(b.Data, jac)
	return jac, nil
}

// Release drops every borrowed slice and strategy. The Problem cannot be used
// afterwards. Release is idempotent.
func (p *Problem) Release() {
	if p.released {
		return
	}

	n := len(p.order)
	for _, b := range p.blocks {
		b.Data = nil
		b.Manifold = nil
	}
	clear(p.blocks)
	clear(p.manifolds)
	p.order = nil
	p.released = true

	p.emit(EventRelease, observability.LevelVerbose, map[string]any{
		"blocks": n,
	})
}

// Released reports whether Release has been called.
func (p *Problem) Released() bool {
	return p.released
}

// Borrow builds a Problem over every variable of g, runs fn, and releases the
// Problem before returning, whether fn succeeds or not. fn must not retain
// the Problem or any Block.
//
// The graph's storage write lock is held until the Problem is released, so
// readers going through g.Read or g.Snapshot wait for fn. fn must not call
// those on g itself.
func Borrow(g *graph.Graph, fn func(*Problem) error, opts ...Option) error {
	return g.Write(func() error {
		p := New(opts...)
		defer p.Release()

		if err := p.AddGraph(g); err != nil {
			return err
		}
		return fn(p)
	})
}

func plus(b *Block, delta []float64) {
	if b.Manifold == nil {
		for i := range b.Data {
			b.Data[i] += delta[i]
		}
		return
	}
	b.Manifold.Plus(b.Data, delta, b.Data)
}

func (p *Problem) emit(typ observability.EventType, level observability.Level, data map[string]any) {
	observability.Emit(context.Background(), p.observer, typ, level, data)
}
