package problem

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"

	"github.com/tailored-agentic-units/fuse/identity"
	"github.com/tailored-agentic-units/fuse/observability"
)

// BlockFunc processes one block. It may write to b.Data but must not touch
// the storage of any other block.
type BlockFunc func(ctx context.Context, b Block) error

// BlockError records the failure of a BlockFunc for one block.
type BlockError struct {
	Index int
	Key   identity.Key
	Err   error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("block %d (%s): %v", e.Index, e.Key, e.Err)
}

func (e *BlockError) Unwrap() error {
	return e.Err
}

type indexedBlock struct {
	index int
	block Block
}

// ForEachParallel runs fn once per block on a pool of workers sized by the
// Problem's ParallelConfig. Blocks never share storage, so each worker writes
// only to the block it was handed.
//
// Processing stops at the first failure: the context passed to fn is
// cancelled and the returned error joins every BlockError collected, in block
// order. If ctx is cancelled, the remaining blocks are skipped and ctx.Err()
// is returned.
func (p *Problem) ForEachParallel(ctx context.Context, fn BlockFunc) error {
	if p.released {
		return ErrReleased
	}

	blocks := p.Blocks()
	if len(blocks) == 0 {
		return ctx.Err()
	}

	workers := p.parallel.workerCount(len(blocks))
	p.emit(EventParallelStart, observability.LevelVerbose, map[string]any{
		"blocks":  len(blocks),
		"workers": workers,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	queue := make(chan indexedBlock, len(blocks))
	for i, b := range blocks {
		queue <- indexedBlock{index: i, block: b}
	}
	close(queue)

	var (
		mu       sync.Mutex
		failures []*BlockError
		wg       sync.WaitGroup
	)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case work, ok := <-queue:
					if !ok {
						return
					}
					if err := fn(ctx, work.block); err != nil {
						mu.Lock()
						failures = append(failures, &BlockError{
							Index: work.index,
							Key:   work.block.Key,
							Err:   err,
						})
						mu.Unlock()
						cancel()
						return
					}
				}
			}
		}()
	}
	wg.Wait()

	p.emit(EventParallelComplete, observability.LevelVerbose, map[string]any{
		"blocks":   len(blocks),
		"failures": len(failures),
	})

	if len(failures) > 0 {
		slices.SortFunc(failures, func(a, b *BlockError) int { return a.Index - b.Index })
		errs := make([]error, len(failures))
		for i, f := range failures {
			errs[i] = f
		}
		return errors.Join(errs...)
	}
	return ctx.Err()
}

// ApplyAllParallel is ApplyAll spread across the worker pool.
func (p *Problem) ApplyAllParallel(ctx context.Context, delta []float64) error {
	if p.released {
		return ErrReleased
	}

	_, tangent := p.Dimensions()
	if len(delta) != tangent {
		return fmt.Errorf("%w: problem wants %d, got %d", ErrDeltaSize, tangent, len(delta))
	}

	offsets := make(map[identity.Key]int, len(p.order))
	offset := 0
	for _, key := range p.order {
		offsets[key] = offset
		offset += p.blocks[key].TangentSize()
	}

	return p.ForEachParallel(ctx, func(_ context.Context, b Block) error {
		start := offsets[b.Key]
		plus(&b, delta[start:start+b.TangentSize()])
		return nil
	})
}

// ParallelConfig sizes the worker pool used by ForEachParallel.
type ParallelConfig struct {
	// MaxWorkers fixes the pool size. Zero selects min(NumCPU, WorkerCap,
	// blocks).
	MaxWorkers int `json:"max_workers,omitempty" yaml:"max_workers,omitempty"`

	// WorkerCap bounds the automatically selected pool size.
	WorkerCap int `json:"worker_cap,omitempty" yaml:"worker_cap,omitempty"`
}

// DefaultParallelConfig returns automatic sizing capped at 16 workers.
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{WorkerCap: 16}
}

// Merge applies non-zero values from source into c.
func (c *ParallelConfig) Merge(source *ParallelConfig) {
	if source.MaxWorkers > 0 {
		c.MaxWorkers = source.MaxWorkers
	}
	if source.WorkerCap > 0 {
		c.WorkerCap = source.WorkerCap
	}
}

func (c ParallelConfig) workerCount(blocks int) int {
	if c.MaxWorkers > 0 {
		return min(c.MaxWorkers, blocks)
	}

	workers := min(runtime.NumCPU(), blocks)
	if c.WorkerCap > 0 {
		workers = min(workers, c.WorkerCap)
	}
	return max(workers, 1)
}
