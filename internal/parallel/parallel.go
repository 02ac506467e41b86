// Package parallel runs taped functions on several workers. Each worker
// owns one arena and replays its own clone of a function; clones share
// the recorded operator sequence and nothing else.
package parallel

import (
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/born-ml/adtape/internal/arena"
	"github.com/born-ml/adtape/internal/autodiff"
	"github.com/born-ml/adtape/internal/autodiff/ops"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines, at most arena.NumWorkers().
	MinChunkSize int  // Minimum items per goroutine.
}

// DefaultConfig uses one goroutine per CPU, bounded by the arenas created
// in autodiff.Setup.
func DefaultConfig() Config {
	n := min(runtime.NumCPU(), arena.NumWorkers())
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 1,
	}
}

func (c Config) workers() int {
	if !c.Enabled || c.NumWorkers < 1 {
		return 1
	}
	return min(c.NumWorkers, arena.NumWorkers())
}

// For executes f(i) for i in [0, n) with optional parallelism.
func For(n int, f func(i int), cfg Config) {
	ForWorker(n, func(_, i int) { f(i) }, cfg)
}

// ForWorker executes f(worker, i) for i in [0, n). Indices are split into
// contiguous chunks and chunk k runs on worker k, so f may use the arena
// of its worker without locking. Falls back to worker 0 when parallelism
// is disabled or n is too small.
func ForWorker(n int, f func(worker, i int), cfg Config) {
	w := cfg.workers()
	if w == 1 || n < cfg.MinChunkSize {
		for i := 0; i < n; i++ {
			f(0, i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+w-1)/w, cfg.MinChunkSize, 1)

	for k, start := 0, 0; start < n; k, start = k+1, start+chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(worker, s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(worker, i)
			}
		}(k, start, end)
	}
	wg.Wait()
}

// Run calls fn once per worker and waits for all of them. The first error
// cancels the context passed to the others and is returned.
func Run(ctx context.Context, workers int, fn func(ctx context.Context, worker int) error) error {
	if workers < 1 || workers > arena.NumWorkers() {
		return errors.Errorf("parallel: %d workers requested, %d arenas available", workers, arena.NumWorkers())
	}
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			return fn(ctx, w)
		})
	}
	return g.Wait()
}

// Forward evaluates f at every point of xs, zero order only. Worker w
// replays a clone of f that takes its buffers from arena.Worker(w) and
// handles points w, w+workers, ... f itself is only read and must not be
// used by other goroutines until Forward returns.
func Forward[T ops.Float](ctx context.Context, f *autodiff.Function[T], xs [][]T, cfg Config) ([][]T, error) {
	out := make([][]T, len(xs))
	workers := min(cfg.workers(), max(len(xs), 1))
	err := Run(ctx, workers, func(ctx context.Context, w int) error {
		g := f.Clone(autodiff.WithArena(arena.Worker(w)))
		defer g.Close()
		for i := w; i < len(xs); i += workers {
			if err := ctx.Err(); err != nil {
				return err
			}
			y, err := g.Forward(0, xs[i])
			if err != nil {
				return errors.Wrapf(err, "point %d", i)
			}
			out[i] = y
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Gradient returns the first order partials of the weighted sum
// w[0]*y[0] + ... at every point of xs, distributed like Forward.
func Gradient[T ops.Float](ctx context.Context, f *autodiff.Function[T], xs [][]T, w []T, cfg Config) ([][]T, error) {
	out := make([][]T, len(xs))
	workers := min(cfg.workers(), max(len(xs), 1))
	err := Run(ctx, workers, func(ctx context.Context, wk int) error {
		g := f.Clone(autodiff.WithArena(arena.Worker(wk)))
		defer g.Close()
		for i := wk; i < len(xs); i += workers {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := g.Forward(0, xs[i]); err != nil {
				return errors.Wrapf(err, "point %d", i)
			}
			out[i] = g.Reverse(1, w)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
