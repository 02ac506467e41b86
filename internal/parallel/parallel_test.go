package parallel_test

import (
	"context"
	"math"
	"os"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/adtape/internal/arena"
	"github.com/born-ml/adtape/internal/autodiff"
	"github.com/born-ml/adtape/internal/parallel"
)

func TestMain(m *testing.M) {
	if err := autodiff.Setup(4); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestFor(t *testing.T) {
	cfg := parallel.DefaultConfig()
	cfg.Enabled, cfg.NumWorkers = true, 4

	var sum int64
	n := 1000
	parallel.For(n, func(i int) {
		atomic.AddInt64(&sum, int64(i))
	}, cfg)

	assert.Equal(t, int64(n*(n-1)/2), sum)
}

func TestFor_Sequential(t *testing.T) {
	cfg := parallel.DefaultConfig()
	cfg.Enabled = false

	var order []int
	parallel.For(10, func(i int) {
		order = append(order, i)
	}, cfg)

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestFor_SmallChunk(t *testing.T) {
	cfg := parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 64}

	var counter int64
	n := cfg.MinChunkSize - 1
	parallel.For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	assert.Equal(t, int64(n), counter)
}

func TestForWorker_ChunksStayOnWorker(t *testing.T) {
	cfg := parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}

	n := 10
	owner := make([]int, n)
	parallel.ForWorker(n, func(w, i int) {
		owner[i] = w
	}, cfg)

	// Chunks of three: 0..2, 3..5, 6..8, 9.
	assert.Equal(t, []int{0, 0, 0, 1, 1, 1, 2, 2, 2, 3}, owner)
}

func TestRun(t *testing.T) {
	var seen [4]int64
	err := parallel.Run(context.Background(), 4, func(_ context.Context, w int) error {
		atomic.AddInt64(&seen[w], 1)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, [4]int64{1, 1, 1, 1}, seen)

	boom := errors.New("boom")
	err = parallel.Run(context.Background(), 2, func(ctx context.Context, w int) error {
		if w == 1 {
			return boom
		}
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, boom)

	err = parallel.Run(context.Background(), arena.NumWorkers()+1, func(context.Context, int) error {
		return nil
	})
	assert.Error(t, err)
}

// product records y = x0 * x1 + sin(x0).
func product(t *testing.T) *autodiff.Function[float64] {
	t.Helper()
	x := autodiff.Independent([]float64{1, 2})
	y := x[0].Mul(x[1]).Add(autodiff.Sin(x[0]))
	f := autodiff.NewFunction(x, []autodiff.AD[float64]{y}, autodiff.WithArena(arena.New()))
	t.Cleanup(f.Close)
	return f
}

func points(n int) [][]float64 {
	xs := make([][]float64, n)
	for i := range xs {
		xs[i] = []float64{0.1 * float64(i), 1 + 0.5*float64(i)}
	}
	return xs
}

func TestForward(t *testing.T) {
	f := product(t)
	cfg := parallel.Config{Enabled: true, NumWorkers: 4}
	xs := points(23)

	ys, err := parallel.Forward(context.Background(), f, xs, cfg)
	require.NoError(t, err)
	require.Len(t, ys, len(xs))
	for i, x := range xs {
		assert.InDelta(t, x[0]*x[1]+math.Sin(x[0]), ys[i][0], 1e-12, "point %d", i)
	}

	for w := 0; w < arena.NumWorkers(); w++ {
		assert.Zero(t, arena.Worker(w).InUse(), "worker %d", w)
	}
}

func TestForward_Sequential(t *testing.T) {
	f := product(t)
	xs := points(5)

	par, err := parallel.Forward(context.Background(), f, xs, parallel.Config{Enabled: true, NumWorkers: 3})
	require.NoError(t, err)
	seq, err := parallel.Forward(context.Background(), f, xs, parallel.Config{})
	require.NoError(t, err)
	assert.Equal(t, seq, par)
}

func TestForward_NotANumber(t *testing.T) {
	x := autodiff.Independent([]float64{1})
	y := autodiff.Log(x[0])
	f := autodiff.NewFunction(x, []autodiff.AD[float64]{y})
	defer f.Close()

	xs := [][]float64{{1}, {2}, {-1}, {3}}
	_, err := parallel.Forward(context.Background(), f, xs, parallel.Config{Enabled: true, NumWorkers: 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, autodiff.ErrNotANumber)
	assert.Contains(t, err.Error(), "point 2")
}

func TestGradient(t *testing.T) {
	f := product(t)
	xs := points(9)

	gs, err := parallel.Gradient(context.Background(), f, xs, []float64{1}, parallel.Config{Enabled: true, NumWorkers: 4})
	require.NoError(t, err)
	for i, x := range xs {
		assert.InDeltaSlice(t, []float64{x[1] + math.Cos(x[0]), x[0]}, gs[i], 1e-12, "point %d", i)
	}
}

func BenchmarkForward(b *testing.B) {
	x := autodiff.Independent([]float64{1, 2})
	y := x[0].Mul(x[1]).Add(autodiff.Sin(x[0]))
	f := autodiff.NewFunction(x, []autodiff.AD[float64]{y})
	defer f.Close()
	xs := points(4096)
	cfg := parallel.DefaultConfig()

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := parallel.Forward(context.Background(), f, xs, cfg); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("sequential", func(b *testing.B) {
		cfgSeq := cfg
		cfgSeq.Enabled = false
		for i := 0; i < b.N; i++ {
			if _, err := parallel.Forward(context.Background(), f, xs, cfgSeq); err != nil {
				b.Fatal(err)
			}
		}
	})
}
