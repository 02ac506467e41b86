package arena_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/adtape/internal/arena"
)

func TestGet_RoundsToSizeClass(t *testing.T) {
	a := arena.New()
	buf := arena.Get[float64](a, 100)
	assert.Len(t, buf, 100)
	assert.Equal(t, 128, cap(buf))
	assert.Equal(t, int64(128*8), a.InUse())

	arena.Put(a, buf)
	assert.Zero(t, a.InUse())
	assert.Equal(t, int64(128*8), a.Available())
}

func TestGet_ReusesAndZeroes(t *testing.T) {
	a := arena.New()
	buf := arena.Get[float64](a, 5)
	for i := range buf {
		buf[i] = float64(i + 1)
	}
	arena.Put(a, buf)

	again := arena.Get[float64](a, 7)
	require.Len(t, again, 7)
	assert.Equal(t, 8, cap(again))
	for _, v := range again {
		assert.Zero(t, v)
	}
	assert.Zero(t, a.Available())
	arena.Put(a, again)
}

func TestGet_TypesDoNotMix(t *testing.T) {
	a := arena.New()
	arena.Put(a, arena.Get[float32](a, 4))
	b := arena.Get[bool](a, 4)
	assert.Len(t, b, 4)
	assert.Equal(t, int64(4*4), a.Available())
	arena.Put(a, b)
	assert.Zero(t, a.InUse())
}

func TestGrow_PreservesPrefix(t *testing.T) {
	a := arena.New()
	buf := arena.Get[float64](a, 3)
	copy(buf, []float64{1, 2, 3})

	buf = arena.Grow(a, buf, 4)
	assert.Equal(t, []float64{1, 2, 3, 0}, buf)

	buf = arena.Grow(a, buf, 9)
	assert.Equal(t, []float64{1, 2, 3, 0, 0, 0, 0, 0, 0}, buf)
	assert.Equal(t, int64(16*8), a.InUse())

	arena.Put(a, buf)
	assert.Zero(t, a.InUse())
	a.Release()
	assert.Zero(t, a.Available())
}

func TestPut_RejectsForeignCapacity(t *testing.T) {
	a := arena.New()
	assert.Panics(t, func() { arena.Put(a, make([]float64, 3)) })
}

func TestSetup_Workers(t *testing.T) {
	arena.Setup(3)
	defer arena.Setup(1)

	assert.Equal(t, 3, arena.NumWorkers())
	assert.NotSame(t, arena.Worker(0), arena.Worker(2))
	assert.Panics(t, func() { arena.Worker(3) })
}

func TestSetup_ReleasesOldArenas(t *testing.T) {
	arena.Setup(1)
	old := arena.Worker(0)
	arena.Put(old, arena.Get[float64](old, 10))
	require.Positive(t, old.Available())

	arena.Setup(1)
	assert.Zero(t, old.Available())
	assert.NotSame(t, old, arena.Worker(0))
}
