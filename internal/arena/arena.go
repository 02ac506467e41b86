// Package arena hands out zeroed, capacity-tracked buffers.
//
// Every buffer comes from a size class (a power of two number of elements)
// and goes back to the arena's free list when released with Put. The arena
// accounts bytes in use and bytes available so that callers can check that
// everything they took was returned:
//
//	a := arena.New()
//	buf := arena.Get[float64](a, 100) // len 100, cap 128
//	arena.Put(a, buf)
//	a.InUse() // 0
//
// An Arena may be shared between goroutines, but the intended use is one
// arena per worker; see Setup and Worker.
package arena

import (
	"fmt"
	"math/bits"
	"reflect"
	"sync"
	"unsafe"

	"github.com/born-ml/adtape/internal/metrics"
)

type classKey struct {
	elem  reflect.Type
	class int
}

// Arena is a set of free lists keyed by element type and size class.
type Arena struct {
	mu        sync.Mutex
	free      map[classKey][]any
	inUse     int64
	available int64
	name      string
}

// New creates an empty arena.
func New() *Arena {
	return newNamed("default")
}

func newNamed(name string) *Arena {
	return &Arena{free: make(map[classKey][]any), name: name}
}

// sizeClass returns the smallest class c with 1<<c >= n.
func sizeClass(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

func elemSize[E any]() int64 {
	var zero E
	return int64(unsafe.Sizeof(zero))
}

// Get returns a zeroed slice of length n whose capacity is the size class
// of n.
func Get[E any](a *Arena, n int) []E {
	if n < 0 {
		panic(fmt.Sprintf("arena: negative length %d", n))
	}
	class := sizeClass(n)
	key := classKey{elem: reflect.TypeFor[E](), class: class}
	bytes := int64(1<<class) * elemSize[E]()

	a.mu.Lock()
	var buf []E
	if list := a.free[key]; len(list) > 0 {
		buf = list[len(list)-1].([]E)
		a.free[key] = list[:len(list)-1]
		a.available -= bytes
	}
	a.inUse += bytes
	inUse := a.inUse
	a.mu.Unlock()

	metrics.ArenaBytesInUse.WithLabelValues(a.name).Set(float64(inUse))
	if buf == nil {
		return make([]E, n, 1<<class)
	}
	buf = buf[:n]
	clear(buf)
	return buf
}

// Put returns buf to the arena. buf must have been obtained from Get on the
// same arena; nil buffers are ignored.
func Put[E any](a *Arena, buf []E) {
	if buf == nil {
		return
	}
	class := sizeClass(cap(buf))
	if 1<<class != cap(buf) {
		panic(fmt.Sprintf("arena: buffer capacity %d is not a size class", cap(buf)))
	}
	key := classKey{elem: reflect.TypeFor[E](), class: class}
	bytes := int64(cap(buf)) * elemSize[E]()

	a.mu.Lock()
	a.free[key] = append(a.free[key], buf[:0])
	a.inUse -= bytes
	a.available += bytes
	inUse := a.inUse
	a.mu.Unlock()

	metrics.ArenaBytesInUse.WithLabelValues(a.name).Set(float64(inUse))
}

// Grow returns a buffer of length n holding a copy of buf's contents.
// buf is released to the arena. When cap(buf) >= n, buf is resliced
// in place and the new tail zeroed.
func Grow[E any](a *Arena, buf []E, n int) []E {
	if cap(buf) >= n {
		old := len(buf)
		buf = buf[:n]
		if n > old {
			clear(buf[old:])
		}
		return buf
	}
	out := Get[E](a, n)
	copy(out, buf)
	Put(a, buf)
	return out
}

// InUse returns the number of bytes handed out and not yet returned.
func (a *Arena) InUse() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inUse
}

// Available returns the number of bytes held in free lists.
func (a *Arena) Available() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.available
}

// Release drops every free list.
func (a *Arena) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.free)
	a.available = 0
}
