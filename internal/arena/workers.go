package arena

import (
	"fmt"
	"sync"
)

var (
	workersMu sync.RWMutex
	workers   = []*Arena{newNamed("0")}
)

// Setup creates one arena per worker. It must run on a single goroutine
// before any worker calls Worker. Calling it again replaces the arenas and
// drops the free lists of the old ones; buffers handed out by the old
// arenas must not be returned to the new ones.
func Setup(n int) {
	if n < 1 {
		panic(fmt.Sprintf("arena: setup needs at least one worker, got %d", n))
	}
	list := make([]*Arena, n)
	for i := range list {
		list[i] = newNamed(fmt.Sprint(i))
	}
	workersMu.Lock()
	old := workers
	workers = list
	workersMu.Unlock()
	for _, a := range old {
		a.Release()
	}
}

// Worker returns the arena owned by worker i.
func Worker(i int) *Arena {
	workersMu.RLock()
	defer workersMu.RUnlock()
	if i < 0 || i >= len(workers) {
		panic(fmt.Sprintf("arena: worker %d out of range [0, %d)", i, len(workers)))
	}
	return workers[i]
}

// NumWorkers returns the number of arenas created by the last Setup.
func NumWorkers() int {
	workersMu.RLock()
	defer workersMu.RUnlock()
	return len(workers)
}
