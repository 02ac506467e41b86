package tape

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Active tapes, keyed by identity. Recorders are goroutine-owned; the
// registry only answers which tapes are still open.
var (
	activeMu sync.Mutex
	active   = make(map[uuid.UUID]struct{})
)

func register(id uuid.UUID) {
	activeMu.Lock()
	active[id] = struct{}{}
	activeMu.Unlock()
}

func unregister(id uuid.UUID) {
	activeMu.Lock()
	delete(active, id)
	activeMu.Unlock()
}

// IsActive reports whether the tape with the given identity is recording.
func IsActive(id uuid.UUID) bool {
	activeMu.Lock()
	defer activeMu.Unlock()
	_, ok := active[id]
	return ok
}

// ActiveTapes returns the identities of all tapes still recording, sorted.
func ActiveTapes() []uuid.UUID {
	activeMu.Lock()
	ids := make([]uuid.UUID, 0, len(active))
	for id := range active {
		ids = append(ids, id)
	}
	activeMu.Unlock()
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return slices.Compare(a[:], b[:])
	})
	return ids
}
