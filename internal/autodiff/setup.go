package autodiff

import (
	"github.com/pkg/errors"

	"github.com/born-ml/adtape/internal/arena"
	"github.com/born-ml/adtape/internal/autodiff/ops"
	"github.com/born-ml/adtape/internal/logging"
)

// Setup prepares the engine for workers goroutines: it checks the
// operator catalog and the kernel tables and creates one arena per worker.
// It must run once on a single goroutine before any worker records or
// replays, and after every RegisterDiscrete and RegisterAtomic call.
func Setup(workers int) error {
	if workers < 1 {
		return errors.Errorf("autodiff: setup needs at least one worker, got %d", workers)
	}
	if err := ops.Validate(); err != nil {
		return errors.Wrap(err, "autodiff: operator catalog")
	}
	if op, ok := ops.NewTable[float64]().Complete(); !ok {
		return errors.Errorf("autodiff: no float64 kernel for %s", op)
	}
	if op, ok := ops.NewTable[float32]().Complete(); !ok {
		return errors.Errorf("autodiff: no float32 kernel for %s", op)
	}
	arena.Setup(workers)
	logging.Default().Debug("setup", "workers", workers)
	return nil
}

// Worker returns the arena of worker i, for use with WithArena.
func Worker(i int) *arena.Arena {
	return arena.Worker(i)
}
