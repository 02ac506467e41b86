package sweep

import (
	"github.com/pkg/errors"

	"github.com/born-ml/adtape/internal/autodiff/ops"
	"github.com/born-ml/adtape/internal/metrics"
)

// Reverse accumulates partials of orders 0..d from results into arguments
// in reverse tape order. The caller seeds Frame.Partial (NP = d+1) with
// the weights on the dependents; orders 0..d of every variable must come
// from the last forward sweep.
func Reverse[T ops.Float](s *State[T], d int) error {
	metrics.ReverseSweeps.Inc()
	pl, f := s.Player, &s.Frame
	for i := len(pl.Ops) - 1; i >= 0; i-- {
		if f.Skip[i] {
			continue
		}
		op := pl.Ops[i]
		if op == ops.AFun {
			open, err := s.atomicReverse(i, d)
			if err != nil {
				return err
			}
			i = open
			continue
		}
		f.OpIndex = i
		s.Table[op].Reverse(d, pl.OpVar[i], pl.Args[pl.OpArg[i]:], f)
	}
	return nil
}

func (s *State[T]) atomicReverse(i, d int) (int, error) {
	pl, f := s.Player, &s.Frame
	b := closeBlock(pl, i)
	if b.atom < 0 || b.atom >= len(s.Atomics) || s.Atomics[b.atom] == nil {
		return 0, errors.Errorf("sweep: operator %d calls unknown atomic %d", i, b.atom)
	}
	w := d + 1
	tx := make([]T, b.n*w)
	px := make([]T, b.n*w)
	ty := make([]T, b.m*w)
	py := make([]T, b.m*w)
	s.taylorIn(b, d, tx)
	for j := 0; j < b.m; j++ {
		r := b.open + 1 + b.n + j
		if pl.Ops[r] != ops.FunRV {
			ty[j*w] = f.Par[pl.Args[pl.OpArg[r]]]
			continue
		}
		v := pl.OpVar[r]
		copy(ty[j*w:(j+1)*w], f.Tay(v)[:w])
		copy(py[j*w:(j+1)*w], f.Part(v)[:w])
	}
	if !s.Atomics[b.atom].Reverse(d, tx, ty, px, py) {
		return 0, errors.Errorf("sweep: atomic %d reverse failed at order %d", b.atom, d)
	}
	for j := 0; j < b.n; j++ {
		a := b.open + 1 + j
		if pl.Ops[a] != ops.FunAV {
			continue
		}
		pa := f.Part(pl.Args[pl.OpArg[a]])
		for k := 0; k < w; k++ {
			pa[k] += px[j*w+k]
		}
	}
	return b.open, nil
}
