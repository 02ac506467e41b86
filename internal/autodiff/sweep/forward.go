// Package sweep runs the forward and reverse Taylor sweeps over a player.
//
// A sweep walks the operators once, in tape order for Forward and in
// reverse order for Reverse, and dispatches each to its kernel. Operators
// flagged in Frame.Skip by a CSkip at order zero are not evaluated at any
// order. Atomic call blocks are evaluated here rather than by kernels.
package sweep

import (
	"github.com/pkg/errors"

	"github.com/born-ml/adtape/internal/autodiff/ops"
	"github.com/born-ml/adtape/internal/autodiff/tape"
	"github.com/born-ml/adtape/internal/metrics"
)

// Atomic is a user function evaluated as a single block of the tape.
//
// Coefficient arrays are laid out argument-major: tx[j*(q+1)+k] is order k
// of argument j. Forward computes orders p..q of ty from tx and the lower
// orders already in ty. Reverse accumulates into px the partials of the
// weighted sum py . ty with respect to tx, orders 0..q.
type Atomic[T ops.Float] interface {
	Forward(p, q int, tx, ty []T) bool
	Reverse(q int, tx, ty, px, py []T) bool
}

// State bundles what a sweep reads and writes.
type State[T ops.Float] struct {
	Player  *tape.Player[T]
	Table   *ops.Table[T]
	Frame   ops.Frame[T]
	Atomics []Atomic[T]
}

// Forward computes orders p..q of every variable. Orders below p must
// already be in the frame. Order zero resets the skip flags and the
// compare-change counters before the sweep.
func Forward[T ops.Float](s *State[T], p, q int) error {
	pl, f := s.Player, &s.Frame
	if p == 0 {
		clear(f.Skip)
		f.Compare.Number = 0
		f.Compare.OpIndex = 0
		metrics.ForwardSweeps.WithLabelValues("zero").Inc()
	} else {
		metrics.ForwardSweeps.WithLabelValues("higher").Inc()
	}
	for i := 0; i < len(pl.Ops); i++ {
		if f.Skip[i] {
			continue
		}
		op := pl.Ops[i]
		if op == ops.AFun {
			end, err := s.atomicForward(i, p, q)
			if err != nil {
				return err
			}
			i = end
			continue
		}
		f.OpIndex = i
		arg := pl.Args[pl.OpArg[i]:]
		k := &s.Table[op]
		if q == 0 {
			k.Forward0(pl.OpVar[i], arg, f)
		} else {
			k.ForwardAny(p, q, pl.OpVar[i], arg, f)
		}
	}
	return nil
}

// block describes an atomic call spanning operators open..close.
type block struct {
	atom, n, m  int
	open, close int
}

func openBlock[T ops.Float](pl *tape.Player[T], i int) block {
	arg := pl.Args[pl.OpArg[i]:]
	b := block{atom: arg[0], n: arg[2], m: arg[3], open: i}
	b.close = i + b.n + b.m + 1
	return b
}

func closeBlock[T ops.Float](pl *tape.Player[T], i int) block {
	arg := pl.Args[pl.OpArg[i]:]
	n, m := arg[2], arg[3]
	return openBlock(pl, i-n-m-1)
}

// taylorIn copies orders 0..q of the block's arguments into tx.
func (s *State[T]) taylorIn(b block, q int, tx []T) {
	pl, f := s.Player, &s.Frame
	w := q + 1
	for j := 0; j < b.n; j++ {
		i := b.open + 1 + j
		a := pl.Args[pl.OpArg[i]]
		if pl.Ops[i] == ops.FunAV {
			copy(tx[j*w:(j+1)*w], f.Tay(a)[:w])
			continue
		}
		tx[j*w] = f.Par[a]
		clear(tx[j*w+1 : (j+1)*w])
	}
}

func (s *State[T]) atomicForward(i, p, q int) (int, error) {
	pl, f := s.Player, &s.Frame
	b := openBlock(pl, i)
	if b.atom < 0 || b.atom >= len(s.Atomics) || s.Atomics[b.atom] == nil {
		return 0, errors.Errorf("sweep: operator %d calls unknown atomic %d", i, b.atom)
	}
	w := q + 1
	tx := make([]T, b.n*w)
	ty := make([]T, b.m*w)
	s.taylorIn(b, q, tx)
	for j := 0; j < b.m; j++ {
		r := b.open + 1 + b.n + j
		if pl.Ops[r] == ops.FunRV {
			copy(ty[j*w:(j+1)*w], f.Tay(pl.OpVar[r])[:w])
		} else {
			ty[j*w] = f.Par[pl.Args[pl.OpArg[r]]]
		}
	}
	if !s.Atomics[b.atom].Forward(p, q, tx, ty) {
		return 0, errors.Errorf("sweep: atomic %d forward failed at orders %d..%d", b.atom, p, q)
	}
	for j := 0; j < b.m; j++ {
		r := b.open + 1 + b.n + j
		if pl.Ops[r] != ops.FunRV {
			continue
		}
		copy(f.Tay(pl.OpVar[r])[p:w], ty[j*w+p:(j+1)*w])
	}
	return b.close, nil
}
