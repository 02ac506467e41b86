package autodiff

import (
	"sync"

	"github.com/born-ml/adtape/internal/autodiff/ops"
	"github.com/born-ml/adtape/internal/autodiff/sweep"
	"github.com/born-ml/adtape/internal/errhand"
	"github.com/born-ml/adtape/internal/logging"
)

// Registries of user functions. Entries hold func(T) T and Atomic[T]
// values for any Base type T; a function only sees the entries of its own
// Base type.
var (
	extMu     sync.RWMutex
	discretes []any
	atomics   []any
)

// Discrete is a piecewise constant user function. Its derivatives are zero
// at every order; the function itself is evaluated again on every replay.
type Discrete[T ops.Float] struct {
	name  string
	index int
	fn    func(T) T
}

// RegisterDiscrete makes fn available to tapes. Register every discrete
// function before Setup.
func RegisterDiscrete[T ops.Float](name string, fn func(T) T) *Discrete[T] {
	extMu.Lock()
	defer extMu.Unlock()
	d := &Discrete[T]{name: name, index: len(discretes), fn: fn}
	discretes = append(discretes, fn)
	logging.Default().Debug("discrete registered", "name", name, "index", d.index)
	return d
}

// Name returns the registered name.
func (d *Discrete[T]) Name() string {
	return d.name
}

// Call returns fn(x), recorded when x is on a tape.
func (d *Discrete[T]) Call(x AD[T]) AD[T] {
	x = x.live()
	v := d.fn(x.value)
	switch x.kind {
	case Variable:
		return variable(x.tape, v, ops.Dis, d.index, x.addr)
	case Dynamic:
		return dynamic(x.tape, v, ops.Dis, d.index, x.addr)
	}
	return Const(v)
}

func discreteTable[T ops.Float]() []func(T) T {
	extMu.RLock()
	defer extMu.RUnlock()
	out := make([]func(T) T, len(discretes))
	for i, d := range discretes {
		if fn, ok := d.(func(T) T); ok {
			out[i] = fn
		}
	}
	return out
}

// Atomic is a user function of n arguments and m results evaluated as one
// block of the tape.
//
// Coefficient arrays are argument-major: tx[j*(q+1)+k] is order k of
// argument j and ty[i*(q+1)+k] order k of result i. Forward computes
// orders p..q of ty. Reverse receives the weights py on the orders 0..q of
// ty and adds the partials of the weighted sum to px. Both return false
// when they cannot evaluate at the given arguments.
type Atomic[T ops.Float] interface {
	Name() string
	sweep.Atomic[T]
}

// Dependency is implemented by atomic functions that know which results
// depend on which arguments. isVar[j] tells whether argument j is on the
// tape; Depends sets dep[i] when result i depends on any such argument.
// Results that depend on no tape value are recorded as constants.
type Dependency interface {
	Depends(isVar, dep []bool)
}

// AtomicFunc is a registered atomic function.
type AtomicFunc[T ops.Float] struct {
	atom  Atomic[T]
	index int
}

// RegisterAtomic makes a available to tapes. Register every atomic
// function before Setup.
func RegisterAtomic[T ops.Float](a Atomic[T]) *AtomicFunc[T] {
	extMu.Lock()
	defer extMu.Unlock()
	f := &AtomicFunc[T]{atom: a, index: len(atomics)}
	atomics = append(atomics, a)
	logging.Default().Debug("atomic registered", "name", a.Name(), "index", f.index)
	return f
}

// Call evaluates the atomic function at ax and returns its m results.
//
// When some argument is on a tape the call is recorded as a block: an AFun
// operator, one FunAV or FunAP per argument, one FunRV or FunRP per result
// and a closing AFun.
func (f *AtomicFunc[T]) Call(ax []AD[T], m int) []AD[T] {
	n := len(ax)
	tx := make([]T, n)
	live := make([]AD[T], n)
	isVar := make([]bool, n)
	for j, a := range ax {
		live[j] = a.live()
		tx[j] = live[j].value
		isVar[j] = live[j].kind != Constant
	}
	ty := make([]T, m)
	ok := f.atom.Forward(0, 0, tx, ty)
	errhand.Usagef(ok, "atomic.Forward", "atomic %s cannot evaluate at %v", f.atom.Name(), tx)

	r := tapeOf(live...)
	if r == nil {
		return Consts(ty)
	}
	dep := make([]bool, m)
	if d, ok := f.atom.(Dependency); ok {
		d.Depends(isVar, dep)
	} else {
		for i := range dep {
			dep[i] = true
		}
	}

	r.PutOp(ops.AFun)
	r.PutArg(f.index, 0, n, m)
	for _, a := range live {
		if a.kind == Variable {
			r.PutOp(ops.FunAV)
		} else {
			r.PutOp(ops.FunAP)
		}
		r.PutArg(a.arg(r))
	}
	ay := make([]AD[T], m)
	for i, v := range ty {
		if !dep[i] {
			r.PutOp(ops.FunRP)
			r.PutArg(r.PutConPar(v))
			ay[i] = Const(v)
			continue
		}
		ay[i] = AD[T]{value: v, kind: Variable, tape: r, addr: r.PutOp(ops.FunRV)}
	}
	r.PutOp(ops.AFun)
	r.PutArg(f.index, 0, n, m)
	return ay
}

func atomicTable[T ops.Float]() []sweep.Atomic[T] {
	extMu.RLock()
	defer extMu.RUnlock()
	out := make([]sweep.Atomic[T], len(atomics))
	for i, a := range atomics {
		if at, ok := a.(Atomic[T]); ok {
			out[i] = at
		}
	}
	return out
}
