package autodiff

import (
	"io"
	"math"
	"os"

	"github.com/pkg/errors"

	"github.com/born-ml/adtape/internal/arena"
	"github.com/born-ml/adtape/internal/autodiff/ops"
	"github.com/born-ml/adtape/internal/autodiff/sweep"
	"github.com/born-ml/adtape/internal/autodiff/tape"
	"github.com/born-ml/adtape/internal/config"
	"github.com/born-ml/adtape/internal/errhand"
	"github.com/born-ml/adtape/internal/logging"
	"github.com/born-ml/adtape/internal/metrics"
)

// ErrNotANumber is returned by Forward when a zero order dependent value
// is NaN and NaN checking is enabled.
var ErrNotANumber = errors.New("autodiff: dependent value is not a number")

// Function is the replayable form of a finished tape.
//
// The operator sequence is shared by clones and never modified in place.
// The Taylor coefficients, partials, skip flags and parameter values are
// private to each Function and come from its arena; Close returns them.
type Function[T ops.Float] struct {
	player *tape.Player[T]
	dep    []int
	// depPar[i] is set when dependent i was a parameter when recorded.
	depPar []bool

	state sweep.State[T]
	arena *arena.Arena
	opts  functionOptions

	// order is the number of orders computed by the last Forward.
	order  int
	closed bool
}

// FunctionOption configures a Function.
type FunctionOption func(*functionOptions)

type functionOptions struct {
	arena    *arena.Arena
	cfg      config.Config
	checkNaN *bool
	print    io.Writer
}

// WithArena takes the function's buffers from a instead of the arena of
// worker 0.
func WithArena(a *arena.Arena) FunctionOption {
	return func(o *functionOptions) {
		o.arena = a
	}
}

// WithConfig sets the replay and optimizer defaults.
func WithConfig(cfg config.Config) FunctionOption {
	return func(o *functionOptions) {
		o.cfg = cfg
	}
}

// WithCheckNaN overrides Config.Forward.CheckForNaN.
func WithCheckNaN(check bool) FunctionOption {
	return func(o *functionOptions) {
		o.checkNaN = &check
	}
}

// WithPrintWriter sets the destination of PrintFor output. The default is
// os.Stdout.
func WithPrintWriter(w io.Writer) FunctionOption {
	return func(o *functionOptions) {
		o.print = w
	}
}

// NewFunction stops recording the tape of x and returns the function from
// the independent variables x to the dependents y.
//
// x must be the slice returned by Independent. Dependents that are not
// variables are recorded as parameters; their derivatives are zero.
func NewFunction[T ops.Float](x, y []AD[T], opts ...FunctionOption) *Function[T] {
	errhand.Usage(len(x) > 0, "len(x) > 0", "no independent variables")
	r := x[0].tape
	errhand.Usage(r != nil && r.Recording(), "x[0].IsVariable()",
		"independent variables do not belong to an open tape")
	errhand.Usagef(len(x) == r.NumInd(), "len(x) == NumInd",
		"got %d independent variables, tape has %d", len(x), r.NumInd())
	for j, a := range x {
		errhand.Usagef(a.kind == Variable && a.tape == r && a.addr == j+1,
			"x[j].Addr() == j+1", "x[%d] is not independent variable %d of the tape", j, j)
	}

	dep := make([]int, len(y))
	depPar := make([]bool, len(y))
	for i, a := range y {
		if a.kind != Constant {
			errhand.Usagef(a.tape == r, "y[i].TapeID() == x[0].TapeID()",
				"tape mismatch: dependent %d belongs to tape %s", i, a.tape.ID())
		}
		if a.kind == Variable {
			dep[i] = a.addr
			continue
		}
		dep[i] = variable(r, a.value, ops.Par, a.par(r)).addr
		depPar[i] = true
	}
	return newFunction(r.Finish(), dep, depPar, opts...)
}

func newFunction[T ops.Float](p *tape.Player[T], dep []int, depPar []bool, opts ...FunctionOption) *Function[T] {
	o := functionOptions{cfg: config.Default(), print: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.arena == nil {
		o.arena = arena.Worker(0)
	}
	if o.checkNaN == nil {
		check := o.cfg.Forward.CheckForNaN
		o.checkNaN = &check
	}

	f := &Function[T]{
		dep:    dep,
		depPar: depPar,
		arena:  o.arena,
		opts:   o,
	}
	f.state.Table = ops.NewTable[T]()
	f.state.Atomics = atomicTable[T]()
	fr := &f.state.Frame
	fr.Discrete = discreteTable[T]()
	fr.Print = o.print
	fr.Compare.Count = o.cfg.Forward.CompareChangeCount
	f.setPlayer(p)
	return f
}

// setPlayer replaces the player and sizes the coefficient buffers for it.
// Previously computed orders are discarded.
func (f *Function[T]) setPlayer(p *tape.Player[T]) {
	f.player = p
	f.state.Player = p
	fr := &f.state.Frame
	fr.Text = p.Text
	if n := len(fr.Par); n != len(p.Par) {
		// Parameters both tables share keep their current values.
		fr.Par = arena.Grow(f.arena, fr.Par, len(p.Par))
		if len(p.Par) > n {
			copy(fr.Par[n:], p.Par[n:])
		}
	}
	arena.Put(f.arena, fr.Skip)
	fr.Skip = arena.Get[bool](f.arena, p.NumOp())
	c := max(fr.Cap, 1)
	arena.Put(f.arena, fr.Taylor)
	fr.Taylor = arena.Get[T](f.arena, p.NumVar*c)
	fr.Cap = c
	f.order = 0
}

func (f *Function[T]) checkOpen() {
	errhand.Usage(!f.closed, "!f.closed", "function is closed")
}

// Forward computes Taylor coefficients of the dependents.
//
// When len(xq) is Domain(), xq holds order q of the independents and
// orders 0..q-1 must have been computed by earlier calls; the result holds
// order q of the dependents. When len(xq) is Domain()*(q+1), xq[j*(q+1)+k]
// is order k of independent j, orders 0..q are recomputed and the result
// has the same layout.
//
// Order zero evaluates the conditional skips and counts compare changes.
// With NaN checking enabled, a NaN zero order dependent makes Forward
// return ErrNotANumber along with the coefficients.
func (f *Function[T]) Forward(q int, xq []T) ([]T, error) {
	f.checkOpen()
	n, m, w := f.Domain(), f.Range(), q+1
	errhand.Usagef(q >= 0, "q >= 0", "negative order %d", q)
	full := len(xq) == n*w
	errhand.Usagef(full || len(xq) == n, "len(xq) == n || len(xq) == n*(q+1)",
		"got %d values for %d independents at order %d", len(xq), n, q)
	p := 0
	if !full {
		p = q
		errhand.Usagef(q <= f.order, "q <= SizeOrder()",
			"order %d needs orders 0..%d, %d computed", q, q-1, f.order)
	}
	if w > f.state.Frame.Cap {
		f.CapacityOrder(w)
	}

	fr := &f.state.Frame
	for j := 0; j < n; j++ {
		x := fr.Tay(j + 1)
		if full {
			copy(x[:w], xq[j*w:(j+1)*w])
		} else {
			x[q] = xq[j]
		}
	}
	if err := sweep.Forward(&f.state, p, q); err != nil {
		// Orders p..q are partly overwritten.
		f.order = p
		return nil, errors.Wrapf(err, "forward orders %d..%d", p, q)
	}
	f.order = w

	if p == 0 && fr.Compare.Number > 0 {
		metrics.CompareChanges.Add(float64(fr.Compare.Number))
		logging.Default().Debug("compare change",
			"tape", f.player.ID,
			"number", fr.Compare.Number,
			"op_index", fr.Compare.OpIndex)
	}

	var y []T
	if full {
		y = make([]T, m*w)
		for i, v := range f.dep {
			copy(y[i*w:(i+1)*w], fr.Tay(v)[:w])
		}
	} else {
		y = make([]T, m)
		for i, v := range f.dep {
			y[i] = fr.Tay(v)[q]
		}
	}
	if p == 0 && *f.opts.checkNaN {
		for i, v := range f.dep {
			if math.IsNaN(float64(fr.Tay(v)[0])) {
				return y, errors.Wrapf(ErrNotANumber, "dependent %d", i)
			}
		}
	}
	return y, nil
}

// Reverse computes the partials of a weighted sum of dependent Taylor
// coefficients with respect to the independent coefficients.
//
// The last Forward must have computed at least q orders. When len(w) is
// Range(), w weights order q-1 of each dependent; when it is Range()*q,
// w[i*q+k] weights order k of dependent i. The result dw[j*q+k] is the
// partial with respect to order k of independent j.
func (f *Function[T]) Reverse(q int, w []T) []T {
	f.checkOpen()
	n, m := f.Domain(), f.Range()
	errhand.Usagef(q >= 1 && q <= f.order, "1 <= q <= SizeOrder()",
		"reverse of %d orders after forward computed %d", q, f.order)
	errhand.Usagef(len(w) == m || len(w) == m*q, "len(w) == m || len(w) == m*q",
		"got %d weights for %d dependents and %d orders", len(w), m, q)

	fr := &f.state.Frame
	fr.NP = q
	fr.Partial = arena.Get[T](f.arena, f.player.NumVar*q)
	defer func() {
		arena.Put(f.arena, fr.Partial)
		fr.Partial = nil
	}()
	for i, v := range f.dep {
		pv := fr.Part(v)
		if len(w) == m {
			pv[q-1] += w[i]
			continue
		}
		for k := 0; k < q; k++ {
			pv[k] += w[i*q+k]
		}
	}
	err := sweep.Reverse(&f.state, q-1)
	errhand.Usagef(err == nil, "reverse sweep", "%v", err)

	dw := make([]T, n*q)
	for j := 1; j <= n; j++ {
		copy(dw[(j-1)*q:j*q], fr.Part(j)[:q])
	}
	return dw
}

// NewDynamic replaces the independent dynamic parameters and recomputes
// every parameter derived from them. Taylor coefficients computed before
// the call are discarded.
func (f *Function[T]) NewDynamic(dyn []T) {
	f.checkOpen()
	fr := &f.state.Frame
	f.player.SetDynamic(fr.Par, dyn, fr.Discrete)
	f.order = 0
}

// CapacityOrder sets the number of Taylor orders the function can hold.
// Orders below c computed earlier are kept; c == 0 releases the buffer.
func (f *Function[T]) CapacityOrder(c int) {
	f.checkOpen()
	errhand.Usagef(c >= 0, "c >= 0", "negative capacity %d", c)
	fr := &f.state.Frame
	if c == fr.Cap {
		return
	}
	nv := f.player.NumVar
	taylor := arena.Get[T](f.arena, nv*c)
	keep := min(c, fr.Cap, f.order)
	for i := 0; i < nv; i++ {
		copy(taylor[i*c:i*c+keep], fr.Taylor[i*fr.Cap:i*fr.Cap+keep])
	}
	arena.Put(f.arena, fr.Taylor)
	fr.Taylor, fr.Cap = taylor, c
	f.order = keep
}

// CompareChangeCount selects which compare change CompareChangeOpIndex
// reports: the n-th one of the next zero order Forward. Zero turns
// compare change tracking off.
func (f *Function[T]) CompareChangeCount(n int) {
	errhand.Usagef(n >= 0, "n >= 0", "negative compare change count %d", n)
	f.state.Frame.Compare.Count = n
}

// CompareChangeNumber returns the number of recorded comparisons whose
// outcome differed in the last zero order Forward.
func (f *Function[T]) CompareChangeNumber() int {
	return f.state.Frame.Compare.Number
}

// CompareChangeOpIndex returns the operator index of the compare change
// selected by CompareChangeCount, or zero when there was none.
func (f *Function[T]) CompareChangeOpIndex() int {
	return f.state.Frame.Compare.OpIndex
}

// SizeOrder returns the number of orders computed by the last Forward.
func (f *Function[T]) SizeOrder() int { return f.order }

// SizeVar returns the number of variables, the phantom included.
func (f *Function[T]) SizeVar() int { return f.player.NumVar }

// SizeOp returns the number of operators, Begin and End included.
func (f *Function[T]) SizeOp() int { return f.player.NumOp() }

// SizePar returns the size of the parameter table.
func (f *Function[T]) SizePar() int { return len(f.player.Par) }

// SizeDynInd returns the number of independent dynamic parameters.
func (f *Function[T]) SizeDynInd() int { return f.player.NumDynInd }

// Domain returns the number of independent variables.
func (f *Function[T]) Domain() int { return f.player.NumInd }

// Range returns the number of dependents.
func (f *Function[T]) Range() int { return len(f.dep) }

// DependentIsParameter reports whether dependent i was recorded as a
// parameter, in which case its derivatives are zero.
func (f *Function[T]) DependentIsParameter(i int) bool { return f.depPar[i] }

// Parameter returns the current value of parameter i.
func (f *Function[T]) Parameter(i int) T {
	fr := &f.state.Frame
	errhand.Usagef(i >= 0 && i < len(fr.Par), "i < SizePar()",
		"parameter %d out of range [0, %d)", i, len(fr.Par))
	return fr.Par[i]
}

// Clone returns a function replaying the same tape with its own buffers
// and the current dynamic parameter values. Options default to those of
// f; pass WithArena to give the clone a worker's arena.
func (f *Function[T]) Clone(opts ...FunctionOption) *Function[T] {
	f.checkOpen()
	o := f.opts
	o.arena = nil
	all := append([]FunctionOption{func(fo *functionOptions) { *fo = o }}, opts...)
	g := newFunction(f.player, f.dep, f.depPar, all...)
	copy(g.state.Frame.Par, f.state.Frame.Par)
	g.state.Frame.Compare.Count = f.state.Frame.Compare.Count
	return g
}

// Close returns the function's buffers to its arena. The function cannot
// be used afterwards.
func (f *Function[T]) Close() {
	if f.closed {
		return
	}
	fr := &f.state.Frame
	arena.Put(f.arena, fr.Taylor)
	arena.Put(f.arena, fr.Skip)
	arena.Put(f.arena, fr.Par)
	fr.Taylor, fr.Skip, fr.Par = nil, nil, nil
	f.closed = true
}
