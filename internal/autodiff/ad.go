// Package autodiff records computations on tagged scalar values and replays
// them as Taylor coefficient sweeps.
//
// A computation starts with Independent, which opens a tape and returns the
// independent variables. Every operation on a value that is a Variable of
// the open tape appends an operator; operations on parameters are computed
// immediately. NewFunction closes the tape:
//
//	x := autodiff.Independent([]float64{3, 4})
//	y := x[0].Mul(x[0]).Add(x[1].Mul(x[1]))
//	f := autodiff.NewFunction(x, []autodiff.AD[float64]{y})
//	defer f.Close()
//
//	f.Forward(0, []float64{3, 4})      // y = 25
//	f.Forward(1, []float64{1, 0})      // dy/dx0 = 6
//	f.Reverse(1, []float64{1})         // [6, 8]
//
// A tape belongs to the goroutine that opened it. Functions are replayed
// by one goroutine at a time; use Clone to obtain one per worker.
package autodiff

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/born-ml/adtape/internal/autodiff/ops"
	"github.com/born-ml/adtape/internal/autodiff/tape"
	"github.com/born-ml/adtape/internal/errhand"
)

// Kind classifies a tagged value.
type Kind uint8

const (
	// Constant values are fixed when the tape is recorded.
	Constant Kind = iota
	// Dynamic values are parameters that Function.NewDynamic can change
	// without recording again.
	Dynamic
	// Variable values are tracked through the tape and differentiated.
	Variable
)

func (k Kind) String() string {
	switch k {
	case Constant:
		return "constant"
	case Dynamic:
		return "dynamic"
	case Variable:
		return "variable"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// AD is a tagged value of Base type T.
//
// The zero value is the constant zero. AD values are small and passed by
// value.
type AD[T ops.Float] struct {
	value T
	kind  Kind
	tape  *tape.Recorder[T]
	// addr is the variable index of a Variable or the parameter index of
	// a Dynamic.
	addr int
}

// Const returns the constant v.
func Const[T ops.Float](v T) AD[T] {
	return AD[T]{value: v}
}

// Consts returns the constants in v.
func Consts[T ops.Float](v []T) []AD[T] {
	out := make([]AD[T], len(v))
	for i, x := range v {
		out[i] = Const(x)
	}
	return out
}

// Independent opens a tape and returns its independent variables with
// values x.
//
// Tapes are not bound to goroutines: every call opens a new tape, even
// while the calling goroutine is still recording another one. The caller
// keeps one tape per goroutine; mixing values of two tapes is a usage
// error.
func Independent[T ops.Float](x []T) []AD[T] {
	xs, _ := IndependentDynamic(x, nil)
	return xs
}

// IndependentDynamic opens a tape with independent variables x and
// independent dynamic parameters dyn.
func IndependentDynamic[T ops.Float](x, dyn []T) (xs, ds []AD[T]) {
	errhand.Usage(len(x) > 0, "len(x) > 0", "a tape needs at least one independent variable")
	r := tape.New[T]()
	ds = make([]AD[T], len(dyn))
	for i, v := range dyn {
		ds[i] = AD[T]{value: v, kind: Dynamic, tape: r, addr: r.PutDynInd(v)}
	}
	xs = make([]AD[T], len(x))
	for j, v := range x {
		xs[j] = AD[T]{value: v, kind: Variable, tape: r, addr: r.PutOp(ops.Inv)}
	}
	return xs, ds
}

// Abort discards the open tape that x belongs to. Values recorded on it
// become constants.
func Abort[T ops.Float](x AD[T]) {
	if x.kind != Constant {
		x.tape.Abort()
	}
}

// Value returns the Base value.
func (a AD[T]) Value() T {
	return a.value
}

// Kind returns the classification of a, taking into account that values
// of a closed tape are constants.
func (a AD[T]) Kind() Kind {
	return a.live().kind
}

// IsConstant reports whether a is a constant.
func (a AD[T]) IsConstant() bool {
	return a.Kind() == Constant
}

// IsDynamic reports whether a is a dynamic parameter of the open tape.
func (a AD[T]) IsDynamic() bool {
	return a.Kind() == Dynamic
}

// IsVariable reports whether a is a variable of the open tape.
func (a AD[T]) IsVariable() bool {
	return a.Kind() == Variable
}

// Addr returns the variable index of a Variable or the parameter index of
// a Dynamic. Constants have no address.
func (a AD[T]) Addr() int {
	a = a.live()
	errhand.Usage(a.kind != Constant, "!a.IsConstant()", "a constant has no tape address")
	return a.addr
}

// TapeID returns the identity of the tape a belongs to, or uuid.Nil for
// constants.
func (a AD[T]) TapeID() uuid.UUID {
	a = a.live()
	if a.kind == Constant {
		return uuid.Nil
	}
	return a.tape.ID()
}

func (a AD[T]) String() string {
	return fmt.Sprintf("%v(%s)", float64(a.value), a.Kind())
}

// live returns a with its classification downgraded to Constant when its
// tape is no longer recording.
func (a AD[T]) live() AD[T] {
	if a.kind != Constant && !a.tape.Recording() {
		return Const(a.value)
	}
	return a
}

// isConst reports whether a is the constant v.
func (a AD[T]) isConst(v T) bool {
	return a.kind == Constant && a.value == v
}

// par returns the parameter index of a, which must not be a Variable.
func (a AD[T]) par(s tape.Sink[T]) int {
	if a.kind == Dynamic {
		return a.addr
	}
	return s.PutConPar(a.value)
}

// arg returns the variable index of a Variable and the parameter index
// otherwise.
func (a AD[T]) arg(s tape.Sink[T]) int {
	if a.kind == Variable {
		return a.addr
	}
	return a.par(s)
}

// tapeOf returns the tape shared by the non-constant values in vals, or
// nil when every value is constant. Values of two different tapes are a
// usage error. vals must already be live.
func tapeOf[T ops.Float](vals ...AD[T]) *tape.Recorder[T] {
	var r *tape.Recorder[T]
	for _, v := range vals {
		if v.kind == Constant {
			continue
		}
		if r == nil {
			r = v.tape
			continue
		}
		errhand.Usagef(v.tape == r, "x.TapeID() == y.TapeID()",
			"tape mismatch: operands belong to tapes %s and %s", r.ID(), v.tape.ID())
	}
	return r
}

// variable appends op with args and returns its primary result.
func variable[T ops.Float](r *tape.Recorder[T], v T, op ops.OpCode, args ...int) AD[T] {
	z := r.PutOp(op)
	r.PutArg(args...)
	return AD[T]{value: v, kind: Variable, tape: r, addr: z}
}

// dynamic appends a dynamic parameter derived by op from args.
func dynamic[T ops.Float](r *tape.Recorder[T], v T, op ops.OpCode, args ...int) AD[T] {
	return AD[T]{value: v, kind: Dynamic, tape: r, addr: r.PutDynPar(v, op, args...)}
}
