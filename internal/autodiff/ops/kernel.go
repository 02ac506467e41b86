package ops

import (
	"io"

	"golang.org/x/exp/constraints"
)

// Float is the set of Base types a tape can be recorded in.
type Float = constraints.Float

// Frame holds the buffers a kernel reads and writes during one sweep.
//
// Taylor coefficients of variable i live in Taylor[i*Cap : (i+1)*Cap],
// order k at offset k. Partials of variable i live in
// Partial[i*NP : (i+1)*NP].
type Frame[T Float] struct {
	Taylor  []T
	Cap     int
	Partial []T
	NP      int

	// Par is the parameter table; index 0 is a NaN placeholder.
	Par []T

	// Skip is indexed by operator; CSkip sets entries at order zero.
	Skip []bool

	// OpIndex is the index of the operator being executed.
	OpIndex int

	Compare CompareState

	// Discrete holds the functions called by Dis operators.
	Discrete []func(T) T

	// Text and Print serve Pri operators.
	Text  []string
	Print io.Writer
}

// CompareState counts recorded comparisons whose outcome changed.
type CompareState struct {
	// Count selects which change is reported in OpIndex; 0 disables counting.
	Count int
	// Number of changes seen in the current zero order sweep.
	Number int
	// OpIndex of the Count-th change, 0 when there is none.
	OpIndex int
}

func (s *CompareState) changed(opIndex int) {
	if s.Count == 0 {
		return
	}
	s.Number++
	if s.Number == s.Count {
		s.OpIndex = opIndex
	}
}

// Tay returns the Taylor coefficients of variable i.
func (f *Frame[T]) Tay(i int) []T {
	return f.Taylor[i*f.Cap : (i+1)*f.Cap]
}

// Part returns the partials of variable i.
func (f *Frame[T]) Part(i int) []T {
	return f.Partial[i*f.NP : (i+1)*f.NP]
}

// coef returns the order k coefficient of an argument that is either a
// variable or a parameter. Parameters have no coefficients above order 0.
func (f *Frame[T]) coef(isVar bool, i, k int) T {
	if isVar {
		return f.Taylor[i*f.Cap+k]
	}
	if k == 0 {
		return f.Par[i]
	}
	return 0
}

// value returns the order 0 value of a variable or parameter argument.
func (f *Frame[T]) value(isVar bool, i int) T {
	return f.coef(isVar, i, 0)
}

// ForwardFunc computes orders p through q of the results of one operator.
// iz is the primary (last) result variable and arg the operator's arguments.
type ForwardFunc[T Float] func(p, q, iz int, arg []int, f *Frame[T])

// ReverseFunc accumulates partials of orders 0 through d from the results
// of one operator into its arguments.
type ReverseFunc[T Float] func(d, iz int, arg []int, f *Frame[T])

// Kernel is the per-operator entry of the dispatch table.
type Kernel[T Float] struct {
	Forward0   func(iz int, arg []int, f *Frame[T])
	ForwardAny ForwardFunc[T]
	Reverse    ReverseFunc[T]
}

// Table is a dispatch table indexed by OpCode.
type Table[T Float] [NumOpCode]Kernel[T]

func kernel[T Float](fwd ForwardFunc[T], rev ReverseFunc[T]) Kernel[T] {
	return Kernel[T]{
		Forward0: func(iz int, arg []int, f *Frame[T]) {
			fwd(0, 0, iz, arg, f)
		},
		ForwardAny: fwd,
		Reverse:    rev,
	}
}

func nopForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {}

func nopReverse[T Float](d, iz int, arg []int, f *Frame[T]) {}

// NewTable builds the dispatch table for Base type T.
func NewTable[T Float]() *Table[T] {
	nop := kernel[T](nopForward[T], nopReverse[T])
	return &Table[T]{
		Abs:    kernel[T](absForward[T], absReverse[T]),
		Acos:   kernel[T](acosForward[T], acosReverse[T]),
		Acosh:  kernel[T](acoshForward[T], acoshReverse[T]),
		Addpv:  kernel[T](addpvForward[T], addpvReverse[T]),
		Addvv:  kernel[T](addvvForward[T], addvvReverse[T]),
		AFun:   nop,
		Asin:   kernel[T](asinForward[T], asinReverse[T]),
		Asinh:  kernel[T](asinhForward[T], asinhReverse[T]),
		Atan:   kernel[T](atanForward[T], atanReverse[T]),
		Atanh:  kernel[T](atanhForward[T], atanhReverse[T]),
		Begin:  kernel[T](beginForward[T], nopReverse[T]),
		CExp:   kernel[T](cexpForward[T], cexpReverse[T]),
		Cos:    kernel[T](cosForward[T], cosReverse[T]),
		Cosh:   kernel[T](coshForward[T], coshReverse[T]),
		CSkip:  kernel[T](cskipForward[T], nopReverse[T]),
		CSum:   kernel[T](csumForward[T], csumReverse[T]),
		Dis:    kernel[T](disForward[T], nopReverse[T]),
		Divpv:  kernel[T](divpvForward[T], divpvReverse[T]),
		Divvp:  kernel[T](divvpForward[T], divvpReverse[T]),
		Divvv:  kernel[T](divvvForward[T], divvvReverse[T]),
		End:    nop,
		Eqpp:   kernel[T](compareForward[T](Eqpp), nopReverse[T]),
		Eqpv:   kernel[T](compareForward[T](Eqpv), nopReverse[T]),
		Eqvv:   kernel[T](compareForward[T](Eqvv), nopReverse[T]),
		Exp:    kernel[T](expForward[T], expReverse[T]),
		Expm1:  kernel[T](expm1Forward[T], expm1Reverse[T]),
		FunAP:  nop,
		FunAV:  nop,
		FunRP:  nop,
		FunRV:  nop,
		Inv:    nop,
		Lepp:   kernel[T](compareForward[T](Lepp), nopReverse[T]),
		Lepv:   kernel[T](compareForward[T](Lepv), nopReverse[T]),
		Levp:   kernel[T](compareForward[T](Levp), nopReverse[T]),
		Levv:   kernel[T](compareForward[T](Levv), nopReverse[T]),
		Log:    kernel[T](logForward[T], logReverse[T]),
		Log1p:  kernel[T](log1pForward[T], log1pReverse[T]),
		Ltpp:   kernel[T](compareForward[T](Ltpp), nopReverse[T]),
		Ltpv:   kernel[T](compareForward[T](Ltpv), nopReverse[T]),
		Ltvp:   kernel[T](compareForward[T](Ltvp), nopReverse[T]),
		Ltvv:   kernel[T](compareForward[T](Ltvv), nopReverse[T]),
		Mulpv:  kernel[T](mulpvForward[T], mulpvReverse[T]),
		Mulvv:  kernel[T](mulvvForward[T], mulvvReverse[T]),
		Neg:    kernel[T](negForward[T], negReverse[T]),
		Nepp:   kernel[T](compareForward[T](Nepp), nopReverse[T]),
		Nepv:   kernel[T](compareForward[T](Nepv), nopReverse[T]),
		Nevv:   kernel[T](compareForward[T](Nevv), nopReverse[T]),
		Par:    kernel[T](parForward[T], nopReverse[T]),
		Powpv:  kernel[T](powpvForward[T], powpvReverse[T]),
		Powvp:  kernel[T](powvpForward[T], powvpReverse[T]),
		Powvv:  kernel[T](powvvForward[T], powvvReverse[T]),
		Pri:    kernel[T](priForward[T], nopReverse[T]),
		Sign:   kernel[T](signForward[T], nopReverse[T]),
		Sin:    kernel[T](sinForward[T], sinReverse[T]),
		Sinh:   kernel[T](sinhForward[T], sinhReverse[T]),
		Sqrt:   kernel[T](sqrtForward[T], sqrtReverse[T]),
		Subpv:  kernel[T](subpvForward[T], subpvReverse[T]),
		Subvp:  kernel[T](subvpForward[T], subvpReverse[T]),
		Subvv:  kernel[T](subvvForward[T], subvvReverse[T]),
		Tan:    kernel[T](tanForward[T], tanReverse[T]),
		Tanh:   kernel[T](tanhForward[T], tanhReverse[T]),
		Zmulpv: kernel[T](zmulpvForward[T], zmulpvReverse[T]),
		Zmulvp: kernel[T](zmulvpForward[T], zmulvpReverse[T]),
		Zmulvv: kernel[T](zmulvvForward[T], zmulvvReverse[T]),
	}
}

// Complete reports the first opcode without kernels, if any.
func (t *Table[T]) Complete() (OpCode, bool) {
	for op := OpCode(0); op < NumOpCode; op++ {
		k := t[op]
		if k.Forward0 == nil || k.ForwardAny == nil || k.Reverse == nil {
			return op, false
		}
	}
	return NumOpCode, true
}
