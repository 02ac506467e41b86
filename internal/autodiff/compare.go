package autodiff

import (
	"github.com/born-ml/adtape/internal/autodiff/ops"
)

// Cmp is the comparison of a conditional expression.
type Cmp = ops.Cmp

// Comparisons for CondExp.
const (
	Lt = ops.CmpLt
	Le = ops.CmpLe
	Eq = ops.CmpEq
	Ge = ops.CmpGe
	Gt = ops.CmpGt
	Ne = ops.CmpNe
)

// CondExp returns ifTrue when left c right holds and ifFalse otherwise,
// recorded so that the choice is made again on every replay.
//
// When left and right are both constants the choice is made now and
// nothing is recorded. Higher order coefficients follow the branch chosen
// at order zero.
func CondExp[T ops.Float](c Cmp, left, right, ifTrue, ifFalse AD[T]) AD[T] {
	left, right = left.live(), right.live()
	ifTrue, ifFalse = ifTrue.live(), ifFalse.live()
	if c == ops.CmpNe {
		c = ops.CmpEq
		ifTrue, ifFalse = ifFalse, ifTrue
	}
	cond := ops.Compare(c, left.value, right.value)
	if left.kind == Constant && right.kind == Constant {
		if cond {
			return ifTrue
		}
		return ifFalse
	}
	v := ifFalse.value
	if cond {
		v = ifTrue.value
	}

	r := tapeOf(left, right, ifTrue, ifFalse)
	if left.kind != Variable && right.kind != Variable &&
		ifTrue.kind != Variable && ifFalse.kind != Variable {
		return dynamic(r, v, ops.CExp, int(c),
			left.par(r), right.par(r), ifTrue.par(r), ifFalse.par(r))
	}

	flags := 0
	if left.kind == Variable {
		flags |= ops.CExpLeftVar
	}
	if right.kind == Variable {
		flags |= ops.CExpRightVar
	}
	if ifTrue.kind == Variable {
		flags |= ops.CExpTrueVar
	}
	if ifFalse.kind == Variable {
		flags |= ops.CExpFalseVar
	}
	if cond {
		flags |= ops.CExpRecorded
	}
	return variable(r, v, ops.CExp, int(c), flags,
		left.arg(r), right.arg(r), ifTrue.arg(r), ifFalse.arg(r))
}

// CondExpLt is CondExp(Lt, left, right, ifTrue, ifFalse).
func CondExpLt[T ops.Float](left, right, ifTrue, ifFalse AD[T]) AD[T] {
	return CondExp(ops.CmpLt, left, right, ifTrue, ifFalse)
}

// CondExpLe is CondExp(Le, left, right, ifTrue, ifFalse).
func CondExpLe[T ops.Float](left, right, ifTrue, ifFalse AD[T]) AD[T] {
	return CondExp(ops.CmpLe, left, right, ifTrue, ifFalse)
}

// CondExpEq is CondExp(Eq, left, right, ifTrue, ifFalse).
func CondExpEq[T ops.Float](left, right, ifTrue, ifFalse AD[T]) AD[T] {
	return CondExp(ops.CmpEq, left, right, ifTrue, ifFalse)
}

// CondExpGe is CondExp(Ge, left, right, ifTrue, ifFalse).
func CondExpGe[T ops.Float](left, right, ifTrue, ifFalse AD[T]) AD[T] {
	return CondExp(ops.CmpGe, left, right, ifTrue, ifFalse)
}

// CondExpGt is CondExp(Gt, left, right, ifTrue, ifFalse).
func CondExpGt[T ops.Float](left, right, ifTrue, ifFalse AD[T]) AD[T] {
	return CondExp(ops.CmpGt, left, right, ifTrue, ifFalse)
}

// compare evaluates x c y. When either operand is on the tape, the
// comparison is recorded with its outcome so that replays can count
// comparisons that turn out differently.
func (x AD[T]) compare(c ops.Cmp, y AD[T]) bool {
	x, y = x.live(), y.live()
	result := ops.Compare(c, x.value, y.value)
	r := tapeOf(x, y)
	if r == nil {
		return result
	}
	op, swap := ops.CompareOp(c, result, x.kind == Variable, y.kind == Variable)
	left, right := x, y
	if swap {
		left, right = y, x
	}
	r.PutOp(op)
	r.PutArg(left.arg(r), right.arg(r))
	return result
}

// Lt reports whether x < y.
func (x AD[T]) Lt(y AD[T]) bool { return x.compare(ops.CmpLt, y) }

// Le reports whether x <= y.
func (x AD[T]) Le(y AD[T]) bool { return x.compare(ops.CmpLe, y) }

// Eq reports whether x == y.
func (x AD[T]) Eq(y AD[T]) bool { return x.compare(ops.CmpEq, y) }

// Ne reports whether x != y.
func (x AD[T]) Ne(y AD[T]) bool { return x.compare(ops.CmpNe, y) }

// Ge reports whether x >= y.
func (x AD[T]) Ge(y AD[T]) bool { return x.compare(ops.CmpGe, y) }

// Gt reports whether x > y.
func (x AD[T]) Gt(y AD[T]) bool { return x.compare(ops.CmpGt, y) }

// PrintFor records a print operator. During every zero order replay in
// which pos is not positive, the function writes before, the value of val
// and after to its print writer. Without a value on the tape nothing is
// recorded.
func PrintFor[T ops.Float](pos AD[T], before string, val AD[T], after string) {
	pos, val = pos.live(), val.live()
	r := tapeOf(pos, val)
	if r == nil {
		return
	}
	flags := 0
	if pos.kind == Variable {
		flags |= ops.PriPosVar
	}
	if val.kind == Variable {
		flags |= ops.PriValueVar
	}
	r.PutOp(ops.Pri)
	r.PutArg(flags, pos.arg(r), r.PutTxt(before), val.arg(r), r.PutTxt(after))
}
