package ops

import "fmt"

// Cmp is the comparison used by a conditional expression.
type Cmp int

// Comparisons in the order they are encoded on the tape.
const (
	CmpLt Cmp = iota
	CmpLe
	CmpEq
	CmpGe
	CmpGt
	CmpNe
)

func (c Cmp) String() string {
	switch c {
	case CmpLt:
		return "<"
	case CmpLe:
		return "<="
	case CmpEq:
		return "=="
	case CmpGe:
		return ">="
	case CmpGt:
		return ">"
	case CmpNe:
		return "!="
	}
	return fmt.Sprintf("Cmp(%d)", int(c))
}

// Compare evaluates left c right.
func Compare[T Float](c Cmp, left, right T) bool {
	switch c {
	case CmpLt:
		return left < right
	case CmpLe:
		return left <= right
	case CmpEq:
		return left == right
	case CmpGe:
		return left >= right
	case CmpGt:
		return left > right
	case CmpNe:
		return left != right
	}
	panic(fmt.Sprintf("ops: unknown comparison %d", int(c)))
}

// CondExp returns ifTrue when left c right holds and ifFalse otherwise.
func CondExp[T Float](c Cmp, left, right, ifTrue, ifFalse T) T {
	if Compare(c, left, right) {
		return ifTrue
	}
	return ifFalse
}

// compareForward evaluates a recorded comparison at order zero. Comparisons
// are recorded so that the recorded outcome is always true; a false result
// on replay is a compare change.
func compareForward[T Float](op OpCode) ForwardFunc[T] {
	info := catalog[op]
	leftVar, rightVar := info.IsVarArg(0), info.IsVarArg(1)
	var c Cmp
	switch op {
	case Eqpp, Eqpv, Eqvv:
		c = CmpEq
	case Lepp, Lepv, Levp, Levv:
		c = CmpLe
	case Ltpp, Ltpv, Ltvp, Ltvv:
		c = CmpLt
	case Nepp, Nepv, Nevv:
		c = CmpNe
	default:
		panic("ops: " + op.String() + " is not a comparison")
	}
	return func(p, q, iz int, arg []int, f *Frame[T]) {
		if p > 0 {
			return
		}
		left := f.value(leftVar, arg[0])
		right := f.value(rightVar, arg[1])
		if !Compare(c, left, right) {
			f.Compare.changed(f.OpIndex)
		}
	}
}

// CompareOp returns the comparison operator to record for left c right
// given the outcome observed while recording, along with whether the
// arguments must be swapped. The returned operator's outcome is true at
// recording time; leftVar and rightVar select the argument variant.
func CompareOp(c Cmp, result, leftVar, rightVar bool) (op OpCode, swap bool) {
	// Reduce to <, <= and == on (left, right) or (right, left).
	var base Cmp
	switch c {
	case CmpGt:
		base, swap = CmpLt, true
	case CmpGe:
		base, swap = CmpLe, true
	default:
		base = c
	}
	switch base {
	case CmpLt:
		if !result {
			// !(a < b) is b <= a
			base, swap = CmpLe, !swap
		}
	case CmpLe:
		if !result {
			// !(a <= b) is b < a
			base, swap = CmpLt, !swap
		}
	case CmpEq:
		if !result {
			base = CmpNe
		}
	case CmpNe:
		if !result {
			base = CmpEq
		}
	}
	if swap {
		leftVar, rightVar = rightVar, leftVar
	}
	switch base {
	case CmpLt:
		return pick(Ltpp, Ltpv, Ltvp, Ltvv, leftVar, rightVar), swap
	case CmpLe:
		return pick(Lepp, Lepv, Levp, Levv, leftVar, rightVar), swap
	case CmpEq:
		if leftVar && !rightVar {
			return pick(Eqpp, Eqpv, Eqpv, Eqvv, leftVar, rightVar), !swap
		}
		return pick(Eqpp, Eqpv, Eqpv, Eqvv, leftVar, rightVar), swap
	default:
		if leftVar && !rightVar {
			return pick(Nepp, Nepv, Nepv, Nevv, leftVar, rightVar), !swap
		}
		return pick(Nepp, Nepv, Nepv, Nevv, leftVar, rightVar), swap
	}
}

func pick(pp, pv, vp, vv OpCode, leftVar, rightVar bool) OpCode {
	switch {
	case leftVar && rightVar:
		return vv
	case leftVar:
		return vp
	case rightVar:
		return pv
	default:
		return pp
	}
}
