package autodiff

import (
	"github.com/born-ml/adtape/internal/autodiff/ops"
)

// binary records x op y. vv, pv and vp are the argument variants of op;
// commutative operators pass vp == pv and record a variable left operand
// with the arguments swapped.
func binary[T ops.Float](x, y AD[T], vv, pv, vp ops.OpCode) AD[T] {
	v := ops.Binary(vv, x.value, y.value)
	r := tapeOf(x, y)
	switch {
	case x.kind == Variable && y.kind == Variable:
		return variable(r, v, vv, x.addr, y.addr)
	case x.kind == Variable && vp == pv:
		return variable(r, v, pv, y.par(r), x.addr)
	case x.kind == Variable:
		return variable(r, v, vp, x.addr, y.par(r))
	case y.kind == Variable:
		return variable(r, v, pv, x.par(r), y.addr)
	case r != nil:
		return dynamic(r, v, vv, x.par(r), y.par(r))
	}
	return Const(v)
}

// Add returns x + y.
func (x AD[T]) Add(y AD[T]) AD[T] {
	x, y = x.live(), y.live()
	switch {
	case x.isConst(0) && y.kind != Constant:
		return y
	case y.isConst(0) && x.kind != Constant:
		return x
	}
	return binary(x, y, ops.Addvv, ops.Addpv, ops.Addpv)
}

// Sub returns x - y.
func (x AD[T]) Sub(y AD[T]) AD[T] {
	x, y = x.live(), y.live()
	if y.isConst(0) && x.kind != Constant {
		return x
	}
	return binary(x, y, ops.Subvv, ops.Subpv, ops.Subvp)
}

// Mul returns x * y.
func (x AD[T]) Mul(y AD[T]) AD[T] {
	x, y = x.live(), y.live()
	if x.kind != Constant || y.kind != Constant {
		switch {
		case x.isConst(0) || y.isConst(0):
			return Const[T](0)
		case x.isConst(1):
			return y
		case y.isConst(1):
			return x
		}
	}
	return binary(x, y, ops.Mulvv, ops.Mulpv, ops.Mulpv)
}

// Div returns x / y.
func (x AD[T]) Div(y AD[T]) AD[T] {
	x, y = x.live(), y.live()
	if x.kind != Constant || y.kind != Constant {
		switch {
		case x.isConst(0):
			return Const[T](0)
		case y.isConst(1):
			return x
		}
	}
	return binary(x, y, ops.Divvv, ops.Divpv, ops.Divvp)
}

// Pow returns x raised to the power y.
func (x AD[T]) Pow(y AD[T]) AD[T] {
	x, y = x.live(), y.live()
	return binary(x, y, ops.Powvv, ops.Powpv, ops.Powvp)
}

// Neg returns -x.
func (x AD[T]) Neg() AD[T] {
	return unary(x, ops.Neg)
}

// Azmul returns the absolute zero product of x and y: zero when x is zero,
// even if y is infinite or NaN, and x * y otherwise.
func Azmul[T ops.Float](x, y AD[T]) AD[T] {
	x, y = x.live(), y.live()
	if x.isConst(0) {
		return Const[T](0)
	}
	return binary(x, y, ops.Zmulvv, ops.Zmulpv, ops.Zmulvp)
}
