package autodiff

import (
	"github.com/born-ml/adtape/internal/autodiff/ops"
)

func unary[T ops.Float](x AD[T], op ops.OpCode) AD[T] {
	x = x.live()
	v := ops.Unary(op, x.value)
	switch x.kind {
	case Variable:
		return variable(x.tape, v, op, x.addr)
	case Dynamic:
		return dynamic(x.tape, v, op, x.addr)
	}
	return Const(v)
}

// Abs returns |x|. Its derivative at zero is zero.
func Abs[T ops.Float](x AD[T]) AD[T] { return unary(x, ops.Abs) }

// Sign returns -1, 0 or 1 according to the sign of x.
func Sign[T ops.Float](x AD[T]) AD[T] { return unary(x, ops.Sign) }

// Sqrt returns the square root of x.
func Sqrt[T ops.Float](x AD[T]) AD[T] { return unary(x, ops.Sqrt) }

// Exp returns e**x.
func Exp[T ops.Float](x AD[T]) AD[T] { return unary(x, ops.Exp) }

// Expm1 returns e**x - 1.
func Expm1[T ops.Float](x AD[T]) AD[T] { return unary(x, ops.Expm1) }

// Log returns the natural logarithm of x.
func Log[T ops.Float](x AD[T]) AD[T] { return unary(x, ops.Log) }

// Log1p returns the natural logarithm of 1 + x.
func Log1p[T ops.Float](x AD[T]) AD[T] { return unary(x, ops.Log1p) }

// Sin returns the sine of x.
func Sin[T ops.Float](x AD[T]) AD[T] { return unary(x, ops.Sin) }

// Cos returns the cosine of x.
func Cos[T ops.Float](x AD[T]) AD[T] { return unary(x, ops.Cos) }

// Tan returns the tangent of x.
func Tan[T ops.Float](x AD[T]) AD[T] { return unary(x, ops.Tan) }

// Sinh returns the hyperbolic sine of x.
func Sinh[T ops.Float](x AD[T]) AD[T] { return unary(x, ops.Sinh) }

// Cosh returns the hyperbolic cosine of x.
func Cosh[T ops.Float](x AD[T]) AD[T] { return unary(x, ops.Cosh) }

// Tanh returns the hyperbolic tangent of x.
func Tanh[T ops.Float](x AD[T]) AD[T] { return unary(x, ops.Tanh) }

// Asin returns the arcsine of x, for |x| <= 1.
func Asin[T ops.Float](x AD[T]) AD[T] { return unary(x, ops.Asin) }

// Acos returns the arccosine of x, for |x| <= 1.
func Acos[T ops.Float](x AD[T]) AD[T] { return unary(x, ops.Acos) }

// Atan returns the arctangent of x.
func Atan[T ops.Float](x AD[T]) AD[T] { return unary(x, ops.Atan) }

// Asinh returns the inverse hyperbolic sine of x.
func Asinh[T ops.Float](x AD[T]) AD[T] { return unary(x, ops.Asinh) }

// Acosh returns the inverse hyperbolic cosine of x, for x >= 1.
func Acosh[T ops.Float](x AD[T]) AD[T] { return unary(x, ops.Acosh) }

// Atanh returns the inverse hyperbolic tangent of x, for |x| < 1.
func Atanh[T ops.Float](x AD[T]) AD[T] { return unary(x, ops.Atanh) }
