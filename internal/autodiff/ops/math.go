package ops

import "math"

// Azmul is absolute-zero multiplication: zero whenever x is zero, even if
// y is infinite or NaN.
func Azmul[T Float](x, y T) T {
	return azmul(x, y)
}

func azmul[T Float](x, y T) T {
	if x == 0 {
		return 0
	}
	return x * y
}

// SignOf returns -1, 0 or 1.
func SignOf[T Float](x T) T {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func nan[T Float]() T { return T(math.NaN()) }

func fsin[T Float](x T) T   { return T(math.Sin(float64(x))) }
func fcos[T Float](x T) T   { return T(math.Cos(float64(x))) }
func fsinh[T Float](x T) T  { return T(math.Sinh(float64(x))) }
func fcosh[T Float](x T) T  { return T(math.Cosh(float64(x))) }
func ftan[T Float](x T) T   { return T(math.Tan(float64(x))) }
func ftanh[T Float](x T) T  { return T(math.Tanh(float64(x))) }
func fasin[T Float](x T) T  { return T(math.Asin(float64(x))) }
func facos[T Float](x T) T  { return T(math.Acos(float64(x))) }
func fatan[T Float](x T) T  { return T(math.Atan(float64(x))) }
func fasinh[T Float](x T) T { return T(math.Asinh(float64(x))) }
func facosh[T Float](x T) T { return T(math.Acosh(float64(x))) }
func fatanh[T Float](x T) T { return T(math.Atanh(float64(x))) }
func fexp[T Float](x T) T   { return T(math.Exp(float64(x))) }
func fexpm1[T Float](x T) T { return T(math.Expm1(float64(x))) }
func flog[T Float](x T) T   { return T(math.Log(float64(x))) }
func flog1p[T Float](x T) T { return T(math.Log1p(float64(x))) }
func fsqrt[T Float](x T) T  { return T(math.Sqrt(float64(x))) }
func fpow[T Float](x, y T) T {
	return T(math.Pow(float64(x), float64(y)))
}

// Unary evaluates a unary operator on a Base value. It is used for
// constants and dynamic parameters, where no Taylor coefficients exist.
func Unary[T Float](op OpCode, x T) T {
	switch op {
	case Abs:
		return T(math.Abs(float64(x)))
	case Acos:
		return facos(x)
	case Acosh:
		return facosh(x)
	case Asin:
		return fasin(x)
	case Asinh:
		return fasinh(x)
	case Atan:
		return fatan(x)
	case Atanh:
		return fatanh(x)
	case Cos:
		return fcos(x)
	case Cosh:
		return fcosh(x)
	case Exp:
		return fexp(x)
	case Expm1:
		return fexpm1(x)
	case Log:
		return flog(x)
	case Log1p:
		return flog1p(x)
	case Neg:
		return -x
	case Sign:
		return SignOf(x)
	case Sin:
		return fsin(x)
	case Sinh:
		return fsinh(x)
	case Sqrt:
		return fsqrt(x)
	case Tan:
		return ftan(x)
	case Tanh:
		return ftanh(x)
	}
	panic("ops: " + op.String() + " is not a unary operator")
}

// Binary evaluates a binary arithmetic operator on Base values.
// op may be any argument variant (e.g. Addvv or Addpv).
func Binary[T Float](op OpCode, x, y T) T {
	switch op {
	case Addpv, Addvv:
		return x + y
	case Subpv, Subvp, Subvv:
		return x - y
	case Mulpv, Mulvv:
		return x * y
	case Divpv, Divvp, Divvv:
		return x / y
	case Powpv, Powvp, Powvv:
		return fpow(x, y)
	case Zmulpv, Zmulvp, Zmulvv:
		return azmul(x, y)
	}
	panic("ops: " + op.String() + " is not a binary operator")
}
