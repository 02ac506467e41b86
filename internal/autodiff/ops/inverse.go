package ops

// Inverse trigonometric and hyperbolic kernels. Each stores a helper b at
// variable iz-1 such that b z' = +-x', which makes every order of z a
// closed-form recurrence:
//
//	Atan:  b = 1 + x^2
//	Atanh: b = 1 - x^2
//	Asin:  b = sqrt(1 - x^2)
//	Acos:  b = sqrt(1 - x^2), z' = -x'/b
//	Asinh: b = sqrt(1 + x^2)
//	Acosh: b = sqrt(x^2 - 1)

// ratioSeries fills order j of z given b with b z' = sign x':
//
//	z_j = (sign x_j - (1/j) sum_{k=1}^{j-1} k z_k b_{j-k}) / b_0
func ratioSeries[T Float](j int, x, z, b []T, sign T) {
	z[j] = 0
	for k := 1; k < j; k++ {
		z[j] -= T(k) * z[k] * b[j-k]
	}
	z[j] /= T(j)
	z[j] += sign * x[j]
	z[j] /= b[0]
}

// ratioSeriesReverse is the adjoint of ratioSeries at order j.
func ratioSeriesReverse[T Float](j int, z, b, px, pz, pb []T, invB0, sign T) {
	pz[j] = azmul(pz[j], invB0)
	px[j] += sign * pz[j]
	pb[0] -= azmul(pz[j], z[j])
	pz[j] /= T(j)
	for k := 1; k < j; k++ {
		pz[k] -= T(k) * azmul(pz[j], b[j-k])
		pb[j-k] -= T(k) * azmul(pz[j], z[k])
	}
}

// AtanOp: z = atan(x), b = 1 + x^2.
//
// Forward, j > 0:
//
//	b_j = 2 x_0 x_j + sum_{k=1}^{j-1} x_k x_{j-k}
//	z_j = (x_j - (1/j) sum_{k=1}^{j-1} k z_k b_{j-k}) / b_0
func atanForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, z, b := f.Tay(arg[0]), f.Tay(iz), f.Tay(iz-1)
	if p == 0 {
		z[0] = fatan(x[0])
		b[0] = 1 + x[0]*x[0]
		p++
	}
	squareSeries(p, q, x, z, b, 1)
}

func atanReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	squareSeriesReverse(d, f.Tay(arg[0]), f.Tay(iz), f.Tay(iz-1),
		f.Part(arg[0]), f.Part(iz), f.Part(iz-1), 1)
}

// AtanhOp: z = atanh(x), b = 1 - x^2.
func atanhForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, z, b := f.Tay(arg[0]), f.Tay(iz), f.Tay(iz-1)
	if p == 0 {
		z[0] = fatanh(x[0])
		b[0] = 1 - x[0]*x[0]
		p++
	}
	squareSeries(p, q, x, z, b, -1)
}

func atanhReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	squareSeriesReverse(d, f.Tay(arg[0]), f.Tay(iz), f.Tay(iz-1),
		f.Part(arg[0]), f.Part(iz), f.Part(iz-1), -1)
}

// squareSeries handles b = 1 + sign x^2.
func squareSeries[T Float](p, q int, x, z, b []T, sign T) {
	for j := p; j <= q; j++ {
		b[j] = 2 * x[0] * x[j]
		for k := 1; k < j; k++ {
			b[j] += x[k] * x[j-k]
		}
		b[j] *= sign
		ratioSeries(j, x, z, b, 1)
	}
}

func squareSeriesReverse[T Float](d int, x, z, b, px, pz, pb []T, sign T) {
	invB0 := 1 / b[0]
	for j := d; j > 0; j-- {
		ratioSeriesReverse(j, z, b, px, pz, pb, invB0, 1)
		// b_j = sign (2 x_0 x_j + sum_{k=1}^{j-1} x_k x_{j-k}); each cross
		// term appears twice in the sum.
		r := 2 * sign * pb[j]
		px[0] += azmul(r, x[j])
		px[j] += azmul(r, x[0])
		for k := 1; k < j; k++ {
			px[k] += azmul(r, x[j-k])
		}
	}
	px[0] += azmul(pz[0], invB0) + 2*sign*azmul(pb[0], x[0])
}

// rootSeries handles b = sqrt(c + sign x^2) for z with b z' = zsign x':
//
//	b_j = (q_j/2 - (1/j) sum_{k=1}^{j-1} k b_k b_{j-k}) / b_0
//	q_j = sign sum_{k=0}^{j} x_k x_{j-k}
func rootSeries[T Float](p, q int, x, z, b []T, sign, zsign T) {
	for j := p; j <= q; j++ {
		var qj T
		for k := 0; k <= j; k++ {
			qj += x[k] * x[j-k]
		}
		qj *= sign
		b[j] = 0
		for k := 1; k < j; k++ {
			b[j] -= T(k) * b[k] * b[j-k]
		}
		b[j] /= T(j)
		b[j] += qj / 2
		b[j] /= b[0]
		ratioSeries(j, x, z, b, zsign)
	}
}

func rootSeriesReverse[T Float](d int, x, z, b, px, pz, pb []T, sign, zsign T) {
	invB0 := 1 / b[0]
	for j := d; j > 0; j-- {
		ratioSeriesReverse(j, z, b, px, pz, pb, invB0, zsign)
		r := azmul(pb[j], invB0)
		pb[0] -= azmul(r, b[j])
		for k := 1; k < j; k++ {
			pb[k] -= azmul(r, b[j-k])
		}
		// d q_j / d x_k = 2 sign x_{j-k}, scaled by 1/2 from b_j.
		r *= sign
		for k := 0; k <= j; k++ {
			px[k] += azmul(r, x[j-k])
		}
	}
	// b_0 = sqrt(c + sign x_0^2), so d b_0 / d x_0 = sign x_0 / b_0.
	px[0] += zsign*azmul(pz[0], invB0) + sign*azmul(pb[0], x[0])*invB0
}

// AsinOp: z = asin(x), b = sqrt(1 - x^2).
func asinForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, z, b := f.Tay(arg[0]), f.Tay(iz), f.Tay(iz-1)
	if p == 0 {
		z[0] = fasin(x[0])
		b[0] = fsqrt(1 - x[0]*x[0])
		p++
	}
	rootSeries(p, q, x, z, b, -1, 1)
}

func asinReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	rootSeriesReverse(d, f.Tay(arg[0]), f.Tay(iz), f.Tay(iz-1),
		f.Part(arg[0]), f.Part(iz), f.Part(iz-1), -1, 1)
}

// AcosOp: z = acos(x), b = sqrt(1 - x^2).
func acosForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, z, b := f.Tay(arg[0]), f.Tay(iz), f.Tay(iz-1)
	if p == 0 {
		z[0] = facos(x[0])
		b[0] = fsqrt(1 - x[0]*x[0])
		p++
	}
	rootSeries(p, q, x, z, b, -1, -1)
}

func acosReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	rootSeriesReverse(d, f.Tay(arg[0]), f.Tay(iz), f.Tay(iz-1),
		f.Part(arg[0]), f.Part(iz), f.Part(iz-1), -1, -1)
}

// AsinhOp: z = asinh(x), b = sqrt(1 + x^2).
func asinhForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, z, b := f.Tay(arg[0]), f.Tay(iz), f.Tay(iz-1)
	if p == 0 {
		z[0] = fasinh(x[0])
		b[0] = fsqrt(1 + x[0]*x[0])
		p++
	}
	rootSeries(p, q, x, z, b, 1, 1)
}

func asinhReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	rootSeriesReverse(d, f.Tay(arg[0]), f.Tay(iz), f.Tay(iz-1),
		f.Part(arg[0]), f.Part(iz), f.Part(iz-1), 1, 1)
}

// AcoshOp: z = acosh(x), b = sqrt(x^2 - 1).
func acoshForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, z, b := f.Tay(arg[0]), f.Tay(iz), f.Tay(iz-1)
	if p == 0 {
		z[0] = facosh(x[0])
		b[0] = fsqrt(x[0]*x[0] - 1)
		p++
	}
	rootSeries(p, q, x, z, b, 1, 1)
}

func acoshReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	rootSeriesReverse(d, f.Tay(arg[0]), f.Tay(iz), f.Tay(iz-1),
		f.Part(arg[0]), f.Part(iz), f.Part(iz-1), 1, 1)
}
