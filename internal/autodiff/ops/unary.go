package ops

// Single-result unary kernels. arg[0] is the variable index of x.

// AbsOp: z = |x|.
//
// Forward: z_k = sign(x_0) x_k.
func absForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, z := f.Tay(arg[0]), f.Tay(iz)
	s := SignOf(x[0])
	for k := p; k <= q; k++ {
		z[k] = s * x[k]
	}
}

func absReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	x := f.Tay(arg[0])
	px, pz := f.Part(arg[0]), f.Part(iz)
	s := SignOf(x[0])
	for k := d; k >= 0; k-- {
		px[k] += azmul(pz[k], s)
	}
}

// NegOp: z = -x.
func negForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, z := f.Tay(arg[0]), f.Tay(iz)
	for k := p; k <= q; k++ {
		z[k] = -x[k]
	}
}

func negReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	px, pz := f.Part(arg[0]), f.Part(iz)
	for k := d; k >= 0; k-- {
		px[k] -= pz[k]
	}
}

// SignOp: z = sign(x). Every derivative is zero.
func signForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, z := f.Tay(arg[0]), f.Tay(iz)
	if p == 0 {
		z[0] = SignOf(x[0])
		p++
	}
	for k := p; k <= q; k++ {
		z[k] = 0
	}
}

// ExpOp: z = exp(x).
//
// Forward: z_j = (1/j) sum_{k=1}^{j} k x_k z_{j-k}.
func expForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, z := f.Tay(arg[0]), f.Tay(iz)
	if p == 0 {
		z[0] = fexp(x[0])
		p++
	}
	expSeries(p, q, x, z)
}

func expReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	expSeriesReverse(d, f.Tay(arg[0]), f.Tay(iz), f.Part(arg[0]), f.Part(iz))
}

// expSeries fills orders p..q (p >= 1) of z = exp(x).
func expSeries[T Float](p, q int, x, z []T) {
	for j := p; j <= q; j++ {
		z[j] = x[1] * z[j-1]
		for k := 2; k <= j; k++ {
			z[j] += T(k) * x[k] * z[j-k]
		}
		z[j] /= T(j)
	}
}

// expSeriesReverse is the adjoint of expSeries including order zero.
func expSeriesReverse[T Float](d int, x, z, px, pz []T) {
	for j := d; j > 0; j-- {
		pz[j] /= T(j)
		for k := 1; k <= j; k++ {
			px[k] += T(k) * azmul(pz[j], z[j-k])
			pz[j-k] += T(k) * azmul(pz[j], x[k])
		}
	}
	px[0] += azmul(pz[0], z[0])
}

// Expm1Op: z = exp(x) - 1.
//
// Forward: z_j = x_j + (1/j) sum_{k=1}^{j} k x_k z_{j-k}.
func expm1Forward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, z := f.Tay(arg[0]), f.Tay(iz)
	if p == 0 {
		z[0] = fexpm1(x[0])
		p++
	}
	for j := p; j <= q; j++ {
		z[j] = x[1] * z[j-1]
		for k := 2; k <= j; k++ {
			z[j] += T(k) * x[k] * z[j-k]
		}
		z[j] /= T(j)
		z[j] += x[j]
	}
}

func expm1Reverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	x, z := f.Tay(arg[0]), f.Tay(iz)
	px, pz := f.Part(arg[0]), f.Part(iz)
	for j := d; j > 0; j-- {
		px[j] += pz[j]
		pz[j] /= T(j)
		for k := 1; k <= j; k++ {
			px[k] += T(k) * azmul(pz[j], z[j-k])
			pz[j-k] += T(k) * azmul(pz[j], x[k])
		}
	}
	px[0] += pz[0] + azmul(pz[0], z[0])
}

// LogOp: z = log(x).
//
// Forward: z_j = (x_j - (1/j) sum_{k=1}^{j-1} k z_k x_{j-k}) / x_0.
func logForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, z := f.Tay(arg[0]), f.Tay(iz)
	if p == 0 {
		z[0] = flog(x[0])
		p++
	}
	logSeries(p, q, x, z, x[0])
}

// logSeries fills orders p..q of z = log(b) where b_k = x_k for k > 0
// and b_0 = b0.
func logSeries[T Float](p, q int, x, z []T, b0 T) {
	for j := p; j <= q; j++ {
		z[j] = 0
		for k := 1; k < j; k++ {
			z[j] -= T(k) * z[k] * x[j-k]
		}
		z[j] /= T(j)
		z[j] += x[j]
		z[j] /= b0
	}
}

func logReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	x := f.Tay(arg[0])
	logSeriesReverse(d, x, f.Tay(iz), f.Part(arg[0]), f.Part(iz), x[0])
}

// logSeriesReverse is the adjoint of logSeries together with the order
// zero derivative 1/b0.
func logSeriesReverse[T Float](d int, x, z, px, pz []T, b0 T) {
	invB0 := 1 / b0
	for j := d; j > 0; j-- {
		pz[j] = azmul(pz[j], invB0)
		px[0] -= azmul(pz[j], z[j])
		px[j] += pz[j]
		pz[j] /= T(j)
		for k := 1; k < j; k++ {
			pz[k] -= T(k) * azmul(pz[j], x[j-k])
			px[j-k] -= T(k) * azmul(pz[j], z[k])
		}
	}
	px[0] += azmul(pz[0], invB0)
}

// Log1pOp: z = log(1 + x).
func log1pForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, z := f.Tay(arg[0]), f.Tay(iz)
	if p == 0 {
		z[0] = flog1p(x[0])
		p++
	}
	logSeries(p, q, x, z, 1+x[0])
}

func log1pReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	x := f.Tay(arg[0])
	logSeriesReverse(d, x, f.Tay(iz), f.Part(arg[0]), f.Part(iz), 1+x[0])
}

// SqrtOp: z = sqrt(x). z is its own helper.
//
// Forward: z_j = (x_j/2 - (1/j) sum_{k=1}^{j-1} k z_k z_{j-k}) / z_0.
func sqrtForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, z := f.Tay(arg[0]), f.Tay(iz)
	if p == 0 {
		z[0] = fsqrt(x[0])
		p++
	}
	for j := p; j <= q; j++ {
		z[j] = 0
		for k := 1; k < j; k++ {
			z[j] -= T(k) * z[k] * z[j-k]
		}
		z[j] /= T(j)
		z[j] += x[j] / 2
		z[j] /= z[0]
	}
}

func sqrtReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	z := f.Tay(iz)
	px, pz := f.Part(arg[0]), f.Part(iz)
	invZ0 := 1 / z[0]
	for j := d; j > 0; j-- {
		pz[j] = azmul(pz[j], invZ0)
		pz[0] -= azmul(pz[j], z[j])
		px[j] += pz[j] / 2
		for k := 1; k < j; k++ {
			pz[k] -= azmul(pz[j], z[j-k])
		}
	}
	px[0] += azmul(pz[0], invZ0) / 2
}
