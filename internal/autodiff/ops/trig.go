package ops

// Two-result trigonometric and hyperbolic kernels. The primary result is
// variable iz and the helper is variable iz-1:
//
//	Sin:  z = sin(x),  helper cos(x)
//	Cos:  z = cos(x),  helper sin(x)
//	Sinh: z = sinh(x), helper cosh(x)
//	Cosh: z = cosh(x), helper sinh(x)
//	Tan:  z = tan(x),  helper tan(x)^2
//	Tanh: z = tanh(x), helper tanh(x)^2

// sinCosSeries fills orders p..q of s = sin(x) and c = cos(x), or of
// s = sinh(x) and c = cosh(x) when hyper is true:
//
//	s_j = (1/j) sum_{k=1}^{j} k x_k c_{j-k}
//	c_j = -+(1/j) sum_{k=1}^{j} k x_k s_{j-k}
func sinCosSeries[T Float](p, q int, x, s, c []T, hyper bool) {
	for j := p; j <= q; j++ {
		s[j] = 0
		c[j] = 0
		for k := 1; k <= j; k++ {
			s[j] += T(k) * x[k] * c[j-k]
			if hyper {
				c[j] += T(k) * x[k] * s[j-k]
			} else {
				c[j] -= T(k) * x[k] * s[j-k]
			}
		}
		s[j] /= T(j)
		c[j] /= T(j)
	}
}

// sinCosSeriesReverse is the adjoint of sinCosSeries including order zero.
func sinCosSeriesReverse[T Float](d int, x, s, c, px, ps, pc []T, hyper bool) {
	for j := d; j > 0; j-- {
		ps[j] /= T(j)
		pc[j] /= T(j)
		for k := 1; k <= j; k++ {
			px[k] += T(k) * azmul(ps[j], c[j-k])
			pc[j-k] += T(k) * azmul(ps[j], x[k])
			if hyper {
				px[k] += T(k) * azmul(pc[j], s[j-k])
				ps[j-k] += T(k) * azmul(pc[j], x[k])
			} else {
				px[k] -= T(k) * azmul(pc[j], s[j-k])
				ps[j-k] -= T(k) * azmul(pc[j], x[k])
			}
		}
	}
	px[0] += azmul(ps[0], c[0])
	if hyper {
		px[0] += azmul(pc[0], s[0])
	} else {
		px[0] -= azmul(pc[0], s[0])
	}
}

// SinOp.
func sinForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, s, c := f.Tay(arg[0]), f.Tay(iz), f.Tay(iz-1)
	if p == 0 {
		s[0] = fsin(x[0])
		c[0] = fcos(x[0])
		p++
	}
	sinCosSeries(p, q, x, s, c, false)
}

func sinReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	sinCosSeriesReverse(d, f.Tay(arg[0]), f.Tay(iz), f.Tay(iz-1),
		f.Part(arg[0]), f.Part(iz), f.Part(iz-1), false)
}

// CosOp.
func cosForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, c, s := f.Tay(arg[0]), f.Tay(iz), f.Tay(iz-1)
	if p == 0 {
		s[0] = fsin(x[0])
		c[0] = fcos(x[0])
		p++
	}
	sinCosSeries(p, q, x, s, c, false)
}

func cosReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	sinCosSeriesReverse(d, f.Tay(arg[0]), f.Tay(iz-1), f.Tay(iz),
		f.Part(arg[0]), f.Part(iz-1), f.Part(iz), false)
}

// SinhOp.
func sinhForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, s, c := f.Tay(arg[0]), f.Tay(iz), f.Tay(iz-1)
	if p == 0 {
		s[0] = fsinh(x[0])
		c[0] = fcosh(x[0])
		p++
	}
	sinCosSeries(p, q, x, s, c, true)
}

func sinhReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	sinCosSeriesReverse(d, f.Tay(arg[0]), f.Tay(iz), f.Tay(iz-1),
		f.Part(arg[0]), f.Part(iz), f.Part(iz-1), true)
}

// CoshOp.
func coshForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, c, s := f.Tay(arg[0]), f.Tay(iz), f.Tay(iz-1)
	if p == 0 {
		s[0] = fsinh(x[0])
		c[0] = fcosh(x[0])
		p++
	}
	sinCosSeries(p, q, x, s, c, true)
}

func coshReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	sinCosSeriesReverse(d, f.Tay(arg[0]), f.Tay(iz-1), f.Tay(iz),
		f.Part(arg[0]), f.Part(iz-1), f.Part(iz), true)
}

// tanSeries fills orders p..q of z = tan(x) (sign +1) or z = tanh(x)
// (sign -1) with helper y = z^2:
//
//	z_j = x_j +- (1/j) sum_{k=1}^{j} k x_k y_{j-k}
//	y_j = sum_{k=0}^{j} z_k z_{j-k}
func tanSeries[T Float](p, q int, x, z, y []T, sign T) {
	for j := p; j <= q; j++ {
		z[j] = x[j]
		for k := 1; k <= j; k++ {
			z[j] += sign * T(k) * x[k] * y[j-k] / T(j)
		}
		y[j] = z[0] * z[j]
		for k := 1; k <= j; k++ {
			y[j] += z[k] * z[j-k]
		}
	}
}

func tanSeriesReverse[T Float](d int, x, z, y, px, pz, py []T, sign T) {
	for j := d; j > 0; j-- {
		px[j] += pz[j]
		pz[j] /= T(j)
		for k := 1; k <= j; k++ {
			px[k] += sign * azmul(pz[j], y[j-k]) * T(k)
			py[j-k] += sign * azmul(pz[j], x[k]) * T(k)
		}
		for k := 0; k < j; k++ {
			pz[k] += azmul(py[j-1], z[j-k-1]) * 2
		}
	}
	px[0] += azmul(pz[0], 1+sign*y[0])
}

// TanOp.
func tanForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, z, y := f.Tay(arg[0]), f.Tay(iz), f.Tay(iz-1)
	if p == 0 {
		z[0] = ftan(x[0])
		y[0] = z[0] * z[0]
		p++
	}
	tanSeries(p, q, x, z, y, 1)
}

func tanReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	tanSeriesReverse(d, f.Tay(arg[0]), f.Tay(iz), f.Tay(iz-1),
		f.Part(arg[0]), f.Part(iz), f.Part(iz-1), 1)
}

// TanhOp.
func tanhForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, z, y := f.Tay(arg[0]), f.Tay(iz), f.Tay(iz-1)
	if p == 0 {
		z[0] = ftanh(x[0])
		y[0] = z[0] * z[0]
		p++
	}
	tanSeries(p, q, x, z, y, -1)
}

func tanhReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	tanSeriesReverse(d, f.Tay(arg[0]), f.Tay(iz), f.Tay(iz-1),
		f.Part(arg[0]), f.Part(iz), f.Part(iz-1), -1)
}
