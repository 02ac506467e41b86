package ops

// Power kernels.
//
// Powvv and Powpv have three results computed as a chain:
//
//	z0 = log(x)   (variable iz-2)
//	z1 = z0 * y   (variable iz-1)
//	z2 = exp(z1)  (variable iz, the primary result)
//
// The order zero value of z2 is pow(x, y) itself so that it matches the
// Base power function exactly. Powvp has a single result and its own
// recurrence, x z' = y z x'.

// PowvvOp: z = pow(x, y).
func powvvForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, y := f.Tay(arg[0]), f.Tay(arg[1])
	z0, z1, z2 := f.Tay(iz-2), f.Tay(iz-1), f.Tay(iz)

	start := p
	if start == 0 {
		z0[0] = flog(x[0])
		start++
	}
	logSeries(start, q, x, z0, x[0])

	for d := p; d <= q; d++ {
		z1[d] = 0
		for k := 0; k <= d; k++ {
			z1[d] += z0[d-k] * y[k]
		}
	}

	if p == 0 {
		z2[0] = fpow(x[0], y[0])
	}
	expSeries(max(p, 1), q, z1, z2)
}

func powvvReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	x, y := f.Tay(arg[0]), f.Tay(arg[1])
	z0, z1, z2 := f.Tay(iz-2), f.Tay(iz-1), f.Tay(iz)
	px, py := f.Part(arg[0]), f.Part(arg[1])
	pz0, pz1, pz2 := f.Part(iz-2), f.Part(iz-1), f.Part(iz)

	expSeriesReverse(d, z1, z2, pz1, pz2)
	for j := d; j >= 0; j-- {
		for k := 0; k <= j; k++ {
			pz0[j-k] += azmul(pz1[j], y[k])
			py[k] += azmul(pz1[j], z0[j-k])
		}
	}
	logSeriesReverse(d, x, z0, px, pz0, x[0])
}

// PowpvOp: z = pow(p, y).
func powpvForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x := f.Par[arg[0]]
	y := f.Tay(arg[1])
	z0, z1, z2 := f.Tay(iz-2), f.Tay(iz-1), f.Tay(iz)

	if p == 0 {
		z0[0] = flog(x)
	}
	for d := max(p, 1); d <= q; d++ {
		z0[d] = 0
	}
	for d := p; d <= q; d++ {
		z1[d] = z0[0] * y[d]
	}
	if p == 0 {
		z2[0] = fpow(x, y[0])
	}
	expSeries(max(p, 1), q, z1, z2)
}

func powpvReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	z0, z1, z2 := f.Tay(iz-2), f.Tay(iz-1), f.Tay(iz)
	py := f.Part(arg[1])
	pz1, pz2 := f.Part(iz-1), f.Part(iz)

	expSeriesReverse(d, z1, z2, pz1, pz2)
	for j := d; j >= 0; j-- {
		py[j] += azmul(pz1[j], z0[0])
	}
}

// PowvpOp: z = pow(x, p).
//
// Forward, j > 0:
//
//	z_j = (y sum_{k=1}^{j} k x_k z_{j-k} - sum_{k=1}^{j-1} k z_k x_{j-k}) / (j x_0)
//
// All orders above zero are zero when x_0 is zero.
func powvpForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, z := f.Tay(arg[0]), f.Tay(iz)
	y := f.Par[arg[1]]
	if p == 0 {
		z[0] = fpow(x[0], y)
		p++
	}
	for j := p; j <= q; j++ {
		if x[0] == 0 {
			z[j] = 0
			continue
		}
		var sum1, sum2 T
		for k := 1; k <= j; k++ {
			sum1 += T(k) * x[k] * z[j-k]
		}
		for k := 1; k < j; k++ {
			sum2 += T(k) * z[k] * x[j-k]
		}
		z[j] = (y*sum1 - sum2) / (T(j) * x[0])
	}
}

func powvpReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	x, z := f.Tay(arg[0]), f.Tay(iz)
	y := f.Par[arg[1]]
	px, pz := f.Part(arg[0]), f.Part(iz)
	// Every partial is zero at a zero base.
	if x[0] == 0 {
		return
	}
	for j := d; j > 0; j-- {
		r := azmul(pz[j], 1/(T(j)*x[0]))
		px[0] -= azmul(pz[j], z[j]) / x[0]
		for k := 1; k <= j; k++ {
			px[k] += T(k) * y * azmul(r, z[j-k])
			pz[j-k] += T(k) * y * azmul(r, x[k])
		}
		for k := 1; k < j; k++ {
			pz[k] -= T(k) * azmul(r, x[j-k])
			px[j-k] -= T(k) * azmul(r, z[k])
		}
	}
	px[0] += azmul(pz[0], y*fpow(x[0], y-1))
}
