package ops

// Binary arithmetic kernels. For "pv" variants arg[0] is a parameter index
// and arg[1] a variable; for "vp" variants the other way round.

// AddvvOp: z = x + y.
//
// Forward: z_k = x_k + y_k.
// Reverse: px_k += pz_k, py_k += pz_k.
func addvvForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, y, z := f.Tay(arg[0]), f.Tay(arg[1]), f.Tay(iz)
	for k := p; k <= q; k++ {
		z[k] = x[k] + y[k]
	}
}

func addvvReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	px, py, pz := f.Part(arg[0]), f.Part(arg[1]), f.Part(iz)
	for k := d; k >= 0; k-- {
		px[k] += pz[k]
		py[k] += pz[k]
	}
}

// AddpvOp: z = p + y.
func addpvForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x := f.Par[arg[0]]
	y, z := f.Tay(arg[1]), f.Tay(iz)
	if p == 0 {
		z[0] = x + y[0]
		p++
	}
	for k := p; k <= q; k++ {
		z[k] = y[k]
	}
}

func addpvReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	py, pz := f.Part(arg[1]), f.Part(iz)
	for k := d; k >= 0; k-- {
		py[k] += pz[k]
	}
}

// SubvvOp: z = x - y.
func subvvForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, y, z := f.Tay(arg[0]), f.Tay(arg[1]), f.Tay(iz)
	for k := p; k <= q; k++ {
		z[k] = x[k] - y[k]
	}
}

func subvvReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	px, py, pz := f.Part(arg[0]), f.Part(arg[1]), f.Part(iz)
	for k := d; k >= 0; k-- {
		px[k] += pz[k]
		py[k] -= pz[k]
	}
}

// SubpvOp: z = p - y.
func subpvForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x := f.Par[arg[0]]
	y, z := f.Tay(arg[1]), f.Tay(iz)
	if p == 0 {
		z[0] = x - y[0]
		p++
	}
	for k := p; k <= q; k++ {
		z[k] = -y[k]
	}
}

func subpvReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	py, pz := f.Part(arg[1]), f.Part(iz)
	for k := d; k >= 0; k-- {
		py[k] -= pz[k]
	}
}

// SubvpOp: z = x - p.
func subvpForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, z := f.Tay(arg[0]), f.Tay(iz)
	y := f.Par[arg[1]]
	if p == 0 {
		z[0] = x[0] - y
		p++
	}
	for k := p; k <= q; k++ {
		z[k] = x[k]
	}
}

func subvpReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	px, pz := f.Part(arg[0]), f.Part(iz)
	for k := d; k >= 0; k-- {
		px[k] += pz[k]
	}
}

// MulvvOp: z = x * y.
//
// Forward: z_d = sum_{k=0}^{d} x_{d-k} y_k.
// Reverse: px_{j-k} += pz_j y_k, py_k += pz_j x_{j-k}.
func mulvvForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, y, z := f.Tay(arg[0]), f.Tay(arg[1]), f.Tay(iz)
	for d := p; d <= q; d++ {
		z[d] = 0
		for k := 0; k <= d; k++ {
			z[d] += x[d-k] * y[k]
		}
	}
}

func mulvvReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	x, y := f.Tay(arg[0]), f.Tay(arg[1])
	px, py, pz := f.Part(arg[0]), f.Part(arg[1]), f.Part(iz)
	for j := d; j >= 0; j-- {
		for k := 0; k <= j; k++ {
			px[j-k] += azmul(pz[j], y[k])
			py[k] += azmul(pz[j], x[j-k])
		}
	}
}

// MulpvOp: z = p * y.
func mulpvForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x := f.Par[arg[0]]
	y, z := f.Tay(arg[1]), f.Tay(iz)
	for k := p; k <= q; k++ {
		z[k] = x * y[k]
	}
}

func mulpvReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	x := f.Par[arg[0]]
	py, pz := f.Part(arg[1]), f.Part(iz)
	for k := d; k >= 0; k-- {
		py[k] += azmul(pz[k], x)
	}
}

// DivvvOp: z = x / y.
//
// Forward: z_d = (x_d - sum_{k=1}^{d} z_{d-k} y_k) / y_0.
// Reverse scales pz_j by 1/y_0 and then transposes the recurrence; pz is
// consumed in place.
func divvvForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, y, z := f.Tay(arg[0]), f.Tay(arg[1]), f.Tay(iz)
	for d := p; d <= q; d++ {
		z[d] = x[d]
		for k := 1; k <= d; k++ {
			z[d] -= z[d-k] * y[k]
		}
		z[d] /= y[0]
	}
}

func divvvReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	y, z := f.Tay(arg[1]), f.Tay(iz)
	px, py, pz := f.Part(arg[0]), f.Part(arg[1]), f.Part(iz)
	invY0 := 1 / y[0]
	for j := d; j >= 0; j-- {
		pz[j] = azmul(pz[j], invY0)
		px[j] += pz[j]
		for k := 1; k <= j; k++ {
			pz[j-k] -= azmul(pz[j], y[k])
			py[k] -= azmul(pz[j], z[j-k])
		}
		py[0] -= azmul(pz[j], z[j])
	}
}

// DivpvOp: z = p / y.
func divpvForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x := f.Par[arg[0]]
	y, z := f.Tay(arg[1]), f.Tay(iz)
	if p == 0 {
		z[0] = x / y[0]
		p++
	}
	for d := p; d <= q; d++ {
		z[d] = 0
		for k := 1; k <= d; k++ {
			z[d] -= z[d-k] * y[k]
		}
		z[d] /= y[0]
	}
}

func divpvReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	y, z := f.Tay(arg[1]), f.Tay(iz)
	py, pz := f.Part(arg[1]), f.Part(iz)
	invY0 := 1 / y[0]
	for j := d; j >= 0; j-- {
		pz[j] = azmul(pz[j], invY0)
		for k := 1; k <= j; k++ {
			pz[j-k] -= azmul(pz[j], y[k])
			py[k] -= azmul(pz[j], z[j-k])
		}
		py[0] -= azmul(pz[j], z[j])
	}
}

// DivvpOp: z = x / p.
func divvpForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, z := f.Tay(arg[0]), f.Tay(iz)
	y := f.Par[arg[1]]
	for k := p; k <= q; k++ {
		z[k] = x[k] / y
	}
}

func divvpReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	y := f.Par[arg[1]]
	px, pz := f.Part(arg[0]), f.Part(iz)
	invY := 1 / y
	for k := d; k >= 0; k-- {
		px[k] += azmul(pz[k], invY)
	}
}

// ZmulvvOp: z = azmul(x, y), which is zero whenever x is zero.
func zmulvvForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, y, z := f.Tay(arg[0]), f.Tay(arg[1]), f.Tay(iz)
	for d := p; d <= q; d++ {
		z[d] = 0
		for k := 0; k <= d; k++ {
			z[d] += azmul(x[d-k], y[k])
		}
	}
}

func zmulvvReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	x, y := f.Tay(arg[0]), f.Tay(arg[1])
	px, py, pz := f.Part(arg[0]), f.Part(arg[1]), f.Part(iz)
	for j := d; j >= 0; j-- {
		for k := 0; k <= j; k++ {
			px[j-k] += azmul(pz[j], y[k])
			py[k] += azmul(x[j-k], pz[j])
		}
	}
}

// ZmulpvOp: z = azmul(p, y).
func zmulpvForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x := f.Par[arg[0]]
	y, z := f.Tay(arg[1]), f.Tay(iz)
	for k := p; k <= q; k++ {
		z[k] = azmul(x, y[k])
	}
}

func zmulpvReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	x := f.Par[arg[0]]
	py, pz := f.Part(arg[1]), f.Part(iz)
	for k := d; k >= 0; k-- {
		py[k] += azmul(x, pz[k])
	}
}

// ZmulvpOp: z = azmul(x, p).
func zmulvpForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, z := f.Tay(arg[0]), f.Tay(iz)
	y := f.Par[arg[1]]
	for k := p; k <= q; k++ {
		z[k] = azmul(x[k], y)
	}
}

func zmulvpReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	y := f.Par[arg[1]]
	px, pz := f.Part(arg[0]), f.Part(iz)
	for k := d; k >= 0; k-- {
		px[k] += azmul(pz[k], y)
	}
}
