package ops

// CSum argument layout:
//
//	arg[0]       number of terms n
//	arg[1+2t]    flags of term t: CSumVar for a variable, CSumNeg when
//	             the term is subtracted
//	arg[2+2t]    variable or parameter index of term t
//	arg[1+2n]    2n+2, the argument count
//
// Terms are accumulated left to right in the Base type, so the result
// rounds exactly like the chain of additions it replaces.
const (
	CSumVar = 1 << iota
	CSumNeg
)

func csumForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	z := f.Tay(iz)
	n := arg[0]
	for k := p; k <= q; k++ {
		var acc T
		set := false
		for t := 0; t < n; t++ {
			flags, i := arg[1+2*t], arg[2+2*t]
			var v T
			switch {
			case flags&CSumVar != 0:
				v = f.Tay(i)[k]
			case k == 0:
				v = f.Par[i]
			default:
				// Parameters have no higher order coefficients.
				continue
			}
			neg := flags&CSumNeg != 0
			switch {
			case !set && neg:
				acc = -v
			case !set:
				acc = v
			case neg:
				acc -= v
			default:
				acc += v
			}
			set = true
		}
		z[k] = acc
	}
}

func csumReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	pz := f.Part(iz)
	n := arg[0]
	for t := 0; t < n; t++ {
		flags := arg[1+2*t]
		if flags&CSumVar == 0 {
			continue
		}
		px := f.Part(arg[2+2*t])
		for k := d; k >= 0; k-- {
			if flags&CSumNeg != 0 {
				px[k] -= pz[k]
			} else {
				px[k] += pz[k]
			}
		}
	}
}
