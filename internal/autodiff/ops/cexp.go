package ops

// CExp argument layout:
//
//	arg[0]  Cmp
//	arg[1]  flags
//	arg[2]  left
//	arg[3]  right
//	arg[4]  ifTrue
//	arg[5]  ifFalse
//
// Bits 1, 2, 4 and 8 of flags mark left, right, ifTrue and ifFalse as
// variable indices (otherwise they are parameter indices). Bit 16 holds
// the outcome of the comparison when the operator was recorded.
const (
	CExpLeftVar  = 1
	CExpRightVar = 2
	CExpTrueVar  = 4
	CExpFalseVar = 8
	CExpRecorded = 16
)

// cexpCond evaluates the comparison of a CExp or CSkip on order zero
// values.
func cexpCond[T Float](arg []int, f *Frame[T]) bool {
	flags := arg[1]
	left := f.value(flags&CExpLeftVar != 0, arg[2])
	right := f.value(flags&CExpRightVar != 0, arg[3])
	return Compare(Cmp(arg[0]), left, right)
}

// CExpOp: z = left cmp right ? ifTrue : ifFalse.
//
// The branch is chosen from order zero values and reused for every higher
// order. At order zero a branch different from the recorded one is a
// compare change.
func cexpForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	flags := arg[1]
	cond := cexpCond(arg, f)
	if p == 0 && cond != (flags&CExpRecorded != 0) {
		f.Compare.changed(f.OpIndex)
	}
	z := f.Tay(iz)
	for k := p; k <= q; k++ {
		if cond {
			z[k] = f.coef(flags&CExpTrueVar != 0, arg[4], k)
		} else {
			z[k] = f.coef(flags&CExpFalseVar != 0, arg[5], k)
		}
	}
}

func cexpReverse[T Float](d, iz int, arg []int, f *Frame[T]) {
	flags := arg[1]
	pz := f.Part(iz)
	var pb []T
	if cexpCond(arg, f) {
		if flags&CExpTrueVar != 0 {
			pb = f.Part(arg[4])
		}
	} else if flags&CExpFalseVar != 0 {
		pb = f.Part(arg[5])
	}
	if pb == nil {
		return
	}
	for k := d; k >= 0; k-- {
		pb[k] += pz[k]
	}
}

// CSkip argument layout:
//
//	arg[0]  Cmp
//	arg[1]  flags (CExpLeftVar, CExpRightVar)
//	arg[2]  left
//	arg[3]  right
//	arg[4]  n, operators skipped when the comparison is true
//	arg[5]  m, operators skipped when the comparison is false
//	arg[6 : 6+n]      operator indices skipped when true
//	arg[6+n : 6+n+m]  operator indices skipped when false
//	arg[6+n+m]        7+n+m, the argument count
func cskipForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	if p > 0 {
		return
	}
	n, m := arg[4], arg[5]
	list := arg[6+n : 6+n+m]
	if cexpCond(arg, f) {
		list = arg[6 : 6+n]
	}
	for _, i := range list {
		f.Skip[i] = true
	}
}
