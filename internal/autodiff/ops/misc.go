package ops

import "fmt"

// BeginOp writes the phantom variable 0. Nothing reads it.
func beginForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	z := f.Tay(iz)
	for k := p; k <= q; k++ {
		z[k] = nan[T]()
	}
}

// ParOp turns parameter arg[0] into a variable with no derivatives.
func parForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	z := f.Tay(iz)
	if p == 0 {
		z[0] = f.Par[arg[0]]
		p++
	}
	for k := p; k <= q; k++ {
		z[k] = 0
	}
}

// DisOp: z = g(x) for the discrete function g with index arg[0].
// Every derivative is zero.
func disForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	x, z := f.Tay(arg[1]), f.Tay(iz)
	if p == 0 {
		z[0] = f.Discrete[arg[0]](x[0])
		p++
	}
	for k := p; k <= q; k++ {
		z[k] = 0
	}
}

// Pri argument layout:
//
//	arg[0]  flags: 1 pos is a variable, 2 value is a variable
//	arg[1]  pos
//	arg[2]  text index printed before the value
//	arg[3]  value
//	arg[4]  text index printed after the value
//
// The line is printed during zero order sweeps when pos <= 0.
const (
	PriPosVar   = 1
	PriValueVar = 2
)

func priForward[T Float](p, q, iz int, arg []int, f *Frame[T]) {
	if p > 0 || f.Print == nil {
		return
	}
	pos := f.value(arg[0]&PriPosVar != 0, arg[1])
	if pos > 0 {
		return
	}
	val := f.value(arg[0]&PriValueVar != 0, arg[3])
	fmt.Fprintf(f.Print, "%s%v%s", f.Text[arg[2]], float64(val), f.Text[arg[4]])
}
