package sweep_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/adtape/internal/autodiff/ops"
	"github.com/born-ml/adtape/internal/autodiff/sweep"
	"github.com/born-ml/adtape/internal/autodiff/tape"
)

const capOrder = 3

func newState(p *tape.Player[float64], atomics ...sweep.Atomic[float64]) *sweep.State[float64] {
	return &sweep.State[float64]{
		Player: p,
		Table:  ops.NewTable[float64](),
		Frame: ops.Frame[float64]{
			Taylor:  make([]float64, p.NumVar*capOrder),
			Cap:     capOrder,
			Partial: make([]float64, p.NumVar*capOrder),
			Par:     append([]float64(nil), p.Par...),
			Skip:    make([]bool, p.NumOp()),
		},
		Atomics: atomics,
	}
}

// recordSinProduct records y = sin(x0) * x1 and returns the player and
// the index of y.
func recordSinProduct() (*tape.Player[float64], int) {
	r := tape.New[float64]()
	x0 := r.PutOp(ops.Inv)
	x1 := r.PutOp(ops.Inv)
	s := r.PutOp(ops.Sin)
	r.PutArg(x0)
	y := r.PutOp(ops.Mulvv)
	r.PutArg(s, x1)
	return r.Finish(), y
}

func TestForward_HigherOrders(t *testing.T) {
	p, y := recordSinProduct()
	s := newState(p)
	f := &s.Frame
	copy(f.Tay(1), []float64{0.5, 1, 0})
	copy(f.Tay(2), []float64{2, 0, 0})

	require.NoError(t, sweep.Forward(s, 0, 0))
	assert.InDelta(t, math.Sin(0.5)*2, f.Tay(y)[0], 1e-15)

	require.NoError(t, sweep.Forward(s, 1, 2))
	assert.InDelta(t, math.Cos(0.5)*2, f.Tay(y)[1], 1e-14)
	assert.InDelta(t, -math.Sin(0.5), f.Tay(y)[2], 1e-14)
}

func TestReverse_Gradient(t *testing.T) {
	p, y := recordSinProduct()
	s := newState(p)
	f := &s.Frame
	f.Tay(1)[0] = 0.5
	f.Tay(2)[0] = 2
	require.NoError(t, sweep.Forward(s, 0, 0))

	f.NP = 1
	f.Partial = make([]float64, p.NumVar)
	f.Part(y)[0] = 1
	require.NoError(t, sweep.Reverse(s, 0))
	assert.InDelta(t, 2*math.Cos(0.5), f.Part(1)[0], 1e-15)
	assert.InDelta(t, math.Sin(0.5), f.Part(2)[0], 1e-15)
}

// recordSkip records
//
//	a = exp(x), b = log(x), y = x < 1 ? a : b
//
// with a CSkip after the comparison operands that skips b when x < 1 and
// a otherwise.
func recordSkip() (*tape.Player[float64], int) {
	r := tape.New[float64]()
	x := r.PutOp(ops.Inv)
	one := r.PutConPar(1)
	// operator 2: CSkip, 3: Exp, 4: Log, 5: CExp
	r.PutOp(ops.CSkip)
	r.PutArg(int(ops.CmpLt), ops.CExpLeftVar, x, one, 1, 1, 4, 3, 9)
	a := r.PutOp(ops.Exp)
	r.PutArg(x)
	b := r.PutOp(ops.Log)
	r.PutArg(x)
	y := r.PutOp(ops.CExp)
	r.PutArg(int(ops.CmpLt), ops.CExpLeftVar|ops.CExpTrueVar|ops.CExpFalseVar|ops.CExpRecorded, x, one, a, b)
	return r.Finish(), y
}

func TestForward_ConditionalSkip(t *testing.T) {
	p, y := recordSkip()
	s := newState(p)
	f := &s.Frame
	f.Compare.Count = 1

	copy(f.Tay(1), []float64{0.5, 1, 0})
	require.NoError(t, sweep.Forward(s, 0, 1))
	assert.Equal(t, []bool{false, false, false, false, true, false, false}, f.Skip)
	assert.InDelta(t, math.Exp(0.5), f.Tay(y)[0], 1e-15)
	assert.InDelta(t, math.Exp(0.5), f.Tay(y)[1], 1e-15)
	assert.Zero(t, f.Compare.Number)

	copy(f.Tay(1), []float64{2, 1, 0})
	require.NoError(t, sweep.Forward(s, 0, 1))
	assert.Equal(t, []bool{false, false, false, true, false, false, false}, f.Skip)
	assert.InDelta(t, math.Log(2), f.Tay(y)[0], 1e-15)
	assert.InDelta(t, 0.5, f.Tay(y)[1], 1e-15)
	assert.Equal(t, 1, f.Compare.Number)
	assert.Equal(t, 5, f.Compare.OpIndex)

	f.NP = 1
	f.Partial = make([]float64, p.NumVar)
	f.Part(y)[0] = 1
	require.NoError(t, sweep.Reverse(s, 0))
	assert.InDelta(t, 0.5, f.Part(1)[0], 1e-15)
}

// square is an atomic computing y = x*x.
type square struct{ calls int }

func (a *square) Forward(p, q int, tx, ty []float64) bool {
	a.calls++
	for k := p; k <= q; k++ {
		ty[k] = 0
		for j := 0; j <= k; j++ {
			ty[k] += tx[j] * tx[k-j]
		}
	}
	return true
}

func (a *square) Reverse(q int, tx, ty, px, py []float64) bool {
	for k := q; k >= 0; k-- {
		for j := 0; j <= k; j++ {
			px[j] += py[k] * tx[k-j]
			px[k-j] += py[k] * tx[j]
		}
	}
	return true
}

func TestAtomicBlock(t *testing.T) {
	r := tape.New[float64]()
	x := r.PutOp(ops.Inv)
	r.PutOp(ops.AFun)
	r.PutArg(0, 0, 1, 1)
	r.PutOp(ops.FunAV)
	r.PutArg(x)
	y := r.PutOp(ops.FunRV)
	r.PutOp(ops.AFun)
	r.PutArg(0, 0, 1, 1)
	z := r.PutOp(ops.Sin)
	r.PutArg(y)
	p := r.Finish()

	atom := &square{}
	s := newState(p, atom)
	f := &s.Frame
	copy(f.Tay(x), []float64{3, 1, 0})
	require.NoError(t, sweep.Forward(s, 0, 1))
	assert.Equal(t, 1, atom.calls)
	assert.Equal(t, []float64{9, 6}, f.Tay(y)[:2])
	assert.InDelta(t, math.Cos(9)*6, f.Tay(z)[1], 1e-12)

	f.NP = 1
	f.Partial = make([]float64, p.NumVar)
	f.Part(z)[0] = 1
	require.NoError(t, sweep.Reverse(s, 0))
	assert.InDelta(t, math.Cos(9)*6, f.Part(x)[0], 1e-12)
}

func TestAtomicBlock_Unknown(t *testing.T) {
	r := tape.New[float64]()
	x := r.PutOp(ops.Inv)
	r.PutOp(ops.AFun)
	r.PutArg(3, 0, 1, 1)
	r.PutOp(ops.FunAV)
	r.PutArg(x)
	r.PutOp(ops.FunRV)
	r.PutOp(ops.AFun)
	r.PutArg(3, 0, 1, 1)
	s := newState(r.Finish())

	err := sweep.Forward(s, 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown atomic 3")
}
