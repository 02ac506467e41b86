package ops_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/born-ml/adtape/internal/autodiff/ops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const order = 3

// harness places one operator on a tiny tape: variable 0 is the phantom,
// variable arguments follow, then the operator's results.
type harness struct {
	table *ops.Table[float64]
	op    ops.OpCode
	f     *ops.Frame[float64]
	arg   []int
	vars  []int
	iz    int
}

// newHarness seeds every variable argument with x(t) = v + t.
func newHarness(op ops.OpCode, vals []float64, isVar []bool) *harness {
	h := &harness{
		table: ops.NewTable[float64](),
		op:    op,
		f:     &ops.Frame[float64]{Cap: order, NP: order, Par: []float64{math.NaN()}},
	}
	nv := 1
	for i, v := range vals {
		if isVar[i] {
			h.arg = append(h.arg, nv)
			h.vars = append(h.vars, nv)
			nv++
			continue
		}
		h.arg = append(h.arg, len(h.f.Par))
		h.vars = append(h.vars, -1)
		h.f.Par = append(h.f.Par, v)
	}
	h.iz = nv + ops.NumRes(op) - 1
	h.f.Taylor = make([]float64, (h.iz+1)*order)
	h.f.Partial = make([]float64, (h.iz+1)*order)
	for i, v := range vals {
		if h.vars[i] >= 0 {
			x := h.f.Tay(h.vars[i])
			x[0], x[1] = v, 1
		}
	}
	return h
}

func (h *harness) forward(p, q int) []float64 {
	if p == 0 && q == 0 {
		h.table[h.op].Forward0(h.iz, h.arg, h.f)
	} else {
		h.table[h.op].ForwardAny(p, q, h.iz, h.arg, h.f)
	}
	return h.f.Tay(h.iz)
}

// reverse seeds the partial of order d of the primary result with one and
// returns the partials of every variable argument summed.
func (h *harness) reverse(d int) []float64 {
	for i := range h.f.Partial {
		h.f.Partial[i] = 0
	}
	h.f.Part(h.iz)[d] = 1
	h.table[h.op].Reverse(d, h.iz, h.arg, h.f)
	sum := make([]float64, d+1)
	for _, v := range h.vars {
		if v < 0 {
			continue
		}
		px := h.f.Part(v)
		for k := 0; k <= d; k++ {
			sum[k] += px[k]
		}
	}
	return sum
}

type opCase struct {
	name  string
	op    ops.OpCode
	vals  []float64
	isVar []bool
	fn    func(x []float64) float64
}

func unaryCase(op ops.OpCode, x float64, fn func(float64) float64) opCase {
	return opCase{
		name:  op.String(),
		op:    op,
		vals:  []float64{x},
		isVar: []bool{true},
		fn:    func(v []float64) float64 { return fn(v[0]) },
	}
}

func binaryCase(op ops.OpCode, x, y float64, xVar, yVar bool, fn func(x, y float64) float64) opCase {
	return opCase{
		name:  op.String(),
		op:    op,
		vals:  []float64{x, y},
		isVar: []bool{xVar, yVar},
		fn:    func(v []float64) float64 { return fn(v[0], v[1]) },
	}
}

func opCases() []opCase {
	pow := math.Pow
	return []opCase{
		unaryCase(ops.Abs, -0.7, math.Abs),
		unaryCase(ops.Acos, 0.3, math.Acos),
		unaryCase(ops.Acosh, 1.7, math.Acosh),
		unaryCase(ops.Asin, 0.3, math.Asin),
		unaryCase(ops.Asinh, 0.4, math.Asinh),
		unaryCase(ops.Atan, 0.4, math.Atan),
		unaryCase(ops.Atanh, 0.3, math.Atanh),
		unaryCase(ops.Cos, 0.5, math.Cos),
		unaryCase(ops.Cosh, 0.5, math.Cosh),
		unaryCase(ops.Exp, 0.3, math.Exp),
		unaryCase(ops.Expm1, 0.3, math.Expm1),
		unaryCase(ops.Log, 1.4, math.Log),
		unaryCase(ops.Log1p, 0.4, math.Log1p),
		unaryCase(ops.Neg, 0.4, func(x float64) float64 { return -x }),
		unaryCase(ops.Sign, 0.7, func(x float64) float64 { return ops.SignOf(x) }),
		unaryCase(ops.Sin, 0.5, math.Sin),
		unaryCase(ops.Sinh, 0.5, math.Sinh),
		unaryCase(ops.Sqrt, 2.0, math.Sqrt),
		unaryCase(ops.Tan, 0.6, math.Tan),
		unaryCase(ops.Tanh, 0.6, math.Tanh),

		binaryCase(ops.Addvv, 0.8, 1.3, true, true, func(x, y float64) float64 { return x + y }),
		binaryCase(ops.Addpv, 0.8, 1.3, false, true, func(x, y float64) float64 { return x + y }),
		binaryCase(ops.Subvv, 0.8, 1.3, true, true, func(x, y float64) float64 { return x - y }),
		binaryCase(ops.Subpv, 0.8, 1.3, false, true, func(x, y float64) float64 { return x - y }),
		binaryCase(ops.Subvp, 0.8, 1.3, true, false, func(x, y float64) float64 { return x - y }),
		binaryCase(ops.Mulvv, 0.8, 1.3, true, true, func(x, y float64) float64 { return x * y }),
		binaryCase(ops.Mulpv, 0.8, 1.3, false, true, func(x, y float64) float64 { return x * y }),
		binaryCase(ops.Divvv, 0.8, 1.3, true, true, func(x, y float64) float64 { return x / y }),
		binaryCase(ops.Divpv, 0.8, 1.3, false, true, func(x, y float64) float64 { return x / y }),
		binaryCase(ops.Divvp, 0.8, 1.3, true, false, func(x, y float64) float64 { return x / y }),
		binaryCase(ops.Powvv, 1.5, 1.3, true, true, pow),
		binaryCase(ops.Powpv, 1.5, 1.3, false, true, pow),
		binaryCase(ops.Powvp, 1.5, 1.3, true, false, pow),
		binaryCase(ops.Zmulvv, 0.8, 1.3, true, true, func(x, y float64) float64 { return x * y }),
		binaryCase(ops.Zmulpv, 0.8, 1.3, false, true, func(x, y float64) float64 { return x * y }),
		binaryCase(ops.Zmulvp, 0.8, 1.3, true, false, func(x, y float64) float64 { return x * y }),
	}
}

// along evaluates the case at vals + t on every variable argument.
func (c opCase) along(t float64) float64 {
	v := make([]float64, len(c.vals))
	for i, x := range c.vals {
		v[i] = x
		if c.isVar[i] {
			v[i] += t
		}
	}
	return c.fn(v)
}

func TestKernels_ForwardMatchesFiniteDifferences(t *testing.T) {
	for _, c := range opCases() {
		t.Run(c.name, func(t *testing.T) {
			h := newHarness(c.op, c.vals, c.isVar)
			z := h.forward(0, 0)
			assert.InDelta(t, c.along(0), z[0], 1e-12)

			z = h.forward(1, 2)
			const h1, h2 = 1e-6, 1e-4
			d1 := (c.along(h1) - c.along(-h1)) / (2 * h1)
			d2 := (c.along(h2) - 2*c.along(0) + c.along(-h2)) / (h2 * h2)
			assert.InDelta(t, d1, z[1], 1e-6, "first order")
			assert.InDelta(t, d2/2, z[2], 1e-5, "second order")
		})
	}
}

func TestKernels_ReverseIsAdjointOfForward(t *testing.T) {
	for _, c := range opCases() {
		t.Run(c.name, func(t *testing.T) {
			h := newHarness(c.op, c.vals, c.isVar)
			z := append([]float64(nil), h.forward(0, 2)...)

			// d z0 / d x0 is the first order coefficient.
			px := h.reverse(0)
			assert.InDelta(t, z[1], px[0], 1e-10, "order zero partial")

			// d z1 / d x1 repeats it; d z1 / d x0 is twice z2.
			px = h.reverse(1)
			assert.InDelta(t, z[1], px[1], 1e-10, "first order partial")
			assert.InDelta(t, 2*z[2], px[0], 1e-9, "mixed partial")
		})
	}
}

func TestAtan_HelperCoefficients(t *testing.T) {
	h := newHarness(ops.Atan, []float64{0.5}, []bool{true})
	z := h.forward(0, 1)
	b := h.f.Tay(h.iz - 1)

	assert.InDelta(t, 1.25, b[0], 1e-15)
	assert.InDelta(t, 1.0, b[1], 1e-15)
	assert.InDelta(t, math.Atan(0.5), z[0], 1e-15)
	assert.InDelta(t, 0.8, z[1], 1e-15)
}

func TestPowvp_ZeroBase(t *testing.T) {
	h := newHarness(ops.Powvp, []float64{0, 2.5}, []bool{true, false})
	z := h.forward(0, 2)
	assert.Equal(t, []float64{0, 0, 0}, z)

	// 0 < y < 1 has an infinite slope at zero; the partials stay zero.
	h = newHarness(ops.Powvp, []float64{0, 0.5}, []bool{true, false})
	h.forward(0, 2)
	for d := 0; d <= 2; d++ {
		assert.Equal(t, make([]float64, d+1), h.reverse(d), "d = %d", d)
	}
}

func TestAzmul(t *testing.T) {
	assert.Equal(t, 0.0, ops.Azmul(0.0, math.Inf(1)))
	assert.Equal(t, 0.0, ops.Azmul(0.0, math.NaN()))
	assert.Equal(t, 6.0, ops.Azmul(2.0, 3.0))
	assert.True(t, math.IsInf(ops.Azmul(2.0, math.Inf(1)), 1))
}

func TestCompareOp(t *testing.T) {
	tests := []struct {
		name     string
		c        ops.Cmp
		result   bool
		leftVar  bool
		rightVar bool
		want     ops.OpCode
		swap     bool
	}{
		{"x<y true", ops.CmpLt, true, true, true, ops.Ltvv, false},
		{"x<p false", ops.CmpLt, false, true, false, ops.Lepv, true},
		{"x>p true", ops.CmpGt, true, true, false, ops.Ltpv, true},
		{"x>=y false", ops.CmpGe, false, true, true, ops.Ltvv, false},
		{"p<=x false", ops.CmpLe, false, false, true, ops.Ltvp, true},
		{"x==p true", ops.CmpEq, true, true, false, ops.Eqpv, true},
		{"p!=x false", ops.CmpNe, false, false, true, ops.Eqpv, false},
		{"x!=y true", ops.CmpNe, true, true, true, ops.Nevv, false},
		{"p<q true", ops.CmpLt, true, false, false, ops.Ltpp, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, swap := ops.CompareOp(tt.c, tt.result, tt.leftVar, tt.rightVar)
			assert.Equal(t, tt.want, op)
			assert.Equal(t, tt.swap, swap)
		})
	}
}

func TestCompareForward_CountsChanges(t *testing.T) {
	h := newHarness(ops.Ltvv, []float64{2, 1}, []bool{true, true})
	h.f.Compare = ops.CompareState{Count: 1}
	h.f.OpIndex = 7
	h.forward(0, 0)
	assert.Equal(t, 1, h.f.Compare.Number)
	assert.Equal(t, 7, h.f.Compare.OpIndex)

	// Higher orders never count.
	h.forward(1, 2)
	assert.Equal(t, 1, h.f.Compare.Number)

	h.f.Compare = ops.CompareState{}
	h.forward(0, 0)
	assert.Zero(t, h.f.Compare.Number, "count zero disables counting")
}

// cexpFrame builds x = var 1, y = var 2, z = var 3 and
// z = x < 1 ? x : y.
func cexpFrame(x, y float64, recorded bool) (*ops.Frame[float64], []int) {
	f := &ops.Frame[float64]{
		Cap:     order,
		NP:      order,
		Par:     []float64{math.NaN(), 1},
		Taylor:  make([]float64, 4*order),
		Partial: make([]float64, 4*order),
		Skip:    make([]bool, 4),
	}
	copy(f.Tay(1), []float64{x, 1, 0})
	copy(f.Tay(2), []float64{y, 2, 0})
	flags := ops.CExpLeftVar | ops.CExpTrueVar | ops.CExpFalseVar
	if recorded {
		flags |= ops.CExpRecorded
	}
	return f, []int{int(ops.CmpLt), flags, 1, 1, 1, 2}
}

func TestCExp_BranchAndCompareChange(t *testing.T) {
	table := ops.NewTable[float64]()

	f, arg := cexpFrame(0.5, 3, true)
	f.Compare.Count = 1
	table[ops.CExp].ForwardAny(0, 1, 3, arg, f)
	assert.Equal(t, []float64{0.5, 1}, f.Tay(3)[:2])
	assert.Zero(t, f.Compare.Number)

	f.Part(3)[0] = 1
	table[ops.CExp].Reverse(0, 3, arg, f)
	assert.Equal(t, 1.0, f.Part(1)[0])
	assert.Equal(t, 0.0, f.Part(2)[0])

	f, arg = cexpFrame(1.5, 3, true)
	f.Compare.Count = 1
	f.OpIndex = 4
	table[ops.CExp].ForwardAny(0, 1, 3, arg, f)
	assert.Equal(t, []float64{3, 2}, f.Tay(3)[:2])
	assert.Equal(t, 1, f.Compare.Number)
	assert.Equal(t, 4, f.Compare.OpIndex)
}

func TestCSkip_MarksList(t *testing.T) {
	table := ops.NewTable[float64]()
	f := &ops.Frame[float64]{
		Cap:    1,
		Par:    []float64{math.NaN(), 1, 2},
		Taylor: make([]float64, 1),
		Skip:   make([]bool, 8),
	}
	// 1 < 2 holds, so the true list {3, 5} is skipped.
	arg := []int{int(ops.CmpLt), 0, 1, 2, 2, 1, 3, 5, 6, 10}
	require.Equal(t, 10, ops.NumArg(ops.CSkip, arg))
	table[ops.CSkip].Forward0(0, arg, f)
	assert.Equal(t, []bool{false, false, false, true, false, true, false, false}, f.Skip)

	// Higher orders leave the flags alone.
	f.Skip = make([]bool, 8)
	table[ops.CSkip].ForwardAny(1, 1, 0, arg, f)
	assert.Equal(t, make([]bool, 8), f.Skip)
}

func TestCSum_ForwardReverse(t *testing.T) {
	table := ops.NewTable[float64]()
	f := &ops.Frame[float64]{
		Cap:     2,
		NP:      2,
		Par:     []float64{math.NaN(), 10, 4, 1},
		Taylor:  make([]float64, 4*2),
		Partial: make([]float64, 4*2),
	}
	copy(f.Tay(1), []float64{1, 1})
	copy(f.Tay(2), []float64{2, 3})
	// z = 10 + v1 - v2 + p2 - p3
	arg := []int{5, 0, 1, ops.CSumVar, 1, ops.CSumVar | ops.CSumNeg, 2, 0, 2, ops.CSumNeg, 3, 12}
	require.Equal(t, 12, ops.NumArg(ops.CSum, arg))

	table[ops.CSum].ForwardAny(0, 1, 3, arg, f)
	assert.Equal(t, []float64{10 + 1 - 2 + 4 - 1, 1 - 3}, f.Tay(3))

	copy(f.Part(3), []float64{1, 2})
	table[ops.CSum].Reverse(1, 3, arg, f)
	assert.Equal(t, []float64{1, 2}, f.Part(1))
	assert.Equal(t, []float64{-1, -2}, f.Part(2))
}

func TestCSum_LeftToRight(t *testing.T) {
	f := &ops.Frame[float64]{
		Cap:    1,
		Par:    []float64{math.NaN(), 1e16},
		Taylor: make([]float64, 3),
	}
	f.Tay(1)[0] = 1
	// (1e16 + v1) - 1e16 rounds v1 away.
	arg := []int{3, 0, 1, ops.CSumVar, 1, ops.CSumNeg, 1, 8}
	ops.NewTable[float64]()[ops.CSum].Forward0(2, arg, f)
	assert.Equal(t, 0.0, f.Tay(2)[0])

	g := &ops.Frame[float32]{
		Cap:    1,
		Par:    []float32{float32(math.NaN()), 0.1, 0.2},
		Taylor: make([]float32, 3),
	}
	g.Tay(1)[0] = 1
	// (v1 + 0.1) + 0.2 in float32.
	arg = []int{3, ops.CSumVar, 1, 0, 1, 0, 2, 8}
	ops.NewTable[float32]()[ops.CSum].Forward0(2, arg, g)
	x, a, b := float32(1), float32(0.1), float32(0.2)
	want := x + a
	want += b
	assert.Equal(t, want, g.Tay(2)[0])
}

func TestDisAndPri(t *testing.T) {
	table := ops.NewTable[float64]()
	var out bytes.Buffer
	f := &ops.Frame[float64]{
		Cap:      2,
		Par:      []float64{math.NaN(), -1},
		Taylor:   make([]float64, 3*2),
		Discrete: []func(float64) float64{math.Floor},
		Text:     []string{"x = ", "\n"},
		Print:    &out,
	}
	copy(f.Tay(1), []float64{2.7, 1})

	table[ops.Dis].ForwardAny(0, 1, 2, []int{0, 1}, f)
	assert.Equal(t, []float64{2, 0}, f.Tay(2))

	table[ops.Pri].Forward0(0, []int{ops.PriValueVar, 1, 0, 1, 1}, f)
	assert.Equal(t, "x = 2.7\n", out.String())

	// A positive position suppresses the line.
	f.Par[1] = 1
	out.Reset()
	table[ops.Pri].Forward0(0, []int{ops.PriValueVar, 1, 0, 1, 1}, f)
	assert.Empty(t, out.String())
}

func TestEvalDynamic(t *testing.T) {
	par := []float64{math.NaN(), 2, 3, 0.5}
	discrete := []func(float64) float64{math.Ceil}

	assert.Equal(t, 6.0, ops.EvalDynamic(ops.Mulvv, []int{1, 2}, par, discrete))
	assert.Equal(t, 8.0, ops.EvalDynamic(ops.Powvv, []int{1, 2}, par, discrete))
	assert.InDelta(t, math.Sin(0.5), ops.EvalDynamic(ops.Sin, []int{3}, par, discrete), 1e-15)
	assert.Equal(t, 1.0, ops.EvalDynamic(ops.Dis, []int{0, 3}, par, discrete))
	assert.Equal(t, 0.5, ops.EvalDynamic(ops.CExp, []int{int(ops.CmpGt), 1, 2, 1, 3}, par, discrete))

	assert.Equal(t, 0, ops.DynNumArg(ops.Inv))
	assert.Equal(t, 5, ops.DynNumArg(ops.CExp))
	assert.Equal(t, 2, ops.DynNumArg(ops.Addvv))
	assert.Equal(t, 1, ops.DynNumArg(ops.Exp))
}

func TestCatalogAndTable(t *testing.T) {
	require.NoError(t, ops.Validate())

	op, ok := ops.NewTable[float64]().Complete()
	assert.True(t, ok, "missing kernel for %s", op)
	op, ok = ops.NewTable[float32]().Complete()
	assert.True(t, ok, "missing kernel for %s", op)

	assert.Equal(t, 3, ops.NumRes(ops.Powvv))
	assert.Equal(t, 2, ops.NumRes(ops.Tan))
	assert.Equal(t, 1, ops.NumRes(ops.Exp))
	assert.True(t, ops.Lookup(ops.Mulvv).Has(ops.Commutative))
	assert.True(t, ops.IsCompare(ops.Levp))
	assert.False(t, ops.IsCompare(ops.CExp))
	assert.Equal(t, "OpCode(200)", ops.OpCode(200).String())
}

func TestEachVarArg(t *testing.T) {
	collect := func(op ops.OpCode, arg []int) []int {
		var got []int
		ops.EachVarArg(op, arg, func(pos int) { got = append(got, pos) })
		return got
	}
	assert.Equal(t, []int{0, 1}, collect(ops.Mulvv, []int{3, 4}))
	assert.Equal(t, []int{1}, collect(ops.Divpv, []int{1, 4}))
	assert.Equal(t, []int{2, 5}, collect(ops.CExp, []int{0, ops.CExpLeftVar | ops.CExpFalseVar, 1, 1, 2, 3}))
	assert.Equal(t, []int{3}, collect(ops.CSkip, []int{0, ops.CExpRightVar, 1, 2, 0, 0, 7}))
	assert.Equal(t, []int{3}, collect(ops.Pri, []int{ops.PriValueVar, 1, 0, 2, 0}))
	assert.Equal(t, []int{2, 6}, collect(ops.CSum, []int{3, ops.CSumVar, 1, 0, 2, ops.CSumVar | ops.CSumNeg, 3, 8}))
	assert.Nil(t, collect(ops.AFun, []int{0, 0, 1, 1}))
}
