package tape

import (
	"github.com/google/uuid"

	"github.com/born-ml/adtape/internal/autodiff/ops"
	"github.com/born-ml/adtape/internal/errhand"
)

// Player is the replay representation of a finished tape. Its slices are
// shared by every function replaying it and must not be modified.
type Player[T ops.Float] struct {
	ID uuid.UUID

	Ops  []ops.OpCode
	Args []int
	// OpArg[i] is the offset of operator i's arguments in Args.
	OpArg []int
	// OpVar[i] is the primary result of operator i.
	OpVar []int

	NumVar int
	NumInd int

	Par   []T
	IsDyn []bool

	// Dynamic parameter derivation in creation order. Entry i computes
	// parameter DynPar[i] by DynOp[i] from DynArg[DynStart[i]:].
	DynPar    []int
	DynOp     []ops.OpCode
	DynArg    []int
	DynStart  []int
	NumDynInd int

	Text []string
}

func newPlayer[T ops.Float](r *Recorder[T]) *Player[T] {
	d := r.dyn.clone()
	p := &Player[T]{
		ID:        r.id,
		Ops:       append([]ops.OpCode(nil), r.ops...),
		Args:      append([]int(nil), r.args...),
		NumVar:    r.numVar,
		NumInd:    r.numInd,
		Par:       append([]T(nil), r.par...),
		IsDyn:     append([]bool(nil), r.isDyn...),
		DynPar:    d.par,
		DynOp:     d.op,
		DynArg:    d.arg,
		DynStart:  d.start,
		NumDynInd: d.ind,
		Text:      append([]string(nil), r.text...),
	}
	p.index()
	return p
}

// index fills OpArg and OpVar.
func (p *Player[T]) index() {
	p.OpArg = make([]int, len(p.Ops))
	p.OpVar = make([]int, len(p.Ops))
	arg, nv := 0, 0
	for i, op := range p.Ops {
		p.OpArg[i] = arg
		nv += ops.NumRes(op)
		p.OpVar[i] = nv - 1
		arg += ops.NumArg(op, p.Args[arg:])
	}
	errhand.Internal(arg == len(p.Args), "arg == len(p.Args)")
	errhand.Internal(nv == p.NumVar, "nv == p.NumVar")
}

// NumOp returns the number of operators, Begin and End included.
func (p *Player[T]) NumOp() int {
	return len(p.Ops)
}

// Arg returns the arguments of operator i.
func (p *Player[T]) Arg(i int) []int {
	op := p.Ops[i]
	start := p.OpArg[i]
	return p.Args[start : start+ops.NumArg(op, p.Args[start:])]
}

// NumDyn returns the number of dynamic parameters.
func (p *Player[T]) NumDyn() int {
	return len(p.DynPar)
}

// DynArgs returns the arguments of dynamic parameter i.
func (p *Player[T]) DynArgs(i int) []int {
	start := p.DynStart[i]
	return p.DynArg[start : start+ops.DynNumArg(p.DynOp[i])]
}

// Clone returns a deep copy of p.
func (p *Player[T]) Clone() *Player[T] {
	return &Player[T]{
		ID:        p.ID,
		Ops:       append([]ops.OpCode(nil), p.Ops...),
		Args:      append([]int(nil), p.Args...),
		OpArg:     append([]int(nil), p.OpArg...),
		OpVar:     append([]int(nil), p.OpVar...),
		NumVar:    p.NumVar,
		NumInd:    p.NumInd,
		Par:       append([]T(nil), p.Par...),
		IsDyn:     append([]bool(nil), p.IsDyn...),
		DynPar:    append([]int(nil), p.DynPar...),
		DynOp:     append([]ops.OpCode(nil), p.DynOp...),
		DynArg:    append([]int(nil), p.DynArg...),
		DynStart:  append([]int(nil), p.DynStart...),
		NumDynInd: p.NumDynInd,
		Text:      append([]string(nil), p.Text...),
	}
}

// SetDynamic stores the independent dynamic values dyn and recomputes
// every derived dynamic parameter in par, which must have the layout of
// p.Par. discrete serves Dis derivations.
func (p *Player[T]) SetDynamic(par []T, dyn []T, discrete []func(T) T) {
	errhand.Usagef(len(dyn) == p.NumDynInd, "len(dyn) == NumDynInd",
		"got %d dynamic values, tape has %d", len(dyn), p.NumDynInd)
	j := 0
	for i, op := range p.DynOp {
		if op == ops.Inv {
			par[p.DynPar[i]] = dyn[j]
			j++
			continue
		}
		par[p.DynPar[i]] = ops.EvalDynamic(op, p.DynArgs(i), par, discrete)
	}
}
