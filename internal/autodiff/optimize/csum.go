package optimize

import (
	"github.com/born-ml/adtape/internal/autodiff/ops"
)

// sumTerm is one operand of a cumulative sum: a variable or parameter
// index with CSum flags.
type sumTerm struct {
	flags int
	index int
}

// sumTerms are the operands of a cumulative sum in evaluation order.
type sumTerms struct {
	terms  []sumTerm
	folded int
}

func isSum(op ops.OpCode) bool {
	switch op {
	case ops.Addvv, ops.Addpv, ops.Subvv, ops.Subpv, ops.Subvp:
		return true
	}
	return false
}

// foldSums collapses addition chains. An addition or subtraction whose
// result has exactly one use, by another addition or subtraction, is
// folded into its user; the outermost operator of each chain becomes a
// CSum when at least one operator was folded into it.
func (g *graph[T]) foldSums() {
	p := g.p
	uses := make([]int, p.NumVar)
	for i := range p.Ops {
		if !g.used[i] || g.repOp[i] != i {
			continue
		}
		arg := p.Arg(i)
		ops.EachVarArg(p.Ops[i], arg, func(pos int) {
			uses[g.rep[arg[pos]]]++
		})
	}
	// Dependents count as uses.
	g.depUses(uses)

	for i := p.NumOp() - 1; i >= 0; i-- {
		if !g.live(i) || !isSum(p.Ops[i]) {
			continue
		}
		t := &sumTerms{}
		g.collect(i, uses, t)
		if t.folded > 0 {
			g.sums[i] = t
		}
	}
}

func (g *graph[T]) depUses(uses []int) {
	for _, v := range g.dep {
		uses[g.rep[v]]++
	}
}

// collect appends the terms of sum operator i in the order its chain
// evaluated them. Only the accumulated operand is folded: the left
// operand, or either operand of an addition. Folding anything else would
// change the rounding of the result.
func (g *graph[T]) collect(i int, uses []int, t *sumTerms) {
	p := g.p
	arg := p.Arg(i)
	switch p.Ops[i] {
	case ops.Addvv:
		switch {
		case g.foldable(arg[0], uses):
			g.fold(arg[0], uses, t)
			t.variable(arg[1], false)
		case g.foldable(arg[1], uses):
			g.fold(arg[1], uses, t)
			t.variable(arg[0], false)
		default:
			t.variable(arg[0], false)
			t.variable(arg[1], false)
		}
	case ops.Addpv:
		if g.foldable(arg[1], uses) {
			g.fold(arg[1], uses, t)
			t.param(arg[0], false)
		} else {
			t.param(arg[0], false)
			t.variable(arg[1], false)
		}
	case ops.Subvv:
		g.accumulate(arg[0], uses, t)
		t.variable(arg[1], true)
	case ops.Subpv:
		t.param(arg[0], false)
		t.variable(arg[1], true)
	case ops.Subvp:
		g.accumulate(arg[0], uses, t)
		t.param(arg[1], true)
	}
}

// foldable reports whether variable v is a sum whose only use is the
// operator being collected.
func (g *graph[T]) foldable(v int, uses []int) bool {
	v = g.rep[v]
	j := g.varOp[v]
	return isSum(g.p.Ops[j]) && uses[v] == 1 && g.live(j)
}

func (g *graph[T]) fold(v int, uses []int, t *sumTerms) {
	j := g.varOp[g.rep[v]]
	g.folded[j] = true
	t.folded++
	g.collect(j, uses, t)
}

func (g *graph[T]) accumulate(v int, uses []int, t *sumTerms) {
	if g.foldable(v, uses) {
		g.fold(v, uses, t)
		return
	}
	t.variable(v, false)
}

func (t *sumTerms) variable(v int, neg bool) {
	flags := ops.CSumVar
	if neg {
		flags |= ops.CSumNeg
	}
	t.terms = append(t.terms, sumTerm{flags: flags, index: v})
}

func (t *sumTerms) param(i int, neg bool) {
	flags := 0
	if neg {
		flags = ops.CSumNeg
	}
	t.terms = append(t.terms, sumTerm{flags: flags, index: i})
}

// csumArgs encodes t with variables mapped through newVar.
func (t *sumTerms) csumArgs(newVar func(int) int) []int {
	arg := make([]int, 0, 2*len(t.terms)+2)
	arg = append(arg, len(t.terms))
	for _, term := range t.terms {
		i := term.index
		if term.flags&ops.CSumVar != 0 {
			i = newVar(i)
		}
		arg = append(arg, term.flags, i)
	}
	return append(arg, 2*len(t.terms)+2)
}
