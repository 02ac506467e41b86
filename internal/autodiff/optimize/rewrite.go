package optimize

import (
	"slices"

	"github.com/born-ml/adtape/internal/autodiff/ops"
	"github.com/born-ml/adtape/internal/autodiff/tape"
)

// item is one operator of the rewritten tape: a kept operator (op >= 0)
// or a CSkip for the conditional expression cexp.
type item struct {
	op   int
	cexp int
}

// skipLists are the operators a CSkip flags, as old operator indices.
type skipLists struct {
	ifTrue, ifFalse []int
}

// lastInv returns the index of the last independent variable operator.
func (g *graph[T]) lastInv() int {
	last := 0
	for i, op := range g.p.Ops {
		if op == ops.Inv {
			last = i
		}
	}
	return last
}

// skipCandidate is a CSkip for the conditional expression cexp, placed
// right after operator pos.
type skipCandidate struct {
	pos, cexp int
	lists     skipLists
}

func (c skipCandidate) size() int {
	return len(c.lists.ifTrue) + len(c.lists.ifFalse)
}

// skipPlan returns, for each operator index, the CSkips to place right
// after it, and the lists of every CSkip. At most budget CSkips are
// planned; those skipping the most operators win.
func (g *graph[T]) skipPlan(budget int) (map[int][]int, map[int]skipLists) {
	p := g.p
	after := make(map[int][]int)
	lists := make(map[int]skipLists)
	if budget <= 0 {
		return after, lists
	}
	var cands []skipCandidate
	first := g.lastInv()
	for j, op := range p.Ops {
		if op != ops.CExp || !g.live(j) {
			continue
		}
		arg := p.Arg(j)
		pos := first
		if arg[1]&ops.CExpLeftVar != 0 {
			pos = max(pos, g.varOp[g.rep[arg[2]]])
		}
		if arg[1]&ops.CExpRightVar != 0 {
			pos = max(pos, g.varOp[g.rep[arg[3]]])
		}
		var l skipLists
		for i := pos + 1; i < j; i++ {
			if !g.live(i) {
				continue
			}
			for _, c := range g.conds[i] {
				if c.cexp() != j {
					continue
				}
				// Needed only by the true branch: skip when false.
				if c.ifTrue() {
					l.ifFalse = append(l.ifFalse, i)
				} else {
					l.ifTrue = append(l.ifTrue, i)
				}
			}
		}
		if len(l.ifTrue) == 0 && len(l.ifFalse) == 0 {
			continue
		}
		cands = append(cands, skipCandidate{pos: pos, cexp: j, lists: l})
	}
	if len(cands) > budget {
		slices.SortStableFunc(cands, func(a, b skipCandidate) int {
			return b.size() - a.size()
		})
		cands = cands[:budget]
		slices.SortFunc(cands, func(a, b skipCandidate) int {
			return a.cexp - b.cexp
		})
	}
	for _, c := range cands {
		after[c.pos] = append(after[c.pos], c.cexp)
		lists[c.cexp] = c.lists
	}
	return after, lists
}

// rewrite emits the live operators, the cumulative sums and the
// conditional skips into a new player.
func (g *graph[T]) rewrite(dep []int, cskip bool) (*tape.Player[T], []int) {
	p := g.p

	kept := 0
	for i, op := range p.Ops {
		if i > 0 && op != ops.End && op != ops.CSkip && g.live(i) {
			kept++
		}
	}
	after := map[int][]int{}
	lists := map[int]skipLists{}
	if cskip {
		// Each CSkip is one operator; the result may not be longer
		// than p. Begin and End are not counted in kept.
		after, lists = g.skipPlan(p.NumOp() - kept - 2)
	}

	// Order the output and number it; Begin is operator 0.
	var items []item
	for i, op := range p.Ops {
		if i > 0 && op != ops.End && op != ops.CSkip && g.live(i) {
			items = append(items, item{op: i, cexp: -1})
		}
		for _, j := range after[i] {
			items = append(items, item{op: -1, cexp: j})
		}
	}
	newOp := make(map[int]int, len(items))
	for k, it := range items {
		if it.op >= 0 {
			newOp[it.op] = k + 1
		}
	}
	g.cskips = len(lists)

	r := tape.Detached(p)
	newVar := make([]int, p.NumVar)
	mapVar := func(v int) int { return newVar[g.rep[v]] }

	for _, it := range items {
		if it.op < 0 {
			g.emitSkip(r, it.cexp, lists[it.cexp], newOp, mapVar)
			continue
		}
		i := it.op
		op := p.Ops[i]
		if t, ok := g.sums[i]; ok {
			iz := r.PutOp(ops.CSum)
			r.PutArg(t.csumArgs(mapVar)...)
			newVar[p.OpVar[i]] = iz
			continue
		}
		arg := slices.Clone(p.Arg(i))
		ops.EachVarArg(op, arg, func(pos int) {
			arg[pos] = mapVar(arg[pos])
		})
		iz := r.PutOp(op)
		r.PutArg(arg...)
		for k := 0; k < ops.NumRes(op); k++ {
			newVar[p.OpVar[i]-k] = iz - k
		}
	}

	out := r.Finish()
	newDep := make([]int, len(dep))
	for i, v := range dep {
		newDep[i] = mapVar(v)
	}
	return out, newDep
}

func (g *graph[T]) emitSkip(r *tape.Recorder[T], j int, l skipLists, newOp map[int]int, mapVar func(int) int) {
	arg := g.p.Arg(j)
	flags := arg[1] & (ops.CExpLeftVar | ops.CExpRightVar)
	left, right := arg[2], arg[3]
	if flags&ops.CExpLeftVar != 0 {
		left = mapVar(left)
	}
	if flags&ops.CExpRightVar != 0 {
		right = mapVar(right)
	}
	n, m := len(l.ifTrue), len(l.ifFalse)
	out := []int{arg[0], flags, left, right, n, m}
	for _, i := range l.ifTrue {
		out = append(out, newOp[i])
	}
	for _, i := range l.ifFalse {
		out = append(out, newOp[i])
	}
	out = append(out, 7+n+m)
	r.PutOp(ops.CSkip)
	r.PutArg(out...)
}
