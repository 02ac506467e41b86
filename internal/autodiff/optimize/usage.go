package optimize

import (
	"github.com/born-ml/adtape/internal/autodiff/ops"
)

// cond is a branch of a conditional expression: the CExp operator index
// times two, plus one for the true branch.
type cond int

func branch(cexp int, ifTrue bool) cond {
	c := cond(2 * cexp)
	if ifTrue {
		c++
	}
	return c
}

func (c cond) cexp() int    { return int(c) / 2 }
func (c cond) ifTrue() bool { return c%2 == 1 }

// condSet is a sorted set of branches. An operator with branch b in its
// set is needed only when b is taken.
type condSet []cond

func (s condSet) with(c cond) condSet {
	out := make(condSet, 0, len(s)+1)
	i := 0
	for ; i < len(s) && s[i] < c; i++ {
		out = append(out, s[i])
	}
	out = append(out, c)
	if i < len(s) && s[i] == c {
		i++
	}
	return append(out, s[i:]...)
}

func (s condSet) intersect(t condSet) condSet {
	var out condSet
	for i, j := 0, 0; i < len(s) && j < len(t); {
		switch {
		case s[i] < t[j]:
			i++
		case s[i] > t[j]:
			j++
		default:
			out = append(out, s[i])
			i++
			j++
		}
	}
	return out
}

// usage marks the operators the dependents and the side-effecting
// operators need, walking the tape backwards. Replaced operators are
// skipped; their uses reach the representative through rep.
func (g *graph[T]) usage(dep []int, opt Options) {
	p := g.p
	n := p.NumOp()
	g.dep = dep
	g.used = make([]bool, n)
	g.conds = make([]condSet, n)

	mark := func(i int, s condSet) {
		if !g.used[i] {
			g.used[i] = true
			g.conds[i] = s
			return
		}
		g.conds[i] = g.conds[i].intersect(s)
	}

	for _, v := range dep {
		mark(g.varOp[g.rep[v]], nil)
	}
	for i := 0; i < n; i++ {
		switch op := p.Ops[i]; {
		case op == ops.Begin, op == ops.Inv, op == ops.End:
			mark(i, nil)
		case ops.IsCompare(op):
			if !opt.NoCompareOp {
				mark(i, nil)
			}
		case op == ops.Pri:
			if !opt.NoPrintForOp {
				mark(i, nil)
			}
		case op == ops.AFun:
			// The whole call block, up to the closing AFun.
			arg := p.Arg(i)
			end := i + arg[2] + arg[3] + 1
			for ; i <= end; i++ {
				mark(i, nil)
			}
			i = end
		}
	}

	for i := n - 1; i >= 0; i-- {
		if !g.used[i] || g.repOp[i] != i {
			continue
		}
		op := p.Ops[i]
		arg := p.Arg(i)
		s := g.conds[i]
		ops.EachVarArg(op, arg, func(pos int) {
			us := s
			if op == ops.CExp && (pos == 4 || pos == 5) {
				us = s.with(branch(i, pos == 4))
			}
			mark(g.varOp[g.rep[arg[pos]]], us)
		})
	}
}
