// Package optimize rewrites a player into an equivalent, usually shorter
// one.
//
// The passes run in this order:
//
//  1. common operator elimination: operators equal to an earlier operator
//     (same code, same arguments after replacement) are replaced by it;
//  2. usage: operators that no dependent, comparison, print or atomic call
//     needs are dropped, and every kept operator learns the set of
//     conditional expression branches it is needed by;
//  3. cumulative sums: chains of additions and subtractions whose
//     intermediate results have a single use collapse into one CSum;
//  4. conditional skips: a CSkip is placed after the comparison operands
//     of a conditional expression, listing the operators only one of its
//     branches needs. There are at most as many CSkips as the earlier
//     passes removed operators, so the player never grows;
//  5. rewrite: the kept operators are renumbered into a new player.
//
// Existing CSkip operators are dropped and synthesized again, so
// optimizing an optimized player does not change its size.
package optimize

import (
	"time"

	"github.com/born-ml/adtape/internal/autodiff/ops"
	"github.com/born-ml/adtape/internal/autodiff/tape"
	"github.com/born-ml/adtape/internal/logging"
	"github.com/born-ml/adtape/internal/metrics"
)

// Optimize returns the optimized player and the indices of the dependent
// variables dep in it.
func Optimize[T ops.Float](p *tape.Player[T], dep []int, opt Options) (*tape.Player[T], []int) {
	start := time.Now()
	if opt.CollisionLimit < 1 {
		opt.CollisionLimit = DefaultCollisionLimit
	}

	g := newGraph(p)
	g.eliminate(opt.CollisionLimit)
	g.usage(dep, opt)
	if !opt.NoCumulativeSumOp {
		g.foldSums()
	}
	out, newDep := g.rewrite(dep, !opt.NoConditionalSkip)

	removed := p.NumOp() - out.NumOp()
	metrics.OptimizeDuration.Observe(time.Since(start).Seconds())
	if removed > 0 {
		metrics.OperatorsRemoved.Add(float64(removed))
	}
	logging.Default().Debug("optimize",
		"options", opt.String(),
		"ops_before", p.NumOp(),
		"ops_after", out.NumOp(),
		"vars_before", p.NumVar,
		"vars_after", out.NumVar,
		"replaced", g.replaced,
		"cskips", g.cskips,
		"csums", len(g.sums))
	return out, newDep
}

// graph holds the analysis of one player.
type graph[T ops.Float] struct {
	p   *tape.Player[T]
	dep []int

	// varOp[v] is the operator producing variable v.
	varOp []int

	// rep[v] is the variable v is replaced by; repOp likewise for
	// operators. Representatives map to themselves.
	rep      []int
	repOp    []int
	replaced int

	used  []bool
	conds []condSet

	// Operators folded into a cumulative sum, and the sums keyed by the
	// operator they replace.
	folded []bool
	sums   map[int]*sumTerms

	cskips int
}

func newGraph[T ops.Float](p *tape.Player[T]) *graph[T] {
	g := &graph[T]{
		p:      p,
		varOp:  make([]int, p.NumVar),
		rep:    make([]int, p.NumVar),
		repOp:  make([]int, p.NumOp()),
		folded: make([]bool, p.NumOp()),
		sums:   make(map[int]*sumTerms),
	}
	for i, op := range p.Ops {
		g.repOp[i] = i
		for k := 0; k < ops.NumRes(op); k++ {
			g.varOp[p.OpVar[i]-k] = i
		}
	}
	for v := range g.rep {
		g.rep[v] = v
	}
	return g
}

// live reports whether operator i survives elimination and usage.
func (g *graph[T]) live(i int) bool {
	return g.used[i] && g.repOp[i] == i && !g.folded[i]
}
