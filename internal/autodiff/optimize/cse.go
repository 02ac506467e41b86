package optimize

import (
	"slices"

	"github.com/born-ml/adtape/internal/autodiff/ops"
)

// canon returns the arguments of operator i with every variable replaced
// by its representative.
func (g *graph[T]) canon(i int) []int {
	op := g.p.Ops[i]
	arg := slices.Clone(g.p.Arg(i))
	ops.EachVarArg(op, arg, func(pos int) {
		arg[pos] = g.rep[arg[pos]]
	})
	return arg
}

func hash(op ops.OpCode, arg []int) int {
	h := uint64(op) + 1
	for _, a := range arg {
		h = h*1099511628211 ^ uint64(a)
	}
	return int(h % HashTableSize)
}

// lookup returns the first operator in bucket equal to (op, arg).
func (g *graph[T]) lookup(bucket []int, op ops.OpCode, arg []int) (int, bool) {
	for _, j := range bucket {
		if g.p.Ops[j] == op && slices.Equal(g.canon(j), arg) {
			return j, true
		}
	}
	return 0, false
}

// eliminate replaces every matchable operator by the earliest equivalent
// one. Buckets keep at most limit candidates; operators that do not fit
// are never matched against.
func (g *graph[T]) eliminate(limit int) {
	table := make([][]int, HashTableSize)
	for i, op := range g.p.Ops {
		if !ops.Lookup(op).Has(ops.Matchable) {
			continue
		}
		arg := g.canon(i)
		h := hash(op, arg)
		if j, ok := g.lookup(table[h], op, arg); ok {
			g.replace(i, j)
			continue
		}
		if ops.Lookup(op).Has(ops.Commutative) {
			swapped := []int{arg[1], arg[0]}
			if j, ok := g.lookup(table[hash(op, swapped)], op, swapped); ok {
				g.replace(i, j)
				continue
			}
		}
		if len(table[h]) < limit {
			table[h] = append(table[h], i)
		}
	}
}

// replace makes operator j stand for operator i. Both have the same code
// and therefore the same result layout.
func (g *graph[T]) replace(i, j int) {
	g.repOp[i] = j
	g.replaced++
	for k := 0; k < ops.NumRes(g.p.Ops[i]); k++ {
		g.rep[g.p.OpVar[i]-k] = g.p.OpVar[j] - k
	}
}
