package autodiff

import (
	"strings"

	"github.com/born-ml/adtape/internal/autodiff/optimize"
	"github.com/born-ml/adtape/internal/errhand"
)

// Optimize replaces the operator sequence with an equivalent, usually
// shorter one. options is a space separated list of
//
//	no_conditional_skip   do not synthesize conditional skips
//	no_compare_op         drop comparison operators
//	no_print_for_op       drop print operators
//	no_cumulative_sum_op  do not fold additions into cumulative sums
//	collision_limit=n     bound on hash bucket entries while matching
//
// An empty string selects Config.Optimize. Taylor coefficients computed
// before the call are discarded; clones keep the old sequence.
func (f *Function[T]) Optimize(options string) {
	f.checkOpen()
	cfg := f.opts.cfg.Optimize
	if options == "" {
		options = cfg.Options
	}
	opt, err := optimize.ParseOptions(options)
	errhand.Usagef(err == nil, "optimize options", "%v", err)
	if !strings.Contains(options, "collision_limit") && cfg.CollisionLimit > 0 {
		opt.CollisionLimit = cfg.CollisionLimit
	}

	p, dep := optimize.Optimize(f.player, f.dep, opt)
	f.dep = dep
	f.setPlayer(p)
}
