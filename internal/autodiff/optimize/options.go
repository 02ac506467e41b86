package optimize

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

const (
	// HashTableSize is the number of buckets used by common operator
	// elimination.
	HashTableSize = 10000

	// DefaultCollisionLimit bounds the candidates kept per bucket.
	DefaultCollisionLimit = 10
)

// Options selects optimizer passes.
type Options struct {
	// NoConditionalSkip disables CSkip synthesis.
	NoConditionalSkip bool
	// NoCompareOp drops comparison operators, which also stops counting
	// compare changes for them.
	NoCompareOp bool
	// NoPrintForOp drops print operators.
	NoPrintForOp bool
	// NoCumulativeSumOp disables folding of addition chains.
	NoCumulativeSumOp bool
	// CollisionLimit is the maximum chain length per hash bucket.
	CollisionLimit int
}

// DefaultOptions enables every pass.
func DefaultOptions() Options {
	return Options{CollisionLimit: DefaultCollisionLimit}
}

// ParseOptions parses a whitespace separated option list such as
// "no_compare_op collision_limit=4". Every invalid word is reported.
func ParseOptions(s string) (Options, error) {
	opt := DefaultOptions()
	var err error
	for _, word := range strings.Fields(s) {
		name, value, hasValue := strings.Cut(word, "=")
		switch {
		case word == "no_conditional_skip":
			opt.NoConditionalSkip = true
		case word == "no_compare_op":
			opt.NoCompareOp = true
		case word == "no_print_for_op":
			opt.NoPrintForOp = true
		case word == "no_cumulative_sum_op":
			opt.NoCumulativeSumOp = true
		case name == "collision_limit" && hasValue:
			n, perr := strconv.Atoi(value)
			if perr != nil || n < 1 {
				err = multierr.Append(err, errors.Errorf("optimize: collision_limit %q is not a positive integer", value))
				continue
			}
			opt.CollisionLimit = n
		default:
			err = multierr.Append(err, errors.Errorf("optimize: unknown option %q", word))
		}
	}
	return opt, err
}

// String formats o in the syntax accepted by ParseOptions.
func (o Options) String() string {
	var words []string
	if o.NoConditionalSkip {
		words = append(words, "no_conditional_skip")
	}
	if o.NoCompareOp {
		words = append(words, "no_compare_op")
	}
	if o.NoPrintForOp {
		words = append(words, "no_print_for_op")
	}
	if o.NoCumulativeSumOp {
		words = append(words, "no_cumulative_sum_op")
	}
	if o.CollisionLimit != DefaultCollisionLimit {
		words = append(words, "collision_limit="+strconv.Itoa(o.CollisionLimit))
	}
	return strings.Join(words, " ")
}
