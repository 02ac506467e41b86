package ops

import (
	"fmt"

	"github.com/pkg/errors"
)

// OpCode identifies a tape operator.
//
// Naming follows the argument classes: a "vv" operator takes two variables,
// "pv" a parameter then a variable, "vp" a variable then a parameter, and
// "pp" (comparisons only) two parameters of which at least one is dynamic.
type OpCode uint8

// Operator codes. The order is the index into the catalog and kernel table.
const (
	Abs OpCode = iota
	Acos
	Acosh
	Addpv
	Addvv
	AFun
	Asin
	Asinh
	Atan
	Atanh
	Begin
	CExp
	Cos
	Cosh
	CSkip
	CSum
	Dis
	Divpv
	Divvp
	Divvv
	End
	Eqpp
	Eqpv
	Eqvv
	Exp
	Expm1
	FunAP
	FunAV
	FunRP
	FunRV
	Inv
	Lepp
	Lepv
	Levp
	Levv
	Log
	Log1p
	Ltpp
	Ltpv
	Ltvp
	Ltvv
	Mulpv
	Mulvv
	Neg
	Nepp
	Nepv
	Nevv
	Par
	Powpv
	Powvp
	Powvv
	Pri
	Sign
	Sin
	Sinh
	Sqrt
	Subpv
	Subvp
	Subvv
	Tan
	Tanh
	Zmulpv
	Zmulvp
	Zmulvv
	NumOpCode
)

// Flag describes properties of an operator that the recorder and the
// optimizer care about.
type Flag uint8

const (
	// Commutative operators are matched with swapped arguments too.
	Commutative Flag = 1 << iota
	// Comparison operators have no result and feed the compare-change count.
	Comparison
	// Matchable operators take part in common-operator elimination.
	Matchable
	// VarLen operators compute their argument count from the argument array.
	VarLen
)

// Info is one catalog entry.
type Info struct {
	Name   string
	NumArg int // zero for VarLen operators
	NumRes int
	Flags  Flag
	// VarArgs lists, for fixed-arity operators, which argument positions
	// are variable indices.
	VarArgs []int
}

// Has reports whether all bits of f are set.
func (i Info) Has(f Flag) bool {
	return i.Flags&f == f
}

const (
	opM  = Matchable
	opMC = Matchable | Commutative
	opC  = Comparison
)

var catalog = [NumOpCode]Info{
	Abs:    {"Abs", 1, 1, opM, []int{0}},
	Acos:   {"Acos", 1, 2, opM, []int{0}},
	Acosh:  {"Acosh", 1, 2, opM, []int{0}},
	Addpv:  {"Addpv", 2, 1, opM, []int{1}},
	Addvv:  {"Addvv", 2, 1, opMC, []int{0, 1}},
	AFun:   {"AFun", 4, 0, 0, nil},
	Asin:   {"Asin", 1, 2, opM, []int{0}},
	Asinh:  {"Asinh", 1, 2, opM, []int{0}},
	Atan:   {"Atan", 1, 2, opM, []int{0}},
	Atanh:  {"Atanh", 1, 2, opM, []int{0}},
	Begin:  {"Begin", 1, 1, 0, nil},
	CExp:   {"CExp", 6, 1, 0, nil},
	Cos:    {"Cos", 1, 2, opM, []int{0}},
	Cosh:   {"Cosh", 1, 2, opM, []int{0}},
	CSkip:  {"CSkip", 0, 0, VarLen, nil},
	CSum:   {"CSum", 0, 1, VarLen, nil},
	Dis:    {"Dis", 2, 1, opM, []int{1}},
	Divpv:  {"Divpv", 2, 1, opM, []int{1}},
	Divvp:  {"Divvp", 2, 1, opM, []int{0}},
	Divvv:  {"Divvv", 2, 1, opM, []int{0, 1}},
	End:    {"End", 0, 0, 0, nil},
	Eqpp:   {"Eqpp", 2, 0, opC, nil},
	Eqpv:   {"Eqpv", 2, 0, opC, []int{1}},
	Eqvv:   {"Eqvv", 2, 0, opC, []int{0, 1}},
	Exp:    {"Exp", 1, 1, opM, []int{0}},
	Expm1:  {"Expm1", 1, 1, opM, []int{0}},
	FunAP:  {"FunAP", 1, 0, 0, nil},
	FunAV:  {"FunAV", 1, 0, 0, []int{0}},
	FunRP:  {"FunRP", 1, 0, 0, nil},
	FunRV:  {"FunRV", 0, 1, 0, nil},
	Inv:    {"Inv", 0, 1, 0, nil},
	Lepp:   {"Lepp", 2, 0, opC, nil},
	Lepv:   {"Lepv", 2, 0, opC, []int{1}},
	Levp:   {"Levp", 2, 0, opC, []int{0}},
	Levv:   {"Levv", 2, 0, opC, []int{0, 1}},
	Log:    {"Log", 1, 1, opM, []int{0}},
	Log1p:  {"Log1p", 1, 1, opM, []int{0}},
	Ltpp:   {"Ltpp", 2, 0, opC, nil},
	Ltpv:   {"Ltpv", 2, 0, opC, []int{1}},
	Ltvp:   {"Ltvp", 2, 0, opC, []int{0}},
	Ltvv:   {"Ltvv", 2, 0, opC, []int{0, 1}},
	Mulpv:  {"Mulpv", 2, 1, opM, []int{1}},
	Mulvv:  {"Mulvv", 2, 1, opMC, []int{0, 1}},
	Neg:    {"Neg", 1, 1, opM, []int{0}},
	Nepp:   {"Nepp", 2, 0, opC, nil},
	Nepv:   {"Nepv", 2, 0, opC, []int{1}},
	Nevv:   {"Nevv", 2, 0, opC, []int{0, 1}},
	Par:    {"Par", 1, 1, 0, nil},
	Powpv:  {"Powpv", 2, 3, opM, []int{1}},
	Powvp:  {"Powvp", 2, 1, opM, []int{0}},
	Powvv:  {"Powvv", 2, 3, opM, []int{0, 1}},
	Pri:    {"Pri", 5, 0, 0, nil},
	Sign:   {"Sign", 1, 1, opM, []int{0}},
	Sin:    {"Sin", 1, 2, opM, []int{0}},
	Sinh:   {"Sinh", 1, 2, opM, []int{0}},
	Sqrt:   {"Sqrt", 1, 1, opM, []int{0}},
	Subpv:  {"Subpv", 2, 1, opM, []int{1}},
	Subvp:  {"Subvp", 2, 1, opM, []int{0}},
	Subvv:  {"Subvv", 2, 1, opM, []int{0, 1}},
	Tan:    {"Tan", 1, 2, opM, []int{0}},
	Tanh:   {"Tanh", 1, 2, opM, []int{0}},
	Zmulpv: {"Zmulpv", 2, 1, opM, []int{1}},
	Zmulvp: {"Zmulvp", 2, 1, opM, []int{0}},
	Zmulvv: {"Zmulvv", 2, 1, opM, []int{0, 1}},
}

// IsVarArg reports whether argument position pos holds a variable index.
func (i Info) IsVarArg(pos int) bool {
	for _, v := range i.VarArgs {
		if v == pos {
			return true
		}
	}
	return false
}

// Lookup returns the catalog entry for op.
func Lookup(op OpCode) Info {
	return catalog[op]
}

func (op OpCode) String() string {
	if op >= NumOpCode {
		return fmt.Sprintf("OpCode(%d)", uint8(op))
	}
	return catalog[op].Name
}

// NumRes returns the number of result variables of op.
func NumRes(op OpCode) int {
	return catalog[op].NumRes
}

// NumArg returns the number of arguments of the operator whose arguments
// start at arg. Variable length operators read their count from arg.
func NumArg(op OpCode, arg []int) int {
	switch op {
	case CSum:
		return 2*arg[0] + 2
	case CSkip:
		return 7 + arg[4] + arg[5]
	default:
		return catalog[op].NumArg
	}
}

// Validate checks that the catalog is complete. It is called once by
// setup before any worker starts.
func Validate() error {
	for op := OpCode(0); op < NumOpCode; op++ {
		info := catalog[op]
		if info.Name == "" {
			return errors.Errorf("ops: opcode %d has no catalog entry", op)
		}
		if info.Has(VarLen) != (info.NumArg == 0 && op != End && op != Inv && op != FunRV) {
			return errors.Errorf("ops: %s has inconsistent variable length flag", info.Name)
		}
	}
	return nil
}

// IsCompare reports whether op is a comparison operator.
func IsCompare(op OpCode) bool {
	return catalog[op].Has(Comparison)
}

// EachVarArg calls fn with every position of arg that holds a variable
// index. arg starts at the operator's first argument.
func EachVarArg(op OpCode, arg []int, fn func(pos int)) {
	switch op {
	case CExp:
		for bit, pos := CExpLeftVar, 2; pos <= 5; bit, pos = bit<<1, pos+1 {
			if arg[1]&bit != 0 {
				fn(pos)
			}
		}
	case CSkip:
		if arg[1]&CExpLeftVar != 0 {
			fn(2)
		}
		if arg[1]&CExpRightVar != 0 {
			fn(3)
		}
	case Pri:
		if arg[0]&PriPosVar != 0 {
			fn(1)
		}
		if arg[0]&PriValueVar != 0 {
			fn(3)
		}
	case CSum:
		for t := 0; t < arg[0]; t++ {
			if arg[1+2*t]&CSumVar != 0 {
				fn(2 + 2*t)
			}
		}
	default:
		for _, pos := range catalog[op].VarArgs {
			fn(pos)
		}
	}
}
