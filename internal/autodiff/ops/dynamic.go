package ops

// Dynamic parameters are derived by operators applied to earlier
// parameters. They reuse the variable operator codes with every argument a
// parameter index:
//
//	Inv                 independent dynamic, no arguments
//	unary codes         arg[0]
//	Addvv ... Zmulvv    arg[0], arg[1]
//	Dis                 arg[0] discrete index, arg[1]
//	CExp                arg[0] Cmp, arg[1..4] left, right, ifTrue, ifFalse

// DynNumArg returns the argument count of a dynamic parameter operator.
func DynNumArg(op OpCode) int {
	switch op {
	case Inv:
		return 0
	case CExp:
		return 5
	case Dis:
		return 2
	}
	return catalog[op].NumArg
}

// EvalDynamic computes the value of a dynamic parameter from the current
// parameter table.
func EvalDynamic[T Float](op OpCode, arg []int, par []T, discrete []func(T) T) T {
	switch op {
	case CExp:
		return CondExp(Cmp(arg[0]), par[arg[1]], par[arg[2]], par[arg[3]], par[arg[4]])
	case Dis:
		return discrete[arg[0]](par[arg[1]])
	case Addvv, Subvv, Mulvv, Divvv, Powvv, Zmulvv:
		return Binary(op, par[arg[0]], par[arg[1]])
	}
	return Unary(op, par[arg[0]])
}
