// Package tape records operator sequences and snapshots them into
// immutable players.
//
// A Recorder is owned by the goroutine that created it. Variables are
// numbered in recording order: 0 is the phantom written by Begin, the
// independent variables follow, then the results of every operator.
// Arguments are flat integers interpreted per operator as variable
// indices, parameter indices or operator-specific codes.
package tape

import (
	"math"

	"github.com/google/uuid"

	"github.com/born-ml/adtape/internal/autodiff/ops"
	"github.com/born-ml/adtape/internal/errhand"
	"github.com/born-ml/adtape/internal/logging"
	"github.com/born-ml/adtape/internal/metrics"
)

// Sink is the recording capability the tagged value type writes through.
type Sink[T ops.Float] interface {
	// ID identifies the tape.
	ID() uuid.UUID
	// Recording reports whether operators may still be appended.
	Recording() bool
	// PutOp appends op and returns the index of its primary result.
	PutOp(op ops.OpCode) int
	// PutArg appends arguments of the last operator.
	PutArg(args ...int)
	// PutConPar returns the parameter index of constant v.
	PutConPar(v T) int
	// PutDynPar appends a dynamic parameter derived by op from args.
	PutDynPar(v T, op ops.OpCode, args ...int) int
	// PutTxt returns the index of s in the text table.
	PutTxt(s string) int
}

var _ Sink[float64] = (*Recorder[float64])(nil)

// Recorder appends operators, arguments and parameters to a tape.
type Recorder[T ops.Float] struct {
	id         uuid.UUID
	registered bool
	recording  bool

	ops    []ops.OpCode
	args   []int
	numVar int
	numInd int

	par      []T
	isDyn    []bool
	conIndex map[uint64]int

	dyn dynamics

	text []string
}

// dynamics describes how each dynamic parameter is derived. Entry i is the
// i-th dynamic parameter in creation order.
type dynamics struct {
	par   []int
	op    []ops.OpCode
	arg   []int
	start []int
	ind   int
}

func (d *dynamics) add(par int, op ops.OpCode, args []int) {
	d.par = append(d.par, par)
	d.op = append(d.op, op)
	d.start = append(d.start, len(d.arg))
	d.arg = append(d.arg, args...)
	if op == ops.Inv {
		d.ind++
	}
}

func (d dynamics) clone() dynamics {
	return dynamics{
		par:   append([]int(nil), d.par...),
		op:    append([]ops.OpCode(nil), d.op...),
		arg:   append([]int(nil), d.arg...),
		start: append([]int(nil), d.start...),
		ind:   d.ind,
	}
}

// New starts a tape, registers it as active and writes the Begin operator.
func New[T ops.Float]() *Recorder[T] {
	r := newRecorder[T]()
	r.registered = true
	register(r.id)
	r.PutOp(ops.Begin)
	r.PutArg(0)
	return r
}

func newRecorder[T ops.Float]() *Recorder[T] {
	return &Recorder[T]{
		id:        uuid.New(),
		recording: true,
		par:       []T{T(math.NaN())},
		isDyn:     []bool{false},
		conIndex:  make(map[uint64]int),
	}
}

// Detached returns an unregistered recorder whose parameter, dynamic and
// text tables are copies of p's. Parameter indices of p stay valid on it.
// The optimizer rewrites players through it.
func Detached[T ops.Float](p *Player[T]) *Recorder[T] {
	r := newRecorder[T]()
	r.par = append(r.par[:0], p.Par...)
	r.isDyn = append(r.isDyn[:0], p.IsDyn...)
	for i, v := range r.par {
		if i > 0 && !r.isDyn[i] {
			r.conIndex[math.Float64bits(float64(v))] = i
		}
	}
	r.dyn = dynamics{
		par:   append([]int(nil), p.DynPar...),
		op:    append([]ops.OpCode(nil), p.DynOp...),
		arg:   append([]int(nil), p.DynArg...),
		start: append([]int(nil), p.DynStart...),
		ind:   p.NumDynInd,
	}
	r.text = append([]string(nil), p.Text...)
	r.PutOp(ops.Begin)
	r.PutArg(0)
	return r
}

// ID returns the tape identity.
func (r *Recorder[T]) ID() uuid.UUID {
	return r.id
}

// Recording reports whether the tape is still open.
func (r *Recorder[T]) Recording() bool {
	return r.recording
}

// NumVar returns the number of variables allocated so far, including the
// phantom.
func (r *Recorder[T]) NumVar() int {
	return r.numVar
}

// NumOp returns the number of operators recorded so far.
func (r *Recorder[T]) NumOp() int {
	return len(r.ops)
}

// NumInd returns the number of independent variables.
func (r *Recorder[T]) NumInd() int {
	return r.numInd
}

// PutOp appends op and allocates its results. The returned index is the
// last result, which is the primary one; for operators without results it
// is the last variable allocated before op.
func (r *Recorder[T]) PutOp(op ops.OpCode) int {
	errhand.Usage(r.recording, "r.recording", "tape is not recording")
	r.ops = append(r.ops, op)
	r.numVar += ops.NumRes(op)
	if op == ops.Inv {
		r.numInd++
	}
	return r.numVar - 1
}

// PutArg appends arguments for the last operator.
func (r *Recorder[T]) PutArg(args ...int) {
	r.args = append(r.args, args...)
}

// PutConPar returns the parameter index holding constant v, adding it to
// the table on first use.
func (r *Recorder[T]) PutConPar(v T) int {
	key := math.Float64bits(float64(v))
	if i, ok := r.conIndex[key]; ok {
		return i
	}
	i := len(r.par)
	r.par = append(r.par, v)
	r.isDyn = append(r.isDyn, false)
	r.conIndex[key] = i
	return i
}

// PutDynInd appends an independent dynamic parameter with value v.
func (r *Recorder[T]) PutDynInd(v T) int {
	return r.PutDynPar(v, ops.Inv)
}

// PutDynPar appends a dynamic parameter with value v derived by op from
// args (see ops.EvalDynamic for the argument layout).
func (r *Recorder[T]) PutDynPar(v T, op ops.OpCode, args ...int) int {
	errhand.Internal(len(args) == ops.DynNumArg(op), "len(args) == ops.DynNumArg(op)")
	i := len(r.par)
	r.par = append(r.par, v)
	r.isDyn = append(r.isDyn, true)
	r.dyn.add(i, op, args)
	return i
}

// PutTxt returns the index of s in the text table.
func (r *Recorder[T]) PutTxt(s string) int {
	for i, t := range r.text {
		if t == s {
			return i
		}
	}
	r.text = append(r.text, s)
	return len(r.text) - 1
}

// Finish appends End, stops recording and returns the player.
// The recorder is removed from the active registry.
func (r *Recorder[T]) Finish() *Player[T] {
	r.PutOp(ops.End)
	r.stop()
	p := newPlayer(r)
	if r.registered {
		metrics.TapesRecorded.Inc()
		metrics.OperatorsRecorded.Add(float64(len(r.ops)))
		logging.Default().Debug("tape recorded",
			"tape", r.id,
			"ops", p.NumOp(),
			"vars", p.NumVar,
			"pars", len(p.Par))
	}
	return p
}

// Abort discards the tape.
func (r *Recorder[T]) Abort() {
	r.stop()
	r.ops, r.args, r.par, r.isDyn = nil, nil, nil, nil
	r.dyn = dynamics{}
}

func (r *Recorder[T]) stop() {
	if !r.recording {
		return
	}
	r.recording = false
	if r.registered {
		unregister(r.id)
	}
}
