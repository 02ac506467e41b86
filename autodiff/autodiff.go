// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides operator overloading automatic differentiation
// on a recorded tape.
//
// Values of type AD carry a Base value and a tag. Operations on Variables
// are recorded; NewFunction turns the recording into a Function that
// evaluates Taylor coefficients forward and partials in reverse.
//
// Example:
//
//	import "github.com/born-ml/adtape/autodiff"
//
//	func main() {
//	    if err := autodiff.Setup(1); err != nil {
//	        log.Fatal(err)
//	    }
//	    x := autodiff.Independent([]float64{3, 4})
//	    y := x[0].Mul(x[0]).Add(x[1].Mul(x[1]))
//	    f := autodiff.NewFunction(x, []autodiff.AD[float64]{y})
//	    defer f.Close()
//
//	    f.Forward(0, []float64{3, 4}) // [25]
//	    f.Reverse(1, []float64{1})    // [6 8]
//	}
package autodiff

import (
	"io"

	"github.com/born-ml/adtape/internal/arena"
	"github.com/born-ml/adtape/internal/autodiff"
	"github.com/born-ml/adtape/internal/autodiff/ops"
	"github.com/born-ml/adtape/internal/config"
	"github.com/born-ml/adtape/internal/errhand"
)

// Float is the set of supported Base types.
type Float = ops.Float

// AD is a tagged value: a constant, a dynamic parameter or a variable.
type AD[T Float] = autodiff.AD[T]

// Kind classifies a tagged value.
type Kind = autodiff.Kind

// Value tags.
const (
	Constant = autodiff.Constant
	Dynamic  = autodiff.Dynamic
	Variable = autodiff.Variable
)

// Function is the replayable form of a finished tape.
type Function[T Float] = autodiff.Function[T]

// FunctionOption configures a Function.
type FunctionOption = autodiff.FunctionOption

// Config holds replay and optimizer defaults.
type Config = config.Config

// Arena hands out coefficient buffers to the functions of one worker.
type Arena = arena.Arena

// ErrNotANumber is returned by Forward when a dependent value is NaN.
var ErrNotANumber = autodiff.ErrNotANumber

// Setup prepares the engine for workers goroutines.
func Setup(workers int) error {
	return autodiff.Setup(workers)
}

// Worker returns the arena of worker i.
func Worker(i int) *Arena {
	return autodiff.Worker(i)
}

// LoadConfig reads a YAML configuration file. An empty path yields the
// defaults with environment overrides applied.
func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return config.Default()
}

// Const returns the constant v.
func Const[T Float](v T) AD[T] {
	return autodiff.Const(v)
}

// Independent opens a tape and returns its independent variables. Every
// call opens a new tape, even on a goroutine that is still recording
// another one; values of the two tapes cannot be mixed.
func Independent[T Float](x []T) []AD[T] {
	return autodiff.Independent(x)
}

// IndependentDynamic opens a tape with independent variables and
// independent dynamic parameters.
func IndependentDynamic[T Float](x, dyn []T) (xs, ds []AD[T]) {
	return autodiff.IndependentDynamic(x, dyn)
}

// Abort discards the open tape of x.
func Abort[T Float](x AD[T]) {
	autodiff.Abort(x)
}

// NewFunction closes the tape of x and returns the function x -> y.
func NewFunction[T Float](x, y []AD[T], opts ...FunctionOption) *Function[T] {
	return autodiff.NewFunction(x, y, opts...)
}

// WithArena takes the function's buffers from a.
func WithArena(a *Arena) FunctionOption {
	return autodiff.WithArena(a)
}

// WithConfig sets the replay and optimizer defaults.
func WithConfig(cfg Config) FunctionOption {
	return autodiff.WithConfig(cfg)
}

// WithCheckNaN overrides the NaN check of the configuration.
func WithCheckNaN(check bool) FunctionOption {
	return autodiff.WithCheckNaN(check)
}

// WithPrintWriter sets the destination of PrintFor output. The default is
// os.Stdout.
func WithPrintWriter(w io.Writer) FunctionOption {
	return autodiff.WithPrintWriter(w)
}

// Cmp is the comparison of a conditional expression.
type Cmp = autodiff.Cmp

// Comparisons for CondExp.
const (
	Lt = autodiff.Lt
	Le = autodiff.Le
	Eq = autodiff.Eq
	Ge = autodiff.Ge
	Gt = autodiff.Gt
	Ne = autodiff.Ne
)

// CondExp returns ifTrue when left c right holds and ifFalse otherwise.
// The choice is made again on every replay.
func CondExp[T Float](c Cmp, left, right, ifTrue, ifFalse AD[T]) AD[T] {
	return autodiff.CondExp(c, left, right, ifTrue, ifFalse)
}

// PrintFor prints before, val and after during zero order replay when
// pos is not positive.
func PrintFor[T Float](pos AD[T], before string, val AD[T], after string) {
	autodiff.PrintFor(pos, before, val, after)
}

// Azmul returns x*y with 0*y = 0 for every y, including infinities and NaN.
func Azmul[T Float](x, y AD[T]) AD[T] { return autodiff.Azmul(x, y) }

// Elementary functions of one argument.
func Abs[T Float](x AD[T]) AD[T]   { return autodiff.Abs(x) }
func Sign[T Float](x AD[T]) AD[T]  { return autodiff.Sign(x) }
func Sqrt[T Float](x AD[T]) AD[T]  { return autodiff.Sqrt(x) }
func Exp[T Float](x AD[T]) AD[T]   { return autodiff.Exp(x) }
func Expm1[T Float](x AD[T]) AD[T] { return autodiff.Expm1(x) }
func Log[T Float](x AD[T]) AD[T]   { return autodiff.Log(x) }
func Log1p[T Float](x AD[T]) AD[T] { return autodiff.Log1p(x) }
func Sin[T Float](x AD[T]) AD[T]   { return autodiff.Sin(x) }
func Cos[T Float](x AD[T]) AD[T]   { return autodiff.Cos(x) }
func Tan[T Float](x AD[T]) AD[T]   { return autodiff.Tan(x) }
func Sinh[T Float](x AD[T]) AD[T]  { return autodiff.Sinh(x) }
func Cosh[T Float](x AD[T]) AD[T]  { return autodiff.Cosh(x) }
func Tanh[T Float](x AD[T]) AD[T]  { return autodiff.Tanh(x) }
func Asin[T Float](x AD[T]) AD[T]  { return autodiff.Asin(x) }
func Acos[T Float](x AD[T]) AD[T]  { return autodiff.Acos(x) }
func Atan[T Float](x AD[T]) AD[T]  { return autodiff.Atan(x) }
func Asinh[T Float](x AD[T]) AD[T] { return autodiff.Asinh(x) }
func Acosh[T Float](x AD[T]) AD[T] { return autodiff.Acosh(x) }
func Atanh[T Float](x AD[T]) AD[T] { return autodiff.Atanh(x) }

// Discrete is a piecewise constant user function.
type Discrete[T Float] = autodiff.Discrete[T]

// RegisterDiscrete makes fn available to tapes. Call it before Setup.
func RegisterDiscrete[T Float](name string, fn func(T) T) *Discrete[T] {
	return autodiff.RegisterDiscrete(name, fn)
}

// Atomic is a user function evaluated as one block of the tape.
type Atomic[T Float] = autodiff.Atomic[T]

// AtomicFunc is a registered atomic function.
type AtomicFunc[T Float] = autodiff.AtomicFunc[T]

// RegisterAtomic makes a available to tapes. Call it before Setup.
func RegisterAtomic[T Float](a Atomic[T]) *AtomicFunc[T] {
	return autodiff.RegisterAtomic(a)
}

// ErrorHandler receives every failed check. known is false for internal
// errors.
type ErrorHandler = errhand.Handler

// Error is the error raised for a failed check.
type Error = errhand.Error

// SetErrorHandler installs h and returns a function restoring the previous
// handler.
func SetErrorHandler(h ErrorHandler) (restore func()) {
	return errhand.Set(h)
}

// PanicOnError is an ErrorHandler that panics with *Error.
var PanicOnError ErrorHandler = errhand.Panic

// Catch runs fn and returns the *Error it panicked with, if any.
func Catch(fn func()) *Error {
	return errhand.Catch(fn)
}
