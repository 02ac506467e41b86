// Package errhand funnels usage and internal errors of the tape engine
// through a single swappable handler.
//
// Handlers are installed with Set, which returns a function restoring the
// previous handler; installations therefore nest like a stack:
//
//	restore := errhand.Set(errhand.Panic)
//	defer restore()
//
// The default handler writes a diagnostic through slog to stderr and exits.
// A handler is not expected to return. If it does, the reporting call site
// panics with the *Error so that no caller continues past a failed check.
package errhand

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// Handler receives every failed check.
//
// known is true for usage errors (the caller violated a documented
// precondition) and false for internal errors (the engine's own
// bookkeeping is inconsistent). msg is empty for internal errors.
type Handler func(known bool, line int, file, exp, msg string)

var (
	mu    sync.Mutex
	stack = []Handler{Default}
)

// Set installs h as the current handler and returns a function that
// restores the handler that was current before the call.
// Restores must run in reverse order of installation.
func Set(h Handler) (restore func()) {
	mu.Lock()
	defer mu.Unlock()
	stack = append(stack, h)
	depth := len(stack)
	return func() {
		mu.Lock()
		defer mu.Unlock()
		if len(stack) != depth {
			panic(fmt.Sprintf("errhand: restore out of order (depth %d, want %d)", len(stack), depth))
		}
		stack = stack[:depth-1]
	}
}

func current() Handler {
	mu.Lock()
	defer mu.Unlock()
	return stack[len(stack)-1]
}

// Default logs the failure to stderr and terminates the process.
func Default(known bool, line int, file, exp, msg string) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	kind := "internal error"
	if known {
		kind = "usage error"
	}
	logger.Error(kind, "file", file, "line", line, "check", exp, "msg", msg)
	os.Exit(1)
}

// Panic panics with an *Error. It is intended for tests and embedders that
// recover from failed checks.
func Panic(known bool, line int, file, exp, msg string) {
	panic(newError(known, line, file, exp, msg))
}

// Usage reports a usage error when ok is false.
func Usage(ok bool, exp, msg string) {
	if ok {
		return
	}
	report(true, exp, msg)
}

// Usagef is Usage with a formatted message.
func Usagef(ok bool, exp, format string, args ...any) {
	if ok {
		return
	}
	report(true, exp, fmt.Sprintf(format, args...))
}

// Internal reports an internal error when ok is false.
func Internal(ok bool, exp string) {
	if ok {
		return
	}
	report(false, exp, "")
}

func report(known bool, exp, msg string) {
	// skip report and Usage/Internal
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file = "unknown"
	}
	file = filepath.Base(file)
	current()(known, line, file, exp, msg)
	panic(newError(known, line, file, exp, msg))
}

// Error is a failed check together with the stack at which it was reported.
type Error struct {
	Known bool
	Line  int
	File  string
	Exp   string
	Msg   string

	cause error
}

func newError(known bool, line int, file, exp, msg string) *Error {
	e := &Error{Known: known, Line: line, File: file, Exp: exp, Msg: msg}
	if known {
		e.cause = errors.Errorf("%s:%d: %s: %s", file, line, exp, msg)
	} else {
		e.cause = errors.Errorf("%s:%d: internal error: %s", file, line, exp)
	}
	return e
}

func (e *Error) Error() string {
	return e.cause.Error()
}

// Unwrap returns the error carrying the stack trace.
func (e *Error) Unwrap() error {
	return e.cause
}

// Format prints the stack trace with %+v.
func (e *Error) Format(s fmt.State, verb rune) {
	if f, ok := e.cause.(fmt.Formatter); ok {
		f.Format(s, verb)
		return
	}
	fmt.Fprint(s, e.Error())
}

// Catch runs fn and returns the *Error it panicked with, if any.
// Any other panic is propagated.
func Catch(fn func()) (err *Error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		e, ok := r.(*Error)
		if !ok {
			panic(r)
		}
		err = e
	}()
	fn()
	return nil
}
