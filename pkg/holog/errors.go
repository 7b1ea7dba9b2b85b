package holog

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// ErrNoClause is the sentinel logical-failure signal built-ins raise to
// behave like "no matching clause". It causes
// backtracking and is never surfaced to the host unless the entire search
// exhausts; it is therefore returned as a bare sentinel compared by
// identity, never wrapped in one of the three fatal kinds.
var ErrNoClause = errors.New("holog: no clause")

// errNoMoreSteps is returned when max_steps is exceeded between two goal
// dispatches: search stops leaving the heap/trail/constraints internally
// consistent, without reporting success or failure.
var errNoMoreSteps = errors.New("holog: max_steps exceeded")

// ErrNoMoreSteps is the exported sentinel callers can compare a returned
// error against (errors.Is) to distinguish a max_steps abort from an
// ordinary fatal error.
var ErrNoMoreSteps = errNoMoreSteps

// TypeError reports that a built-in or the evaluator received arguments
// violating its declared signature. Fatal to the current query.
type TypeError struct {
	Where string
	Loc   *Loc
	cause error
}

func (e *TypeError) Error() string {
	if e.Loc != nil {
		return fmt.Sprintf("type error in %s at %s: %v", e.Where, e.Loc, e.cause)
	}
	return fmt.Sprintf("type error in %s: %v", e.Where, e.cause)
}

func (e *TypeError) Unwrap() error { return e.cause }

// NewTypeError builds a TypeError wrapped with a stack trace via
// pkg/errors before it crosses a package boundary.
func NewTypeError(where string, loc *Loc, format string, args ...interface{}) *TypeError {
	return &TypeError{Where: where, Loc: loc, cause: errors.Errorf(format, args...)}
}

// RegularError reports a well-formed but illegal program state at run
// time: unification outside the pattern fragment with delay disabled,
// evaluating a non-closed term, an I/O error, and similar. Fatal to the
// query.
type RegularError struct {
	cause error
}

func (e *RegularError) Error() string { return "error: " + e.cause.Error() }
func (e *RegularError) Unwrap() error { return e.cause }

func NewRegularError(format string, args ...interface{}) *RegularError {
	return &RegularError{cause: errors.Errorf(format, args...)}
}

// Anomaly reports a violated internal invariant: a bug, not a property of
// the program being run. Aborts with a diagnostic.
type Anomaly struct {
	cause error
}

func (e *Anomaly) Error() string { return "anomaly: " + e.cause.Error() }
func (e *Anomaly) Unwrap() error { return e.cause }

func NewAnomaly(format string, args ...interface{}) *Anomaly {
	return &Anomaly{cause: errors.Errorf(format, args...)}
}

// Reporters are overridable error sinks. The defaults return the error to
// the caller; embedders wanting a "kill the process" behavior can swap in
// a Reporters that calls os.Exit, and embedders wanting structured
// logging can route through their own logger.
type Reporters struct {
	Warn     func(msg string)
	Error    func(err *RegularError)
	Anomaly  func(err *Anomaly)
	TypeErr  func(err *TypeError)
}

// DefaultReporters is the no-op-beyond-propagation reporter set: every sink
// is a pass-through, since the core never attempts partial recovery from a
// fatal error and always propagates it to the caller as a Go error value.
func DefaultReporters() Reporters {
	return Reporters{
		Warn:    func(string) {},
		Error:   func(*RegularError) {},
		Anomaly: func(*Anomaly) {},
		TypeErr: func(*TypeError) {},
	}
}

// CollectErrors aggregates multiple recoverable diagnostics that must be
// reported together, such as every built-in rejected by -document-builtins
// validation, batching them
// with go-multierror rather than stopping at the first one.
func CollectErrors(errs ...error) error {
	var result *multierror.Error
	for _, e := range errs {
		if e != nil {
			result = multierror.Append(result, e)
		}
	}
	if result == nil {
		return nil
	}
	return result
}
