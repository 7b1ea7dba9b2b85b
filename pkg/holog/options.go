package holog

// Options controls per-run solver behavior left open to the embedder. Kept
// as a plain struct with a constructor rather than the
// variadic-functional-option idiom since every field here is set once at
// Interpreter construction and never mutated mid-solve.
type Options struct {
	// Trace raises the interpreter's logger from Warn to Debug. The
	// internal/hlog tracer logs solver events at Trace level, so they stay
	// hidden even with Trace set.
	Trace bool

	// DelayOutsideFragment controls what happens when a unification
	// equation falls outside the pattern fragment: if true,
	// the equation is suspended in the constraint store; if false, it is a
	// hard RegularError.
	DelayOutsideFragment bool

	// MaxSteps bounds the number of solver reduction steps before the
	// search is aborted cooperatively (0 means unbounded), mirroring
	// context.Context-based cancellation in a depth-first search.
	MaxSteps int64

	// DocumentBuiltins, when true, requires every built-in registered via
	// RegisterBuiltin to carry a non-empty doc string. Violations are
	// collected across the whole registry and reported together as one
	// combined error from Interpreter.ValidateBuiltinDocs, rather than
	// aborting registration at the first undocumented built-in found.
	DocumentBuiltins bool
}

// DefaultOptions returns the package's default configuration: tracing off,
// unification outside the pattern fragment is a hard error, no step bound,
// no documentation requirement.
func DefaultOptions() Options {
	return Options{
		Trace:                false,
		DelayOutsideFragment: false,
		MaxSteps:             0,
		DocumentBuiltins:     false,
	}
}
