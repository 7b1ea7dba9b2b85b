// Package hlog provides the structured solver tracer: a thin wrapper over
// hashicorp/go-hclog that gives every solver event (goal dispatch,
// backtrack, suspend, wake) a consistent set of log fields, standardizing
// field names like depth or functor across call sites instead of each
// one hand-formatting a message string.
package hlog

import "github.com/hashicorp/go-hclog"

// Tracer logs solver events at Trace level, so a plain -trace run (which
// raises the interpreter's logger to Debug, not Trace) stays quiet by
// default; callers that want full per-step tracing set the underlying
// logger's level to hclog.Trace directly.
type Tracer struct {
	log hclog.Logger
}

// New wraps an existing logger, naming a "trace" sub-logger so its output
// is distinguishable from the interpreter's own warn/error lines.
func New(log hclog.Logger) *Tracer {
	return &Tracer{log: log.Named("trace")}
}

// Goal records a single goal-dispatch step.
func (t *Tracer) Goal(depth int, functor, goal string) {
	if t == nil || !t.log.IsTrace() {
		return
	}
	t.log.Trace("dispatch", "depth", depth, "functor", functor, "goal", goal)
}

// Backtrack records undoing the trail to a choice point's mark.
func (t *Tracer) Backtrack(depth int, mark int) {
	if t == nil || !t.log.IsTrace() {
		return
	}
	t.log.Trace("backtrack", "depth", depth, "mark", mark)
}

// Suspend records a goal delayed outside the pattern fragment.
func (t *Tracer) Suspend(depth int, goal string, blockers int) {
	if t == nil || !t.log.IsTrace() {
		return
	}
	t.log.Trace("suspend", "depth", depth, "goal", goal, "blockers", blockers)
}

// Wake records a suspended goal re-enqueued after a uvar assignment.
func (t *Tracer) Wake(depth int, goal string) {
	if t == nil || !t.log.IsTrace() {
		return
	}
	t.log.Trace("wake", "depth", depth, "goal", goal)
}

// Cut records a `!` firing its barrier.
func (t *Tracer) Cut(depth int) {
	if t == nil || !t.log.IsTrace() {
		return
	}
	t.log.Trace("cut", "depth", depth)
}
