package holog

import (
	"github.com/hashicorp/go-hclog"
	uuid "github.com/hashicorp/go-uuid"
	"github.com/holog-lang/holog/internal/hlog"
	"github.com/prometheus/client_golang/prometheus"
)

// Interpreter is the explicit context every core operation runs against:
// the symbol table, CData registry, stream tables, and built-in/evaluator
// registries are folded in here instead of being process-wide singletons,
// and registration is a construction-time step via New.
type Interpreter struct {
	ID string // go-uuid stamped id, for log correlation across repeated Solve calls

	Symbols     *SymbolTable
	UVars       *UVarHeap
	Trail       *Trail
	Constraints *ConstraintStore
	CData       *CDataRegistry
	Evaluator   *Evaluator
	Clauses     *ClauseDB
	Streams     *StreamTable
	Quotes      *QuotationRegistry
	Builtins    *BuiltinRegistry
	State       *StateMap

	Options   Options
	Reporters Reporters
	Logger    hclog.Logger
	Trace     *hlog.Tracer

	stats *stats
	steps int64
}

// stats holds the solver's prometheus counters: purely observational,
// never read by solving logic. Each Interpreter owns its own registry
// rather than registering
// into the global default one, so constructing more than one Interpreter
// in a process (routine in tests) never panics on duplicate registration.
type stats struct {
	registry   *prometheus.Registry
	dispatches prometheus.Counter
	backtracks prometheus.Counter
	suspended  prometheus.Counter
	wakeups    prometheus.Counter
}

func newStats() *stats {
	reg := prometheus.NewRegistry()
	s := &stats{
		registry: reg,
		dispatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "holog_goal_dispatches_total",
			Help: "Total number of goal-dispatch steps executed by the solver.",
		}),
		backtracks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "holog_backtracks_total",
			Help: "Total number of times the solver undid a disjunction's first branch to try its second.",
		}),
		suspended: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "holog_suspensions_total",
			Help: "Total number of goals suspended into the constraint store.",
		}),
		wakeups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "holog_wakeups_total",
			Help: "Total number of suspended goals woken by a uvar assignment.",
		}),
	}
	reg.MustRegister(s.dispatches, s.backtracks, s.suspended, s.wakeups)
	return s
}

// Registry exposes the Interpreter's private prometheus registry, for an
// embedder that wants to fold solver metrics into its own /metrics
// endpoint.
func (in *Interpreter) Registry() *prometheus.Registry { return in.stats.registry }

// New builds a fully wired Interpreter: symbol table, uvar heap, trail,
// constraint store, CData registry, evaluator, clause database, stream
// table, quotation/builtin registries, and the state-component map seeded
// from components. The standard built-in library (is/2, comparisons,
// I/O, assert/retract, declare_constraint, ...) is registered
// automatically; RegisterBuiltin additional embedder-specific predicates
// afterward.
func New(opts Options, components []*StateComponent) (*Interpreter, error) {
	id, err := uuid.GenerateUUID()
	if err != nil {
		return nil, err
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "holog",
		Level: hclog.Warn,
	})
	if opts.Trace {
		logger.SetLevel(hclog.Debug)
	}

	st := NewSymbolTable()
	in := &Interpreter{
		ID:          id,
		Symbols:     st,
		UVars:       NewUVarHeap(),
		Trail:       NewTrail(),
		Constraints: NewConstraintStore(),
		CData:       NewCDataRegistry(),
		Clauses:     NewClauseDB(),
		Streams:     NewStreamTable(),
		Quotes:      NewQuotationRegistry(),
		Builtins:    NewBuiltinRegistry(),
		State:       NewStateMap(components),
		Options:     opts,
		Reporters:   DefaultReporters(),
		Logger:      logger,
		stats:       newStats(),
	}
	in.Trace = hlog.New(logger.With("interp_id", id))
	in.Evaluator = NewEvaluator(st)
	if err := RegisterStandardBuiltins(in); err != nil {
		return nil, err
	}
	return in, nil
}

// RunQuery solves goal at depth 0 against the program database, invoking
// onSolution for each success with a live-binding snapshot; onSolution
// returns whether to keep searching for more solutions. Every candidate
// solution is first checked against the live custom-constraint set
// (CheckCustomConstraints): a solution that violates one is never
// reported to onSolution, and the search simply backtracks past it as if
// the goal had failed there. RunQuery returns (found, err): found is true
// iff at least one solution was produced. A *HaltSignal raised by
// halt/0,1 is returned as err with found reflecting whether a solution
// was reached first.
func (in *Interpreter) RunQuery(goal *Term, onSolution func(*Interpreter) (more bool, err error)) (bool, error) {
	found := false
	_, err := in.Solve(0, goal, nil, func() (bool, error) {
		if ccErr := CheckCustomConstraints(in); ccErr != nil {
			return false, nil
		}
		found = true
		more, cbErr := onSolution(in)
		if cbErr != nil {
			return true, cbErr
		}
		return !more, nil
	})
	if err == errNoMoreSteps {
		return found, ErrNoMoreSteps
	}
	return found, err
}

// Steps reports how many goal-dispatch steps have been executed so far by
// this Interpreter; each goal-dispatch iteration of the solver counts as
// one step.
func (in *Interpreter) Steps() int64 { return in.steps }

// RegisterBuiltin installs an embedder-specific built-in predicate after
// construction, alongside the standard library New already installed. It
// does not itself enforce Options.DocumentBuiltins; call
// ValidateBuiltinDocs once every embedder built-in has been registered to
// get a single combined error for the whole batch.
func (in *Interpreter) RegisterBuiltin(name string, arity int, doc string, fn BuiltinFunc) (int, error) {
	return in.Builtins.Register(in.Options, name, arity, doc, fn)
}

// ValidateBuiltinDocs re-checks the entire built-in registry against
// Options.DocumentBuiltins, returning a single go-multierror-combined error
// naming every undocumented built-in rather than just the first. A no-op
// returning nil when DocumentBuiltins is false.
func (in *Interpreter) ValidateBuiltinDocs() error {
	if !in.Options.DocumentBuiltins {
		return nil
	}
	return in.Builtins.ValidateDocumented()
}

// NewQueryVar allocates a fresh top-level logic variable for a query built
// directly against the term API (the host's compiler does the same thing
// internally for `pi`/`sigma`-bound names; this is the entry point for a
// query's own free variables, which bind no enclosing lambda).
func (in *Interpreter) NewQueryVar() *Term {
	return mkUVar(in.UVars.New(0), 0, 0)
}
