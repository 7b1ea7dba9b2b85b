package holog

import (
	"fmt"
	"sort"
	"strings"
)

// This file implements the built-in predicate ABI: a built-in is
// `{name, arity, handler}`; the handler is invoked with the
// current depth, the local hypothesis layer, and its arguments, and
// returns either additional goals (typically output-unification
// equalities) or a logical failure (ErrNoClause) or a fatal error.
//
// Narrowing decision: the handler could additionally thread
// `(current_constraints, state)` in and `(new_state)` out
// explicitly. Since every state mutation already goes through
// Trail.UpdateState (state.go) and every constraint-store mutation
// already goes through the Trail (constraints.go), a handler that wants
// either simply calls back into in.Trail/in.Constraints/in.State
// directly rather than threading them as separate return values — the
// trail gives the same backtracking guarantee either way. Grounded on the
// teacher's functional-option handler registration in its public API
// (NewSolver/WithRelation-style constructors), narrowed to a map-based
// dispatch table since built-ins here are looked up by a compile-time
// integer id (BID), not re-resolved by name on every call.

// BuiltinFunc is a built-in predicate's handler. It returns additional
// goals to solve (conjunctively, left to right) before the call counts as
// succeeded, or ErrNoClause to behave like a failed clause lookup, or any
// other error to abort the query fatally.
type BuiltinFunc func(in *Interpreter, depth int, hyps []*Clause, args []*Term) ([]*Term, error)

// BuiltinDef is one registered built-in.
type BuiltinDef struct {
	ID    int
	Name  string
	Arity int
	Doc   string
	Fn    BuiltinFunc
}

// BuiltinRegistry is the built-in predicate table, keyed by the integer id
// a compiled Builtin term carries.
type BuiltinRegistry struct {
	byID   map[int]*BuiltinDef
	byName map[string]int
	next   int
}

// NewBuiltinRegistry creates an empty registry.
func NewBuiltinRegistry() *BuiltinRegistry {
	return &BuiltinRegistry{byID: make(map[int]*BuiltinDef), byName: make(map[string]int)}
}

// Register installs a built-in and returns its assigned id. A blank doc is
// accepted here unconditionally; ValidateDocumented is the place
// opts.DocumentBuiltins is enforced, once the whole standard library has
// been registered, so every violation is reported together instead of the
// first one aborting the rest of registration.
func (r *BuiltinRegistry) Register(opts Options, name string, arity int, doc string, fn BuiltinFunc) (int, error) {
	r.next++
	id := r.next
	r.byID[id] = &BuiltinDef{ID: id, Name: name, Arity: arity, Doc: doc, Fn: fn}
	r.byName[builtinKey(name, arity)] = id
	return id, nil
}

// ValidateDocumented checks every registered built-in has a non-blank doc
// string, returning a single combined error (via CollectErrors/go-multierror)
// naming every undocumented built-in at once rather than stopping at the
// first one found. Called once after a registration pass completes, gated
// on opts.DocumentBuiltins.
func (r *BuiltinRegistry) ValidateDocumented() error {
	var errs []error
	for _, id := range r.sortedIDs() {
		d := r.byID[id]
		if d.Doc == "" {
			errs = append(errs, NewRegularError("built-in %s/%d registered without documentation while document_builtins is set", d.Name, d.Arity))
		}
	}
	return CollectErrors(errs...)
}

// sortedIDs returns registered built-in ids in registration order, so
// ValidateDocumented's combined error lists violations deterministically.
func (r *BuiltinRegistry) sortedIDs() []int {
	ids := make([]int, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func builtinKey(name string, arity int) string { return fmt.Sprintf("%s/%d", name, arity) }

// Lookup returns the definition for a built-in id.
func (r *BuiltinRegistry) Lookup(bid int) (*BuiltinDef, bool) {
	d, ok := r.byID[bid]
	return d, ok
}

// ByName resolves a registered built-in's id by name/arity, for the
// external compiler's use when lowering a call site.
func (r *BuiltinRegistry) ByName(name string, arity int) (int, bool) {
	id, ok := r.byName[builtinKey(name, arity)]
	return id, ok
}

// HaltSignal is raised by halt/0 and halt/1: propagated to the host as a
// distinguished outcome carrying the process exit code the embedder's CLI
// driver should use.
type HaltSignal struct {
	Code int
}

func (h *HaltSignal) Error() string { return fmt.Sprintf("halt(%d)", h.Code) }

// eqGoal builds the `a = b` goal term used both by ordinary source-level
// equalities and by built-ins returning output unifications.
func eqGoal(a, b *Term) *Term { return &Term{Kind: KApp, Head: CEq, Args: []*Term{a, b}} }

// intArg extracts an int64 from a dereferenced CData(int) argument.
func (in *Interpreter) intArg(depth int, t *Term, where string) (int64, error) {
	d := Deref(depth, t)
	if d.Kind != KCData || d.Data.Type != intType {
		return 0, NewTypeError(where, nil, "expected an integer, got %s", d.Kind)
	}
	return d.Data.Value.(int64), nil
}

// stringArg extracts a string from a dereferenced CData(string) argument.
func (in *Interpreter) stringArg(depth int, t *Term, where string) (string, error) {
	d := Deref(depth, t)
	if d.Kind != KCData || d.Data.Type != stringType {
		return "", NewTypeError(where, nil, "expected a string, got %s", d.Kind)
	}
	return d.Data.Value.(string), nil
}

// RegisterStandardBuiltins installs the standard library of built-ins
// directly: arithmetic comparisons (is/2's own evaluation is
// exposed as is/2 itself; the comparisons reuse the same evaluator), type
// tests, term-order comparison, I/O, assert/retract, and
// declare_constraint. User-defined predicates like append/3 are
// deliberately NOT here: a host program loads append as ordinary clauses,
// the way a standard-library program would.
func RegisterStandardBuiltins(in *Interpreter) error {
	reg := func(name string, arity int, doc string, fn BuiltinFunc) error {
		bid, err := in.Builtins.Register(in.Options, name, arity, doc, fn)
		if err != nil {
			return err
		}
		in.Symbols.Intern(name)
		_ = bid
		return nil
	}

	if err := reg("is", 2, "is(Result, Expr): evaluate Expr and unify with Result.", func(in *Interpreter, depth int, hyps []*Clause, args []*Term) ([]*Term, error) {
		v, err := in.Eval(depth, args[1])
		if err != nil {
			return nil, err
		}
		return []*Term{eqGoal(args[0], v)}, nil
	}); err != nil {
		return err
	}

	cmp := func(name string, test func(int) bool) func(*Interpreter, int, []*Clause, []*Term) ([]*Term, error) {
		return func(in *Interpreter, depth int, hyps []*Clause, args []*Term) ([]*Term, error) {
			c, err := in.CompareNum(depth, args[0], args[1])
			if err != nil {
				return nil, err
			}
			if !test(c) {
				return nil, ErrNoClause
			}
			return nil, nil
		}
	}
	for name, test := range map[string]func(int) bool{
		"<":  func(c int) bool { return c < 0 },
		"=<": func(c int) bool { return c <= 0 },
		">":  func(c int) bool { return c > 0 },
		">=": func(c int) bool { return c >= 0 },
		"=:=": func(c int) bool { return c == 0 },
		"=\\=": func(c int) bool { return c != 0 },
	} {
		if err := reg(name, 2, name+"(A, B): numeric comparison.", cmp(name, test)); err != nil {
			return err
		}
	}

	if err := reg("var", 1, "var(X): X is currently an unbound variable.", func(in *Interpreter, depth int, hyps []*Clause, args []*Term) ([]*Term, error) {
		if !Deref(depth, args[0]).IsUnboundUVar() {
			return nil, ErrNoClause
		}
		return nil, nil
	}); err != nil {
		return err
	}
	if err := reg("nonvar", 1, "nonvar(X): X is not currently an unbound variable.", func(in *Interpreter, depth int, hyps []*Clause, args []*Term) ([]*Term, error) {
		if Deref(depth, args[0]).IsUnboundUVar() {
			return nil, ErrNoClause
		}
		return nil, nil
	}); err != nil {
		return err
	}

	if err := reg("==", 2, "==(A, B): structural identity without binding.", func(in *Interpreter, depth int, hyps []*Clause, args []*Term) ([]*Term, error) {
		if !in.structEq(depth, args[0], args[1]) {
			return nil, ErrNoClause
		}
		return nil, nil
	}); err != nil {
		return err
	}
	if err := reg("\\==", 2, "\\==(A, B): structural non-identity without binding.", func(in *Interpreter, depth int, hyps []*Clause, args []*Term) ([]*Term, error) {
		if in.structEq(depth, args[0], args[1]) {
			return nil, ErrNoClause
		}
		return nil, nil
	}); err != nil {
		return err
	}

	if err := reg("print", 1, "print(X): write X's current value to stdout.", func(in *Interpreter, depth int, hyps []*Clause, args []*Term) ([]*Term, error) {
		var b strings.Builder
		writeTerm(&b, in.Symbols, Deref(depth, args[0]))
		return nil, in.Streams.Write(StreamStdout, b.String())
	}); err != nil {
		return err
	}
	if err := reg("nl", 0, "nl: write a newline to stdout.", func(in *Interpreter, depth int, hyps []*Clause, args []*Term) ([]*Term, error) {
		return nil, in.Streams.Write(StreamStdout, "\n")
	}); err != nil {
		return err
	}

	if err := reg("halt", 0, "halt: stop solving, exit code 0.", func(in *Interpreter, depth int, hyps []*Clause, args []*Term) ([]*Term, error) {
		return nil, &HaltSignal{Code: 0}
	}); err != nil {
		return err
	}
	if err := reg("halt", 1, "halt(Code): stop solving with the given exit code.", func(in *Interpreter, depth int, hyps []*Clause, args []*Term) ([]*Term, error) {
		n, err := in.intArg(depth, args[0], "halt/1")
		if err != nil {
			return nil, err
		}
		return nil, &HaltSignal{Code: int(n)}
	}); err != nil {
		return err
	}

	if err := reg("open_in", 2, "open_in(Path, Handle): open Path for reading.", func(in *Interpreter, depth int, hyps []*Clause, args []*Term) ([]*Term, error) {
		path, err := in.stringArg(depth, args[0], "open_in/2")
		if err != nil {
			return nil, err
		}
		h, err := in.Streams.OpenIn(path)
		if err != nil {
			return nil, err
		}
		return []*Term{eqGoal(args[1], MkInt(in.CData, int64(h)))}, nil
	}); err != nil {
		return err
	}
	if err := reg("open_out", 2, "open_out(Path, Handle): open Path for writing.", func(in *Interpreter, depth int, hyps []*Clause, args []*Term) ([]*Term, error) {
		path, err := in.stringArg(depth, args[0], "open_out/2")
		if err != nil {
			return nil, err
		}
		h, err := in.Streams.OpenOut(path)
		if err != nil {
			return nil, err
		}
		return []*Term{eqGoal(args[1], MkInt(in.CData, int64(h)))}, nil
	}); err != nil {
		return err
	}
	if err := reg("output", 2, "output(Handle, Text): write Text to Handle.", func(in *Interpreter, depth int, hyps []*Clause, args []*Term) ([]*Term, error) {
		h, err := in.intArg(depth, args[0], "output/2")
		if err != nil {
			return nil, err
		}
		s, err := in.stringArg(depth, args[1], "output/2")
		if err != nil {
			return nil, err
		}
		return nil, in.Streams.Write(int(h), s)
	}); err != nil {
		return err
	}
	if err := reg("input_line", 2, "input_line(Handle, Line): read one line from Handle.", func(in *Interpreter, depth int, hyps []*Clause, args []*Term) ([]*Term, error) {
		h, err := in.intArg(depth, args[0], "input_line/2")
		if err != nil {
			return nil, err
		}
		line, ok, err := in.Streams.ReadLine(int(h))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNoClause
		}
		return []*Term{eqGoal(args[1], MkString(in.CData, line))}, nil
	}); err != nil {
		return err
	}
	if err := reg("flush", 1, "flush(Handle): flush Handle's output buffer.", func(in *Interpreter, depth int, hyps []*Clause, args []*Term) ([]*Term, error) {
		h, err := in.intArg(depth, args[0], "flush/1")
		if err != nil {
			return nil, err
		}
		return nil, in.Streams.Flush(int(h))
	}); err != nil {
		return err
	}
	if err := reg("close_in", 1, "close_in(Handle): close an input stream.", func(in *Interpreter, depth int, hyps []*Clause, args []*Term) ([]*Term, error) {
		h, err := in.intArg(depth, args[0], "close_in/1")
		if err != nil {
			return nil, err
		}
		return nil, in.Streams.Close(int(h))
	}); err != nil {
		return err
	}
	if err := reg("close_out", 1, "close_out(Handle): close an output stream.", func(in *Interpreter, depth int, hyps []*Clause, args []*Term) ([]*Term, error) {
		h, err := in.intArg(depth, args[0], "close_out/1")
		if err != nil {
			return nil, err
		}
		return nil, in.Streams.Close(int(h))
	}); err != nil {
		return err
	}

	if err := reg("assert", 1, "assert(Clause): add Clause at the end of its predicate's list.", func(in *Interpreter, depth int, hyps []*Clause, args []*Term) ([]*Term, error) {
		return nil, in.assertTerm(depth, args[0], InsertEnd)
	}); err != nil {
		return err
	}
	if err := reg("asserta", 1, "asserta(Clause): add Clause at the start of its predicate's list.", func(in *Interpreter, depth int, hyps []*Clause, args []*Term) ([]*Term, error) {
		return nil, in.assertTerm(depth, args[0], InsertStart)
	}); err != nil {
		return err
	}
	if err := reg("retract", 1, "retract(Clause): remove the first clause matching Clause.", func(in *Interpreter, depth int, hyps []*Clause, args []*Term) ([]*Term, error) {
		ok, err := in.retractTerm(depth, args[0])
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNoClause
		}
		return nil, nil
	}); err != nil {
		return err
	}

	if err := reg("declare_constraint", 2, "declare_constraint(Goal, Vars): promote Goal as a constraint over Vars.", func(in *Interpreter, depth int, hyps []*Clause, args []*Term) ([]*Term, error) {
		return nil, in.declareConstraintTerm(depth, hyps, args[0], args[1])
	}); err != nil {
		return err
	}

	if in.Options.DocumentBuiltins {
		if err := in.Builtins.ValidateDocumented(); err != nil {
			return err
		}
	}

	return nil
}

// assertTerm snapshots a (possibly Head:-Body) term at its current
// bindings into a standalone, freshly-allocated ground-ish clause and
// inserts it into the clause database. Because the dynamically asserted
// clause is built from already-live terms rather than a compiled
// template, it is stored with NumVars=0 (no further instantiation is ever
// applied to it — consistent with the =>-local-hypothesis convention in
// solver.go, generalised to a persistent clause).
func (in *Interpreter) assertTerm(depth int, t *Term, mode InsertMode) error {
	d := Deref(depth, t)
	var head, body *Term
	if d.Kind == KApp && d.Head == CRule && len(d.Args) == 2 {
		head, body = Deref(depth, d.Args[0]), d.Args[1]
	} else {
		head = d
	}
	snapHead, ok := snapshot(depth, head)
	if !ok {
		return NewRegularError("assert: clause head is not sufficiently instantiated")
	}
	var snapBody *Term
	if body != nil {
		snapBody, ok = snapshot(depth, body)
		if !ok {
			return NewRegularError("assert: clause body is not sufficiently instantiated")
		}
	}
	return in.Clauses.Insert(&Clause{Head: snapHead, Body: snapBody}, mode, "")
}

// snapshot copies t's current dereferenced value into a self-contained
// term with no remaining live uvar indirections below a still-unbound
// leaf, for storage outside the current choice point's lifetime.
// Unassigned uvars are kept as-is (by design: asserting a clause whose
// head still carries a live logic variable captures that variable's
// identity, matching ordinary assert/1 semantics in the corpus).
func snapshot(depth int, t *Term) (*Term, bool) {
	d := Deref(depth, t)
	switch d.Kind {
	case KConst, KNil, KDiscard, KCData:
		return d, true
	case KLam:
		b, ok := snapshot(depth+1, d.Body)
		if !ok {
			return nil, false
		}
		return MkLam(b), true
	case KApp:
		args, ok := snapshotAll(depth, d.Args)
		if !ok {
			return nil, false
		}
		return &Term{Kind: KApp, Head: d.Head, Args: args}, true
	case KCons:
		h, ok1 := snapshot(depth, d.Args[0])
		tl, ok2 := snapshot(depth, d.Args[1])
		if !ok1 || !ok2 {
			return nil, false
		}
		return MkCons(h, tl), true
	case KBuiltin:
		args, ok := snapshotAll(depth, d.Args)
		if !ok {
			return nil, false
		}
		return &Term{Kind: KBuiltin, BID: d.BID, Args: args}, true
	case KUVar, KAppUVar:
		return d, true
	default:
		return nil, false
	}
}

func snapshotAll(depth int, args []*Term) ([]*Term, bool) {
	out := make([]*Term, len(args))
	for i, a := range args {
		s, ok := snapshot(depth, a)
		if !ok {
			return nil, false
		}
		out[i] = s
	}
	return out, true
}

// retractTerm finds and removes the first stored clause whose head
// structurally equals (up to current bindings) t's head, matching the
// conventional assert/retract library behavior.
func (in *Interpreter) retractTerm(depth int, t *Term) (bool, error) {
	d := Deref(depth, t)
	var head *Term
	if d.Kind == KApp && d.Head == CRule && len(d.Args) == 2 {
		head = Deref(depth, d.Args[0])
	} else {
		head = d
	}
	functor, err := headFunctor(head)
	if err != nil {
		return false, err
	}
	return in.Clauses.Retract(functor, func(c *Clause) bool {
		h, _ := c.Instantiate(in.UVars, depth)
		return in.structEq(depth, h, head)
	}), nil
}

// declareConstraintTerm promotes goal as a CustomConstraint blocking on
// vars' uvar bodies. hyps is the hypothesis set active at the declaration
// site, kept alive in the closure so a later re-check still sees any =>
// hypotheses goal depends on.
func (in *Interpreter) declareConstraintTerm(depth int, hyps []*Clause, goal, varsList *Term) error {
	vars, ok := termToList(depth, varsList)
	if !ok {
		return NewTypeError("declare_constraint/2", nil, "second argument must be a proper list")
	}
	var bodies []*UVarBody
	for _, v := range vars {
		d := Deref(depth, v)
		if !d.IsUnboundUVar() {
			continue
		}
		bodies = append(bodies, d.UV)
	}
	goalSnap, ok := snapshot(depth, goal)
	if !ok {
		return NewRegularError("declare_constraint: goal is not sufficiently instantiated")
	}
	cc := &CustomConstraint{
		ID:   fmt.Sprintf("cc%d", in.UVars.Count()),
		Vars: bodies,
		Check: func(i *Interpreter) error {
			mark := i.Trail.Mark()
			found := false
			_, err := i.Solve(depth, goalSnap, hyps, func() (bool, error) {
				found = true
				return true, nil // first solution suffices to clear the check
			})
			i.Trail.UndoTo(mark)
			if err != nil {
				return err
			}
			if !found {
				return NewRegularError("declared constraint violated")
			}
			return nil
		},
	}
	DeclareConstraint(in.State, in.Trail, cc)
	return nil
}

// termToList walks a Cons/Nil spine into a Go slice, failing if the spine
// is not a proper (nil-terminated) list once dereferenced.
func termToList(depth int, t *Term) ([]*Term, bool) {
	var out []*Term
	for {
		d := Deref(depth, t)
		switch d.Kind {
		case KNil:
			return out, true
		case KCons:
			out = append(out, d.Args[0])
			t = d.Args[1]
		default:
			return nil, false
		}
	}
}

// structEq compares two dereferenced terms for ==, 2: structural identity
// without performing any binding (unbound uvars compare equal only to
// themselves, by cell identity).
func (in *Interpreter) structEq(depth int, a, b *Term) bool {
	da, db := Deref(depth, a), Deref(depth, b)
	if da.Kind != db.Kind {
		return false
	}
	switch da.Kind {
	case KConst:
		return da.Sym == db.Sym
	case KLam:
		return in.structEq(depth+1, da.Body, db.Body)
	case KApp:
		if da.Head != db.Head || len(da.Args) != len(db.Args) {
			return false
		}
		for i := range da.Args {
			if !in.structEq(depth, da.Args[i], db.Args[i]) {
				return false
			}
		}
		return true
	case KCons:
		return in.structEq(depth, da.Args[0], db.Args[0]) && in.structEq(depth, da.Args[1], db.Args[1])
	case KNil, KDiscard:
		return true
	case KCData:
		return da.Data.Equal(db.Data)
	case KUVar, KAppUVar:
		return da.UV == db.UV
	default:
		return false
	}
}
