package holog

// This file implements the solver loop: SLD resolution with cut, `=>`,
// `pi`, `sigma`, `,`, `;`, and built-in dispatch, over chronological
// backtracking search.
//
// Narrowed from a "goal returns a lazy stream of states, merged/joined
// with mplus/bind" design (useful when an engine is meant to run goals in
// parallel) to a direct continuation-passing recursive solve:
// `solve(goal, k)` where k is the success continuation and the choice
// point / goal stack are realised directly by the Go call stack plus the
// explicit Trail, rather than as separate data structures. This is a
// deliberate architectural departure from a stream-based design built to
// support concurrent exploration of alternatives, which is explicitly a
// non-goal here: the solver is sequential.
//
// A continuation returns (stop, err): stop=true means the host accepted
// the solution it just saw (or a fatal error occurred) and search must
// unwind without trying further alternatives; stop=false means "keep
// looking," prompting the caller to undo its trail mark and try its next
// alternative.

// Cont is a success continuation: called with bindings live at the moment
// the goal stack conceptually empties. Its return value is relayed all
// the way back up the solve recursion, terminating the search immediately
// when stop is true.
type Cont func() (stop bool, err error)

// cutBarrier is shared by every goal evaluated inside one predicate-call
// activation's clause body (through ,, ;, =>, pi, sigma, but never across
// a nested predicate call, which gets its own barrier). `!` sets fired;
// every alternative-trying loop that owns a barrier stops early once it
// observes fired.
type cutBarrier struct {
	fired bool
}

// Solve attempts goal at context depth against the global clause database
// layered under hyps (the local =>-installed hypotheses, innermost last),
// invoking k for every solution found via ordinary SLD search. It returns
// once k returns stop=true, once alternatives are exhausted, or on a fatal
// error (max_steps exceeded, a TypeError/RegularError/Anomaly, or halt).
func (in *Interpreter) Solve(depth int, goal *Term, hyps []*Clause, k Cont) (bool, error) {
	stop, err := in.solve(depth, goal, hyps, &cutBarrier{}, k)
	in.reportErr(err)
	return stop, err
}

// reportErr invokes the matching Reporters sink for err's concrete type,
// so an embedder's overridden sink observes every fatal TypeError,
// RegularError, or Anomaly raised anywhere in a Solve call, not just the
// ones that happen to reach RunQuery directly. A nil err, errNoMoreSteps,
// or *HaltSignal passes through unreported: those are control-flow
// outcomes, not diagnostics an embedder needs to be warned about.
func (in *Interpreter) reportErr(err error) {
	switch e := err.(type) {
	case *TypeError:
		in.Reporters.TypeErr(e)
	case *RegularError:
		in.Reporters.Error(e)
	case *Anomaly:
		in.Reporters.Anomaly(e)
	}
}

func (in *Interpreter) solve(depth int, goal *Term, hyps []*Clause, cb *cutBarrier, k Cont) (bool, error) {
	in.stats.dispatches.Inc()
	in.steps++
	if in.Options.MaxSteps > 0 && in.steps > in.Options.MaxSteps {
		return true, errNoMoreSteps
	}

	g := Deref(depth, goal)
	switch g.Kind {
	case KBuiltin:
		return in.solveBuiltin(depth, g, hyps, cb, k)
	case KUVar, KAppUVar:
		return true, NewRegularError("call to an uninstantiated goal")
	case KCons, KNil, KCData, KLam, KDiscard:
		return true, NewTypeError("solve", nil, "not a callable goal: %s", g.Kind)
	}

	// g.Kind is KConst or KApp: either a logical connective or a user
	// predicate call, distinguished by its functor.
	functor := g.Sym
	var args []*Term
	if g.Kind == KApp {
		functor = g.Head
		args = g.Args
	}
	in.Trace.Goal(depth, in.Symbols.Name(functor), g.String())

	switch functor {
	case CComma:
		a, b := args[0], args[1]
		return in.solve(depth, a, hyps, cb, func() (bool, error) {
			return in.solve(depth, b, hyps, cb, k)
		})
	case COr:
		return in.solveOr(depth, args[0], args[1], hyps, cb, k)
	case CCut:
		cb.fired = true
		in.Trace.Cut(depth)
		return k()
	case CImpl:
		return in.solveImpl(depth, args[0], args[1], hyps, cb, k)
	case CPi:
		return in.solvePi(depth, args[0], hyps, cb, k)
	case CSigma:
		return in.solveSigma(depth, args[0], hyps, cb, k)
	case CEq:
		return in.solveEq(depth, args[0], args[1], hyps, cb, k)
	default:
		return in.solveCall(depth, functor, g, hyps, k)
	}
}

func (in *Interpreter) solveOr(depth int, a, b *Term, hyps []*Clause, cb *cutBarrier, k Cont) (bool, error) {
	mark := in.Trail.Mark()
	stop, err := in.solve(depth, a, hyps, cb, k)
	if stop || err != nil || cb.fired {
		return stop, err
	}
	in.stats.backtracks.Inc()
	in.Trace.Backtrack(depth, mark)
	in.Trail.UndoTo(mark)
	return in.solve(depth, b, hyps, cb, k)
}

func (in *Interpreter) solveImpl(depth int, h, g *Term, hyps []*Clause, cb *cutBarrier, k Cont) (bool, error) {
	newHyps, err := loadLocalClauses(hyps, Deref(depth, h))
	if err != nil {
		return true, err
	}
	return in.solve(depth, g, newHyps, cb, k)
}

// loadLocalClauses splits a (possibly ,-conjoined) term of Head or
// Head:-Body specs into Clause values appended to a fresh copy of hyps,
// so that backtracking past the => site discards them for free (hyps is
// never mutated in place; every append works off a fresh backing slice).
func loadLocalClauses(hyps []*Clause, spec *Term) ([]*Clause, error) {
	out := append([]*Clause{}, hyps...)
	var walk func(t *Term) error
	walk = func(t *Term) error {
		if t.Kind == KApp && t.Head == CComma && len(t.Args) == 2 {
			if err := walk(t.Args[0]); err != nil {
				return err
			}
			return walk(t.Args[1])
		}
		var head, body *Term
		if t.Kind == KApp && t.Head == CRule && len(t.Args) == 2 {
			head, body = t.Args[0], t.Args[1]
		} else {
			head = t
		}
		out = append(out, &Clause{Head: head, Body: body})
		return nil
	}
	if err := walk(spec); err != nil {
		return nil, err
	}
	return out, nil
}

func (in *Interpreter) solvePi(depth int, lam *Term, hyps []*Clause, cb *cutBarrier, k Cont) (bool, error) {
	d := Deref(depth, lam)
	if d.Kind != KLam {
		return true, NewTypeError("pi", nil, "pi expects a lambda argument, got %s", d.Kind)
	}
	return in.solve(depth+1, d.Body, hyps, cb, k)
}

func (in *Interpreter) solveSigma(depth int, lam *Term, hyps []*Clause, cb *cutBarrier, k Cont) (bool, error) {
	d := Deref(depth, lam)
	if d.Kind != KLam {
		return true, NewTypeError("sigma", nil, "sigma expects a lambda argument, got %s", d.Kind)
	}
	fresh := in.UVars.New(depth)
	val := mkUVar(fresh, depth, 0)
	newGoal := subst(d.Body, Const(depth), val)
	return in.solve(depth, newGoal, hyps, cb, k)
}

func (in *Interpreter) solveEq(depth int, a, b *Term, hyps []*Clause, cb *cutBarrier, k Cont) (bool, error) {
	res := in.Unify(depth, a, b)
	if res.Err != nil {
		return true, res.Err
	}
	switch res.Outcome {
	case UFail:
		return false, nil
	case UDelay:
		in.stats.suspended.Inc()
		susp := in.Constraints.NewSuspension(eqGoal(a, b), depth, hyps, res.Blockers)
		in.Trail.AddSuspension(in.Constraints, susp)
		in.Trace.Suspend(depth, susp.Goal.String(), len(res.Blockers))
		return in.solveWoken(res.Woken, k)
	default: // UOk
		return in.solveWoken(res.Woken, k)
	}
}

// solveWoken re-dispatches every suspension WakeOn returned (each in its
// own captured depth/hyps) before calling k: every blocked suspension is
// re-enqueued before the assigning equation's own continuation proceeds.
func (in *Interpreter) solveWoken(woken []*Suspension, k Cont) (bool, error) {
	if len(woken) == 0 {
		return k()
	}
	s := woken[0]
	rest := woken[1:]
	in.stats.wakeups.Inc()
	in.Trace.Wake(s.Depth, s.Goal.String())
	return in.solve(s.Depth, s.Goal, s.Hyps, &cutBarrier{}, func() (bool, error) {
		return in.solveWoken(rest, k)
	})
}

func (in *Interpreter) solveBuiltin(depth int, g *Term, hyps []*Clause, cb *cutBarrier, k Cont) (bool, error) {
	def, ok := in.Builtins.Lookup(g.BID)
	if !ok {
		return true, NewAnomaly("call to unregistered built-in id %d", g.BID)
	}
	extra, err := def.Fn(in, depth, hyps, g.Args)
	if err != nil {
		if err == ErrNoClause {
			return false, nil
		}
		return true, err
	}
	return in.solveConj(depth, extra, hyps, cb, k)
}

// solveConj solves a slice of goals conjunctively (used for a built-in's
// extra output-unification goals).
func (in *Interpreter) solveConj(depth int, goals []*Term, hyps []*Clause, cb *cutBarrier, k Cont) (bool, error) {
	if len(goals) == 0 {
		return k()
	}
	return in.solve(depth, goals[0], hyps, cb, func() (bool, error) {
		return in.solveConj(depth, goals[1:], hyps, cb, k)
	})
}

// solveCall resolves a user predicate call: the local hypothesis layer is
// tried first (in installation order, unindexed — => layers are expected
// to be small), then the global, first-argument-indexed clause database.
// Each candidate clause gets its own fresh cut barrier, installed fresh
// by the enclosing clause entry.
func (in *Interpreter) solveCall(depth int, functor Const, goal *Term, hyps []*Clause, k Cont) (bool, error) {
	var args []*Term
	if goal.Kind == KApp {
		args = goal.Args
	}

	for _, c := range hyps {
		hf, err := headFunctor(c.Head)
		if err != nil {
			return true, err
		}
		if hf != functor || !arityMatches(c.Head, len(args)) {
			continue
		}
		stop, err, matched, cutHere := in.tryClauseDirect(depth, goal, c, hyps, k)
		if stop || err != nil {
			return stop, err
		}
		if cutHere {
			return false, nil
		}
		_ = matched
	}

	it := in.Clauses.Candidates(functor, args, depth)
	for {
		c, ok := it.Next()
		if !ok {
			break
		}
		stop, err, cutHere := in.tryClauseInstantiated(depth, goal, c, hyps, k)
		if stop || err != nil {
			return stop, err
		}
		if cutHere {
			return false, nil
		}
	}
	return false, nil
}

func arityMatches(head *Term, n int) bool {
	if head.Kind == KApp {
		return len(head.Args) == n
	}
	return n == 0
}

// tryClauseDirect attempts a local (=>-installed) clause: its head/body
// are already live terms at the current depth, not a template, so no
// instantiation is performed (see builtins.go's assertTerm comment for
// why this convention was chosen).
// hyps is the hypothesis set active at the call site, carried into the
// clause body so a => hypothesis stays visible through nested calls.
func (in *Interpreter) tryClauseDirect(depth int, goal *Term, c *Clause, hyps []*Clause, k Cont) (stop bool, err error, matched bool, cutHere bool) {
	mark := in.Trail.Mark()
	res := in.Unify(depth, goal, c.Head)
	if res.Err != nil {
		return true, res.Err, false, false
	}
	if res.Outcome == UFail {
		in.Trail.UndoTo(mark)
		return false, nil, false, false
	}
	ncb := &cutBarrier{}
	s, e := in.continueClause(depth, c.Body, hyps, res.Woken, ncb, k)
	if s || e != nil {
		return s, e, true, false
	}
	in.Trail.UndoTo(mark)
	return false, nil, true, ncb.fired
}

// tryClauseInstantiated attempts a global clause, freshening its
// variables via Instantiate first. hyps is the hypothesis set active at
// the call site, carried into the clause body so a => hypothesis stays
// visible through nested calls.
func (in *Interpreter) tryClauseInstantiated(depth int, goal *Term, c *Clause, hyps []*Clause, k Cont) (stop bool, err error, cutHere bool) {
	mark := in.Trail.Mark()
	head, body := c.Instantiate(in.UVars, depth)
	res := in.Unify(depth, goal, head)
	if res.Err != nil {
		return true, res.Err, false
	}
	if res.Outcome == UFail {
		in.Trail.UndoTo(mark)
		return false, nil, false
	}
	ncb := &cutBarrier{}
	s, e := in.continueClause(depth, body, hyps, res.Woken, ncb, k)
	if s || e != nil {
		return s, e, false
	}
	in.Trail.UndoTo(mark)
	return false, nil, ncb.fired
}

func (in *Interpreter) continueClause(depth int, body *Term, hyps []*Clause, woken []*Suspension, cb *cutBarrier, k Cont) (bool, error) {
	cont := func() (bool, error) {
		if body == nil {
			return k()
		}
		return in.solve(depth, body, hyps, cb, k)
	}
	return in.solveWokenCB(woken, cb, cont)
}

// solveWokenCB is solveWoken's variant used when resuming a clause body:
// suspensions woken by the head unification are solved under their own
// captured barrier, exactly like solveWoken, before the clause body runs.
func (in *Interpreter) solveWokenCB(woken []*Suspension, cb *cutBarrier, k Cont) (bool, error) {
	if len(woken) == 0 {
		return k()
	}
	s := woken[0]
	rest := woken[1:]
	in.stats.wakeups.Inc()
	in.Trace.Wake(s.Depth, s.Goal.String())
	return in.solve(s.Depth, s.Goal, s.Hyps, &cutBarrier{}, func() (bool, error) {
		return in.solveWokenCB(rest, cb, k)
	})
}
