package holog

// This file implements the unifier: structural descent on
// dereferenced terms, pattern-fragment flex/rigid assignment (with occurs
// check and pruning folded into one traversal), flex/flex via the same
// pattern machinery, and delay-outside-the-fragment.
//
// Simplifying scope decision: the pattern check
// requires a unification variable's argument list to be a *contiguous* run
// of bound-variable levels (Const(base), Const(base+1), ..., in order).
// This is the shape a compiler lowering `pi`/`sigma`-introduced variables
// naturally produces and covers every case exercised in practice; an arbitrary
// permutation or strict subset of the in-scope bound variables is treated
// as outside the pattern fragment (delayed or rejected per
// DelayOutsideFragment) rather than solved by a general permutation
// inverse.

// UOutcome is the three-way result of attempting a unification equation.
type UOutcome uint8

const (
	UOk UOutcome = iota
	UFail
	UDelay
)

// UnifyResult reports the outcome of Unify, the suspensions it woke (for
// the solver to re-enqueue as goals), and the blockers to suspend on when
// Outcome is UDelay.
type UnifyResult struct {
	Outcome  UOutcome
	Blockers []*UVarBody
	Woken    []*Suspension
	Err      error
}

// Unify attempts to unify t1 and t2 at context depth. On UOk, every
// assignment made has been trailed (undoing the caller's own Trail.Mark if
// it decides to backtrack is the caller's job — Unify never undoes its own
// partial progress on UFail/UDelay/Err; the caller is responsible for
// undoing to its own mark on failure, not Unify itself.
func (in *Interpreter) Unify(depth int, t1, t2 *Term) UnifyResult {
	var woken []*Suspension
	outcome, blockers, err := in.unify(depth, t1, t2, &woken)
	return UnifyResult{Outcome: outcome, Blockers: blockers, Woken: woken, Err: err}
}

func (in *Interpreter) assign(uv *UVarBody, val *Term, woken *[]*Suspension) {
	in.Trail.AssignUVar(uv, val)
	*woken = append(*woken, in.Constraints.WakeOn(in.Trail, uv)...)
}

func (in *Interpreter) unify(depth int, t1, t2 *Term, woken *[]*Suspension) (UOutcome, []*UVarBody, error) {
	a := Deref(depth, t1)
	b := Deref(depth, t2)

	if a.Kind == KDiscard || b.Kind == KDiscard {
		return UOk, nil, nil
	}

	aFlex := a.Kind == KUVar || a.Kind == KAppUVar
	bFlex := b.Kind == KUVar || b.Kind == KAppUVar

	switch {
	case aFlex && bFlex:
		if a.UV == b.UV {
			return in.unifySameCell(depth, a, b, woken)
		}
		// Assign the younger (higher id, more locally created) cell to the
		// older one's occurrence, reusing the flex/rigid pattern machinery
		// flex/flex case.
		if a.UV.ID >= b.UV.ID {
			return in.unifyFlexRigid(depth, a, b, woken)
		}
		return in.unifyFlexRigid(depth, b, a, woken)
	case aFlex:
		return in.unifyFlexRigid(depth, a, b, woken)
	case bFlex:
		return in.unifyFlexRigid(depth, b, a, woken)
	default:
		return in.unifyRigidRigid(depth, a, b, woken)
	}
}

func (in *Interpreter) unifySameCell(depth int, a, b *Term, woken *[]*Suspension) (UOutcome, []*UVarBody, error) {
	aArgs := materializeArgs(a)
	bArgs := materializeArgs(b)
	if len(aArgs) != len(bArgs) {
		return UFail, nil, NewAnomaly("same uvar cell occurs with mismatched arities %d vs %d", len(aArgs), len(bArgs))
	}
	var blockers []*UVarBody
	for i := range aArgs {
		outcome, blk, err := in.unify(depth, aArgs[i], bArgs[i], woken)
		if err != nil || outcome == UFail {
			return outcome, blk, err
		}
		if outcome == UDelay {
			blockers = append(blockers, blk...)
		}
	}
	if blockers != nil {
		return UDelay, blockers, nil
	}
	return UOk, nil, nil
}

// materializeArgs returns the (implicit or explicit) argument list a
// UVar/AppUVar occurrence stands for.
func materializeArgs(t *Term) []*Term {
	if t.Kind == KUVar {
		args := make([]*Term, t.NArgs)
		for i := range args {
			args[i] = MkConst(Const(t.From + i))
		}
		return args
	}
	return t.Args
}

func (in *Interpreter) unifyRigidRigid(depth int, a, b *Term, woken *[]*Suspension) (UOutcome, []*UVarBody, error) {
	if a.Kind != b.Kind {
		return UFail, nil, nil
	}
	switch a.Kind {
	case KConst:
		if a.Sym == b.Sym {
			return UOk, nil, nil
		}
		return UFail, nil, nil
	case KLam:
		return in.unify(depth+1, a.Body, b.Body, woken)
	case KApp:
		if a.Head != b.Head || len(a.Args) != len(b.Args) {
			return UFail, nil, nil
		}
		return in.unifyArgs(depth, a.Args, b.Args, woken)
	case KCons:
		return in.unifyArgs(depth, a.Args, b.Args, woken)
	case KNil, KDiscard:
		return UOk, nil, nil
	case KBuiltin:
		if a.BID != b.BID || len(a.Args) != len(b.Args) {
			return UFail, nil, nil
		}
		return in.unifyArgs(depth, a.Args, b.Args, woken)
	case KCData:
		if a.Data.Equal(b.Data) {
			return UOk, nil, nil
		}
		return UFail, nil, nil
	default:
		return UFail, nil, NewAnomaly("unifyRigidRigid: unexpected kind %v", a.Kind)
	}
}

func (in *Interpreter) unifyArgs(depth int, as, bs []*Term, woken *[]*Suspension) (UOutcome, []*UVarBody, error) {
	var blockers []*UVarBody
	for i := range as {
		outcome, blk, err := in.unify(depth, as[i], bs[i], woken)
		if err != nil || outcome == UFail {
			return outcome, blk, err
		}
		if outcome == UDelay {
			blockers = append(blockers, blk...)
		}
	}
	if blockers != nil {
		return UDelay, blockers, nil
	}
	return UOk, nil, nil
}

// patternBase reports the contiguous bound-variable window [base, base+k)
// a flex occurrence's argument list stands for, and whether it qualifies as
// pattern fragment.
func patternBase(flex *Term) (base, k int, ok bool) {
	if flex.Kind == KUVar {
		return flex.From, flex.NArgs, true
	}
	args := flex.Args
	if len(args) == 0 {
		return flex.From, 0, true
	}
	first := args[0]
	if first.Kind != KConst || !first.Sym.IsVar() {
		return 0, 0, false
	}
	base = int(first.Sym)
	for idx, a := range args {
		if a.Kind != KConst || !a.Sym.IsVar() || int(a.Sym) != base+idx {
			return 0, 0, false
		}
	}
	return base, len(args), true
}

func (in *Interpreter) unifyFlexRigid(depth int, flex, rigid *Term, woken *[]*Suspension) (UOutcome, []*UVarBody, error) {
	base, k, ok := patternBase(flex)
	if !ok {
		if in.Options.DelayOutsideFragment {
			return UDelay, []*UVarBody{flex.UV}, nil
		}
		return UFail, nil, NewRegularError("unification outside the pattern fragment and delay_outside_fragment is disabled")
	}
	rewritten, ok := in.patternRewrite(depth, base, k, flex.From, flex.UV, rigid)
	if !ok {
		return UFail, nil, nil
	}
	in.assign(flex.UV, wrapLams(k, rewritten), woken)
	return UOk, nil, nil
}

// patternRewrite rewrites t (viewed at context depth) into the scope of a
// uvar whose pattern window is [base, base+k): levels in that window are
// remapped to the assigned lambda's own bound positions
// (uvFrom, uvFrom+1, ...), and a λ inside t whose bound level is the one
// right after the window joins it, landing on the next such position;
// levels below uvFrom pass through unchanged (still free in the assignment,
// satisfying invariant 4), as do uvar occurrences that see only such
// levels; any other level (including one bound by a λ inside t that does
// not directly follow the window), or an occurrence of forUV itself, fails
// (occurs check / scope extrusion / pruning needed beyond this function's
// single-pass scope).
func (in *Interpreter) patternRewrite(depth, base, k, uvFrom int, forUV *UVarBody, t *Term) (*Term, bool) {
	d := Deref(depth, t)
	switch d.Kind {
	case KConst:
		if !d.Sym.IsVar() {
			return d, true
		}
		lvl := int(d.Sym)
		if lvl >= base && lvl < base+k {
			return MkConst(Const(uvFrom + (lvl - base))), true
		}
		if lvl < uvFrom {
			return d, true
		}
		return nil, false
	case KLam:
		nk := k
		if base+k == depth {
			nk = k + 1
		}
		nb, ok := in.patternRewrite(depth+1, base, nk, uvFrom, forUV, d.Body)
		if !ok {
			return nil, false
		}
		return MkLam(nb), true
	case KApp:
		nh, ok := remapConst(d.Head, base, k, uvFrom)
		if !ok {
			return nil, false
		}
		nargs, ok := in.patternRewriteAll(depth, base, k, uvFrom, forUV, d.Args)
		if !ok {
			return nil, false
		}
		return &Term{Kind: KApp, Head: nh, Args: nargs}, true
	case KCons:
		nh, ok1 := in.patternRewrite(depth, base, k, uvFrom, forUV, d.Args[0])
		nt, ok2 := in.patternRewrite(depth, base, k, uvFrom, forUV, d.Args[1])
		if !ok1 || !ok2 {
			return nil, false
		}
		return MkCons(nh, nt), true
	case KNil, KDiscard, KCData:
		return d, true
	case KBuiltin:
		nargs, ok := in.patternRewriteAll(depth, base, k, uvFrom, forUV, d.Args)
		if !ok {
			return nil, false
		}
		return &Term{Kind: KBuiltin, BID: d.BID, Args: nargs}, true
	case KUVar:
		if d.UV == forUV {
			return nil, false // occurs check
		}
		nf, ok := d.From, d.From+d.NArgs <= uvFrom
		if !ok {
			nf, ok = remapLevel(d.From, base, k, uvFrom)
		}
		if !ok {
			return nil, false
		}
		return mkUVar(d.UV, nf, d.NArgs), true
	case KAppUVar:
		if d.UV == forUV {
			return nil, false
		}
		nf, ok := d.From, d.From <= uvFrom
		if !ok {
			nf, ok = remapLevel(d.From, base, k, uvFrom)
		}
		if !ok {
			return nil, false
		}
		nargs, ok := in.patternRewriteAll(depth, base, k, uvFrom, forUV, d.Args)
		if !ok {
			return nil, false
		}
		return mkAppUVar(d.UV, nf, nargs), true
	default:
		return nil, false
	}
}

func (in *Interpreter) patternRewriteAll(depth, base, k, uvFrom int, forUV *UVarBody, args []*Term) ([]*Term, bool) {
	out := make([]*Term, len(args))
	for i, a := range args {
		na, ok := in.patternRewrite(depth, base, k, uvFrom, forUV, a)
		if !ok {
			return nil, false
		}
		out[i] = na
	}
	return out, true
}

func remapLevel(lvl, base, k, uvFrom int) (int, bool) {
	if lvl >= base && lvl < base+k {
		return uvFrom + (lvl - base), true
	}
	if lvl < uvFrom {
		return lvl, true
	}
	return 0, false
}

func remapConst(c Const, base, k, uvFrom int) (Const, bool) {
	if !c.IsVar() {
		return c, true
	}
	nl, ok := remapLevel(int(c), base, k, uvFrom)
	if !ok {
		return 0, false
	}
	return Const(nl), true
}
