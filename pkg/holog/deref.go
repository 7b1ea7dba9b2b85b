package holog

// This file implements the dereference/motion machinery:
// deref/app_deref (whnf under assigned uvars, with β-reduction), move (the
// depth-relabeling lift), and pruning (shrinking a uvar's arity when a move
// would otherwise capture a now out-of-scope bound variable).
//
// Bound variables are de Bruijn *levels*: the level recorded for a binder
// never changes as more binders are entered below it (invariant 3). That is
// what makes β-contraction here a plain substitution with no index
// renumbering: replacing Const(level) by the argument never requires
// shifting the other free levels in the body.

// moveConst relabels a single Const-valued field (a bound-variable
// occurrence, an App head, or a UVar/AppUVar's From depth) under a move
// from depth `from` to depth `to`. Global symbols (c.IsVar() == false) pass
// through unchanged. Returns ok=false on scope extrusion: c refers to a
// binder introduced inside the window being pruned away ([to, from) when
// to < from).
func moveConst(c Const, from, to int) (Const, bool) {
	if !c.IsVar() {
		return c, true
	}
	ci := int(c)
	switch {
	case ci >= from:
		return Const(ci - from + to), true
	case ci < to:
		return c, true
	default: // to <= ci < from
		return 0, false
	}
}

// move rewrites t's bound-variable levels for a change of context depth
// from `from` to `to`. It does not touch uvar cell state:
// UVar/AppUVar nodes are relabeled structurally (their From field shifted),
// never dereferenced. Returns ok=false when a bound variable would be
// captured outside its scope; the caller decides between raising a scope
// error and pruning (see pruneForMove).
func move(from, to int, t *Term) (*Term, bool) {
	if from == to {
		return t, true
	}
	switch t.Kind {
	case KConst:
		nc, ok := moveConst(t.Sym, from, to)
		if !ok {
			return nil, false
		}
		return MkConst(nc), true
	case KLam:
		nb, ok := move(from+1, to+1, t.Body)
		if !ok {
			return nil, false
		}
		return MkLam(nb), true
	case KApp:
		nh, ok := moveConst(t.Head, from, to)
		if !ok {
			return nil, false
		}
		nargs, ok := moveAll(from, to, t.Args)
		if !ok {
			return nil, false
		}
		return &Term{Kind: KApp, Head: nh, Args: nargs}, true
	case KCons:
		nh, ok1 := move(from, to, t.Args[0])
		nt, ok2 := move(from, to, t.Args[1])
		if !ok1 || !ok2 {
			return nil, false
		}
		return MkCons(nh, nt), true
	case KNil, KDiscard, KCData:
		return t, true
	case KBuiltin:
		nargs, ok := moveAll(from, to, t.Args)
		if !ok {
			return nil, false
		}
		return &Term{Kind: KBuiltin, BID: t.BID, Args: nargs}, true
	case KUVar:
		nfrom, ok := moveConst(Const(t.From), from, to)
		if !ok {
			return nil, false
		}
		return mkUVar(t.UV, int(nfrom), t.NArgs), true
	case KAppUVar:
		nfrom, ok := moveConst(Const(t.From), from, to)
		if !ok {
			return nil, false
		}
		nargs, ok := moveAll(from, to, t.Args)
		if !ok {
			return nil, false
		}
		return mkAppUVar(t.UV, int(nfrom), nargs), true
	default:
		return t, true
	}
}

func moveAll(from, to int, args []*Term) ([]*Term, bool) {
	out := make([]*Term, len(args))
	for i, a := range args {
		na, ok := move(from, to, a)
		if !ok {
			return nil, false
		}
		out[i] = na
	}
	return out, true
}

// pruneForMove attempts move(from, to, t); on scope-extrusion failure where
// the offending node is itself an unassigned UVar/AppUVar, it prunes that
// uvar down to the arguments that remain representable at `to` and
// retries, rather than failing the whole move.
// Any other extrusion (a bound variable escaping through a rigid
// constructor) is a genuine scope error and is reported as such.
func pruneForMove(heap *UVarHeap, trail *Trail, from, to int, t *Term) (*Term, bool) {
	if moved, ok := move(from, to, t); ok {
		return moved, true
	}
	switch t.Kind {
	case KUVar:
		if t.UV.State == Assigned {
			unfolded := stripLams(t.NArgs, t.UV.Value)
			moved, ok := move(t.UV.From, to, unfolded)
			if !ok {
				return nil, false
			}
			return moved, true
		}
		return pruneUVarArity(heap, trail, t, from, to)
	case KAppUVar:
		if t.UV.State == Assigned {
			applied := applyArgs(t.UV.From, t.UV.Value, t.Args)
			return pruneForMove(heap, trail, from, to, applied)
		}
		return pruneAppUVarArgs(heap, trail, t, from, to)
	default:
		return nil, false
	}
}

// pruneUVarArity shrinks an η-long UVar(from, nargs) whose implicit
// argument list (Const(t.From)..Const(t.From+t.NArgs-1)) includes levels
// that don't survive the move, by keeping only the surviving ones.
func pruneUVarArity(heap *UVarHeap, trail *Trail, t *Term, from, to int) (*Term, bool) {
	kept := make([]int, 0, t.NArgs)
	for k := 0; k < t.NArgs; k++ {
		lvl := t.From + k
		if _, ok := moveConst(Const(lvl), from, to); ok {
			kept = append(kept, k)
		}
	}
	if len(kept) == t.NArgs {
		// Nothing to prune; the extrusion must be in the From depth itself.
		return nil, false
	}
	fresh := heap.New(t.From)
	// Assign the old cell to an η-expansion over the retained argument
	// positions applied to the new, smaller-arity variable.
	args := make([]*Term, len(kept))
	for i, k := range kept {
		args[i] = MkConst(Const(t.From + k))
	}
	trail.AssignUVar(t.UV, wrapLams(t.NArgs, mkAppUVar(fresh, t.From, args)))
	newArity := len(kept)
	prunedOcc := mkUVar(fresh, t.From, newArity)
	moved, ok := move(from, to, prunedOcc)
	if !ok {
		return nil, false
	}
	return moved, true
}

// pruneAppUVarArgs shrinks an AppUVar's explicit argument list to those
// that remain representable at `to`.
func pruneAppUVarArgs(heap *UVarHeap, trail *Trail, t *Term, from, to int) (*Term, bool) {
	keptIdx := make([]int, 0, len(t.Args))
	keptArgs := make([]*Term, 0, len(t.Args))
	for i, a := range t.Args {
		if ma, ok := move(from, to, a); ok {
			keptIdx = append(keptIdx, i)
			keptArgs = append(keptArgs, ma)
			_ = i
		}
	}
	if len(keptArgs) == len(t.Args) {
		return nil, false
	}
	fresh := heap.New(t.From)
	retained := make([]*Term, len(keptIdx))
	for i, idx := range keptIdx {
		retained[i] = t.Args[idx]
	}
	trail.AssignUVar(t.UV, wrapLams(len(t.Args), mkAppUVar(fresh, t.From, retained)))
	return mkAppUVar(fresh, t.From, keptArgs), true
}

// wrapLams wraps body in n nested abstractions; used to η-expand a pruned
// uvar's replacement value.
func wrapLams(n int, body *Term) *Term {
	for k := 0; k < n; k++ {
		body = MkLam(body)
	}
	return body
}

// subst replaces every free occurrence of Const(level) in t with val. Since
// levels are absolute depths rather than relative indices, substitution
// never needs to renumber the surrounding term (the substitution that
// makes de Bruijn levels pleasant to work with).
func subst(t *Term, level Const, val *Term) *Term {
	switch t.Kind {
	case KConst:
		if t.Sym == level {
			return val
		}
		return t
	case KLam:
		return MkLam(subst(t.Body, level, val))
	case KApp:
		if t.Head == level {
			return applyArgs(int(level), val, substAll(t.Args, level, val))
		}
		return &Term{Kind: KApp, Head: t.Head, Args: substAll(t.Args, level, val)}
	case KCons:
		return MkCons(subst(t.Args[0], level, val), subst(t.Args[1], level, val))
	case KNil, KDiscard, KCData:
		return t
	case KBuiltin:
		return &Term{Kind: KBuiltin, BID: t.BID, Args: substAll(t.Args, level, val)}
	case KUVar, KAppUVar:
		// UVar/AppUVar nodes carry no occurrence of a bound-variable level
		// directly: From is bookkeeping, not a substitutable reference.
		return t
	default:
		return t
	}
}

func substAll(args []*Term, level Const, val *Term) []*Term {
	out := make([]*Term, len(args))
	for i, a := range args {
		out[i] = subst(a, level, val)
	}
	return out
}

// applyArgs applies head to args, contracting β-redexes as it goes.
// head must already be dereferenced one level: an
// unassigned UVar/AppUVar, a Lam, or (with no args remaining) anything.
// depth is the de Bruijn level bound by head when head is a Lam — by
// invariant 3 a Lam's bound variable is Const(depth) for the depth at which
// it was entered, and contracting a chain of k nested Lams binds levels
// depth, depth+1, ..., depth+k-1 in order.
func applyArgs(depth int, head *Term, args []*Term) *Term {
	if len(args) == 0 {
		return head
	}
	switch head.Kind {
	case KLam:
		reduced := subst(head.Body, Const(depth), args[0])
		return applyArgs(depth+1, reduced, args[1:])
	case KUVar:
		if head.UV.State == Assigned {
			return applyArgs(head.UV.From, head.UV.Value, args)
		}
		return mkAppUVar(head.UV, head.From, args)
	case KAppUVar:
		if head.UV.State == Assigned {
			applied := applyArgs(head.UV.From, head.UV.Value, head.Args)
			return applyArgs(depth, applied, args)
		}
		merged := append(append([]*Term{}, head.Args...), args...)
		return mkAppUVar(head.UV, head.From, merged)
	default:
		panic("holog: anomaly: applying arguments to non-reducible head " + head.Kind.String())
	}
}

// stripLams peels up to n leading Lam constructors off t, returning the
// inner body. Used to unfold an η-expanded uvar assignment (λ^n t') back to
// t' when the occurrence being dereferenced supplies exactly those n
// implicit bound-variable arguments — which,
// since the arguments are literally the same bound variables the
// expansion closed over, reduces to stripping rather than substituting.
func stripLams(n int, t *Term) *Term {
	for k := 0; k < n && t.Kind == KLam; k++ {
		t = t.Body
	}
	return t
}

// Deref returns the whnf of t as viewed from context depth `to`, chasing
// assigned UVar/AppUVar chains and contracting β-redexes along the way.
// The result's head is never an assigned
// UVar/AppUVar (invariant 2).
func Deref(to int, t *Term) *Term {
	for {
		switch t.Kind {
		case KUVar:
			if t.UV.State != Assigned {
				return t
			}
			unfolded := stripLams(t.NArgs, t.UV.Value)
			v, ok := move(t.UV.From, to, unfolded)
			if !ok {
				panic("holog: anomaly: scope extrusion dereferencing uvar")
			}
			t = v
		case KAppUVar:
			if t.UV.State != Assigned {
				return t
			}
			applied := applyArgs(t.UV.From, t.UV.Value, t.Args)
			v, ok := move(t.UV.From, to, applied)
			if !ok {
				panic("holog: anomaly: scope extrusion dereferencing AppUVar")
			}
			t = v
		default:
			return t
		}
	}
}
