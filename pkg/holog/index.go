package holog

// This file implements a first-argument clause index: a
// cheap, sound pre-filter over a predicate's clause list (skip clauses
// whose first argument's rigid shape can never unify with the goal's) plus
// a lazy candidate sequence so the solver can stop pulling clauses the
// moment a cut or an accepted solution makes further ones irrelevant,
// without ever materializing the filtered list up front.
//
// Uses a two-level relation index (functor, then a cheap discriminant on
// the first argument), built as a pull-based iterator rather than an eager
// slice filter, since backtracking into "try the next clause" must be
// O(1) amortized,
// which a Next()-style cursor gives for free and an eagerly-filtered copy
// does not.

// argTag is the cheap, rigid-shape discriminant used to prefilter clause
// candidates. variable=true means "matches anything" — either the goal's
// first argument is an unbound uvar, or the clause's first head argument
// is one of the clause's own (as yet uninstantiated) variables.
type argTag struct {
	variable bool
	kind     Kind
	sym      Const // KConst: the symbol. KApp: the head functor.
}

// classifyClauseArg tags a clause head's first argument, read directly off
// the (uninstantiated) template: rigid structure is unaffected by
// substitution, so this is safe to precompute once per clause.
func classifyClauseArg(t *Term, numVars int) argTag {
	switch t.Kind {
	case KConst:
		if t.Sym.IsVar() && int(t.Sym) < numVars {
			return argTag{variable: true}
		}
		return argTag{kind: KConst, sym: t.Sym}
	case KApp:
		return argTag{kind: KApp, sym: t.Head}
	case KCons:
		return argTag{kind: KCons}
	case KNil:
		return argTag{kind: KNil}
	default:
		// Lam, Builtin, CData, Discard, or (shouldn't occur in a template)
		// UVar/AppUVar: no cheap sound discriminant, so always a candidate.
		return argTag{variable: true}
	}
}

// classifyGoalArg tags a goal's (already dereferenced) first argument the
// same way, treating an unbound uvar as "matches anything".
func classifyGoalArg(t *Term) argTag {
	if t.IsUnboundUVar() {
		return argTag{variable: true}
	}
	return classifyClauseArg(t, 0)
}

func (g argTag) mayMatch(c argTag) bool {
	if g.variable || c.variable {
		return true
	}
	if g.kind != c.kind {
		return false
	}
	if g.kind == KConst || g.kind == KApp {
		return g.sym == c.sym
	}
	return true
}

// firstArg returns a clause head's first argument, or nil if the predicate
// is 0-ary (no first-argument index applies).
func firstArg(head *Term) *Term {
	if head.Kind == KApp && len(head.Args) > 0 {
		return head.Args[0]
	}
	return nil
}

// CandidateIter lazily yields clauses from a predicate's list that survive
// the first-argument filter against a fixed goal tag.
type CandidateIter struct {
	clauses []*Clause
	goalTag argTag
	indexed bool
	pos     int
}

// Candidates builds a lazy candidate sequence for calling functor with
// args (already dereferenced at depth) against db's current clause list
// for that predicate.
func (db *ClauseDB) Candidates(functor Const, args []*Term, depth int) *CandidateIter {
	clauses := db.Clauses(functor)
	it := &CandidateIter{clauses: clauses}
	if len(args) == 0 {
		return it
	}
	it.goalTag = classifyGoalArg(Deref(depth, args[0]))
	it.indexed = true
	return it
}

// Next returns the next surviving candidate clause, or ok=false when the
// sequence is exhausted.
func (it *CandidateIter) Next() (*Clause, bool) {
	for it.pos < len(it.clauses) {
		c := it.clauses[it.pos]
		it.pos++
		if !it.indexed {
			return c, true
		}
		fa := firstArg(c.Head)
		if fa == nil {
			return c, true
		}
		if it.goalTag.mayMatch(classifyClauseArg(fa, c.NumVars)) {
			return c, true
		}
	}
	return nil, false
}
