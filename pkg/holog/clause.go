package holog

import "fmt"

// Clause is a stored program clause: Head :- Body (Body nil for a fact).
// A clause's own logic variables are represented the same way everything
// else in this package represents bound variables: as the outermost
// NumVars de Bruijn levels of Head/Body, as if the clause were implicitly
// `pi X1\ ... \pi Xn\ (Head :- Body)`. Any λ/pi/sigma structure nested
// inside the clause itself continues numbering from level NumVars upward.
// instantiate (below) peels off those outer levels by substituting fresh
// uvars for them and shifting what remains down to the caller's depth.
//
// Narrowed from a goal-closure-per-clause representation (fine for a parallel,
// stack-copying engine) to this explicit level convention, which is what
// a single shared Trail/UVarHeap needs in order to instantiate a clause
// without re-running the compiler.
type Clause struct {
	Name    string // optional; a target for graft directives elsewhere in the program
	NumVars int
	Head    *Term
	Body    *Term // nil for a fact
}

// instantiate produces a fresh copy of t (drawn from a clause with nVars
// own variables) ready to be solved at context depth: nVars fresh uvars
// replace the clause's own variable levels, and any surviving internal
// bound-variable levels are shifted down to sit at depth.
func instantiate(heap *UVarHeap, depth int, nVars int, t *Term) *Term {
	if nVars == 0 {
		if depth == 0 {
			return t
		}
		moved, ok := move(0, depth, t)
		if !ok {
			panic("holog: anomaly: clause instantiation scope extrusion")
		}
		return moved
	}
	vals := make([]*Term, nVars)
	for i := range vals {
		uv := heap.New(depth)
		// The occurrence is recorded at the template's own depth nVars;
		// the move below relabels it to depth with everything else.
		vals[i] = mkUVar(uv, nVars, 0)
	}
	substituted := substVars(t, vals)
	moved, ok := move(nVars, depth, substituted)
	if !ok {
		panic("holog: anomaly: clause instantiation scope extrusion")
	}
	return moved
}

// Instantiate returns fresh copies of the clause's head and body (body is
// nil iff the clause is a fact), ready for resolution at context depth.
func (c *Clause) Instantiate(heap *UVarHeap, depth int) (head, body *Term) {
	if c.Body == nil {
		return instantiate(heap, depth, c.NumVars, c.Head), nil
	}
	// Head and body are instantiated as one term so that both see the same
	// fresh uvars for the clause's own variables.
	both := instantiate(heap, depth, c.NumVars, MkApp(CComma, c.Head, c.Body))
	return both.Args[0], both.Args[1]
}

// substVars replaces every Const(i), i in [0, len(vals)), with vals[i].
// Because levels are absolute, entering a Lam never changes what Const(i)
// refers to, so no depth bookkeeping is needed here (contrast move, which
// exists only because moving between *context* depths does need it).
func substVars(t *Term, vals []*Term) *Term {
	switch t.Kind {
	case KConst:
		if i := int(t.Sym); t.Sym.IsVar() && i < len(vals) {
			return vals[i]
		}
		return t
	case KLam:
		return MkLam(substVars(t.Body, vals))
	case KApp:
		args := substVarsAll(t.Args, vals)
		if i := int(t.Head); t.Head.IsVar() && i < len(vals) {
			return applyArgs(0, vals[i], args)
		}
		return &Term{Kind: KApp, Head: t.Head, Args: args}
	case KCons:
		return MkCons(substVars(t.Args[0], vals), substVars(t.Args[1], vals))
	case KNil, KDiscard, KCData:
		return t
	case KBuiltin:
		return &Term{Kind: KBuiltin, BID: t.BID, Args: substVarsAll(t.Args, vals)}
	case KUVar, KAppUVar:
		// Clause templates are built by the compiler over Const alone; a live
		// uvar node here would mean instantiate was called twice.
		return t
	default:
		return t
	}
}

func substVarsAll(args []*Term, vals []*Term) []*Term {
	out := make([]*Term, len(args))
	for i, a := range args {
		out[i] = substVars(a, vals)
	}
	return out
}

// headFunctor returns the predicate key a clause's head is stored/indexed
// under: the App head constant, or the Const itself for a 0-arity
// predicate.
func headFunctor(head *Term) (Const, error) {
	switch head.Kind {
	case KConst:
		return head.Sym, nil
	case KApp:
		return head.Head, nil
	default:
		return 0, NewTypeError("clause head", nil, "clause head must be a constant or application, got %s", head.Kind)
	}
}

// InsertMode controls where Insert places a clause relative to a
// predicate's existing clause list (:before/:after/:replace graft
// annotations a surface language might expose, plus plain program-order
// loading and the assert/asserta builtins, all go through this one entry
// point).
type InsertMode uint8

const (
	InsertEnd InsertMode = iota
	InsertStart
	InsertBefore
	InsertAfter
	InsertReplace
)

// ClauseDB stores, per predicate, an ordered clause list. Lookup/candidate
// iteration for solving goes through Index (index.go), which is built on
// top of a DB snapshot; ClauseDB itself only owns load-time assembly.
type ClauseDB struct {
	byFunctor map[Const][]*Clause
	byName    map[string]*Clause
}

// NewClauseDB creates an empty database.
func NewClauseDB() *ClauseDB {
	return &ClauseDB{byFunctor: make(map[Const][]*Clause), byName: make(map[string]*Clause)}
}

// Insert adds c to the database per mode, relative to the named target
// clause (ignored for InsertEnd/InsertStart). Returns an error if a
// Before/After/Replace target is unknown, grounded on how graft-style
// clause accumulation directives behave in the corpus: failing a missing
// target at load time rather than silently appending.
func (db *ClauseDB) Insert(c *Clause, mode InsertMode, target string) error {
	functor, err := headFunctor(c.Head)
	if err != nil {
		return err
	}
	list := db.byFunctor[functor]

	switch mode {
	case InsertEnd:
		list = append(list, c)
	case InsertStart:
		list = append([]*Clause{c}, list...)
	case InsertBefore, InsertAfter, InsertReplace:
		idx, ok := db.indexOf(list, target)
		if !ok {
			return NewRegularError("graft target clause %q not found for predicate", target)
		}
		switch mode {
		case InsertBefore:
			list = spliceAt(list, idx, c, false)
		case InsertAfter:
			list = spliceAt(list, idx, c, true)
		case InsertReplace:
			list = append(append(append([]*Clause{}, list[:idx]...), c), list[idx+1:]...)
			delete(db.byName, target)
		}
	}
	db.byFunctor[functor] = list
	if c.Name != "" {
		db.byName[c.Name] = c
	}
	return nil
}

func (db *ClauseDB) indexOf(list []*Clause, name string) (int, bool) {
	for i, c := range list {
		if c.Name == name {
			return i, true
		}
	}
	return 0, false
}

func spliceAt(list []*Clause, idx int, c *Clause, after bool) []*Clause {
	at := idx
	if after {
		at = idx + 1
	}
	out := make([]*Clause, 0, len(list)+1)
	out = append(out, list[:at]...)
	out = append(out, c)
	out = append(out, list[at:]...)
	return out
}

// Retract removes the first clause for functor whose head/body structurally
// equal those given (by the == supplied callback, so the solver can compare
// up to dereferencing), used by the retract/1 built-in. Returns false if no
// matching clause was found.
func (db *ClauseDB) Retract(functor Const, matches func(*Clause) bool) bool {
	list := db.byFunctor[functor]
	for i, c := range list {
		if matches(c) {
			db.byFunctor[functor] = append(append([]*Clause{}, list[:i]...), list[i+1:]...)
			if c.Name != "" {
				delete(db.byName, c.Name)
			}
			return true
		}
	}
	return false
}

// Clauses returns the current ordered clause list for functor.
func (db *ClauseDB) Clauses(functor Const) []*Clause {
	return db.byFunctor[functor]
}

// String is a debug aid listing every predicate's clause count.
func (db *ClauseDB) String() string {
	return fmt.Sprintf("ClauseDB{%d predicates}", len(db.byFunctor))
}
