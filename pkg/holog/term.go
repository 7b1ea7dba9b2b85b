package holog

import (
	"fmt"
	"strings"
)

// Kind tags the variant a Term node holds. The hot path (deref, unify)
// dispatches on the Kind of an already-dereferenced head, so Kind is a
// plain byte and Term a single packed struct rather than an interface with
// one concrete type per variant: keeping dereference non-allocating matters
// more here than variant-per-type encapsulation.
type Kind uint8

const (
	KConst Kind = iota
	KLam
	KApp
	KCons
	KNil
	KBuiltin
	KCData
	KUVar
	KAppUVar
	KDiscard
)

func (k Kind) String() string {
	switch k {
	case KConst:
		return "Const"
	case KLam:
		return "Lam"
	case KApp:
		return "App"
	case KCons:
		return "Cons"
	case KNil:
		return "Nil"
	case KBuiltin:
		return "Builtin"
	case KCData:
		return "CData"
	case KUVar:
		return "UVar"
	case KAppUVar:
		return "AppUVar"
	case KDiscard:
		return "Discard"
	default:
		return "?"
	}
}

// Term is an immutable node in the term store. The only mutable state
// reachable from a Term is the UVarBody a UVar/AppUVar node points to;
// everything else is shared and safe to alias freely.
type Term struct {
	Kind Kind

	// KConst: the symbol or bound-variable level itself.
	// KApp/KCons-as-App-head-position: unused (head lives in Head).
	Sym Const

	// KApp: head constant. Invariant: App always has len(Args) >= 1.
	Head Const

	// KApp, KAppUVar, KBuiltin argument vectors; KCons stores [car, cdr].
	Args []*Term

	// KLam: the abstraction body.
	Body *Term

	// KBuiltin: the registered built-in id (see builtins.go).
	BID int

	// KCData: the opaque host value.
	Data *CData

	// KUVar, KAppUVar: identity of the mutable cell and the depth at which
	// this occurrence was created (needed to lift the node correctly when
	// inspected at a different depth.
	UV   *UVarBody
	From int

	// KUVar: the η-expansion arity (number of implicit bound-variable
	// arguments this occurrence stands for).
	NArgs int
}

var (
	nilTerm     = &Term{Kind: KNil}
	discardTerm = &Term{Kind: KDiscard}
)

// MkConst builds a Const node: a global symbol if c is negative, a bound
// variable occurrence (de Bruijn level) if c is non-negative.
func MkConst(c Const) *Term { return &Term{Kind: KConst, Sym: c} }

// MkLam builds an abstraction over body.
func MkLam(body *Term) *Term { return &Term{Kind: KLam, Body: body} }

// MkApp builds an application of head to args. Panics if args is empty:
// App always carries at least one argument (invariant 1).
func MkApp(head Const, args ...*Term) *Term {
	if len(args) == 0 {
		panic("holog: anomaly: App built with zero arguments")
	}
	return &Term{Kind: KApp, Head: head, Args: args}
}

// MkCons builds a list cons cell.
func MkCons(car, cdr *Term) *Term { return &Term{Kind: KCons, Args: []*Term{car, cdr}} }

// Nil is the empty-list term.
func Nil() *Term { return nilTerm }

// Discard is the anonymous "don't care" pattern.
func Discard() *Term { return discardTerm }

// MkBuiltin builds a call to a registered foreign predicate, distinguished
// from ordinary application.
func MkBuiltin(bid int, args ...*Term) *Term {
	return &Term{Kind: KBuiltin, BID: bid, Args: args}
}

// MkCData wraps an opaque host value as a term leaf.
func MkCData(d *CData) *Term { return &Term{Kind: KCData, Data: d} }

// mkUVar builds a UVar occurrence over an existing cell, η-expanded up to
// nargs bound variables in scope, recorded as created at depth from.
func mkUVar(body *UVarBody, from, nargs int) *Term {
	return &Term{Kind: KUVar, UV: body, From: from, NArgs: nargs}
}

// mkAppUVar builds an AppUVar occurrence: a unification variable applied to
// arbitrary arguments (the general, non-pattern case).
func mkAppUVar(body *UVarBody, from int, args []*Term) *Term {
	if len(args) == 0 {
		return mkUVar(body, from, 0)
	}
	return &Term{Kind: KAppUVar, UV: body, From: from, Args: args}
}

// Car returns the head of a Cons node.
func (t *Term) Car() *Term { return t.Args[0] }

// Cdr returns the tail of a Cons node.
func (t *Term) Cdr() *Term { return t.Args[1] }

// IsUnboundUVar reports whether t is, without dereferencing, a UVar or
// AppUVar whose cell is currently unassigned.
func (t *Term) IsUnboundUVar() bool {
	return (t.Kind == KUVar || t.Kind == KAppUVar) && t.UV.State == Unbound
}

// String renders a debug representation of t. An assigned uvar is printed
// as its stored value as is: levels are not moved to the occurrence's depth
// and an applied uvar's arguments are dropped rather than β-reduced.
// Callers that want the current value should deref first.
func (t *Term) String() string {
	var b strings.Builder
	writeTerm(&b, nil, t)
	return b.String()
}

// writeTerm renders t, using st to print global constant names when
// available (a nil SymbolTable falls back to raw ids).
func writeTerm(b *strings.Builder, st *SymbolTable, t *Term) {
	if t == nil {
		b.WriteString("<nil>")
		return
	}
	switch t.Kind {
	case KConst:
		writeConst(b, st, t.Sym)
	case KLam:
		b.WriteString("\\")
		writeTerm(b, st, t.Body)
	case KApp:
		b.WriteString("(")
		writeConst(b, st, t.Head)
		for _, a := range t.Args {
			b.WriteString(" ")
			writeTerm(b, st, a)
		}
		b.WriteString(")")
	case KCons:
		b.WriteString("[")
		writeTerm(b, st, t.Args[0])
		b.WriteString("|")
		writeTerm(b, st, t.Args[1])
		b.WriteString("]")
	case KNil:
		b.WriteString("[]")
	case KBuiltin:
		fmt.Fprintf(b, "<builtin#%d", t.BID)
		for _, a := range t.Args {
			b.WriteString(" ")
			writeTerm(b, st, a)
		}
		b.WriteString(">")
	case KCData:
		b.WriteString(t.Data.String())
	case KUVar:
		if t.UV.State == Assigned {
			writeTerm(b, st, t.UV.Value)
			return
		}
		fmt.Fprintf(b, "_uv%d", t.UV.ID)
	case KAppUVar:
		if t.UV.State == Assigned {
			writeTerm(b, st, t.UV.Value)
			return
		}
		fmt.Fprintf(b, "(_uv%d", t.UV.ID)
		for _, a := range t.Args {
			b.WriteString(" ")
			writeTerm(b, st, a)
		}
		b.WriteString(")")
	case KDiscard:
		b.WriteString("_")
	default:
		b.WriteString("?")
	}
}

func writeConst(b *strings.Builder, st *SymbolTable, c Const) {
	if c.IsVar() {
		fmt.Fprintf(b, "v%d", c)
		return
	}
	if st != nil {
		b.WriteString(st.Name(c))
		return
	}
	fmt.Fprintf(b, "c%d", c)
}
