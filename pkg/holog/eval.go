package holog

import "math"

// This file implements the arithmetic/comparison evaluator behind is/2 and
// the numeric comparison built-ins, kept deliberately separate from the
// predicate database: evaluable functors (+, -, *, ...) live in their own
// symbol space and are never resolved against ClauseDB, mirroring a split
// between reduction rules and the relation database proper.

// numKind distinguishes the two CData primitive numeric types the
// evaluator understands.
type numKind uint8

const (
	numInt numKind = iota
	numFloat
)

// num is the evaluator's internal numeric value: exactly one of the two
// fields is meaningful, selected by kind.
type num struct {
	kind numKind
	i    int64
	f    float64
}

func (n num) asFloat() float64 {
	if n.kind == numFloat {
		return n.f
	}
	return float64(n.i)
}

func (n num) toTerm(r *CDataRegistry) *Term {
	if n.kind == numFloat {
		return MkFloat(r, n.f)
	}
	return MkInt(r, n.i)
}

// evalFn computes a functor's result from its already-evaluated operands.
type evalFn func(args []num) (num, error)

// evalKey distinguishes evaluable functors by symbol AND arity: "-" is both
// unary negation and binary subtraction, and the two must not collide.
type evalKey struct {
	sym   Const
	arity int
}

// Evaluator holds the registry of evaluable functors, keyed by the same
// Const ids the symbol table interns ordinary functors under plus arity —
// is/2 dispatches the right-hand side through this table instead of the
// predicate database.
type Evaluator struct {
	fns map[evalKey]evalFn
}

// NewEvaluator creates an Evaluator with the standard arithmetic
// functors pre-registered.
func NewEvaluator(st *SymbolTable) *Evaluator {
	e := &Evaluator{fns: make(map[evalKey]evalFn)}
	reg := func(name string, arity int, fn evalFn) {
		e.fns[evalKey{sym: st.Intern(name), arity: arity}] = fn
	}
	reg("+", 2, func(a []num) (num, error) { return arith(a[0], a[1], func(x, y int64) int64 { return x + y }, func(x, y float64) float64 { return x + y }) })
	reg("-", 2, func(a []num) (num, error) { return arith(a[0], a[1], func(x, y int64) int64 { return x - y }, func(x, y float64) float64 { return x - y }) })
	reg("*", 2, func(a []num) (num, error) { return arith(a[0], a[1], func(x, y int64) int64 { return x * y }, func(x, y float64) float64 { return x * y }) })
	reg("-", 1, func(a []num) (num, error) {
		if a[0].kind == numFloat {
			return num{kind: numFloat, f: -a[0].f}, nil
		}
		return num{kind: numInt, i: -a[0].i}, nil
	})
	reg("abs", 1, func(a []num) (num, error) {
		if a[0].kind == numFloat {
			return num{kind: numFloat, f: math.Abs(a[0].f)}, nil
		}
		if a[0].i < 0 {
			return num{kind: numInt, i: -a[0].i}, nil
		}
		return a[0], nil
	})
	reg("/", 2, func(a []num) (num, error) {
		if a[0].kind == numInt && a[1].kind == numInt {
			if a[1].i == 0 {
				return num{}, NewRegularError("division by zero")
			}
			if a[0].i%a[1].i == 0 {
				return num{kind: numInt, i: a[0].i / a[1].i}, nil
			}
			return num{kind: numFloat, f: float64(a[0].i) / float64(a[1].i)}, nil
		}
		d := a[1].asFloat()
		if d == 0 {
			return num{}, NewRegularError("division by zero")
		}
		return num{kind: numFloat, f: a[0].asFloat() / d}, nil
	})
	reg("mod", 2, func(a []num) (num, error) {
		if a[0].kind != numInt || a[1].kind != numInt {
			return num{}, NewTypeError("mod/2", nil, "mod requires integer operands")
		}
		if a[1].i == 0 {
			return num{}, NewRegularError("mod by zero")
		}
		m := a[0].i % a[1].i
		if (m < 0) != (a[1].i < 0) && m != 0 {
			m += a[1].i
		}
		return num{kind: numInt, i: m}, nil
	})
	reg("min", 2, func(a []num) (num, error) {
		if a[0].asFloat() <= a[1].asFloat() {
			return a[0], nil
		}
		return a[1], nil
	})
	reg("max", 2, func(a []num) (num, error) {
		if a[0].asFloat() >= a[1].asFloat() {
			return a[0], nil
		}
		return a[1], nil
	})
	reg("float", 1, func(a []num) (num, error) { return num{kind: numFloat, f: a[0].asFloat()}, nil })
	reg("truncate", 1, func(a []num) (num, error) { return num{kind: numInt, i: int64(a[0].asFloat())}, nil })
	return e
}

func arith(a, b num, fi func(x, y int64) int64, ff func(x, y float64) float64) (num, error) {
	if a.kind == numInt && b.kind == numInt {
		return num{kind: numInt, i: fi(a.i, b.i)}, nil
	}
	return num{kind: numFloat, f: ff(a.asFloat(), b.asFloat())}, nil
}

// Eval reduces an arithmetic expression term to a numeric CData leaf,
// backing is/2. It fails with a RegularError on an insufficiently-
// instantiated (still-flex) subterm, and a TypeError on any non-numeric,
// non-evaluable-functor structure.
func (in *Interpreter) Eval(depth int, t *Term) (*Term, error) {
	n, err := in.evalNum(depth, t)
	if err != nil {
		return nil, err
	}
	return n.toTerm(in.CData), nil
}

func (in *Interpreter) evalNum(depth int, t *Term) (num, error) {
	d := Deref(depth, t)
	switch d.Kind {
	case KCData:
		switch d.Data.Type {
		case intType:
			return num{kind: numInt, i: d.Data.Value.(int64)}, nil
		case floatType:
			return num{kind: numFloat, f: d.Data.Value.(float64)}, nil
		default:
			return num{}, NewTypeError("is/2", nil, "not a number: %s", d.Data.Type.Name)
		}
	case KUVar, KAppUVar:
		return num{}, NewRegularError("arithmetic expression is not sufficiently instantiated")
	case KConst, KApp:
		functor := d.Sym
		var args []*Term
		if d.Kind == KApp {
			functor = d.Head
			args = d.Args
		}
		fn, ok := in.Evaluator.fns[evalKey{sym: functor, arity: len(args)}]
		if !ok {
			return num{}, NewTypeError("is/2", nil, "not an evaluable functor: %s/%d", in.Symbols.Name(functor), len(args))
		}
		vals := make([]num, len(args))
		for i, a := range args {
			v, err := in.evalNum(depth, a)
			if err != nil {
				return num{}, err
			}
			vals[i] = v
		}
		return fn(vals)
	default:
		return num{}, NewTypeError("is/2", nil, "not an arithmetic expression: %s", d.Kind)
	}
}

// CompareNum evaluates both sides and reports their numeric ordering
// (-1, 0, 1), backing </2, =</2, >/2, >=/2, =:=/2, =\=/2.
func (in *Interpreter) CompareNum(depth int, lhs, rhs *Term) (int, error) {
	a, err := in.evalNum(depth, lhs)
	if err != nil {
		return 0, err
	}
	b, err := in.evalNum(depth, rhs)
	if err != nil {
		return 0, err
	}
	af, bf := a.asFloat(), b.asFloat()
	switch {
	case af < bf:
		return -1, nil
	case af > bf:
		return 1, nil
	default:
		return 0, nil
	}
}
