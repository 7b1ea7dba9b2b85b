package holog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// loadAppend installs the classic append/3 relation: append([],L,L) and
// append([H|T],L,[H|R]) :- append(T,L,R).
func loadAppend(t *testing.T, in *Interpreter) Const {
	t.Helper()
	appendSym := in.Symbols.Intern("append")

	base := &Clause{Name: "append/base", NumVars: 1, Head: MkApp(appendSym, Nil(), MkConst(0), MkConst(0))}
	require.NoError(t, in.Clauses.Insert(base, InsertEnd, ""))

	rec := &Clause{
		Name:    "append/rec",
		NumVars: 4,
		Head: MkApp(appendSym,
			MkCons(MkConst(0), MkConst(1)),
			MkConst(2),
			MkCons(MkConst(0), MkConst(3))),
		Body: MkApp(appendSym, MkConst(1), MkConst(2), MkConst(3)),
	}
	require.NoError(t, in.Clauses.Insert(rec, InsertEnd, ""))
	return appendSym
}

func intList(in *Interpreter, vals ...int64) *Term {
	out := Nil()
	for i := len(vals) - 1; i >= 0; i-- {
		out = MkCons(MkInt(in.CData, vals[i]), out)
	}
	return out
}

// append [1,2] [3] X ⇒ single success, X=[1,2,3].
func TestSolver_Scenario1_Append(t *testing.T) {
	require := require.New(t)
	in := newTestInterp(t, DefaultOptions())
	appendSym := loadAppend(t, in)

	x := in.NewQueryVar()
	goal := MkApp(appendSym, intList(in, 1, 2), intList(in, 3), x)

	n := 0
	found, err := in.RunQuery(goal, func(in *Interpreter) (bool, error) {
		n++
		// X's binding is only live inside the callback: once the search
		// runs to exhaustion every assignment has been undone.
		result := Deref(0, x)
		require.Equal(KCons, result.Kind)
		// [1,2,3]
		require.Equal(int64(1), Deref(0, result.Car()).Data.Value)
		result = Deref(0, result.Cdr())
		require.Equal(int64(2), Deref(0, result.Car()).Data.Value)
		result = Deref(0, result.Cdr())
		require.Equal(int64(3), Deref(0, result.Car()).Data.Value)
		require.Equal(KNil, Deref(0, result.Cdr()).Kind)
		return true, nil // keep enumerating, to confirm exactly one solution exists
	})
	require.NoError(err)
	require.True(found)
	require.Equal(1, n)
}

// pi x\ pi y\ (f x y = f y x) ⇒ fails (distinct bound constants).
func TestSolver_Scenario2_PiUnificationFails(t *testing.T) {
	require := require.New(t)
	in := newTestInterp(t, DefaultOptions())
	f := in.Symbols.Intern("f")

	inner := MkApp(CEq, MkApp(f, MkConst(0), MkConst(1)), MkApp(f, MkConst(1), MkConst(0)))
	goal := MkApp(CPi, MkLam(MkApp(CPi, MkLam(inner))))

	found, err := in.RunQuery(goal, func(in *Interpreter) (bool, error) { return false, nil })
	require.NoError(err)
	require.False(found)
}

// sigma X\ (X=3, Y is X+4) ⇒ success, Y=7.
func TestSolver_Scenario3_SigmaAndIs(t *testing.T) {
	require := require.New(t)
	in := newTestInterp(t, DefaultOptions())
	plus := in.Symbols.Intern("+")
	isBID, ok := in.Builtins.ByName("is", 2)
	require.True(ok)

	y := in.NewQueryVar()
	eq := MkApp(CEq, MkConst(0), MkInt(in.CData, 3))
	isGoal := MkBuiltin(isBID, y, MkApp(plus, MkConst(0), MkInt(in.CData, 4)))
	body := MkApp(CComma, eq, isGoal)
	goal := MkApp(CSigma, MkLam(body))

	found, err := in.RunQuery(goal, func(in *Interpreter) (bool, error) { return false, nil })
	require.NoError(err)
	require.True(found)
	require.Equal(int64(7), Deref(0, y).Data.Value)
}

// X = (x\ x), Y = X 5 ⇒ success, Y=5 (β-reduction through an
// assigned uvar).
func TestSolver_Scenario4_BetaThroughUVar(t *testing.T) {
	require := require.New(t)
	in := newTestInterp(t, DefaultOptions())

	x := in.NewQueryVar()
	y := in.NewQueryVar()

	identity := MkLam(MkConst(0))
	eq1 := MkApp(CEq, x, identity)
	xApplied5 := mkAppUVar(x.UV, x.From, []*Term{MkInt(in.CData, 5)})
	eq2 := MkApp(CEq, y, xApplied5)
	goal := MkApp(CComma, eq1, eq2)

	found, err := in.RunQuery(goal, func(in *Interpreter) (bool, error) { return false, nil })
	require.NoError(err)
	require.True(found)
	require.Equal(int64(5), Deref(0, y).Data.Value)
}

// Cut semantics: (a, !, X=1) ; X=2 never
// yields a solution via the second disjunct once the first has succeeded.
func TestSolver_CutPreventsSecondDisjunct(t *testing.T) {
	require := require.New(t)
	in := newTestInterp(t, DefaultOptions())
	a := in.Symbols.Intern("a")
	require.NoError(in.Clauses.Insert(&Clause{Name: "a/fact", Head: MkConst(a)}, InsertEnd, ""))

	x := in.NewQueryVar()
	left := MkApp(CComma, MkApp(CComma, MkConst(a), MkConst(CCut)), MkApp(CEq, x, MkInt(in.CData, 1)))
	right := MkApp(CEq, x, MkInt(in.CData, 2))
	goal := MkApp(COr, left, right)

	var seen []int64
	found, err := in.RunQuery(goal, func(in *Interpreter) (bool, error) {
		seen = append(seen, Deref(0, x).Data.Value.(int64))
		return true, nil // keep enumerating: cut must be what stops this, not our own early exit
	})
	require.NoError(err)
	require.True(found)
	require.Equal([]int64{1}, seen)
}

// A => hypothesis must stay visible through the whole dynamic extent of
// solving the guarded goal, including nested calls made from inside a
// matched clause's body: global clause q :- p. plus query (p => q) can
// only succeed if solving q's body still sees p as a hypothesis.
func TestSolver_ImplicationHypothesisVisibleInNestedCall(t *testing.T) {
	require := require.New(t)
	in := newTestInterp(t, DefaultOptions())
	p := in.Symbols.Intern("p")
	q := in.Symbols.Intern("q")
	require.NoError(in.Clauses.Insert(&Clause{Name: "q/rule", Head: MkConst(q), Body: MkConst(p)}, InsertEnd, ""))

	goal := MkApp(CImpl, MkConst(p), MkConst(q))
	found := runOne(t, in, goal)
	require.True(found)
}

// Delay-outside-fragment: an equation outside the pattern fragment is
// suspended rather than failing when DelayOutsideFragment is enabled, and
// the goal still succeeds with the suspension recorded in the constraint
// store.
func TestSolver_DelayOutsideFragment(t *testing.T) {
	require := require.New(t)
	opts := DefaultOptions()
	opts.DelayOutsideFragment = true
	in := newTestInterp(t, opts)
	g := in.Symbols.Intern("g")

	f := in.NewQueryVar()
	nonPattern := mkAppUVar(f.UV, f.From, []*Term{MkConst(g)})
	eq := MkApp(CEq, nonPattern, Nil())

	found, err := in.RunQuery(eq, func(in *Interpreter) (bool, error) { return false, nil })
	require.NoError(err)
	require.True(found)
	require.Equal(1, in.Constraints.Len())
}
