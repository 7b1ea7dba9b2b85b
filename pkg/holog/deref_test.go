package holog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMove_Identity(t *testing.T) {
	require := require.New(t)
	tm := MkConst(2)
	out, ok := move(3, 3, tm)
	require.True(ok)
	require.Same(tm, out)
}

func TestMove_ShiftsFreeLevelsOutward(t *testing.T) {
	require := require.New(t)
	// move(0, 2, ·) treats every level as free relative to a window starting
	// at 0, so Const(0) shifts outward by two to Const(2).
	out, ok := move(0, 2, MkConst(0))
	require.True(ok)
	require.Equal(KConst, out.Kind)
	require.Equal(Const(2), out.Sym)
}

func TestMove_ScopeExtrusionFails(t *testing.T) {
	require := require.New(t)
	// A level introduced inside the window [to, from) cannot survive a move
	// that drops that window.
	_, ok := move(3, 1, MkConst(2))
	require.False(ok)
}

func TestSubst_ReplacesFreeOccurrences(t *testing.T) {
	require := require.New(t)
	st := NewSymbolTable()
	f := st.Intern("f")

	body := MkApp(f, MkConst(0), MkConst(1))
	out := subst(body, Const(0), MkConst(5))
	require.Equal(Const(5), out.Args[0].Sym)
	require.Equal(Const(1), out.Args[1].Sym)
}

func TestApplyArgs_ContractsLambda(t *testing.T) {
	require := require.New(t)
	// (\x. x) applied to Const(9) at depth 0 reduces to Const(9).
	lam := MkLam(MkConst(0))
	out := applyArgs(0, lam, []*Term{MkConst(9)})
	require.Equal(KConst, out.Kind)
	require.Equal(Const(9), out.Sym)
}

func TestDeref_ChasesAssignedUVar(t *testing.T) {
	require := require.New(t)
	heap := NewUVarHeap()
	trail := NewTrail()

	body := heap.New(0)
	occ := mkUVar(body, 0, 0)
	require.True(occ.IsUnboundUVar())

	trail.AssignUVar(body, Nil())
	out := Deref(0, occ)
	require.Equal(KNil, out.Kind)
}

func TestDeref_UnboundReturnsSelf(t *testing.T) {
	require := require.New(t)
	heap := NewUVarHeap()
	body := heap.New(0)
	occ := mkUVar(body, 0, 0)

	out := Deref(0, occ)
	require.Same(occ, out)
}
