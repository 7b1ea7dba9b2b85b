package holog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndex_FiltersByRigidFirstArgument(t *testing.T) {
	require := require.New(t)
	db := NewClauseDB()
	st := NewSymbolTable()
	p := st.Intern("p")
	foo, bar := st.Intern("foo"), st.Intern("bar")

	require.NoError(db.Insert(&Clause{Name: "foo-clause", Head: MkApp(p, MkConst(foo))}, InsertEnd, ""))
	require.NoError(db.Insert(&Clause{Name: "bar-clause", Head: MkApp(p, MkConst(bar))}, InsertEnd, ""))

	it := db.Candidates(p, []*Term{MkConst(foo)}, 0)
	var got []string
	for {
		c, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, c.Name)
	}
	require.Equal([]string{"foo-clause"}, got)
}

func TestIndex_ClauseOwnVariableAlwaysMatches(t *testing.T) {
	require := require.New(t)
	db := NewClauseDB()
	st := NewSymbolTable()
	p := st.Intern("p")
	foo := st.Intern("foo")

	// p(X) :- true-ish fact with a clause-local variable as its first arg:
	// must survive the index regardless of the goal's first argument.
	require.NoError(db.Insert(&Clause{Name: "var-clause", NumVars: 1, Head: MkApp(p, MkConst(0))}, InsertEnd, ""))

	it := db.Candidates(p, []*Term{MkConst(foo)}, 0)
	c, ok := it.Next()
	require.True(ok)
	require.Equal("var-clause", c.Name)
	_, ok = it.Next()
	require.False(ok)
}

func TestIndex_UnboundGoalArgMatchesEverything(t *testing.T) {
	require := require.New(t)
	in := newTestInterp(t, DefaultOptions())
	db := NewClauseDB()
	p := in.Symbols.Intern("p")
	foo, bar := in.Symbols.Intern("foo"), in.Symbols.Intern("bar")

	require.NoError(db.Insert(&Clause{Name: "foo-clause", Head: MkApp(p, MkConst(foo))}, InsertEnd, ""))
	require.NoError(db.Insert(&Clause{Name: "bar-clause", Head: MkApp(p, MkConst(bar))}, InsertEnd, ""))

	x := in.NewQueryVar()
	it := db.Candidates(p, []*Term{x}, 0)
	n := 0
	for {
		_, ok := it.Next()
		if !ok {
			break
		}
		n++
	}
	require.Equal(2, n)
}

func TestIndex_ZeroArityPredicateHasNoFirstArg(t *testing.T) {
	require := require.New(t)
	require.Nil(firstArg(MkConst(-100)))
}
