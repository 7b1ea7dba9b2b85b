package holog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSymbolTable_InternReservedFirst(t *testing.T) {
	require := require.New(t)
	st := NewSymbolTable()

	eq, ok := st.Lookup("=")
	require.True(ok)
	require.Equal(CEq, eq)

	cut, ok := st.Lookup("!")
	require.True(ok)
	require.Equal(CCut, cut)
}

func TestSymbolTable_InternIsStable(t *testing.T) {
	require := require.New(t)
	st := NewSymbolTable()

	a := st.Intern("foo")
	b := st.Intern("foo")
	require.Equal(a, b)
	require.True(a < 0, "interned constants are negative ids")
}

func TestSymbolTable_NameRoundTrips(t *testing.T) {
	require := require.New(t)
	st := NewSymbolTable()

	id := st.Intern("append")
	require.Equal("append", st.Name(id))
}

func TestConst_IsVar(t *testing.T) {
	require := require.New(t)
	require.True(Const(0).IsVar())
	require.True(Const(5).IsVar())
	require.False(CEq.IsVar())
	require.False(CCut.IsVar())
}
