package holog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTerm_StringRendersConstAndApp(t *testing.T) {
	require := require.New(t)
	st := NewSymbolTable()
	f := st.Intern("f")

	app := MkApp(f, MkConst(0), MkConst(1))
	require.Contains(app.String(), "f")
}

func TestTerm_ConsAndNil(t *testing.T) {
	require := require.New(t)
	list := MkCons(MkConst(0), Nil())
	require.Equal(KCons, list.Kind)
	require.Equal(KNil, list.Cdr().Kind)
	require.Equal(KConst, list.Car().Kind)
}

func TestTerm_IsUnboundUVar(t *testing.T) {
	require := require.New(t)
	heap := NewUVarHeap()
	body := heap.New(0)
	occ := mkUVar(body, 0, 0)
	require.True(occ.IsUnboundUVar())

	body.State = Assigned
	body.Value = Nil()
	require.False(occ.IsUnboundUVar())
}

func TestKind_String(t *testing.T) {
	require := require.New(t)
	require.Equal("Const", KConst.String())
	require.Equal("App", KApp.String())
}
