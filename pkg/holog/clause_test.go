package holog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClauseDB_InsertAndLookup(t *testing.T) {
	require := require.New(t)
	db := NewClauseDB()
	st := NewSymbolTable()
	p := st.Intern("p")

	one, two := st.Intern("one"), st.Intern("two")
	c1 := &Clause{Name: "p1", Head: MkApp(p, MkConst(one))}
	require.NoError(db.Insert(c1, InsertEnd, ""))
	c2 := &Clause{Name: "p2", Head: MkApp(p, MkConst(two))}
	require.NoError(db.Insert(c2, InsertEnd, ""))

	list := db.Clauses(p)
	require.Len(list, 2)
	require.Equal("p1", list[0].Name)
	require.Equal("p2", list[1].Name)
}

func TestClauseDB_InsertStartPrepends(t *testing.T) {
	require := require.New(t)
	db := NewClauseDB()
	st := NewSymbolTable()
	p := st.Intern("p")

	require.NoError(db.Insert(&Clause{Name: "first", Head: MkConst(p)}, InsertEnd, ""))
	require.NoError(db.Insert(&Clause{Name: "new", Head: MkConst(p)}, InsertStart, ""))

	list := db.Clauses(p)
	require.Len(list, 2)
	require.Equal("new", list[0].Name)
}

func TestClauseDB_InsertBeforeAfterReplace(t *testing.T) {
	require := require.New(t)
	db := NewClauseDB()
	st := NewSymbolTable()
	p := st.Intern("p")

	require.NoError(db.Insert(&Clause{Name: "a", Head: MkConst(p)}, InsertEnd, ""))
	require.NoError(db.Insert(&Clause{Name: "c", Head: MkConst(p)}, InsertEnd, ""))

	require.NoError(db.Insert(&Clause{Name: "b", Head: MkConst(p)}, InsertAfter, "a"))
	names := clauseNames(db.Clauses(p))
	require.Equal([]string{"a", "b", "c"}, names)

	require.NoError(db.Insert(&Clause{Name: "z", Head: MkConst(p)}, InsertBefore, "a"))
	names = clauseNames(db.Clauses(p))
	require.Equal([]string{"z", "a", "b", "c"}, names)

	require.NoError(db.Insert(&Clause{Name: "b2", Head: MkConst(p)}, InsertReplace, "b"))
	names = clauseNames(db.Clauses(p))
	require.Equal([]string{"z", "a", "b2", "c"}, names)

	err := db.Insert(&Clause{Name: "x", Head: MkConst(p)}, InsertAfter, "nonexistent")
	require.Error(err)
}

func clauseNames(cs []*Clause) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

func TestClauseDB_Retract(t *testing.T) {
	require := require.New(t)
	db := NewClauseDB()
	st := NewSymbolTable()
	p := st.Intern("p")

	require.NoError(db.Insert(&Clause{Name: "only", Head: MkConst(p)}, InsertEnd, ""))
	ok := db.Retract(p, func(c *Clause) bool { return c.Name == "only" })
	require.True(ok)
	require.Empty(db.Clauses(p))

	ok = db.Retract(p, func(c *Clause) bool { return true })
	require.False(ok)
}

func TestClause_InstantiateFreshensVariablesPerCall(t *testing.T) {
	require := require.New(t)
	heap := NewUVarHeap()
	st := NewSymbolTable()
	p := st.Intern("p")

	c := &Clause{NumVars: 1, Head: MkApp(p, MkConst(0)), Body: MkApp(p, MkConst(0))}

	head1, body1 := c.Instantiate(heap, 0)
	head2, _ := c.Instantiate(heap, 0)

	require.Equal(KUVar, head1.Args[0].Kind)
	require.Equal(KUVar, head2.Args[0].Kind)
	require.NotSame(head1.Args[0].UV, head2.Args[0].UV, "each instantiation must get its own fresh variable")
	require.Same(head1.Args[0].UV, body1.Args[0].UV, "head and body share the clause's own variable occurrences")
}

func TestClause_InstantiateFact(t *testing.T) {
	require := require.New(t)
	heap := NewUVarHeap()
	st := NewSymbolTable()
	p := st.Intern("p")

	c := &Clause{Head: MkConst(p)}
	head, body := c.Instantiate(heap, 0)
	require.Nil(body)
	require.Equal(KConst, head.Kind)
	require.Equal(p, head.Sym)
}
