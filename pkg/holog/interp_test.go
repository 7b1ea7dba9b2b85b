package holog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_WiresStandardBuiltinsAndState(t *testing.T) {
	require := require.New(t)
	in, err := New(DefaultOptions(), nil)
	require.NoError(err)
	require.NotEmpty(in.ID)

	_, ok := in.Builtins.ByName("is", 2)
	require.True(ok)
	_, ok = in.Builtins.ByName("halt", 0)
	require.True(ok)
}

func TestNew_DocumentBuiltinsDoesNotRejectTheStandardLibrary(t *testing.T) {
	require := require.New(t)
	opts := DefaultOptions()
	opts.DocumentBuiltins = true
	_, err := New(opts, nil)
	require.NoError(err, "every standard built-in already carries a doc string")
}

func TestNew_SeedsStateComponents(t *testing.T) {
	require := require.New(t)
	comp := &StateComponent{Name: "counter", Init: func() interface{} { return 0 }}
	in, err := New(DefaultOptions(), []*StateComponent{comp})
	require.NoError(err)

	v, ok := in.State.Get("counter")
	require.True(ok)
	require.Equal(0, v)
}

func TestInterpreter_ValidateBuiltinDocsBatchesEveryViolation(t *testing.T) {
	require := require.New(t)
	opts := DefaultOptions()
	opts.DocumentBuiltins = true
	in, err := New(opts, nil)
	require.NoError(err)

	_, err = in.RegisterBuiltin("undocumented_one", 1, "", func(*Interpreter, int, []*Clause, []*Term) ([]*Term, error) {
		return nil, nil
	})
	require.NoError(err, "RegisterBuiltin itself never rejects a blank doc")
	_, err = in.RegisterBuiltin("undocumented_two", 1, "", func(*Interpreter, int, []*Clause, []*Term) ([]*Term, error) {
		return nil, nil
	})
	require.NoError(err)

	err = in.ValidateBuiltinDocs()
	require.Error(err)
	require.Contains(err.Error(), "undocumented_one/1")
	require.Contains(err.Error(), "undocumented_two/1")
}

func TestInterpreter_SolveInvokesMatchingReporterSink(t *testing.T) {
	require := require.New(t)
	in := newTestInterp(t, DefaultOptions())
	var reported *RegularError
	in.Reporters.Error = func(e *RegularError) { reported = e }

	x := in.NewQueryVar()
	_, err := in.RunQuery(x, func(*Interpreter) (bool, error) { return false, nil })
	require.Error(err)
	require.NotNil(reported, "Reporters.Error must fire for the RegularError raised on an uninstantiated goal")
}

func TestInterpreter_RegistryIsPerInstance(t *testing.T) {
	require := require.New(t)
	a, err := New(DefaultOptions(), nil)
	require.NoError(err)
	b, err := New(DefaultOptions(), nil)
	require.NoError(err)
	require.NotSame(a.Registry(), b.Registry())
}

func TestInterpreter_MaxStepsAbortsSearch(t *testing.T) {
	require := require.New(t)
	opts := DefaultOptions()
	opts.MaxSteps = 1
	in := newTestInterp(t, opts)
	st := in.Symbols
	p := st.Intern("p")
	q := st.Intern("q")

	// p :- q, q, q.  q.   With MaxSteps=1 the search must abort before
	// reaching a solution.
	require.NoError(in.Clauses.Insert(&Clause{Head: MkConst(q)}, InsertEnd, ""))
	require.NoError(in.Clauses.Insert(&Clause{
		Head: MkConst(p),
		Body: MkApp(CComma, MkConst(q), MkApp(CComma, MkConst(q), MkConst(q))),
	}, InsertEnd, ""))

	_, err := in.RunQuery(MkConst(p), func(*Interpreter) (bool, error) { return false, nil })
	require.ErrorIs(err, ErrNoMoreSteps)
}

func TestInterpreter_NewQueryVarAllocatesDistinctUnboundCells(t *testing.T) {
	require := require.New(t)
	in := newTestInterp(t, DefaultOptions())
	a := in.NewQueryVar()
	b := in.NewQueryVar()
	require.True(a.IsUnboundUVar())
	require.True(b.IsUnboundUVar())
	require.NotSame(a.UV, b.UV)
}

func TestRunQuery_NoSolutionReportsFalseNoError(t *testing.T) {
	require := require.New(t)
	in := newTestInterp(t, DefaultOptions())
	p := in.Symbols.Intern("undefined_predicate")

	found, err := in.RunQuery(MkConst(p), func(*Interpreter) (bool, error) { return false, nil })
	require.NoError(err)
	require.False(found)
}
