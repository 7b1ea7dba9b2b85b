package holog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstraintStore_WakeOnRemovesBlockedSuspensions(t *testing.T) {
	require := require.New(t)
	trail := NewTrail()
	cs := NewConstraintStore()
	heap := NewUVarHeap()
	blocker := heap.New(0)
	other := heap.New(0)

	goal := MkConst(-1)
	s1 := cs.NewSuspension(goal, 0, nil, []*UVarBody{blocker})
	s2 := cs.NewSuspension(goal, 0, nil, []*UVarBody{other})
	trail.AddSuspension(cs, s1)
	trail.AddSuspension(cs, s2)

	woken := cs.WakeOn(trail, blocker)
	require.Len(woken, 1)
	require.Same(s1, woken[0])
	require.Equal(1, cs.Len(), "only the suspension blocked on the assigned uvar is removed")
}

func TestConstraintStore_WakeOnNoMatchesLeavesStoreIntact(t *testing.T) {
	require := require.New(t)
	trail := NewTrail()
	cs := NewConstraintStore()
	heap := NewUVarHeap()
	blocker := heap.New(0)
	unrelated := heap.New(0)

	s := cs.NewSuspension(MkConst(-1), 0, nil, []*UVarBody{blocker})
	trail.AddSuspension(cs, s)

	woken := cs.WakeOn(trail, unrelated)
	require.Empty(woken)
	require.Equal(1, cs.Len())
}

func TestConstraintStore_SnapshotIsACopy(t *testing.T) {
	require := require.New(t)
	trail := NewTrail()
	cs := NewConstraintStore()
	s := cs.NewSuspension(MkConst(-1), 0, nil, nil)
	trail.AddSuspension(cs, s)

	snap := cs.Snapshot()
	require.Len(snap, 1)
	snap[0] = nil
	require.NotNil(cs.Snapshot()[0], "mutating a snapshot must not affect the live store")
}

func TestCustomConstraint_DeclareAndCheck(t *testing.T) {
	require := require.New(t)
	trail := NewTrail()
	sm := NewStateMap(nil)

	calls := 0
	cc := &CustomConstraint{
		ID: "always-ok",
		Check: func(i *Interpreter) error {
			calls++
			return nil
		},
	}
	DeclareConstraint(sm, trail, cc)
	require.Len(CustomConstraints(sm), 1)

	in := &Interpreter{State: sm}
	require.NoError(CheckCustomConstraints(in))
	require.Equal(1, calls)
}

func TestCustomConstraint_DeclareIsTrailed(t *testing.T) {
	require := require.New(t)
	trail := NewTrail()
	sm := NewStateMap(nil)

	mark := trail.Mark()
	DeclareConstraint(sm, trail, &CustomConstraint{ID: "c1"})
	require.Len(CustomConstraints(sm), 1)

	trail.UndoTo(mark)
	require.Empty(CustomConstraints(sm))
}

func TestCustomConstraint_CheckReportsFirstViolation(t *testing.T) {
	require := require.New(t)
	trail := NewTrail()
	sm := NewStateMap(nil)

	DeclareConstraint(sm, trail, &CustomConstraint{ID: "bad", Check: func(i *Interpreter) error {
		return NewRegularError("violated")
	}})

	in := &Interpreter{State: sm}
	err := CheckCustomConstraints(in)
	require.Error(err)
}
