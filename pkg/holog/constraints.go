package holog

// Suspension is a goal the solver could not yet dispatch, parked in the
// constraint store until one of its blockers is assigned.
type Suspension struct {
	ID    int64
	Goal  *Term
	Depth int

	// Hyps is the local program layer (clauses loaded by =>) active when
	// the goal was suspended, so resumption sees the same hypotheses.
	Hyps []*Clause

	// Blockers is the set of uvar bodies this suspension is parked on.
	Blockers []*UVarBody
}

// blocks reports whether uv is among s's blockers.
func (s *Suspension) blocks(uv *UVarBody) bool {
	for _, b := range s.Blockers {
		if b == uv {
			return true
		}
	}
	return false
}

// ConstraintStore holds suspended goals blocked on unbound uvars. It is
// itself trailed: insertions and removals are undone on backtrack, via
// Trail.AddSuspension/RemoveSuspension rather than any method here
// mutating state directly outside those calls.
type ConstraintStore struct {
	suspensions []*Suspension
	nextID      int64
}

// NewConstraintStore creates an empty store.
func NewConstraintStore() *ConstraintStore { return &ConstraintStore{} }

// NewSuspension allocates a Suspension with a fresh id.
func (cs *ConstraintStore) NewSuspension(goal *Term, depth int, hyps []*Clause, blockers []*UVarBody) *Suspension {
	cs.nextID++
	return &Suspension{ID: cs.nextID, Goal: goal, Depth: depth, Hyps: hyps, Blockers: blockers}
}

// removeSuspension deletes s from the store by identity. It is the raw
// mutation the Trail uses for both a direct removal and the undo of a
// previous insertion; callers needing backtrackability must go through the
// Trail, never call this directly.
func (cs *ConstraintStore) removeSuspension(s *Suspension) {
	for i, cur := range cs.suspensions {
		if cur == s {
			cs.suspensions = append(cs.suspensions[:i], cs.suspensions[i+1:]...)
			return
		}
	}
}

// WakeOn removes (via the trail, so the removal undoes on backtrack) and
// returns every suspension blocked on uv. The solver re-enqueues the
// returned suspensions as goals once uv is assigned.
func (cs *ConstraintStore) WakeOn(trail *Trail, uv *UVarBody) []*Suspension {
	var woken []*Suspension
	// Snapshot first: removeSuspension mutates cs.suspensions in place, and
	// ranging over a slice while splicing out of it under the same index
	// would skip entries.
	candidates := append([]*Suspension(nil), cs.suspensions...)
	for _, s := range candidates {
		if s.blocks(uv) {
			trail.RemoveSuspension(cs, s)
			woken = append(woken, s)
		}
	}
	return woken
}

// Snapshot returns the live suspensions, for publication alongside a
// solution as suspended goals with their contexts.
func (cs *ConstraintStore) Snapshot() []*Suspension {
	return append([]*Suspension(nil), cs.suspensions...)
}

// Len reports how many goals are currently suspended.
func (cs *ConstraintStore) Len() int { return len(cs.suspensions) }

// CustomConstraint is a host-declared constraint promoted via the
// declare_constraint built-in. Unlike a Suspension, a custom constraint is
// not re-dispatched as a goal on wake-up; instead Check is run against
// every candidate solution before RunQuery reports it, and a failing Check
// rejects that candidate. The declaration is trailed, so backtracking past
// the declare_constraint call removes the constraint again.
type CustomConstraint struct {
	ID    string
	Check func(i *Interpreter) error // non-nil error => constraint violated
	Vars  []*UVarBody
}

const customConstraintsComponent = "$custom_constraints"

// customConstraintsInit is the Init function registered for the
// customConstraintsComponent state component.
func customConstraintsInit() interface{} { return []*CustomConstraint(nil) }

// DeclareConstraint promotes cc into the state-component-backed custom
// constraint set. The update goes through Trail.UpdateState, so an
// embedder's declare_constraint built-in gets backtracking for free.
func DeclareConstraint(sm *StateMap, trail *Trail, cc *CustomConstraint) {
	cur, _ := sm.Get(customConstraintsComponent)
	list, _ := cur.([]*CustomConstraint)
	next := append(append([]*CustomConstraint(nil), list...), cc)
	trail.UpdateState(sm, customConstraintsComponent, next)
}

// CustomConstraints returns the currently live custom constraints.
func CustomConstraints(sm *StateMap) []*CustomConstraint {
	cur, _ := sm.Get(customConstraintsComponent)
	list, _ := cur.([]*CustomConstraint)
	return list
}

// CheckCustomConstraints re-runs every live custom constraint's Check and
// returns the first violation encountered, or nil.
func CheckCustomConstraints(i *Interpreter) error {
	for _, cc := range CustomConstraints(i.State) {
		if err := cc.Check(i); err != nil {
			return err
		}
	}
	return nil
}
