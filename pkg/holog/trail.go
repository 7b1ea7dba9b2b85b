package holog

// entryKind tags what a trail entry knows how to undo.
type entryKind uint8

const (
	entryUVarAssign entryKind = iota
	entrySuspensionAdd
	entrySuspensionRemove
	entryStateUpdate
)

// trailEntry is one undo record. Only the fields relevant to Kind are
// populated; a single slice of small undo records, popped in reverse on
// backtrack, generalized
// from "replace a variable's domain" to every kind of mutation the solver
// performs between choice points.
type trailEntry struct {
	kind entryKind

	// entryUVarAssign
	uv         *UVarBody
	priorState UVarState
	priorValue *Term

	// entrySuspensionAdd / entrySuspensionRemove
	store *ConstraintStore
	susp  *Suspension

	// entryStateUpdate
	stateMap   *StateMap
	component  string
	priorValue2 interface{}
	priorHad   bool
}

// Trail is the single mechanism by which the solver achieves backtracking:
// every mutation of a uvar cell, constraint-store
// insertion/removal, or state-component update is paired with exactly one
// entry here, between the choice point that is current when the mutation
// happens and the next one installed.
type Trail struct {
	entries []trailEntry
}

// NewTrail creates an empty trail.
func NewTrail() *Trail { return &Trail{} }

// Mark records the current trail length. Passed back to UndoTo to roll
// back every mutation recorded since.
func (t *Trail) Mark() int { return len(t.entries) }

// Len reports the current trail length (used for diagnostics/metrics).
func (t *Trail) Len() int { return len(t.entries) }

// AssignUVar binds uv to value, trailing the prior cell state so it can be
// restored on backtrack. This is the only path by which solving code may
// mutate a UVarBody.
func (t *Trail) AssignUVar(uv *UVarBody, value *Term) {
	t.entries = append(t.entries, trailEntry{
		kind:       entryUVarAssign,
		uv:         uv,
		priorState: uv.State,
		priorValue: uv.Value,
	})
	uv.State = Assigned
	uv.Value = value
}

// AddSuspension inserts susp into store and trails the insertion.
func (t *Trail) AddSuspension(store *ConstraintStore, susp *Suspension) {
	store.suspensions = append(store.suspensions, susp)
	t.entries = append(t.entries, trailEntry{kind: entrySuspensionAdd, store: store, susp: susp})
}

// RemoveSuspension removes susp from store (it has been woken and
// re-enqueued as a goal) and trails the removal.
func (t *Trail) RemoveSuspension(store *ConstraintStore, susp *Suspension) {
	store.removeSuspension(susp)
	t.entries = append(t.entries, trailEntry{kind: entrySuspensionRemove, store: store, susp: susp})
}

// UpdateState functionally updates a named state component and trails the
// prior value so a backtrack restores it.
func (t *Trail) UpdateState(sm *StateMap, component string, value interface{}) {
	prior, had := sm.m[component]
	t.entries = append(t.entries, trailEntry{
		kind:        entryStateUpdate,
		stateMap:    sm,
		component:   component,
		priorValue2: prior,
		priorHad:    had,
	})
	sm.m[component] = value
}

// UndoTo pops trail entries down to mark, restoring each mutated cell in
// reverse chronological order.
func (t *Trail) UndoTo(mark int) {
	for i := len(t.entries) - 1; i >= mark; i-- {
		e := t.entries[i]
		switch e.kind {
		case entryUVarAssign:
			e.uv.State = e.priorState
			e.uv.Value = e.priorValue
		case entrySuspensionAdd:
			e.store.removeSuspension(e.susp)
		case entrySuspensionRemove:
			e.store.suspensions = append(e.store.suspensions, e.susp)
		case entryStateUpdate:
			if e.priorHad {
				e.stateMap.m[e.component] = e.priorValue2
			} else {
				delete(e.stateMap.m, e.component)
			}
		}
	}
	t.entries = t.entries[:mark]
}
