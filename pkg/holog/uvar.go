package holog

// UVarState is the state of a unification-variable cell: exactly one of
// Unbound or Assigned at any time.
type UVarState uint8

const (
	Unbound UVarState = iota
	Assigned
)

// UVarBody is the mutable cell backing a unification variable. Identity is
// pointer identity: two UVar/AppUVar term nodes alias the same logic
// variable iff their UV fields point at the same UVarBody.
//
// Which suspended goals block on a given cell is tracked by the
// ConstraintStore, not here: the store scans its (typically small)
// suspension list on every assignment to decide what to wake
// which keeps the undo story for "a suspension blocks on
// this cell" entirely inside the store's own trailed insert/remove.
type UVarBody struct {
	ID    int64
	State UVarState
	Value *Term // valid only when State == Assigned
	From  int   // binding depth at allocation
	Name  string
}

// UVarHeap allocates uvar bodies. Allocation is the only operation here;
// mutation goes exclusively through the Trail so that every assignment is
// paired with exactly one undo record. The heap is owned by a single
// Interpreter/Solver instance, never shared across concurrent solves.
type UVarHeap struct {
	nextID int64
}

// NewUVarHeap creates an empty heap.
func NewUVarHeap() *UVarHeap { return &UVarHeap{} }

// New allocates a fresh, unbound uvar body at binding depth from.
func (h *UVarHeap) New(from int) *UVarBody {
	h.nextID++
	return &UVarBody{ID: h.nextID, State: Unbound, From: from}
}

// NewNamed allocates a fresh uvar body carrying a debug name (typically the
// user-visible variable name from the compiled Query).
func (h *UVarHeap) NewNamed(from int, name string) *UVarBody {
	b := h.New(from)
	b.Name = name
	return b
}

// Count returns the number of uvar bodies allocated so far.
func (h *UVarHeap) Count() int64 { return h.nextID }
