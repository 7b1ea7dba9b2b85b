package holog

import "fmt"

// CDataType is a type descriptor for an opaque host value injected into
// terms, as a leaf-value idiom generalized to user-declared equality/hash.
type CDataType struct {
	Name    string
	PP      func(v interface{}) string
	Eq      func(a, b interface{}) bool
	Hash    func(v interface{}) uint64
	Hcons   bool // if true, injections are hash-consed (interned by Eq/Hash)
}

// CData is an opaque host value carried as a term leaf. Its equality is
// pure: it must never touch the unification or constraint store.
type CData struct {
	Type  *CDataType
	Value interface{}
}

// String renders the CData using its type's pretty-printer, falling back to
// fmt.Sprintf for CDataType values that omit one.
func (d *CData) String() string {
	if d.Type != nil && d.Type.PP != nil {
		return d.Type.PP(d.Value)
	}
	return fmt.Sprintf("%v", d.Value)
}

// Equal compares two CData values through their (shared) type's Eq
// function. Values of different types are never equal.
func (d *CData) Equal(other *CData) bool {
	if d.Type != other.Type {
		return false
	}
	if d.Type.Eq != nil {
		return d.Type.Eq(d.Value, other.Value)
	}
	return d.Value == other.Value
}

// cdataKey is the hash-consing key for a CData value.
type cdataKey struct {
	typ  *CDataType
	hash uint64
}

// CDataRegistry tracks registered CDataType descriptors and hash-conses
// values for types that request it. It is owned by an Interpreter, not a
// process-wide singleton.
type CDataRegistry struct {
	types map[string]*CDataType
	pool  map[cdataKey][]*CData
}

// NewCDataRegistry creates an empty registry with the built-in int/float/
// string/loc primitive descriptors pre-registered.
func NewCDataRegistry() *CDataRegistry {
	r := &CDataRegistry{
		types: make(map[string]*CDataType),
		pool:  make(map[cdataKey][]*CData),
	}
	r.Register(intType)
	r.Register(floatType)
	r.Register(stringType)
	r.Register(locType)
	return r
}

// Register installs a CDataType descriptor, keyed by name. Re-registering a
// name replaces the descriptor (used by tests and embedders iterating on a
// type while developing).
func (r *CDataRegistry) Register(t *CDataType) { r.types[t.Name] = t }

// Lookup returns a previously registered CDataType by name.
func (r *CDataRegistry) Lookup(name string) (*CDataType, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Inject wraps value as a CData of the given type, going through the
// hash-consing pool when the type requests it.
func (r *CDataRegistry) Inject(t *CDataType, value interface{}) *CData {
	if !t.Hcons || t.Hash == nil || t.Eq == nil {
		return &CData{Type: t, Value: value}
	}
	key := cdataKey{typ: t, hash: t.Hash(value)}
	for _, existing := range r.pool[key] {
		if t.Eq(existing.Value, value) {
			return existing
		}
	}
	d := &CData{Type: t, Value: value}
	r.pool[key] = append(r.pool[key], d)
	return d
}

// Built-in primitive CData types: integers, floats, strings, and the
// compiler-supplied source-location leaves alongside them.

var intType = &CDataType{
	Name: "int",
	PP:   func(v interface{}) string { return fmt.Sprintf("%d", v.(int64)) },
	Eq:   func(a, b interface{}) bool { return a.(int64) == b.(int64) },
	Hash: func(v interface{}) uint64 { return uint64(v.(int64)) },
}

var floatType = &CDataType{
	Name: "float",
	PP:   func(v interface{}) string { return fmt.Sprintf("%g", v.(float64)) },
	Eq:   func(a, b interface{}) bool { return a.(float64) == b.(float64) },
}

var stringType = &CDataType{
	Name:  "string",
	PP:    func(v interface{}) string { return v.(string) },
	Eq:    func(a, b interface{}) bool { return a.(string) == b.(string) },
	Hash:  func(v interface{}) uint64 { return fnv1a(v.(string)) },
	Hcons: true,
}

// Loc is the source-location value carried by compiler-injected location
// CData leaves (used for error reporting).
type Loc struct {
	File        string
	Line, Col   int
}

func (l Loc) String() string { return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col) }

var locType = &CDataType{
	Name: "loc",
	PP:   func(v interface{}) string { return v.(Loc).String() },
	Eq:   func(a, b interface{}) bool { return a.(Loc) == b.(Loc) },
}

// MkInt, MkFloat, and MkString are convenience constructors over the
// built-in CData types.
func MkInt(r *CDataRegistry, n int64) *Term    { return MkCData(r.Inject(intType, n)) }
func MkFloat(r *CDataRegistry, f float64) *Term { return MkCData(r.Inject(floatType, f)) }
func MkString(r *CDataRegistry, s string) *Term { return MkCData(r.Inject(stringType, s)) }

func fnv1a(s string) uint64 {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}
