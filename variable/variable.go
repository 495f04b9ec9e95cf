// Package variable defines the contract every state variable implements so
// that generic graph code can insert, deduplicate, copy and hand variables to
// an optimization engine without knowing their concrete shape.
//
// A variable owns a fixed-size block of contiguous float64 values. The block
// is allocated at construction and never resized or replaced. An engine
// borrows it through Data, adjusts it in place, and must stop using the slice
// before the variable is discarded.
//
// Concrete kinds embed Storage for the block and supply their own identity,
// type name, Clone and manifold:
//
//	type Point2D struct {
//	    variable.Storage
//	    id identity.Key
//	}
//
//	func (p *Point2D) Type() string             { return "fuse.Point2D" }
//	func (p *Point2D) ID() identity.Key         { return p.id }
//	func (p *Point2D) Manifold() manifold.Manifold { return nil }
//	func (p *Point2D) Clone() variable.Variable {
//	    return &Point2D{Storage: p.CloneStorage(), id: p.id}
//	}
//
// # Concurrency
//
// Variables are not synchronized. At most one goroutine may write through
// Data at a time, and no reader may observe Values while a write is in flight.
// Identity keys and type names are immutable and safe to share.
package variable

import (
	"io"
	"reflect"
	"strings"

	"github.com/tailored-agentic-units/fuse/identity"
	"github.com/tailored-agentic-units/fuse/manifold"
)

// Variable is a named, identity-bearing block of scalar unknowns.
type Variable interface {
	// Type returns the name of the concrete kind. It is the same for every
	// instance of a kind and distinct between kinds.
	Type() string

	// ID returns the identity key derived from the variable's defining
	// metadata. It never depends on the stored values.
	ID() identity.Key

	// Size returns the number of stored scalars, at least one.
	Size() int

	// Values returns a read-only view of the stored scalars.
	Values() View

	// Data returns the stored scalars for in-place mutation. The slice has
	// exactly Size elements and capacity, and is only valid while the
	// variable is alive.
	Data() []float64

	// Print writes a human-readable description to w.
	Print(w io.Writer)

	// Clone returns an independent deep copy of the same concrete kind, with
	// the same identity and values and no shared storage.
	Clone() Variable

	// Manifold returns the update strategy of the kind, or nil when every
	// dimension updates additively. The result depends on the kind only.
	Manifold() manifold.Manifold
}

// Describer is implemented by variables that can report the metadata their
// identity is derived from. Values must be JSON-compatible scalars, lists or
// maps so that they survive transport encodings.
type Describer interface {
	Attributes() map[string]any
}

// Sprint renders v.Print into a string.
func Sprint(v Variable) string {
	var b strings.Builder
	v.Print(&b)
	return b.String()
}

// IsNil reports whether v is nil or an interface holding a nil pointer, map,
// slice or func of a concrete kind.
func IsNil(v Variable) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// SameKind reports whether a and b are instances of the same concrete kind.
func SameKind(a, b Variable) bool {
	return a.Type() == b.Type()
}
