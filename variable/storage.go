package variable

import (
	"iter"
	"slices"
)

// Storage owns the contiguous scalar block of a variable. Embed it in
// concrete kinds to provide Size, Values and Data.
type Storage struct {
	data []float64
}

// NewStorage allocates storage holding a copy of values. Storage is never
// empty; calling NewStorage without values panics.
func NewStorage(values ...float64) Storage {
	if len(values) == 0 {
		panic("variable: storage must hold at least one value")
	}
	return Storage{data: slices.Clone(values)}
}

// MakeStorage allocates zeroed storage for n scalars. n must be positive.
func MakeStorage(n int) Storage {
	if n < 1 {
		panic("variable: storage must hold at least one value")
	}
	return Storage{data: make([]float64, n)}
}

func (s *Storage) Size() int {
	return len(s.data)
}

func (s *Storage) Values() View {
	return View{data: s.data}
}

// Data returns the block with its capacity clipped to its length, so an
// append by the borrower reallocates instead of writing past the block.
func (s *Storage) Data() []float64 {
	return s.data[:len(s.data):len(s.data)]
}

// CloneStorage returns storage with the same values and no shared memory.
func (s *Storage) CloneStorage() Storage {
	return Storage{data: slices.Clone(s.data)}
}

// View is a read-only window onto a variable's stored scalars. A View shares
// memory with its variable, so writes through Data are visible to it.
type View struct {
	data []float64
}

// Len returns the number of scalars in the view.
func (v View) Len() int {
	return len(v.data)
}

// At returns the i-th scalar.
func (v View) At(i int) float64 {
	return v.data[i]
}

// Copy returns the scalars in a newly allocated slice.
func (v View) Copy() []float64 {
	return slices.Clone(v.data)
}

// All iterates over index/value pairs.
func (v View) All() iter.Seq2[int, float64] {
	return slices.All(v.data)
}

// Equal reports whether both views hold the same values.
func (v View) Equal(other View) bool {
	return slices.Equal(v.data, other.data)
}
