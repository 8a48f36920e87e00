package data

import "github.com/gomlx/exceptions"

// Sparse stores only the non-zero elements, as parallel lists of strictly
// increasing indices and their values.
type Sparse[T Number] struct {
	indices []int
	values  []T
	last    int
}

// NewSparse creates an empty sparse vector.
func NewSparse[T Number]() *Sparse[T] {
	return &Sparse[T]{last: -1}
}

// FromSlice builds a sparse vector from a dense slice, dropping zeros.
func FromSlice[T Number](values []T) *Sparse[T] {
	s := NewSparse[T]()
	for i, value := range values {
		s.AppendElement(i, value)
	}
	return s
}

// AppendElement adds the element at index. Indices must arrive in strictly
// increasing order; a zero value advances the index watermark but is not
// stored.
func (s *Sparse[T]) AppendElement(index int, value T) {
	if index < 0 {
		exceptions.Panicf("data.Sparse: negative index %d", index)
	}
	if index <= s.last {
		exceptions.Panicf("data.Sparse: index %d not after the last appended index %d",
			index, s.last)
	}
	s.last = index
	if value == 0 {
		return
	}
	s.indices = append(s.indices, index)
	s.values = append(s.values, value)
}

// NumStored returns how many non-zero elements are stored.
func (s *Sparse[T]) NumStored() int { return len(s.indices) }

// PrefixLength returns one past the highest stored index, i.e. the minimal
// dense length that holds every stored element.
func (s *Sparse[T]) PrefixLength() int {
	if len(s.indices) == 0 {
		return 0
	}
	return s.indices[len(s.indices)-1] + 1
}

// At returns the element at index, zero if not stored.
func (s *Sparse[T]) At(index int) T {
	for i, stored := range s.indices {
		if stored == index {
			return s.values[i]
		}
		if stored > index {
			break
		}
	}
	var zero T
	return zero
}

// ToSlice materializes the first size elements as float64. A negative size
// means PrefixLength.
func (s *Sparse[T]) ToSlice(size int) []float64 {
	if size < 0 {
		size = s.PrefixLength()
	}
	out := make([]float64, size)
	for i, index := range s.indices {
		if index >= size {
			break
		}
		out[index] = float64(s.values[i])
	}
	return out
}

// Iterate returns a forward iterator under the given policy, visiting
// positions [0, size). A negative size means PrefixLength. SkipZeros walks the
// stored entries directly; All synthesizes the zeros in between.
func (s *Sparse[T]) Iterate(policy IterationPolicy, size int) Iterator {
	if size < 0 {
		size = s.PrefixLength()
	}
	if policy == SkipZeros {
		return &sparseIterator[T]{vector: s, size: size}
	}
	return &sparseAllIterator[T]{vector: s, size: size}
}

// sparseIterator walks only the stored entries.
type sparseIterator[T Number] struct {
	vector *Sparse[T]
	size   int
	pos    int
}

func (it *sparseIterator[T]) Ok() bool {
	return it.pos < len(it.vector.indices) && it.vector.indices[it.pos] < it.size
}

func (it *sparseIterator[T]) Next() { it.pos++ }

func (it *sparseIterator[T]) Get() IndexValue {
	return IndexValue{Index: it.vector.indices[it.pos], Value: float64(it.vector.values[it.pos])}
}

// sparseAllIterator visits every position, keeping a cursor into the stored
// entries so each Get stays O(1).
type sparseAllIterator[T Number] struct {
	vector *Sparse[T]
	size   int
	index  int
	cursor int
}

func (it *sparseAllIterator[T]) Ok() bool { return it.index < it.size }

func (it *sparseAllIterator[T]) Next() {
	it.index++
	for it.cursor < len(it.vector.indices) && it.vector.indices[it.cursor] < it.index {
		it.cursor++
	}
}

func (it *sparseAllIterator[T]) Get() IndexValue {
	value := 0.0
	if it.cursor < len(it.vector.indices) && it.vector.indices[it.cursor] == it.index {
		value = float64(it.vector.values[it.cursor])
	}
	return IndexValue{Index: it.index, Value: value}
}
