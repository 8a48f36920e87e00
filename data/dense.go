package data

import "golang.org/x/exp/constraints"

// Number constrains the element types a vector can hold.
type Number interface {
	constraints.Integer | constraints.Float
}

// Dense stores every element contiguously.
type Dense[T Number] struct {
	values []T
}

// NewDense creates a dense vector holding the given values.
func NewDense[T Number](values ...T) *Dense[T] {
	return &Dense[T]{values: values}
}

// Append adds one element at the end.
func (d *Dense[T]) Append(value T) {
	d.values = append(d.values, value)
}

// Len returns the number of stored elements.
func (d *Dense[T]) Len() int { return len(d.values) }

// At returns the element at index, zero past the stored length.
func (d *Dense[T]) At(index int) T {
	if index >= len(d.values) {
		var zero T
		return zero
	}
	return d.values[index]
}

// ToSlice materializes the first size elements as float64, zero-padding past
// the stored length. A negative size means the stored length.
func (d *Dense[T]) ToSlice(size int) []float64 {
	if size < 0 {
		size = len(d.values)
	}
	out := make([]float64, size)
	for i := 0; i < size && i < len(d.values); i++ {
		out[i] = float64(d.values[i])
	}
	return out
}

// Iterate returns a forward iterator under the given policy, visiting
// positions [0, size). A negative size means the stored length.
func (d *Dense[T]) Iterate(policy IterationPolicy, size int) Iterator {
	if size < 0 {
		size = len(d.values)
	}
	it := &denseIterator[T]{vector: d, policy: policy, size: size, pos: -1}
	it.Next()
	return it
}

type denseIterator[T Number] struct {
	vector *Dense[T]
	policy IterationPolicy
	size   int
	pos    int
}

func (it *denseIterator[T]) Ok() bool { return it.pos < it.size }

func (it *denseIterator[T]) Next() {
	it.pos++
	if it.policy == SkipZeros {
		for it.pos < it.size && it.vector.At(it.pos) == 0 {
			it.pos++
		}
	}
}

func (it *denseIterator[T]) Get() IndexValue {
	return IndexValue{Index: it.pos, Value: float64(it.vector.At(it.pos))}
}
