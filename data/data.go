// Package data provides the dense and sparse data vectors fed to compiled map
// functions, with a uniform index-value iteration protocol over both.
//
// Values iterate as IndexValue pairs under one of two policies: SkipZeros
// visits only non-zero elements (cheap on sparse storage), All visits every
// position up to a requested size, synthesizing zeros where nothing is stored.
package data

import "iter"

// IndexValue is one element of a vector: its position and its value.
type IndexValue struct {
	Index int
	Value float64
}

// IterationPolicy selects which elements an iterator visits.
type IterationPolicy int

const (
	// SkipZeros visits only the non-zero elements.
	SkipZeros IterationPolicy = iota
	// All visits every position, zeros included.
	All
)

// String implements fmt.Stringer.
func (p IterationPolicy) String() string {
	if p == SkipZeros {
		return "skip-zeros"
	}
	return "all"
}

// Iterator is a forward iterator over a vector's elements. Get is only valid
// while Ok returns true.
type Iterator interface {
	Ok() bool
	Next()
	Get() IndexValue
}

// Each adapts an Iterator to an iter.Seq, for range-over-func loops.
func Each(it Iterator) iter.Seq[IndexValue] {
	return func(yield func(IndexValue) bool) {
		for ; it.Ok(); it.Next() {
			if !yield(it.Get()) {
				return
			}
		}
	}
}
