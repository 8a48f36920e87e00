// Package sweep enumerates all combinations of configuration parameter values.
//
// A Sweep[P] is built by adding one axis per parameter field, each axis carrying
// the list of values to try for that field. Generate(i) decodes the index i as a
// mixed-radix number, one digit per axis, so every index below Size() yields a
// distinct combination.
package sweep

import (
	"slices"

	"github.com/gomlx/exceptions"
)

// Sweep generates every combination of parameter values for a configuration
// struct of type P.
type Sweep[P any] struct {
	axes []axis[P]
}

type axis[P any] struct {
	size int
	set  func(p *P, choice int)
}

// New creates an empty Sweep for configurations of type P.
// A Sweep with no axes has size 1: the zero configuration.
func New[P any]() *Sweep[P] {
	return &Sweep[P]{}
}

// Axis adds one parameter axis to the sweep: values lists the candidates and set
// writes the chosen one into the configuration. It returns s to allow chaining.
//
// It panics if values is empty, since that would make every combination
// unreachable.
func Axis[P, V any](s *Sweep[P], values []V, set func(p *P, value V)) *Sweep[P] {
	if len(values) == 0 {
		exceptions.Panicf("sweep.Axis: empty value list for axis %d", len(s.axes))
	}
	owned := slices.Clone(values)
	s.axes = append(s.axes, axis[P]{
		size: len(owned),
		set:  func(p *P, choice int) { set(p, owned[choice]) },
	})
	return s
}

// Size returns the number of distinct configurations, the product of the axis
// sizes.
func (s *Sweep[P]) Size() int {
	size := 1
	for _, a := range s.axes {
		size *= a.size
	}
	return size
}

// Generate returns the configuration for the given index. The index is
// interpreted modulo Size(), so all inputs produce a valid configuration.
func (s *Sweep[P]) Generate(index int) P {
	index %= s.Size()
	if index < 0 {
		index += s.Size()
	}
	var p P
	for _, a := range s.axes {
		a.set(&p, index%a.size)
		index /= a.size
	}
	return p
}

// All returns every configuration the sweep can generate, in index order.
func (s *Sweep[P]) All() []P {
	all := make([]P, 0, s.Size())
	for index := range s.Size() {
		all = append(all, s.Generate(index))
	}
	return all
}
