package backends

import (
	"fmt"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
)

// VariableScope tells how long a variable lives and who supplies its value.
type VariableScope int

const (
	// ScopeLocal variables live only while their owning region is active.
	ScopeLocal VariableScope = iota

	// ScopeGlobal variables persist for the lifetime of the compiled function.
	ScopeGlobal

	// ScopeInput variables are function arguments, supplied by the caller.
	ScopeInput

	// ScopeOutput variables are function results, written by the compiled code.
	ScopeOutput
)

// String implements fmt.Stringer.
func (s VariableScope) String() string {
	switch s {
	case ScopeLocal:
		return "local"
	case ScopeGlobal:
		return "global"
	case ScopeInput:
		return "input"
	case ScopeOutput:
		return "output"
	}
	return fmt.Sprintf("VariableScope(%d)", int(s))
}

// Variable is a symbolic storage location created by a ModuleEmitter. It backs
// the materialized value of one output port, a constant, or a function
// argument. The emitter decides physical placement when the variable is
// allocated.
type Variable struct {
	scope VariableScope
	dtype dtypes.DType
	size  int
	name  string
	init  []float64
}

// NewVectorVariable creates a variable without an initial value. It is meant to
// be called by ModuleEmitter implementations; compiler and node code obtain
// variables through the emitter instead.
func NewVectorVariable(scope VariableScope, dtype dtypes.DType, size int, name string) *Variable {
	if size <= 0 {
		exceptions.Panicf("backends.NewVectorVariable(%q): size must be positive, got %d", name, size)
	}
	return &Variable{scope: scope, dtype: dtype, size: size, name: name}
}

// NewInitializedVectorVariable creates a variable seeded with an initial value.
// The initializer is explicit: passing all zeros still counts as "initialized",
// which keeps "explicitly zero" distinguishable from "unspecified". Initial
// values must have exactly one element (broadcast to the whole vector) or size
// elements.
func NewInitializedVectorVariable(scope VariableScope, dtype dtypes.DType, size int, name string, init []float64) *Variable {
	if len(init) != 1 && len(init) != size {
		exceptions.Panicf("backends.NewInitializedVectorVariable(%q): initializer has %d values, want 1 or %d",
			name, len(init), size)
	}
	v := NewVectorVariable(scope, dtype, size, name)
	if len(init) == 1 && size > 1 {
		v.init = slices.Repeat(init, size)
	} else {
		v.init = slices.Clone(init)
	}
	return v
}

// Scope returns the variable's scope.
func (v *Variable) Scope() VariableScope { return v.scope }

// DType returns the scalar type of the variable's elements.
func (v *Variable) DType() dtypes.DType { return v.dtype }

// Size returns the element count.
func (v *Variable) Size() int { return v.size }

// Name returns the emitter-assigned name, e.g. "%t3" or "@g0".
func (v *Variable) Name() string { return v.name }

// Memory returns the storage footprint of the variable in bytes.
func (v *Variable) Memory() uintptr {
	return v.dtype.Memory() * uintptr(v.size)
}

// Initializer returns the initial values and whether an initializer was given.
// An all-zero initializer still reports ok=true.
func (v *Variable) Initializer() (init []float64, ok bool) {
	return v.init, v.init != nil
}

// String implements fmt.Stringer.
func (v *Variable) String() string {
	return fmt.Sprintf("%s: %s %s[%d]", v.name, v.scope, v.dtype, v.size)
}

// NamedVariableType describes one function argument: its name, scalar type and
// element count. The map compiler derives the list from the map's declared port
// bindings, and the emitter consumes it to build the function prologue.
type NamedVariableType struct {
	Name  string
	DType dtypes.DType
	Size  int
}

// NamedVariableTypeList is an ordered function argument list.
type NamedVariableTypeList []NamedVariableType
