package compiler

import (
	"github.com/gomlx/exceptions"

	"github.com/SuFu123/ELL/backends"
	"github.com/SuFu123/ELL/model"
)

// This file implements the scoped port-to-variable registry: the stack of scope
// frames answering "does this output port already have a variable, and if not,
// create one".

// GetVariableForPort returns the variable bound to the port, searching all open
// frames from innermost to outermost, or nil if none exists. No side effect.
func (c *MapCompiler) GetVariableForPort(port *model.OutputPort) *backends.Variable {
	for i := len(c.portToVar) - 1; i >= 0; i-- {
		if v, found := c.portToVar[i][port]; found {
			return v
		}
	}
	return nil
}

// SetVariableForPort binds a variable to a port in the current (topmost) frame.
//
// Overwriting an existing binding for the same port in the same frame is a
// fault -- it signals a compiler-internal consistency bug. Rebinding a port
// already bound in an enclosing frame is legal and shadows the outer binding
// for subsequent inner lookups.
func (c *MapCompiler) SetVariableForPort(port *model.OutputPort, v *backends.Variable) {
	if port == nil || v == nil {
		exceptions.Panicf("SetVariableForPort: nil port or variable")
	}
	frame := c.portToVar[len(c.portToVar)-1]
	if existing, found := frame[port]; found {
		exceptions.Panicf("duplicate binding: port %s already bound to %s in the current scope frame",
			port, existing)
	}
	frame[port] = v
}

// AllocatePortVariable requests a variable from the backend sized and typed to
// match the port, binds it in the current frame, and returns it.
//
// It faults if the port's element count is zero (malformed port).
func (c *MapCompiler) AllocatePortVariable(port *model.OutputPort) *backends.Variable {
	return c.allocatePortVariable(port, nil)
}

// AllocatePortVariableWithInit is AllocatePortVariable seeding the variable
// with the given value on every element. The seed is explicit: zero still
// counts as an initializer, keeping "explicitly zero" distinguishable from
// "unspecified".
func (c *MapCompiler) AllocatePortVariableWithInit(port *model.OutputPort, initialValue float64) *backends.Variable {
	return c.allocatePortVariable(port, []float64{initialValue})
}

func (c *MapCompiler) allocatePortVariable(port *model.OutputPort, init []float64) *backends.Variable {
	if port == nil {
		exceptions.Panicf("AllocatePortVariable: nil port")
	}
	if port.Size() == 0 {
		exceptions.Panicf("malformed port: %s has zero elements", port)
	}
	emitter := c.backend.Module()
	var v *backends.Variable
	if init == nil {
		v = emitter.AddVectorVariable(backends.ScopeGlobal, port.DType(), port.Size())
	} else {
		v = emitter.AddInitializedVectorVariable(backends.ScopeGlobal, port.DType(), port.Size(), init)
	}
	emitter.AllocateVariable(v)
	c.SetVariableForPort(port, v)
	c.numAllocated++
	return v
}

// GetOrAllocatePortVariable returns the existing binding if found anywhere in
// the stack, else allocates in the current frame. Repeated calls for the same
// port at the same scope depth return the identical variable.
func (c *MapCompiler) GetOrAllocatePortVariable(port *model.OutputPort) *backends.Variable {
	if v := c.GetVariableForPort(port); v != nil {
		return v
	}
	return c.AllocatePortVariable(port)
}

// GetOrAllocatePortVariableWithInit is GetOrAllocatePortVariable with a seed
// value. The seed only applies if the variable doesn't exist yet.
func (c *MapCompiler) GetOrAllocatePortVariableWithInit(port *model.OutputPort, initialValue float64) *backends.Variable {
	if v := c.GetVariableForPort(port); v != nil {
		return v
	}
	return c.AllocatePortVariableWithInit(port, initialValue)
}

// PushScope opens a new scope frame. New bindings always land in the topmost
// frame; lookups search from the innermost frame outward.
func (c *MapCompiler) PushScope() {
	c.portToVar = append(c.portToVar, make(map[*model.OutputPort]*backends.Variable))
}

// PopScope closes the topmost scope frame, dropping its bindings.
//
// It faults if only the base frame remains: every PopScope must pair with a
// PushScope. Prefer CompileInScope, which guarantees the pairing even on
// error exit.
func (c *MapCompiler) PopScope() {
	if len(c.portToVar) <= 1 {
		exceptions.Panicf("unbalanced scopes: PopScope called with no open PushScope")
	}
	c.portToVar = c.portToVar[:len(c.portToVar)-1]
}

// ScopeDepth returns the number of open frames on top of the base frame.
func (c *MapCompiler) ScopeDepth() int {
	return len(c.portToVar) - 1
}
