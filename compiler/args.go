package compiler

import (
	"github.com/gomlx/exceptions"
	"k8s.io/klog/v2"

	"github.com/SuFu123/ELL/backends"
	"github.com/SuFu123/ELL/model"
)

// AllocateMapFunctionArguments allocates variables for the map function
// arguments: one input variable per declared input binding and one output
// variable per declared output binding, each bound to its port in the current
// frame. It returns the ordered argument descriptor list, which the emitter
// consumes to build the function prologue.
//
// This runs once per compiled map, before any node is visited; CompileMap
// calls it for you.
func (c *MapCompiler) AllocateMapFunctionArguments(m *model.Map) backends.NamedVariableTypeList {
	args := make(backends.NamedVariableTypeList, 0, len(m.Inputs())+len(m.Outputs()))
	for _, binding := range m.Inputs() {
		args = append(args, c.allocateArgument(binding, backends.ScopeInput))
	}
	for _, binding := range m.Outputs() {
		args = append(args, c.allocateArgument(binding, backends.ScopeOutput))
	}
	return args
}

func (c *MapCompiler) allocateArgument(binding model.PortBinding, scope backends.VariableScope) backends.NamedVariableType {
	port := binding.Port
	if port.Size() == 0 {
		exceptions.Panicf("malformed port: map %s binding %q port %s has zero elements",
			scope, binding.Name, port)
	}
	v := c.backend.Module().AddArgumentVariable(scope, binding.Name, port.DType(), port.Size())
	c.SetVariableForPort(port, v)
	c.numAllocated++
	klog.V(2).Infof("argument %q (%s) bound to %s", binding.Name, scope, v)
	return backends.NamedVariableType{Name: binding.Name, DType: port.DType(), Size: port.Size()}
}
