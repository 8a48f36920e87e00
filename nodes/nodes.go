// Package nodes provides the concrete node types that can appear in a
// compilable model: sources (InputNode, ConstantNode), sinks (OutputNode),
// elementwise and reduction operations, and SubmodelNode, which lowers a nested
// model inside its own scope frame.
//
// Every node implements model.Node plus compiler.Compilable: it knows how to
// lower itself given a compiler, requesting variables through the compiler's
// registry and emitting instructions through the backend's module emitter. The
// compiler itself never branches on node types.
package nodes

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"

	"github.com/SuFu123/ELL/backends"
	"github.com/SuFu123/ELL/compiler"
	"github.com/SuFu123/ELL/model"
)

// InputNode is a source node whose value is supplied by the caller of the
// compiled function. Its output port must be declared as a map input; the
// argument-binding step supplies its variable, so lowering emits nothing.
type InputNode struct {
	name string
	out  *model.OutputPort
}

var _ compiler.Compilable = (*InputNode)(nil)

// NewInput creates an input node producing size elements of the given dtype.
func NewInput(name string, dtype dtypes.DType, size int) *InputNode {
	n := &InputNode{name: name}
	n.out = model.NewOutputPort(n, "output", dtype, size)
	return n
}

func (n *InputNode) Name() string                     { return n.name }
func (n *InputNode) InputPorts() []*model.InputPort   { return nil }
func (n *InputNode) OutputPorts() []*model.OutputPort { return []*model.OutputPort{n.out} }

// Output returns the node's single output port.
func (n *InputNode) Output() *model.OutputPort { return n.out }

// CompileNode implements compiler.Compilable. It only checks that argument
// binding already assigned a variable to the port.
func (n *InputNode) CompileNode(c *compiler.MapCompiler) {
	if c.GetVariableForPort(n.out) == nil {
		exceptions.Panicf("input node %q has no bound variable; is it declared as a map input?", n.name)
	}
}

// OutputNode is a sink node: it copies its input's value into its own output
// port, which is typically declared as a map output so the copy lands in the
// function's result variable.
type OutputNode struct {
	name string
	in   *model.InputPort
	out  *model.OutputPort
}

var _ compiler.Compilable = (*OutputNode)(nil)

// NewOutput creates an output node fed by the given port.
func NewOutput(name string, from *model.OutputPort) *OutputNode {
	n := &OutputNode{name: name}
	n.in = model.NewInputPort(n, from)
	n.out = model.NewOutputPort(n, "output", from.DType(), from.Size())
	return n
}

func (n *OutputNode) Name() string                     { return n.name }
func (n *OutputNode) InputPorts() []*model.InputPort   { return []*model.InputPort{n.in} }
func (n *OutputNode) OutputPorts() []*model.OutputPort { return []*model.OutputPort{n.out} }

// Output returns the node's single output port.
func (n *OutputNode) Output() *model.OutputPort { return n.out }

// CompileNode implements compiler.Compilable.
func (n *OutputNode) CompileNode(c *compiler.MapCompiler) {
	src := c.GetOrAllocatePortVariable(n.in.Connected())
	dst := c.GetOrAllocatePortVariable(n.out)
	c.Backend().Module().EmitCopy(dst, src)
}

// ConstantNode produces a fixed vector of values, materialized as an
// initialized global variable. An all-zero constant still gets an explicit
// initializer.
type ConstantNode struct {
	name   string
	values []float64
	out    *model.OutputPort
}

var _ compiler.Compilable = (*ConstantNode)(nil)

// NewConstant creates a constant node with the given values.
func NewConstant(name string, dtype dtypes.DType, values []float64) *ConstantNode {
	if len(values) == 0 {
		exceptions.Panicf("nodes.NewConstant(%q): empty values", name)
	}
	n := &ConstantNode{name: name, values: values}
	n.out = model.NewOutputPort(n, "output", dtype, len(values))
	return n
}

func (n *ConstantNode) Name() string                     { return n.name }
func (n *ConstantNode) InputPorts() []*model.InputPort   { return nil }
func (n *ConstantNode) OutputPorts() []*model.OutputPort { return []*model.OutputPort{n.out} }

// Output returns the node's single output port.
func (n *ConstantNode) Output() *model.OutputPort { return n.out }

// CompileNode implements compiler.Compilable. The variable is created directly
// through the emitter so the initializer carries the constant's values, then
// bound to the port for downstream consumers.
func (n *ConstantNode) CompileNode(c *compiler.MapCompiler) {
	emitter := c.Backend().Module()
	v := emitter.AddInitializedVectorVariable(backends.ScopeGlobal, n.out.DType(), n.out.Size(), n.values)
	emitter.AllocateVariable(v)
	c.SetVariableForPort(n.out, v)
}
