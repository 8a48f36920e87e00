package nodes

import (
	"github.com/gomlx/exceptions"

	"github.com/SuFu123/ELL/backends"
	"github.com/SuFu123/ELL/compiler"
	"github.com/SuFu123/ELL/model"
)

// SubmodelNode embeds a whole nested model as one node of the outer model. Its
// lowering compiles the nested model inline, inside a fresh scope frame: the
// nested input ports are bound to the outer input variables (shadowing any
// outer binding of the same ports), the nested nodes' temporaries stay in the
// inner frame, and only the copied result escapes to the node's own output
// port. When the frame pops, the nested bindings vanish.
type SubmodelNode struct {
	name        string
	sub         *model.Model
	innerInputs []*model.OutputPort
	innerOutput *model.OutputPort
	inputs      []*model.InputPort
	out         *model.OutputPort
}

var _ compiler.Compilable = (*SubmodelNode)(nil)

// NewSubmodel wraps sub as a node of an outer model.
//
// innerInputs are output ports of sub's source nodes, matched positionally
// with from, the outer ports feeding them; innerOutput is the port of sub whose
// value becomes this node's output. Dtypes and sizes must match positionally.
func NewSubmodel(name string, sub *model.Model, innerInputs []*model.OutputPort,
	innerOutput *model.OutputPort, from ...*model.OutputPort) *SubmodelNode {
	if sub == nil {
		exceptions.Panicf("nodes.NewSubmodel(%q): nil sub-model", name)
	}
	if len(innerInputs) != len(from) {
		exceptions.Panicf("nodes.NewSubmodel(%q): %d inner inputs but %d outer ports",
			name, len(innerInputs), len(from))
	}
	if innerOutput == nil || !sub.Contains(innerOutput.Node()) {
		exceptions.Panicf("nodes.NewSubmodel(%q): inner output port must belong to the sub-model", name)
	}
	n := &SubmodelNode{name: name, sub: sub, innerInputs: innerInputs, innerOutput: innerOutput}
	for i, inner := range innerInputs {
		if !sub.Contains(inner.Node()) {
			exceptions.Panicf("nodes.NewSubmodel(%q): inner input port %s must belong to the sub-model", name, inner)
		}
		outer := from[i]
		if inner.DType() != outer.DType() || inner.Size() != outer.Size() {
			exceptions.Panicf("nodes.NewSubmodel(%q): inner port %s incompatible with outer port %s",
				name, inner, outer)
		}
		n.inputs = append(n.inputs, model.NewInputPort(n, outer))
	}
	n.out = model.NewOutputPort(n, "output", innerOutput.DType(), innerOutput.Size())
	return n
}

func (n *SubmodelNode) Name() string                     { return n.name }
func (n *SubmodelNode) InputPorts() []*model.InputPort   { return n.inputs }
func (n *SubmodelNode) OutputPorts() []*model.OutputPort { return []*model.OutputPort{n.out} }

// Output returns the node's single output port.
func (n *SubmodelNode) Output() *model.OutputPort { return n.out }

// Submodel returns the wrapped model.
func (n *SubmodelNode) Submodel() *model.Model { return n.sub }

// CompileNode implements compiler.Compilable.
func (n *SubmodelNode) CompileNode(c *compiler.MapCompiler) {
	// Outer-frame variables: resolved before the nested frame opens.
	feeds := make([]*backends.Variable, len(n.inputs))
	for i, in := range n.inputs {
		feeds[i] = c.GetOrAllocatePortVariable(in.Connected())
	}
	dst := c.GetOrAllocatePortVariable(n.out)

	c.CompileInScope(func() {
		for i, inner := range n.innerInputs {
			c.SetVariableForPort(inner, feeds[i])
		}
		c.CompileModelNodes(n.sub)
		src := c.GetVariableForPort(n.innerOutput)
		if src == nil {
			exceptions.Panicf("submodel %q: inner output port %s was not bound during nested compilation",
				n.name, n.innerOutput)
		}
		c.Backend().Module().EmitCopy(dst, src)
	})
}
