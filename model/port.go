package model

import (
	"fmt"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
)

// OutputPort is the unit of value production in a model: a typed, fixed-size
// carrier of values produced by one node. Several input ports elsewhere may
// connect to the same output port (fan-out).
//
// The element count and scalar type never change after construction.
type OutputPort struct {
	node  Node
	name  string
	dtype dtypes.DType
	size  int
}

// NewOutputPort creates an output port owned by node. Size may be zero here
// (the malformed-port fault is only raised when a variable is requested for the
// port, matching the compiler's fault model), but dtype must be valid.
func NewOutputPort(node Node, name string, dtype dtypes.DType, size int) *OutputPort {
	if node == nil {
		exceptions.Panicf("model.NewOutputPort(%q): nil owner node", name)
	}
	if dtype == dtypes.InvalidDType {
		exceptions.Panicf("model.NewOutputPort(%q): invalid dtype", name)
	}
	if size < 0 {
		exceptions.Panicf("model.NewOutputPort(%q): negative size %d", name, size)
	}
	return &OutputPort{node: node, name: name, dtype: dtype, size: size}
}

// Node returns the node that produces this port's value.
func (p *OutputPort) Node() Node { return p.node }

// Name returns the port name, unique within its node.
func (p *OutputPort) Name() string { return p.name }

// DType returns the scalar type of the port's elements.
func (p *OutputPort) DType() dtypes.DType { return p.dtype }

// Size returns the fixed element count of the port.
func (p *OutputPort) Size() int { return p.size }

// String implements fmt.Stringer.
func (p *OutputPort) String() string {
	return fmt.Sprintf("%s.%s: %s[%d]", p.node.Name(), p.name, p.dtype, p.size)
}

// InputPort connects a node to one upstream output port.
type InputPort struct {
	node      Node
	connected *OutputPort
}

// NewInputPort creates an input port of node connected to the given upstream
// output port.
func NewInputPort(node Node, connected *OutputPort) *InputPort {
	if node == nil {
		exceptions.Panicf("model.NewInputPort: nil owner node")
	}
	if connected == nil {
		exceptions.Panicf("model.NewInputPort: node %q input connected to nil port", node.Name())
	}
	return &InputPort{node: node, connected: connected}
}

// Node returns the node that consumes this input.
func (p *InputPort) Node() Node { return p.node }

// Connected returns the upstream output port feeding this input.
func (p *InputPort) Connected() *OutputPort { return p.connected }

// DType returns the scalar type of the connected output port.
func (p *InputPort) DType() dtypes.DType { return p.connected.dtype }

// Size returns the element count of the connected output port.
func (p *InputPort) Size() int { return p.connected.size }
