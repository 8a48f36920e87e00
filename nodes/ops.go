package nodes

import (
	"github.com/gomlx/exceptions"

	"github.com/SuFu123/ELL/backends"
	"github.com/SuFu123/ELL/compiler"
	"github.com/SuFu123/ELL/model"
)

// UnaryOpNode applies an elementwise unary operation to its input.
type UnaryOpNode struct {
	name string
	op   backends.UnaryOpType
	in   *model.InputPort
	out  *model.OutputPort
}

var _ compiler.Compilable = (*UnaryOpNode)(nil)

// NewUnaryOp creates a node applying op to the values of from.
func NewUnaryOp(name string, op backends.UnaryOpType, from *model.OutputPort) *UnaryOpNode {
	n := &UnaryOpNode{name: name, op: op}
	n.in = model.NewInputPort(n, from)
	n.out = model.NewOutputPort(n, "output", from.DType(), from.Size())
	return n
}

func (n *UnaryOpNode) Name() string                     { return n.name }
func (n *UnaryOpNode) InputPorts() []*model.InputPort   { return []*model.InputPort{n.in} }
func (n *UnaryOpNode) OutputPorts() []*model.OutputPort { return []*model.OutputPort{n.out} }

// Output returns the node's single output port.
func (n *UnaryOpNode) Output() *model.OutputPort { return n.out }

// CompileNode implements compiler.Compilable.
func (n *UnaryOpNode) CompileNode(c *compiler.MapCompiler) {
	operand := c.GetOrAllocatePortVariable(n.in.Connected())
	dst := c.GetOrAllocatePortVariable(n.out)
	c.Backend().Module().EmitUnaryOp(n.op, dst, operand)
}

// BinaryOpNode applies an elementwise binary operation to its two inputs,
// which must agree in dtype and size.
type BinaryOpNode struct {
	name     string
	op       backends.BinaryOpType
	lhs, rhs *model.InputPort
	out      *model.OutputPort
}

var _ compiler.Compilable = (*BinaryOpNode)(nil)

// NewBinaryOp creates a node computing `lhs op rhs` elementwise.
func NewBinaryOp(name string, op backends.BinaryOpType, lhs, rhs *model.OutputPort) *BinaryOpNode {
	if lhs.DType() != rhs.DType() {
		exceptions.Panicf("nodes.NewBinaryOp(%q): dtype mismatch, %s vs %s", name, lhs, rhs)
	}
	if lhs.Size() != rhs.Size() {
		exceptions.Panicf("nodes.NewBinaryOp(%q): size mismatch, %s vs %s", name, lhs, rhs)
	}
	n := &BinaryOpNode{name: name, op: op}
	n.lhs = model.NewInputPort(n, lhs)
	n.rhs = model.NewInputPort(n, rhs)
	n.out = model.NewOutputPort(n, "output", lhs.DType(), lhs.Size())
	return n
}

func (n *BinaryOpNode) Name() string                     { return n.name }
func (n *BinaryOpNode) InputPorts() []*model.InputPort   { return []*model.InputPort{n.lhs, n.rhs} }
func (n *BinaryOpNode) OutputPorts() []*model.OutputPort { return []*model.OutputPort{n.out} }

// Output returns the node's single output port.
func (n *BinaryOpNode) Output() *model.OutputPort { return n.out }

// CompileNode implements compiler.Compilable.
func (n *BinaryOpNode) CompileNode(c *compiler.MapCompiler) {
	lhs := c.GetOrAllocatePortVariable(n.lhs.Connected())
	rhs := c.GetOrAllocatePortVariable(n.rhs.Connected())
	dst := c.GetOrAllocatePortVariable(n.out)
	c.Backend().Module().EmitBinaryOp(n.op, dst, lhs, rhs)
}

// DotProductNode computes the inner product of its two same-sized inputs,
// producing a single element.
type DotProductNode struct {
	name     string
	lhs, rhs *model.InputPort
	out      *model.OutputPort
}

var _ compiler.Compilable = (*DotProductNode)(nil)

// NewDotProduct creates a dot-product node over the two ports.
func NewDotProduct(name string, lhs, rhs *model.OutputPort) *DotProductNode {
	if lhs.DType() != rhs.DType() {
		exceptions.Panicf("nodes.NewDotProduct(%q): dtype mismatch, %s vs %s", name, lhs, rhs)
	}
	if lhs.Size() != rhs.Size() {
		exceptions.Panicf("nodes.NewDotProduct(%q): size mismatch, %s vs %s", name, lhs, rhs)
	}
	n := &DotProductNode{name: name}
	n.lhs = model.NewInputPort(n, lhs)
	n.rhs = model.NewInputPort(n, rhs)
	n.out = model.NewOutputPort(n, "output", lhs.DType(), 1)
	return n
}

func (n *DotProductNode) Name() string                     { return n.name }
func (n *DotProductNode) InputPorts() []*model.InputPort   { return []*model.InputPort{n.lhs, n.rhs} }
func (n *DotProductNode) OutputPorts() []*model.OutputPort { return []*model.OutputPort{n.out} }

// Output returns the node's single output port.
func (n *DotProductNode) Output() *model.OutputPort { return n.out }

// CompileNode implements compiler.Compilable.
func (n *DotProductNode) CompileNode(c *compiler.MapCompiler) {
	lhs := c.GetOrAllocatePortVariable(n.lhs.Connected())
	rhs := c.GetOrAllocatePortVariable(n.rhs.Connected())
	dst := c.GetOrAllocatePortVariable(n.out)
	c.Backend().Module().EmitDotProduct(dst, lhs, rhs)
}

// SumNode reduces its input to a single element, the sum of all elements.
type SumNode struct {
	name string
	in   *model.InputPort
	out  *model.OutputPort
}

var _ compiler.Compilable = (*SumNode)(nil)

// NewSum creates a node summing the values of from into one element.
func NewSum(name string, from *model.OutputPort) *SumNode {
	n := &SumNode{name: name}
	n.in = model.NewInputPort(n, from)
	n.out = model.NewOutputPort(n, "output", from.DType(), 1)
	return n
}

func (n *SumNode) Name() string                     { return n.name }
func (n *SumNode) InputPorts() []*model.InputPort   { return []*model.InputPort{n.in} }
func (n *SumNode) OutputPorts() []*model.OutputPort { return []*model.OutputPort{n.out} }

// Output returns the node's single output port.
func (n *SumNode) Output() *model.OutputPort { return n.out }

// CompileNode implements compiler.Compilable.
func (n *SumNode) CompileNode(c *compiler.MapCompiler) {
	src := c.GetOrAllocatePortVariable(n.in.Connected())
	dst := c.GetOrAllocatePortVariable(n.out)
	c.Backend().Module().EmitReduceSum(dst, src)
}

// BroadcastNode replicates a single-element input over a wider output.
type BroadcastNode struct {
	name string
	in   *model.InputPort
	out  *model.OutputPort
}

var _ compiler.Compilable = (*BroadcastNode)(nil)

// NewBroadcast creates a node replicating the single element of from over size
// elements.
func NewBroadcast(name string, from *model.OutputPort, size int) *BroadcastNode {
	if from.Size() != 1 {
		exceptions.Panicf("nodes.NewBroadcast(%q): source must have one element, got %s", name, from)
	}
	n := &BroadcastNode{name: name}
	n.in = model.NewInputPort(n, from)
	n.out = model.NewOutputPort(n, "output", from.DType(), size)
	return n
}

func (n *BroadcastNode) Name() string                     { return n.name }
func (n *BroadcastNode) InputPorts() []*model.InputPort   { return []*model.InputPort{n.in} }
func (n *BroadcastNode) OutputPorts() []*model.OutputPort { return []*model.OutputPort{n.out} }

// Output returns the node's single output port.
func (n *BroadcastNode) Output() *model.OutputPort { return n.out }

// CompileNode implements compiler.Compilable.
func (n *BroadcastNode) CompileNode(c *compiler.MapCompiler) {
	src := c.GetOrAllocatePortVariable(n.in.Connected())
	dst := c.GetOrAllocatePortVariable(n.out)
	c.Backend().Module().EmitBroadcast(dst, src)
}
