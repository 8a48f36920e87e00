package model

// Node is a vertex of a Model: one computation step consuming values from its
// input ports and producing values on its output ports.
//
// Node identity is by reference; nodes are never copied during compilation.
// Topology is immutable once the node is added to a Model.
//
// Concrete node types live in package nodes. A node that can be compiled also
// implements compiler.Compilable, which the compiler dispatches to -- the
// orchestration never branches on concrete node types.
type Node interface {
	// Name identifies the node for diagnostics. It doesn't need to be unique.
	Name() string

	// InputPorts enumerates the node's input ports, each connected to some
	// upstream node's output port.
	InputPorts() []*InputPort

	// OutputPorts enumerates the node's output ports.
	OutputPorts() []*OutputPort
}
