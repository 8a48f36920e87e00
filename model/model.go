// Package model defines the dataflow graph that gets compiled: a Model is a DAG
// of Nodes that consume values from input ports and produce values on output
// ports, and a Map names the subset of ports exposed as the argument and result
// list of a compiled function.
//
// The package only describes topology; nothing here emits code. Compilation is
// driven by package compiler, which walks Model.Nodes() in order and dispatches
// to each node's own lowering.
//
// To simplify error handling, graph construction functions throw (panic) with a
// stack trace in case of errors. See package github.com/gomlx/exceptions.
package model

import (
	"github.com/gomlx/exceptions"

	"github.com/SuFu123/ELL/types"
)

// Model is an ordered collection of nodes forming a DAG.
//
// Nodes can only be added after the nodes producing their inputs, so the
// insertion order is a natural topological ordering of the graph. The compiler
// relies on this invariance: Nodes() is the authoritative visitation order,
// including how ties among independent nodes are broken.
type Model struct {
	nodes   []Node
	members types.Set[Node]
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{members: types.MakeSet[Node]()}
}

// AddNode appends a node to the model.
//
// It panics if the node was already added, or if any of its input ports
// references an output port of a node not yet in the model -- that would break
// the dependency ordering of Nodes().
func (m *Model) AddNode(node Node) {
	if node == nil {
		exceptions.Panicf("model.AddNode: nil node")
	}
	if m.members.Has(node) {
		exceptions.Panicf("model.AddNode: node %q added twice", node.Name())
	}
	for _, input := range node.InputPorts() {
		upstream := input.Connected()
		if upstream == nil {
			exceptions.Panicf("model.AddNode: node %q has an unconnected input port", node.Name())
		}
		if !m.members.Has(upstream.Node()) {
			exceptions.Panicf("model.AddNode: node %q consumes port %q of node %q, which is not in the model yet",
				node.Name(), upstream.Name(), upstream.Node().Name())
		}
	}
	m.nodes = append(m.nodes, node)
	m.members.Insert(node)
}

// Nodes returns the model's nodes in their stable, dependency-respecting order.
// The returned slice is owned by the model and must not be modified.
func (m *Model) Nodes() []Node {
	return m.nodes
}

// NumNodes returns the number of nodes in the model.
func (m *Model) NumNodes() int {
	return len(m.nodes)
}

// Contains reports whether the node was added to this model.
func (m *Model) Contains(node Node) bool {
	return m.members.Has(node)
}
