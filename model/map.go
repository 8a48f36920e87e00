package model

import (
	"github.com/gomlx/exceptions"

	"github.com/SuFu123/ELL/types"
)

// PortBinding names one output port of a model for exposure as a compiled
// function argument or result.
type PortBinding struct {
	Name string
	Port *OutputPort
}

// Map binds a subset of a model's ports to the argument and result list of the
// function being compiled. The binding order defines the function signature.
// A Map owns no storage; it only references the underlying model.
//
// A Map with no inputs or no outputs is constructible -- the compiler rejects
// it with a configuration fault at CompileMap time.
type Map struct {
	model   *Model
	inputs  []PortBinding
	outputs []PortBinding
}

// NewMap creates a map over the given model.
//
// It panics if a binding name is empty or repeated within inputs or outputs, or
// if a bound port belongs to a node outside the model.
func NewMap(m *Model, inputs, outputs []PortBinding) *Map {
	if m == nil {
		exceptions.Panicf("model.NewMap: nil model")
	}
	checkBindings(m, "input", inputs)
	checkBindings(m, "output", outputs)
	return &Map{model: m, inputs: inputs, outputs: outputs}
}

func checkBindings(m *Model, kind string, bindings []PortBinding) {
	names := types.MakeSet[string](len(bindings))
	ports := types.MakeSet[*OutputPort](len(bindings))
	for _, b := range bindings {
		if b.Name == "" {
			exceptions.Panicf("model.NewMap: %s binding with empty name", kind)
		}
		if b.Port == nil {
			exceptions.Panicf("model.NewMap: %s binding %q has nil port", kind, b.Name)
		}
		if names.Has(b.Name) {
			exceptions.Panicf("model.NewMap: repeated %s binding name %q", kind, b.Name)
		}
		if ports.Has(b.Port) {
			exceptions.Panicf("model.NewMap: port %s bound twice as %s", b.Port, kind)
		}
		if !m.Contains(b.Port.Node()) {
			exceptions.Panicf("model.NewMap: %s binding %q references port %s of a node outside the model",
				kind, b.Name, b.Port)
		}
		names.Insert(b.Name)
		ports.Insert(b.Port)
	}
}

// Model returns the underlying model.
func (mp *Map) Model() *Model { return mp.model }

// Inputs returns the declared input bindings, in argument order.
func (mp *Map) Inputs() []PortBinding { return mp.inputs }

// Outputs returns the declared output bindings, in result order.
func (mp *Map) Outputs() []PortBinding { return mp.outputs }
