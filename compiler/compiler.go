// Package compiler turns a model.Map into an executable function on a
// backends.Backend.
//
// MapCompiler is the orchestrator: it binds the map's declared ports to
// function-argument variables, walks the model's nodes in dependency order, and
// for each node opens a code region, offers the backend a merge with the
// previous region, and dispatches to the node's own lowering (the Compilable
// contract). Shared bookkeeping -- the scoped port-to-variable registry -- is
// owned by the compiler instance, never global, so independent compilations
// cannot interfere.
//
// Faults inside the compile path are thrown (panic) with package
// github.com/gomlx/exceptions and converted to an error at the CompileMap
// boundary. Any fault aborts the whole call: a compiled function with missing
// nodes is meaningless, so there is no per-node recovery.
package compiler

import (
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/SuFu123/ELL/backends"
	"github.com/SuFu123/ELL/model"
	"github.com/SuFu123/ELL/types"
)

// Compilable is implemented by node types that know how to lower themselves.
// The compiler never branches on concrete node types: it dispatches here, and
// the node requests variables through the registry and emits instructions
// through the backend's module emitter.
type Compilable interface {
	model.Node

	// CompileNode emits the node's computation. It throws (panics) on fault.
	CompileNode(c *MapCompiler)
}

// MapCompiler compiles one map into one function. It is single-threaded and
// single-use: after a CompileMap call, successful or not, the instance should
// be discarded (there is no rollback of partially allocated variables).
type MapCompiler struct {
	backend backends.Backend
	options Options
	hooks   Hooks

	// portToVar maps output ports to their assigned variables, for all ports in
	// the model. Stored as a stack of frames, the top of the stack being the
	// innermost scope.
	portToVar []map[*model.OutputPort]*backends.Variable

	numAllocated int
	compiled     bool
}

// NewMapCompiler creates a compiler targeting the given backend. A nil Hooks in
// options installs the no-op default.
func NewMapCompiler(backend backends.Backend, options Options) *MapCompiler {
	if backend == nil {
		exceptions.Panicf("compiler.NewMapCompiler: nil backend")
	}
	hooks := options.Hooks
	if hooks == nil {
		hooks = NopHooks{}
	}
	return &MapCompiler{
		backend:   backend,
		options:   options,
		hooks:     hooks,
		portToVar: []map[*model.OutputPort]*backends.Variable{make(map[*model.OutputPort]*backends.Variable)},
	}
}

// Backend returns the backend this compiler emits through; node lowering uses
// it to reach the module emitter.
func (c *MapCompiler) Backend() backends.Backend { return c.backend }

// Options returns the options the compiler was created with.
func (c *MapCompiler) Options() Options { return c.options }

// NumAllocatedVariables returns how many port variables the compiler allocated
// so far. Compiling the same model twice must yield the same count.
func (c *MapCompiler) NumAllocatedVariables() int { return c.numAllocated }

// CompileMap compiles the map into a function with the given name.
//
// On fault it returns an error and leaves no usable compiled function; the
// compiler instance should then be discarded.
func (c *MapCompiler) CompileMap(m *model.Map, functionName string) error {
	err := exceptions.TryCatch[error](func() { c.compileMap(m, functionName) })
	if err != nil {
		return errors.WithMessagef(err, "compiling map to function %q", functionName)
	}
	return nil
}

func (c *MapCompiler) compileMap(m *model.Map, functionName string) {
	if c.compiled {
		exceptions.Panicf("MapCompiler is single-use, and it already compiled a map")
	}
	c.compiled = true
	if m == nil {
		exceptions.Panicf("nil map")
	}
	if len(m.Inputs()) == 0 || len(m.Outputs()) == 0 {
		exceptions.Panicf("map declares %d inputs and %d outputs; both must be non-empty",
			len(m.Inputs()), len(m.Outputs()))
	}
	checkDisjointBindings(m)

	mdl := m.Model()
	klog.V(1).Infof("CompileMap %q: %d nodes, %d inputs, %d outputs",
		functionName, mdl.NumNodes(), len(m.Inputs()), len(m.Outputs()))

	c.hooks.OnBeginCompileModel(mdl)
	args := c.AllocateMapFunctionArguments(m)
	emitter := c.backend.Module()
	emitter.BeginMapFunction(functionName, args)
	c.CompileModelNodes(mdl)
	c.hooks.OnEndCompileModel(mdl)
	emitter.EndMapFunction()

	if depth := len(c.portToVar); depth != 1 {
		exceptions.Panicf("unbalanced scopes: %d frames still open at the end of CompileMap", depth-1)
	}
	klog.V(1).Infof("CompileMap %q: done, %d variables allocated", functionName, c.numAllocated)
}

// checkDisjointBindings rejects a port declared both as map input and output:
// argument binding would otherwise assign it two variables.
func checkDisjointBindings(m *model.Map) {
	inputs := types.MakeSet[*model.OutputPort](len(m.Inputs()))
	for _, b := range m.Inputs() {
		inputs.Insert(b.Port)
	}
	for _, b := range m.Outputs() {
		if inputs.Has(b.Port) {
			exceptions.Panicf("port %s is declared both as map input and map output", b.Port)
		}
	}
}

// CompileModelNodes compiles the model's nodes in their stable dependency
// order, running the per-node protocol for each: hooks, region management and
// lowering dispatch. It is also the path nested compilation takes, see
// CompileInScope.
func (c *MapCompiler) CompileModelNodes(m *model.Model) {
	for _, node := range m.Nodes() {
		c.compileNode(node)
	}
}

func (c *MapCompiler) compileNode(node model.Node) {
	cn, ok := node.(Compilable)
	if !ok {
		exceptions.Panicf("node %q (%T) does not implement compiler.Compilable", node.Name(), node)
	}
	c.hooks.OnBeginCompileNode(node)
	c.backend.NewNodeRegion(node)
	if c.options.FuseRegions {
		if merged := c.backend.TryMergeNodeRegion(node); merged {
			klog.V(2).Infof("node %q merged into previous region", node.Name())
		}
	}
	cn.CompileNode(c)
	c.hooks.OnEndCompileNode(node)
}

// CompileInScope runs fn inside a fresh scope frame, guaranteeing the matching
// PopScope even if fn throws. Nodes that compile a nested model use it to keep
// the nested bindings from leaking into the enclosing scope.
func (c *MapCompiler) CompileInScope(fn func()) {
	c.PushScope()
	defer c.PopScope()
	fn()
}
