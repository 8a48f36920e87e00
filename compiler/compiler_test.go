package compiler_test

import (
	"fmt"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/require"

	"github.com/SuFu123/ELL/backends"
	"github.com/SuFu123/ELL/compiler"
	"github.com/SuFu123/ELL/model"
	"github.com/SuFu123/ELL/nodes"
	"github.com/SuFu123/ELL/types/sweep"
)

// fakeEmitter records the emitter calls it receives, enough to observe the
// compiler's orchestration without a real backend.
type fakeEmitter struct {
	log         []string
	numVars     int
	functionsOn int
}

var _ backends.ModuleEmitter = (*fakeEmitter)(nil)

func (e *fakeEmitter) Name() string { return "fake" }

func (e *fakeEmitter) newVar(scope backends.VariableScope, dtype dtypes.DType, size int, init []float64) *backends.Variable {
	name := fmt.Sprintf("v%d", e.numVars)
	e.numVars++
	if init != nil {
		return backends.NewInitializedVectorVariable(scope, dtype, size, name, init)
	}
	return backends.NewVectorVariable(scope, dtype, size, name)
}

func (e *fakeEmitter) AddVectorVariable(scope backends.VariableScope, dtype dtypes.DType, size int) *backends.Variable {
	return e.newVar(scope, dtype, size, nil)
}

func (e *fakeEmitter) AddInitializedVectorVariable(scope backends.VariableScope, dtype dtypes.DType, size int, init []float64) *backends.Variable {
	return e.newVar(scope, dtype, size, init)
}

func (e *fakeEmitter) AddArgumentVariable(scope backends.VariableScope, name string, dtype dtypes.DType, size int) *backends.Variable {
	e.log = append(e.log, fmt.Sprintf("arg %s %s", scope, name))
	return e.newVar(scope, dtype, size, nil)
}

func (e *fakeEmitter) AllocateVariable(v *backends.Variable) {
	e.log = append(e.log, "alloc "+v.Name())
}

func (e *fakeEmitter) BeginMapFunction(name string, args backends.NamedVariableTypeList) {
	e.functionsOn++
	e.log = append(e.log, fmt.Sprintf("begin %s/%d", name, len(args)))
}

func (e *fakeEmitter) EndMapFunction() {
	e.functionsOn--
	e.log = append(e.log, "end")
}

func (e *fakeEmitter) EmitCopy(dst, src *backends.Variable) {
	e.log = append(e.log, fmt.Sprintf("copy %s<-%s", dst.Name(), src.Name()))
}

func (e *fakeEmitter) EmitLoadConstant(dst *backends.Variable, values []float64) {
	e.log = append(e.log, "load_const "+dst.Name())
}

func (e *fakeEmitter) EmitUnaryOp(op backends.UnaryOpType, dst, operand *backends.Variable) {
	e.log = append(e.log, fmt.Sprintf("%s %s<-%s", op, dst.Name(), operand.Name()))
}

func (e *fakeEmitter) EmitBinaryOp(op backends.BinaryOpType, dst, lhs, rhs *backends.Variable) {
	e.log = append(e.log, fmt.Sprintf("%s %s<-%s,%s", op, dst.Name(), lhs.Name(), rhs.Name()))
}

func (e *fakeEmitter) EmitDotProduct(dst, lhs, rhs *backends.Variable) {
	e.log = append(e.log, fmt.Sprintf("dot %s<-%s,%s", dst.Name(), lhs.Name(), rhs.Name()))
}

func (e *fakeEmitter) EmitReduceSum(dst, src *backends.Variable) {
	e.log = append(e.log, fmt.Sprintf("reduce_sum %s<-%s", dst.Name(), src.Name()))
}

func (e *fakeEmitter) EmitBroadcast(dst, src *backends.Variable) {
	e.log = append(e.log, fmt.Sprintf("broadcast %s<-%s", dst.Name(), src.Name()))
}

// fakeBackend declines every region merge, the minimal valid policy.
type fakeBackend struct {
	backends.NoRegionMerging
	emitter fakeEmitter
	regions []string
}

var _ backends.Backend = (*fakeBackend)(nil)

func (b *fakeBackend) Name() string                   { return "fake" }
func (b *fakeBackend) Description() string            { return "recording backend for tests" }
func (b *fakeBackend) Module() backends.ModuleEmitter { return &b.emitter }
func (b *fakeBackend) Finalize()                      {}
func (b *fakeBackend) NewNodeRegion(node model.Node) {
	b.regions = append(b.regions, node.Name())
}

// recordingHooks collects the hook call sequence.
type recordingHooks struct {
	events []string
}

func (h *recordingHooks) OnBeginCompileModel(m *model.Model) { h.events = append(h.events, "begin-model") }
func (h *recordingHooks) OnEndCompileModel(m *model.Model)   { h.events = append(h.events, "end-model") }
func (h *recordingHooks) OnBeginCompileNode(node model.Node) { h.events = append(h.events, "begin "+node.Name()) }
func (h *recordingHooks) OnEndCompileNode(node model.Node)   { h.events = append(h.events, "end "+node.Name()) }

// stubNode implements model.Node but not compiler.Compilable.
type stubNode struct{ name string }

func (n *stubNode) Name() string                     { return n.name }
func (n *stubNode) InputPorts() []*model.InputPort   { return nil }
func (n *stubNode) OutputPorts() []*model.OutputPort { return nil }

func newTestCompiler() (*compiler.MapCompiler, *fakeBackend) {
	backend := &fakeBackend{}
	return compiler.NewMapCompiler(backend, compiler.DefaultOptions()), backend
}

func TestRegistryIdempotentAllocation(t *testing.T) {
	c, _ := newTestCompiler()
	n := nodes.NewInput("x", dtypes.Float32, 3)
	port := n.Output()

	v := c.GetOrAllocatePortVariable(port)
	require.NotNil(t, v)
	require.Equal(t, 1, c.NumAllocatedVariables())

	// Repeated requests at the same depth return the identical variable and
	// allocate nothing new.
	require.Same(t, v, c.GetOrAllocatePortVariable(port))
	require.Same(t, v, c.GetVariableForPort(port))
	require.Equal(t, 1, c.NumAllocatedVariables())

	// Forcing a second allocation for the same port in the same frame is a
	// duplicate-binding fault.
	require.Panics(t, func() { c.AllocatePortVariable(port) })
}

func TestRegistryShadowing(t *testing.T) {
	c, backend := newTestCompiler()
	port := nodes.NewInput("x", dtypes.Float32, 2).Output()

	outer := c.AllocatePortVariable(port)
	require.Equal(t, 0, c.ScopeDepth())

	c.PushScope()
	require.Equal(t, 1, c.ScopeDepth())
	// The outer binding is visible through the new frame.
	require.Same(t, outer, c.GetVariableForPort(port))
	require.Same(t, outer, c.GetOrAllocatePortVariable(port))

	// Rebinding in the inner frame shadows the outer binding.
	inner := backend.Module().AddVectorVariable(backends.ScopeLocal, dtypes.Float32, 2)
	c.SetVariableForPort(port, inner)
	require.Same(t, inner, c.GetVariableForPort(port))

	c.PopScope()
	// Popping reverts to the outer binding.
	require.Same(t, outer, c.GetVariableForPort(port))
	require.Equal(t, 0, c.ScopeDepth())
}

func TestRegistryUnbalancedPop(t *testing.T) {
	c, _ := newTestCompiler()
	require.Panics(t, func() { c.PopScope() })

	c.PushScope()
	c.PopScope()
	require.Panics(t, func() { c.PopScope() })
}

func TestCompileInScopeRestoresDepth(t *testing.T) {
	c, _ := newTestCompiler()
	c.CompileInScope(func() {
		require.Equal(t, 1, c.ScopeDepth())
	})
	require.Equal(t, 0, c.ScopeDepth())

	// The frame is popped even when fn throws.
	require.Panics(t, func() {
		c.CompileInScope(func() { panic("boom") })
	})
	require.Equal(t, 0, c.ScopeDepth())
}

func TestRegistryWithInit(t *testing.T) {
	c, _ := newTestCompiler()
	port := nodes.NewInput("x", dtypes.Float32, 4).Output()

	v := c.GetOrAllocatePortVariableWithInit(port, 0)
	init, ok := v.Initializer()
	require.True(t, ok, "an explicit zero seed still counts as an initializer")
	require.Equal(t, []float64{0, 0, 0, 0}, init)

	// The seed is ignored once the variable exists.
	require.Same(t, v, c.GetOrAllocatePortVariableWithInit(port, 7))
}

func TestMalformedPortFault(t *testing.T) {
	c, _ := newTestCompiler()
	n := &stubNode{name: "bad"}
	port := model.NewOutputPort(n, "output", dtypes.Float32, 0)
	require.Panics(t, func() { c.AllocatePortVariable(port) })
}

func buildChainMap() (*model.Map, []string) {
	in := nodes.NewInput("x", dtypes.Float32, 3)
	abs := nodes.NewUnaryOp("mag", backends.UnaryAbs, in.Output())
	out := nodes.NewOutput("y", abs.Output())
	m := model.NewModel()
	m.AddNode(in)
	m.AddNode(abs)
	m.AddNode(out)
	return model.NewMap(m,
		[]model.PortBinding{{Name: "x", Port: in.Output()}},
		[]model.PortBinding{{Name: "y", Port: out.Output()}},
	), []string{"x", "mag", "y"}
}

func TestCompileMapChain(t *testing.T) {
	m, order := buildChainMap()
	hooks := &recordingHooks{}
	backend := &fakeBackend{}
	c := compiler.NewMapCompiler(backend, compiler.Options{FuseRegions: true, Hooks: hooks})
	require.NoError(t, c.CompileMap(m, "predict"))

	// One region per node, in the model's stable order.
	require.Equal(t, order, backend.regions)

	// Two arguments plus the one intermediate.
	require.Equal(t, 3, c.NumAllocatedVariables())

	require.Equal(t, []string{
		"begin-model",
		"begin x", "end x",
		"begin mag", "end mag",
		"begin y", "end y",
		"end-model",
	}, hooks.events)

	// Function scaffolding surrounded the node emission.
	require.Equal(t, "begin predict/2", backend.emitter.log[2])
	require.Equal(t, "end", backend.emitter.log[len(backend.emitter.log)-1])
	require.Equal(t, 0, backend.emitter.functionsOn)
}

func TestCompileMapFanOut(t *testing.T) {
	// Two consumers of one port must share a single variable.
	in := nodes.NewInput("x", dtypes.Float32, 2)
	neg := nodes.NewUnaryOp("neg", backends.UnaryNeg, in.Output())
	sum := nodes.NewBinaryOp("sum", backends.BinaryAdd, neg.Output(), neg.Output())
	out := nodes.NewOutput("y", sum.Output())
	m := model.NewModel()
	m.AddNode(in)
	m.AddNode(neg)
	m.AddNode(sum)
	m.AddNode(out)
	mp := model.NewMap(m,
		[]model.PortBinding{{Name: "x", Port: in.Output()}},
		[]model.PortBinding{{Name: "y", Port: out.Output()}})

	c, _ := newTestCompiler()
	require.NoError(t, c.CompileMap(mp, "f"))
	// x and y arguments plus neg.output and sum.output: sharing means no
	// second variable for neg's port.
	require.Equal(t, 4, c.NumAllocatedVariables())
}

func TestCompileMapConfigurationFaults(t *testing.T) {
	in := nodes.NewInput("x", dtypes.Float32, 2)
	out := nodes.NewOutput("y", in.Output())
	m := model.NewModel()
	m.AddNode(in)
	m.AddNode(out)
	inputs := []model.PortBinding{{Name: "x", Port: in.Output()}}
	outputs := []model.PortBinding{{Name: "y", Port: out.Output()}}

	c, _ := newTestCompiler()
	err := c.CompileMap(model.NewMap(m, nil, outputs), "f")
	require.ErrorContains(t, err, "must be non-empty")

	c, _ = newTestCompiler()
	err = c.CompileMap(model.NewMap(m, inputs, nil), "f")
	require.ErrorContains(t, err, "must be non-empty")

	c, _ = newTestCompiler()
	err = c.CompileMap(nil, "f")
	require.ErrorContains(t, err, "nil map")
}

func TestCompileMapDisjointBindings(t *testing.T) {
	in := nodes.NewInput("x", dtypes.Float32, 2)
	out := nodes.NewOutput("y", in.Output())
	m := model.NewModel()
	m.AddNode(in)
	m.AddNode(out)
	mp := model.NewMap(m,
		[]model.PortBinding{{Name: "x", Port: in.Output()}},
		[]model.PortBinding{{Name: "also-x", Port: in.Output()}})

	c, _ := newTestCompiler()
	err := c.CompileMap(mp, "f")
	require.ErrorContains(t, err, "both as map input and map output")
}

func TestCompileMapSingleUse(t *testing.T) {
	m, _ := buildChainMap()
	c, _ := newTestCompiler()
	require.NoError(t, c.CompileMap(m, "f"))
	err := c.CompileMap(m, "g")
	require.ErrorContains(t, err, "single-use")
}

func TestCompileMapNonCompilableNode(t *testing.T) {
	in := nodes.NewInput("x", dtypes.Float32, 2)
	stub := &stubNode{name: "opaque"}
	out := nodes.NewOutput("y", in.Output())
	m := model.NewModel()
	m.AddNode(in)
	m.AddNode(stub)
	m.AddNode(out)
	mp := model.NewMap(m,
		[]model.PortBinding{{Name: "x", Port: in.Output()}},
		[]model.PortBinding{{Name: "y", Port: out.Output()}})

	c, _ := newTestCompiler()
	err := c.CompileMap(mp, "f")
	require.ErrorContains(t, err, "does not implement")
}

func TestCompileMapErrorMentionsFunction(t *testing.T) {
	c, _ := newTestCompiler()
	err := c.CompileMap(nil, "scorer")
	require.ErrorContains(t, err, `compiling map to function "scorer"`)
}

func TestNewMapCompilerNilBackend(t *testing.T) {
	require.Panics(t, func() { compiler.NewMapCompiler(nil, compiler.DefaultOptions()) })
}

func TestDeterministicTraversal(t *testing.T) {
	// Compiling equal models twice visits the nodes in the same order and
	// allocates the same number of variables.
	var orders [][]string
	var counts []int
	for range 2 {
		m, _ := buildChainMap()
		hooks := &recordingHooks{}
		c := compiler.NewMapCompiler(&fakeBackend{}, compiler.Options{Hooks: hooks})
		require.NoError(t, c.CompileMap(m, "f"))
		orders = append(orders, hooks.events)
		counts = append(counts, c.NumAllocatedVariables())
	}
	require.Equal(t, orders[0], orders[1])
	require.Equal(t, counts[0], counts[1])
}

func TestOptionsSweep(t *testing.T) {
	// Every combination of options must compile the chain successfully, with
	// the same variable count: region fusion never changes allocation.
	s := sweep.New[compiler.Options]()
	sweep.Axis(s, []bool{false, true}, func(o *compiler.Options, v bool) { o.FuseRegions = v })
	sweep.Axis(s, []compiler.Hooks{nil, compiler.NopHooks{}},
		func(o *compiler.Options, v compiler.Hooks) { o.Hooks = v })
	require.Equal(t, 4, s.Size())
	for _, options := range s.All() {
		m, _ := buildChainMap()
		c := compiler.NewMapCompiler(&fakeBackend{}, options)
		require.NoError(t, c.CompileMap(m, "f"))
		require.Equal(t, 3, c.NumAllocatedVariables())
	}
}

// scopeLeakNode opens a frame during lowering and never closes it.
type scopeLeakNode struct {
	name string
	out  *model.OutputPort
}

var _ compiler.Compilable = (*scopeLeakNode)(nil)

func newScopeLeakNode(name string) *scopeLeakNode {
	n := &scopeLeakNode{name: name}
	n.out = model.NewOutputPort(n, "output", dtypes.Float32, 1)
	return n
}

func (n *scopeLeakNode) Name() string                     { return n.name }
func (n *scopeLeakNode) InputPorts() []*model.InputPort   { return nil }
func (n *scopeLeakNode) OutputPorts() []*model.OutputPort { return []*model.OutputPort{n.out} }

func (n *scopeLeakNode) CompileNode(c *compiler.MapCompiler) {
	c.PushScope()
}

func TestCompileMapScopeLeakFault(t *testing.T) {
	// A node that leaves a frame open must fail the whole compilation: frames
	// still open at the end of CompileMap are the other half of the
	// unbalanced-scope fault, besides the extra PopScope.
	in := nodes.NewInput("x", dtypes.Float32, 2)
	leak := newScopeLeakNode("leak")
	out := nodes.NewOutput("y", in.Output())
	m := model.NewModel()
	m.AddNode(in)
	m.AddNode(leak)
	m.AddNode(out)
	mp := model.NewMap(m,
		[]model.PortBinding{{Name: "x", Port: in.Output()}},
		[]model.PortBinding{{Name: "y", Port: out.Output()}})

	c, _ := newTestCompiler()
	err := c.CompileMap(mp, "f")
	require.ErrorContains(t, err, "unbalanced scopes")
	require.ErrorContains(t, err, "1 frames still open")
}
