package irtext

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/google/uuid"
	"github.com/x448/float16"
	"k8s.io/klog/v2"

	"github.com/SuFu123/ELL/backends"
	"github.com/SuFu123/ELL/model"
	"github.com/SuFu123/ELL/types"
)

// Module is the irtext module emitter: it owns the declared variables and the
// functions being emitted, each function an ordered list of regions (basic
// blocks) of instructions.
type Module struct {
	id      string
	name    string
	backend *Backend

	globals     []*backends.Variable
	pendingArgs []*backends.Variable

	allocated      types.Set[*backends.Variable]
	allocatedBytes uint64

	numLocals  int
	numGlobals int

	functions []*Function
	current   *Function
}

// Function is one compiled map function: its signature and its regions.
type Function struct {
	name    string
	args    backends.NamedVariableTypeList
	argVars []*backends.Variable

	regions []*Region
	byNode  map[model.Node]*Region
	current *Region
	done    bool
}

// Region is a basic block: a contiguous run of instructions attributed to one
// or more nodes.
type Region struct {
	label        string
	nodes        []model.Node
	instructions []instruction
}

type instruction struct {
	op       string
	dst      *backends.Variable
	operands []*backends.Variable
	values   []float64
}

func newModule(name string, backend *Backend) *Module {
	return &Module{
		id:        uuid.NewString(),
		name:      name,
		backend:   backend,
		allocated: types.MakeSet[*backends.Variable](),
	}
}

// Compile-time check that Module implements backends.ModuleEmitter.
var _ backends.ModuleEmitter = (*Module)(nil)

// Name implements backends.ModuleEmitter.
func (m *Module) Name() string { return m.name }

// Id returns the unique id assigned to this module.
func (m *Module) Id() string { return m.id }

// Functions returns the emitted functions, in emission order.
func (m *Module) Functions() []*Function { return m.functions }

// AllocatedBytes returns the total storage registered through AllocateVariable.
func (m *Module) AllocatedBytes() uint64 { return m.allocatedBytes }

func (m *Module) checkDType(dtype dtypes.DType) {
	if !dtype.IsFloat() && !dtype.IsInt() {
		exceptions.Panicf("irtext: unsupported dtype %s", dtype)
	}
}

// AddVectorVariable implements backends.ModuleEmitter.
func (m *Module) AddVectorVariable(scope backends.VariableScope, dtype dtypes.DType, size int) *backends.Variable {
	m.checkDType(dtype)
	v := backends.NewVectorVariable(scope, dtype, size, m.nextName(scope))
	m.globals = append(m.globals, v)
	return v
}

// AddInitializedVectorVariable implements backends.ModuleEmitter. For Float16
// variables the initializer is rounded through the half-precision
// representation, so the emitted literal matches what the storage can hold.
func (m *Module) AddInitializedVectorVariable(scope backends.VariableScope, dtype dtypes.DType, size int, init []float64) *backends.Variable {
	m.checkDType(dtype)
	if dtype == dtypes.Float16 {
		rounded := make([]float64, len(init))
		for i, value := range init {
			rounded[i] = float64(float16.Fromfloat32(float32(value)).Float32())
		}
		init = rounded
	}
	v := backends.NewInitializedVectorVariable(scope, dtype, size, m.nextName(scope), init)
	m.globals = append(m.globals, v)
	return v
}

// AddArgumentVariable implements backends.ModuleEmitter. Argument variables
// belong to the next function opened by BeginMapFunction.
func (m *Module) AddArgumentVariable(scope backends.VariableScope, name string, dtype dtypes.DType, size int) *backends.Variable {
	if scope != backends.ScopeInput && scope != backends.ScopeOutput {
		exceptions.Panicf("irtext: argument variable %q must have input or output scope, got %s", name, scope)
	}
	m.checkDType(dtype)
	v := backends.NewVectorVariable(scope, dtype, size, "%"+name)
	m.pendingArgs = append(m.pendingArgs, v)
	return v
}

func (m *Module) nextName(scope backends.VariableScope) string {
	switch scope {
	case backends.ScopeLocal:
		name := fmt.Sprintf("%%t%d", m.numLocals)
		m.numLocals++
		return name
	case backends.ScopeGlobal:
		name := fmt.Sprintf("@g%d", m.numGlobals)
		m.numGlobals++
		return name
	}
	exceptions.Panicf("irtext: cannot name variable of scope %s here", scope)
	return ""
}

// AllocateVariable implements backends.ModuleEmitter: it registers the variable
// for storage and tallies its footprint. Allocating twice is a no-op.
func (m *Module) AllocateVariable(v *backends.Variable) {
	if m.allocated.Has(v) {
		return
	}
	m.allocated.Insert(v)
	m.allocatedBytes += uint64(v.Memory())
	klog.V(2).Infof("irtext: allocated %s (%s)", v, humanize.Bytes(uint64(v.Memory())))
}

// BeginMapFunction implements backends.ModuleEmitter. The argument variables
// created since the last function become this function's argument list.
func (m *Module) BeginMapFunction(name string, args backends.NamedVariableTypeList) {
	if m.current != nil {
		exceptions.Panicf("irtext: BeginMapFunction(%q) while function %q is still open", name, m.current.name)
	}
	if len(m.pendingArgs) != len(args) {
		exceptions.Panicf("irtext: BeginMapFunction(%q) got %d argument descriptors but %d argument variables",
			name, len(args), len(m.pendingArgs))
	}
	f := &Function{
		name:    name,
		args:    args,
		argVars: m.pendingArgs,
		byNode:  make(map[model.Node]*Region),
	}
	m.pendingArgs = nil
	m.functions = append(m.functions, f)
	m.current = f
}

// EndMapFunction implements backends.ModuleEmitter.
func (m *Module) EndMapFunction() {
	f := m.mustCurrent()
	f.current = nil
	f.done = true
	m.current = nil
	klog.V(1).Infof("irtext: function %q: %d regions, %s of variable storage",
		f.name, len(f.regions), humanize.Bytes(m.allocatedBytes))
}

func (m *Module) mustCurrent() *Function {
	if m.current == nil {
		exceptions.Panicf("irtext: no function is open; missing BeginMapFunction?")
	}
	return m.current
}

//
// Region management (backends.RegionManager, on the Backend).
//

// NewNodeRegion implements backends.RegionManager: it opens a fresh block
// attributed to node, closing the previously open one.
func (b *Backend) NewNodeRegion(node model.Node) {
	m := b.module
	f := m.mustCurrent()
	region := &Region{
		label: fmt.Sprintf("b%d", len(f.regions)),
		nodes: []model.Node{node},
	}
	f.regions = append(f.regions, region)
	f.byNode[node] = region
	f.current = region
}

// TryMergeNodeRegion implements backends.RegionManager: the just-opened region
// of node is folded into the preceding block while that block stays under the
// configured instruction budget.
func (b *Backend) TryMergeNodeRegion(node model.Node) bool {
	m := b.module
	f := m.mustCurrent()
	if len(f.regions) < 2 {
		return false
	}
	cur := f.regions[len(f.regions)-1]
	if f.byNode[node] != cur || len(cur.instructions) != 0 {
		// Only a freshly opened, still-empty region can be folded.
		return false
	}
	prev := f.regions[len(f.regions)-2]
	if b.maxRegionInstructions == 0 || len(prev.instructions) >= b.maxRegionInstructions {
		return false
	}
	f.regions = f.regions[:len(f.regions)-1]
	prev.nodes = append(prev.nodes, node)
	f.byNode[node] = prev
	f.current = prev
	return true
}

// TryMergeNodeRegions implements backends.RegionManager: post-hoc fusion of two
// already-materialized regions. It succeeds only if src's region immediately
// follows dest's and the combined block fits the instruction budget.
func (b *Backend) TryMergeNodeRegions(dest, src model.Node) bool {
	m := b.module
	f := m.mustCurrent()
	destRegion, destOk := f.byNode[dest]
	srcRegion, srcOk := f.byNode[src]
	if !destOk || !srcOk {
		return false
	}
	if destRegion == srcRegion {
		return true // Already merged.
	}
	destIdx, srcIdx := -1, -1
	for i, r := range f.regions {
		if r == destRegion {
			destIdx = i
		}
		if r == srcRegion {
			srcIdx = i
		}
	}
	if destIdx < 0 || srcIdx != destIdx+1 {
		return false
	}
	merged := len(destRegion.instructions) + len(srcRegion.instructions)
	if b.maxRegionInstructions == 0 || merged > b.maxRegionInstructions {
		return false
	}
	destRegion.instructions = append(destRegion.instructions, srcRegion.instructions...)
	destRegion.nodes = append(destRegion.nodes, srcRegion.nodes...)
	for _, n := range srcRegion.nodes {
		f.byNode[n] = destRegion
	}
	f.regions = append(f.regions[:srcIdx], f.regions[srcIdx+1:]...)
	if f.current == srcRegion {
		f.current = destRegion
	}
	return true
}

//
// Instruction emission (backends.EmitterOps).
//

func (m *Module) emit(inst instruction) {
	f := m.mustCurrent()
	if f.current == nil {
		exceptions.Panicf("irtext: emission outside any region; missing NewNodeRegion?")
	}
	f.current.instructions = append(f.current.instructions, inst)
}

func checkSameSize(op string, vars ...*backends.Variable) {
	for _, v := range vars {
		if v == nil {
			exceptions.Panicf("irtext: %s with nil variable", op)
		}
	}
	for _, v := range vars[1:] {
		if v.Size() != vars[0].Size() {
			exceptions.Panicf("irtext: %s size mismatch: %s vs %s", op, vars[0], v)
		}
	}
}

func checkScalar(op string, v *backends.Variable) {
	if v == nil || v.Size() != 1 {
		exceptions.Panicf("irtext: %s needs a single-element variable, got %s", op, v)
	}
}

// EmitCopy implements backends.EmitterOps.
func (m *Module) EmitCopy(dst, src *backends.Variable) {
	checkSameSize("copy", dst, src)
	m.emit(instruction{op: "copy", dst: dst, operands: []*backends.Variable{src}})
}

// EmitLoadConstant implements backends.EmitterOps.
func (m *Module) EmitLoadConstant(dst *backends.Variable, values []float64) {
	if len(values) != 1 && len(values) != dst.Size() {
		exceptions.Panicf("irtext: load_const into %s with %d values", dst, len(values))
	}
	m.emit(instruction{op: "load_const", dst: dst, values: values})
}

// EmitUnaryOp implements backends.EmitterOps.
func (m *Module) EmitUnaryOp(op backends.UnaryOpType, dst, operand *backends.Variable) {
	checkSameSize(op.String(), dst, operand)
	m.emit(instruction{op: op.String(), dst: dst, operands: []*backends.Variable{operand}})
}

// EmitBinaryOp implements backends.EmitterOps.
func (m *Module) EmitBinaryOp(op backends.BinaryOpType, dst, lhs, rhs *backends.Variable) {
	checkSameSize(op.String(), dst, lhs, rhs)
	m.emit(instruction{op: op.String(), dst: dst, operands: []*backends.Variable{lhs, rhs}})
}

// EmitDotProduct implements backends.EmitterOps.
func (m *Module) EmitDotProduct(dst, lhs, rhs *backends.Variable) {
	checkScalar("dot", dst)
	checkSameSize("dot", lhs, rhs)
	m.emit(instruction{op: "dot", dst: dst, operands: []*backends.Variable{lhs, rhs}})
}

// EmitReduceSum implements backends.EmitterOps.
func (m *Module) EmitReduceSum(dst, src *backends.Variable) {
	checkScalar("reduce_sum", dst)
	if src == nil {
		exceptions.Panicf("irtext: reduce_sum with nil source")
	}
	m.emit(instruction{op: "reduce_sum", dst: dst, operands: []*backends.Variable{src}})
}

// EmitBroadcast implements backends.EmitterOps.
func (m *Module) EmitBroadcast(dst, src *backends.Variable) {
	checkScalar("broadcast", src)
	if dst == nil {
		exceptions.Panicf("irtext: broadcast with nil destination")
	}
	m.emit(instruction{op: "broadcast", dst: dst, operands: []*backends.Variable{src}})
}
