package backends

import "github.com/gomlx/gopjrt/dtypes"

// ModuleEmitter owns the variables and the instruction stream of the module
// being compiled. The map compiler calls the variable and function methods;
// node lowering calls the Emit* methods.
//
// All methods throw (panic with an error) on failure; failures propagate
// unchanged up through node lowering into the compiler's CompileMap boundary.
type ModuleEmitter interface {
	// Name of the module being emitted.
	Name() string

	// AddVectorVariable creates a variable of the given scope, scalar type and
	// element count, without an initial value. The emitter assigns the name.
	AddVectorVariable(scope VariableScope, dtype dtypes.DType, size int) *Variable

	// AddInitializedVectorVariable is AddVectorVariable with an explicit initial
	// value: one element (broadcast) or size elements. An all-zero initializer
	// is still an initializer.
	AddInitializedVectorVariable(scope VariableScope, dtype dtypes.DType, size int, init []float64) *Variable

	// AddArgumentVariable creates a function argument (ScopeInput) or result
	// (ScopeOutput) variable carrying the given binding name.
	AddArgumentVariable(scope VariableScope, name string, dtype dtypes.DType, size int) *Variable

	// AllocateVariable registers that the variable must be allocated storage.
	// The emitter decides physical placement. Allocating twice is a no-op.
	AllocateVariable(v *Variable)

	// BeginMapFunction opens the function being compiled, emitting its prologue
	// from the ordered argument list.
	BeginMapFunction(name string, args NamedVariableTypeList)

	// EndMapFunction finalizes the currently open function.
	EndMapFunction()

	// EmitterOps is the fixed op-emission surface used by node lowering.
	EmitterOps
}

// EmitterOps is the instruction set node lowering can emit through. It is kept
// deliberately small: the compiler orchestrates, nodes pick ops, and the
// backend decides how each op is realized.
type EmitterOps interface {
	// EmitCopy copies src into dst. Sizes must match.
	EmitCopy(dst, src *Variable)

	// EmitLoadConstant writes the given values into dst: one value (broadcast)
	// or dst.Size() values.
	EmitLoadConstant(dst *Variable, values []float64)

	// EmitUnaryOp applies op elementwise to operand, writing dst.
	EmitUnaryOp(op UnaryOpType, dst, operand *Variable)

	// EmitBinaryOp applies op elementwise to lhs and rhs, writing dst.
	EmitBinaryOp(op BinaryOpType, dst, lhs, rhs *Variable)

	// EmitDotProduct writes the inner product of lhs and rhs into the
	// single-element dst.
	EmitDotProduct(dst, lhs, rhs *Variable)

	// EmitReduceSum writes the sum of src's elements into the single-element dst.
	EmitReduceSum(dst, src *Variable)

	// EmitBroadcast replicates the single-element src over all of dst.
	EmitBroadcast(dst, src *Variable)
}
