package irtext

import (
	"math"

	"github.com/gomlx/exceptions"

	"github.com/SuFu123/ELL/backends"
)

// Execute interprets an emitted function. The inputs map is keyed by the map's
// input binding names; the returned map holds one freshly-allocated slice per
// output binding. All faults -- an unknown function, a missing or mis-sized
// input -- panic, to be caught with exceptions.TryCatch at the caller.
func (m *Module) Execute(functionName string, inputs map[string][]float64) map[string][]float64 {
	var f *Function
	for _, candidate := range m.functions {
		if candidate.name == functionName {
			f = candidate
			break
		}
	}
	if f == nil {
		exceptions.Panicf("irtext: module has no function %q", functionName)
	}
	if !f.done {
		exceptions.Panicf("irtext: function %q was never completed", functionName)
	}

	env := make(map[*backends.Variable][]float64)
	// Globals and locals get zero-valued storage, seeded from their
	// initializer when they carry one.
	for _, v := range m.globals {
		storage := make([]float64, v.Size())
		if init, ok := v.Initializer(); ok {
			copy(storage, init)
		}
		env[v] = storage
	}
	outputs := make(map[string][]float64)
	for i, v := range f.argVars {
		name := f.args[i].Name
		storage := make([]float64, v.Size())
		switch v.Scope() {
		case backends.ScopeInput:
			given, ok := inputs[name]
			if !ok {
				exceptions.Panicf("irtext: missing input %q for function %q", name, functionName)
			}
			if len(given) != v.Size() {
				exceptions.Panicf("irtext: input %q has %d elements, function %q wants %d",
					name, len(given), functionName, v.Size())
			}
			copy(storage, given)
		case backends.ScopeOutput:
			outputs[name] = storage
		}
		env[v] = storage
	}

	for _, region := range f.regions {
		for _, inst := range region.instructions {
			step(env, inst)
		}
	}
	return outputs
}

func step(env map[*backends.Variable][]float64, inst instruction) {
	dst := slot(env, inst.dst)
	switch inst.op {
	case "copy":
		copy(dst, slot(env, inst.operands[0]))
	case "load_const":
		if len(inst.values) == 1 {
			for i := range dst {
				dst[i] = inst.values[0]
			}
		} else {
			copy(dst, inst.values)
		}
	case "dot":
		lhs, rhs := slot(env, inst.operands[0]), slot(env, inst.operands[1])
		var acc float64
		for i := range lhs {
			acc += lhs[i] * rhs[i]
		}
		dst[0] = acc
	case "reduce_sum":
		src := slot(env, inst.operands[0])
		var acc float64
		for _, value := range src {
			acc += value
		}
		dst[0] = acc
	case "broadcast":
		value := slot(env, inst.operands[0])[0]
		for i := range dst {
			dst[i] = value
		}
	default:
		if fn, ok := unaryFns[inst.op]; ok {
			src := slot(env, inst.operands[0])
			for i := range dst {
				dst[i] = fn(src[i])
			}
			return
		}
		if fn, ok := binaryFns[inst.op]; ok {
			lhs, rhs := slot(env, inst.operands[0]), slot(env, inst.operands[1])
			for i := range dst {
				dst[i] = fn(lhs[i], rhs[i])
			}
			return
		}
		exceptions.Panicf("irtext: cannot interpret instruction %q", inst.op)
	}
}

func slot(env map[*backends.Variable][]float64, v *backends.Variable) []float64 {
	storage, ok := env[v]
	if !ok {
		exceptions.Panicf("irtext: instruction references unallocated variable %s", v)
	}
	return storage
}

var unaryFns = map[string]func(float64) float64{
	backends.UnaryAbs.String():  math.Abs,
	backends.UnaryNeg.String():  func(x float64) float64 { return -x },
	backends.UnaryExp.String():  math.Exp,
	backends.UnaryLog.String():  math.Log,
	backends.UnarySqrt.String(): math.Sqrt,
	backends.UnaryTanh.String(): math.Tanh,
}

var binaryFns = map[string]func(a, b float64) float64{
	backends.BinaryAdd.String(): func(a, b float64) float64 { return a + b },
	backends.BinarySub.String(): func(a, b float64) float64 { return a - b },
	backends.BinaryMul.String(): func(a, b float64) float64 { return a * b },
	backends.BinaryDiv.String(): func(a, b float64) float64 { return a / b },
	backends.BinaryMax.String(): math.Max,
	backends.BinaryMin.String(): math.Min,
	backends.BinaryPow.String(): math.Pow,
}
