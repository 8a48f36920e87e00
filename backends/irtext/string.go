package irtext

import (
	"fmt"
	"strings"

	"github.com/SuFu123/ELL/backends"
)

// String renders the whole module as textual IR.
func (m *Module) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "module %q {\n", m.name)
	for _, v := range m.globals {
		sb.WriteString("  ")
		sb.WriteString(declString(v))
		sb.WriteString("\n")
	}
	for _, f := range m.functions {
		sb.WriteString(f.String())
	}
	sb.WriteString("}\n")
	return sb.String()
}

func declString(v *backends.Variable) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s = %s %s[%d]", v.Name(), v.Scope(), v.DType(), v.Size())
	if init, ok := v.Initializer(); ok {
		fmt.Fprintf(&sb, " init %s", valuesString(init))
	}
	return sb.String()
}

func valuesString(values []float64) string {
	parts := make([]string, len(values))
	for i, value := range values {
		parts[i] = fmt.Sprintf("%g", value)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// String renders the function signature and its regions.
func (f *Function) String() string {
	var sb strings.Builder
	params := make([]string, len(f.argVars))
	for i, v := range f.argVars {
		direction := "in"
		if v.Scope() == backends.ScopeOutput {
			direction = "out"
		}
		params[i] = fmt.Sprintf("%s: %s %s[%d]", v.Name(), direction, v.DType(), v.Size())
	}
	fmt.Fprintf(&sb, "  func %s(%s) {\n", f.name, strings.Join(params, ", "))
	for _, region := range f.regions {
		sb.WriteString(region.String())
	}
	sb.WriteString("  }\n")
	return sb.String()
}

// NumRegions returns how many basic blocks the function ended up with.
func (f *Function) NumRegions() int { return len(f.regions) }

// Name returns the function name.
func (f *Function) Name() string { return f.name }

// String renders the region label, its node attribution and its instructions.
func (r *Region) String() string {
	var sb strings.Builder
	names := make([]string, len(r.nodes))
	for i, n := range r.nodes {
		names[i] = n.Name()
	}
	fmt.Fprintf(&sb, "  %s:  ; nodes: %s\n", r.label, strings.Join(names, ", "))
	for _, inst := range r.instructions {
		fmt.Fprintf(&sb, "    %s\n", inst)
	}
	return sb.String()
}

// Label returns the block label, e.g. "b0".
func (r *Region) Label() string { return r.label }

// NumInstructions returns how many instructions the block holds.
func (r *Region) NumInstructions() int { return len(r.instructions) }

func (inst instruction) String() string {
	if inst.op == "load_const" {
		return fmt.Sprintf("%s = load_const %s", inst.dst.Name(), valuesString(inst.values))
	}
	operands := make([]string, len(inst.operands))
	for i, v := range inst.operands {
		operands[i] = v.Name()
	}
	return fmt.Sprintf("%s = %s %s", inst.dst.Name(), inst.op, strings.Join(operands, ", "))
}
