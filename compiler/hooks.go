package compiler

import "github.com/SuFu123/ELL/model"

// Hooks lets specialized compilers inject cross-cutting behavior --
// instrumentation, profiling counters, debug metadata -- around the core
// traversal, without altering it. All methods are called synchronously from
// CompileMap, in order: OnBeginCompileModel once, then per node
// OnBeginCompileNode/OnEndCompileNode, then OnEndCompileModel.
type Hooks interface {
	OnBeginCompileModel(m *model.Model)
	OnEndCompileModel(m *model.Model)
	OnBeginCompileNode(node model.Node)
	OnEndCompileNode(node model.Node)
}

// NopHooks is the default Hooks implementation: it does nothing. Embed it to
// implement only the hooks you care about.
type NopHooks struct{}

func (NopHooks) OnBeginCompileModel(m *model.Model) {}
func (NopHooks) OnEndCompileModel(m *model.Model)   {}
func (NopHooks) OnBeginCompileNode(node model.Node) {}
func (NopHooks) OnEndCompileNode(node model.Node)   {}
