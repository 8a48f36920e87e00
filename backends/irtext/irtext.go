// Package irtext implements a simple, portable reference backend: it emits the
// compiled map as a structured textual IR, grouping instructions into basic
// blocks (one region per node, unless regions get merged), and can interpret
// the result directly -- which makes it convenient for tests and for inspecting
// what the map compiler produced.
//
// The region merge policy is size-bounded: a node's region may be folded into
// the previous block while the block stays under a configurable instruction
// budget. Pass the budget in the backend configuration string, e.g.
// "irtext:max=16". "max=0" disables merging altogether.
package irtext

import (
	"strconv"
	"strings"

	"github.com/gomlx/exceptions"

	"github.com/SuFu123/ELL/backends"
)

// BackendName to be used in ELL_BACKEND to specify this backend.
const BackendName = "irtext"

// DefaultMaxRegionInstructions bounds how large a block may grow through
// merging when the configuration doesn't say otherwise.
const DefaultMaxRegionInstructions = 64

// Registers New() as the constructor for the "irtext" backend.
func init() {
	backends.Register(BackendName, New)
}

// New constructs an irtext Backend. The configuration accepts "max=<n>" to
// bound region growth; anything else is rejected.
func New(config string) backends.Backend {
	b := &Backend{maxRegionInstructions: DefaultMaxRegionInstructions}
	for _, part := range strings.Split(config, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found || key != "max" {
			exceptions.Panicf("irtext: unknown configuration %q (want \"max=<n>\")", part)
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			exceptions.Panicf("irtext: invalid region budget %q", value)
		}
		b.maxRegionInstructions = n
	}
	b.module = newModule("module", b)
	return b
}

// Backend implements backends.Backend emitting the textual IR.
type Backend struct {
	module                *Module
	maxRegionInstructions int
}

// Compile-time check that irtext.Backend implements backends.Backend.
var _ backends.Backend = (*Backend)(nil)

// Name implements backends.Backend.
func (b *Backend) Name() string { return BackendName }

// Description implements backends.Backend.
func (b *Backend) Description() string {
	return "Textual IR emitter with size-bounded block fusion"
}

// Module implements backends.Backend. The concrete *Module is also reachable
// via Emitted() for inspection and execution.
func (b *Backend) Module() backends.ModuleEmitter {
	if b.module == nil {
		exceptions.Panicf("irtext: backend already finalized")
	}
	return b.module
}

// Emitted returns the concrete module, for rendering and interpretation.
func (b *Backend) Emitted() *Module { return b.module }

// MaxRegionInstructions returns the block growth budget in effect.
func (b *Backend) MaxRegionInstructions() int { return b.maxRegionInstructions }

// Finalize implements backends.Backend. It releases the module; the backend is
// invalid afterwards.
func (b *Backend) Finalize() {
	b.module = nil
}
