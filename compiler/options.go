package compiler

// Options controls code generation for one MapCompiler.
type Options struct {
	// FuseRegions lets the backend merge each node's fresh region into the
	// previous one (TryMergeNodeRegion). With it off the backend still groups
	// emission into per-node regions, it is just never offered the merge.
	// Merging never changes the semantics of emitted code, only its packaging.
	FuseRegions bool

	// Hooks to install on the compiler; nil means NopHooks.
	Hooks Hooks
}

// DefaultOptions returns the options used when there is no reason to deviate:
// region fusion on, no hooks.
func DefaultOptions() Options {
	return Options{FuseRegions: true}
}
