package backends

import "github.com/SuFu123/ELL/model"

// RegionManager tracks the "current code region" per node and exposes merge
// operations. A region is a contiguous span of emitted code attributable to one
// or more nodes -- bookkeeping internal to the backend, opaque to the graph.
//
// How finely instructions are grouped is pure backend policy: a native-code
// target may fuse aggressively to minimize branching, an interpreted target may
// not need regions at all. Declining a merge is always a safe, valid choice,
// which is why the Try methods report a boolean instead of throwing.
type RegionManager interface {
	// NewNodeRegion begins a fresh region attributed to node, closing whatever
	// region was previously open. It always succeeds.
	NewNodeRegion(node model.Node)

	// TryMergeNodeRegion attempts to fold node's just-opened region into the
	// immediately preceding region, so subsequent emission for node appends to
	// the prior region instead. Returns whether the merge happened.
	TryMergeNodeRegion(node model.Node) bool

	// TryMergeNodeRegions attempts to merge two already-materialized regions,
	// one attributed to dest and one to src, into one. Returns whether the
	// merge happened.
	TryMergeNodeRegions(dest, src model.Node) bool
}

// NoRegionMerging is the default-decline region policy: every node starts a new
// region and no merge ever happens. Backends without region support can embed
// it; the result is valid, merely non-optimal.
type NoRegionMerging struct{}

// NewNodeRegion implements RegionManager as a no-op.
func (NoRegionMerging) NewNodeRegion(node model.Node) {}

// TryMergeNodeRegion implements RegionManager; it always declines.
func (NoRegionMerging) TryMergeNodeRegion(node model.Node) bool { return false }

// TryMergeNodeRegions implements RegionManager; it always declines.
func (NoRegionMerging) TryMergeNodeRegions(dest, src model.Node) bool { return false }
