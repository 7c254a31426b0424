package protocell

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Tier identifies a grid size/layout combination the core can run at.
// Detection picks the richest tier the adapter's limits can support and
// steps down on allocation failure; this is the only place the core
// accepts a "best effort" size.
type Tier struct {
	GridSize int
	Sparse   bool
}

// Tiers lists the fallback ladder from richest to most conservative.
// DetectTier walks it top-down once an adapter is known, and Core's
// allocateAtTier steps further down this same list on allocation failure.
var Tiers = []Tier{
	{GridSize: 256, Sparse: true},
	{GridSize: 128, Sparse: false},
	{GridSize: 96, Sparse: false},
	{GridSize: 64, Sparse: false},
}

// sparsePoolBudgetBytes is the approximate GPU memory budget a sparse
// 256-cube pool is allowed to consume before tier detection falls back
// to a smaller dense grid.
const sparsePoolBudgetBytes = 50 * 1024 * 1024

// DetectTier inspects adapter to choose an initial tier. Integrated
// GPUs always get the smallest dense tier: they share system memory
// with everything else running on the host and rarely benefit from the
// sparse pool's extra bookkeeping. Discrete adapters get the sparse
// 256-cube tier if its buffers fit the budget, otherwise the largest
// dense tier that fits.
func DetectTier(adapter *wgpu.Adapter) Tier {
	info, err := adapter.GetInfo()
	if err == nil && info.AdapterType == wgpu.AdapterTypeIntegratedGPU {
		return Tier{GridSize: 64, Sparse: false}
	}

	limits, err := adapter.GetLimits()
	if err != nil {
		return Tier{GridSize: 64, Sparse: false}
	}

	if sparsePoolBytes(256) <= uint64(limits.Limits.MaxStorageBufferBindingSize) &&
		sparsePoolBytes(256) <= sparsePoolBudgetBytes {
		return Tier{GridSize: 256, Sparse: true}
	}

	for _, g := range []int{128, 96, 64} {
		if denseVoxelBytes(g) <= uint64(limits.Limits.MaxStorageBufferBindingSize) {
			return Tier{GridSize: g, Sparse: false}
		}
	}
	return Tier{GridSize: 64, Sparse: false}
}

// StepDown returns the next more conservative tier after t, or the
// smallest tier unchanged if t is already the smallest. Called when
// buffer allocation fails at the detected tier.
func StepDown(t Tier) Tier {
	for i, candidate := range Tiers {
		if candidate == t && i+1 < len(Tiers) {
			return Tiers[i+1]
		}
	}
	return Tiers[len(Tiers)-1]
}

func denseVoxelBytes(gridSize int) uint64 {
	return uint64(gridSize) * uint64(gridSize) * uint64(gridSize) * VoxelSize
}

// sparsePoolBytes estimates the voxel-pool allocation for a sparse grid
// of the given logical edge: (edge/8)^3 bricks at 512 voxels each.
func sparsePoolBytes(gridSize int) uint64 {
	bricksPerAxis := uint64(gridSize) / 8
	maxBricks := bricksPerAxis * bricksPerAxis * bricksPerAxis
	return maxBricks * 512 * VoxelSize
}

// TierForGridSize looks up the dense tier matching an exact grid edge
// length, for a config-driven override that bypasses DetectTier's
// adapter inspection. ok is false for any edge not on the dense ladder;
// the sparse 256 tier is never returned here, so a forced size always
// selects a dense tier.
func TierForGridSize(gridSize int) (Tier, bool) {
	for _, t := range Tiers {
		if t.GridSize == gridSize && !t.Sparse {
			return t, true
		}
	}
	return Tier{}, false
}

// DescribeTier renders a tier for log lines.
func DescribeTier(t Tier) string {
	layout := "dense"
	if t.Sparse {
		layout = "sparse"
	}
	return fmt.Sprintf("%s %dx%dx%d", layout, t.GridSize, t.GridSize, t.GridSize)
}
