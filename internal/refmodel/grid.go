package refmodel

import "github.com/voxlab/protocell"

// Grid is a dense, CPU-resident voxel field plus its parallel
// temperature field. Unlike the GPU buffers it is not double-buffered;
// Tick allocates its own write-side slices and returns a new Grid,
// mirroring the role-swap semantics without aliasing concerns on the host.
type Grid struct {
	Size        int
	Voxels      []protocell.Voxel
	Temperature []float32
}

// NewGrid returns an all-Empty grid of the given edge size with
// ambient-temperature everywhere.
func NewGrid(size int, ambientTemp float32) *Grid {
	n := size * size * size
	g := &Grid{
		Size:        size,
		Voxels:      make([]protocell.Voxel, n),
		Temperature: make([]float32, n),
	}
	for i := range g.Temperature {
		g.Temperature[i] = ambientTemp
	}
	return g
}

// At returns the voxel at (x,y,z).
func (g *Grid) At(x, y, z int) protocell.Voxel {
	return g.Voxels[protocell.GridIndex(x, y, z, g.Size)]
}

// Set writes the voxel at (x,y,z).
func (g *Grid) Set(x, y, z int, v protocell.Voxel) {
	g.Voxels[protocell.GridIndex(x, y, z, g.Size)] = v
}

// Stats is the host-visible result of Phase 5's reduction: population
// and energy totals plus a bounded species histogram. Matches the
// 32-word stats buffer layout (128 bytes).
type Stats struct {
	Population  uint32
	TotalEnergy uint64
	MaxEnergy   uint32

	// SpeciesHistogram maps the first 12 distinct species_id values
	// encountered, in first-seen order, to their counts. Species beyond
	// the 12-slot bound are folded into Other.
	SpeciesHistogram [12]SpeciesCount
	SpeciesCount     int
	Other            uint32
}

// SpeciesCount pairs a species identity with its population count.
type SpeciesCount struct {
	SpeciesID uint16
	Count     uint32
}
