// Package sparse implements the CPU-side brick allocation table that
// backs the sparse 256-cube grid tier: a flat vector of pool-slot
// indices, a LIFO free-list, and the dirty flag gating GPU upload.
package sparse

// BrickEdge is the edge length of one brick in voxels.
const BrickEdge = 8

// VoxelsPerBrick is the number of voxels one allocated brick holds.
const VoxelsPerBrick = BrickEdge * BrickEdge * BrickEdge

// Unallocated marks a brick-table entry with no backing pool slot.
const Unallocated = 0xFFFFFFFF

// BrickGrid owns the brick table and free-list for a logical grid of
// edge GridSize voxels, tiled into BrickEdge-cube bricks. It is mutated
// only on the host thread; the table is uploaded to the GPU whenever
// Dirty is set.
type BrickGrid struct {
	GridSize     int
	bricksPerAxis int
	MaxBricks    int

	table    []uint32 // bricksPerAxis^3 entries: pool slot or Unallocated
	freeList []uint32 // LIFO of free pool slots
	Dirty    bool

	tickCount uint64
}

// NewBrickGrid allocates a brick table for a gridSize-cube logical grid
// backed by a pool of maxBricks bricks. All bricks start unallocated and
// every slot starts on the free-list.
func NewBrickGrid(gridSize, maxBricks int) *BrickGrid {
	bricksPerAxis := gridSize / BrickEdge
	total := bricksPerAxis * bricksPerAxis * bricksPerAxis

	table := make([]uint32, total)
	for i := range table {
		table[i] = Unallocated
	}

	freeList := make([]uint32, maxBricks)
	for i := 0; i < maxBricks; i++ {
		// Push in descending order so popping yields ascending slot
		// indices on a cold grid, which is easier to reason about in tests.
		freeList[i] = uint32(maxBricks - 1 - i)
	}

	return &BrickGrid{
		GridSize:      gridSize,
		bricksPerAxis: bricksPerAxis,
		MaxBricks:     maxBricks,
		table:         table,
		freeList:      freeList,
	}
}

func (bg *BrickGrid) brickIndex(bx, by, bz int) int {
	return bz*bg.bricksPerAxis*bg.bricksPerAxis + by*bg.bricksPerAxis + bx
}

func (bg *BrickGrid) brickInBounds(bx, by, bz int) bool {
	return bx >= 0 && bx < bg.bricksPerAxis &&
		by >= 0 && by < bg.bricksPerAxis &&
		bz >= 0 && bz < bg.bricksPerAxis
}

// IsAllocated reports whether the brick at (bx,by,bz) has a pool slot.
func (bg *BrickGrid) IsAllocated(bx, by, bz int) bool {
	if !bg.brickInBounds(bx, by, bz) {
		return false
	}
	return bg.table[bg.brickIndex(bx, by, bz)] != Unallocated
}

// EnsureBrick allocates a pool slot for (bx,by,bz) if it doesn't already
// have one and returns it. Returns (0, false) if the free-list is
// exhausted; the caller drops the write rather than crashing.
func (bg *BrickGrid) EnsureBrick(bx, by, bz int) (slot uint32, ok bool) {
	if !bg.brickInBounds(bx, by, bz) {
		return 0, false
	}
	idx := bg.brickIndex(bx, by, bz)
	if bg.table[idx] != Unallocated {
		return bg.table[idx], true
	}
	if len(bg.freeList) == 0 {
		return 0, false
	}
	n := len(bg.freeList) - 1
	slot = bg.freeList[n]
	bg.freeList = bg.freeList[:n]
	bg.table[idx] = slot
	bg.Dirty = true
	return slot, true
}

// Deallocate frees the pool slot at (bx,by,bz), if any, returning it to
// the free-list.
func (bg *BrickGrid) Deallocate(bx, by, bz int) {
	if !bg.brickInBounds(bx, by, bz) {
		return
	}
	idx := bg.brickIndex(bx, by, bz)
	slot := bg.table[idx]
	if slot == Unallocated {
		return
	}
	bg.table[idx] = Unallocated
	bg.freeList = append(bg.freeList, slot)
	bg.Dirty = true
}

// VoxelPoolIndex returns the flat pool index for voxel (x,y,z), or
// (0, false) if the containing brick is unallocated.
func (bg *BrickGrid) VoxelPoolIndex(x, y, z int) (index uint32, ok bool) {
	bx, by, bz := x/BrickEdge, y/BrickEdge, z/BrickEdge
	if !bg.brickInBounds(bx, by, bz) {
		return 0, false
	}
	slot := bg.table[bg.brickIndex(bx, by, bz)]
	if slot == Unallocated {
		return 0, false
	}
	lx, ly, lz := x%BrickEdge, y%BrickEdge, z%BrickEdge
	local := uint32(lz*BrickEdge*BrickEdge + ly*BrickEdge + lx)
	return slot*VoxelsPerBrick + local, true
}

// borderOffsets are the six face-adjacent brick offsets.
var borderOffsets = [6][3]int{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// BorderAllocationInterval is how often, in ticks, PreallocateBorders
// should run.
const BorderAllocationInterval = 10

// PreallocateBorders walks every allocated brick and ensures its six
// face-neighbors are allocated too, so an agent moving into an adjacent
// brick never finds a destination that doesn't exist on the GPU. Call
// every BorderAllocationInterval ticks.
func (bg *BrickGrid) PreallocateBorders() {
	// Snapshot the currently allocated set first: EnsureBrick below
	// mutates bg.table, and we must not chase newly-allocated borders
	// transitively in the same pass.
	var allocated [][3]int
	for bz := 0; bz < bg.bricksPerAxis; bz++ {
		for by := 0; by < bg.bricksPerAxis; by++ {
			for bx := 0; bx < bg.bricksPerAxis; bx++ {
				if bg.table[bg.brickIndex(bx, by, bz)] != Unallocated {
					allocated = append(allocated, [3]int{bx, by, bz})
				}
			}
		}
	}

	for _, c := range allocated {
		for _, off := range borderOffsets {
			nx, ny, nz := c[0]+off[0], c[1]+off[1], c[2]+off[2]
			if bg.brickInBounds(nx, ny, nz) {
				bg.EnsureBrick(nx, ny, nz)
			}
		}
	}
}

// ReclaimEmpty deallocates every allocated brick whose occupancy count
// (read back from the GPU occupancy vector, one count per pool slot) is
// zero. occupancy must be indexed by pool slot, length MaxBricks.
func (bg *BrickGrid) ReclaimEmpty(occupancy []uint32) {
	for bz := 0; bz < bg.bricksPerAxis; bz++ {
		for by := 0; by < bg.bricksPerAxis; by++ {
			for bx := 0; bx < bg.bricksPerAxis; bx++ {
				idx := bg.brickIndex(bx, by, bz)
				slot := bg.table[idx]
				if slot == Unallocated {
					continue
				}
				if int(slot) < len(occupancy) && occupancy[slot] == 0 {
					bg.Deallocate(bx, by, bz)
				}
			}
		}
	}
}

// TableWords returns the brick table as a flat copy suitable for GPU
// upload, and clears Dirty. Callers should skip the upload entirely when
// Dirty was already false.
func (bg *BrickGrid) TableWords() []uint32 {
	out := make([]uint32, len(bg.table))
	copy(out, bg.table)
	bg.Dirty = false
	return out
}

// FreeSlots returns how many pool slots remain unallocated.
func (bg *BrickGrid) FreeSlots() int {
	return len(bg.freeList)
}
