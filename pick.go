package protocell

import (
	"math"

	"github.com/voxlab/protocell/internal/gpubuf"
)

// PickResult is the decoded outcome of the most recently completed pick
// readback: the voxel found at entry plus the integer coordinates it was
// read from.
type PickResult struct {
	Voxel   Voxel
	X, Y, Z int
}

// castPickRay intersects a ray (origin, direction, both in grid-space
// units) against the [0,G]^3 axis-aligned box using the standard slab
// method, then floors the entry point to an integer voxel. ok is false
// if the ray misses the box entirely, or the entry point rounds outside
// it due to floating-point error at a grazing angle.
//
// origin/direction are already the unprojected near/far points the host
// application's camera would have produced; this core has no camera or
// projection of its own (see HostBridge.OnMouseDown), so the ray-cast
// starts here rather than from screen-space (cx,cy,cw,ch) as in the
// literal request_pick signature.
func castPickRay(origin, direction [3]float32, g int) (x, y, z int, ok bool) {
	tMin := float32(0)
	tMax := float32(math.MaxFloat32)

	for axis := 0; axis < 3; axis++ {
		o, d := origin[axis], direction[axis]
		if d == 0 {
			if o < 0 || o > float32(g) {
				return 0, 0, 0, false
			}
			continue
		}
		inv := 1 / d
		t0 := (0 - o) * inv
		t1 := (float32(g) - o) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMin > tMax {
			return 0, 0, 0, false
		}
	}

	const epsilon = 1e-4
	ex := origin[0] + direction[0]*tMin
	ey := origin[1] + direction[1]*tMin
	ez := origin[2] + direction[2]*tMin

	ix := int(math.Floor(float64(ex) + epsilon))
	iy := int(math.Floor(float64(ey) + epsilon))
	iz := int(math.Floor(float64(ez) + epsilon))

	if ix == g {
		ix = g - 1
	}
	if iy == g {
		iy = g - 1
	}
	if iz == g {
		iz = g - 1
	}
	if !InBounds(ix, iy, iz, g) {
		return 0, 0, 0, false
	}
	return ix, iy, iz, true
}

// RequestPick casts a ray from origin in direction (both in grid-space
// units, already unprojected by the caller) against the simulation
// volume and schedules the voxel at its entry point for readback.
// Returns false without issuing anything if the ray misses the grid, the
// entry voxel's brick is unallocated in a sparse tier, or a pick cycle
// is already in flight.
func (c *Core) RequestPick(origin, direction [3]float32) bool {
	x, y, z, ok := castPickRay(origin, direction, c.tier.GridSize)
	if !ok {
		return false
	}

	var index int
	if c.bricks != nil {
		poolIdx, allocated := c.bricks.VoxelPoolIndex(x, y, z)
		if !allocated {
			return false
		}
		index = int(poolIdx)
	} else {
		index = GridIndex(x, y, z, c.tier.GridSize)
	}

	issued, err := gpubuf.PickVoxel(c.device, c.buffers, c.pickReadback, index)
	if err != nil {
		c.logger.Warnf("pick request at (%d,%d,%d) failed: %v", x, y, z, err)
		return false
	}
	if !issued {
		return false
	}
	c.lastPickCoord = [3]int{x, y, z}
	return true
}

// GetPickResult returns the last completed pick readback paired with the
// coordinate RequestPick resolved it from, or ok=false if no pick has
// completed yet. Like ReadbackMachine.Data, repeated calls between
// RequestPick completions return the same snapshot.
func (c *Core) GetPickResult() (PickResult, bool) {
	data := c.pickReadback.Data()
	if len(data) < VoxelSize {
		return PickResult{}, false
	}
	var raw [VoxelSize]byte
	copy(raw[:], data)

	x, y, z := c.lastPickCoord[0], c.lastPickCoord[1], c.lastPickCoord[2]
	return PickResult{Voxel: UnpackVoxel(raw), X: x, Y: y, Z: z}, true
}
