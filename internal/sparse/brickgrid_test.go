package sparse

import "testing"

func TestEnsureBrickAllocatesAndIsIdempotent(t *testing.T) {
	bg := NewBrickGrid(256, 64)

	if bg.IsAllocated(0, 0, 0) {
		t.Fatalf("fresh grid should have no allocated bricks")
	}

	slot, ok := bg.EnsureBrick(0, 0, 0)
	if !ok {
		t.Fatalf("expected allocation to succeed")
	}
	if !bg.Dirty {
		t.Fatalf("expected Dirty after allocation")
	}

	again, ok := bg.EnsureBrick(0, 0, 0)
	if !ok || again != slot {
		t.Fatalf("expected idempotent EnsureBrick, got slot %d want %d", again, slot)
	}
}

func TestVoxelPoolIndexUnallocatedBrick(t *testing.T) {
	bg := NewBrickGrid(256, 64)
	if _, ok := bg.VoxelPoolIndex(10, 10, 10); ok {
		t.Fatalf("expected unallocated brick to report not-ok")
	}
}

func TestVoxelPoolIndexMatchesSlot(t *testing.T) {
	bg := NewBrickGrid(256, 64)
	slot, ok := bg.EnsureBrick(1, 0, 0)
	if !ok {
		t.Fatalf("expected allocation to succeed")
	}

	idx, ok := bg.VoxelPoolIndex(8, 0, 0)
	if !ok {
		t.Fatalf("expected voxel in allocated brick to resolve")
	}
	if idx != slot*VoxelsPerBrick {
		t.Fatalf("expected base index %d, got %d", slot*VoxelsPerBrick, idx)
	}
}

func TestDeallocateReturnsSlotToFreeList(t *testing.T) {
	bg := NewBrickGrid(256, 2)

	s0, _ := bg.EnsureBrick(0, 0, 0)
	_, ok := bg.EnsureBrick(1, 0, 0)
	if !ok {
		t.Fatalf("expected second allocation to succeed")
	}
	if _, ok := bg.EnsureBrick(2, 0, 0); ok {
		t.Fatalf("expected allocation to fail once free-list is exhausted")
	}

	bg.Deallocate(0, 0, 0)
	reused, ok := bg.EnsureBrick(2, 0, 0)
	if !ok || reused != s0 {
		t.Fatalf("expected freed slot %d to be reused, got %d ok=%v", s0, reused, ok)
	}
}

func TestPreallocateBordersCoversFaceNeighbors(t *testing.T) {
	bg := NewBrickGrid(256, 64)
	bg.EnsureBrick(5, 5, 5)
	bg.PreallocateBorders()

	neighbors := [][3]int{{6, 5, 5}, {4, 5, 5}, {5, 6, 5}, {5, 4, 5}, {5, 5, 6}, {5, 5, 4}}
	for _, n := range neighbors {
		if !bg.IsAllocated(n[0], n[1], n[2]) {
			t.Fatalf("expected neighbor %v to be pre-allocated", n)
		}
	}
}

func TestReclaimEmptyFreesZeroOccupancyBricks(t *testing.T) {
	bg := NewBrickGrid(256, 64)
	slot, _ := bg.EnsureBrick(0, 0, 0)

	occupancy := make([]uint32, bg.MaxBricks)
	occupancy[slot] = 0

	bg.ReclaimEmpty(occupancy)
	if bg.IsAllocated(0, 0, 0) {
		t.Fatalf("expected brick with zero occupancy to be reclaimed")
	}
}

func TestReclaimEmptyKeepsOccupiedBricks(t *testing.T) {
	bg := NewBrickGrid(256, 64)
	slot, _ := bg.EnsureBrick(0, 0, 0)

	occupancy := make([]uint32, bg.MaxBricks)
	occupancy[slot] = 3

	bg.ReclaimEmpty(occupancy)
	if !bg.IsAllocated(0, 0, 0) {
		t.Fatalf("expected occupied brick to survive reclamation")
	}
}

func TestTableWordsClearsDirty(t *testing.T) {
	bg := NewBrickGrid(256, 64)
	bg.EnsureBrick(0, 0, 0)
	if !bg.Dirty {
		t.Fatalf("expected Dirty before upload")
	}
	_ = bg.TableWords()
	if bg.Dirty {
		t.Fatalf("expected Dirty cleared after TableWords")
	}
}

func TestFreeSlotsExhaustion(t *testing.T) {
	bg := NewBrickGrid(256, 1)
	if bg.FreeSlots() != 1 {
		t.Fatalf("expected 1 free slot, got %d", bg.FreeSlots())
	}
	if _, ok := bg.EnsureBrick(0, 0, 0); !ok {
		t.Fatalf("expected first allocation to succeed")
	}
	if bg.FreeSlots() != 0 {
		t.Fatalf("expected 0 free slots after allocation, got %d", bg.FreeSlots())
	}
	if _, ok := bg.EnsureBrick(1, 0, 0); ok {
		t.Fatalf("expected allocation to fail silently when free-list is empty")
	}
}
