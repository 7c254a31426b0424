package protocell

import "testing"

// DetectTier is exercised only against a live wgpu.Adapter and has no
// pure-logic path to unit test without one; StepDown and the byte-budget
// helpers below cover everything DetectTier calls that doesn't require a
// device.

func TestStepDownWalksTheLadder(t *testing.T) {
	got := StepDown(Tiers[0])
	if got != Tiers[1] {
		t.Fatalf("expected StepDown to return the next tier %+v, got %+v", Tiers[1], got)
	}
}

func TestStepDownAtSmallestTierStaysPut(t *testing.T) {
	smallest := Tiers[len(Tiers)-1]
	if got := StepDown(smallest); got != smallest {
		t.Fatalf("expected StepDown at the smallest tier to stay put, got %+v", got)
	}
}

func TestStepDownUnknownTierReturnsSmallest(t *testing.T) {
	unknown := Tier{GridSize: 999, Sparse: true}
	smallest := Tiers[len(Tiers)-1]
	if got := StepDown(unknown); got != smallest {
		t.Fatalf("expected an unrecognized tier to fall back to the smallest, got %+v", got)
	}
}

func TestDenseVoxelBytesScalesWithCube(t *testing.T) {
	got := denseVoxelBytes(64)
	want := uint64(64*64*64) * VoxelSize
	if got != want {
		t.Fatalf("expected %d bytes, got %d", want, got)
	}
}

func TestSparsePoolBytesAccountsForBrickSize(t *testing.T) {
	got := sparsePoolBytes(256)
	bricksPerAxis := uint64(256 / 8)
	want := bricksPerAxis * bricksPerAxis * bricksPerAxis * 512 * VoxelSize
	if got != want {
		t.Fatalf("expected %d bytes, got %d", want, got)
	}
}

func TestTierForGridSizeFindsDenseMatch(t *testing.T) {
	got, ok := TierForGridSize(96)
	if !ok {
		t.Fatal("expected 96 to match a dense tier")
	}
	if got != (Tier{GridSize: 96, Sparse: false}) {
		t.Fatalf("unexpected tier: %+v", got)
	}
}

func TestTierForGridSizeRejectsSparseOnlySize(t *testing.T) {
	// 256 only appears on the ladder as the sparse tier; a forced
	// override should never hand back a sparse tier.
	if _, ok := TierForGridSize(256); ok {
		t.Fatal("expected 256 to not resolve to a forceable dense tier")
	}
}

func TestTierForGridSizeUnknownSizeFails(t *testing.T) {
	if _, ok := TierForGridSize(33); ok {
		t.Fatal("expected an off-ladder grid size to fail")
	}
}

func TestDescribeTier(t *testing.T) {
	if got := DescribeTier(Tier{GridSize: 128, Sparse: false}); got != "dense 128x128x128" {
		t.Fatalf("unexpected description: %q", got)
	}
	if got := DescribeTier(Tier{GridSize: 256, Sparse: true}); got != "sparse 256x256x256" {
		t.Fatalf("unexpected description: %q", got)
	}
}
