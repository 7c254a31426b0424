package protocell

import "testing"

func TestVoxelPackUnpackRoundTrip(t *testing.T) {
	var genome Genome
	for i := range genome {
		genome[i] = byte(i * 7)
	}
	v := Voxel{
		Type:      TypeProtocell,
		Flags:     0xAB,
		Energy:    4321,
		Age:       1234,
		SpeciesID: 0xBEEF,
		Genome:    genome,
		Extra:     [8]byte{1, 2, 3, 4, 5, 6, 7, 8},
	}

	got := UnpackVoxel(v.Pack())
	if got != v {
		t.Fatalf("round-trip mismatch: got %+v, want %+v", got, v)
	}
}

func TestVoxelPackUnpackRoundTripEmpty(t *testing.T) {
	got := UnpackVoxel(EmptyVoxel.Pack())
	if got != EmptyVoxel {
		t.Fatalf("expected empty voxel to round-trip, got %+v", got)
	}
}

func TestGridIndexCoordsRoundTrip(t *testing.T) {
	const g = 16
	for z := 0; z < g; z++ {
		for y := 0; y < g; y++ {
			for x := 0; x < g; x++ {
				idx := GridIndex(x, y, z, g)
				gx, gy, gz := GridCoords(idx, g)
				if gx != x || gy != y || gz != z {
					t.Fatalf("GridCoords(GridIndex(%d,%d,%d)) = (%d,%d,%d)", x, y, z, gx, gy, gz)
				}
			}
		}
	}
}

func TestInBounds(t *testing.T) {
	if !InBounds(0, 0, 0, 8) {
		t.Fatalf("origin should be in bounds")
	}
	if !InBounds(7, 7, 7, 8) {
		t.Fatalf("far corner should be in bounds")
	}
	if InBounds(8, 0, 0, 8) || InBounds(-1, 0, 0, 8) {
		t.Fatalf("out-of-range coordinates should not be in bounds")
	}
}

func TestAxisOffsetAndOpposite(t *testing.T) {
	for axis := AxisPlusX; axis <= AxisSelf; axis++ {
		dx, dy, dz := axis.Offset()
		odx, ody, odz := axis.Opposite().Offset()
		if axis == AxisSelf {
			if dx != 0 || dy != 0 || dz != 0 {
				t.Fatalf("AxisSelf should offset by zero")
			}
			continue
		}
		if dx != -odx || dy != -ody || dz != -odz {
			t.Fatalf("axis %d and its opposite should be antiparallel: (%d,%d,%d) vs (%d,%d,%d)", axis, dx, dy, dz, odx, ody, odz)
		}
	}
	if AxisSelf.Opposite() != AxisSelf {
		t.Fatalf("AxisSelf should be its own opposite")
	}
}

func TestVonNeumannOffsetsMatchAxisOrder(t *testing.T) {
	for i, off := range VonNeumannOffsets {
		dx, dy, dz := Axis(i).Offset()
		if [3]int{dx, dy, dz} != off {
			t.Fatalf("VonNeumannOffsets[%d] = %v, want (%d,%d,%d)", i, off, dx, dy, dz)
		}
	}
}

func TestVoxelTypeIsAgent(t *testing.T) {
	if !TypeProtocell.IsAgent() {
		t.Fatalf("TypeProtocell should be an agent")
	}
	for _, ty := range []VoxelType{TypeEmpty, TypeWall, TypeNutrient, TypeEnergySource, TypeWaste, TypeHeatSource, TypeColdSource} {
		if ty.IsAgent() {
			t.Fatalf("type %v should not be an agent", ty)
		}
	}
}
