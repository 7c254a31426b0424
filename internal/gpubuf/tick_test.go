package gpubuf

import "testing"

func TestDispatchGroupsCoversGridWithWholeWorkgroups(t *testing.T) {
	cases := []struct {
		gridSize int
		want     uint32
	}{
		{64, 16},
		{96, 24},
		{128, 32},
		{65, 17}, // not evenly divisible: rounds up rather than truncating
	}
	for _, c := range cases {
		x, y, z := dispatchGroups(c.gridSize)
		if x != c.want || y != c.want || z != c.want {
			t.Fatalf("grid %d: expected (%d,%d,%d), got (%d,%d,%d)", c.gridSize, c.want, c.want, c.want, x, y, z)
		}
		if uint32(x)*workgroupEdge < uint32(c.gridSize) {
			t.Fatalf("grid %d: dispatch (%d groups of %d) doesn't cover the grid", c.gridSize, x, workgroupEdge)
		}
	}
}

func TestUnpackStatsMatchesWordLayout(t *testing.T) {
	var words [32]uint32
	words[0] = 42                  // population
	words[1] = 0xCAFEBABE          // total energy low
	words[2] = 0x1                 // total energy high
	words[3] = 255                 // max energy
	words[4], words[5] = 7, 3      // histogram slot 0: species 7, count 3
	words[6], words[7] = 11, 9     // histogram slot 1: species 11, count 9
	words[4+12*2] = 5              // overflow count

	got := UnpackStats(words)

	if got.Population != 42 {
		t.Fatalf("population: got %d", got.Population)
	}
	wantEnergy := uint64(0xCAFEBABE) | uint64(1)<<32
	if got.TotalEnergy != wantEnergy {
		t.Fatalf("total energy: got %#x, want %#x", got.TotalEnergy, wantEnergy)
	}
	if got.MaxEnergy != 255 {
		t.Fatalf("max energy: got %d", got.MaxEnergy)
	}
	if got.SpeciesHistogram[0] != (SpeciesCount{SpeciesID: 7, Count: 3}) {
		t.Fatalf("histogram[0]: got %+v", got.SpeciesHistogram[0])
	}
	if got.SpeciesHistogram[1] != (SpeciesCount{SpeciesID: 11, Count: 9}) {
		t.Fatalf("histogram[1]: got %+v", got.SpeciesHistogram[1])
	}
	if got.Other != 5 {
		t.Fatalf("overflow count: got %d", got.Other)
	}
}
