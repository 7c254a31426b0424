package refmodel

import "testing"

func TestSeedForNeverReturnsZero(t *testing.T) {
	// tick=0, index=0 would XOR to zero under the raw formula; seedFor
	// must fold that case to a nonzero value so xorshift32 can advance.
	if s := seedFor(0, 0); s == 0 {
		t.Fatal("seedFor(0, 0) must not be zero")
	}
}

func TestSeedForIsDeterministic(t *testing.T) {
	a := seedFor(42, 1000)
	b := seedFor(42, 1000)
	if a != b {
		t.Fatalf("expected the same (tick, index) to reseed identically, got %d and %d", a, b)
	}
}

func TestSeedForVariesWithTickAndIndex(t *testing.T) {
	base := seedFor(1, 1)
	if seedFor(2, 1) == base {
		t.Fatal("expected changing tick to change the seed")
	}
	if seedFor(1, 2) == base {
		t.Fatal("expected changing grid index to change the seed")
	}
}

func TestXorshift32NeverGetsStuckAtZero(t *testing.T) {
	// xorshift32 is only well-defined away from zero; newCellRNG never
	// feeds it one, but advancing from any nonzero seed should keep
	// moving rather than collapsing.
	s := uint32(1)
	for i := 0; i < 1000; i++ {
		s = xorshift32(s)
		if s == 0 {
			t.Fatalf("xorshift32 reached zero after %d iterations", i)
		}
	}
}

func TestCellRNGStreamIsDeterministicPerTickAndCell(t *testing.T) {
	a := newCellRNG(7, 42)
	b := newCellRNG(7, 42)
	for i := 0; i < 8; i++ {
		if a.Uint32() != b.Uint32() {
			t.Fatalf("draw %d diverged between two streams for the same (tick, cell)", i)
		}
	}
}

func TestCellRNGFloat01StaysInRange(t *testing.T) {
	r := newCellRNG(1, 1)
	for i := 0; i < 1000; i++ {
		f := r.Float01()
		if f < 0 || f >= 1 {
			t.Fatalf("Float01 produced out-of-range value %v", f)
		}
	}
}
