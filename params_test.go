package protocell

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestParamsEncodeSize(t *testing.T) {
	p := DefaultParams(128)
	buf := p.Encode()
	if len(buf) != ParamsSize {
		t.Fatalf("expected encoded params of %d bytes, got %d", ParamsSize, len(buf))
	}
}

func TestParamsEncodeFieldOrder(t *testing.T) {
	p := DefaultParams(64)
	p.TickCount = 7
	p.Dt = 0.5
	buf := p.Encode()

	if got := binary.LittleEndian.Uint32(buf[0:4]); got != p.GridSize {
		t.Fatalf("GridSize mismatch: got %d, want %d", got, p.GridSize)
	}
	if got := binary.LittleEndian.Uint32(buf[4:8]); got != p.TickCount {
		t.Fatalf("TickCount mismatch: got %d, want %d", got, p.TickCount)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[8:12])); got != p.Dt {
		t.Fatalf("Dt mismatch: got %v, want %v", got, p.Dt)
	}
}

func TestSetParamKnownField(t *testing.T) {
	p := DefaultParams(64)
	p.SetParam("diffusion_rate", 0.9)
	if p.DiffusionRate != 0.9 {
		t.Fatalf("expected diffusion_rate set to 0.9, got %v", p.DiffusionRate)
	}
}

func TestSetParamUnknownFieldIsIgnored(t *testing.T) {
	p := DefaultParams(64)
	before := p
	p.SetParam("not_a_real_param", 123)
	if p != before {
		t.Fatalf("unknown parameter name should leave params unchanged, got %+v want %+v", p, before)
	}
}

func TestClampToolIDOutOfRange(t *testing.T) {
	if got := ClampToolID(uint32(MaxToolID) + 1); got != ToolNone {
		t.Fatalf("expected out-of-range tool id to clamp to ToolNone, got %v", got)
	}
	if got := ClampToolID(uint32(MaxToolID)); got != MaxToolID {
		t.Fatalf("expected the max valid tool id to pass through, got %v", got)
	}
}

func TestClampBrushRadiusBounds(t *testing.T) {
	if got := ClampBrushRadius(MaxBrushRadius + 3); got != MaxBrushRadius {
		t.Fatalf("expected clamp to %d, got %d", MaxBrushRadius, got)
	}
	if got := ClampBrushRadius(-1); got != 0 {
		t.Fatalf("expected negative radius clamped to 0, got %d", got)
	}
}

func TestClampTickRateBounds(t *testing.T) {
	if got := ClampTickRate(0); got != 1 {
		t.Fatalf("expected tick rate clamped to 1, got %d", got)
	}
	if got := ClampTickRate(1000); got != 60 {
		t.Fatalf("expected tick rate clamped to 60, got %d", got)
	}
	if got := ClampTickRate(30); got != 30 {
		t.Fatalf("expected in-range tick rate to pass through, got %d", got)
	}
}

func TestOverlayModeCyclesAndWraps(t *testing.T) {
	m := OverlayNone
	seen := []OverlayMode{m}
	for i := 0; i < OverlayModeCount; i++ {
		m = m.Next()
		seen = append(seen, m)
	}
	if seen[OverlayModeCount] != OverlayNone {
		t.Fatalf("expected overlay mode to wrap back to OverlayNone after %d cycles, got %v", OverlayModeCount, seen[OverlayModeCount])
	}
}
