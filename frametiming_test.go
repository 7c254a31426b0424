package protocell

import "testing"

func TestTicksDueAtExactRate(t *testing.T) {
	ft := NewFrameTiming(30)
	if got := ft.TicksDue(1.0 / 30.0); got != 1 {
		t.Fatalf("expected exactly 1 tick for dt == interval, got %d", got)
	}
}

func TestTicksDueAccumulatesAcrossFrames(t *testing.T) {
	ft := NewFrameTiming(10)
	interval := 1.0 / 10.0

	total := 0
	for i := 0; i < 5; i++ {
		total += ft.TicksDue(interval / 2)
	}
	// 5 half-intervals = 2.5 intervals worth of accumulated time.
	if total != 2 {
		t.Fatalf("expected 2 ticks accumulated from 2.5 intervals of dt, got %d", total)
	}
}

func TestTicksDueCapsAtMaxTicksPerFrame(t *testing.T) {
	ft := NewFrameTiming(10)
	interval := 1.0 / 10.0
	// Exactly 3 intervals worth: stays within the cap via normal draining,
	// not the runaway-reset branch.
	got := ft.TicksDue(3 * interval)
	if got != MaxTicksPerFrame {
		t.Fatalf("expected %d ticks, got %d", MaxTicksPerFrame, got)
	}
}

func TestTicksDueResetsOnRunawayCatchUp(t *testing.T) {
	ft := NewFrameTiming(10)
	interval := 1.0 / 10.0
	// Comfortably past the 3*interval reset threshold.
	got := ft.TicksDue(10 * interval)
	if got != MaxTicksPerFrame {
		t.Fatalf("expected runaway dt to report %d ticks, got %d", MaxTicksPerFrame, got)
	}
	// The accumulator must have been reset to zero, not left with leftover time.
	if got := ft.TicksDue(interval / 2); got != 0 {
		t.Fatalf("expected accumulator reset to leave half an interval short of a tick, got %d", got)
	}
}

func TestTicksDuePausedReturnsZero(t *testing.T) {
	ft := NewFrameTiming(30)
	ft.Paused = true
	if got := ft.TicksDue(1.0); got != 0 {
		t.Fatalf("expected paused timing to report 0 ticks regardless of dt, got %d", got)
	}
}

func TestTicksDueSingleStepIsConsumedOnce(t *testing.T) {
	ft := NewFrameTiming(30)
	ft.Paused = true
	ft.RequestSingleStep()

	if got := ft.TicksDue(0); got != 1 {
		t.Fatalf("expected single-step to report exactly 1 tick, got %d", got)
	}
	if got := ft.TicksDue(0); got != 0 {
		t.Fatalf("expected single-step flag to be consumed, got %d on the following call", got)
	}
}

func TestSetTickRateClamps(t *testing.T) {
	ft := NewFrameTiming(30)
	ft.SetTickRate(0)
	if ft.TickRate != 1 {
		t.Fatalf("expected tick rate clamped to 1, got %d", ft.TickRate)
	}
	ft.SetTickRate(1000)
	if ft.TickRate != 60 {
		t.Fatalf("expected tick rate clamped to 60, got %d", ft.TickRate)
	}
}

func TestNewFrameTimingClampsConstructorArg(t *testing.T) {
	ft := NewFrameTiming(0)
	if ft.TickRate != 1 {
		t.Fatalf("expected constructor to clamp tick rate, got %d", ft.TickRate)
	}
}
