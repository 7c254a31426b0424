package protocell

// MaxTicksPerFrame bounds the number of simulation ticks a single frame
// may request, so a long hitch cannot make the simulation try to catch
// up in one enormous burst.
const MaxTicksPerFrame = 3

// FrameTiming is the fixed-timestep accumulator that decouples
// simulation rate from render/frame rate. Dt clamps the same way the
// teacher's frame-time resource does, to keep a startup hitch or a
// debugger pause from exploding the simulation.
type FrameTiming struct {
	Paused     bool
	SingleStep bool
	TickRate   int
	accumulator float64
	FrameCount uint64
}

// NewFrameTiming returns a FrameTiming running at tickRate ticks/sec,
// clamped to [1,60].
func NewFrameTiming(tickRate int) *FrameTiming {
	return &FrameTiming{TickRate: ClampTickRate(tickRate)}
}

// SetTickRate updates the tick rate, clamped to [1,60].
func (ft *FrameTiming) SetTickRate(r int) {
	ft.TickRate = ClampTickRate(r)
}

// RequestSingleStep arms the single-step flag: the next TicksDue call
// consumes it and returns exactly 1 tick regardless of pause state.
func (ft *FrameTiming) RequestSingleStep() {
	ft.SingleStep = true
}

// TicksDue returns how many simulation ticks should run for a frame of
// duration dt seconds, advancing the internal accumulator as a side
// effect. Mirrors the source's three rules in order: paused-and-not-
// stepping returns zero, a single-step flag (once consumed) returns
// one, otherwise the accumulator governs, capped at MaxTicksPerFrame
// with a reset on runaway catch-up.
func (ft *FrameTiming) TicksDue(dt float64) int {
	ft.FrameCount++

	if ft.Paused && !ft.SingleStep {
		return 0
	}
	if ft.SingleStep {
		ft.SingleStep = false
		return 1
	}

	interval := 1.0 / float64(ft.TickRate)
	ft.accumulator += dt

	if ft.accumulator > 3*interval {
		ft.accumulator = 0
		return MaxTicksPerFrame
	}

	ticks := 0
	for ticks < MaxTicksPerFrame && ft.accumulator >= interval {
		ft.accumulator -= interval
		ticks++
	}
	return ticks
}
