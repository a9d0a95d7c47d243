package telemetry

import (
	"math"

	"github.com/pthm-cable/leaffall/systems"
)

// numWindStates matches the envelope's phase count.
const numWindStates = int(systems.WindResting) + 1

// Collector accumulates wind samples for one leaf layer within time windows
// and produces WindowStats. Windows close on simulated seconds, so a host
// stepping with variable dt still gets windows of the configured length.
type Collector struct {
	layer               string
	windowDurationSec   float64
	windowDurationTicks int32

	simTime float64 // seconds stepped since creation
	lastDT  float64

	// Current window tracking
	windowStartTick  int32
	windowElapsed    float64
	startTransitions int
	lastState        systems.WindState
	haveLast         bool

	// Per-window accumulators
	windSamples []float64
	stateTicks  [numWindStates]int
	gusts       int

	// Reused between flushes
	drift  []float64
	wobble []float64
	fall   []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// nominalDT: expected seconds per tick, used to size the sample buffer
func NewCollector(layer string, windowDurationSec float64, nominalDT float32) *Collector {
	ticksPerWindow := int32(math.Round(windowDurationSec / float64(nominalDT)))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		layer:               layer,
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		windSamples:         make([]float64, 0, ticksPerWindow),
	}
}

// RecordWind samples the envelope after a tick of dt seconds.
func (c *Collector) RecordWind(wind *systems.WindEnvelope, dt float32) {
	c.simTime += float64(dt)
	c.windowElapsed += float64(dt)
	c.lastDT = float64(dt)

	state := wind.State()
	c.windSamples = append(c.windSamples, float64(wind.Velocity()))
	if int(state) < numWindStates {
		c.stateTicks[state]++
	}
	if state == systems.WindResting && c.haveLast && c.lastState != systems.WindResting {
		c.gusts++
	}
	c.lastState = state
	c.haveLast = true
}

// ShouldFlush reports whether the window has covered its duration. The
// window closes on the tick nearest the boundary.
func (c *Collector) ShouldFlush() bool {
	if c.windowElapsed == 0 {
		return false
	}
	return c.windowElapsed >= c.windowDurationSec-c.lastDT/2
}

// Flush produces a WindowStats from the window's samples and the field's
// current leaves, then resets for the next window.
func (c *Collector) Flush(currentTick int32, field *systems.LeafField) WindowStats {
	wind := field.Wind()

	c.drift = c.drift[:0]
	c.wobble = c.wobble[:0]
	c.fall = c.fall[:0]
	for i := 0; i < field.Count(); i++ {
		p := field.Leaf(i)
		c.drift = append(c.drift, math.Abs(float64(p.DriftSpeed)))
		c.wobble = append(c.wobble, float64(p.Wobble))
		c.fall = append(c.fall, float64(p.Speed))
	}

	wobbleRMS := RMS(c.wobble)
	for i, w := range c.wobble {
		c.wobble[i] = math.Abs(w)
	}
	drift := Summarize(c.drift)
	wobble := Summarize(c.wobble)
	fall := Summarize(c.fall)

	var windPeak float64
	for _, v := range c.windSamples {
		windPeak = math.Max(windPeak, math.Abs(v))
	}
	windSummary := Summarize(c.windSamples)

	var totalTicks int
	for _, n := range c.stateTicks {
		totalTicks += n
	}
	frac := func(s systems.WindState) float64 {
		if totalTicks == 0 {
			return 0
		}
		return float64(c.stateTicks[s]) / float64(totalTicks)
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		WindowSec:       c.windowElapsed,
		SimTimeSec:      c.simTime,
		Layer:           c.layer,
		Enabled:         field.Enabled(),
		Leaves:          field.Count(),

		WindMean:  windSummary.Mean,
		WindStd:   windSummary.Std,
		WindPeak:  windPeak,
		WindOnset: float64(wind.Onset()),
		WindState: wind.State().String(),

		Transitions:    wind.Transitions() - c.startTransitions,
		Gusts:          c.gusts,
		ReleasingFrac:  frac(systems.WindReleasing),
		AttackingFrac:  frac(systems.WindAttacking),
		SustainingFrac: frac(systems.WindSustaining),
		DecayingFrac:   frac(systems.WindDecaying),
		RestingFrac:    frac(systems.WindResting),

		DriftMeanAbs: drift.Mean,
		DriftP90Abs:  drift.P90,
		WobbleRMS:    wobbleRMS,
		WobbleP90Abs: wobble.P90,
		WobbleMaxAbs: wobble.Max,
		FallMean:     fall.Mean,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.windowElapsed = 0
	c.startTransitions = wind.Transitions()
	c.windSamples = c.windSamples[:0]
	c.stateTicks = [numWindStates]int{}
	c.gusts = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window at the nominal dt.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}

// Layer returns the name of the layer this collector samples.
func (c *Collector) Layer() string {
	return c.layer
}
