package telemetry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/leaffall/systems"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Summary
	}{
		{"empty slice", []float64{}, Summary{}},
		{"single element", []float64{5.0}, Summary{Mean: 5, P50: 5, P90: 5, Max: 5}},
		{"one to five", []float64{5, 1, 4, 2, 3}, Summary{Mean: 3, Std: math.Sqrt(2.5), P50: 3, P90: 5, Max: 5}},
		{"one to ten", []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}, Summary{Mean: 5.5, Std: 3.02765, P50: 5, P90: 9, Max: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.values)
			pairs := []struct {
				field     string
				got, want float64
			}{
				{"mean", got.Mean, tt.want.Mean},
				{"std", got.Std, tt.want.Std},
				{"p50", got.P50, tt.want.P50},
				{"p90", got.P90, tt.want.P90},
				{"max", got.Max, tt.want.Max},
			}
			for _, p := range pairs {
				if math.Abs(p.got-p.want) > 0.001 {
					t.Errorf("%s = %v, want %v", p.field, p.got, p.want)
				}
			}
		})
	}
}

func TestRMS(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Errorf("RMS(nil) = %v, want 0", got)
	}
	if got := RMS([]float64{3, -4}); math.Abs(got-math.Sqrt(12.5)) > 1e-9 {
		t.Errorf("RMS = %v, want %v", got, math.Sqrt(12.5))
	}
}

func TestCollectorWindow(t *testing.T) {
	field := systems.NewLeafField(400, 300, systems.LeafPalette{}, rand.New(rand.NewSource(3)))
	c := NewCollector("leaves", 10, 1.0/60.0)

	if c.WindowDurationTicks() != 600 {
		t.Fatalf("WindowDurationTicks = %d, want 600", c.WindowDurationTicks())
	}

	var tick int32
	var peak float64
	for !c.ShouldFlush() {
		field.Update(1.0/60.0, 10)
		c.RecordWind(field.Wind(), 1.0/60.0)
		peak = math.Max(peak, math.Abs(float64(field.Wind().Velocity())))
		tick++
	}

	stats := c.Flush(tick, field)

	if stats.WindowEndTick != 600 || stats.WindowStartTick != 0 {
		t.Errorf("window = [%d, %d], want [0, 600]", stats.WindowStartTick, stats.WindowEndTick)
	}
	if math.Abs(stats.SimTimeSec-10) > 0.001 || math.Abs(stats.WindowSec-10) > 0.001 {
		t.Errorf("sim time = %v, window = %v, want 10", stats.SimTimeSec, stats.WindowSec)
	}
	if stats.Layer != "leaves" || stats.Leaves != field.Count() || !stats.Enabled {
		t.Errorf("unexpected layer fields: %+v", stats)
	}
	if math.Abs(stats.WindPeak-peak) > 1e-6 {
		t.Errorf("wind peak = %v, want %v", stats.WindPeak, peak)
	}
	if stats.Transitions != field.Wind().Transitions() {
		t.Errorf("transitions = %d, want %d", stats.Transitions, field.Wind().Transitions())
	}

	fracSum := stats.ReleasingFrac + stats.AttackingFrac + stats.SustainingFrac + stats.DecayingFrac + stats.RestingFrac
	if math.Abs(fracSum-1) > 1e-9 {
		t.Errorf("state fractions sum to %v, want 1", fracSum)
	}
	if stats.WobbleMaxAbs < stats.WobbleP90Abs {
		t.Errorf("wobble max %v below p90 %v", stats.WobbleMaxAbs, stats.WobbleP90Abs)
	}
	if stats.WindState != field.Wind().State().String() {
		t.Errorf("wind state = %q, want %q", stats.WindState, field.Wind().State())
	}

	// Next window starts fresh
	if c.ShouldFlush() {
		t.Error("collector should not flush immediately after a flush")
	}
	empty := c.Flush(tick, field)
	if empty.Transitions != 0 || empty.Gusts != 0 || empty.WindPeak != 0 {
		t.Errorf("expected empty window, got %+v", empty)
	}
}

func TestCollectorCountsGusts(t *testing.T) {
	field := systems.NewLeafField(100, 100, systems.LeafPalette{}, rand.New(rand.NewSource(8)))
	c := NewCollector("leaves", 1000, 0.05)

	gusts := 0
	prev := field.Wind().State()
	for i := 0; i < 4000; i++ {
		field.Update(0.05, 10)
		c.RecordWind(field.Wind(), 0.05)
		state := field.Wind().State()
		if state == systems.WindResting && prev != systems.WindResting {
			gusts++
		}
		prev = state
	}

	stats := c.Flush(4000, field)
	if gusts == 0 {
		t.Fatal("expected at least one gust in 200 simulated seconds")
	}
	if stats.Gusts != gusts {
		t.Errorf("gusts = %d, want %d", stats.Gusts, gusts)
	}
}

func TestCollectorWindowFollowsSteppedTime(t *testing.T) {
	field := systems.NewLeafField(200, 100, systems.LeafPalette{}, rand.New(rand.NewSource(5)))
	// Nominal 60 Hz, but the host only manages 20 Hz.
	c := NewCollector("leaves", 1, 1.0/60.0)

	tests := []struct {
		dt       float32
		wantTick int32
	}{
		{1.0 / 20.0, 20},
		{1.0 / 60.0, 80},
		{0.1, 90},
	}

	var tick int32
	for i, tt := range tests {
		for !c.ShouldFlush() {
			field.Update(tt.dt, 10)
			c.RecordWind(field.Wind(), tt.dt)
			tick++
		}
		stats := c.Flush(tick, field)
		if tick != tt.wantTick {
			t.Errorf("dt %v: window closed at tick %d, want %d", tt.dt, tick, tt.wantTick)
		}
		if math.Abs(stats.WindowSec-1) > 1e-4 {
			t.Errorf("dt %v: window covered %vs, want 1s", tt.dt, stats.WindowSec)
		}
		if want := float64(i + 1); math.Abs(stats.SimTimeSec-want) > 1e-4 {
			t.Errorf("dt %v: sim time = %v, want %v", tt.dt, stats.SimTimeSec, want)
		}
	}
}
