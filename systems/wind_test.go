package systems

import (
	"math"
	"math/rand"
	"testing"
)

// fixedRandom returns the same deviate every call.
type fixedRandom struct {
	f float32
	n int
}

func (r fixedRandom) Float32() float32 { return r.f }
func (r fixedRandom) Intn(n int) int  { return r.n % n }

func TestWindStateString(t *testing.T) {
	tests := []struct {
		state WindState
		want  string
	}{
		{WindReleasing, "releasing"},
		{WindAttacking, "attacking"},
		{WindSustaining, "sustaining"},
		{WindDecaying, "decaying"},
		{WindResting, "resting"},
		{WindState(42), "WindState(42)"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestTimerCheckBeforeAdvance(t *testing.T) {
	var timer Timer
	if timer.Check() {
		t.Fatal("unarmed timer should not fire")
	}

	timer.Start(0.25)
	timer.Advance(0.1)
	if timer.Check() {
		t.Fatal("timer fired early")
	}
	if math.Abs(float64(timer.TimeLeft()-0.15)) > 1e-6 {
		t.Errorf("TimeLeft = %v, want 0.15", timer.TimeLeft())
	}

	timer.Advance(0.2)
	if !timer.Check() {
		t.Fatal("timer should have fired")
	}
	if timer.Started() || timer.Check() {
		t.Error("timer should be single-shot")
	}

	timer.Start(0)
	if !timer.Check() {
		t.Error("zero-length timer should fire on next check")
	}
}

func TestWindCycleOrder(t *testing.T) {
	w := NewWindEnvelope(DefaultWindParams(), rand.New(rand.NewSource(1)))

	prev := w.State()
	if prev != WindReleasing {
		t.Fatalf("initial state = %v, want releasing", prev)
	}

	seen := 0
	for i := 0; i < 20000; i++ {
		w.Update(1.0 / 60.0)
		if w.State() == prev {
			continue
		}
		if want := prev.next(); w.State() != want {
			t.Fatalf("tick %d: %v -> %v, want %v", i, prev, w.State(), want)
		}
		prev = w.State()
		seen++
	}

	if seen < 10 {
		t.Errorf("expected many transitions, saw %d", seen)
	}
	if w.Transitions() != seen {
		t.Errorf("Transitions() = %d, want %d", w.Transitions(), seen)
	}
}

func TestWindEnteringRestResetsVelocity(t *testing.T) {
	params := DefaultWindParams()
	rng := rand.New(rand.NewSource(7))

	for _, prior := range []float32{-55, -1, 0, 3.5, 120} {
		w := NewWindEnvelope(params, rng)
		w.state = WindDecaying
		w.velocity = prior
		w.timer.Start(0)

		w.Update(0.1)

		if w.State() != WindResting {
			t.Fatalf("state = %v, want resting", w.State())
		}
		if w.Velocity() != 0 {
			t.Errorf("prior %v: velocity = %v, want exactly 0", prior, w.Velocity())
		}
		if w.Onset() < -params.WindSpeed || w.Onset() > params.WindSpeed {
			t.Errorf("onset %v outside [-%v, %v]", w.Onset(), params.WindSpeed, params.WindSpeed)
		}
	}
}

func TestWindReleasingStep(t *testing.T) {
	w := NewWindEnvelope(DefaultWindParams(), rand.New(rand.NewSource(1)))
	w.state = WindReleasing
	w.velocity = 10
	w.timer.Start(2.0)

	w.Update(0.1)

	if math.Abs(float64(w.Velocity()-9.5)) > 1e-5 {
		t.Errorf("velocity = %v, want 9.5", w.Velocity())
	}
	if math.Abs(float64(w.TimeLeft()-1.9)) > 1e-5 {
		t.Errorf("time left = %v, want 1.9", w.TimeLeft())
	}
}

func TestWindReleasingFinalStepStopsAtZero(t *testing.T) {
	// The second step is longer than the time left and would overshoot to -10/3.
	w := NewWindEnvelope(DefaultWindParams(), rand.New(rand.NewSource(1)))
	w.state = WindReleasing
	w.velocity = 10
	w.timer.Start(0.15)

	w.Update(0.1)
	if math.Abs(float64(w.Velocity())-10.0/3.0) > 1e-4 {
		t.Fatalf("first step velocity = %v, want 3.333", w.Velocity())
	}

	w.Update(0.1)
	if w.State() != WindReleasing {
		t.Fatalf("state = %v, want releasing", w.State())
	}
	if w.Velocity() != 0 {
		t.Errorf("final step velocity = %v, want 0", w.Velocity())
	}
}

func TestWindReleasingShrinksMonotonically(t *testing.T) {
	for _, start := range []float32{25, -25} {
		w := NewWindEnvelope(DefaultWindParams(), rand.New(rand.NewSource(3)))
		w.state = WindReleasing
		w.velocity = start
		w.timer.Start(3.0)

		prev := start
		for w.State() == WindReleasing {
			w.Update(1.0 / 30.0)
			if w.State() != WindReleasing {
				break
			}
			v := w.Velocity()
			if v*start < 0 {
				t.Fatalf("velocity flipped sign: %v -> %v", prev, v)
			}
			if math.Abs(float64(v)) > math.Abs(float64(prev)) {
				t.Fatalf("velocity grew: %v -> %v", prev, v)
			}
			prev = v
		}
		if prev != 0 {
			t.Errorf("release from %v ended at %v, want 0", start, prev)
		}
	}
}

func TestWindReleasingWithNoTimeLeft(t *testing.T) {
	// A zero-length phase leaves nothing to divide by.
	w := NewWindEnvelope(DefaultWindParams(), fixedRandom{f: 0})
	w.state = WindResting
	w.velocity = 10
	w.timer.Start(0)

	w.Update(0.1)

	if w.State() != WindReleasing {
		t.Fatalf("state = %v, want releasing", w.State())
	}
	if w.TimeLeft() > 0 {
		t.Fatalf("time left = %v, want <= 0", w.TimeLeft())
	}
	v := float64(w.Velocity())
	if math.IsNaN(v) || math.IsInf(v, 0) || v != 0 {
		t.Errorf("velocity = %v, want 0", v)
	}
}

func TestWindAttackAndDecayRates(t *testing.T) {
	tests := []struct {
		name  string
		state WindState
		want  float32
	}{
		{"attacking", WindAttacking, 2 + 5*0.1},
		{"decaying", WindDecaying, 2 - 5*0.1*0.2},
		{"sustaining", WindSustaining, 2},
		{"resting", WindResting, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWindEnvelope(DefaultWindParams(), rand.New(rand.NewSource(1)))
			w.state = tt.state
			w.onset = 5
			w.velocity = 2
			w.timer.Start(10)

			w.Update(0.1)

			if math.Abs(float64(w.Velocity()-tt.want)) > 1e-5 {
				t.Errorf("velocity = %v, want %v", w.Velocity(), tt.want)
			}
		})
	}
}

func TestWindInvalidStatePanics(t *testing.T) {
	w := NewWindEnvelope(DefaultWindParams(), rand.New(rand.NewSource(1)))
	w.state = WindState(9)
	w.timer.Start(10)

	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid state")
		}
	}()
	w.Update(0.1)
}

func TestWindPhaseLengthsBounded(t *testing.T) {
	params := DefaultWindParams()
	w := NewWindEnvelope(params, rand.New(rand.NewSource(11)))

	transitions := w.Transitions()
	for i := 0; i < 5000; i++ {
		w.Update(0.05)
		if w.Transitions() != transitions {
			transitions = w.Transitions()
			// One step has already been counted off the new phase.
			if left := w.TimeLeft(); left > params.StateLength-0.05+1e-4 {
				t.Fatalf("phase length %v exceeds %v", left+0.05, params.StateLength)
			}
		}
	}
}
