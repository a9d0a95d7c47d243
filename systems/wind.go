package systems

import "fmt"

// WindState is a phase of the gust envelope.
type WindState uint8

// Phases in cycle order. Advancing past WindResting wraps to WindReleasing.
const (
	WindReleasing WindState = iota
	WindAttacking
	WindSustaining
	WindDecaying
	WindResting
	numWindStates
)

// String returns the lowercase phase name.
func (s WindState) String() string {
	switch s {
	case WindReleasing:
		return "releasing"
	case WindAttacking:
		return "attacking"
	case WindSustaining:
		return "sustaining"
	case WindDecaying:
		return "decaying"
	case WindResting:
		return "resting"
	}
	return fmt.Sprintf("WindState(%d)", uint8(s))
}

// next returns the following phase in the cycle.
func (s WindState) next() WindState {
	return (s + 1) % numWindStates
}

// Timer is a single-shot countdown in simulated seconds.
type Timer struct {
	left  float32
	armed bool
}

// Start arms the timer for period seconds. A zero period expires on the
// next Check.
func (t *Timer) Start(period float32) {
	t.left = period
	t.armed = true
}

// Started reports whether the timer is armed.
func (t *Timer) Started() bool {
	return t.armed
}

// Advance counts the timer down by dt.
func (t *Timer) Advance(dt float32) {
	if !t.armed {
		return
	}
	t.left -= dt
}

// Check reports whether an armed timer has run out, disarming it if so.
func (t *Timer) Check() bool {
	if t.armed && t.left <= 0 {
		t.armed = false
		return true
	}
	return false
}

// TimeLeft returns the remaining seconds (0 when disarmed).
func (t *Timer) TimeLeft() float32 {
	if !t.armed {
		return 0
	}
	return t.left
}

// WindParams tunes the gust envelope.
type WindParams struct {
	WindSpeed    float32 // gust onset is drawn from [-WindSpeed, WindSpeed]
	StateLength  float32 // phase durations are drawn from [0, StateLength]
	DecayRatio   float32 // decay rate relative to attack rate
	InitialDelay float32 // first phase duration
}

// DefaultWindParams returns the reference tuning.
func DefaultWindParams() WindParams {
	return WindParams{
		WindSpeed:    30.0,
		StateLength:  5.0,
		DecayRatio:   0.2,
		InitialDelay: 0.01,
	}
}

// WindEnvelope produces a shared horizontal wind velocity shaped like an
// attack/sustain/decay/release/rest envelope with random phase lengths.
type WindEnvelope struct {
	params WindParams
	rng    RandomSource

	state    WindState
	timer    Timer
	onset    float32
	velocity float32

	transitions int
}

// NewWindEnvelope creates an envelope in the releasing phase with calm air.
func NewWindEnvelope(params WindParams, rng RandomSource) *WindEnvelope {
	w := &WindEnvelope{
		params: params,
		rng:    rng,
		state:  WindReleasing,
	}
	w.timer.Start(params.InitialDelay)
	return w
}

// Update advances the envelope by dt seconds.
//
// The timer is checked before it is counted down, so while a phase is active
// its remaining time is still positive when the velocity rule runs. When a
// releasing step would cover the remaining time, velocity is set to zero
// rather than overshooting past it and changing sign.
func (w *WindEnvelope) Update(dt float32) {
	if w.timer.Check() {
		w.enter(w.state.next())
	}

	switch w.state {
	case WindAttacking:
		w.velocity += w.onset * dt
	case WindDecaying:
		w.velocity -= w.onset * dt * w.params.DecayRatio
	case WindReleasing:
		left := w.timer.TimeLeft()
		if left <= dt {
			// Release completes within this step.
			w.velocity = 0
		} else {
			w.velocity -= w.velocity * dt / left
		}
	case WindSustaining, WindResting:
	default:
		panic(fmt.Sprintf("systems: invalid wind state %d", uint8(w.state)))
	}

	w.timer.Advance(dt)
}

// enter switches to state and re-arms the timer.
func (w *WindEnvelope) enter(state WindState) {
	w.state = state
	w.transitions++
	if state == WindResting {
		w.velocity = 0
		w.onset = randRange(w.rng, -w.params.WindSpeed, w.params.WindSpeed)
	}
	w.timer.Start(randRange(w.rng, 0, w.params.StateLength))
}

// State returns the current phase.
func (w *WindEnvelope) State() WindState { return w.state }

// Velocity returns the live wind velocity.
func (w *WindEnvelope) Velocity() float32 { return w.velocity }

// Onset returns the target gust strength of the current cycle.
func (w *WindEnvelope) Onset() float32 { return w.onset }

// TimeLeft returns the seconds remaining in the current phase.
func (w *WindEnvelope) TimeLeft() float32 { return w.timer.TimeLeft() }

// Transitions returns the number of phase changes since creation.
func (w *WindEnvelope) Transitions() int { return w.transitions }

// Params returns the envelope tuning.
func (w *WindEnvelope) Params() WindParams { return w.params }
