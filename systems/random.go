package systems

// RandomSource supplies uniform deviates. *math/rand.Rand satisfies it.
//
// The source is consumed from the simulation goroutine only; callers sharing
// one across goroutines must serialize access themselves.
type RandomSource interface {
	Float32() float32
	Intn(n int) int
}

// randRange returns a uniform deviate in [lo, hi).
func randRange(rng RandomSource, lo, hi float32) float32 {
	return lo + rng.Float32()*(hi-lo)
}
