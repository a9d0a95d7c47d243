package systems

import (
	"math"
)

// LeafSizeClasses is the number of discrete leaf sizes, one palette slot each.
const LeafSizeClasses = 18

// TextureID is an opaque handle to a leaf image. The simulation never
// dereferences it; zero is a valid value.
type TextureID uint16

// LeafPalette maps size class to texture handle.
type LeafPalette [LeafSizeClasses]TextureID

// IdentityPalette maps each size class to the handle of the same number.
// Used when no images are loaded.
func IdentityPalette() LeafPalette {
	var p LeafPalette
	for i := range p {
		p[i] = TextureID(i)
	}
	return p
}

// LeafParams tunes per-leaf motion.
type LeafParams struct {
	SpinSpeed    float32 // spin speed is drawn from [-SpinSpeed, SpinSpeed] deg/s
	Epsilon      float32 // per-tick jitter bound on drift and wobble
	WobbleFactor float32 // wobble gain toward the anchor per tick
	WobbleDecay  float32 // wobble multiplier per tick
	Spacing      float32 // virtual width per leaf
}

// DefaultLeafParams returns the reference tuning.
func DefaultLeafParams() LeafParams {
	return LeafParams{
		SpinSpeed:    20.0,
		Epsilon:      0.5,
		WobbleFactor: 4 * 0.005,
		WobbleDecay:  0.99,
		Spacing:      10.0,
	}
}

// LeafParticle is one falling leaf.
type LeafParticle struct {
	X, Y       float32
	AnchorX    float32 // x the wobble pulls toward; drifts with the wind
	DriftSpeed float32
	Wobble     float32
	Speed      float32 // fall rate, fixed at creation
	LeafSize   float32 // inertia divisor, (class+3)^4
	Angle      float32 // degrees
	SpinSpeed  float32 // degrees per second
	SizeClass  uint8
	Texture    TextureID
}

// LeafSprite is the subset of a leaf a renderer needs.
type LeafSprite struct {
	X, Y    float32
	Angle   float32
	Texture TextureID
}

// LeafFieldConfig describes a leaf field.
type LeafFieldConfig struct {
	ViewportW, ViewportH float32
	VirtualWidth         float32 // 0 = twice the viewport width
	Palette              LeafPalette
	Leaf                 LeafParams
	Wind                 WindParams
	Disabled             bool
}

// LeafField owns a fixed population of leaves and the wind that blows them.
// It is not safe for concurrent use.
type LeafField struct {
	leaves  []LeafParticle
	wind    *WindEnvelope
	rng     RandomSource
	params  LeafParams
	palette LeafPalette

	virtualW, virtualH float32
	enabled            bool
}

// NewLeafField creates a field with the reference tuning for a viewport.
func NewLeafField(viewportW, viewportH float32, palette LeafPalette, rng RandomSource) *LeafField {
	return NewLeafFieldWithConfig(LeafFieldConfig{
		ViewportW: viewportW,
		ViewportH: viewportH,
		Palette:   palette,
		Leaf:      DefaultLeafParams(),
		Wind:      DefaultWindParams(),
	}, rng)
}

// NewLeafFieldWithConfig creates a field and seeds every leaf from rng.
func NewLeafFieldWithConfig(cfg LeafFieldConfig, rng RandomSource) *LeafField {
	virtualW := cfg.VirtualWidth
	if virtualW <= 0 {
		virtualW = cfg.ViewportW * 2
	}
	spacing := cfg.Leaf.Spacing
	if spacing <= 0 {
		spacing = DefaultLeafParams().Spacing
	}

	f := &LeafField{
		wind:     NewWindEnvelope(cfg.Wind, rng),
		rng:      rng,
		params:   cfg.Leaf,
		palette:  cfg.Palette,
		virtualW: virtualW,
		virtualH: cfg.ViewportH,
		enabled:  !cfg.Disabled,
	}

	count := int(virtualW / spacing)
	f.leaves = make([]LeafParticle, count)
	for i := range f.leaves {
		f.leaves[i] = f.newLeaf(rng.Intn(LeafSizeClasses))
	}

	return f
}

// newLeaf creates a leaf of the given size class at a random position.
func (f *LeafField) newLeaf(class int) LeafParticle {
	rng := f.rng
	x := randRange(rng, 0, f.virtualW)
	y := randRange(rng, 0, f.virtualH)
	anchorX := x + randRange(rng, -0.5, 0.5)*16
	drift := randRange(rng, -0.5, 0.5) * 0.3

	// Smaller classes fall faster; the class term is an integer step.
	speed := 6.32 * (1 + float32((2-class)/2) + randRange(rng, 0, 1.8))

	return LeafParticle{
		X:          x,
		Y:          y,
		AnchorX:    anchorX,
		DriftSpeed: drift,
		Speed:      speed,
		LeafSize:   LeafSizeFor(class),
		Angle:      randRange(rng, 0, 360),
		SpinSpeed:  randRange(rng, -f.params.SpinSpeed, f.params.SpinSpeed),
		SizeClass:  uint8(class),
		Texture:    f.palette[class],
	}
}

// LeafSizeFor maps a size class to its inertia divisor.
func LeafSizeFor(class int) float32 {
	s := float32(class + 3)
	return s * s * s * s
}

// Update advances wind and leaves by dt seconds under the given gravity.
// It does nothing while the field is disabled.
func (f *LeafField) Update(dt, gravity float32) {
	if !f.enabled {
		return
	}

	f.AdvanceWind(dt)
	f.AdvanceLeaves(dt, gravity)
}

// AdvanceWind steps only the wind envelope. Together with AdvanceLeaves it
// splits Update so callers can time the two halves.
func (f *LeafField) AdvanceWind(dt float32) {
	if !f.enabled {
		return
	}
	f.wind.Update(dt)
}

// AdvanceLeaves integrates the leaves against the current wind velocity.
func (f *LeafField) AdvanceLeaves(dt, gravity float32) {
	if !f.enabled {
		return
	}

	gust := f.wind.Velocity()
	sqG := float32(math.Sqrt(float64(gravity)))

	eps := f.params.Epsilon
	wobbleFactor := f.params.WobbleFactor
	wobbleDecay := f.params.WobbleDecay

	for i := range f.leaves {
		p := &f.leaves[i]

		// Falling
		p.Y += p.Speed * dt * sqG

		// Drift approaches the wind at a rate set by leaf size
		p.DriftSpeed += (gust-p.DriftSpeed)/p.LeafSize + randRange(f.rng, -eps, eps)
		p.AnchorX += p.DriftSpeed * dt

		// Wobble pulls toward the anchor
		p.X += p.Wobble * dt * sqG
		delta := p.AnchorX - p.X
		p.Wobble += wobbleFactor*delta + randRange(f.rng, -eps, eps)
		p.Wobble *= wobbleDecay

		// Spin
		p.Angle += p.SpinSpeed * dt
		p.Angle = float32(math.Mod(float64(p.Angle), 360))
	}
}

// SetEnabled gates Update. Disabling freezes leaves in place.
func (f *LeafField) SetEnabled(enabled bool) {
	f.enabled = enabled
}

// Enabled reports whether Update advances the field.
func (f *LeafField) Enabled() bool {
	return f.enabled
}

// Particles returns a copy of the leaves.
func (f *LeafField) Particles() []LeafParticle {
	return append([]LeafParticle(nil), f.leaves...)
}

// Leaf returns the i-th leaf by value.
func (f *LeafField) Leaf(i int) LeafParticle {
	return f.leaves[i]
}

// Sprites appends a render view of every leaf to dst and returns it.
func (f *LeafField) Sprites(dst []LeafSprite) []LeafSprite {
	dst = dst[:0]
	for i := range f.leaves {
		p := &f.leaves[i]
		dst = append(dst, LeafSprite{X: p.X, Y: p.Y, Angle: p.Angle, Texture: p.Texture})
	}
	return dst
}

// Count returns the number of leaves.
func (f *LeafField) Count() int {
	return len(f.leaves)
}

// Wind returns the field's wind envelope.
func (f *LeafField) Wind() *WindEnvelope {
	return f.wind
}

// VirtualSize returns the extent leaves are spread over.
func (f *LeafField) VirtualSize() (w, h float32) {
	return f.virtualW, f.virtualH
}
