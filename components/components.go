// Package components defines ECS components for the leaf scene.
package components

import "github.com/pthm-cable/leaffall/systems"

// Layer places a scene object in draw order.
type Layer struct {
	Name string
	Z    int // lower draws first
}

// LeafEmitter attaches a leaf field to a layer entity.
type LeafEmitter struct {
	Field *systems.LeafField

	// Sprites is the render view rebuilt each frame.
	Sprites []systems.LeafSprite
}

// SceneStats holds per-layer counters for the HUD.
type SceneStats struct {
	Frames  int32 // ticks the layer was advanced
	Skipped int32 // ticks the layer was disabled
}
