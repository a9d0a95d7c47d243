package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/leaffall/assets"
	"github.com/pthm-cable/leaffall/camera"
	"github.com/pthm-cable/leaffall/systems"
)

// LeafRenderer draws leaf sprites from an atlas.
type LeafRenderer struct {
	atlas *assets.LeafAtlas
}

// NewLeafRenderer creates a renderer for the given atlas.
func NewLeafRenderer(atlas *assets.LeafAtlas) *LeafRenderer {
	return &LeafRenderer{atlas: atlas}
}

// Draw renders sprites for a layer that repeats every spanW by spanH units.
func (r *LeafRenderer) Draw(cam *camera.Camera, sprites []systems.LeafSprite, spanW, spanH float32) {
	for i := range sprites {
		s := &sprites[i]

		tex, ok := r.atlas.Texture(s.Texture)
		if !ok {
			continue
		}
		w, h := float32(tex.Width), float32(tex.Height)

		sx, sy := cam.Wrap(s.X, s.Y, spanW, spanH)
		if !cam.IsVisible(sx, sy, max(w, h)) {
			continue
		}

		// Rotate about the leaf center
		rl.DrawTexturePro(
			tex,
			rl.Rectangle{X: 0, Y: 0, Width: w, Height: h},
			rl.Rectangle{X: sx, Y: sy, Width: w, Height: h},
			rl.Vector2{X: w / 2, Y: h / 2},
			s.Angle,
			rl.White,
		)
	}
}
