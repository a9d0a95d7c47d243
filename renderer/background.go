package renderer

import rl "github.com/gen2brain/raylib-go/raylib"

// SkyBackground renders a vertical gradient behind the leaf layers.
type SkyBackground struct {
	screenW, screenH int32
	top, bottom      rl.Color
}

// NewSkyBackground creates a background with an autumn dusk palette.
func NewSkyBackground(screenW, screenH int32) *SkyBackground {
	return &SkyBackground{
		screenW: screenW,
		screenH: screenH,
		top:     rl.Color{R: 92, G: 128, B: 168, A: 255},
		bottom:  rl.Color{R: 232, G: 196, B: 150, A: 255},
	}
}

// Resize updates the gradient extent.
func (b *SkyBackground) Resize(screenW, screenH int32) {
	b.screenW = screenW
	b.screenH = screenH
}

// Draw fills the screen with the gradient.
func (b *SkyBackground) Draw() {
	rl.DrawRectangleGradientV(0, 0, b.screenW, b.screenH, b.top, b.bottom)
}
