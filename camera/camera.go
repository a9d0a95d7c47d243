// Package camera provides a scrolling 2D camera for the leaf layers.
package camera

import "math"

// Camera controls the viewport into the scene.
// Leaf layers tile endlessly, so positions are wrapped rather than clipped.
type Camera struct {
	// Scroll offset: world coordinates of the viewport's top-left corner
	X, Y float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32
}

// New creates a camera at the world origin.
func New(viewportW, viewportH float32) *Camera {
	return &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
	}
}

// Wrap maps a world position onto the screen for a layer that repeats every
// spanW by spanH units. The result lies in [0, spanW) x [0, spanH).
func (c *Camera) Wrap(wx, wy, spanW, spanH float32) (sx, sy float32) {
	sx = mod(wx-c.X, spanW)
	sy = mod(wy-c.Y, spanH)
	return sx, sy
}

// IsVisible returns true if a circle at screen position (sx, sy) with the
// given radius overlaps the viewport.
func (c *Camera) IsVisible(sx, sy, radius float32) bool {
	return sx+radius >= 0 && sx-radius <= c.ViewportW &&
		sy+radius >= 0 && sy-radius <= c.ViewportH
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	c.X += dx
	c.Y += dy
}

// Reset returns the camera to the origin.
func (c *Camera) Reset() {
	c.X = 0
	c.Y = 0
}

// mod computes the positive modulo (Go's % can return negative).
func mod(x, m float32) float32 {
	if m <= 0 {
		return x
	}
	r := float32(math.Mod(float64(x), float64(m)))
	if r < 0 {
		r += m
	}
	// Rounding can land exactly on m for tiny negative x.
	if r >= m {
		r = 0
	}
	return r
}
