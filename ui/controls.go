package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsState is what the controls panel reads and edits.
type ControlsState struct {
	Gravity    float32
	MaxGravity float32
	Paused     bool
	Layers     []LayerToggle
}

// LayerToggle is one enable switch in the panel.
type LayerToggle struct {
	Name    string
	Enabled bool
}

// ControlsPanel renders the right-side panel with raygui widgets.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the panel and applies edits to state. Returns true if
// anything changed.
func (c *ControlsPanel) Draw(state *ControlsState) bool {
	if !c.visible {
		return false
	}

	r := c.renderer
	pad := float32(r.Theme.Padding)
	rowH := float32(28)
	height := pad*2 + rowH*float32(4+len(state.Layers))
	r.DrawPanel(c.x, c.y, c.width, int32(height))

	x := float32(c.x) + pad
	y := float32(c.y) + pad
	w := float32(c.width) - pad*2
	changed := false

	rl.DrawText("Controls", int32(x), int32(y), 16, rl.White)
	y += rowH

	rl.DrawText(fmt.Sprintf("Gravity %.1f", state.Gravity), int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
	y += 14
	gravity := gui.SliderBar(
		rl.Rectangle{X: x + 20, Y: y, Width: w - 50, Height: 16},
		"0", fmt.Sprintf("%.0f", state.MaxGravity),
		state.Gravity, 0, state.MaxGravity,
	)
	if gravity != state.Gravity {
		state.Gravity = gravity
		changed = true
	}
	y += rowH

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: w, Height: 22}, toggleText(state.Paused, "Resume", "Pause")) {
		state.Paused = !state.Paused
		changed = true
	}
	y += rowH

	for i := range state.Layers {
		l := &state.Layers[i]
		label := fmt.Sprintf("%s: %s", l.Name, toggleText(l.Enabled, "on", "off"))
		if gui.Button(rl.Rectangle{X: x, Y: y, Width: w, Height: 22}, label) {
			l.Enabled = !l.Enabled
			changed = true
		}
		y += rowH
	}

	return changed
}
