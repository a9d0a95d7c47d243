package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// LayerInfo summarizes one leaf layer for display.
type LayerInfo struct {
	Name      string
	Z         int
	Enabled   bool
	Leaves    int
	WindState string
	Wind      float32
	Onset     float32
	TimeLeft  float32
}

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title     string
	Tick      int32
	FPS       int32
	Paused    bool
	Gravity   float32
	WindLimit float32 // Scale for wind bars
	Missing   int     // Leaf images replaced by placeholders
	Layers    []LayerInfo
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
	width    int32
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
		width:    300,
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer
	x, y := int32(10), int32(10)

	rl.DrawText(data.Title, x, y, 20, rl.White)
	y += 25

	rl.DrawText(
		fmt.Sprintf("Tick: %d | FPS: %d | Gravity: %.1f", data.Tick, data.FPS, data.Gravity),
		x, y, 16, rl.LightGray,
	)
	y += 20

	if data.Paused {
		rl.DrawText("PAUSED", x, y, 16, rl.Yellow)
		y += 20
	}
	if data.Missing > 0 {
		rl.DrawText(fmt.Sprintf("%d leaf images missing", data.Missing), x, y, 14, rl.Orange)
		y += 18
	}

	panelH := int32(len(data.Layers))*(r.Theme.LineHeight*4+6) + r.Theme.Padding*2
	r.DrawPanel(x, y, h.width, panelH)
	y += r.Theme.Padding
	inner := x + r.Theme.Padding

	for _, l := range data.Layers {
		status := "on"
		if !l.Enabled {
			status = "off"
		}
		y = r.DrawSectionHeader(inner, y, fmt.Sprintf("%s (z %d, %d leaves, %s)", l.Name, l.Z, l.Leaves, status))
		y = r.DrawLabelValue(inner, y, "Phase", fmt.Sprintf("%s %.2fs", l.WindState, l.TimeLeft))
		y = r.DrawCenteredBar(inner, y, "Wind", l.Wind, data.WindLimit, h.width-r.Theme.Padding*2)
		y = r.DrawCenteredBar(inner, y, "Onset", l.Onset, data.WindLimit, h.width-r.Theme.Padding*2)
		y += 4
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders frame phase timings.
type PerfPanel struct {
	x, y int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// PerfRow is one line of the perf panel.
type PerfRow struct {
	Name string
	Avg  time.Duration
	Pct  float64
}

// Draw renders the frame time and one row per phase.
func (p *PerfPanel) Draw(avgTick time.Duration, rows []PerfRow) {
	x, y := p.x, p.y

	rl.DrawText(fmt.Sprintf("Frame: %s", avgTick.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for _, row := range rows {
		color := rl.LightGray
		if row.Pct > 50 {
			color = rl.Orange
		}
		rl.DrawText(fmt.Sprintf("%-10s %8s %5.1f%%", row.Name, row.Avg.Round(time.Microsecond), row.Pct), x, y, 12, color)
		y += 14
	}
}
