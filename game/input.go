package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	panSpeed    = 400 // pixels per second
	gravityStep = 1
	maxGravity  = 40
)

// handleInput processes keyboard input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeyP) {
		g.paused = !g.paused
	}

	// Leaves on/off for every layer
	if rl.IsKeyPressed(rl.KeyE) {
		enabled := g.scene.ToggleAll()
		slog.Info("leaves toggled", "enabled", enabled, "tick", g.scene.Tick())
	}

	if rl.IsKeyPressed(rl.KeyTab) {
		g.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyF3) {
		g.perfLog = !g.perfLog
	}
	if rl.IsKeyPressed(rl.KeyL) {
		g.logSceneState()
		g.logPerfStats()
	}

	// Gravity with + and - (main row or keypad)
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.setGravity(g.scene.Gravity() + gravityStep)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.setGravity(g.scene.Gravity() - gravityStep)
	}

	g.handleCameraInput()
}

func (g *Game) setGravity(v float32) {
	if v > maxGravity {
		v = maxGravity
	}
	g.scene.SetGravity(v)
}

// handleCameraInput pans with the arrow keys and resets with R.
func (g *Game) handleCameraInput() {
	step := panSpeed * rl.GetFrameTime()

	var dx, dy float32
	if rl.IsKeyDown(rl.KeyLeft) {
		dx -= step
	}
	if rl.IsKeyDown(rl.KeyRight) {
		dx += step
	}
	if rl.IsKeyDown(rl.KeyUp) {
		dy -= step
	}
	if rl.IsKeyDown(rl.KeyDown) {
		dy += step
	}
	if dx != 0 || dy != 0 {
		g.camera.Pan(dx, dy)
	}

	if rl.IsKeyPressed(rl.KeyR) {
		g.camera.Reset()
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(w, h)
	g.background.Resize(int32(w), int32(h))
	g.perfPanel.SetPosition(int32(w)-260, 10)
	g.controls.SetPosition(int32(w)-250, 120)
}
