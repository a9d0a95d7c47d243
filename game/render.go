package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/leaffall/telemetry"
	"github.com/pthm-cable/leaffall/ui"
)

const controlsHelp = "[E] Leaves  [P] Pause  [Tab] Controls  [+/-] Gravity  [Arrows] Pan  [R] Reset  [F3] Perf  [L] Log"

// Draw renders the frame and closes the perf tick opened by Update.
func (g *Game) Draw() {
	g.perfCollector.StartPhase(telemetry.PhaseRender)
	g.perfCollector.RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	g.background.Draw()

	// Layers are already in Z order
	for i := 0; i < g.scene.NumLayers(); i++ {
		w, h := g.scene.Layer(i).Field.VirtualSize()
		g.leafRenderer.Draw(g.camera, g.scene.Sprites(i), w, h)
	}

	g.drawUI()

	rl.EndDrawing()
	g.perfCollector.EndTick()
}

// drawUI renders the HUD and panels.
func (g *Game) drawUI() {
	data := ui.HUDData{
		Title:     "Leaf Fall",
		Tick:      g.scene.Tick(),
		FPS:       rl.GetFPS(),
		Paused:    g.paused,
		Gravity:   g.scene.Gravity(),
		WindLimit: float32(g.cfg.Wind.WindSpeed),
		Missing:   g.atlas.Placeholders(),
		Layers:    make([]ui.LayerInfo, 0, g.scene.NumLayers()),
	}
	for i := 0; i < g.scene.NumLayers(); i++ {
		l := g.scene.Layer(i)
		wind := l.Field.Wind()
		data.Layers = append(data.Layers, ui.LayerInfo{
			Name:      l.Name,
			Z:         l.Z,
			Enabled:   l.Field.Enabled(),
			Leaves:    l.Field.Count(),
			WindState: wind.State().String(),
			Wind:      wind.Velocity(),
			Onset:     wind.Onset(),
			TimeLeft:  wind.TimeLeft(),
		})
	}
	g.hud.Draw(data)
	g.hud.DrawControls(int32(g.screenHeight), controlsHelp)

	if g.perfLog {
		stats := g.perfCollector.Stats()
		rows := make([]ui.PerfRow, 0, 4)
		for _, ph := range telemetry.PhaseOrder() {
			pt := stats.Phase(ph)
			rows = append(rows, ui.PerfRow{Name: ph.String(), Avg: pt.Avg, Pct: pt.Pct})
		}
		g.perfPanel.Draw(stats.AvgTickDuration, rows)
	}

	g.drawControls()
}

// drawControls syncs the raygui panel with the scene and applies edits.
func (g *Game) drawControls() {
	if !g.controls.IsVisible() {
		return
	}

	st := &g.controlState
	st.Gravity = g.scene.Gravity()
	st.MaxGravity = maxGravity
	st.Paused = g.paused
	st.Layers = st.Layers[:0]
	for i := 0; i < g.scene.NumLayers(); i++ {
		l := g.scene.Layer(i)
		st.Layers = append(st.Layers, ui.LayerToggle{Name: l.Name, Enabled: l.Field.Enabled()})
	}

	if !g.controls.Draw(st) {
		return
	}

	g.setGravity(st.Gravity)
	g.paused = st.Paused
	for i, l := range st.Layers {
		g.scene.SetLayerEnabled(i, l.Enabled)
	}
}
