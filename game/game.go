// Package game hosts the leaf scene: it owns the scene, telemetry, input and
// rendering, and drives them once per frame.
package game

import (
	"log/slog"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/leaffall/assets"
	"github.com/pthm-cable/leaffall/camera"
	"github.com/pthm-cable/leaffall/config"
	"github.com/pthm-cable/leaffall/renderer"
	"github.com/pthm-cable/leaffall/scene"
	"github.com/pthm-cable/leaffall/systems"
	"github.com/pthm-cable/leaffall/telemetry"
	"github.com/pthm-cable/leaffall/ui"
)

// maxFrameTime caps the step taken after a stall (window drag, breakpoint).
const maxFrameTime = 0.1

// Options configures a new game.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64 // 0 = telemetry.stats_window
	OutputDir      string  // empty = no CSV output
	Headless       bool
}

// Game holds the scene and everything that presents it.
type Game struct {
	cfg   *config.Config
	rng   *rand.Rand
	scene *scene.Scene

	paused   bool
	headless bool
	perfLog  bool

	screenWidth, screenHeight float32

	// Graphics (nil when headless)
	camera       *camera.Camera
	atlas        *assets.LeafAtlas
	leafRenderer *renderer.LeafRenderer
	background   *renderer.SkyBackground
	hud          *ui.HUD
	perfPanel    *ui.PerfPanel
	controls     *ui.ControlsPanel
	controlState ui.ControlsState

	// Telemetry
	perfCollector     *telemetry.PerfCollector
	outputManager     *telemetry.OutputManager
	bookmarkDetectors map[string]*telemetry.BookmarkDetector
	logStats          bool
	statsCallback     func(telemetry.WindowStats)
}

// NewGameWithOptions creates a game. A graphical game requires an open
// raylib window; a headless one never touches raylib.
func NewGameWithOptions(opts Options) *Game {
	cfg := config.Cfg()

	g := &Game{
		cfg:           cfg,
		rng:           rand.New(rand.NewSource(opts.Seed)),
		headless:      opts.Headless,
		logStats:      opts.LogStats,
		screenWidth:   cfg.Derived.ScreenW32,
		screenHeight:  cfg.Derived.ScreenH32,
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),

		bookmarkDetectors: make(map[string]*telemetry.BookmarkDetector),
	}

	palette := systems.IdentityPalette()
	if !opts.Headless {
		g.atlas = assets.LoadLeafAtlas(cfg.Leaves.ImageDir)
		palette = g.atlas.Palette()

		g.camera = camera.New(g.screenWidth, g.screenHeight)
		g.leafRenderer = renderer.NewLeafRenderer(g.atlas)
		g.background = renderer.NewSkyBackground(int32(cfg.Screen.Width), int32(cfg.Screen.Height))
		g.hud = ui.NewHUD()
		g.perfPanel = ui.NewPerfPanel(int32(cfg.Screen.Width)-260, 10)
		g.controls = ui.NewControlsPanel(int32(cfg.Screen.Width)-250, 120, 240)
	}

	g.scene = scene.New(cfg, palette, g.rng, opts.StatsWindowSec)

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			slog.Error("failed to create output manager", "error", err)
		} else {
			g.outputManager = om
			if err := om.WriteConfig(cfg); err != nil {
				slog.Error("failed to write config", "error", err)
			}
		}
	}

	slog.Info("scene created",
		"seed", opts.Seed,
		"layers", g.scene.NumLayers(),
		"leaves", g.scene.TotalLeaves(),
		"gravity", g.scene.Gravity(),
		"headless", opts.Headless,
	)

	return g
}

// SetStatsCallback registers a function called with every closed
// telemetry window.
func (g *Game) SetStatsCallback(fn func(telemetry.WindowStats)) {
	g.statsCallback = fn
}

// Update runs one frame of the windowed game: input, then one scene step
// sized by the real frame time.
func (g *Game) Update() {
	g.perfCollector.StartTick()
	g.handleInput()
	if g.paused {
		return
	}

	dt := rl.GetFrameTime()
	if dt > maxFrameTime {
		dt = maxFrameTime
	}
	g.step(dt)
}

// UpdateHeadless runs one fixed-dt scene step without input or graphics.
func (g *Game) UpdateHeadless() {
	g.perfCollector.StartTick()
	g.step(g.cfg.Derived.DT32)
	g.perfCollector.EndTick()
}

// step advances the scene once and routes telemetry. In windowed mode the
// perf tick stays open until Draw closes it.
func (g *Game) step(dt float32) {
	flushed := g.scene.Step(dt, g.perfCollector)
	if len(flushed) > 0 {
		g.flushTelemetry(flushed)
	}
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.scene.Tick()
}

// Scene exposes the simulated layers.
func (g *Game) Scene() *scene.Scene {
	return g.scene
}

// Unload releases GPU resources and closes output files.
func (g *Game) Unload() {
	if g.atlas != nil {
		g.atlas.Unload()
	}
	if g.outputManager != nil {
		if err := g.outputManager.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}
}
