// Package scene holds the leaf layers of a sector as ECS entities and steps
// them. It has no graphics dependency so it runs the same headless and under
// raylib.
package scene

import (
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/leaffall/components"
	"github.com/pthm-cable/leaffall/config"
	"github.com/pthm-cable/leaffall/systems"
	"github.com/pthm-cable/leaffall/telemetry"
)

// Scene owns the ECS world and one telemetry collector per layer.
type Scene struct {
	world *ecs.World

	layerMapper *ecs.Map3[
		components.Layer,
		components.LeafEmitter,
		components.SceneStats,
	]
	layerFilter *ecs.Filter3[
		components.Layer,
		components.LeafEmitter,
		components.SceneStats,
	]

	layerMap   *ecs.Map1[components.Layer]
	emitterMap *ecs.Map1[components.LeafEmitter]
	statsMap   *ecs.Map1[components.SceneStats]

	// Entities in draw order, with their collectors at the same index.
	order      []ecs.Entity
	collectors []*telemetry.Collector
	flushed    []telemetry.WindowStats

	tick    int32
	gravity float32
}

// LayerView is a read-only snapshot of one layer.
type LayerView struct {
	Name    string
	Z       int
	Field   *systems.LeafField
	Frames  int32
	Skipped int32
}

// New builds a scene with one leaf layer per configured layer. All layers
// draw from rng in Z order so a seed reproduces the whole scene.
func New(cfg *config.Config, palette systems.LeafPalette, rng systems.RandomSource, statsWindowSec float64) *Scene {
	world := ecs.NewWorld()

	s := &Scene{
		world: world,
		layerMapper: ecs.NewMap3[
			components.Layer,
			components.LeafEmitter,
			components.SceneStats,
		](world),
		layerFilter: ecs.NewFilter3[
			components.Layer,
			components.LeafEmitter,
			components.SceneStats,
		](world),
		layerMap:   ecs.NewMap1[components.Layer](world),
		emitterMap: ecs.NewMap1[components.LeafEmitter](world),
		statsMap:   ecs.NewMap1[components.SceneStats](world),
		gravity:    cfg.Derived.Gravity32,
	}

	if statsWindowSec <= 0 {
		statsWindowSec = cfg.Telemetry.StatsWindow
	}

	layers := append([]config.LayerConfig(nil), cfg.Layers...)
	sort.SliceStable(layers, func(i, j int) bool { return layers[i].Z < layers[j].Z })

	for _, lc := range layers {
		field := systems.NewLeafFieldWithConfig(leafFieldConfig(cfg, lc, palette), rng)

		layer := &components.Layer{Name: lc.Name, Z: lc.Z}
		emitter := &components.LeafEmitter{
			Field:   field,
			Sprites: make([]systems.LeafSprite, 0, field.Count()),
		}
		stats := &components.SceneStats{}

		e := s.layerMapper.NewEntity(layer, emitter, stats)
		s.order = append(s.order, e)
		s.collectors = append(s.collectors, telemetry.NewCollector(lc.Name, statsWindowSec, cfg.Derived.DT32))
	}

	return s
}

// leafFieldConfig maps one configured layer onto field parameters.
func leafFieldConfig(cfg *config.Config, lc config.LayerConfig, palette systems.LeafPalette) systems.LeafFieldConfig {
	return systems.LeafFieldConfig{
		ViewportW:    cfg.Derived.ScreenW32,
		ViewportH:    cfg.Derived.ScreenH32,
		VirtualWidth: cfg.LayerVirtualWidth(lc),
		Palette:      palette,
		Leaf: systems.LeafParams{
			SpinSpeed:    float32(cfg.Leaves.SpinSpeed),
			Epsilon:      float32(cfg.Leaves.Epsilon),
			WobbleFactor: float32(cfg.Leaves.WobbleFactor),
			WobbleDecay:  float32(cfg.Leaves.WobbleDecay),
			Spacing:      float32(cfg.Leaves.Spacing),
		},
		Wind: systems.WindParams{
			WindSpeed:    float32(cfg.Wind.WindSpeed),
			StateLength:  float32(cfg.Wind.StateLength),
			DecayRatio:   float32(cfg.Wind.DecayRatio),
			InitialDelay: float32(cfg.Wind.InitialDelay),
		},
		Disabled: !cfg.LayerEnabled(lc),
	}
}

// Step advances every layer by dt seconds and returns the telemetry windows
// that closed on this tick. The returned slice is reused by the next call.
// perf may be nil.
func (s *Scene) Step(dt float32, perf *telemetry.PerfCollector) []telemetry.WindowStats {
	s.tick++

	startPhase(perf, telemetry.PhaseWind)
	query := s.layerFilter.Query()
	for query.Next() {
		_, emitter, stats := query.Get()
		if !emitter.Field.Enabled() {
			stats.Skipped++
			continue
		}
		emitter.Field.AdvanceWind(dt)
		stats.Frames++
	}

	startPhase(perf, telemetry.PhaseLeaves)
	query = s.layerFilter.Query()
	for query.Next() {
		_, emitter, _ := query.Get()
		emitter.Field.AdvanceLeaves(dt, s.gravity)
	}

	startPhase(perf, telemetry.PhaseTelemetry)
	s.flushed = s.flushed[:0]
	for i, e := range s.order {
		field := s.emitterMap.Get(e).Field
		c := s.collectors[i]
		c.RecordWind(field.Wind(), dt)
		if c.ShouldFlush() {
			s.flushed = append(s.flushed, c.Flush(s.tick, field))
		}
	}

	return s.flushed
}

func startPhase(perf *telemetry.PerfCollector, phase telemetry.Phase) {
	if perf != nil {
		perf.StartPhase(phase)
	}
}

// Tick returns the number of steps taken.
func (s *Scene) Tick() int32 {
	return s.tick
}

// Gravity returns the sector gravity.
func (s *Scene) Gravity() float32 {
	return s.gravity
}

// SetGravity changes the sector gravity. Negative values clamp to zero.
func (s *Scene) SetGravity(g float32) {
	if g < 0 {
		g = 0
	}
	s.gravity = g
}

// NumLayers returns the layer count.
func (s *Scene) NumLayers() int {
	return len(s.order)
}

// Layer returns a snapshot of the i-th layer in draw order.
func (s *Scene) Layer(i int) LayerView {
	e := s.order[i]
	layer := s.layerMap.Get(e)
	stats := s.statsMap.Get(e)
	return LayerView{
		Name:    layer.Name,
		Z:       layer.Z,
		Field:   s.emitterMap.Get(e).Field,
		Frames:  stats.Frames,
		Skipped: stats.Skipped,
	}
}

// SetLayerEnabled enables or disables the i-th layer.
func (s *Scene) SetLayerEnabled(i int, enabled bool) {
	s.emitterMap.Get(s.order[i]).Field.SetEnabled(enabled)
}

// ToggleAll flips every layer to the opposite of the first layer's state,
// so mixed scenes converge on one setting.
func (s *Scene) ToggleAll() bool {
	if len(s.order) == 0 {
		return false
	}
	enabled := !s.emitterMap.Get(s.order[0]).Field.Enabled()
	for i := range s.order {
		s.SetLayerEnabled(i, enabled)
	}
	return enabled
}

// Sprites rebuilds and returns the render view of the i-th layer. The slice
// is owned by the layer and valid until the next call.
func (s *Scene) Sprites(i int) []systems.LeafSprite {
	emitter := s.emitterMap.Get(s.order[i])
	emitter.Sprites = emitter.Field.Sprites(emitter.Sprites)
	return emitter.Sprites
}

// TotalLeaves returns the leaf count across layers.
func (s *Scene) TotalLeaves() int {
	n := 0
	query := s.layerFilter.Query()
	for query.Next() {
		_, emitter, _ := query.Get()
		n += emitter.Field.Count()
	}
	return n
}
