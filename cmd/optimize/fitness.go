package main

import (
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/leaffall/config"
	"github.com/pthm-cable/leaffall/scene"
	"github.com/pthm-cable/leaffall/systems"
	"github.com/pthm-cable/leaffall/telemetry"
)

// Targets are the motion statistics a tuned configuration should produce.
type Targets struct {
	DriftMeanAbs  float64 // px/s
	WobbleRMS     float64 // px/s
	GustsPerMin   float64
	WarmupWindows int // leading windows ignored while leaves settle
}

// FitnessEvaluator runs headless scenes and scores them against Targets.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64
	targets     Targets

	mu          sync.Mutex
	lastWindows int // windows scored in the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config, targets Targets) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 10.0,
		targets:     targets,
	}
}

// LastWindows returns how many windows the most recent evaluation scored.
func (fe *FitnessEvaluator) LastWindows() int {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastWindows
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	windows int
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			windows := fe.runScene(x, s)
			results[idx] = seedResult{
				fitness: fe.computeFitness(windows),
				windows: len(windows),
			}
		}(i, seed)
	}
	wg.Wait()

	var total float64
	var windows int
	for _, r := range results {
		total += r.fitness
		windows += r.windows
	}

	fe.mu.Lock()
	fe.lastWindows = windows
	fe.mu.Unlock()

	return total / float64(len(fe.seeds))
}

// runScene steps a fresh scene for maxTicks and returns every closed window.
func (fe *FitnessEvaluator) runScene(x []float64, seed int64) []telemetry.WindowStats {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	rng := rand.New(rand.NewSource(seed))
	s := scene.New(cfg, systems.IdentityPalette(), rng, fe.statsWindow)

	var windows []telemetry.WindowStats
	for s.Tick() < fe.maxTicks {
		windows = append(windows, s.Step(cfg.Derived.DT32, nil)...)
	}
	return windows
}

// copyConfig creates a copy of the base config safe to modify per run.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Layers = append([]config.LayerConfig(nil), fe.baseConfig.Layers...)
	return &cfg
}

// Fitness component weights.
const (
	weightDrift  = 0.4
	weightWobble = 0.4
	weightGusts  = 0.2

	// Returned when no window survives warmup.
	noDataFitness = 1e3
)

// computeFitness is the weighted mean squared log error of the window
// statistics against the targets. Zero means every window hit every target.
func (fe *FitnessEvaluator) computeFitness(windows []telemetry.WindowStats) float64 {
	if len(windows) <= fe.targets.WarmupWindows {
		return noDataFitness
	}
	valid := windows[fe.targets.WarmupWindows:]

	drift := make([]float64, len(valid))
	wobble := make([]float64, len(valid))
	gusts := make([]float64, len(valid))
	for i, w := range valid {
		drift[i] = sqLogErr(w.DriftMeanAbs, fe.targets.DriftMeanAbs)
		wobble[i] = sqLogErr(w.WobbleRMS, fe.targets.WobbleRMS)
		gusts[i] = sqLogErr(gustsPerMinute(w), fe.targets.GustsPerMin)
	}

	return weightDrift*stat.Mean(drift, nil) +
		weightWobble*stat.Mean(wobble, nil) +
		weightGusts*stat.Mean(gusts, nil)
}

// gustsPerMinute scales the window's gust count by the simulated time it covered.
func gustsPerMinute(w telemetry.WindowStats) float64 {
	if w.WindowSec <= 0 {
		return 0
	}
	return float64(w.Gusts) * 60 / w.WindowSec
}

// sqLogErr is (ln(got/want))^2 with both sides floored to keep it finite.
func sqLogErr(got, want float64) float64 {
	const floor = 1e-3
	got = math.Max(got, floor)
	want = math.Max(want, floor)
	e := math.Log(got / want)
	return e * e
}
