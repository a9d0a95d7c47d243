package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/leaffall/config"
	"github.com/pthm-cable/leaffall/telemetry"
)

func TestParamVectorNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("%s: got %v, want %v", pv.Specs[i].Name, back[i], raw[i])
		}
	}
}

func TestParamVectorDefaultsMatchConfig(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	pv := NewParamVector()
	got := pv.ExtractFromConfig(cfg)
	for i, spec := range pv.Specs {
		if math.Abs(got[i]-spec.Default) > 1e-9 {
			t.Errorf("%s: config %v, default %v", spec.Name, got[i], spec.Default)
		}
	}
}

func TestApplyToConfigClamps(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	pv := NewParamVector()
	pv.ApplyToConfig(cfg, []float64{1000, -1, 0.5, 1, 0.01, 2})

	if cfg.Wind.WindSpeed != 80 {
		t.Errorf("WindSpeed = %v, want 80", cfg.Wind.WindSpeed)
	}
	if cfg.Wind.StateLength != 1 {
		t.Errorf("StateLength = %v, want 1", cfg.Wind.StateLength)
	}
	if cfg.Leaves.WobbleDecay != 0.999 {
		t.Errorf("WobbleDecay = %v, want 0.999", cfg.Leaves.WobbleDecay)
	}
}

func TestComputeFitness(t *testing.T) {
	targets := Targets{DriftMeanAbs: 10, WobbleRMS: 20, GustsPerMin: 6, WarmupWindows: 1}
	fe := NewFitnessEvaluator(NewParamVector(), 0, nil, nil, targets)

	onTarget := telemetry.WindowStats{DriftMeanAbs: 10, WobbleRMS: 20, Gusts: 1, WindowSec: 10}
	warmup := telemetry.WindowStats{DriftMeanAbs: 500}

	if got := fe.computeFitness([]telemetry.WindowStats{warmup, onTarget, onTarget}); math.Abs(got) > 1e-12 {
		t.Errorf("on-target fitness = %v, want 0", got)
	}

	off := onTarget
	off.DriftMeanAbs = 10 * math.E
	want := weightDrift * 1.0
	if got := fe.computeFitness([]telemetry.WindowStats{warmup, off}); math.Abs(got-want) > 1e-9 {
		t.Errorf("fitness = %v, want %v", got, want)
	}

	if got := fe.computeFitness([]telemetry.WindowStats{warmup}); got != noDataFitness {
		t.Errorf("no data fitness = %v, want %v", got, noDataFitness)
	}
}

func TestEvaluateRunsScenes(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Leaves.VirtualWidth = 200 // keep the run small

	targets := Targets{DriftMeanAbs: 10, WobbleRMS: 20, GustsPerMin: 6}
	fe := NewFitnessEvaluator(NewParamVector(), 1200, []int64{1, 2}, cfg, targets)
	fe.statsWindow = 5

	got := fe.Evaluate(fe.params.DefaultVector())
	if math.IsNaN(got) || got < 0 || got >= noDataFitness {
		t.Errorf("Evaluate = %v", got)
	}
	if fe.LastWindows() != 8 {
		t.Errorf("LastWindows() = %d, want 8", fe.LastWindows())
	}
}
