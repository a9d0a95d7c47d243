package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/leaffall/config"
)

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// EvalRecord is one optimize_log.csv row. Field order matches NewParamVector.
type EvalRecord struct {
	Eval         int     `csv:"eval"`
	Fitness      float64 `csv:"fitness"`
	Windows      int     `csv:"windows"`
	WindSpeed    float64 `csv:"wind_speed"`
	StateLength  float64 `csv:"state_length"`
	DecayRatio   float64 `csv:"decay_ratio"`
	Epsilon      float64 `csv:"epsilon"`
	WobbleFactor float64 `csv:"wobble_factor"`
	WobbleDecay  float64 `csv:"wobble_decay"`
}

func newEvalRecord(eval int, fitness float64, windows int, v []float64) EvalRecord {
	return EvalRecord{
		Eval:         eval,
		Fitness:      fitness,
		Windows:      windows,
		WindSpeed:    v[0],
		StateLength:  v[1],
		DecayRatio:   v[2],
		Epsilon:      v[3],
		WobbleFactor: v[4],
		WobbleDecay:  v[5],
	}
}

// progress tracks the best evaluation and prints one line per evaluation.
type progress struct {
	maxEvals int
	start    time.Time
	count    int
	best     float64
	bestX    []float64
}

func (p *progress) record(fitness float64, x []float64, windows int) {
	p.count++
	if p.bestX == nil || fitness < p.best {
		p.best = fitness
		p.bestX = append(p.bestX[:0], x...)
	}

	elapsed := time.Since(p.start)
	remaining := time.Duration(p.maxEvals-p.count) * (elapsed / time.Duration(p.count))
	fmt.Printf("Eval %d/%d: fitness=%.4f windows=%d (best=%.4f) | elapsed: %s, ETA: %s\n",
		p.count, p.maxEvals, fitness, windows, p.best,
		formatDuration(elapsed), formatDuration(remaining))
}

type options struct {
	configPath string
	outputDir  string
	maxTicks   int
	seeds      int
	maxEvals   int
	population int
	targets    Targets
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	flag.IntVar(&opts.maxTicks, "max-ticks", 36000, "Simulation length per run in ticks")
	flag.IntVar(&opts.seeds, "seeds", 3, "Number of seeds per evaluation")
	flag.IntVar(&opts.maxEvals, "max-evals", 200, "Maximum number of evaluations")
	flag.IntVar(&opts.population, "population", 0, "CMA-ES population size (0 = auto)")
	flag.StringVar(&opts.outputDir, "output", "", "Output directory for results")
	flag.Float64Var(&opts.targets.DriftMeanAbs, "target-drift", 12, "Target mean |drift| in px/s")
	flag.Float64Var(&opts.targets.WobbleRMS, "target-wobble", 20, "Target wobble RMS in px/s")
	flag.Float64Var(&opts.targets.GustsPerMin, "target-gusts", 4, "Target gusts per minute")
	flag.IntVar(&opts.targets.WarmupWindows, "warmup", 2, "Leading stats windows to ignore")
	flag.Parse()

	if opts.outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := run(opts); err != nil {
		log.Fatal(err)
	}
}

func run(opts options) error {
	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	baseCfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	params := NewParamVector()
	seeds := make([]int64, opts.seeds)
	for i := range seeds {
		seeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, int32(opts.maxTicks), seeds, baseCfg, opts.targets)

	logFile, err := os.Create(filepath.Join(opts.outputDir, "optimize_log.csv"))
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()

	headerWritten := false
	prog := &progress{maxEvals: opts.maxEvals, start: time.Now()}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(raw)
			windows := evaluator.LastWindows()
			prog.record(fitness, raw, windows)

			rec := []EvalRecord{newEvalRecord(prog.count, fitness, windows, raw)}
			var werr error
			if headerWritten {
				werr = gocsv.MarshalWithoutHeaders(rec, logFile)
			} else {
				werr = gocsv.Marshal(rec, logFile)
				headerWritten = werr == nil
			}
			if werr != nil {
				log.Printf("failed to write eval %d: %v", prog.count, werr)
			}
			return fitness
		},
	}

	dim := params.Dim()
	popSize := opts.population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}

	fmt.Printf("Starting CMA-ES optimization with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, opts.maxEvals)
	fmt.Printf("Seeds per evaluation: %d, ticks per run: %d\n", opts.seeds, opts.maxTicks)

	// Start from the base config so reruns refine earlier results.
	initX := params.Normalize(params.ExtractFromConfig(baseCfg))
	settings := &optimize.Settings{FuncEvaluations: opts.maxEvals}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: popSize}

	if _, err := optimize.Minimize(problem, initX, settings, method); err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if prog.bestX == nil {
		return fmt.Errorf("no evaluations completed")
	}

	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", prog.count, formatDuration(time.Since(prog.start)))
	fmt.Printf("Best fitness: %.4f\n\nBest parameters:\n", prog.best)
	for i, spec := range params.Specs {
		fmt.Printf("  %-14s %.6f  (%s)\n", spec.Name, prog.bestX[i], spec.Path)
	}

	bestCfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("reloading config: %w", err)
	}
	params.ApplyToConfig(bestCfg, prog.bestX)

	out := filepath.Join(opts.outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(out); err != nil {
		return err
	}
	fmt.Printf("\nBest config saved to: %s\n", out)
	return nil
}
