package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for one leaf layer over a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	WindowSec       float64 `csv:"window_sec"` // Simulated seconds covered
	SimTimeSec      float64 `csv:"sim_time"`
	Layer           string  `csv:"layer"`
	Enabled         bool    `csv:"enabled"`
	Leaves          int     `csv:"leaves"`

	// Wind velocity over the window
	WindMean  float64 `csv:"wind_mean"`
	WindStd   float64 `csv:"wind_std"`
	WindPeak  float64 `csv:"wind_peak"` // Largest |velocity|
	WindOnset float64 `csv:"wind_onset"`
	WindState string  `csv:"wind_state"`

	// Envelope activity
	Transitions    int     `csv:"transitions"`
	Gusts          int     `csv:"gusts"` // Entries into the resting phase
	ReleasingFrac  float64 `csv:"releasing_frac"`
	AttackingFrac  float64 `csv:"attacking_frac"`
	SustainingFrac float64 `csv:"sustaining_frac"`
	DecayingFrac   float64 `csv:"decaying_frac"`
	RestingFrac    float64 `csv:"resting_frac"`

	// Leaf motion sampled at window end
	DriftMeanAbs float64 `csv:"drift_mean_abs"`
	DriftP90Abs  float64 `csv:"drift_p90_abs"`
	WobbleRMS    float64 `csv:"wobble_rms"`
	WobbleP90Abs float64 `csv:"wobble_p90_abs"`
	WobbleMaxAbs float64 `csv:"wobble_max_abs"`
	FallMean     float64 `csv:"fall_mean"` // Mean fall rate coefficient
}

// Summary describes a sample.
type Summary struct {
	Mean, Std     float64
	P50, P90, Max float64
}

// Summarize computes mean, sample standard deviation, empirical quantiles and
// maximum of values. The slice is sorted in place. Returns zeros if empty.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	sort.Float64s(values)

	s := Summary{
		Mean: stat.Mean(values, nil),
		P50:  stat.Quantile(0.5, stat.Empirical, values, nil),
		P90:  stat.Quantile(0.9, stat.Empirical, values, nil),
		Max:  floats.Max(values),
	}
	if len(values) > 1 {
		s.Std = stat.StdDev(values, nil)
	}
	return s
}

// RMS returns the root mean square of values, 0 if empty.
func RMS(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(values, values) / float64(len(values)))
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("window_sec", s.WindowSec),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.String("layer", s.Layer),
		slog.Bool("enabled", s.Enabled),
		slog.Int("leaves", s.Leaves),
		slog.Float64("wind_mean", s.WindMean),
		slog.Float64("wind_std", s.WindStd),
		slog.Float64("wind_peak", s.WindPeak),
		slog.Float64("wind_onset", s.WindOnset),
		slog.String("wind_state", s.WindState),
		slog.Int("transitions", s.Transitions),
		slog.Int("gusts", s.Gusts),
		slog.Float64("releasing_frac", s.ReleasingFrac),
		slog.Float64("attacking_frac", s.AttackingFrac),
		slog.Float64("sustaining_frac", s.SustainingFrac),
		slog.Float64("decaying_frac", s.DecayingFrac),
		slog.Float64("resting_frac", s.RestingFrac),
		slog.Float64("drift_mean_abs", s.DriftMeanAbs),
		slog.Float64("drift_p90_abs", s.DriftP90Abs),
		slog.Float64("wobble_rms", s.WobbleRMS),
		slog.Float64("wobble_p90_abs", s.WobbleP90Abs),
		slog.Float64("wobble_max_abs", s.WobbleMaxAbs),
		slog.Float64("fall_mean", s.FallMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"layer", s.Layer,
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"enabled", s.Enabled,
		"wind_mean", s.WindMean,
		"wind_peak", s.WindPeak,
		"wind_state", s.WindState,
		"gusts", s.Gusts,
		"transitions", s.Transitions,
		"drift_mean_abs", s.DriftMeanAbs,
		"wobble_rms", s.WobbleRMS,
		"wobble_max_abs", s.WobbleMaxAbs,
	)
}
