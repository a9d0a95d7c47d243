package telemetry

import (
	"fmt"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Phase is one timed section of a frame.
type Phase uint8

const (
	PhaseWind Phase = iota
	PhaseLeaves
	PhaseTelemetry
	PhaseRender
	numPhases
)

var phaseNames = [numPhases]string{"wind", "leaves", "telemetry", "render"}

func (p Phase) String() string {
	if p < numPhases {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", p)
}

// PhaseOrder returns every phase in frame order.
func PhaseOrder() []Phase {
	return []Phase{PhaseWind, PhaseLeaves, PhaseTelemetry, PhaseRender}
}

// perfSample is one finished tick.
type perfSample struct {
	total  time.Duration
	phases [numPhases]time.Duration
}

// PerfCollector keeps a ring of recent tick timings. A tick is opened by
// StartTick, split by StartPhase and closed by EndTick; time before the
// first phase counts toward the total only.
type PerfCollector struct {
	ring   []perfSample
	next   int
	filled int

	cur        perfSample
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool

	lastFrame time.Time
	frame     time.Duration

	now func() time.Time
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		ring: make([]perfSample, windowSize),
		now:  time.Now,
	}
}

// StartTick begins timing a new tick.
func (p *PerfCollector) StartTick() {
	p.cur = perfSample{}
	p.tickStart = p.now()
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and opens phase.
// Re-entering a phase adds to its time.
func (p *PerfCollector) StartPhase(phase Phase) {
	t := p.now()
	p.closePhase(t)
	p.phase = phase
	p.phaseStart = t
	p.inPhase = phase < numPhases
}

func (p *PerfCollector) closePhase(t time.Time) {
	if p.inPhase {
		p.cur.phases[p.phase] += t.Sub(p.phaseStart)
		p.inPhase = false
	}
}

// EndTick closes the tick and stores it in the ring.
func (p *PerfCollector) EndTick() {
	t := p.now()
	p.closePhase(t)
	p.cur.total = t.Sub(p.tickStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	if p.filled < len(p.ring) {
		p.filled++
	}
}

// RecordFrame marks a presented frame; the gap to the previous call is the
// frame duration.
func (p *PerfCollector) RecordFrame() {
	t := p.now()
	if !p.lastFrame.IsZero() {
		p.frame = t.Sub(p.lastFrame)
	}
	p.lastFrame = t
}

// PhaseTiming is the average cost of one phase.
type PhaseTiming struct {
	Avg time.Duration
	Pct float64 // share of the average tick, 0-100
}

// PerfStats summarizes the ticks currently in the ring.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	// Indexed by Phase
	Phases [numPhases]PhaseTiming

	TicksPerSecond float64

	// Graphics mode only
	FrameDuration time.Duration
	FPS           float64
}

// Phase returns the timing of one phase.
func (s PerfStats) Phase(p Phase) PhaseTiming {
	if p >= numPhases {
		return PhaseTiming{}
	}
	return s.Phases[p]
}

// Stats computes aggregated statistics over the ring.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{FrameDuration: p.frame}
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.filled == 0 {
		return s
	}

	totals := make([]float64, p.filled)
	var phaseSum [numPhases]time.Duration
	for i := 0; i < p.filled; i++ {
		totals[i] = float64(p.ring[i].total)
		for ph, d := range p.ring[i].phases {
			phaseSum[ph] += d
		}
	}

	n := time.Duration(p.filled)
	avg := time.Duration(floats.Sum(totals)) / n
	s.AvgTickDuration = avg
	s.MinTickDuration = time.Duration(floats.Min(totals))
	s.MaxTickDuration = time.Duration(floats.Max(totals))

	for ph := range phaseSum {
		s.Phases[ph].Avg = phaseSum[ph] / n
		if avg > 0 {
			s.Phases[ph].Pct = float64(s.Phases[ph].Avg) / float64(avg) * 100
		}
	}

	if avg > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(avg)
	}
	return s
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"min_tick_us", s.MinTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}

	// Skip phases that did not run (render when headless)
	for _, ph := range PhaseOrder() {
		if pct := s.Phases[ph].Pct; pct > 0.1 {
			attrs = append(attrs, ph.String()+"_pct", int(pct*10)/10.0)
		}
	}

	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, ph := range PhaseOrder() {
		attrs = append(attrs, slog.Float64(ph.String()+"_pct", s.Phases[ph].Pct))
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd    int32   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	WindPct      float64 `csv:"wind_pct"`
	LeavesPct    float64 `csv:"leaves_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
	RenderPct    float64 `csv:"render_pct"`
}

// ToCSV flattens the stats for the window ending at windowEnd.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		FPS:          s.FPS,
		WindPct:      s.Phases[PhaseWind].Pct,
		LeavesPct:    s.Phases[PhaseLeaves].Pct,
		TelemetryPct: s.Phases[PhaseTelemetry].Pct,
		RenderPct:    s.Phases[PhaseRender].Pct,
	}
}
