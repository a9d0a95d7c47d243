package game

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/leaffall/telemetry"
)

// Logf writes a plain-text line to stdout, alongside the JSON slog stream.
func Logf(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

// logPerfStats logs the frame phase breakdown.
func (g *Game) logPerfStats() {
	stats := g.perfCollector.Stats()
	Logf("=== Perf @ Tick %d | FPS: %d ===", g.scene.Tick(), rl.GetFPS())
	Logf("Avg frame: %s (min %s, max %s)",
		stats.AvgTickDuration.Round(time.Microsecond),
		stats.MinTickDuration.Round(time.Microsecond),
		stats.MaxTickDuration.Round(time.Microsecond))

	for _, ph := range telemetry.PhaseOrder() {
		pt := stats.Phase(ph)
		Logf("  %-10s %10s  %5.1f%%", ph, pt.Avg.Round(time.Microsecond), pt.Pct)
	}
	Logf("")
}

// logSceneState logs per-layer wind and leaf counts.
func (g *Game) logSceneState() {
	Logf("=== Tick %d | gravity %.1f ===", g.scene.Tick(), g.scene.Gravity())
	for i := 0; i < g.scene.NumLayers(); i++ {
		l := g.scene.Layer(i)
		wind := l.Field.Wind()
		Logf("%-12s z=%-3d %-8s leaves=%d wind=%7.2f onset=%7.2f state=%-10s left=%.2fs",
			l.Name, l.Z, onOff(l.Field.Enabled()), l.Field.Count(),
			wind.Velocity(), wind.Onset(), wind.State(), wind.TimeLeft())
	}
	Logf("")
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
