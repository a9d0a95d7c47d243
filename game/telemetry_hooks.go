package game

import (
	"log/slog"

	"github.com/pthm-cable/leaffall/telemetry"
)

// bookmarkHistory is the number of windows each detector averages over.
const bookmarkHistory = 6

// flushTelemetry handles the windows closed on this tick. All layers share
// a window length so one perf row is written per flush.
func (g *Game) flushTelemetry(stats []telemetry.WindowStats) {
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		for _, s := range stats {
			g.statsCallback(s)
		}
	}

	if g.logStats {
		for _, s := range stats {
			s.LogStats()
		}
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats...); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats[0].WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, s := range stats {
		g.checkBookmarks(s)
	}
}

// checkBookmarks runs the layer's detector over a closed window.
func (g *Game) checkBookmarks(stats telemetry.WindowStats) {
	bd, ok := g.bookmarkDetectors[stats.Layer]
	if !ok {
		bd = telemetry.NewBookmarkDetector(bookmarkHistory)
		g.bookmarkDetectors[stats.Layer] = bd
	}

	for _, bm := range bd.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if g.outputManager != nil {
			if err := g.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
	}
}
