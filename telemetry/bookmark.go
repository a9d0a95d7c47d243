package telemetry

import (
	"fmt"
	"log/slog"
	"math"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkStrongGust BookmarkType = "strong_gust"
	BookmarkCalmSpell  BookmarkType = "calm_spell"
	BookmarkWindShift  BookmarkType = "wind_shift"
)

// Bookmark thresholds.
const (
	strongGustRatio   = 2.0 // peak vs rolling average peak
	strongGustMinPeak = 5.0 // px/s
	calmRatio         = 0.1 // peak vs rolling average peak
	shiftMinMean      = 3.0 // |mean| px/s on both sides of a shift
	minHistory        = 3
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Layer       string       `csv:"layer"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"layer", b.Layer,
		"description", b.Description,
	)
}

// BookmarkDetector flags notable wind windows for one layer.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	last     WindowStats
	haveLast bool
	calm     bool // inside a calm spell already reported
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < minHistory {
		historySize = minHistory
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
// Windows from a disabled layer are ignored.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	if !stats.Enabled {
		return nil
	}

	var bookmarks []Bookmark

	if b := bd.checkStrongGust(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkCalmSpell(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkWindShift(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	bd.last = stats
	bd.haveLast = true

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// avgPeak returns the mean window peak over history, or 0 if history is short.
func (bd *BookmarkDetector) avgPeak() float64 {
	history := bd.getHistory()
	if len(history) < minHistory {
		return 0
	}
	var total float64
	for _, h := range history {
		total += h.WindPeak
	}
	return total / float64(len(history))
}

func (bd *BookmarkDetector) checkStrongGust(stats WindowStats) *Bookmark {
	avg := bd.avgPeak()
	if avg == 0 {
		return nil
	}

	if stats.WindPeak > avg*strongGustRatio && stats.WindPeak >= strongGustMinPeak {
		return &Bookmark{
			Type:        BookmarkStrongGust,
			Tick:        stats.WindowEndTick,
			Layer:       stats.Layer,
			Description: fmt.Sprintf("Wind peak %.1f is %.1fx average (%.1f)", stats.WindPeak, stats.WindPeak/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkCalmSpell(stats WindowStats) *Bookmark {
	avg := bd.avgPeak()
	if avg == 0 {
		return nil
	}

	if stats.WindPeak >= avg*calmRatio {
		bd.calm = false
		return nil
	}
	if bd.calm {
		return nil
	}

	bd.calm = true
	return &Bookmark{
		Type:        BookmarkCalmSpell,
		Tick:        stats.WindowEndTick,
		Layer:       stats.Layer,
		Description: fmt.Sprintf("Wind peak %.2f under %.0f%% of average (%.1f)", stats.WindPeak, calmRatio*100, avg),
	}
}

func (bd *BookmarkDetector) checkWindShift(stats WindowStats) *Bookmark {
	if !bd.haveLast {
		return nil
	}
	prev, cur := bd.last.WindMean, stats.WindMean
	if math.Abs(prev) < shiftMinMean || math.Abs(cur) < shiftMinMean {
		return nil
	}
	if math.Signbit(prev) == math.Signbit(cur) {
		return nil
	}

	return &Bookmark{
		Type:        BookmarkWindShift,
		Tick:        stats.WindowEndTick,
		Layer:       stats.Layer,
		Description: fmt.Sprintf("Mean wind turned from %.1f to %.1f", prev, cur),
	}
}
