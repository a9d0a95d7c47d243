package telemetry

import (
	"testing"
)

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func windWindow(tick int32, peak, mean float64) WindowStats {
	return WindowStats{
		WindowEndTick: tick,
		Layer:         "leaves",
		Enabled:       true,
		WindPeak:      peak,
		WindMean:      mean,
	}
}

func TestBookmarkDetector_StrongGust(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		if got := bd.Check(windWindow(int32(i*600), 10, 1)); len(got) != 0 {
			t.Fatalf("window %d: unexpected bookmarks %+v", i, got)
		}
	}

	bookmarks := bd.Check(windWindow(3000, 30, 1))
	if !hasBookmark(bookmarks, BookmarkStrongGust) {
		t.Error("expected strong_gust bookmark")
	}
	if bookmarks[0].Layer != "leaves" || bookmarks[0].Tick != 3000 {
		t.Errorf("bookmark = %+v", bookmarks[0])
	}
}

func TestBookmarkDetector_StrongGustNeedsHistory(t *testing.T) {
	bd := NewBookmarkDetector(10)
	bd.Check(windWindow(600, 1, 0))
	if got := bd.Check(windWindow(1200, 30, 0)); hasBookmark(got, BookmarkStrongGust) {
		t.Error("strong_gust should wait for history")
	}
}

func TestBookmarkDetector_CalmSpellOnce(t *testing.T) {
	bd := NewBookmarkDetector(10)
	for i := 0; i < 4; i++ {
		bd.Check(windWindow(int32(i*600), 20, 1))
	}

	if got := bd.Check(windWindow(3000, 0.5, 0)); !hasBookmark(got, BookmarkCalmSpell) {
		t.Fatal("expected calm_spell bookmark")
	}
	if got := bd.Check(windWindow(3600, 0.5, 0)); hasBookmark(got, BookmarkCalmSpell) {
		t.Error("calm_spell should fire once per spell")
	}

	// Wind returns, then dies again
	bd.Check(windWindow(4200, 20, 1))
	if got := bd.Check(windWindow(4800, 0.1, 0)); !hasBookmark(got, BookmarkCalmSpell) {
		t.Error("expected second calm_spell bookmark")
	}
}

func TestBookmarkDetector_WindShift(t *testing.T) {
	bd := NewBookmarkDetector(10)
	bd.Check(windWindow(600, 10, 8))

	if got := bd.Check(windWindow(1200, 10, -6)); !hasBookmark(got, BookmarkWindShift) {
		t.Error("expected wind_shift bookmark")
	}
	if got := bd.Check(windWindow(1800, 10, 1)); hasBookmark(got, BookmarkWindShift) {
		t.Error("weak mean should not count as a shift")
	}
}

func TestBookmarkDetector_IgnoresDisabled(t *testing.T) {
	bd := NewBookmarkDetector(10)
	for i := 0; i < 5; i++ {
		bd.Check(windWindow(int32(i*600), 10, 1))
	}

	w := windWindow(3000, 50, 1)
	w.Enabled = false
	if got := bd.Check(w); len(got) != 0 {
		t.Errorf("disabled window produced %+v", got)
	}
}
