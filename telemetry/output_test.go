package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/leaffall/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; want nil, nil", om, err)
	}

	// Nil manager methods are no-ops
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.WritePerf(PerfStats{}, 1); err != nil {
		t.Error(err)
	}
	if err := om.WriteBookmark(Bookmark{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
	if om.Dir() != "" {
		t.Error("nil manager should report empty dir")
	}
}

func TestOutputManagerWritesHeaderOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	first := WindowStats{WindowEndTick: 600, Layer: "leaves", Leaves: 256, WindState: "resting"}
	second := WindowStats{WindowEndTick: 1200, Layer: "leaves", Leaves: 256, WindState: "attacking", Gusts: 1}
	if err := om.WriteTelemetry(first); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteTelemetry(second); err != nil {
		t.Fatal(err)
	}
	if err := om.WritePerf(PerfStats{}, 600); err != nil {
		t.Fatal(err)
	}
	bm := Bookmark{Type: BookmarkWindShift, Tick: 1200, Layer: "leaves", Description: "Mean wind turned from 4.0 to -5.0"}
	if err := om.WriteBookmark(bm); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "window_end"); n != 1 {
		t.Errorf("header written %d times, want 1", n)
	}

	var rows []WindowStats
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		t.Fatalf("parsing telemetry.csv: %v", err)
	}
	if len(rows) != 2 || rows[1].WindState != "attacking" || rows[1].Gusts != 1 {
		t.Errorf("unexpected rows: %+v", rows)
	}

	bmData, err := os.ReadFile(filepath.Join(dir, "bookmarks.csv"))
	if err != nil {
		t.Fatal(err)
	}
	var marks []Bookmark
	if err := gocsv.UnmarshalBytes(bmData, &marks); err != nil {
		t.Fatalf("parsing bookmarks.csv: %v", err)
	}
	if len(marks) != 1 || marks[0] != bm {
		t.Errorf("bookmarks = %+v, want %+v", marks, bm)
	}

	for _, name := range []string{"perf.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
}
