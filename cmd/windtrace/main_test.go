package main

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/leaffall/systems"
)

func TestTraceFollowsCycle(t *testing.T) {
	rows := Trace(systems.DefaultWindParams(), rand.New(rand.NewSource(3)), 6000, 1.0/60)
	if len(rows) != 6000 {
		t.Fatalf("len(rows) = %d, want 6000", len(rows))
	}

	order := map[string]string{
		"releasing":  "attacking",
		"attacking":  "sustaining",
		"sustaining": "decaying",
		"decaying":   "resting",
		"resting":    "releasing",
	}
	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1].State, rows[i].State
		if prev != cur && order[prev] != cur {
			t.Fatalf("tick %d: %s -> %s", rows[i].Tick, prev, cur)
		}
	}

	if rows[0].Tick != 1 || rows[len(rows)-1].Tick != 6000 {
		t.Errorf("ticks span %d..%d", rows[0].Tick, rows[len(rows)-1].Tick)
	}
}

func TestTraceCSV(t *testing.T) {
	rows := Trace(systems.DefaultWindParams(), rand.New(rand.NewSource(1)), 10, 0.1)

	var buf bytes.Buffer
	if err := gocsv.Marshal(&rows, &buf); err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var back []TraceRow
	if err := gocsv.UnmarshalBytes(buf.Bytes(), &back); err != nil {
		t.Fatalf("UnmarshalBytes: %v", err)
	}
	if len(back) != len(rows) {
		t.Fatalf("got %d rows, want %d", len(back), len(rows))
	}
	if back[9].State != rows[9].State {
		t.Errorf("state = %q, want %q", back[9].State, rows[9].State)
	}
}
