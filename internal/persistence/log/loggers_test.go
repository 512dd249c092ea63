package log

import (
	"path/filepath"
	"testing"
	"time"
)

func TestEventLogger_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewEventLogger(dir)
	at := time.Date(2026, 3, 1, 10, 15, 0, 0, time.UTC)
	l.w.now = func() time.Time { return at }

	if err := l.WriteEvent(Event{Time: at, RunID: "r1", Input: "car.vox", Target: "1x", Renderer: "scan", Status: "rendered", Outputs: []string{"1x/car.png"}, Millis: 12}); err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}
	if err := l.WriteEvent(Event{RunID: "r1", Input: "bus.vox", Renderer: "scan", Status: "failed", Error: "boom"}); err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	path := filepath.Join(dir, "renders-2026-03-01-10.jsonl.zst")
	events, err := ReadEvents(path)
	if err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events", len(events))
	}
	if events[0].Input != "car.vox" || len(events[0].Outputs) != 1 || events[0].Millis != 12 {
		t.Fatalf("first event %+v", events[0])
	}
	if events[1].Status != "failed" || events[1].Error != "boom" || events[1].Time.IsZero() {
		t.Fatalf("second event %+v", events[1])
	}
}

func TestJSONLZstdWriter_RotatesHourly(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONLZstdWriter(dir, "renders")
	at := time.Date(2026, 3, 1, 10, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return at }
	if err := w.Write(Event{Input: "a.vox"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	at = at.Add(2 * time.Minute)
	if err := w.Write(Event{Input: "b.vox"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	// Reopening an hour appends a new frame to the same file.
	at = at.Add(-2 * time.Minute)
	if err := w.Write(Event{Input: "c.vox"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	first, err := ReadEvents(filepath.Join(dir, "renders-2026-03-01-10.jsonl.zst"))
	if err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	if len(first) != 2 || first[0].Input != "a.vox" || first[1].Input != "c.vox" {
		t.Fatalf("hour 10: %+v", first)
	}
	second, err := ReadEvents(filepath.Join(dir, "renders-2026-03-01-11.jsonl.zst"))
	if err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	if len(second) != 1 || second[0].Input != "b.vox" {
		t.Fatalf("hour 11: %+v", second)
	}
}

func TestReadEvents_Missing(t *testing.T) {
	if _, err := ReadEvents(filepath.Join(t.TempDir(), "nope.jsonl.zst")); err == nil {
		t.Fatalf("expected error")
	}
}
