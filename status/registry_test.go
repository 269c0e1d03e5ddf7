package status

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestMetricMapGetReturnsCachedPointer tests that repeated Get calls share storage
func TestMetricMapGetReturnsCachedPointer(t *testing.T) {
	r := NewRegistry()
	a := r.Ints.Get("engine.cycles")
	b := r.Ints.Get("engine.cycles")
	if a != b {
		t.Fatal("Expected the same pointer for the same key")
	}
	a.Add(3)
	if got := b.Load(); got != 3 {
		t.Errorf("Expected 3, got %d", got)
	}
}

// TestRegistryLines tests sorted, typed rendering of all metrics
func TestRegistryLines(t *testing.T) {
	r := NewRegistry()
	r.Strings.Get("nav.state").Store("FIND_TARGET")
	r.Bools.Get("nav.visible").Store(true)
	r.Ints.Get("engine.tasks").Store(2)
	r.Ints.Get("engine.cycles").Store(10)
	r.Floats.Get("drive.left").Store(0.25)

	want := []string{
		"nav.state=FIND_TARGET",
		"nav.visible=true",
		"engine.cycles=10",
		"engine.tasks=2",
		"drive.left=+0.250",
	}
	if diff := cmp.Diff(want, r.Lines()); diff != "" {
		t.Errorf("Lines mismatch (-want +got):\n%s", diff)
	}
	if r.Len() != 5 {
		t.Errorf("Expected 5 metrics, got %d", r.Len())
	}
}

// TestRegistrySnapshot tests typed values keyed by name
func TestRegistrySnapshot(t *testing.T) {
	r := NewRegistry()
	r.Strings.Get("mission.outcome").Store("RUNNING")
	r.Bools.Get("nav.visible").Store(true)
	r.Ints.Get("mission.attempt").Store(2)
	r.Floats.Get("nav.distance").Store(812.5)

	want := map[string]any{
		"mission.outcome": "RUNNING",
		"nav.visible":     true,
		"mission.attempt": int64(2),
		"nav.distance":    812.5,
	}
	if diff := cmp.Diff(want, r.Snapshot()); diff != "" {
		t.Errorf("Snapshot mismatch (-want +got):\n%s", diff)
	}
}

// TestAtomicStringTruncates tests the length cap on stored strings
func TestAtomicStringTruncates(t *testing.T) {
	var s AtomicString
	if s.Load() != "" {
		t.Errorf("Expected empty zero value, got %q", s.Load())
	}
	s.Store("0123456789012345678901234567890")
	if got := len(s.Load()); got != MaxStringLen {
		t.Errorf("Expected length %d, got %d", MaxStringLen, got)
	}
}

// TestAtomicStringRuneBoundary tests that truncation never splits a rune
func TestAtomicStringRuneBoundary(t *testing.T) {
	var s AtomicString
	// 23 ASCII bytes then a two-byte rune straddling the cap
	s.Store("abcdefghijklmnopqrstuvwé")
	if got := s.Load(); got != "abcdefghijklmnopqrstuvw" {
		t.Errorf("Expected cut before the rune, got %q", got)
	}
}

// TestAtomicFloat tests the zero value and storage
func TestAtomicFloat(t *testing.T) {
	var f AtomicFloat
	if f.Load() != 0 {
		t.Errorf("Expected 0, got %v", f.Load())
	}
	f.Store(-1.25)
	if got := f.Load(); got != -1.25 {
		t.Errorf("Expected -1.25, got %v", got)
	}
}
