package extract

import (
	"testing"
	"time"
)

func TestPageStats_Observe(t *testing.T) {
	var s PageStats
	s.Observe(1, 40*time.Millisecond)
	s.Observe(2, 10*time.Millisecond)
	s.Observe(3, 90*time.Millisecond)
	s.Observe(4, 20*time.Millisecond)

	if s.Pages != 4 {
		t.Errorf("Pages = %d, want 4", s.Pages)
	}
	if s.Min != 10*time.Millisecond {
		t.Errorf("Min = %v, want 10ms", s.Min)
	}
	if s.Max != 90*time.Millisecond {
		t.Errorf("Max = %v, want 90ms", s.Max)
	}
	if s.SlowestPage != 3 {
		t.Errorf("SlowestPage = %d, want 3", s.SlowestPage)
	}
	if s.Avg() != 40*time.Millisecond {
		t.Errorf("Avg() = %v, want 40ms", s.Avg())
	}
}

func TestPageStats_Empty(t *testing.T) {
	var s PageStats
	if s.Avg() != 0 {
		t.Errorf("Avg() on empty stats = %v, want 0", s.Avg())
	}
}

func TestPageStats_FirstObservationSetsMin(t *testing.T) {
	// Min must come from the first sample, not from the zero value.
	var s PageStats
	s.Observe(1, 25*time.Millisecond)
	if s.Min != 25*time.Millisecond {
		t.Fatalf("Min = %v, want 25ms", s.Min)
	}
}
