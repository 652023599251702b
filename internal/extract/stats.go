package extract

import "time"

// PageStats accumulates per-page timing incrementally: a running count, sum,
// min and max. It deliberately stores no per-page history so its footprint
// is constant over documents of any length.
type PageStats struct {
	Pages       int
	Total       time.Duration
	Min         time.Duration
	Max         time.Duration
	SlowestPage int
}

// Observe records the processing duration of one page.
func (s *PageStats) Observe(page int, d time.Duration) {
	s.Pages++
	s.Total += d
	if s.Pages == 1 || d < s.Min {
		s.Min = d
	}
	if d > s.Max {
		s.Max = d
		s.SlowestPage = page
	}
}

// Avg returns the mean page duration, or zero before any observation.
func (s *PageStats) Avg() time.Duration {
	if s.Pages == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Pages)
}
