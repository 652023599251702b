package extract

import (
	"errors"
	"testing"
)

func manyPages(n int) []string {
	pages := make([]string, n)
	for i := range pages {
		pages[i] = pageOfRows(i+1, 1)
	}
	return pages
}

func TestPageSource_EvictionCadence(t *testing.T) {
	reader := &fakeReader{pages: manyPages(10)}
	var stats PageStats
	src := NewPageSource(reader, 3, &stats, nil)

	for page := 1; page <= src.Count(); page++ {
		if _, err := src.Text(page); err != nil {
			t.Fatalf("Text(%d): %v", page, err)
		}
	}

	// 10 pages at a cadence of 3 evicts after pages 3, 6 and 9.
	if reader.evicts != 3 {
		t.Errorf("evicts = %d, want 3", reader.evicts)
	}
	if reader.maxCache > 3 {
		t.Errorf("cache grew to %d entries, cadence is 3", reader.maxCache)
	}
	if stats.Pages != 10 {
		t.Errorf("stats observed %d pages, want 10", stats.Pages)
	}
}

func TestPageSource_CacheBoundObserved(t *testing.T) {
	reader := &fakeReader{pages: manyPages(25)}
	var stats PageStats

	peak := 0
	src := NewPageSource(reader, 5, &stats, func(cached int) {
		if cached > peak {
			peak = cached
		}
	})

	for page := 1; page <= src.Count(); page++ {
		if _, err := src.Text(page); err != nil {
			t.Fatalf("Text(%d): %v", page, err)
		}
	}

	// Observed after each page, so the cache never exceeds the cadence and
	// sits at zero right after an eviction.
	if peak >= 5 {
		t.Errorf("observed cache peak %d, want < 5", peak)
	}
}

func TestPageSource_PageErrorWrapsIndex(t *testing.T) {
	reader := &fakeReader{
		pages:  manyPages(3),
		failAt: map[int]error{2: errBoom},
	}
	var stats PageStats
	src := NewPageSource(reader, 100, &stats, nil)

	_, err := src.Text(2)
	var pe *PageError
	if !errors.As(err, &pe) {
		t.Fatalf("Text(2) error = %v, want *PageError", err)
	}
	if pe.Page != 2 {
		t.Errorf("PageError.Page = %d, want 2", pe.Page)
	}
	if !errors.Is(err, errBoom) {
		t.Errorf("PageError does not unwrap to the cause: %v", err)
	}
}

func TestPageSource_FailedPageStillCountsTowardEviction(t *testing.T) {
	reader := &fakeReader{
		pages:  manyPages(4),
		failAt: map[int]error{1: errBoom, 2: errBoom},
	}
	var stats PageStats
	src := NewPageSource(reader, 2, &stats, nil)

	for page := 1; page <= src.Count(); page++ {
		src.Text(page)
	}
	if reader.evicts != 2 {
		t.Errorf("evicts = %d, want 2 (bad pages must not stall reclamation)", reader.evicts)
	}
}

func TestPageSource_DefaultInterval(t *testing.T) {
	reader := &fakeReader{pages: manyPages(1)}
	var stats PageStats
	src := NewPageSource(reader, 0, &stats, nil)
	if src.evictEvery != DefaultEvictInterval {
		t.Fatalf("evictEvery = %d, want %d", src.evictEvery, DefaultEvictInterval)
	}
}
