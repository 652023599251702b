package extract

// source.go bounds the resident memory of page extraction.
//
// PDF libraries accumulate per-page decode state (fonts, content streams) as
// pages are read. PageSource wraps a PageReader and, on a fixed cadence,
// evicts that state and asks the runtime to return freed memory to the OS.
// This is a bounding mechanism, not an optimization: without it, resident
// memory grows with document length, and the source documents run to
// thousands of pages.

import (
	"runtime/debug"
	"time"
)

// DefaultEvictInterval is the default number of pages between cache
// evictions.
const DefaultEvictInterval = 100

// PageSource yields page text from one open document, strictly in index
// order, evicting the reader's caches every evictEvery pages.
type PageSource struct {
	reader     PageReader
	evictEvery int
	stats      *PageStats

	// observe, when set, receives the reader's cache size after every page.
	// Test instrumentation for the memory-bound guarantee.
	observe func(cached int)

	sinceEvict int
}

// NewPageSource wraps an open reader. stats may not be nil; observe may be.
func NewPageSource(r PageReader, evictEvery int, stats *PageStats, observe func(int)) *PageSource {
	if evictEvery <= 0 {
		evictEvery = DefaultEvictInterval
	}
	return &PageSource{
		reader:     r,
		evictEvery: evictEvery,
		stats:      stats,
		observe:    observe,
	}
}

// Count returns the document's page count, obtained from metadata by the
// reader when it was opened.
func (s *PageSource) Count() int { return s.reader.PageCount() }

// Text extracts one page's raw text. A failure is reported as a *PageError
// for that index alone; the caller skips the page and continues. The page
// still counts toward the eviction cadence so a run of bad pages cannot
// stall reclamation.
func (s *PageSource) Text(index int) (string, error) {
	start := time.Now()
	text, err := s.reader.PageText(index)
	s.stats.Observe(index, time.Since(start))

	s.sinceEvict++
	if s.sinceEvict >= s.evictEvery {
		s.reader.EvictCaches()
		debug.FreeOSMemory()
		s.sinceEvict = 0
	}
	if s.observe != nil {
		s.observe(s.reader.CacheSize())
	}

	if err != nil {
		return "", &PageError{Page: index, Err: err}
	}
	return text, nil
}
