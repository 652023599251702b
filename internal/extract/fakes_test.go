package extract

import (
	"errors"
	"fmt"
)

// fakeReader serves canned page text and models the decode cache that real
// readers accumulate: one entry per extracted page until EvictCaches runs.
type fakeReader struct {
	pages    []string
	failAt   map[int]error
	cached   int
	evicts   int
	closed   bool
	maxCache int
}

func (r *fakeReader) PageCount() int { return len(r.pages) }

func (r *fakeReader) PageText(index int) (string, error) {
	r.cached++
	if r.cached > r.maxCache {
		r.maxCache = r.cached
	}
	if err, ok := r.failAt[index]; ok {
		return "", err
	}
	return r.pages[index-1], nil
}

func (r *fakeReader) EvictCaches() {
	r.cached = 0
	r.evicts++
}

func (r *fakeReader) CacheSize() int { return r.cached }
func (r *fakeReader) Close() error   { r.closed = true; return nil }

// fakeDoc opens a fakeReader, or fails to open at all.
type fakeDoc struct {
	name    string
	reader  *fakeReader
	openErr error
}

func (d *fakeDoc) Name() string { return d.name }

func (d *fakeDoc) Open() (PageReader, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}
	return d.reader, nil
}

// memorySink is an in-memory RecordSink with the same pending/flushed
// discipline as the workbook writer.
type memorySink struct {
	batchSize int
	pending   map[string][]Record
	flushed   map[string][]Record
	finalized bool

	failAccept   error // returned once Accept has seen failAfter records
	failAfter    int
	accepted     int
	failFinalize error
}

func newMemorySink(batchSize int) *memorySink {
	return &memorySink{
		batchSize: batchSize,
		pending:   make(map[string][]Record),
		flushed:   make(map[string][]Record),
	}
}

func (s *memorySink) Accept(rec Record) error {
	s.accepted++
	if s.failAccept != nil && s.accepted > s.failAfter {
		return s.failAccept
	}
	s.pending[rec.Key] = append(s.pending[rec.Key], rec)
	if len(s.pending[rec.Key]) >= s.batchSize {
		return s.FlushKey(rec.Key)
	}
	return nil
}

func (s *memorySink) FlushKey(key string) error {
	s.flushed[key] = append(s.flushed[key], s.pending[key]...)
	s.pending[key] = nil
	return nil
}

func (s *memorySink) DiscardPending(key string) { s.pending[key] = nil }

func (s *memorySink) Finalize() error {
	if s.failFinalize != nil {
		return s.failFinalize
	}
	for key := range s.pending {
		if err := s.FlushKey(key); err != nil {
			return err
		}
	}
	s.finalized = true
	return nil
}

func (s *memorySink) Rows() map[string]int {
	out := make(map[string]int, len(s.flushed))
	for key, recs := range s.flushed {
		out[key] = len(recs)
	}
	return out
}

// pageOfRows renders n data lines with distinct timestamps for one page.
func pageOfRows(page, n int) string {
	var text string
	for i := 0; i < n; i++ {
		text += fmt.Sprintf("01/04/2025 %d:%02d:00 %d.5\n", page%24, i%60, page*100+i)
	}
	return text
}

var errBoom = errors.New("boom")
