package extract

// run.go sequences documents through the pipeline:
//
//	Key Resolver → Page Source → Record Parser → sink (Sheet Router +
//	Batch Writer) → Stats Accumulator → Report
//
// Documents are processed strictly sequentially. One document's failure
// never aborts the run; the run always completes and returns a report.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ProgressFunc is invoked at document boundaries: done documents so far,
// total documents, and the result just closed.
type ProgressFunc func(done, total int, res DocumentResult)

// Options configures a run. The zero value is usable.
type Options struct {
	// EvictEvery is the page-cache eviction cadence (default 100 pages).
	EvictEvery int

	// KeyOverrides maps a document name to a group key, bypassing name
	// resolution for that document.
	KeyOverrides map[string]string

	// Progress, when set, is called after each document closes.
	Progress ProgressFunc

	// CacheObserver, when set, receives the page reader's cache size after
	// every page. Used by tests to verify the memory bound.
	CacheObserver func(cached int)
}

func (o Options) validate() error {
	if o.EvictEvery < 0 {
		return fmt.Errorf("%w: evict interval %d", ErrInvalidConfig, o.EvictEvery)
	}
	return nil
}

// Run processes docs in order, routing extracted records into sink, and
// returns the run report.
//
// The only errors Run itself returns are configuration faults (in which
// case the report is nil and nothing was processed) and a finalization
// write fault (in which case the report is still returned). Per-document
// faults live on the report.
//
// ctx is consulted only between documents; a document in progress is never
// preempted. That boundary is the run's only safe preemption point.
func Run(ctx context.Context, docs []DocumentSource, sink RecordSink, opts Options) (*Report, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		return nil, fmt.Errorf("%w: nil record sink", ErrInvalidConfig)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, ErrNoDocuments)
	}

	start := time.Now()
	rep := &Report{}

	for i, doc := range docs {
		var res DocumentResult
		if err := ctx.Err(); err != nil {
			// Deadline or cancellation from the caller: close the remaining
			// documents as failed rather than dropping them silently.
			key, _ := resolveDocumentKey(doc.Name(), opts)
			res = DocumentResult{
				Name:   doc.Name(),
				Key:    key,
				Status: StatusFailed,
				Error:  fmt.Sprintf("run cancelled: %v", err),
			}
		} else {
			res = processDocument(doc, sink, opts, rep)
		}

		rep.Documents = append(rep.Documents, res)
		if res.Status == StatusSuccess {
			rep.Succeeded++
		} else {
			rep.Failed++
		}
		rep.SkippedLines += res.SkippedLines

		if opts.Progress != nil {
			opts.Progress(i+1, len(docs), res)
		}
	}

	var finalErr error
	if err := sink.Finalize(); err != nil {
		finalErr = fmt.Errorf("%w: finalize: %v", ErrWriteFault, err)
		rep.Warnings = append(rep.Warnings, finalErr.Error())
	}

	rep.RowsByKey = sink.Rows()
	for _, n := range rep.RowsByKey {
		rep.TotalRows += n
	}
	rep.Elapsed = time.Since(start)
	return rep, finalErr
}

// processDocument drives one document through the Opening and Streaming
// states and returns its closed result.
func processDocument(doc DocumentSource, sink RecordSink, opts Options, rep *Report) DocumentResult {
	name := doc.Name()
	key, matched := resolveDocumentKey(name, opts)
	res := DocumentResult{Name: name, Key: key, Status: StatusFailed}

	if !matched {
		warn := fmt.Sprintf("%s: no group pattern matched, using fallback key %q", name, key)
		rep.Warnings = append(rep.Warnings, warn)
		slog.Warn("key resolution miss", "document", name, "fallback_key", key)
	}

	// Opening.
	reader, err := doc.Open()
	if err != nil {
		res.Error = err.Error()
		slog.Error("document open failed", "document", name, "error", err)
		return res
	}
	defer reader.Close()

	flushedBefore := sink.Rows()[key]

	// Streaming.
	src := NewPageSource(reader, opts.EvictEvery, &rep.Pages, opts.CacheObserver)
	parser := &Parser{}
	res.Pages = src.Count()

	var fault error
	for page := 1; page <= res.Pages; page++ {
		text, err := src.Text(page)
		if err != nil {
			if errors.Is(err, ErrDocumentUnreadable) {
				fault = err
				break
			}
			// A single bad page does not abort the document.
			res.PagesSkipped++
			slog.Warn("page skipped", "document", name, "page", page, "error", err)
			continue
		}

		for row := range parser.Rows(text) {
			if err := sink.Accept(Record{Timestamp: row.Timestamp, Consumo: row.Consumo, Key: key}); err != nil {
				fault = fmt.Errorf("%w: %v", ErrWriteFault, err)
				break
			}
		}
		if fault != nil {
			break
		}
	}

	if fault == nil {
		// The document's remainder flushes on its own completion, so a
		// pending buffer never spans documents.
		if err := sink.FlushKey(key); err != nil {
			fault = fmt.Errorf("%w: %v", ErrWriteFault, err)
		}
	}

	res.SkippedLines = parser.Skipped
	if fault != nil {
		// Rows flushed before the fault stay in the output; pending ones
		// belong to this document alone and are dropped with it.
		sink.DiscardPending(key)
		res.Error = fault.Error()
		res.Rows = sink.Rows()[key] - flushedBefore
		slog.Error("document failed", "document", name, "error", fault, "rows_kept", res.Rows)
		return res
	}

	res.Rows = sink.Rows()[key] - flushedBefore
	res.Status = StatusSuccess
	slog.Info("document processed",
		"document", name,
		"key", key,
		"pages", res.Pages,
		"rows", res.Rows,
		"skipped_lines", res.SkippedLines,
	)
	return res
}

func resolveDocumentKey(name string, opts Options) (string, bool) {
	if key, ok := opts.KeyOverrides[name]; ok && key != "" {
		return key, true
	}
	return ResolveKey(name)
}
