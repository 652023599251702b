// Package extract implements the incremental extraction engine that turns
// multi-page compressor telemetry PDFs into tabular records.
//
// The engine is strictly sequential and synchronous: exactly one document is
// open at a time and pages are processed in index order, which is what keeps
// resident memory bounded regardless of document length. Concurrency, if
// any, belongs to the caller (the HTTP layer runs whole jobs in parallel,
// each with its own engine state).
package extract

// Record is one extracted data row. Immutable once produced. Within one
// document records preserve page/line order; across documents they preserve
// document-processing order.
type Record struct {
	// Timestamp is the raw date-time string exactly as it appeared in the
	// source, e.g. "01/04/2025 9:15:00". It is written through verbatim.
	Timestamp string

	// Consumo is the numeric consumption value associated with the timestamp.
	Consumo float64

	// Key is the group key the record is routed by, e.g. "Compressor 4".
	// It is derived once per document, never per line.
	Key string
}

// RecordSink receives extracted records and owns all pending-row buffers.
// The workbook batch writer is the production implementation.
//
// Buffers have single-owner discipline: only the sink clears them, either by
// flushing (Accept reaching the batch size, FlushKey, Finalize) or by
// dropping them (DiscardPending after a document fault).
type RecordSink interface {
	// Accept buffers one record for its key, flushing the key's buffer as a
	// unit when it reaches the configured batch size.
	Accept(Record) error

	// FlushKey flushes any pending rows for one key. The orchestrator calls
	// it when a document completes, so a buffer never spans documents.
	FlushKey(key string) error

	// DiscardPending drops pending rows for one key without writing them.
	// Called when the owning document fails mid-stream; rows already flushed
	// stay in the output.
	DiscardPending(key string)

	// Finalize flushes every remaining partial buffer, in the order sheets
	// were first created, and seals the output. Called exactly once.
	Finalize() error

	// Rows reports flushed data rows per key (headers excluded).
	Rows() map[string]int
}

// PageReader is one open document: a page count obtained from metadata and
// page text by sequential 1-based index. Implementations may hold decode
// caches; EvictCaches must always be available and must release them.
type PageReader interface {
	PageCount() int
	PageText(index int) (string, error)
	EvictCaches()
	CacheSize() int
	Close() error
}

// DocumentSource names and opens one input document.
type DocumentSource interface {
	Name() string
	Open() (PageReader, error)
}
