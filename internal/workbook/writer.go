package workbook

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/enerflow/compresor-report/internal/extract"
)

// DefaultBatchSize is the default number of buffered records per flush.
const DefaultBatchSize = 100

// Writer implements extract.RecordSink over an excelize workbook. Records
// are buffered per sheet and written in batches; sheets roll over to
// continuation sheets transparently when they reach the row limit.
//
// A Writer belongs to exactly one run and is not safe for concurrent use.
type Writer struct {
	file      *excelize.File
	batchSize int
	rowLimit  int

	sheets     map[string]*sheetChain
	order      []string // keys in order of first appearance
	used       map[string]bool
	firstSheet string
	finalized  bool
}

var _ extract.RecordSink = (*Writer)(nil)

// NewWriter creates a workbook writer. batchSize is the records buffered
// per sheet before a flush; rowLimit caps rows per physical sheet (header
// included) and may not exceed the XLSX format limit. Invalid values are
// configuration faults.
func NewWriter(batchSize, rowLimit int) (*Writer, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: batch size %d", extract.ErrInvalidConfig, batchSize)
	}
	if rowLimit < 2 || rowLimit > MaxSheetRows {
		return nil, fmt.Errorf("%w: row limit %d (want 2..%d)", extract.ErrInvalidConfig, rowLimit, MaxSheetRows)
	}

	return &Writer{
		file:      excelize.NewFile(),
		batchSize: batchSize,
		rowLimit:  rowLimit,
		sheets:    make(map[string]*sheetChain),
		used:      make(map[string]bool),
	}, nil
}

// Accept buffers one record for its key's sheet, flushing the buffer as a
// unit when it reaches the batch size.
func (w *Writer) Accept(rec extract.Record) error {
	if w.finalized {
		return errors.New("workbook already finalized")
	}

	sc, err := w.sheet(rec.Key)
	if err != nil {
		return err
	}

	sc.pending = append(sc.pending, row{timestamp: rec.Timestamp, consumo: rec.Consumo, key: rec.Key})
	if len(sc.pending) >= w.batchSize {
		return w.flush(sc)
	}
	return nil
}

// flush writes every pending row for one sheet and clears the buffer. On a
// write fault the buffer is left intact and the error propagates; the
// orchestrator decides whether to discard it with the owning document.
func (w *Writer) flush(sc *sheetChain) error {
	for _, r := range sc.pending {
		if sc.sheetRows >= w.rowLimit {
			if err := sc.rollover(w); err != nil {
				return err
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, sc.sheetRows+1)
		if err != nil {
			return err
		}
		if err := sc.sw.SetRow(cell, []interface{}{r.timestamp, r.consumo, r.key}); err != nil {
			return fmt.Errorf("write row for %q: %w", sc.key, err)
		}
		sc.sheetRows++
		sc.flushed++
	}

	sc.pending = sc.pending[:0]
	return nil
}

// FlushKey flushes pending rows for one key, if any.
func (w *Writer) FlushKey(key string) error {
	sc, ok := w.sheets[key]
	if !ok || len(sc.pending) == 0 {
		return nil
	}
	return w.flush(sc)
}

// DiscardPending drops pending rows for one key without writing them.
func (w *Writer) DiscardPending(key string) {
	if sc, ok := w.sheets[key]; ok {
		sc.pending = sc.pending[:0]
	}
}

// Finalize flushes every sheet's remaining partial buffer in the order the
// sheets were first created, then seals the workbook. The writer accepts
// nothing afterwards.
func (w *Writer) Finalize() error {
	if w.finalized {
		return nil
	}
	w.finalized = true

	for _, key := range w.order {
		if err := w.flush(w.sheets[key]); err != nil {
			return err
		}
	}
	for _, key := range w.order {
		if err := w.sheets[key].sw.Flush(); err != nil {
			return fmt.Errorf("seal sheet for %q: %w", key, err)
		}
	}

	// Drop excelize's default sheet once real sheets exist, and land the
	// reader on the first group.
	if len(w.order) > 0 {
		_ = w.file.DeleteSheet("Sheet1")
		if idx, err := w.file.GetSheetIndex(w.firstSheet); err == nil && idx >= 0 {
			w.file.SetActiveSheet(idx)
		}
	}
	return nil
}

// Rows reports flushed data rows per key, headers excluded.
func (w *Writer) Rows() map[string]int {
	rows := make(map[string]int, len(w.sheets))
	for key, sc := range w.sheets {
		rows[key] = sc.flushed
	}
	return rows
}

// SaveAs writes the workbook to a file. Call Finalize first.
func (w *Writer) SaveAs(path string) error {
	return w.file.SaveAs(path)
}

// WriteTo streams the workbook to out. Call Finalize first.
func (w *Writer) WriteTo(out io.Writer) error {
	return w.file.Write(out)
}

// Close releases the underlying workbook resources.
func (w *Writer) Close() error {
	return w.file.Close()
}
