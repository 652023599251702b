package extract

import "time"

// DocumentStatus is the terminal state of one document.
type DocumentStatus string

const (
	StatusSuccess DocumentStatus = "success"
	StatusFailed  DocumentStatus = "failed"
)

// DocumentResult is the outcome of one document within a run.
type DocumentResult struct {
	Name   string         `json:"name"`
	Key    string         `json:"key"`
	Status DocumentStatus `json:"status"`

	// Pages is the document's page count; PagesSkipped counts pages whose
	// extraction faulted and was skipped.
	Pages        int `json:"pages"`
	PagesSkipped int `json:"pages_skipped,omitempty"`

	// Rows is the number of rows this document contributed to the output.
	// For a failed document it counts only rows flushed before the fault.
	Rows int `json:"rows"`

	// SkippedLines counts lines that matched no known pattern.
	SkippedLines int `json:"skipped_lines,omitempty"`

	// Error describes why the document failed; empty on success.
	Error string `json:"error,omitempty"`
}

// Report is the aggregate, authoritative summary of one run. It is created
// at run start, finalized at run end and never mutated afterward. It is the
// single source of truth for what succeeded, what failed, and why.
type Report struct {
	Documents []DocumentResult `json:"documents"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`

	// RowsByKey maps each group key to the data rows written to its sheet
	// chain (headers excluded). TotalRows is their sum.
	RowsByKey map[string]int `json:"rows_by_key"`
	TotalRows int            `json:"total_rows"`

	SkippedLines int `json:"skipped_lines"`

	// Warnings holds non-fatal notices, e.g. key-resolution fallbacks.
	Warnings []string `json:"warnings,omitempty"`

	Elapsed time.Duration `json:"elapsed"`
	Pages   PageStats     `json:"-"`
}
