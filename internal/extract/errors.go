package extract

// errors.go defines the fault taxonomy for a processing run.
//
// Only two kinds of fault escape the engine as Go errors: configuration
// faults (reported before any document is touched) and write faults during
// workbook finalization. Everything else is scoped to a page, a line, or a
// document and is recorded on the run report instead of propagating.

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig marks configuration faults detected before any
// processing begins. Run never starts when it wraps this error.
var ErrInvalidConfig = errors.New("invalid extraction configuration")

// ErrNoDocuments is returned when Run is invoked with an empty source list.
var ErrNoDocuments = errors.New("no documents to process")

// ErrDocumentUnreadable marks a document that could not be opened or whose
// stream failed mid-read. It is fatal to that document only.
var ErrDocumentUnreadable = errors.New("document unreadable")

// ErrWriteFault marks an output write failure during a flush. The owning
// document is marked failed; batches flushed earlier are not rolled back.
var ErrWriteFault = errors.New("workbook write fault")

// PageError reports a failed extraction of a single page. The page is
// skipped and the document continues.
type PageError struct {
	Page int
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d: extraction failed: %v", e.Page, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }
