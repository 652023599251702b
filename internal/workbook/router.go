// Package workbook writes extracted records into an XLSX workbook, one
// sheet per group key, using excelize stream writers so memory stays
// bounded by the configured batch size rather than by row count.
package workbook

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// MaxSheetRows is the XLSX format's hard per-sheet row limit, header
// included.
const MaxSheetRows = 1048576

// sheetNameLimit is the XLSX visible-name length limit.
const sheetNameLimit = 31

// headerRow is written as row one of every sheet.
var headerRow = []interface{}{"Date", "Consumo", "Compressor"}

// sheetChain is the router state for one group key: the active physical
// sheet plus the count of sealed continuation sheets before it. Callers
// always address the key; the chain is invisible to them.
type sheetChain struct {
	key  string
	base string // sanitized base name; continuations derive from it
	part int    // physical sheet ordinal within the chain, 1-based

	sw        *excelize.StreamWriter
	sheetRows int // rows in the active physical sheet, header included
	flushed   int // data rows written for this key across the whole chain

	pending []row // owned exclusively by the batch writer
}

type row struct {
	timestamp string
	consumo   float64
	key       string
}

// sheet returns the chain for key, creating the sheet lazily with its
// header row on first use.
func (w *Writer) sheet(key string) (*sheetChain, error) {
	if sc, ok := w.sheets[key]; ok {
		return sc, nil
	}

	base := sanitizeSheetName(key)
	name := w.uniqueName(base)
	sw, err := w.newSheet(name)
	if err != nil {
		return nil, err
	}

	sc := &sheetChain{
		key:       key,
		base:      base,
		part:      1,
		sw:        sw,
		sheetRows: 1, // header
		pending:   make([]row, 0, w.batchSize),
	}
	w.sheets[key] = sc
	w.order = append(w.order, key)
	if w.firstSheet == "" {
		w.firstSheet = name
	}
	return sc, nil
}

// rollover seals the active physical sheet at exactly the row limit and
// opens the chain's next continuation sheet.
func (sc *sheetChain) rollover(w *Writer) error {
	if err := sc.sw.Flush(); err != nil {
		return fmt.Errorf("seal sheet for %q: %w", sc.key, err)
	}

	sc.part++
	suffix := fmt.Sprintf(" (%d)", sc.part)
	base := sc.base
	if len(base)+len(suffix) > sheetNameLimit {
		base = base[:sheetNameLimit-len(suffix)]
	}
	name := w.uniqueName(base + suffix)

	sw, err := w.newSheet(name)
	if err != nil {
		return err
	}
	sc.sw = sw
	sc.sheetRows = 1
	return nil
}

// newSheet creates a named sheet with its header row and returns its
// stream writer.
func (w *Writer) newSheet(name string) (*excelize.StreamWriter, error) {
	if _, err := w.file.NewSheet(name); err != nil {
		return nil, fmt.Errorf("create sheet %q: %w", name, err)
	}
	sw, err := w.file.NewStreamWriter(name)
	if err != nil {
		return nil, fmt.Errorf("stream writer for %q: %w", name, err)
	}
	if err := sw.SetRow("A1", headerRow); err != nil {
		return nil, fmt.Errorf("header for %q: %w", name, err)
	}
	return sw, nil
}

// uniqueName reserves a visible sheet name, suffixing on collision. Excel
// treats sheet names case-insensitively.
func (w *Writer) uniqueName(name string) string {
	candidate := name
	for n := 2; w.used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf("_%d", n)
		base := name
		if len(base)+len(suffix) > sheetNameLimit {
			base = base[:sheetNameLimit-len(suffix)]
		}
		candidate = base + suffix
	}
	w.used[strings.ToLower(candidate)] = true
	return candidate
}

// sanitizeSheetName makes a group key safe as an XLSX sheet name: the
// format forbids : \ / ? * [ ] and caps names at 31 characters.
func sanitizeSheetName(name string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, name)

	if len(sanitized) > sheetNameLimit {
		sanitized = sanitized[:sheetNameLimit]
	}
	if strings.TrimSpace(sanitized) == "" {
		return "Compressor"
	}
	return sanitized
}
