package extract

import (
	"bufio"
	"iter"
	"regexp"
	"strconv"
	"strings"
)

// dataLine matches one telemetry record: DD/MM/YYYY, a 24-hour time with a
// one- or two-digit hour, and a numeric consumption value (integer or
// decimal). Extraction can squeeze or stretch the gaps between tokens, so
// any run of whitespace separates them. Pre-compiled once.
var dataLine = regexp.MustCompile(`^(\d{2}/\d{2}/\d{4})\s+(\d{1,2}:\d{2}:\d{2})\s+([\d.]+)$`)

// headerMarkers identify the repeated report banner lines on every page of
// the source documents. Derived from representative samples, not invented.
var headerMarkers = []string{"HISTORICO", "Fecha", "Hora", "Consumo motor", "compresor"}

// Row is one parsed line before the group key is attached.
type Row struct {
	Timestamp string
	Consumo   float64
}

// Parser scans page text line by line and yields candidate rows. It never
// fails: header lines, page markers and blank lines are discarded, and any
// other line that is not a data row only increments Skipped.
//
// The zero value is ready to use. A Parser is per-document state; Skipped
// accumulates across pages of that document.
type Parser struct {
	Skipped int
}

// Rows returns a lazy, finite sequence of the rows found on one page.
// Each call restarts from the top of the given text.
func (p *Parser) Rows(pageText string) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		sc := bufio.NewScanner(strings.NewReader(pageText))
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "===") || strings.Contains(line, "Página") {
				continue
			}
			if isHeaderLine(line) {
				continue
			}

			m := dataLine.FindStringSubmatch(line)
			if m == nil {
				p.Skipped++
				continue
			}
			v, err := strconv.ParseFloat(m[3], 64)
			if err != nil {
				// Stray dots can produce things like "1.2.3".
				p.Skipped++
				continue
			}

			if !yield(Row{Timestamp: m[1] + " " + m[2], Consumo: v}) {
				return
			}
		}
	}
}

func isHeaderLine(line string) bool {
	for _, marker := range headerMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}
