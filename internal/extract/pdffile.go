package extract

// pdffile.go is the production DocumentSource: a PDF file on local disk.
//
// pdfcpu validates the file and supplies the page count from document
// metadata (forcing full pagination is the dominant cost to avoid on
// multi-thousand-page reports). Text extraction itself goes through
// ledongthuc/pdf, whose font cache is the reader state that EvictCaches
// releases.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// FileSource is a PDF document on the local filesystem.
type FileSource struct {
	Path string
}

// Name returns the file's base name; the group key is derived from it.
func (f FileSource) Name() string { return filepath.Base(f.Path) }

// Open validates the PDF and prepares a page reader. Validation runs in
// relaxed mode because real-world telemetry exports are rarely
// spec-perfect. Any failure here maps to ErrDocumentUnreadable.
func (f FileSource) Open() (PageReader, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(f.Path, conf); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDocumentUnreadable, f.Path, err)
	}

	pages, err := api.PageCountFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: page count: %v", ErrDocumentUnreadable, f.Path, err)
	}

	file, reader, err := pdf.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDocumentUnreadable, f.Path, err)
	}

	return &pdfReader{
		file:   file,
		reader: reader,
		pages:  pages,
		fonts:  make(map[string]*pdf.Font),
	}, nil
}

// pdfReader adapts ledongthuc/pdf to the PageReader contract.
type pdfReader struct {
	file   *os.File
	reader *pdf.Reader
	pages  int

	// fonts is the decode cache shared across GetPlainText calls. It grows
	// with every distinct font encountered, which is why it is evictable.
	fonts map[string]*pdf.Font
}

func (r *pdfReader) PageCount() int { return r.pages }

// PageText extracts one page's text, preserving the report's line structure
// by reassembling rows from glyph positions. The library panics on some
// malformed content streams, so the recover turns that into a per-page
// error instead of killing the run.
func (r *pdfReader) PageText(index int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("content stream: %v", rec)
		}
	}()

	p := r.reader.Page(index)
	if p.V.IsNull() {
		return "", fmt.Errorf("page object missing")
	}

	rows, err := p.GetTextByRow()
	if err != nil {
		// Positional assembly failed; fall back to the plain text walk,
		// which at least yields the tokens (cached fonts speed it up).
		return p.GetPlainText(r.fonts)
	}

	var b []byte
	for _, row := range rows {
		for i, word := range row.Content {
			if i > 0 {
				b = append(b, ' ')
			}
			b = append(b, word.S...)
		}
		b = append(b, '\n')
	}
	return string(b), nil
}

func (r *pdfReader) EvictCaches() {
	r.fonts = make(map[string]*pdf.Font)
}

func (r *pdfReader) CacheSize() int { return len(r.fonts) }

func (r *pdfReader) Close() error { return r.file.Close() }
