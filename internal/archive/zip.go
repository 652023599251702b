// Package archive handles uploaded ZIP bundles: safe extraction into a
// working directory and discovery of the PDF documents inside.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotArchive marks an upload that is not a readable ZIP file.
var ErrNotArchive = errors.New("not a valid zip archive")

// ErrNoPDFs marks an archive that contains no PDF entries.
var ErrNoPDFs = errors.New("archive contains no PDF files")

// ErrTooManyPDFs marks an archive whose PDF count exceeds the caller's cap.
var ErrTooManyPDFs = errors.New("archive contains too many PDF files")

// Extract unpacks the ZIP at src into destDir. Entry names are flattened to
// their base name so an entry can never escape destDir, directory entries
// are skipped, and each entry is copied through a size cap of maxEntryBytes
// (0 means no cap). maxPDFs, when positive, caps the number of PDF entries.
func Extract(src, destDir string, maxEntryBytes int64, maxPDFs int) error {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotArchive, err)
	}
	defer zr.Close()

	if len(zr.File) == 0 {
		return fmt.Errorf("%w: archive is empty", ErrNoPDFs)
	}

	pdfs := 0
	for _, entry := range zr.File {
		if isPDFName(entry.Name) {
			pdfs++
		}
	}
	if pdfs == 0 {
		return ErrNoPDFs
	}
	if maxPDFs > 0 && pdfs > maxPDFs {
		return fmt.Errorf("%w: %d PDFs, limit %d", ErrTooManyPDFs, pdfs, maxPDFs)
	}

	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		if err := extractEntry(entry, destDir, maxEntryBytes); err != nil {
			return err
		}
	}
	return nil
}

// extractEntry copies one archive entry into destDir under its base name.
// The base name alone defeats zip-slip: "../x" and "a/b/../../x" both land
// as "x" inside destDir.
func extractEntry(entry *zip.File, destDir string, maxBytes int64) error {
	name := sanitizeEntryName(entry.Name)
	if name == "" {
		return nil
	}
	dest := filepath.Join(destDir, name)

	rc, err := entry.Open()
	if err != nil {
		return fmt.Errorf("open archive entry %q: %w", entry.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %q: %w", dest, err)
	}
	defer out.Close()

	var src io.Reader = rc
	if maxBytes > 0 {
		src = io.LimitReader(rc, maxBytes+1)
	}
	n, err := io.Copy(out, src)
	if err != nil {
		return fmt.Errorf("extract %q: %w", entry.Name, err)
	}
	if maxBytes > 0 && n > maxBytes {
		os.Remove(dest)
		return fmt.Errorf("entry %q exceeds size limit of %d bytes", entry.Name, maxBytes)
	}
	return nil
}

// sanitizeEntryName reduces an archive entry name to a bare file name.
func sanitizeEntryName(name string) string {
	name = strings.ReplaceAll(name, `\`, `/`)
	base := filepath.Base(filepath.FromSlash(name))
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return ""
	}
	return base
}

// FindPDFs lists the PDF files directly inside dir, sorted
// case-insensitively by name for a deterministic processing order.
func FindPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	var pdfs []string
	for _, entry := range entries {
		if entry.IsDir() || !isPDFName(entry.Name()) {
			continue
		}
		pdfs = append(pdfs, filepath.Join(dir, entry.Name()))
	}

	sort.Slice(pdfs, func(i, j int) bool {
		return strings.ToLower(pdfs[i]) < strings.ToLower(pdfs[j])
	})
	return pdfs, nil
}

func isPDFName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
