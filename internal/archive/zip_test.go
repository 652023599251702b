package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeZip builds a ZIP at a temp path from name→content pairs.
func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create entry %q: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write entry %q: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	path := filepath.Join(t.TempDir(), "bundle.zip")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write zip file: %v", err)
	}
	return path
}

func TestExtract(t *testing.T) {
	src := writeZip(t, map[string]string{
		"COMPRESOR1.pdf":        "%PDF-1.4 one",
		"nested/COMPRESOR2.PDF": "%PDF-1.4 two",
		"notes.txt":             "ignore me",
	})
	dest := t.TempDir()

	if err := Extract(src, dest, 0, 0); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	for _, name := range []string{"COMPRESOR1.pdf", "COMPRESOR2.PDF", "notes.txt"} {
		if _, err := os.Stat(filepath.Join(dest, name)); err != nil {
			t.Errorf("missing extracted file %q: %v", name, err)
		}
	}
}

func TestExtract_ZipSlipFlattened(t *testing.T) {
	src := writeZip(t, map[string]string{
		"../escape.pdf":       "%PDF-1.4",
		"a/../../inner.pdf":   "%PDF-1.4",
		`win\..\..\other.pdf`: "%PDF-1.4",
	})
	dest := filepath.Join(t.TempDir(), "work")
	if err := os.Mkdir(dest, 0o755); err != nil {
		t.Fatal(err)
	}

	if err := Extract(src, dest, 0, 0); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	// Everything lands inside dest under its base name; nothing above it.
	for _, name := range []string{"escape.pdf", "inner.pdf", "other.pdf"} {
		if _, err := os.Stat(filepath.Join(dest, name)); err != nil {
			t.Errorf("missing flattened file %q: %v", name, err)
		}
	}
	parent := filepath.Dir(dest)
	for _, name := range []string{"escape.pdf", "inner.pdf", "other.pdf"} {
		if _, err := os.Stat(filepath.Join(parent, name)); err == nil {
			t.Errorf("file %q escaped the extraction dir", name)
		}
	}
}

func TestExtract_Rejections(t *testing.T) {
	t.Run("not a zip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fake.zip")
		if err := os.WriteFile(path, []byte("plain text"), 0o644); err != nil {
			t.Fatal(err)
		}
		err := Extract(path, t.TempDir(), 0, 0)
		if !errors.Is(err, ErrNotArchive) {
			t.Errorf("err = %v, want ErrNotArchive", err)
		}
	})

	t.Run("no pdfs", func(t *testing.T) {
		src := writeZip(t, map[string]string{"readme.txt": "nothing here"})
		err := Extract(src, t.TempDir(), 0, 0)
		if !errors.Is(err, ErrNoPDFs) {
			t.Errorf("err = %v, want ErrNoPDFs", err)
		}
	})

	t.Run("too many pdfs", func(t *testing.T) {
		src := writeZip(t, map[string]string{
			"a.pdf": "%PDF", "b.pdf": "%PDF", "c.pdf": "%PDF",
		})
		err := Extract(src, t.TempDir(), 0, 2)
		if !errors.Is(err, ErrTooManyPDFs) {
			t.Errorf("err = %v, want ErrTooManyPDFs", err)
		}
	})

	t.Run("oversize entry", func(t *testing.T) {
		src := writeZip(t, map[string]string{"big.pdf": "0123456789"})
		dest := t.TempDir()
		err := Extract(src, dest, 5, 0)
		if err == nil {
			t.Fatal("Extract accepted an oversize entry")
		}
		if _, statErr := os.Stat(filepath.Join(dest, "big.pdf")); statErr == nil {
			t.Error("truncated oversize file left behind")
		}
	})
}

func TestFindPDFs(t *testing.T) {
	dir := t.TempDir()
	files := []string{"b-COMPRESOR2.PDF", "a-compresor1.pdf", "zz.txt", "C-compresor3.pdf"}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("%PDF"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.pdf"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := FindPDFs(dir)
	if err != nil {
		t.Fatalf("FindPDFs: %v", err)
	}

	want := []string{"a-compresor1.pdf", "b-COMPRESOR2.PDF", "C-compresor3.pdf"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %d PDFs", got, len(want))
	}
	for i, path := range got {
		if filepath.Base(path) != want[i] {
			t.Errorf("pdf %d = %q, want %q", i, filepath.Base(path), want[i])
		}
	}
}

func TestFindPDFs_EmptyDir(t *testing.T) {
	got, err := FindPDFs(t.TempDir())
	if err != nil {
		t.Fatalf("FindPDFs: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
}
