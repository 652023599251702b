package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/enerflow/compresor-report/internal/archive"
	"github.com/enerflow/compresor-report/internal/config"
	"github.com/enerflow/compresor-report/internal/extract"
	"github.com/enerflow/compresor-report/internal/logging"
	"github.com/enerflow/compresor-report/internal/store"
	"github.com/enerflow/compresor-report/internal/workbook"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// healthResponse is the payload of GET /api/health.
type healthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	ActiveJobs int    `json:"active_jobs"`
	FreeSlots  int    `json:"free_slots"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		Version:    config.Version,
		ActiveJobs: s.limiter.ActiveCount(),
		FreeSlots:  s.limiter.Available(),
	})
}

// handleConvert accepts a multipart ZIP bundle of compressor PDFs and
// responds with the generated XLSX workbook. Run summary counters travel in
// response headers since the body is the file itself.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if err := s.limiter.Acquire(r.Context()); err != nil {
		status := http.StatusServiceUnavailable
		if !errors.Is(err, ErrTooManyJobs) {
			status = http.StatusRequestTimeout
		}
		respondError(w, r, err, status)
		return
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Upload.Timeout)
	defer cancel()

	jobID := uuid.NewString()
	logger := logging.FromContext(r.Context()).With("job_id", jobID)

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

	bundleName, workDir, err := s.receiveBundle(r, jobID)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	defer os.RemoveAll(workDir)

	pdfDir := filepath.Join(workDir, "pdfs")
	zipPath := filepath.Join(workDir, "bundle.zip")
	if err := archive.Extract(zipPath, pdfDir, s.cfg.Upload.MaxFileSize, s.cfg.Upload.MaxPDFs); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	paths, err := archive.FindPDFs(pdfDir)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	docs := make([]extract.DocumentSource, 0, len(paths))
	for _, p := range paths {
		docs = append(docs, extract.FileSource{Path: p})
	}

	writer, err := workbook.NewWriter(s.cfg.Extract.BatchSize, s.cfg.Extract.RowLimit)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	defer writer.Close()

	logger.Info("conversion started", "bundle", bundleName, "documents", len(docs))

	rep, runErr := extract.Run(ctx, docs, writer, extract.Options{
		EvictEvery: s.cfg.Extract.EvictEvery,
	})
	if rep == nil {
		respondError(w, r, runErr, http.StatusUnprocessableEntity)
		return
	}

	s.recordRun(r.Context(), jobID, bundleName, rep, runErr)

	if runErr != nil {
		// Finalization failed, so there is no valid workbook to return.
		respondError(w, r, runErr, http.StatusInternalServerError)
		return
	}

	logger.Info("conversion finished",
		"succeeded", rep.Succeeded,
		"failed", rep.Failed,
		"rows", rep.TotalRows,
		"elapsed", rep.Elapsed,
	)

	outName := strings.TrimSuffix(bundleName, filepath.Ext(bundleName)) + ".xlsx"
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", outName))
	w.Header().Set("X-Run-Id", jobID)
	w.Header().Set("X-Documents-Succeeded", strconv.Itoa(rep.Succeeded))
	w.Header().Set("X-Documents-Failed", strconv.Itoa(rep.Failed))
	w.Header().Set("X-Total-Rows", strconv.Itoa(rep.TotalRows))
	w.Header().Set("X-Skipped-Lines", strconv.Itoa(rep.SkippedLines))
	if summary, err := json.Marshal(rep.Documents); err == nil {
		w.Header().Set("X-Run-Summary", string(summary))
	}

	if err := writer.WriteTo(w); err != nil {
		// Headers are gone; all that remains is to log it.
		logger.Error("stream workbook", "error", err)
	}
}

// receiveBundle stores the uploaded ZIP under a per-job working directory
// and returns the original file name and that directory.
func (s *Server) receiveBundle(r *http.Request, jobID string) (string, string, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", "", fmt.Errorf("%w: missing multipart field %q", archive.ErrNotArchive, "file")
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".zip") {
		return "", "", fmt.Errorf("%w: %q is not a .zip file", archive.ErrNotArchive, header.Filename)
	}

	workDir, err := os.MkdirTemp("", "compresor-"+jobID)
	if err != nil {
		return "", "", fmt.Errorf("create working dir: %w", err)
	}

	dest := filepath.Join(workDir, "bundle.zip")
	out, err := os.Create(dest)
	if err != nil {
		os.RemoveAll(workDir)
		return "", "", fmt.Errorf("store upload: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.RemoveAll(workDir)
		return "", "", fmt.Errorf("store upload: %w", err)
	}
	return filepath.Base(header.Filename), workDir, nil
}

// recordRun persists the run outcome when the history store is enabled.
func (s *Server) recordRun(ctx context.Context, jobID, source string, rep *extract.Report, runErr error) {
	if s.runs == nil {
		return
	}
	if err := s.runs.RecordRun(ctx, jobID, source, rep, runErr); err != nil {
		logging.FromContext(ctx).Error("record run history", "job_id", jobID, "error", err)
	}
}

// handleRuns lists recent conversion runs, newest first. The limit query
// parameter caps the page size (default 20, max 100).
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		respondJSON(w, http.StatusNotFound, ErrorResponse{
			Error: "run history is disabled",
			Code:  "HISTORY_DISABLED",
		})
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, r, fmt.Errorf("%w: invalid limit %q", extract.ErrInvalidConfig, raw), http.StatusBadRequest)
			return
		}
		limit = min(n, 100)
	}

	runs, err := s.runs.RecentRuns(r.Context(), limit)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []store.RunRecord{}
	}
	respondJSON(w, http.StatusOK, runs)
}
