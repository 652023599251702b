package web

// errors.go provides unified error responses for the API.
//
// Technical detail is logged server-side with the request ID for
// correlation; clients get a stable JSON shape with a machine-readable code
// and a human-readable message.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/enerflow/compresor-report/internal/archive"
	"github.com/enerflow/compresor-report/internal/extract"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondError logs the technical error and writes the client-facing JSON.
func respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	code := errorCode(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	respondJSON(w, status, ErrorResponse{Error: userMessage(err), Code: code})
}

// respondJSON writes any payload as a JSON response.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// errorCode maps an error to a stable machine-readable code.
func errorCode(err error) string {
	switch {
	case errors.Is(err, archive.ErrNotArchive):
		return "INVALID_ARCHIVE"
	case errors.Is(err, archive.ErrNoPDFs):
		return "NO_PDFS"
	case errors.Is(err, archive.ErrTooManyPDFs):
		return "TOO_MANY_PDFS"
	case errors.Is(err, ErrTooManyJobs):
		return "BUSY"
	case errors.Is(err, extract.ErrInvalidConfig):
		return "INVALID_CONFIG"
	case errors.Is(err, extract.ErrWriteFault):
		return "WRITE_FAULT"
	default:
		return "INTERNAL"
	}
}

// userMessage returns a message safe to show clients. Known error families
// carry their own wording; anything else collapses to a generic line so
// internals never leak.
func userMessage(err error) string {
	for _, known := range []error{
		archive.ErrNotArchive,
		archive.ErrNoPDFs,
		archive.ErrTooManyPDFs,
		ErrTooManyJobs,
		extract.ErrInvalidConfig,
	} {
		if errors.Is(err, known) {
			return err.Error()
		}
	}
	return "conversion failed, see server logs"
}
