package http

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/akhildhavil09/stugrader/internal/embedding"
	"github.com/akhildhavil09/stugrader/internal/extract"
	"github.com/akhildhavil09/stugrader/internal/grading"
)

type errorPayload struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorPayload{Error: msg})
}

// POST /analyze
//
// Multipart form with two file fields, "rubric" and "assignment". Each upload
// is capped at maxUpload bytes. Responds with the grading report JSON, or an
// {"error": ...} payload on failure.
func AnalyzeHandler(grader *grading.Grader, maxUpload int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Overall body cap: two documents plus form overhead.
		r.Body = http.MaxBytesReader(w, r.Body, 2*maxUpload+1<<20)
		if err := r.ParseMultipartForm(maxUpload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid upload: "+err.Error())
			return
		}

		rubricText, ok := readUpload(w, r, "rubric", maxUpload)
		if !ok {
			return
		}
		assignmentText, ok := readUpload(w, r, "assignment", maxUpload)
		if !ok {
			return
		}

		report, err := grader.Grade(r.Context(), rubricText, assignmentText)
		if err != nil {
			log.Printf("analyze: grading failed: %v", err)
			if errors.Is(err, embedding.ErrModelUnavailable) {
				writeError(w, http.StatusBadGateway, "error during analysis: "+err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "error during analysis: "+err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(report)
	}
}

// readUpload fetches one named file from the form, enforces the size cap, and
// extracts its text. Writes the error response itself when something fails.
func readUpload(w http.ResponseWriter, r *http.Request, field string, maxUpload int64) (string, bool) {
	file, header, err := r.FormFile(field)
	if err != nil {
		writeError(w, http.StatusBadRequest, field+" file is required")
		return "", false
	}
	defer file.Close()

	if header.Size > maxUpload {
		writeError(w, http.StatusBadRequest, header.Filename+" is too large. Please keep files under 5MB.")
		return "", false
	}
	content, err := readAll(file, maxUpload)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read "+header.Filename)
		return "", false
	}

	text, err := extract.Extract(content, header.Filename)
	if err != nil {
		log.Printf("analyze: extract %s: %v", header.Filename, err)
		writeError(w, http.StatusBadRequest,
			"could not process "+header.Filename+". Make sure it's a valid PDF, DOCX, HTML or text file.")
		return "", false
	}
	return text, true
}

func readAll(f multipart.File, max int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(f, max+1))
}

// GET /healthz
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
