package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akhildhavil09/stugrader/internal/embedding"
	"github.com/akhildhavil09/stugrader/internal/grading"
)

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, content := range files {
		fw, err := mw.CreateFormFile(field, field+".txt")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func newTestHandler(maxUpload int64) http.HandlerFunc {
	grader := grading.NewGrader(embedding.NewLocalEmbedder(0))
	return AnalyzeHandler(grader, maxUpload)
}

func TestAnalyzeHandler(t *testing.T) {
	body, contentType := multipartBody(t, map[string]string{
		"rubric":     "Students must explain the causes of inflation. 20 points.",
		"assignment": "We explain the causes of inflation.",
	})
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	newTestHandler(5<<20)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var report grading.Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.TotalPoints != 40 {
		t.Errorf("total_points = %v, want 40", report.TotalPoints)
	}
	if len(report.DetailedFeedback) != 2 {
		t.Errorf("detailed_feedback entries = %d, want 2", len(report.DetailedFeedback))
	}
}

func TestAnalyzeHandlerMissingFile(t *testing.T) {
	body, contentType := multipartBody(t, map[string]string{
		"rubric": "Must explain gravity. 10 points.",
	})
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	newTestHandler(5<<20)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatal(err)
	}
	if payload.Error == "" {
		t.Error("expected structured error payload")
	}
}

func TestAnalyzeHandlerOversizedUpload(t *testing.T) {
	big := make([]byte, 256)
	for i := range big {
		big[i] = 'a'
	}
	body, contentType := multipartBody(t, map[string]string{
		"rubric":     string(big),
		"assignment": "short",
	})
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	newTestHandler(128)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAnalyzeHandlerEmptyRubric(t *testing.T) {
	body, contentType := multipartBody(t, map[string]string{
		"rubric":     "",
		"assignment": "anything at all",
	})
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	newTestHandler(5<<20)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var report grading.Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.Score != 0 || report.TotalPoints != 0 {
		t.Errorf("empty rubric should grade to zero, got %+v", report)
	}
}

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
