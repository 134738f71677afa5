package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dshevko/talentsift/internal/ingest"
)

func multipartUpload(t *testing.T, batch string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if batch != "" {
		if err := writer.WriteField("batch", batch); err != nil {
			t.Fatal(err)
		}
	}
	for name, data := range files {
		part, err := writer.CreateFormFile("files", name)
		if err != nil {
			t.Fatal(err)
		}
		part.Write(data)
	}
	writer.Close()

	return body, writer.FormDataContentType()
}

func doUpload(t *testing.T, handler http.Handler, batch string, files map[string][]byte) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartUpload(t, batch, files)
	req := httptest.NewRequest(http.MethodPost, "/api/resumes", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestUploadResumes(t *testing.T) {
	ingester := &fakeIngester{results: map[string]*ingest.Result{
		"alice.pdf": {ID: "r1", CandidateName: "Alice"},
		"bob.pdf":   {ID: "r2", CandidateName: "Bob"},
	}}
	router := newTestRouter(nil, ingester, nil, nil)

	rec := doUpload(t, router, "jan-2026", map[string][]byte{
		"alice.pdf": []byte("%PDF alice"),
		"bob.pdf":   []byte("%PDF bob"),
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeBody[struct {
		Batch    string `json:"batch"`
		Uploaded []struct {
			ID            string `json:"id"`
			CandidateName string `json:"candidate_name"`
			FileName      string `json:"file_name"`
		} `json:"uploaded"`
		Failed []string `json:"failed"`
	}](t, rec)

	if resp.Batch != "jan-2026" {
		t.Fatalf("unexpected batch: %q", resp.Batch)
	}
	if len(resp.Uploaded) != 2 || len(resp.Failed) != 0 {
		t.Fatalf("unexpected counts: %+v", resp)
	}
}

func TestUploadResumesPartialFailure(t *testing.T) {
	// Only alice.pdf is known to the ingester; broken.pdf fails.
	ingester := &fakeIngester{results: map[string]*ingest.Result{
		"alice.pdf": {ID: "r1", CandidateName: "Alice"},
	}}
	router := newTestRouter(nil, ingester, nil, nil)

	rec := doUpload(t, router, "jan-2026", map[string][]byte{
		"alice.pdf":  []byte("%PDF alice"),
		"broken.pdf": []byte("not a pdf"),
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("a partial success is still 201, got %d", rec.Code)
	}

	resp := decodeBody[struct {
		Uploaded []any    `json:"uploaded"`
		Failed   []string `json:"failed"`
	}](t, rec)

	if len(resp.Uploaded) != 1 || len(resp.Failed) != 1 || resp.Failed[0] != "broken.pdf" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestUploadResumesAllFailed(t *testing.T) {
	ingester := &fakeIngester{results: map[string]*ingest.Result{}}
	router := newTestRouter(nil, ingester, nil, nil)

	rec := doUpload(t, router, "jan-2026", map[string][]byte{
		"broken.pdf": []byte("not a pdf"),
	})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 when nothing was ingested, got %d", rec.Code)
	}
}

func TestUploadResumesRequiresBatch(t *testing.T) {
	rec := doUpload(t, newTestRouter(nil, nil, nil, nil), "", map[string][]byte{
		"alice.pdf": []byte("%PDF"),
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a batch, got %d", rec.Code)
	}
}

func TestUploadResumesRequiresFiles(t *testing.T) {
	rec := doUpload(t, newTestRouter(nil, nil, nil, nil), "jan-2026", nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without files, got %d", rec.Code)
	}
}
