package filestore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestClient(serverURL string) *Client {
	return New(serverURL, "service-key", "resumes", zap.NewNop())
}

func TestUpload(t *testing.T) {
	var gotPath, gotAuth, gotAPIKey, gotContentType string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotAPIKey = r.Header.Get("apikey")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	err := client.Upload(context.Background(), "2026-09-01/jane_doe_1a2b3c4d.pdf", []byte("%PDF-1.4 fake"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/storage/v1/object/resumes/2026-09-01/jane_doe_1a2b3c4d.pdf" {
		t.Fatalf("unexpected upload path: %q", gotPath)
	}
	if gotAuth != "Bearer service-key" || gotAPIKey != "service-key" {
		t.Fatalf("auth headers not set: auth=%q apikey=%q", gotAuth, gotAPIKey)
	}
	if gotContentType != "application/pdf" {
		t.Fatalf("unexpected content type: %q", gotContentType)
	}
	if string(gotBody) != "%PDF-1.4 fake" {
		t.Fatalf("body not forwarded: %q", gotBody)
	}
}

func TestUploadBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	err := newTestClient(server.URL).Upload(context.Background(), "a.pdf", []byte("data"))
	if err == nil {
		t.Fatal("expected an error on a non-200 upload response")
	}
}

func TestSignedURL(t *testing.T) {
	var gotPath string
	var gotBody map[string]int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]string{
			"signedURL": "/object/sign/resumes/a.pdf?token=abc",
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	url, err := client.SignedURL(context.Background(), "a.pdf", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/storage/v1/object/sign/resumes/a.pdf" {
		t.Fatalf("unexpected sign path: %q", gotPath)
	}
	if gotBody["expiresIn"] != 3600 {
		t.Fatalf("expected expiresIn 3600, got %d", gotBody["expiresIn"])
	}

	want := server.URL + "/storage/v1/object/sign/resumes/a.pdf?token=abc"
	if url != want {
		t.Fatalf("signed url = %q, want %q", url, want)
	}
}

func TestSignedURLBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).SignedURL(context.Background(), "missing.pdf", time.Hour); err == nil {
		t.Fatal("expected an error on a non-200 sign response")
	}
}

func TestSignedURLEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"signedURL": ""})
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).SignedURL(context.Background(), "a.pdf", time.Hour); err == nil {
		t.Fatal("expected an error on an empty signed url")
	}
}

func TestDefaultBucket(t *testing.T) {
	client := New("https://project.supabase.co/", "key", "", zap.NewNop())

	if client.bucket != "resumes" {
		t.Fatalf("expected default bucket, got %q", client.bucket)
	}
	if client.baseURL != "https://project.supabase.co" {
		t.Fatalf("expected trailing slash trimmed, got %q", client.baseURL)
	}
}
