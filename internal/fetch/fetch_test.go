package fetch

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("workbook bytes"))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	n, err := NewHTTPFetcher(srv.URL).Fetch(context.Background(), &buf)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if n != int64(len("workbook bytes")) || buf.String() != "workbook bytes" {
		t.Fatalf("fetched %d bytes %q", n, buf.String())
	}
}

func TestHTTPFetcher_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	if _, err := NewHTTPFetcher(srv.URL).Fetch(context.Background(), &buf); err == nil {
		t.Fatalf("expected error on 404")
	}
}

func TestRefresher_ReplacesBackingFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("new content"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "data.xlsx")
	if err := os.WriteFile(path, []byte("old content"), 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	r := NewRefresher(NewHTTPFetcher(srv.URL), path, nil)
	n, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if n != int64(len("new content")) {
		t.Fatalf("bytes = %d, want %d", n, len("new content"))
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "new content" {
		t.Fatalf("file content = %q", got)
	}

	// The temp download file must not be left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".download-") {
			t.Fatalf("leftover temp file %s", e.Name())
		}
	}
}

func TestRefresher_FailedFetchKeepsOldFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusInternalServerError)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "data.xlsx")
	if err := os.WriteFile(path, []byte("old content"), 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	r := NewRefresher(NewHTTPFetcher(srv.URL), path, nil)
	if _, err := r.Refresh(context.Background()); err == nil {
		t.Fatalf("expected refresh error")
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "old content" {
		t.Fatalf("failed refresh must keep the old file, got %q", got)
	}
}

func TestRefresher_CreatesMissingDirectory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("content"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "nested", "dir", "data.xlsx")
	r := NewRefresher(NewHTTPFetcher(srv.URL), path, nil)
	if _, err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("backing file missing after refresh: %v", err)
	}
}
