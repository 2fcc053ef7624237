package storage

import (
	"context"
	"sort"
	"testing"
)

func newTestClient(t *testing.T) *LocalStorageClient {
	t.Helper()
	client, err := NewLocalStorageClient(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage client: %v", err)
	}
	return client
}

func TestLocalStoreAndGetFile(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	content := []byte("date,temp_c\n2024-01-01,8.2\n")
	if err := client.StoreFile(ctx, "raw/weather.csv", content); err != nil {
		t.Fatalf("StoreFile failed: %v", err)
	}

	got, err := client.GetFile(ctx, "raw/weather.csv")
	if err != nil {
		t.Fatalf("GetFile failed: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestLocalStoreFileCreatesParents(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	if err := client.StoreFile(ctx, "a/b/c/file.txt", []byte("x")); err != nil {
		t.Fatalf("StoreFile failed: %v", err)
	}
	exists, err := client.FileExists(ctx, "a/b/c/file.txt")
	if err != nil {
		t.Fatalf("FileExists failed: %v", err)
	}
	if !exists {
		t.Error("file should exist after store")
	}
}

func TestLocalFileExists(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	exists, err := client.FileExists(ctx, "missing.csv")
	if err != nil {
		t.Fatalf("FileExists failed: %v", err)
	}
	if exists {
		t.Error("missing file reported as existing")
	}

	if err := client.CreateDir(ctx, "reports"); err != nil {
		t.Fatalf("CreateDir failed: %v", err)
	}
	exists, err = client.FileExists(ctx, "reports")
	if err != nil {
		t.Fatalf("FileExists failed: %v", err)
	}
	if exists {
		t.Error("a directory is not a file")
	}
}

func TestLocalListDir(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	files := []string{"raw/weather.csv", "raw/air_quality.csv", "raw/nested/deep.csv"}
	for _, f := range files {
		if err := client.StoreFile(ctx, f, []byte("x")); err != nil {
			t.Fatalf("StoreFile %s failed: %v", f, err)
		}
	}

	flat, err := client.ListDir(ctx, "raw", false)
	if err != nil {
		t.Fatalf("ListDir failed: %v", err)
	}
	sort.Strings(flat)
	if len(flat) != 2 {
		t.Fatalf("non-recursive listing: got %v, want 2 entries", flat)
	}
	if flat[0] != "raw/air_quality.csv" || flat[1] != "raw/weather.csv" {
		t.Errorf("unexpected entries: %v", flat)
	}

	all, err := client.ListDir(ctx, "raw", true)
	if err != nil {
		t.Fatalf("recursive ListDir failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("recursive listing: got %v, want 3 entries", all)
	}
}

func TestLocalGetMissingFile(t *testing.T) {
	client := newTestClient(t)
	if _, err := client.GetFile(context.Background(), "nope.csv"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRunFolderPath(t *testing.T) {
	got := RunFolderPath("Rome", "2024-01-01", "2024-12-31")
	if got != "rome/2024-01-01_2024-12-31" {
		t.Errorf("got %q", got)
	}

	got = RunFolderPath("New York", "2024-01-01", "2024-06-30")
	if got != "new-york/2024-01-01_2024-06-30" {
		t.Errorf("got %q", got)
	}

	got = RunFolderPath("", "2024-01-01", "2024-06-30")
	if got != "city/2024-01-01_2024-06-30" {
		t.Errorf("empty city fallback: got %q", got)
	}
}

func TestGetContentType(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"daily.csv", "text/csv"},
		{"analysis.json", "application/json"},
		{"report.html", "text/html"},
		{"report.md", "text/markdown"},
		{"chart.png", "image/png"},
		{"unknown.bin", "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := GetContentType(tt.filename); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.filename, got, tt.want)
		}
	}
}
