// SPDX-License-Identifier: MPL-2.0

package lock

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newSizedServer serves a body of n bytes.
func newSizedServer(t *testing.T, n int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte(strings.Repeat("x", n))); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDownloadRejectsOversizedBody(t *testing.T) {
	prev := maxDownloadBytes
	maxDownloadBytes = 64
	t.Cleanup(func() { maxDownloadBytes = prev })

	srv := newSizedServer(t, 256)
	dest := filepath.Join(t.TempDir(), "big.zsh")

	err := download(context.Background(), srv.Client(), srv.URL+"/big.zsh", dest)
	if err == nil {
		t.Fatal("expected an oversized body to fail the download")
	}
	if !strings.Contains(err.Error(), "download limit") {
		t.Errorf("expected a size limit error, got %v", err)
	}
	// A rejected download must not leave a truncated cache entry behind.
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("expected no cache entry for a rejected download")
	}
}

func TestDownloadAcceptsBodyAtLimit(t *testing.T) {
	prev := maxDownloadBytes
	maxDownloadBytes = 64
	t.Cleanup(func() { maxDownloadBytes = prev })

	srv := newSizedServer(t, 64)
	dest := filepath.Join(t.TempDir(), "ok.zsh")

	if err := download(context.Background(), srv.Client(), srv.URL+"/ok.zsh", dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("expected a cache entry: %v", err)
	}
	if len(data) != 64 {
		t.Errorf("expected 64 bytes, got %d", len(data))
	}
}
