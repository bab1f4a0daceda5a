package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

func TestNegotiateEncoding(t *testing.T) {
	t.Parallel()
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"identity", ""},
		{"gzip", "gzip"},
		{"gzip, deflate, br", "br"},
		{"zstd, gzip", "zstd"},
		{"GZIP", "gzip"},
		{"br;q=0, gzip", "gzip"},
		{"br;q=0.5, gzip;q=1.0", "br"},
		{"*", "br"},
		{"*, br;q=0", "zstd"},
		{"*;q=0", ""},
		{"deflate", ""},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			t.Parallel()
			if got := negotiateEncoding(tt.header); got != tt.want {
				t.Errorf("negotiateEncoding(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func decompress(t *testing.T, encoding string, body io.Reader) string {
	t.Helper()
	var r io.Reader
	switch encoding {
	case "br":
		r = brotli.NewReader(body)
	case "zstd":
		dec, err := zstd.NewReader(body)
		if err != nil {
			t.Fatalf("zstd reader: %v", err)
		}
		defer dec.Close()
		r = dec
	case "gzip":
		gz, err := gzip.NewReader(body)
		if err != nil {
			t.Fatalf("gzip reader: %v", err)
		}
		defer gz.Close()
		r = gz
	default:
		r = body
	}
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("decompress %s: %v", encoding, err)
	}
	return string(out)
}

func TestCompressResponses_RoundTrip(t *testing.T) {
	t.Parallel()
	payload := strings.Repeat(`{"status":"success","message":"Downloaded song"}`, 50)
	h := compressResponses(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, payload)
	}))

	for _, encoding := range []string{"br", "zstd", "gzip", ""} {
		t.Run("encoding="+encoding, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if encoding != "" {
				req.Header.Set("Accept-Encoding", encoding)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if got := rec.Header().Get("Content-Encoding"); got != encoding {
				t.Fatalf("Content-Encoding = %q, want %q", got, encoding)
			}
			if got := rec.Header().Get("Vary"); got != "Accept-Encoding" {
				t.Errorf("Vary = %q", got)
			}
			if got := decompress(t, encoding, rec.Body); got != payload {
				t.Errorf("Round trip mismatch for %q", encoding)
			}
		})
	}
}

func TestCompressResponses_SkipsBodilessStatus(t *testing.T) {
	t.Parallel()
	h := compressResponses(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Encoding"); got != "" {
		t.Errorf("Expected no Content-Encoding, got %q", got)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("Expected empty body, got %d bytes", rec.Body.Len())
	}
}

func TestCompressResponses_ThroughRouter(t *testing.T) {
	t.Parallel()
	ext := &fakeExtractor{title: "Never Gonna Give You Up"}
	h := NewRouter(Dependencies{Extractor: ext})

	req := httptest.NewRequest(http.MethodPost, "/download/", strings.NewReader(`{"url": "https://youtu.be/dQw4w9WgXcQ"}`))
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body := decompress(t, rec.Header().Get("Content-Encoding"), rec.Body)
	if !strings.Contains(body, `"message":"Downloaded Never Gonna Give You Up"`) {
		t.Errorf("Unexpected body %s", body)
	}
}
