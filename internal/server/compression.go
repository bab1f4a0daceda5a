package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// supportedEncodings in order of preference.
var supportedEncodings = []string{"br", "zstd", "gzip"}

// negotiateEncoding picks the preferred supported encoding from an
// Accept-Encoding header, honouring q=0 exclusions. Returns "" for identity.
func negotiateEncoding(header string) string {
	if strings.TrimSpace(header) == "" {
		return ""
	}

	accepted := make(map[string]bool)
	wildcard := false
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		ok := true
		if q, found := strings.CutPrefix(strings.TrimSpace(params), "q="); found {
			if v, err := strconv.ParseFloat(q, 64); err == nil && v == 0 {
				ok = false
			}
		}
		if name == "*" {
			wildcard = ok
			continue
		}
		accepted[name] = ok
	}

	for _, enc := range supportedEncodings {
		if ok, listed := accepted[enc]; listed {
			if ok {
				return enc
			}
			continue
		}
		if wildcard {
			return enc
		}
	}
	return ""
}

// compressWriter encodes the body with the negotiated encoding, deciding at
// WriteHeader time so bodiless responses stay untouched.
type compressWriter struct {
	http.ResponseWriter
	encoding    string
	encoder     io.WriteCloser
	wroteHeader bool
}

func (w *compressWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true

	h := w.Header()
	if code != http.StatusNoContent && code != http.StatusNotModified && h.Get("Content-Encoding") == "" {
		if enc := newEncoder(w.encoding, w.ResponseWriter); enc != nil {
			w.encoder = enc
			h.Set("Content-Encoding", w.encoding)
			h.Del("Content-Length")
		}
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *compressWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.encoder != nil {
		return w.encoder.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

// Close flushes the encoder trailer.
func (w *compressWriter) Close() error {
	if w.encoder != nil {
		return w.encoder.Close()
	}
	return nil
}

func (w *compressWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func newEncoder(encoding string, dst io.Writer) io.WriteCloser {
	switch encoding {
	case "br":
		return brotli.NewWriterLevel(dst, brotli.DefaultCompression)
	case "zstd":
		enc, err := zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil
		}
		return enc
	case "gzip":
		return gzip.NewWriter(dst)
	default:
		return nil
	}
}

// compressResponses encodes response bodies for clients that accept br, zstd or gzip.
func compressResponses(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Accept-Encoding")

		encoding := negotiateEncoding(r.Header.Get("Accept-Encoding"))
		if encoding == "" || r.Method == http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}

		cw := &compressWriter{ResponseWriter: w, encoding: encoding}
		defer cw.Close()
		next.ServeHTTP(cw, r)
	})
}
