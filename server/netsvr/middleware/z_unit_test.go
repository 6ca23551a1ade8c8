// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

func payload() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(bytes.Repeat([]byte{9}, 4096))
	})
}

func TestNegotiate(t *testing.T) {
	cases := map[string]string{
		"":                       "",
		"gzip":                   encGzip,
		"gzip, zstd":             encZstd,
		"zstd;q=0, gzip":         encGzip,
		"gzip;q=0.5, zstd;q=0.4": encGzip,
		"br":                     "",
		"*":                      encZstd,
		"identity, gzip;q=0":     "",
	}
	for in, want := range cases {
		if got := negotiate(in); got != want {
			t.Fatalf("negotiate(%q) = %q want %q", in, got, want)
		}
	}
}

func TestCompressionZstd(t *testing.T) {
	h := Compression(payload())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip, zstd")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") != "zstd" {
		t.Fatalf("want zstd, got %q", rec.Header().Get("Content-Encoding"))
	}
	dec, err := zstd.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()
	out, err := io.ReadAll(dec)
	if err != nil || len(out) != 4096 || out[0] != 9 {
		t.Fatalf("decoded %d bytes, err %v", len(out), err)
	}
}

func TestCompressionGzip(t *testing.T) {
	h := Compression(payload())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	out, _ := io.ReadAll(zr)
	if len(out) != 4096 {
		t.Fatalf("decoded %d bytes", len(out))
	}
}

func TestCompressionSkipsNoContent(t *testing.T) {
	h := Compression(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 || rec.Header().Get("Content-Encoding") != "" {
		t.Fatalf("204 must have no body or encoding: %d %q", rec.Body.Len(), rec.Header().Get("Content-Encoding"))
	}
}

func TestAccessLogAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	h := RequestID(AccessLog(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/games/x", nil))

	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("request id header missing")
	}
	out := buf.String()
	for _, want := range []string{`"msg":"http.access"`, `"status":404`, `"level":"WARN"`, `"path":"/v1/games/x"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("access log missing %s: %s", want, out)
		}
	}
}

func TestRecover(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	h := Recover(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("field: index 99 out of [0,9)")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", rec.Code)
	}
	if !strings.Contains(buf.String(), "index 99") {
		t.Fatalf("panic not logged: %s", buf.String())
	}
}
