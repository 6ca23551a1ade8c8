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

package httperr

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zintix-labs/sweeplab/dto"
	"github.com/zintix-labs/sweeplab/errs"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{errs.Of(errs.ErrNoSession, "id=x"), http.StatusNotFound},
		{errs.Wrap(errs.Of(errs.ErrSessionLimit, ""), "create"), http.StatusTooManyRequests},
		{errs.Of(errs.ErrWindow, "row=-1"), http.StatusBadRequest},
		{errs.NewFatal("boom"), http.StatusInternalServerError},
		{io.EOF, http.StatusInternalServerError},
		{errs.Wrap(context.DeadlineExceeded, "sim"), http.StatusGatewayTimeout},
		{context.Canceled, http.StatusRequestTimeout},
	}
	for _, c := range cases {
		if got := StatusCode(c.err); got != c.want {
			t.Fatalf("StatusCode(%v) = %d want %d", c.err, got, c.want)
		}
	}
}

func TestErrsWritesJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	Errs(rec, errs.Of(errs.ErrBadCell, "row=9 col=9"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}
	var body dto.ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not json: %v", err)
	}
	if body.Level != "warn" || !strings.Contains(body.Error, "row=9") {
		t.Fatalf("unexpected body %+v", body)
	}

	rec = httptest.NewRecorder()
	Errs(rec, nil)
	if rec.Body.Len() != 0 {
		t.Fatalf("nil error must not write")
	}
}

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	Log(log, "bad", errs.Of(errs.ErrBadCell, ""))
	if buf.Len() != 0 {
		t.Fatalf("plain 400 should not be logged: %s", buf.String())
	}
	Log(log, "full", errs.Of(errs.ErrSessionLimit, ""))
	Log(log, "broken", errs.NewFatal("boom"))
	out := buf.String()
	if !strings.Contains(out, "level=WARN msg=full") || !strings.Contains(out, "level=ERROR msg=broken") {
		t.Fatalf("unexpected log output:\n%s", out)
	}
}
