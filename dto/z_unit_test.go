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

package dto

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDecodeCreateGET(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/v1/games?width=30&height=20&density=0.2&seed=-5", nil)
	req, err := DecodeCreateRequest(r)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if *req.Width != 30 || *req.Height != 20 || *req.Density != 0.2 || *req.Seed != -5 || req.Bombs != nil {
		t.Fatalf("unexpected request %+v", req)
	}
	if _, err := DecodeCreateRequest(httptest.NewRequest(http.MethodGet, "/v1/games?width=x", nil)); err == nil {
		t.Fatalf("expected error for bad width")
	}
}

func TestDecodeCreatePOST(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/v1/games", strings.NewReader(`{"width":9,"height":9,"bombs":10}`))
	req, err := DecodeCreateRequest(r)
	if err != nil || *req.Bombs != 10 || req.Density != nil {
		t.Fatalf("unexpected %+v %v", req, err)
	}
	empty, err := DecodeCreateRequest(httptest.NewRequest(http.MethodPost, "/v1/games", strings.NewReader("")))
	if err != nil || empty.Width != nil {
		t.Fatalf("empty body should mean defaults: %v", err)
	}
	if _, err := DecodeCreateRequest(httptest.NewRequest(http.MethodPost, "/v1/games", strings.NewReader(`{"mines":3}`))); err == nil {
		t.Fatalf("unknown field should fail")
	}
	if _, err := DecodeCreateRequest(httptest.NewRequest(http.MethodPut, "/v1/games", nil)); err == nil {
		t.Fatalf("PUT should be rejected")
	}
}

func TestDecodeClick(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"row":3,"col":4,"button":2}`))
	req, err := DecodeClickRequest(r)
	if err != nil || req.Row != 3 || req.Col != 4 || req.Button != 2 {
		t.Fatalf("unexpected %+v %v", req, err)
	}
	if _, err := DecodeClickRequest(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))); err == nil {
		t.Fatalf("click needs a body")
	}
}

func TestDecodeChunk(t *testing.T) {
	req, err := DecodeChunkRequest(httptest.NewRequest(http.MethodGet, "/?row=1&col=2", nil), 32)
	if err != nil || req.Row != 1 || req.Col != 2 || req.Size != 32 {
		t.Fatalf("unexpected %+v %v", req, err)
	}
	if _, err := DecodeChunkRequest(httptest.NewRequest(http.MethodGet, "/?row=1", nil), 32); err == nil {
		t.Fatalf("missing col should fail")
	}
}
