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

// Package v1 是 /v1 底下的 HTTP handler。handler 只做解碼、呼叫 Session、編碼回應。
package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/zintix-labs/sweeplab"
	"github.com/zintix-labs/sweeplab/dto"
	"github.com/zintix-labs/sweeplab/errs"
	"github.com/zintix-labs/sweeplab/field"
	"github.com/zintix-labs/sweeplab/server/httperr"
	"github.com/zintix-labs/sweeplab/server/netsvr"
	"github.com/zintix-labs/sweeplab/spec"
	"github.com/zintix-labs/sweeplab/stats"
)

const (
	defaultAuditBands = 8
	// dump 是純文字，每格一字元
	maxDumpCells = 1 << 20
)

type GameHandler struct {
	rt       *sweeplab.Runtime
	log      *slog.Logger
	maxCells int // 單局格數上限
}

func NewGameHandler(rt *sweeplab.Runtime, log *slog.Logger, maxCells int) *GameHandler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if maxCells < 1 {
		maxCells = spec.DefaultMaxBoardCells
	}
	return &GameHandler{rt: rt, log: log, maxCells: maxCells}
}

// Create 開新局：GET 讀 query、POST 讀 JSON，皆可省略欄位
func (gh *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeCreateRequest(r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	fs := fieldSetting(gh.rt.Lab().Setting(), req)
	if err := fs.CheckCells(gh.maxCells); err != nil {
		httperr.Errs(w, err)
		return
	}
	s, err := gh.rt.Create(r.Context(), &fs)
	if err != nil {
		httperr.Log(gh.log, "create game", err)
		httperr.Errs(w, err)
		return
	}
	w.Header().Set("Location", "/v1/games/"+s.ID)
	writeJSON(w, http.StatusCreated, s.View())
}

func (gh *GameHandler) View(w http.ResponseWriter, r *http.Request) {
	s, ok := gh.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

func (gh *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := gh.rt.Delete(netsvr.Param(r, "id")); err != nil {
		httperr.Errs(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (gh *GameHandler) Click(w http.ResponseWriter, r *http.Request) {
	s, ok := gh.session(w, r)
	if !ok {
		return
	}
	req, err := dto.DecodeClickRequest(r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	res, err := s.Click(req.Row, req.Col, req.Button)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Chunk 回傳 size*size 位元組（列優先），每格一個 tile.State。
func (gh *GameHandler) Chunk(w http.ResponseWriter, r *http.Request) {
	s, ok := gh.session(w, r)
	if !ok {
		return
	}
	req, err := dto.DecodeChunkRequest(r, s.ChunkSize())
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	buf, err := s.Chunk(req.Row, req.Col, req.Size)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	h := w.Header()
	h.Set("Content-Type", "application/octet-stream")
	h.Set("X-Chunk-Row", strconv.Itoa(req.Row))
	h.Set("X-Chunk-Col", strconv.Itoa(req.Col))
	h.Set("X-Chunk-Size", strconv.Itoa(req.Size))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf)
}

// Audit 佈雷列帶卡方檢定，format 可為 json（預設）/ yaml / text
func (gh *GameHandler) Audit(w http.ResponseWriter, r *http.Request) {
	s, ok := gh.session(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	bands := defaultAuditBands
	if v := q.Get("bands"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			httperr.Errs(w, errs.NewWarn("bands must be a positive integer"))
			return
		}
		bands = n
	}
	format := q.Get("format")
	if format == "" {
		format = "json"
	}
	rd, err := stats.RenderByName(format)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	var out bytes.Buffer
	if err := rd.Write(&out, s.Audit(bands)); err != nil {
		httperr.Errs(w, errs.Wrap(err, "render audit"))
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	_, _ = w.Write(out.Bytes())
}

// Dump 以文字輸出整個盤面（除錯用），大盤面拒絕
func (gh *GameHandler) Dump(w http.ResponseWriter, r *http.Request) {
	s, ok := gh.session(w, r)
	if !ok {
		return
	}
	var out bytes.Buffer
	var err error
	s.Do(func(f *field.Field) {
		if f.Len() > maxDumpCells {
			err = errs.NewWarn(fmt.Sprintf("board too large to dump: cells=%d max=%d", f.Len(), maxDumpCells))
			return
		}
		err = f.Dump(&out)
	})
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(out.Bytes())
}

func (gh *GameHandler) session(w http.ResponseWriter, r *http.Request) (*sweeplab.Session, bool) {
	s, err := gh.rt.Get(netsvr.Param(r, "id"))
	if err != nil {
		httperr.Errs(w, err)
		return nil, false
	}
	return s, true
}

// fieldSetting 以服務預設為底，套上請求欄位。
// 請求只給 density 時清掉預設的固定雷數，讓 density 生效。
func fieldSetting(base spec.FieldSetting, req *dto.CreateRequest) spec.FieldSetting {
	fs := base
	fs.Seed = req.Seed
	if req.Width != nil {
		fs.Width = *req.Width
	}
	if req.Height != nil {
		fs.Height = *req.Height
	}
	if req.Density != nil {
		fs.Density = *req.Density
		fs.Bombs = nil
	}
	if req.Bombs != nil {
		fs.Bombs = req.Bombs
	}
	return fs
}

func contentType(format string) string {
	switch format {
	case "yaml", "yml":
		return "application/yaml; charset=utf-8"
	case "text":
		return "text/plain; charset=utf-8"
	default:
		return "application/json; charset=utf-8"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
