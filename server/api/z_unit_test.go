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

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zintix-labs/sweeplab"
	"github.com/zintix-labs/sweeplab/dto"
	"github.com/zintix-labs/sweeplab/server/netsvr"
	"github.com/zintix-labs/sweeplab/server/svrcfg"
	"github.com/zintix-labs/sweeplab/spec"
	"github.com/zintix-labs/sweeplab/stats"
)

func newTestServer(t *testing.T, maxSessions int) (http.Handler, *sweeplab.Runtime) {
	t.Helper()
	lab, err := sweeplab.New(nil, spec.FieldSetting{Width: 16, Height: 12, Density: 0.1, ChunkSize: 4})
	if err != nil {
		t.Fatalf("lab: %v", err)
	}
	rt, err := sweeplab.NewRuntime(lab, nil, maxSessions)
	if err != nil {
		t.Fatalf("runtime: %v", err)
	}
	cfg := &svrcfg.SvrCfg{Runtime: rt, Setting: spec.DefaultServerSetting(), MaxSimGames: 100}
	if err := cfg.Vaild(); err != nil {
		t.Fatalf("cfg: %v", err)
	}
	svr := netsvr.NewChiServer(":0", netsvr.Timeouts{})
	RegisterRoutes(svr, cfg)
	return svr.Handler(), rt
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createGame(t *testing.T, h http.Handler, body string) dto.GameView {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/v1/games", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	var v dto.GameView
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if rec.Header().Get("Location") != "/v1/games/"+v.ID {
		t.Fatalf("location header %q", rec.Header().Get("Location"))
	}
	return v
}

func TestHealthz(t *testing.T) {
	h, _ := newTestServer(t, 4)
	rec := do(t, h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Fatalf("healthz: %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("request id middleware not mounted")
	}
}

func TestCreateDefaultsAndOverrides(t *testing.T) {
	h, _ := newTestServer(t, 4)

	v := createGame(t, h, "")
	if v.Board.Width != 16 || v.Board.Height != 12 || v.Board.Bombs != 19 || v.ChunkSize != 4 {
		t.Fatalf("defaults not applied: %+v", v)
	}
	if v.Board.Status != "playing" || !v.FirstClick {
		t.Fatalf("fresh game should be playing and waiting for first click: %+v", v)
	}

	v = createGame(t, h, `{"width":10,"height":5,"bombs":7,"seed":42}`)
	if v.Board.Cells != 50 || v.Board.Bombs != 7 || v.Seed != 42 {
		t.Fatalf("overrides not applied: %+v", v.Board)
	}

	rec := do(t, h, http.MethodGet, "/v1/games?width=4&height=4&density=0.5", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("GET create: %d %s", rec.Code, rec.Body.String())
	}
}

func TestCreateRejects(t *testing.T) {
	h, _ := newTestServer(t, 4)
	for _, body := range []string{
		`{"width":0}`,
		`{"width":3,"height":3,"bombs":9}`,
		`{"density":1.5}`,
		`{"colour":"red"}`,
		`{not json`,
	} {
		rec := do(t, h, http.MethodPost, "/v1/games", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: want 400, got %d", body, rec.Code)
		}
		var eb dto.ErrorBody
		if err := json.Unmarshal(rec.Body.Bytes(), &eb); err != nil || eb.Level != "warn" {
			t.Fatalf("%s: bad error body %q", body, rec.Body.String())
		}
	}
}

func TestCreateOverBoardCap(t *testing.T) {
	h, rt := newTestServer(t, 4)
	// 4096*2048 = 1<<23，超過預設 max_board_cells
	rec := do(t, h, http.MethodPost, "/v1/games", `{"width":4096,"height":2048,"bombs":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d %s", rec.Code, rec.Body.String())
	}
	if rt.Len() != 0 {
		t.Fatalf("rejected create must not allocate a session")
	}
}

func TestSessionLimit(t *testing.T) {
	h, _ := newTestServer(t, 1)
	createGame(t, h, "")
	rec := do(t, h, http.MethodPost, "/v1/games", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("want 429, got %d", rec.Code)
	}
}

func TestChunkDefaultOnSmallBoard(t *testing.T) {
	h, _ := newTestServer(t, 4)
	// 預設 chunk 為 4，盤面只有 3 寬
	v := createGame(t, h, `{"width":3,"height":5,"bombs":1,"seed":2}`)
	if v.ChunkSize != 3 {
		t.Fatalf("chunk size should shrink to board, got %d", v.ChunkSize)
	}
	rec := do(t, h, http.MethodGet, "/v1/games/"+v.ID+"/chunk?row=0&col=0", "")
	if rec.Code != http.StatusOK || rec.Body.Len() != 9 {
		t.Fatalf("chunk: %d len=%d %s", rec.Code, rec.Body.Len(), rec.Body.String())
	}
	if rec.Header().Get("X-Chunk-Size") != "3" {
		t.Fatalf("chunk headers %v", rec.Header())
	}
}

func TestClickChunkAndView(t *testing.T) {
	h, _ := newTestServer(t, 4)
	v := createGame(t, h, `{"width":8,"height":8,"bombs":0}`)
	base := "/v1/games/" + v.ID

	rec := do(t, h, http.MethodPost, base+"/click", `{"row":3,"col":3,"button":0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("click: %d %s", rec.Code, rec.Body.String())
	}
	var cr dto.ClickResult
	if err := json.Unmarshal(rec.Body.Bytes(), &cr); err != nil {
		t.Fatalf("decode click: %v", err)
	}
	if cr.Game.Board.Status != "won" || cr.Game.Board.Opened != 64 || cr.Glyph != 0 {
		t.Fatalf("no-bomb board should be won in one click: %+v", cr)
	}

	rec = do(t, h, http.MethodGet, base+"/chunk?row=4&col=4", "")
	if rec.Code != http.StatusOK || rec.Body.Len() != 16 {
		t.Fatalf("chunk: %d len=%d", rec.Code, rec.Body.Len())
	}
	if rec.Header().Get("Content-Type") != "application/octet-stream" || rec.Header().Get("X-Chunk-Size") != "4" {
		t.Fatalf("chunk headers %v", rec.Header())
	}
	for _, b := range rec.Body.Bytes() {
		if b&0x20 == 0 {
			t.Fatalf("every cell should be open, got %#x", b)
		}
	}

	if rec := do(t, h, http.MethodGet, base+"/chunk?row=6&col=6&size=4", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("window past the edge: want 400, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, base+"/chunk?col=0", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing row: want 400, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, base+"/click", `{"row":8,"col":0,"button":0}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("click out of range: want 400, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, base, "")
	var got dto.GameView
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil || got.ID != v.ID || got.FirstClick {
		t.Fatalf("view: %v %+v", err, got)
	}
}

func TestFlagViaClick(t *testing.T) {
	h, _ := newTestServer(t, 4)
	v := createGame(t, h, `{"width":8,"height":8,"bombs":5,"seed":1}`)
	rec := do(t, h, http.MethodPost, "/v1/games/"+v.ID+"/click", `{"row":0,"col":0,"button":2}`)
	var cr dto.ClickResult
	if err := json.Unmarshal(rec.Body.Bytes(), &cr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cr.Glyph != 10 || cr.Game.Board.Flagged != 1 || cr.Game.Board.Remaining != 4 {
		t.Fatalf("flag click: %+v", cr)
	}
}

func TestDeleteAndNotFound(t *testing.T) {
	h, rt := newTestServer(t, 4)
	v := createGame(t, h, "")
	if rec := do(t, h, http.MethodDelete, "/v1/games/"+v.ID, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
	if rt.Len() != 0 {
		t.Fatalf("session still stored")
	}
	for _, path := range []string{"/v1/games/" + v.ID, "/v1/games/" + v.ID + "/chunk?row=0&col=0"} {
		rec := do(t, h, http.MethodGet, path, "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: want 404, got %d", path, rec.Code)
		}
	}
	if rec := do(t, h, http.MethodDelete, "/v1/games/nope", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("delete unknown: want 404, got %d", rec.Code)
	}
}

func TestAuditFormats(t *testing.T) {
	h, _ := newTestServer(t, 4)
	v := createGame(t, h, `{"width":20,"height":20,"bombs":40}`)
	base := "/v1/games/" + v.ID + "/audit"

	rec := do(t, h, http.MethodGet, base+"?bands=4", "")
	var a stats.LayoutAudit
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil || a.Bands != 4 || a.DF != 3 {
		t.Fatalf("json audit: %v %+v", err, a)
	}
	total := 0
	for _, n := range a.Observed {
		total += n
	}
	if total != 40 {
		t.Fatalf("observed bombs %d", total)
	}

	rec = do(t, h, http.MethodGet, base+"?format=text", "")
	if !strings.Contains(rec.Body.String(), "Layout Audit") {
		t.Fatalf("text audit:\n%s", rec.Body.String())
	}
	if rec := do(t, h, http.MethodGet, base+"?format=xml", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown format: want 400, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, base+"?bands=0", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bands=0: want 400, got %d", rec.Code)
	}
}

func TestDump(t *testing.T) {
	h, _ := newTestServer(t, 4)
	v := createGame(t, h, `{"width":5,"height":3,"bombs":2}`)
	rec := do(t, h, http.MethodGet, "/v1/games/"+v.ID+"/dump", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("dump: %d", rec.Code)
	}
	want := strings.Repeat("-----\n", 3)
	if rec.Body.String() != want {
		t.Fatalf("fresh board dump:\n%q", rec.Body.String())
	}
}

func TestSim(t *testing.T) {
	h, _ := newTestServer(t, 4)
	rec := do(t, h, http.MethodPost, "/v1/sim", `{"width":8,"height":8,"bombs":6,"seed":3,"games":20,"workers":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("sim: %d %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Seed  int64           `json:"seed"`
		Stats stats.SimReport `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode sim: %v", err)
	}
	if out.Seed != 3 || out.Stats.Games != 20 || out.Stats.Wins+out.Stats.Losses != 20 {
		t.Fatalf("unexpected sim %+v", out)
	}

	again := do(t, h, http.MethodPost, "/v1/sim", `{"width":8,"height":8,"bombs":6,"seed":3,"games":20,"workers":1}`)
	if !bytes.Contains(again.Body.Bytes(), []byte(`"wins":`+itoa(out.Stats.Wins))) {
		t.Fatalf("same seed should give same wins")
	}

	if rec := do(t, h, http.MethodPost, "/v1/sim", `{"games":1000}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("games over cap: want 400, got %d", rec.Code)
	}
}

func TestSimOverCellCap(t *testing.T) {
	h, _ := newTestServer(t, 4)
	// 16384*16384 剛好是單盤上限，但遠超過 max_sim_cells，必須在配置前擋下
	rec := do(t, h, http.MethodPost, "/v1/sim", `{"width":16384,"height":16384,"bombs":1,"games":8}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d %s", rec.Code, rec.Body.String())
	}
	var eb dto.ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &eb); err != nil || eb.Level != "warn" {
		t.Fatalf("bad error body %q", rec.Body.String())
	}
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
