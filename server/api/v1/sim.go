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

package v1

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime"

	"github.com/zintix-labs/sweeplab"
	"github.com/zintix-labs/sweeplab/dto"
	"github.com/zintix-labs/sweeplab/errs"
	"github.com/zintix-labs/sweeplab/sdk/core"
	"github.com/zintix-labs/sweeplab/server/httperr"
	"github.com/zintix-labs/sweeplab/spec"
	"github.com/zintix-labs/sweeplab/stats"
)

type SimHandler struct {
	lab      *sweeplab.Lab
	maxGames int
	maxCells int // 每個 worker 都持有一份盤面與 n 格洗牌序，上限要比建盤更緊
}

func NewSimHandler(lab *sweeplab.Lab, maxGames, maxCells int) *SimHandler {
	if maxCells < 1 {
		maxCells = spec.DefaultMaxSimCells
	}
	return &SimHandler{lab: lab, maxGames: max(1, maxGames), maxCells: maxCells}
}

// Sim 以隨機點擊 bot 跑 games 局並回傳統計。
func (sh *SimHandler) Sim(w http.ResponseWriter, r *http.Request) {
	// 內部結構 不影響外部 也不被外部使用
	type simRequest struct {
		dto.CreateRequest
		Games   int `json:"games"`
		Workers int `json:"workers"`
	}
	type simResponse struct {
		Seed     int64            `json:"seed"`
		Stats    *stats.SimReport `json:"stats"`
		UsedTime int64            `json:"used_ms"`
	}

	req := new(simRequest)
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		httperr.Errs(w, errs.WrapWarn(err, "invalid json"))
		return
	}
	if req.Games < 1 || req.Games > sh.maxGames {
		httperr.Errs(w, errs.NewWarn(fmt.Sprintf("games must be between 1 to %d", sh.maxGames)))
		return
	}
	workers := req.Workers
	if workers < 1 || workers > runtime.NumCPU() {
		workers = runtime.NumCPU()
	}

	fs := fieldSetting(sh.lab.Setting(), &req.CreateRequest)
	if err := fs.CheckCells(sh.maxCells); err != nil {
		httperr.Errs(w, err)
		return
	}
	seed := core.NewSeed()
	if req.Seed != nil {
		seed = *req.Seed
	}
	fs.Seed = nil
	sim, err := sweeplab.NewSimulator(sh.lab, &fs, seed)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	rep, used, err := sim.Run(req.Games, workers, false)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, http.StatusOK, simResponse{Seed: seed, Stats: rep, UsedTime: used.Milliseconds()})
}
