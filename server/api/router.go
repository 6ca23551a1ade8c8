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

// Package api 組裝 sweeplab 的 HTTP 路由。
package api

import (
	"log/slog"
	"net/http"

	v1 "github.com/zintix-labs/sweeplab/server/api/v1"
	"github.com/zintix-labs/sweeplab/server/netsvr"
	"github.com/zintix-labs/sweeplab/server/netsvr/middleware"
	"github.com/zintix-labs/sweeplab/server/svrcfg"
)

// RegisterRoutes 註冊
func RegisterRoutes(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) {
	registerMiddleware(svr, sCfg.Log) // 1. 註冊 middleware
	registerHealth(svr)               // 2. 健康檢查
	registerV1API(svr, sCfg)          // 3. 註冊 v1 api
}

// 註冊 middleware
func registerMiddleware(svr netsvr.NetSvr, log *slog.Logger) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(middleware.Recover(log))
	svr.Use(middleware.Compression)
}

func registerHealth(svr netsvr.NetSvr) {
	svr.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
}

// 註冊 v1 api
func registerV1API(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) {
	g := v1.NewGameHandler(sCfg.Runtime, sCfg.Log, sCfg.Setting.MaxBoardCells)
	s := v1.NewSimHandler(sCfg.Runtime.Lab(), sCfg.MaxSimGames, sCfg.Setting.MaxSimCells)

	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Get("/games", g.Create)
		vOne.Post("/games", g.Create)
		vOne.Get("/games/{id}", g.View)
		vOne.Delete("/games/{id}", g.Delete)
		vOne.Post("/games/{id}/click", g.Click)
		vOne.Get("/games/{id}/chunk", g.Chunk)
		vOne.Get("/games/{id}/audit", g.Audit)
		vOne.Get("/games/{id}/dump", g.Dump)

		vOne.Post("/sim", s.Sim)
	})
}
