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

package server

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/zintix-labs/sweeplab/errs"
	"github.com/zintix-labs/sweeplab/server/api"
	"github.com/zintix-labs/sweeplab/server/app"
	"github.com/zintix-labs/sweeplab/server/netsvr"
	"github.com/zintix-labs/sweeplab/server/svrcfg"
)

// Run 是 server 套件的組裝器與啟動入口。
//
//  1. 驗證 SvrCfg（logger、Runtime、ServerSetting）。
//  2. 依 ServerSetting 建立 HTTP server。
//  3. 註冊路由與 middleware。
//  4. 把 Runtime 的排程迴圈與 HTTP server 交給 app 管理生命週期。
//
// 關閉順序與註冊順序相反：先停 HTTP server，再把尚未跑完的輸局揭示任務跑完。
func Run(sCfg *svrcfg.SvrCfg) error {
	if err := sCfg.Vaild(); err != nil {
		// logger 可能不可用
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	svr := netsvr.NewChiServer(sCfg.Setting.Addr, netsvr.Timeouts{
		Read:  sCfg.Setting.ReadTimeout,
		Write: sCfg.Setting.WriteTimeout,
	})
	return run(sCfg, svr)
}

// RunWithSvr 與 Run 相同，但允許注入自訂的 NetSvr（例如掛在既有服務的 router 底下）。
func RunWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	if err := sCfg.Vaild(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if svr == nil {
		err := errs.NewFatal("svr is required")
		sCfg.Log.Error(err.Error())
		return err
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		err := errs.NewFatal("default server is not ready")
		sCfg.Log.Error(err.Error())
		return err
	}
	return run(sCfg, svr)
}

func run(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	api.RegisterRoutes(svr, sCfg)

	a := app.NewWith(sCfg.Runtime.Loop(), svr).WithLogger(sCfg.Log)
	if ad, ok := svr.(interface{ Address() string }); ok {
		sCfg.Log.Info("[sweeplab] listening on http://localhost" + ad.Address())
	}
	err := a.Run()
	sCfg.Runtime.Close()
	if err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
	}
	return err
}
