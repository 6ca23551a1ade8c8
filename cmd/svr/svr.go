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

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/zintix-labs/sweeplab"
	"github.com/zintix-labs/sweeplab/server"
	"github.com/zintix-labs/sweeplab/server/logger"
	"github.com/zintix-labs/sweeplab/server/svrcfg"
	"github.com/zintix-labs/sweeplab/spec"
)

// sweeplab 的 HTTP 服務入口。設定檔可省略，flag 會覆蓋設定檔的同名欄位。
//
//	go run ./cmd/svr -config configs/server.yaml -addr :8080 -log-mode prod
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		cfgPath = flag.String("config", "", "server yaml config")
		addr    = flag.String("addr", "", "listen address, overrides config")
		logMode = flag.String("log-mode", "", "log mode: dev|prod|silence, overrides config")
		sims    = flag.Int("max-sim-games", svrcfg.DefaultMaxSimGames, "games cap per /v1/sim request")
	)
	flag.Parse()

	setting, err := loadSetting(*cfgPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		setting.Addr = *addr
	}
	if *logMode != "" {
		setting.LogMode = *logMode
	}
	if err := setting.Init(); err != nil {
		return err
	}

	mode, err := logger.ParseMode(setting.LogMode)
	if err != nil {
		return err
	}
	log, ah := logger.NewAsync(4096, mode)
	defer ah.Close()

	lab, err := sweeplab.New(nil, setting.Field)
	if err != nil {
		return err
	}
	rt, err := sweeplab.NewRuntime(lab, log, setting.MaxSessions)
	if err != nil {
		return err
	}
	rt.WithSessionTTL(setting.SessionTTL)
	return server.Run(&svrcfg.SvrCfg{
		Log:         log,
		Runtime:     rt,
		Setting:     setting,
		MaxSimGames: *sims,
	})
}

func loadSetting(path string) (spec.ServerSetting, error) {
	if path == "" {
		return spec.DefaultServerSetting(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return spec.ServerSetting{}, err
	}
	s, err := spec.GetServerSettingByYAML(data)
	if err != nil {
		return spec.ServerSetting{}, err
	}
	return *s, nil
}
