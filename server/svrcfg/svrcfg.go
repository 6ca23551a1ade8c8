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

package svrcfg

import (
	"log/slog"

	"github.com/zintix-labs/sweeplab"
	"github.com/zintix-labs/sweeplab/errs"
	"github.com/zintix-labs/sweeplab/server/logger"
	"github.com/zintix-labs/sweeplab/spec"
)

// 單次 /v1/sim 請求的局數上限
const (
	DefaultMaxSimGames = 2000
	maxSimGamesCap     = 100000
)

type SvrCfg struct {
	Log         *slog.Logger
	Runtime     *sweeplab.Runtime
	Setting     spec.ServerSetting
	MaxSimGames int
}

// Vaild 補預設值並檢查必要依賴
func (sc *SvrCfg) Vaild() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		sc.Log = logger.New(logger.ModeSilence)
	}
	if sc.Runtime == nil {
		return errs.NewFatal("runtime is required")
	}
	if err := sc.Setting.Init(); err != nil {
		return err
	}

	if sc.MaxSimGames < 1 {
		sc.MaxSimGames = DefaultMaxSimGames
	}
	sc.MaxSimGames = min(maxSimGamesCap, sc.MaxSimGames)
	return nil
}
