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

// Package perf 包裝 runtime/pprof，給模擬器 CLI 做效能分析（也可當 PGO 的 profile 來源）。
package perf

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/sweeplab/errs"
)

// DefaultDir pprof 檔案寫入路徑
const DefaultDir = "build/profiling"

// Run 依 mode 包住 exe 做 profiling：
//   - ""     只執行 exe
//   - cpu    exe 期間的 CPU profile（cpu.pprof）
//   - heap   exe 結束後 GC 再拍 in-use 快照（heap.pprof）
//   - allocs exe 結束後寫出累積配置（allocs.pprof）
//
// 回傳寫出的檔案路徑（mode 為空時為空字串）。
func Run(dir string, mode string, exe func()) (string, error) {
	switch mode {
	case "":
		exe()
		return "", nil
	case "cpu", "heap", "allocs":
	default:
		return "", errs.Of(errs.ErrBadSetting, fmt.Sprintf("pprof mode=%q", mode))
	}
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errs.Wrap(err, "create pprof dir")
	}
	path := filepath.Join(dir, mode+".pprof")
	f, err := os.Create(path)
	if err != nil {
		return "", errs.Wrap(err, "create "+path)
	}
	defer f.Close()

	switch mode {
	case "cpu":
		if err := pprof.StartCPUProfile(f); err != nil {
			return "", errs.Wrap(err, "start cpu profile")
		}
		exe()
		pprof.StopCPUProfile()
	case "heap":
		exe()
		// 讓快照貼近 live objects
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return "", errs.Wrap(err, "write heap profile")
		}
	case "allocs":
		exe()
		if err := pprof.Lookup("allocs").WriteTo(f, 0); err != nil {
			return "", errs.Wrap(err, "write allocs profile")
		}
	}
	return path, nil
}
