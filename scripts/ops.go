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

// 開發用任務腳本：go run ./scripts [task]
package main

import (
	"fmt"
	"os"
	"sort"
)

type task struct {
	desc string
	run  func() error
}

var tasks = map[string]task{
	"test":        {"go test ./... (只顯示 ok/FAIL)", runTest},
	"test-race":   {"go test -race ./...（field/sched/runtime 有並行）", runTestRace},
	"test-detail": {"go test -v ./...，略過 [no test files]", runTestDetail},
	"sim":         {"小盤面模擬冒煙測試", runSimSmoke},
	"pgo":         {"以模擬器產生 cpu profile 並放到 cmd/svr/default.pgo", runPGO},
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	t, ok := tasks[os.Args[1]]
	if !ok {
		PrintYellow(fmt.Sprintf("Unknown task: %s", os.Args[1]))
		usage()
		os.Exit(1)
	}
	if err := t.run(); err != nil {
		PrintRed(err.Error())
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage: go run ./scripts [task]")
	names := make([]string, 0, len(tasks))
	for n := range tasks {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Printf("  %-12s %s\n", n, tasks[n].desc)
	}
}

// ANSI 顏色代碼 (Windows 10+ 的 cmd/powershell 皆支援)
type ansiColor string

const (
	colorYellow ansiColor = "\033[33m"
	colorGreen  ansiColor = "\033[32m"
	colorRed    ansiColor = "\033[31m"
	colorReset            = "\033[0m"
)

func fmtColor(color ansiColor, msg string) {
	fmt.Printf("%s%s%s\n", color, msg, colorReset)
}

func PrintYellow(msg string) { fmtColor(colorYellow, msg) }
func PrintGreen(msg string)  { fmtColor(colorGreen, msg) }
func PrintRed(msg string)    { fmtColor(colorRed, msg) }
