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
	"log"
	"os"
	"runtime"
	"time"

	"github.com/zintix-labs/sweeplab"
	"github.com/zintix-labs/sweeplab/sdk/core"
	"github.com/zintix-labs/sweeplab/sdk/perf"
	"github.com/zintix-labs/sweeplab/spec"
	"github.com/zintix-labs/sweeplab/stats"
)

// 以隨機點擊 bot 大量對局，輸出勝率與展開比例分布。
//
//	go run ./cmd/sim -width 30 -height 16 -bombs 99 -games 100000 -format text
func main() {
	cfg := bindVar()
	if err := execute(cfg); err != nil {
		log.Fatal(err)
	}
}

func execute(cfg *config) error {
	fs, err := cfg.fieldSetting()
	if err != nil {
		return err
	}
	rd, err := stats.RenderByName(cfg.format)
	if err != nil {
		return err
	}
	lab, err := sweeplab.New(core.Default(), fs)
	if err != nil {
		return err
	}
	sim, err := sweeplab.NewSimulator(lab, nil, cfg.seed)
	if err != nil {
		return err
	}

	var (
		rep    *stats.SimReport
		simErr error
	)
	path, err := perf.Run("", cfg.pprof, func() {
		var used time.Duration
		rep, used, simErr = sim.Run(cfg.games, cfg.workers, cfg.pb)
		if simErr == nil {
			fmt.Fprintln(os.Stderr, stats.FormatElapsed(used, cfg.games))
		}
	})
	if err != nil {
		return err
	}
	if simErr != nil {
		return simErr
	}
	if path != "" {
		fmt.Fprintln(os.Stderr, "profile:", path)
	}
	return rd.Write(os.Stdout, rep)
}

type config struct {
	width   int
	height  int
	density float64
	bombs   int
	games   int
	workers int
	seed    int64
	format  string
	pprof   string
	pb      bool
}

func bindVar() *config {
	cfg := new(config)
	flag.IntVar(&cfg.width, "width", spec.DefaultWidth, "board width")
	flag.IntVar(&cfg.height, "height", spec.DefaultHeight, "board height")
	flag.Float64Var(&cfg.density, "density", spec.DefaultDensity, "bomb density in [0,1), ignored when -bombs >= 0")
	flag.IntVar(&cfg.bombs, "bombs", -1, "explicit bomb count")
	flag.IntVar(&cfg.games, "games", 10000, "number of games")
	flag.IntVar(&cfg.workers, "workers", runtime.NumCPU(), "number of workers")
	flag.Int64Var(&cfg.seed, "seed", -1, "int64 seed, negative for a random one")
	flag.StringVar(&cfg.format, "format", "text", "output: text|json|yaml")
	flag.StringVar(&cfg.pprof, "p", "", "pprof: '', cpu, heap, allocs")
	flag.BoolVar(&cfg.pb, "pb", true, "show progress bar")
	flag.Parse()

	if cfg.seed < 0 {
		cfg.seed = core.NewSeed()
	}
	return cfg
}

func (cfg *config) fieldSetting() (spec.FieldSetting, error) {
	fs := spec.FieldSetting{
		Width:   cfg.width,
		Height:  cfg.height,
		Density: cfg.density,
	}
	if cfg.bombs >= 0 {
		b := cfg.bombs
		fs.Bombs = &b
	}
	if err := fs.Init(); err != nil {
		return fs, err
	}
	return fs, nil
}
