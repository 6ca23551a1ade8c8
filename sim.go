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

package sweeplab

import (
	"io"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/sweeplab/errs"
	"github.com/zintix-labs/sweeplab/field"
	"github.com/zintix-labs/sweeplab/sdk/core"
	"github.com/zintix-labs/sweeplab/spec"
	"github.com/zintix-labs/sweeplab/stats"
)

// bot 亂數流與佈雷亂數流分開
const botSalt = 0x5DEECE66D

// Simulator 以隨機點擊的 bot 大量對局。
//
// bot 每局把所有格子洗牌後依序翻開（跳過已翻開的），直到輸或贏。
// 每局的種子在派工前依序產生，因此結果與 worker 數無關。
type Simulator struct {
	lab      *Lab
	setting  spec.FieldSetting
	initSeed int64
}

// NewSimulator 建立模擬器。fs 為 nil 時使用 Lab 預設設定。
func NewSimulator(lab *Lab, fs *spec.FieldSetting, seed int64) (*Simulator, error) {
	if lab == nil {
		return nil, errs.NewFatal("lab is required")
	}
	s := lab.Setting()
	if fs != nil {
		s = *fs
		if err := s.Init(); err != nil {
			return nil, err
		}
	}
	return &Simulator{lab: lab, setting: s, initSeed: seed}, nil
}

// Setting 回傳模擬使用的盤面設定
func (s *Simulator) Setting() spec.FieldSetting { return s.setting }

// Run 以 workers 個 goroutine 跑 games 局，回傳統計與用時。
func (s *Simulator) Run(games int, workers int, showpb bool) (*stats.SimReport, time.Duration, error) {
	if games < 1 {
		return nil, 0, errs.NewWarn("games must > 0")
	}
	if workers < 1 {
		return nil, 0, errs.NewWarn("workers must > 0")
	}
	workers = min(workers, games)

	seeds := make([]int64, games)
	sm := newSeedMaker(s.initSeed)
	for i := range seeds {
		seeds[i] = sm.next()
	}
	results := make([]stats.GameResult, games)

	// 作一個緩衝 channel 讓 worker 依序領局
	jobs := make(chan int, min(games, 2048))
	errCh := make(chan error, workers)

	bar := pb.StartNew(games)
	if !showpb {
		bar.SetWriter(io.Discard)
	}

	wg := new(sync.WaitGroup)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			var order []int
			for i := range jobs {
				r, buf, err := s.play(seeds[i], order)
				order = buf
				if err != nil {
					errCh <- err
					// 排空剩下的工作，讓派工端不會卡住
					for range jobs {
					}
					return
				}
				results[i] = r
				bar.Increment()
			}
		}()
	}

	for i := range seeds {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	select {
	case err := <-errCh:
		return nil, used, err
	default:
	}

	set := stats.SimSetting{
		Width:   s.setting.Width,
		Height:  s.setting.Height,
		Bombs:   s.setting.BombCount(),
		Seed:    s.initSeed,
		Workers: workers,
	}
	return stats.NewSimReport(set, results), used, nil
}

// Play 以指定種子跑一局
func (s *Simulator) Play(seed int64) (stats.GameResult, error) {
	r, _, err := s.play(seed, nil)
	return r, err
}

func (s *Simulator) play(seed int64, order []int) (stats.GameResult, []int, error) {
	f, err := s.lab.NewFieldWithSeed(s.setting, seed)
	if err != nil {
		return stats.GameResult{}, order, err
	}
	bot := core.New(s.lab.pf.New(int64(mix63(uint64(seed) ^ botSalt))))

	n := f.Len()
	if cap(order) < n {
		order = make([]int, n)
	}
	order = order[:n]
	for i := range order {
		order[i] = i
	}
	bot.ShuffleInts(order)

	res := stats.GameResult{Safe: n - f.BombsCount()}
	for _, idx := range order {
		if f.Status() != field.Playing {
			break
		}
		if f.Opened(idx) {
			continue
		}
		first := f.FirstClick()
		f.OpenIndex(idx)
		res.Clicks++
		if first {
			res.FirstOpen = f.OpenCount()
		}
	}
	st := f.Status()
	res.Won = st == field.Won
	res.Lost = st == field.Lost
	res.Opened = f.OpenCount()
	return res, order, nil
}
