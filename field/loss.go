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

package field

import (
	"time"

	"github.com/zintix-labs/sweeplab/sdk/sched"
	"github.com/zintix-labs/sweeplab/sdk/tile"
)

// LossWindow 為輸局時優先揭示的上下列數
const LossWindow = 64

// 三段揭示的延遲；只有先後有意義
const (
	delayNear  = 1 * time.Millisecond
	delayAbove = 10 * time.Millisecond
	delayBelow = 20 * time.Millisecond
)

// explode 處理非首擊踩雷：踩到的格子立即顯示爆炸，其餘的雷分三段排程揭示。
//
//   - A：[row-LossWindow, row+LossWindow)，夾在盤面內
//   - B：A 以上的所有列
//   - C：A 以下的所有列
//
// 三段互不重疊，依序執行。揭示途中盤面只是部分揭示，讀取端要能接受。
func (f *Field) explode(idx int) {
	f.exploded = idx
	f.data[idx] = byte(tile.State(f.data[idx]).WithNumber(tile.Exploded))

	row, _ := f.Unflatten(idx)
	start := max(row-LossWindow, 0)
	end := min(row+LossWindow, f.height)

	f.sched.Submit(sched.Task{Name: "reveal.near", Priority: 0, Delay: delayNear, Run: func() { f.revealRows(start, end) }})
	f.sched.Submit(sched.Task{Name: "reveal.above", Priority: 1, Delay: delayAbove, Run: func() { f.revealRows(0, start) }})
	f.sched.Submit(sched.Task{Name: "reveal.below", Priority: 2, Delay: delayBelow, Run: func() { f.revealRows(end, f.height) }})
}

// revealRows 翻開 [startRow, endRow) 的每一格；沒插旗的雷（踩爆的除外）改顯示為雷。
// 插了旗的雷保持旗子，讓玩家看出哪些旗插對了。
func (f *Field) revealRows(startRow int, endRow int) {
	for r := startRow; r < endRow; r++ {
		base := r * f.width
		row := f.data[base : base+f.width]
		for c, s := range row {
			s |= tile.OpenBit
			if s&tile.BombBit != 0 && s&tile.FlagBit == 0 && base+c != f.exploded {
				s = s&^tile.NumberMask | tile.Bomb
			}
			row[c] = s
		}
	}
}
