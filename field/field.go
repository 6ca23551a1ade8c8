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

// Package field 是踩地雷盤面的狀態機。
//
// 盤面以一段 row-major 的 []byte 儲存，每格一個 tile.State，
// 千萬格的盤面也只佔千萬位元組。Field 是盤面狀態的唯一真實來源。
//
// 並行模型：Field 沒有鎖，所有操作都假設在同一個邏輯執行緒上完成。
// 唯一的非同步行為是輸局後的分段揭示（見 loss.go），它經由 sched.Scheduler 排程；
// 渲染端在揭示途中讀到半揭示的盤面是可接受的。
//
// 合約違反（座標越界、窗口越界）一律 panic；只有 New 的參數驗證回傳錯誤。
package field

import (
	"fmt"
	"math"

	"github.com/zintix-labs/sweeplab/errs"
	"github.com/zintix-labs/sweeplab/sdk/core"
	"github.com/zintix-labs/sweeplab/sdk/sched"
	"github.com/zintix-labs/sweeplab/sdk/tile"
)

// Status 為整局狀態
type Status uint8

const (
	Playing Status = iota
	Won
	Lost
)

func (s Status) String() string {
	switch s {
	case Playing:
		return "playing"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "unknown"
	}
}

// Field 持有整個盤面。
type Field struct {
	width  int
	height int
	cells  int

	bombs   int
	opened  int
	flagged int

	firstClick bool
	rescue     int // 首擊踩雷時，雷要搬去的格子
	exploded   int // 踩爆的格子，未輸局為 -1

	data []byte

	rng   *core.Core
	sched sched.Scheduler

	// 重用的 BFS 佇列與鄰居緩衝
	queue []int
	nbuf  [8]int
}

// Option 調整 New 的行為
type Option func(*Field)

// WithRand 指定佈雷用的亂數來源；未指定時以 crypto seed 建立 PCG64。
func WithRand(r core.RAND) Option {
	return func(f *Field) {
		if r != nil {
			f.rng = core.New(r)
		}
	}
}

// WithScheduler 指定輸局揭示任務的排程器；未指定時使用內建的 sched.Queue，
// 任務要靠 Flush 才會執行。
func WithScheduler(s sched.Scheduler) Option {
	return func(f *Field) {
		if s != nil {
			f.sched = s
		}
	}
}

// New 建立 width x height、含 bombs 顆雷的盤面，並立即佈雷。
//
//   - width, height 必須 >= 1，且 width*height 不得溢位
//   - bombs 必須在 [0, width*height-1]：至少要留一格給首擊救援
func New(width int, height int, bombs int, opts ...Option) (*Field, error) {
	if width < 1 || height < 1 || height > math.MaxInt/width {
		return nil, errs.Of(errs.ErrBadDimension, fmt.Sprintf("width=%d height=%d", width, height))
	}
	cells := width * height
	if bombs < 0 || bombs > cells-1 {
		return nil, errs.Of(errs.ErrBadBombs, fmt.Sprintf("bombs=%d cells=%d", bombs, cells))
	}

	f := &Field{
		width:      width,
		height:     height,
		cells:      cells,
		bombs:      bombs,
		firstClick: true,
		exploded:   -1,
		data:       make([]byte, cells),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.rng == nil {
		f.rng = core.New(core.Default().New(core.NewSeed()))
	}
	if f.sched == nil {
		f.sched = sched.NewQueue(sched.SystemClock{})
	}

	f.layout()
	return f, nil
}

// ------------------------------------------------------------
// 維度與計數
// ------------------------------------------------------------

func (f *Field) Width() int        { return f.width }
func (f *Field) Height() int       { return f.height }
func (f *Field) Len() int          { return f.cells }
func (f *Field) BombsCount() int   { return f.bombs }
func (f *Field) OpenCount() int    { return f.opened }
func (f *Field) FlaggedCount() int { return f.flagged }
func (f *Field) FirstClick() bool  { return f.firstClick }
func (f *Field) RescueIndex() int  { return f.rescue }

// Exploded 回傳踩爆的格子索引；尚未輸局回傳 -1。
func (f *Field) Exploded() int { return f.exploded }

// Remaining 回傳「雷數 - 旗數」，即畫面上的剩餘地雷計數。
func (f *Field) Remaining() int { return f.bombs - f.flagged }

// Status 回傳目前局勢。所有非雷格都翻開即為勝利。
func (f *Field) Status() Status {
	if f.exploded >= 0 {
		return Lost
	}
	if f.opened == f.cells-f.bombs {
		return Won
	}
	return Playing
}

// ------------------------------------------------------------
// 索引
// ------------------------------------------------------------

// Flatten 將 (row, col) 轉為一維索引，不做檢查。
func (f *Field) Flatten(row int, col int) int {
	return row*f.width + col
}

// Unflatten 將一維索引轉回 (row, col)。
func (f *Field) Unflatten(idx int) (row int, col int) {
	return idx / f.width, idx % f.width
}

// InBounds 回傳 (row, col) 是否在盤面內。
func (f *Field) InBounds(row int, col int) bool {
	return row >= 0 && row < f.height && col >= 0 && col < f.width
}

func (f *Field) index(row int, col int) int {
	if !f.InBounds(row, col) {
		panic(fmt.Sprintf("field: cell (%d,%d) out of %dx%d board", row, col, f.height, f.width))
	}
	return row*f.width + col
}

func (f *Field) mustIndex(idx int) {
	if idx < 0 || idx >= f.cells {
		panic(fmt.Sprintf("field: index %d out of [0,%d)", idx, f.cells))
	}
}

// ------------------------------------------------------------
// 讀寫
// ------------------------------------------------------------

// Get 回傳 (row, col) 的狀態。越界 panic。
func (f *Field) Get(row int, col int) tile.State {
	return tile.State(f.data[f.index(row, col)])
}

// Set 直接覆寫 (row, col) 的狀態，不維護任何計數。越界 panic。
func (f *Field) Set(row int, col int, s tile.State) {
	f.data[f.index(row, col)] = byte(s)
}

// At 以一維索引讀取狀態。越界 panic。
func (f *Field) At(idx int) tile.State {
	f.mustIndex(idx)
	return tile.State(f.data[idx])
}

// Put 以一維索引覆寫狀態，與 Set 一樣不維護計數。越界 panic。
func (f *Field) Put(idx int, s tile.State) {
	f.mustIndex(idx)
	f.data[idx] = byte(s)
}

// Row 回傳第 i 列的唯讀視圖（不複製）。cap 已截斷，append 不會寫到下一列。
func (f *Field) Row(i int) []byte {
	if i < 0 || i >= f.height {
		panic(fmt.Sprintf("field: row %d out of [0,%d)", i, f.height))
	}
	lo := i * f.width
	hi := lo + f.width
	return f.data[lo:hi:hi]
}

func (f *Field) Opened(idx int) bool  { return f.At(idx).Opened() }
func (f *Field) HasBomb(idx int) bool { return f.At(idx).HasBomb() }
func (f *Field) Flagged(idx int) bool { return f.At(idx).Flagged() }

// Click 依按鍵分派：0 翻開、2 插旗，其他按鍵忽略。
func (f *Field) Click(row int, col int, button int) {
	switch button {
	case ButtonOpen:
		f.Open(row, col)
	case ButtonFlag:
		f.ToggleFlag(row, col)
	}
}

const (
	ButtonOpen = 0
	ButtonFlag = 2
)

// Flush 同步執行所有待辦的揭示任務（僅在排程器支援 sched.Drainer 時有效），回傳執行數。
func (f *Field) Flush() int {
	if d, ok := f.sched.(sched.Drainer); ok {
		return d.Drain()
	}
	return 0
}
