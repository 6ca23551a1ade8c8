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

import "github.com/zintix-labs/sweeplab/sdk/tile"

// 佇列前段浪費超過此長度且超過一半時，往前搬移一次
const compactAt = 4096

// Open 翻開 (row, col)。越界 panic。
func (f *Field) Open(row int, col int) {
	f.OpenIndex(f.index(row, col))
}

// OpenIndex 翻開 idx：
//
//  1. 已翻開、已插旗、或已輸局：不做事
//  2. 標記為已翻開
//  3. 有雷：非首擊則輸局；首擊則把雷搬到救援格
//  4. 清除首擊旗標（整局只有一次）
//  5. 從 idx 開始以 FIFO 佇列展開
func (f *Field) OpenIndex(idx int) {
	f.mustIndex(idx)
	s := f.data[idx]
	if s&tile.OpenBit != 0 || s&tile.FlagBit != 0 || f.exploded >= 0 {
		return
	}
	f.data[idx] = s | tile.OpenBit

	if s&tile.BombBit != 0 {
		if !f.firstClick {
			f.explode(idx)
			return
		}
		f.moveBomb(idx)
	}
	f.firstClick = false

	f.flood(idx)
}

// moveBomb 把 from 的雷搬到救援格。只會在首擊發生。
func (f *Field) moveBomb(from int) {
	f.data[from] &^= tile.BombBit
	f.data[f.rescue] |= tile.BombBit
}

// flood 以廣度優先展開。
//
// 每格出佇列時寫入周圍雷數並累計 opened；雷數為 0 時把尚未翻開的鄰居
// 標記翻開後入佇列。入佇列前已設 OpenBit，所以每格最多入佇列一次。
// 展開途中碰到插旗格會一併拔旗（0 格旁邊不可能有雷，旗一定插錯）。
func (f *Field) flood(start int) {
	q := append(f.queue[:0], start)
	head := 0
	for head < len(q) {
		cur := q[head]
		head++

		nb := f.Neighbors(cur, f.nbuf[:0])
		n := f.bombsAround(nb)
		f.data[cur] = byte(tile.State(f.data[cur]).WithNumber(n))
		f.opened++

		if n == 0 {
			for _, j := range nb {
				s := f.data[j]
				if s&tile.OpenBit != 0 {
					continue
				}
				if s&tile.FlagBit != 0 {
					s &^= tile.FlagBit
					f.flagged--
				}
				f.data[j] = s | tile.OpenBit
				q = append(q, j)
			}
		}

		if head > compactAt && head*2 > len(q) {
			q = q[:copy(q, q[head:])]
			head = 0
		}
	}
	f.queue = q[:0]
}
