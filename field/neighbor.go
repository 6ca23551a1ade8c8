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

// Neighbors 把 idx 的盤內鄰居（3 到 8 格）依列優先順序 append 到 dst 後回傳。
// 不修改盤面。傳入 dst[:0] 可重用緩衝避免配置。
func (f *Field) Neighbors(idx int, dst []int) []int {
	f.mustIndex(idx)
	r, c := idx/f.width, idx%f.width
	for dr := -1; dr <= 1; dr++ {
		nr := r + dr
		if nr < 0 || nr >= f.height {
			continue
		}
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			nc := c + dc
			if nc < 0 || nc >= f.width {
				continue
			}
			dst = append(dst, nr*f.width+nc)
		}
	}
	return dst
}

// bombsAround 計算鄰居中有雷的格數。
func (f *Field) bombsAround(nb []int) uint8 {
	var n uint8
	for _, j := range nb {
		if f.data[j]&tile.BombBit != 0 {
			n++
		}
	}
	return n
}
