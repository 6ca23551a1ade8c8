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

// layout 清空盤面並佈雷。
//
// 從全部格子不放回抽出 bombs+1 格：最後一格保留為救援格（不放雷），
// 其餘放雷。救援格保證不與任何初始雷重疊。
func (f *Field) layout() {
	for i := range f.data {
		f.data[i] = byte(tile.Initial)
	}
	picks := f.rng.SampleDistinct(f.cells, f.bombs+1)
	last := len(picks) - 1
	f.rescue = picks[last]
	for _, i := range picks[:last] {
		f.data[i] |= tile.BombBit
	}
}
