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

// ToggleFlag 切換 (row, col) 的旗子。越界 panic。
func (f *Field) ToggleFlag(row int, col int) {
	f.ToggleFlagIndex(f.index(row, col))
}

// ToggleFlagIndex 切換 idx 的旗子：
//   - 已翻開或已輸局：不做事
//   - 已插旗：拔旗，圖示回到未翻開
//   - 未插旗且旗數 < 雷數：插旗
//   - 旗已用完：不做事
func (f *Field) ToggleFlagIndex(idx int) {
	f.mustIndex(idx)
	s := tile.State(f.data[idx])
	if s.Opened() || f.exploded >= 0 {
		return
	}
	switch {
	case s.Flagged():
		f.data[idx] = byte(s.Clear(tile.FlagBit).WithNumber(tile.Default))
		f.flagged--
	case f.flagged < f.bombs:
		f.data[idx] = byte(s.Set(tile.FlagBit).WithNumber(tile.Flag))
		f.flagged++
	}
}
