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
	"bufio"
	"io"

	"github.com/zintix-labs/sweeplab/sdk/tile"
)

// Dump 以每格一字元輸出盤面圖示（除錯用），一列一行。
// '-' 未翻開、'F' 旗、'.' 空白、'1'-'8' 數字、'*' 雷、'X' 踩爆。
func (f *Field) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for r := 0; r < f.height; r++ {
		for _, b := range f.Row(r) {
			if _, err := bw.WriteRune(tile.State(b).Rune()); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
