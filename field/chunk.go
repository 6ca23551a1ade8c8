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
	"fmt"

	"github.com/zintix-labs/sweeplab/errs"
)

// Chunk 把從 (rowOffset, colOffset) 起、size x size 的窗口以 row-major 連續複製到 dst。
// 每個位元組即 tile.State，低 4 位元為貼圖編號。
//
// 合約：
//   - len(dst) >= size*size，否則 panic
//   - 窗口的一維讀取範圍必須落在盤面緩衝內，否則 panic
//   - 窗口右緣超出該列時會讀到下一列開頭（盤面是一段連續緩衝）；需要嚴格檢查請先呼叫 CheckWindow
//
// Chunk 只讀盤面，可與其他 Chunk 並行呼叫。
func (f *Field) Chunk(rowOffset int, colOffset int, size int, dst []byte) {
	if size < 0 {
		panic(fmt.Sprintf("field: negative chunk size %d", size))
	}
	if size == 0 {
		return
	}
	if len(dst) < size*size {
		panic(fmt.Sprintf("field: chunk dst len %d < %d", len(dst), size*size))
	}
	start := rowOffset*f.width + colOffset
	end := (rowOffset+size-1)*f.width + colOffset + size
	if rowOffset < 0 || colOffset < 0 || end > len(f.data) {
		panic(fmt.Sprintf("field: chunk [%d,%d) size %d exceeds buffer %d", start, end, size, len(f.data)))
	}
	for i := 0; i < size; i++ {
		base := start + i*f.width
		copy(dst[i*size:(i+1)*size], f.data[base:base+size])
	}
}

// CheckWindow 嚴格檢查窗口是否完全落在盤面內（不允許跨列），供邊界層在呼叫 Chunk 前驗證。
func (f *Field) CheckWindow(rowOffset int, colOffset int, size int) error {
	if size < 1 || rowOffset < 0 || colOffset < 0 ||
		rowOffset > f.height-size || colOffset > f.width-size {
		return errs.Of(errs.ErrWindow, fmt.Sprintf("row=%d col=%d size=%d board=%dx%d", rowOffset, colOffset, size, f.height, f.width))
	}
	return nil
}
