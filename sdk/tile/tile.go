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

// Package tile 定義單格狀態的一位元組編碼。
//
// 位元配置（固定，渲染端依賴此配置）：
//
//	bit 0-3  圖示編號 (0-12)
//	bit 4    有雷
//	bit 5    已翻開
//	bit 6    插旗
//	bit 7    未使用
package tile

// 圖示編號：0-8 為「已翻開且周圍 N 顆雷」
const (
	Default  uint8 = 9  // 未翻開
	Flag     uint8 = 10 // 插旗
	Bomb     uint8 = 11 // 輸局時揭示的雷
	Exploded uint8 = 12 // 踩到的那顆雷

	// Glyphs 為渲染端貼圖表的項目數
	Glyphs = 13
)

const (
	NumberMask uint8 = 0x0F
	BombBit    uint8 = 1 << 4
	OpenBit    uint8 = 1 << 5
	FlagBit    uint8 = 1 << 6
)

// State 是單格的打包狀態。
type State uint8

// Unpacked 是 State 展開後的四個邏輯欄位。
type Unpacked struct {
	Number  uint8 `json:"number"`
	HasBomb bool  `json:"has_bomb"`
	Opened  bool  `json:"opened"`
	Flagged bool  `json:"flagged"`
}

// Initial 為新盤面每一格的預設狀態：未翻開、無雷、無旗。
const Initial = State(Default)

// Pack 將四個欄位打包成一個位元組。
// Number 只取低 4 位元，超過 15 會靜默溢位，呼叫端需自行保證在 [0,12]。
func Pack(u Unpacked) State {
	s := u.Number & NumberMask
	if u.HasBomb {
		s |= BombBit
	}
	if u.Opened {
		s |= OpenBit
	}
	if u.Flagged {
		s |= FlagBit
	}
	return State(s)
}

// Unpack 為 Pack 的反函數。
func (s State) Unpack() Unpacked {
	return Unpacked{
		Number:  s.Number(),
		HasBomb: s.HasBomb(),
		Opened:  s.Opened(),
		Flagged: s.Flagged(),
	}
}

func (s State) Number() uint8 { return uint8(s) & NumberMask }
func (s State) HasBomb() bool { return uint8(s)&BombBit != 0 }
func (s State) Opened() bool  { return uint8(s)&OpenBit != 0 }
func (s State) Flagged() bool { return uint8(s)&FlagBit != 0 }

// WithNumber 改寫圖示編號，保留其他位元。
func (s State) WithNumber(n uint8) State {
	return State(uint8(s)&^NumberMask | n&NumberMask)
}

// Set 設定指定位元。
func (s State) Set(bit uint8) State { return State(uint8(s) | bit) }

// Clear 清除指定位元。
func (s State) Clear(bit uint8) State { return State(uint8(s) &^ bit) }

// Toggle 反轉指定位元。
func (s State) Toggle(bit uint8) State { return State(uint8(s) ^ bit) }

// Glyph 回傳渲染端應顯示的貼圖編號，等同 Number。
func (s State) Glyph() uint8 { return s.Number() }

// Rune 給除錯輸出用的單字元表示。
func (s State) Rune() rune {
	switch n := s.Number(); {
	case n == 0:
		return '.'
	case n <= 8:
		return rune('0' + n)
	case n == Default:
		return '-'
	case n == Flag:
		return 'F'
	case n == Bomb:
		return '*'
	case n == Exploded:
		return 'X'
	default:
		return '?'
	}
}
