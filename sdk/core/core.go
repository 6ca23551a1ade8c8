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

package core

import (
	"crypto/rand"
	"math"
	"math/big"
)

// PRNG 定義盤面佈雷所需的亂數來源，需同時支援取樣與狀態保存/還原。
type PRNG interface {
	RAND
	Restorable
}

// Restorable 定義可快照與還原的狀態介面。
type Restorable interface {
	// Snapshot 回傳可用於還原的序列化狀態。
	Snapshot() ([]byte, error)
	// Restore 依序列化狀態還原 PRNG 內部狀態。
	Restore([]byte) error
}

// RAND 定義核心亂數取樣能力。
//
// 佈雷只需要 IntN；其餘方法保留給模擬器（隨機點擊）與測試使用。
type RAND interface {
	// Uint64 回傳非負 uint64 亂數。
	Uint64() uint64
	// Float64 回傳 [0,1) 的浮點亂數。
	Float64() float64
	// IntN 回傳 [0,max) 的 int 亂數，若 max <= 0 回傳 -1。
	IntN(int) int
}

// PRNGFactory 以 seed 建立 PRNG。
//
// 合約：同一實作、同一版本下，New(seed) 必須是決定性的，
// 相同 seed 產生相同盤面，這是重現問題盤面與回歸測試的基礎。
type PRNGFactory interface {
	New(int64) PRNG
}

// DefaultPRNG 實作預設的 PRNGFactory（PCG64）。
type DefaultPRNG struct{}

// New 滿足合約
func (d *DefaultPRNG) New(seed int64) PRNG {
	return newPCG64WithSeed(seed)
}

func Default() *DefaultPRNG {
	return &DefaultPRNG{}
}

// NewSeed 以加密亂數產生非負 seed，供外部未指定 seed 時使用。
func NewSeed() int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		// crypto/rand 在支援平台上不會失敗
		panic("core: crypto seed unavailable: " + err.Error())
	}
	return n.Int64()
}

// Core 封裝亂數來源，並提供佈雷用的取樣工具。
type Core struct {
	RAND
}

// New 允許使用外部自實現的亂數來源建立 Core。
func New(rng RAND) *Core {
	return &Core{rng}
}

// ShuffleInts 使用 Fisher-Yates 對 []int 就地隨機重排。
// 所有 N! 種排列機率相等，O(N) 時間、零配置。
func (c *Core) ShuffleInts(src []int) {
	if len(src) <= 1 {
		return
	}
	for i := len(src) - 1; i > 0; i-- {
		j := c.IntN(i + 1)
		src[i], src[j] = src[j], src[i]
	}
}

// SampleDistinct 從 [0,n) 不放回均勻抽出 k 個相異整數，回傳順序亦為均勻隨機排列。
//
// 實作為 Floyd 取樣 + 對結果做一次 Fisher-Yates：
//   - 記憶體只需 n bits 的 bitset 與 k 個 int，千萬格盤面也不用配置 n 個 int。
//   - 結果順序均勻，因此呼叫端取最後一個元素即為「子集合中均勻選出的一格」。
//
// k < 0 或 k > n 屬於呼叫端合約違反，直接 panic。
func (c *Core) SampleDistinct(n int, k int) []int {
	if k < 0 || k > n {
		panic("core: SampleDistinct k out of range")
	}
	out := make([]int, 0, k)
	if k == 0 {
		return out
	}
	seen := make([]uint64, (n+63)/64)
	for j := n - k; j < n; j++ {
		t := c.IntN(j + 1)
		if seen[t>>6]&(1<<(uint(t)&63)) != 0 {
			t = j
		}
		seen[t>>6] |= 1 << (uint(t) & 63)
		out = append(out, t)
	}
	c.ShuffleInts(out)
	return out
}
