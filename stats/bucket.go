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

package stats

// 翻開比例的分桶，以千分比查表 O(1) 定位
//
// 區間: [0,1%), [1%,5%), [5%,10%), [10%,25%), [25%,50%), [50%,75%), [75%,90%), [90%,100%), [100%]
var ratioEdges = []int{0, 10, 50, 100, 250, 500, 750, 900, 1000}

var ratioLabels = []string{"[0,1%)", "[1%,5%)", "[5%,10%)", "[10%,25%)", "[25%,50%)", "[50%,75%)", "[75%,90%)", "[90%,100%)", "[100%]"}

// ratioLUT[permille] = bucket index
var ratioLUT = buildRatioLUT()

func buildRatioLUT() []int {
	lut := make([]int, 1001)
	idx := 0
	last := len(ratioEdges) - 1
	for i := range lut {
		for idx < last && i >= ratioEdges[idx+1] {
			idx++
		}
		lut[i] = idx
	}
	return lut
}

// RatioLabels 回傳分桶標籤
func RatioLabels() []string {
	return ratioLabels
}

// RatioIndex 回傳 opened/safe 所屬的分桶。safe 為 0 時視為全開。
func RatioIndex(opened int, safe int) int {
	if safe <= 0 || opened >= safe {
		return len(ratioLabels) - 1
	}
	if opened <= 0 {
		return 0
	}
	pm := opened * 1000 / safe
	return ratioLUT[pm]
}
