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

import (
	"fmt"

	"github.com/zintix-labs/sweeplab/sdk/tile"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat/distuv"
)

// AuditAlpha 為均勻性檢定的顯著水準
const AuditAlpha = 0.01

// LayoutAudit 以卡方檢定檢查雷是否均勻分布在各列帶（row band）。
//
// 盤面依列切成 Bands 段，每段期望雷數 = 總雷數 * 該段格數 / 總格數。
type LayoutAudit struct {
	Bands    int       `json:"bands"    yaml:"bands"`
	Observed []int     `json:"observed" yaml:"observed"`
	Expected []float64 `json:"expected" yaml:"expected"`
	ChiSq    float64   `json:"chi_sq"   yaml:"chi_sq"`
	DF       int       `json:"df"       yaml:"df"`
	PValue   float64   `json:"p_value"  yaml:"p_value"`
	Uniform  bool      `json:"uniform"  yaml:"uniform"`
}

// AuditLayout 對盤面做卡方均勻性檢定。bands 會被限制在 [1, height]。
// 無雷或只有一段時 PValue 為 1。
func AuditLayout(b Board, bands int) *LayoutAudit {
	h, w := b.Height(), b.Width()
	bands = min(max(bands, 1), h)

	a := &LayoutAudit{
		Bands:    bands,
		Observed: make([]int, bands),
		Expected: make([]float64, bands),
		DF:       bands - 1,
		PValue:   1,
		Uniform:  true,
	}

	total := 0
	rowsPerBand := make([]int, bands)
	for r := 0; r < h; r++ {
		bi := r * bands / h
		rowsPerBand[bi]++
		for _, s := range b.Row(r) {
			if s&tile.BombBit != 0 {
				a.Observed[bi]++
				total++
			}
		}
	}
	cells := float64(h * w)
	for i := range a.Expected {
		a.Expected[i] = float64(total) * float64(rowsPerBand[i]*w) / cells
	}

	if total == 0 || bands < 2 {
		return a
	}
	for i, o := range a.Observed {
		e := a.Expected[i]
		d := float64(o) - e
		a.ChiSq += d * d / e
	}
	a.PValue = distuv.ChiSquared{K: float64(a.DF)}.Survival(a.ChiSq)
	a.Uniform = a.PValue >= AuditAlpha
	return a
}

// Table 以表格輸出
func (a *LayoutAudit) Table() string {
	p := message.NewPrinter(lang)
	msg := map[string]string{
		"Bands":   p.Sprintf("%d", a.Bands),
		"Chi-Sq":  p.Sprintf("%.4f", a.ChiSq),
		"DF":      p.Sprintf("%d", a.DF),
		"P-Value": p.Sprintf("%.4f", a.PValue),
		"Uniform": fmt.Sprintf("%v (alpha=%.2f)", a.Uniform, AuditAlpha),
	}
	keys := []string{"Bands", "Chi-Sq", "DF", "P-Value", "Uniform"}
	return fmtTable("Layout Audit", keys, msg)
}
