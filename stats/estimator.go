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
	"sort"

	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// GameResult 單局模擬結果
type GameResult struct {
	Won       bool
	Lost      bool
	Opened    int // 結束時翻開的格數
	Safe      int // 非雷格數
	Clicks    int
	FirstOpen int // 首擊一次翻開的格數
}

// SimSetting 模擬參數，原樣寫進報告
type SimSetting struct {
	Width   int   `json:"width"   yaml:"width"`
	Height  int   `json:"height"  yaml:"height"`
	Bombs   int   `json:"bombs"   yaml:"bombs"`
	Seed    int64 `json:"seed"    yaml:"seed"`
	Workers int   `json:"workers" yaml:"workers"`
}

// MomentStat 樣本平均、標準差與中位數
type MomentStat struct {
	Mean   float64 `json:"mean"   yaml:"mean"`
	Std    float64 `json:"std"    yaml:"std"`
	Median float64 `json:"median" yaml:"median"`
}

// SimReport 模擬統計
type SimReport struct {
	Setting      SimSetting `json:"setting"       yaml:"setting"`
	Games        int        `json:"games"         yaml:"games"`
	Wins         int        `json:"wins"          yaml:"wins"`
	Losses       int        `json:"losses"        yaml:"losses"`
	WinRate      PointStat  `json:"win_rate"      yaml:"win_rate"`
	FirstCascade PointStat  `json:"first_cascade" yaml:"first_cascade"` // 首擊展開超過一格的比例
	OpenedRatio  MomentStat `json:"opened_ratio"  yaml:"opened_ratio"`
	Clicks       MomentStat `json:"clicks"        yaml:"clicks"`
	RatioBucket  []string   `json:"ratio_bucket"  yaml:"ratio_bucket"`
	RatioCollect []int      `json:"ratio_collect" yaml:"ratio_collect"`
}

// NewSimReport 彙整多局結果。信賴區間皆為 95% Clopper–Pearson。
func NewSimReport(setting SimSetting, results []GameResult) *SimReport {
	n := len(results)
	r := &SimReport{
		Setting:      setting,
		Games:        n,
		RatioBucket:  RatioLabels(),
		RatioCollect: make([]int, len(RatioLabels())),
	}
	if n == 0 {
		r.WinRate.CI = CI{0, 1}
		r.FirstCascade.CI = CI{0, 1}
		return r
	}

	ratio := make([]float64, n)
	clicks := make([]float64, n)
	cascade := 0
	for i, g := range results {
		switch {
		case g.Won:
			r.Wins++
		case g.Lost:
			r.Losses++
		}
		if g.FirstOpen > 1 {
			cascade++
		}
		if g.Safe > 0 {
			ratio[i] = float64(g.Opened) / float64(g.Safe)
		} else {
			ratio[i] = 1
		}
		clicks[i] = float64(g.Clicks)
		r.RatioCollect[RatioIndex(g.Opened, g.Safe)]++
	}

	r.WinRate.Hat, r.WinRate.CI = proportionCICP(r.Wins, n, 0.95)
	r.FirstCascade.Hat, r.FirstCascade.CI = proportionCICP(cascade, n, 0.95)
	r.OpenedRatio = moments(ratio)
	r.Clicks = moments(clicks)
	return r
}

// Table 以表格輸出
func (r *SimReport) Table() string {
	p := message.NewPrinter(lang)
	msg := map[string]string{
		"Board":         p.Sprintf("%d x %d / %d bombs", r.Setting.Width, r.Setting.Height, r.Setting.Bombs),
		"Seed":          p.Sprintf("%d", r.Setting.Seed),
		"Games":         p.Sprintf("%d", r.Games),
		"Wins":          p.Sprintf("%d", r.Wins),
		"Losses":        p.Sprintf("%d", r.Losses),
		"Win Rate":      fmtHatCIpct01(r.WinRate),
		"First Cascade": fmtHatCIpct01(r.FirstCascade),
		"Opened Mean":   p.Sprintf("%.2f %% (std %.2f %%)", 100*r.OpenedRatio.Mean, 100*r.OpenedRatio.Std),
		"Opened Median": p.Sprintf("%.2f %%", 100*r.OpenedRatio.Median),
		"Clicks Mean":   p.Sprintf("%.2f (std %.2f)", r.Clicks.Mean, r.Clicks.Std),
	}
	keys := []string{"Board", "Seed", "Games", "Wins", "Losses", "Win Rate", "First Cascade", "Opened Mean", "Opened Median", "Clicks Mean"}
	for i, label := range r.RatioBucket {
		k := "Opened " + label
		msg[k] = p.Sprintf("%d", r.RatioCollect[i])
		keys = append(keys, k)
	}
	return fmtTable("Simulation", keys, msg)
}

// ============================================================
// ** 內部統計函數 **
// ============================================================

func moments(x []float64) MomentStat {
	if len(x) == 0 {
		return MomentStat{}
	}
	m := MomentStat{Median: quantilePoint(x, 0.5)}
	if len(x) == 1 {
		m.Mean = x[0]
		return m
	}
	m.Mean, m.Std = stat.MeanStdDev(x, nil)
	return m
}

// Clopper–Pearson exact CI for binomial proportion (k successes out of n)
func proportionCICP(k int, n int, confidence float64) (pHat float64, ci CI) {
	if n == 0 {
		return 0, CI{0, 1}
	}
	alpha := 1 - confidence
	pHat = float64(k) / float64(n)

	// Beta PPF 映射，處理邊界
	if k == 0 {
		ci.Lo = 0
	} else {
		b := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
		ci.Lo = b.Quantile(alpha / 2)
	}
	if k == n {
		ci.Hi = 1
	} else {
		b := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
		ci.Hi = b.Quantile(1 - alpha/2)
	}
	return
}

// quantilePoint 最近秩法的經驗分位數
func quantilePoint(data []float64, q float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	cp := make([]float64, n)
	copy(cp, data)
	sort.Float64s(cp)
	idx := int(q * float64(n))
	idx = min(max(idx, 0), n-1)
	return cp[idx]
}
