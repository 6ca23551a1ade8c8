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

// Package stats 產出盤面、佈雷稽核與模擬的統計報告，並提供 JSON / YAML / 表格輸出。
package stats

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/sweeplab/field"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"lo" yaml:"lo"`
	Hi float64 `json:"hi" yaml:"hi"`
}

// PointStat 點估計 回傳 估計值 以及信賴區間
type PointStat struct {
	Hat float64 `json:"hat" yaml:"hat"`
	CI  CI      `json:"ci"  yaml:"ci"`
}

// Board 是產生報告所需的唯讀盤面視圖，*field.Field 即滿足。
type Board interface {
	Width() int
	Height() int
	Len() int
	BombsCount() int
	OpenCount() int
	FlaggedCount() int
	Row(i int) []byte
	Status() field.Status
}

// BoardReport 單一盤面的即時摘要
type BoardReport struct {
	Width     int     `json:"width"     yaml:"width"`
	Height    int     `json:"height"    yaml:"height"`
	Cells     int     `json:"cells"     yaml:"cells"`
	Bombs     int     `json:"bombs"     yaml:"bombs"`
	Density   float64 `json:"density"   yaml:"density"`
	Opened    int     `json:"opened"    yaml:"opened"`
	Flagged   int     `json:"flagged"   yaml:"flagged"`
	Remaining int     `json:"remaining" yaml:"remaining"` // 雷數 - 旗數
	Progress  float64 `json:"progress"  yaml:"progress"`  // 已翻開 / 非雷格
	Status    string  `json:"status"    yaml:"status"`
}

// NewBoardReport 讀取盤面計數產生摘要。
func NewBoardReport(b Board) *BoardReport {
	cells := b.Len()
	safe := cells - b.BombsCount()
	r := &BoardReport{
		Width:     b.Width(),
		Height:    b.Height(),
		Cells:     cells,
		Bombs:     b.BombsCount(),
		Opened:    b.OpenCount(),
		Flagged:   b.FlaggedCount(),
		Remaining: b.BombsCount() - b.FlaggedCount(),
		Status:    b.Status().String(),
	}
	if cells > 0 {
		r.Density = float64(r.Bombs) / float64(cells)
	}
	if safe > 0 {
		r.Progress = float64(r.Opened) / float64(safe)
	}
	return r
}

// Table 以表格輸出
func (r *BoardReport) Table() string {
	p := message.NewPrinter(lang)
	msg := map[string]string{
		"Size":      p.Sprintf("%d x %d", r.Width, r.Height),
		"Cells":     p.Sprintf("%d", r.Cells),
		"Bombs":     p.Sprintf("%d", r.Bombs),
		"Density":   p.Sprintf("%.2f %%", 100*r.Density),
		"Opened":    p.Sprintf("%d", r.Opened),
		"Flagged":   p.Sprintf("%d", r.Flagged),
		"Remaining": p.Sprintf("%d", r.Remaining),
		"Progress":  p.Sprintf("%.2f %%", 100*r.Progress),
		"Status":    r.Status,
	}
	keys := []string{"Size", "Cells", "Bombs", "Density", "Opened", "Flagged", "Remaining", "Progress", "Status"}
	return fmtTable("Board", keys, msg)
}

// FormatElapsed 輸出耗時與每秒局數
func FormatElapsed(d time.Duration, games int) string {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	gps := int(float64(games) / sec)
	if sec < 60.0 {
		return p.Sprintf("used: %.2f seconds\ngps : %d games/sec\n", sec, gps)
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		return p.Sprintf("used: %dm %ds\ngps : %d games/sec\n", m, s, gps)
	}
	return p.Sprintf("used: %dh:%dm:%ds\ngps : %d games/sec\n", h, m, s, gps)
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	maxKeyLen := runewidth.StringWidth(title)
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	var sb strings.Builder
	sb.WriteString(top)
	fmt.Fprintf(&sb, "|%s%s%s|\n", blank(left), title, blank(right))
	sb.WriteString(divider)
	for _, k := range keys {
		fmt.Fprintf(&sb, "| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	sb.WriteString(divider)
	return sb.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}

func fmtPct01(x float64) string {
	return fmt.Sprintf("%.2f%%", x*100)
}

func fmtHatCIpct01(ps PointStat) string {
	return fmt.Sprintf("%s [%s, %s]", fmtPct01(ps.Hat), fmtPct01(ps.CI.Lo), fmtPct01(ps.CI.Hi))
}
