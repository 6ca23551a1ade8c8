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

package spec

import (
	"fmt"
	"math"

	"github.com/zintix-labs/sweeplab/errs"
)

const (
	DefaultWidth     = 100
	DefaultHeight    = 100
	DefaultDensity   = 0.15
	DefaultChunkSize = 32

	// MaxCells 限制單一盤面格數（每格 1 byte）
	MaxCells = 1 << 28
)

// FieldSetting 描述一局盤面。
//
// 雷數的決定順序：Bombs 有給就用 Bombs，否則 floor(width*height*Density)。
// Seed 為 nil 時由 Lab 產生。
type FieldSetting struct {
	Width     int     `yaml:"width"      json:"width"`
	Height    int     `yaml:"height"     json:"height"`
	Density   float64 `yaml:"density"    json:"density"`
	Bombs     *int    `yaml:"bombs"      json:"bombs,omitempty"`
	Seed      *int64  `yaml:"seed"       json:"seed,omitempty"`
	ChunkSize int     `yaml:"chunk_size" json:"chunk_size"`
}

// DefaultFieldSetting 回傳 100x100、密度 0.15 的設定。
func DefaultFieldSetting() FieldSetting {
	return FieldSetting{
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		Density:   DefaultDensity,
		ChunkSize: DefaultChunkSize,
	}
}

// Cells 回傳總格數
func (fs *FieldSetting) Cells() int {
	return fs.Width * fs.Height
}

// BombCount 回傳實際要佈的雷數。需先通過 Init。
func (fs *FieldSetting) BombCount() int {
	if fs.Bombs != nil {
		return *fs.Bombs
	}
	n := int(math.Floor(float64(fs.Cells()) * fs.Density))
	return min(n, fs.Cells()-1)
}

// CheckCells 檢查 width*height 不超過 limit（不會溢位）。寬高本身的合法性交給 Init。
func (fs *FieldSetting) CheckCells(limit int) error {
	if fs.Width < 1 || fs.Height < 1 {
		return nil
	}
	if fs.Height > limit/fs.Width {
		return errs.Of(errs.ErrBadDimension, fmt.Sprintf("width=%d height=%d max_cells=%d", fs.Width, fs.Height, limit))
	}
	return nil
}

// Init 補預設值並檢查。
func (fs *FieldSetting) Init() error {
	if fs.ChunkSize == 0 {
		fs.ChunkSize = DefaultChunkSize
	}
	return fs.valid()
}

func (fs *FieldSetting) valid() error {
	if fs.Width < 1 || fs.Height < 1 || fs.Height > MaxCells/fs.Width {
		return errs.Of(errs.ErrBadDimension, fmt.Sprintf("width=%d height=%d max_cells=%d", fs.Width, fs.Height, MaxCells))
	}
	if math.IsNaN(fs.Density) || fs.Density < 0 || fs.Density >= 1 {
		return errs.Of(errs.ErrBadSetting, fmt.Sprintf("density=%v must be in [0,1)", fs.Density))
	}
	if fs.Bombs != nil && (*fs.Bombs < 0 || *fs.Bombs > fs.Cells()-1) {
		return errs.Of(errs.ErrBadBombs, fmt.Sprintf("bombs=%d cells=%d", *fs.Bombs, fs.Cells()))
	}
	if fs.ChunkSize < 1 {
		return errs.Of(errs.ErrBadSetting, fmt.Sprintf("chunk_size=%d", fs.ChunkSize))
	}
	return nil
}
