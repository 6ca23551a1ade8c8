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

// Package dto 定義 HTTP 邊界的請求與回應結構。
package dto

import "github.com/zintix-labs/sweeplab/stats"

// GameView 一局的對外摘要
type GameView struct {
	ID         string            `json:"id"`
	Seed       int64             `json:"seed"`
	ChunkSize  int               `json:"chunk_size"`
	FirstClick bool              `json:"first_click"`
	Exploded   *Cell             `json:"exploded,omitempty"`
	Board      stats.BoardReport `json:"board"`
}

// Cell 盤面座標
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// ClickResult 點擊後的回應
type ClickResult struct {
	Cell   Cell     `json:"cell"`
	Button int      `json:"button"`
	Glyph  uint8    `json:"glyph"` // 該格點擊後的貼圖編號
	Game   GameView `json:"game"`
}

// ErrorBody 錯誤回應
type ErrorBody struct {
	Error string `json:"error"`
	Level string `json:"level,omitempty"`
}
