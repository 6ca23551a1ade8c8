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
	"time"

	"github.com/zintix-labs/sweeplab/errs"
)

const (
	DefaultAddr         = ":5808"
	DefaultMaxSessions  = 256
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 10 * time.Second
	DefaultSessionTTL   = 30 * time.Minute

	// HTTP 建盤與模擬的格數上限（每格 1 byte，模擬另需每 worker 一份 n 個 int 的洗牌序）
	DefaultMaxBoardCells = 1 << 22
	DefaultMaxSimCells   = 1 << 20
)

// ServerSetting 為 cmd/svr 的設定檔。
type ServerSetting struct {
	Addr          string        `yaml:"addr"            json:"addr"`
	LogMode       string        `yaml:"log_mode"        json:"log_mode"`
	MaxSessions   int           `yaml:"max_sessions"    json:"max_sessions"`
	MaxBoardCells int           `yaml:"max_board_cells" json:"max_board_cells"`
	MaxSimCells   int           `yaml:"max_sim_cells"   json:"max_sim_cells"`
	ReadTimeout   time.Duration `yaml:"read_timeout"    json:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"   json:"write_timeout"`
	SessionTTL    time.Duration `yaml:"session_ttl"     json:"session_ttl"` // 閒置逾時，負值表示永不逾時
	Field         FieldSetting  `yaml:"field"           json:"field"`
}

// DefaultServerSetting 回傳可直接啟動的預設設定。
func DefaultServerSetting() ServerSetting {
	return ServerSetting{
		Addr:         DefaultAddr,
		LogMode:      "dev",
		MaxSessions:   DefaultMaxSessions,
		MaxBoardCells: DefaultMaxBoardCells,
		MaxSimCells:   DefaultMaxSimCells,
		ReadTimeout:   DefaultReadTimeout,
		WriteTimeout:  DefaultWriteTimeout,
		SessionTTL:    DefaultSessionTTL,
		Field:         DefaultFieldSetting(),
	}
}

// Init 補預設值並檢查。
func (ss *ServerSetting) Init() error {
	if ss.Addr == "" {
		ss.Addr = DefaultAddr
	}
	if ss.LogMode == "" {
		ss.LogMode = "dev"
	}
	if ss.MaxSessions == 0 {
		ss.MaxSessions = DefaultMaxSessions
	}
	if ss.MaxBoardCells == 0 {
		ss.MaxBoardCells = DefaultMaxBoardCells
	}
	if ss.MaxSimCells == 0 {
		ss.MaxSimCells = DefaultMaxSimCells
	}
	if ss.ReadTimeout == 0 {
		ss.ReadTimeout = DefaultReadTimeout
	}
	if ss.WriteTimeout == 0 {
		ss.WriteTimeout = DefaultWriteTimeout
	}
	if ss.SessionTTL == 0 {
		ss.SessionTTL = DefaultSessionTTL
	}
	if ss.Field.Width == 0 && ss.Field.Height == 0 {
		ss.Field = DefaultFieldSetting()
	}
	if err := ss.valid(); err != nil {
		return err
	}
	if err := ss.Field.Init(); err != nil {
		return err
	}
	// 預設盤面也走 HTTP 建盤，必須在上限內
	return ss.Field.CheckCells(ss.MaxBoardCells)
}

func (ss *ServerSetting) valid() error {
	switch ss.LogMode {
	case "dev", "prod", "silence":
	default:
		return errs.Of(errs.ErrBadSetting, fmt.Sprintf("log_mode=%q", ss.LogMode))
	}
	if ss.MaxSessions < 1 {
		return errs.Of(errs.ErrBadSetting, fmt.Sprintf("max_sessions=%d", ss.MaxSessions))
	}
	if ss.MaxBoardCells < 1 || ss.MaxBoardCells > MaxCells || ss.MaxSimCells < 1 || ss.MaxSimCells > MaxCells {
		return errs.Of(errs.ErrBadSetting, fmt.Sprintf("max_board_cells=%d max_sim_cells=%d must be in [1,%d]", ss.MaxBoardCells, ss.MaxSimCells, MaxCells))
	}
	if ss.ReadTimeout < 0 || ss.WriteTimeout < 0 {
		return errs.Of(errs.ErrBadSetting, "negative timeout")
	}
	return nil
}
