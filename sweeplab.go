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

// Package sweeplab 提供踩地雷引擎的「組裝入口」與「運行入口」。
//
// Lab 把盤面預設設定、亂數工廠（PRNG factory）與種子產生器組在一起，負責建出 field.Field；
// Runtime 在 Lab 之上管理多局（session）；Simulator 用 Lab 大量自動對局做統計。
//
// 典型使用情境：
//   - 後端服務：Runtime 持有各局，HTTP 層只呼叫 Session 的方法。
//   - 模擬器：Simulator 以多個 worker 平行對局，產出 stats.SimReport。
package sweeplab

import (
	"github.com/zintix-labs/sweeplab/errs"
	"github.com/zintix-labs/sweeplab/field"
	"github.com/zintix-labs/sweeplab/sdk/core"
	"github.com/zintix-labs/sweeplab/spec"
)

// Lab 是建立盤面的工廠。建立後唯讀，可在多個 goroutine 共用。
type Lab struct {
	setting spec.FieldSetting
	pf      core.PRNGFactory
	seeds   *seedMaker
}

// New 建立 Lab。pf 為 nil 時使用 core.Default()。
// setting 會先經過 Init 補預設並檢查。
func New(pf core.PRNGFactory, setting spec.FieldSetting) (*Lab, error) {
	if pf == nil {
		pf = core.Default()
	}
	if err := setting.Init(); err != nil {
		return nil, err
	}
	seed := core.NewSeed()
	if setting.Seed != nil {
		seed = *setting.Seed
	}
	return &Lab{setting: setting, pf: pf, seeds: newSeedMaker(seed)}, nil
}

// NewDefault 以預設 100x100 盤面建立 Lab
func NewDefault() *Lab {
	lab, err := New(nil, spec.DefaultFieldSetting())
	if err != nil {
		// 預設設定一定合法
		panic(err)
	}
	return lab
}

// Setting 回傳預設盤面設定的副本
func (l *Lab) Setting() spec.FieldSetting {
	return l.setting
}

// NewField 依設定建盤面並回傳實際使用的種子。
// fs 為 nil 時用 Lab 的預設設定；fs.Seed 為 nil 時由種子產生器給一個。
func (l *Lab) NewField(fs *spec.FieldSetting, opts ...field.Option) (*field.Field, int64, error) {
	s := l.setting
	if fs != nil {
		s = *fs
		if err := s.Init(); err != nil {
			return nil, 0, err
		}
	}
	seed := l.seeds.next()
	if fs != nil && fs.Seed != nil {
		seed = *fs.Seed
	}
	f, err := l.NewFieldWithSeed(s, seed, opts...)
	if err != nil {
		return nil, 0, err
	}
	return f, seed, nil
}

// NewFieldWithSeed 以指定種子建盤面，相同設定與種子必得相同佈雷。
func (l *Lab) NewFieldWithSeed(fs spec.FieldSetting, seed int64, opts ...field.Option) (*field.Field, error) {
	opts = append([]field.Option{field.WithRand(l.pf.New(seed))}, opts...)
	f, err := field.New(fs.Width, fs.Height, fs.BombCount(), opts...)
	if err != nil {
		return nil, errs.Wrap(err, "build field")
	}
	return f, nil
}
