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

// Package spec 定義盤面與服務的設定檔，以及 YAML/JSON 讀取器。
package spec

import (
	"bytes"
	"encoding/json"

	"github.com/zintix-labs/sweeplab/errs"
	"gopkg.in/yaml.v3"
)

// GetFieldSettingByYAML
// 讀取 YAML 盤面設定、補預設值並檢查後回傳。未知欄位直接報錯。
func GetFieldSettingByYAML(data []byte) (*FieldSetting, error) {
	fs := &FieldSetting{}
	if err := decodeYAML(data, fs); err != nil {
		return nil, err
	}
	if err := fs.Init(); err != nil {
		return nil, errs.Wrap(err, "field setting initialized err")
	}
	return fs, nil
}

// GetFieldSettingByJSON
// 讀取 JSON 盤面設定、補預設值並檢查後回傳
func GetFieldSettingByJSON(data []byte) (*FieldSetting, error) {
	fs := &FieldSetting{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(fs); err != nil {
		return nil, errs.WrapWarn(err, "can not unmarshall json byte")
	}
	if err := fs.Init(); err != nil {
		return nil, errs.Wrap(err, "field setting initialized err")
	}
	return fs, nil
}

// GetServerSettingByYAML 讀取 cmd/svr 的設定檔
func GetServerSettingByYAML(data []byte) (*ServerSetting, error) {
	ss := DefaultServerSetting()
	if err := decodeYAML(data, &ss); err != nil {
		return nil, err
	}
	if err := ss.Init(); err != nil {
		return nil, errs.Wrap(err, "server setting initialized err")
	}
	return &ss, nil
}

func decodeYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 嚴格檢查：多寫/拼錯欄位就報錯
	if err := dec.Decode(out); err != nil {
		return errs.WrapWarn(err, "failed to unmarshall yaml")
	}
	return nil
}
