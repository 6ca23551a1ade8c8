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

package dto

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/zintix-labs/sweeplab/errs"
)

// 防止 body 過大（1MiB）
const maxBody = 1 << 20

// CreateRequest 開新局。欄位皆可省略，省略時用服務預設值。
type CreateRequest struct {
	Width   *int     `json:"width,omitempty"`
	Height  *int     `json:"height,omitempty"`
	Density *float64 `json:"density,omitempty"`
	Bombs   *int     `json:"bombs,omitempty"`
	Seed    *int64   `json:"seed,omitempty"`
}

// ClickRequest 點擊：button 0 翻開、2 插旗
type ClickRequest struct {
	Row    int `json:"row"`
	Col    int `json:"col"`
	Button int `json:"button"`
}

// ChunkRequest 讀取 size x size 的窗口
type ChunkRequest struct {
	Row  int
	Col  int
	Size int
}

// DecodeCreateRequest 解碼開局請求。
//
// 支援：
//   - GET：從 query string 讀取 width/height/density/bombs/seed
//   - POST：從 JSON body 反序列化；空 body 視為全部預設
//
// 這裡只做型別轉換，合法性由 spec.FieldSetting.Init 決定。
func DecodeCreateRequest(r *http.Request) (*CreateRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	req := new(CreateRequest)

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		var err error
		if req.Width, err = optInt(q, "width"); err != nil {
			return nil, err
		}
		if req.Height, err = optInt(q, "height"); err != nil {
			return nil, err
		}
		if req.Bombs, err = optInt(q, "bombs"); err != nil {
			return nil, err
		}
		if s := q.Get("density"); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid density: %v", err))
			}
			req.Density = &v
		}
		if s := q.Get("seed"); s != "" {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid seed: %v", err))
			}
			req.Seed = &v
		}
		return req, nil

	case http.MethodPost:
		if err := decodeJSON(r.Body, req, true); err != nil {
			return nil, err
		}
		return req, nil

	default:
		return nil, errs.NewWarn("method not allowed")
	}
}

// DecodeClickRequest 解碼點擊請求（JSON body）。
func DecodeClickRequest(r *http.Request) (*ClickRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	req := new(ClickRequest)
	if err := decodeJSON(r.Body, req, false); err != nil {
		return nil, err
	}
	return req, nil
}

// DecodeChunkRequest 從 query string 讀取 row/col/size；size 省略時使用 defSize。
func DecodeChunkRequest(r *http.Request, defSize int) (*ChunkRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	q := r.URL.Query()
	req := &ChunkRequest{Size: defSize}
	for _, p := range []struct {
		key string
		dst *int
		opt bool
	}{
		{"row", &req.Row, false},
		{"col", &req.Col, false},
		{"size", &req.Size, true},
	} {
		v, err := optInt(q, p.key)
		if err != nil {
			return nil, err
		}
		if v == nil {
			if !p.opt {
				return nil, errs.NewWarn("missing " + p.key)
			}
			continue
		}
		*p.dst = *v
	}
	return req, nil
}

func optInt(q url.Values, key string) (*int, error) {
	s := q.Get(key)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, errs.NewWarn(fmt.Sprintf("invalid %s: %v", key, err))
	}
	return &v, nil
}

// decodeJSON 嚴格拒絕未知欄位；allowEmpty 時空 body 不算錯。
func decodeJSON(body io.Reader, out any, allowEmpty bool) error {
	if body == nil {
		if allowEmpty {
			return nil
		}
		return errs.NewWarn("empty body")
	}
	dec := json.NewDecoder(io.LimitReader(body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		if err == io.EOF && allowEmpty {
			return nil
		}
		return errs.WrapWarn(err, "invalid json")
	}
	return nil
}
