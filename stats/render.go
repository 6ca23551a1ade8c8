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
	"encoding/json"
	"fmt"
	"io"

	"github.com/zintix-labs/sweeplab/errs"
	"gopkg.in/yaml.v3"
)

// Render 定義報告輸出行為
type Render interface {
	Write(w io.Writer, v any) error
}

// Tabler 能以表格輸出的報告
type Tabler interface {
	Table() string
}

// Json渲染
type JsonRender struct {
	Indent bool
}

func (jr *JsonRender) Write(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if jr.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// YAML渲染
type YAMLRender struct{}

func (yr *YAMLRender) Write(w io.Writer, v any) error {
	// 只有「最內層的一維陣列」才輸出成 flow style：[..., ...]
	return forceReadableList(w, v)
}

// 表格渲染
type TextRender struct{}

func (tr *TextRender) Write(w io.Writer, v any) error {
	t, ok := v.(Tabler)
	if !ok {
		return errs.Warnf("text render: %T has no table form", v)
	}
	_, err := io.WriteString(w, t.Table())
	return err
}

// RenderByName 依名稱取得渲染器：json / yaml / text
func RenderByName(name string) (Render, error) {
	switch name {
	case "json":
		return &JsonRender{Indent: true}, nil
	case "yaml", "yml":
		return &YAMLRender{}, nil
	case "text", "":
		return &TextRender{}, nil
	default:
		return nil, errs.Of(errs.ErrBadSetting, fmt.Sprintf("format=%q", name))
	}
}

// YAML 內層方法
func forceReadableList(w io.Writer, v any) error {
	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return err
	}
	styleReadableSequences(&node)

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(&node)
}

func styleReadableSequences(n *yaml.Node) {
	if n == nil {
		return
	}

	switch n.Kind {
	case yaml.DocumentNode, yaml.MappingNode:
		for _, c := range n.Content {
			styleReadableSequences(c)
		}

	case yaml.SequenceNode:
		// 內部有子 sequence 或 mapping 代表外層維度，保持展開
		nested := false
		for _, c := range n.Content {
			if c != nil && (c.Kind == yaml.SequenceNode || c.Kind == yaml.MappingNode) {
				nested = true
			}
			styleReadableSequences(c)
		}
		if !nested {
			n.Style = yaml.FlowStyle
		}
	}
}
