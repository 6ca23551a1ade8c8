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

// Package errs 提供 sweeplab 統一的分級錯誤型別。
//
// 核心（field / tile / sched）不回傳可恢復錯誤：合約違反直接 panic。
// 只有「邊界」（建構盤面、讀設定、HTTP 請求）會回傳 *E。
package errs

import (
	"errors"
	"fmt"
)

// ErrLevel : Error 分級，讓最上層決定如何處理
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

var errLvName = [...]string{
	None:  "",
	Fatal: "fatal",
	Warn:  "warn",
	Log:   "log",
}

// String 回傳分級名稱，未知分級回傳空字串。
func (lv ErrLevel) String() string {
	if int(lv) < len(errLvName) {
		return errLvName[lv]
	}
	return ""
}

// E 是統一的錯誤型別。
//   - Message: 主訊息
//   - Extra: 呼叫端追加的上下文（例如座標、session id）
//   - Cause: 下層錯誤
//   - Kind: 可選的哨兵錯誤，讓 errors.Is 能以「種類」比對
type E struct {
	Message string
	Extra   string
	Cause   error
	Kind    *E
	ErrLv   ErrLevel
}

// Error 實作 error 介面。
func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s %s", e.ErrLv, e.Message)
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

// Is 讓帶有 Kind 的錯誤能和哨兵錯誤比對。
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok {
		return false
	}
	return e == t || (e.Kind != nil && e.Kind == t)
}

// 哨兵錯誤：只用於 errors.Is 比對，不要直接回傳（請用 Of 附上細節）。
var (
	ErrBadDimension = NewWarn("board dimension out of range")
	ErrBadBombs     = NewWarn("bomb count out of range")
	ErrWindow       = NewWarn("chunk window out of range")
	ErrBadCell      = NewWarn("cell out of range")
	ErrNoSession    = NewWarn("session not found")
	ErrSessionLimit = NewWarn("session limit reached")
	ErrBadSetting   = NewWarn("invalid setting")
)

// New 依分級建立錯誤
func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal}
}

func NewWarn(msg string) *E {
	return &E{Message: msg, ErrLv: Warn}
}

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

// Of 以哨兵錯誤為種類建立帶細節的錯誤，分級沿用哨兵。
//
//	return errs.Of(errs.ErrBadBombs, fmt.Sprintf("bombs=%d cells=%d", b, n))
func Of(kind *E, extra string) *E {
	return &E{Message: kind.Message, Extra: extra, Kind: kind, ErrLv: kind.ErrLv}
}

// Wrap 使用給定訊息包裝底層錯誤。
//
// ErrLevel 規則：
//   - 若 cause 已經是 *E，則沿用其 ErrLv。
//   - 否則（標準庫或三方依賴錯誤）一律視為 Fatal。
//
// 若你已判斷錯誤是「可預期且可處理」的情境，請直接用 NewWarn / Of，而不要 Wrap。
func Wrap(cause error, msg string) *E {
	var e *E
	errLv := Fatal
	if errors.As(cause, &e) {
		errLv = e.ErrLv
	}
	r := New(errLv, msg)
	r.Cause = cause
	return r
}

// WrapWarn 與 Wrap 相同，但強制分級為 Warn（例如解析使用者輸入失敗）。
func WrapWarn(cause error, msg string) *E {
	r := NewWarn(msg)
	r.Cause = cause
	return r
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return e, false
}
