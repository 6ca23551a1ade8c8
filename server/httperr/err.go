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

// Package httperr 把 errs.E 映射成 HTTP 回應，只屬於 HTTP 邊界層。
package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/sweeplab/dto"
	"github.com/zintix-labs/sweeplab/errs"
)

// StatusCode 將錯誤映射成 HTTP status code。
//
// 規則：
//   - ctx timeout/cancel  → 504/408
//   - ErrNoSession        → 404
//   - ErrSessionLimit     → 429
//   - 其他 errs.Warn      → 400
//   - errs.Fatal / 其他   → 500
func StatusCode(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	case errors.Is(err, errs.ErrNoSession):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrSessionLimit):
		return http.StatusTooManyRequests
	}

	if e, ok := errs.AsErr(err); ok && e.ErrLv == errs.Warn {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Errs 寫回 JSON 錯誤（dto.ErrorBody）。
func Errs(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	body := dto.ErrorBody{Error: err.Error()}
	if e, ok := errs.AsErr(err); ok {
		body.Level = e.ErrLv.String()
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(StatusCode(err))
	_ = json.NewEncoder(w).Encode(body)
}

// Log 只記錄值得注意的錯誤：408/429 記 warn，5xx 記 error，其餘 4xx 交給 access log。
func Log(log *slog.Logger, msg string, err error) {
	if err == nil || log == nil {
		return
	}
	status := StatusCode(err)
	switch {
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests:
		log.Warn(msg, slog.Any("err", err))
	case status >= 500 && status < 600:
		log.Error(msg, slog.Any("err", err))
	}
}
