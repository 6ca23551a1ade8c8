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

// Package app 提供應用程式生命週期管理（App），負責統一啟動與關閉多個 Component。
package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const defaultShutdownTimeout = 5 * time.Second

// App 啟動所有註冊的 Component，並在收到 OS 信號、ctx 結束或任一 Component 返回時協調關閉。
//
// 關閉順序與註冊順序相反：先註冊 sched.Loop、後註冊 HTTP server，
// 關閉時就會先停止收請求，再把剩餘的揭示任務跑完。
type App struct {
	comps   []Component
	timeout time.Duration
	log     *slog.Logger
}

// New 建立一個新的 App 實例。
func New() *App {
	return &App{timeout: defaultShutdownTimeout, log: slog.New(slog.DiscardHandler)}
}

// NewWith 是 New 的語法糖，允許在建立時直接註冊多個 Component。
func NewWith(comps ...Component) *App {
	app := New()
	for _, c := range comps {
		app.Register(c)
	}
	return app
}

// Register 將 Component 註冊到 App 中。
func (a *App) Register(c Component) {
	if c != nil {
		a.comps = append(a.comps, c)
	}
}

// WithLogger 設定關閉過程的 logger
func (a *App) WithLogger(log *slog.Logger) *App {
	if log != nil {
		a.log = log
	}
	return a
}

// WithShutdownTimeout 設定每次關閉的總期限
func (a *App) WithShutdownTimeout(d time.Duration) *App {
	if d > 0 {
		a.timeout = d
	}
	return a
}

// Run 阻塞直到收到 SIGINT/SIGTERM 或任一 Component 返回。
// 收到信號回傳 nil；Component 返回錯誤時回傳該錯誤。
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext 與 Run 相同，但以 ctx 取代 OS 信號。
func (a *App) RunContext(ctx context.Context) error {
	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func(c Component) {
			errCh <- c.Run()
		}(c)
	}

	var err error
	select {
	case <-ctx.Done():
	case err = <-errCh:
		// http.Server 正常關閉時回傳 ErrServerClosed，不算錯誤
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	}
	a.gracefulShutdown()
	return err
}

// gracefulShutdown 在期限內依註冊的相反順序呼叫 Shutdown。
func (a *App) gracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	for i := len(a.comps) - 1; i >= 0; i-- {
		if err := a.comps[i].Shutdown(ctx); err != nil {
			a.log.Error("shutdown err", slog.Any("err", err))
		}
	}
}
