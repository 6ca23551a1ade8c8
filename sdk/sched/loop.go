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

package sched

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

const idleWait = time.Minute

var ErrLoopRunning = errors.New("sched: loop already running")

// Loop 以單一 goroutine 依時間執行 Queue 中的任務。
//
// Loop 實作 app.Component：
//   - Run() 阻塞直到 Shutdown。
//   - Shutdown() 先停止計時，再把剩餘任務全部執行完（任務不可取消）。
type Loop struct {
	q       *Queue
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
	running atomic.Bool
}

func NewLoop(q *Queue) *Loop {
	if q == nil {
		q = NewQueue(nil)
	}
	return &Loop{
		q:    q,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Submit 轉交給底層 Queue，使 Loop 本身也滿足 Scheduler。
func (l *Loop) Submit(t Task) { l.q.Submit(t) }

// Queue 回傳底層佇列。
func (l *Loop) Queue() *Queue { return l.q }

func (l *Loop) Run() error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer close(l.done)

	timer := time.NewTimer(idleWait)
	defer timer.Stop()

	for {
		l.q.RunDue()

		wait := idleWait
		if due, ok := l.q.Next(); ok {
			wait = max(due.Sub(l.q.clock.Now()), 0)
		}
		timer.Reset(wait)

		select {
		case <-l.stop:
			l.q.Drain()
			return nil
		case <-l.q.wake:
		case <-timer.C:
		}
	}
}

// Shutdown 要求 Loop 停止並等待剩餘任務執行完畢或 ctx 到期。
// Loop 從未啟動時，直接在呼叫端把剩餘任務跑完。
func (l *Loop) Shutdown(ctx context.Context) error {
	l.once.Do(func() { close(l.stop) })
	if !l.running.Load() {
		l.q.Drain()
		return nil
	}
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
