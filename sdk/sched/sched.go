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

// Package sched 提供單執行緒、合作式的延遲任務佇列。
//
// 任務依 (到期時間, Priority, 提交順序) 排序後逐一執行，任務之間不會交錯。
// 任務一旦提交就不能取消。
//
//   - Queue：純資料結構 + 手動推進（RunDue / Drain），測試與模擬器直接使用。
//   - Loop：以單一 goroutine 依時間驅動 Queue，實作 app.Component。
package sched

import (
	"container/heap"
	"sync"
	"time"
)

// Task 是一個延遲執行的工作。
//   - Priority: 同時到期時，數字小者先執行
//   - Delay: 相對於提交時刻的延遲；只保證先後，不保證準時
type Task struct {
	Name     string
	Priority int
	Delay    time.Duration
	Run      func()
}

// Scheduler 是提交任務的最小介面。
type Scheduler interface {
	Submit(Task)
}

// Drainer 可以同步執行完所有待辦任務。
type Drainer interface {
	Drain() int
}

// Clock 提供目前時間，讓測試可以換成 ManualClock。
type Clock interface {
	Now() time.Time
}

// SystemClock 使用系統時間。
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock 只在 Advance 時前進。
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// ------------------------------------------------------------
// Queue
// ------------------------------------------------------------

type item struct {
	task Task
	due  time.Time
	seq  uint64
}

type taskHeap []*item

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if !a.due.Equal(b.due) {
		return a.due.Before(b.due)
	}
	if a.task.Priority != b.task.Priority {
		return a.task.Priority < b.task.Priority
	}
	return a.seq < b.seq
}
func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *taskHeap) Push(x any)   { *h = append(*h, x.(*item)) }
func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}

// Queue 是可並行提交、序列執行的延遲任務佇列。
type Queue struct {
	mu    sync.Mutex
	h     taskHeap
	seq   uint64
	clock Clock

	// exec 保證任何時刻最多只有一個任務在執行
	exec sync.Mutex
	// wake 通知 Loop 有新任務（容量 1，滿了就略過）
	wake chan struct{}
}

// NewQueue 建立佇列；clock 為 nil 時使用 SystemClock。
func NewQueue(clock Clock) *Queue {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Queue{clock: clock, wake: make(chan struct{}, 1)}
}

// Submit 提交任務。Run 為 nil 的任務直接忽略。
func (q *Queue) Submit(t Task) {
	if t.Run == nil {
		return
	}
	if t.Delay < 0 {
		t.Delay = 0
	}
	q.mu.Lock()
	q.seq++
	heap.Push(&q.h, &item{task: t, due: q.clock.Now().Add(t.Delay), seq: q.seq})
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Len 回傳待辦任務數。
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.h)
}

// Next 回傳最早到期的時間；佇列為空時 ok 為 false。
func (q *Queue) Next() (due time.Time, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.h) == 0 {
		return time.Time{}, false
	}
	return q.h[0].due, true
}

// RunDue 依序執行所有已到期的任務，回傳執行數。
func (q *Queue) RunDue() int {
	q.exec.Lock()
	defer q.exec.Unlock()
	n := 0
	for {
		it := q.pop(true)
		if it == nil {
			return n
		}
		it.task.Run()
		n++
	}
}

// Drain 忽略到期時間，依序執行所有待辦任務（含執行中新提交的任務），回傳執行數。
func (q *Queue) Drain() int {
	q.exec.Lock()
	defer q.exec.Unlock()
	n := 0
	for {
		it := q.pop(false)
		if it == nil {
			return n
		}
		it.task.Run()
		n++
	}
}

func (q *Queue) pop(onlyDue bool) *item {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.h) == 0 {
		return nil
	}
	if onlyDue && q.h[0].due.After(q.clock.Now()) {
		return nil
	}
	return heap.Pop(&q.h).(*item)
}
