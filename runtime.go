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

package sweeplab

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/zintix-labs/sweeplab/dto"
	"github.com/zintix-labs/sweeplab/errs"
	"github.com/zintix-labs/sweeplab/field"
	"github.com/zintix-labs/sweeplab/sdk/sched"
	"github.com/zintix-labs/sweeplab/spec"
	"github.com/zintix-labs/sweeplab/stats"
)

// Runtime 管理進行中的各局。
//
// 每局一把鎖：同一局的點擊、讀窗口、輸局揭示任務互斥；不同局互不影響。
// 所有局共用一個 sched.Loop 執行輸局揭示，Loop 以 app.Component 形式交給上層管理生命週期。
type Runtime struct {
	lab  *Lab
	log  *slog.Logger
	loop *sched.Loop
	max  int
	ttl  time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session

	// lifecycle
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
}

// NewRuntime 建立 Runtime。閒置逾時預設為 spec.DefaultSessionTTL。log 為 nil 時丟棄所有 log；maxSessions < 1 時用 spec.DefaultMaxSessions。
func NewRuntime(lab *Lab, log *slog.Logger, maxSessions int) (*Runtime, error) {
	if lab == nil {
		return nil, errs.NewFatal("lab is required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if maxSessions < 1 {
		maxSessions = spec.DefaultMaxSessions
	}
	return &Runtime{
		lab:      lab,
		log:      log,
		loop:     sched.NewLoop(sched.NewQueue(sched.SystemClock{})),
		max:      maxSessions,
		ttl:      spec.DefaultSessionTTL,
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}, nil
}

// WithSessionTTL 設定閒置逾時；d <= 0 表示永不逾時
func (rt *Runtime) WithSessionTTL(d time.Duration) *Runtime {
	rt.ttl = max(d, 0)
	return rt
}

// Loop 回傳共用的排程迴圈，呼叫端需把它註冊到 app.App 執行。
func (rt *Runtime) Loop() *sched.Loop { return rt.loop }

// Lab 回傳建盤用的 Lab
func (rt *Runtime) Lab() *Lab { return rt.lab }

// Create 開新局。fs 為 nil 時使用 Lab 預設設定。
func (rt *Runtime) Create(ctx context.Context, fs *spec.FieldSetting) (*Session, error) {
	select {
	case <-ctx.Done():
		return nil, errs.NewWarn("create canceled/timeout: " + ctx.Err().Error())
	case <-rt.done:
		return nil, errs.NewFatal("runtime closed")
	default:
	}

	rt.mu.RLock()
	full := len(rt.sessions) >= rt.max
	rt.mu.RUnlock()
	// 滿了先回收閒置的局
	if full && rt.Expire(time.Now()) == 0 {
		return nil, errs.Of(errs.ErrSessionLimit, fmt.Sprintf("max=%d", rt.max))
	}

	chunk := rt.lab.setting.ChunkSize
	if fs != nil && fs.ChunkSize > 0 {
		chunk = fs.ChunkSize
	}
	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		Created:   now,
		chunkSize: chunk,
		log:       rt.log,
	}
	s.used.Store(now.UnixNano())
	f, seed, err := rt.lab.NewField(fs, field.WithScheduler(&lockedScheduler{s: s, next: rt.loop}))
	if err != nil {
		return nil, err
	}
	s.Seed = seed
	s.f = f
	// 小盤面上預設 chunk 不能比盤面大，否則不帶 size 的請求永遠越界
	s.chunkSize = min(s.chunkSize, f.Width(), f.Height())

	rt.mu.Lock()
	if len(rt.sessions) >= rt.max {
		rt.mu.Unlock()
		return nil, errs.Of(errs.ErrSessionLimit, fmt.Sprintf("max=%d", rt.max))
	}
	rt.sessions[s.ID] = s
	rt.mu.Unlock()

	rt.log.Info("session created",
		slog.String("id", s.ID),
		slog.Int("width", f.Width()),
		slog.Int("height", f.Height()),
		slog.Int("bombs", f.BombsCount()),
		slog.Int64("seed", seed))
	return s, nil
}

// Get 依 id 取得局
func (rt *Runtime) Get(id string) (*Session, error) {
	rt.mu.RLock()
	s, ok := rt.sessions[id]
	rt.mu.RUnlock()
	if !ok {
		return nil, errs.Of(errs.ErrNoSession, "id="+id)
	}
	return s, nil
}

// Delete 移除一局。尚未執行的揭示任務仍會跑完，只是不再有人讀取。
func (rt *Runtime) Delete(id string) error {
	rt.mu.Lock()
	_, ok := rt.sessions[id]
	delete(rt.sessions, id)
	rt.mu.Unlock()
	if !ok {
		return errs.Of(errs.ErrNoSession, "id="+id)
	}
	rt.log.Info("session deleted", slog.String("id", id))
	return nil
}

// Expire 移除在 now 之前已閒置超過 ttl 的局，回傳移除數。ttl 為 0 時不做事。
func (rt *Runtime) Expire(now time.Time) int {
	if rt.ttl <= 0 {
		return 0
	}
	deadline := now.Add(-rt.ttl).UnixNano()
	var gone []string
	rt.mu.Lock()
	for id, s := range rt.sessions {
		if s.used.Load() < deadline {
			delete(rt.sessions, id)
			gone = append(gone, id)
		}
	}
	rt.mu.Unlock()
	for _, id := range gone {
		rt.log.Info("session expired", slog.String("id", id))
	}
	return len(gone)
}

// Len 回傳進行中的局數
func (rt *Runtime) Len() int {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return len(rt.sessions)
}

// Close 停止接受新局。可重複呼叫。
func (rt *Runtime) Close() {
	rt.closeOnce.Do(func() {
		rt.closed.Store(true)
		close(rt.done)
	})
}

// Closed reports whether the runtime has been closed.
func (rt *Runtime) Closed() bool {
	return rt.closed.Load()
}

// ------------------------------------------------------------
// Session
// ------------------------------------------------------------

// Session 是一局遊戲。方法皆可並行呼叫。
type Session struct {
	ID      string
	Seed    int64
	Created time.Time

	mu        sync.Mutex
	f         *field.Field
	chunkSize int
	log       *slog.Logger
	used      atomic.Int64 // 最後使用時間（UnixNano）
}

// Click 對 (row, col) 按下 button（0 翻開、2 插旗，其他忽略）。座標越界回傳 ErrBadCell。
func (s *Session) Click(row int, col int, button int) (dto.ClickResult, error) {
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.f.InBounds(row, col) {
		return dto.ClickResult{}, errs.Of(errs.ErrBadCell, fmt.Sprintf("row=%d col=%d", row, col))
	}
	before := s.f.Status()
	s.f.Click(row, col, button)
	if after := s.f.Status(); after != before {
		s.log.Info("session finished", slog.String("id", s.ID), slog.String("status", after.String()))
	}
	return dto.ClickResult{
		Cell:   dto.Cell{Row: row, Col: col},
		Button: button,
		Glyph:  s.f.Get(row, col).Glyph(),
		Game:   s.view(),
	}, nil
}

// Chunk 讀取從 (row, col) 起 size x size 的窗口，每格一個 tile.State 位元組。
// 窗口必須完全落在盤面內，否則回傳 ErrWindow。
func (s *Session) Chunk(row int, col int, size int) ([]byte, error) {
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.f.CheckWindow(row, col, size); err != nil {
		return nil, err
	}
	dst := make([]byte, size*size)
	s.f.Chunk(row, col, size, dst)
	return dst, nil
}

// ChunkSize 回傳此局建議的窗口大小
func (s *Session) ChunkSize() int { return s.chunkSize }

// View 回傳目前摘要
func (s *Session) View() dto.GameView {
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

// Audit 對目前佈雷做列帶卡方檢定
func (s *Session) Audit(bands int) *stats.LayoutAudit {
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()
	return stats.AuditLayout(s.f, bands)
}

// Do 在持鎖狀態下執行 fn，給需要直接操作盤面的呼叫端（測試、工具）。
func (s *Session) Do(fn func(f *field.Field)) {
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.f)
}

// LastUsed 回傳最後一次操作的時間
func (s *Session) LastUsed() time.Time { return time.Unix(0, s.used.Load()) }

func (s *Session) touch() { s.used.Store(time.Now().UnixNano()) }

func (s *Session) view() dto.GameView {
	v := dto.GameView{
		ID:         s.ID,
		Seed:       s.Seed,
		ChunkSize:  s.chunkSize,
		FirstClick: s.f.FirstClick(),
		Board:      *stats.NewBoardReport(s.f),
	}
	if idx := s.f.Exploded(); idx >= 0 {
		r, c := s.f.Unflatten(idx)
		v.Exploded = &dto.Cell{Row: r, Col: c}
	}
	return v
}

// lockedScheduler 讓揭示任務在執行時取得該局的鎖
type lockedScheduler struct {
	s    *Session
	next sched.Scheduler
}

func (ls *lockedScheduler) Submit(t sched.Task) {
	run := t.Run
	if run == nil {
		return
	}
	t.Name = ls.s.ID + "/" + t.Name
	t.Run = func() {
		ls.s.mu.Lock()
		defer ls.s.mu.Unlock()
		run()
	}
	ls.next.Submit(t)
}
