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
	"bytes"
	"context"
	"errors"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/zintix-labs/sweeplab/errs"
	"github.com/zintix-labs/sweeplab/field"
	"github.com/zintix-labs/sweeplab/sdk/tile"
	"github.com/zintix-labs/sweeplab/spec"
)

func intp(v int) *int       { return &v }
func int64p(v int64) *int64 { return &v }

func newTestLab(t *testing.T, w, h, bombs int) *Lab {
	t.Helper()
	lab, err := New(nil, spec.FieldSetting{Width: w, Height: h, Bombs: intp(bombs), Seed: int64p(1)})
	if err != nil {
		t.Fatalf("new lab: %v", err)
	}
	return lab
}

func boardBytes(f *field.Field) []byte {
	var out []byte
	for r := 0; r < f.Height(); r++ {
		out = append(out, f.Row(r)...)
	}
	return out
}

func TestLabSameSeedSameLayout(t *testing.T) {
	lab := newTestLab(t, 20, 20, 50)
	a, err := lab.NewFieldWithSeed(lab.Setting(), 9)
	if err != nil {
		t.Fatalf("field: %v", err)
	}
	b, _ := lab.NewFieldWithSeed(lab.Setting(), 9)
	if !bytes.Equal(boardBytes(a), boardBytes(b)) || a.RescueIndex() != b.RescueIndex() {
		t.Fatalf("same seed should give same layout")
	}
	c, _ := lab.NewFieldWithSeed(lab.Setting(), 10)
	if bytes.Equal(boardBytes(a), boardBytes(c)) {
		t.Fatalf("different seeds gave identical layouts")
	}
}

func TestLabNewField(t *testing.T) {
	lab := newTestLab(t, 10, 10, 10)
	f, seed, err := lab.NewField(&spec.FieldSetting{Width: 8, Height: 6, Density: 0.25, Seed: int64p(77)})
	if err != nil {
		t.Fatalf("new field: %v", err)
	}
	if seed != 77 || f.Width() != 8 || f.BombsCount() != 12 {
		t.Fatalf("unexpected field seed=%d w=%d bombs=%d", seed, f.Width(), f.BombsCount())
	}
	_, s1, _ := lab.NewField(nil)
	_, s2, _ := lab.NewField(nil)
	if s1 == s2 {
		t.Fatalf("default fields should get fresh seeds")
	}
	if _, _, err := lab.NewField(&spec.FieldSetting{Width: 3, Height: 3, Bombs: intp(9)}); !errors.Is(err, errs.ErrBadBombs) {
		t.Fatalf("want ErrBadBombs, got %v", err)
	}
}

func TestSeedMakerUnique(t *testing.T) {
	sm := newSeedMaker(42)
	seen := make(map[int64]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		v := sm.next()
		if v < 0 {
			t.Fatalf("negative seed %d", v)
		}
		if _, ok := seen[v]; ok {
			t.Fatalf("duplicate seed %d", v)
		}
		seen[v] = struct{}{}
	}
}

func TestRuntimeSessions(t *testing.T) {
	rt, err := NewRuntime(newTestLab(t, 10, 10, 10), nil, 2)
	if err != nil {
		t.Fatalf("runtime: %v", err)
	}
	ctx := context.Background()
	a, err := rt.Create(ctx, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := rt.Create(ctx, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := rt.Create(ctx, nil); !errors.Is(err, errs.ErrSessionLimit) {
		t.Fatalf("want session limit, got %v", err)
	}
	got, err := rt.Get(a.ID)
	if err != nil || got != a {
		t.Fatalf("get: %v", err)
	}
	if err := rt.Delete(a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := rt.Get(a.ID); !errors.Is(err, errs.ErrNoSession) {
		t.Fatalf("want no session, got %v", err)
	}
	if err := rt.Delete(a.ID); !errors.Is(err, errs.ErrNoSession) {
		t.Fatalf("double delete should fail, got %v", err)
	}
	if rt.Len() != 1 {
		t.Fatalf("want 1 session, got %d", rt.Len())
	}

	rt.Close()
	if _, err := rt.Create(ctx, nil); err == nil || !rt.Closed() {
		t.Fatalf("closed runtime must reject create")
	}
}

func TestRuntimeExpire(t *testing.T) {
	rt, _ := NewRuntime(newTestLab(t, 10, 10, 10), nil, 2)
	ctx := context.Background()
	a, _ := rt.Create(ctx, nil)
	b, _ := rt.Create(ctx, nil)

	if n := rt.Expire(time.Now()); n != 0 {
		t.Fatalf("fresh sessions expired: %d", n)
	}
	later := b.LastUsed().Add(spec.DefaultSessionTTL + time.Second)
	a.View()
	if n := rt.Expire(later); n != 2 || rt.Len() != 0 {
		t.Fatalf("want both expired, got %d left %d", n, rt.Len())
	}

	rt.WithSessionTTL(0)
	c, _ := rt.Create(ctx, nil)
	if n := rt.Expire(c.LastUsed().Add(24 * time.Hour)); n != 0 {
		t.Fatalf("ttl 0 must never expire")
	}
}

func TestRuntimeCreateReclaimsIdle(t *testing.T) {
	rt, _ := NewRuntime(newTestLab(t, 10, 10, 10), nil, 1)
	rt.WithSessionTTL(time.Millisecond)
	old, err := rt.Create(context.Background(), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	fresh, err := rt.Create(context.Background(), nil)
	if err != nil {
		t.Fatalf("idle session should be reclaimed: %v", err)
	}
	if _, err := rt.Get(old.ID); !errors.Is(err, errs.ErrNoSession) || fresh.ID == old.ID {
		t.Fatalf("old session still present")
	}
}

func TestSessionClickBounds(t *testing.T) {
	rt, _ := NewRuntime(newTestLab(t, 10, 10, 10), nil, 4)
	s, _ := rt.Create(context.Background(), nil)
	if _, err := s.Click(10, 0, field.ButtonOpen); !errors.Is(err, errs.ErrBadCell) {
		t.Fatalf("want ErrBadCell, got %v", err)
	}
	if _, err := s.Chunk(5, 5, 6); !errors.Is(err, errs.ErrWindow) {
		t.Fatalf("want ErrWindow, got %v", err)
	}
	res, err := s.Click(2, 3, field.ButtonFlag)
	if err != nil || res.Glyph != tile.Flag || res.Game.Board.Flagged != 1 {
		t.Fatalf("flag click: %+v %v", res, err)
	}
	buf, err := s.Chunk(0, 0, 4)
	if err != nil || len(buf) != 16 || tile.State(buf[2*4+3]).Number() != tile.Flag {
		// (2,3) 在 4x4 窗口內
		t.Fatalf("chunk: %v %v", buf, err)
	}
}

func TestSessionLossRevealedByLoop(t *testing.T) {
	rt, _ := NewRuntime(newTestLab(t, 10, 10, 15), nil, 4)
	s, err := rt.Create(context.Background(), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- rt.Loop().Run() }()

	var rescue, bomb = -1, -1
	var rr, rc, br, bc int
	s.Do(func(f *field.Field) {
		rescue = f.RescueIndex()
		rr, rc = f.Unflatten(rescue)
	})
	if _, err := s.Click(rr, rc, field.ButtonOpen); err != nil {
		t.Fatalf("first click: %v", err)
	}
	s.Do(func(f *field.Field) {
		for i := 0; i < f.Len(); i++ {
			if f.HasBomb(i) {
				bomb = i
				break
			}
		}
		br, bc = f.Unflatten(bomb)
	})
	res, err := s.Click(br, bc, field.ButtonOpen)
	if err != nil {
		t.Fatalf("bomb click: %v", err)
	}
	if res.Game.Board.Status != "lost" || res.Game.Exploded == nil || *res.Game.Exploded != (res.Cell) {
		t.Fatalf("expected loss at clicked cell: %+v", res.Game)
	}
	if res.Glyph != tile.Exploded {
		t.Fatalf("clicked cell glyph %d", res.Glyph)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rt.Loop().Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("loop run: %v", err)
	}

	buf, err := s.Chunk(0, 0, 10)
	if err != nil {
		t.Fatalf("chunk: %v", err)
	}
	for i, b := range buf {
		st := tile.State(b)
		if !st.Opened() {
			t.Fatalf("cell %d not revealed", i)
		}
		if st.HasBomb() && i != bomb && st.Number() != tile.Bomb {
			t.Fatalf("bomb %d glyph %d", i, st.Number())
		}
	}
}

func TestSimulatorDeterministic(t *testing.T) {
	lab := newTestLab(t, 9, 9, 10)
	sim, err := NewSimulator(lab, nil, 123)
	if err != nil {
		t.Fatalf("sim: %v", err)
	}
	a, _, err := sim.Run(40, 1, false)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	b, _, err := sim.Run(40, 4, false)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if a.Games != 40 || a.Wins != b.Wins || a.Losses != b.Losses || a.OpenedRatio != b.OpenedRatio {
		t.Fatalf("results depend on worker count: %+v vs %+v", a, b)
	}
	if a.Wins+a.Losses != 40 {
		t.Fatalf("every game must finish: wins=%d losses=%d", a.Wins, a.Losses)
	}
	if b.Setting.Workers != 4 || a.Setting.Bombs != 10 {
		t.Fatalf("unexpected setting %+v", b.Setting)
	}
}

func TestSimulatorNoBombs(t *testing.T) {
	lab := newTestLab(t, 5, 5, 0)
	sim, _ := NewSimulator(lab, nil, 1)
	r, err := sim.Play(99)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if !r.Won || r.Clicks != 1 || r.FirstOpen != 25 {
		t.Fatalf("zero-bomb game should be won in one click: %+v", r)
	}
	if _, _, err := sim.Run(0, 1, false); err == nil {
		t.Fatalf("zero games should fail")
	}
}

// 授權標頭後要空一行，否則會被當成 package doc；import 每組內需排序
func TestSourceLayout(t *testing.T) {
	const licenseEnd = "// limitations under the License.\n"
	fset := token.NewFileSet()
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != "." && (strings.HasPrefix(d.Name(), "_") || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if i := bytes.Index(src, []byte(licenseEnd)); i >= 0 {
			rest := src[i+len(licenseEnd):]
			if len(rest) == 0 || rest[0] != '\n' {
				t.Errorf("%s: missing blank line after license header", path)
			}
		}
		f, err := parser.ParseFile(fset, path, src, parser.ImportsOnly)
		if err != nil {
			return err
		}
		prevLine, prev := -1, ""
		for _, im := range f.Imports {
			line := fset.Position(im.Pos()).Line
			p, _ := strconv.Unquote(im.Path.Value)
			if line == prevLine+1 && p < prev {
				t.Errorf("%s: import %q should sort before %q", path, p, prev)
			}
			prevLine, prev = line, p
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
