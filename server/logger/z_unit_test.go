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

package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/zintix-labs/sweeplab/errs"
)

type syncBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuf) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuf) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]LogMode{"dev": ModeDev, "PROD": ModeProd, " silence ": ModeSilence, "": ModeDev} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := ParseMode("loud"); !errors.Is(err, errs.ErrBadSetting) {
		t.Fatalf("want ErrBadSetting, got %v", err)
	}
}

func TestAsyncHandlerDrainsOnClose(t *testing.T) {
	buf := &syncBuf{}
	ah := NewAsyncHandler(slog.NewJSONHandler(buf, nil), 64)
	log := slog.New(ah).With(slog.String("svc", "sweeplab"))
	for i := 0; i < 10; i++ {
		log.Info("session created", slog.Int("i", i))
	}
	ah.Close()
	out := buf.String()
	if n := strings.Count(out, "session created"); n != 10 {
		t.Fatalf("want 10 records, got %d\n%s", n, out)
	}
	if !strings.Contains(out, `"svc":"sweeplab"`) {
		t.Fatalf("attrs lost: %s", out)
	}

	log.Info("after close")
	if ah.Dropped() != 1 {
		t.Fatalf("records after close should be dropped, got %d", ah.Dropped())
	}
	ah.Close()
}

func TestNewToProdIsJSON(t *testing.T) {
	var buf bytes.Buffer
	NewTo(&buf, ModeProd).Debug("hidden")
	NewTo(&buf, ModeProd).Info("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), `"msg":"shown"`) {
		t.Fatalf("unexpected prod output %q", buf.String())
	}
}
