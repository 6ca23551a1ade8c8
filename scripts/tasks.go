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

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

func goCmd(args ...string) *exec.Cmd {
	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}

func cleanTestCache() error {
	return goCmd("clean", "-testcache").Run()
}

// streamTest 執行 go test 並依 keep 過濾、上色每一行（stderr 併入 stdout）
func streamTest(keep func(line string) bool, args ...string) error {
	if err := cleanTestCache(); err != nil {
		return fmt.Errorf("go clean -testcache: %w", err)
	}
	cmd := exec.Command("go", append([]string{"test"}, args...)...)
	pr, pw := io.Pipe()
	cmd.Stdout, cmd.Stderr = pw, pw
	if err := cmd.Start(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		pw.Close()
		done <- err
	}()

	sc := bufio.NewScanner(pr)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "ok"):
			PrintGreen(line)
		case strings.HasPrefix(line, "FAIL"), strings.Contains(line, "build failed"):
			PrintRed(line)
		case keep(line):
			fmt.Println(line)
		}
	}
	if err := <-done; err != nil {
		return errors.New("tests finished with errors")
	}
	return nil
}

func runTest() error {
	PrintGreen("running tests")
	return streamTest(func(string) bool { return false }, "./...", "-cover", "-count=1")
}

func runTestRace() error {
	PrintGreen("running tests (race)")
	return streamTest(func(string) bool { return false }, "./...", "-race", "-count=1")
}

func runTestDetail() error {
	PrintGreen("running tests (detail)")
	return streamTest(func(line string) bool {
		return !strings.Contains(line, "[no test files]")
	}, "./...", "-v", "-count=1")
}

func runSimSmoke() error {
	PrintGreen("running sim smoke")
	return goCmd("run", "./cmd/sim",
		"-width", "30", "-height", "16", "-bombs", "99",
		"-games", "2000", "-seed", "1", "-pb=false").Run()
}

// runPGO 跑一次較大的模擬取得 cpu profile，再複製成 cmd/svr 的 default.pgo
func runPGO() error {
	PrintGreen("collecting cpu profile")
	if err := goCmd("run", "./cmd/sim",
		"-width", "512", "-height", "512", "-density", "0.12",
		"-games", "400", "-seed", "1", "-pb=false", "-p", "cpu").Run(); err != nil {
		return err
	}
	data, err := os.ReadFile("build/profiling/cpu.pprof")
	if err != nil {
		return err
	}
	if err := os.WriteFile("cmd/svr/default.pgo", data, 0o644); err != nil {
		return err
	}
	PrintGreen("wrote cmd/svr/default.pgo")
	return nil
}
