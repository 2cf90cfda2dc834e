// Copyright 2025 Clipsight, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ffmpeg wraps every invocation of the external media tools (ffmpeg
// and ffprobe) behind a small Runner type. All of the pipeline's measurements
// ride on two observations about how these tools behave:
//
//  1. Analysis filters (scene select, silencedetect, volumedetect,
//     signalstats) write their findings as informational log lines on
//     stderr, not as structured output. The Runner therefore captures
//     stderr line by line and hands the lines to the typed event parser in
//     events.go.
//  2. Runs that render to the null muxer often exit non-zero for reasons
//     that do not invalidate the diagnostics already printed. Callers in
//     the analysis stages treat a Runner error as "no measurement" and
//     continue; the Runner itself never panics or aborts the process.
//
// Every invocation is bound to a context.Context, so a cancelled request
// kills the child process.
package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes ffmpeg and ffprobe with captured diagnostics.
type Runner struct {
	ffmpegPath  string
	ffprobePath string
}

// NewRunner resolves the tool binaries and returns a Runner. Explicit paths
// from configuration win; empty paths fall back to a PATH lookup.
//
// Inputs:
//   - ffmpegPath: path to the ffmpeg binary, or "" to search PATH.
//   - ffprobePath: path to the ffprobe binary, or "" to search PATH.
//
// Outputs:
//   - *Runner: the ready-to-use runner.
//   - error: when either tool cannot be found.
func NewRunner(ffmpegPath string, ffprobePath string) (*Runner, error) {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	resolvedFFmpeg, err := exec.LookPath(ffmpegPath)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}
	resolvedFFprobe, err := exec.LookPath(ffprobePath)
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found: %w", err)
	}
	return &Runner{ffmpegPath: resolvedFFmpeg, ffprobePath: resolvedFFprobe}, nil
}

// run executes ffmpeg with the given arguments and returns the full stderr
// transcript. The transcript is returned even when the tool exits non-zero,
// because the diagnostic lines printed before the failure are usually the
// whole point of the invocation.
func (r *Runner) run(ctx context.Context, args ...string) (string, error) {
	baseArgs := []string{"-y", "-hide_banner", "-nostdin"}
	cmd := exec.CommandContext(ctx, r.ffmpegPath, append(baseArgs, args...)...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", fmt.Errorf("failed to create stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	var transcript strings.Builder
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		transcript.WriteString(scanner.Text())
		transcript.WriteByte('\n')
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return transcript.String(), ctx.Err()
		}
		return transcript.String(), fmt.Errorf("ffmpeg execution failed: %w", err)
	}
	return transcript.String(), nil
}
