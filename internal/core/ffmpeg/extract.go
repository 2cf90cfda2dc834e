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

// Package ffmpeg wraps the external media tools. This file holds the
// extraction invocations, which produce derived artifacts (still frames,
// sampled frame sequences, audio tracks) inside the run's working directory.
package ffmpeg

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
)

// ExtractFrame writes a single still frame taken at the given offset
// (seconds), downscaled to scaleWidth, to outPath.
func (r *Runner) ExtractFrame(ctx context.Context, path string, offset float64, scaleWidth int, outPath string) error {
	_, err := r.run(ctx,
		"-ss", fmt.Sprintf("%g", offset),
		"-i", path,
		"-frames:v", "1",
		"-vf", fmt.Sprintf("scale=%d:-2", scaleWidth),
		"-q:v", "2",
		outPath,
	)
	return err
}

// SampleFrames extracts frames at a fixed rate (frames per second),
// downscaled to scaleWidth, into dir as JPEG files. It returns the written
// file paths in frame order.
func (r *Runner) SampleFrames(ctx context.Context, path string, fps float64, scaleWidth int, dir string) ([]string, error) {
	pattern := filepath.Join(dir, "sample-%05d.jpg")
	_, runErr := r.run(ctx,
		"-i", path,
		"-vf", fmt.Sprintf("fps=%g,scale=%d:-2", fps, scaleWidth),
		"-q:v", "5",
		pattern,
	)

	frames, globErr := filepath.Glob(filepath.Join(dir, "sample-*.jpg"))
	if globErr != nil {
		return nil, globErr
	}
	sort.Strings(frames)
	// The sequence numbering makes lexical order frame order.
	if runErr != nil && len(frames) == 0 {
		return nil, runErr
	}
	return frames, nil
}

// ExtractAudio writes the clip's audio track as mono 16 kHz PCM WAV to
// outPath, the layout the speech-to-text service expects.
func (r *Runner) ExtractAudio(ctx context.Context, path string, outPath string) error {
	_, err := r.run(ctx,
		"-i", path,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		outPath,
	)
	return err
}
