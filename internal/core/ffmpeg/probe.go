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

// Package ffmpeg wraps the external media tools. This file implements the
// container probe: a single ffprobe invocation in JSON mode that yields the
// clip duration and which stream types are present.
package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
)

// probeOutput mirrors the subset of ffprobe's JSON output the probe needs.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
	} `json:"streams"`
}

// ProbeInfo is the raw result of probing a media container.
type ProbeInfo struct {
	// DurationSec is the container duration rounded to the nearest whole
	// second, never negative.
	DurationSec int
	HasVideo    bool
	HasAudio    bool
}

// Probe inspects the container at path. It fails when the file is not a
// decodable media container; callers decide whether that failure is fatal
// (the pipeline substitutes a zero duration and continues).
func (r *Runner) Probe(ctx context.Context, path string) (*ProbeInfo, error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}
	cmd := exec.CommandContext(ctx, r.ffprobePath, args...)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probed probeOutput
	if err := json.Unmarshal(output, &probed); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &ProbeInfo{}
	if seconds, err := strconv.ParseFloat(probed.Format.Duration, 64); err == nil {
		info.DurationSec = int(math.Max(0, math.Round(seconds)))
	}
	for _, stream := range probed.Streams {
		switch stream.CodecType {
		case "video":
			info.HasVideo = true
		case "audio":
			info.HasAudio = true
		}
	}
	return info, nil
}
