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

// This file defines the first command in the analysis chain: probing the
// uploaded container for duration and stream presence.
//
// Logic Flow:
//  1. It receives the local path of the uploaded video from the context.
//  2. It asks the prober (ffprobe behind an interface) for the container
//     metadata.
//  3. A probe failure is absorbed like every other tool failure: the stage
//     stores a zero-valued result and the run continues. Rejecting files
//     that are not media at all is the upload boundary's job.
//  4. The result is stored for every downstream stage; almost all of them
//     branch on duration or stream presence.
package commands

import (
	"context"
	"log/slog"

	"github.com/clipsight/clipsight/internal/core/cor"
	"github.com/clipsight/clipsight/internal/core/ffmpeg"
	"github.com/clipsight/clipsight/internal/core/model"
)

// MediaProber is the narrow view of the ffmpeg runner this command needs.
type MediaProber interface {
	Probe(ctx context.Context, path string) (*ffmpeg.ProbeInfo, error)
}

// MediaProbe is a command that extracts container-level metadata from the
// uploaded file.
type MediaProbe struct {
	cor.BaseCommand
	prober MediaProber
}

// NewMediaProbe is the constructor for the MediaProbe command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - prober: The media probing implementation.
//
// Outputs:
//   - *MediaProbe: A pointer to the newly instantiated command.
func NewMediaProbe(name string, prober MediaProber) *MediaProbe {
	out := &MediaProbe{BaseCommand: *cor.NewBaseCommand(name), prober: prober}
	out.InputParamName = GetVideoFileParameterName()
	out.OutputParamName = GetProbeParameterName()
	return out
}

// Execute probes the uploaded file and stores the result.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (t *MediaProbe) Execute(context cor.Context) {
	videoPath := context.Get(t.GetInputParam()).(string)

	result := &model.ProbeResult{}
	info, err := t.prober.Probe(context.GetContext(), videoPath)
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		slog.WarnContext(context.GetContext(), "media probe failed", "error", err)
	} else {
		result.DurationSec = info.DurationSec
		result.HasVideo = info.HasVideo
		result.HasAudio = info.HasAudio
	}
	slog.InfoContext(context.GetContext(), "probed media",
		"duration_sec", result.DurationSec,
		"has_audio", result.HasAudio)

	if err == nil {
		t.GetSuccessCounter().Add(context.GetContext(), 1)
	}
	context.Add(t.GetOutputParam(), result)
	context.Add(cor.CtxOut, result)
}
