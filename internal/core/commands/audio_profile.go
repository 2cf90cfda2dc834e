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

// This file defines the audio profiling command: silence detection and
// loudness measurement over the full clip.
//
// Logic Flow:
//  1. When the probe reported no audio stream, the stage stores an empty
//     profile and returns; the report renders empty silences and null
//     loudness.
//  2. Silence detection runs first. A tool failure here is quietly absorbed:
//     whatever intervals were parsed before the failure are kept.
//  3. Loudness measurement runs second and independently; failure leaves the
//     loudness field nil.
//  4. The combined profile is stored for the cut-detection fallback, the
//     digest, and the final report.
package commands

import (
	"context"
	"log/slog"

	"github.com/clipsight/clipsight/internal/cloud"
	"github.com/clipsight/clipsight/internal/core/cor"
	"github.com/clipsight/clipsight/internal/core/model"
)

// AudioAnalyzer is the view of the ffmpeg runner the audio profiling
// command needs.
type AudioAnalyzer interface {
	DetectSilence(ctx context.Context, path string, noiseDb float64, minDuration float64) ([]model.SilenceInterval, bool, error)
	MeasureVolume(ctx context.Context, path string) (*model.LoudnessStats, error)
}

// AudioProfiler is a command that measures silence intervals and loudness.
type AudioProfiler struct {
	cor.BaseCommand
	analyzer AudioAnalyzer
	settings cloud.Analysis
}

// NewAudioProfiler is the constructor for the AudioProfiler command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - analyzer: The audio analysis implementation.
//   - settings: The analysis tunables (noise floor, minimum silence length).
//
// Outputs:
//   - *AudioProfiler: A pointer to the newly instantiated command.
func NewAudioProfiler(name string, analyzer AudioAnalyzer, settings cloud.Analysis) *AudioProfiler {
	out := &AudioProfiler{BaseCommand: *cor.NewBaseCommand(name), analyzer: analyzer, settings: settings}
	out.InputParamName = GetVideoFileParameterName()
	out.OutputParamName = GetAudioProfileParameterName()
	return out
}

// IsExecutable requires the video path and a completed probe.
func (t *AudioProfiler) IsExecutable(context cor.Context) bool {
	return t.BaseCommand.IsExecutable(context) && context.Get(GetProbeParameterName()) != nil
}

// Execute measures the audio profile of the clip. This stage is best-effort:
// it records whatever it could measure and never fails the chain.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (t *AudioProfiler) Execute(context cor.Context) {
	videoPath := context.Get(t.GetInputParam()).(string)
	probe := context.Get(GetProbeParameterName()).(*model.ProbeResult)

	profile := &model.AudioProfile{Silences: []model.SilenceInterval{}}

	if probe.HasAudio {
		silences, open, err := t.analyzer.DetectSilence(
			context.GetContext(), videoPath, t.settings.SilenceNoiseDb, t.settings.SilenceMinDuration)
		if err != nil {
			slog.WarnContext(context.GetContext(), "silence detection failed", "error", err)
		}
		if silences != nil {
			profile.Silences = silences
		}
		profile.OpenInterval = open

		loudness, err := t.analyzer.MeasureVolume(context.GetContext(), videoPath)
		if err != nil {
			slog.WarnContext(context.GetContext(), "volume measurement failed", "error", err)
		} else {
			profile.Loudness = loudness
		}
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), profile)
	context.Add(cor.CtxOut, profile)
}
