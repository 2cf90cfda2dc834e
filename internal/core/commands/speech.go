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

// This file defines the optional speech analysis stage.
//
// Logic Flow:
//  1. The stage runs only when a transcriber is configured and the probe
//     found an audio stream; otherwise it stores an empty analysis.
//  2. The audio track is extracted to a mono 16 kHz wav in the working
//     directory, the format speech models expect.
//  3. The transcript comes back with segment timestamps, from which the
//     derived metrics are computed: total speech seconds (each segment's
//     length clamped to zero), words per second (absent when no speech was
//     timed), and the text of segments starting inside the first two seconds.
//  4. Any failure along the way leaves all fields absent; the run continues.
package commands

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/clipsight/clipsight/internal/core/cor"
	"github.com/clipsight/clipsight/internal/core/model"
	"github.com/clipsight/clipsight/internal/core/services"
)

// AudioExtractor is the view of the ffmpeg runner the speech command needs.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, path string, outPath string) error
}

// SpeechAnalyzer is a command that transcribes the audio track and derives
// pacing metrics from the segment timestamps.
type SpeechAnalyzer struct {
	cor.BaseCommand
	extractor   AudioExtractor
	transcriber services.Transcriber
}

// NewSpeechAnalyzer is the constructor for the SpeechAnalyzer command. A nil
// transcriber means the stage is disabled and always yields an empty result.
func NewSpeechAnalyzer(name string, extractor AudioExtractor, transcriber services.Transcriber) *SpeechAnalyzer {
	out := &SpeechAnalyzer{BaseCommand: *cor.NewBaseCommand(name), extractor: extractor, transcriber: transcriber}
	out.InputParamName = GetVideoFileParameterName()
	out.OutputParamName = GetSpeechParameterName()
	return out
}

// IsExecutable requires the video path and a completed probe.
func (t *SpeechAnalyzer) IsExecutable(context cor.Context) bool {
	return t.BaseCommand.IsExecutable(context) && context.Get(GetProbeParameterName()) != nil
}

// Execute transcribes the clip and derives the speech metrics. This stage is
// best-effort and never fails the chain.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (t *SpeechAnalyzer) Execute(context cor.Context) {
	videoPath := context.Get(t.GetInputParam()).(string)
	probe := context.Get(GetProbeParameterName()).(*model.ProbeResult)
	goCtx := context.GetContext()

	analysis := &model.SpeechAnalysis{}
	defer func() {
		context.Add(t.GetOutputParam(), analysis)
		context.Add(cor.CtxOut, analysis)
	}()

	if t.transcriber == nil || !probe.HasAudio {
		t.GetSuccessCounter().Add(goCtx, 1)
		return
	}

	audioPath := filepath.Join(context.GetWorkDir(), "speech.wav")
	if err := t.extractor.ExtractAudio(goCtx, videoPath, audioPath); err != nil {
		t.GetErrorCounter().Add(goCtx, 1)
		slog.WarnContext(goCtx, "audio extraction failed", "error", err)
		return
	}

	transcript, err := t.transcriber.Transcribe(goCtx, audioPath)
	if err != nil {
		t.GetErrorCounter().Add(goCtx, 1)
		slog.WarnContext(goCtx, "transcription failed", "error", err)
		return
	}

	analysis.Transcript = transcript

	var first2s []string
	for _, seg := range transcript.Segments {
		if length := seg.End - seg.Start; length > 0 {
			analysis.SpeechSeconds += length
		}
		if seg.Start < 2.0 && seg.Text != "" {
			first2s = append(first2s, seg.Text)
		}
	}
	analysis.First2sText = normalizeText(strings.Join(first2s, " "))

	if analysis.SpeechSeconds > 0 {
		words := len(strings.Fields(transcript.Text))
		wps := float64(words) / analysis.SpeechSeconds
		analysis.WordsPerSec = &wps
	}

	t.GetSuccessCounter().Add(goCtx, 1)
}
