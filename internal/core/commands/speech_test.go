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

package commands_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/clipsight/clipsight/internal/core/commands"
	"github.com/clipsight/clipsight/internal/core/model"
	"github.com/stretchr/testify/assert"
)

// fakeAudioExtractor writes a stand-in wav file, or fails.
type fakeAudioExtractor struct {
	err error
}

func (f *fakeAudioExtractor) ExtractAudio(_ context.Context, _ string, outPath string) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outPath, []byte("RIFF"), 0o600)
}

// fakeTranscriber returns a canned transcript, or fails.
type fakeTranscriber struct {
	transcript *model.Transcript
	err        error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string) (*model.Transcript, error) {
	return f.transcript, f.err
}

// TestSpeechAnalyzerDerivesMetrics verifies words-per-second uses timed
// speech seconds and the first-2s text collects segments starting before the
// two second mark.
func TestSpeechAnalyzerDerivesMetrics(t *testing.T) {
	transcriber := &fakeTranscriber{transcript: &model.Transcript{
		Text: "stop scrolling this one trick saves hours every week",
		Segments: []model.TranscriptSegment{
			{Start: 0.2, End: 1.5, Text: "stop scrolling"},
			{Start: 1.9, End: 3.0, Text: "this one trick"},
			{Start: 3.5, End: 4.7, Text: "saves hours every week"},
		},
	}}

	chCtx := newTestContext(t)
	chCtx.Add(commands.GetVideoFileParameterName(), "clip.mp4")
	chCtx.Add(commands.GetProbeParameterName(), &model.ProbeResult{DurationSec: 10, HasAudio: true})

	commands.NewSpeechAnalyzer("analyze-speech", &fakeAudioExtractor{}, transcriber).Execute(chCtx)

	analysis := chCtx.Get(commands.GetSpeechParameterName()).(*model.SpeechAnalysis)
	assert.NotNil(t, analysis.Transcript)
	// 1.3 + 1.1 + 1.2 timed seconds for 9 words.
	assert.InDelta(t, 3.6, analysis.SpeechSeconds, 1e-9)
	assert.NotNil(t, analysis.WordsPerSec)
	assert.InDelta(t, 2.5, *analysis.WordsPerSec, 1e-9)
	assert.Equal(t, "stop scrolling this one trick", analysis.First2sText)
}

// TestSpeechAnalyzerDisabled verifies a nil transcriber and a silent probe
// both yield an empty analysis without touching the extractor.
func TestSpeechAnalyzerDisabled(t *testing.T) {
	chCtx := newTestContext(t)
	chCtx.Add(commands.GetVideoFileParameterName(), "clip.mp4")
	chCtx.Add(commands.GetProbeParameterName(), &model.ProbeResult{DurationSec: 10, HasAudio: true})

	commands.NewSpeechAnalyzer("analyze-speech", &fakeAudioExtractor{}, nil).Execute(chCtx)

	analysis := chCtx.Get(commands.GetSpeechParameterName()).(*model.SpeechAnalysis)
	assert.Nil(t, analysis.Transcript)
	assert.Nil(t, analysis.WordsPerSec)

	// Audio-less clip with a configured transcriber behaves the same.
	chCtx = newTestContext(t)
	chCtx.Add(commands.GetVideoFileParameterName(), "clip.mp4")
	chCtx.Add(commands.GetProbeParameterName(), &model.ProbeResult{DurationSec: 10})

	commands.NewSpeechAnalyzer("analyze-speech", &fakeAudioExtractor{}, &fakeTranscriber{}).Execute(chCtx)
	analysis = chCtx.Get(commands.GetSpeechParameterName()).(*model.SpeechAnalysis)
	assert.Nil(t, analysis.Transcript)
}

// TestSpeechAnalyzerToleratesFailure verifies transcription failures leave an
// empty analysis and no chain error.
func TestSpeechAnalyzerToleratesFailure(t *testing.T) {
	chCtx := newTestContext(t)
	chCtx.Add(commands.GetVideoFileParameterName(), "clip.mp4")
	chCtx.Add(commands.GetProbeParameterName(), &model.ProbeResult{DurationSec: 10, HasAudio: true})

	transcriber := &fakeTranscriber{err: errors.New("model overloaded")}
	commands.NewSpeechAnalyzer("analyze-speech", &fakeAudioExtractor{}, transcriber).Execute(chCtx)

	analysis := chCtx.Get(commands.GetSpeechParameterName()).(*model.SpeechAnalysis)
	assert.Nil(t, analysis.Transcript)
	assert.Nil(t, analysis.WordsPerSec)
	assert.False(t, chCtx.HasErrors())
}
