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

// fakeFrameExtractor writes the text configured for each offset into the
// frame file, so the paired fakeOCR can read it back. An offset mapped to an
// error fails the extraction.
type fakeFrameExtractor struct {
	textByOffset map[float64]string
	errByOffset  map[float64]error
}

func (f *fakeFrameExtractor) ExtractFrame(_ context.Context, _ string, offset float64, _ int, outPath string) error {
	if err := f.errByOffset[offset]; err != nil {
		return err
	}
	return os.WriteFile(outPath, []byte(f.textByOffset[offset]), 0o600)
}

// fakeOCR "recognizes" whatever the extractor wrote into the frame file.
type fakeOCR struct{}

func (fakeOCR) RecognizeText(_ context.Context, imagePath string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// TestHookTextFirstNonEmptyWins verifies offsets are considered in priority
// order: a caption on an earlier frame beats a longer one later, even though
// the frames are extracted concurrently.
func TestHookTextFirstNonEmptyWins(t *testing.T) {
	extractor := &fakeFrameExtractor{textByOffset: map[float64]string{
		0.0: "",
		0.5: "WAIT  FOR\nIT",
		1.0: "a much longer caption that should not win",
	}}

	cmd := commands.NewHookTextExtractor("extract-hook-text",
		extractor, fakeOCR{}, []float64{0.0, 0.5, 1.0}, 120, 480, 3)

	chCtx := newTestContext(t)
	chCtx.Add(commands.GetVideoFileParameterName(), "clip.mp4")
	cmd.Execute(chCtx)

	hook := chCtx.Get(commands.GetHookTextParameterName()).(*model.HookText)
	assert.Equal(t, "WAIT FOR IT", hook.Text, "whitespace runs collapse to single spaces")
	assert.InDelta(t, 0.5, hook.FrameOffset, 1e-9)
}

// TestHookTextTruncatesToRuneBudget verifies the rune-based cap.
func TestHookTextTruncatesToRuneBudget(t *testing.T) {
	extractor := &fakeFrameExtractor{textByOffset: map[float64]string{
		0.0: "héllo wörld this runs long",
	}}

	cmd := commands.NewHookTextExtractor("extract-hook-text",
		extractor, fakeOCR{}, []float64{0.0}, 11, 480, 1)

	chCtx := newTestContext(t)
	chCtx.Add(commands.GetVideoFileParameterName(), "clip.mp4")
	cmd.Execute(chCtx)

	hook := chCtx.Get(commands.GetHookTextParameterName()).(*model.HookText)
	assert.Equal(t, "héllo wörld", hook.Text)
}

// TestHookTextToleratesFrameFailures verifies a failed extraction only skips
// that offset.
func TestHookTextToleratesFrameFailures(t *testing.T) {
	extractor := &fakeFrameExtractor{
		textByOffset: map[float64]string{1.0: "STILL HERE"},
		errByOffset:  map[float64]error{0.0: errors.New("seek failed")},
	}

	cmd := commands.NewHookTextExtractor("extract-hook-text",
		extractor, fakeOCR{}, []float64{0.0, 1.0}, 120, 480, 2)

	chCtx := newTestContext(t)
	chCtx.Add(commands.GetVideoFileParameterName(), "clip.mp4")
	cmd.Execute(chCtx)

	hook := chCtx.Get(commands.GetHookTextParameterName()).(*model.HookText)
	assert.Equal(t, "STILL HERE", hook.Text)
	assert.False(t, chCtx.HasErrors())
}

// TestHookTextWithoutRecognizer verifies the stage degrades to an empty hook
// when no OCR binary was found at startup.
func TestHookTextWithoutRecognizer(t *testing.T) {
	cmd := commands.NewHookTextExtractor("extract-hook-text",
		&fakeFrameExtractor{}, nil, []float64{0.0, 0.5}, 120, 480, 2)

	chCtx := newTestContext(t)
	chCtx.Add(commands.GetVideoFileParameterName(), "clip.mp4")
	cmd.Execute(chCtx)

	hook := chCtx.Get(commands.GetHookTextParameterName()).(*model.HookText)
	assert.Empty(t, hook.Text)
	assert.InDelta(t, -1, hook.FrameOffset, 1e-9)
}
