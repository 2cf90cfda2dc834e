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

// Package commands_test contains unit tests for the pipeline commands. The
// ffmpeg-facing commands are tested against small fakes of their narrow
// interfaces so no media tooling is needed.
package commands_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/clipsight/clipsight/internal/core/commands"
	"github.com/clipsight/clipsight/internal/core/cor"
	"github.com/clipsight/clipsight/internal/core/model"
	"github.com/stretchr/testify/assert"
)

// newTestContext builds a chain context with a background Go context and a
// test-scoped working directory, the way the workflow does before Execute.
func newTestContext(t *testing.T) cor.Context {
	t.Helper()
	c := cor.NewBaseContext()
	c.SetContext(context.Background())
	c.SetWorkDir(t.TempDir())
	// The workdir is owned by t.TempDir; don't let Close race its cleanup.
	return c
}

// fakeCutStrategy is a canned CutStrategy that records whether it ran.
type fakeCutStrategy struct {
	name   string
	result *model.CutResult
	err    error
	called bool
}

func (f *fakeCutStrategy) Name() string { return f.name }

func (f *fakeCutStrategy) Detect(_ cor.Context, _ string) (*model.CutResult, error) {
	f.called = true
	return f.result, f.err
}

// TestCutDetectorStopsAtFirstHit verifies the cascade stops at the first
// strategy that finds at least one cut.
func TestCutDetectorStopsAtFirstHit(t *testing.T) {
	chCtx := newTestContext(t)
	chCtx.Add(commands.GetVideoFileParameterName(), "clip.mp4")

	first := &fakeCutStrategy{name: "scene", result: &model.CutResult{Count: 4, Timeline: []float64{1.0, 2.5, 5.0, 9.0}, Strategy: "scene"}}
	second := &fakeCutStrategy{name: "scene-loose", result: &model.CutResult{Count: 9, Strategy: "scene-loose"}}

	detector := commands.NewCutDetector("detect-cuts", first, second)
	detector.Execute(chCtx)

	result := chCtx.Get(commands.GetCutsParameterName()).(*model.CutResult)
	assert.Equal(t, 4, result.Count)
	assert.Equal(t, "scene", result.Strategy)
	assert.True(t, first.called)
	assert.False(t, second.called, "fallbacks must not run after a hit")
}

// TestCutDetectorFallsThroughZeroAndError verifies that a zero result and a
// failed strategy both hand off to the next pass.
func TestCutDetectorFallsThroughZeroAndError(t *testing.T) {
	chCtx := newTestContext(t)
	chCtx.Add(commands.GetVideoFileParameterName(), "clip.mp4")

	empty := &fakeCutStrategy{name: "scene", result: &model.CutResult{Strategy: "scene"}}
	broken := &fakeCutStrategy{name: "scene-loose", err: errors.New("filter crashed")}
	last := &fakeCutStrategy{name: "frame-delta", result: &model.CutResult{Count: 2, Strategy: "frame-delta"}}

	detector := commands.NewCutDetector("detect-cuts", empty, broken, last)
	detector.Execute(chCtx)

	result := chCtx.Get(commands.GetCutsParameterName()).(*model.CutResult)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, "frame-delta", result.Strategy)
	assert.True(t, broken.called)
	assert.False(t, chCtx.HasErrors(), "a failed strategy is not a run failure")
}

// TestCutDetectorHonestZero verifies that when every pass comes up empty the
// result is a zero count, not an error.
func TestCutDetectorHonestZero(t *testing.T) {
	chCtx := newTestContext(t)
	chCtx.Add(commands.GetVideoFileParameterName(), "clip.mp4")

	detector := commands.NewCutDetector("detect-cuts",
		&fakeCutStrategy{name: "scene", result: &model.CutResult{Strategy: "scene"}},
		&fakeCutStrategy{name: "silence-derived", result: &model.CutResult{Strategy: "silence-derived"}},
	)
	detector.Execute(chCtx)

	result := chCtx.Get(commands.GetCutsParameterName()).(*model.CutResult)
	assert.Equal(t, 0, result.Count)
	assert.Equal(t, "none", result.Strategy)
	assert.False(t, chCtx.HasErrors())
}

// fakeSceneDetector returns a fixed timeline per threshold and counts how
// often each threshold was invoked.
type fakeSceneDetector struct {
	byThreshold map[float64][]float64
	calls       map[float64]int
	err         error
}

func (f *fakeSceneDetector) SceneTimestamps(_ context.Context, _ string, threshold float64, _ int) ([]float64, error) {
	if f.calls == nil {
		f.calls = make(map[float64]int)
	}
	f.calls[threshold]++
	if f.err != nil {
		return nil, f.err
	}
	return f.byThreshold[threshold], nil
}

// TestSceneCutStrategyUnionsBasePass verifies the relaxed pass folds the
// strict pass's timestamps in and de-duplicates near-identical entries.
func TestSceneCutStrategyUnionsBasePass(t *testing.T) {
	detector := &fakeSceneDetector{byThreshold: map[float64][]float64{
		0.32: {2.0, 8.0},
		0.15: {2.004, 5.0}, // 2.004 is the same cut as the strict pass's 2.0
	}}

	strict := commands.NewSceneCutStrategy("scene", detector, 0.32, 160, nil)
	loose := commands.NewSceneCutStrategy("scene-loose", detector, 0.15, 160, strict)

	result, err := loose.Detect(newTestContext(t), "clip.mp4")
	assert.NoError(t, err)
	assert.Equal(t, 3, result.Count)
	assert.Equal(t, []float64{2.0, 5.0, 8.0}, result.Timeline)
	assert.Equal(t, "scene-loose", result.Strategy)
}

// TestSceneCutStrategyReusesCachedBasePass verifies that when the strict pass
// already ran in this chain context, the relaxed pass unions its cached
// timestamps instead of running the scene filter again at the strict
// threshold.
func TestSceneCutStrategyReusesCachedBasePass(t *testing.T) {
	detector := &fakeSceneDetector{byThreshold: map[float64][]float64{
		0.32: {},
		0.15: {3.0, 6.0},
	}}

	strict := commands.NewSceneCutStrategy("scene", detector, 0.32, 160, nil)
	loose := commands.NewSceneCutStrategy("scene-loose", detector, 0.15, 160, strict)

	chCtx := newTestContext(t)
	strictResult, err := strict.Detect(chCtx, "clip.mp4")
	assert.NoError(t, err)
	assert.Equal(t, 0, strictResult.Count)

	looseResult, err := loose.Detect(chCtx, "clip.mp4")
	assert.NoError(t, err)
	assert.Equal(t, 2, looseResult.Count)
	assert.Equal(t, 1, detector.calls[0.32], "strict pass already ran; its timestamps must be reused")
	assert.Equal(t, 1, detector.calls[0.15])
}

// TestSilenceCutStrategy verifies the silence-derived estimate: n qualifying
// silences partition the clip into shots, implying n-1 transitions, and the
// result never carries a timeline.
func TestSilenceCutStrategy(t *testing.T) {
	profile := &model.AudioProfile{Silences: []model.SilenceInterval{
		{Start: 1.0, End: 1.5},  // qualifies
		{Start: 4.0, End: 4.1},  // too short
		{Start: 9.0, End: 10.2}, // qualifies
		{Start: 14.0, End: 14.4}, // qualifies
	}}

	chCtx := newTestContext(t)
	chCtx.Add(commands.GetAudioProfileParameterName(), profile)

	strategy := commands.NewSilenceCutStrategy("silence-derived", 0.25)
	result, err := strategy.Detect(chCtx, "clip.mp4")
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	assert.Nil(t, result.Timeline)
}

// TestSilenceCutStrategyNoProfile verifies a missing audio profile yields a
// zero result rather than a failure.
func TestSilenceCutStrategyNoProfile(t *testing.T) {
	strategy := commands.NewSilenceCutStrategy("silence-derived", 0.25)
	result, err := strategy.Detect(newTestContext(t), "clip.mp4")
	assert.NoError(t, err)
	assert.Equal(t, 0, result.Count)
}

// fakeFrameSampler writes JPEG stand-ins of the given sizes into the sample
// directory and returns their paths.
type fakeFrameSampler struct {
	sizes []int
}

func (f *fakeFrameSampler) SampleFrames(_ context.Context, _ string, _ float64, _ int, dir string) ([]string, error) {
	paths := make([]string, 0, len(f.sizes))
	for i, size := range f.sizes {
		p := filepath.Join(dir, "frame-"+string(rune('a'+i))+".jpg")
		if err := os.WriteFile(p, make([]byte, size), 0o600); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// TestFrameDeltaCutStrategy verifies sharp neighbor-to-neighbor size jumps
// count as cuts while gentle drift does not.
func TestFrameDeltaCutStrategy(t *testing.T) {
	// 1000 -> 1050 is a 5% drift (no cut); 1050 -> 2000 and 2000 -> 800 are
	// both well past the 15% threshold.
	sampler := &fakeFrameSampler{sizes: []int{1000, 1050, 2000, 800}}
	strategy := commands.NewFrameDeltaCutStrategy("frame-delta", sampler, 4, 160, 0.15)

	result, err := strategy.Detect(newTestContext(t), "clip.mp4")
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	assert.Nil(t, result.Timeline)
}
