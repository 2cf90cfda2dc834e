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

// This file defines visual cut detection: a cascade of strategies where each
// fallback runs only when every previous strategy found exactly zero cuts.
//
// Logic Flow:
//  1. Scene filter at the strict threshold. Produces a timeline.
//  2. Scene filter at a relaxed threshold, unioned with the strict pass.
//     Produces a timeline.
//  3. Silence-derived estimate: qualifying silence intervals partition the
//     clip into shots; the count is derived, no timeline exists.
//  4. Frame-sampling estimate: low-rate JPEG samples whose byte size jumps
//     between neighbors indicate a cut; count only, no timeline.
//
// A strategy that fails (the tool errored) is treated as having found zero
// cuts, so the cascade keeps going. When nothing finds anything the result is
// an honest zero, never an error.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/clipsight/clipsight/internal/cloud"
	"github.com/clipsight/clipsight/internal/core/cor"
	"github.com/clipsight/clipsight/internal/core/model"
)

// SceneDetector is the view of the ffmpeg runner the scene strategies need.
type SceneDetector interface {
	SceneTimestamps(ctx context.Context, path string, threshold float64, scaleWidth int) ([]float64, error)
}

// FrameSampler is the view of the ffmpeg runner the frame-delta strategy needs.
type FrameSampler interface {
	SampleFrames(ctx context.Context, path string, fps float64, scaleWidth int, dir string) ([]string, error)
}

// CutStrategy is one pass of the cut-detection cascade. Detect reads shared
// state (the audio profile, the working directory) from the chain context.
type CutStrategy interface {
	Name() string
	Detect(c cor.Context, videoPath string) (*model.CutResult, error)
}

// SceneCutStrategy detects cuts with the scene-change filter at a fixed
// threshold. An optional base timeline (from a stricter pass) is unioned in.
type SceneCutStrategy struct {
	name       string
	detector   SceneDetector
	threshold  float64
	scaleWidth int
	base       *SceneCutStrategy
}

// NewSceneCutStrategy builds a scene-filter pass. Pass a non-nil base to union
// its timestamps with this pass's results.
func NewSceneCutStrategy(name string, detector SceneDetector, threshold float64, scaleWidth int, base *SceneCutStrategy) *SceneCutStrategy {
	return &SceneCutStrategy{name: name, detector: detector, threshold: threshold, scaleWidth: scaleWidth, base: base}
}

func (s *SceneCutStrategy) Name() string { return s.name }

// sceneTimestampsKey names the per-pass cache slot for raw scene timestamps,
// so a relaxed pass can union a stricter pass's result without decoding the
// clip a second time.
func sceneTimestampsKey(name string) string { return "__scene_timestamps_" + name + "__" }

// Detect runs the scene filter and returns the sorted, de-duplicated timeline.
func (s *SceneCutStrategy) Detect(c cor.Context, videoPath string) (*model.CutResult, error) {
	timestamps, err := s.detector.SceneTimestamps(c.GetContext(), videoPath, s.threshold, s.scaleWidth)
	if err != nil {
		return nil, err
	}
	c.Add(sceneTimestampsKey(s.name), append([]float64(nil), timestamps...))

	if s.base != nil {
		// The base pass normally ran just before this one; fall back to
		// invoking the filter only when its cached result is absent.
		baseStamps, ok := c.Get(sceneTimestampsKey(s.base.name)).([]float64)
		if !ok {
			var baseErr error
			baseStamps, baseErr = s.detector.SceneTimestamps(c.GetContext(), videoPath, s.base.threshold, s.base.scaleWidth)
			if baseErr != nil {
				baseStamps = nil
			}
		}
		timestamps = append(timestamps, baseStamps...)
	}
	timestamps = dedupeSorted(timestamps)
	return &model.CutResult{Count: len(timestamps), Timeline: timestamps, Strategy: s.name}, nil
}

// SilenceCutStrategy derives a cut count from the audio profile: qualifying
// silences split the clip into shots, and shot transitions imply cuts.
type SilenceCutStrategy struct {
	name        string
	minDuration float64
}

// NewSilenceCutStrategy builds the silence-derived pass.
func NewSilenceCutStrategy(name string, minDuration float64) *SilenceCutStrategy {
	return &SilenceCutStrategy{name: name, minDuration: minDuration}
}

func (s *SilenceCutStrategy) Name() string { return s.name }

// Detect reads the audio profile from the chain context. No timeline is
// produced; positions of silence boundaries are not cut positions.
func (s *SilenceCutStrategy) Detect(c cor.Context, _ string) (*model.CutResult, error) {
	profile, ok := c.Get(GetAudioProfileParameterName()).(*model.AudioProfile)
	if !ok || profile == nil {
		return &model.CutResult{Strategy: s.name}, nil
	}
	n := profile.QualifyingSilences(s.minDuration)
	count := 0
	if n > 1 {
		count = n - 1
	}
	return &model.CutResult{Count: count, Strategy: s.name}, nil
}

// FrameDeltaCutStrategy samples low-rate JPEG frames and counts neighbor
// pairs whose compressed size changes sharply. Compressed size is a cheap
// proxy for visual complexity; a hard cut usually moves it.
type FrameDeltaCutStrategy struct {
	name       string
	sampler    FrameSampler
	fps        float64
	scaleWidth int
	threshold  float64
}

// NewFrameDeltaCutStrategy builds the frame-sampling pass.
func NewFrameDeltaCutStrategy(name string, sampler FrameSampler, fps float64, scaleWidth int, threshold float64) *FrameDeltaCutStrategy {
	return &FrameDeltaCutStrategy{name: name, sampler: sampler, fps: fps, scaleWidth: scaleWidth, threshold: threshold}
}

func (s *FrameDeltaCutStrategy) Name() string { return s.name }

// Detect samples frames into a subdirectory of the run's working directory
// and counts size deltas. No timeline is produced.
func (s *FrameDeltaCutStrategy) Detect(c cor.Context, videoPath string) (*model.CutResult, error) {
	sampleDir := filepath.Join(c.GetWorkDir(), "samples")
	if err := os.MkdirAll(sampleDir, 0o750); err != nil {
		return nil, err
	}
	frames, err := s.sampler.SampleFrames(c.GetContext(), videoPath, s.fps, s.scaleWidth, sampleDir)
	if err != nil {
		return nil, err
	}

	sizes := make([]int64, 0, len(frames))
	for _, frame := range frames {
		fi, err := os.Stat(frame)
		if err != nil {
			return nil, fmt.Errorf("failed to stat sampled frame: %w", err)
		}
		sizes = append(sizes, fi.Size())
	}

	count := 0
	for i := 1; i < len(sizes); i++ {
		prev := float64(sizes[i-1])
		if prev <= 0 {
			continue
		}
		delta := math.Abs(float64(sizes[i])-prev) / prev
		if delta > s.threshold {
			count++
		}
	}
	return &model.CutResult{Count: count, Strategy: s.name}, nil
}

// CutDetector is the command that walks the strategy cascade.
type CutDetector struct {
	cor.BaseCommand
	strategies []CutStrategy
}

// NewCutDetector is the constructor for the CutDetector command. Strategies
// run in the given order; each runs only when all previous ones found zero.
func NewCutDetector(name string, strategies ...CutStrategy) *CutDetector {
	out := &CutDetector{BaseCommand: *cor.NewBaseCommand(name), strategies: strategies}
	out.InputParamName = GetVideoFileParameterName()
	out.OutputParamName = GetCutsParameterName()
	return out
}

// NewDefaultCutStrategies assembles the standard cascade from the analysis
// settings: strict scene pass, relaxed scene pass unioned with the strict
// one, silence-derived count, frame-delta count.
func NewDefaultCutStrategies(detector SceneDetector, sampler FrameSampler, settings cloud.Analysis) []CutStrategy {
	strict := NewSceneCutStrategy("scene", detector, settings.SceneThreshold, settings.ScaleWidth, nil)
	loose := NewSceneCutStrategy("scene-loose", detector, settings.SceneThresholdLoose, settings.ScaleWidth, strict)
	return []CutStrategy{
		strict,
		loose,
		NewSilenceCutStrategy("silence-derived", settings.ShotSilenceMin),
		NewFrameDeltaCutStrategy("frame-delta", sampler, float64(settings.SampleFps), settings.ScaleWidth, settings.FrameDeltaThreshold),
	}
}

// Execute walks the cascade until a strategy reports at least one cut.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (t *CutDetector) Execute(context cor.Context) {
	videoPath := context.Get(t.GetInputParam()).(string)

	result := &model.CutResult{Strategy: "none"}
	for _, strategy := range t.strategies {
		res, err := strategy.Detect(context, videoPath)
		if err != nil {
			// A failed strategy counts as zero cuts; the cascade continues.
			slog.WarnContext(context.GetContext(), "cut strategy failed",
				"strategy", strategy.Name(), "error", err)
			continue
		}
		if res.Count > 0 {
			result = res
			break
		}
	}

	slog.InfoContext(context.GetContext(), "detected cuts",
		"count", result.Count, "strategy", result.Strategy)

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), result)
	context.Add(cor.CtxOut, result)
}

// dedupeSorted sorts timestamps ascending and removes near-duplicate entries
// produced by overlapping passes.
func dedupeSorted(in []float64) []float64 {
	sort.Float64s(in)
	out := in[:0]
	for _, ts := range in {
		if len(out) > 0 && math.Abs(ts-out[len(out)-1]) < 0.01 {
			continue
		}
		out = append(out, ts)
	}
	return out
}
