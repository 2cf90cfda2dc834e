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

// This file defines the visual-opening analysis: brightness and contrast
// statistics over the first moments of the clip, used to judge whether the
// opening frame is legible.
package commands

import (
	"context"
	"log/slog"

	"github.com/clipsight/clipsight/internal/cloud"
	"github.com/clipsight/clipsight/internal/core/cor"
	"github.com/clipsight/clipsight/internal/core/model"
)

// SignalAnalyzer is the view of the ffmpeg runner the opening command needs.
type SignalAnalyzer interface {
	SignalStats(ctx context.Context, path string, window float64, scaleWidth int) (*model.FirstSecondStats, error)
}

// OpeningAnalyzer is a command that computes luminance statistics over the
// opening window of the video.
type OpeningAnalyzer struct {
	cor.BaseCommand
	analyzer SignalAnalyzer
	settings cloud.Analysis
}

// NewOpeningAnalyzer is the constructor for the OpeningAnalyzer command.
func NewOpeningAnalyzer(name string, analyzer SignalAnalyzer, settings cloud.Analysis) *OpeningAnalyzer {
	out := &OpeningAnalyzer{BaseCommand: *cor.NewBaseCommand(name), analyzer: analyzer, settings: settings}
	out.InputParamName = GetVideoFileParameterName()
	out.OutputParamName = GetOpeningParameterName()
	return out
}

// Execute computes the opening statistics. Best-effort: on failure nothing is
// stored and the report renders a null firstSecond block.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (t *OpeningAnalyzer) Execute(context cor.Context) {
	videoPath := context.Get(t.GetInputParam()).(string)

	stats, err := t.analyzer.SignalStats(
		context.GetContext(), videoPath, t.settings.OpeningWindow, t.settings.ScaleWidth)
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		slog.WarnContext(context.GetContext(), "opening analysis failed", "error", err)
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), stats)
	context.Add(cor.CtxOut, stats)
}
