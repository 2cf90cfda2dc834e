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

// This file defines the final command in the chain: folding every stage's
// output into the immutable AnalysisReport returned to the caller. Metrics a
// stage could not produce surface as explicit nulls or zero values, never as
// missing fields; clients get a stable shape.
package commands

import (
	"fmt"

	"github.com/clipsight/clipsight/internal/core/cor"
	"github.com/clipsight/clipsight/internal/core/model"
)

// ReportAssembly is the terminal command that builds the AnalysisReport.
type ReportAssembly struct {
	cor.BaseCommand
}

// NewReportAssembly is the constructor for the ReportAssembly command.
func NewReportAssembly(name string) *ReportAssembly {
	out := &ReportAssembly{BaseCommand: *cor.NewBaseCommand(name)}
	out.InputParamName = GetProbeParameterName()
	out.OutputParamName = GetReportParameterName()
	return out
}

// Execute assembles the report from everything the chain context has
// accumulated.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (t *ReportAssembly) Execute(context cor.Context) {
	probe := context.Get(t.GetInputParam()).(*model.ProbeResult)

	report := &model.AnalysisReport{
		DurationSec: probe.DurationSec,
		CutTimeline: []float64{},
		Silences:    []model.SilenceInterval{},
		Suggestions: []string{},
	}

	if cuts, ok := context.Get(GetCutsParameterName()).(*model.CutResult); ok && cuts != nil {
		report.Cuts = cuts.Count
		report.AvgCutSec = model.AverageCutInterval(probe.DurationSec, cuts.Count)
		if cuts.Timeline != nil {
			report.CutTimeline = cuts.Timeline
			report.First3Cuts = cuts.First3Cuts()
		}
	} else {
		report.AvgCutSec = model.AverageCutInterval(probe.DurationSec, 0)
	}

	if hook, ok := context.Get(GetHookTextParameterName()).(*model.HookText); ok && hook != nil {
		report.HookText = hook.Text
		report.CaptionsPresent = hook.Text != ""
	}

	if profile, ok := context.Get(GetAudioProfileParameterName()).(*model.AudioProfile); ok && profile != nil {
		report.Silences = profile.Silences
		report.SilenceRatio = profile.SilenceRatio(probe.DurationSec)
		report.Loudness = profile.Loudness
	}

	if opening, ok := context.Get(GetOpeningParameterName()).(*model.FirstSecondStats); ok {
		report.FirstSecond = opening
	}

	if speech, ok := context.Get(GetSpeechParameterName()).(*model.SpeechAnalysis); ok && speech != nil {
		report.First2sText = speech.First2sText
		report.WordsPerSec = speech.WordsPerSec
		report.Transcript = speech.Transcript
	}

	// The parsed suggestion set is the previous command's primary output,
	// piped to CtxIn by the chain.
	if set, ok := context.Get(cor.CtxIn).(*model.SuggestionSet); ok && set != nil {
		report.Critique = set.Critique
		for _, s := range set.Suggestions {
			report.Suggestions = append(report.Suggestions, fmt.Sprintf("[%s/%s] %s", s.Area, s.Severity, s.Text))
		}
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), report)
	context.Add(cor.CtxOut, report)
}
