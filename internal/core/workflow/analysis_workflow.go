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

// Package workflow defines the high-level business logic orchestrations,
// combining commands into coherent pipelines. This file implements the video
// analysis workflow: one Chain of Responsibility per request, from container
// probe to assembled report.
package workflow

import (
	goctx "context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/clipsight/clipsight/internal/cloud"
	"github.com/clipsight/clipsight/internal/core/commands"
	"github.com/clipsight/clipsight/internal/core/cor"
	"github.com/clipsight/clipsight/internal/core/ffmpeg"
	"github.com/clipsight/clipsight/internal/core/model"
	"github.com/clipsight/clipsight/internal/core/services"
)

// hookFrameOffsets are the early sample points, in priority order, for
// hook-text extraction.
var hookFrameOffsets = []float64{0.0, 0.5, 1.0}

// suggestionTimeout bounds one suggestion composition call.
const suggestionTimeout = 30 * time.Second

// suggestionModelKey is the logical name of the agent model used for
// suggestion composition.
const suggestionModelKey = "suggestion"

// AnalysisWorkflow orchestrates the full diagnostic run for one uploaded
// clip. It is structured as a Chain of Responsibility that executes the
// measurement stages in dependency order (silence results feed the cut
// fallback cascade), then composes suggestions and assembles the report.
type AnalysisWorkflow struct {
	cor.BaseCommand
	config *cloud.Config
	chain  cor.Chain // The underlying chain of commands to be executed.
}

// NewAnalysisWorkflow builds the workflow and its command chain.
//
// Inputs:
//   - name: A string name for this workflow instance.
//   - config: The loaded application configuration.
//   - runner: The ffmpeg/ffprobe runner shared by the media stages.
//   - ocr: The text recognition service.
//   - transcriber: The speech-to-text client; nil disables the speech stage.
//   - agent: The rate-limited suggestion model; nil means the suggestion
//     service reports itself unavailable.
//
// Outputs:
//   - *AnalysisWorkflow: The initialized workflow.
//   - error: An error when the suggestion prompt template fails to parse.
func NewAnalysisWorkflow(
	name string,
	config *cloud.Config,
	runner *ffmpeg.Runner,
	ocr services.OCRService,
	transcriber services.Transcriber,
	agent *cloud.QuotaAwareGenerativeAIModel) (*AnalysisWorkflow, error) {

	promptTemplate, err := template.New("suggestion").Parse(config.PromptTemplates.SuggestionPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse suggestion prompt template: %w", err)
	}

	out := &AnalysisWorkflow{BaseCommand: *cor.NewBaseCommand(name), config: config}
	out.initializeChain(runner, ocr, transcriber, agent, promptTemplate)
	return out, nil
}

// initializeChain builds the sequence of commands that make up the workflow.
// Order matters in two places: audio profiling must precede cut detection
// (the silence fallback reads the profile), and the digest must precede
// suggestion composition.
func (m *AnalysisWorkflow) initializeChain(
	runner *ffmpeg.Runner,
	ocr services.OCRService,
	transcriber services.Transcriber,
	agent *cloud.QuotaAwareGenerativeAIModel,
	promptTemplate *template.Template) {

	settings := m.config.Analysis
	workers := m.config.Application.ThreadPoolSize
	if workers <= 0 {
		workers = 2
	}

	out := cor.NewBaseChain(m.GetName())

	// Step 1: Probe the container for duration and stream presence.
	out.AddCommand(commands.NewMediaProbe("probe-media", runner))

	// Step 2: Profile the audio track. Runs before cut detection because the
	// silence-derived fallback reads the profile from the context.
	out.AddCommand(commands.NewAudioProfiler("profile-audio", runner, settings))

	// Step 3: Detect visual cuts through the fallback cascade.
	out.AddCommand(commands.NewCutDetector("detect-cuts",
		commands.NewDefaultCutStrategies(runner, runner, settings)...))

	// Step 4: Extract early frames and recognize the on-screen hook text.
	out.AddCommand(commands.NewHookTextExtractor("extract-hook-text",
		runner, ocr, hookFrameOffsets, settings.HookTextMaxLen, settings.ScaleWidth, workers))

	// Step 5: Transcribe speech and derive pacing metrics. No-op when
	// transcription is not configured.
	out.AddCommand(commands.NewSpeechAnalyzer("analyze-speech", runner, transcriber))

	// Step 6: Measure brightness and contrast over the opening window.
	out.AddCommand(commands.NewOpeningAnalyzer("analyze-opening", runner, settings))

	// Step 7: Fold every metric into the digest the suggestion prompt embeds.
	out.AddCommand(commands.NewDigestBuilder("build-digest"))

	// Step 8: Compose suggestions with the generative model. The only stage
	// whose failure halts the chain.
	out.AddCommand(commands.NewSuggestionCreator("create-suggestions", agent, promptTemplate, suggestionTimeout))

	// Step 9: Parse and validate the model's JSON response.
	out.AddCommand(commands.NewSuggestionJsonToStruct("parse-suggestions"))

	// Step 10: Assemble the immutable report returned to the caller.
	out.AddCommand(commands.NewReportAssembly("assemble-report"))

	m.chain = out
}

// Execute runs the workflow by invoking the underlying chain.
//
// Inputs:
//   - context: The chain of responsibility context for this execution.
func (m *AnalysisWorkflow) Execute(context cor.Context) {
	m.chain.Execute(context)
}

// Run performs one complete analysis of the uploaded file. It owns the run's
// resource lifecycle: a fresh working directory is created per run and
// removed on every exit path, along with the upload itself.
//
// Inputs:
//   - ctx: The request-scoped Go context.
//   - videoPath: The local path of the uploaded video. The file is deleted
//     when the run ends.
//   - brief: The creator's niche/tone/goals/pillars form fields.
//
// Outputs:
//   - *model.AnalysisReport: The assembled report.
//   - error: A typed error when the run failed. Callers map the type to an
//     HTTP status.
func (m *AnalysisWorkflow) Run(ctx goctx.Context, videoPath string, brief *model.CreatorBrief) (*model.AnalysisReport, error) {
	// The context owns the upload from this point on, so even a failure to
	// set up the working directory still deletes the file on return.
	chCtx := cor.NewBaseContext()
	chCtx.SetContext(ctx)
	chCtx.AddTempFile(videoPath)
	defer chCtx.Close()

	workDir := filepath.Join(os.TempDir(), "clipsight-"+uuid.NewString())
	if err := os.MkdirAll(workDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create working directory: %w", err)
	}
	chCtx.SetWorkDir(workDir)

	chCtx.Add(commands.GetVideoFileParameterName(), videoPath)
	if brief != nil {
		chCtx.Add(commands.GetBriefParameterName(), brief)
	}

	m.Execute(chCtx)

	if chCtx.HasErrors() {
		return nil, firstTypedError(chCtx.GetErrors())
	}

	report, ok := chCtx.Get(commands.GetReportParameterName()).(*model.AnalysisReport)
	if !ok {
		return nil, errors.New("workflow completed without producing a report")
	}
	return report, nil
}

// firstTypedError picks the most specific error out of the chain's error
// map: input errors first, then service availability, then service failure,
// then whatever is left. Map iteration order is random, so every entry is
// ranked before choosing.
func firstTypedError(errs map[string]error) error {
	rank := func(err error) int {
		var inputErr *model.InputError
		if errors.As(err, &inputErr) {
			return 0
		}
		var unavailable *model.ServiceUnavailableError
		if errors.As(err, &unavailable) {
			return 1
		}
		var failure *model.ServiceFailureError
		if errors.As(err, &failure) {
			return 2
		}
		return 3
	}

	var best error
	bestRank := 4
	for _, err := range errs {
		if r := rank(err); r < bestRank {
			bestRank, best = r, err
		}
	}
	return best
}
