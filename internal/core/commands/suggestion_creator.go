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

// This file defines the suggestion composition command, the one stage whose
// failure is fatal to the request: a report without suggestions has no value
// to the caller.
//
// Logic Flow:
//  1. If no generative model is configured, the stage records a
//     service-unavailable error immediately; nothing is sent anywhere.
//  2. The prompt is rendered from a Go template with the metric digest, the
//     creator brief, and a complete example of the expected JSON response
//     (few-shot prompting keeps the output shape stable).
//  3. The request runs through the quota-aware model wrapper under its own
//     deadline, so a hung upstream can never pin the request goroutine.
//  4. The raw response string is handed to the parsing command.
package commands

import (
	"bytes"
	goctx "context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/clipsight/clipsight/internal/cloud"
	"github.com/clipsight/clipsight/internal/core/cor"
	"github.com/clipsight/clipsight/internal/core/model"
)

// suggestionServiceName identifies the suggestion capability in typed errors.
const suggestionServiceName = "suggestion"

// SuggestionCreator is a command that prompts a generative model for editing
// suggestions based on the metric digest.
type SuggestionCreator struct {
	cor.BaseCommand
	generativeAIModel        *cloud.QuotaAwareGenerativeAIModel // The rate-limited generative model client; nil when unconfigured.
	template                 *template.Template                 // The Go template for building the prompt.
	timeout                  time.Duration                      // The deadline for one composition request.
	geminiInputTokenCounter  metric.Int64Counter                // OTel counter for input tokens.
	geminiOutputTokenCounter metric.Int64Counter                // OTel counter for output tokens.
	geminiRetryCounter       metric.Int64Counter                // OTel counter for retries.
}

// NewSuggestionCreator is the constructor for the SuggestionCreator command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - agent: The rate-limited wrapper for the generative model, or nil when
//     the service is not configured.
//   - promptTemplate: A parsed Go template for the prompt.
//   - timeout: The deadline for the composition call.
//
// Outputs:
//   - *SuggestionCreator: A pointer to the newly instantiated command,
//     including initialized telemetry counters.
func NewSuggestionCreator(
	name string,
	agent *cloud.QuotaAwareGenerativeAIModel,
	promptTemplate *template.Template,
	timeout time.Duration) *SuggestionCreator {

	out := &SuggestionCreator{
		BaseCommand:       *cor.NewBaseCommand(name),
		generativeAIModel: agent,
		template:          promptTemplate,
		timeout:           timeout,
	}
	out.InputParamName = GetDigestParameterName()

	// Initialize OpenTelemetry counters for monitoring model usage for this command.
	out.geminiInputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.input", out.GetName()))
	out.geminiOutputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.output", out.GetName()))
	out.geminiRetryCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.retry", out.GetName()))

	return out
}

// GenerateParams creates the map of dynamic data injected into the prompt
// template: the digest, the creator brief, and the few-shot example.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
//
// Outputs:
//   - map[string]interface{}: A map of keys and values for template substitution.
func (t *SuggestionCreator) GenerateParams(context cor.Context) map[string]interface{} {
	params := make(map[string]interface{})
	params["DIGEST"] = context.Get(t.GetInputParam())

	brief, _ := context.Get(GetBriefParameterName()).(*model.CreatorBrief)
	if brief == nil {
		brief = &model.CreatorBrief{}
	}
	params["NICHE"] = brief.Niche
	params["TONE"] = brief.Tone
	params["GOALS"] = strings.Join(brief.Goals, ", ")
	params["PILLARS"] = strings.Join(brief.Pillars, ", ")

	// A complete, well-formed JSON example in the prompt (few-shot prompting)
	// significantly improves the reliability of the model's output shape.
	exampleSet, _ := json.Marshal(model.GetExampleSuggestionSet())
	params["EXAMPLE_JSON"] = string(exampleSet)
	return params
}

// Execute contains the core logic for prompting the generative model.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (t *SuggestionCreator) Execute(context cor.Context) {
	if t.generativeAIModel == nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), &model.ServiceUnavailableError{Service: suggestionServiceName})
		return
	}

	// Render the prompt template with the dynamic params.
	var buffer bytes.Buffer
	if err := t.template.Execute(&buffer, t.GenerateParams(context)); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("failed to execute prompt template: %w", err))
		return
	}

	callCtx, cancel := goctx.WithTimeout(context.GetContext(), t.timeout)
	defer cancel()

	out, err := cloud.GenerateSuggestionResponse(
		callCtx,
		t.geminiInputTokenCounter,
		t.geminiOutputTokenCounter,
		t.geminiRetryCounter,
		0,
		t.generativeAIModel,
		cloud.NewTextPart(buffer.String()))
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), &model.ServiceFailureError{Service: suggestionServiceName, Err: err})
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), out)
}
