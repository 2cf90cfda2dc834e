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

// This file defines the command that turns the suggestion model's raw JSON
// response into the validated SuggestionSet. Models drift: the response is
// accepted both as a list of plain instruction strings and as a list of
// tagged objects, and unknown tags are normalized rather than rejected.
package commands

import (
	"encoding/json"
	"strings"

	"github.com/clipsight/clipsight/internal/core/cor"
	"github.com/clipsight/clipsight/internal/core/model"
)

// maxSuggestions caps how many suggestions one report carries.
const maxSuggestions = 5

// defaultArea is used when the model omits or invents an area tag.
const defaultArea = "clarity"

// defaultSeverity is used when the model omits or invents a severity tag.
const defaultSeverity = "med"

// validAreas is the closed set of edit areas a suggestion may target.
var validAreas = map[string]bool{
	"hook": true, "pacing": true, "clarity": true,
	"audio": true, "captions": true, "visual": true,
}

// validSeverities is the closed set of severity tags.
var validSeverities = map[string]bool{"high": true, "med": true, "low": true}

// SuggestionJsonToStruct is a command that parses and validates the raw
// suggestion response.
type SuggestionJsonToStruct struct {
	cor.BaseCommand
}

// NewSuggestionJsonToStruct is the constructor for the SuggestionJsonToStruct command.
func NewSuggestionJsonToStruct(name string) *SuggestionJsonToStruct {
	return &SuggestionJsonToStruct{BaseCommand: *cor.NewBaseCommand(name)}
}

// rawSuggestionSet defers suggestion element decoding so both accepted shapes
// can be tried per element.
type rawSuggestionSet struct {
	Critique    string            `json:"critique"`
	Suggestions []json.RawMessage `json:"suggestions"`
}

// rawSuggestion is the object form of one suggestion. Models have been seen
// using any of the three text keys.
type rawSuggestion struct {
	Text        string `json:"text"`
	Instruction string `json:"instruction"`
	Suggestion  string `json:"suggestion"`
	Area        string `json:"area"`
	Severity    string `json:"severity"`
}

// Execute parses the raw response into a SuggestionSet. A response that is
// not valid JSON at all is a service failure and fatal to the request.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (t *SuggestionJsonToStruct) Execute(context cor.Context) {
	raw := context.Get(t.GetInputParam()).(string)

	var parsed rawSuggestionSet
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), &model.ServiceFailureError{Service: suggestionServiceName, Err: err})
		return
	}

	set := &model.SuggestionSet{
		Critique:    strings.TrimSpace(parsed.Critique),
		Suggestions: make([]model.Suggestion, 0, len(parsed.Suggestions)),
	}
	for _, element := range parsed.Suggestions {
		if len(set.Suggestions) >= maxSuggestions {
			break
		}
		if suggestion, ok := parseSuggestion(element); ok {
			set.Suggestions = append(set.Suggestions, suggestion)
		}
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), set)
}

// parseSuggestion decodes one element as either a plain string or a tagged
// object, normalizing the tags. Empty text drops the element.
func parseSuggestion(element json.RawMessage) (model.Suggestion, bool) {
	var text string
	if err := json.Unmarshal(element, &text); err == nil {
		text = normalizeText(text)
		if text == "" {
			return model.Suggestion{}, false
		}
		return model.Suggestion{Text: text, Area: defaultArea, Severity: defaultSeverity}, true
	}

	var obj rawSuggestion
	if err := json.Unmarshal(element, &obj); err != nil {
		return model.Suggestion{}, false
	}
	text = normalizeText(obj.Text)
	if text == "" {
		text = normalizeText(obj.Instruction)
	}
	if text == "" {
		text = normalizeText(obj.Suggestion)
	}
	if text == "" {
		return model.Suggestion{}, false
	}

	area := strings.ToLower(strings.TrimSpace(obj.Area))
	if !validAreas[area] {
		area = defaultArea
	}
	severity := strings.ToLower(strings.TrimSpace(obj.Severity))
	if !validSeverities[severity] {
		severity = defaultSeverity
	}
	return model.Suggestion{Text: text, Area: area, Severity: severity}, true
}
