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

// Package model defines the data structures for the application. This file
// provides factory functions for hardcoded example instances of the data
// models.
//
// These example objects are used for "few-shot" prompting of the suggestion
// model. Embedding a concrete example of the desired JSON output inside the
// prompt guides the model toward responses that are consistent, correctly
// formatted, and easily parsable.
package model

// GetExampleSuggestionSet creates a sample SuggestionSet. It is serialized
// into the suggestion prompt so the model sees the exact response shape we
// expect: a one-line critique plus short, tagged editing instructions.
//
// Outputs:
//   - *SuggestionSet: A pointer to a hardcoded SuggestionSet object.
func GetExampleSuggestionSet() *SuggestionSet {
	return &SuggestionSet{
		Critique: "Strong subject but the opening is slow and the audio bed is uneven.",
		Suggestions: []Suggestion{
			{
				Text:     "Move the payoff shot into the first second.",
				Area:     "hook",
				Severity: "high",
			},
			{
				Text:     "Tighten cuts to under two seconds through the middle section.",
				Area:     "pacing",
				Severity: "med",
			},
			{
				Text:     "Duck the music a few decibels whenever speech is present.",
				Area:     "audio",
				Severity: "low",
			},
		},
	}
}
