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
	"testing"

	"github.com/clipsight/clipsight/internal/core/commands"
	"github.com/clipsight/clipsight/internal/core/cor"
	"github.com/clipsight/clipsight/internal/core/model"
	test "github.com/clipsight/clipsight/internal/testutil"
	"github.com/stretchr/testify/assert"
)

// execParser runs the parser command over a raw response string, the way the
// chain pipes the suggestion model's output in.
func execParser(t *testing.T, raw string) cor.Context {
	t.Helper()
	chCtx := newTestContext(t)
	chCtx.Add(cor.CtxIn, raw)
	commands.NewSuggestionJsonToStruct("parse-suggestions").Execute(chCtx)
	return chCtx
}

// TestParseTaggedObjectResponse verifies the object form: text plus area and
// severity tags.
func TestParseTaggedObjectResponse(t *testing.T) {
	chCtx := execParser(t, test.GetTestSuggestionResponseText())
	assert.False(t, chCtx.HasErrors())

	set := chCtx.Get(cor.CtxOut).(*model.SuggestionSet)
	assert.Equal(t, "Strong topic but the opening lingers too long before the payoff.", set.Critique)
	assert.Len(t, set.Suggestions, 3)
	assert.Equal(t, "Move the reveal from 0:07 to the first second.", set.Suggestions[0].Text)
	assert.Equal(t, "hook", set.Suggestions[0].Area)
	assert.Equal(t, "high", set.Suggestions[0].Severity)
}

// TestParseStringListResponse verifies the plain-string fallback form, which
// gets tagged with defaults.
func TestParseStringListResponse(t *testing.T) {
	chCtx := execParser(t, test.GetTestSuggestionStringListText())
	assert.False(t, chCtx.HasErrors())

	set := chCtx.Get(cor.CtxOut).(*model.SuggestionSet)
	assert.Equal(t, "Solid clip, minor polish needed.", set.Critique)
	assert.Len(t, set.Suggestions, 2)
	assert.Equal(t, "Add a caption in the first second.", set.Suggestions[0].Text)
	assert.Equal(t, "clarity", set.Suggestions[0].Area)
	assert.Equal(t, "med", set.Suggestions[0].Severity)
}

// TestParseNormalizesUnknownTags verifies out-of-vocabulary tags and alternate
// text keys are normalized, and blank elements are dropped.
func TestParseNormalizesUnknownTags(t *testing.T) {
	raw := `{
	  "critique": "ok",
	  "suggestions": [
	    {"instruction": "Tighten the intro.", "area": "SOUNDTRACK", "severity": "critical"},
	    {"suggestion": "Brighten the first frame.", "area": "Visual", "severity": "LOW"},
	    {"text": "   "},
	    ""
	  ]
	}`
	chCtx := execParser(t, raw)
	assert.False(t, chCtx.HasErrors())

	set := chCtx.Get(cor.CtxOut).(*model.SuggestionSet)
	assert.Len(t, set.Suggestions, 2)
	assert.Equal(t, "Tighten the intro.", set.Suggestions[0].Text)
	assert.Equal(t, "clarity", set.Suggestions[0].Area, "unknown area falls back to the default")
	assert.Equal(t, "med", set.Suggestions[0].Severity, "unknown severity falls back to the default")
	assert.Equal(t, "visual", set.Suggestions[1].Area)
	assert.Equal(t, "low", set.Suggestions[1].Severity)
}

// TestParseCapsSuggestionCount verifies no more than five suggestions survive.
func TestParseCapsSuggestionCount(t *testing.T) {
	raw := `{
	  "critique": "long list",
	  "suggestions": ["one 1", "two 2", "three 3", "four 4", "five 5", "six 6", "seven 7"]
	}`
	chCtx := execParser(t, raw)
	set := chCtx.Get(cor.CtxOut).(*model.SuggestionSet)
	assert.Len(t, set.Suggestions, 5)
}

// TestParseInvalidJsonIsFatal verifies a response that is not JSON at all is
// recorded as a service failure, stopping the chain.
func TestParseInvalidJsonIsFatal(t *testing.T) {
	chCtx := execParser(t, "I'm sorry, I can't produce JSON today.")
	assert.True(t, chCtx.HasErrors())

	var failure *model.ServiceFailureError
	for _, err := range chCtx.GetErrors() {
		assert.ErrorAs(t, err, &failure)
	}
	assert.Nil(t, chCtx.Get(cor.CtxOut))
}
