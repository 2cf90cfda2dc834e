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

// This file defines the digest builder: it folds every measured metric into a
// compact plain-text block the suggestion prompt embeds. The model never sees
// raw tool output, only this digest, so what goes in here bounds what the
// suggestions can react to.
package commands

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/clipsight/clipsight/internal/core/cor"
	"github.com/clipsight/clipsight/internal/core/model"
)

// maxDigestKeywords caps how many transcript keywords the digest carries.
const maxDigestKeywords = 8

// minKeywordLength filters out short filler tokens before frequency ranking.
const minKeywordLength = 4

// DigestBuilder is a command that renders the accumulated metrics into the
// text block the suggestion prompt consumes.
type DigestBuilder struct {
	cor.BaseCommand
}

// NewDigestBuilder is the constructor for the DigestBuilder command.
func NewDigestBuilder(name string) *DigestBuilder {
	out := &DigestBuilder{BaseCommand: *cor.NewBaseCommand(name)}
	out.InputParamName = GetProbeParameterName()
	out.OutputParamName = GetDigestParameterName()
	return out
}

// Execute renders the digest from whatever stages managed to produce.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (t *DigestBuilder) Execute(context cor.Context) {
	probe := context.Get(t.GetInputParam()).(*model.ProbeResult)

	var b strings.Builder
	fmt.Fprintf(&b, "duration_sec: %d\n", probe.DurationSec)

	if cuts, ok := context.Get(GetCutsParameterName()).(*model.CutResult); ok && cuts != nil {
		fmt.Fprintf(&b, "cuts: %d (strategy %s, avg interval %.1fs)\n",
			cuts.Count, cuts.Strategy, model.AverageCutInterval(probe.DurationSec, cuts.Count))
		if cuts.Timeline != nil {
			fmt.Fprintf(&b, "cuts_in_first_3s: %d\n", cuts.First3Cuts())
		}
	}

	if hook, ok := context.Get(GetHookTextParameterName()).(*model.HookText); ok && hook != nil && hook.Text != "" {
		fmt.Fprintf(&b, "hook_text: %q\n", hook.Text)
	} else {
		b.WriteString("hook_text: none detected\n")
	}

	if profile, ok := context.Get(GetAudioProfileParameterName()).(*model.AudioProfile); ok && profile != nil {
		// An interval still open at stream end counts toward presence even
		// though its duration is unknown and excluded from the ratio.
		intervals := len(profile.Silences)
		if profile.OpenInterval {
			intervals++
		}
		fmt.Fprintf(&b, "silence_ratio: %.2f (%d intervals)\n",
			profile.SilenceRatio(probe.DurationSec), intervals)
		if profile.Loudness != nil && profile.Loudness.MeanDb != nil && profile.Loudness.MaxDb != nil {
			fmt.Fprintf(&b, "loudness: mean %.1f dB, max %.1f dB\n",
				*profile.Loudness.MeanDb, *profile.Loudness.MaxDb)
		}
	}

	if opening, ok := context.Get(GetOpeningParameterName()).(*model.FirstSecondStats); ok && opening != nil {
		if opening.YAvg != nil {
			fmt.Fprintf(&b, "opening_brightness: %.1f\n", *opening.YAvg)
		}
		if opening.Contrast != nil {
			fmt.Fprintf(&b, "opening_contrast: %.1f\n", *opening.Contrast)
		}
	}

	if speech, ok := context.Get(GetSpeechParameterName()).(*model.SpeechAnalysis); ok && speech != nil {
		if speech.WordsPerSec != nil {
			fmt.Fprintf(&b, "words_per_sec: %.2f\n", *speech.WordsPerSec)
		}
		if speech.First2sText != "" {
			fmt.Fprintf(&b, "first_2s_speech: %q\n", speech.First2sText)
		}
		if speech.Transcript != nil {
			if keywords := TopKeywords(speech.Transcript.Text, maxDigestKeywords); len(keywords) > 0 {
				fmt.Fprintf(&b, "transcript_keywords: %s\n", strings.Join(keywords, ", "))
			}
		}
	}

	digest := b.String()
	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), digest)
	context.Add(cor.CtxOut, digest)
}

// TopKeywords returns the most frequent words of the text, lowercased, with
// punctuation stripped, skipping tokens shorter than the minimum length. Ties
// break alphabetically so results are deterministic.
func TopKeywords(text string, max int) []string {
	counts := make(map[string]int)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		word := strings.TrimFunc(token, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len([]rune(word)) < minKeywordLength {
			continue
		}
		counts[word]++
	}

	words := make([]string, 0, len(counts))
	for word := range counts {
		words = append(words, word)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > max {
		words = words[:max]
	}
	return words
}
