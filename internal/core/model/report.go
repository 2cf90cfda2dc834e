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

// Package model defines the core data structures for the application.
// This file contains the data model of the diagnostic pipeline: the results
// produced by each analysis stage and the terminal AnalysisReport aggregate
// that is serialized back to the caller.
//
// A deliberate convention throughout this file: any measurement an external
// tool may fail to produce is a pointer (or a nil-able slice). A nil value
// marshals to an explicit JSON null, so the report always has a complete,
// predictable shape even when several stages came back empty.
package model

import "math"

// ProbeResult holds the container-level metadata extracted by the media
// probing tool. It is immutable once produced.
type ProbeResult struct {
	// DurationSec is the container duration rounded to the nearest whole
	// second and clamped to zero. Stages that need sub-second precision do
	// their own math before rounding; everything user-facing uses this value.
	DurationSec int  `json:"durationSec"`
	HasVideo    bool `json:"hasVideo"`
	HasAudio    bool `json:"hasAudio"`
}

// CutResult is the outcome of visual cut detection. Timeline entries are in
// seconds, sorted ascending. The silence-derived and frame-sampling fallbacks
// produce a count with no timeline, so Timeline may be nil even when Count is
// greater than zero.
type CutResult struct {
	Count    int       `json:"count"`
	Timeline []float64 `json:"timeline"`
	// Strategy names the detection pass that produced the result, for
	// logging and the suggestion digest ("scene", "scene-loose",
	// "silence-derived", "frame-delta", or "none").
	Strategy string `json:"strategy"`
}

// First3Cuts returns the number of timeline entries at or before the three
// second mark. Only meaningful when a timeline exists.
func (c *CutResult) First3Cuts() int {
	n := 0
	for _, ts := range c.Timeline {
		if ts <= 3.0 {
			n++
		}
	}
	return n
}

// SilenceInterval is a contiguous span below the silence noise floor.
// End >= Start for every closed interval.
type SilenceInterval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the interval length in seconds, clamped to zero.
func (s SilenceInterval) Duration() float64 {
	return math.Max(0, s.End-s.Start)
}

// LoudnessStats holds the aggregate audio level measurements for the whole
// clip. Either field may be nil when the volume filter produced no value.
type LoudnessStats struct {
	MeanDb *float64 `json:"meanDb"`
	MaxDb  *float64 `json:"maxDb"`
}

// AudioProfile is the combined output of the audio profiling stage: closed
// silence intervals, a flag recording whether an interval was still open at
// stream end (it counts toward presence but not duration math), and loudness.
type AudioProfile struct {
	Silences []SilenceInterval `json:"silences"`
	// OpenInterval is true when a silence_start marker was never matched by
	// a silence_end before the stream ended.
	OpenInterval bool           `json:"openInterval"`
	Loudness     *LoudnessStats `json:"loudness"`
}

// SilenceRatio returns the fraction of the clip spent in closed silence
// intervals. The denominator is clamped to one second so a zero or missing
// duration can never divide by zero; the result is always within [0, 1].
func (a *AudioProfile) SilenceRatio(durationSec int) float64 {
	total := 0.0
	for _, s := range a.Silences {
		total += s.Duration()
	}
	ratio := total / math.Max(1, float64(durationSec))
	return math.Min(1, math.Max(0, ratio))
}

// QualifyingSilences counts intervals lasting at least min seconds. Used by
// the silence-derived cut fallback.
func (a *AudioProfile) QualifyingSilences(min float64) int {
	n := 0
	for _, s := range a.Silences {
		if s.Duration() >= min {
			n++
		}
	}
	return n
}

// FirstSecondStats carries brightness and contrast statistics over the
// opening window of the video. All values come from the per-frame signal
// statistics filter and any of them may be absent.
type FirstSecondStats struct {
	YAvg     *float64 `json:"yavg"`
	YMin     *float64 `json:"ymin"`
	YMax     *float64 `json:"ymax"`
	Contrast *float64 `json:"contrast"`
}

// TranscriptSegment is a single timed span of recognized speech.
type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript is the ordered segment list plus the flattened full text.
type Transcript struct {
	Segments []TranscriptSegment `json:"segments"`
	Text     string              `json:"text"`
}

// SpeechAnalysis is the output of the optional speech stage. A nil Transcript
// means transcription was not attempted or failed; the derived fields follow.
type SpeechAnalysis struct {
	Transcript    *Transcript `json:"transcript"`
	SpeechSeconds float64     `json:"speechSeconds"`
	WordsPerSec   *float64    `json:"wordsPerSec"`
	First2sText   string      `json:"first2sText"`
}

// HookText is the output of the hook-text extraction stage.
type HookText struct {
	Text string `json:"text"`
	// FrameOffset is the sample offset (seconds) whose frame produced the
	// text. Negative when no frame yielded any text.
	FrameOffset float64 `json:"frameOffset"`
}

// Suggestion is a single editing recommendation from the suggestion service,
// tagged with the part of the edit it addresses and how urgent it is.
type Suggestion struct {
	Text     string `json:"text"`
	Area     string `json:"area"`     // hook, pacing, clarity, audio, captions, visual
	Severity string `json:"severity"` // high, med, low
}

// SuggestionSet is the parsed, validated response of the suggestion service.
type SuggestionSet struct {
	Critique    string       `json:"critique"`
	Suggestions []Suggestion `json:"suggestions"`
}

// CreatorBrief carries the plain-text form fields submitted alongside the
// video. They personalize the suggestion prompt and never influence the
// measured metrics.
type CreatorBrief struct {
	Niche   string   `json:"niche"`
	Tone    string   `json:"tone"`
	Goals   []string `json:"goals"`
	Pillars []string `json:"pillars"`
}

// AnalysisReport is the terminal aggregate of one pipeline run. It is created
// once, after every stage has completed or failed quietly, and is immutable
// afterwards. Persistence is not this struct's concern.
type AnalysisReport struct {
	DurationSec     int               `json:"durationSec"`
	Cuts            int               `json:"cuts"`
	AvgCutSec       float64           `json:"avgCutSec"`
	CutTimeline     []float64         `json:"cutTimeline"`
	First3Cuts      int               `json:"first3Cuts"`
	HookText        string            `json:"hookText"`
	First2sText     string            `json:"first2sText"`
	CaptionsPresent bool              `json:"captionsPresent"`
	Silences        []SilenceInterval `json:"silences"`
	SilenceRatio    float64           `json:"silenceRatio"`
	Loudness        *LoudnessStats    `json:"loudness"`
	FirstSecond     *FirstSecondStats `json:"firstSecond"`
	WordsPerSec     *float64          `json:"wordsPerSec"`
	Transcript      *Transcript       `json:"transcript"`
	Suggestions     []string          `json:"suggestions"`
	Critique        string            `json:"critique"`
}

// AverageCutInterval implements the inter-cut interval rule: duration divided
// by cut count, rounded to one decimal, when more than one cut exists;
// otherwise the full duration.
func AverageCutInterval(durationSec int, cuts int) float64 {
	if cuts > 1 {
		return math.Round(float64(durationSec)/float64(cuts)*10) / 10
	}
	return float64(durationSec)
}
