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

// Package model_test contains unit tests for the report data models: the
// derived-metric helpers and the JSON null conventions clients rely on.
package model_test

import (
	"encoding/json"
	"testing"

	"github.com/clipsight/clipsight/internal/core/model"
	"github.com/stretchr/testify/assert"
)

// TestAverageCutInterval verifies the inter-cut interval rule: duration over
// count rounded to one decimal when more than one cut exists, otherwise the
// full duration stands in.
func TestAverageCutInterval(t *testing.T) {
	// More than one cut: 42s / 7 cuts = 6.0s between cuts.
	assert.Equal(t, 6.0, model.AverageCutInterval(42, 7))
	// Rounding to one decimal: 10s / 3 cuts = 3.333... -> 3.3.
	assert.Equal(t, 3.3, model.AverageCutInterval(10, 3))
	// One cut or none: the whole duration.
	assert.Equal(t, 42.0, model.AverageCutInterval(42, 1))
	assert.Equal(t, 42.0, model.AverageCutInterval(42, 0))
}

// TestFirst3Cuts verifies that only timeline entries at or before the three
// second mark are counted, inclusive of the boundary.
func TestFirst3Cuts(t *testing.T) {
	cuts := &model.CutResult{
		Count:    5,
		Timeline: []float64{0.4, 1.2, 3.0, 3.01, 9.8},
	}
	assert.Equal(t, 3, cuts.First3Cuts())

	// No timeline (count-only fallback strategies) means zero.
	countOnly := &model.CutResult{Count: 4}
	assert.Equal(t, 0, countOnly.First3Cuts())
}

// TestSilenceRatio verifies the ratio math: sum of closed interval durations
// over the clamped duration, bounded to [0, 1].
func TestSilenceRatio(t *testing.T) {
	profile := &model.AudioProfile{
		Silences: []model.SilenceInterval{
			{Start: 1.0, End: 3.0},
			{Start: 10.0, End: 11.5},
		},
	}
	// 3.5s of silence over 35s of clip.
	assert.InDelta(t, 0.1, profile.SilenceRatio(35), 1e-9)

	// A zero duration must not divide by zero: the denominator clamps to 1,
	// and the result clamps to 1.
	assert.Equal(t, 1.0, profile.SilenceRatio(0))

	// An inverted interval contributes zero, not a negative value.
	inverted := &model.AudioProfile{
		Silences: []model.SilenceInterval{{Start: 5.0, End: 4.0}},
	}
	assert.Equal(t, 0.0, inverted.SilenceRatio(10))
}

// TestQualifyingSilences verifies the minimum-length filter used by the
// silence-derived cut fallback.
func TestQualifyingSilences(t *testing.T) {
	profile := &model.AudioProfile{
		Silences: []model.SilenceInterval{
			{Start: 0.0, End: 0.1},
			{Start: 1.0, End: 1.25},
			{Start: 2.0, End: 3.0},
		},
	}
	assert.Equal(t, 2, profile.QualifyingSilences(0.25))
	assert.Equal(t, 3, profile.QualifyingSilences(0.05))
	assert.Equal(t, 0, profile.QualifyingSilences(2.0))
}

// TestReportNullShape verifies the JSON convention for absent metrics:
// optional measurements are explicit nulls, collection fields are empty
// arrays, and all field names are stable.
func TestReportNullShape(t *testing.T) {
	report := &model.AnalysisReport{
		DurationSec: 12,
		CutTimeline: []float64{},
		Silences:    []model.SilenceInterval{},
		Suggestions: []string{},
	}

	data, err := json.Marshal(report)
	assert.NoError(t, err)

	var decoded map[string]interface{}
	assert.NoError(t, json.Unmarshal(data, &decoded))

	// Absent optional metrics are nulls, not missing keys.
	for _, key := range []string{"loudness", "firstSecond", "wordsPerSec", "transcript"} {
		value, present := decoded[key]
		assert.True(t, present, "expected key %q in report JSON", key)
		assert.Nil(t, value, "expected %q to be null", key)
	}

	// Collections are empty arrays, never null.
	assert.Equal(t, []interface{}{}, decoded["cutTimeline"])
	assert.Equal(t, []interface{}{}, decoded["silences"])
	assert.Equal(t, []interface{}{}, decoded["suggestions"])
}

// TestLoudnessStatsJSON verifies that the loudness block serializes pointer
// fields as explicit nulls when a measurement is absent.
func TestLoudnessStatsJSON(t *testing.T) {
	mean := -18.3
	stats := &model.LoudnessStats{MeanDb: &mean}

	data, err := json.Marshal(stats)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"meanDb": -18.3, "maxDb": null}`, string(data))
}
