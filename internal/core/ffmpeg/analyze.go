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

// Package ffmpeg wraps the external media tools. This file holds the
// analysis invocations: filters rendered to the null muxer whose only useful
// output is the diagnostic event stream on stderr.
package ffmpeg

import (
	"context"
	"fmt"
	"sort"

	"github.com/clipsight/clipsight/internal/core/model"
)

// SceneTimestamps runs scene-change detection at the given sensitivity
// against a stream downscaled to scaleWidth and returns the timestamps (in
// seconds, ascending) of every detected transition.
func (r *Runner) SceneTimestamps(ctx context.Context, path string, threshold float64, scaleWidth int) ([]float64, error) {
	filter := fmt.Sprintf("scale=%d:-2,select='gt(scene,%g)',showinfo", scaleWidth, threshold)
	transcript, err := r.run(ctx,
		"-i", path,
		"-vf", filter,
		"-f", "null", "-",
	)

	var timestamps []float64
	for _, ev := range parseAll(transcript) {
		if ev.Kind == EventCutDetected {
			timestamps = append(timestamps, ev.Seconds)
		}
	}
	sort.Float64s(timestamps)

	if err != nil && len(timestamps) == 0 {
		return nil, err
	}
	return timestamps, nil
}

// DetectSilence runs the silence-detection filter with the given noise floor
// (dB) and minimum duration (seconds). It returns every closed interval in
// order, plus a flag for an interval still open at stream end. The event
// parsing closes the most recently opened interval when an end marker
// arrives.
func (r *Runner) DetectSilence(ctx context.Context, path string, noiseDb float64, minDuration float64) ([]model.SilenceInterval, bool, error) {
	filter := fmt.Sprintf("silencedetect=noise=%gdB:d=%g", noiseDb, minDuration)
	transcript, err := r.run(ctx,
		"-i", path,
		"-af", filter,
		"-f", "null", "-",
	)

	var intervals []model.SilenceInterval
	open := false
	var openStart float64
	for _, ev := range parseAll(transcript) {
		switch ev.Kind {
		case EventSilenceStart:
			openStart = ev.Seconds
			open = true
		case EventSilenceEnd:
			if open {
				end := ev.Seconds
				if end < openStart {
					end = openStart
				}
				intervals = append(intervals, model.SilenceInterval{Start: openStart, End: end})
				open = false
			}
		}
	}

	if err != nil && len(intervals) == 0 && !open {
		return nil, false, err
	}
	return intervals, open, nil
}

// MeasureVolume runs the volume-measurement filter and returns the mean and
// peak levels in dB. Either value may be nil when the tool did not report it.
func (r *Runner) MeasureVolume(ctx context.Context, path string) (*model.LoudnessStats, error) {
	transcript, err := r.run(ctx,
		"-i", path,
		"-af", "volumedetect",
		"-f", "null", "-",
	)

	stats := &model.LoudnessStats{}
	for _, ev := range parseAll(transcript) {
		if ev.Kind != EventVolumeStat {
			continue
		}
		v := ev.Value
		switch ev.Key {
		case "mean":
			stats.MeanDb = &v
		case "max":
			stats.MaxDb = &v
		}
	}

	if err != nil && stats.MeanDb == nil && stats.MaxDb == nil {
		return nil, err
	}
	return stats, nil
}

// SignalStats runs the per-frame signal-statistics filter over the first
// window seconds of a stream downscaled to scaleWidth. The result carries
// the mean of the per-frame luma averages, the minimum and maximum Y bounds
// seen, and the derived contrast when both bounds are available.
func (r *Runner) SignalStats(ctx context.Context, path string, window float64, scaleWidth int) (*model.FirstSecondStats, error) {
	filter := fmt.Sprintf("scale=%d:-2,signalstats,metadata=print", scaleWidth)
	transcript, err := r.run(ctx,
		"-t", fmt.Sprintf("%g", window),
		"-i", path,
		"-vf", filter,
		"-f", "null", "-",
	)

	var (
		avgSum   float64
		avgCount int
		min, max *float64
	)
	for _, ev := range parseAll(transcript) {
		if ev.Kind != EventSignalStat {
			continue
		}
		v := ev.Value
		switch ev.Key {
		case "YAVG":
			avgSum += v
			avgCount++
		case "YMIN":
			if min == nil || v < *min {
				min = &v
			}
		case "YMAX":
			if max == nil || v > *max {
				max = &v
			}
		}
	}

	stats := &model.FirstSecondStats{YMin: min, YMax: max}
	if avgCount > 0 {
		mean := avgSum / float64(avgCount)
		stats.YAvg = &mean
	}
	if min != nil && max != nil {
		contrast := *max - *min
		stats.Contrast = &contrast
	}

	if err != nil && stats.YAvg == nil && min == nil && max == nil {
		return nil, err
	}
	return stats, nil
}
