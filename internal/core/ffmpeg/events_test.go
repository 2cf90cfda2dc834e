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

// The diagnostic line formats below are verbatim samples of ffmpeg stderr
// output for the filters the pipeline runs. These tests pin the parser to
// those formats.
package ffmpeg_test

import (
	"strings"
	"testing"

	"github.com/clipsight/clipsight/internal/core/ffmpeg"
	"github.com/stretchr/testify/assert"
)

// TestParseLineCutDetected verifies that a showinfo frame line yields a cut
// event with its pts_time, and that pts_time markers from other filters are
// ignored.
func TestParseLineCutDetected(t *testing.T) {
	line := `[Parsed_showinfo_2 @ 0x5640] n:   3 pts:  76800 pts_time:6.4     duration:    512`

	ev, ok := ffmpeg.ParseLine(line)
	assert.True(t, ok)
	assert.Equal(t, ffmpeg.EventCutDetected, ev.Kind)
	assert.InDelta(t, 6.4, ev.Seconds, 1e-9)

	// A pts_time outside a showinfo line must not count as a cut.
	_, ok = ffmpeg.ParseLine(`[Parsed_select_1 @ 0x5640] n:3 pts_time:6.4`)
	assert.False(t, ok)
}

// TestParseLineSilenceMarkers verifies both silence boundary formats.
func TestParseLineSilenceMarkers(t *testing.T) {
	start, ok := ffmpeg.ParseLine(`[silencedetect @ 0x5577] silence_start: 4.51271`)
	assert.True(t, ok)
	assert.Equal(t, ffmpeg.EventSilenceStart, start.Kind)
	assert.InDelta(t, 4.51271, start.Seconds, 1e-9)

	end, ok := ffmpeg.ParseLine(`[silencedetect @ 0x5577] silence_end: 5.32844 | silence_duration: 0.81573`)
	assert.True(t, ok)
	assert.Equal(t, ffmpeg.EventSilenceEnd, end.Kind)
	assert.InDelta(t, 5.32844, end.Seconds, 1e-9)
}

// TestParseLineVolumeStats verifies the volumedetect summary lines, which
// carry negative dB values.
func TestParseLineVolumeStats(t *testing.T) {
	mean, ok := ffmpeg.ParseLine(`[Parsed_volumedetect_0 @ 0x560] mean_volume: -18.3 dB`)
	assert.True(t, ok)
	assert.Equal(t, ffmpeg.EventVolumeStat, mean.Kind)
	assert.Equal(t, "mean", mean.Key)
	assert.InDelta(t, -18.3, mean.Value, 1e-9)

	max, ok := ffmpeg.ParseLine(`[Parsed_volumedetect_0 @ 0x560] max_volume: -2.1 dB`)
	assert.True(t, ok)
	assert.Equal(t, "max", max.Key)
	assert.InDelta(t, -2.1, max.Value, 1e-9)
}

// TestParseLineSignalStats verifies the per-frame signalstats metadata lines.
func TestParseLineSignalStats(t *testing.T) {
	ev, ok := ffmpeg.ParseLine(`[Parsed_metadata_2 @ 0x55d] lavfi.signalstats.YAVG=112.439`)
	assert.True(t, ok)
	assert.Equal(t, ffmpeg.EventSignalStat, ev.Kind)
	assert.Equal(t, "YAVG", ev.Key)
	assert.InDelta(t, 112.439, ev.Value, 1e-9)

	// Unknown signalstats keys are not events.
	_, ok = ffmpeg.ParseLine(`[Parsed_metadata_2 @ 0x55d] lavfi.signalstats.UAVG=52.1`)
	assert.False(t, ok)
}

// TestParseDiagnostics verifies that a whole transcript is scanned in order
// and unrelated lines are skipped.
func TestParseDiagnostics(t *testing.T) {
	transcript := strings.Join([]string{
		`ffmpeg version 6.0 Copyright (c) 2000-2023 the FFmpeg developers`,
		`[silencedetect @ 0x5577] silence_start: 1.0`,
		`frame=  120 fps= 60 q=-0.0 size=N/A time=00:00:04.80`,
		`[silencedetect @ 0x5577] silence_end: 2.5 | silence_duration: 1.5`,
		`[Parsed_showinfo_2 @ 0x5640] n:   0 pts:  12800 pts_time:0.53     duration:512`,
	}, "\n")

	events := ffmpeg.ParseDiagnostics(strings.NewReader(transcript))
	assert.Len(t, events, 3)
	assert.Equal(t, ffmpeg.EventSilenceStart, events[0].Kind)
	assert.Equal(t, ffmpeg.EventSilenceEnd, events[1].Kind)
	assert.Equal(t, ffmpeg.EventCutDetected, events[2].Kind)
}
