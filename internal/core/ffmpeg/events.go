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

// Package ffmpeg wraps the external media tools. This file is the incremental
// parser that turns the tools' line-oriented diagnostic output into typed
// events. Keeping the regex matching here, behind event structs, means the
// analysis stages consume CutDetected/SilenceStart/SilenceEnd/VolumeStat/
// SignalStat values and never see the raw log format of any particular tool
// version.
package ffmpeg

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// EventKind identifies the diagnostic line a tool emitted.
type EventKind int

const (
	// EventCutDetected is a showinfo line for a frame the scene-change
	// select filter let through; Seconds holds its pts_time.
	EventCutDetected EventKind = iota
	// EventSilenceStart marks the opening of a silence interval.
	EventSilenceStart
	// EventSilenceEnd marks the close of the most recently opened interval.
	EventSilenceEnd
	// EventVolumeStat is a volumedetect summary value; Key is "mean" or
	// "max", Value is in dB.
	EventVolumeStat
	// EventSignalStat is a per-frame signalstats metadata value; Key is
	// "YAVG", "YMIN", or "YMAX".
	EventSignalStat
)

// Event is one typed diagnostic observation from a tool run.
type Event struct {
	Kind    EventKind
	Seconds float64
	Key     string
	Value   float64
}

var (
	ptsTimeRe      = regexp.MustCompile(`pts_time:\s*([0-9]+(?:\.[0-9]+)?)`)
	silenceStartRe = regexp.MustCompile(`silence_start:\s*(-?[0-9]+(?:\.[0-9]+)?)`)
	silenceEndRe   = regexp.MustCompile(`silence_end:\s*(-?[0-9]+(?:\.[0-9]+)?)`)
	volumeRe       = regexp.MustCompile(`(mean|max)_volume:\s*(-?[0-9]+(?:\.[0-9]+)?)\s*dB`)
	signalStatRe   = regexp.MustCompile(`lavfi\.signalstats\.(YAVG|YMIN|YMAX)=\s*(-?[0-9]+(?:\.[0-9]+)?)`)
)

// ParseLine matches a single diagnostic line against the known markers.
// Returns the typed event and true on a match being found.
func ParseLine(line string) (Event, bool) {
	if strings.Contains(line, "pts_time:") && strings.Contains(line, "Parsed_showinfo") {
		if m := ptsTimeRe.FindStringSubmatch(line); m != nil {
			v, err := strconv.ParseFloat(m[1], 64)
			if err == nil {
				return Event{Kind: EventCutDetected, Seconds: v}, true
			}
		}
	}
	if m := silenceStartRe.FindStringSubmatch(line); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return Event{Kind: EventSilenceStart, Seconds: v}, true
		}
	}
	if m := silenceEndRe.FindStringSubmatch(line); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return Event{Kind: EventSilenceEnd, Seconds: v}, true
		}
	}
	if m := volumeRe.FindStringSubmatch(line); m != nil {
		if v, err := strconv.ParseFloat(m[2], 64); err == nil {
			return Event{Kind: EventVolumeStat, Key: m[1], Value: v}, true
		}
	}
	if m := signalStatRe.FindStringSubmatch(line); m != nil {
		if v, err := strconv.ParseFloat(m[2], 64); err == nil {
			return Event{Kind: EventSignalStat, Key: m[1], Value: v}, true
		}
	}
	return Event{}, false
}

// ParseDiagnostics consumes a line-oriented diagnostic stream and returns
// every typed event in emission order.
func ParseDiagnostics(r io.Reader) []Event {
	var events []Event
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if ev, ok := ParseLine(scanner.Text()); ok {
			events = append(events, ev)
		}
	}
	return events
}

// parseAll is a convenience over ParseDiagnostics for in-memory transcripts.
func parseAll(transcript string) []Event {
	return ParseDiagnostics(strings.NewReader(transcript))
}
