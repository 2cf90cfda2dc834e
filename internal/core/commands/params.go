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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface for the video analysis
// pipeline. This file defines the canonical context parameter names the
// commands use to share intermediate results. Keeping them behind accessor
// functions means a rename never silently breaks a lookup.
package commands

// GetVideoFileParameterName returns the key under which the workflow stores
// the local path of the uploaded video file.
func GetVideoFileParameterName() string { return "__video_file__" }

// GetProbeParameterName returns the key for the container probe result.
func GetProbeParameterName() string { return "__probe__" }

// GetAudioProfileParameterName returns the key for the audio profile.
func GetAudioProfileParameterName() string { return "__audio_profile__" }

// GetCutsParameterName returns the key for the visual cut detection result.
func GetCutsParameterName() string { return "__cuts__" }

// GetHookTextParameterName returns the key for the recognized hook text.
func GetHookTextParameterName() string { return "__hook_text__" }

// GetSpeechParameterName returns the key for the speech analysis result.
func GetSpeechParameterName() string { return "__speech__" }

// GetOpeningParameterName returns the key for the visual opening statistics.
func GetOpeningParameterName() string { return "__opening__" }

// GetDigestParameterName returns the key for the metric digest handed to the
// suggestion model.
func GetDigestParameterName() string { return "__digest__" }

// GetBriefParameterName returns the key for the creator brief submitted with
// the upload.
func GetBriefParameterName() string { return "__brief__" }

// GetReportParameterName returns the key for the final assembled report.
func GetReportParameterName() string { return "__report__" }
