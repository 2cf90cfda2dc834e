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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files, and holds the long-lived service clients built
// from that configuration (GenAI models, transcription, OCR).
//
// This file centralizes all configuration-related structs, making it easy
// to understand and manage the application's configurable parameters.
//
// Structs:
//   - Tools: Paths to the external binaries the pipeline shells out to.
//   - Analysis: Tunables for the media analysis stages.
//   - Transcription: Configuration for the speech-to-text endpoint.
//   - PromptTemplates: Holds the text templates for prompts sent to GenAI models.
//   - GenerativeAIModel: Configuration for a generative language model.
//   - Config: The top-level struct that aggregates all other configuration structs.
//
// Functions:
//   - NewConfig: A constructor that initializes a new Config object with empty maps.
package cloud

import "google.golang.org/genai"

// DefaultSafetySettings defines the default content safety thresholds for GenAI
// models. These settings are non-restrictive: the input is the creator's own
// footage, and blocked responses would silently fail entire analyses.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// Tools holds the paths to the external binaries the analysis stages invoke.
// Empty values fall back to a PATH lookup.
type Tools struct {
	FFmpegPath    string `toml:"ffmpeg"`    // Path to the ffmpeg binary.
	FFprobePath   string `toml:"ffprobe"`   // Path to the ffprobe binary.
	TesseractPath string `toml:"tesseract"` // Path to the tesseract binary.
}

// Analysis groups the tunables for the media analysis stages. The defaults in
// configs/.env.toml are calibrated for vertical short-form video.
type Analysis struct {
	SceneThreshold      float64 `toml:"scene_threshold"`       // Strict scene-change score threshold for the first cut-detection pass.
	SceneThresholdLoose float64 `toml:"scene_threshold_loose"` // Relaxed threshold for the second pass.
	SilenceNoiseDb      float64 `toml:"silence_noise_db"`      // Noise floor in dB for silence detection.
	SilenceMinDuration  float64 `toml:"silence_min_duration"`  // Minimum silence length in seconds to report.
	ShotSilenceMin      float64 `toml:"shot_silence_min"`      // Minimum silence length to treat as a shot boundary in the silence fallback.
	SampleFps           int     `toml:"sample_fps"`            // Frame sampling rate for the frame-difference fallback.
	FrameDeltaThreshold float64 `toml:"frame_delta_threshold"` // Relative byte-size delta between sampled frames counted as a cut.
	HookTextMaxLen      int     `toml:"hook_text_max_len"`     // Maximum length in runes of the recognized hook text.
	OpeningWindow       float64 `toml:"opening_window"`        // Length in seconds of the visual opening window.
	ScaleWidth          int     `toml:"scale_width"`           // Width in pixels frames are scaled to before analysis.
}

// Transcription configures the whisper-compatible speech-to-text endpoint.
// An empty BaseURL disables the speech stage.
type Transcription struct {
	BaseURL          string `toml:"base_url"`           // Endpoint root, e.g. "https://api.openai.com/v1".
	APIKey           string `toml:"api_key"`            // Bearer token; may be empty for local servers.
	Model            string `toml:"model"`              // Transcription model identifier.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // Whole-request timeout.
}

// PromptTemplates holds the templates for the prompts sent to GenAI models.
type PromptTemplates struct {
	SuggestionPrompt string `toml:"suggestion"` // The template for generating improvement suggestions.
}

// GenerativeAIModel represents the configuration for a generative language model.
type GenerativeAIModel struct {
	Model              string  `toml:"model"`               // The name of the model.
	SystemInstructions string  `toml:"system_instructions"` // The system instructions for the model.
	Temperature        float32 `toml:"temperature"`         // The temperature parameter.
	TopP               float32 `toml:"top_p"`               // The top_p parameter.
	TopK               float32 `toml:"top_k"`               // The top_k parameter.
	MaxTokens          int32   `toml:"max_tokens"`          // The maximum number of output tokens.
	OutputFormat       string  `toml:"output_format"`       // The desired response MIME shorthand ("json" or "text").
	RateLimit          int     `toml:"rate_limit"`          // The rate limit in requests per second.
}

// Config represents the overall configuration for the application, loaded from
// TOML files. It acts as the root container for all other configuration structs.
type Config struct {
	// Application holds general application settings.
	Application struct {
		Name                  string `toml:"name"`                    // The name of the application.
		GoogleProjectId       string `toml:"google_project_id"`       // The Google Cloud project ID for the suggestion model.
		GoogleLocation        string `toml:"location"`                // The Google Cloud location for the suggestion model.
		ThreadPoolSize        int    `toml:"thread_pool_size"`        // The size of the worker pool for parallel frame work.
		MaxUploadMb           int    `toml:"max_upload_mb"`           // The maximum accepted upload size in megabytes.
		MaxConcurrentAnalyses int    `toml:"max_concurrent_analyses"` // The number of analyses allowed to run at once.
	} `toml:"application"`
	Tools           Tools                        `toml:"tools"`            // External tool paths.
	Analysis        Analysis                     `toml:"analysis"`         // Analysis stage tunables.
	Transcription   Transcription                `toml:"transcription"`    // Speech-to-text configuration.
	PromptTemplates PromptTemplates              `toml:"prompt_templates"` // Prompt templates configuration.
	AgentModels     map[string]GenerativeAIModel `toml:"agent_models"`     // A map of generative models, keyed by a logical name (e.g., "suggestion-flash").
}

// NewConfig is a constructor function that creates a new, initialized Config
// instance. The maps within the struct must be initialized to avoid nil
// pointer panics when the configuration loader populates them.
//
// Outputs:
//   - *Config: A pointer to a new Config struct with its map fields initialized.
func NewConfig() *Config {
	return &Config{
		AgentModels: make(map[string]GenerativeAIModel),
	}
}
