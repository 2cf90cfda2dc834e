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

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/clipsight/clipsight/internal/cloud"
	"github.com/clipsight/clipsight/internal/core/ffmpeg"
	"github.com/clipsight/clipsight/internal/core/services"
	"github.com/clipsight/clipsight/internal/core/workflow"
)

// StateManager holds the shared components for the application.
type StateManager struct {
	config      *cloud.Config
	cloud       *cloud.ServiceClients
	workflow    *workflow.AnalysisWorkflow
	analysisSem chan struct{} // Bounds the number of analyses running at once.
}

var state = &StateManager{}

// SetupOS points the configuration loader at the local config directory when
// the environment does not say otherwise.
func SetupOS() (err error) {
	if os.Getenv(cloud.EnvConfigFilePrefix) == "" {
		if err = os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	if os.Getenv(cloud.EnvConfigRuntime) == "" {
		err = os.Setenv(cloud.EnvConfigRuntime, "local")
	}
	return err
}

// GetConfig is a singleton accessor for the application configuration.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup environment: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(config)
		state.config = config
	}
	return state.config
}

// InitState wires up every dependency the request handlers use: the AI
// service clients, the external tool runner, and the analysis workflow.
func InitState(ctx context.Context) {
	config := GetConfig()

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	state.cloud = cloudClients

	runner, err := ffmpeg.NewRunner(config.Tools.FFmpegPath, config.Tools.FFprobePath)
	if err != nil {
		panic(err)
	}

	// A missing tesseract binary disables hook-text recognition but is not
	// fatal; every other stage still runs.
	var ocr services.OCRService
	if tesseract, ocrErr := services.NewTesseractOCR(config.Tools.TesseractPath); ocrErr != nil {
		slog.Warn("tesseract unavailable, hook-text recognition disabled", "error", ocrErr)
	} else {
		ocr = tesseract
	}

	// Nil when transcription is not configured; the speech stage is skipped.
	var transcriber services.Transcriber
	if whisper := services.NewWhisperTranscriber(
		config.Transcription.BaseURL,
		config.Transcription.APIKey,
		config.Transcription.Model,
		time.Duration(config.Transcription.TimeoutInSeconds)*time.Second,
	); whisper != nil {
		transcriber = whisper
	}

	analysisWorkflow, err := workflow.NewAnalysisWorkflow(
		"analysis-workflow",
		config,
		runner,
		ocr,
		transcriber,
		cloudClients.SuggestionModel("suggestion"),
	)
	if err != nil {
		panic(err)
	}
	state.workflow = analysisWorkflow

	maxConcurrent := config.Application.MaxConcurrentAnalyses
	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}
	state.analysisSem = make(chan struct{}, maxConcurrent)
}
