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

// Package main is the entry point for the clip analysis backend server.
//
// This application sets up and runs a web server using the Gin framework. It
// provides a REST API that accepts a short vertical video upload plus the
// creator's brief, runs the diagnostic pipeline against it, and returns the
// analysis report. The server is instrumented with OpenTelemetry for logging,
// tracing, and metrics.
//
// Functions:
//   - main: Sets up the server, configures routes, initializes services, and
//     handles graceful shutdown.
//   - AnalysisRouter: Configures the analysis upload endpoint.
//   - HealthRouter: Configures the health probe endpoint.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/clipsight/clipsight/internal/core/model"
	"github.com/clipsight/clipsight/internal/telemetry"
)

// main is the primary entry point for the application. It orchestrates the
// setup of logging, telemetry, configuration, service clients, the web
// server, and API routes, and handles graceful shutdown on interrupt.
func main() {
	telemetry.SetupLogging()
	slog.Info("Logging initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := GetConfig()

	shutdownTelemetry, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("Tracing initialized")

	InitState(ctx)
	slog.Info("Initialized State")

	r := gin.Default()

	// Trace incoming requests.
	r.Use(otelgin.Middleware("clip-analysis-server"))

	// Permissive CORS: the analysis UI is served from a different origin
	// during development.
	r.Use(cors.Default())

	apiV1 := r.Group("/api/v1")
	{
		AnalysisRouter(apiV1)
		HealthRouter(apiV1)
	}

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
		// Uploads plus a full pipeline run take a while; these bound a
		// stuck client, not a healthy analysis.
		ReadTimeout:  120 * time.Second,
		WriteTimeout: 300 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen", "error", err)
		}
	}()
	slog.Info("Server Ready on port 8080")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutdown Server ...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed", "error", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		slog.Error("Telemetry Shutdown Failed", "error", err)
	}

	log.Println("Server exiting")
}

// HealthRouter configures the liveness probe. It also reports whether the
// suggestion service is configured, which is the one dependency a deployment
// is likely to misconfigure.
//
// Inputs:
//   - r: A *gin.RouterGroup to which the health route will be added.
func HealthRouter(r *gin.RouterGroup) {
	r.GET("/healthz", func(c *gin.Context) {
		suggestionState := "available"
		if state.cloud.SuggestionModel("suggestion") == nil {
			suggestionState = "unavailable"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":            "ok",
			"suggestionService": suggestionState,
		})
	})
}

// AnalysisRouter configures the analysis upload endpoint.
//
// This function defines the following endpoint:
//   - POST /analyses: Accepts a multipart upload with a "video" file field
//     and the creator brief fields (niche, tone, goals, pillars), runs the
//     diagnostic pipeline, and returns the analysis report as JSON.
//
// Inputs:
//   - r: A *gin.RouterGroup to which the analysis routes will be added.
func AnalysisRouter(r *gin.RouterGroup) {
	analyses := r.Group("/analyses")
	{
		analyses.POST("", func(c *gin.Context) {
			config := GetConfig()
			maxBytes := int64(config.Application.MaxUploadMb) << 20

			fileHeader, err := c.FormFile("video")
			if err != nil {
				abortWithError(c, model.NewInputError(model.ReasonMissingFile, err))
				return
			}
			if maxBytes > 0 && fileHeader.Size > maxBytes {
				abortWithError(c, model.NewInputError(model.ReasonFileTooLarge, nil))
				return
			}

			// Persist the upload; the workflow owns its deletion.
			ext := filepath.Ext(fileHeader.Filename)
			videoPath := filepath.Join(os.TempDir(), "upload-"+uuid.NewString()+ext)
			if err := c.SaveUploadedFile(fileHeader, videoPath); err != nil {
				slog.ErrorContext(c.Request.Context(), "failed to persist upload", "error", err)
				abortWithError(c, err)
				return
			}

			// Sniff the real content type; extensions lie.
			kind, err := filetype.MatchFile(videoPath)
			if err != nil || kind.MIME.Type != "video" {
				_ = os.Remove(videoPath)
				abortWithError(c, model.NewInputError(model.ReasonUnreadableFile, err))
				return
			}

			brief := &model.CreatorBrief{
				Niche:   strings.TrimSpace(c.PostForm("niche")),
				Tone:    strings.TrimSpace(c.PostForm("tone")),
				Goals:   splitList(c.PostForm("goals")),
				Pillars: splitList(c.PostForm("pillars")),
			}

			// Bound concurrent pipeline runs; each one spawns external
			// tools and holds a working directory.
			select {
			case state.analysisSem <- struct{}{}:
				defer func() { <-state.analysisSem }()
			case <-c.Request.Context().Done():
				_ = os.Remove(videoPath)
				return
			}

			report, err := state.workflow.Run(c.Request.Context(), videoPath, brief)
			if err != nil {
				slog.ErrorContext(c.Request.Context(), "analysis failed", "error", err)
				abortWithError(c, err)
				return
			}

			c.JSON(http.StatusOK, report)
		})
	}
}

// abortWithError writes the JSON error envelope for a failed request; the
// status and reason come from the error's type.
func abortWithError(c *gin.Context, err error) {
	status, reason := statusForError(err)
	c.JSON(status, gin.H{"error": reason})
}

// statusForError maps the workflow's typed errors onto HTTP statuses and
// stable reason strings.
func statusForError(err error) (int, string) {
	var inputErr *model.InputError
	if errors.As(err, &inputErr) {
		return http.StatusBadRequest, inputErr.Reason
	}
	var unavailable *model.ServiceUnavailableError
	if errors.As(err, &unavailable) {
		return http.StatusServiceUnavailable, model.ReasonSuggestionUnavailable
	}
	var failure *model.ServiceFailureError
	if errors.As(err, &failure) {
		return http.StatusBadGateway, model.ReasonSuggestionFailed
	}
	return http.StatusInternalServerError, model.ReasonInternal
}

// splitList parses a comma-separated form field into trimmed, non-empty
// entries.
func splitList(in string) []string {
	parts := strings.Split(in, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
