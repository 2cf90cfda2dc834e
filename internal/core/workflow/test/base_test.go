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

// Package workflow_test contains integration-leaning tests for the analysis
// workflow. This file, `base_test.go`, provides the shared setup for the
// package through the special `TestMain` function: configuration, telemetry,
// and the AI service clients are initialized once and reused by every test.
// The test runtime configuration carries no Google project, so the clients
// come up in their degraded (suggestion-unavailable) shape and nothing here
// talks to the network.
package workflow_test

import (
	"context"
	"os"
	"testing"

	"github.com/clipsight/clipsight/internal/cloud"
	"github.com/clipsight/clipsight/internal/telemetry"
	test "github.com/clipsight/clipsight/internal/testutil"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
)

// Shared resources for the test suite, initialized once in TestMain.
var (
	err          error
	cloudClients *cloud.ServiceClients
	ctx          context.Context
	config       *cloud.Config
)

// Constants and global tracers/loggers for telemetry.
const tName = "github.com/clipsight/clipsight/tests/workflow"

var (
	tracer = otel.Tracer(tName)
	logger = otelslog.NewLogger(tName)
)

// TestMain initializes the shared state before any test in this package runs
// and tears it down afterwards.
//
// Inputs:
//   - m: A pointer to testing.M, which provides access to the test suite and
//     allows running the tests via m.Run().
func TestMain(m *testing.M) {
	// ---- Setup Phase ----

	var cancel context.CancelFunc
	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()

	// Load application configuration from test-specific files (`.env.test.toml`).
	config = test.GetConfig()

	// Initialize structured logging.
	telemetry.SetupLogging()

	// Initialize OpenTelemetry for tracing and metrics. The returned shutdown
	// function flushes any buffered telemetry data at the end of the run.
	shutdown, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		panic(err)
	}

	// Initialize the AI service clients. With no project configured, the
	// suggestion model comes up nil and the workflow reports the suggestion
	// service as unavailable.
	cloudClients, err = cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}

	// ---- Run Phase ----
	code := m.Run()

	// ---- Teardown Phase ----
	if err := shutdown(ctx); err != nil {
		logger.ErrorContext(ctx, "failed to shut down telemetry", "error", err)
	}
	os.Exit(code)
}
