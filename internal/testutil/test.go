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

// Package test provides utility functions to support the application's test
// suite: loading test-specific configuration and sample payloads shared
// across test packages.
package test

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/clipsight/clipsight/internal/cloud"
)

// StateManager acts as a simple in-memory cache for the application
// configuration during test runs, so the TOML files are read only once per
// test binary.
type StateManager struct {
	config *cloud.Config
}

// state holds the singleton StateManager instance.
var state = &StateManager{}

// HandleErr is a simple test helper that fails the test when err is non-nil.
//
// Inputs:
//   - err: The error to check.
//   - t: The *testing.T object from the current test.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("Error reading config file: %v", err)
	}
}

// GetTestSuggestionResponseText returns a hardcoded JSON string shaped like a
// suggestion model response using the tagged-object form. Used to test the
// response parser and report assembly without a live model.
func GetTestSuggestionResponseText() string {
	return `{
  "critique": "Strong topic but the opening lingers too long before the payoff.",
  "suggestions": [
    {"text": "Move the reveal from 0:07 to the first second.", "area": "hook", "severity": "high"},
    {"text": "Trim the 1.8s pause before the second point.", "area": "pacing", "severity": "med"},
    {"text": "Raise the voice track 3 dB over the music bed.", "area": "audio", "severity": "low"}
  ]
}`
}

// GetTestSuggestionStringListText returns a response using the plain-string
// form some model revisions fall back to.
func GetTestSuggestionStringListText() string {
	return `{
  "critique": "Solid clip, minor polish needed.",
  "suggestions": [
    "Add a caption in the first second.",
    "Cut the dead air at 0:12."
  ]
}`
}

// SetupOS configures the environment variables the configuration loader
// depends on, pointing it at the test configuration files
// (configs/.env.test.toml).
//
// Returns:
//   - An error if setting any environment variable fails.
func SetupOS() (err error) {
	// `go test` sets the working directory to the package under test, so a
	// cwd-relative prefix would never resolve; derive the repository root
	// from this file's source location and use an absolute path instead.
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		return errors.New("unable to determine testutil source location")
	}
	repoRoot := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
	err = os.Setenv(cloud.EnvConfigFilePrefix, filepath.Join(repoRoot, "configs"))
	if err != nil {
		return err
	}
	// The loader reads ".env.test.toml" for overrides under this runtime.
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig is a singleton accessor for the test configuration. The TOML
// files are loaded on first use and cached for subsequent calls.
//
// Returns:
//   - A pointer to the loaded and cached cloud.Config struct.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(config)
		state.config = config
	}
	return state.config
}
