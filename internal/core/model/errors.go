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

// Package model defines the core data structures for the application.
// This file defines the error taxonomy of the pipeline. The categories map
// directly to the HTTP boundary:
//
//   - InputError: the request itself is unusable (no file, unreadable file,
//     over the size cap). Surfaced as a client error; no processing happens.
//   - ServiceUnavailableError: the suggestion service is not configured.
//     Fatal to the request, since suggestions are the primary deliverable.
//   - ServiceFailureError: the suggestion service is configured but the call
//     or the response parse failed after the file was accepted.
//   - Anything else: an unexpected internal failure.
//
// Tool failures inside best-effort stages never appear here: stages recover
// locally by substituting an absent result and the pipeline continues.
package model

import "fmt"

// Machine-readable reason codes returned in error payloads.
const (
	ReasonMissingFile           = "missing_file"
	ReasonFileTooLarge          = "file_too_large"
	ReasonUnreadableFile        = "unreadable_file"
	ReasonSuggestionUnavailable = "suggestion_service_unavailable"
	ReasonSuggestionFailed      = "suggestion_service_failed"
	ReasonInternal              = "internal_error"
)

// InputError reports an unusable request. Reason is one of the Reason*
// constants above.
type InputError struct {
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("input rejected (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("input rejected (%s)", e.Reason)
}

func (e *InputError) Unwrap() error { return e.Err }

// NewInputError wraps err as an InputError with the given reason code.
func NewInputError(reason string, err error) *InputError {
	return &InputError{Reason: reason, Err: err}
}

// ServiceUnavailableError indicates the suggestion service was never
// configured for this deployment.
type ServiceUnavailableError struct {
	Service string
}

func (e *ServiceUnavailableError) Error() string {
	return fmt.Sprintf("%s service is not configured", e.Service)
}

// ServiceFailureError indicates a configured suggestion service call failed
// or returned output the pipeline could not parse.
type ServiceFailureError struct {
	Service string
	Err     error
}

func (e *ServiceFailureError) Error() string {
	return fmt.Sprintf("%s service failed: %v", e.Service, e.Err)
}

func (e *ServiceFailureError) Unwrap() error { return e.Err }
