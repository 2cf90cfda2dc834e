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
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/clipsight/clipsight/internal/core/model"
	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{
			name:       "input error carries its reason",
			err:        model.NewInputError(model.ReasonUnreadableFile, errors.New("bad header")),
			wantStatus: http.StatusBadRequest,
			wantReason: model.ReasonUnreadableFile,
		},
		{
			name:       "unconfigured suggestion service",
			err:        &model.ServiceUnavailableError{Service: "suggestion"},
			wantStatus: http.StatusServiceUnavailable,
			wantReason: model.ReasonSuggestionUnavailable,
		},
		{
			name:       "failed suggestion call",
			err:        &model.ServiceFailureError{Service: "suggestion", Err: errors.New("quota")},
			wantStatus: http.StatusBadGateway,
			wantReason: model.ReasonSuggestionFailed,
		},
		{
			name:       "wrapped typed error is still found",
			err:        fmt.Errorf("workflow: %w", &model.ServiceUnavailableError{Service: "suggestion"}),
			wantStatus: http.StatusServiceUnavailable,
			wantReason: model.ReasonSuggestionUnavailable,
		},
		{
			name:       "unknown errors are internal",
			err:        errors.New("disk full"),
			wantStatus: http.StatusInternalServerError,
			wantReason: model.ReasonInternal,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, reason := statusForError(tc.err)
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.wantReason, reason)
		})
	}
}

// TestAbortWithError verifies the rejection envelope: the status and reason
// body a client sees come from the error's type.
func TestAbortWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	abortWithError(c, model.NewInputError(model.ReasonFileTooLarge, nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), model.ReasonFileTooLarge)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"growth", "retention"}, splitList("growth, retention"))
	assert.Equal(t, []string{"fitness"}, splitList(" fitness ,, "))
	assert.Empty(t, splitList(""))
	assert.Empty(t, splitList(" , ,"))
}
