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

package cor_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/clipsight/clipsight/internal/core/cor"
	"github.com/stretchr/testify/assert"
)

// TestBaseContextDataAndErrors exercises the property-bag surface the
// commands rely on.
func TestBaseContextDataAndErrors(t *testing.T) {
	chCtx := cor.NewBaseContext()

	chCtx.Add("key", "value")
	assert.Equal(t, "value", chCtx.Get("key"))
	assert.Nil(t, chCtx.Get("absent"))

	chCtx.Remove("key")
	assert.Nil(t, chCtx.Get("key"))

	assert.False(t, chCtx.HasErrors())
	chCtx.AddError("probe", os.ErrNotExist)
	assert.True(t, chCtx.HasErrors())
	assert.Equal(t, os.ErrNotExist, chCtx.GetErrors()["probe"])
}

// TestBaseContextCloseRemovesScopedResources verifies Close deletes the
// tracked temp files and the whole working directory tree.
func TestBaseContextCloseRemovesScopedResources(t *testing.T) {
	root := t.TempDir()

	workDir := filepath.Join(root, "run")
	assert.NoError(t, os.MkdirAll(filepath.Join(workDir, "samples"), 0o750))
	assert.NoError(t, os.WriteFile(filepath.Join(workDir, "samples", "frame.jpg"), []byte("x"), 0o600))

	upload := filepath.Join(root, "upload.mp4")
	assert.NoError(t, os.WriteFile(upload, []byte("x"), 0o600))

	chCtx := cor.NewBaseContext()
	chCtx.SetWorkDir(workDir)
	chCtx.AddTempFile(upload)
	assert.Equal(t, workDir, chCtx.GetWorkDir())

	chCtx.Close()

	_, err := os.Stat(workDir)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(upload)
	assert.True(t, os.IsNotExist(err))
}

// TestBaseContextCloseToleratesMissingFiles verifies Close is safe to call
// when the resources were never created or are already gone.
func TestBaseContextCloseToleratesMissingFiles(t *testing.T) {
	chCtx := cor.NewBaseContext()
	chCtx.AddTempFile(filepath.Join(t.TempDir(), "never-written.mp4"))
	assert.NotPanics(t, func() { chCtx.Close() })
}
