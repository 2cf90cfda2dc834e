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

// Package services holds the clients for the black-box capabilities the
// pipeline consumes: optical character recognition and speech-to-text. This
// file implements the OCR client on top of the tesseract command-line tool.
// The pipeline only depends on the OCRService interface, so tests substitute
// a fake and the hook-text stage never notices.
package services

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// OCRService turns an image file into recognized text. An empty string with
// a nil error is a valid outcome: the frame simply contains no readable text.
type OCRService interface {
	RecognizeText(ctx context.Context, imagePath string) (string, error)
}

// TesseractOCR shells out to the tesseract binary.
type TesseractOCR struct {
	binaryPath string
}

// NewTesseractOCR resolves the tesseract binary and returns the client. An
// empty path falls back to a PATH lookup.
//
// Inputs:
//   - binaryPath: path to the tesseract binary, or "" to search PATH.
//
// Outputs:
//   - *TesseractOCR: the ready client.
//   - error: when the tool cannot be found.
func NewTesseractOCR(binaryPath string) (*TesseractOCR, error) {
	if binaryPath == "" {
		binaryPath = "tesseract"
	}
	resolved, err := exec.LookPath(binaryPath)
	if err != nil {
		return nil, fmt.Errorf("tesseract not found: %w", err)
	}
	return &TesseractOCR{binaryPath: resolved}, nil
}

// RecognizeText runs tesseract in stdout mode against the image and returns
// the raw recognized text. Caller normalizes whitespace and truncates.
func (t *TesseractOCR) RecognizeText(ctx context.Context, imagePath string) (string, error) {
	cmd := exec.CommandContext(ctx, t.binaryPath, imagePath, "stdout", "--psm", "6")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("tesseract failed: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
