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
// pipeline consumes. This file implements the speech-to-text client: a
// multipart upload of the extracted audio track to a whisper-compatible HTTP
// endpoint, requesting segment-level timestamps (verbose_json). The speech
// stage treats every failure here as "no transcript" and carries on.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/clipsight/clipsight/internal/core/model"
)

// Transcriber turns an audio file into a timed transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*model.Transcript, error)
}

// WhisperTranscriber posts audio to an OpenAI-compatible transcription
// endpoint and parses the segment-level response.
type WhisperTranscriber struct {
	baseURL   string
	apiKey    string
	modelName string
	client    *http.Client
}

// NewWhisperTranscriber builds the client. Returns nil when baseURL is empty,
// which the caller reads as "transcription not configured" — the speech stage
// is optional by design.
//
// Inputs:
//   - baseURL: endpoint root, e.g. "https://api.openai.com/v1".
//   - apiKey: bearer token; may be empty for unauthenticated local servers.
//   - modelName: transcription model identifier, e.g. "whisper-1".
//   - timeout: whole-request timeout.
//
// Outputs:
//   - *WhisperTranscriber: the client, or nil when unconfigured.
func NewWhisperTranscriber(baseURL string, apiKey string, modelName string, timeout time.Duration) *WhisperTranscriber {
	if baseURL == "" {
		return nil
	}
	if modelName == "" {
		modelName = "whisper-1"
	}
	return &WhisperTranscriber{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		modelName: modelName,
		client:    &http.Client{Timeout: timeout},
	}
}

// whisperResponse mirrors the verbose_json transcription payload.
type whisperResponse struct {
	Text     string `json:"text"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe uploads the audio file and returns the ordered segments plus
// the flattened full text.
func (w *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) (*model.Transcript, error) {
	audio, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer audio.Close()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("failed to buffer audio file: %w", err)
	}
	_ = form.WriteField("model", w.modelName)
	_ = form.WriteField("response_format", "verbose_json")
	_ = form.WriteField("timestamp_granularities[]", "segment")
	if err := form.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	if w.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+w.apiKey)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("transcription service returned %d: %s", resp.StatusCode, string(snippet))
	}

	var parsed whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse transcription response: %w", err)
	}

	transcript := &model.Transcript{Text: strings.TrimSpace(parsed.Text)}
	for _, seg := range parsed.Segments {
		transcript.Segments = append(transcript.Segments, model.TranscriptSegment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		})
	}
	return transcript, nil
}
