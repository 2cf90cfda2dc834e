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

// This file defines hook-text extraction: recognizing the on-screen text a
// viewer sees in the very first moments of the clip.
//
// Logic Flow:
//  1. Frames are grabbed at a handful of early offsets. The grabs are
//     independent, so a small worker pool extracts them concurrently.
//  2. Each extracted frame is OCR'd. Results are gathered per offset.
//  3. Offsets are then considered in their original order, and the first
//     non-empty recognized text wins. Ordering matters: a caption visible at
//     the first frame is the hook, even if a later frame has more text.
//  4. The winning text is whitespace-normalized and truncated to the
//     configured rune budget.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/clipsight/clipsight/internal/core/cor"
	"github.com/clipsight/clipsight/internal/core/model"
	"github.com/clipsight/clipsight/internal/core/services"
)

// FrameExtractor is the view of the ffmpeg runner the hook-text command needs.
type FrameExtractor interface {
	ExtractFrame(ctx context.Context, path string, offset float64, scaleWidth int, outPath string) error
}

// HookTextExtractor is a command that extracts early frames and recognizes
// their on-screen text.
type HookTextExtractor struct {
	cor.BaseCommand
	extractor       FrameExtractor
	ocr             services.OCRService
	offsets         []float64
	maxLen          int
	scaleWidth      int
	numberOfWorkers int
}

// NewHookTextExtractor is the constructor for the HookTextExtractor command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - extractor: The frame extraction implementation.
//   - ocr: The text recognition service.
//   - offsets: The sample offsets in seconds, in priority order.
//   - maxLen: The rune budget for the recognized text.
//   - scaleWidth: The width frames are scaled to before OCR.
//   - numberOfWorkers: The size of the worker pool for concurrent extraction.
//
// Outputs:
//   - *HookTextExtractor: A pointer to the newly instantiated command.
func NewHookTextExtractor(
	name string,
	extractor FrameExtractor,
	ocr services.OCRService,
	offsets []float64,
	maxLen int,
	scaleWidth int,
	numberOfWorkers int) *HookTextExtractor {
	out := &HookTextExtractor{
		BaseCommand:     *cor.NewBaseCommand(name),
		extractor:       extractor,
		ocr:             ocr,
		offsets:         offsets,
		maxLen:          maxLen,
		scaleWidth:      scaleWidth,
		numberOfWorkers: numberOfWorkers,
	}
	out.InputParamName = GetVideoFileParameterName()
	out.OutputParamName = GetHookTextParameterName()
	return out
}

// hookFrameJob is the unit of work handed to the extraction pool.
type hookFrameJob struct {
	index  int
	offset float64
}

// hookFrameResult carries the recognized text for one offset back to the
// aggregation step.
type hookFrameResult struct {
	index int
	text  string
	err   error
}

// Execute extracts and OCRs the early frames, then picks the first non-empty
// text in offset order. This stage is best-effort: any failure just produces
// an empty hook text.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (t *HookTextExtractor) Execute(context cor.Context) {
	videoPath := context.Get(t.GetInputParam()).(string)
	goCtx := context.GetContext()

	// Without a recognizer there is nothing to do; the report renders an
	// empty hook.
	if t.ocr == nil {
		t.GetSuccessCounter().Add(goCtx, 1)
		hook := &model.HookText{FrameOffset: -1}
		context.Add(t.GetOutputParam(), hook)
		context.Add(cor.CtxOut, hook)
		return
	}

	jobs := make(chan *hookFrameJob, len(t.offsets))
	results := make(chan *hookFrameResult, len(t.offsets))

	var wg sync.WaitGroup
	for w := 0; w < t.numberOfWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				framePath := filepath.Join(context.GetWorkDir(), fmt.Sprintf("hook-%02d.jpg", job.index))
				if err := t.extractor.ExtractFrame(goCtx, videoPath, job.offset, t.scaleWidth, framePath); err != nil {
					results <- &hookFrameResult{index: job.index, err: err}
					continue
				}
				text, err := t.ocr.RecognizeText(goCtx, framePath)
				results <- &hookFrameResult{index: job.index, text: text, err: err}
			}
		}()
	}

	for i, offset := range t.offsets {
		jobs <- &hookFrameJob{index: i, offset: offset}
	}
	close(jobs)
	wg.Wait()
	close(results)

	texts := make([]string, len(t.offsets))
	for r := range results {
		if r.err != nil {
			slog.WarnContext(goCtx, "hook frame recognition failed", "error", r.err)
			continue
		}
		texts[r.index] = normalizeText(r.text)
	}

	hook := &model.HookText{FrameOffset: -1}
	for i, text := range texts {
		if text != "" {
			hook.Text = truncateRunes(text, t.maxLen)
			hook.FrameOffset = t.offsets[i]
			break
		}
	}

	t.GetSuccessCounter().Add(goCtx, 1)
	context.Add(t.GetOutputParam(), hook)
	context.Add(cor.CtxOut, hook)
}

// normalizeText collapses all runs of whitespace to single spaces and trims
// the ends.
func normalizeText(in string) string {
	return strings.Join(strings.Fields(in), " ")
}

// truncateRunes cuts a string to at most max runes. Rune-based so multi-byte
// characters are never split.
func truncateRunes(in string, max int) string {
	runes := []rune(in)
	if len(runes) <= max {
		return in
	}
	return string(runes[:max])
}
