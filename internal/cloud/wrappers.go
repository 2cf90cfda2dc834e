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

// This file implements a wrapper around the standard Generative AI client.
// The wrapper uses the Decorator pattern to add rate limiting and a retry
// mechanism to the Generative AI model without altering the client itself.
//
// Structs:
//   - QuotaAwareGenerativeAIModel: Wraps the genai model handle and adds a rate limiter.
//
// Functions:
//   - NewQuotaAwareModel: A constructor to create a new instance of the wrapped model.
//   - GenerateContent: An overridden method that intercepts calls to the AI model
//     to enforce rate limiting and retries.
package cloud

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// QuotaAwareGenerativeAIModel is a decorator struct that wraps the genai model
// handle to add rate-limiting capabilities. Calls go through GenerateContent,
// which enforces the limiter before reaching the underlying client.
type QuotaAwareGenerativeAIModel struct {
	GenerativeContentConfig *genai.GenerateContentConfig // The generation parameters sent with every request.
	ModelName               string
	ModelHandle             *genai.Models
	RateLimit               rate.Limiter // Controls request frequency against the model quota.
}

// NewQuotaAwareModel is a constructor function that creates a new
// QuotaAwareGenerativeAIModel. It takes the generation config, the model name
// and handle, and a rate limit in requests per second.
//
// Inputs:
//   - wrapped: The generation config applied to every request.
//   - name: The model identifier, e.g. "gemini-2.0-flash".
//   - modelHandle: The genai models handle used to issue requests.
//   - requestsPerSecond: The maximum number of API calls allowed per second.
//
// Outputs:
//   - *QuotaAwareGenerativeAIModel: A pointer to the newly created wrapper.
func NewQuotaAwareModel(wrapped *genai.GenerateContentConfig, name string, modelHandle *genai.Models, requestsPerSecond int) *QuotaAwareGenerativeAIModel {
	return &QuotaAwareGenerativeAIModel{
		GenerativeContentConfig: wrapped,
		ModelName:               name,
		ModelHandle:             modelHandle,
		// Allows a burst of `requestsPerSecond` events and replenishes the
		// token bucket at a rate of 1 token per second.
		RateLimit: *rate.NewLimiter(rate.Every(time.Second/1), requestsPerSecond),
	}
}

// GenerateContent intercepts calls to the underlying model and enforces the
// rate limit and retry policy.
//
// Logic Flow:
//  1. Check the rate limiter.
//  2. If a request is allowed:
//     a. Call the underlying GenerateContent method.
//     b. If it fails, check the retry count carried on the context.
//     c. If retries are available, wait and call itself to try again.
//     d. If no retries are left, return the error.
//  3. If a request is NOT allowed (rate-limited):
//     a. Wait for a short period.
//     b. Recursively call itself to re-queue the request.
//
// Inputs:
//   - ctx: The context for the request. It carries the retry state and the
//     caller's deadline.
//   - content: The prompt content.
//
// Outputs:
//   - *genai.GenerateContentResponse: The response from the AI model if successful.
//   - error: An error if the request fails after all retries or the context expires.
func (q *QuotaAwareGenerativeAIModel) GenerateContent(ctx context.Context, content []*genai.Content) (resp *genai.GenerateContentResponse, err error) {
	// Non-blocking check against the limiter.
	if q.RateLimit.Allow() {
		resp, err = q.ModelHandle.GenerateContent(ctx, q.ModelName, content, q.GenerativeContentConfig)
		if err != nil {
			// Get the current retry count from the context.
			retryCount, ok := ctx.Value(retryCountKey).(int)
			if !ok {
				// This is the first attempt.
				retryCount = 0
			}
			if retryCount > 3 {
				return nil, errors.New("failed generation on max retries")
			}
			errCtx := context.WithValue(ctx, retryCountKey, retryCount+1)
			// Give the service a moment to recover, but respect the caller's deadline.
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(2 * time.Second):
			}
			return q.GenerateContent(errCtx, content)
		}
		return resp, err
	}
	// The limiter rejected the request; wait and re-queue.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(time.Second):
	}
	return q.GenerateContent(ctx, content)
}

type contextKey string

// retryCountKey carries the retry attempt number across recursive calls.
const retryCountKey = contextKey("retry")
