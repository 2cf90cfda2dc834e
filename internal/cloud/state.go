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

// This file is responsible for initializing and holding the client objects the
// application needs to talk to external AI services. It acts as a dependency
// injection container, creating a single shared `ServiceClients` struct that
// can be passed throughout the application.
//
// Logic Flow:
//  1. The `NewCloudServiceClients` function is called at application startup.
//  2. It takes the application's configuration (`Config`) and a `context.Context`.
//  3. When a Google project is configured, it initializes the GenAI client and
//     wraps each configured agent model in a rate-limiting decorator.
//  4. When no project is configured, the struct is returned with a nil client:
//     the suggestion stage reports itself unavailable rather than the whole
//     server refusing to start.
//
// Structs:
//   - ServiceClients: A container struct holding the initialized AI service
//     clients, acting as a central state manager for external connections.
//
// Functions:
//   - NewCloudServiceClients: A factory function that creates and configures
//     the clients based on the application's configuration.
package cloud

import (
	"context"
	"log/slog"

	"google.golang.org/genai"
)

// ServiceClients is a central container for the clients that interact with
// external AI services. This pattern is a form of dependency injection, making
// it easy to manage and share these connections across the application.
//
// A nil GenAIClient means the suggestion service is not configured; callers
// must treat the suggestion capability as unavailable.
type ServiceClients struct {
	GenAIClient *genai.Client                           // Client for Google's Generative AI services (Vertex AI).
	AgentModels map[string]*QuotaAwareGenerativeAIModel // Configured GenAI agent models, keyed by a logical name.
}

// SuggestionModel returns the agent model registered under the given key, or
// nil when the service is unconfigured or the key is unknown.
func (c *ServiceClients) SuggestionModel(key string) *QuotaAwareGenerativeAIModel {
	if c == nil {
		return nil
	}
	return c.AgentModels[key]
}

// NewCloudServiceClients is a factory function that initializes the AI service
// clients based on the provided configuration. It serves as the main entry
// point for setting up the application's external dependencies.
//
// Inputs:
//   - ctx: The root context.Context for the application, used to manage the lifecycle of the clients.
//   - config: A pointer to the loaded application configuration (`Config`).
//
// Outputs:
//   - *ServiceClients: A pointer to the initialized ServiceClients struct. The
//     GenAIClient field is nil when no Google project is configured.
//   - error: An error if a configured client fails to initialize.
func NewCloudServiceClients(ctx context.Context, config *Config) (*ServiceClients, error) {
	clients := &ServiceClients{
		AgentModels: make(map[string]*QuotaAwareGenerativeAIModel),
	}

	// Without a project the suggestion service is simply absent. Analyses still
	// run; requests fail with a service-unavailable error at the final stage.
	if config.Application.GoogleProjectId == "" {
		slog.Warn("no google project configured, suggestion service disabled")
		return clients, nil
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  config.Application.GoogleProjectId,
		Location: config.Application.GoogleLocation,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		slog.Error("failed to create genai client", "error", err)
		return nil, err
	}
	clients.GenAIClient = gc

	// Create a generative model for each agent configuration, apply its settings
	// (temperature, TopK, etc.), and wrap it in the rate-limiting decorator.
	for amKey, values := range config.AgentModels {
		mimeType := "text/plain"
		if values.OutputFormat == "json" {
			mimeType = "application/json"
		}
		model := &genai.GenerateContentConfig{
			Temperature:       genai.Ptr[float32](values.Temperature),
			TopP:              genai.Ptr[float32](values.TopP),
			TopK:              genai.Ptr[float32](values.TopK),
			MaxOutputTokens:   values.MaxTokens,
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: values.SystemInstructions}}},
			SafetySettings:    DefaultSafetySettings,
			ResponseMIMEType:  mimeType,
			Tools:             []*genai.Tool{},
		}
		clients.AgentModels[amKey] = NewQuotaAwareModel(model, values.Model, gc.Models, values.RateLimit)
	}

	return clients, nil
}
