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

// Package cor (Chain of Responsibility) provides the building blocks for the
// analysis workflow. This file defines the interfaces that govern commands,
// chains, and the shared execution context.
//
// The pipeline's failure policy lives on top of these pieces: best-effort
// stages record absent results in the context and never call AddError, so the
// chain keeps moving; only a fatal stage (suggestion composition) adds an
// error, which stops the chain and surfaces to the caller.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the keys used for the primary data flow between
// adjacent commands in a chain.
const (
	// CtxIn is the default key for a command's primary input. The chain
	// populates it with the previous command's output.
	CtxIn = "__IN__"
	// CtxOut is the default key where a command places its primary output.
	CtxOut = "__OUT__"
)

// Context is the shared state for a single workflow execution. It carries
// data between commands, collects errors, and owns the run's ephemeral
// working directory.
type Context interface {
	// SetContext sets the standard Go context.Context, used for
	// cancellation and trace propagation.
	SetContext(context context.Context)

	// GetContext retrieves the standard Go context.Context.
	GetContext() context.Context

	// Add stores a key-value pair. Returns the Context for chaining.
	Add(key string, value interface{}) Context

	// AddError records an error produced by a command, keyed by the
	// command's name. Recording an error halts a chain that is not
	// configured to continue on failure.
	AddError(key string, err error)

	// GetErrors returns every error recorded during the workflow.
	GetErrors() map[string]error

	// Get retrieves a value by key, or nil.
	Get(key string) interface{}

	// Remove deletes a key-value pair.
	Remove(key string)

	// HasErrors reports whether any error has been recorded.
	HasErrors() bool

	// SetWorkDir hands ownership of an ephemeral directory to this context.
	// The directory is removed recursively by Close. A context owns at most
	// one working directory and never shares it with another run.
	SetWorkDir(dir string)

	// GetWorkDir returns the owned working directory, or "" if none is set.
	GetWorkDir() string

	// AddTempFile tracks a file outside the working directory that must be
	// deleted when the run ends (e.g. the original upload).
	AddTempFile(file string)

	// GetTempFiles returns all tracked temporary file paths.
	GetTempFiles() []string

	// Close releases everything the run owns: tracked temp files and the
	// whole working directory. It must be deferred at workflow entry so
	// cleanup happens on every exit path.
	Close()
}

// Executable is any object with a core execution step.
type Executable interface {
	// Execute runs the object's business logic against the shared Context.
	Execute(context Context)
}

// Command is an atomic, testable unit of work in a workflow.
type Command interface {
	Executable

	// GetName returns the command's unique name, used for logs and spans.
	GetName() string

	// GetInputParam returns the context key of the command's primary input.
	GetInputParam() string

	// GetOutputParam returns the context key of the command's primary output.
	GetOutputParam() string

	// IsExecutable is the precondition check run before Execute.
	IsExecutable(context Context) bool

	// GetTracer returns the OpenTelemetry tracer for this command.
	GetTracer() trace.Tracer

	// GetMeter returns the OpenTelemetry meter for this command.
	GetMeter() metric.Meter

	// GetSuccessCounter returns the counter for successful executions.
	GetSuccessCounter() metric.Int64Counter

	// GetErrorCounter returns the counter for failed executions.
	GetErrorCounter() metric.Int64Counter
}

// Chain is a sequence of commands. A Chain is itself a Command, so chains can
// nest (Composite pattern).
type Chain interface {
	Command

	// ContinueOnFailure configures whether the chain keeps executing after
	// a command records an error. The analysis chain leaves this false so a
	// fatal suggestion-stage error stops the run.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command to the execution sequence.
	AddCommand(command Command) Chain
}
