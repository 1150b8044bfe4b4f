// Copyright 2025 TrackForge Authors
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

// Package cor (Chain of Responsibility) provides the building blocks for
// assembling the video generation pipeline as a sequence of commands. This
// file defines the interfaces that govern the pattern: a shared Context that
// carries data and scratch files between commands, a Command that performs an
// atomic unit of work, and a Chain that orchestrates commands in order.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the keys used to pipe the primary value between
// commands in a chain.
const (
	// CtxIn is the default key for the primary input of a command. The chain
	// populates it with the output of the previous command.
	CtxIn = "__IN__"
	// CtxOut is the default key where a command places its primary output.
	// The chain moves the value to CtxIn before the next command runs.
	CtxOut = "__OUT__"
)

// Context is the shared state object passed through a chain of commands.
// Each execution of a job gets its own Context, and with it an isolated
// scratch workspace on disk. Every file a command marshals to disk lives in
// that workspace, so a single Close at the end of the job removes everything
// the job produced regardless of how the job ended.
type Context interface {
	// SetContext sets the standard Go context.Context used for cancellation
	// and OpenTelemetry trace propagation.
	SetContext(context context.Context)

	// GetContext retrieves the standard Go context.Context.
	GetContext() context.Context

	// JobID returns the unique identifier for this workflow execution.
	JobID() string

	// Workspace returns the absolute path of the job's private scratch
	// directory, creating it on first use. Two concurrent jobs never share
	// a workspace.
	Workspace() (string, error)

	// WorkspaceFile returns a path inside the job workspace for the given
	// file name, creating the workspace if needed.
	WorkspaceFile(name string) (string, error)

	// Add stores a key-value pair in the context. Returns the Context to
	// allow fluent chaining.
	Add(key string, value interface{}) Context

	// Get retrieves a value from the context by its key.
	Get(key string) interface{}

	// Remove deletes a key-value pair from the context.
	Remove(key string)

	// AddError records an error produced by a command. The key should be the
	// name of the command that failed.
	AddError(key string, err error)

	// GetErrors returns all errors collected during the workflow.
	GetErrors() map[string]error

	// HasErrors reports whether any command has recorded an error.
	HasErrors() bool

	// AddTempFile tracks a scratch file created outside the workspace so it
	// is removed on Close along with the workspace itself.
	AddTempFile(file string)

	// GetTempFiles returns all tracked scratch file paths.
	GetTempFiles() []string

	// Close removes the job workspace and any tracked scratch files. It must
	// run on every exit path, including failures and cancellation.
	Close()
}

// Executable is the minimal interface for anything with execution logic.
type Executable interface {
	// Execute performs the work, reading inputs from and writing outputs to
	// the shared Context.
	Execute(context Context)
}

// Command is an atomic, testable unit of work in a pipeline.
type Command interface {
	Executable

	// GetName returns the command's name, used for logging and telemetry.
	GetName() string

	// GetInputParam returns the context key the command reads its primary
	// input from.
	GetInputParam() string

	// GetOutputParam returns the context key the command writes its primary
	// output to.
	GetOutputParam() string

	// IsExecutable reports whether the command's preconditions are satisfied
	// by the current Context state.
	IsExecutable(context Context) bool

	// GetTracer returns the OpenTelemetry tracer for this command.
	GetTracer() trace.Tracer

	// GetMeter returns the OpenTelemetry meter for creating metrics.
	GetMeter() metric.Meter

	// GetSuccessCounter returns a counter incremented on success.
	GetSuccessCounter() metric.Int64Counter

	// GetErrorCounter returns a counter incremented on failure.
	GetErrorCounter() metric.Int64Counter
}

// Chain is an ordered sequence of commands. A Chain is itself a Command, so
// chains nest inside other chains.
type Chain interface {
	Command

	// ContinueOnFailure configures whether the chain keeps executing after a
	// command records an error. The default is to stop at the first failure.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command to the execution sequence.
	AddCommand(command Command) Chain
}
