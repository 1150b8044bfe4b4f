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
// assembling the video generation pipeline. This file defines BaseContext,
// the default implementation of the Context interface.
//
// BaseContext is the property bag for a single job execution. Beyond the
// usual data and error maps it owns the job's scratch workspace: a directory
// named after the job id, created lazily under the configured temp root. All
// intermediate files of a job (decoded audio, raw frames, the muxed video
// before upload, thumbnails) live inside that directory, so Close can remove
// the whole tree in one call no matter which command failed or whether the
// job was canceled half way through.
package cor

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// BaseContext is the default implementation of the Context interface.
type BaseContext struct {
	jobID     string
	tempRoot  string
	workspace string
	wsOnce    sync.Once
	wsErr     error
	data      map[string]interface{}
	errors    map[string]error
	tempFiles []string
	context   context.Context
}

// NewBaseContext creates a context for a new job. The job id is a fresh uuid
// and the workspace, when first requested, is created under the OS temp dir.
func NewBaseContext() Context {
	return NewBaseContextWithRoot(os.TempDir())
}

// NewBaseContextWithRoot creates a context whose workspace lives under the
// given root directory. Used when the deployment pins scratch space to a
// specific volume.
func NewBaseContextWithRoot(root string) Context {
	return &BaseContext{
		jobID:     uuid.NewString(),
		tempRoot:  root,
		data:      make(map[string]interface{}),
		errors:    make(map[string]error),
		tempFiles: make([]string, 0),
	}
}

// SetContext sets the underlying Go context. The chain uses this to hand
// each command the context of its OpenTelemetry span.
func (c *BaseContext) SetContext(context context.Context) {
	c.context = context
}

// GetContext retrieves the underlying Go context.
func (c *BaseContext) GetContext() context.Context {
	return c.context
}

// JobID returns the unique identifier for this execution.
func (c *BaseContext) JobID() string {
	return c.jobID
}

// Workspace returns the job's private scratch directory, creating it on
// first use. The directory name embeds the job id, which guarantees that
// concurrent jobs write to disjoint paths.
func (c *BaseContext) Workspace() (string, error) {
	c.wsOnce.Do(func() {
		dir := filepath.Join(c.tempRoot, "videogen-"+c.jobID)
		c.wsErr = os.MkdirAll(dir, 0o750)
		if c.wsErr == nil {
			c.workspace = dir
		}
	})
	return c.workspace, c.wsErr
}

// WorkspaceFile returns the path for a named file inside the job workspace.
func (c *BaseContext) WorkspaceFile(name string) (string, error) {
	dir, err := c.Workspace()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// Close removes the job workspace and any scratch files tracked outside it.
// Deferred at the start of every workflow execution so cleanup happens on
// success, failure, and cancellation alike.
func (c *BaseContext) Close() {
	for _, file := range c.GetTempFiles() {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove scratch file", "file", file, "error", err)
		}
	}
	if c.workspace != "" {
		if err := os.RemoveAll(c.workspace); err != nil {
			slog.Warn("failed to remove job workspace", "workspace", c.workspace, "error", err)
		}
	}
}

// Add stores a key-value pair in the context's data map.
func (c *BaseContext) Add(key string, value interface{}) Context {
	c.data[key] = value
	return c
}

// AddTempFile tracks a file outside the workspace for removal on Close.
func (c *BaseContext) AddTempFile(file string) {
	c.tempFiles = append(c.tempFiles, file)
}

// GetTempFiles returns the tracked scratch file paths.
func (c *BaseContext) GetTempFiles() []string {
	return c.tempFiles
}

// AddError records an error keyed by the command that produced it.
func (c *BaseContext) AddError(key string, err error) {
	c.errors[key] = err
}

// GetErrors returns the map of collected errors.
func (c *BaseContext) GetErrors() map[string]error {
	return c.errors
}

// Get retrieves a value from the data map, or nil if the key is absent.
func (c *BaseContext) Get(key string) interface{} {
	return c.data[key]
}

// Remove deletes a key-value pair from the data map.
func (c *BaseContext) Remove(key string) {
	delete(c.data, key)
}

// HasErrors reports whether any command has recorded an error.
func (c *BaseContext) HasErrors() bool {
	return len(c.errors) > 0
}
