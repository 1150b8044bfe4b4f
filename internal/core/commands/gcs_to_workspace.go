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

// Package commands provides the concrete pipeline steps that run inside a
// generation workflow chain. This file defines the command that downloads
// the uploaded track from GCS into the job workspace, bridging the cloud
// trigger to the local tools (decoder, ffmpeg) that need a file on disk.
//
// The download lands inside the context's workspace directory, never in the
// shared temp dir, so the file disappears with the workspace when the job
// ends on any path.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"

	"github.com/trackforge/go-video-gen/internal/cloud"
	"github.com/trackforge/go-video-gen/internal/core/cor"
	"github.com/trackforge/go-video-gen/internal/core/model"
)

// GetAudioFileName returns the context key holding the local path of the
// downloaded track, read later by the encoder for muxing.
func GetAudioFileName() string {
	return "__AUDIO_FILE__"
}

// GCSToWorkspace downloads the trigger object into the job workspace.
type GCSToWorkspace struct {
	cor.BaseCommand
	client *storage.Client
}

// NewGCSToWorkspace constructs the download command.
func NewGCSToWorkspace(name string, client *storage.Client) *GCSToWorkspace {
	return &GCSToWorkspace{BaseCommand: *cor.NewBaseCommand(name), client: client}
}

// Execute streams the GCS object into a workspace file named after the
// uploaded object.
func (c *GCSToWorkspace) Execute(context cor.Context) {
	msg := context.Get(c.GetInputParam()).(*cloud.GCSObject)

	obj := c.client.Bucket(msg.Bucket).Object(msg.Name)
	reader, err := obj.NewReader(context.GetContext())
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), model.NewResourceError(c.GetName(),
			fmt.Sprintf("failed to open gs://%s/%s", msg.Bucket, msg.Name), err))
		return
	}
	defer func() {
		if err := reader.Close(); err != nil {
			slog.Warn("failed to close GCS reader", "error", err)
		}
	}()

	localPath, err := context.WorkspaceFile(filepath.Base(msg.Name))
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), model.NewResourceError(c.GetName(), "workspace unavailable", err))
		return
	}

	dst, err := os.Create(localPath)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), model.NewResourceError(c.GetName(), "could not create workspace file", err))
		return
	}

	written, err := io.Copy(dst, reader)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), model.NewResourceError(c.GetName(),
			fmt.Sprintf("download failed after %d bytes", written), err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	slog.Info("downloaded track", "object", msg.Name, "bytes", written, "path", localPath)

	context.Add(GetAudioFileName(), localPath)
	context.Add(c.GetOutputParam(), localPath)
}
