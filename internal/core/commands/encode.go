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
// generation workflow chain. This file defines the encode command: it feeds
// the frame stream and the downloaded track into the ffmpeg subprocess and
// produces the muxed video inside the job workspace.
package commands

import (
	"github.com/trackforge/go-video-gen/internal/core/cor"
	"github.com/trackforge/go-video-gen/internal/core/encode"
	"github.com/trackforge/go-video-gen/internal/core/model"
	"github.com/trackforge/go-video-gen/internal/core/render"
)

// GetVideoFileName returns the context key holding the local path of the
// encoded video, read by the thumbnail and publish steps.
func GetVideoFileName() string {
	return "__VIDEO_FILE__"
}

// EncodeVideo runs the encoder over the frame stream.
type EncodeVideo struct {
	cor.BaseCommand
	encoder *encode.Encoder
}

// NewEncodeVideo constructs the encode command.
func NewEncodeVideo(name string, encoder *encode.Encoder) *EncodeVideo {
	return &EncodeVideo{BaseCommand: *cor.NewBaseCommand(name), encoder: encoder}
}

// IsExecutable additionally requires the downloaded track path, which the
// encoder muxes in as the audio input.
func (c *EncodeVideo) IsExecutable(context cor.Context) bool {
	return c.BaseCommand.IsExecutable(context) && context.Get(GetAudioFileName()) != nil
}

// Execute encodes the stream into video.mp4 inside the job workspace.
func (c *EncodeVideo) Execute(context cor.Context) {
	stream := context.Get(c.GetInputParam()).(*render.FrameStream)
	audioPath := context.Get(GetAudioFileName()).(string)

	outputPath, err := context.WorkspaceFile("video.mp4")
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), model.NewResourceError(c.GetName(), "workspace unavailable", err))
		return
	}

	if err := c.encoder.Encode(context.GetContext(), stream, audioPath, outputPath); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetVideoFileName(), outputPath)
	context.Add(c.GetOutputParam(), outputPath)
}
