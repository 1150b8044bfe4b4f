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
// generation workflow chain. This file defines the thumbnail command: it
// extracts a frame from the encoded video at the configured position,
// composites the styled title card, and writes the result into the job
// workspace.
package commands

import (
	"image/png"
	"os"

	"github.com/trackforge/go-video-gen/internal/cloud"
	"github.com/trackforge/go-video-gen/internal/core/cor"
	"github.com/trackforge/go-video-gen/internal/core/model"
	"github.com/trackforge/go-video-gen/internal/core/thumb"
)

// GetThumbnailFileName returns the context key holding the local path of
// the finished thumbnail, read by the publish step.
func GetThumbnailFileName() string {
	return "__THUMBNAIL_FILE__"
}

// ThumbnailCreate extracts and styles the video thumbnail.
type ThumbnailCreate struct {
	cor.BaseCommand
	extractor *thumb.Extractor
	config    *cloud.Config
}

// NewThumbnailCreate constructs the thumbnail command.
func NewThumbnailCreate(name string, extractor *thumb.Extractor, config *cloud.Config) *ThumbnailCreate {
	return &ThumbnailCreate{BaseCommand: *cor.NewBaseCommand(name), extractor: extractor, config: config}
}

// Execute pulls the frame, applies the overlay, and writes thumbnail.png.
func (c *ThumbnailCreate) Execute(context cor.Context) {
	videoPath := context.Get(c.GetInputParam()).(string)
	analysis := context.Get(GetAudioAnalysisName()).(*model.AudioAnalysis)
	spec := context.Get(GetRenderSpecName()).(model.RenderSpec)
	gcsFile := context.Get(cloud.GetGCSObjectName()).(*cloud.GCSObject)

	rawPath, err := context.WorkspaceFile("thumbnail_raw.png")
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), model.NewResourceError(c.GetName(), "workspace unavailable", err))
		return
	}

	img, err := c.extractor.Extract(context.GetContext(), videoPath, analysis.Duration,
		c.config.Renderer.ThumbnailFraction, rawPath)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	// The upload metadata may override the configured overlay style.
	style := c.config.Renderer.ThumbnailStyle
	if override, ok := gcsFile.MetaData[MetaKeyThumbnailStyle]; ok {
		style = override
	}

	styled, err := thumb.Overlay(img, spec.Title, style)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	outPath, err := context.WorkspaceFile("thumbnail.png")
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), model.NewResourceError(c.GetName(), "workspace unavailable", err))
		return
	}
	out, err := os.Create(outPath)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), model.NewResourceError(c.GetName(), "could not create thumbnail file", err))
		return
	}
	err = png.Encode(out, styled)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), model.NewExtractionError(c.GetName(), "could not write thumbnail", err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetThumbnailFileName(), outPath)
	// The video path stays the primary chain value for the publish step.
	context.Add(c.GetOutputParam(), videoPath)
}
