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
// generation workflow chain. This file defines the render command: it
// assembles the validated render options from the upload metadata and the
// configured defaults, then opens the frame stream.
//
// Option validation happens here, before the encoder subprocess exists. An
// unknown effect name or a bad geometry fails the chain with a
// ConfigurationError and no partial output.
package commands

import (
	"path/filepath"
	"strings"

	"github.com/trackforge/go-video-gen/internal/cloud"
	"github.com/trackforge/go-video-gen/internal/core/cor"
	"github.com/trackforge/go-video-gen/internal/core/model"
	"github.com/trackforge/go-video-gen/internal/core/render"
)

// Upload metadata keys recognized on the trigger object.
const (
	MetaKeyTitle          = "title"
	MetaKeyEffects        = "effects"
	MetaKeyThumbnailStyle = "thumbnail_style"
)

// defaultEffects applies when the upload carries no effect list.
var defaultEffects = []string{"zoom", "pulse", "text_overlay"}

// GetRenderSpecName returns the context key holding the validated render
// options, read by the thumbnail and persist steps.
func GetRenderSpecName() string {
	return "__RENDER_SPEC__"
}

// VisualizerRender builds the render options and opens the frame stream.
type VisualizerRender struct {
	cor.BaseCommand
	visualizer *render.Visualizer
	config     *cloud.Config
}

// NewVisualizerRender constructs the render command.
func NewVisualizerRender(name string, visualizer *render.Visualizer, config *cloud.Config) *VisualizerRender {
	return &VisualizerRender{
		BaseCommand: *cor.NewBaseCommand(name),
		visualizer:  visualizer,
		config:      config,
	}
}

// Execute validates the job options and produces the frame stream.
func (c *VisualizerRender) Execute(context cor.Context) {
	analysis := context.Get(c.GetInputParam()).(*model.AudioAnalysis)
	gcsFile := context.Get(cloud.GetGCSObjectName()).(*cloud.GCSObject)

	spec, err := c.buildSpec(gcsFile)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	stream, err := c.visualizer.Render(analysis, spec)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetRenderSpecName(), spec)
	context.Add(c.GetOutputParam(), stream)
}

// buildSpec merges the upload metadata with the configured renderer
// defaults into a validated RenderSpec.
func (c *VisualizerRender) buildSpec(gcsFile *cloud.GCSObject) (model.RenderSpec, error) {
	title := gcsFile.MetaData[MetaKeyTitle]
	if title == "" {
		// Fall back to the object name without its extension.
		base := filepath.Base(gcsFile.Name)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	names := defaultEffects
	if raw, ok := gcsFile.MetaData[MetaKeyEffects]; ok {
		names = nil
		for _, name := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				names = append(names, trimmed)
			}
		}
	}
	effects, err := model.ParseEffects(names)
	if err != nil {
		return model.RenderSpec{}, err
	}

	return model.RenderSpec{
		Title:   title,
		Effects: effects,
		Width:   c.config.Renderer.Width,
		Height:  c.config.Renderer.Height,
		FPS:     c.config.Renderer.FPS,
	}, nil
}
