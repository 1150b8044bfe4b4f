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
// generation workflow chain. This file wraps the audio analyzer as a chain
// command: it reads the downloaded track off disk and produces the analysis
// the renderer consumes.
package commands

import (
	"os"

	"github.com/trackforge/go-video-gen/internal/core/audio"
	"github.com/trackforge/go-video-gen/internal/core/cor"
	"github.com/trackforge/go-video-gen/internal/core/model"
)

// GetAudioAnalysisName returns the context key holding the track analysis,
// read by the render and persist steps.
func GetAudioAnalysisName() string {
	return "__AUDIO_ANALYSIS__"
}

// AudioAnalyze runs the analyzer over the downloaded track.
type AudioAnalyze struct {
	cor.BaseCommand
	analyzer *audio.Analyzer
}

// NewAudioAnalyze constructs the analysis command.
func NewAudioAnalyze(name string, analyzer *audio.Analyzer) *AudioAnalyze {
	return &AudioAnalyze{BaseCommand: *cor.NewBaseCommand(name), analyzer: analyzer}
}

// Execute reads the track and produces its analysis. A missing file is a
// resource problem; a corrupt or unsupported stream surfaces from the
// analyzer as a DecodeError.
func (c *AudioAnalyze) Execute(context cor.Context) {
	path := context.Get(c.GetInputParam()).(string)

	data, err := os.ReadFile(path)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), model.NewResourceError(c.GetName(), "could not read track", err))
		return
	}

	analysis, err := c.analyzer.Analyze(data)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetAudioAnalysisName(), analysis)
	context.Add(c.GetOutputParam(), analysis)
}
