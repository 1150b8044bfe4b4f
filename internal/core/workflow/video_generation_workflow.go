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

// Package workflow assembles the pipeline commands into complete jobs. This
// file implements the video generation workflow, the chain that turns an
// uploaded audio track into a published, cataloged visualizer video.
package workflow

import (
	"text/template"
	"time"

	"github.com/trackforge/go-video-gen/internal/cloud"
	"github.com/trackforge/go-video-gen/internal/core/audio"
	"github.com/trackforge/go-video-gen/internal/core/commands"
	"github.com/trackforge/go-video-gen/internal/core/cor"
	"github.com/trackforge/go-video-gen/internal/core/encode"
	"github.com/trackforge/go-video-gen/internal/core/render"
	"github.com/trackforge/go-video-gen/internal/core/thumb"
)

// VideoGenerationWorkflow runs a full generation job. It is triggered by a
// Pub/Sub notification for a new object in the audio inbox bucket and ends
// with a row in the video catalog table.
type VideoGenerationWorkflow struct {
	cor.BaseCommand
	config           *cloud.Config
	serviceClients   *cloud.ServiceClients
	genaiModel       *cloud.QuotaAwareGenerativeAIModel
	metadataTemplate *template.Template
	chain            cor.Chain
}

// Execute runs the workflow by invoking the underlying chain.
func (w *VideoGenerationWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// initializeChain wires the commands in pipeline order. Each stage's output
// pipes into the next; the first recorded error stops the chain, and the
// job workspace is removed by the caller's context close on every path.
func (w *VideoGenerationWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())

	// Parse the Pub/Sub trigger into a GCS object reference and stamp the
	// job start time for the render duration metric.
	out.AddCommand(commands.NewAudioTriggerToGCSObject("audio-trigger-to-gcs-object"))

	// Download the track into the job workspace.
	out.AddCommand(commands.NewGCSToWorkspace("gcs-to-workspace", w.serviceClients.StorageClient))

	// Decode and analyze: tempo, beat grid, amplitude envelope.
	out.AddCommand(commands.NewAudioAnalyze("analyze-audio", audio.NewAnalyzer()))

	// Validate the job options and open the beat-synced frame stream.
	out.AddCommand(commands.NewVisualizerRender("render-visualizer",
		render.NewVisualizerWithPalette(w.palette()), w.config))

	// Encode the stream with the source audio into an H.264 MP4.
	encoder := encode.NewEncoder(w.config.Encoder.BinaryPath,
		time.Duration(w.config.Encoder.TimeoutInSeconds)*time.Second)
	out.AddCommand(commands.NewEncodeVideo("encode-video", encoder))

	// Pull and style the thumbnail frame.
	extractor := thumb.NewExtractor(w.config.Encoder.BinaryPath,
		time.Duration(w.config.Encoder.TimeoutInSeconds)*time.Second)
	out.AddCommand(commands.NewThumbnailCreate("create-thumbnail", extractor, w.config))

	// Upload both artifacts and assemble the catalog record.
	out.AddCommand(commands.NewArtifactPublish("publish-artifacts",
		w.serviceClients.StorageClient, w.config))

	// Best-effort metadata enrichment. These two steps never fail the job.
	out.AddCommand(commands.NewMetadataOptimize("optimize-metadata",
		w.genaiModel, w.metadataTemplate))
	out.AddCommand(commands.NewMetadataJsonToStruct("merge-metadata"))

	// Catalog the finished video.
	out.AddCommand(commands.NewVideoPersistToBigQuery(
		"write-to-bigquery",
		w.serviceClients.BigQueryClient,
		w.config.BigQueryDataSource.DatasetName,
		w.config.BigQueryDataSource.VideoTable))

	w.chain = out
}

// palette builds the renderer palette from the configured colors, falling
// back to the defaults when a color fails to parse. A typo in a color value
// should not take the whole service down at startup.
func (w *VideoGenerationWorkflow) palette() render.Palette {
	palette := render.DefaultPalette()
	if c, err := render.ParseHexColor(w.config.Renderer.BackgroundColor); err == nil {
		palette.Background = c
	}
	if c, err := render.ParseHexColor(w.config.Renderer.AccentColor); err == nil {
		palette.Accent = c
	}
	if c, err := render.ParseHexColor(w.config.Renderer.GlowColor); err == nil {
		palette.Glow = c
	}
	return palette
}

// NewVideoGenerationWorkflow constructs the workflow, compiling the metadata
// prompt template and wiring the command chain.
func NewVideoGenerationWorkflow(
	config *cloud.Config,
	serviceClients *cloud.ServiceClients,
	agentModelName string) *VideoGenerationWorkflow {

	metadataTemplate, err := template.New("metadata-template").Parse(config.PromptTemplates.MetadataPrompt)
	if err != nil {
		panic(err)
	}

	pipeline := &VideoGenerationWorkflow{
		BaseCommand:      *cor.NewBaseCommand("video-generation-pipeline"),
		config:           config,
		serviceClients:   serviceClients,
		genaiModel:       serviceClients.AgentModels[agentModelName],
		metadataTemplate: metadataTemplate,
	}
	pipeline.initializeChain()
	return pipeline
}
