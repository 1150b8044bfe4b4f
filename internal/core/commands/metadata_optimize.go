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
// generation workflow chain. This file defines the metadata optimizer: it
// prompts a generative model for a publish-ready title, description, and tag
// list based on the track analysis.
//
// The optimizer is a best-effort enrichment. A model outage or a quota miss
// must never fail a job whose video already rendered and uploaded, so this
// command logs failures instead of recording them on the chain and lets the
// record flow on with its original title.
package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"

	"github.com/trackforge/go-video-gen/internal/cloud"
	"github.com/trackforge/go-video-gen/internal/core/cor"
	"github.com/trackforge/go-video-gen/internal/core/model"
)

// GetMetadataJSONName returns the context key holding the raw metadata JSON
// from the model, read by the parse step. Absent when the optimizer failed.
func GetMetadataJSONName() string {
	return "__METADATA_JSON__"
}

// MetadataOptimize asks a generative model for publish metadata.
type MetadataOptimize struct {
	cor.BaseCommand
	generativeAIModel        *cloud.QuotaAwareGenerativeAIModel
	template                 *template.Template
	geminiInputTokenCounter  metric.Int64Counter
	geminiOutputTokenCounter metric.Int64Counter
	geminiRetryCounter       metric.Int64Counter
}

// NewMetadataOptimize constructs the optimizer command.
func NewMetadataOptimize(
	name string,
	generativeAIModel *cloud.QuotaAwareGenerativeAIModel,
	template *template.Template) *MetadataOptimize {

	out := &MetadataOptimize{
		BaseCommand:       *cor.NewBaseCommand(name),
		generativeAIModel: generativeAIModel,
		template:          template}

	out.geminiInputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.input", out.GetName()))
	out.geminiOutputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.output", out.GetName()))
	out.geminiRetryCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.retry", out.GetName()))

	return out
}

// GenerateParams builds the substitution map for the prompt template from
// the catalog record under construction.
func (t *MetadataOptimize) GenerateParams(video *model.Video) map[string]interface{} {
	params := make(map[string]interface{})
	params["TITLE"] = video.Title
	params["BPM"] = fmt.Sprintf("%.0f", video.BPM)
	params["LENGTH_SECONDS"] = fmt.Sprintf("%.0f", video.LengthSeconds)
	params["EFFECTS"] = strings.Join(video.Effects, ", ")

	// A complete example response keeps the model's output parseable.
	exampleMetadata, _ := json.Marshal(model.GetExampleVideoMetadata())
	params["EXAMPLE_JSON"] = string(exampleMetadata)
	return params
}

// Execute prompts the model and stores its raw JSON response. Failures are
// logged and swallowed so the finished video still gets cataloged.
func (t *MetadataOptimize) Execute(context cor.Context) {
	video := context.Get(t.GetInputParam()).(*model.Video)

	// The record always flows on, with or without optimized metadata.
	defer context.Add(t.GetOutputParam(), video)

	var buffer bytes.Buffer
	if err := t.template.Execute(&buffer, t.GenerateParams(video)); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		slog.Warn("metadata prompt template failed, keeping original title",
			"video", video.Id, "error", err)
		return
	}

	contents := []*genai.Content{
		{Parts: []*genai.Part{
			{Text: buffer.String()},
		},
			Role: "user"},
	}

	out, err := cloud.GenerateMultiModalResponse(context.GetContext(),
		t.geminiInputTokenCounter, t.geminiOutputTokenCounter, t.geminiRetryCounter,
		0, t.generativeAIModel, contents)
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		slog.Warn("metadata generation failed, keeping original title",
			"video", video.Id, "error", err)
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetMetadataJSONName(), out)
}
