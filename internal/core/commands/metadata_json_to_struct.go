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
// generation workflow chain. This file defines the step that parses the
// optimizer's raw JSON response and merges it into the catalog record.
//
// Like the optimizer itself, this step is best effort. Malformed JSON from
// the model is logged and the record keeps its original title.
package commands

import (
	"encoding/json"
	"log/slog"

	"github.com/trackforge/go-video-gen/internal/core/cor"
	"github.com/trackforge/go-video-gen/internal/core/model"
)

// MetadataJsonToStruct merges the model's metadata JSON into the record.
type MetadataJsonToStruct struct {
	cor.BaseCommand
}

// NewMetadataJsonToStruct constructs the parse command.
func NewMetadataJsonToStruct(name string) *MetadataJsonToStruct {
	return &MetadataJsonToStruct{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute parses the metadata JSON, when present, into the record.
func (s *MetadataJsonToStruct) Execute(context cor.Context) {
	video := context.Get(s.GetInputParam()).(*model.Video)
	defer context.Add(s.GetOutputParam(), video)

	raw, ok := context.Get(GetMetadataJSONName()).(string)
	if !ok || raw == "" {
		// The optimizer was skipped or failed. Nothing to merge.
		return
	}

	metadata := &model.VideoMetadata{}
	if err := json.Unmarshal([]byte(raw), metadata); err != nil {
		s.GetErrorCounter().Add(context.GetContext(), 1)
		slog.Warn("could not parse metadata JSON, keeping original title",
			"video", video.Id, "error", err)
		return
	}

	s.GetSuccessCounter().Add(context.GetContext(), 1)
	if metadata.Title != "" {
		video.Title = metadata.Title
	}
	video.Description = metadata.Description
	video.Tags = metadata.Tags
}
