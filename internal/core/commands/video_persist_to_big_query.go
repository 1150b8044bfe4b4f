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
// generation workflow chain. This file defines the final persistence step:
// it streams the finished catalog record into BigQuery, where the API layer
// queries it.
package commands

import (
	"fmt"
	"log/slog"

	"cloud.google.com/go/bigquery"

	"github.com/trackforge/go-video-gen/internal/core/cor"
	"github.com/trackforge/go-video-gen/internal/core/model"
)

// VideoPersistToBigQuery saves a Video record to a BigQuery table.
type VideoPersistToBigQuery struct {
	cor.BaseCommand
	client  *bigquery.Client
	dataset string
	table   string
}

// NewVideoPersistToBigQuery constructs the persistence command.
func NewVideoPersistToBigQuery(name string, client *bigquery.Client, dataset string, table string) *VideoPersistToBigQuery {
	return &VideoPersistToBigQuery{BaseCommand: *cor.NewBaseCommand(name), client: client, dataset: dataset, table: table}
}

// IsExecutable requires the assembled catalog record.
func (s *VideoPersistToBigQuery) IsExecutable(context cor.Context) bool {
	return context != nil && context.Get(GetVideoRecordName()) != nil
}

// Execute streams the record into the videos table.
func (s *VideoPersistToBigQuery) Execute(context cor.Context) {
	video := context.Get(GetVideoRecordName()).(*model.Video)

	// The inserter streams rows, which avoids per-row INSERT statements.
	inserter := s.client.Dataset(s.dataset).Table(s.table).Inserter()
	if err := inserter.Put(context.GetContext(), video); err != nil {
		s.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(s.GetName(), model.NewResourceError(s.GetName(),
			fmt.Sprintf("bigquery insert failed for %q", video.Title), err))
		return
	}

	s.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(cor.CtxOut, video)
	slog.Info("cataloged video", "id", video.Id, "title", video.Title)
}
