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

// Package model defines the core data structures for the application. This
// file contains the persistent model: the record written to BigQuery for
// every generated video and read back by the video service. The bigquery
// struct tags map fields onto the table schema; the json tags shape the REST
// responses.
package model

import "time"

// Video is the persisted record of one completed generation job.
type Video struct {
	Id            string    `json:"id" bigquery:"id"`
	Title         string    `json:"title" bigquery:"title"`
	Description   string    `json:"description,omitempty" bigquery:"description"`
	Tags          []string  `json:"tags,omitempty" bigquery:"tags"`
	SourceAudio   string    `json:"source_audio" bigquery:"source_audio"`       // GCS URL of the uploaded track.
	VideoUrl      string    `json:"video_url" bigquery:"video_url"`             // GCS URL of the rendered video.
	ThumbnailUrl  string    `json:"thumbnail_url" bigquery:"thumbnail_url"`     // GCS URL of the thumbnail.
	BPM           float64   `json:"bpm" bigquery:"bpm"`                         // Tempo detected by the analyzer.
	BeatCount     int       `json:"beat_count" bigquery:"beat_count"`           // Number of beats on the grid.
	LengthSeconds float64   `json:"length_seconds" bigquery:"length_seconds"`   // Track duration in seconds.
	Effects       []string  `json:"effects" bigquery:"effects"`                 // Effect names applied during rendering.
	Width         int       `json:"width" bigquery:"width"`                     // Output frame width.
	Height        int       `json:"height" bigquery:"height"`                   // Output frame height.
	FPS           int       `json:"fps" bigquery:"fps"`                         // Output frame rate.
	CreateDate    time.Time `json:"create_date" bigquery:"create_date"`         // When the job completed.
	RenderSeconds float64   `json:"render_seconds" bigquery:"render_seconds"`   // Wall-clock time spent in the pipeline.
}
