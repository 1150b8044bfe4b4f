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
// generation workflow chain. This file defines the publish command: it
// uploads the finished video and its thumbnail to the output bucket in
// parallel and assembles the catalog record for the persistence steps.
package commands

import (
	gocontext "context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/trackforge/go-video-gen/internal/cloud"
	"github.com/trackforge/go-video-gen/internal/core/cor"
	"github.com/trackforge/go-video-gen/internal/core/model"
)

// GetVideoRecordName returns the context key holding the catalog record
// under construction, read by the metadata and persist steps.
func GetVideoRecordName() string {
	return "__VIDEO_RECORD__"
}

// ArtifactPublish uploads the job outputs and builds the catalog record.
type ArtifactPublish struct {
	cor.BaseCommand
	client *storage.Client
	config *cloud.Config
}

// NewArtifactPublish constructs the publish command.
func NewArtifactPublish(name string, client *storage.Client, config *cloud.Config) *ArtifactPublish {
	return &ArtifactPublish{BaseCommand: *cor.NewBaseCommand(name), client: client, config: config}
}

// IsExecutable additionally requires the thumbnail path produced by the
// thumbnail step.
func (c *ArtifactPublish) IsExecutable(context cor.Context) bool {
	return c.BaseCommand.IsExecutable(context) && context.Get(GetThumbnailFileName()) != nil
}

// Execute uploads both artifacts concurrently, then assembles the record.
func (c *ArtifactPublish) Execute(context cor.Context) {
	videoPath := context.Get(c.GetInputParam()).(string)
	thumbPath := context.Get(GetThumbnailFileName()).(string)
	analysis := context.Get(GetAudioAnalysisName()).(*model.AudioAnalysis)
	spec := context.Get(GetRenderSpecName()).(model.RenderSpec)
	gcsFile := context.Get(cloud.GetGCSObjectName()).(*cloud.GCSObject)
	startTime := context.Get(GetJobStartTimeName()).(time.Time)

	id := uuid.New().String()
	bucket := c.config.Storage.VideoOutputBucket
	videoObject := id + ".mp4"
	thumbObject := id + ".png"

	group, groupCtx := errgroup.WithContext(context.GetContext())
	group.Go(func() error {
		return c.upload(groupCtx, videoPath, bucket, videoObject, "video/mp4")
	})
	group.Go(func() error {
		return c.upload(groupCtx, thumbPath, bucket, thumbObject, "image/png")
	})
	if err := group.Wait(); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	effectNames := make([]string, len(spec.Effects))
	for i, effect := range spec.Effects {
		effectNames[i] = effect.String()
	}

	video := &model.Video{
		Id:            id,
		Title:         spec.Title,
		SourceAudio:   fmt.Sprintf("gs://%s/%s", gcsFile.Bucket, gcsFile.Name),
		VideoUrl:      fmt.Sprintf("https://storage.mtls.cloud.google.com/%s/%s", bucket, videoObject),
		ThumbnailUrl:  fmt.Sprintf("https://storage.mtls.cloud.google.com/%s/%s", bucket, thumbObject),
		BPM:           analysis.BPM,
		BeatCount:     len(analysis.Beats),
		LengthSeconds: analysis.Duration.Seconds(),
		Effects:       effectNames,
		Width:         spec.Width,
		Height:        spec.Height,
		FPS:           spec.FPS,
		CreateDate:    time.Now(),
		RenderSeconds: time.Since(startTime).Seconds(),
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	slog.Info("published artifacts",
		"video", video.VideoUrl,
		"thumbnail", video.ThumbnailUrl,
		"render_seconds", video.RenderSeconds)

	context.Add(GetVideoRecordName(), video)
	context.Add(c.GetOutputParam(), video)
}

// upload streams one local file into the output bucket.
func (c *ArtifactPublish) upload(ctx gocontext.Context, path, bucket, object, contentType string) error {
	src, err := os.Open(path)
	if err != nil {
		return model.NewResourceError(c.GetName(), "could not open artifact", err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			slog.Warn("failed to close artifact file", "path", path, "error", err)
		}
	}()

	writer := c.client.Bucket(bucket).Object(object).NewWriter(ctx)
	writer.ContentType = contentType
	if _, err := io.Copy(writer, src); err != nil {
		_ = writer.Close()
		return model.NewResourceError(c.GetName(),
			fmt.Sprintf("upload of gs://%s/%s failed", bucket, object), err)
	}
	if err := writer.Close(); err != nil {
		return model.NewResourceError(c.GetName(),
			fmt.Sprintf("upload of gs://%s/%s failed", bucket, object), err)
	}
	return nil
}
