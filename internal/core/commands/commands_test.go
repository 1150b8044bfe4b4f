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

// Package commands_test contains unit tests for the pipeline commands that
// run without cloud clients: the trigger reader, the render spec assembly,
// and the metadata merge step.
package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/trackforge/go-video-gen/internal/cloud"
	"github.com/trackforge/go-video-gen/internal/core/commands"
	"github.com/trackforge/go-video-gen/internal/core/cor"
	"github.com/trackforge/go-video-gen/internal/core/model"
	"github.com/trackforge/go-video-gen/internal/core/render"
	testutil "github.com/trackforge/go-video-gen/internal/testutil"
)

func newCommandContext(t *testing.T) cor.Context {
	t.Helper()
	ctx := cor.NewBaseContextWithRoot(t.TempDir())
	ctx.SetContext(context.Background())
	return ctx
}

func TestAudioTriggerToGCSObject(t *testing.T) {
	ctx := newCommandContext(t)
	ctx.Add(cor.CtxIn, testutil.GetTestAudioMessageText())

	cmd := commands.NewAudioTriggerToGCSObject("trigger-reader")
	cmd.Execute(ctx)

	assert.False(t, ctx.HasErrors())

	obj, ok := ctx.Get(cloud.GetGCSObjectName()).(*cloud.GCSObject)
	assert.True(t, ok)
	assert.Equal(t, "trackforge_audio_inbox", obj.Bucket)
	assert.Equal(t, "midnight-drive.mp3", obj.Name)
	assert.Equal(t, "audio/mpeg", obj.MIMEType)
	assert.Equal(t, "Midnight Drive", obj.MetaData[commands.MetaKeyTitle])
	assert.Equal(t, "zoom,pulse,text_overlay", obj.MetaData[commands.MetaKeyEffects])

	start, ok := ctx.Get(commands.GetJobStartTimeName()).(time.Time)
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now(), start, time.Second)
}

func TestAudioTriggerRejectsMalformedNotification(t *testing.T) {
	ctx := newCommandContext(t)
	ctx.Add(cor.CtxIn, "{not json")

	cmd := commands.NewAudioTriggerToGCSObject("trigger-reader")
	cmd.Execute(ctx)

	assert.True(t, ctx.HasErrors())
}

func renderConfig() *cloud.Config {
	config := cloud.NewConfig()
	config.Renderer.Width = 160
	config.Renderer.Height = 90
	config.Renderer.FPS = 10
	return config
}

func renderAnalysis() *model.AudioAnalysis {
	return &model.AudioAnalysis{
		BPM:      120,
		Beats:    []time.Duration{0, 500 * time.Millisecond},
		Duration: time.Second,
		Envelope: []float64{0.5, 0.9},
	}
}

func TestVisualizerRenderUsesMetadataOptions(t *testing.T) {
	ctx := newCommandContext(t)
	ctx.Add(cor.CtxIn, renderAnalysis())
	ctx.Add(cloud.GetGCSObjectName(), &cloud.GCSObject{
		Bucket: "inbox",
		Name:   "midnight-drive.mp3",
		MetaData: map[string]string{
			commands.MetaKeyTitle:   "Midnight Drive",
			commands.MetaKeyEffects: "glitch, pulse",
		},
	})

	cmd := commands.NewVisualizerRender("render", render.NewVisualizer(), renderConfig())
	cmd.Execute(ctx)

	assert.False(t, ctx.HasErrors())

	spec, ok := ctx.Get(commands.GetRenderSpecName()).(model.RenderSpec)
	assert.True(t, ok)
	assert.Equal(t, "Midnight Drive", spec.Title)
	assert.Equal(t, []model.Effect{model.EffectGlitch, model.EffectPulse}, spec.Effects)
	assert.Equal(t, 160, spec.Width)

	_, ok = ctx.Get(cor.CtxOut).(*render.FrameStream)
	assert.True(t, ok)
}

func TestVisualizerRenderDefaults(t *testing.T) {
	ctx := newCommandContext(t)
	ctx.Add(cor.CtxIn, renderAnalysis())
	ctx.Add(cloud.GetGCSObjectName(), &cloud.GCSObject{
		Bucket:   "inbox",
		Name:     "tracks/midnight-drive.mp3",
		MetaData: map[string]string{},
	})

	cmd := commands.NewVisualizerRender("render", render.NewVisualizer(), renderConfig())
	cmd.Execute(ctx)

	assert.False(t, ctx.HasErrors())

	spec := ctx.Get(commands.GetRenderSpecName()).(model.RenderSpec)
	assert.Equal(t, "midnight-drive", spec.Title, "title falls back to the object basename")
	assert.Equal(t,
		[]model.Effect{model.EffectZoom, model.EffectPulse, model.EffectTextOverlay},
		spec.Effects)
}

func TestVisualizerRenderRejectsUnknownEffect(t *testing.T) {
	ctx := newCommandContext(t)
	ctx.Add(cor.CtxIn, renderAnalysis())
	ctx.Add(cloud.GetGCSObjectName(), &cloud.GCSObject{
		Bucket:   "inbox",
		Name:     "midnight-drive.mp3",
		MetaData: map[string]string{commands.MetaKeyEffects: "zoom,sparkle"},
	})

	cmd := commands.NewVisualizerRender("render", render.NewVisualizer(), renderConfig())
	cmd.Execute(ctx)

	assert.True(t, ctx.HasErrors())
	for _, err := range ctx.GetErrors() {
		assert.ErrorIs(t, err, model.ErrConfiguration)
	}
}

func TestMetadataJsonToStructMergesFields(t *testing.T) {
	ctx := newCommandContext(t)
	video := &model.Video{Id: "v1", Title: "original"}
	ctx.Add(cor.CtxIn, video)
	ctx.Add(commands.GetMetadataJSONName(),
		`{"title": "Midnight Drive (Official Visualizer)", "description": "A ride.", "tags": ["synthwave", "visualizer"]}`)

	cmd := commands.NewMetadataJsonToStruct("merge-metadata")
	cmd.Execute(ctx)

	assert.False(t, ctx.HasErrors())
	assert.Equal(t, "Midnight Drive (Official Visualizer)", video.Title)
	assert.Equal(t, "A ride.", video.Description)
	assert.Equal(t, []string{"synthwave", "visualizer"}, video.Tags)
	assert.Equal(t, video, ctx.Get(cor.CtxOut))
}

func TestMetadataJsonToStructBadJSONIsNonFatal(t *testing.T) {
	ctx := newCommandContext(t)
	video := &model.Video{Id: "v1", Title: "original"}
	ctx.Add(cor.CtxIn, video)
	ctx.Add(commands.GetMetadataJSONName(), "{broken")

	cmd := commands.NewMetadataJsonToStruct("merge-metadata")
	cmd.Execute(ctx)

	assert.False(t, ctx.HasErrors(), "metadata problems never fail a finished video")
	assert.Equal(t, "original", video.Title)
	assert.Equal(t, video, ctx.Get(cor.CtxOut))
}

func TestMetadataJsonToStructMissingJSONIsPassthrough(t *testing.T) {
	ctx := newCommandContext(t)
	video := &model.Video{Id: "v1", Title: "original"}
	ctx.Add(cor.CtxIn, video)

	cmd := commands.NewMetadataJsonToStruct("merge-metadata")
	cmd.Execute(ctx)

	assert.False(t, ctx.HasErrors())
	assert.Equal(t, "original", video.Title)
	assert.Equal(t, video, ctx.Get(cor.CtxOut))
}
