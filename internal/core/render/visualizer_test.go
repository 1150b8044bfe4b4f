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

// Package render_test contains unit tests for the visualizer stage: option
// validation, frame accounting, and the produced frame geometry.
package render_test

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/assert"
	"github.com/trackforge/go-video-gen/internal/core/model"
	"github.com/trackforge/go-video-gen/internal/core/render"
)

func testAnalysis(duration time.Duration) *model.AudioAnalysis {
	beats := make([]time.Duration, 0)
	for t := time.Duration(0); t <= duration; t += 500 * time.Millisecond {
		beats = append(beats, t)
	}
	return &model.AudioAnalysis{
		BPM:        120,
		Beats:      beats,
		Duration:   duration,
		Envelope:   []float64{0.2, 0.8, 1.0, 0.5},
		SampleRate: 44100,
		Format:     "wav",
	}
}

func testSpec(effects ...model.Effect) model.RenderSpec {
	return model.RenderSpec{
		Title:   "Test Track",
		Effects: effects,
		Width:   160,
		Height:  90,
		FPS:     10,
	}
}

func TestRenderFrameCountMatchesDurationAndRate(t *testing.T) {
	stream, err := render.NewVisualizer().Render(testAnalysis(2*time.Second), testSpec())
	assert.NoError(t, err)
	assert.Equal(t, 20, stream.FrameCount())
	assert.Equal(t, 160, stream.Width())
	assert.Equal(t, 90, stream.Height())
	assert.Equal(t, 10, stream.FPS())
}

func TestRenderRejectsInvalidOptions(t *testing.T) {
	v := render.NewVisualizer()
	analysis := testAnalysis(time.Second)

	_, err := v.Render(nil, testSpec())
	assert.ErrorIs(t, err, model.ErrConfiguration)

	bad := testSpec()
	bad.Width = 0
	_, err = v.Render(analysis, bad)
	assert.ErrorIs(t, err, model.ErrConfiguration)

	// yuv420p output requires even dimensions.
	odd := testSpec()
	odd.Width = 161
	_, err = v.Render(analysis, odd)
	assert.ErrorIs(t, err, model.ErrConfiguration)

	noRate := testSpec()
	noRate.FPS = 0
	_, err = v.Render(analysis, noRate)
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

func TestRenderRejectsMissingBackgroundImage(t *testing.T) {
	spec := testSpec()
	spec.ImagePaths = []string{filepath.Join(t.TempDir(), "nope.png")}

	_, err := render.NewVisualizer().Render(testAnalysis(time.Second), spec)
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

func TestStreamProducesExactlyFrameCountFrames(t *testing.T) {
	stream, err := render.NewVisualizer().Render(testAnalysis(time.Second),
		testSpec(model.EffectZoom, model.EffectPulse, model.EffectTextOverlay))
	assert.NoError(t, err)

	produced := 0
	for {
		frame, ok := stream.Next()
		if !ok {
			assert.Nil(t, frame)
			break
		}
		produced++
		assert.Equal(t, 160, frame.Bounds().Dx())
		assert.Equal(t, 90, frame.Bounds().Dy())
	}
	assert.Equal(t, stream.FrameCount(), produced)

	// The stream is single-use.
	_, ok := stream.Next()
	assert.False(t, ok)
}

func TestStreamWithImageBackground(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "bg.png")
	dc := gg.NewContext(32, 32)
	dc.SetRGB(0.9, 0.2, 0.2)
	dc.Clear()
	f, err := os.Create(imgPath)
	assert.NoError(t, err)
	assert.NoError(t, png.Encode(f, dc.Image()))
	assert.NoError(t, f.Close())

	spec := testSpec(model.EffectZoom, model.EffectGlitch)
	spec.ImagePaths = []string{imgPath}

	stream, err := render.NewVisualizer().Render(testAnalysis(time.Second), spec)
	assert.NoError(t, err)

	frame, ok := stream.Next()
	assert.True(t, ok)
	assert.NotNil(t, frame)
}

func TestRenderShortTrackStillProducesAFrame(t *testing.T) {
	stream, err := render.NewVisualizer().Render(testAnalysis(10*time.Millisecond), testSpec())
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, stream.FrameCount(), 1)
}
