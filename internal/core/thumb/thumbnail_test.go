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

// Package thumb_test contains unit tests for the thumbnail stage: position
// validation, the subprocess argument contract, and the overlay styles.
package thumb_test

import (
	"context"
	"image"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/trackforge/go-video-gen/internal/core/model"
	"github.com/trackforge/go-video-gen/internal/core/thumb"
)

func TestBuildArgsContract(t *testing.T) {
	x := thumb.NewExtractor("ffmpeg", time.Minute)
	args := x.BuildArgs("/tmp/video.mp4", 12500*time.Millisecond, "/tmp/thumb.png")

	assert.Equal(t, []string{
		"-y",
		"-hide_banner",
		"-ss", "12.500",
		"-i", "/tmp/video.mp4",
		"-frames:v", "1",
		"-vf", "scale=1280:720",
		"/tmp/thumb.png",
	}, args)
}

func TestExtractValidatesFractionBeforeSubprocess(t *testing.T) {
	// A binary that cannot exist proves validation fires first.
	x := thumb.NewExtractor(filepath.Join(t.TempDir(), "no-such-ffmpeg"), time.Minute)

	for _, fraction := range []float64{-0.1, 1.1, 2.0} {
		_, err := x.Extract(context.Background(), "video.mp4", time.Minute, fraction, "out.png")
		assert.ErrorIs(t, err, model.ErrExtraction, "fraction %v", fraction)
		assert.NotErrorIs(t, err, model.ErrEncoding)
	}

	_, err := x.Extract(context.Background(), "video.mp4", 0, 0.5, "out.png")
	assert.ErrorIs(t, err, model.ErrExtraction, "zero duration is rejected up front")
}

func TestExtractMissingBinaryIsExtractionError(t *testing.T) {
	x := thumb.NewExtractor(filepath.Join(t.TempDir(), "no-such-ffmpeg"), time.Minute)
	_, err := x.Extract(context.Background(), "video.mp4", time.Minute, 0.25, "out.png")
	assert.ErrorIs(t, err, model.ErrExtraction)
}

func TestOverlayEmptyStyleIsPassthrough(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 320, 180))

	out, err := thumb.Overlay(img, "Some Title", "")
	assert.NoError(t, err)
	assert.Same(t, image.Image(img), out, "an empty style returns the input untouched")
}

func TestOverlayRejectsUnknownStyle(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 320, 180))

	_, err := thumb.Overlay(img, "Some Title", "vaporwave")
	assert.ErrorIs(t, err, model.ErrConfiguration)
	assert.Contains(t, err.Error(), "vaporwave")
}

func TestOverlayStylesPreserveDimensions(t *testing.T) {
	styles := []string{thumb.StyleHighContrast, thumb.StyleMinimalist, thumb.StyleDramatic}
	img := image.NewRGBA(image.Rect(0, 0, 320, 180))

	for _, style := range styles {
		out, err := thumb.Overlay(img, "A Very Long Track Title That Overflows", style)
		assert.NoError(t, err, "style %s", style)
		assert.Equal(t, img.Bounds().Dx(), out.Bounds().Dx())
		assert.Equal(t, img.Bounds().Dy(), out.Bounds().Dy())
		assert.NotSame(t, image.Image(img), out, "styled output is a new image")
	}
}
