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

// Package thumb implements the thumbnail stage of the pipeline. It pulls a
// single frame out of the finished video with ffmpeg and optionally
// composites a styled title card over it.
//
// Logic Flow:
//  1. Validate the requested position, expressed as a fraction of the video
//     duration, before touching the subprocess.
//  2. Seek ffmpeg to that position, decode one frame, scale it to the
//     thumbnail resolution, and write it as PNG into the job workspace.
//  3. Decode the PNG and, when a style is requested, draw the overlay:
//     gradient, border, and shadowed title text.
//
// An empty style name is a strict passthrough. The styled overlay never
// changes the image dimensions.
package thumb

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"

	"github.com/trackforge/go-video-gen/internal/core/model"
)

const stageName = "thumbnail"

// Default thumbnail resolution, the standard player preview size.
const (
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// Overlay style names. The empty string means no overlay at all.
const (
	StyleHighContrast = "high_contrast"
	StyleMinimalist   = "minimalist"
	StyleDramatic     = "dramatic"
)

// maxTitleLength is the longest title drawn verbatim; anything longer is
// truncated with an ellipsis so it fits the card.
const maxTitleLength = 20

// Extractor pulls thumbnail frames out of encoded videos.
type Extractor struct {
	binaryPath string
	timeout    time.Duration
	width      int
	height     int
}

// NewExtractor creates an extractor for the given ffmpeg binary at the
// default thumbnail resolution.
func NewExtractor(binaryPath string, timeout time.Duration) *Extractor {
	return &Extractor{
		binaryPath: binaryPath,
		timeout:    timeout,
		width:      DefaultWidth,
		height:     DefaultHeight,
	}
}

// BuildArgs assembles the ffmpeg invocation that seeks to the requested
// position and decodes exactly one scaled frame. Exposed for contract tests.
func (x *Extractor) BuildArgs(videoPath string, at time.Duration, outputPath string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-ss", fmt.Sprintf("%.3f", at.Seconds()),
		"-i", videoPath,
		"-frames:v", "1",
		"-vf", fmt.Sprintf("scale=%d:%d", x.width, x.height),
		outputPath,
	}
}

// Extract decodes the frame at fraction*duration into outputPath and
// returns the decoded image. The fraction must be within [0, 1]; anything
// else fails before the subprocess starts, leaving no partial output.
func (x *Extractor) Extract(ctx context.Context, videoPath string, duration time.Duration, fraction float64, outputPath string) (image.Image, error) {
	if fraction < 0 || fraction > 1 {
		return nil, model.NewExtractionError(stageName,
			fmt.Sprintf("fraction %.3f outside [0, 1]", fraction), nil)
	}
	if duration <= 0 {
		return nil, model.NewExtractionError(stageName, "video has no duration", nil)
	}

	runCtx := ctx
	if x.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, x.timeout)
		defer cancel()
	}

	at := time.Duration(float64(duration) * fraction)
	cmd := exec.CommandContext(runCtx, x.binaryPath, x.BuildArgs(videoPath, at, outputPath)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, model.NewExtractionError(stageName,
			string(bytes.TrimSpace(stderr.Bytes())), err)
	}

	f, err := os.Open(outputPath)
	if err != nil {
		return nil, model.NewExtractionError(stageName, "extracted frame missing", err)
	}
	defer func() { _ = f.Close() }()

	img, err := png.Decode(f)
	if err != nil {
		return nil, model.NewExtractionError(stageName, "extracted frame is not a valid PNG", err)
	}
	return img, nil
}

// Overlay composites a styled title card over the thumbnail. An empty style
// returns the input image untouched. Unknown styles are a configuration
// problem, reported before anything is drawn.
func Overlay(img image.Image, title, style string) (image.Image, error) {
	if style == "" {
		return img, nil
	}
	switch style {
	case StyleHighContrast, StyleMinimalist, StyleDramatic:
	default:
		return nil, model.NewConfigurationError(stageName,
			fmt.Sprintf("unknown thumbnail style %q", style), nil)
	}

	bounds := img.Bounds()
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())

	dc := gg.NewContext(bounds.Dx(), bounds.Dy())
	dc.DrawImage(img, 0, 0)

	face, err := titleFace(bounds.Dy(), style)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(face)

	display := truncateTitle(title)

	switch style {
	case StyleHighContrast:
		// Darken the bottom third so white text always reads.
		grad := gg.NewLinearGradient(0, h*0.55, 0, h)
		grad.AddColorStop(0, transparentBlack(0))
		grad.AddColorStop(1, transparentBlack(220))
		dc.SetFillStyle(grad)
		dc.DrawRectangle(0, h*0.55, w, h*0.45)
		dc.Fill()

		drawShadowedTitle(dc, display, w/2, h*0.85)

		dc.SetRGBA(1, 1, 1, 0.9)
		dc.SetLineWidth(6)
		dc.DrawRectangle(3, 3, w-6, h-6)
		dc.Stroke()

	case StyleMinimalist:
		dc.SetRGBA(0, 0, 0, 0.55)
		dc.DrawRectangle(0, h*0.86, w, h*0.14)
		dc.Fill()

		dc.SetRGB(1, 1, 1)
		dc.DrawStringAnchored(display, w/2, h*0.93, 0.5, 0.5)

	case StyleDramatic:
		// Diagonal stripes over a heavy vignette.
		dc.SetRGBA(0, 0, 0, 0.45)
		dc.DrawRectangle(0, 0, w, h)
		dc.Fill()

		dc.SetRGBA(1, 1, 1, 0.06)
		dc.SetLineWidth(10)
		for x := -h; x < w; x += 40 {
			dc.DrawLine(x, h, x+h, 0)
			dc.Stroke()
		}

		drawShadowedTitle(dc, display, w/2, h/2)
	}

	return dc.Image(), nil
}

// truncateTitle shortens long titles with an ellipsis.
func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= maxTitleLength {
		return title
	}
	return string(runes[:maxTitleLength-3]) + "..."
}

// drawShadowedTitle draws the title with an offset black shadow.
func drawShadowedTitle(dc *gg.Context, title string, x, y float64) {
	dc.SetRGBA(0, 0, 0, 0.7)
	dc.DrawStringAnchored(title, x+4, y+5, 0.5, 0.5)
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(title, x, y, 0.5, 0.5)
}

// titleFace sizes the overlay font for the style. The dramatic style gets a
// larger face for the centered title.
func titleFace(height int, style string) (font.Face, error) {
	parsed, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, model.NewResourceError(stageName, "embedded font unavailable", err)
	}
	size := float64(height) / 12
	if style == StyleDramatic {
		size = float64(height) / 8
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, model.NewResourceError(stageName, "failed to build font face", err)
	}
	return face, nil
}

// transparentBlack builds a black gradient stop with the given alpha.
func transparentBlack(alpha uint8) color.Color {
	return color.RGBA{A: alpha}
}
