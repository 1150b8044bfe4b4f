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

// Package render implements the visualizer stage of the pipeline. This file
// holds the color palette and the per-effect drawing helpers applied on top
// of the base frame.
package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/trackforge/go-video-gen/internal/core/model"
)

// Palette is the color scheme frames are drawn with. The defaults follow
// the house style of a dark stage with a warm accent.
type Palette struct {
	Background color.RGBA // Base canvas color.
	Accent     color.RGBA // Waveform bars and highlights.
	Glow       color.RGBA // Secondary tone for gradients and particles.
}

// DefaultPalette returns the standard dark scheme.
func DefaultPalette() Palette {
	return Palette{
		Background: color.RGBA{R: 0x1a, G: 0x1a, B: 0x2e, A: 0xff},
		Accent:     color.RGBA{R: 0xe9, G: 0x45, B: 0x60, A: 0xff},
		Glow:       color.RGBA{R: 0x0f, G: 0x34, B: 0x60, A: 0xff},
	}
}

// ParseHexColor converts a "#rrggbb" string into an RGBA color. Malformed
// values produce a ConfigurationError so a bad color scheme in the config
// fails the job before rendering starts.
func ParseHexColor(s string) (color.RGBA, error) {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, model.NewConfigurationError(
			"renderer", fmt.Sprintf("invalid color %q, want #rrggbb", s), err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// hasEffect reports whether the effect list contains the given effect.
func hasEffect(effects []model.Effect, e model.Effect) bool {
	for _, candidate := range effects {
		if candidate == e {
			return true
		}
	}
	return false
}

// chromaShift displaces the red channel right and the blue channel left by
// the given pixel offset, producing the glitch tear. Operates in place on
// the finished frame.
func chromaShift(img *image.RGBA, shift int) {
	if shift <= 0 {
		return
	}
	bounds := img.Bounds()
	width := bounds.Dx()
	row := make([]uint8, len(img.Pix[:img.Stride]))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		offset := (y - bounds.Min.Y) * img.Stride
		copy(row, img.Pix[offset:offset+img.Stride])
		for x := 0; x < width; x++ {
			if src := x + shift; src < width {
				img.Pix[offset+x*4] = row[src*4]
			}
			if src := x - shift; src >= 0 {
				img.Pix[offset+x*4+2] = row[src*4+2]
			}
		}
	}
}

// zoomScale returns the background scale factor for the zoom effect at the
// given beat intensity.
func zoomScale(intensity float64) float64 {
	return 1.0 + 0.06*intensity
}
