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

// Package render_test contains unit tests for the visualizer stage. This
// file covers color parsing for the configurable palette.
package render_test

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/trackforge/go-video-gen/internal/core/model"
	"github.com/trackforge/go-video-gen/internal/core/render"
)

func TestParseHexColor(t *testing.T) {
	c, err := render.ParseHexColor("#e94560")
	assert.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xe9, G: 0x45, B: 0x60, A: 0xff}, c)

	c, err = render.ParseHexColor("#000000")
	assert.NoError(t, err)
	assert.Equal(t, color.RGBA{A: 0xff}, c)
}

func TestParseHexColorRejectsMalformedInput(t *testing.T) {
	for _, s := range []string{"", "e94560", "#xyzxyz", "red"} {
		_, err := render.ParseHexColor(s)
		assert.ErrorIs(t, err, model.ErrConfiguration, "value %q should be rejected", s)
	}
}

func TestDefaultPaletteIsOpaque(t *testing.T) {
	p := render.DefaultPalette()
	assert.EqualValues(t, 0xff, p.Background.A)
	assert.EqualValues(t, 0xff, p.Accent.A)
	assert.EqualValues(t, 0xff, p.Glow.A)
}
