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

// Package model_test contains unit tests for the data models. This file
// covers the closed effect set and its parsing.
package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/trackforge/go-video-gen/internal/core/model"
)

func TestParseEffectRoundTrip(t *testing.T) {
	names := []string{"zoom", "pulse", "glitch", "text_overlay"}
	for _, name := range names {
		e, err := model.ParseEffect(name)
		assert.NoError(t, err)
		assert.Equal(t, name, e.String())
	}
}

func TestParseEffectRejectsUnknownNames(t *testing.T) {
	for _, name := range []string{"sparkle", "ZOOM", "", "zoom "} {
		_, err := model.ParseEffect(name)
		assert.ErrorIs(t, err, model.ErrConfiguration, "name %q should be rejected", name)
	}
}

func TestParseEffectsFailsOnFirstUnknown(t *testing.T) {
	_, err := model.ParseEffects([]string{"zoom", "sparkle", "pulse"})
	assert.ErrorIs(t, err, model.ErrConfiguration)
	assert.Contains(t, err.Error(), "sparkle")
}

func TestParseEffectsEmptyListIsValid(t *testing.T) {
	effects, err := model.ParseEffects(nil)
	assert.NoError(t, err)
	assert.Empty(t, effects)
}

func TestEffectNamesInverseOfParse(t *testing.T) {
	in := []string{"glitch", "zoom"}
	effects, err := model.ParseEffects(in)
	assert.NoError(t, err)
	assert.Equal(t, in, model.EffectNames(effects))
}
