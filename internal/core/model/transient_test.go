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
// covers the lookup helpers on AudioAnalysis used by the renderer on every
// frame.
package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/trackforge/go-video-gen/internal/core/model"
)

func TestEnvelopeAtClampsToTrackEdges(t *testing.T) {
	a := &model.AudioAnalysis{
		Duration: 4 * time.Second,
		Envelope: []float64{0.1, 0.5, 0.9, 0.3},
	}

	assert.Equal(t, 0.1, a.EnvelopeAt(0))
	assert.Equal(t, 0.5, a.EnvelopeAt(1500*time.Millisecond))
	// Positions at or past the end clamp to the final sample.
	assert.Equal(t, 0.3, a.EnvelopeAt(4*time.Second))
	assert.Equal(t, 0.3, a.EnvelopeAt(10*time.Second))
}

func TestEnvelopeAtEmptyEnvelope(t *testing.T) {
	a := &model.AudioAnalysis{Duration: time.Second}
	assert.Equal(t, 0.0, a.EnvelopeAt(500*time.Millisecond))
}

func TestLastBeatBefore(t *testing.T) {
	a := &model.AudioAnalysis{
		Beats: []time.Duration{time.Second, 2 * time.Second, 3 * time.Second},
	}

	_, ok := a.LastBeatBefore(500 * time.Millisecond)
	assert.False(t, ok, "no beat has occurred before the first grid point")

	beat, ok := a.LastBeatBefore(time.Second)
	assert.True(t, ok)
	assert.Equal(t, time.Second, beat, "a beat exactly at t counts")

	beat, ok = a.LastBeatBefore(2500 * time.Millisecond)
	assert.True(t, ok)
	assert.Equal(t, 2*time.Second, beat)

	beat, ok = a.LastBeatBefore(time.Minute)
	assert.True(t, ok)
	assert.Equal(t, 3*time.Second, beat)
}
