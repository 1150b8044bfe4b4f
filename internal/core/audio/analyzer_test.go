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

// Package audio_test contains unit tests for the analysis stage. The input
// is a synthesized WAV click track, so the expected tempo and beat layout
// are known exactly without audio fixtures on disk.
package audio_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/trackforge/go-video-gen/internal/core/audio"
	"github.com/trackforge/go-video-gen/internal/core/model"
	testutil "github.com/trackforge/go-video-gen/internal/testutil"
)

func TestAnalyzeClickTrack(t *testing.T) {
	duration := 10 * time.Second
	data := testutil.SynthesizeClickTrack(120, duration, 44100)

	analysis, err := audio.NewAnalyzer().Analyze(data)
	assert.NoError(t, err)

	assert.Equal(t, "wav", analysis.Format)
	assert.Equal(t, 44100, analysis.SampleRate)
	assert.InDelta(t, duration.Seconds(), analysis.Duration.Seconds(), 0.1)

	// Clicks every 500ms make the tempo unambiguous.
	assert.InDelta(t, 120.0, analysis.BPM, 5.0)

	assert.NotEmpty(t, analysis.Beats)
	for i, beat := range analysis.Beats {
		assert.LessOrEqual(t, beat, analysis.Duration, "beat %d past end of track", i)
		assert.GreaterOrEqual(t, beat, time.Duration(0))
		if i > 0 {
			assert.Greater(t, beat, analysis.Beats[i-1], "beats must be strictly increasing")
		}
	}
}

func TestAnalyzeEnvelopeIsNormalized(t *testing.T) {
	data := testutil.SynthesizeClickTrack(120, 5*time.Second, 44100)

	analysis, err := audio.NewAnalyzer().Analyze(data)
	assert.NoError(t, err)

	assert.NotEmpty(t, analysis.Envelope)
	peak := 0.0
	for _, v := range analysis.Envelope {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
		if v > peak {
			peak = v
		}
	}
	assert.InDelta(t, 1.0, peak, 1e-9, "the loudest window normalizes to 1")
}

func TestAnalyzeRejectsGarbage(t *testing.T) {
	_, err := audio.NewAnalyzer().Analyze([]byte("this is not audio data at all"))
	assert.ErrorIs(t, err, model.ErrDecode)
}

func TestAnalyzeRejectsEmptyInput(t *testing.T) {
	_, err := audio.NewAnalyzer().Analyze(nil)
	assert.ErrorIs(t, err, model.ErrDecode)
}

func TestAnalyzeRejectsTruncatedWAV(t *testing.T) {
	data := testutil.SynthesizeClickTrack(120, 2*time.Second, 44100)
	// Keep the RIFF header so format sniffing succeeds, then cut the body.
	_, err := audio.NewAnalyzer().Analyze(data[:40])
	assert.Error(t, err)
}
