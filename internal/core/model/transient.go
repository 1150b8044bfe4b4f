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

// Package model defines the core data structures for the application. This
// file contains the transient models: structures that exist only in memory
// while a job flows through the pipeline. They are the hand-off types
// between the analyzer, renderer, encoder, and thumbnail stages and are
// never persisted in this form.
package model

import "time"

// AudioAnalysis is the analyzer's description of a track. It is the sole
// input the renderer needs to synchronize visuals with the music.
type AudioAnalysis struct {
	// BPM is the estimated tempo in beats per minute.
	BPM float64
	// Beats holds the timestamp of every detected beat, measured from the
	// start of the track. The slice is strictly increasing and every entry
	// is within [0, Duration].
	Beats []time.Duration
	// Duration is the total length of the track.
	Duration time.Duration
	// Envelope is the normalized amplitude envelope, one sample per analysis
	// hop, each value in [0, 1].
	Envelope []float64
	// SampleRate is the decoded sample rate in Hz.
	SampleRate int
	// Format is the detected container format, e.g. "mp3" or "wav".
	Format string
}

// EnvelopeAt returns the envelope value at the given playback position,
// clamping to the nearest sample at the track edges.
func (a *AudioAnalysis) EnvelopeAt(t time.Duration) float64 {
	if len(a.Envelope) == 0 || a.Duration <= 0 {
		return 0
	}
	idx := int(float64(len(a.Envelope)) * float64(t) / float64(a.Duration))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(a.Envelope) {
		idx = len(a.Envelope) - 1
	}
	return a.Envelope[idx]
}

// LastBeatBefore returns the timestamp of the most recent beat at or before
// t, and false when no beat has occurred yet.
func (a *AudioAnalysis) LastBeatBefore(t time.Duration) (time.Duration, bool) {
	// Beats is sorted, binary search for the insertion point.
	lo, hi := 0, len(a.Beats)
	for lo < hi {
		mid := (lo + hi) / 2
		if a.Beats[mid] <= t {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return 0, false
	}
	return a.Beats[lo-1], true
}

// RenderSpec carries the validated options for a single render job.
type RenderSpec struct {
	Title      string   // Track title, drawn by the text_overlay effect.
	Effects    []Effect // Validated effect list, possibly empty.
	ImagePaths []string // Background images that cycle on the beat grid. May be empty.
	Width      int      // Output frame width in pixels.
	Height     int      // Output frame height in pixels.
	FPS        int      // Output frame rate.
}

// VideoMetadata is the publish metadata produced by the metadata optimizer
// agent. The JSON tags match the structure the model is prompted to emit.
type VideoMetadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}
