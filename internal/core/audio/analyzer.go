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

// Package audio implements the analysis stage of the pipeline. It turns raw
// audio bytes into the tempo, beat grid, duration, and amplitude envelope
// the renderer needs to synchronize visuals with the music.
//
// Logic Flow:
//  1. Sniff the container format from the leading bytes and pick the
//     matching decoder (MP3, WAV, FLAC, or Ogg Vorbis).
//  2. Decode the full stream and mix it down to mono.
//  3. Build the amplitude envelope from windowed peak levels.
//  4. Detect onsets with spectral flux: short-time FFT frames, the positive
//     change in magnitude between consecutive frames, and adaptive
//     threshold peak picking.
//  5. Vote on a tempo from the inter-onset intervals, then lay a regular
//     beat grid at that tempo anchored on the first onset.
//
// All scratch state lives in memory. The analyzer writes nothing to disk.
package audio

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"math/cmplx"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"github.com/h2non/filetype"
	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/trackforge/go-video-gen/internal/core/model"
)

const (
	stageName = "analyzer"

	// STFT geometry for onset detection.
	frameSize = 1024
	hopSize   = 512

	// Envelope hop. One envelope sample per this many mono samples.
	envelopeHop = 1024

	// Tempo candidates are folded into this range by octave doubling and
	// halving before the vote.
	minBPM = 60.0
	maxBPM = 200.0

	// Tempo reported when too few onsets exist to vote, such as for pads or
	// near-silent tracks.
	fallbackBPM = 120.0

	// Two onsets closer than this are treated as one percussive event.
	minOnsetGap = 250 * time.Millisecond
)

// Analyzer decodes audio and extracts the rhythm description used by the
// renderer. The zero value is not usable, construct with NewAnalyzer.
type Analyzer struct {
	fluxSensitivity float64 // Multiplier on the local flux deviation for peak picking.
}

// NewAnalyzer creates an analyzer with the default detection sensitivity.
func NewAnalyzer() *Analyzer {
	return &Analyzer{fluxSensitivity: 1.5}
}

// Analyze decodes the given audio bytes and returns the track analysis.
// Unsupported containers and corrupt streams produce a DecodeError.
func (a *Analyzer) Analyze(data []byte) (*model.AudioAnalysis, error) {
	if len(data) == 0 {
		return nil, model.NewDecodeError(stageName, "empty input", nil)
	}

	format, streamer, sampleFormat, err := decode(data)
	if err != nil {
		return nil, err
	}
	defer func() { _ = streamer.Close() }()

	mono, err := mixdown(streamer)
	if err != nil {
		return nil, model.NewDecodeError(stageName, "stream read failed", err)
	}
	if len(mono) == 0 {
		return nil, model.NewDecodeError(stageName, "audio stream contains no samples", nil)
	}

	sampleRate := int(sampleFormat.SampleRate)
	duration := time.Duration(float64(len(mono)) / float64(sampleRate) * float64(time.Second))

	envelope := buildEnvelope(mono)
	onsets := a.detectOnsets(mono, sampleRate)
	bpm := estimateBPM(onsets)
	beats := beatGrid(bpm, onsets, duration)

	return &model.AudioAnalysis{
		BPM:        bpm,
		Beats:      beats,
		Duration:   duration,
		Envelope:   envelope,
		SampleRate: sampleRate,
		Format:     format,
	}, nil
}

// decode sniffs the container format and runs the matching decoder.
func decode(data []byte) (string, beep.StreamSeekCloser, beep.Format, error) {
	kind, _ := filetype.Match(data)

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
		err      error
	)
	rc := io.NopCloser(bytes.NewReader(data))

	switch kind.Extension {
	case "mp3":
		streamer, format, err = mp3.Decode(rc)
	case "wav":
		streamer, format, err = wav.Decode(rc)
	case "flac":
		streamer, format, err = flac.Decode(rc)
	case "ogg":
		streamer, format, err = vorbis.Decode(rc)
	default:
		return "", nil, beep.Format{}, model.NewDecodeError(
			stageName, fmt.Sprintf("unsupported audio format %q", kind.Extension), nil)
	}
	if err != nil {
		return "", nil, beep.Format{}, model.NewDecodeError(
			stageName, fmt.Sprintf("failed to decode %s stream", kind.Extension), err)
	}
	return kind.Extension, streamer, format, nil
}

// mixdown drains the streamer into a mono signal, averaging the channels.
func mixdown(streamer beep.Streamer) ([]float64, error) {
	mono := make([]float64, 0, 1<<20)
	buf := make([][2]float64, 512)
	for {
		n, ok := streamer.Stream(buf)
		for i := 0; i < n; i++ {
			mono = append(mono, (buf[i][0]+buf[i][1])/2)
		}
		if !ok {
			break
		}
	}
	return mono, streamer.Err()
}

// buildEnvelope computes windowed peak levels normalized into [0, 1].
func buildEnvelope(mono []float64) []float64 {
	n := (len(mono) + envelopeHop - 1) / envelopeHop
	env := make([]float64, n)
	peak := 0.0
	for i := 0; i < n; i++ {
		lo := i * envelopeHop
		hi := lo + envelopeHop
		if hi > len(mono) {
			hi = len(mono)
		}
		v := 0.0
		for _, s := range mono[lo:hi] {
			if abs := math.Abs(s); abs > v {
				v = abs
			}
		}
		env[i] = v
		if v > peak {
			peak = v
		}
	}
	if peak > 0 {
		for i := range env {
			env[i] /= peak
		}
	}
	return env
}

// detectOnsets finds percussive events via spectral flux over short-time FFT
// frames with an adaptive local threshold.
func (a *Analyzer) detectOnsets(mono []float64, sampleRate int) []time.Duration {
	if len(mono) < frameSize {
		return nil
	}

	hamming := window.Hamming(frameSize)
	numFrames := (len(mono)-frameSize)/hopSize + 1

	flux := make([]float64, numFrames)
	prev := make([]float64, frameSize/2)
	frame := make([]float64, frameSize)
	for i := 0; i < numFrames; i++ {
		offset := i * hopSize
		for j := 0; j < frameSize; j++ {
			frame[j] = mono[offset+j] * hamming[j]
		}
		spectrum := fft.FFTReal(frame)
		sum := 0.0
		for j := 0; j < frameSize/2; j++ {
			mag := cmplx.Abs(spectrum[j])
			// Only rising energy marks an onset, falling energy is decay.
			if d := mag - prev[j]; d > 0 {
				sum += d
			}
			prev[j] = mag
		}
		flux[i] = sum
	}

	return a.pickPeaks(flux, sampleRate)
}

// pickPeaks selects local flux maxima that rise above the mean of their
// neighborhood by a sensitivity-scaled deviation, spacing onsets at least
// minOnsetGap apart.
func (a *Analyzer) pickPeaks(flux []float64, sampleRate int) []time.Duration {
	const neighborhood = 16

	onsets := make([]time.Duration, 0, 64)
	lastOnset := time.Duration(-1)
	for i := 1; i < len(flux)-1; i++ {
		if flux[i] <= flux[i-1] || flux[i] < flux[i+1] {
			continue
		}
		lo := i - neighborhood
		if lo < 0 {
			lo = 0
		}
		hi := i + neighborhood
		if hi > len(flux) {
			hi = len(flux)
		}
		mean, std := meanStd(flux[lo:hi])
		if flux[i] <= mean+a.fluxSensitivity*std {
			continue
		}
		// Center of the frame, in track time.
		t := time.Duration(float64(i*hopSize+frameSize/2) / float64(sampleRate) * float64(time.Second))
		if lastOnset >= 0 && t-lastOnset < minOnsetGap {
			continue
		}
		onsets = append(onsets, t)
		lastOnset = t
	}
	return onsets
}

func meanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	for _, x := range xs {
		d := x - mean
		std += d * d
	}
	std = math.Sqrt(std / float64(len(xs)))
	return mean, std
}

// estimateBPM votes on a tempo from inter-onset intervals. Each interval is
// folded into the supported octave before voting, so a half-time groove and
// its double-time hats land in the same bin.
func estimateBPM(onsets []time.Duration) float64 {
	if len(onsets) < 2 {
		return fallbackBPM
	}

	votes := make(map[int]int)
	candidates := make(map[int][]float64)
	for i := 1; i < len(onsets); i++ {
		interval := onsets[i] - onsets[i-1]
		if interval <= 0 {
			continue
		}
		bpm := 60.0 / interval.Seconds()
		for bpm < minBPM {
			bpm *= 2
		}
		for bpm >= maxBPM {
			bpm /= 2
		}
		bin := int(math.Round(bpm))
		votes[bin]++
		candidates[bin] = append(candidates[bin], bpm)
	}

	best, bestVotes := 0, 0
	for bin, count := range votes {
		if count > bestVotes || (count == bestVotes && bin > best) {
			best, bestVotes = bin, count
		}
	}
	if bestVotes == 0 {
		return fallbackBPM
	}

	// Refine by averaging the raw candidates that fell in or next to the
	// winning bin.
	sum, n := 0.0, 0
	for bin := best - 1; bin <= best+1; bin++ {
		for _, bpm := range candidates[bin] {
			sum += bpm
			n++
		}
	}
	return sum / float64(n)
}

// beatGrid lays a regular grid at the estimated tempo across the whole
// track, anchored on the first detected onset. The result is strictly
// increasing and never exceeds the track duration.
func beatGrid(bpm float64, onsets []time.Duration, duration time.Duration) []time.Duration {
	period := time.Duration(60.0 / bpm * float64(time.Second))
	if period <= 0 || duration <= 0 {
		return nil
	}

	anchor := time.Duration(0)
	if len(onsets) > 0 {
		anchor = onsets[0]
	}
	// Walk the anchor back to the first grid point at or after zero.
	start := anchor % period

	beats := make([]time.Duration, 0, int(duration/period)+1)
	for t := start; t <= duration; t += period {
		beats = append(beats, t)
	}
	return beats
}
