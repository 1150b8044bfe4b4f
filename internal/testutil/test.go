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

// Package test provides shared helpers for the test suite: a cached test
// configuration, a mock trigger notification, and a synthesized click track
// for exercising the audio analyzer without audio fixtures on disk.
package test

import (
	"bytes"
	"encoding/binary"
	"log"
	"math"
	"os"
	"testing"
	"time"

	"github.com/trackforge/go-video-gen/internal/cloud"
)

// StateManager caches the test configuration so it loads once per run.
type StateManager struct {
	config *cloud.Config
}

var state = &StateManager{}

// HandleErr fails the test when err is non-nil. Convenience for the
// config-loading boilerplate in service tests.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("Error reading config file: %v", err)
	}
}

// GetTestAudioMessageText returns the JSON payload of a GCS notification
// for a track landing in the audio inbox bucket, including the metadata
// keys the pipeline reads.
func GetTestAudioMessageText() string {
	return `{
  "kind": "storage#object",
  "id": "trackforge_audio_inbox/midnight-drive.mp3/1728615848664286",
  "selfLink": "https://www.googleapis.com/storage/v1/b/trackforge_audio_inbox/o/midnight-drive.mp3",
  "name": "midnight-drive.mp3",
  "bucket": "trackforge_audio_inbox",
  "generation": "1728615848664286",
  "metageneration": "1",
  "contentType": "audio/mpeg",
  "timeCreated": "2025-06-02T03:04:08.672Z",
  "updated": "2025-06-02T03:04:08.672Z",
  "storageClass": "STANDARD",
  "size": "8429348",
  "md5Hash": "67c1rAU+1RYZzK5zp8iBkA==",
  "metadata": { "title": "Midnight Drive", "effects": "zoom,pulse,text_overlay", "thumbnail_style": "high_contrast" },
  "crc32c": "IYeSTw==",
  "etag": "CN658+yrhYkDEAE="
	}`
}

// SetupOS points the configuration loader at the test TOML files.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig is the singleton accessor for the test configuration.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}

// SynthesizeClickTrack builds an in-memory 16-bit mono WAV file containing
// sharp clicks at the given tempo over the given duration, with silence in
// between. The clicks produce unambiguous onsets, which makes the expected
// analyzer output exact.
func SynthesizeClickTrack(bpm float64, duration time.Duration, sampleRate int) []byte {
	numSamples := int(float64(sampleRate) * duration.Seconds())
	samples := make([]int16, numSamples)

	// A click is a short burst of a decaying 1 kHz sine.
	clickLen := sampleRate / 100
	period := 60.0 / bpm
	for beat := 0; ; beat++ {
		start := int(float64(beat) * period * float64(sampleRate))
		if start >= numSamples {
			break
		}
		for i := 0; i < clickLen && start+i < numSamples; i++ {
			decay := 1.0 - float64(i)/float64(clickLen)
			v := math.Sin(2*math.Pi*1000*float64(i)/float64(sampleRate)) * decay
			samples[start+i] = int16(v * 30000)
		}
	}

	return encodeWAV(samples, sampleRate)
}

// encodeWAV wraps 16-bit mono PCM samples in a minimal RIFF/WAVE container.
func encodeWAV(samples []int16, sampleRate int) []byte {
	var pcm bytes.Buffer
	for _, s := range samples {
		_ = binary.Write(&pcm, binary.LittleEndian, s)
	}
	dataLen := pcm.Len()

	var out bytes.Buffer
	out.WriteString("RIFF")
	_ = binary.Write(&out, binary.LittleEndian, uint32(36+dataLen))
	out.WriteString("WAVE")

	out.WriteString("fmt ")
	_ = binary.Write(&out, binary.LittleEndian, uint32(16))
	_ = binary.Write(&out, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&out, binary.LittleEndian, uint16(1)) // mono
	_ = binary.Write(&out, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&out, binary.LittleEndian, uint32(sampleRate*2)) // byte rate
	_ = binary.Write(&out, binary.LittleEndian, uint16(2))            // block align
	_ = binary.Write(&out, binary.LittleEndian, uint16(16))           // bits per sample

	out.WriteString("data")
	_ = binary.Write(&out, binary.LittleEndian, uint32(dataLen))
	out.Write(pcm.Bytes())
	return out.Bytes()
}
