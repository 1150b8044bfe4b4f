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

// Package cloud contains the configuration loader tests. The hierarchical
// loading is exercised against files written into a temp directory, so the
// tests are independent of the repository's configs directory.
package cloud

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

const baseToml = `
[application]
name = "videogen"
google_project_id = "base-project"
location = "us-central1"

[encoder]
binary_path = "ffmpeg"
timeout_in_seconds = 600

[renderer]
width = 1920
height = 1080
fps = 30
thumbnail_fraction = 0.25

[storage]
audio_inbox_bucket = "inbox"
video_output_bucket = "output"

[big_query_data_source]
dataset = "video_ds"
video_table = "videos"

[topic_subscriptions.AudioInboxTopic]
name = "audio-inbox-sub"
timeout_in_seconds = 900
`

const overlayToml = `
[application]
google_project_id = "test-project"

[renderer]
width = 640
height = 360
`

func writeConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte(baseToml), 0o600))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test.toml"), []byte(overlayToml), 0o600))
	return dir
}

func TestLoadConfigOverlaysRuntimeFile(t *testing.T) {
	dir := writeConfigDir(t)
	t.Setenv(EnvConfigFilePrefix, dir)
	t.Setenv(EnvConfigRuntime, "test")

	config := NewConfig()
	LoadConfig(&config)

	// Overridden by the runtime file.
	assert.Equal(t, "test-project", config.Application.GoogleProjectId)
	assert.Equal(t, 640, config.Renderer.Width)
	assert.Equal(t, 360, config.Renderer.Height)

	// Inherited from the base file.
	assert.Equal(t, "videogen", config.Application.Name)
	assert.Equal(t, "ffmpeg", config.Encoder.BinaryPath)
	assert.Equal(t, 600, config.Encoder.TimeoutInSeconds)
	assert.Equal(t, 30, config.Renderer.FPS)
	assert.Equal(t, 0.25, config.Renderer.ThumbnailFraction)
	assert.Equal(t, "video_ds", config.BigQueryDataSource.DatasetName)
	assert.Equal(t, "videos", config.BigQueryDataSource.VideoTable)

	sub, ok := config.TopicSubscriptions["AudioInboxTopic"]
	assert.True(t, ok)
	assert.Equal(t, "audio-inbox-sub", sub.Name)
	assert.Equal(t, 900, sub.TimeoutInSeconds)
}

func TestLoadConfigMissingFilesAreSkipped(t *testing.T) {
	t.Setenv(EnvConfigFilePrefix, t.TempDir())
	t.Setenv(EnvConfigRuntime, "test")

	config := NewConfig()
	LoadConfig(&config)

	assert.Equal(t, "", config.Application.Name)
	assert.NotNil(t, config.TopicSubscriptions)
	assert.NotNil(t, config.AgentModels)
}

func TestLoadConfigRuntimeDefaultsToTest(t *testing.T) {
	dir := writeConfigDir(t)
	t.Setenv(EnvConfigFilePrefix, dir)
	t.Setenv(EnvConfigRuntime, "")

	config := NewConfig()
	LoadConfig(&config)

	// An unset runtime falls back to "test", picking up the overlay.
	assert.Equal(t, "test-project", config.Application.GoogleProjectId)
}
