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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files. Settings cover the Google Cloud project, storage
// buckets, the encoder subprocess, renderer defaults, Pub/Sub topics, and
// the generative models used by the metadata optimizer.
//
// Structs:
//   - BigQueryDataSource: Dataset and table names for video metadata.
//   - Encoder: ffmpeg binary path and timeout budget.
//   - Renderer: Output geometry, frame rate, and color scheme.
//   - PromptTemplates: Prompt text for the metadata optimizer.
//   - VertexAiLLMModel: Configuration for a Vertex AI LLM.
//   - TopicSubscription: A single Pub/Sub subscription.
//   - Storage: GCS bucket names.
//   - Config: The top-level aggregate.
package cloud

import "google.golang.org/genai"

// DefaultSafetySettings relaxes the content thresholds for the metadata
// optimizer. The inputs are our own track titles and analysis numbers, so
// blocking adds nothing but flakiness.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// BigQueryDataSource holds the dataset and table names for video metadata.
type BigQueryDataSource struct {
	DatasetName string `toml:"dataset"`     // The BigQuery dataset name.
	VideoTable  string `toml:"video_table"` // The table holding generated video records.
}

// Encoder configures the ffmpeg subprocess used for encoding and thumbnail
// extraction.
type Encoder struct {
	BinaryPath       string `toml:"binary_path"`        // Path to the ffmpeg executable.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // Wall-clock budget for a single encode. Zero disables the deadline.
}

// Renderer configures the default output geometry and color scheme.
type Renderer struct {
	Width             int     `toml:"width"`              // Output frame width in pixels.
	Height            int     `toml:"height"`             // Output frame height in pixels.
	FPS               int     `toml:"fps"`                // Output frame rate.
	BackgroundColor   string  `toml:"background_color"`   // Base canvas color as "#rrggbb".
	AccentColor       string  `toml:"accent_color"`       // Waveform bar color as "#rrggbb".
	GlowColor         string  `toml:"glow_color"`         // Gradient tone as "#rrggbb".
	ThumbnailFraction float64 `toml:"thumbnail_fraction"` // Where in the video the thumbnail is taken, in [0, 1].
	ThumbnailStyle    string  `toml:"thumbnail_style"`    // Overlay style for thumbnails. Empty means no overlay.
}

// PromptTemplates holds the text templates for the generative prompts.
type PromptTemplates struct {
	MetadataPrompt string `toml:"metadata"` // Template for publish title/description/tags generation.
}

// VertexAiLLMModel represents the configuration for a Vertex AI large
// language model.
type VertexAiLLMModel struct {
	Model              string  `toml:"model"`               // The model name.
	SystemInstructions string  `toml:"system_instructions"` // System instructions sent with every request.
	Temperature        float32 `toml:"temperature"`         // Sampling temperature.
	TopP               float32 `toml:"top_p"`               // Nucleus sampling parameter.
	TopK               float32 `toml:"top_k"`               // Top-k sampling parameter.
	MaxTokens          int32   `toml:"max_tokens"`          // Output token budget.
	OutputFormat       string  `toml:"output_format"`       // Response MIME type, e.g. "application/json".
	RateLimit          int     `toml:"rate_limit"`          // Requests per second allowed against the model.
}

// TopicSubscription represents a single Pub/Sub subscription.
type TopicSubscription struct {
	Name             string `toml:"name"`               // The subscription ID.
	DeadLetterTopic  string `toml:"dead_letter_topic"`  // Dead-letter topic for poisoned messages.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // Processing timeout for one message.
}

// Storage holds the GCS bucket names the pipeline reads from and writes to.
type Storage struct {
	AudioInboxBucket  string `toml:"audio_inbox_bucket"`  // Uploaded tracks land here and trigger generation.
	VideoOutputBucket string `toml:"video_output_bucket"` // Finished videos and thumbnails are published here.
}

// Config is the root container for all application settings, loaded from
// the hierarchical TOML files.
type Config struct {
	Application struct {
		Name                      string `toml:"name"`                         // Application name, used in logs and telemetry.
		GoogleProjectId           string `toml:"google_project_id"`            // The Google Cloud project ID.
		GoogleLocation            string `toml:"location"`                     // The Google Cloud location.
		ThreadPoolSize            int    `toml:"thread_pool_size"`             // Worker pool size for parallel uploads.
		SignerServiceAccountEmail string `toml:"signer_service_account_email"` // Service account used to sign streaming URLs.
	} `toml:"application"`
	Storage            Storage                      `toml:"storage"`
	Encoder            Encoder                      `toml:"encoder"`
	Renderer           Renderer                     `toml:"renderer"`
	BigQueryDataSource BigQueryDataSource           `toml:"big_query_data_source"`
	PromptTemplates    PromptTemplates              `toml:"prompt_templates"`
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"`
	AgentModels        map[string]VertexAiLLMModel  `toml:"agent_models"`
}

// NewConfig creates a Config with its map fields initialized so the TOML
// decoder can populate them without nil panics.
func NewConfig() *Config {
	return &Config{
		TopicSubscriptions: make(map[string]TopicSubscription),
		AgentModels:        make(map[string]VertexAiLLMModel),
	}
}
