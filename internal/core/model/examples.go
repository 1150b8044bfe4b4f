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

// Package model defines the data structures for the application. This file
// provides factory functions for hardcoded example instances used for
// few-shot prompting of the generative model. Embedding a concrete example
// of the expected JSON in the prompt keeps the model's output consistent
// and parsable.
package model

// GetExampleVideoMetadata creates the sample metadata object embedded in the
// metadata optimizer prompt. It shows the model the exact JSON shape to emit
// for a publish title, description, and tag list.
func GetExampleVideoMetadata() *VideoMetadata {
	return &VideoMetadata{
		Title:       "Midnight Drive (Official Visualizer)",
		Description: "Official beat-synced visualizer for Midnight Drive. Turn the volume up and enjoy the ride.",
		Tags: []string{
			"midnight drive",
			"visualizer",
			"electronic",
			"music video",
			"120 bpm",
		},
	}
}
