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

// Package services contains the read-side logic over the video catalog.
// This file centralizes the BigQuery SQL strings. The queries use
// fmt.Sprintf verbs as placeholders for the fully qualified table name and
// the lookup values injected at runtime.
package services

const (
	// QryFindVideoById looks up a single catalog record by its unique ID.
	QryFindVideoById = "SELECT * from `%s` WHERE id = '%s'"

	// QryListVideos returns the most recent catalog records, newest first.
	QryListVideos = "SELECT * from `%s` ORDER BY create_date DESC LIMIT %d"
)
