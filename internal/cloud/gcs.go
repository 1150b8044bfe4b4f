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

// Package cloud provides components for interacting with Google Cloud
// services. This file defines the models for Google Cloud Storage events:
// the JSON payload GCS publishes when an audio track lands in the inbox
// bucket, and the lightweight internal representation passed between
// pipeline commands.
package cloud

// GetGCSObjectName returns the context key under which the trigger object
// is stored, so every command in a workflow reads the same entry.
func GetGCSObjectName() string {
	return "__GCS__OBJ__"
}

// GCSPubSubNotification maps the JSON payload of a GCS object notification.
// When a track is uploaded to the inbox bucket, GCS publishes a message
// with this structure to the configured topic.
type GCSPubSubNotification struct {
	Kind                    string                 `json:"kind"`
	ID                      string                 `json:"id"`
	SelfLink                string                 `json:"selfLink"`
	Name                    string                 `json:"name"`
	Bucket                  string                 `json:"bucket"`
	Generation              string                 `json:"generation"`
	MetaGeneration          string                 `json:"metageneration"`
	ContentType             string                 `json:"contentType"`
	TimeCreated             string                 `json:"timeCreated"`
	Updated                 string                 `json:"updated"`
	StorageClass            string                 `json:"storageClass"`
	TimeStorageClassUpdated string                 `json:"timeStorageClassUpdated"`
	Size                    string                 `json:"size"`
	MD5Hash                 string                 `json:"md5Hash"`
	MediaLink               string                 `json:"mediaLink"`
	MetaData                map[string]interface{} `json:"metadata"`
	Crc32c                  string                 `json:"crc32c"`
	ETag                    string                 `json:"etag"`
}

// GCSObject is the distilled description of the uploaded track that flows
// through the generation workflow. The object metadata map carries optional
// job options set at upload time, such as the track title, effect list, and
// thumbnail style.
type GCSObject struct {
	Bucket   string            // The bucket holding the object.
	Name     string            // The object name.
	MIMEType string            // The MIME type, e.g. "audio/mpeg".
	MetaData map[string]string // User metadata from the upload, may be nil.
}
