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

// Package commands provides the concrete pipeline steps that run inside a
// generation workflow chain. This file defines the entry command: it parses
// the GCS upload notification that triggered the job into the simplified
// object description the rest of the chain works with.
//
// Logic Flow:
//  1. Receive the raw Pub/Sub message JSON from the context.
//  2. Unmarshal it into the full GCS notification structure.
//  3. Distill bucket, object name, MIME type, and the user metadata (track
//     title, effect list, thumbnail style) into a cloud.GCSObject.
//  4. Store the object under the shared key and as the output for the next
//     command.
package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/trackforge/go-video-gen/internal/cloud"
	"github.com/trackforge/go-video-gen/internal/core/cor"
)

// GetJobStartTimeName returns the context key holding the wall-clock start
// of the job, used to compute the total render time at persist.
func GetJobStartTimeName() string {
	return "__JOB_START__"
}

// AudioTriggerToGCSObject parses a GCS upload notification into the
// simplified object description used by the rest of the chain.
type AudioTriggerToGCSObject struct {
	cor.BaseCommand
}

// NewAudioTriggerToGCSObject constructs the trigger reader command.
func NewAudioTriggerToGCSObject(name string) *AudioTriggerToGCSObject {
	return &AudioTriggerToGCSObject{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute parses the notification JSON and records the job start time.
func (c *AudioTriggerToGCSObject) Execute(context cor.Context) {
	in := context.Get(c.GetInputParam()).(string)

	var out cloud.GCSPubSubNotification
	if err := json.Unmarshal([]byte(in), &out); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to unmarshal GCS notification: %w", err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)

	// User metadata arrives as interface values; keep only string entries.
	meta := make(map[string]string, len(out.MetaData))
	for k, v := range out.MetaData {
		if s, ok := v.(string); ok {
			meta[k] = s
		}
	}

	msg := &cloud.GCSObject{
		Bucket:   out.Bucket,
		Name:     out.Name,
		MIMEType: out.ContentType,
		MetaData: meta,
	}

	context.Add(GetJobStartTimeName(), time.Now())
	context.Add(cloud.GetGCSObjectName(), msg)
	context.Add(c.GetOutputParam(), msg)
}
