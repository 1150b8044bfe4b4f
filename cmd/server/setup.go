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

package main

import (
	"context"
	"log"
	"os"

	"github.com/trackforge/go-video-gen/internal/cloud"
	"github.com/trackforge/go-video-gen/internal/core/services"
	"github.com/trackforge/go-video-gen/internal/core/workflow"
)

// StateManager holds the shared components for the server process.
type StateManager struct {
	config       *cloud.Config
	cloud        *cloud.ServiceClients
	videoService *services.VideoService
}

var state = &StateManager{}

// SetupOS points the configuration loader at the local TOML files.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "local")
	return err
}

// GetConfig loads and caches the application configuration.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup os: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}

// InitState creates the cloud clients, the catalog service, and the
// generation pipeline listener.
func InitState(ctx context.Context) {
	config := GetConfig()

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	state.cloud = cloudClients

	state.videoService = &services.VideoService{
		BigqueryClient: cloudClients.BigQueryClient,
		StorageClient:  cloudClients.StorageClient,
		IAMClient:      cloudClients.IAMClient,
		SignerEmail:    config.Application.SignerServiceAccountEmail,
		DatasetName:    config.BigQueryDataSource.DatasetName,
		VideoTable:     config.BigQueryDataSource.VideoTable,
	}

	SetupListeners(ctx, config, cloudClients)
}

// SetupListeners attaches the generation workflow to the audio inbox
// subscription and starts listening.
func SetupListeners(ctx context.Context, config *cloud.Config, cloudClients *cloud.ServiceClients) {
	generation := workflow.NewVideoGenerationWorkflow(config, cloudClients, "metadata-optimizer")
	cloudClients.PubSubListeners["AudioInboxTopic"].SetCommand(generation)
	cloudClients.PubSubListeners["AudioInboxTopic"].Listen(ctx)
}
