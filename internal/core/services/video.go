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
// This file defines the VideoService, which retrieves catalog records from
// BigQuery and mints time-limited signed URLs so browsers can stream the
// finished videos straight from GCS.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/trackforge/go-video-gen/internal/core/model"
)

// publicStoragePrefix is the URL prefix the pipeline writes into catalog
// records. Signed URL generation parses bucket and object back out of it.
const publicStoragePrefix = "https://storage.mtls.cloud.google.com/"

// VideoService is the data access layer over the video catalog.
type VideoService struct {
	BigqueryClient *bigquery.Client
	StorageClient  *storage.Client
	IAMClient      *credentials.IamCredentialsClient
	SignerEmail    string
	DatasetName    string
	VideoTable     string
}

// GetFQN returns the queryable name of the videos table, with the project
// separator rewritten from a colon to a period for standard SQL.
func (s *VideoService) GetFQN() string {
	fqn := s.BigqueryClient.Dataset(s.DatasetName).Table(s.VideoTable).FullyQualifiedName()
	return strings.Replace(fqn, ":", ".", -1)
}

// Get retrieves a single catalog record by its unique ID.
func (s *VideoService) Get(ctx context.Context, id string) (*model.Video, error) {
	queryText := fmt.Sprintf(QryFindVideoById, s.GetFQN(), id)
	q := s.BigqueryClient.Query(queryText)
	itr, err := q.Read(ctx)
	if err != nil {
		return nil, err
	}
	video := &model.Video{}
	if err := itr.Next(video); err != nil {
		return nil, err
	}
	return video, nil
}

// List returns up to limit catalog records, newest first.
func (s *VideoService) List(ctx context.Context, limit int) ([]*model.Video, error) {
	queryText := fmt.Sprintf(QryListVideos, s.GetFQN(), limit)
	q := s.BigqueryClient.Query(queryText)
	itr, err := q.Read(ctx)
	if err != nil {
		return nil, err
	}
	videos := make([]*model.Video, 0, limit)
	for {
		video := &model.Video{}
		err := itr.Next(video)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	return videos, nil
}

// GenerateSignedURL mints a time-limited GET URL for a catalog artifact so
// clients can stream it without GCS credentials. The input is a catalog URL
// as written by the publish step.
func (s *VideoService) GenerateSignedURL(_ context.Context, gcsURI string, expires time.Duration) (string, error) {
	if !strings.HasPrefix(gcsURI, publicStoragePrefix) {
		return "", fmt.Errorf("invalid GCS URI format: %s", gcsURI)
	}
	path := strings.TrimPrefix(gcsURI, publicStoragePrefix)
	parts := strings.SplitN(path, "/", 2)
	if len(parts) < 2 {
		return "", fmt.Errorf("invalid GCS URI: unable to determine bucket and object from %s", gcsURI)
	}
	bucketName := parts[0]
	objectName := parts[1]

	opts := &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         "GET",
		Expires:        time.Now().Add(expires),
		GoogleAccessID: s.SignerEmail,
	}

	u, err := s.StorageClient.Bucket(bucketName).SignedURL(objectName, opts)
	if err != nil {
		return "", fmt.Errorf("Bucket(%q).Object(%q).SignedURL: %w", bucketName, objectName, err)
	}
	return u, nil
}
