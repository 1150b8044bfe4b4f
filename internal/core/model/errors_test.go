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

// Package model_test contains unit tests for the data models. This file
// covers the pipeline error taxonomy: kind matching via errors.Is, cause
// propagation, and message formatting.
package model_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/trackforge/go-video-gen/internal/core/model"
)

func TestErrorKindsMatchTheirSentinels(t *testing.T) {
	cause := errors.New("boom")

	cases := []struct {
		err  error
		kind error
	}{
		{model.NewDecodeError("analyzer", "bad stream", cause), model.ErrDecode},
		{model.NewConfigurationError("renderer", "bad option", cause), model.ErrConfiguration},
		{model.NewEncodingError("encoder", "exit status 1", cause), model.ErrEncoding},
		{model.NewExtractionError("thumbnail", "no frame", cause), model.ErrExtraction},
		{model.NewResourceError("analyzer", "no scratch space", cause), model.ErrResource},
	}

	sentinels := []error{
		model.ErrDecode, model.ErrConfiguration, model.ErrEncoding,
		model.ErrExtraction, model.ErrResource,
	}

	for _, tc := range cases {
		assert.ErrorIs(t, tc.err, tc.kind)
		// Each error matches exactly one kind.
		for _, s := range sentinels {
			if s != tc.kind {
				assert.NotErrorIs(t, tc.err, s)
			}
		}
		// The cause stays reachable through the wrap chain.
		assert.ErrorIs(t, tc.err, cause)
	}
}

func TestErrorMatchesThroughWrapping(t *testing.T) {
	inner := model.NewEncodingError("encoder", "killed", errors.New("signal: killed"))
	outer := fmt.Errorf("job failed: %w", inner)

	assert.ErrorIs(t, outer, model.ErrEncoding)

	var pipelineErr *model.PipelineError
	assert.True(t, errors.As(outer, &pipelineErr))
	assert.Equal(t, "encoder", pipelineErr.Stage)
	assert.Equal(t, "killed", pipelineErr.Diagnostic)
}

func TestErrorMessageCarriesStageAndDiagnostic(t *testing.T) {
	err := model.NewExtractionError("thumbnail", "fraction 1.500 outside [0, 1]", nil)
	assert.Contains(t, err.Error(), "thumbnail")
	assert.Contains(t, err.Error(), "fraction 1.500 outside [0, 1]")

	// A nil cause never renders as "<nil>".
	assert.NotContains(t, err.Error(), "nil")
}
