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

// Package model defines the core data structures for the application. This
// file defines the pipeline error taxonomy. Every failure a pipeline stage
// can produce maps onto exactly one of five kinds, so callers can branch on
// the kind with errors.Is without parsing message text:
//
//   - ErrDecode: the input audio could not be understood.
//   - ErrConfiguration: the requested render options are invalid.
//   - ErrEncoding: the encoder subprocess failed, timed out, or was killed.
//   - ErrExtraction: a thumbnail could not be pulled from the video.
//   - ErrResource: scratch space or another local resource was unavailable.
package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for the five failure kinds. Wrapped errors created by the
// constructors below match these via errors.Is.
var (
	ErrDecode        = errors.New("audio decode failure")
	ErrConfiguration = errors.New("invalid pipeline configuration")
	ErrEncoding      = errors.New("video encoding failure")
	ErrExtraction    = errors.New("thumbnail extraction failure")
	ErrResource      = errors.New("resource unavailable")
)

// PipelineError is the concrete error type produced by pipeline stages. It
// records which stage failed and a human-readable diagnostic. For encoder
// failures the diagnostic carries the captured stderr of the subprocess.
type PipelineError struct {
	Kind       error  // One of the sentinel errors above.
	Stage      string // Name of the failing stage, e.g. "encoder".
	Diagnostic string // Context for the failure, such as subprocess stderr.
	Err        error  // The underlying cause, may be nil.
}

// Error renders the stage, kind, diagnostic, and cause.
func (e *PipelineError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	if e.Diagnostic != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Diagnostic)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the underlying cause, so
// errors.Is matches either.
func (e *PipelineError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// NewDecodeError reports unreadable or unsupported input audio.
func NewDecodeError(stage, diagnostic string, cause error) *PipelineError {
	return &PipelineError{Kind: ErrDecode, Stage: stage, Diagnostic: diagnostic, Err: cause}
}

// NewConfigurationError reports invalid render options, such as an unknown
// effect name or an out-of-range parameter.
func NewConfigurationError(stage, diagnostic string, cause error) *PipelineError {
	return &PipelineError{Kind: ErrConfiguration, Stage: stage, Diagnostic: diagnostic, Err: cause}
}

// NewEncodingError reports a failed, timed out, or killed encoder
// subprocess. The diagnostic should carry the subprocess stderr.
func NewEncodingError(stage, diagnostic string, cause error) *PipelineError {
	return &PipelineError{Kind: ErrEncoding, Stage: stage, Diagnostic: diagnostic, Err: cause}
}

// NewExtractionError reports a thumbnail that could not be extracted.
func NewExtractionError(stage, diagnostic string, cause error) *PipelineError {
	return &PipelineError{Kind: ErrExtraction, Stage: stage, Diagnostic: diagnostic, Err: cause}
}

// NewResourceError reports missing scratch space or other local resource
// failures.
func NewResourceError(stage, diagnostic string, cause error) *PipelineError {
	return &PipelineError{Kind: ErrResource, Stage: stage, Diagnostic: diagnostic, Err: cause}
}
