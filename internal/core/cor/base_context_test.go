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

// Package cor_test contains unit tests for the chain-of-responsibility
// building blocks. This file covers the job context: workspace isolation,
// scratch file tracking, and cleanup on Close.
package cor_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/trackforge/go-video-gen/internal/core/cor"
)

func TestWorkspaceIsCreatedLazilyAndIsStable(t *testing.T) {
	ctx := cor.NewBaseContextWithRoot(t.TempDir())

	first, err := ctx.Workspace()
	assert.NoError(t, err)
	assert.DirExists(t, first)

	second, err := ctx.Workspace()
	assert.NoError(t, err)
	assert.Equal(t, first, second, "repeated calls return the same directory")
	assert.Contains(t, first, ctx.JobID(), "workspace path embeds the job id")
}

func TestConcurrentJobsGetDisjointWorkspaces(t *testing.T) {
	root := t.TempDir()
	a := cor.NewBaseContextWithRoot(root)
	b := cor.NewBaseContextWithRoot(root)

	wsA, err := a.Workspace()
	assert.NoError(t, err)
	wsB, err := b.Workspace()
	assert.NoError(t, err)

	assert.NotEqual(t, wsA, wsB)
}

func TestCloseRemovesWorkspaceAndContents(t *testing.T) {
	ctx := cor.NewBaseContextWithRoot(t.TempDir())

	path, err := ctx.WorkspaceFile("video.mp4")
	assert.NoError(t, err)
	assert.NoError(t, os.WriteFile(path, []byte("fake"), 0o600))

	nested, err := ctx.WorkspaceFile("thumbnail.png")
	assert.NoError(t, err)
	assert.NoError(t, os.WriteFile(nested, []byte("fake"), 0o600))

	ws, _ := ctx.Workspace()
	ctx.Close()

	assert.NoDirExists(t, ws)
}

func TestCloseRemovesTrackedScratchFiles(t *testing.T) {
	ctx := cor.NewBaseContextWithRoot(t.TempDir())

	outside := filepath.Join(t.TempDir(), "scratch.bin")
	assert.NoError(t, os.WriteFile(outside, []byte("x"), 0o600))
	ctx.AddTempFile(outside)

	ctx.Close()
	assert.NoFileExists(t, outside)
}

func TestCloseWithoutWorkspaceIsHarmless(t *testing.T) {
	ctx := cor.NewBaseContextWithRoot(t.TempDir())
	// The workspace was never requested; Close must not create or fail.
	ctx.Close()
}

func TestErrorTracking(t *testing.T) {
	ctx := cor.NewBaseContextWithRoot(t.TempDir())
	assert.False(t, ctx.HasErrors())

	ctx.AddError("encode-video", assert.AnError)
	assert.True(t, ctx.HasErrors())
	assert.Equal(t, assert.AnError, ctx.GetErrors()["encode-video"])
}

func TestDataMap(t *testing.T) {
	ctx := cor.NewBaseContextWithRoot(t.TempDir())
	ctx.Add("key", 42)
	assert.Equal(t, 42, ctx.Get("key"))

	ctx.Remove("key")
	assert.Nil(t, ctx.Get("key"))
}
