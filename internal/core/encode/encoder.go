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

// Package encode implements the encoding stage of the pipeline. It drives an
// ffmpeg subprocess that muxes the rendered frame stream with the original
// audio track into an H.264 MP4.
//
// The subprocess is treated as a black box behind a fixed command-line
// contract: raw RGBA frames arrive on stdin, the audio file is the second
// input, and the output is libx264 video in yuv420p with AAC audio, cut to
// the shorter of the two inputs. The process runs under a deadline derived
// from the configured timeout; when the deadline passes or the job is
// canceled, exec.CommandContext kills the process group and Encode returns
// an EncodingError that carries everything the subprocess wrote to stderr.
package encode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/trackforge/go-video-gen/internal/core/model"
	"github.com/trackforge/go-video-gen/internal/core/render"
)

const stageName = "encoder"

// stderrTailLimit caps how much subprocess stderr is attached to an error.
const stderrTailLimit = 4 << 10

// Encoder runs ffmpeg to produce the final video file.
type Encoder struct {
	binaryPath string
	timeout    time.Duration
}

// NewEncoder creates an encoder for the given ffmpeg binary. A zero timeout
// means no deadline beyond the caller's context.
func NewEncoder(binaryPath string, timeout time.Duration) *Encoder {
	return &Encoder{binaryPath: binaryPath, timeout: timeout}
}

// BuildArgs assembles the fixed ffmpeg invocation for a frame geometry,
// audio input, and output path. Exposed so the command contract is directly
// testable without running a subprocess.
func (e *Encoder) BuildArgs(width, height, fps int, audioPath, outputPath string) []string {
	return []string{
		"-y",
		"-hide_banner",
		// First input: raw frames on stdin.
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", strconv.Itoa(fps),
		"-i", "-",
		// Second input: the original audio track.
		"-i", audioPath,
		"-c:v", "libx264",
		"-preset", "medium",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-shortest",
		"-movflags", "+faststart",
		"-f", "mp4",
		outputPath,
	}
}

// Encode consumes the frame stream, feeding each frame to ffmpeg's stdin,
// and blocks until the subprocess exits. Any failure mode of the subprocess
// (missing binary, non-zero exit, timeout, cancellation) surfaces as an
// EncodingError with the captured stderr as the diagnostic.
func (e *Encoder) Encode(ctx context.Context, stream *render.FrameStream, audioPath, outputPath string) error {
	if stream == nil {
		return model.NewConfigurationError(stageName, "nil frame stream", nil)
	}

	runCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	args := e.BuildArgs(stream.Width(), stream.Height(), stream.FPS(), audioPath, outputPath)
	cmd := exec.CommandContext(runCtx, e.binaryPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return model.NewEncodingError(stageName, "failed to open stdin pipe", err)
	}

	if err := cmd.Start(); err != nil {
		return model.NewEncodingError(stageName,
			fmt.Sprintf("failed to start %s", e.binaryPath), err)
	}

	// Stream frames into the subprocess. A write failure usually means the
	// process died early; stop feeding and let Wait report the cause.
	var writeErr error
	for {
		frame, ok := stream.Next()
		if !ok {
			break
		}
		// Write row by row so a padded stride never leaks into the pipe.
		rowBytes := frame.Bounds().Dx() * 4
		for y := 0; y < frame.Bounds().Dy(); y++ {
			row := frame.Pix[y*frame.Stride : y*frame.Stride+rowBytes]
			if _, werr := stdin.Write(row); werr != nil {
				writeErr = werr
				break
			}
		}
		if writeErr != nil {
			break
		}
	}
	closeErr := stdin.Close()

	waitErr := cmd.Wait()

	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return model.NewEncodingError(stageName,
			fmt.Sprintf("timed out after %s: %s", e.timeout, tail(stderr.Bytes())), runCtx.Err())
	case runCtx.Err() != nil:
		return model.NewEncodingError(stageName,
			fmt.Sprintf("canceled: %s", tail(stderr.Bytes())), runCtx.Err())
	case waitErr != nil:
		return model.NewEncodingError(stageName, tail(stderr.Bytes()), waitErr)
	case writeErr != nil:
		return model.NewEncodingError(stageName,
			fmt.Sprintf("frame write failed: %s", tail(stderr.Bytes())), writeErr)
	case closeErr != nil:
		return model.NewEncodingError(stageName, "failed to close stdin", closeErr)
	}
	return nil
}

// tail returns the last stderrTailLimit bytes of the subprocess output.
func tail(b []byte) string {
	if len(b) > stderrTailLimit {
		b = b[len(b)-stderrTailLimit:]
	}
	return string(bytes.TrimSpace(b))
}
